package llm

import (
	"fmt"
	"strings"

	"github.com/verihealth/claimtrust/internal/core/domain"
)

const extractionPromptTemplate = `You will receive an array of social network posts. For each post, you should check what health claims are being made, considering that a single post may contain more than 1 health claim. Give your response as a JSON object containing an array of claims, where: the 'claim' field should be a string containing the claim in its most basic form (minimal necessary words to keep it meaningful); the 'influencerId' and 'postUrl' fields should be copies of the respective post's attributes; the 'originalText' field should be the portion of the post's text the claim was taken from; and the 'categories' field should list the claim's topics, drawn only from this list: %s.`

const elementsPrompt = `You will receive an array of health claims. For each claim, you should retrieve its semantic elements (subject, action and target). Give your response as a JSON object containing an array of claims' semantic elements, where: the 'subject' field should be an array of strings containing a claim's subject and its synonyms, the 'action' field should be a string containing the claim's action, the 'target' field should be an array of strings containing the claim's target(s) and its/their synonyms, and the 'claimId' should be a copy of the claim id attribute.`

const stancePrompt = `You will receive a health claim and a list of articles (with 'title', 'abstract' and 'articleId' attributes). For each article, you have to check if it is related to the claim's subject and, if so, you have to check if the article either supports the claim, contradicts the claim or is inconclusive. For articles that support or contradict the claim, you also have to tell how strongly it does so. Give your answer as a JSON object containing a list of results (article analysis), where on each result: the 'direction' field should be a string stating how the article relates with the claim ('support', 'contradict', 'inconclusive' or 'unrelated'); the 'strength' field should be a string stating the support/contradiction strength ('mild' or 'strong') or 'n/a' if the article is inconclusive or unrelated to the claim; the 'articleId' field should be a copy of the article's 'id' field; the 'articleTitle' field should be a copy of the article's 'title' field; and the 'articleUrl' should be a copy of the article's 'url' field.`

func extractionPrompt() string {
	return fmt.Sprintf(extractionPromptTemplate, strings.Join(domain.Categories, ", "))
}
