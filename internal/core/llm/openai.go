package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"golang.org/x/time/rate"

	"github.com/verihealth/claimtrust/internal/core/domain"
	apperrors "github.com/verihealth/claimtrust/internal/core/errors"
	"github.com/verihealth/claimtrust/internal/platform/observability"
)

const (
	rateLimiterBurst = 5
	defaultModel     = "gpt-4o-mini"

	taskExtract  = "extract_claims"
	taskElements = "claim_elements"
	taskStance   = "judge_stance"
)

type openaiClient struct {
	client      *openai.Client
	model       string
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
}

// Config holds configuration for the OpenAI chat client.
type Config struct {
	APIKey    string
	Model     string
	RateLimit int // Requests per second
}

// NewOpenAI creates an LLM client backed by the OpenAI chat completion API.
func NewOpenAI(cfg Config, logger *zerolog.Logger) Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1
	}

	return &openaiClient{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), rateLimiterBurst),
		logger:      logger,
	}
}

func (c *openaiClient) ExtractClaims(ctx context.Context, posts []PostInput) ([]RawClaim, error) {
	var payload struct {
		Claims []RawClaim `json:"claims"`
	}

	if err := c.complete(ctx, taskExtract, extractionPrompt(), posts, extractionSchema(), &payload); err != nil {
		return nil, err
	}

	return payload.Claims, nil
}

func (c *openaiClient) ClaimElements(ctx context.Context, claims []ClaimInput) ([]domain.ClaimElements, error) {
	var payload struct {
		Elements []domain.ClaimElements `json:"elements"`
	}

	if err := c.complete(ctx, taskElements, elementsPrompt, claims, elementsSchema(), &payload); err != nil {
		return nil, err
	}

	return payload.Elements, nil
}

func (c *openaiClient) JudgeStance(ctx context.Context, claim string, articles []domain.Article) ([]domain.StanceResult, error) {
	type articleInput struct {
		ArticleID string `json:"articleId"`
		Title     string `json:"title"`
		Abstract  string `json:"abstract"`
		URL       string `json:"url"`
	}

	input := struct {
		Claim    string         `json:"claim"`
		Articles []articleInput `json:"articles"`
	}{Claim: claim}

	for _, a := range articles {
		input.Articles = append(input.Articles, articleInput{
			ArticleID: a.ID,
			Title:     a.Title,
			Abstract:  a.Abstract,
			URL:       a.URL,
		})
	}

	var payload struct {
		Results []domain.StanceResult `json:"results"`
	}

	if err := c.complete(ctx, taskStance, stancePrompt, input, stanceSchema(), &payload); err != nil {
		return nil, err
	}

	return payload.Results, nil
}

// complete issues one schema-constrained chat completion and unmarshals the
// response into out. Absence of content is a hard failure.
func (c *openaiClient) complete(ctx context.Context, task, instructions string, input interface{}, schema jsonschema.Definition, out interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("llm rate limiter: %w", err)
	}

	userContent, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("marshal llm input: %w", err)
	}

	started := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instructions},
			{Role: openai.ChatMessageRoleUser, Content: string(userContent)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "claim_schema",
				Schema: &schema,
				Strict: true,
			},
		},
	})

	observability.LLMRequestDuration.WithLabelValues(task).Observe(time.Since(started).Seconds())

	if err != nil {
		return fmt.Errorf("chat completion (%s): %w", task, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return fmt.Errorf("%w (%s)", apperrors.ErrNoContent, task)
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug().Str("task", task).Str("content", content).Msg("LLM response")

	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("unmarshal llm response (%s): %w", task, err)
	}

	return nil
}
