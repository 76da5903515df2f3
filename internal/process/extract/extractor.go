// Package extract turns batches of social posts into candidate health
// claims via a single schema-constrained LLM call per batch.
package extract

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/verihealth/claimtrust/internal/core/domain"
	apperrors "github.com/verihealth/claimtrust/internal/core/errors"
	"github.com/verihealth/claimtrust/internal/core/llm"
	"github.com/verihealth/claimtrust/internal/platform/observability"
)

// Extractor produces candidate claims from posts.
type Extractor struct {
	llm    llm.Client
	logger *zerolog.Logger
}

func New(client llm.Client, logger *zerolog.Logger) *Extractor {
	return &Extractor{
		llm:    client,
		logger: logger,
	}
}

var lowercase = cases.Lower(language.Und)

// knownCategories indexes the closed category vocabulary.
var knownCategories = func() map[string]struct{} {
	m := make(map[string]struct{}, len(domain.Categories))
	for _, c := range domain.Categories {
		m[c] = struct{}{}
	}

	return m
}()

// Extract pulls candidate claims out of posts. One LLM request carries the
// whole batch. Claim text is lowercased before return; categories outside
// the closed vocabulary are dropped. A post with no health claim simply
// contributes nothing.
func (e *Extractor) Extract(ctx context.Context, posts []domain.Post) ([]domain.CandidateClaim, error) {
	if len(posts) == 0 {
		return nil, nil
	}

	inputs := make([]llm.PostInput, 0, len(posts))
	for _, post := range posts {
		inputs = append(inputs, llm.PostInput{
			Text:         post.Content,
			InfluencerID: post.InfluencerID.String(),
			PostURL:      post.URL,
		})
	}

	raw, err := e.llm.ExtractClaims(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrExtraction, err)
	}

	candidates := make([]domain.CandidateClaim, 0, len(raw))

	for _, claim := range raw {
		candidates = append(candidates, domain.CandidateClaim{
			InfluencerID: claim.InfluencerID,
			ClaimText:    lowercase.String(claim.Claim),
			OriginalText: claim.OriginalText,
			PostURL:      claim.PostURL,
			Categories:   filterCategories(claim.Categories, e.logger),
		})
	}

	observability.ClaimsExtracted.Add(float64(len(candidates)))
	e.logger.Info().Int("posts", len(posts)).Int("candidates", len(candidates)).Msg("claims extracted")

	return candidates, nil
}

func filterCategories(categories []string, logger *zerolog.Logger) []string {
	out := make([]string, 0, len(categories))

	for _, c := range categories {
		c = lowercase.String(c)
		if _, ok := knownCategories[c]; !ok {
			logger.Warn().Str("category", c).Msg("dropping unknown claim category")
			continue
		}

		out = append(out, c)
	}

	return out
}
