// Package llm provides the language-model capability used by the claim
// pipeline: schema-constrained chat completions for claim extraction,
// semantic element derivation, and per-article stance judgment.
package llm

import (
	"context"

	"github.com/verihealth/claimtrust/internal/core/domain"
)

// PostInput is the slice of a social post handed to the extraction prompt.
type PostInput struct {
	Text         string `json:"text"`
	InfluencerID string `json:"influencerId"`
	PostURL      string `json:"postUrl"`
}

// RawClaim is one extracted claim as returned by the model, before
// normalization.
type RawClaim struct {
	InfluencerID string   `json:"influencerId"`
	Claim        string   `json:"claim"`
	OriginalText string   `json:"originalText"`
	PostURL      string   `json:"postUrl"`
	Categories   []string `json:"categories"`
}

// ClaimInput is the slice of a stored claim handed to the elements prompt.
type ClaimInput struct {
	ID    string `json:"id"`
	Claim string `json:"claim"`
}

// Client is the language-model capability. Every method issues a single
// chat completion with a strict JSON-schema response format. An empty
// completion yields errors.ErrNoContent.
type Client interface {
	// ExtractClaims pulls health claims out of a batch of posts.
	// A post with no health claim contributes zero entries; a post may
	// contribute several.
	ExtractClaims(ctx context.Context, posts []PostInput) ([]RawClaim, error)

	// ClaimElements derives subject/action/target (with synonyms) for a
	// batch of claims, used to build literature search queries.
	ClaimElements(ctx context.Context, claims []ClaimInput) ([]domain.ClaimElements, error)

	// JudgeStance asks the model to judge each article's relationship to
	// the claim.
	JudgeStance(ctx context.Context, claim string, articles []domain.Article) ([]domain.StanceResult, error)
}
