// Package claims persists the deduplicated claim set and serves the
// read-side filtering used by the API and CLI.
package claims

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verihealth/claimtrust/internal/core/domain"
	"github.com/verihealth/claimtrust/internal/core/embeddings"
	apperrors "github.com/verihealth/claimtrust/internal/core/errors"
)

// Repository is the claim persistence the manager needs.
type Repository interface {
	InsertClaim(ctx context.Context, claim *domain.Claim) error
	GetClaim(ctx context.Context, id uuid.UUID) (*domain.Claim, error)
	GetClaimByNormalized(ctx context.Context, normalized string) (*domain.Claim, error)
	ListClaims(ctx context.Context) ([]domain.Claim, error)
	FilterClaims(ctx context.Context, textTerms []string, categories []string) ([]domain.Claim, error)
	UpdateClaimSources(ctx context.Context, id uuid.UUID, sources map[string]domain.ClaimSource) error
	DeleteClaim(ctx context.Context, id uuid.UUID) error
}

// Manager owns the claim set: inserting new claims, merging duplicate
// provenance, and filtered reads.
type Manager struct {
	repo     Repository
	embedder embeddings.Client
	logger   *zerolog.Logger
}

func New(repo Repository, embedder embeddings.Client, logger *zerolog.Logger) *Manager {
	return &Manager{
		repo:     repo,
		embedder: embedder,
		logger:   logger,
	}
}

// AddNew applies a batch of dedup-marked candidates. Candidates without a
// duplicate become new unverified claims; candidates with one merge their
// source attribution into the existing claim. Returns the claims inserted.
//
// New claims are embedded in a single batched request so the vector can be
// stored alongside the text. Embedding failure is not fatal here, the
// claim is still inserted and the vector stays empty.
func (m *Manager) AddNew(ctx context.Context, marked []domain.MarkedCandidate) ([]domain.Claim, error) {
	fresh := make([]domain.MarkedCandidate, 0, len(marked))

	for _, candidate := range marked {
		if candidate.DuplicateOf == nil {
			fresh = append(fresh, candidate)
			continue
		}

		if err := m.attachSource(ctx, *candidate.DuplicateOf, candidate.CandidateClaim); err != nil {
			return nil, err
		}
	}

	vectors := m.embedBatch(ctx, fresh)

	inserted := make([]domain.Claim, 0, len(fresh))

	for i, candidate := range fresh {
		claim := domain.Claim{
			NormalizedClaim: candidate.ClaimText,
			Categories:      candidate.Categories,
			Sources: map[string]domain.ClaimSource{
				candidate.InfluencerID: {
					OriginalText: candidate.OriginalText,
					PostURL:      candidate.PostURL,
				},
			},
			VerificationStatus: domain.StatusUnverified,
		}

		if vectors != nil {
			claim.Embedding = vectors[i]
		}

		if err := m.repo.InsertClaim(ctx, &claim); err != nil {
			return nil, fmt.Errorf("add claim: %w", err)
		}

		inserted = append(inserted, claim)
	}

	m.logger.Info().
		Int("new", len(inserted)).
		Int("merged", len(marked)-len(inserted)).
		Msg("claim batch applied")

	return inserted, nil
}

// attachSource merges one influencer's attribution into an existing claim,
// overwriting any prior entry for that influencer so the freshest wording
// and post URL win. When the marked ID no longer resolves (the claim was
// deleted between dedup and attachment) the normalized text is tried
// before giving up.
func (m *Manager) attachSource(ctx context.Context, claimID uuid.UUID, candidate domain.CandidateClaim) error {
	claim, err := m.repo.GetClaim(ctx, claimID)
	if err != nil {
		claim, err = m.repo.GetClaimByNormalized(ctx, candidate.ClaimText)
	}

	if err != nil {
		return fmt.Errorf("%w: claim %s: %w", apperrors.ErrClaimNotResolved, claimID, err)
	}

	claim.Sources[candidate.InfluencerID] = domain.ClaimSource{
		OriginalText: candidate.OriginalText,
		PostURL:      candidate.PostURL,
	}

	if err := m.repo.UpdateClaimSources(ctx, claim.ID, claim.Sources); err != nil {
		return fmt.Errorf("merge claim sources: %w", err)
	}

	return nil
}

func (m *Manager) embedBatch(ctx context.Context, fresh []domain.MarkedCandidate) [][]float32 {
	if len(fresh) == 0 {
		return nil
	}

	texts := make([]string, 0, len(fresh))
	for _, candidate := range fresh {
		texts = append(texts, candidate.ClaimText)
	}

	vectors, err := m.embedder.Embed(ctx, texts)
	if err != nil {
		m.logger.Warn().Err(err).Msg("claim embedding failed, storing claims without vectors")
		return nil
	}

	return vectors
}

// Get returns one claim by ID.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*domain.Claim, error) {
	claim, err := m.repo.GetClaim(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", err)
	}

	return claim, nil
}

// List returns every claim in insertion order.
func (m *Manager) List(ctx context.Context) ([]domain.Claim, error) {
	claims, err := m.repo.ListClaims(ctx)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	return claims, nil
}

// Fetch returns claims matching a free-text filter and a category set.
// The text filter uses '+' between terms; a claim matches when it
// contains any of the terms and carries every requested category.
func (m *Manager) Fetch(ctx context.Context, textFilter string, categories []string) ([]domain.Claim, error) {
	parsed, err := ParseCategories(categories)
	if err != nil {
		return nil, err
	}

	claims, err := m.repo.FilterClaims(ctx, SplitTerms(textFilter), parsed)
	if err != nil {
		return nil, fmt.Errorf("fetch claims: %w", err)
	}

	return claims, nil
}

// Delete removes a claim by ID.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	if err := m.repo.DeleteClaim(ctx, id); err != nil {
		return fmt.Errorf("delete claim: %w", err)
	}

	return nil
}

// SplitTerms breaks a '+'-separated text filter into cleaned terms. A
// claim matches when it contains any of the terms.
func SplitTerms(filter string) []string {
	var terms []string

	for _, term := range strings.Split(filter, "+") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		terms = append(terms, term)
	}

	return terms
}

// ParseCategories lowercases and validates category filters against the
// closed vocabulary. '+' stands in for spaces in multi-word categories,
// so filters survive URL and shell quoting.
func ParseCategories(categories []string) ([]string, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	known := make(map[string]struct{}, len(domain.Categories))
	for _, c := range domain.Categories {
		known[c] = struct{}{}
	}

	parsed := make([]string, 0, len(categories))

	for _, c := range categories {
		c = strings.ReplaceAll(c, "+", " ")
		c = strings.ToLower(strings.TrimSpace(c))
		if _, ok := known[c]; !ok {
			return nil, fmt.Errorf("%w: unknown category %q", apperrors.ErrInvalidInput, c)
		}

		parsed = append(parsed, c)
	}

	return parsed, nil
}
