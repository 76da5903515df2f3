// Package verify scores unverified claims against biomedical literature:
// derive search elements, retrieve evidence, judge stance per article,
// reduce to a trust score.
package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verihealth/claimtrust/internal/core/domain"
	apperrors "github.com/verihealth/claimtrust/internal/core/errors"
	"github.com/verihealth/claimtrust/internal/core/llm"
	"github.com/verihealth/claimtrust/internal/evidence"
	"github.com/verihealth/claimtrust/internal/platform/observability"
	"github.com/verihealth/claimtrust/internal/platform/worker"
)

const (
	defaultArticlesPerClaim = 8
	defaultSearchDelay      = 4 * time.Second
)

// Repository is the claim persistence the verifier needs.
type Repository interface {
	ListUnverifiedClaims(ctx context.Context) ([]domain.Claim, error)
	UpdateClaimVerification(ctx context.Context, id uuid.UUID, score *float64, articlesFound int) error
	CountUnverifiedClaims(ctx context.Context) (int, error)
}

// Options tune evidence retrieval.
type Options struct {
	// ArticlesPerClaim caps how many articles are judged per claim.
	ArticlesPerClaim int

	// SearchDelay is the pause between consecutive literature searches.
	SearchDelay time.Duration
}

// Verifier runs verification passes over the unverified backlog.
type Verifier struct {
	repo      Repository
	llm       llm.Client
	retriever evidence.Retriever
	opts      Options
	logger    *zerolog.Logger
}

func New(repo Repository, client llm.Client, retriever evidence.Retriever, opts Options, logger *zerolog.Logger) *Verifier {
	if opts.ArticlesPerClaim <= 0 {
		opts.ArticlesPerClaim = defaultArticlesPerClaim
	}

	if opts.SearchDelay < 0 {
		opts.SearchDelay = defaultSearchDelay
	}

	return &Verifier{
		repo:      repo,
		llm:       client,
		retriever: retriever,
		opts:      opts,
		logger:    logger,
	}
}

// VerifyAll verifies the whole unverified backlog in insertion order.
// Search elements for all claims come from one batched LLM call; evidence
// retrieval and stance judgment run per claim. Any failure aborts the
// run, leaving the remaining claims unverified for the next pass.
func (v *Verifier) VerifyAll(ctx context.Context) error {
	claims, err := v.repo.ListUnverifiedClaims(ctx)
	if err != nil {
		return fmt.Errorf("list unverified claims: %w", err)
	}

	if len(claims) == 0 {
		observability.UnverifiedBacklog.Set(0)

		return nil
	}

	elements, err := v.claimElements(ctx, claims)
	if err != nil {
		return err
	}

	for i := range claims {
		// The search delay also separates claims, not just queries within
		// one claim, so the retrieval pace stays constant across the run.
		if i > 0 {
			if err := worker.Wait(ctx, v.opts.SearchDelay); err != nil {
				return err
			}
		}

		if err := v.verifyClaim(ctx, &claims[i], elements[claims[i].ID.String()]); err != nil {
			return err
		}
	}

	backlog, err := v.repo.CountUnverifiedClaims(ctx)
	if err != nil {
		return fmt.Errorf("count unverified claims: %w", err)
	}

	observability.UnverifiedBacklog.Set(float64(backlog))
	v.logger.Info().Int("verified", len(claims)).Msg("verification pass complete")

	return nil
}

func (v *Verifier) claimElements(ctx context.Context, claims []domain.Claim) (map[string]domain.ClaimElements, error) {
	inputs := make([]llm.ClaimInput, 0, len(claims))
	for _, claim := range claims {
		inputs = append(inputs, llm.ClaimInput{ID: claim.ID.String(), Claim: claim.NormalizedClaim})
	}

	derived, err := v.llm.ClaimElements(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("derive claim elements: %w", err)
	}

	elements := make(map[string]domain.ClaimElements, len(derived))
	for _, e := range derived {
		elements[e.ClaimID] = e
	}

	return elements, nil
}

func (v *Verifier) verifyClaim(ctx context.Context, claim *domain.Claim, elements domain.ClaimElements) error {
	if elements.ClaimID == "" {
		return fmt.Errorf("%w: no search elements for claim %s", apperrors.ErrClaimNotResolved, claim.ID)
	}

	articles, err := v.gatherEvidence(ctx, elements)
	if err != nil {
		return fmt.Errorf("gather evidence for claim %s: %w", claim.ID, err)
	}

	var score *float64

	if len(articles) > 0 {
		results, err := v.llm.JudgeStance(ctx, claim.NormalizedClaim, articles)
		if err != nil {
			return fmt.Errorf("judge stance for claim %s: %w", claim.ID, err)
		}

		score = CalculateScore(results)
	}

	if err := v.repo.UpdateClaimVerification(ctx, claim.ID, score, len(articles)); err != nil {
		return err
	}

	outcome := "scored"
	if score == nil {
		outcome = "no_evidence"
	}

	observability.ClaimsVerified.WithLabelValues(outcome).Inc()

	event := v.logger.Info().
		Str("claim_id", claim.ID.String()).
		Int("articles", len(articles))
	if score != nil {
		event = event.Float64("score", *score)
	}

	event.Msg("claim verified")

	return nil
}

// gatherEvidence runs every mounted query, deduplicates IDs preserving
// first-seen order, caps the set, and fetches the articles. Queries run
// sequentially with a delay in between to stay polite to the upstream.
func (v *Verifier) gatherEvidence(ctx context.Context, elements domain.ClaimElements) ([]domain.Article, error) {
	queries := MountSearchQueries(elements)

	seen := make(map[string]struct{})

	var ids []string

	for i, query := range queries {
		if i > 0 {
			if err := worker.Wait(ctx, v.opts.SearchDelay); err != nil {
				return nil, err
			}
		}

		found, err := v.retriever.Search(ctx, query, domain.SourceNCBI)
		if err != nil {
			return nil, err
		}

		for _, id := range found {
			if _, ok := seen[id]; ok {
				continue
			}

			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	if len(ids) > v.opts.ArticlesPerClaim {
		ids = ids[:v.opts.ArticlesPerClaim]
	}

	articles, err := v.retriever.FetchByIDs(ctx, ids, domain.SourceNCBI)
	if err != nil {
		return nil, err
	}

	return articles, nil
}
