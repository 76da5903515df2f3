// Package dedup partitions candidate claims into new versus
// duplicate-of-existing, using the semantic similarity oracle.
package dedup

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verihealth/claimtrust/internal/core/domain"
	"github.com/verihealth/claimtrust/internal/platform/observability"
)

// Oracle answers pairwise semantic equivalence. Each call is expensive
// (an embedding request), so the partitioner invokes it at most once per
// (candidate, existing) pair and stops scanning at the first match.
type Oracle interface {
	AreSimilar(ctx context.Context, a, b string) (bool, error)
}

// Partitioner marks candidates against the persisted claim set.
type Partitioner struct {
	oracle Oracle
	logger *zerolog.Logger
}

func New(oracle Oracle, logger *zerolog.Logger) *Partitioner {
	return &Partitioner{
		oracle: oracle,
		logger: logger,
	}
}

// Partition scans existing claims (in insertion order) for each candidate
// (in input order) and marks the candidate with the first similar claim's
// ID, or nil when none matches. Candidates are not deduplicated against
// each other within the batch, only against the persisted set.
//
// Worst case is O(candidates x existing) oracle calls. Claim volumes stay
// in the tens to low hundreds, so this is a scaling limit rather than a
// defect.
func (p *Partitioner) Partition(ctx context.Context, candidates []domain.CandidateClaim, existing []domain.Claim) ([]domain.MarkedCandidate, error) {
	marked := make([]domain.MarkedCandidate, 0, len(candidates))

	for _, candidate := range candidates {
		duplicateOf, err := p.findDuplicate(ctx, candidate.ClaimText, existing)
		if err != nil {
			return nil, err
		}

		outcome := observability.DedupOutcomeNew
		if duplicateOf != nil {
			outcome = observability.DedupOutcomeDuplicate
		}

		observability.ClaimsDeduplicated.WithLabelValues(outcome).Inc()

		marked = append(marked, domain.MarkedCandidate{
			CandidateClaim: candidate,
			DuplicateOf:    duplicateOf,
		})
	}

	return marked, nil
}

func (p *Partitioner) findDuplicate(ctx context.Context, text string, existing []domain.Claim) (*uuid.UUID, error) {
	for i := range existing {
		similar, err := p.oracle.AreSimilar(ctx, text, existing[i].NormalizedClaim)
		if err != nil {
			return nil, fmt.Errorf("compare claims: %w", err)
		}

		if similar {
			id := existing[i].ID

			p.logger.Debug().
				Str("candidate", text).
				Str("duplicate_of", id.String()).
				Msg("candidate is a duplicate")

			return &id, nil
		}
	}

	return nil, nil
}
