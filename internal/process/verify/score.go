package verify

import "github.com/verihealth/claimtrust/internal/core/domain"

// Stance weights. Inconclusive results count toward the mean with weight
// zero; unrelated results are discarded entirely.
const (
	weightStrong = 1.0
	weightMild   = 0.5
)

// CalculateScore reduces per-article stance results to a trust score in
// [-1, 1]: the arithmetic mean of signed weights over the related results.
// Returns nil when nothing related remains, so "no usable evidence" stays
// distinguishable from a genuinely neutral score of zero.
func CalculateScore(results []domain.StanceResult) *float64 {
	var (
		sum     float64
		related int
	)

	for _, result := range results {
		var weight float64

		switch result.Strength {
		case domain.StrengthStrong:
			weight = weightStrong
		case domain.StrengthMild:
			weight = weightMild
		}

		switch result.Direction {
		case domain.StanceSupport:
			sum += weight
		case domain.StanceContradict:
			sum -= weight
		case domain.StanceInconclusive:
		default:
			continue
		}

		related++
	}

	if related == 0 {
		return nil
	}

	mean := sum / float64(related)

	return &mean
}
