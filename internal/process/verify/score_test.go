package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verihealth/claimtrust/internal/core/domain"
)

func stance(direction, strength string) domain.StanceResult {
	return domain.StanceResult{Direction: direction, Strength: strength}
}

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		name    string
		results []domain.StanceResult
		want    *float64
	}{
		{
			name: "strong support and mild contradiction",
			results: []domain.StanceResult{
				stance(domain.StanceSupport, domain.StrengthStrong),
				stance(domain.StanceContradict, domain.StrengthMild),
			},
			want: ptr(0.25),
		},
		{
			name:    "single strong support",
			results: []domain.StanceResult{stance(domain.StanceSupport, domain.StrengthStrong)},
			want:    ptr(1.0),
		},
		{
			name:    "single strong contradiction",
			results: []domain.StanceResult{stance(domain.StanceContradict, domain.StrengthStrong)},
			want:    ptr(-1.0),
		},
		{
			name: "inconclusive dilutes the mean",
			results: []domain.StanceResult{
				stance(domain.StanceSupport, domain.StrengthStrong),
				stance(domain.StanceInconclusive, "n/a"),
			},
			want: ptr(0.5),
		},
		{
			name: "unrelated results are discarded, not averaged",
			results: []domain.StanceResult{
				stance(domain.StanceSupport, domain.StrengthMild),
				stance(domain.StanceUnrelated, "n/a"),
				stance(domain.StanceUnrelated, "n/a"),
			},
			want: ptr(0.5),
		},
		{
			name:    "all unrelated yields no score",
			results: []domain.StanceResult{stance(domain.StanceUnrelated, "n/a")},
			want:    nil,
		},
		{
			name:    "no results yields no score",
			results: nil,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateScore(tt.results)

			if tt.want == nil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func ptr(f float64) *float64 { return &f }
