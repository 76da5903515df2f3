package embeddings

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// DefaultSimilarityThreshold is used when no threshold is configured.
const DefaultSimilarityThreshold = 0.8

// Oracle answers whether two texts are semantically equivalent.
// Each invocation embeds both inputs in a single request; treat calls as
// expensive and keep them out of hot loops.
type Oracle struct {
	client    Client
	threshold float64
	logger    *zerolog.Logger
}

// NewOracle creates a similarity oracle with the given threshold.
// A threshold <= 0 falls back to the default.
func NewOracle(client Client, threshold float64, logger *zerolog.Logger) *Oracle {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	return &Oracle{
		client:    client,
		threshold: threshold,
		logger:    logger,
	}
}

// AreSimilar reports whether a and b are semantically equivalent.
// Exact string equality short-circuits without an embedding call.
func (o *Oracle) AreSimilar(ctx context.Context, a, b string) (bool, error) {
	if a == b {
		return true, nil
	}

	vectors, err := o.client.Embed(ctx, []string{a, b})
	if err != nil {
		return false, fmt.Errorf("embed pair: %w", err)
	}

	similarity := CosineSimilarity(vectors[0], vectors[1])

	o.logger.Debug().
		Str("text_a", a).
		Str("text_b", b).
		Float64("similarity", similarity).
		Msg("similarity computed")

	return similarity >= o.threshold, nil
}

// Threshold returns the configured similarity threshold.
func (o *Oracle) Threshold() float64 {
	return o.threshold
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Mismatched or empty vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64

	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
