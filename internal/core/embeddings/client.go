// Package embeddings provides sentence embedding generation and the
// semantic similarity oracle built on top of it.
package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Default rate limiter burst.
const rateLimiterBurst = 5

// ErrEmptyResponse indicates the embedding API returned no vectors.
var ErrEmptyResponse = errors.New("empty embedding response")

// Client generates embedding vectors for batches of texts.
// One call maps each input text to one vector, in order.
type Client interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type openaiClient struct {
	client      *openai.Client
	model       string
	rateLimiter *rate.Limiter
}

// Config holds configuration for the OpenAI embedding client.
type Config struct {
	APIKey    string
	Model     string // e.g. "text-embedding-3-small"
	RateLimit int    // Requests per second
}

// NewOpenAI creates an embedding client backed by the OpenAI API.
func NewOpenAI(cfg Config) Client {
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}

	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1
	}

	return &openaiClient{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), rateLimiterBurst),
	}
}

func (c *openaiClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limiter: %w", err)
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmptyResponse, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}

	return vectors, nil
}
