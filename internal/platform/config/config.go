// Package config loads application configuration from the environment.
// A .env file is loaded first when present, then values are parsed into
// the Config struct via struct tags.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`
	HealthPort  int    `env:"HEALTH_PORT" envDefault:"8080"`

	// LLM
	LLMAPIKey    string `env:"LLM_API_KEY,required"`
	LLMModel     string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	RateLimitRPS int    `env:"RATE_LIMIT_RPS" envDefault:"1"`

	// Embeddings
	EmbeddingModel      string  `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	SimilarityThreshold float64 `env:"SIMILARITY_THRESHOLD" envDefault:"0.8"`

	// Social connector
	ApifyToken         string        `env:"APIFY_TOKEN"`
	ApifyBaseURL       string        `env:"APIFY_BASE_URL" envDefault:"https://api.apify.com"`
	ProfileActorID     string        `env:"APIFY_PROFILE_ACTOR_ID" envDefault:"H2ZIBUsxwkvDbXzqG"`
	PostsActorID       string        `env:"APIFY_POSTS_ACTOR_ID" envDefault:"nH2AHrwxeTRJoN5hX"`
	PostsFetchLimit    int           `env:"POSTS_FETCH_LIMIT" envDefault:"10"`
	SocialFetchTimeout time.Duration `env:"SOCIAL_FETCH_TIMEOUT" envDefault:"5m"`

	// Evidence retrieval
	EvidenceBaseURL     string        `env:"EVIDENCE_BASE_URL" envDefault:"https://eutils.ncbi.nlm.nih.gov"`
	EvidenceDelay       time.Duration `env:"EVIDENCE_DELAY" envDefault:"4s"`
	EvidenceCacheTTL    time.Duration `env:"EVIDENCE_CACHE_TTL" envDefault:"1h"`
	ArticlesPerClaim    int           `env:"ARTICLES_PER_CLAIM" envDefault:"8"`
	EvidenceHTTPTimeout time.Duration `env:"EVIDENCE_HTTP_TIMEOUT" envDefault:"30s"`

	// Verification worker
	WorkerPollInterval time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"10m"`

	// Database pool
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"1"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
