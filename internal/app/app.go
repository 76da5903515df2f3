// Package app provides the main application bootstrap and runtime wiring.
//
// The App type assembles the pipeline from configuration and exposes the
// operational modes:
//
//   - Register mode: register an influencer and run their pipeline once
//   - Verify mode: verify the unverified claim backlog once
//   - Worker mode: poll the backlog and verify continuously
//   - Claim mode: add an operator-supplied claim for an influencer
//
// Each mode runs independently, sharing the same database and config.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/verihealth/claimtrust/internal/core/embeddings"
	"github.com/verihealth/claimtrust/internal/core/llm"
	"github.com/verihealth/claimtrust/internal/evidence"
	"github.com/verihealth/claimtrust/internal/ingest/social"
	"github.com/verihealth/claimtrust/internal/pipeline"
	"github.com/verihealth/claimtrust/internal/platform/config"
	"github.com/verihealth/claimtrust/internal/platform/observability"
	"github.com/verihealth/claimtrust/internal/platform/worker"
	"github.com/verihealth/claimtrust/internal/process/claims"
	"github.com/verihealth/claimtrust/internal/process/dedup"
	"github.com/verihealth/claimtrust/internal/process/extract"
	"github.com/verihealth/claimtrust/internal/process/verify"
	db "github.com/verihealth/claimtrust/internal/storage"
)

const verifyWorkerName = "claim-verifier"

// App holds the application dependencies and provides methods to run
// different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	srv := observability.NewServer(a.database, a.cfg.HealthPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// RunRegister registers an influencer by name and runs their pipeline to
// completion.
func (a *App) RunRegister(ctx context.Context, name string) error {
	a.logger.Info().Str("name", name).Msg("starting register mode")

	orch := a.newOrchestrator()

	profile, err := orch.Register(ctx, name)
	if err != nil {
		return fmt.Errorf("register influencer: %w", err)
	}

	if err := orch.Run(ctx, profile.ID); err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	return nil
}

// RunVerify performs a single verification pass over the backlog.
func (a *App) RunVerify(ctx context.Context) error {
	a.logger.Info().Msg("starting verify mode")

	if err := a.newOrchestrator().VerifyAll(ctx); err != nil {
		return fmt.Errorf("verify claims: %w", err)
	}

	return nil
}

// RunWorker polls the unverified backlog and verifies it continuously.
func (a *App) RunWorker(ctx context.Context) error {
	a.logger.Info().Msg("starting worker mode")

	orch := a.newOrchestrator()

	err := worker.Loop(ctx, worker.Config{
		Name:         verifyWorkerName,
		PollInterval: a.cfg.WorkerPollInterval,
		Process:      orch.VerifyAll,
		OnError: func(error) bool {
			// A failed pass leaves claims unverified; the next poll
			// retries them.
			return true
		},
		Logger: a.logger,
	})
	if err != nil {
		return fmt.Errorf("worker loop: %w", err)
	}

	return nil
}

// AddClaim records an operator-supplied claim for an influencer slug.
func (a *App) AddClaim(ctx context.Context, slug, text string, categories []string) error {
	profile, err := a.database.GetInfluencerBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("load influencer %q: %w", slug, err)
	}

	claim, err := a.newOrchestrator().AddCustomClaim(ctx, profile.ID, text, categories)
	if err != nil {
		return fmt.Errorf("add claim: %w", err)
	}

	a.logger.Info().
		Str("claim_id", claim.ID.String()).
		Str("status", claim.VerificationStatus).
		Msg("claim recorded")

	return nil
}

func (a *App) newOrchestrator() *pipeline.Orchestrator {
	llmClient := llm.NewOpenAI(llm.Config{
		APIKey:    a.cfg.LLMAPIKey,
		Model:     a.cfg.LLMModel,
		RateLimit: a.cfg.RateLimitRPS,
	}, a.logger)

	embedder := embeddings.NewOpenAI(embeddings.Config{
		APIKey:    a.cfg.LLMAPIKey,
		Model:     a.cfg.EmbeddingModel,
		RateLimit: a.cfg.RateLimitRPS,
	})

	connector := social.NewApify(social.Config{
		BaseURL:        a.cfg.ApifyBaseURL,
		Token:          a.cfg.ApifyToken,
		ProfileActorID: a.cfg.ProfileActorID,
		PostsActorID:   a.cfg.PostsActorID,
		RunTimeout:     a.cfg.SocialFetchTimeout,
	}, a.logger)

	retriever := evidence.NewPubMed(evidence.Config{
		BaseURL:     a.cfg.EvidenceBaseURL,
		HTTPTimeout: a.cfg.EvidenceHTTPTimeout,
		CacheTTL:    a.cfg.EvidenceCacheTTL,
	}, a.logger)

	oracle := embeddings.NewOracle(embedder, a.cfg.SimilarityThreshold, a.logger)

	verifier := verify.New(a.database, llmClient, retriever, verify.Options{
		ArticlesPerClaim: a.cfg.ArticlesPerClaim,
		SearchDelay:      a.cfg.EvidenceDelay,
	}, a.logger)

	return pipeline.New(
		a.database,
		connector,
		extract.New(llmClient, a.logger),
		dedup.New(oracle, a.logger),
		claims.New(a.database, embedder, a.logger),
		verifier,
		a.cfg.PostsFetchLimit,
		a.logger,
	)
}
