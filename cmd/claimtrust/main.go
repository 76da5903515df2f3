package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/verihealth/claimtrust/internal/app"
	"github.com/verihealth/claimtrust/internal/platform/config"
	db "github.com/verihealth/claimtrust/internal/storage"
)

func main() {
	mode := flag.String("mode", "", "Service mode (register, verify, worker, claim)")
	name := flag.String("name", "", "Influencer name (for register mode)")
	slug := flag.String("influencer", "", "Influencer slug (for claim mode)")
	claim := flag.String("claim", "", "Claim text (for claim mode)")
	categories := flag.String("categories", "", "Comma-separated claim categories (for claim mode)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolOpts := db.PoolOptions{
		MaxConns:          cfg.DBMaxConnections,
		MinConns:          cfg.DBMinConnections,
		MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
		MaxConnLifetime:   cfg.DBMaxConnLifetime,
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
	}

	database, err := db.NewWithOptions(ctx, cfg.PostgresDSN, poolOpts, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	application := app.New(cfg, database, &logger)

	// Start health server in background
	go func() {
		if err := application.StartHealthServer(ctx); err != nil {
			logger.Error().Err(err).Msg("health check server error")
		}
	}()

	if err := runMode(ctx, application, *mode, *name, *slug, *claim, *categories); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func runMode(ctx context.Context, application *app.App, mode, name, slug, claim, categories string) error {
	switch mode {
	case "register":
		return application.RunRegister(ctx, name)
	case "verify":
		return application.RunVerify(ctx)
	case "worker":
		return application.RunWorker(ctx)
	case "claim":
		return application.AddClaim(ctx, slug, claim, splitCategories(categories))
	default:
		log.Fatalf("Usage: %s --mode=[register|verify|worker|claim]", os.Args[0])

		return nil
	}
}

func splitCategories(categories string) []string {
	if categories == "" {
		return nil
	}

	var out []string

	for _, c := range strings.Split(categories, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}

	return out
}
