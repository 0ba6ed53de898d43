package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/ringscope/ringscope-backend/internal/analytics"
	"github.com/ringscope/ringscope-backend/internal/metrics"
	"github.com/ringscope/ringscope-backend/internal/model"
	"github.com/ringscope/ringscope-backend/internal/repository/postgres"
)

type config struct {
	PostgresDSN string        `long:"postgres-dsn" env:"BACKFILL_POSTGRES_DSN" description:"Postgres DSN"`
	Network     model.Network `long:"network" env:"BACKFILL_NETWORK" description:"network name" default:"mainnet"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if cfg.PostgresDSN == "" {
		logger.Fatal("Postgres DSN is required")
	}

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("analytics backfill failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	repo, err := postgres.NewRepository(ctx, cfg.PostgresDSN, metrics.NewRepository(cfg.Network))
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer repo.Close()

	return analytics.NewBackfill(repo, logger).Run(ctx)
}
