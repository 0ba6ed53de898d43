package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ringscope/ringscope-backend/internal/ingest"
	"github.com/ringscope/ringscope-backend/internal/mempool"
	"github.com/ringscope/ringscope-backend/internal/metrics"
	"github.com/ringscope/ringscope-backend/internal/model"
	"github.com/ringscope/ringscope-backend/internal/monero"
	"github.com/ringscope/ringscope-backend/internal/repository/postgres"
	"github.com/ringscope/ringscope-backend/pkg/limiter"
)

type config struct {
	PostgresDSN    string        `long:"postgres-dsn" env:"INGESTOR_POSTGRES_DSN" description:"Postgres DSN"`
	RPCURL         string        `long:"rpc-url" env:"INGESTOR_RPC_URL" description:"monerod RPC URL" default:"http://127.0.0.1:18081"`
	ZMQAddr        string        `long:"zmq-addr" env:"INGESTOR_ZMQ_ADDR" description:"monerod zmq-pub address"`
	Network        model.Network `long:"network" env:"INGESTOR_NETWORK" description:"network name" default:"mainnet"`
	FinalityWindow int64         `long:"finality-window" env:"INGESTOR_FINALITY_WINDOW" description:"blocks before a height is final" default:"30"`
	Concurrency    int           `long:"ingest-concurrency" env:"INGESTOR_CONCURRENCY" description:"base fetch worker count" default:"8"`
	RPCRPS         int           `long:"rpc-rps" env:"INGESTOR_RPC_RPS" description:"steady-state daemon requests per second" default:"10"`
	Bootstrap      bool          `long:"bootstrap" env:"INGESTOR_BOOTSTRAP" description:"catch-up mode: elevated rate, deferred analytics"`
	StartHeight    int64         `long:"start-height" env:"INGESTOR_START_HEIGHT" description:"lowest height to ingest" default:"0"`
	Limit          int64         `long:"limit" env:"INGESTOR_LIMIT" description:"stop after this many blocks (0 = unbounded)" default:"0"`
	MetricsAddr    string        `long:"metrics-addr" env:"INGESTOR_METRICS_ADDR" description:"address for metrics server" default:":2112"`
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
		logger.Fatal("ingestor failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	repo, err := postgres.NewRepository(ctx, cfg.PostgresDSN, metrics.NewRepository(cfg.Network))
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer repo.Close()

	gate := limiter.New(cfg.RPCRPS, cfg.Bootstrap)
	concurrency := cfg.Concurrency
	if cfg.Bootstrap {
		concurrency = limiter.EffectiveConcurrency(cfg.Concurrency, true)
	}

	client := monero.NewClient(
		cfg.RPCURL,
		gate,
		metrics.NewRPCClient(cfg.Network),
		logger.Sugar(),
		concurrency,
	)

	caps, err := client.ProbeCapabilities(ctx)
	if err != nil {
		return fmt.Errorf("probe daemon capabilities: %w", err)
	}
	logger.Info("daemon capabilities probed", zap.Bool("headers_range", caps.HeadersRange))

	source := monero.NewSource(client, monero.NewHeaderFetcher(client, caps))

	blockSignal, txSignal, err := startChainSignals(ctx, cfg.ZMQAddr, logger)
	if err != nil {
		return fmt.Errorf("start chain signals: %w", err)
	}

	db := blockStore{repo}
	sentinel := ingest.NewSentinel(db, source, cfg.FinalityWindow, logger, metrics.NewReorg(cfg.Network))
	svc := ingest.NewService(
		ingest.Config{
			FinalityWindow: cfg.FinalityWindow,
			Concurrency:    concurrency,
			Bootstrap:      cfg.Bootstrap,
			StartHeight:    cfg.StartHeight,
			Limit:          cfg.Limit,
		},
		source,
		db,
		sentinel,
		blockSignal,
		logger.Named("ingest"),
		metrics.NewIngestor(cfg.Network),
	)
	watcher := mempool.NewWatcher(
		client,
		repo,
		txSignal,
		logger.Named("mempool"),
		metrics.NewMempool(cfg.Network),
	)

	errCh := make(chan error, 2)
	go func() {
		errCh <- svc.Run(ctx)
	}()
	go func() {
		errCh <- watcher.Run(ctx)
	}()

	err = <-errCh
	cancel()
	<-errCh
	return err
}

// blockStore adapts the repository's concrete transaction type to the
// pipeline's interface.
type blockStore struct {
	*postgres.Repository
}

func (s blockStore) WithinBlockTx(ctx context.Context, fn func(tx ingest.BlockTx) error) error {
	return s.Repository.WithinBlockTx(ctx, func(tx *postgres.Tx) error {
		return fn(tx)
	})
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
