package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fractionlabs/vault-engine/internal/adapter"
	"github.com/fractionlabs/vault-engine/internal/claims"
	"github.com/fractionlabs/vault-engine/internal/config"
	"github.com/fractionlabs/vault-engine/internal/custody"
	"github.com/fractionlabs/vault-engine/internal/lifecycle"
	"github.com/fractionlabs/vault-engine/internal/logger"
	"github.com/fractionlabs/vault-engine/internal/providers/jetstream"
	"github.com/fractionlabs/vault-engine/internal/providers/pricing"
	"github.com/fractionlabs/vault-engine/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadLifecycleSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "lifecycle-sweeper",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Vault Lifecycle Sweeper")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	httpClient := adapter.NewHTTPClient(30 * time.Second)
	clock := adapter.NewClock()

	// Initialize price lookup and the custody ledger it feeds
	priceLookup := pricing.NewClient(pricing.Config{
		BaseURL: cfg.Pricing.BaseURL,
		APIKey:  cfg.Pricing.APIKey,
	}, httpClient)
	assetLedger := custody.NewLedger(dataStore, priceLookup)

	// Initialize claims engine and the state machine
	claimsEngine := claims.NewEngine(dataStore, clock)
	machine := lifecycle.NewMachine(dataStore, assetLedger, claimsEngine, clock)

	// Connect the event sink
	publisher, err := jetstream.NewPublisher(jetstream.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName,
	}, adapter.NewNatsJetStream())
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer publisher.Close()
	logger.InfoCtx(ctx, "Connected to NATS", zap.String("stream", cfg.NATS.StreamName))

	// Initialize the lifecycle sweeper
	sweeperConfig := &lifecycle.SweeperConfig{
		BatchSize:          cfg.Sweeper.BatchSize,
		WorkerPoolSize:     cfg.Sweeper.Worker.WorkerPoolSize,
		SweepInterval:      cfg.Sweeper.SweepInterval,
		RevalueBefore:      cfg.Sweeper.RevalueBefore,
		MaxRecipientsPerTx: cfg.Sweeper.MaxRecipientsPerTx,
	}
	lifecycleSweeper := lifecycle.NewSweeper(sweeperConfig, dataStore, machine, assetLedger, publisher, clock)

	logger.InfoCtx(ctx, "Initialized lifecycle sweeper",
		zap.Int("batch_size", cfg.Sweeper.BatchSize),
		zap.Int("worker_pool_size", cfg.Sweeper.Worker.WorkerPoolSize),
		zap.Duration("sweep_interval", cfg.Sweeper.SweepInterval),
	)

	// Start the sweeper in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := lifecycleSweeper.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the sweeper
	cancel()

	// Give the sweeper time to shut down gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()

	if err := lifecycleSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.InfoCtx(shutdownCtx, "Lifecycle sweeper stopped")
}
