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
	"github.com/fractionlabs/vault-engine/internal/logger"
	"github.com/fractionlabs/vault-engine/internal/orchestrator"
	"github.com/fractionlabs/vault-engine/internal/providers/anvil"
	"github.com/fractionlabs/vault-engine/internal/providers/blockfrost"
	"github.com/fractionlabs/vault-engine/internal/providers/cardano"
	"github.com/fractionlabs/vault-engine/internal/providers/jetstream"
	"github.com/fractionlabs/vault-engine/internal/providers/pricing"
	"github.com/fractionlabs/vault-engine/internal/store"
	"github.com/fractionlabs/vault-engine/internal/treasury"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadReconcilerConfig(*configFile, *envPath)
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
			"service": "tx-reconciler",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Transaction Reconciler")

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

	// Initialize the ledger gateway: builder service + chain index
	builderClient := anvil.NewClient(anvil.Config{
		BaseURL: cfg.Anvil.BaseURL,
		APIKey:  cfg.Anvil.APIKey,
	}, httpClient)
	indexClient := blockfrost.NewClient(blockfrost.Config{
		BaseURL:   cfg.Blockfrost.BaseURL,
		ProjectID: cfg.Blockfrost.ProjectID,
	}, httpClient)
	gateway := cardano.NewGateway(builderClient, indexClient)

	// Initialize treasury custody
	keyManager := treasury.NewAESKeyManager(cfg.Treasury.MasterSecret, cfg.Treasury.KeyID)
	signer := treasury.NewEd25519Signer(cfg.Treasury.AddressPrefix)
	treasuryCustody := treasury.NewCustody(dataStore, keyManager, signer)

	// Initialize the asset custody ledger and claims engine
	priceLookup := pricing.NewClient(pricing.Config{
		BaseURL: cfg.Pricing.BaseURL,
		APIKey:  cfg.Pricing.APIKey,
	}, httpClient)
	assetLedger := custody.NewLedger(dataStore, priceLookup)
	claimsEngine := claims.NewEngine(dataStore, clock)

	// Initialize the transaction orchestrator
	orch := orchestrator.NewOrchestrator(orchestrator.Config{
		ConfirmationDepth:    cfg.Settlement.ConfirmationDepth,
		StuckAfter:           cfg.Settlement.StuckAfter,
		StuckRecheckInterval: cfg.Settlement.StuckRecheckInterval,
	}, dataStore, gateway, assetLedger, claimsEngine, treasuryCustody, clock)

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

	// Initialize the reconciliation sweeper
	sweeperConfig := &orchestrator.ReconcilerSweeperConfig{
		BatchSize:      cfg.Reconciler.BatchSize,
		WorkerPoolSize: cfg.Reconciler.Worker.WorkerPoolSize,
		SweepInterval:  cfg.Reconciler.SweepInterval,
	}
	reconciler := orchestrator.NewReconcilerSweeper(sweeperConfig, dataStore, orch, publisher, clock)

	logger.InfoCtx(ctx, "Initialized reconciliation sweeper",
		zap.Int("batch_size", cfg.Reconciler.BatchSize),
		zap.Int("worker_pool_size", cfg.Reconciler.Worker.WorkerPoolSize),
		zap.Duration("sweep_interval", cfg.Reconciler.SweepInterval),
		zap.Uint64("confirmation_depth", cfg.Settlement.ConfirmationDepth),
	)

	// Start the sweeper in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := reconciler.Start(ctx); err != nil {
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

	if err := reconciler.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.InfoCtx(shutdownCtx, "Transaction reconciler stopped")
}
