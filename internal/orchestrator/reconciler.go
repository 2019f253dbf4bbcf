package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/fractionlabs/vault-engine/internal/adapter"
	"github.com/fractionlabs/vault-engine/internal/domain"
	"github.com/fractionlabs/vault-engine/internal/logger"
	"github.com/fractionlabs/vault-engine/internal/messaging"
	"github.com/fractionlabs/vault-engine/internal/store"
	"github.com/fractionlabs/vault-engine/internal/store/schema"
	"github.com/fractionlabs/vault-engine/internal/sweeper"
)

// ReconcilerSweeperConfig holds configuration for the reconciliation sweeper
type ReconcilerSweeperConfig struct {
	BatchSize      int           // Transactions to reconcile per cycle
	WorkerPoolSize int           // Concurrent vault workers
	SweepInterval  time.Duration // Time to sleep between sweep cycles
}

// reconcilerSweeper implements the Sweeper interface for transaction reconciliation
type reconcilerSweeper struct {
	config       *ReconcilerSweeperConfig
	store        store.Store
	orchestrator Orchestrator
	publisher    messaging.Publisher
	pool         pond.Pool
	clock        adapter.Clock
	running      atomic.Bool
	stopChan     chan struct{}
	stoppedCh    chan struct{}
}

// NewReconcilerSweeper creates a new transaction reconciliation sweeper
func NewReconcilerSweeper(
	config *ReconcilerSweeperConfig,
	st store.Store,
	orch Orchestrator,
	publisher messaging.Publisher,
	clock adapter.Clock,
) sweeper.Sweeper {
	return &reconcilerSweeper{
		config:       config,
		store:        st,
		orchestrator: orch,
		publisher:    publisher,
		clock:        clock,
		stopChan:     make(chan struct{}),
		stoppedCh:    make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *reconcilerSweeper) Name() string {
	return "tx-reconciler-sweeper"
}

// Start begins the sweeper's main loop
func (s *reconcilerSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh) // Signal that we've stopped
	}()

	logger.InfoCtx(ctx, "Starting transaction reconciliation sweeper",
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
		zap.Duration("sweep_interval", s.config.SweepInterval),
	)

	// Create worker pool
	s.pool = pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.BatchSize),
		pond.WithContext(ctx),
	)

	// Continuous loop - stops when context is canceled or stop is requested
	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Reconciliation sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			s.cleanup()
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Reconciliation sweeper stop requested")
			s.cleanup()
			return nil
		default:
			if err := s.runSweepCycle(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
			}
		}
	}
}

// cleanup stops the worker pool and waits for tasks to complete
func (s *reconcilerSweeper) cleanup() {
	if s.pool != nil {
		s.pool.StopAndWait()
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *reconcilerSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping reconciliation sweeper")
	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Reconciliation sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Reconciliation sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle reconciles one batch of non-terminal transactions. Transactions
// are grouped per vault and each vault's transactions are applied sequentially
// in submission order, so in-vault aggregate updates see confirmations in the
// order they were broadcast. Vault groups run concurrently.
func (s *reconcilerSweeper) runSweepCycle(ctx context.Context) error {
	startTime := s.clock.Now()

	transactions, err := s.store.ListReconcilableTransactions(ctx, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list reconcilable transactions: %w", err)
	}

	if len(transactions) == 0 {
		if !s.sleep(ctx, s.config.SweepInterval) {
			return ctx.Err() // Context canceled during sleep
		}
		return nil
	}

	logger.InfoCtx(ctx, "Found transactions to reconcile", zap.Int("count", len(transactions)))

	groups := groupByVault(transactions)

	var confirmedCount, errorCount atomic.Int32
	var eventsMu sync.Mutex
	var pendingEvents []domain.Event

	for _, group := range groups {
		s.pool.Submit(func() {
			for i := range group {
				tx := group[i]
				events, err := s.orchestrator.Reconcile(ctx, tx.ID)
				if err != nil {
					errorCount.Add(1)
					logger.ErrorCtx(ctx, err,
						zap.String("transaction_id", tx.ID),
						zap.Stringp("vault_id", tx.VaultID),
					)
					// One transaction's failure must not block the rest of the
					// vault's queue unless ordering matters; a gateway outage
					// does, so stop this vault's group for the cycle
					if errors.Is(err, domain.ErrGatewayUnavailable) {
						return
					}
					continue
				}
				if len(events) > 0 {
					confirmedCount.Add(1)
					eventsMu.Lock()
					pendingEvents = append(pendingEvents, events...)
					eventsMu.Unlock()
				}
			}
		})
	}

	// Wait for all groups to complete
	s.pool.StopAndWait()

	if err := s.publishEventsWithRetry(ctx, pendingEvents); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("CRITICAL: failed to publish settlement events after retries: %w", err),
			zap.Int("event_count", len(pendingEvents)),
		)
	}

	// Recreate pool for next cycle
	s.pool = pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.BatchSize),
		pond.WithContext(ctx),
	)

	logger.InfoCtx(ctx, "Reconciliation cycle completed",
		zap.Duration("duration", s.clock.Since(startTime)),
		zap.Int("total", len(transactions)),
		zap.Int32("with_events", confirmedCount.Load()),
		zap.Int32("errors", errorCount.Load()),
	)

	if !s.sleep(ctx, s.config.SweepInterval) {
		return ctx.Err()
	}
	return nil
}

// groupByVault partitions transactions into per-vault groups, preserving the
// store's submission order inside each group. Vault-less transactions each get
// their own group since nothing orders them.
func groupByVault(transactions []schema.Transaction) [][]schema.Transaction {
	var groups [][]schema.Transaction
	index := make(map[string]int)

	for _, tx := range transactions {
		if tx.VaultID == nil {
			groups = append(groups, []schema.Transaction{tx})
			continue
		}
		i, ok := index[*tx.VaultID]
		if !ok {
			index[*tx.VaultID] = len(groups)
			groups = append(groups, []schema.Transaction{tx})
			continue
		}
		groups[i] = append(groups[i], tx)
	}
	return groups
}

// publishEventsWithRetry publishes collected settlement events with
// exponential backoff retry
func (s *reconcilerSweeper) publishEventsWithRetry(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Second
	b.MaxInterval = 1 * time.Minute
	b.MaxElapsedTime = 10 * time.Minute
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5

	remaining := events
	operation := func() error {
		for len(remaining) > 0 {
			if err := s.publisher.PublishEvent(ctx, &remaining[0]); err != nil {
				return err
			}
			remaining = remaining[1:]
		}
		return nil
	}

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Event publish failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notifyOnError); err != nil {
		return fmt.Errorf("failed after %d attempts: %w", attemptCount, err)
	}
	return nil
}

// sleep sleeps for the given duration but can be interrupted by context
// cancellation. Returns true if sleep completed normally.
func (s *reconcilerSweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}
