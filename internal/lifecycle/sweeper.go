package lifecycle

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
	"github.com/fractionlabs/vault-engine/internal/custody"
	"github.com/fractionlabs/vault-engine/internal/domain"
	"github.com/fractionlabs/vault-engine/internal/logger"
	"github.com/fractionlabs/vault-engine/internal/messaging"
	"github.com/fractionlabs/vault-engine/internal/store"
	"github.com/fractionlabs/vault-engine/internal/store/schema"
	"github.com/fractionlabs/vault-engine/internal/sweeper"
)

// SweeperConfig holds configuration for the lifecycle sweeper
type SweeperConfig struct {
	BatchSize      int           // Vaults to evaluate per cycle
	WorkerPoolSize int           // Concurrent vault workers
	SweepInterval  time.Duration // Time to sleep between sweep cycles
	// RevalueBefore re-prices a vault's assets when its last sweep valuation
	// is older than this
	RevalueBefore time.Duration
	// MaxRecipientsPerTx caps how many recipients one distribution
	// transaction carries; larger payouts split into batches
	MaxRecipientsPerTx int
}

// lifecycleSweeper implements the Sweeper interface for vault phase transitions
type lifecycleSweeper struct {
	config    *SweeperConfig
	store     store.Store
	machine   Machine
	ledger    custody.Ledger
	publisher messaging.Publisher
	pool      pond.Pool
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}

	// lastValuation tracks per-vault valuation refresh times across cycles
	lastValuation sync.Map
}

// NewSweeper creates a new vault lifecycle sweeper
func NewSweeper(
	config *SweeperConfig,
	st store.Store,
	machine Machine,
	assetLedger custody.Ledger,
	publisher messaging.Publisher,
	clock adapter.Clock,
) sweeper.Sweeper {
	return &lifecycleSweeper{
		config:    config,
		store:     st,
		machine:   machine,
		ledger:    assetLedger,
		publisher: publisher,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *lifecycleSweeper) Name() string {
	return "vault-lifecycle-sweeper"
}

// Start begins the sweeper's main loop
func (s *lifecycleSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh) // Signal that we've stopped
	}()

	logger.InfoCtx(ctx, "Starting vault lifecycle sweeper",
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
			logger.InfoCtx(ctx, "Lifecycle sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			s.cleanup()
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Lifecycle sweeper stop requested")
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
func (s *lifecycleSweeper) cleanup() {
	if s.pool != nil {
		s.pool.StopAndWait()
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *lifecycleSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping lifecycle sweeper")
	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Lifecycle sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Lifecycle sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle evaluates one batch of active vaults. Each vault is an
// isolated unit of work: one vault's evaluation error never aborts the sweep
// for the others.
func (s *lifecycleSweeper) runSweepCycle(ctx context.Context) error {
	startTime := s.clock.Now()

	vaults, err := s.store.ListActiveVaults(ctx, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list active vaults: %w", err)
	}

	if len(vaults) == 0 {
		if !s.sleep(ctx, s.config.SweepInterval) {
			return ctx.Err() // Context canceled during sleep
		}
		return nil
	}

	logger.InfoCtx(ctx, "Evaluating active vaults", zap.Int("count", len(vaults)))

	var advancedCount, failedCount, errorCount atomic.Int32
	var eventsMu sync.Mutex
	var pendingEvents []domain.Event

	for i := range vaults {
		vault := vaults[i]
		s.pool.Submit(func() {
			events, outcome, err := s.sweepVault(ctx, &vault)
			if err != nil {
				errorCount.Add(1)
				logger.ErrorCtx(ctx, err, zap.String("vault_id", vault.ID))
				return
			}
			switch outcome {
			case ActionAdvance:
				advancedCount.Add(1)
			case ActionFail:
				failedCount.Add(1)
			}
			if len(events) > 0 {
				eventsMu.Lock()
				pendingEvents = append(pendingEvents, events...)
				eventsMu.Unlock()
			}
		})
	}

	// Wait for all evaluations to complete
	s.pool.StopAndWait()

	if err := s.publishEventsWithRetry(ctx, pendingEvents); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("CRITICAL: failed to publish lifecycle events after retries: %w", err),
			zap.Int("event_count", len(pendingEvents)),
		)
	}

	// Recreate pool for next cycle
	s.pool = pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.BatchSize),
		pond.WithContext(ctx),
	)

	logger.InfoCtx(ctx, "Lifecycle cycle completed",
		zap.Duration("duration", s.clock.Since(startTime)),
		zap.Int("total", len(vaults)),
		zap.Int32("advanced", advancedCount.Load()),
		zap.Int32("failed", failedCount.Load()),
		zap.Int32("errors", errorCount.Load()),
	)

	if !s.sleep(ctx, s.config.SweepInterval) {
		return ctx.Err()
	}
	return nil
}

// sweepVault evaluates and applies one vault's transition. A version conflict
// means the reconciler moved the vault first; the next cycle re-evaluates from
// fresh state rather than retrying inside the sweep.
func (s *lifecycleSweeper) sweepVault(ctx context.Context, vault *schema.Vault) ([]domain.Event, Action, error) {
	s.maybeRefreshValuations(ctx, vault)

	totals, err := s.ledger.VaultTotals(ctx, vault.ID)
	if err != nil {
		return nil, ActionStay, fmt.Errorf("failed to aggregate totals for vault %s: %w", vault.ID, err)
	}

	decision := s.machine.Evaluate(vault, totals, s.clock.Now())
	if decision.Action == ActionStay {
		events, err := s.startDistributionIfDue(ctx, vault)
		if err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				logger.InfoCtx(ctx, "Vault moved concurrently, deferring to next cycle",
					zap.String("vault_id", vault.ID),
				)
				return nil, ActionStay, nil
			}
			return nil, ActionStay, err
		}
		return events, ActionStay, nil
	}

	events, err := s.machine.Apply(ctx, vault, decision)
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			logger.InfoCtx(ctx, "Vault moved concurrently, deferring to next cycle",
				zap.String("vault_id", vault.ID),
			)
			return nil, ActionStay, nil
		}
		return nil, decision.Action, err
	}

	if decision.Next == schema.VaultStatusTerminating {
		distEvents, err := s.startDistributionIfDue(ctx, vault)
		if err != nil {
			// The advance itself stands; the next cycle retries the kickoff
			// since the vault still has no batches assigned
			logger.ErrorCtx(ctx, err, zap.String("vault_id", vault.ID))
		} else {
			events = append(events, distEvents...)
		}
	}
	return events, decision.Action, nil
}

// startDistributionIfDue kicks off wind-down payouts for a terminating
// vault. Runs every cycle the vault stays terminating: it resumes an
// interrupted kickoff and re-batches claims a failed distribution returned
// to the pool, and is a no-op when nothing is outstanding.
func (s *lifecycleSweeper) startDistributionIfDue(ctx context.Context, vault *schema.Vault) ([]domain.Event, error) {
	if vault.Status.Normalize() != schema.VaultStatusTerminating {
		return nil, nil
	}
	return s.machine.StartDistribution(ctx, vault, s.config.MaxRecipientsPerTx)
}

// maybeRefreshValuations re-prices the vault's custody when its last refresh
// is stale. Pricing failures only delay revaluation; evaluation proceeds with
// the stored values.
func (s *lifecycleSweeper) maybeRefreshValuations(ctx context.Context, vault *schema.Vault) {
	if s.config.RevalueBefore <= 0 {
		return
	}
	if last, ok := s.lastValuation.Load(vault.ID); ok {
		if s.clock.Since(last.(time.Time)) < s.config.RevalueBefore {
			return
		}
	}

	updated, err := s.ledger.RefreshValuations(ctx, vault.ID)
	if err != nil {
		logger.WarnCtx(ctx, "Valuation refresh failed",
			zap.String("vault_id", vault.ID),
			zap.Error(err),
		)
		return
	}
	s.lastValuation.Store(vault.ID, s.clock.Now())
	if updated > 0 {
		logger.InfoCtx(ctx, "Refreshed asset valuations",
			zap.String("vault_id", vault.ID),
			zap.Int("updated", updated),
		)
	}
}

// publishEventsWithRetry publishes collected lifecycle events with exponential
// backoff retry
func (s *lifecycleSweeper) publishEventsWithRetry(ctx context.Context, events []domain.Event) error {
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
func (s *lifecycleSweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}
