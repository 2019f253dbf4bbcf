package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fractionlabs/vault-engine/internal/domain"
	"github.com/fractionlabs/vault-engine/internal/lifecycle"
	"github.com/fractionlabs/vault-engine/internal/logger"
	"github.com/fractionlabs/vault-engine/internal/mocks"
	"github.com/fractionlabs/vault-engine/internal/store/schema"
	"github.com/fractionlabs/vault-engine/internal/sweeper"
)

// testSweeperMocks contains all the mocks needed for testing the sweeper
type testSweeperMocks struct {
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	machine   *mocks.MockMachine
	ledger    *mocks.MockLedger
	publisher *mocks.MockPublisher
	clock     *mocks.MockClock
	sweeper   sweeper.Sweeper
}

func setupTestSweeper(t *testing.T, config *lifecycle.SweeperConfig) *testSweeperMocks {
	err := logger.Initialize(logger.Config{Debug: true})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctrl := gomock.NewController(t)
	tm := &testSweeperMocks{
		ctrl:      ctrl,
		store:     mocks.NewMockStore(ctrl),
		machine:   mocks.NewMockMachine(ctrl),
		ledger:    mocks.NewMockLedger(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		clock:     mocks.NewMockClock(ctrl),
	}

	// The sweep loop parks in sleep between cycles; a channel that never
	// fires keeps it there until the test calls Stop
	tm.clock.EXPECT().Now().Return(time.Now()).AnyTimes()
	tm.clock.EXPECT().Since(gomock.Any()).Return(time.Second).AnyTimes()
	tm.clock.EXPECT().After(gomock.Any()).Return(make(chan time.Time)).AnyTimes()

	tm.sweeper = lifecycle.NewSweeper(config, tm.store, tm.machine, tm.ledger, tm.publisher, tm.clock)
	return tm
}

func tearDownTestSweeper(tm *testSweeperMocks) {
	tm.ctrl.Finish()
}

func testSweeperConfig() *lifecycle.SweeperConfig {
	return &lifecycle.SweeperConfig{
		BatchSize:          10,
		WorkerPoolSize:     2,
		SweepInterval:      time.Minute,
		MaxRecipientsPerTx: 25,
	}
}

// runOneCycle starts the sweeper, waits for the cycle to reach the given sync
// point, then stops it and returns Start's error
func runOneCycle(t *testing.T, tm *testSweeperMocks, reached <-chan struct{}) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- tm.sweeper.Start(context.Background())
	}()

	select {
	case <-reached:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep cycle did not reach the sync point")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tm.sweeper.Stop(stopCtx))

	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not shut down")
		return nil
	}
}

func TestSweeper_Name(t *testing.T) {
	tm := setupTestSweeper(t, testSweeperConfig())
	defer tearDownTestSweeper(tm)

	assert.Equal(t, "vault-lifecycle-sweeper", tm.sweeper.Name())
}

func TestSweeper_Stop_WhenNotRunning(t *testing.T) {
	tm := setupTestSweeper(t, testSweeperConfig())
	defer tearDownTestSweeper(tm)

	assert.NoError(t, tm.sweeper.Stop(context.Background()))
}

func TestSweeper_AdvancesVaultAndPublishes(t *testing.T) {
	tm := setupTestSweeper(t, testSweeperConfig())
	defer tearDownTestSweeper(tm)

	vaults := []schema.Vault{{ID: "v1", Status: schema.VaultStatusPublished}}
	decision := lifecycle.Decision{Action: lifecycle.ActionAdvance, Next: schema.VaultStatusContribution}
	events := []domain.Event{{EventID: "e1", Type: domain.EventVaultLaunched, VaultID: "v1"}}

	tm.store.EXPECT().ListActiveVaults(gomock.Any(), 10).Return(vaults, nil)
	tm.ledger.EXPECT().VaultTotals(gomock.Any(), "v1").Return(emptyTotals(), nil)
	tm.machine.EXPECT().Evaluate(gomock.Any(), gomock.Any(), gomock.Any()).Return(decision)
	tm.machine.EXPECT().Apply(gomock.Any(), gomock.Any(), decision).Return(events, nil)

	published := make(chan struct{})
	tm.publisher.EXPECT().
		PublishEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.Event) error {
			assert.Equal(t, "e1", event.EventID)
			close(published)
			return nil
		})

	assert.NoError(t, runOneCycle(t, tm, published))
}

func TestSweeper_KicksOffDistributionForTerminatingVault(t *testing.T) {
	tm := setupTestSweeper(t, testSweeperConfig())
	defer tearDownTestSweeper(tm)

	vaults := []schema.Vault{{ID: "v1", Status: schema.VaultStatusTerminating}}
	events := []domain.Event{{EventID: "e1", Type: domain.EventClaimAvailable, VaultID: "v1"}}

	tm.store.EXPECT().ListActiveVaults(gomock.Any(), 10).Return(vaults, nil)
	tm.ledger.EXPECT().VaultTotals(gomock.Any(), "v1").Return(emptyTotals(), nil)
	tm.machine.EXPECT().
		Evaluate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(lifecycle.Decision{Action: lifecycle.ActionStay})
	tm.machine.EXPECT().
		StartDistribution(gomock.Any(), gomock.Any(), 25).
		Return(events, nil)

	published := make(chan struct{})
	tm.publisher.EXPECT().
		PublishEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.Event) error {
			assert.Equal(t, domain.EventClaimAvailable, event.Type)
			close(published)
			return nil
		})

	assert.NoError(t, runOneCycle(t, tm, published))
}

func TestSweeper_TerminatingVaultWithNothingOutstandingPublishesNothing(t *testing.T) {
	tm := setupTestSweeper(t, testSweeperConfig())
	defer tearDownTestSweeper(tm)

	vaults := []schema.Vault{{
		ID:                       "v1",
		Status:                   schema.VaultStatusTerminating,
		TotalDistributionBatches: 3,
		CurrentDistributionBatch: 1,
	}}

	tm.store.EXPECT().ListActiveVaults(gomock.Any(), 10).Return(vaults, nil)
	tm.ledger.EXPECT().VaultTotals(gomock.Any(), "v1").Return(emptyTotals(), nil)
	tm.machine.EXPECT().
		Evaluate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(lifecycle.Decision{Action: lifecycle.ActionStay})

	// The kickoff check runs every cycle the vault stays terminating so an
	// interrupted kickoff or a returned batch gets picked up; with batches in
	// flight and no claims outstanding it is a no-op
	started := make(chan struct{})
	tm.machine.EXPECT().
		StartDistribution(gomock.Any(), gomock.Any(), 25).
		DoAndReturn(func(context.Context, *schema.Vault, int) ([]domain.Event, error) {
			close(started)
			return nil, nil
		})

	// No publish expectation: nothing outstanding means no events
	assert.NoError(t, runOneCycle(t, tm, started))
}

func TestSweeper_VersionConflictDefersToNextCycle(t *testing.T) {
	tm := setupTestSweeper(t, testSweeperConfig())
	defer tearDownTestSweeper(tm)

	vaults := []schema.Vault{{ID: "v1", Status: schema.VaultStatusContribution}}
	decision := lifecycle.Decision{Action: lifecycle.ActionAdvance, Next: schema.VaultStatusAcquire}

	tm.store.EXPECT().ListActiveVaults(gomock.Any(), 10).Return(vaults, nil)
	tm.ledger.EXPECT().VaultTotals(gomock.Any(), "v1").Return(emptyTotals(), nil)
	tm.machine.EXPECT().Evaluate(gomock.Any(), gomock.Any(), gomock.Any()).Return(decision)

	applied := make(chan struct{})
	tm.machine.EXPECT().
		Apply(gomock.Any(), gomock.Any(), decision).
		DoAndReturn(func(context.Context, *schema.Vault, lifecycle.Decision) ([]domain.Event, error) {
			close(applied)
			return nil, domain.ErrVersionConflict
		})

	// No publish expectation: a deferred vault produces no events
	assert.NoError(t, runOneCycle(t, tm, applied))
}

func TestSweeper_RefreshesStaleValuations(t *testing.T) {
	config := testSweeperConfig()
	config.RevalueBefore = time.Hour
	tm := setupTestSweeper(t, config)
	defer tearDownTestSweeper(tm)

	vaults := []schema.Vault{{ID: "v1", Status: schema.VaultStatusLocked}}

	tm.store.EXPECT().ListActiveVaults(gomock.Any(), 10).Return(vaults, nil)
	tm.ledger.EXPECT().RefreshValuations(gomock.Any(), "v1").Return(2, nil)
	tm.ledger.EXPECT().VaultTotals(gomock.Any(), "v1").Return(emptyTotals(), nil)

	evaluated := make(chan struct{})
	tm.machine.EXPECT().
		Evaluate(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(*schema.Vault, *domain.VaultTotals, time.Time) lifecycle.Decision {
			close(evaluated)
			return lifecycle.Decision{Action: lifecycle.ActionStay}
		})

	assert.NoError(t, runOneCycle(t, tm, evaluated))
}
