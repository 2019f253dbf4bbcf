package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fractionlabs/vault-engine/internal/adapter"
	"github.com/fractionlabs/vault-engine/internal/claims"
	"github.com/fractionlabs/vault-engine/internal/custody"
	"github.com/fractionlabs/vault-engine/internal/domain"
	"github.com/fractionlabs/vault-engine/internal/ledger"
	"github.com/fractionlabs/vault-engine/internal/logger"
	"github.com/fractionlabs/vault-engine/internal/store"
	"github.com/fractionlabs/vault-engine/internal/store/schema"
	"github.com/fractionlabs/vault-engine/internal/treasury"
)

// Config holds the settlement policy knobs
type Config struct {
	// ConfirmationDepth is the number of confirmations required before a
	// transaction's effects are applied
	ConfirmationDepth uint64
	// StuckAfter is how long a pending/submitted transaction may stay off-chain
	// before it is marked stuck
	StuckAfter time.Duration
	// StuckRecheckInterval is the slower polling cadence for stuck transactions
	StuckRecheckInterval time.Duration
}

// CreateParams describes the transaction record to create
type CreateParams struct {
	VaultID *string
	UserID  *string
	Type    schema.TransactionType
	Amount  decimal.Decimal
	FeeAda  decimal.Decimal
	// PendingAssets are carried in metadata until confirmation materializes them
	PendingAssets []domain.PendingAssetDescriptor
	// DistributionBatch links a distribution transaction to the claim batch it pays
	DistributionBatch *int
}

// transactionMetadata is the JSON payload stored on the transaction row
type transactionMetadata struct {
	PendingAssets     []domain.PendingAssetDescriptor `json:"pending_assets,omitempty"`
	DistributionBatch *int                            `json:"distribution_batch,omitempty"`
}

// guardedTypes are operation types a vault may only have one in-flight
// transaction of at a time
var guardedTypes = map[schema.TransactionType]struct{}{
	schema.TransactionTypeMint:         {},
	schema.TransactionTypeBurn:         {},
	schema.TransactionTypeUpdateVault:  {},
	schema.TransactionTypeDistribution: {},
}

// phaseBoundTypes pins funding and payout operations to the vault phases
// that admit them. Expansion re-opens the acquire window.
var phaseBoundTypes = map[schema.TransactionType][]schema.VaultStatus{
	schema.TransactionTypeContribute:   {schema.VaultStatusContribution},
	schema.TransactionTypeAcquire:      {schema.VaultStatusAcquire, schema.VaultStatusExpansion},
	schema.TransactionTypeDistribution: {schema.VaultStatusTerminating},
}

// Orchestrator drives transaction records through their settlement state
// machine and reconciles them against the chain
//
//go:generate mockgen -source=orchestrator.go -destination=../mocks/orchestrator.go -package=mocks -mock_names=Orchestrator=MockOrchestrator
type Orchestrator interface {
	// Create inserts a new transaction record in the created status. It never
	// assigns a hash. For guarded types a vault may only have one in-flight
	// transaction; a second returns domain.ErrPendingTransactionExists.
	// Phase-bound types outside their vault's current phase return
	// domain.ErrWrongVaultPhase.
	Create(ctx context.Context, params CreateParams) (*schema.Transaction, error)
	// AttachHash moves a transaction created -> pending with its chain hash.
	// A transaction that already carries a hash fails with domain.ErrInvalidState
	// and keeps its original hash.
	AttachHash(ctx context.Context, transactionID, txHash string) (*schema.Transaction, error)
	// Submit builds, signs with the vault's treasury key, and broadcasts a
	// vault-initiated transaction. A key-management outage leaves the
	// transaction in created; the next sweep retries.
	Submit(ctx context.Context, transactionID string, spec *ledger.BuildSpec) (*schema.Transaction, error)
	// Reconcile polls the chain for one transaction and applies its settlement
	// effects. Safe to call repeatedly: confirmation side effects run exactly
	// once, guarded by the status transition. Returns events for the caller to
	// publish.
	Reconcile(ctx context.Context, transactionID string) ([]domain.Event, error)
	// Fail marks a transaction failed with the chain's rejection reason and
	// rolls reserved custody state back to its pre-attempt status
	Fail(ctx context.Context, transactionID, reason string) error
}

type orchestrator struct {
	config   Config
	store    store.Store
	gateway  ledger.Gateway
	ledger   custody.Ledger
	claims   claims.Engine
	treasury treasury.Custody
	clock    adapter.Clock
}

// NewOrchestrator creates a transaction orchestrator
func NewOrchestrator(
	cfg Config,
	st store.Store,
	gateway ledger.Gateway,
	assetLedger custody.Ledger,
	claimsEngine claims.Engine,
	treasuryCustody treasury.Custody,
	clock adapter.Clock,
) Orchestrator {
	return &orchestrator{
		config:   cfg,
		store:    st,
		gateway:  gateway,
		ledger:   assetLedger,
		claims:   claimsEngine,
		treasury: treasuryCustody,
		clock:    clock,
	}
}

func (o *orchestrator) Create(ctx context.Context, params CreateParams) (*schema.Transaction, error) {
	txType := params.Type.Normalize()

	if _, guarded := guardedTypes[txType]; guarded && params.VaultID != nil {
		pending, err := o.store.HasPendingTransaction(ctx, *params.VaultID, txType)
		if err != nil {
			return nil, err
		}
		if pending {
			return nil, fmt.Errorf("%w: vault %s already has an in-flight %s transaction", domain.ErrPendingTransactionExists, *params.VaultID, txType)
		}
	}

	if allowed, bound := phaseBoundTypes[txType]; bound && params.VaultID != nil {
		vault, err := o.store.GetVault(ctx, *params.VaultID)
		if err != nil {
			return nil, err
		}
		if !statusIn(vault.Status.Normalize(), allowed) {
			return nil, fmt.Errorf("%w: %s transactions are not accepted while vault %s is %s",
				domain.ErrWrongVaultPhase, txType, vault.ID, vault.Status.Normalize())
		}
	}

	metadata, err := json.Marshal(transactionMetadata{
		PendingAssets:     params.PendingAssets,
		DistributionBatch: params.DistributionBatch,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction metadata: %w", err)
	}

	now := o.clock.Now()
	tx := &schema.Transaction{
		ID:        uuid.NewString(),
		VaultID:   params.VaultID,
		UserID:    params.UserID,
		Type:      txType,
		Status:    schema.TransactionStatusCreated,
		Amount:    params.Amount,
		FeeAda:    params.FeeAda,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := o.store.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Created transaction",
		zap.String("transaction_id", tx.ID),
		zap.Stringp("vault_id", tx.VaultID),
		zap.String("type", string(tx.Type)),
	)
	return tx, nil
}

func (o *orchestrator) AttachHash(ctx context.Context, transactionID, txHash string) (*schema.Transaction, error) {
	tx, err := o.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.TxHash != nil {
		return nil, fmt.Errorf("%w: transaction %s already has hash %s", domain.ErrInvalidState, transactionID, *tx.TxHash)
	}

	moved, err := o.store.TransitionTransaction(ctx, transactionID,
		schema.TransactionStatusCreated, schema.TransactionStatusPending,
		&store.TransactionUpdates{TxHash: &txHash},
	)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fmt.Errorf("%w: transaction %s is %s, hash attaches only to created transactions", domain.ErrInvalidState, transactionID, tx.Status)
	}

	logger.InfoCtx(ctx, "Attached transaction hash",
		zap.String("transaction_id", transactionID),
		zap.String("tx_hash", txHash),
	)
	return o.store.GetTransaction(ctx, transactionID)
}

func (o *orchestrator) Submit(ctx context.Context, transactionID string, spec *ledger.BuildSpec) (*schema.Transaction, error) {
	tx, err := o.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Status != schema.TransactionStatusCreated {
		return nil, fmt.Errorf("%w: transaction %s is %s, only created transactions can be submitted", domain.ErrInvalidState, transactionID, tx.Status)
	}
	if tx.VaultID == nil {
		return nil, fmt.Errorf("%w: transaction %s has no vault, vault-initiated submission requires one", domain.ErrInvalidState, transactionID)
	}

	if err := validateBuildSpec(spec); err != nil {
		return nil, err
	}

	unsignedTx, err := o.gateway.Build(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction %s: %w", transactionID, err)
	}

	// A key-management outage is retryable: the record stays created and the
	// next sweep tries again
	signedTx, err := o.treasury.Sign(ctx, *tx.VaultID, unsignedTx)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction %s: %w", transactionID, err)
	}

	txHash, err := o.gateway.Submit(ctx, signedTx)
	if err != nil {
		if errors.Is(err, domain.ErrGatewayUnavailable) {
			return nil, err
		}
		// The chain rejected the transaction outright
		if failErr := o.Fail(ctx, transactionID, err.Error()); failErr != nil {
			logger.ErrorCtx(ctx, failErr, zap.String("transaction_id", transactionID))
		}
		return nil, fmt.Errorf("transaction %s rejected at submission: %w", transactionID, err)
	}

	if _, err := o.store.TransitionTransaction(ctx, transactionID,
		schema.TransactionStatusCreated, schema.TransactionStatusPending,
		&store.TransactionUpdates{TxHash: &txHash},
	); err != nil {
		return nil, err
	}
	if _, err := o.store.TransitionTransaction(ctx, transactionID,
		schema.TransactionStatusPending, schema.TransactionStatusSubmitted,
		&store.TransactionUpdates{SubmittedAt: true},
	); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Submitted transaction",
		zap.String("transaction_id", transactionID),
		zap.Stringp("vault_id", tx.VaultID),
		zap.String("tx_hash", txHash),
	)
	return o.store.GetTransaction(ctx, transactionID)
}

// validateBuildSpec rejects malformed payout addresses before any build or
// signing work happens
func validateBuildSpec(spec *ledger.BuildSpec) error {
	for _, recipient := range spec.Recipients {
		if !plausibleAddress(recipient.Address) {
			return fmt.Errorf("%w: recipient %q", domain.ErrInvalidWalletAddress, recipient.Address)
		}
	}
	if spec.ChangeAddress != "" && !plausibleAddress(spec.ChangeAddress) {
		return fmt.Errorf("%w: change address %q", domain.ErrInvalidWalletAddress, spec.ChangeAddress)
	}
	return nil
}

// plausibleAddress checks bech32 shape only; full decoding is the builder
// service's concern
func plausibleAddress(addr string) bool {
	sep := strings.LastIndex(addr, "1")
	return sep > 0 && sep < len(addr)-1
}

func statusIn(status schema.VaultStatus, allowed []schema.VaultStatus) bool {
	for _, s := range allowed {
		if status == s {
			return true
		}
	}
	return false
}

func (o *orchestrator) Reconcile(ctx context.Context, transactionID string) ([]domain.Event, error) {
	tx, err := o.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	switch tx.Status {
	case schema.TransactionStatusConfirmed, schema.TransactionStatusFailed:
		// Terminal; repeated reconciliation is a no-op
		return nil, nil
	case schema.TransactionStatusWaitingOwner, schema.TransactionStatusCreated:
		// Nothing on chain to reconcile against yet
		return nil, nil
	case schema.TransactionStatusStuck:
		// Stuck transactions are re-polled at a slower cadence
		if o.clock.Since(tx.UpdatedAt) < o.config.StuckRecheckInterval {
			return nil, nil
		}
	}

	if tx.TxHash == nil {
		return nil, fmt.Errorf("%w: transaction %s is %s without a hash", domain.ErrInvalidState, transactionID, tx.Status)
	}

	status, err := o.gateway.GetStatus(ctx, *tx.TxHash)
	if errors.Is(err, domain.ErrTxNotOnChain) {
		return nil, o.handleNotOnChain(ctx, tx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query status of transaction %s: %w", transactionID, err)
	}

	if status.Confirmations < o.config.ConfirmationDepth {
		// On chain but shallow: record the broadcast if we have not yet
		if tx.Status == schema.TransactionStatusPending {
			if _, err := o.store.TransitionTransaction(ctx, transactionID,
				schema.TransactionStatusPending, schema.TransactionStatusSubmitted,
				&store.TransactionUpdates{SubmittedAt: true},
			); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	return o.confirm(ctx, tx, status)
}

// handleNotOnChain ages a transaction that has not appeared in a block and
// marks it stuck once it exceeds the policy window. Stuck transactions are
// never auto-resubmitted; a resubmission is a new record.
func (o *orchestrator) handleNotOnChain(ctx context.Context, tx *schema.Transaction) error {
	if tx.Status == schema.TransactionStatusStuck {
		return nil
	}

	age := o.clock.Since(tx.CreatedAt)
	if tx.SubmittedAt != nil {
		age = o.clock.Since(*tx.SubmittedAt)
	}
	if age < o.config.StuckAfter {
		return nil
	}

	moved, err := o.store.TransitionTransaction(ctx, tx.ID, tx.Status, schema.TransactionStatusStuck, nil)
	if err != nil {
		return err
	}
	if moved {
		logger.WarnCtx(ctx, "Transaction marked stuck",
			zap.String("transaction_id", tx.ID),
			zap.Stringp("tx_hash", tx.TxHash),
			zap.Duration("age", age),
		)
	}
	return nil
}

// confirm applies a transaction's settlement effects exactly once. The status
// transition is the guard: only the caller that wins the conditional update
// materializes assets and touches vault aggregates.
func (o *orchestrator) confirm(ctx context.Context, tx *schema.Transaction, status *ledger.TxStatus) ([]domain.Event, error) {
	moved, err := o.store.TransitionTransaction(ctx, tx.ID, tx.Status, schema.TransactionStatusConfirmed,
		&store.TransactionUpdates{
			TxIndex:     &status.TxIndex,
			BlockHeight: &status.BlockHeight,
			ConfirmedAt: true,
		},
	)
	if err != nil {
		return nil, err
	}
	if !moved {
		// Another reconciler got here first
		return nil, nil
	}

	confirmed, err := o.store.GetTransaction(ctx, tx.ID)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Transaction confirmed",
		zap.String("transaction_id", confirmed.ID),
		zap.Stringp("vault_id", confirmed.VaultID),
		zap.String("type", string(confirmed.Type)),
		zap.Uint64("block_height", status.BlockHeight),
		zap.Uint64("tx_index", status.TxIndex),
	)

	if _, err := o.ledger.MaterializeFromTransaction(ctx, confirmed); err != nil {
		return nil, fmt.Errorf("failed to materialize assets for transaction %s: %w", confirmed.ID, err)
	}

	var events []domain.Event
	if confirmed.VaultID != nil {
		if err := o.updateVaultAggregates(ctx, *confirmed.VaultID, confirmed.Type); err != nil {
			return nil, err
		}

		if confirmed.Type == schema.TransactionTypeDistribution {
			settled, err := o.settleDistribution(ctx, confirmed)
			if err != nil {
				return nil, err
			}
			events = append(events, settled...)
		}
	}
	return events, nil
}

// updateVaultAggregates recomputes the vault's valuation caches from the
// confirmed asset set under the optimistic version lock, retrying on conflict
// with the lifecycle sweep
func (o *orchestrator) updateVaultAggregates(ctx context.Context, vaultID string, txType schema.TransactionType) error {
	operation := func() error {
		vault, err := o.store.GetVault(ctx, vaultID)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := o.ledger.RecomputeAggregates(ctx, vault); err != nil {
			return backoff.Permanent(err)
		}
		if err := o.store.UpdateVaultGuarded(ctx, vault); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 1 * time.Second
	b.MaxElapsedTime = 10 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("failed to update aggregates for vault %s after %s confirmation: %w", vaultID, txType, err)
	}
	return nil
}

// settleDistribution settles the claim batch a confirmed distribution
// transaction pays and advances the vault's batch counter
func (o *orchestrator) settleDistribution(ctx context.Context, tx *schema.Transaction) ([]domain.Event, error) {
	var meta transactionMetadata
	if len(tx.Metadata) > 0 {
		if err := json.Unmarshal(tx.Metadata, &meta); err != nil {
			return nil, fmt.Errorf("failed to decode distribution metadata: %w", err)
		}
	}
	if meta.DistributionBatch == nil {
		logger.WarnCtx(ctx, "Distribution transaction carries no batch number",
			zap.String("transaction_id", tx.ID),
		)
		return nil, nil
	}

	batchClaims, err := o.store.ListClaimsByBatch(ctx, *tx.VaultID, *meta.DistributionBatch)
	if err != nil {
		return nil, err
	}
	if len(batchClaims) == 0 {
		// A confirmed distribution must pay a known batch; an empty one means
		// the claim rows and the transaction metadata disagree
		return nil, fmt.Errorf("%w: distribution batch %d of vault %s has no claims",
			domain.ErrClaimNotFound, *meta.DistributionBatch, *tx.VaultID)
	}

	events, err := o.claims.SettleBatch(ctx, batchClaims, tx)
	if err != nil {
		return nil, err
	}

	batch := *meta.DistributionBatch
	err = o.withVaultLock(ctx, *tx.VaultID, func(vault *schema.Vault) error {
		if batch > vault.CurrentDistributionBatch && batch <= vault.TotalDistributionBatches {
			vault.CurrentDistributionBatch = batch
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// withVaultLock loads, mutates, and persists a vault under the optimistic
// version lock, retrying on conflict
func (o *orchestrator) withVaultLock(ctx context.Context, vaultID string, mutate func(*schema.Vault) error) error {
	operation := func() error {
		vault, err := o.store.GetVault(ctx, vaultID)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := mutate(vault); err != nil {
			return backoff.Permanent(err)
		}
		if err := o.store.UpdateVaultGuarded(ctx, vault); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 1 * time.Second
	b.MaxElapsedTime = 10 * time.Second

	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

func (o *orchestrator) Fail(ctx context.Context, transactionID, reason string) error {
	tx, err := o.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return err
	}

	moved, err := o.store.TransitionTransaction(ctx, transactionID, tx.Status, schema.TransactionStatusFailed,
		&store.TransactionUpdates{ErrorMessage: &reason},
	)
	if err != nil {
		return err
	}
	if !moved {
		return fmt.Errorf("%w: transaction %s is %s and cannot be failed", domain.ErrInvalidState, transactionID, tx.Status)
	}

	// Roll reserved custody back: any assets created ahead of confirmation go
	// back to their owners. Nothing was materialized as locked, so only
	// pending reservations are affected.
	assets, err := o.store.ListAssetsByTransaction(ctx, transactionID)
	if err != nil {
		return err
	}
	for _, asset := range assets {
		if asset.Status != schema.AssetStatusPending {
			continue
		}
		if err := o.store.UpdateAssetStatus(ctx, asset.ID, schema.AssetStatusReleased); err != nil {
			logger.ErrorCtx(ctx, err,
				zap.String("transaction_id", transactionID),
				zap.String("asset_id", asset.ID),
			)
		}
	}

	if tx.Type.Normalize() == schema.TransactionTypeDistribution {
		if err := o.returnBatchClaims(ctx, tx); err != nil {
			return err
		}
	}

	logger.WarnCtx(ctx, "Transaction failed",
		zap.String("transaction_id", transactionID),
		zap.String("reason", reason),
	)
	return nil
}

// returnBatchClaims puts a failed distribution's batch back into the payout
// pool. The claims went pending when the batch was cut; without this they
// would sit pending forever, since batching only picks up available claims
// and settlement requires a confirmed transaction.
func (o *orchestrator) returnBatchClaims(ctx context.Context, tx *schema.Transaction) error {
	var meta transactionMetadata
	if len(tx.Metadata) > 0 {
		if err := json.Unmarshal(tx.Metadata, &meta); err != nil {
			return fmt.Errorf("failed to decode distribution metadata: %w", err)
		}
	}
	if meta.DistributionBatch == nil || tx.VaultID == nil {
		return nil
	}

	batchClaims, err := o.store.ListClaimsByBatch(ctx, *tx.VaultID, *meta.DistributionBatch)
	if err != nil {
		return err
	}
	claimIDs := make([]string, 0, len(batchClaims))
	for _, claim := range batchClaims {
		if claim.Status == schema.ClaimStatusPending {
			claimIDs = append(claimIDs, claim.ID)
		}
	}
	if len(claimIDs) == 0 {
		return nil
	}

	if err := o.store.ReturnClaimsToPool(ctx, claimIDs); err != nil {
		return err
	}
	logger.InfoCtx(ctx, "Returned failed distribution batch to the payout pool",
		zap.String("transaction_id", tx.ID),
		zap.Stringp("vault_id", tx.VaultID),
		zap.Int("batch", *meta.DistributionBatch),
		zap.Int("claims", len(claimIDs)),
	)
	return nil
}
