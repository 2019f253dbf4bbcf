package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fractionlabs/vault-engine/internal/domain"
	"github.com/fractionlabs/vault-engine/internal/store/schema"
)

// TransactionUpdates carries the optional fields a status transition may set
// alongside the status change
type TransactionUpdates struct {
	TxHash       *string
	TxIndex      *uint64
	BlockHeight  *uint64
	ErrorMessage *string
	SubmittedAt  bool // stamp submitted_at=now()
	ConfirmedAt  bool // stamp confirmed_at=now()
}

// ValuationUpdate carries one asset's refreshed price
type ValuationUpdate struct {
	AssetID  string
	PriceAda decimal.Decimal
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// Vaults

	// CreateVault inserts a new vault row
	CreateVault(ctx context.Context, vault *schema.Vault) error
	// GetVault retrieves a vault by id, including soft-deleted rows
	GetVault(ctx context.Context, id string) (*schema.Vault, error)
	// ListActiveVaults returns non-deleted vaults in a sweepable (non-terminal) status
	ListActiveVaults(ctx context.Context, limit int) ([]schema.Vault, error)
	// UpdateVaultGuarded persists the vault using its version column as an
	// optimistic lock; returns domain.ErrVersionConflict when the row moved
	UpdateVaultGuarded(ctx context.Context, vault *schema.Vault) error

	// Transactions

	// CreateTransaction inserts a new transaction record
	CreateTransaction(ctx context.Context, tx *schema.Transaction) error
	// GetTransaction retrieves a transaction by id
	GetTransaction(ctx context.Context, id string) (*schema.Transaction, error)
	// ListReconcilableTransactions returns pending/submitted/stuck transactions
	// ordered by vault then submission time, so in-vault confirmations apply in
	// submission order
	ListReconcilableTransactions(ctx context.Context, limit int) ([]schema.Transaction, error)
	// HasPendingTransaction reports whether the vault has an in-flight
	// transaction of the given type
	HasPendingTransaction(ctx context.Context, vaultID string, txType schema.TransactionType) (bool, error)
	// TransitionTransaction atomically moves a transaction from one status to
	// another, applying updates in the same statement. Returns false without
	// error when the row was not in the expected status, which is the
	// idempotency guard for confirmation side effects.
	TransitionTransaction(ctx context.Context, id string, from, to schema.TransactionStatus, updates *TransactionUpdates) (bool, error)

	// Assets

	// CreateAssets inserts asset rows in one batch
	CreateAssets(ctx context.Context, assets []schema.Asset) error
	// GetAsset retrieves an asset by id
	GetAsset(ctx context.Context, id string) (*schema.Asset, error)
	// ListAssetsByVault returns the vault's assets, optionally filtered by status
	ListAssetsByVault(ctx context.Context, vaultID string, statuses ...schema.AssetStatus) ([]schema.Asset, error)
	// ListAssetsByTransaction returns the assets a transaction materialized
	ListAssetsByTransaction(ctx context.Context, transactionID string) ([]schema.Asset, error)
	// UpdateAssetStatus moves an asset to a new custody status and stamps the
	// matching timestamp column
	UpdateAssetStatus(ctx context.Context, id string, status schema.AssetStatus) error
	// UpdateAssetValuations applies refreshed prices to locked/pending assets
	UpdateAssetValuations(ctx context.Context, updates []ValuationUpdate) error
	// GetVaultTotals aggregates confirmed custody value per vault for
	// threshold evaluation; reads only locked assets
	GetVaultTotals(ctx context.Context, vaultID string) (*domain.VaultTotals, error)
	// AggregateLockedValueByOrigin sums locked asset value grouped by origin type
	AggregateLockedValueByOrigin(ctx context.Context, vaultID string) (map[schema.AssetOriginType]decimal.Decimal, error)

	// Claims

	// CreateClaims inserts claim rows in one batch
	CreateClaims(ctx context.Context, claims []schema.Claim) error
	// ListClaimsByStatus returns the vault's claims of the given status,
	// optionally filtered by type
	ListClaimsByStatus(ctx context.Context, vaultID string, status schema.ClaimStatus, types ...schema.ClaimType) ([]schema.Claim, error)
	// ListClaimsByBatch returns the claims assigned to a distribution batch
	ListClaimsByBatch(ctx context.Context, vaultID string, batch int) ([]schema.Claim, error)
	// AssignClaimsToBatch marks claims pending and stamps their batch number
	AssignClaimsToBatch(ctx context.Context, claimIDs []string, batch int) error
	// SettleClaims marks all given claims claimed with the distribution
	// transaction id in a single database transaction: all or nothing
	SettleClaims(ctx context.Context, claimIDs []string, distributionTxID string) error
	// ReturnClaimsToPool moves pending claims of a failed batch back to available
	ReturnClaimsToPool(ctx context.Context, claimIDs []string) error

	// Treasury wallets

	// CreateTreasuryWallet inserts the vault's treasury wallet; returns
	// domain.ErrTreasuryAlreadyProvisioned on the unique-vault constraint
	CreateTreasuryWallet(ctx context.Context, wallet *schema.TreasuryWallet) error
	// GetTreasuryWallet retrieves the vault's active treasury wallet
	GetTreasuryWallet(ctx context.Context, vaultID string) (*schema.TreasuryWallet, error)
}
