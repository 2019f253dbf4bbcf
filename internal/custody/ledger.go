package custody

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fractionlabs/vault-engine/internal/domain"
	"github.com/fractionlabs/vault-engine/internal/logger"
	"github.com/fractionlabs/vault-engine/internal/store"
	"github.com/fractionlabs/vault-engine/internal/store/schema"
)

// transactionMetadata is the shape of the pending-asset payload carried in a
// transaction's metadata column until confirmation
type transactionMetadata struct {
	PendingAssets []domain.PendingAssetDescriptor `json:"pending_assets"`
}

// Ledger tracks the custody status of every asset bound to a vault
//
//go:generate mockgen -source=ledger.go -destination=../mocks/ledger.go -package=mocks -mock_names=Ledger=MockLedger
type Ledger interface {
	// MaterializeFromTransaction turns the pending asset descriptors of a
	// confirmed transaction into locked asset rows. Invoked only by the
	// transaction orchestrator at confirmation.
	MaterializeFromTransaction(ctx context.Context, tx *schema.Transaction) ([]schema.Asset, error)
	// Release returns custody of a locked asset (vault failure refund or
	// contributor withdrawal); fails with domain.ErrInvalidState otherwise
	Release(ctx context.Context, assetID string) error
	// ReleaseAllLocked releases every locked asset of a vault; used on the
	// vault-failure refund path. Per-asset errors are collected, not fatal.
	ReleaseAllLocked(ctx context.Context, vaultID string) (int, error)
	// MarkDistributed marks an asset paid out; requires a confirmed transaction
	MarkDistributed(ctx context.Context, assetID, transactionID string) error
	// MarkExtracted marks an asset extracted by governance; requires a confirmed transaction
	MarkExtracted(ctx context.Context, assetID, transactionID string) error
	// MarkSold marks an asset liquidated; requires a confirmed transaction
	MarkSold(ctx context.Context, assetID, transactionID string) error
	// RefreshValuations re-prices the vault's pending/locked assets from the
	// price lookup and stamps last_valuation
	RefreshValuations(ctx context.Context, vaultID string) (int, error)
	// VaultTotals aggregates confirmed custody value for threshold evaluation
	VaultTotals(ctx context.Context, vaultID string) (*domain.VaultTotals, error)
	// RecomputeAggregates recomputes the vault's denormalized valuation fields
	// from the confirmed asset set, mutating the vault in place. The caller
	// owns persistence; this is the recovery path for the aggregate caches.
	RecomputeAggregates(ctx context.Context, vault *schema.Vault) error
}

type ledger struct {
	store  store.Store
	prices PriceLookup
}

// NewLedger creates an asset custody ledger
func NewLedger(st store.Store, prices PriceLookup) Ledger {
	return &ledger{store: st, prices: prices}
}

// originForTransactionType maps a transaction type to the origin of the
// assets it carries
func originForTransactionType(txType schema.TransactionType) (schema.AssetOriginType, error) {
	switch txType.Normalize() {
	case schema.TransactionTypeContribute:
		return schema.AssetOriginContributed, nil
	case schema.TransactionTypeAcquire:
		return schema.AssetOriginAcquired, nil
	case schema.TransactionTypeMint, schema.TransactionTypeUpdateVault:
		return schema.AssetOriginFee, nil
	default:
		return "", fmt.Errorf("transaction type %s does not materialize assets", txType)
	}
}

func (l *ledger) MaterializeFromTransaction(ctx context.Context, tx *schema.Transaction) ([]schema.Asset, error) {
	if tx.Status != schema.TransactionStatusConfirmed {
		return nil, fmt.Errorf("%w: cannot materialize assets for %s transaction %s", domain.ErrInvalidState, tx.Status, tx.ID)
	}
	if len(tx.Metadata) == 0 {
		return nil, nil
	}

	var meta transactionMetadata
	if err := json.Unmarshal(tx.Metadata, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode transaction metadata: %w", err)
	}
	if len(meta.PendingAssets) == 0 {
		return nil, nil
	}

	origin, err := originForTransactionType(tx.Type)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	assets := make([]schema.Asset, 0, len(meta.PendingAssets))
	for _, descriptor := range meta.PendingAssets {
		userID := tx.UserID
		if descriptor.UserID != "" {
			id := descriptor.UserID
			userID = &id
		}

		assets = append(assets, schema.Asset{
			ID:            uuid.NewString(),
			VaultID:       tx.VaultID,
			TransactionID: tx.ID,
			UserID:        userID,
			Type:          schema.AssetType(descriptor.Type),
			PolicyID:      descriptor.PolicyID,
			AssetID:       descriptor.AssetID,
			Quantity:      descriptor.Quantity,
			ValueAda:      descriptor.ValueAda,
			Status:        schema.AssetStatusLocked,
			OriginType:    origin,
			AddedAt:       now,
			LockedAt:      &now,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	if err := l.store.CreateAssets(ctx, assets); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Materialized assets from confirmed transaction",
		zap.String("transaction_id", tx.ID),
		zap.Stringp("vault_id", tx.VaultID),
		zap.String("origin", string(origin)),
		zap.Int("count", len(assets)),
	)
	return assets, nil
}

func (l *ledger) Release(ctx context.Context, assetID string) error {
	asset, err := l.store.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.Status != schema.AssetStatusLocked {
		return fmt.Errorf("%w: asset %s is %s, only locked assets can be released", domain.ErrInvalidState, assetID, asset.Status)
	}
	return l.store.UpdateAssetStatus(ctx, assetID, schema.AssetStatusReleased)
}

func (l *ledger) ReleaseAllLocked(ctx context.Context, vaultID string) (int, error) {
	assets, err := l.store.ListAssetsByVault(ctx, vaultID, schema.AssetStatusLocked)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, asset := range assets {
		if err := l.store.UpdateAssetStatus(ctx, asset.ID, schema.AssetStatusReleased); err != nil {
			logger.ErrorCtx(ctx, err,
				zap.String("vault_id", vaultID),
				zap.String("asset_id", asset.ID),
			)
			continue
		}
		released++
	}

	logger.InfoCtx(ctx, "Released locked assets",
		zap.String("vault_id", vaultID),
		zap.Int("released", released),
		zap.Int("total", len(assets)),
	)
	return released, nil
}

// markTerminal applies a terminal custody transition after verifying the
// associated transaction confirmed
func (l *ledger) markTerminal(ctx context.Context, assetID, transactionID string, status schema.AssetStatus) error {
	tx, err := l.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return err
	}
	if tx.Status != schema.TransactionStatusConfirmed {
		return fmt.Errorf("%w: transaction %s is %s, asset custody transitions require confirmation", domain.ErrInvalidState, transactionID, tx.Status)
	}
	return l.store.UpdateAssetStatus(ctx, assetID, status)
}

func (l *ledger) MarkDistributed(ctx context.Context, assetID, transactionID string) error {
	return l.markTerminal(ctx, assetID, transactionID, schema.AssetStatusDistributed)
}

func (l *ledger) MarkExtracted(ctx context.Context, assetID, transactionID string) error {
	return l.markTerminal(ctx, assetID, transactionID, schema.AssetStatusExtracted)
}

func (l *ledger) MarkSold(ctx context.Context, assetID, transactionID string) error {
	return l.markTerminal(ctx, assetID, transactionID, schema.AssetStatusSold)
}

func (l *ledger) RefreshValuations(ctx context.Context, vaultID string) (int, error) {
	assets, err := l.store.ListAssetsByVault(ctx, vaultID, schema.AssetStatusPending, schema.AssetStatusLocked)
	if err != nil {
		return 0, err
	}

	var updates []store.ValuationUpdate
	for _, asset := range assets {
		if asset.Type == schema.AssetTypeAda {
			continue
		}

		price, err := l.prices.PriceOf(ctx, asset.PolicyID, asset.AssetID)
		if err != nil {
			logger.WarnCtx(ctx, "Price lookup failed, keeping previous valuation",
				zap.String("asset_id", asset.ID),
				zap.String("policy_id", asset.PolicyID),
				zap.Error(err),
			)
			continue
		}
		if price == nil {
			continue
		}

		updates = append(updates, store.ValuationUpdate{
			AssetID:  asset.ID,
			PriceAda: *price,
		})
	}

	if err := l.store.UpdateAssetValuations(ctx, updates); err != nil {
		return 0, err
	}
	return len(updates), nil
}

func (l *ledger) VaultTotals(ctx context.Context, vaultID string) (*domain.VaultTotals, error) {
	return l.store.GetVaultTotals(ctx, vaultID)
}

func (l *ledger) RecomputeAggregates(ctx context.Context, vault *schema.Vault) error {
	byOrigin, err := l.store.AggregateLockedValueByOrigin(ctx, vault.ID)
	if err != nil {
		return err
	}

	total := byOrigin[schema.AssetOriginContributed].
		Add(byOrigin[schema.AssetOriginAcquired]).
		Add(byOrigin[schema.AssetOriginFee])

	vault.TotalAssetsCostAda = total
	vault.RequireReservedCostAda = total.Mul(vault.AcquireReservePercent).Div(hundred)

	// USD mirrors are derived from the ADA figures; the ADA/USD rate comes
	// from the ada price lookup keyed by the empty policy
	adaUsd, err := l.prices.PriceOf(ctx, "", "usd")
	if err == nil && adaUsd != nil {
		vault.TotalAssetsCostUsd = total.Mul(*adaUsd)
		vault.RequireReservedCostUsd = vault.RequireReservedCostAda.Mul(*adaUsd)
	}
	return nil
}

var hundred = decimal.NewFromInt(100)
