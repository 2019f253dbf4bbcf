package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fractionlabs/vault-engine/internal/domain"
	"github.com/fractionlabs/vault-engine/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to reasonable defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// =============================================================================
// Vaults
// =============================================================================

func (s *pgStore) CreateVault(ctx context.Context, vault *schema.Vault) error {
	if err := s.db.WithContext(ctx).Create(vault).Error; err != nil {
		return fmt.Errorf("failed to create vault: %w", err)
	}
	return nil
}

func (s *pgStore) GetVault(ctx context.Context, id string) (*schema.Vault, error) {
	var vault schema.Vault
	err := s.db.WithContext(ctx).First(&vault, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrVaultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vault: %w", err)
	}
	// Legacy rows may still carry the old "investment" phase name
	vault.Status = vault.Status.Normalize()
	return &vault, nil
}

func (s *pgStore) ListActiveVaults(ctx context.Context, limit int) ([]schema.Vault, error) {
	activeStatuses := []schema.VaultStatus{
		schema.VaultStatusPublished,
		schema.VaultStatusContribution,
		schema.VaultStatusAcquire,
		"investment", // legacy alias of acquire, normalized below
		schema.VaultStatusLocked,
		schema.VaultStatusGovernance,
		schema.VaultStatusTerminating,
		schema.VaultStatusExpansion,
	}

	var vaults []schema.Vault
	err := s.db.WithContext(ctx).
		Where("status IN ? AND deleted = false", activeStatuses).
		Order("created_at ASC").
		Limit(limit).
		Find(&vaults).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active vaults: %w", err)
	}

	for i := range vaults {
		vaults[i].Status = vaults[i].Status.Normalize()
	}
	return vaults, nil
}

func (s *pgStore) UpdateVaultGuarded(ctx context.Context, vault *schema.Vault) error {
	currentVersion := vault.Version
	vault.Version = currentVersion + 1
	vault.UpdatedAt = time.Now()

	result := s.db.WithContext(ctx).
		Model(&schema.Vault{}).
		Where("id = ? AND version = ?", vault.ID, currentVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(vault)
	if result.Error != nil {
		vault.Version = currentVersion
		return fmt.Errorf("failed to update vault: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		vault.Version = currentVersion
		return domain.ErrVersionConflict
	}
	return nil
}

// =============================================================================
// Transactions
// =============================================================================

func (s *pgStore) CreateTransaction(ctx context.Context, tx *schema.Transaction) error {
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (s *pgStore) GetTransaction(ctx context.Context, id string) (*schema.Transaction, error) {
	var tx schema.Transaction
	err := s.db.WithContext(ctx).First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	tx.Type = tx.Type.Normalize()
	return &tx, nil
}

func (s *pgStore) ListReconcilableTransactions(ctx context.Context, limit int) ([]schema.Transaction, error) {
	var txs []schema.Transaction
	err := s.db.WithContext(ctx).
		Where("status IN ?", []schema.TransactionStatus{
			schema.TransactionStatusPending,
			schema.TransactionStatusSubmitted,
			schema.TransactionStatusStuck,
		}).
		// In-vault ordering by submission keeps aggregate valuation updates
		// applied in the order the transactions were sent
		Order("vault_id ASC, submitted_at ASC NULLS LAST, created_at ASC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reconcilable transactions: %w", err)
	}

	for i := range txs {
		txs[i].Type = txs[i].Type.Normalize()
	}
	return txs, nil
}

func (s *pgStore) HasPendingTransaction(ctx context.Context, vaultID string, txType schema.TransactionType) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.Transaction{}).
		Where("vault_id = ? AND type = ? AND status IN ?", vaultID, txType.Normalize(), []schema.TransactionStatus{
			schema.TransactionStatusPending,
			schema.TransactionStatusSubmitted,
		}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count pending transactions: %w", err)
	}
	return count > 0, nil
}

func (s *pgStore) TransitionTransaction(ctx context.Context, id string, from, to schema.TransactionStatus, updates *TransactionUpdates) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, domain.ErrInvalidState
	}

	values := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if updates != nil {
		if updates.TxHash != nil {
			values["tx_hash"] = *updates.TxHash
		}
		if updates.TxIndex != nil {
			values["tx_index"] = *updates.TxIndex
		}
		if updates.BlockHeight != nil {
			values["block_height"] = *updates.BlockHeight
		}
		if updates.ErrorMessage != nil {
			values["error_message"] = *updates.ErrorMessage
		}
		if updates.SubmittedAt {
			values["submitted_at"] = time.Now()
		}
		if updates.ConfirmedAt {
			values["confirmed_at"] = time.Now()
		}
	}

	// The WHERE status clause is the idempotency guard: a transition only
	// succeeds once, so confirmation side effects run exactly once
	result := s.db.WithContext(ctx).
		Model(&schema.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition transaction: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// =============================================================================
// Assets
// =============================================================================

func (s *pgStore) CreateAssets(ctx context.Context, assets []schema.Asset) error {
	if len(assets) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(assets, 500).Error; err != nil {
		return fmt.Errorf("failed to create assets: %w", err)
	}
	return nil
}

func (s *pgStore) GetAsset(ctx context.Context, id string) (*schema.Asset, error) {
	var asset schema.Asset
	err := s.db.WithContext(ctx).First(&asset, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &asset, nil
}

func (s *pgStore) ListAssetsByVault(ctx context.Context, vaultID string, statuses ...schema.AssetStatus) ([]schema.Asset, error) {
	query := s.db.WithContext(ctx).Where("vault_id = ?", vaultID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var assets []schema.Asset
	if err := query.Order("added_at ASC").Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to list vault assets: %w", err)
	}
	return assets, nil
}

func (s *pgStore) ListAssetsByTransaction(ctx context.Context, transactionID string) ([]schema.Asset, error) {
	var assets []schema.Asset
	err := s.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("added_at ASC").
		Find(&assets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction assets: %w", err)
	}
	return assets, nil
}

func (s *pgStore) UpdateAssetStatus(ctx context.Context, id string, status schema.AssetStatus) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var asset schema.Asset
		err := tx.Clauses().First(&asset, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrAssetNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load asset: %w", err)
		}

		if !asset.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: asset %s cannot move %s -> %s", domain.ErrInvalidState, id, asset.Status, status)
		}

		now := time.Now()
		values := map[string]interface{}{
			"status":     status,
			"updated_at": now,
		}
		switch status {
		case schema.AssetStatusLocked:
			values["locked_at"] = now
		case schema.AssetStatusReleased:
			values["released_at"] = now
		}

		if err := tx.Model(&schema.Asset{}).Where("id = ?", id).Updates(values).Error; err != nil {
			return fmt.Errorf("failed to update asset status: %w", err)
		}
		return nil
	})
}

func (s *pgStore) UpdateAssetValuations(ctx context.Context, updates []ValuationUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, update := range updates {
			var asset schema.Asset
			err := tx.First(&asset, "id = ?", update.AssetID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrAssetNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to load asset for valuation: %w", err)
			}

			// Terminal assets keep the valuation they settled at
			if asset.Status != schema.AssetStatusLocked && asset.Status != schema.AssetStatusPending {
				continue
			}

			values := map[string]interface{}{
				"last_valuation_at": now,
				"updated_at":        now,
			}
			switch asset.Type {
			case schema.AssetTypeNFT:
				values["floor_price_ada"] = update.PriceAda
			case schema.AssetTypeFungible:
				values["dex_price_ada"] = update.PriceAda
			default:
				// ADA values itself
				continue
			}

			if err := tx.Model(&schema.Asset{}).Where("id = ?", update.AssetID).Updates(values).Error; err != nil {
				return fmt.Errorf("failed to update asset valuation: %w", err)
			}
		}
		return nil
	})
}

func (s *pgStore) GetVaultTotals(ctx context.Context, vaultID string) (*domain.VaultTotals, error) {
	type originRow struct {
		OriginType schema.AssetOriginType
		Total      decimal.Decimal
		AssetCount int64
		TxCount    int64
	}

	var rows []originRow
	err := s.db.WithContext(ctx).
		Model(&schema.Asset{}).
		Select("origin_type, COALESCE(SUM(value_ada), 0) AS total, COUNT(*) AS asset_count, COUNT(DISTINCT transaction_id) AS tx_count").
		Where("vault_id = ? AND status = ?", vaultID, schema.AssetStatusLocked).
		Group("origin_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate vault totals: %w", err)
	}

	totals := &domain.VaultTotals{
		ContributedValueAda: decimal.Zero,
		AcquiredAda:         decimal.Zero,
	}
	for _, row := range rows {
		totals.AssetCount += row.AssetCount
		switch row.OriginType {
		case schema.AssetOriginContributed:
			totals.ContributedValueAda = totals.ContributedValueAda.Add(row.Total)
			totals.ContributionCount = row.TxCount
		case schema.AssetOriginAcquired:
			totals.AcquiredAda = totals.AcquiredAda.Add(row.Total)
		}
	}
	return totals, nil
}

func (s *pgStore) AggregateLockedValueByOrigin(ctx context.Context, vaultID string) (map[schema.AssetOriginType]decimal.Decimal, error) {
	type originRow struct {
		OriginType schema.AssetOriginType
		Total      decimal.Decimal
	}

	var rows []originRow
	err := s.db.WithContext(ctx).
		Model(&schema.Asset{}).
		Select("origin_type, COALESCE(SUM(value_ada), 0) AS total").
		Where("vault_id = ? AND status = ?", vaultID, schema.AssetStatusLocked).
		Group("origin_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate locked value: %w", err)
	}

	result := make(map[schema.AssetOriginType]decimal.Decimal, len(rows))
	for _, row := range rows {
		result[row.OriginType] = row.Total
	}
	return result, nil
}

// =============================================================================
// Claims
// =============================================================================

func (s *pgStore) CreateClaims(ctx context.Context, claims []schema.Claim) error {
	if len(claims) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(claims, 500).Error; err != nil {
		return fmt.Errorf("failed to create claims: %w", err)
	}
	return nil
}

func (s *pgStore) ListClaimsByStatus(ctx context.Context, vaultID string, status schema.ClaimStatus, types ...schema.ClaimType) ([]schema.Claim, error) {
	query := s.db.WithContext(ctx).Where("vault_id = ? AND status = ?", vaultID, status)
	if len(types) > 0 {
		query = query.Where("type IN ?", types)
	}

	var claims []schema.Claim
	if err := query.Order("created_at ASC").Find(&claims).Error; err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	return claims, nil
}

func (s *pgStore) ListClaimsByBatch(ctx context.Context, vaultID string, batch int) ([]schema.Claim, error) {
	var claims []schema.Claim
	err := s.db.WithContext(ctx).
		Where("vault_id = ? AND distribution_batch = ?", vaultID, batch).
		Order("created_at ASC").
		Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list batch claims: %w", err)
	}
	return claims, nil
}

func (s *pgStore) AssignClaimsToBatch(ctx context.Context, claimIDs []string, batch int) error {
	if len(claimIDs) == 0 {
		return nil
	}

	result := s.db.WithContext(ctx).
		Model(&schema.Claim{}).
		Where("id IN ? AND status = ?", claimIDs, schema.ClaimStatusAvailable).
		Updates(map[string]interface{}{
			"status":             schema.ClaimStatusPending,
			"distribution_batch": batch,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to assign claims to batch: %w", result.Error)
	}
	if result.RowsAffected != int64(len(claimIDs)) {
		return fmt.Errorf("%w: only %d of %d claims were available for batching",
			domain.ErrInvalidState, result.RowsAffected, len(claimIDs))
	}
	return nil
}

func (s *pgStore) SettleClaims(ctx context.Context, claimIDs []string, distributionTxID string) error {
	if len(claimIDs) == 0 {
		return nil
	}

	// All claims of a batch settle together or not at all
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&schema.Claim{}).
			Where("id IN ? AND status IN ?", claimIDs, []schema.ClaimStatus{
				schema.ClaimStatusAvailable,
				schema.ClaimStatusPending,
			}).
			Updates(map[string]interface{}{
				"status":                      schema.ClaimStatusClaimed,
				"distribution_transaction_id": distributionTxID,
				"updated_at":                  time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to settle claims: %w", result.Error)
		}
		if result.RowsAffected != int64(len(claimIDs)) {
			return fmt.Errorf("%w: only %d of %d claims were settleable",
				domain.ErrInvalidState, result.RowsAffected, len(claimIDs))
		}
		return nil
	})
}

func (s *pgStore) ReturnClaimsToPool(ctx context.Context, claimIDs []string) error {
	if len(claimIDs) == 0 {
		return nil
	}

	result := s.db.WithContext(ctx).
		Model(&schema.Claim{}).
		Where("id IN ? AND status = ?", claimIDs, schema.ClaimStatusPending).
		Updates(map[string]interface{}{
			"status":             schema.ClaimStatusAvailable,
			"distribution_batch": nil,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to return claims to pool: %w", result.Error)
	}
	return nil
}

// =============================================================================
// Treasury wallets
// =============================================================================

func (s *pgStore) CreateTreasuryWallet(ctx context.Context, wallet *schema.TreasuryWallet) error {
	err := s.db.WithContext(ctx).Create(wallet).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrTreasuryAlreadyProvisioned
	}
	if err != nil {
		return fmt.Errorf("failed to create treasury wallet: %w", err)
	}
	return nil
}

func (s *pgStore) GetTreasuryWallet(ctx context.Context, vaultID string) (*schema.TreasuryWallet, error) {
	var wallet schema.TreasuryWallet
	err := s.db.WithContext(ctx).First(&wallet, "vault_id = ? AND active = true", vaultID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTreasuryWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get treasury wallet: %w", err)
	}
	return &wallet, nil
}
