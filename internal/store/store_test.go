package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fractionlabs/vault-engine/internal/domain"
	"github.com/fractionlabs/vault-engine/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

// buildTestVault creates a vault row in the given status
func buildTestVault(status schema.VaultStatus) *schema.Vault {
	return &schema.Vault{
		ID:      uuid.NewString(),
		Status:  status,
		OwnerID: uuid.NewString(),
		Name:    "test vault",

		AcquireReservePercent:   decimal.NewFromInt(10),
		TokenForAcquiresPercent: decimal.NewFromInt(40),
		LiquidityPoolPercent:    decimal.NewFromInt(5),
		CreationThresholdAda:    decimal.NewFromInt(100),
		StartThresholdAda:       decimal.NewFromInt(1000),
		MaxContributedAssets:    50,
	}
}

// buildTestTransaction creates a transaction row bound to a vault
func buildTestTransaction(vaultID *string, txType schema.TransactionType, status schema.TransactionStatus) *schema.Transaction {
	return &schema.Transaction{
		ID:      uuid.NewString(),
		VaultID: vaultID,
		Type:    txType,
		Status:  status,
		Amount:  decimal.NewFromInt(100),
	}
}

// buildTestAsset creates an asset row materialized by a transaction
func buildTestAsset(vaultID, txID string, origin schema.AssetOriginType, status schema.AssetStatus, valueAda int64) schema.Asset {
	return schema.Asset{
		ID:            uuid.NewString(),
		VaultID:       &vaultID,
		TransactionID: txID,
		Type:          schema.AssetTypeNFT,
		PolicyID:      "policy-1",
		AssetID:       "asset-" + uuid.NewString()[:8],
		Quantity:      1,
		ValueAda:      decimal.NewFromInt(valueAda),
		Status:        status,
		OriginType:    origin,
	}
}

// buildTestClaim creates a claim row owed to a user
func buildTestClaim(vaultID, userID, originTxID string, status schema.ClaimStatus, amountAda int64) schema.Claim {
	return schema.Claim{
		ID:                  uuid.NewString(),
		VaultID:             vaultID,
		UserID:              userID,
		Type:                schema.ClaimTypeContributor,
		AmountAda:           decimal.NewFromInt(amountAda),
		Status:              status,
		OriginTransactionID: originTxID,
	}
}

func strPtr(s string) *string {
	return &s
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}

// =============================================================================
// Test: Vaults
// =============================================================================

func testVaults(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("create and get roundtrip", func(t *testing.T) {
		vault := buildTestVault(schema.VaultStatusDraft)
		require.NoError(t, store.CreateVault(ctx, vault))

		got, err := store.GetVault(ctx, vault.ID)
		require.NoError(t, err)
		assert.Equal(t, vault.ID, got.ID)
		assert.Equal(t, schema.VaultStatusDraft, got.Status)
		assert.True(t, got.AcquireReservePercent.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, int64(0), got.Version)
	})

	t.Run("get not found", func(t *testing.T) {
		_, err := store.GetVault(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrVaultNotFound)
	})

	t.Run("legacy investment status is normalized on read", func(t *testing.T) {
		vault := buildTestVault("investment")
		require.NoError(t, store.CreateVault(ctx, vault))

		got, err := store.GetVault(ctx, vault.ID)
		require.NoError(t, err)
		assert.Equal(t, schema.VaultStatusAcquire, got.Status)
	})
}

func testListActiveVaults(t *testing.T, store Store) {
	ctx := context.Background()

	draft := buildTestVault(schema.VaultStatusDraft)
	published := buildTestVault(schema.VaultStatusPublished)
	locked := buildTestVault(schema.VaultStatusLocked)
	failed := buildTestVault(schema.VaultStatusFailed)
	deleted := buildTestVault(schema.VaultStatusLocked)
	deleted.Deleted = true
	legacy := buildTestVault("investment")

	for _, v := range []*schema.Vault{draft, published, locked, failed, deleted, legacy} {
		require.NoError(t, store.CreateVault(ctx, v))
	}

	vaults, err := store.ListActiveVaults(ctx, 100)
	require.NoError(t, err)

	ids := make(map[string]schema.VaultStatus, len(vaults))
	for _, v := range vaults {
		ids[v.ID] = v.Status
	}

	assert.Contains(t, ids, published.ID)
	assert.Contains(t, ids, locked.ID)
	assert.Contains(t, ids, legacy.ID)
	assert.Equal(t, schema.VaultStatusAcquire, ids[legacy.ID])
	assert.NotContains(t, ids, draft.ID)
	assert.NotContains(t, ids, failed.ID)
	assert.NotContains(t, ids, deleted.ID)
}

func testUpdateVaultGuarded(t *testing.T, store Store) {
	ctx := context.Background()

	vault := buildTestVault(schema.VaultStatusPublished)
	require.NoError(t, store.CreateVault(ctx, vault))

	t.Run("update bumps version", func(t *testing.T) {
		vault.Status = schema.VaultStatusContribution
		require.NoError(t, store.UpdateVaultGuarded(ctx, vault))
		assert.Equal(t, int64(1), vault.Version)

		got, err := store.GetVault(ctx, vault.ID)
		require.NoError(t, err)
		assert.Equal(t, schema.VaultStatusContribution, got.Status)
		assert.Equal(t, int64(1), got.Version)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		stale, err := store.GetVault(ctx, vault.ID)
		require.NoError(t, err)

		// Another writer moves the row first
		fresh, err := store.GetVault(ctx, vault.ID)
		require.NoError(t, err)
		fresh.Name = "renamed"
		require.NoError(t, store.UpdateVaultGuarded(ctx, fresh))

		stale.Name = "lost update"
		err = store.UpdateVaultGuarded(ctx, stale)
		assert.ErrorIs(t, err, domain.ErrVersionConflict)

		// The loser's in-memory version must not advance
		assert.Equal(t, int64(1), stale.Version)

		got, err := store.GetVault(ctx, vault.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Name)
	})
}

// =============================================================================
// Test: Transactions
// =============================================================================

func testTransactions(t *testing.T, store Store) {
	ctx := context.Background()

	vault := buildTestVault(schema.VaultStatusContribution)
	require.NoError(t, store.CreateVault(ctx, vault))

	t.Run("create and get roundtrip", func(t *testing.T) {
		tx := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusCreated)
		require.NoError(t, store.CreateTransaction(ctx, tx))

		got, err := store.GetTransaction(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, tx.ID, got.ID)
		assert.Equal(t, schema.TransactionTypeContribute, got.Type)
		assert.Equal(t, schema.TransactionStatusCreated, got.Status)
		assert.Nil(t, got.TxHash)
	})

	t.Run("get not found", func(t *testing.T) {
		_, err := store.GetTransaction(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
	})

	t.Run("legacy investment type is normalized on read", func(t *testing.T) {
		tx := buildTestTransaction(&vault.ID, "investment", schema.TransactionStatusCreated)
		require.NoError(t, store.CreateTransaction(ctx, tx))

		got, err := store.GetTransaction(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, schema.TransactionTypeAcquire, got.Type)
	})

	t.Run("duplicate tx hash rejected", func(t *testing.T) {
		first := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusPending)
		first.TxHash = strPtr("deadbeef01")
		require.NoError(t, store.CreateTransaction(ctx, first))

		second := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusPending)
		second.TxHash = strPtr("deadbeef01")
		assert.Error(t, store.CreateTransaction(ctx, second))
	})
}

func testListReconcilableTransactions(t *testing.T, store Store) {
	ctx := context.Background()

	vault := buildTestVault(schema.VaultStatusLocked)
	require.NoError(t, store.CreateVault(ctx, vault))

	pending := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusPending)
	submitted := buildTestTransaction(&vault.ID, schema.TransactionTypeAcquire, schema.TransactionStatusSubmitted)
	earlier := time.Now().Add(-time.Hour)
	submitted.SubmittedAt = &earlier
	stuck := buildTestTransaction(&vault.ID, schema.TransactionTypeDistribution, schema.TransactionStatusStuck)
	later := time.Now().Add(-time.Minute)
	stuck.SubmittedAt = &later
	confirmed := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusConfirmed)
	created := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusCreated)

	for _, tx := range []*schema.Transaction{pending, submitted, stuck, confirmed, created} {
		require.NoError(t, store.CreateTransaction(ctx, tx))
	}

	txs, err := store.ListReconcilableTransactions(ctx, 100)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	// Submitted transactions come back in submission order, unsubmitted last
	assert.Equal(t, submitted.ID, txs[0].ID)
	assert.Equal(t, stuck.ID, txs[1].ID)
	assert.Equal(t, pending.ID, txs[2].ID)
}

func testHasPendingTransaction(t *testing.T, store Store) {
	ctx := context.Background()

	vault := buildTestVault(schema.VaultStatusLocked)
	require.NoError(t, store.CreateVault(ctx, vault))

	has, err := store.HasPendingTransaction(ctx, vault.ID, schema.TransactionTypeDistribution)
	require.NoError(t, err)
	assert.False(t, has)

	tx := buildTestTransaction(&vault.ID, schema.TransactionTypeDistribution, schema.TransactionStatusSubmitted)
	require.NoError(t, store.CreateTransaction(ctx, tx))

	has, err = store.HasPendingTransaction(ctx, vault.ID, schema.TransactionTypeDistribution)
	require.NoError(t, err)
	assert.True(t, has)

	// Other types are not affected by the in-flight distribution
	has, err = store.HasPendingTransaction(ctx, vault.ID, schema.TransactionTypeBurn)
	require.NoError(t, err)
	assert.False(t, has)
}

func testTransitionTransaction(t *testing.T, store Store) {
	ctx := context.Background()

	vault := buildTestVault(schema.VaultStatusLocked)
	require.NoError(t, store.CreateVault(ctx, vault))

	t.Run("transition applies updates", func(t *testing.T) {
		tx := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusCreated)
		require.NoError(t, store.CreateTransaction(ctx, tx))

		moved, err := store.TransitionTransaction(ctx, tx.ID,
			schema.TransactionStatusCreated, schema.TransactionStatusPending,
			&TransactionUpdates{TxHash: strPtr("cafebabe02")})
		require.NoError(t, err)
		assert.True(t, moved)

		got, err := store.GetTransaction(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, schema.TransactionStatusPending, got.Status)
		require.NotNil(t, got.TxHash)
		assert.Equal(t, "cafebabe02", *got.TxHash)
	})

	t.Run("transition succeeds exactly once", func(t *testing.T) {
		tx := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusSubmitted)
		require.NoError(t, store.CreateTransaction(ctx, tx))

		moved, err := store.TransitionTransaction(ctx, tx.ID,
			schema.TransactionStatusSubmitted, schema.TransactionStatusConfirmed,
			&TransactionUpdates{
				TxIndex:     uint64Ptr(4),
				BlockHeight: uint64Ptr(123456),
				ConfirmedAt: true,
			})
		require.NoError(t, err)
		assert.True(t, moved)

		// The second reconciler loses the race and must not re-run side effects
		moved, err = store.TransitionTransaction(ctx, tx.ID,
			schema.TransactionStatusSubmitted, schema.TransactionStatusConfirmed, nil)
		require.NoError(t, err)
		assert.False(t, moved)

		got, err := store.GetTransaction(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, schema.TransactionStatusConfirmed, got.Status)
		require.NotNil(t, got.TxIndex)
		assert.Equal(t, uint64(4), *got.TxIndex)
		require.NotNil(t, got.BlockHeight)
		assert.Equal(t, uint64(123456), *got.BlockHeight)
		assert.NotNil(t, got.ConfirmedAt)
	})

	t.Run("illegal transition rejected", func(t *testing.T) {
		tx := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusConfirmed)
		require.NoError(t, store.CreateTransaction(ctx, tx))

		_, err := store.TransitionTransaction(ctx, tx.ID,
			schema.TransactionStatusConfirmed, schema.TransactionStatusFailed, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("failure records the rejection reason", func(t *testing.T) {
		tx := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusSubmitted)
		require.NoError(t, store.CreateTransaction(ctx, tx))

		moved, err := store.TransitionTransaction(ctx, tx.ID,
			schema.TransactionStatusSubmitted, schema.TransactionStatusFailed,
			&TransactionUpdates{ErrorMessage: strPtr("script evaluation failed")})
		require.NoError(t, err)
		assert.True(t, moved)

		got, err := store.GetTransaction(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, "script evaluation failed", got.ErrorMessage)
	})
}

// =============================================================================
// Test: Assets
// =============================================================================

func testAssets(t *testing.T, store Store) {
	ctx := context.Background()

	vault := buildTestVault(schema.VaultStatusContribution)
	require.NoError(t, store.CreateVault(ctx, vault))
	tx := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusConfirmed)
	require.NoError(t, store.CreateTransaction(ctx, tx))

	assets := []schema.Asset{
		buildTestAsset(vault.ID, tx.ID, schema.AssetOriginContributed, schema.AssetStatusPending, 100),
		buildTestAsset(vault.ID, tx.ID, schema.AssetOriginContributed, schema.AssetStatusLocked, 200),
	}
	require.NoError(t, store.CreateAssets(ctx, assets))

	t.Run("get and list", func(t *testing.T) {
		got, err := store.GetAsset(ctx, assets[0].ID)
		require.NoError(t, err)
		assert.Equal(t, schema.AssetStatusPending, got.Status)
		assert.True(t, got.ValueAda.Equal(decimal.NewFromInt(100)))

		all, err := store.ListAssetsByVault(ctx, vault.ID)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		locked, err := store.ListAssetsByVault(ctx, vault.ID, schema.AssetStatusLocked)
		require.NoError(t, err)
		require.Len(t, locked, 1)
		assert.Equal(t, assets[1].ID, locked[0].ID)

		byTx, err := store.ListAssetsByTransaction(ctx, tx.ID)
		require.NoError(t, err)
		assert.Len(t, byTx, 2)
	})

	t.Run("get not found", func(t *testing.T) {
		_, err := store.GetAsset(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrAssetNotFound)
	})

	t.Run("lock stamps locked_at", func(t *testing.T) {
		require.NoError(t, store.UpdateAssetStatus(ctx, assets[0].ID, schema.AssetStatusLocked))

		got, err := store.GetAsset(ctx, assets[0].ID)
		require.NoError(t, err)
		assert.Equal(t, schema.AssetStatusLocked, got.Status)
		assert.NotNil(t, got.LockedAt)
	})

	t.Run("release stamps released_at", func(t *testing.T) {
		require.NoError(t, store.UpdateAssetStatus(ctx, assets[1].ID, schema.AssetStatusReleased))

		got, err := store.GetAsset(ctx, assets[1].ID)
		require.NoError(t, err)
		assert.Equal(t, schema.AssetStatusReleased, got.Status)
		assert.NotNil(t, got.ReleasedAt)
	})

	t.Run("illegal custody transition rejected", func(t *testing.T) {
		distributed := buildTestAsset(vault.ID, tx.ID, schema.AssetOriginContributed, schema.AssetStatusDistributed, 50)
		require.NoError(t, store.CreateAssets(ctx, []schema.Asset{distributed}))

		err := store.UpdateAssetStatus(ctx, distributed.ID, schema.AssetStatusLocked)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("update status not found", func(t *testing.T) {
		err := store.UpdateAssetStatus(ctx, uuid.NewString(), schema.AssetStatusLocked)
		assert.ErrorIs(t, err, domain.ErrAssetNotFound)
	})
}

func testUpdateAssetValuations(t *testing.T, store Store) {
	ctx := context.Background()

	vault := buildTestVault(schema.VaultStatusLocked)
	require.NoError(t, store.CreateVault(ctx, vault))
	tx := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusConfirmed)
	require.NoError(t, store.CreateTransaction(ctx, tx))

	nft := buildTestAsset(vault.ID, tx.ID, schema.AssetOriginContributed, schema.AssetStatusLocked, 100)
	fungible := buildTestAsset(vault.ID, tx.ID, schema.AssetOriginContributed, schema.AssetStatusLocked, 100)
	fungible.Type = schema.AssetTypeFungible
	fungible.Quantity = 10
	released := buildTestAsset(vault.ID, tx.ID, schema.AssetOriginContributed, schema.AssetStatusReleased, 100)
	require.NoError(t, store.CreateAssets(ctx, []schema.Asset{nft, fungible, released}))

	err := store.UpdateAssetValuations(ctx, []ValuationUpdate{
		{AssetID: nft.ID, PriceAda: decimal.NewFromInt(150)},
		{AssetID: fungible.ID, PriceAda: decimal.NewFromInt(12)},
		{AssetID: released.ID, PriceAda: decimal.NewFromInt(999)},
	})
	require.NoError(t, err)

	gotNft, err := store.GetAsset(ctx, nft.ID)
	require.NoError(t, err)
	require.NotNil(t, gotNft.FloorPriceAda)
	assert.True(t, gotNft.FloorPriceAda.Equal(decimal.NewFromInt(150)))
	assert.NotNil(t, gotNft.LastValuationAt)

	gotFungible, err := store.GetAsset(ctx, fungible.ID)
	require.NoError(t, err)
	require.NotNil(t, gotFungible.DexPriceAda)
	assert.True(t, gotFungible.DexPriceAda.Equal(decimal.NewFromInt(12)))

	// Released assets keep the valuation they settled at
	gotReleased, err := store.GetAsset(ctx, released.ID)
	require.NoError(t, err)
	assert.Nil(t, gotReleased.FloorPriceAda)
}

func testVaultTotals(t *testing.T, store Store) {
	ctx := context.Background()

	vault := buildTestVault(schema.VaultStatusAcquire)
	require.NoError(t, store.CreateVault(ctx, vault))

	txA := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusConfirmed)
	txB := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusConfirmed)
	txC := buildTestTransaction(&vault.ID, schema.TransactionTypeAcquire, schema.TransactionStatusConfirmed)
	for _, tx := range []*schema.Transaction{txA, txB, txC} {
		require.NoError(t, store.CreateTransaction(ctx, tx))
	}

	assets := []schema.Asset{
		buildTestAsset(vault.ID, txA.ID, schema.AssetOriginContributed, schema.AssetStatusLocked, 600),
		buildTestAsset(vault.ID, txA.ID, schema.AssetOriginContributed, schema.AssetStatusLocked, 400),
		buildTestAsset(vault.ID, txB.ID, schema.AssetOriginContributed, schema.AssetStatusLocked, 1000),
		buildTestAsset(vault.ID, txC.ID, schema.AssetOriginAcquired, schema.AssetStatusLocked, 500),
		// Pending custody is excluded from threshold evaluation
		buildTestAsset(vault.ID, txB.ID, schema.AssetOriginContributed, schema.AssetStatusPending, 9999),
	}
	require.NoError(t, store.CreateAssets(ctx, assets))

	totals, err := store.GetVaultTotals(ctx, vault.ID)
	require.NoError(t, err)
	assert.True(t, totals.ContributedValueAda.Equal(decimal.NewFromInt(2000)),
		"contributed %s", totals.ContributedValueAda)
	assert.True(t, totals.AcquiredAda.Equal(decimal.NewFromInt(500)),
		"acquired %s", totals.AcquiredAda)
	assert.Equal(t, int64(4), totals.AssetCount)
	assert.Equal(t, int64(2), totals.ContributionCount)

	byOrigin, err := store.AggregateLockedValueByOrigin(ctx, vault.ID)
	require.NoError(t, err)
	assert.True(t, byOrigin[schema.AssetOriginContributed].Equal(decimal.NewFromInt(2000)))
	assert.True(t, byOrigin[schema.AssetOriginAcquired].Equal(decimal.NewFromInt(500)))
}

// =============================================================================
// Test: Claims
// =============================================================================

func testClaims(t *testing.T, store Store) {
	ctx := context.Background()

	vault := buildTestVault(schema.VaultStatusTerminating)
	require.NoError(t, store.CreateVault(ctx, vault))
	origin := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusConfirmed)
	require.NoError(t, store.CreateTransaction(ctx, origin))

	claims := []schema.Claim{
		buildTestClaim(vault.ID, "user-a", origin.ID, schema.ClaimStatusAvailable, 100),
		buildTestClaim(vault.ID, "user-b", origin.ID, schema.ClaimStatusAvailable, 200),
		buildTestClaim(vault.ID, "user-c", origin.ID, schema.ClaimStatusClaimed, 300),
	}
	claims[2].Type = schema.ClaimTypeAcquirer
	require.NoError(t, store.CreateClaims(ctx, claims))

	t.Run("list by status and type", func(t *testing.T) {
		available, err := store.ListClaimsByStatus(ctx, vault.ID, schema.ClaimStatusAvailable)
		require.NoError(t, err)
		assert.Len(t, available, 2)

		acquirers, err := store.ListClaimsByStatus(ctx, vault.ID, schema.ClaimStatusClaimed, schema.ClaimTypeAcquirer)
		require.NoError(t, err)
		require.Len(t, acquirers, 1)
		assert.Equal(t, claims[2].ID, acquirers[0].ID)
	})

	t.Run("assign to batch", func(t *testing.T) {
		err := store.AssignClaimsToBatch(ctx, []string{claims[0].ID, claims[1].ID}, 1)
		require.NoError(t, err)

		batch, err := store.ListClaimsByBatch(ctx, vault.ID, 1)
		require.NoError(t, err)
		require.Len(t, batch, 2)
		for _, c := range batch {
			assert.Equal(t, schema.ClaimStatusPending, c.Status)
			require.NotNil(t, c.DistributionBatch)
			assert.Equal(t, 1, *c.DistributionBatch)
		}
	})

	t.Run("assign rejects claims that are not available", func(t *testing.T) {
		err := store.AssignClaimsToBatch(ctx, []string{claims[2].ID}, 2)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("settle batch", func(t *testing.T) {
		distribution := buildTestTransaction(&vault.ID, schema.TransactionTypeDistribution, schema.TransactionStatusConfirmed)
		require.NoError(t, store.CreateTransaction(ctx, distribution))

		err := store.SettleClaims(ctx, []string{claims[0].ID, claims[1].ID}, distribution.ID)
		require.NoError(t, err)

		settled, err := store.ListClaimsByStatus(ctx, vault.ID, schema.ClaimStatusClaimed)
		require.NoError(t, err)
		assert.Len(t, settled, 3)
		for _, c := range settled {
			if c.ID == claims[2].ID {
				continue
			}
			require.NotNil(t, c.DistributionTransactionID)
			assert.Equal(t, distribution.ID, *c.DistributionTransactionID)
		}
	})
}

func testSettleClaimsAllOrNothing(t *testing.T, store Store) {
	ctx := context.Background()

	vault := buildTestVault(schema.VaultStatusTerminating)
	require.NoError(t, store.CreateVault(ctx, vault))
	origin := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusConfirmed)
	require.NoError(t, store.CreateTransaction(ctx, origin))

	settleable := buildTestClaim(vault.ID, "user-a", origin.ID, schema.ClaimStatusPending, 100)
	alreadyClaimed := buildTestClaim(vault.ID, "user-b", origin.ID, schema.ClaimStatusClaimed, 200)
	require.NoError(t, store.CreateClaims(ctx, []schema.Claim{settleable, alreadyClaimed}))

	err := store.SettleClaims(ctx, []string{settleable.ID, alreadyClaimed.ID}, uuid.NewString())
	require.ErrorIs(t, err, domain.ErrInvalidState)

	// The settleable claim must roll back with the failed batch
	pending, listErr := store.ListClaimsByStatus(ctx, vault.ID, schema.ClaimStatusPending)
	require.NoError(t, listErr)
	require.Len(t, pending, 1)
	assert.Equal(t, settleable.ID, pending[0].ID)
	assert.Nil(t, pending[0].DistributionTransactionID)
}

func testReturnClaimsToPool(t *testing.T, store Store) {
	ctx := context.Background()

	vault := buildTestVault(schema.VaultStatusTerminating)
	require.NoError(t, store.CreateVault(ctx, vault))
	origin := buildTestTransaction(&vault.ID, schema.TransactionTypeContribute, schema.TransactionStatusConfirmed)
	require.NoError(t, store.CreateTransaction(ctx, origin))

	claim := buildTestClaim(vault.ID, "user-a", origin.ID, schema.ClaimStatusAvailable, 100)
	require.NoError(t, store.CreateClaims(ctx, []schema.Claim{claim}))
	require.NoError(t, store.AssignClaimsToBatch(ctx, []string{claim.ID}, 1))

	require.NoError(t, store.ReturnClaimsToPool(ctx, []string{claim.ID}))

	available, err := store.ListClaimsByStatus(ctx, vault.ID, schema.ClaimStatusAvailable)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, claim.ID, available[0].ID)
	assert.Nil(t, available[0].DistributionBatch)
}

// =============================================================================
// Test: Treasury wallets
// =============================================================================

func testTreasuryWallets(t *testing.T, store Store) {
	ctx := context.Background()

	vault := buildTestVault(schema.VaultStatusCreated)
	require.NoError(t, store.CreateVault(ctx, vault))

	wallet := &schema.TreasuryWallet{
		ID:                  uuid.NewString(),
		VaultID:             vault.ID,
		Address:             "addr1treasury",
		PublicKeyHash:       "pkh-1",
		EncryptedPrivateKey: []byte("ciphertext"),
		KeyID:               "key-1",
		Active:              true,
	}
	require.NoError(t, store.CreateTreasuryWallet(ctx, wallet))

	t.Run("get active wallet", func(t *testing.T) {
		got, err := store.GetTreasuryWallet(ctx, vault.ID)
		require.NoError(t, err)
		assert.Equal(t, wallet.ID, got.ID)
		assert.Equal(t, "addr1treasury", got.Address)
		assert.Equal(t, []byte("ciphertext"), got.EncryptedPrivateKey)
	})

	t.Run("provisioning is exactly once per vault", func(t *testing.T) {
		dup := &schema.TreasuryWallet{
			ID:                  uuid.NewString(),
			VaultID:             vault.ID,
			Address:             "addr1other",
			PublicKeyHash:       "pkh-2",
			EncryptedPrivateKey: []byte("other"),
			KeyID:               "key-1",
			Active:              true,
		}
		err := store.CreateTreasuryWallet(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrTreasuryAlreadyProvisioned)
	})

	t.Run("unprovisioned vault", func(t *testing.T) {
		_, err := store.GetTreasuryWallet(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrTreasuryWalletNotFound)
	})
}

// =============================================================================
// Test Runner - runs all tests against a given store implementation
// =============================================================================

func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"Vaults", testVaults},
		{"ListActiveVaults", testListActiveVaults},
		{"UpdateVaultGuarded", testUpdateVaultGuarded},
		{"Transactions", testTransactions},
		{"ListReconcilableTransactions", testListReconcilableTransactions},
		{"HasPendingTransaction", testHasPendingTransaction},
		{"TransitionTransaction", testTransitionTransaction},
		{"Assets", testAssets},
		{"UpdateAssetValuations", testUpdateAssetValuations},
		{"VaultTotals", testVaultTotals},
		{"Claims", testClaims},
		{"SettleClaimsAllOrNothing", testSettleClaimsAllOrNothing},
		{"ReturnClaimsToPool", testReturnClaimsToPool},
		{"TreasuryWallets", testTreasuryWallets},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
