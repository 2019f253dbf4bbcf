package claims

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fractionlabs/vault-engine/internal/adapter"
	"github.com/fractionlabs/vault-engine/internal/domain"
	"github.com/fractionlabs/vault-engine/internal/logger"
	"github.com/fractionlabs/vault-engine/internal/store"
	"github.com/fractionlabs/vault-engine/internal/store/schema"
)

var hundred = decimal.NewFromInt(100)

// Engine computes per-user entitlements and batches payouts when one
// transaction cannot carry every recipient
//
//go:generate mockgen -source=engine.go -destination=../mocks/claims.go -package=mocks -mock_names=Engine=MockEngine
type Engine interface {
	// ComputeClaim derives a user's entitlement from their confirmed share and
	// the vault's frozen multipliers. Deterministic: the same inputs always
	// produce the same amount. The claim is created available.
	ComputeClaim(ctx context.Context, vault *schema.Vault, userID string, claimType schema.ClaimType, originTx *schema.Transaction, baseAmount decimal.Decimal) (*schema.Claim, error)
	// BatchForPayout partitions the vault's outstanding available claims into
	// batches of at most maxRecipientsPerTx, assigning sequential batch numbers
	// starting after the highest batch the vault has ever assigned
	BatchForPayout(ctx context.Context, vault *schema.Vault, maxRecipientsPerTx int) ([][]schema.Claim, error)
	// SettleBatch marks every claim of a batch claimed once its distribution
	// transaction confirmed. All-or-nothing: a partially confirmed batch
	// settles no claims. Returns the events to publish.
	SettleBatch(ctx context.Context, batchClaims []schema.Claim, distributionTx *schema.Transaction) ([]domain.Event, error)
}

type engine struct {
	store store.Store
	clock adapter.Clock
}

// NewEngine creates a claims and distribution engine
func NewEngine(st store.Store, clock adapter.Clock) Engine {
	return &engine{store: st, clock: clock}
}

// entitlementAmount applies the vault's frozen multipliers to a user's base
// amount. Multipliers are computed once at lock and reused by every batch so
// all recipients of a distribution event are paid at the same rate.
func entitlementAmount(vault *schema.Vault, claimType schema.ClaimType, baseAmount decimal.Decimal) (decimal.Decimal, error) {
	switch claimType {
	case schema.ClaimTypeContributor, schema.ClaimTypeDistribution, schema.ClaimTypeFinalDistribution:
		if vault.AcquireMultiplier == nil {
			return decimal.Zero, fmt.Errorf("%w: vault %s has no frozen acquire multiplier", domain.ErrInvalidState, vault.ID)
		}
		return baseAmount.Mul(*vault.AcquireMultiplier), nil
	case schema.ClaimTypeAcquirer, schema.ClaimTypeExpansion:
		if vault.AdaPairMultiplier == nil {
			return decimal.Zero, fmt.Errorf("%w: vault %s has no frozen ada-pair multiplier", domain.ErrInvalidState, vault.ID)
		}
		return baseAmount.Mul(*vault.AdaPairMultiplier), nil
	case schema.ClaimTypeLp:
		return baseAmount.Mul(vault.LiquidityPoolPercent).Div(hundred), nil
	case schema.ClaimTypeCancellation, schema.ClaimTypeTermination:
		// Refund paths return the confirmed amount in full
		return baseAmount, nil
	default:
		return decimal.Zero, fmt.Errorf("unknown claim type %s", claimType)
	}
}

func (e *engine) ComputeClaim(ctx context.Context, vault *schema.Vault, userID string, claimType schema.ClaimType, originTx *schema.Transaction, baseAmount decimal.Decimal) (*schema.Claim, error) {
	if originTx.Status != schema.TransactionStatusConfirmed {
		return nil, fmt.Errorf("%w: claims derive only from confirmed transactions, %s is %s", domain.ErrInvalidState, originTx.ID, originTx.Status)
	}

	amount, err := entitlementAmount(vault, claimType, baseAmount)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	claim := &schema.Claim{
		ID:                  uuid.NewString(),
		VaultID:             vault.ID,
		UserID:              userID,
		Type:                claimType,
		AmountAda:           amount,
		Status:              schema.ClaimStatusAvailable,
		OriginTransactionID: originTx.ID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := e.store.CreateClaims(ctx, []schema.Claim{*claim}); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Computed claim",
		zap.String("vault_id", vault.ID),
		zap.String("user_id", userID),
		zap.String("type", string(claimType)),
		zap.String("amount_ada", amount.String()),
	)
	return claim, nil
}

func (e *engine) BatchForPayout(ctx context.Context, vault *schema.Vault, maxRecipientsPerTx int) ([][]schema.Claim, error) {
	if maxRecipientsPerTx <= 0 {
		return nil, fmt.Errorf("maxRecipientsPerTx must be positive, got %d", maxRecipientsPerTx)
	}

	outstanding, err := e.store.ListClaimsByStatus(ctx, vault.ID, schema.ClaimStatusAvailable)
	if err != nil {
		return nil, err
	}
	if len(outstanding) == 0 {
		return nil, nil
	}

	// Number past every batch ever assigned, not just the settled ones, so a
	// re-batch after a failed payout never collides with a batch in flight
	var batches [][]schema.Claim
	batchNumber := vault.CurrentDistributionBatch
	if vault.TotalDistributionBatches > batchNumber {
		batchNumber = vault.TotalDistributionBatches
	}
	for start := 0; start < len(outstanding); start += maxRecipientsPerTx {
		end := start + maxRecipientsPerTx
		if end > len(outstanding) {
			end = len(outstanding)
		}
		batchNumber++

		batch := outstanding[start:end]
		claimIDs := make([]string, len(batch))
		for i := range batch {
			claimIDs[i] = batch[i].ID
			batch[i].Status = schema.ClaimStatusPending
			b := batchNumber
			batch[i].DistributionBatch = &b
		}

		if err := e.store.AssignClaimsToBatch(ctx, claimIDs, batchNumber); err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}

	logger.InfoCtx(ctx, "Partitioned claims for payout",
		zap.String("vault_id", vault.ID),
		zap.Int("claims", len(outstanding)),
		zap.Int("batches", len(batches)),
		zap.Int("max_recipients_per_tx", maxRecipientsPerTx),
	)
	return batches, nil
}

func (e *engine) SettleBatch(ctx context.Context, batchClaims []schema.Claim, distributionTx *schema.Transaction) ([]domain.Event, error) {
	if len(batchClaims) == 0 {
		return nil, nil
	}
	if distributionTx.Status != schema.TransactionStatusConfirmed {
		return nil, fmt.Errorf("%w: distribution transaction %s is %s, batches settle only on confirmation", domain.ErrInvalidState, distributionTx.ID, distributionTx.Status)
	}

	claimIDs := make([]string, len(batchClaims))
	for i, claim := range batchClaims {
		claimIDs[i] = claim.ID
	}

	if err := e.store.SettleClaims(ctx, claimIDs, distributionTx.ID); err != nil {
		return nil, err
	}

	now := e.clock.Now()
	vaultID := batchClaims[0].VaultID
	events := make([]domain.Event, 0, len(batchClaims)+1)
	for _, claim := range batchClaims {
		events = append(events, domain.Event{
			EventID:   ulid.MustNewDefault(now).String(),
			Type:      domain.EventClaimSettled,
			VaultID:   vaultID,
			Timestamp: now,
			Payload: map[string]interface{}{
				"claim_id":   claim.ID,
				"user_id":    claim.UserID,
				"claim_type": string(claim.Type),
				"amount_ada": claim.AmountAda.String(),
				"tx_id":      distributionTx.ID,
			},
		})
	}

	batch := 0
	if batchClaims[0].DistributionBatch != nil {
		batch = *batchClaims[0].DistributionBatch
	}
	events = append(events, domain.Event{
		EventID:   ulid.MustNewDefault(now).String(),
		Type:      domain.EventDistributionBatchComplete,
		VaultID:   vaultID,
		Timestamp: now,
		Payload: map[string]interface{}{
			"batch":  batch,
			"claims": len(batchClaims),
			"tx_id":  distributionTx.ID,
		},
	})

	logger.InfoCtx(ctx, "Settled distribution batch",
		zap.String("vault_id", vaultID),
		zap.Int("batch", batch),
		zap.Int("claims", len(batchClaims)),
		zap.String("distribution_tx_id", distributionTx.ID),
	)
	return events, nil
}
