package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fractionlabs/vault-engine/internal/adapter"
	"github.com/fractionlabs/vault-engine/internal/claims"
	"github.com/fractionlabs/vault-engine/internal/custody"
	"github.com/fractionlabs/vault-engine/internal/domain"
	"github.com/fractionlabs/vault-engine/internal/logger"
	"github.com/fractionlabs/vault-engine/internal/store"
	"github.com/fractionlabs/vault-engine/internal/store/schema"
)

var hundred = decimal.NewFromInt(100)

// Action is the kind of decision the evaluation produced
type Action string

const (
	// ActionStay keeps the vault in its current phase
	ActionStay Action = "stay"
	// ActionAdvance moves the vault to the next phase
	ActionAdvance Action = "advance"
	// ActionFail moves the vault to the failed phase with a typed reason
	ActionFail Action = "fail"
)

// Decision is the outcome of evaluating a vault against its windows and
// thresholds. Decisions carry no side effects; Apply executes them.
type Decision struct {
	Action  Action
	Next    schema.VaultStatus
	Failure *domain.VaultFailure
}

func stay() Decision {
	return Decision{Action: ActionStay}
}

func advance(next schema.VaultStatus) Decision {
	return Decision{Action: ActionAdvance, Next: next}
}

func fail(reason domain.FailureReason, details map[string]interface{}) Decision {
	return Decision{
		Action:  ActionFail,
		Next:    schema.VaultStatusFailed,
		Failure: &domain.VaultFailure{Reason: reason, Details: details},
	}
}

// Machine owns vault phase transitions. Evaluate is pure and reads only
// reconciled totals; Apply persists a decision and returns the lifecycle
// events to publish.
//
//go:generate mockgen -source=machine.go -destination=../mocks/machine.go -package=mocks -mock_names=Machine=MockMachine
type Machine interface {
	// Evaluate inspects the vault's phase window and confirmed totals and
	// decides whether it stays, advances, or fails. Pure: no I/O, no mutation.
	// Totals must come from confirmed transactions only.
	Evaluate(vault *schema.Vault, totals *domain.VaultTotals, now time.Time) Decision
	// Apply persists the decision under the vault's optimistic lock, runs the
	// failure release path when failing, and returns the events to publish.
	// Event emission is an explicit output so the state machine is testable
	// without an event bus.
	Apply(ctx context.Context, vault *schema.Vault, decision Decision) ([]domain.Event, error)
	// StartDistribution partitions the vault's outstanding claims into payout
	// batches and records the total batch count on the vault
	StartDistribution(ctx context.Context, vault *schema.Vault, maxRecipientsPerTx int) ([]domain.Event, error)
}

type machine struct {
	store  store.Store
	ledger custody.Ledger
	claims claims.Engine
	clock  adapter.Clock
}

// NewMachine creates the vault lifecycle state machine
func NewMachine(st store.Store, assetLedger custody.Ledger, claimsEngine claims.Engine, clock adapter.Clock) Machine {
	return &machine{
		store:  st,
		ledger: assetLedger,
		claims: claimsEngine,
		clock:  clock,
	}
}

func (m *machine) Evaluate(vault *schema.Vault, totals *domain.VaultTotals, now time.Time) Decision {
	switch vault.Status.Normalize() {
	case schema.VaultStatusDraft:
		// Leaves draft when the creation transaction confirms, which is the
		// orchestrator's doing, not the sweep's
		return stay()

	case schema.VaultStatusCreated:
		if vault.ContributionOpenTime == nil {
			return stay()
		}
		return advance(schema.VaultStatusPublished)

	case schema.VaultStatusPublished:
		if vault.ContributionOpenTime == nil || now.Before(*vault.ContributionOpenTime) {
			return stay()
		}
		return advance(schema.VaultStatusContribution)

	case schema.VaultStatusContribution:
		return evaluateContribution(vault, totals, now)

	case schema.VaultStatusAcquire:
		return evaluateAcquire(vault, totals, now)

	case schema.VaultStatusLocked, schema.VaultStatusGovernance:
		return evaluateSteadyState(vault, now)

	case schema.VaultStatusExpansion:
		close := vault.ExpansionCloseTime()
		if close == nil || now.Before(*close) {
			return stay()
		}
		// The expansion sub-cycle closes back into locked; an expansion
		// shortfall is not a vault failure and existing claims are untouched
		return advance(schema.VaultStatusLocked)

	case schema.VaultStatusTerminating:
		if vault.TotalDistributionBatches > 0 && vault.CurrentDistributionBatch < vault.TotalDistributionBatches {
			// Wind-down payouts still in flight
			return stay()
		}
		close := terminationCloseTime(vault)
		if close == nil || now.Before(*close) {
			return stay()
		}
		return advance(schema.VaultStatusBurned)

	default:
		return stay()
	}
}

func evaluateContribution(vault *schema.Vault, totals *domain.VaultTotals, now time.Time) Decision {
	close := vault.ContributionCloseTime()
	if close == nil || now.Before(*close) {
		return stay()
	}

	if totals.ContributionCount == 0 {
		return fail(domain.FailureReasonNoContributions, map[string]interface{}{
			"contribution_close_time": close.UTC(),
		})
	}
	if vault.MaxContributedAssets > 0 && totals.AssetCount > vault.MaxContributedAssets {
		return fail(domain.FailureReasonAssetThresholdViolation, map[string]interface{}{
			"asset_count":            totals.AssetCount,
			"max_contributed_assets": vault.MaxContributedAssets,
		})
	}
	if totals.ContributedValueAda.LessThan(vault.CreationThresholdAda) {
		return fail(domain.FailureReasonAssetThresholdViolation, map[string]interface{}{
			"contributed_value_ada":  totals.ContributedValueAda.String(),
			"creation_threshold_ada": vault.CreationThresholdAda.String(),
		})
	}
	return advance(schema.VaultStatusAcquire)
}

func evaluateAcquire(vault *schema.Vault, totals *domain.VaultTotals, now time.Time) Decision {
	close := vault.AcquireCloseTime()
	if close == nil || now.Before(*close) {
		return stay()
	}

	if totals.AcquiredAda.LessThan(vault.StartThresholdAda) {
		return fail(domain.FailureReasonAcquireThresholdNotMet, map[string]interface{}{
			"acquired_ada":        totals.AcquiredAda.String(),
			"start_threshold_ada": vault.StartThresholdAda.String(),
		})
	}
	return advance(schema.VaultStatusLocked)
}

// evaluateSteadyState checks whether a locked/governance vault should enter
// its termination or expansion windows. Governance votes themselves are an
// external concern; by the time a window is stamped on the vault, the vote
// already passed.
func evaluateSteadyState(vault *schema.Vault, now time.Time) Decision {
	if vault.TerminationOpenTime != nil && !now.Before(*vault.TerminationOpenTime) {
		return advance(schema.VaultStatusTerminating)
	}
	if vault.ExpansionOpenTime != nil && !now.Before(*vault.ExpansionOpenTime) {
		if close := vault.ExpansionCloseTime(); close != nil && now.Before(*close) {
			return advance(schema.VaultStatusExpansion)
		}
	}
	return stay()
}

func terminationCloseTime(vault *schema.Vault) *time.Time {
	if vault.TerminationOpenTime == nil {
		return nil
	}
	t := vault.TerminationOpenTime.Add(vault.TerminationDuration)
	return &t
}

func (m *machine) Apply(ctx context.Context, vault *schema.Vault, decision Decision) ([]domain.Event, error) {
	switch decision.Action {
	case ActionStay:
		return nil, nil
	case ActionAdvance:
		return m.applyAdvance(ctx, vault, decision.Next)
	case ActionFail:
		return m.applyFailure(ctx, vault, decision.Failure)
	default:
		return nil, fmt.Errorf("unknown decision action %q", decision.Action)
	}
}

func (m *machine) applyAdvance(ctx context.Context, vault *schema.Vault, next schema.VaultStatus) ([]domain.Event, error) {
	current := vault.Status.Normalize()
	if !current.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: vault %s cannot move %s -> %s", domain.ErrInvalidState, vault.ID, current, next)
	}

	now := m.clock.Now()
	if next == schema.VaultStatusLocked && vault.AcquireMultiplier == nil {
		if err := m.freezeMultipliers(ctx, vault, now); err != nil {
			return nil, err
		}
	}
	if next == schema.VaultStatusTerminating {
		if err := m.createTerminationClaims(ctx, vault); err != nil {
			return nil, err
		}
	}

	vault.Status = next
	vault.PhaseStartedAt = &now
	if err := m.store.UpdateVaultGuarded(ctx, vault); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Vault advanced",
		zap.String("vault_id", vault.ID),
		zap.String("from", string(current)),
		zap.String("to", string(next)),
	)
	return m.eventsForAdvance(vault, current, next, now), nil
}

// freezeMultipliers computes the vault's distribution rates once, at lock, so
// every recipient of the distribution event is paid at the same rate no matter
// which batch carries them. Later batches reuse these values; they are never
// re-derived from live prices.
func (m *machine) freezeMultipliers(ctx context.Context, vault *schema.Vault, now time.Time) error {
	totals, err := m.ledger.VaultTotals(ctx, vault.ID)
	if err != nil {
		return err
	}
	if totals.ContributedValueAda.IsZero() || totals.AcquiredAda.IsZero() {
		return fmt.Errorf("%w: vault %s cannot freeze multipliers with zero totals", domain.ErrInvalidState, vault.ID)
	}

	reserveAda := totals.AcquiredAda.Mul(vault.AcquireReservePercent).Div(hundred)
	lpAda := totals.AcquiredAda.Mul(vault.LiquidityPoolPercent).Div(hundred)
	distributableAda := totals.AcquiredAda.Sub(reserveAda).Sub(lpAda)

	// Contributors are paid distributable ADA pro rata to contributed value;
	// acquirers receive vault tokens pro rata to ADA paid, with token supply
	// pegged to contributed value
	acquireMultiplier := distributableAda.Div(totals.ContributedValueAda)
	adaPairMultiplier := totals.ContributedValueAda.
		Mul(vault.TokenForAcquiresPercent).Div(hundred).
		Div(totals.AcquiredAda)

	vault.AcquireMultiplier = &acquireMultiplier
	vault.AdaPairMultiplier = &adaPairMultiplier

	multipliers, err := json.Marshal(map[string]string{
		"acquire_multiplier":  acquireMultiplier.String(),
		"ada_pair_multiplier": adaPairMultiplier.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode frozen multipliers: %w", err)
	}
	adaDistribution, err := json.Marshal(map[string]string{
		"acquired_ada":      totals.AcquiredAda.String(),
		"reserve_ada":       reserveAda.String(),
		"liquidity_ada":     lpAda.String(),
		"distributable_ada": distributableAda.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode ada distribution payload: %w", err)
	}
	vault.PendingMultipliers = multipliers
	vault.PendingAdaDistribution = adaDistribution

	logger.InfoCtx(ctx, "Froze distribution multipliers",
		zap.String("vault_id", vault.ID),
		zap.String("acquire_multiplier", acquireMultiplier.String()),
		zap.String("ada_pair_multiplier", adaPairMultiplier.String()),
		zap.Time("frozen_at", now),
	)
	return nil
}

func (m *machine) eventsForAdvance(vault *schema.Vault, from, to schema.VaultStatus, now time.Time) []domain.Event {
	event := func(t domain.EventType, payload map[string]interface{}) domain.Event {
		return domain.Event{
			EventID:   ulid.MustNewDefault(now).String(),
			Type:      t,
			VaultID:   vault.ID,
			Timestamp: now,
			Payload:   payload,
		}
	}

	switch to {
	case schema.VaultStatusContribution:
		return []domain.Event{event(domain.EventVaultLaunched, map[string]interface{}{
			"contribution_close_time": vault.ContributionCloseTime(),
		})}
	case schema.VaultStatusAcquire:
		return []domain.Event{
			event(domain.EventVaultContributionComplete, nil),
			event(domain.EventVaultAcquireOpen, map[string]interface{}{
				"acquire_close_time": vault.AcquireCloseTime(),
			}),
		}
	case schema.VaultStatusLocked:
		if from == schema.VaultStatusExpansion {
			// Closing an expansion sub-cycle is not a second launch
			return nil
		}
		return []domain.Event{event(domain.EventVaultSuccess, map[string]interface{}{
			"total_assets_cost_ada": vault.TotalAssetsCostAda.String(),
		})}
	case schema.VaultStatusTerminating:
		return []domain.Event{event(domain.EventVaultTermination, nil)}
	case schema.VaultStatusExpansion:
		return []domain.Event{event(domain.EventVaultExpansionStarted, map[string]interface{}{
			"expansion_close_time": vault.ExpansionCloseTime(),
		})}
	case schema.VaultStatusBurned:
		return []domain.Event{event(domain.EventVaultBurned, nil)}
	default:
		return nil
	}
}

// applyFailure moves the vault to failed with its typed failure payload, then
// runs the refund path: locked assets are released and contributors get
// cancellation claims for their confirmed value
func (m *machine) applyFailure(ctx context.Context, vault *schema.Vault, failure *domain.VaultFailure) ([]domain.Event, error) {
	current := vault.Status.Normalize()
	if !current.CanTransitionTo(schema.VaultStatusFailed) {
		return nil, fmt.Errorf("%w: vault %s cannot fail from %s", domain.ErrInvalidState, vault.ID, current)
	}

	details, err := json.Marshal(failure.Details)
	if err != nil {
		return nil, fmt.Errorf("failed to encode failure details: %w", err)
	}

	now := m.clock.Now()
	vault.Status = schema.VaultStatusFailed
	vault.PhaseStartedAt = &now
	vault.FailureReason = string(failure.Reason)
	vault.FailureDetails = details
	if err := m.store.UpdateVaultGuarded(ctx, vault); err != nil {
		return nil, err
	}

	logger.WarnCtx(ctx, "Vault failed",
		zap.String("vault_id", vault.ID),
		zap.String("from", string(current)),
		zap.String("reason", string(failure.Reason)),
	)

	events := []domain.Event{{
		EventID:   ulid.MustNewDefault(now).String(),
		Type:      domain.EventVaultFailed,
		VaultID:   vault.ID,
		Timestamp: now,
		Payload: map[string]interface{}{
			"reason":  string(failure.Reason),
			"details": failure.Details,
		},
	}}

	claimEvents, err := m.createCancellationClaims(ctx, vault, now)
	if err != nil {
		// Refund claims are recoverable by a later sweep; the failure itself
		// is already persisted
		logger.ErrorCtx(ctx, err, zap.String("vault_id", vault.ID))
	} else {
		events = append(events, claimEvents...)
	}

	if _, err := m.ledger.ReleaseAllLocked(ctx, vault.ID); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("vault_id", vault.ID))
	}
	return events, nil
}

// createCancellationClaims records one refund claim per contributor for the
// full confirmed value of their locked assets
func (m *machine) createCancellationClaims(ctx context.Context, vault *schema.Vault, now time.Time) ([]domain.Event, error) {
	assets, err := m.store.ListAssetsByVault(ctx, vault.ID, schema.AssetStatusLocked)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, nil
	}

	type refund struct {
		amount   decimal.Decimal
		originTx string
	}
	byUser := make(map[string]*refund)
	var order []string
	for _, asset := range assets {
		if asset.UserID == nil {
			continue
		}
		r, ok := byUser[*asset.UserID]
		if !ok {
			r = &refund{originTx: asset.TransactionID}
			byUser[*asset.UserID] = r
			order = append(order, *asset.UserID)
		}
		r.amount = r.amount.Add(asset.CurrentValueAda())
	}

	claimRows := make([]schema.Claim, 0, len(order))
	events := make([]domain.Event, 0, len(order))
	for _, userID := range order {
		r := byUser[userID]
		claim := schema.Claim{
			ID:                  uuid.NewString(),
			VaultID:             vault.ID,
			UserID:              userID,
			Type:                schema.ClaimTypeCancellation,
			AmountAda:           r.amount,
			Status:              schema.ClaimStatusAvailable,
			OriginTransactionID: r.originTx,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		claimRows = append(claimRows, claim)
		events = append(events, domain.Event{
			EventID:   ulid.MustNewDefault(now).String(),
			Type:      domain.EventClaimAvailable,
			VaultID:   vault.ID,
			Timestamp: now,
			Payload: map[string]interface{}{
				"claim_id":   claim.ID,
				"user_id":    userID,
				"claim_type": string(schema.ClaimTypeCancellation),
				"amount_ada": r.amount.String(),
			},
		})
	}

	if err := m.store.CreateClaims(ctx, claimRows); err != nil {
		return nil, err
	}
	return events, nil
}

// createTerminationClaims records one wind-down claim per holder of the
// vault's locked assets. Holders with an outstanding claim are skipped so a
// retried advance never doubles a payout. Claim announcement happens at
// batching, once each claim has its distribution batch.
func (m *machine) createTerminationClaims(ctx context.Context, vault *schema.Vault) error {
	assets, err := m.store.ListAssetsByVault(ctx, vault.ID, schema.AssetStatusLocked)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		return nil
	}

	outstanding, err := m.store.ListClaimsByStatus(ctx, vault.ID, schema.ClaimStatusAvailable)
	if err != nil {
		return err
	}
	hasClaim := make(map[string]bool, len(outstanding))
	for _, claim := range outstanding {
		hasClaim[claim.UserID] = true
	}

	type payout struct {
		amount   decimal.Decimal
		originTx string
	}
	byUser := make(map[string]*payout)
	var order []string
	for _, asset := range assets {
		if asset.UserID == nil || hasClaim[*asset.UserID] {
			continue
		}
		p, ok := byUser[*asset.UserID]
		if !ok {
			p = &payout{originTx: asset.TransactionID}
			byUser[*asset.UserID] = p
			order = append(order, *asset.UserID)
		}
		p.amount = p.amount.Add(asset.CurrentValueAda())
	}

	for _, userID := range order {
		p := byUser[userID]
		originTx, err := m.store.GetTransaction(ctx, p.originTx)
		if err != nil {
			return err
		}
		if _, err := m.claims.ComputeClaim(ctx, vault, userID, schema.ClaimTypeTermination, originTx, p.amount); err != nil {
			return err
		}
	}
	return nil
}

func (m *machine) StartDistribution(ctx context.Context, vault *schema.Vault, maxRecipientsPerTx int) ([]domain.Event, error) {
	if events, err := m.resumeAssignedBatches(ctx, vault); err != nil || len(events) > 0 {
		return events, err
	}

	batches, err := m.claims.BatchForPayout(ctx, vault, maxRecipientsPerTx)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, nil
	}

	lastBatch := batches[len(batches)-1]
	prevTotal := vault.TotalDistributionBatches
	vault.TotalDistributionBatches = derefInt(lastBatch[0].DistributionBatch)
	if err := m.store.UpdateVaultGuarded(ctx, vault); err != nil {
		// The batch numbers already written onto the claims stay behind;
		// resumeAssignedBatches recovers them on the next cycle
		vault.TotalDistributionBatches = prevTotal
		return nil, err
	}

	now := m.clock.Now()
	events := make([]domain.Event, 0, len(batches))
	for _, batch := range batches {
		for _, claim := range batch {
			events = append(events, domain.Event{
				EventID:   ulid.MustNewDefault(now).String(),
				Type:      domain.EventClaimAvailable,
				VaultID:   vault.ID,
				Timestamp: now,
				Payload: map[string]interface{}{
					"claim_id":   claim.ID,
					"user_id":    claim.UserID,
					"claim_type": string(claim.Type),
					"amount_ada": claim.AmountAda.String(),
					"batch":      derefInt(claim.DistributionBatch),
				},
			})
		}
	}

	logger.InfoCtx(ctx, "Started distribution",
		zap.String("vault_id", vault.ID),
		zap.Int("batches", len(batches)),
		zap.Int("total_batches", vault.TotalDistributionBatches),
	)
	return events, nil
}

// resumeAssignedBatches recovers a kickoff that wrote batch assignments onto
// the claims but lost the vault update to a version conflict or a crash. The
/// assigned batch numbers are the source of truth: the vault's total is
// re-derived from them so the terminating wait gate engages instead of
// letting the vault burn over unsettled claims.
func (m *machine) resumeAssignedBatches(ctx context.Context, vault *schema.Vault) ([]domain.Event, error) {
	assigned, err := m.store.ListClaimsByStatus(ctx, vault.ID, schema.ClaimStatusPending)
	if err != nil {
		return nil, err
	}

	maxBatch := vault.TotalDistributionBatches
	for _, claim := range assigned {
		if claim.DistributionBatch != nil && *claim.DistributionBatch > maxBatch {
			maxBatch = *claim.DistributionBatch
		}
	}
	if maxBatch == vault.TotalDistributionBatches {
		return nil, nil
	}

	prevTotal := vault.TotalDistributionBatches
	vault.TotalDistributionBatches = maxBatch
	if err := m.store.UpdateVaultGuarded(ctx, vault); err != nil {
		vault.TotalDistributionBatches = prevTotal
		return nil, err
	}

	now := m.clock.Now()
	events := make([]domain.Event, 0, len(assigned))
	for _, claim := range assigned {
		if claim.DistributionBatch == nil || *claim.DistributionBatch <= prevTotal {
			continue
		}
		events = append(events, domain.Event{
			EventID:   ulid.MustNewDefault(now).String(),
			Type:      domain.EventClaimAvailable,
			VaultID:   vault.ID,
			Timestamp: now,
			Payload: map[string]interface{}{
				"claim_id":   claim.ID,
				"user_id":    claim.UserID,
				"claim_type": string(claim.Type),
				"amount_ada": claim.AmountAda.String(),
				"batch":      *claim.DistributionBatch,
			},
		})
	}

	logger.InfoCtx(ctx, "Resumed interrupted distribution kickoff",
		zap.String("vault_id", vault.ID),
		zap.Int("total_batches", maxBatch),
		zap.Int("claims", len(events)),
	)
	return events, nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
