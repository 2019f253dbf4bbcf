package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FailureReason classifies why a vault reached the failed state.
// A vault failure is a defined business outcome, not a system error.
type FailureReason string

const (
	// FailureReasonNoContributions - contribution window closed with zero confirmed contributions
	FailureReasonNoContributions FailureReason = "no_contributions"
	// FailureReasonAcquireThresholdNotMet - acquire window closed below the start threshold
	FailureReasonAcquireThresholdNotMet FailureReason = "acquire_threshold_not_met"
	// FailureReasonAssetThresholdViolation - confirmed asset set violates the vault's asset constraints
	FailureReasonAssetThresholdViolation FailureReason = "asset_threshold_violation"
	// FailureReasonCosigningThresholdNotMet - vault-initiated operation could not gather cosigners
	FailureReasonCosigningThresholdNotMet FailureReason = "cosigning_threshold_not_met"
)

// VaultFailure is the structured payload persisted when a vault fails.
// Details are typed data so downstream consumers can render them deterministically.
type VaultFailure struct {
	Reason  FailureReason          `json:"reason"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// EventType identifies a lifecycle or distribution event published to the event sink
type EventType string

const (
	EventVaultLaunched             EventType = "vault.launched"
	EventVaultContributionComplete EventType = "vault.contribution_complete"
	EventVaultAcquireOpen          EventType = "vault.acquire_open"
	EventVaultSuccess              EventType = "vault.success"
	EventVaultFailed               EventType = "vault.failed"
	EventVaultTermination          EventType = "vault.termination"
	EventVaultExpansionStarted     EventType = "vault.expansion_started"
	EventVaultBurned               EventType = "vault.burned"
	EventClaimAvailable            EventType = "distribution.claim_available"
	EventClaimSettled              EventType = "distribution.claim_settled"
	EventDistributionBatchComplete EventType = "distribution.batch_complete"
)

// Event is the normalized event published to the event sink.
// EventID is a ULID so events are unique and time-sortable.
type Event struct {
	EventID   string                 `json:"event_id"`
	Type      EventType              `json:"type"`
	VaultID   string                 `json:"vault_id"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// VaultTotals carries the confirmed aggregate amounts the lifecycle state
// machine evaluates thresholds against. Totals are only ever derived from
// confirmed transactions; the state machine never sees in-flight amounts.
type VaultTotals struct {
	// ContributedValueAda is the confirmed value of contributed assets
	ContributedValueAda decimal.Decimal
	// AcquiredAda is the confirmed ADA paid in during the acquire phase
	AcquiredAda decimal.Decimal
	// ContributionCount is the number of confirmed contribution transactions
	ContributionCount int64
	// AssetCount is the number of locked assets
	AssetCount int64
}

// UTXO is an unspent output on the settlement chain
type UTXO struct {
	TxHash string          `json:"tx_hash"`
	Index  uint32          `json:"index"`
	Amount decimal.Decimal `json:"amount"`
	// Assets maps "policyID.assetName" to quantity for native assets on this output
	Assets map[string]uint64 `json:"assets,omitempty"`
}

// PendingAssetDescriptor describes an asset carried in transaction metadata
// before confirmation. Descriptors are authoritative until the orchestrator
// materializes them into asset rows, after which the rows are the source of truth.
type PendingAssetDescriptor struct {
	PolicyID  string          `json:"policy_id"`
	AssetID   string          `json:"asset_id"`
	Type      string          `json:"type"` // nft, fungible, ada
	Quantity  uint64          `json:"quantity"`
	ValueAda  decimal.Decimal `json:"value_ada"`
	UserID    string          `json:"user_id,omitempty"`
	UserStake string          `json:"user_stake,omitempty"`
}
