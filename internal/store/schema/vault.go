package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// VaultStatus is the lifecycle phase of a vault
type VaultStatus string

const (
	// VaultStatusDraft is the initial status of a newly created vault record
	VaultStatusDraft VaultStatus = "draft"
	// VaultStatusCreated means the on-chain vault creation transaction confirmed
	VaultStatusCreated VaultStatus = "created"
	// VaultStatusPublished means the vault is visible and waiting for its contribution window
	VaultStatusPublished VaultStatus = "published"
	// VaultStatusContribution means the contribution window is open
	VaultStatusContribution VaultStatus = "contribution"
	// VaultStatusAcquire means the acquire window is open
	VaultStatusAcquire VaultStatus = "acquire"
	// VaultStatusLocked means acquisition succeeded and assets are locked
	VaultStatusLocked VaultStatus = "locked"
	// VaultStatusGovernance means the vault is under token-holder governance
	VaultStatusGovernance VaultStatus = "governance"
	// VaultStatusTerminating means a termination vote passed and wind-down is in progress
	VaultStatusTerminating VaultStatus = "terminating"
	// VaultStatusExpansion means a re-opened acquire sub-cycle is running on a locked vault
	VaultStatusExpansion VaultStatus = "expansion"
	// VaultStatusFailed is the terminal business-failure status
	VaultStatusFailed VaultStatus = "failed"
	// VaultStatusBurned is the terminal status after the vault token is burned
	VaultStatusBurned VaultStatus = "burned"

	// vaultStatusInvestment is a deprecated legacy alias of acquire that may
	// still appear in stored rows; it is normalized on read and never written
	vaultStatusInvestment VaultStatus = "investment"
)

// vaultTransitions is the versioned transition table for vault statuses.
// Adding a status means adding its constant and its row here, nothing else.
var vaultTransitions = map[VaultStatus][]VaultStatus{
	VaultStatusDraft:        {VaultStatusCreated, VaultStatusFailed},
	VaultStatusCreated:      {VaultStatusPublished, VaultStatusFailed},
	VaultStatusPublished:    {VaultStatusContribution, VaultStatusFailed},
	VaultStatusContribution: {VaultStatusAcquire, VaultStatusFailed},
	VaultStatusAcquire:      {VaultStatusLocked, VaultStatusFailed},
	VaultStatusLocked:       {VaultStatusGovernance, VaultStatusTerminating, VaultStatusExpansion, VaultStatusBurned},
	VaultStatusGovernance:   {VaultStatusTerminating, VaultStatusExpansion, VaultStatusBurned},
	VaultStatusExpansion:    {VaultStatusLocked, VaultStatusGovernance, VaultStatusFailed},
	VaultStatusTerminating:  {VaultStatusBurned},
	VaultStatusFailed:       {},
	VaultStatusBurned:       {},
}

// Normalize maps legacy aliases onto their canonical status
func (s VaultStatus) Normalize() VaultStatus {
	if s == vaultStatusInvestment {
		return VaultStatusAcquire
	}
	return s
}

// CanTransitionTo reports whether the transition table allows moving to next
func (s VaultStatus) CanTransitionTo(next VaultStatus) bool {
	for _, allowed := range vaultTransitions[s.Normalize()] {
		if allowed == next.Normalize() {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions
func (s VaultStatus) IsTerminal() bool {
	return len(vaultTransitions[s.Normalize()]) == 0
}

// IsActive reports whether the vault should be visited by the lifecycle sweep
func (s VaultStatus) IsActive() bool {
	switch s.Normalize() {
	case VaultStatusPublished, VaultStatusContribution, VaultStatusAcquire,
		VaultStatusLocked, VaultStatusGovernance, VaultStatusTerminating, VaultStatusExpansion:
		return true
	}
	return false
}

// Vault represents the vaults table - a pooled-asset construct that issues a fractional token
type Vault struct {
	// ID is the vault's UUID
	ID string `gorm:"column:id;primaryKey;type:varchar(36)"`
	// Status is the current lifecycle phase
	Status VaultStatus `gorm:"column:status;not null;default:draft;index"`
	// OwnerID references the user that created the vault
	OwnerID string `gorm:"column:owner_id;not null;type:varchar(36);index"`
	// Name is the display name of the vault
	Name string `gorm:"column:name;not null;type:varchar(255)"`

	// Economic parameters, fixed at creation
	AcquireReservePercent    decimal.Decimal `gorm:"column:acquire_reserve_percent;type:decimal(8,4);not null;default:0"`
	TokenForAcquiresPercent  decimal.Decimal `gorm:"column:token_for_acquires_percent;type:decimal(8,4);not null;default:0"`
	LiquidityPoolPercent     decimal.Decimal `gorm:"column:liquidity_pool_percent;type:decimal(8,4);not null;default:0"`
	CreationThresholdAda     decimal.Decimal `gorm:"column:creation_threshold_ada;type:decimal(20,6);not null;default:0"`
	StartThresholdAda        decimal.Decimal `gorm:"column:start_threshold_ada;type:decimal(20,6);not null;default:0"`
	VoteThresholdPercent     decimal.Decimal `gorm:"column:vote_threshold_percent;type:decimal(8,4);not null;default:0"`
	ExecutionThresholdAda    decimal.Decimal `gorm:"column:execution_threshold_ada;type:decimal(20,6);not null;default:0"`
	CosigningThresholdAda    decimal.Decimal `gorm:"column:cosigning_threshold_ada;type:decimal(20,6);not null;default:0"`
	MaxContributedAssets     int64           `gorm:"column:max_contributed_assets;not null;default:0"`

	// Phase windows: each phase has an open time and a duration
	ContributionOpenTime *time.Time    `gorm:"column:contribution_open_time;type:timestamptz"`
	ContributionDuration time.Duration `gorm:"column:contribution_duration;not null;default:0"`
	AcquireOpenTime      *time.Time    `gorm:"column:acquire_open_time;type:timestamptz"`
	AcquireDuration      time.Duration `gorm:"column:acquire_duration;not null;default:0"`
	ExpansionOpenTime    *time.Time    `gorm:"column:expansion_open_time;type:timestamptz"`
	ExpansionDuration    time.Duration `gorm:"column:expansion_duration;not null;default:0"`
	TerminationOpenTime  *time.Time    `gorm:"column:termination_open_time;type:timestamptz"`
	TerminationDuration  time.Duration `gorm:"column:termination_duration;not null;default:0"`
	// PhaseStartedAt is stamped on every status transition
	PhaseStartedAt *time.Time `gorm:"column:phase_started_at;type:timestamptz"`

	// On-chain identifiers, set once the creation transaction confirms
	ScriptHash     string `gorm:"column:script_hash;type:varchar(64)"`
	PolicyID       string `gorm:"column:policy_id;type:varchar(64)"`
	VaultAssetName string `gorm:"column:vault_asset_name;type:varchar(64)"`
	// TreasuryAddress is recorded when the treasury wallet is provisioned
	TreasuryAddress string `gorm:"column:treasury_address;type:varchar(128)"`

	// Aggregate valuation caches. Single writer: the orchestrator's
	// confirmation handler. Recoverable via custody.RecomputeAggregates.
	TotalAssetsCostAda     decimal.Decimal `gorm:"column:total_assets_cost_ada;type:decimal(20,6);not null;default:0"`
	TotalAssetsCostUsd     decimal.Decimal `gorm:"column:total_assets_cost_usd;type:decimal(20,6);not null;default:0"`
	RequireReservedCostAda decimal.Decimal `gorm:"column:require_reserved_cost_ada;type:decimal(20,6);not null;default:0"`
	RequireReservedCostUsd decimal.Decimal `gorm:"column:require_reserved_cost_usd;type:decimal(20,6);not null;default:0"`

	// Multipliers frozen at lock time so every recipient of a distribution
	// event is paid at the same rate regardless of batch
	AcquireMultiplier *decimal.Decimal `gorm:"column:acquire_multiplier;type:decimal(20,8)"`
	AdaPairMultiplier *decimal.Decimal `gorm:"column:ada_pair_multiplier;type:decimal(20,8)"`

	// Multi-batch distribution state
	CurrentDistributionBatch int            `gorm:"column:current_distribution_batch;not null;default:0"`
	TotalDistributionBatches int            `gorm:"column:total_distribution_batches;not null;default:0"`
	PendingMultipliers       datatypes.JSON `gorm:"column:pending_multipliers;type:jsonb"`
	PendingAdaDistribution   datatypes.JSON `gorm:"column:pending_ada_distribution;type:jsonb"`

	// Failure payload, set only when Status=failed
	FailureReason  string         `gorm:"column:failure_reason;type:varchar(64)"`
	FailureDetails datatypes.JSON `gorm:"column:failure_details;type:jsonb"`

	// Deleted marks soft deletion; vaults are never hard-deleted because
	// historical claims must remain resolvable
	Deleted bool `gorm:"column:deleted;not null;default:false"`
	// Version is the optimistic-lock counter serializing per-vault writes
	Version int64 `gorm:"column:version;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Vault model
func (Vault) TableName() string {
	return "vaults"
}

// ContributionCloseTime returns the end of the contribution window, or nil if not scheduled
func (v *Vault) ContributionCloseTime() *time.Time {
	if v.ContributionOpenTime == nil {
		return nil
	}
	t := v.ContributionOpenTime.Add(v.ContributionDuration)
	return &t
}

// AcquireCloseTime returns the end of the acquire window, or nil if not scheduled
func (v *Vault) AcquireCloseTime() *time.Time {
	if v.AcquireOpenTime == nil {
		return nil
	}
	t := v.AcquireOpenTime.Add(v.AcquireDuration)
	return &t
}

// ExpansionCloseTime returns the end of the expansion window, or nil if not scheduled
func (v *Vault) ExpansionCloseTime() *time.Time {
	if v.ExpansionOpenTime == nil {
		return nil
	}
	t := v.ExpansionOpenTime.Add(v.ExpansionDuration)
	return &t
}
