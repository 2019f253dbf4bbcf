package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimType classifies the entitlement a claim records
type ClaimType string

const (
	ClaimTypeContributor       ClaimType = "contributor"
	ClaimTypeAcquirer          ClaimType = "acquirer"
	ClaimTypeLp                ClaimType = "lp"
	ClaimTypeFinalDistribution ClaimType = "final_distribution"
	ClaimTypeCancellation      ClaimType = "cancellation"
	ClaimTypeDistribution      ClaimType = "distribution"
	ClaimTypeTermination       ClaimType = "termination"
	ClaimTypeExpansion         ClaimType = "expansion"
)

// ClaimStatus is the settlement status of a claim
type ClaimStatus string

const (
	// ClaimStatusAvailable means the entitlement is computed and waiting for a payout batch
	ClaimStatusAvailable ClaimStatus = "available"
	// ClaimStatusPending means the claim is assigned to an in-flight distribution batch
	ClaimStatusPending ClaimStatus = "pending"
	// ClaimStatusClaimed means the distribution transaction confirmed
	ClaimStatusClaimed ClaimStatus = "claimed"
	// ClaimStatusFailed means the distribution attempt terminally failed
	ClaimStatusFailed ClaimStatus = "failed"
)

// claimTransitions is the transition table for claim statuses.
// pending -> available covers returning claims from a failed batch to the pool.
var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimStatusAvailable: {ClaimStatusPending, ClaimStatusClaimed, ClaimStatusFailed},
	ClaimStatusPending:   {ClaimStatusClaimed, ClaimStatusAvailable, ClaimStatusFailed},
	ClaimStatusClaimed:   {},
	ClaimStatusFailed:    {},
}

// CanTransitionTo reports whether the transition table allows moving to next
func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	for _, allowed := range claimTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Claim represents the claims table - one entitlement owed to a user.
// Claims reference transactions by id only; they are never embedded.
type Claim struct {
	// ID is the claim's UUID
	ID string `gorm:"column:id;primaryKey;type:varchar(36)"`
	// VaultID references the vault the entitlement belongs to
	VaultID string `gorm:"column:vault_id;not null;type:varchar(36);index"`
	// UserID references the entitled user
	UserID string `gorm:"column:user_id;not null;type:varchar(36);index"`
	// Type is the entitlement class
	Type ClaimType `gorm:"column:type;not null"`
	// AmountAda is the entitlement amount, frozen at computation time
	AmountAda decimal.Decimal `gorm:"column:amount_ada;type:decimal(20,6);not null"`
	// Status is the settlement status
	Status ClaimStatus `gorm:"column:status;not null;default:available;index"`
	// OriginTransactionID references the confirmed transaction the entitlement derives from
	OriginTransactionID string `gorm:"column:origin_transaction_id;not null;type:varchar(36);index"`
	// DistributionTransactionID references the payout transaction; non-nil iff status=claimed
	DistributionTransactionID *string `gorm:"column:distribution_transaction_id;type:varchar(36);index"`
	// DistributionBatch is the payout batch number this claim was assigned to
	DistributionBatch *int `gorm:"column:distribution_batch"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Claim model
func (Claim) TableName() string {
	return "claims"
}
