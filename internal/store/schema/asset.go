package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetType classifies the kind of value an asset row holds
type AssetType string

const (
	AssetTypeNFT      AssetType = "nft"
	AssetTypeFungible AssetType = "fungible"
	AssetTypeAda      AssetType = "ada"
)

// AssetOriginType records how an asset entered the vault. It never changes
// after creation.
type AssetOriginType string

const (
	AssetOriginContributed AssetOriginType = "contributed"
	AssetOriginAcquired    AssetOriginType = "acquired"
	AssetOriginFee         AssetOriginType = "fee"
)

// AssetStatus is the custody status of an asset
type AssetStatus string

const (
	// AssetStatusPending means the contribution/acquisition transaction has not confirmed yet
	AssetStatusPending AssetStatus = "pending"
	// AssetStatusLocked means the asset is held by a confirmed transaction in an active vault
	AssetStatusLocked AssetStatus = "locked"
	// AssetStatusReleased means custody was returned (vault failure or withdrawal)
	AssetStatusReleased AssetStatus = "released"
	// AssetStatusDistributed means the asset was paid out to claimants
	AssetStatusDistributed AssetStatus = "distributed"
	// AssetStatusExtracted means the asset was extracted by governance decision
	AssetStatusExtracted AssetStatus = "extracted"
	// AssetStatusSold means the asset was liquidated
	AssetStatusSold AssetStatus = "sold"
)

// assetTransitions is the transition table for asset custody statuses.
// released -> locked covers re-contribution of a previously refunded asset.
var assetTransitions = map[AssetStatus][]AssetStatus{
	AssetStatusPending:     {AssetStatusLocked, AssetStatusReleased},
	AssetStatusLocked:      {AssetStatusReleased, AssetStatusDistributed, AssetStatusExtracted, AssetStatusSold},
	AssetStatusReleased:    {AssetStatusLocked},
	AssetStatusDistributed: {},
	AssetStatusExtracted:   {},
	AssetStatusSold:        {},
}

// CanTransitionTo reports whether the transition table allows moving to next
func (s AssetStatus) CanTransitionTo(next AssetStatus) bool {
	for _, allowed := range assetTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Asset represents the assets table - one unit of custody bound to a vault
type Asset struct {
	// ID is the asset row's UUID
	ID string `gorm:"column:id;primaryKey;type:varchar(36)"`
	// VaultID references the owning vault; nil until the asset is locked
	VaultID *string `gorm:"column:vault_id;type:varchar(36);index"`
	// TransactionID references the transaction that materialized this asset
	TransactionID string `gorm:"column:transaction_id;not null;type:varchar(36);index"`
	// UserID references the contributing/acquiring user
	UserID *string `gorm:"column:user_id;type:varchar(36);index"`
	// Type is nft, fungible or ada
	Type AssetType `gorm:"column:type;not null"`
	// PolicyID is the minting policy of the asset (empty for ada)
	PolicyID string `gorm:"column:policy_id;type:varchar(64);index"`
	// AssetID is the asset name under the policy (empty for ada)
	AssetID string `gorm:"column:asset_id;type:varchar(128)"`
	// Quantity is immutable after lock
	Quantity uint64 `gorm:"column:quantity;not null;default:1"`
	// FloorPriceAda is the latest floor valuation (NFTs)
	FloorPriceAda *decimal.Decimal `gorm:"column:floor_price_ada;type:decimal(20,6)"`
	// DexPriceAda is the latest DEX valuation (fungibles)
	DexPriceAda *decimal.Decimal `gorm:"column:dex_price_ada;type:decimal(20,6)"`
	// LastValuationAt is when a price was last refreshed
	LastValuationAt *time.Time `gorm:"column:last_valuation_at;type:timestamptz"`
	// ValueAda is the value recorded at materialization time, used for
	// aggregate valuation and entitlement shares
	ValueAda decimal.Decimal `gorm:"column:value_ada;type:decimal(20,6);not null;default:0"`
	// Status is the custody status
	Status AssetStatus `gorm:"column:status;not null;default:pending;index"`
	// OriginType records how the asset entered the vault; immutable
	OriginType AssetOriginType `gorm:"column:origin_type;not null"`
	// Custody audit trail
	AddedAt    time.Time  `gorm:"column:added_at;not null;default:now();type:timestamptz"`
	LockedAt   *time.Time `gorm:"column:locked_at;type:timestamptz"`
	ReleasedAt *time.Time `gorm:"column:released_at;type:timestamptz"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Asset model
func (Asset) TableName() string {
	return "assets"
}

// CurrentValueAda returns the freshest valuation available for the asset,
// falling back to the value recorded at materialization
func (a *Asset) CurrentValueAda() decimal.Decimal {
	switch a.Type {
	case AssetTypeNFT:
		if a.FloorPriceAda != nil {
			return *a.FloorPriceAda
		}
	case AssetTypeFungible:
		if a.DexPriceAda != nil {
			return a.DexPriceAda.Mul(decimal.NewFromInt(int64(a.Quantity)))
		}
	}
	return a.ValueAda
}
