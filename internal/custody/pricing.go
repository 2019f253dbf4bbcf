package custody

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceLookup defines the interface to external pricing sources (floor-price
// oracles for NFTs, DEX quotes for fungibles). A nil price means the source
// has no quote; it is not an error.
//
//go:generate mockgen -source=pricing.go -destination=../mocks/pricing.go -package=mocks -mock_names=PriceLookup=MockPriceLookup
type PriceLookup interface {
	// PriceOf returns the current ADA price of an asset, or nil when unknown
	PriceOf(ctx context.Context, policyID, assetID string) (*decimal.Decimal, error)
}
