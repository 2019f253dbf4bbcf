package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fractionlabs/vault-engine/internal/adapter"
	"github.com/fractionlabs/vault-engine/internal/custody"
)

// Config holds the pricing API configuration
type Config struct {
	BaseURL string
	APIKey  string
}

// client looks up asset prices from the pricing aggregator: floor prices for
// NFT policies, DEX quotes for fungibles
type client struct {
	config Config
	http   adapter.HTTPClient
}

// NewClient creates a price lookup backed by the pricing aggregator API
func NewClient(cfg Config, httpClient adapter.HTTPClient) custody.PriceLookup {
	return &client{
		config: cfg,
		http:   httpClient,
	}
}

type priceResponse struct {
	PriceAda decimal.Decimal `json:"price_ada"`
}

// PriceOf returns the current ADA price of an asset, or nil when the
// aggregator has no quote
func (c *client) PriceOf(ctx context.Context, policyID, assetID string) (*decimal.Decimal, error) {
	url := fmt.Sprintf("%s/prices/%s/%s", c.config.BaseURL, policyID, assetID)
	headers := map[string]string{"x-api-key": c.config.APIKey}

	var price priceResponse
	err := c.http.Get(ctx, url, headers, &price)
	if errors.Is(err, adapter.ErrHTTPNotFound) {
		// No quote is not an error
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up price for %s.%s: %w", policyID, assetID, err)
	}
	return &price.PriceAda, nil
}
