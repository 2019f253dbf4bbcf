package anvil

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/fractionlabs/vault-engine/internal/adapter"
	"github.com/fractionlabs/vault-engine/internal/domain"
	"github.com/fractionlabs/vault-engine/internal/ledger"
)

// Config holds the transaction-builder service configuration
type Config struct {
	BaseURL string
	APIKey  string
}

// Client talks to the transaction-builder service. It serves the build and
// submit half of the ledger gateway; the wire format of the assembled
// transaction is the builder's concern.
type Client struct {
	config Config
	http   adapter.HTTPClient
}

// NewClient creates a new transaction-builder client
func NewClient(cfg Config, httpClient adapter.HTTPClient) *Client {
	return &Client{
		config: cfg,
		http:   httpClient,
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{"x-api-key": c.config.APIKey}
}

type buildResponse struct {
	Complete string `json:"complete"` // base64 unsigned tx
}

type submitRequest struct {
	Transaction string `json:"transaction"` // base64 signed tx
}

type submitResponse struct {
	TxHash string `json:"txHash"`
}

// Build assembles an unsigned transaction from the spec
func (c *Client) Build(ctx context.Context, spec *ledger.BuildSpec) ([]byte, error) {
	payload, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode build spec: %w", err)
	}

	respBody, err := c.http.Post(ctx, fmt.Sprintf("%s/transactions/build", c.config.BaseURL), c.headers(), "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	var built buildResponse
	if err := json.Unmarshal(respBody, &built); err != nil {
		return nil, fmt.Errorf("failed to decode build response: %w", err)
	}

	unsignedTx, err := base64.StdEncoding.DecodeString(built.Complete)
	if err != nil {
		return nil, fmt.Errorf("failed to decode built transaction: %w", err)
	}
	return unsignedTx, nil
}

// Submit broadcasts a signed transaction and returns its hash
func (c *Client) Submit(ctx context.Context, signedTx []byte) (string, error) {
	payload, err := json.Marshal(submitRequest{
		Transaction: base64.StdEncoding.EncodeToString(signedTx),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode submit request: %w", err)
	}

	respBody, err := c.http.Post(ctx, fmt.Sprintf("%s/transactions/submit", c.config.BaseURL), c.headers(), "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	var submitted submitResponse
	if err := json.Unmarshal(respBody, &submitted); err != nil {
		return "", fmt.Errorf("failed to decode submit response: %w", err)
	}
	if submitted.TxHash == "" {
		return "", fmt.Errorf("builder returned empty tx hash")
	}
	return submitted.TxHash, nil
}
