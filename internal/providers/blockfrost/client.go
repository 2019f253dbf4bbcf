package blockfrost

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/fractionlabs/vault-engine/internal/adapter"
	"github.com/fractionlabs/vault-engine/internal/domain"
	"github.com/fractionlabs/vault-engine/internal/ledger"
)

const lovelacePerAda = 1_000_000

// Config holds the Blockfrost API configuration
type Config struct {
	BaseURL   string
	ProjectID string
}

// Client is a Blockfrost chain-index client. It serves the query half of the
// ledger gateway: transaction status and address UTXOs.
type Client struct {
	config Config
	http   adapter.HTTPClient
}

// NewClient creates a new Blockfrost client
func NewClient(cfg Config, httpClient adapter.HTTPClient) *Client {
	return &Client{
		config: cfg,
		http:   httpClient,
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{"project_id": c.config.ProjectID}
}

// txResponse is the subset of /txs/{hash} we consume
type txResponse struct {
	Hash        string `json:"hash"`
	BlockHeight uint64 `json:"block_height"`
	Index       uint64 `json:"index"`
}

// blockResponse is the subset of /blocks/latest we consume
type blockResponse struct {
	Height uint64 `json:"height"`
}

// utxoAmount is one value entry on a UTXO
type utxoAmount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

// utxoResponse is one entry of /addresses/{address}/utxos
type utxoResponse struct {
	TxHash      string       `json:"tx_hash"`
	OutputIndex uint32       `json:"output_index"`
	Amount      []utxoAmount `json:"amount"`
}

// GetStatus queries confirmation depth for a transaction hash.
// Returns domain.ErrTxNotOnChain while the hash has not appeared in a block.
func (c *Client) GetStatus(ctx context.Context, txHash string) (*ledger.TxStatus, error) {
	var tx txResponse
	err := c.http.Get(ctx, fmt.Sprintf("%s/txs/%s", c.config.BaseURL, txHash), c.headers(), &tx)
	if errors.Is(err, adapter.ErrHTTPNotFound) {
		return nil, domain.ErrTxNotOnChain
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	var tip blockResponse
	if err := c.http.Get(ctx, fmt.Sprintf("%s/blocks/latest", c.config.BaseURL), c.headers(), &tip); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	confirmations := uint64(0)
	if tip.Height >= tx.BlockHeight {
		confirmations = tip.Height - tx.BlockHeight + 1
	}

	return &ledger.TxStatus{
		Confirmations: confirmations,
		BlockHeight:   tx.BlockHeight,
		TxIndex:       tx.Index,
	}, nil
}

// GetUtxos lists the unspent outputs held by an address
func (c *Client) GetUtxos(ctx context.Context, address string) ([]domain.UTXO, error) {
	var rows []utxoResponse
	err := c.http.Get(ctx, fmt.Sprintf("%s/addresses/%s/utxos", c.config.BaseURL, address), c.headers(), &rows)
	if errors.Is(err, adapter.ErrHTTPNotFound) {
		// Blockfrost answers 404 for addresses it has never seen
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	utxos := make([]domain.UTXO, 0, len(rows))
	for _, row := range rows {
		utxo := domain.UTXO{
			TxHash: row.TxHash,
			Index:  row.OutputIndex,
			Amount: decimal.Zero,
		}
		for _, amount := range row.Amount {
			quantity, err := strconv.ParseUint(amount.Quantity, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid quantity %q on utxo %s#%d: %w", amount.Quantity, row.TxHash, row.OutputIndex, err)
			}
			if amount.Unit == "lovelace" {
				utxo.Amount = decimal.New(int64(quantity), 0).Div(decimal.NewFromInt(lovelacePerAda))
				continue
			}
			if utxo.Assets == nil {
				utxo.Assets = make(map[string]uint64)
			}
			utxo.Assets[amount.Unit] = quantity
		}
		utxos = append(utxos, utxo)
	}
	return utxos, nil
}
