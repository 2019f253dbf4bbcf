package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fractionlabs/vault-engine/internal/domain"
)

// Recipient is one payout target inside a build spec
type Recipient struct {
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
	// Assets maps "policyID.assetName" to quantity for native-asset payouts
	Assets map[string]uint64 `json:"assets,omitempty"`
}

// BuildSpec describes the transaction to be assembled by the builder service.
// The wire format of the resulting transaction is the builder's concern.
type BuildSpec struct {
	// ChangeAddress receives any unspent remainder
	ChangeAddress string `json:"change_address"`
	// Inputs are the UTXOs to spend, as "txHash#index" references
	Inputs []string `json:"inputs,omitempty"`
	// Recipients are the outputs to create
	Recipients []Recipient `json:"recipients"`
	// ScriptHash selects the vault validator script, when spending script outputs
	ScriptHash string `json:"script_hash,omitempty"`
	// Metadata is attached to the transaction as-is
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// TxStatus is the chain's view of a submitted transaction
type TxStatus struct {
	Confirmations uint64
	BlockHeight   uint64
	TxIndex       uint64
}

// Gateway abstracts the external chain-building and chain-scanning services.
// GetStatus returns domain.ErrTxNotOnChain while the hash has not appeared in
// a block, and domain.ErrGatewayUnavailable on transport failures so callers
// can tell "not yet" from "can't ask".
//
//go:generate mockgen -source=gateway.go -destination=../mocks/gateway.go -package=mocks -mock_names=Gateway=MockGateway
type Gateway interface {
	// Build assembles an unsigned transaction from the spec
	Build(ctx context.Context, spec *BuildSpec) ([]byte, error)
	// Submit broadcasts a signed transaction and returns its hash
	Submit(ctx context.Context, signedTx []byte) (string, error)
	// GetStatus queries confirmation depth for a transaction hash
	GetStatus(ctx context.Context, txHash string) (*TxStatus, error)
	// GetUtxos lists the unspent outputs held by an address
	GetUtxos(ctx context.Context, address string) ([]domain.UTXO, error)
}
