package cardano

import (
	"context"

	"github.com/fractionlabs/vault-engine/internal/domain"
	"github.com/fractionlabs/vault-engine/internal/ledger"
	"github.com/fractionlabs/vault-engine/internal/providers/anvil"
	"github.com/fractionlabs/vault-engine/internal/providers/blockfrost"
)

// gateway composes the builder service (build/submit) and the chain index
// (status/utxos) into one ledger gateway
type gateway struct {
	builder *anvil.Client
	index   *blockfrost.Client
}

// NewGateway creates a ledger gateway backed by the builder service and the
// chain-index service
func NewGateway(builder *anvil.Client, index *blockfrost.Client) ledger.Gateway {
	return &gateway{
		builder: builder,
		index:   index,
	}
}

func (g *gateway) Build(ctx context.Context, spec *ledger.BuildSpec) ([]byte, error) {
	return g.builder.Build(ctx, spec)
}

func (g *gateway) Submit(ctx context.Context, signedTx []byte) (string, error) {
	return g.builder.Submit(ctx, signedTx)
}

func (g *gateway) GetStatus(ctx context.Context, txHash string) (*ledger.TxStatus, error) {
	return g.index.GetStatus(ctx, txHash)
}

func (g *gateway) GetUtxos(ctx context.Context, address string) ([]domain.UTXO, error) {
	return g.index.GetUtxos(ctx, address)
}
