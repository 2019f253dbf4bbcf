package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fractionlabs/vault-engine/internal/store/schema"
)

func vaultPtr(s string) *string {
	return &s
}

func TestGroupByVault(t *testing.T) {
	transactions := []schema.Transaction{
		{ID: "tx-1", VaultID: vaultPtr("vault-a")},
		{ID: "tx-2", VaultID: vaultPtr("vault-b")},
		{ID: "tx-3", VaultID: vaultPtr("vault-a")},
		{ID: "tx-4", VaultID: nil},
		{ID: "tx-5", VaultID: vaultPtr("vault-b")},
		{ID: "tx-6", VaultID: nil},
	}

	groups := groupByVault(transactions)
	require.Len(t, groups, 4)

	// In-vault order is preserved so confirmations apply in submission order
	assert.Equal(t, "tx-1", groups[0][0].ID)
	assert.Equal(t, "tx-3", groups[0][1].ID)
	assert.Equal(t, "tx-2", groups[1][0].ID)
	assert.Equal(t, "tx-5", groups[1][1].ID)

	// Vault-less transactions each get their own group
	require.Len(t, groups[2], 1)
	assert.Equal(t, "tx-4", groups[2][0].ID)
	require.Len(t, groups[3], 1)
	assert.Equal(t, "tx-6", groups[3][0].ID)
}

func TestGroupByVault_Empty(t *testing.T) {
	assert.Empty(t, groupByVault(nil))
}
