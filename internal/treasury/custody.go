package treasury

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fractionlabs/vault-engine/internal/logger"
	"github.com/fractionlabs/vault-engine/internal/store"
	"github.com/fractionlabs/vault-engine/internal/store/schema"
)

// Custody manages vault-scoped treasury signing identities. Signing material
// only flows to the transaction orchestrator through Sign; callers never see
// key bytes.
//
//go:generate mockgen -source=custody.go -destination=../mocks/custody.go -package=mocks -mock_names=Custody=MockCustody
type Custody interface {
	// Provision creates the vault's treasury wallet. Exactly-once per vault:
	// a second call returns domain.ErrTreasuryAlreadyProvisioned.
	Provision(ctx context.Context, vaultID string) (*schema.TreasuryWallet, error)
	// Sign signs unsigned transaction bytes with the vault's treasury key.
	// A key-management outage surfaces as domain.ErrKeyManagementUnavailable,
	// which callers must treat as retryable.
	Sign(ctx context.Context, vaultID string, unsignedTx []byte) ([]byte, error)
}

type custody struct {
	store      store.Store
	keyManager KeyManager
	signer     Signer
}

// NewCustody creates a treasury custody component
func NewCustody(st store.Store, km KeyManager, signer Signer) Custody {
	return &custody{
		store:      st,
		keyManager: km,
		signer:     signer,
	}
}

func (c *custody) Provision(ctx context.Context, vaultID string) (*schema.TreasuryWallet, error) {
	keypair, err := c.signer.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate treasury keypair: %w", err)
	}
	defer zero(keypair.PrivateKey)

	ciphertext, keyID, err := c.keyManager.Encrypt(ctx, keypair.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt treasury key: %w", err)
	}

	wallet := &schema.TreasuryWallet{
		ID:                  uuid.NewString(),
		VaultID:             vaultID,
		Address:             keypair.Address,
		PublicKeyHash:       keypair.PublicKeyHash,
		EncryptedPrivateKey: ciphertext,
		KeyID:               keyID,
		Active:              true,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}

	if err := c.store.CreateTreasuryWallet(ctx, wallet); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Provisioned treasury wallet",
		zap.String("vault_id", vaultID),
		zap.String("address", wallet.Address),
		zap.String("key_id", keyID),
	)
	return wallet, nil
}

func (c *custody) Sign(ctx context.Context, vaultID string, unsignedTx []byte) ([]byte, error) {
	wallet, err := c.store.GetTreasuryWallet(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	privateKey, err := c.keyManager.Decrypt(ctx, wallet.EncryptedPrivateKey, wallet.KeyID)
	if err != nil {
		// Retryable: the transaction stays in its pre-sign status. Never fall
		// back to the admin key for vault-owned funds.
		return nil, fmt.Errorf("failed to decrypt treasury key for vault %s: %w", vaultID, err)
	}
	defer zero(privateKey)

	signedTx, err := c.signer.Sign(unsignedTx, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign with treasury key: %w", err)
	}
	return signedTx, nil
}

// zero wipes key material before the buffer is released
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
