package treasury_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fractionlabs/vault-engine/internal/domain"
	"github.com/fractionlabs/vault-engine/internal/logger"
	"github.com/fractionlabs/vault-engine/internal/mocks"
	"github.com/fractionlabs/vault-engine/internal/store/schema"
	"github.com/fractionlabs/vault-engine/internal/treasury"
)

// testCustodyMocks contains all the mocks needed for testing treasury custody
type testCustodyMocks struct {
	ctrl       *gomock.Controller
	store      *mocks.MockStore
	keyManager *mocks.MockKeyManager
	signer     *mocks.MockSigner
	custody    treasury.Custody
}

func setupTestCustody(t *testing.T) *testCustodyMocks {
	err := logger.Initialize(logger.Config{Debug: true})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctrl := gomock.NewController(t)
	tm := &testCustodyMocks{
		ctrl:       ctrl,
		store:      mocks.NewMockStore(ctrl),
		keyManager: mocks.NewMockKeyManager(ctrl),
		signer:     mocks.NewMockSigner(ctrl),
	}
	tm.custody = treasury.NewCustody(tm.store, tm.keyManager, tm.signer)
	return tm
}

func tearDownTestCustody(tm *testCustodyMocks) {
	tm.ctrl.Finish()
}

func TestCustody_Provision(t *testing.T) {
	tm := setupTestCustody(t)
	defer tearDownTestCustody(tm)

	keypair := &treasury.Keypair{
		PrivateKey:    []byte("private-key-material"),
		PublicKeyHash: "pkh",
		Address:       "addr1pkh",
	}

	tm.signer.EXPECT().Generate().Return(keypair, nil)
	tm.keyManager.EXPECT().Encrypt(gomock.Any(), []byte("private-key-material")).
		Return([]byte("ciphertext"), "key-1", nil)
	tm.store.EXPECT().
		CreateTreasuryWallet(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, wallet *schema.TreasuryWallet) error {
			assert.Equal(t, "v1", wallet.VaultID)
			assert.Equal(t, "addr1pkh", wallet.Address)
			assert.Equal(t, []byte("ciphertext"), wallet.EncryptedPrivateKey)
			assert.Equal(t, "key-1", wallet.KeyID)
			assert.True(t, wallet.Active)
			return nil
		})

	wallet, err := tm.custody.Provision(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "addr1pkh", wallet.Address)
}

func TestCustody_Provision_ZeroesKeyMaterial(t *testing.T) {
	tm := setupTestCustody(t)
	defer tearDownTestCustody(tm)

	privateKey := []byte("private-key-material")
	tm.signer.EXPECT().Generate().
		Return(&treasury.Keypair{PrivateKey: privateKey, Address: "addr1x"}, nil)
	tm.keyManager.EXPECT().Encrypt(gomock.Any(), gomock.Any()).
		Return([]byte("ciphertext"), "key-1", nil)
	tm.store.EXPECT().CreateTreasuryWallet(gomock.Any(), gomock.Any()).Return(nil)

	_, err := tm.custody.Provision(context.Background(), "v1")
	require.NoError(t, err)

	for _, b := range privateKey {
		assert.Zero(t, b)
	}
}

func TestCustody_Provision_ExactlyOncePerVault(t *testing.T) {
	tm := setupTestCustody(t)
	defer tearDownTestCustody(tm)

	tm.signer.EXPECT().Generate().
		Return(&treasury.Keypair{PrivateKey: []byte("pk")}, nil)
	tm.keyManager.EXPECT().Encrypt(gomock.Any(), gomock.Any()).
		Return([]byte("ciphertext"), "key-1", nil)
	tm.store.EXPECT().CreateTreasuryWallet(gomock.Any(), gomock.Any()).
		Return(domain.ErrTreasuryAlreadyProvisioned)

	_, err := tm.custody.Provision(context.Background(), "v1")
	assert.ErrorIs(t, err, domain.ErrTreasuryAlreadyProvisioned)
}

func TestCustody_Sign(t *testing.T) {
	tm := setupTestCustody(t)
	defer tearDownTestCustody(tm)

	wallet := &schema.TreasuryWallet{
		ID: "w1", VaultID: "v1",
		EncryptedPrivateKey: []byte("ciphertext"),
		KeyID:               "key-1",
	}

	tm.store.EXPECT().GetTreasuryWallet(gomock.Any(), "v1").Return(wallet, nil)
	tm.keyManager.EXPECT().Decrypt(gomock.Any(), []byte("ciphertext"), "key-1").
		Return([]byte("private-key"), nil)
	tm.signer.EXPECT().Sign([]byte("unsigned"), gomock.Any()).Return([]byte("signed"), nil)

	signed, err := tm.custody.Sign(context.Background(), "v1", []byte("unsigned"))
	require.NoError(t, err)
	assert.Equal(t, []byte("signed"), signed)
}

func TestCustody_Sign_KeyManagementOutageIsRetryable(t *testing.T) {
	tm := setupTestCustody(t)
	defer tearDownTestCustody(tm)

	wallet := &schema.TreasuryWallet{
		ID: "w1", VaultID: "v1",
		EncryptedPrivateKey: []byte("ciphertext"),
		KeyID:               "key-1",
	}

	tm.store.EXPECT().GetTreasuryWallet(gomock.Any(), "v1").Return(wallet, nil)
	tm.keyManager.EXPECT().Decrypt(gomock.Any(), gomock.Any(), "key-1").
		Return(nil, domain.ErrKeyManagementUnavailable)

	// No Sign expectation: the private key never reached the signer
	_, err := tm.custody.Sign(context.Background(), "v1", []byte("unsigned"))
	assert.ErrorIs(t, err, domain.ErrKeyManagementUnavailable)
}

func TestCustody_Sign_UnprovisionedVault(t *testing.T) {
	tm := setupTestCustody(t)
	defer tearDownTestCustody(tm)

	tm.store.EXPECT().GetTreasuryWallet(gomock.Any(), "v1").
		Return(nil, domain.ErrTreasuryWalletNotFound)

	_, err := tm.custody.Sign(context.Background(), "v1", []byte("unsigned"))
	assert.ErrorIs(t, err, domain.ErrTreasuryWalletNotFound)
}
