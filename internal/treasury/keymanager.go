package treasury

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/fractionlabs/vault-engine/internal/domain"
)

// KeyManager defines the interface to the external key-management service
// used to encrypt treasury private keys at rest
//
//go:generate mockgen -source=keymanager.go -destination=../mocks/keymanager.go -package=mocks -mock_names=KeyManager=MockKeyManager
type KeyManager interface {
	// Encrypt encrypts plaintext and returns the ciphertext and the id of the
	// key that encrypted it
	Encrypt(ctx context.Context, plaintext []byte) (ciphertext []byte, keyID string, err error)
	// Decrypt decrypts ciphertext produced by the key identified by keyID
	Decrypt(ctx context.Context, ciphertext []byte, keyID string) ([]byte, error)
}

// aesKeyManager is an AES-256-GCM envelope implementation backed by a single
// master key supplied through configuration. Deployments fronted by a managed
// KMS plug in their own KeyManager instead.
type aesKeyManager struct {
	key   [32]byte
	keyID string
}

// NewAESKeyManager creates a KeyManager that derives its data key from the
// given master secret
func NewAESKeyManager(masterSecret string, keyID string) KeyManager {
	return &aesKeyManager{
		key:   sha256.Sum256([]byte(masterSecret)),
		keyID: keyID,
	}
}

func (m *aesKeyManager) Encrypt(_ context.Context, plaintext []byte) ([]byte, string, error) {
	block, err := aes.NewCipher(m.key[:])
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrKeyManagementUnavailable, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrKeyManagementUnavailable, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrKeyManagementUnavailable, err)
	}

	// Nonce is prepended to the ciphertext
	return gcm.Seal(nonce, nonce, plaintext, nil), m.keyID, nil
}

func (m *aesKeyManager) Decrypt(_ context.Context, ciphertext []byte, keyID string) ([]byte, error) {
	if keyID != m.keyID {
		return nil, fmt.Errorf("%w: unknown key id %q", domain.ErrKeyManagementUnavailable, keyID)
	}

	block, err := aes.NewCipher(m.key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyManagementUnavailable, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyManagementUnavailable, err)
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext shorter than nonce", domain.ErrKeyManagementUnavailable)
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyManagementUnavailable, err)
	}
	return plaintext, nil
}
