package treasury

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Keypair is the material produced when a treasury wallet is provisioned.
// PrivateKey is only ever held transiently by the custody component.
type Keypair struct {
	PrivateKey    []byte
	PublicKeyHash string
	Address       string
}

// Signer defines the opaque signing interface consumed by the custody
// component. Wallet-address encoding and signature schemes are its concern,
// not ours.
//
//go:generate mockgen -source=signer.go -destination=../mocks/signer.go -package=mocks -mock_names=Signer=MockSigner
type Signer interface {
	// Generate creates a fresh keypair with its derived address
	Generate() (*Keypair, error)
	// Sign signs unsigned transaction bytes with the given private key
	Sign(unsignedTx []byte, privateKey []byte) ([]byte, error)
}

// ed25519Signer implements Signer with Ed25519 keys, the payment-key scheme
// of the settlement chain
type ed25519Signer struct {
	addressPrefix string
}

// NewEd25519Signer creates a Signer deriving addresses with the given prefix
// (e.g. "addr" for mainnet, "addr_test" for testnets)
func NewEd25519Signer(addressPrefix string) Signer {
	return &ed25519Signer{addressPrefix: addressPrefix}
}

func (s *ed25519Signer) Generate() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}

	pkh := sha256.Sum256(pub)
	pkhHex := hex.EncodeToString(pkh[:28])

	return &Keypair{
		PrivateKey:    priv,
		PublicKeyHash: pkhHex,
		Address:       fmt.Sprintf("%s1%s", s.addressPrefix, pkhHex),
	}, nil
}

func (s *ed25519Signer) Sign(unsignedTx []byte, privateKey []byte) ([]byte, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key size %d", len(privateKey))
	}

	signature := ed25519.Sign(ed25519.PrivateKey(privateKey), unsignedTx)

	// Witness is appended to the unsigned body; the builder service splices
	// it into the final wire format on submit
	signed := make([]byte, 0, len(unsignedTx)+len(signature))
	signed = append(signed, unsignedTx...)
	signed = append(signed, signature...)
	return signed, nil
}
