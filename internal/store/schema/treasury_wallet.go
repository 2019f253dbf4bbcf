package schema

import "time"

// TreasuryWallet represents the treasury_wallets table - the vault-scoped
// signing identity used to co-sign vault-initiated transactions. The private
// key is stored encrypted; plaintext key material only ever exists transiently
// inside the treasury custody signing call.
type TreasuryWallet struct {
	// ID is the wallet row's UUID
	ID string `gorm:"column:id;primaryKey;type:varchar(36)"`
	// VaultID is unique: exactly one active treasury wallet per vault
	VaultID string `gorm:"column:vault_id;not null;type:varchar(36);uniqueIndex"`
	// Address is the treasury's payment address
	Address string `gorm:"column:address;not null;type:varchar(128)"`
	// PublicKeyHash identifies the verification key
	PublicKeyHash string `gorm:"column:public_key_hash;not null;type:varchar(64)"`
	// EncryptedPrivateKey is the KMS-encrypted signing key
	EncryptedPrivateKey []byte `gorm:"column:encrypted_private_key;not null;type:bytea"`
	// KeyID identifies the KMS key that encrypted the private key
	KeyID string `gorm:"column:key_id;not null;type:varchar(128)"`
	// Active marks the wallet as the vault's current signing identity
	Active bool `gorm:"column:active;not null;default:true"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the TreasuryWallet model
func (TreasuryWallet) TableName() string {
	return "treasury_wallets"
}
