package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TransactionType classifies the on-chain operation a transaction record settles
type TransactionType string

const (
	TransactionTypeMint            TransactionType = "mint"
	TransactionTypeContribute      TransactionType = "contribute"
	TransactionTypeAcquire         TransactionType = "acquire"
	TransactionTypeClaim           TransactionType = "claim"
	TransactionTypeExtract         TransactionType = "extract"
	TransactionTypeExtractDispatch TransactionType = "extract-dispatch"
	TransactionTypeCancel          TransactionType = "cancel"
	TransactionTypeBurn            TransactionType = "burn"
	TransactionTypeSwap            TransactionType = "swap"
	TransactionTypeStake           TransactionType = "stake"
	TransactionTypeExtractLp       TransactionType = "extract-lp"
	TransactionTypeDistributeLp    TransactionType = "distribute-lp"
	TransactionTypeDistribution    TransactionType = "distribution"
	TransactionTypeUpdateVault     TransactionType = "update-vault"

	// transactionTypeInvestment is a deprecated legacy alias of acquire,
	// normalized on read and never written
	transactionTypeInvestment TransactionType = "investment"
)

// Normalize maps legacy aliases onto their canonical type
func (t TransactionType) Normalize() TransactionType {
	if t == transactionTypeInvestment {
		return TransactionTypeAcquire
	}
	return t
}

// TransactionStatus is the settlement status of a transaction record
type TransactionStatus string

const (
	// TransactionStatusWaitingOwner means the transaction is waiting for the
	// initiating user's signature before it can be built
	TransactionStatusWaitingOwner TransactionStatus = "waiting_owner"
	// TransactionStatusCreated means the record exists but no hash is assigned yet
	TransactionStatusCreated TransactionStatus = "created"
	// TransactionStatusPending means a hash has been attached
	TransactionStatusPending TransactionStatus = "pending"
	// TransactionStatusSubmitted means the transaction was broadcast to the chain
	TransactionStatusSubmitted TransactionStatus = "submitted"
	// TransactionStatusConfirmed is terminal: the transaction reached the
	// required confirmation depth and its effects were materialized
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	// TransactionStatusFailed is terminal: the chain rejected the transaction
	TransactionStatusFailed TransactionStatus = "failed"
	// TransactionStatusStuck means the transaction exceeded its confirmation
	// window without landing; it keeps being polled at a slower cadence
	TransactionStatusStuck TransactionStatus = "stuck"
)

// transactionTransitions is the transition table for transaction statuses.
// Status only advances forward except into the failed/stuck recovery states.
var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusWaitingOwner: {TransactionStatusCreated, TransactionStatusFailed},
	TransactionStatusCreated:      {TransactionStatusPending, TransactionStatusFailed},
	TransactionStatusPending:      {TransactionStatusSubmitted, TransactionStatusConfirmed, TransactionStatusFailed, TransactionStatusStuck},
	TransactionStatusSubmitted:    {TransactionStatusConfirmed, TransactionStatusFailed, TransactionStatusStuck},
	TransactionStatusStuck:        {TransactionStatusConfirmed, TransactionStatusFailed},
	TransactionStatusConfirmed:    {},
	TransactionStatusFailed:       {},
}

// CanTransitionTo reports whether the transition table allows moving to next
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	for _, allowed := range transactionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions
func (s TransactionStatus) IsTerminal() bool {
	return len(transactionTransitions[s]) == 0
}

// Transaction represents the transactions table - one on-chain settlement attempt
type Transaction struct {
	// ID is the transaction record's UUID (not the chain hash)
	ID string `gorm:"column:id;primaryKey;type:varchar(36)"`
	// VaultID references the vault this transaction settles against; nil for
	// pre-vault operations such as the initial mint
	VaultID *string `gorm:"column:vault_id;type:varchar(36);index"`
	// UserID references the initiating user, if any
	UserID *string `gorm:"column:user_id;type:varchar(36);index"`
	// Type is the on-chain operation class
	Type TransactionType `gorm:"column:type;not null;index"`
	// Status is the settlement status
	Status TransactionStatus `gorm:"column:status;not null;default:created;index"`
	// TxHash is the chain transaction hash; unique once set
	TxHash *string `gorm:"column:tx_hash;type:varchar(64);uniqueIndex"`
	// UTXO strings captured when the transaction was built
	UtxoInput  string `gorm:"column:utxo_input;type:text"`
	UtxoOutput string `gorm:"column:utxo_output;type:text"`
	UtxoRef    string `gorm:"column:utxo_ref;type:text"`
	// Amount is the ADA amount the transaction moves
	Amount decimal.Decimal `gorm:"column:amount;type:decimal(20,6);not null;default:0"`
	// FeeAda is the network fee paid
	FeeAda decimal.Decimal `gorm:"column:fee_ada;type:decimal(20,6);not null;default:0"`
	// Metadata carries pending asset descriptors until confirmation
	// materializes them into asset rows
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb"`
	// TxIndex is the transaction's index within its block, persisted at
	// confirmation for in-vault ordering
	TxIndex *uint64 `gorm:"column:tx_index"`
	// BlockHeight is the block the transaction confirmed in
	BlockHeight *uint64 `gorm:"column:block_height"`
	// ErrorMessage holds the chain rejection reason for failed transactions
	ErrorMessage string `gorm:"column:error_message;type:text"`
	// SubmittedAt is when the transaction was broadcast
	SubmittedAt *time.Time `gorm:"column:submitted_at;type:timestamptz"`
	// ConfirmedAt is when confirmation depth was reached
	ConfirmedAt *time.Time `gorm:"column:confirmed_at;type:timestamptz"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
