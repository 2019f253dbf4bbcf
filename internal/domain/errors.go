package domain

import "errors"

var (
	// ErrInvalidState is returned when an entity is asked to make a transition
	// its current status does not allow
	ErrInvalidState = errors.New("invalid state transition")

	// ErrVaultNotFound is returned when a vault is not found
	ErrVaultNotFound = errors.New("vault not found")

	// ErrTransactionNotFound is returned when a transaction record is not found
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrAssetNotFound is returned when an asset is not found
	ErrAssetNotFound = errors.New("asset not found")

	// ErrClaimNotFound is returned when a claim is not found
	ErrClaimNotFound = errors.New("claim not found")

	// ErrTreasuryWalletNotFound is returned when a vault has no treasury wallet
	ErrTreasuryWalletNotFound = errors.New("treasury wallet not found")

	// ErrTreasuryAlreadyProvisioned is returned when provisioning a treasury
	// wallet for a vault that already has an active one
	ErrTreasuryAlreadyProvisioned = errors.New("treasury wallet already provisioned")

	// ErrKeyManagementUnavailable is returned when the key-management service
	// cannot encrypt or decrypt; callers must treat the operation as retryable
	ErrKeyManagementUnavailable = errors.New("key management unavailable")

	// ErrGatewayUnavailable is returned when the ledger gateway cannot be reached
	ErrGatewayUnavailable = errors.New("ledger gateway unavailable")

	// ErrTxNotOnChain is returned when the ledger gateway has no record of a
	// transaction hash yet
	ErrTxNotOnChain = errors.New("transaction not found on chain")

	// ErrVersionConflict is returned when an optimistic-lock update on a vault
	// row loses the race; callers should reload and retry
	ErrVersionConflict = errors.New("vault version conflict")

	// ErrPendingTransactionExists is returned when a vault already has an
	// in-flight transaction of the same type
	ErrPendingTransactionExists = errors.New("pending transaction of this type already exists")

	// ErrInvalidWalletAddress is returned when a wallet address fails validation
	ErrInvalidWalletAddress = errors.New("invalid wallet address")

	// ErrWrongVaultPhase is returned when an operation is requested in a vault
	// phase that does not permit it
	ErrWrongVaultPhase = errors.New("operation not allowed in current vault phase")
)
