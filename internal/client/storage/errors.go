package storage

import "errors"

// Common client storage errors
var (
	// ErrEntityNotFound indicates that the entity does not exist locally
	ErrEntityNotFound = errors.New("entity not found")

	// ErrQueueItemNotFound indicates that the queued operation does not exist
	ErrQueueItemNotFound = errors.New("queue item not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrVaultLocked indicates that encrypted data was accessed before Unlock
	ErrVaultLocked = errors.New("vault is locked")

	// ErrWrongPassphrase indicates that the passphrase does not open this vault
	ErrWrongPassphrase = errors.New("wrong passphrase")
)
