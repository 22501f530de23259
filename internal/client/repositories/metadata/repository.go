// Package metadata provides a small key-value store inside the device
// database. The sync client keeps its token pair here, the same way the
// browser extension kept it in extension-local storage.
package metadata

import "context"

// Repository is a string-keyed byte-value store.
type Repository interface {
	// Get returns the value for key, or common.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set inserts or replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key.
	Clear(ctx context.Context) error
}
