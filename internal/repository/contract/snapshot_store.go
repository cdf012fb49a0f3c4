package contract

import "context"

// SnapshotStore is a raw key/value slot for serialized wizard state.
// Backends report failures; WizardStateRepository decides what to do with them.
type SnapshotStore interface {
	// Get returns the stored bytes and whether the key existed.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
