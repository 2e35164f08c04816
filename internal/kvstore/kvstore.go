// Package kvstore provides the byte-keyed persistence layer for governance
// state. Entities are stored as opaque values under single-byte-prefixed
// keys; multi-key updates go through Apply so one operation commits fully
// or not at all.
package kvstore

// Write is a single pending mutation inside an atomic batch.
type Write struct {
	Key    []byte
	Value  []byte
	Delete bool
}

// Store is a flat key-value store with atomic batch commit.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(key []byte) ([]byte, bool, error)
	// Put stores value under key, overwriting any previous value.
	Put(key, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key []byte) error
	// Apply commits all writes atomically, in order.
	Apply(writes []Write) error
}
