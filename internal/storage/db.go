// Package storage provides the key-value stores behind the transaction
// archive and the token metadata index.
package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// KV is one key-value pair of a batched write.
type KV struct {
	Key   []byte
	Value []byte
}

// DB is the interface for key-value storage.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	// PutBatch stores every pair. Either all pairs are written or an
	// error is returned.
	PutBatch(kvs []KV) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach iterates over all keys with the given prefix in key order.
	// The callback receives a copy of the key and value.
	// Return a non-nil error from fn to stop iteration early.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}

// Backends accepted by Open.
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Open opens a database of the named backend. path is ignored for memory.
func Open(backend, path string) (DB, error) {
	switch backend {
	case BackendBadger, "":
		return NewBadger(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
