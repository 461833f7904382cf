// Package txstore archives raw transactions so backtrace proofs can be
// assembled for any output they created.
package txstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/internal/storage"
	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// Namespace holds the archive's keys within a shared database:
// x/<txid(32)> -> Transaction JSON.
var Namespace = []byte("x/")

// Archive errors.
var (
	ErrNotFound = errors.New("transaction not found")
	ErrCorrupt  = errors.New("archived transaction does not match its id")
)

// Store persists transactions keyed by txid.
type Store struct {
	db *storage.PrefixDB
}

// New creates a transaction archive in db's Namespace.
func New(db storage.DB) *Store {
	return &Store{db: storage.NewPrefixDB(db, Namespace)}
}

// Put archives a transaction and returns its id.
func (s *Store) Put(t *tx.Transaction) (types.Hash, error) {
	txid := t.Hash()
	data, err := json.Marshal(t)
	if err != nil {
		return txid, fmt.Errorf("tx marshal: %w", err)
	}
	if err := s.db.Put(txid[:], data); err != nil {
		return txid, fmt.Errorf("tx put: %w", err)
	}
	return txid, nil
}

// PutAll archives txs in one batch and returns their ids in order.
// Nothing is archived if any transaction fails to encode.
func (s *Store) PutAll(txs []*tx.Transaction) ([]types.Hash, error) {
	ids := make([]types.Hash, len(txs))
	kvs := make([]storage.KV, len(txs))
	for i, t := range txs {
		ids[i] = t.Hash()
		data, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("tx %s marshal: %w", ids[i], err)
		}
		kvs[i] = storage.KV{Key: ids[i][:], Value: data}
	}
	if err := s.db.PutBatch(kvs); err != nil {
		return nil, fmt.Errorf("tx put batch: %w", err)
	}
	return ids, nil
}

// GetTransaction returns the archived transaction with the given id.
// The decoded transaction is re-hashed so a tampered archive cannot
// hand out a different transaction under a known id.
func (s *Store) GetTransaction(txid types.Hash) (*tx.Transaction, error) {
	data, err := s.db.Get(txid[:])
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, txid)
	}
	if err != nil {
		return nil, fmt.Errorf("tx get: %w", err)
	}
	var t tx.Transaction
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("tx unmarshal: %w", err)
	}
	if t.Hash() != txid {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, txid)
	}
	return &t, nil
}

// Has checks if a transaction is archived.
func (s *Store) Has(txid types.Hash) (bool, error) {
	return s.db.Has(txid[:])
}

// Delete removes a transaction from the archive.
func (s *Store) Delete(txid types.Hash) error {
	return s.db.Delete(txid[:])
}

// ForEach iterates over every archived transaction in txid order.
// Return a non-nil error from fn to stop iteration early.
func (s *Store) ForEach(fn func(types.Hash, *tx.Transaction) error) error {
	return s.db.ForEach(nil, func(key, value []byte) error {
		if len(key) != types.HashSize {
			return nil // Not ours.
		}
		var txid types.Hash
		copy(txid[:], key)

		var t tx.Transaction
		if err := json.Unmarshal(value, &t); err != nil {
			return nil // Skip corrupt entries.
		}
		return fn(txid, &t)
	})
}

// Count returns the number of archived transactions.
func (s *Store) Count() (int, error) {
	n := 0
	err := s.ForEach(func(types.Hash, *tx.Transaction) error {
		n++
		return nil
	})
	return n, err
}
