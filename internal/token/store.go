package token

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/internal/storage"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// Namespace holds the metadata index's keys within a shared database:
// t/<tokenID(32)> -> Metadata JSON.
var Namespace = []byte("t/")

// ErrUnknownToken is returned by Get for tokens that were never indexed.
var ErrUnknownToken = errors.New("unknown token")

// Store persists token metadata.
type Store struct {
	db *storage.PrefixDB
}

// NewStore creates a token metadata store in db's Namespace.
func NewStore(db storage.DB) *Store {
	return &Store{db: storage.NewPrefixDB(db, Namespace)}
}

// Put stores metadata for a token.
func (s *Store) Put(id types.Hash, meta *Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("token marshal: %w", err)
	}
	return s.db.Put(id[:], data)
}

// Get retrieves metadata for a token.
func (s *Store) Get(id types.Hash) (*Metadata, error) {
	data, err := s.db.Get(id[:])
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, id)
	}
	if err != nil {
		return nil, fmt.Errorf("token get: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("token unmarshal: %w", err)
	}
	return &meta, nil
}

// Has checks if metadata exists for a token.
func (s *Store) Has(id types.Hash) (bool, error) {
	return s.db.Has(id[:])
}

// MetadataEntry pairs a token ID with its metadata.
type MetadataEntry struct {
	ID types.Hash `json:"id"`
	Metadata
}

// List returns all token metadata entries in ID order. Corrupt entries
// are skipped.
func (s *Store) List() ([]MetadataEntry, error) {
	entries := []MetadataEntry{}
	err := s.db.ForEach(nil, func(key, value []byte) error {
		if len(key) != types.HashSize {
			return nil
		}
		var e MetadataEntry
		copy(e.ID[:], key)
		if err := json.Unmarshal(value, &e.Metadata); err != nil {
			return nil
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
