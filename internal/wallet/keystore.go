package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

const keystoreVersion = 1

// Keystore errors.
var (
	ErrWalletExists   = errors.New("wallet already exists")
	ErrWalletNotFound = errors.New("wallet not found")
	ErrUnknownOwner   = errors.New("owner not in wallet")
)

// walletFile is the on-disk form of one wallet.
type walletFile struct {
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	Seed      []byte       `json:"sealed_seed"`
	Owners    []OwnerEntry `json:"owners"`
	NextIndex uint32       `json:"next_index"`
}

// OwnerEntry records one derived owner key.
type OwnerEntry struct {
	Label   string        `json:"label"`
	Account uint32        `json:"account"`
	Index   uint32        `json:"index"`
	Address types.Address `json:"address"`
}

// Keystore stores sealed wallet seeds as files in a directory.
type Keystore struct {
	dir string
}

// NewKeystore opens the keystore in dir, creating it if needed.
func NewKeystore(dir string) (*Keystore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{dir: dir}, nil
}

func (ks *Keystore) path(name string) string {
	return filepath.Join(ks.dir, name+".wallet")
}

// Create seals seed under password as wallet name.
func (ks *Keystore) Create(name string, seed, password []byte, p KDFParams) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid wallet name %q", name)
	}
	if _, err := os.Stat(ks.path(name)); err == nil {
		return fmt.Errorf("%w: %s", ErrWalletExists, name)
	}
	sealed, err := Seal(seed, password, p)
	if err != nil {
		return fmt.Errorf("seal seed: %w", err)
	}
	return ks.write(name, &walletFile{
		Version:   keystoreVersion,
		CreatedAt: time.Now().UTC(),
		Seed:      sealed,
		Owners:    []OwnerEntry{},
	})
}

// Master unseals wallet name and returns its master key.
func (ks *Keystore) Master(name string, password []byte) (*HDKey, error) {
	wf, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	seed, err := Open(wf.Seed, password)
	if err != nil {
		return nil, err
	}
	defer wipe(seed)
	return NewMasterKey(seed)
}

// NewOwner derives the wallet's next owner key on account 0 and records
// it under label.
func (ks *Keystore) NewOwner(name string, password []byte, label string) (OwnerEntry, *HDKey, error) {
	master, err := ks.Master(name, password)
	if err != nil {
		return OwnerEntry{}, nil, err
	}
	wf, err := ks.read(name)
	if err != nil {
		return OwnerEntry{}, nil, err
	}
	key, err := master.DeriveOwner(0, wf.NextIndex)
	if err != nil {
		return OwnerEntry{}, nil, err
	}
	entry := OwnerEntry{Label: label, Index: wf.NextIndex, Address: key.Owner()}
	wf.Owners = append(wf.Owners, entry)
	wf.NextIndex++
	if err := ks.write(name, wf); err != nil {
		return OwnerEntry{}, nil, err
	}
	return entry, key, nil
}

// Owners lists the owner keys recorded in wallet name.
func (ks *Keystore) Owners(name string) ([]OwnerEntry, error) {
	wf, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	return wf.Owners, nil
}

// OwnerKey returns the signing key of a recorded owner address.
func (ks *Keystore) OwnerKey(name string, password []byte, owner types.Address) (*HDKey, error) {
	wf, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	for _, e := range wf.Owners {
		if e.Address != owner {
			continue
		}
		master, err := ks.Master(name, password)
		if err != nil {
			return nil, err
		}
		return master.DeriveOwner(e.Account, e.Index)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownOwner, owner)
}

// List returns the names of all wallets.
func (ks *Keystore) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(ks.dir, "*.wallet"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".wallet"))
	}
	return names, nil
}

// Delete removes wallet name.
func (ks *Keystore) Delete(name string) error {
	err := os.Remove(ks.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	return err
}

// write replaces the wallet file atomically.
func (ks *Keystore) write(name string, wf *walletFile) error {
	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	tmp := ks.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	if err := os.Rename(tmp, ks.path(name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write wallet: %w", err)
	}
	return nil
}

func (ks *Keystore) read(name string) (*walletFile, error) {
	data, err := os.ReadFile(ks.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read wallet: %w", err)
	}
	var wf walletFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse wallet: %w", err)
	}
	if wf.Version != keystoreVersion {
		return nil, fmt.Errorf("unsupported wallet version: %d", wf.Version)
	}
	return &wf, nil
}
