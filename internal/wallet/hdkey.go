package wallet

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/internal/covenant"
	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
	"github.com/tyler-smith/go-bip32"
)

// Owner keys live at m/44'/CoinTypeCovenant'/account'/0/index.
const (
	PurposeBIP44      = bip32.FirstHardenedChild + 44
	CoinTypeCovenant  = bip32.FirstHardenedChild + 8889
	ownerChain uint32 = 0
)

// HDKey is a BIP-32 key.
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates the master key of a seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// DerivePath derives a key along indices. Hardened indices include
// bip32.FirstHardenedChild.
func (k *HDKey) DerivePath(indices ...uint32) (*HDKey, error) {
	cur := k.key
	for _, idx := range indices {
		child, err := cur.NewChildKey(idx)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", idx, err)
		}
		cur = child
	}
	return &HDKey{key: cur}, nil
}

// DeriveOwner derives owner key index of account.
func (k *HDKey) DeriveOwner(account, index uint32) (*HDKey, error) {
	return k.DerivePath(PurposeBIP44, CoinTypeCovenant, bip32.FirstHardenedChild+account, ownerChain, index)
}

// PrivateKeyBytes returns the 32-byte private key, or nil for a
// public-only key.
func (k *HDKey) PrivateKeyBytes() []byte {
	if !k.key.IsPrivate {
		return nil
	}
	// bip32 pads private keys to 33 bytes with a leading zero.
	raw := k.key.Key
	if len(raw) == 33 && raw[0] == 0 {
		return raw[1:]
	}
	return raw
}

// PublicKeyBytes returns the compressed public key.
func (k *HDKey) PublicKeyBytes() []byte {
	if !k.key.IsPrivate {
		return k.key.Key
	}
	return k.key.PublicKey().Key
}

// Owner returns the token owner address of this key.
func (k *HDKey) Owner() types.Address {
	return crypto.AddressFromPubKey(k.PublicKeyBytes())
}

// IsPrivate reports whether the key can sign.
func (k *HDKey) IsPrivate() bool {
	return k.key.IsPrivate
}

// Depth returns the derivation depth, 0 for the master key.
func (k *HDKey) Depth() uint8 {
	return k.key.Depth
}

// Neuter returns a public-only copy.
func (k *HDKey) Neuter() *HDKey {
	return &HDKey{key: k.key.PublicKey()}
}

// SignSpend signs an engine digest and returns the user unlock arguments
// authorizing the spend of a token this key owns.
func (k *HDKey) SignSpend(digest types.Hash) (covenant.UserSpend, error) {
	priv := k.PrivateKeyBytes()
	if priv == nil {
		return covenant.UserSpend{}, fmt.Errorf("public-only key cannot sign")
	}
	signer, err := crypto.PrivateKeyFromBytes(priv)
	if err != nil {
		return covenant.UserSpend{}, err
	}
	defer signer.Zero()

	sig, err := signer.Sign(digest[:])
	if err != nil {
		return covenant.UserSpend{}, fmt.Errorf("sign: %w", err)
	}
	return covenant.NewUserSpend(signer.PublicKey(), sig)
}
