// Package crypto provides the cryptographic primitives of the token covenant.
package crypto

import (
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// HashDerive computes a domain-separated BLAKE3 hash using the
// derive-key mode. Distinct contexts never collide for the same data.
func HashDerive(context string, data []byte) types.Hash {
	var h types.Hash
	blake3.DeriveKey(context, data, h[:])
	return h
}

// AddressFromPubKey derives an address from a compressed public key.
// Address = BLAKE3(compressed_pubkey)[:20].
func AddressFromPubKey(pubKey []byte) types.Address {
	return truncate(Hash(pubKey))
}

// AddressFromScript derives the owner address of a script, used when a
// token is held by a contract rather than a key.
// Address = BLAKE3(script.Bytes())[:20].
func AddressFromScript(script types.Script) types.Address {
	return truncate(Hash(script.Bytes()))
}

func truncate(h types.Hash) types.Address {
	var addr types.Address
	copy(addr[:], h[:types.AddressSize])
	return addr
}
