// Package token holds descriptive data about covenant tokens: the
// metadata a minter script embeds, its persistent index, and amount
// formatting.
//
// A token kind is identified by the hash of its token script, which in
// turn is derived from the contract's minter and guard scripts.
package token

import (
	"github.com/Klingon-tech/klingnet-covenant/internal/covenant"
	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// ID returns the identifier of the token kind locked by tokenScript.
func ID(tokenScript types.Script) types.Hash {
	return crypto.Hash(tokenScript.Bytes())
}

// ContractID returns the identifier of a contract's token kind.
func ContractID(c covenant.Contract) types.Hash {
	return ID(c.TokenScript())
}

// Metadata holds descriptive information about a token.
type Metadata struct {
	Name     string        `json:"name"`
	Symbol   string        `json:"symbol"`
	Decimals uint8         `json:"decimals"`
	Creator  types.Address `json:"creator"`
}
