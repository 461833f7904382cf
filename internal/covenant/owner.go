package covenant

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// UnlockArgs selects how the owner of a token authorizes its spend.
// The only implementations are UserSpend and ContractSpend.
type UnlockArgs interface {
	isUnlockArgs()
}

// UserSpend authorizes a key-owned token with a signature.
type UserSpend struct {
	// PubKeyPrefix and PubKey together form the compressed public key.
	PubKeyPrefix byte
	PubKey       []byte
	Signature    []byte
}

// ContractSpend authorizes a script-owned token: the owner is whatever
// script locks input ContractInputIndex of the spending transaction.
type ContractSpend struct {
	ContractInputIndex uint32
}

func (UserSpend) isUnlockArgs()     {}
func (ContractSpend) isUnlockArgs() {}

// CompressedPubKey returns prefix | pubKey.
func (u UserSpend) CompressedPubKey() []byte {
	out := make([]byte, 0, 1+len(u.PubKey))
	out = append(out, u.PubKeyPrefix)
	return append(out, u.PubKey...)
}

// NewUserSpend splits a compressed public key into UserSpend fields.
func NewUserSpend(compressedPubKey, signature []byte) (UserSpend, error) {
	if len(compressedPubKey) != crypto.PubKeySize {
		return UserSpend{}, fmt.Errorf("public key must be %d bytes, got %d", crypto.PubKeySize, len(compressedPubKey))
	}
	return UserSpend{
		PubKeyPrefix: compressedPubKey[0],
		PubKey:       append([]byte(nil), compressedPubKey[1:]...),
		Signature:    append([]byte(nil), signature...),
	}, nil
}

// VerifyOwner checks that args carry the owner's authority over preState.
func VerifyOwner(args UnlockArgs, preState types.TokenState, spentScripts *tx.SpentScriptsContext, checker SigChecker) error {
	switch a := args.(type) {
	case UserSpend:
		pubKey := a.CompressedPubKey()
		if crypto.AddressFromPubKey(pubKey) != preState.Owner {
			return fmt.Errorf("%w: key does not hash to owner %s", ErrOwnershipMismatch, preState.Owner)
		}
		if checker == nil {
			return fmt.Errorf("%w: no signature checker", ErrAssertionFailed)
		}
		if !checker.CheckSig(a.Signature, pubKey) {
			return ErrBadSignature
		}
		return nil

	case ContractSpend:
		if spentScripts == nil || !spentScripts.Canonical() || a.ContractInputIndex >= spentScripts.Count {
			return fmt.Errorf("%w: contract input %d not in transaction", ErrOwnershipMismatch, a.ContractInputIndex)
		}
		owner := crypto.AddressFromScript(spentScripts.Scripts[a.ContractInputIndex])
		if owner != preState.Owner {
			return fmt.Errorf("%w: script at input %d is not owner %s", ErrOwnershipMismatch, a.ContractInputIndex, preState.Owner)
		}
		return nil

	default:
		return fmt.Errorf("%w: unlock arguments %T", ErrOwnershipMismatch, args)
	}
}
