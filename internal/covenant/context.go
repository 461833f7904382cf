package covenant

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// VerifyContext checks that the preimage and both context tables describe
// the transaction the engine is evaluating, and returns the outpoint spent
// by the input under validation.
//
// The preimage is bound to the engine by signing its digest with the
// protocol key and asking the engine to verify that signature: it only
// verifies if the engine's own digest is the same.
func VerifyContext(pre *tx.SHPreimage, prevouts *tx.PrevoutsContext, spentScripts *tx.SpentScriptsContext, checker SigChecker) (types.Outpoint, error) {
	if pre == nil || prevouts == nil || spentScripts == nil || checker == nil {
		return types.Outpoint{}, fmt.Errorf("%w: incomplete transaction context", ErrContextMismatch)
	}

	if !checker.CheckSig(crypto.ProtocolSign(pre.Digest()), crypto.ProtocolPubKey()) {
		return types.Outpoint{}, fmt.Errorf("%w: preimage does not match transaction", ErrContextMismatch)
	}

	if !prevouts.Canonical() || !spentScripts.Canonical() {
		return types.Outpoint{}, fmt.Errorf("%w: context table not canonical", ErrContextMismatch)
	}
	if prevouts.Count != spentScripts.Count {
		return types.Outpoint{}, fmt.Errorf("%w: %d prevouts, %d spent scripts", ErrContextMismatch, prevouts.Count, spentScripts.Count)
	}
	if prevouts.Hash() != pre.HashPrevouts {
		return types.Outpoint{}, fmt.Errorf("%w: prevouts hash", ErrContextMismatch)
	}
	if spentScripts.Hash() != pre.HashSpentScripts {
		return types.Outpoint{}, fmt.Errorf("%w: spent scripts hash", ErrContextMismatch)
	}
	if pre.InputIndex >= prevouts.Count {
		return types.Outpoint{}, fmt.Errorf("%w: input index %d of %d", ErrContextMismatch, pre.InputIndex, prevouts.Count)
	}

	return prevouts.Prevouts[pre.InputIndex], nil
}
