package covenant

import (
	"encoding/binary"
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// Hash contexts for state commitments. Changing either invalidates every
// committed state.
const (
	tokenStateContext = "klingnet-covenant token state"
	guardStateContext = "klingnet-covenant guard state"
)

// TokenStateHash is the canonical commitment of a token state.
// Preimage: owner(20) | amount LE u64.
func TokenStateHash(s types.TokenState) types.Hash {
	buf := make([]byte, 0, types.AddressSize+8)
	buf = append(buf, s.Owner[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, s.Amount)
	return crypto.HashDerive(tokenStateContext, buf)
}

// GuardStateHash is the canonical commitment of a guard state.
// Preimage: token_script.Bytes() | input_amounts[0..MaxInputSlots] LE u64.
func GuardStateHash(g *types.GuardState) types.Hash {
	script := g.TokenScript.Bytes()
	buf := make([]byte, 0, len(script)+8*len(g.InputAmounts))
	buf = append(buf, script...)
	for _, a := range g.InputAmounts {
		buf = binary.LittleEndian.AppendUint64(buf, a)
	}
	return crypto.HashDerive(guardStateContext, buf)
}

// VerifyStateCommitment checks that state is the state prevTx committed
// for the output at prevout.
func VerifyStateCommitment(state types.TokenState, prevTx *tx.Transaction, prevout types.Outpoint) error {
	if prevTx == nil {
		return fmt.Errorf("%w: missing previous transaction", ErrStateCommitmentMismatch)
	}
	if prevTx.Hash() != prevout.TxID {
		return fmt.Errorf("%w: previous transaction is not %s", ErrStateCommitmentMismatch, prevout.TxID)
	}
	committed, err := prevTx.StateHashAt(prevout.Index)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStateCommitmentMismatch, err)
	}
	if committed != TokenStateHash(state) {
		return fmt.Errorf("%w: output %d", ErrStateCommitmentMismatch, prevout.Index)
	}
	return nil
}
