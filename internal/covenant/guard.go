package covenant

import (
	"bytes"
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// GuardInfo locates the supply guard spent alongside a token input.
type GuardInfo struct {
	// Tx is the transaction that created the guard output.
	Tx *tx.Transaction `json:"tx"`
	// InputIndex is the guard's input position in the spending transaction.
	InputIndex uint32 `json:"input_index"`
	// OutputIndex is the guard output's position in Tx.
	OutputIndex uint32 `json:"output_index"`
	// State is the conservation bookkeeping Tx committed for the guard.
	State types.GuardState `json:"state"`
}

// Outpoint returns the outpoint of the guard output.
func (g *GuardInfo) Outpoint() types.Outpoint {
	return types.Outpoint{TxID: g.Tx.Hash(), Index: g.OutputIndex}
}

// VerifyGuard checks that the trusted guard is spent in the same
// transaction and has recorded preState.Amount for the token input at
// inputIndex. Checks run in a fixed order and the first failure wins.
func VerifyGuard(
	info *GuardInfo,
	spentScript types.Script,
	preState types.TokenState,
	inputIndex uint32,
	prevouts *tx.PrevoutsContext,
	spentScripts *tx.SpentScriptsContext,
	guardScript types.Script,
) error {
	if info == nil || info.Tx == nil || prevouts == nil || spentScripts == nil {
		return fmt.Errorf("%w: missing guard info", ErrGuardLinkageInvalid)
	}

	// The guard must govern this token kind.
	if !info.State.TokenScript.Equal(spentScript) {
		return fmt.Errorf("%w: guard governs a different token script", ErrGuardLinkageInvalid)
	}

	// Its state must be the one its own transaction committed.
	committed, err := info.Tx.StateHashAt(info.OutputIndex)
	if err != nil {
		return fmt.Errorf("%w: guard state not committed: %v", ErrGuardLinkageInvalid, err)
	}
	if committed != GuardStateHash(&info.State) {
		return fmt.Errorf("%w: guard state commitment", ErrGuardLinkageInvalid)
	}

	if preState.Amount == 0 {
		return fmt.Errorf("%w: %w", ErrGuardLinkageInvalid, ErrZeroAmount)
	}

	if int(inputIndex) >= len(info.State.InputAmounts) {
		return fmt.Errorf("%w: input index %d out of range", ErrGuardLinkageInvalid, inputIndex)
	}
	if got := info.State.InputAmounts[inputIndex]; got != preState.Amount {
		return fmt.Errorf("%w: guard records %d for input %d, state holds %d",
			ErrGuardLinkageInvalid, got, inputIndex, preState.Amount)
	}

	// The guard output must actually be consumed at its claimed position.
	if info.InputIndex >= prevouts.Count || int(info.InputIndex) >= len(prevouts.Prevouts) {
		return fmt.Errorf("%w: guard input index %d of %d", ErrGuardLinkageInvalid, info.InputIndex, prevouts.Count)
	}
	if !bytes.Equal(info.Outpoint().Bytes(), prevouts.Prevouts[info.InputIndex].Bytes()) {
		return fmt.Errorf("%w: guard output not spent at input %d", ErrGuardLinkageInvalid, info.InputIndex)
	}

	// And what is spent there must be the trusted guard.
	if info.InputIndex >= spentScripts.Count || int(info.InputIndex) >= len(spentScripts.Scripts) {
		return fmt.Errorf("%w: guard input index %d of %d scripts", ErrGuardLinkageInvalid, info.InputIndex, spentScripts.Count)
	}
	if !spentScripts.Scripts[info.InputIndex].Equal(guardScript) {
		return fmt.Errorf("%w: input %d is not the trusted guard", ErrGuardLinkageInvalid, info.InputIndex)
	}
	return nil
}
