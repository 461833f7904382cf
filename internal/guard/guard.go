// Package guard implements the supply guard's side of a token transfer:
// recording how much each token input contributes and checking that a
// transaction's token outputs conserve that total.
package guard

import (
	"errors"
	"fmt"
	"math"

	"github.com/Klingon-tech/klingnet-covenant/config"
	"github.com/Klingon-tech/klingnet-covenant/internal/covenant"
	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// Conservation errors.
var (
	ErrConservation     = errors.New("token conservation violated")
	ErrZeroAmount       = errors.New("token amount must be positive")
	ErrAmountTooLarge   = errors.New("token amount exceeds maximum")
	ErrSlotRange        = errors.New("input slot out of range")
	ErrDuplicateSlot    = errors.New("input slot recorded twice")
	ErrDuplicateOutput  = errors.New("token output listed twice")
	ErrUncommitted      = errors.New("token output state not committed")
	ErrUnaccounted      = errors.New("token output without state")
	ErrWrongTokenScript = errors.New("output not locked by token script")
)

// TokenInput is one token input's contribution to a transfer.
type TokenInput struct {
	InputIndex uint32
	Amount     uint64
}

// OutputState pairs a token output position with the state it carries.
type OutputState struct {
	OutputIndex uint32
	State       types.TokenState
}

// BuildState records the per-input amounts of a transfer of tokenScript.
func BuildState(tokenScript types.Script, inputs []TokenInput) (types.GuardState, error) {
	state := types.GuardState{TokenScript: tokenScript}
	for _, in := range inputs {
		if int(in.InputIndex) >= len(state.InputAmounts) {
			return types.GuardState{}, fmt.Errorf("%w: %d", ErrSlotRange, in.InputIndex)
		}
		if err := checkAmount(in.Amount); err != nil {
			return types.GuardState{}, fmt.Errorf("input %d: %w", in.InputIndex, err)
		}
		if state.InputAmounts[in.InputIndex] != 0 {
			return types.GuardState{}, fmt.Errorf("%w: %d", ErrDuplicateSlot, in.InputIndex)
		}
		state.InputAmounts[in.InputIndex] = in.Amount
	}
	return state, nil
}

// ValidateTransfer checks that the token outputs of transfer carry
// exactly the total the guard recorded, less burned. Every output locked
// by the token script must be listed in outputs exactly once and committed
// by the transaction's state output.
func ValidateTransfer(state *types.GuardState, transfer *tx.Transaction, outputs []OutputState, burned uint64) error {
	inTotal, ok := state.TotalInput()
	if !ok {
		return fmt.Errorf("%w: input amounts overflow", ErrConservation)
	}

	listed := make(map[uint32]bool, len(outputs))
	var outTotal uint64
	for _, o := range outputs {
		if listed[o.OutputIndex] {
			return fmt.Errorf("output %d: %w", o.OutputIndex, ErrDuplicateOutput)
		}
		if int(o.OutputIndex) >= len(transfer.Outputs) {
			return fmt.Errorf("output %d: %w", o.OutputIndex, ErrSlotRange)
		}
		if !transfer.Outputs[o.OutputIndex].Script.Equal(state.TokenScript) {
			return fmt.Errorf("output %d: %w", o.OutputIndex, ErrWrongTokenScript)
		}
		if err := checkAmount(o.State.Amount); err != nil {
			return fmt.Errorf("output %d: %w", o.OutputIndex, err)
		}
		committed, err := transfer.StateHashAt(o.OutputIndex)
		if err != nil || committed != covenant.TokenStateHash(o.State) {
			return fmt.Errorf("output %d: %w", o.OutputIndex, ErrUncommitted)
		}
		if outTotal > math.MaxUint64-o.State.Amount {
			return fmt.Errorf("%w: output amounts overflow", ErrConservation)
		}
		outTotal += o.State.Amount
		listed[o.OutputIndex] = true
	}

	for i, out := range transfer.Outputs {
		if out.Script.Equal(state.TokenScript) && !listed[uint32(i)] {
			return fmt.Errorf("output %d: %w", i, ErrUnaccounted)
		}
	}

	if outTotal > math.MaxUint64-burned {
		return fmt.Errorf("%w: burn overflow", ErrConservation)
	}
	if inTotal != outTotal+burned {
		return fmt.Errorf("%w: input=%d output+burn=%d", ErrConservation, inTotal, outTotal+burned)
	}
	return nil
}

func checkAmount(amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if amount > config.MaxTokenAmount {
		return ErrAmountTooLarge
	}
	return nil
}
