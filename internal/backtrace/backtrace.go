// Package backtrace builds and checks the ancestry proofs token spends
// carry: the transaction that created the spent output, plus the
// transaction it in turn spent from.
package backtrace

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// Proof errors.
var (
	ErrIncomplete     = errors.New("backtrace incomplete")
	ErrTxMismatch     = errors.New("backtrace transaction mismatch")
	ErrIndexRange     = errors.New("backtrace index out of range")
	ErrScriptMismatch = errors.New("spent output not locked by this script")
)

// Info is a one-step ancestry proof for an outpoint.
type Info struct {
	// PrevTx created the output being spent.
	PrevTx *tx.Transaction `json:"prev_tx"`
	// PrevTxInput is the input of PrevTx whose origin is proven.
	PrevTxInput uint32 `json:"prev_tx_input"`
	// PrevPrevTx created the output spent by PrevTx.Inputs[PrevTxInput].
	PrevPrevTx *tx.Transaction `json:"prev_prev_tx"`
}

// Verify checks that the proof describes prevout, that prevout is locked
// by self, and that PrevPrevTx really is the transaction PrevTx spent from.
func (b *Info) Verify(prevout types.Outpoint, self types.Script) error {
	if b == nil || b.PrevTx == nil || b.PrevPrevTx == nil {
		return ErrIncomplete
	}
	if b.PrevTx.Hash() != prevout.TxID {
		return fmt.Errorf("%w: previous transaction is not %s", ErrTxMismatch, prevout.TxID)
	}
	if int(prevout.Index) >= len(b.PrevTx.Outputs) {
		return fmt.Errorf("%w: output %d of %d", ErrIndexRange, prevout.Index, len(b.PrevTx.Outputs))
	}
	if !b.PrevTx.Outputs[prevout.Index].Script.Equal(self) {
		return ErrScriptMismatch
	}

	origin, ok := b.origin()
	if !ok {
		return fmt.Errorf("%w: input %d of %d", ErrIndexRange, b.PrevTxInput, len(b.PrevTx.Inputs))
	}
	if b.PrevPrevTx.Hash() != origin.TxID {
		return fmt.Errorf("%w: ancestor is not %s", ErrTxMismatch, origin.TxID)
	}
	if int(origin.Index) >= len(b.PrevPrevTx.Outputs) {
		return fmt.Errorf("%w: ancestor output %d of %d", ErrIndexRange, origin.Index, len(b.PrevPrevTx.Outputs))
	}
	return nil
}

// TerminatesAtIssuance reports whether PrevTx spent an output locked by
// minter, i.e. the spent output was issued directly.
func (b *Info) TerminatesAtIssuance(minter types.Script) bool {
	script, ok := b.ancestorScript()
	return ok && script.Equal(minter)
}

// TerminatesAtSameScript reports whether PrevTx spent an output locked by
// self, i.e. the spent output came from an earlier transfer.
func (b *Info) TerminatesAtSameScript(self types.Script) bool {
	script, ok := b.ancestorScript()
	return ok && script.Equal(self)
}

// origin returns the outpoint spent by the proven input of PrevTx.
func (b *Info) origin() (types.Outpoint, bool) {
	if b == nil || b.PrevTx == nil || int(b.PrevTxInput) >= len(b.PrevTx.Inputs) {
		return types.Outpoint{}, false
	}
	return b.PrevTx.Inputs[b.PrevTxInput].PrevOut, true
}

// ancestorScript returns the script of the output PrevTx spent.
func (b *Info) ancestorScript() (types.Script, bool) {
	origin, ok := b.origin()
	if !ok || b.PrevPrevTx == nil || b.PrevPrevTx.Hash() != origin.TxID {
		return types.Script{}, false
	}
	if int(origin.Index) >= len(b.PrevPrevTx.Outputs) {
		return types.Script{}, false
	}
	return b.PrevPrevTx.Outputs[origin.Index].Script, true
}
