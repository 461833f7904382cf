// Package covenant decides whether a token output may be spent.
//
// A spend is checked in five fixed stages: the transaction context, the
// prior state's on-chain commitment, the prior output's ancestry, the
// linkage to the supply guard, and the owner's authorization. The first
// failing stage rejects the spend. Every function here is a pure function
// of its arguments, so every validator reaches the same verdict.
package covenant

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// tokenScriptContext derives the token script of a contract instance.
const tokenScriptContext = "klingnet-covenant token script"

// Contract is one deployed token instance. Both scripts are fixed for the
// life of the token. A Contract is an immutable value and safe for
// concurrent use.
type Contract struct {
	MinterScript types.Script `json:"minter_script"`
	GuardScript  types.Script `json:"guard_script"`
}

// NewContract validates and returns a contract for the given authorities.
func NewContract(minter, guard types.Script) (Contract, error) {
	if minter.IsZero() || guard.IsZero() {
		return Contract{}, fmt.Errorf("minter and guard scripts are required")
	}
	if minter.Equal(guard) {
		return Contract{}, fmt.Errorf("minter and guard scripts must differ")
	}
	return Contract{MinterScript: minter, GuardScript: guard}, nil
}

// TokenScript returns the script locking every output of this token.
func (c Contract) TokenScript() types.Script {
	buf := append(c.MinterScript.Bytes(), c.GuardScript.Bytes()...)
	id := crypto.HashDerive(tokenScriptContext, buf)
	return types.Script{Type: types.ScriptTypeToken, Data: id[:]}
}

// Spend is everything a spender supplies to unlock one token input.
type Spend struct {
	Args         UnlockArgs
	PreState     types.TokenState
	PrevTx       *tx.Transaction
	Backtrace    Backtrace
	Guard        GuardInfo
	Preimage     *tx.SHPreimage
	Prevouts     tx.PrevoutsContext
	SpentScripts tx.SpentScriptsContext
}

// Verification stages, in evaluation order.
const (
	StageContext    = "context"
	StageCommitment = "state commitment"
	StageAncestry   = "ancestry"
	StageGuard      = "guard"
	StageOwner      = "owner"
)

// Unlock runs every verification stage for spend against the engine's
// checker and returns the first failure, prefixed with its stage.
func (c Contract) Unlock(spend *Spend, checker SigChecker) error {
	if spend == nil || checker == nil {
		return fmt.Errorf("%w: nothing to evaluate", ErrAssertionFailed)
	}

	prevout, err := VerifyContext(spend.Preimage, &spend.Prevouts, &spend.SpentScripts, checker)
	if err != nil {
		return fmt.Errorf("%s: %w", StageContext, err)
	}
	// InputIndex < Count <= MaxTxInputs once the context checks out.
	inputIndex := spend.Preimage.InputIndex
	self := spend.SpentScripts.Scripts[inputIndex]
	if !self.Equal(c.TokenScript()) {
		return fmt.Errorf("%s: %w: input %d is not locked by this token", StageContext, ErrAssertionFailed, inputIndex)
	}

	if err := VerifyStateCommitment(spend.PreState, spend.PrevTx, prevout); err != nil {
		return fmt.Errorf("%s: %w", StageCommitment, err)
	}

	if err := VerifyAncestry(prevout, spend.Backtrace, c.MinterScript, self); err != nil {
		return fmt.Errorf("%s: %w", StageAncestry, err)
	}

	if err := VerifyGuard(&spend.Guard, self, spend.PreState, inputIndex,
		&spend.Prevouts, &spend.SpentScripts, c.GuardScript); err != nil {
		return fmt.Errorf("%s: %w", StageGuard, err)
	}

	if err := VerifyOwner(spend.Args, spend.PreState, &spend.SpentScripts, checker); err != nil {
		return fmt.Errorf("%s: %w", StageOwner, err)
	}
	return nil
}
