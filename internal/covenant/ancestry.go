package covenant

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// Backtrace is a proof of where the output being spent came from. It is
// assembled off-chain; the covenant only asks it to check itself against
// the spend and to state which lineage it ends in.
type Backtrace interface {
	// Verify checks that the proof describes prevout and that the output
	// at prevout is locked by self.
	Verify(prevout types.Outpoint, self types.Script) error
	// TerminatesAtIssuance reports whether the transaction that created
	// prevout spent an output locked by minter.
	TerminatesAtIssuance(minter types.Script) bool
	// TerminatesAtSameScript reports whether it spent an output locked by self.
	TerminatesAtSameScript(self types.Script) bool
}

// VerifyAncestry checks that the output at prevout was created either by
// the minter or by an earlier transfer under the same token script. The
// second case is anchored in the first because a same-script output can
// only have been spent after passing this very check.
func VerifyAncestry(prevout types.Outpoint, bt Backtrace, minter, self types.Script) error {
	if bt == nil {
		return fmt.Errorf("%w: missing backtrace", ErrInvalidAncestry)
	}
	if err := bt.Verify(prevout, self); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAncestry, err)
	}
	if bt.TerminatesAtIssuance(minter) || bt.TerminatesAtSameScript(self) {
		return nil
	}
	return fmt.Errorf("%w: %s descends from neither the minter nor this token", ErrInvalidAncestry, prevout)
}
