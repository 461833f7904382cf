package covenant

import "errors"

// Verification errors. Every failure is final for the spend being
// validated: identical inputs always produce the identical error.
var (
	ErrContextMismatch         = errors.New("context mismatch")
	ErrStateCommitmentMismatch = errors.New("state commitment mismatch")
	ErrInvalidAncestry         = errors.New("invalid ancestry")
	ErrGuardLinkageInvalid     = errors.New("guard linkage invalid")
	ErrOwnershipMismatch       = errors.New("ownership mismatch")
	ErrBadSignature            = errors.New("bad signature")

	// ErrZeroAmount accompanies ErrGuardLinkageInvalid when the claimed
	// prior state carries no tokens.
	ErrZeroAmount = errors.New("token amount must be positive")

	// ErrAssertionFailed reports a spend bundle the engine could not even
	// evaluate (missing parts, input not locked by this token script).
	ErrAssertionFailed = errors.New("assertion failed")
)

// reasons maps each error to its stable name, most specific first.
var reasons = []struct {
	err  error
	name string
}{
	{ErrZeroAmount, "ZeroAmount"},
	{ErrContextMismatch, "ContextMismatch"},
	{ErrStateCommitmentMismatch, "StateCommitmentMismatch"},
	{ErrInvalidAncestry, "InvalidAncestry"},
	{ErrGuardLinkageInvalid, "GuardLinkageInvalid"},
	{ErrOwnershipMismatch, "OwnershipMismatch"},
	{ErrBadSignature, "BadSignature"},
	{ErrAssertionFailed, "AssertionFailed"},
}

// Reason returns the stable name of a verification error for logs and
// tool output: "OK" for nil, "Unknown" for errors outside the taxonomy.
func Reason(err error) string {
	if err == nil {
		return "OK"
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.name
		}
	}
	return "Unknown"
}
