package covenant

import (
	"errors"
	"fmt"
	"testing"
)

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "OK"},
		{"context", fmt.Errorf("%s: %w", StageContext, ErrContextMismatch), "ContextMismatch"},
		{"commitment", ErrStateCommitmentMismatch, "StateCommitmentMismatch"},
		{"ancestry", ErrInvalidAncestry, "InvalidAncestry"},
		{"guard", ErrGuardLinkageInvalid, "GuardLinkageInvalid"},
		{"zero amount", fmt.Errorf("%w: %w", ErrGuardLinkageInvalid, ErrZeroAmount), "ZeroAmount"},
		{"owner", ErrOwnershipMismatch, "OwnershipMismatch"},
		{"signature", fmt.Errorf("%s: %w", StageOwner, ErrBadSignature), "BadSignature"},
		{"assertion", ErrAssertionFailed, "AssertionFailed"},
		{"unknown", errors.New("disk on fire"), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reason(tt.err); got != tt.want {
				t.Errorf("Reason() = %q, want %q", got, tt.want)
			}
		})
	}
}
