package covenant

import (
	"time"

	"github.com/rs/zerolog"
)

// Validator evaluates spends for one contract and logs each verdict.
// Logging never influences the verdict.
type Validator struct {
	contract Contract
	logger   zerolog.Logger
}

// NewValidator creates a validator for contract.
func NewValidator(contract Contract, logger zerolog.Logger) *Validator {
	return &Validator{contract: contract, logger: logger}
}

// Contract returns the contract the validator checks spends against.
func (v *Validator) Contract() Contract {
	return v.contract
}

// Validate runs Unlock and logs the outcome.
func (v *Validator) Validate(spend *Spend, checker SigChecker) error {
	start := time.Now()
	err := v.contract.Unlock(spend, checker)

	ev := v.logger.Debug()
	if spend != nil && spend.Preimage != nil {
		ev = ev.Uint32("input", spend.Preimage.InputIndex)
	}
	if spend != nil {
		ev = ev.Uint64("amount", spend.PreState.Amount)
	}
	ev = ev.Str("reason", Reason(err)).Dur("elapsed", time.Since(start))
	if err != nil {
		ev.Err(err).Msg("Spend rejected")
		return err
	}
	ev.Msg("Spend accepted")
	return nil
}
