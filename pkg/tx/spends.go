package tx

import (
	"errors"
	"fmt"
	"math"

	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// Spent-output validation errors.
var (
	ErrMissingPubKey     = errors.New("input missing public key")
	ErrInvalidSig        = errors.New("invalid signature")
	ErrInputOverflow     = errors.New("input values overflow")
	ErrValueCreated      = errors.New("outputs exceed inputs")
	ErrScriptMismatch    = errors.New("pubkey does not match spent script")
	ErrUnspendableOutput = errors.New("output is unspendable")
)

// VerifySpends checks the transaction against the outputs it consumes:
// nothing unspendable is spent, every P2PKH input carries a valid key and
// signature over its sighash digest, and no native value is created.
// Covenant inputs (minter, token, guard, P2SH) are authorized by their own
// scripts and are not checked here.
func (tx *Transaction) VerifySpends(spent []Output) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if len(spent) != len(tx.Inputs) {
		return fmt.Errorf("%w: %d spent outputs for %d inputs", ErrSpentMismatch, len(spent), len(tx.Inputs))
	}

	var totalInput uint64
	for i, out := range spent {
		in := tx.Inputs[i]
		switch out.Script.Type {
		case types.ScriptTypeBurn, types.ScriptTypeState:
			return fmt.Errorf("input %d (%s): %w: %s output cannot be spent",
				i, in.PrevOut, ErrUnspendableOutput, out.Script.Type)
		case types.ScriptTypeP2PKH:
			if err := verifyP2PKH(in.PubKey, out.Script.Data); err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			digest, err := tx.SighashDigest(spent, uint32(i))
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			if !crypto.VerifySignature(digest[:], in.Signature, in.PubKey) {
				return fmt.Errorf("input %d: %w", i, ErrInvalidSig)
			}
		}

		if totalInput > math.MaxUint64-out.Value {
			return fmt.Errorf("input %d: %w", i, ErrInputOverflow)
		}
		totalInput += out.Value
	}

	totalOutput, err := tx.TotalOutputValue()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputOverflow, err)
	}
	if totalInput < totalOutput {
		return fmt.Errorf("%w: inputs=%d outputs=%d", ErrValueCreated, totalInput, totalOutput)
	}
	return nil
}

// verifyP2PKH checks that a public key hashes to the expected address in the script.
func verifyP2PKH(pubKey []byte, scriptData []byte) error {
	if len(scriptData) != types.AddressSize {
		return fmt.Errorf("%w: script data length %d", ErrScriptMismatch, len(scriptData))
	}
	if len(pubKey) == 0 {
		return ErrMissingPubKey
	}

	var expected types.Address
	copy(expected[:], scriptData)
	derived := crypto.AddressFromPubKey(pubKey)
	if expected != derived {
		return fmt.Errorf("%w: expected %s, got %s", ErrScriptMismatch, expected, derived)
	}
	return nil
}
