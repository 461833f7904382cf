package tx

import (
	"fmt"
	"slices"

	"github.com/Klingon-tech/klingnet-covenant/config"
	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// Builder constructs transactions incrementally.
type Builder struct {
	tx *Transaction
}

// NewBuilder creates a new transaction builder.
func NewBuilder() *Builder {
	return &Builder{
		tx: &Transaction{Version: 1},
	}
}

// AddInput adds an input referencing a previous output.
func (b *Builder) AddInput(prevOut types.Outpoint) *Builder {
	b.tx.Inputs = append(b.tx.Inputs, Input{PrevOut: prevOut})
	return b
}

// AddOutput adds an output with a value and script.
func (b *Builder) AddOutput(value uint64, script types.Script) *Builder {
	b.tx.Outputs = append(b.tx.Outputs, Output{Value: value, Script: script})
	return b
}

// SetStateOutput places a state output committing hashes in the reserved
// slot, shifting any outputs already added. hashes[i] commits output i+1.
func (b *Builder) SetStateOutput(hashes []types.Hash) error {
	script, err := StateOutputScript(hashes)
	if err != nil {
		return err
	}
	out := Output{Script: script}
	outs := b.tx.Outputs
	if len(outs) > config.StateOutputIndex && outs[config.StateOutputIndex].Script.Type == types.ScriptTypeState {
		outs[config.StateOutputIndex] = out
		return nil
	}
	b.tx.Outputs = slices.Insert(outs, config.StateOutputIndex, out)
	return nil
}

// SetLockTime sets the transaction lock time.
func (b *Builder) SetLockTime(lockTime uint64) *Builder {
	b.tx.LockTime = lockTime
	return b
}

// SignInput signs input i with key over its sighash digest. spent holds
// the outputs consumed by every input, in input order.
func (b *Builder) SignInput(i uint32, key *crypto.PrivateKey, spent []Output) error {
	digest, err := b.tx.SighashDigest(spent, i)
	if err != nil {
		return fmt.Errorf("sighash input %d: %w", i, err)
	}
	sig, err := key.Sign(digest[:])
	if err != nil {
		return fmt.Errorf("sign input %d: %w", i, err)
	}
	b.tx.Inputs[i].Signature = sig
	b.tx.Inputs[i].PubKey = key.PublicKey()
	return nil
}

// SignMulti signs every P2PKH input with the key owning the address in
// its spent script. Covenant inputs are left untouched; they are
// authorized by their own unlocking arguments.
func (b *Builder) SignMulti(signers map[types.Address]*crypto.PrivateKey, spent []Output) error {
	if len(spent) != len(b.tx.Inputs) {
		return fmt.Errorf("%w: %d spent outputs for %d inputs", ErrSpentMismatch, len(spent), len(b.tx.Inputs))
	}
	for i, out := range spent {
		if out.Script.Type != types.ScriptTypeP2PKH {
			continue
		}
		if len(out.Script.Data) != types.AddressSize {
			return fmt.Errorf("input %d: %w: script data length %d", i, ErrScriptMismatch, len(out.Script.Data))
		}
		var addr types.Address
		copy(addr[:], out.Script.Data)
		key, ok := signers[addr]
		if !ok {
			return fmt.Errorf("no signer for address %s (input %d)", addr, i)
		}
		if err := b.SignInput(uint32(i), key, spent); err != nil {
			return err
		}
	}
	return nil
}

// Build returns the constructed transaction.
// Does NOT validate; call tx.Validate() separately.
func (b *Builder) Build() *Transaction {
	return b.tx
}
