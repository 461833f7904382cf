// Package tx defines token-protocol transactions, their signing digests and
// the context tables a covenant checks them against.
package tx

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// Transaction represents a ledger transaction.
type Transaction struct {
	Version  uint32   `json:"version"`
	Inputs   []Input  `json:"inputs"`
	Outputs  []Output `json:"outputs"`
	LockTime uint64   `json:"locktime"`
}

// Input references an output being spent. Signature and PubKey authorize
// P2PKH inputs only; covenant inputs carry their unlocking data separately.
type Input struct {
	PrevOut   types.Outpoint `json:"prevout"`
	Signature []byte         `json:"signature,omitempty"`
	PubKey    []byte         `json:"pubkey,omitempty"`
}

// inputJSON is the JSON representation of Input with hex-encoded byte fields.
type inputJSON struct {
	PrevOut   types.Outpoint `json:"prevout"`
	Signature *string        `json:"signature,omitempty"`
	PubKey    *string        `json:"pubkey,omitempty"`
}

// MarshalJSON encodes the input with hex-encoded signature and pubkey.
func (in Input) MarshalJSON() ([]byte, error) {
	j := inputJSON{PrevOut: in.PrevOut}
	if in.Signature != nil {
		s := hex.EncodeToString(in.Signature)
		j.Signature = &s
	}
	if in.PubKey != nil {
		p := hex.EncodeToString(in.PubKey)
		j.PubKey = &p
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes an input with hex-encoded signature and pubkey.
func (in *Input) UnmarshalJSON(data []byte) error {
	var j inputJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	in.PrevOut = j.PrevOut
	in.Signature, in.PubKey = nil, nil
	if j.Signature != nil {
		b, err := hex.DecodeString(*j.Signature)
		if err != nil {
			return fmt.Errorf("signature: %w", err)
		}
		in.Signature = b
	}
	if j.PubKey != nil {
		b, err := hex.DecodeString(*j.PubKey)
		if err != nil {
			return fmt.Errorf("pubkey: %w", err)
		}
		in.PubKey = b
	}
	return nil
}

// Output defines a new spendable (or state-carrying) output.
type Output struct {
	Value  uint64       `json:"value"`
	Script types.Script `json:"script"`
}

// Bytes returns value LE u64 | script.Bytes(), the encoding committed to
// by both the txid and the outputs hash of the sighash preimage.
func (o Output) Bytes() []byte {
	script := o.Script.Bytes()
	buf := make([]byte, 0, 8+len(script))
	buf = binary.LittleEndian.AppendUint64(buf, o.Value)
	return append(buf, script...)
}

// Hash computes the transaction ID (BLAKE3 hash of the serialized signing data).
// This excludes signatures to avoid circular dependency.
func (tx *Transaction) Hash() types.Hash {
	return crypto.Hash(tx.SigningBytes())
}

// SigningBytes returns the canonical byte representation of the transaction.
// Format: version(4) | input_count(4) | [prevout(36)]... | output_count(4) | [value(8) + script]... | locktime(8)
func (tx *Transaction) SigningBytes() []byte {
	var buf []byte

	buf = binary.LittleEndian.AppendUint32(buf, tx.Version)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf = append(buf, in.PrevOut.Bytes()...)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		buf = append(buf, out.Bytes()...)
	}

	buf = binary.LittleEndian.AppendUint64(buf, tx.LockTime)
	return buf
}

// Prevouts returns the outpoints spent by the transaction, in input order.
func (tx *Transaction) Prevouts() []types.Outpoint {
	out := make([]types.Outpoint, len(tx.Inputs))
	for i, in := range tx.Inputs {
		out[i] = in.PrevOut
	}
	return out
}

// OutpointAt returns the outpoint that refers to output index of this
// transaction.
func (tx *Transaction) OutpointAt(index uint32) types.Outpoint {
	return types.Outpoint{TxID: tx.Hash(), Index: index}
}

// TotalOutputValue returns the sum of all output values.
// Returns an error if the sum overflows uint64.
func (tx *Transaction) TotalOutputValue() (uint64, error) {
	var total uint64
	for _, out := range tx.Outputs {
		if total > math.MaxUint64-out.Value {
			return 0, fmt.Errorf("output value overflow")
		}
		total += out.Value
	}
	return total, nil
}
