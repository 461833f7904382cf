package tx

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// SighashAll commits to every input and output of the transaction.
const SighashAll uint32 = 0x01

// sighashTag prefixes every preimage so digests cannot be confused with
// txids or state hashes.
const sighashTag = "KGXCOV-sighash/"

// Sighash errors.
var (
	ErrInputIndex    = errors.New("input index out of range")
	ErrSpentMismatch = errors.New("spent outputs do not match inputs")
)

// SHPreimage is the signature preimage of one input. The engine hashes
// Bytes() to obtain the digest every signature on that input commits to.
type SHPreimage struct {
	Version          uint32     `json:"version"`
	LockTime         uint64     `json:"locktime"`
	HashPrevouts     types.Hash `json:"hash_prevouts"`
	HashSpentAmounts types.Hash `json:"hash_spent_amounts"`
	HashSpentScripts types.Hash `json:"hash_spent_scripts"`
	HashOutputs      types.Hash `json:"hash_outputs"`
	InputIndex       uint32     `json:"input_index"`
	SighashType      uint32     `json:"sighash_type"`
}

// Bytes returns the serialized preimage.
// Format: tag | version(4) | locktime(8) | 4 × hash(32) | input_index(4) | sighash_type(4)
func (p *SHPreimage) Bytes() []byte {
	buf := make([]byte, 0, len(sighashTag)+4+8+4*types.HashSize+4+4)
	buf = append(buf, sighashTag...)
	buf = binary.LittleEndian.AppendUint32(buf, p.Version)
	buf = binary.LittleEndian.AppendUint64(buf, p.LockTime)
	buf = append(buf, p.HashPrevouts[:]...)
	buf = append(buf, p.HashSpentAmounts[:]...)
	buf = append(buf, p.HashSpentScripts[:]...)
	buf = append(buf, p.HashOutputs[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, p.InputIndex)
	return binary.LittleEndian.AppendUint32(buf, p.SighashType)
}

// Digest returns the signing digest, BLAKE3(Bytes()).
func (p *SHPreimage) Digest() types.Hash {
	return crypto.Hash(p.Bytes())
}

// BuildPreimage builds the preimage for input inputIndex. spent holds the
// outputs consumed by the transaction's inputs, in input order.
func BuildPreimage(tx *Transaction, spent []Output, inputIndex uint32) (*SHPreimage, error) {
	if int(inputIndex) >= len(tx.Inputs) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInputIndex, inputIndex, len(tx.Inputs))
	}
	if len(spent) != len(tx.Inputs) {
		return nil, fmt.Errorf("%w: %d spent outputs for %d inputs", ErrSpentMismatch, len(spent), len(tx.Inputs))
	}

	scripts := make([]types.Script, len(spent))
	for i, out := range spent {
		scripts[i] = out.Script
	}

	return &SHPreimage{
		Version:          tx.Version,
		LockTime:         tx.LockTime,
		HashPrevouts:     HashPrevouts(tx.Prevouts()),
		HashSpentAmounts: HashSpentAmounts(spent),
		HashSpentScripts: HashSpentScripts(scripts),
		HashOutputs:      HashOutputs(tx.Outputs),
		InputIndex:       inputIndex,
		SighashType:      SighashAll,
	}, nil
}

// SighashDigest returns the digest signatures on input inputIndex commit to.
func (tx *Transaction) SighashDigest(spent []Output, inputIndex uint32) (types.Hash, error) {
	pre, err := BuildPreimage(tx, spent, inputIndex)
	if err != nil {
		return types.Hash{}, err
	}
	return pre.Digest(), nil
}

// HashPrevouts hashes the byte-concatenated outpoints.
func HashPrevouts(prevouts []types.Outpoint) types.Hash {
	buf := make([]byte, 0, len(prevouts)*types.OutpointSize)
	for _, op := range prevouts {
		buf = append(buf, op.Bytes()...)
	}
	return crypto.Hash(buf)
}

// HashSpentScripts hashes the concatenated canonical script bytes.
func HashSpentScripts(scripts []types.Script) types.Hash {
	var buf []byte
	for _, s := range scripts {
		buf = append(buf, s.Bytes()...)
	}
	return crypto.Hash(buf)
}

// HashSpentAmounts hashes the values of the spent outputs.
func HashSpentAmounts(spent []Output) types.Hash {
	buf := make([]byte, 0, len(spent)*8)
	for _, out := range spent {
		buf = binary.LittleEndian.AppendUint64(buf, out.Value)
	}
	return crypto.Hash(buf)
}

// HashOutputs hashes the serialized outputs.
func HashOutputs(outputs []Output) types.Hash {
	var buf []byte
	for _, out := range outputs {
		buf = append(buf, out.Bytes()...)
	}
	return crypto.Hash(buf)
}
