package tx

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/config"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// stateMagic starts the data of every state output script.
var stateMagic = []byte("KGXS")

// State output errors.
var (
	ErrMalformedState = errors.New("malformed state output")
	ErrNoStateSlot    = errors.New("output has no state slot")
)

// StateOutputScript builds the script of a state output. hashes[i] commits
// the state of output i+1; a zero hash marks a stateless output.
// Data format: "KGXS" | count(1) | count × hash(32)
func StateOutputScript(hashes []types.Hash) (types.Script, error) {
	if len(hashes) > config.MaxStateHashes {
		return types.Script{}, fmt.Errorf("%w: %d hashes, max %d", ErrMalformedState, len(hashes), config.MaxStateHashes)
	}
	data := make([]byte, 0, len(stateMagic)+1+len(hashes)*types.HashSize)
	data = append(data, stateMagic...)
	data = append(data, byte(len(hashes)))
	for _, h := range hashes {
		data = append(data, h[:]...)
	}
	return types.Script{Type: types.ScriptTypeState, Data: data}, nil
}

// DecodeStateOutput parses a state output script.
func DecodeStateOutput(script types.Script) ([]types.Hash, error) {
	if script.Type != types.ScriptTypeState {
		return nil, fmt.Errorf("%w: script type %s", ErrMalformedState, script.Type)
	}
	data := script.Data
	if len(data) < len(stateMagic)+1 || !bytes.Equal(data[:len(stateMagic)], stateMagic) {
		return nil, fmt.Errorf("%w: bad header", ErrMalformedState)
	}
	n := int(data[len(stateMagic)])
	body := data[len(stateMagic)+1:]
	if n > config.MaxStateHashes {
		return nil, fmt.Errorf("%w: %d hashes, max %d", ErrMalformedState, n, config.MaxStateHashes)
	}
	if len(body) != n*types.HashSize {
		return nil, fmt.Errorf("%w: %d bytes for %d hashes", ErrMalformedState, len(body), n)
	}
	hashes := make([]types.Hash, n)
	for i := range hashes {
		copy(hashes[i][:], body[i*types.HashSize:])
	}
	return hashes, nil
}

// StateHashAt returns the state hash the transaction's state output
// records for output index. Index StateOutputIndex itself has no slot.
func (tx *Transaction) StateHashAt(index uint32) (types.Hash, error) {
	if len(tx.Outputs) == 0 || len(tx.Outputs) > config.MaxTxOutputs {
		return types.Hash{}, fmt.Errorf("%w: %d outputs", ErrNoStateSlot, len(tx.Outputs))
	}
	if index <= config.StateOutputIndex || int(index) >= len(tx.Outputs) {
		return types.Hash{}, fmt.Errorf("%w: index %d of %d outputs", ErrNoStateSlot, index, len(tx.Outputs))
	}
	hashes, err := DecodeStateOutput(tx.Outputs[config.StateOutputIndex].Script)
	if err != nil {
		return types.Hash{}, err
	}
	slot := int(index) - 1
	if slot >= len(hashes) {
		return types.Hash{}, fmt.Errorf("%w: index %d, %d hashes", ErrNoStateSlot, index, len(hashes))
	}
	return hashes[slot], nil
}
