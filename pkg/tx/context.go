package tx

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/config"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// ErrTableOverflow is returned when a transaction has more inputs than a
// context table can hold.
var ErrTableOverflow = errors.New("context table overflow")

// PrevoutsContext is the fixed-capacity table of outpoints spent by a
// transaction. Only the first Count slots are meaningful; the rest must
// stay zero.
type PrevoutsContext struct {
	Prevouts [config.MaxTxInputs]types.Outpoint `json:"prevouts"`
	Count    uint32                             `json:"count"`
}

// NewPrevoutsContext builds the previous-outputs table of tx.
func NewPrevoutsContext(tx *Transaction) (PrevoutsContext, error) {
	var c PrevoutsContext
	if len(tx.Inputs) > config.MaxTxInputs {
		return c, fmt.Errorf("%w: %d inputs, max %d", ErrTableOverflow, len(tx.Inputs), config.MaxTxInputs)
	}
	for i, in := range tx.Inputs {
		c.Prevouts[i] = in.PrevOut
	}
	c.Count = uint32(len(tx.Inputs))
	return c, nil
}

// Hash returns the hash of the used slots, comparable with
// SHPreimage.HashPrevouts.
func (c *PrevoutsContext) Hash() types.Hash {
	return HashPrevouts(c.Prevouts[:c.used()])
}

// Canonical reports whether Count is in range and every unused slot is zero.
func (c *PrevoutsContext) Canonical() bool {
	if c.Count > config.MaxTxInputs {
		return false
	}
	for i := c.Count; i < config.MaxTxInputs; i++ {
		if !c.Prevouts[i].IsZero() {
			return false
		}
	}
	return true
}

func (c *PrevoutsContext) used() int {
	return min(int(c.Count), config.MaxTxInputs)
}

// SpentScriptsContext is the fixed-capacity table of scripts locking the
// outputs a transaction spends, in input order.
type SpentScriptsContext struct {
	Scripts [config.MaxTxInputs]types.Script `json:"scripts"`
	Count   uint32                           `json:"count"`
}

// NewSpentScriptsContext builds the spent-scripts table from the outputs
// a transaction consumes.
func NewSpentScriptsContext(spent []Output) (SpentScriptsContext, error) {
	var c SpentScriptsContext
	if len(spent) > config.MaxTxInputs {
		return c, fmt.Errorf("%w: %d spent outputs, max %d", ErrTableOverflow, len(spent), config.MaxTxInputs)
	}
	for i, out := range spent {
		c.Scripts[i] = out.Script
	}
	c.Count = uint32(len(spent))
	return c, nil
}

// Hash returns the hash of the used slots, comparable with
// SHPreimage.HashSpentScripts.
func (c *SpentScriptsContext) Hash() types.Hash {
	return HashSpentScripts(c.Scripts[:c.used()])
}

// Canonical reports whether Count is in range and every unused slot is zero.
func (c *SpentScriptsContext) Canonical() bool {
	if c.Count > config.MaxTxInputs {
		return false
	}
	for i := c.Count; i < config.MaxTxInputs; i++ {
		if !c.Scripts[i].IsZero() {
			return false
		}
	}
	return true
}

func (c *SpentScriptsContext) used() int {
	return min(int(c.Count), config.MaxTxInputs)
}

// BuildContext builds the preimage and both context tables for one input.
// It is what a spender runs to assemble the data a covenant verifies.
func BuildContext(tx *Transaction, spent []Output, inputIndex uint32) (*SHPreimage, PrevoutsContext, SpentScriptsContext, error) {
	pre, err := BuildPreimage(tx, spent, inputIndex)
	if err != nil {
		return nil, PrevoutsContext{}, SpentScriptsContext{}, err
	}
	prevouts, err := NewPrevoutsContext(tx)
	if err != nil {
		return nil, PrevoutsContext{}, SpentScriptsContext{}, err
	}
	scripts, err := NewSpentScriptsContext(spent)
	if err != nil {
		return nil, PrevoutsContext{}, SpentScriptsContext{}, err
	}
	return pre, prevouts, scripts, nil
}
