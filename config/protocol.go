package config

import (
	"math"

	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// =============================================================================
// Protocol Rules (immutable)
// These MUST match across every validator or verdicts diverge.
// =============================================================================

// Transaction shape limits for token-protocol transactions. Every context
// table has exactly this many slots; indices taken from transaction data
// are checked against them before use.
const (
	MaxTxInputs   = types.MaxInputSlots // Max inputs per token transaction
	MaxTxOutputs  = 6                   // Max outputs per token transaction, state output included
	MaxScriptData = 65_536              // 64 KB max script data per output
)

// StateOutputIndex is the reserved output position whose script carries
// the state hashes of every other output of the transaction.
const StateOutputIndex = 0

// MaxStateHashes is the number of outputs a state output can commit to.
const MaxStateHashes = MaxTxOutputs - 1

// MaxTokenAmount is the maximum allowed amount for a single token output.
// Set to MaxUint64/1000 so that any number of inputs a transaction can
// hold can be summed without overflowing uint64.
const MaxTokenAmount = math.MaxUint64 / 1000
