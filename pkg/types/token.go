package types

// MaxInputSlots is the fixed capacity of every per-input table
// (previous outputs, spent scripts, guard input amounts).
const MaxInputSlots = 6

// TokenState is the owner and amount committed for one token output.
// It is never trusted directly: a validator only accepts it after
// recomputing its hash and finding it in the creating transaction's
// state output.
type TokenState struct {
	Owner  Address `json:"owner"`
	Amount uint64  `json:"amount"`
}

// GuardState is the conservation bookkeeping a supply guard commits for
// one transaction: which token kind it governs and how much each input
// position contributes.
type GuardState struct {
	TokenScript  Script                `json:"token_script"`
	InputAmounts [MaxInputSlots]uint64 `json:"input_amounts"`
}

// TotalInput returns the sum of all per-input amounts and false on overflow.
func (g *GuardState) TotalInput() (uint64, bool) {
	var total uint64
	for _, a := range g.InputAmounts {
		if total+a < total {
			return 0, false
		}
		total += a
	}
	return total, true
}
