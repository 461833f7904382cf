package covenant

import (
	"testing"

	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// sigStub is a SigChecker with a fixed answer.
type sigStub struct {
	ok    bool
	calls int
}

func (s *sigStub) CheckSig(_, _ []byte) bool {
	s.calls++
	return s.ok
}

func scriptN(n byte) types.Script {
	return types.Script{Type: types.ScriptTypeP2SH, Data: []byte{n}}
}

// spendingTx returns a transaction spending one output per script.
func spendingTx(t *testing.T, scripts ...types.Script) (*tx.Transaction, []tx.Output) {
	t.Helper()
	b := tx.NewBuilder()
	spent := make([]tx.Output, 0, len(scripts))
	for i, s := range scripts {
		b.AddInput(types.Outpoint{TxID: types.Hash{byte(i + 1), 0xee}, Index: uint32(i)})
		spent = append(spent, tx.Output{Value: 10, Script: s})
	}
	b.AddOutput(5, scriptN(0xff))
	return b.Build(), spent
}

// committingTx returns a transaction whose output 1 is locked by script
// and committed with hash.
func committingTx(t *testing.T, script types.Script, hash types.Hash) *tx.Transaction {
	t.Helper()
	b := tx.NewBuilder().
		AddInput(types.Outpoint{TxID: types.Hash{0xab}}).
		AddOutput(1, script)
	if err := b.SetStateOutput([]types.Hash{hash}); err != nil {
		t.Fatalf("SetStateOutput: %v", err)
	}
	return b.Build()
}
