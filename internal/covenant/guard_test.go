package covenant

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-covenant/config"
	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

var testGuardScript = types.Script{Type: types.ScriptTypeGuard, Data: []byte{0x99}}

type guardCase struct {
	info       GuardInfo
	preState   types.TokenState
	inputIndex uint32
	prevouts   tx.PrevoutsContext
	scripts    tx.SpentScriptsContext
}

// newGuardCase links a token input at 0 holding 100 with a guard spent
// at input 1.
func newGuardCase(t *testing.T) *guardCase {
	t.Helper()
	c := &guardCase{
		info: GuardInfo{
			InputIndex:  1,
			OutputIndex: 1,
			State:       types.GuardState{TokenScript: scriptN(1), InputAmounts: [6]uint64{100}},
		},
		preState: types.TokenState{Owner: types.Address{1}, Amount: 100},
	}
	c.recommit(t)
	c.prevouts.Count, c.scripts.Count = 2, 2
	c.prevouts.Prevouts[0] = types.Outpoint{TxID: types.Hash{0x10}, Index: 1}
	c.prevouts.Prevouts[1] = c.info.Outpoint()
	c.scripts.Scripts[0] = scriptN(1)
	c.scripts.Scripts[1] = testGuardScript
	return c
}

// recommit rebuilds the guard transaction so it commits the current state.
func (c *guardCase) recommit(t *testing.T) {
	t.Helper()
	c.info.Tx = committingTx(t, testGuardScript, GuardStateHash(&c.info.State))
	c.prevouts.Prevouts[1] = c.info.Outpoint()
}

func (c *guardCase) verify() error {
	return VerifyGuard(&c.info, scriptN(1), c.preState, c.inputIndex, &c.prevouts, &c.scripts, testGuardScript)
}

func TestVerifyGuard_Valid(t *testing.T) {
	if err := newGuardCase(t).verify(); err != nil {
		t.Fatalf("valid linkage rejected: %v", err)
	}
}

func TestVerifyGuard_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, c *guardCase)
	}{
		{"other token script", func(t *testing.T, c *guardCase) {
			c.info.State.TokenScript = scriptN(3)
			c.recommit(t)
		}},
		{"state not committed", func(_ *testing.T, c *guardCase) {
			c.info.State.InputAmounts[0] = 70
			c.preState.Amount = 70
		}},
		{"output is the state slot", func(_ *testing.T, c *guardCase) {
			c.info.OutputIndex = 0
		}},
		{"amount mismatch", func(_ *testing.T, c *guardCase) {
			c.preState.Amount = 50
		}},
		{"amount at other slot", func(t *testing.T, c *guardCase) {
			c.info.State.InputAmounts = [6]uint64{0, 0, 100}
			c.recommit(t)
		}},
		{"input index out of range", func(_ *testing.T, c *guardCase) {
			c.inputIndex = 6
		}},
		{"input index far out of range", func(_ *testing.T, c *guardCase) {
			c.inputIndex = 1 << 31
		}},
		{"guard input past table under inflated count", func(_ *testing.T, c *guardCase) {
			c.prevouts.Count, c.scripts.Count = 1<<20, 1<<20
			c.info.InputIndex = uint32(len(c.prevouts.Prevouts))
		}},
		{"guard input past count", func(_ *testing.T, c *guardCase) {
			c.info.InputIndex = 2
		}},
		{"guard input index overflow", func(_ *testing.T, c *guardCase) {
			c.info.InputIndex = 1 << 31
		}},
		{"guard not spent", func(_ *testing.T, c *guardCase) {
			c.prevouts.Prevouts[1] = types.Outpoint{TxID: types.Hash{0x20}, Index: 1}
		}},
		{"guard at other input", func(_ *testing.T, c *guardCase) {
			c.info.InputIndex = 0
		}},
		{"untrusted guard script", func(_ *testing.T, c *guardCase) {
			c.scripts.Scripts[1] = scriptN(5)
		}},
		{"missing guard tx", func(_ *testing.T, c *guardCase) {
			c.info.Tx = nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newGuardCase(t)
			tt.mutate(t, c)
			err := c.verify()
			if !errors.Is(err, ErrGuardLinkageInvalid) {
				t.Errorf("err = %v, want ErrGuardLinkageInvalid", err)
			}
			if errors.Is(err, ErrZeroAmount) {
				t.Errorf("err = %v, did not expect ErrZeroAmount", err)
			}
		})
	}
}

func TestInputTables_ShareCapacity(t *testing.T) {
	var (
		g types.GuardState
		p tx.PrevoutsContext
		s tx.SpentScriptsContext
	)
	for name, n := range map[string]int{
		"guard input amounts": len(g.InputAmounts),
		"prevouts":            len(p.Prevouts),
		"spent scripts":       len(s.Scripts),
		"MaxInputSlots":       types.MaxInputSlots,
	} {
		if n != config.MaxTxInputs {
			t.Errorf("%s holds %d slots, want %d", name, n, config.MaxTxInputs)
		}
	}
}

func TestVerifyGuard_ZeroAmount(t *testing.T) {
	c := newGuardCase(t)
	c.info.State.InputAmounts[0] = 0
	c.preState.Amount = 0
	c.recommit(t)

	err := c.verify()
	if !errors.Is(err, ErrGuardLinkageInvalid) || !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("err = %v, want GuardLinkageInvalid with ZeroAmount", err)
	}
	if Reason(err) != "ZeroAmount" {
		t.Errorf("Reason = %q", Reason(err))
	}
}

func TestVerifyGuard_ScopeCheckedFirst(t *testing.T) {
	c := newGuardCase(t)
	c.info.State = types.GuardState{TokenScript: scriptN(3)}
	c.preState.Amount = 0
	c.recommit(t)

	err := c.verify()
	if !errors.Is(err, ErrGuardLinkageInvalid) {
		t.Fatalf("err = %v, want ErrGuardLinkageInvalid", err)
	}
	if errors.Is(err, ErrZeroAmount) {
		t.Error("token script check must precede the amount check")
	}
}

func TestVerifyGuard_Nil(t *testing.T) {
	c := newGuardCase(t)
	err := VerifyGuard(nil, scriptN(1), c.preState, 0, &c.prevouts, &c.scripts, testGuardScript)
	if !errors.Is(err, ErrGuardLinkageInvalid) {
		t.Errorf("err = %v, want ErrGuardLinkageInvalid", err)
	}
}
