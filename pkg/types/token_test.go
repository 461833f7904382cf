package types

import (
	"math"
	"testing"
)

func TestGuardState_TotalInput(t *testing.T) {
	g := GuardState{InputAmounts: [MaxInputSlots]uint64{100, 0, 50}}
	total, ok := g.TotalInput()
	if !ok {
		t.Fatal("unexpected overflow")
	}
	if total != 150 {
		t.Errorf("TotalInput() = %d, want 150", total)
	}
}

func TestGuardState_TotalInput_Overflow(t *testing.T) {
	g := GuardState{InputAmounts: [MaxInputSlots]uint64{math.MaxUint64, 1}}
	if _, ok := g.TotalInput(); ok {
		t.Error("expected overflow to be reported")
	}
}
