package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Klingon-tech/klingnet-covenant/internal/backtrace"
	"github.com/Klingon-tech/klingnet-covenant/internal/covenant"
	"github.com/Klingon-tech/klingnet-covenant/internal/lineage"
	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// Bundle is everything needed to evaluate one token input offline: the
// spending transaction with the outputs it consumes, which play the role
// of the engine, plus the spender's unlocking data.
//
// Preimage and the two context tables are optional; when absent they are
// rebuilt from Tx and Spent.
type Bundle struct {
	Contract   covenant.Contract `json:"contract"`
	Tx         *tx.Transaction   `json:"tx"`
	Spent      []tx.Output       `json:"spent"`
	InputIndex uint32            `json:"input_index"`

	Args      json.RawMessage    `json:"args"`
	PreState  types.TokenState   `json:"pre_state"`
	PrevTx    *tx.Transaction    `json:"prev_tx"`
	Backtrace *backtrace.Info    `json:"backtrace"`
	Guard     covenant.GuardInfo `json:"guard"`

	Preimage     *tx.SHPreimage          `json:"preimage,omitempty"`
	Prevouts     *tx.PrevoutsContext     `json:"prevouts,omitempty"`
	SpentScripts *tx.SpentScriptsContext `json:"spent_scripts,omitempty"`
}

// newBundle captures a lineage spend.
func newBundle(contract covenant.Contract, tr *lineage.Transfer, spend *covenant.Spend, inputIndex uint32) (*Bundle, error) {
	args, err := covenant.MarshalUnlockArgs(spend.Args)
	if err != nil {
		return nil, err
	}
	info, ok := spend.Backtrace.(*backtrace.Info)
	if !ok {
		return nil, fmt.Errorf("unexpected backtrace %T", spend.Backtrace)
	}
	return &Bundle{
		Contract:   contract,
		Tx:         tr.Tx,
		Spent:      tr.Spent,
		InputIndex: inputIndex,
		Args:       args,
		PreState:   spend.PreState,
		PrevTx:     spend.PrevTx,
		Backtrace:  info,
		Guard:      spend.Guard,
	}, nil
}

// Spend assembles the covenant spend and the engine's checker.
func (b *Bundle) Spend() (*covenant.Spend, covenant.DigestChecker, error) {
	if b.Tx == nil {
		return nil, covenant.DigestChecker{}, fmt.Errorf("bundle has no transaction")
	}
	checker, err := covenant.EngineFor(b.Tx, b.Spent, b.InputIndex)
	if err != nil {
		return nil, covenant.DigestChecker{}, fmt.Errorf("engine: %w", err)
	}

	pre, prevouts, scripts, err := tx.BuildContext(b.Tx, b.Spent, b.InputIndex)
	if err != nil {
		return nil, covenant.DigestChecker{}, fmt.Errorf("context: %w", err)
	}
	if b.Preimage != nil {
		pre = b.Preimage
	}
	if b.Prevouts != nil {
		prevouts = *b.Prevouts
	}
	if b.SpentScripts != nil {
		scripts = *b.SpentScripts
	}

	args, err := covenant.UnmarshalUnlockArgs(b.Args)
	if err != nil {
		return nil, covenant.DigestChecker{}, fmt.Errorf("args: %w", err)
	}

	spend := &covenant.Spend{
		Args:         args,
		PreState:     b.PreState,
		PrevTx:       b.PrevTx,
		Guard:        b.Guard,
		Preimage:     pre,
		Prevouts:     prevouts,
		SpentScripts: scripts,
	}
	// Keep a missing proof a nil interface rather than a typed nil.
	if b.Backtrace != nil {
		spend.Backtrace = b.Backtrace
	}
	return spend, checker, nil
}

func readBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse bundle %s: %w", path, err)
	}
	return &b, nil
}

func writeBundle(path string, b *Bundle) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
