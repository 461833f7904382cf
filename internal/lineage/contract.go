package lineage

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/internal/covenant"
	"github.com/Klingon-tech/klingnet-covenant/internal/token"
	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

const guardScriptContext = "klingnet-covenant lineage guard"

// GuardScript returns a guard script identified by label.
func GuardScript(label string) types.Script {
	id := crypto.HashDerive(guardScriptContext, []byte(label))
	return types.Script{Type: types.ScriptTypeGuard, Data: id[:]}
}

// NewContract returns a contract whose minter script carries meta and
// whose guard is identified by guardLabel.
func NewContract(meta token.Metadata, guardLabel string) (covenant.Contract, error) {
	return covenant.NewContract(token.MinterScript(meta), GuardScript(guardLabel))
}

// Counterfeit creates token outputs with properly committed states that
// do not descend from the minter: the creating transaction spends a plain
// funded output locked by from.
func (s *Scenario) Counterfeit(from types.Script, states ...types.TokenState) ([]TokenCoin, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("counterfeit: no states")
	}
	funding := s.Fund(from, uint64(len(states))*CarrierValue)
	b := tx.NewBuilder().AddInput(funding.Outpoint)
	coins, err := s.addTokenOutputs(b, states)
	if err != nil {
		return nil, fmt.Errorf("counterfeit: %w", err)
	}
	return s.finish(b.Build(), coins), nil
}
