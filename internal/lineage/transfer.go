package lineage

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/config"
	"github.com/Klingon-tech/klingnet-covenant/internal/backtrace"
	"github.com/Klingon-tech/klingnet-covenant/internal/covenant"
	"github.com/Klingon-tech/klingnet-covenant/internal/guard"
	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
	"github.com/rs/zerolog"
)

// TransferPlan describes a transfer. Inputs are laid out as the token
// inputs, then Extra, then the guard.
type TransferPlan struct {
	Inputs  []TokenCoin
	Extra   []Coin
	Outputs []types.TokenState
	Burned  uint64

	// GuardAmounts replaces the amounts the guard records per input. When
	// set, conservation is not checked.
	GuardAmounts *[config.MaxTxInputs]uint64
	// GuardTokenScript replaces the token script the guard governs.
	GuardTokenScript types.Script
}

// Transfer is a built transfer transaction.
type Transfer struct {
	Tx *tx.Transaction
	// Spent holds the outputs consumed by Tx, in input order.
	Spent   []tx.Output
	Inputs  []TokenCoin
	Outputs []TokenCoin
	Guard   covenant.GuardInfo

	scenario *Scenario
}

// Transfer funds a guard output committing the plan's guard state and
// builds the transfer spending it.
func (s *Scenario) Transfer(plan TransferPlan) (*Transfer, error) {
	nIn := len(plan.Inputs) + len(plan.Extra) + 1
	if len(plan.Inputs) == 0 || nIn > config.MaxTxInputs {
		return nil, fmt.Errorf("transfer: %d inputs, max %d", nIn, config.MaxTxInputs)
	}
	if len(plan.Outputs) > config.MaxStateHashes {
		return nil, fmt.Errorf("transfer: %d token outputs, max %d", len(plan.Outputs), config.MaxStateHashes)
	}

	state, err := s.guardState(plan)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	guardTx, guardCoin, err := s.fundGuard(&state)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}

	b := tx.NewBuilder()
	spent := make([]tx.Output, 0, nIn)
	for _, in := range plan.Inputs {
		b.AddInput(in.Outpoint)
		spent = append(spent, in.Output)
	}
	for _, in := range plan.Extra {
		b.AddInput(in.Outpoint)
		spent = append(spent, in.Output)
	}
	b.AddInput(guardCoin.Outpoint)
	spent = append(spent, guardCoin.Output)

	coins, err := s.addTokenOutputs(b, plan.Outputs)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	t := b.Build()
	coins = s.finish(t, coins)

	if plan.GuardAmounts == nil && plan.GuardTokenScript.IsZero() {
		outs := make([]guard.OutputState, len(coins))
		for i, c := range coins {
			outs[i] = guard.OutputState{OutputIndex: c.Outpoint.Index, State: c.State}
		}
		if err := guard.ValidateTransfer(&state, t, outs, plan.Burned); err != nil {
			return nil, fmt.Errorf("transfer: %w", err)
		}
	}

	return &Transfer{
		Tx:      t,
		Spent:   spent,
		Inputs:  plan.Inputs,
		Outputs: coins,
		Guard: covenant.GuardInfo{
			Tx:          guardTx,
			InputIndex:  uint32(nIn - 1),
			OutputIndex: guardCoin.Outpoint.Index,
			State:       state,
		},
		scenario: s,
	}, nil
}

func (s *Scenario) guardState(plan TransferPlan) (types.GuardState, error) {
	script := s.TokenScript()
	if !plan.GuardTokenScript.IsZero() {
		script = plan.GuardTokenScript
	}
	if plan.GuardAmounts != nil {
		return types.GuardState{TokenScript: script, InputAmounts: *plan.GuardAmounts}, nil
	}
	inputs := make([]guard.TokenInput, len(plan.Inputs))
	for i, in := range plan.Inputs {
		inputs[i] = guard.TokenInput{InputIndex: uint32(i), Amount: in.State.Amount}
	}
	return guard.BuildState(script, inputs)
}

// fundGuard creates a guard output whose transaction commits state.
func (s *Scenario) fundGuard(state *types.GuardState) (*tx.Transaction, Coin, error) {
	funding := s.Fund(s.Contract.GuardScript, CarrierValue)
	b := tx.NewBuilder().
		AddInput(funding.Outpoint).
		AddOutput(CarrierValue, s.Contract.GuardScript)
	if err := b.SetStateOutput([]types.Hash{covenant.GuardStateHash(state)}); err != nil {
		return nil, Coin{}, err
	}
	t := b.Build()
	id := s.add(t)
	idx := uint32(config.StateOutputIndex + 1)
	return t, Coin{Outpoint: types.Outpoint{TxID: id, Index: idx}, Output: t.Outputs[idx]}, nil
}

// Spend assembles the bundle for the token input at inputIndex, together
// with the checker the evaluating engine would use for it.
func (t *Transfer) Spend(inputIndex uint32, args covenant.UnlockArgs) (*covenant.Spend, covenant.DigestChecker, error) {
	if int(inputIndex) >= len(t.Inputs) {
		return nil, covenant.DigestChecker{}, fmt.Errorf("input %d is not a token input", inputIndex)
	}
	coin := t.Inputs[inputIndex]
	s := t.scenario

	prevTx, err := s.GetTransaction(coin.Outpoint.TxID)
	if err != nil {
		return nil, covenant.DigestChecker{}, err
	}
	info, err := backtrace.NewProver(s, zerolog.Nop()).Prove(coin.Outpoint, s.Contract.MinterScript, s.TokenScript())
	if err != nil {
		return nil, covenant.DigestChecker{}, err
	}
	pre, prevouts, scripts, err := tx.BuildContext(t.Tx, t.Spent, inputIndex)
	if err != nil {
		return nil, covenant.DigestChecker{}, err
	}
	checker, err := covenant.EngineFor(t.Tx, t.Spent, inputIndex)
	if err != nil {
		return nil, covenant.DigestChecker{}, err
	}

	return &covenant.Spend{
		Args:         args,
		PreState:     coin.State,
		PrevTx:       prevTx,
		Backtrace:    info,
		Guard:        t.Guard,
		Preimage:     pre,
		Prevouts:     prevouts,
		SpentScripts: scripts,
	}, checker, nil
}

// SignUser signs input inputIndex with key and returns the user unlock
// arguments carrying the signature.
func (t *Transfer) SignUser(inputIndex uint32, key *crypto.PrivateKey) (covenant.UserSpend, error) {
	digest, err := t.Tx.SighashDigest(t.Spent, inputIndex)
	if err != nil {
		return covenant.UserSpend{}, err
	}
	sig, err := key.Sign(digest[:])
	if err != nil {
		return covenant.UserSpend{}, err
	}
	return covenant.NewUserSpend(key.PublicKey(), sig)
}
