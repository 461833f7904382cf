// Package lineage builds token histories: funding, issuance, guard and
// transfer transactions with correct state outputs, and the spend
// bundles a covenant validator needs for each token input.
//
// A Scenario keeps every transaction it creates, so it doubles as the
// transaction source for backtrace proofs. It is not safe for concurrent
// use.
package lineage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/config"
	"github.com/Klingon-tech/klingnet-covenant/internal/covenant"
	"github.com/Klingon-tech/klingnet-covenant/internal/txstore"
	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// CarrierValue is the native value placed on every token and guard output.
const CarrierValue = 1000

const fundContext = "klingnet-covenant lineage funding"

// ErrUnknownTx is returned by GetTransaction for transactions the
// scenario never created.
var ErrUnknownTx = errors.New("transaction not in scenario")

// Coin is a spendable output.
type Coin struct {
	Outpoint types.Outpoint
	Output   tx.Output
}

// TokenCoin is a token output together with the state committed for it.
type TokenCoin struct {
	Coin
	State types.TokenState
}

// Scenario is the history of one token contract.
type Scenario struct {
	Contract covenant.Contract

	txs    map[types.Hash]*tx.Transaction
	order  []types.Hash
	funded uint32
}

// New creates an empty history for contract.
func New(contract covenant.Contract) *Scenario {
	return &Scenario{
		Contract: contract,
		txs:      make(map[types.Hash]*tx.Transaction),
	}
}

// TokenScript returns the contract's token script.
func (s *Scenario) TokenScript() types.Script {
	return s.Contract.TokenScript()
}

// GetTransaction implements backtrace.TxSource.
func (s *Scenario) GetTransaction(txid types.Hash) (*tx.Transaction, error) {
	t, ok := s.txs[txid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTx, txid)
	}
	return t, nil
}

// Transactions returns every transaction in creation order.
func (s *Scenario) Transactions() []*tx.Transaction {
	out := make([]*tx.Transaction, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.txs[id])
	}
	return out
}

// Archive writes every transaction to store in one batch.
func (s *Scenario) Archive(store *txstore.Store) error {
	_, err := store.PutAll(s.Transactions())
	return err
}

// Fund creates an output of value locked by script, out of nothing.
func (s *Scenario) Fund(script types.Script, value uint64) Coin {
	s.funded++
	seed := crypto.HashDerive(fundContext, binary.LittleEndian.AppendUint32(nil, s.funded))
	t := tx.NewBuilder().
		AddInput(types.Outpoint{TxID: seed}).
		AddOutput(value, script).
		Build()
	id := s.add(t)
	return Coin{Outpoint: types.Outpoint{TxID: id, Index: 0}, Output: t.Outputs[0]}
}

// Issue spends a freshly funded minter output and creates one token
// output per recipient state, in order.
func (s *Scenario) Issue(recipients ...types.TokenState) ([]TokenCoin, error) {
	if len(recipients) == 0 || len(recipients) > config.MaxStateHashes {
		return nil, fmt.Errorf("issue: %d recipients, want 1..%d", len(recipients), config.MaxStateHashes)
	}
	minter := s.Fund(s.Contract.MinterScript, uint64(len(recipients))*CarrierValue)

	b := tx.NewBuilder().AddInput(minter.Outpoint)
	coins, err := s.addTokenOutputs(b, recipients)
	if err != nil {
		return nil, fmt.Errorf("issue: %w", err)
	}
	return s.finish(b.Build(), coins), nil
}

// addTokenOutputs appends a token output per state and the state output
// committing them.
func (s *Scenario) addTokenOutputs(b *tx.Builder, states []types.TokenState) ([]TokenCoin, error) {
	script := s.TokenScript()
	hashes := make([]types.Hash, len(states))
	coins := make([]TokenCoin, len(states))
	for i, st := range states {
		b.AddOutput(CarrierValue, script)
		hashes[i] = covenant.TokenStateHash(st)
		coins[i] = TokenCoin{State: st}
	}
	if err := b.SetStateOutput(hashes); err != nil {
		return nil, err
	}
	return coins, nil
}

// finish records t and fills in the outpoints of its token outputs, which
// follow the state output.
func (s *Scenario) finish(t *tx.Transaction, coins []TokenCoin) []TokenCoin {
	id := s.add(t)
	for i := range coins {
		idx := uint32(config.StateOutputIndex + 1 + i)
		coins[i].Outpoint = types.Outpoint{TxID: id, Index: idx}
		coins[i].Output = t.Outputs[idx]
	}
	return coins
}

func (s *Scenario) add(t *tx.Transaction) types.Hash {
	id := t.Hash()
	if _, ok := s.txs[id]; !ok {
		s.order = append(s.order, id)
	}
	s.txs[id] = t
	return id
}
