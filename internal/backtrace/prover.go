package backtrace

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
	"github.com/rs/zerolog"
)

// MaxTraceDepth bounds how many transfers Trace walks back.
const MaxTraceDepth = 4096

// ErrNoLineage is returned when no input of the creating transaction
// spent the minter or the token script.
var ErrNoLineage = errors.New("no token lineage")

// TxSource looks up transactions by id.
type TxSource interface {
	GetTransaction(txid types.Hash) (*tx.Transaction, error)
}

// Prover assembles backtrace proofs from a transaction source.
type Prover struct {
	src    TxSource
	logger zerolog.Logger
}

// NewProver creates a prover reading from src.
func NewProver(src TxSource, logger zerolog.Logger) *Prover {
	return &Prover{src: src, logger: logger}
}

// Prove builds the proof for spending prevout under token script self.
// It picks the first input of the creating transaction that spent either
// the minter or self.
func (p *Prover) Prove(prevout types.Outpoint, minter, self types.Script) (*Info, error) {
	prevTx, err := p.src.GetTransaction(prevout.TxID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", prevout.TxID, err)
	}

	for i, in := range prevTx.Inputs {
		ancestor, err := p.src.GetTransaction(in.PrevOut.TxID)
		if err != nil {
			p.logger.Debug().Err(err).Int("input", i).Msg("Ancestor not archived")
			continue
		}
		info := &Info{PrevTx: prevTx, PrevTxInput: uint32(i), PrevPrevTx: ancestor}
		if !info.TerminatesAtIssuance(minter) && !info.TerminatesAtSameScript(self) {
			continue
		}
		if err := info.Verify(prevout, self); err != nil {
			return nil, err
		}
		p.logger.Debug().
			Str("prevout", prevout.String()).
			Uint32("via_input", info.PrevTxInput).
			Bool("issuance", info.TerminatesAtIssuance(minter)).
			Msg("Backtrace assembled")
		return info, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoLineage, prevout)
}

// Trace walks the lineage of prevout back to its issuance and returns the
// outpoints visited, starting at prevout and ending with the minter
// output that was spent to issue it.
func (p *Prover) Trace(prevout types.Outpoint, minter, self types.Script) ([]types.Outpoint, error) {
	path := []types.Outpoint{prevout}
	cur := prevout
	for depth := 0; depth < MaxTraceDepth; depth++ {
		info, err := p.Prove(cur, minter, self)
		if err != nil {
			return path, err
		}
		origin, _ := info.origin()
		path = append(path, origin)
		if info.TerminatesAtIssuance(minter) {
			return path, nil
		}
		cur = origin
	}
	return path, fmt.Errorf("lineage deeper than %d transfers", MaxTraceDepth)
}
