package covenant

import (
	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// SigChecker is the evaluating engine's signature primitive. It reports
// whether signature is valid under pubKey for the signing digest the
// engine itself computed for the input under validation.
type SigChecker interface {
	CheckSig(signature, pubKey []byte) bool
}

// DigestChecker checks Schnorr signatures against a fixed digest.
type DigestChecker struct {
	Digest types.Hash
}

// CheckSig implements SigChecker.
func (d DigestChecker) CheckSig(signature, pubKey []byte) bool {
	return crypto.VerifySignature(d.Digest[:], signature, pubKey)
}

// EngineFor returns the checker an engine would use for input inputIndex
// of transaction, given the outputs its inputs spend.
func EngineFor(transaction *tx.Transaction, spent []tx.Output, inputIndex uint32) (DigestChecker, error) {
	digest, err := transaction.SighashDigest(spent, inputIndex)
	if err != nil {
		return DigestChecker{}, err
	}
	return DigestChecker{Digest: digest}, nil
}
