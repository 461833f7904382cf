package tx

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// signedSpend builds a one-input P2PKH spend and its spent output.
func signedSpend(t *testing.T) (*Transaction, []Output, *crypto.PrivateKey) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	spent := []Output{{Value: 5000, Script: testP2PKHScript(crypto.AddressFromPubKey(key.PublicKey()))}}
	b := NewBuilder().
		AddInput(types.Outpoint{TxID: types.Hash{0x01}, Index: 0}).
		AddOutput(4000, testP2PKHScript(types.Address{0x02}))
	if err := b.SignInput(0, key, spent); err != nil {
		t.Fatalf("SignInput: %v", err)
	}
	return b.Build(), spent, key
}

func TestVerifySpends_Valid(t *testing.T) {
	tx, spent, _ := signedSpend(t)
	if err := tx.VerifySpends(spent); err != nil {
		t.Errorf("VerifySpends() error: %v", err)
	}
}

func TestVerifySpends_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(tx *Transaction, spent []Output) []Output
		wantErr error
	}{
		{"tampered output", func(tx *Transaction, spent []Output) []Output {
			tx.Outputs[0].Value = 4999
			return spent
		}, ErrInvalidSig},
		{"corrupted signature", func(tx *Transaction, spent []Output) []Output {
			tx.Inputs[0].Signature[0] ^= 0xff
			return spent
		}, ErrInvalidSig},
		{"spent amount changed", func(tx *Transaction, spent []Output) []Output {
			spent[0].Value = 6000
			return spent
		}, ErrInvalidSig},
		{"wrong pubkey", func(tx *Transaction, spent []Output) []Output {
			other, _ := crypto.GenerateKey()
			tx.Inputs[0].PubKey = other.PublicKey()
			return spent
		}, ErrScriptMismatch},
		{"missing pubkey", func(tx *Transaction, spent []Output) []Output {
			tx.Inputs[0].PubKey = nil
			return spent
		}, ErrMissingPubKey},
		{"value created", func(tx *Transaction, spent []Output) []Output {
			spent[0].Script = types.Script{Type: types.ScriptTypeToken, Data: []byte("t")}
			spent[0].Value = 10
			return spent
		}, ErrValueCreated},
		{"burn spent", func(tx *Transaction, spent []Output) []Output {
			spent[0].Script = types.Script{Type: types.ScriptTypeBurn}
			return spent
		}, ErrUnspendableOutput},
		{"spent count mismatch", func(tx *Transaction, spent []Output) []Output {
			return append(spent, spent[0])
		}, ErrSpentMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, spent, _ := signedSpend(t)
			spent = tt.mutate(tx, spent)
			if err := tx.VerifySpends(spent); !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifySpends() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
