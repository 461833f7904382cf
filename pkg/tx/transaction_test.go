package tx

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/Klingon-tech/klingnet-covenant/config"
	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

func testP2PKHScript(addr types.Address) types.Script {
	return types.Script{Type: types.ScriptTypeP2PKH, Data: addr[:]}
}

func TestTransaction_Hash_Deterministic(t *testing.T) {
	tx := &Transaction{
		Version: 1,
		Inputs:  []Input{{PrevOut: types.Outpoint{TxID: types.Hash{0x01}, Index: 0}}},
		Outputs: []Output{{Value: 1000, Script: types.Script{Type: types.ScriptTypeP2PKH}}},
	}

	h1 := tx.Hash()
	h2 := tx.Hash()
	if h1 != h2 {
		t.Error("Hash() should be deterministic")
	}
	if h1.IsZero() {
		t.Error("Hash() should not be zero")
	}
}

func TestTransaction_Hash_ChangesWithContent(t *testing.T) {
	base := func() *Transaction {
		return &Transaction{
			Version: 1,
			Inputs:  []Input{{PrevOut: types.Outpoint{TxID: types.Hash{0x01}, Index: 0}}},
			Outputs: []Output{{Value: 1000, Script: types.Script{Type: types.ScriptTypeToken, Data: []byte{0x01}}}},
		}
	}
	want := base().Hash()

	tests := []struct {
		name   string
		mutate func(*Transaction)
	}{
		{"value", func(tx *Transaction) { tx.Outputs[0].Value = 2000 }},
		{"script type", func(tx *Transaction) { tx.Outputs[0].Script.Type = types.ScriptTypeGuard }},
		{"script data", func(tx *Transaction) { tx.Outputs[0].Script.Data[0] = 0x02 }},
		{"prevout index", func(tx *Transaction) { tx.Inputs[0].PrevOut.Index = 1 }},
		{"locktime", func(tx *Transaction) { tx.LockTime = 7 }},
		{"version", func(tx *Transaction) { tx.Version = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := base()
			tt.mutate(tx)
			if tx.Hash() == want {
				t.Error("mutated transaction should have a different hash")
			}
		})
	}
}

func TestTransaction_Hash_IgnoresSignature(t *testing.T) {
	tx := &Transaction{
		Version: 1,
		Inputs:  []Input{{PrevOut: types.Outpoint{TxID: types.Hash{0x01}, Index: 0}}},
		Outputs: []Output{{Value: 1000, Script: types.Script{Type: types.ScriptTypeP2PKH}}},
	}

	h1 := tx.Hash()

	tx.Inputs[0].Signature = []byte("some signature")
	tx.Inputs[0].PubKey = []byte("some key")

	if h1 != tx.Hash() {
		t.Error("Hash() should not change when signatures are added")
	}
}

func TestTransaction_OutpointAt(t *testing.T) {
	tx := &Transaction{
		Version: 1,
		Inputs:  []Input{{PrevOut: types.Outpoint{TxID: types.Hash{0x01}}}},
		Outputs: []Output{{Value: 1, Script: types.Script{Type: types.ScriptTypeP2PKH}}},
	}
	op := tx.OutpointAt(3)
	if op.TxID != tx.Hash() || op.Index != 3 {
		t.Errorf("OutpointAt(3) = %s", op)
	}
}

func TestTransaction_TotalOutputValue(t *testing.T) {
	tx := &Transaction{
		Outputs: []Output{
			{Value: 1000},
			{Value: 2000},
			{Value: 3000},
		},
	}
	got, err := tx.TotalOutputValue()
	if err != nil {
		t.Fatalf("TotalOutputValue() error: %v", err)
	}
	if got != 6000 {
		t.Errorf("TotalOutputValue() = %d, want 6000", got)
	}
}

func TestTransaction_TotalOutputValue_Overflow(t *testing.T) {
	tx := &Transaction{
		Outputs: []Output{
			{Value: math.MaxUint64},
			{Value: 1},
		},
	}
	if _, err := tx.TotalOutputValue(); err == nil {
		t.Error("TotalOutputValue() should return error on overflow")
	}
}

func TestTransaction_JSONRoundTrip(t *testing.T) {
	key, _ := crypto.GenerateKey()
	addr := crypto.AddressFromPubKey(key.PublicKey())
	spent := []Output{{Value: 5000, Script: testP2PKHScript(addr)}}

	b := NewBuilder().
		AddInput(types.Outpoint{TxID: crypto.Hash([]byte("prev")), Index: 2}).
		AddOutput(4000, types.Script{Type: types.ScriptTypeToken, Data: []byte("token")})
	if err := b.SetStateOutput([]types.Hash{{0xaa}}); err != nil {
		t.Fatal(err)
	}
	if err := b.SignInput(0, key, spent); err != nil {
		t.Fatal(err)
	}
	orig := b.Build()

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Transaction
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Hash() != orig.Hash() {
		t.Error("txid changed across JSON round trip")
	}
	if err := got.VerifySpends(spent); err != nil {
		t.Errorf("signature lost across JSON round trip: %v", err)
	}
}

func TestBuilder_SetStateOutput(t *testing.T) {
	b := NewBuilder().
		AddInput(types.Outpoint{TxID: types.Hash{0x01}}).
		AddOutput(100, types.Script{Type: types.ScriptTypeToken, Data: []byte{1}}).
		AddOutput(200, types.Script{Type: types.ScriptTypeToken, Data: []byte{2}})

	if err := b.SetStateOutput([]types.Hash{{0x01}, {0x02}}); err != nil {
		t.Fatalf("SetStateOutput: %v", err)
	}
	tx := b.Build()
	if len(tx.Outputs) != 3 {
		t.Fatalf("output count = %d, want 3", len(tx.Outputs))
	}
	if tx.Outputs[config.StateOutputIndex].Script.Type != types.ScriptTypeState {
		t.Fatal("state output not in reserved slot")
	}
	if tx.Outputs[1].Value != 100 || tx.Outputs[2].Value != 200 {
		t.Error("existing outputs should shift behind the state output")
	}

	// Setting again replaces rather than inserts.
	if err := b.SetStateOutput([]types.Hash{{0x03}, {0x04}}); err != nil {
		t.Fatal(err)
	}
	if len(b.Build().Outputs) != 3 {
		t.Errorf("second SetStateOutput should replace, got %d outputs", len(b.Build().Outputs))
	}
	h, err := b.Build().StateHashAt(2)
	if err != nil || h != (types.Hash{0x04}) {
		t.Errorf("StateHashAt(2) = %s, %v", h, err)
	}
}

func TestBuilder_SetStateOutput_TooMany(t *testing.T) {
	b := NewBuilder()
	if err := b.SetStateOutput(make([]types.Hash, config.MaxStateHashes+1)); err == nil {
		t.Error("expected error for too many state hashes")
	}
}

func TestBuilder_SignMulti(t *testing.T) {
	key1, _ := crypto.GenerateKey()
	key2, _ := crypto.GenerateKey()
	addr1 := crypto.AddressFromPubKey(key1.PublicKey())
	addr2 := crypto.AddressFromPubKey(key2.PublicKey())

	spent := []Output{
		{Value: 3000, Script: testP2PKHScript(addr1)},
		{Value: 1, Script: types.Script{Type: types.ScriptTypeToken, Data: []byte("tok")}},
		{Value: 2000, Script: testP2PKHScript(addr2)},
	}
	b := NewBuilder().
		AddInput(types.Outpoint{TxID: crypto.Hash([]byte("tx1")), Index: 0}).
		AddInput(types.Outpoint{TxID: crypto.Hash([]byte("tx2")), Index: 1}).
		AddInput(types.Outpoint{TxID: crypto.Hash([]byte("tx3")), Index: 0}).
		AddOutput(4000, testP2PKHScript(types.Address{0x99}))

	signers := map[types.Address]*crypto.PrivateKey{addr1: key1, addr2: key2}
	if err := b.SignMulti(signers, spent); err != nil {
		t.Fatalf("SignMulti() error: %v", err)
	}

	tx := b.Build()
	if err := tx.VerifySpends(spent); err != nil {
		t.Errorf("VerifySpends() error: %v", err)
	}
	if tx.Inputs[1].Signature != nil {
		t.Error("covenant input should not be signed")
	}
	if string(tx.Inputs[0].Signature) == string(tx.Inputs[2].Signature) {
		t.Error("per-input digests should differ")
	}
}

func TestBuilder_SignMulti_MissingSigner(t *testing.T) {
	spent := []Output{{Value: 1000, Script: testP2PKHScript(types.Address{0xAA})}}
	b := NewBuilder().
		AddInput(types.Outpoint{TxID: types.Hash{0x01}}).
		AddOutput(1000, testP2PKHScript(types.Address{}))

	if err := b.SignMulti(map[types.Address]*crypto.PrivateKey{}, spent); err == nil {
		t.Fatal("expected error for missing signer")
	}
}
