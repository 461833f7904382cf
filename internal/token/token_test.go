package token

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-covenant/internal/covenant"
	"github.com/Klingon-tech/klingnet-covenant/internal/storage"
	"github.com/Klingon-tech/klingnet-covenant/internal/txstore"
	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

func testMeta() Metadata {
	return Metadata{Name: "Klingon Gold", Symbol: "KGLD", Decimals: 8, Creator: types.Address{0xc0, 0xde}}
}

func testContract(t *testing.T, meta Metadata) covenant.Contract {
	t.Helper()
	guard := types.Script{Type: types.ScriptTypeGuard, Data: []byte("guard")}
	c, err := covenant.NewContract(MinterScript(meta), guard)
	if err != nil {
		t.Fatalf("NewContract: %v", err)
	}
	return c
}

func TestMintData_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		meta Metadata
	}{
		{"full", testMeta()},
		{"empty strings", Metadata{Decimals: 0}},
		{"unicode", Metadata{Name: "Żeton", Symbol: "ŻT", Decimals: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMintData(EncodeMintData(tt.meta))
			if err != nil {
				t.Fatalf("DecodeMintData: %v", err)
			}
			if got != tt.meta {
				t.Errorf("got %+v, want %+v", got, tt.meta)
			}
		})
	}
}

func TestMintData_TruncatesLongFields(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	got, err := DecodeMintData(EncodeMintData(Metadata{Name: string(long)}))
	if err != nil {
		t.Fatalf("DecodeMintData: %v", err)
	}
	if len(got.Name) != maxField {
		t.Errorf("name length = %d, want %d", len(got.Name), maxField)
	}
}

func TestDecodeMintData_Malformed(t *testing.T) {
	valid := EncodeMintData(testMeta())
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", valid[:types.AddressSize]},
		{"truncated name", valid[:types.AddressSize+4]},
		{"missing symbol", valid[:types.AddressSize+2+len("Klingon Gold")]},
		{"trailing", append(append([]byte{}, valid...), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeMintData(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestID(t *testing.T) {
	a := testContract(t, testMeta())
	other := testMeta()
	other.Symbol = "KSLV"
	b := testContract(t, other)

	if ContractID(a) != ID(a.TokenScript()) {
		t.Error("ContractID differs from ID of the token script")
	}
	if ContractID(a) == ContractID(b) {
		t.Error("different minters produced the same token id")
	}
}

func TestExtractAndStoreMetadata(t *testing.T) {
	store := NewStore(storage.NewMemory())
	c := testContract(t, testMeta())

	stored, err := ExtractAndStoreMetadata(store, c)
	if err != nil || !stored {
		t.Fatalf("first extract: stored=%v err=%v", stored, err)
	}
	stored, err = ExtractAndStoreMetadata(store, c)
	if err != nil || stored {
		t.Fatalf("second extract: stored=%v err=%v", stored, err)
	}

	got, err := store.Get(ContractID(c))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got != testMeta() {
		t.Errorf("got %+v, want %+v", *got, testMeta())
	}
}

func TestExtractAndStoreMetadata_NotMinter(t *testing.T) {
	store := NewStore(storage.NewMemory())
	c := covenant.Contract{
		MinterScript: types.Script{Type: types.ScriptTypeP2SH, Data: []byte{1}},
		GuardScript:  types.Script{Type: types.ScriptTypeGuard, Data: []byte{2}},
	}
	if _, err := ExtractAndStoreMetadata(store, c); err == nil {
		t.Error("expected error for non-minter script")
	}
}

func TestStore_ListAndMissing(t *testing.T) {
	store := NewStore(storage.NewMemory())
	if _, err := store.Get(types.Hash{1}); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("err = %v, want ErrUnknownToken", err)
	}

	ids := []types.Hash{{3}, {1}, {2}}
	for i, id := range ids {
		meta := Metadata{Name: "t", Decimals: uint8(i)}
		if err := store.Put(id, &meta); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, e := range entries {
		if e.ID[0] != byte(i+1) {
			t.Errorf("entry %d id = %s, want sorted order", i, e.ID)
		}
	}
}

func TestStore_SharesDatabaseWithArchive(t *testing.T) {
	db := storage.NewMemory()
	archive := txstore.New(db)
	store := NewStore(db)

	t1 := tx.NewBuilder().
		AddInput(types.Outpoint{TxID: types.Hash{0x01}}).
		AddOutput(1, types.Script{Type: types.ScriptTypeP2SH, Data: []byte{0x01}}).
		Build()
	txid, err := archive.Put(t1)
	if err != nil {
		t.Fatalf("archive Put: %v", err)
	}
	// Same 32-byte key in both namespaces.
	meta := testMeta()
	if err := store.Put(txid, &meta); err != nil {
		t.Fatalf("token Put: %v", err)
	}

	if got, err := archive.GetTransaction(txid); err != nil || got.Hash() != txid {
		t.Errorf("archive lost its entry: %v", err)
	}
	if got, err := store.Get(txid); err != nil || *got != meta {
		t.Errorf("token index lost its entry: %v", err)
	}
	if n, _ := archive.Count(); n != 1 {
		t.Errorf("archive Count = %d, want 1", n)
	}
	if entries, _ := store.List(); len(entries) != 1 {
		t.Errorf("List = %d entries, want 1", len(entries))
	}
	for _, key := range [][]byte{append([]byte("x/"), txid[:]...), append([]byte("t/"), txid[:]...)} {
		if ok, _ := db.Has(key); !ok {
			t.Errorf("shared db missing %q", key[:2])
		}
	}
}
