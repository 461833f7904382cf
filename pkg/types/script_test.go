package types

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestScriptType_String(t *testing.T) {
	tests := []struct {
		st   ScriptType
		want string
	}{
		{ScriptTypeP2PKH, "P2PKH"},
		{ScriptTypeP2SH, "P2SH"},
		{ScriptTypeMinter, "Minter"},
		{ScriptTypeBurn, "Burn"},
		{ScriptTypeToken, "Token"},
		{ScriptTypeGuard, "Guard"},
		{ScriptTypeState, "State"},
		{ScriptType(0xFF), "Unknown"},
		{ScriptType(0x00), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.st.String(); got != tt.want {
				t.Errorf("ScriptType(%#x).String() = %q, want %q", uint8(tt.st), got, tt.want)
			}
		})
	}
}

func TestScriptType_Values(t *testing.T) {
	// Protocol constants; changing any of them changes every script identifier.
	values := map[ScriptType]uint8{
		ScriptTypeP2PKH:  0x01,
		ScriptTypeP2SH:   0x02,
		ScriptTypeMinter: 0x10,
		ScriptTypeBurn:   0x11,
		ScriptTypeToken:  0x12,
		ScriptTypeGuard:  0x13,
		ScriptTypeState:  0x22,
	}
	for st, want := range values {
		if uint8(st) != want {
			t.Errorf("%s = %#x, want %#x", st, uint8(st), want)
		}
	}
}

func TestScript_Bytes(t *testing.T) {
	s := Script{Type: ScriptTypeToken, Data: []byte{0xaa, 0xbb}}
	got := s.Bytes()
	want := []byte{0x12, 0x02, 0x00, 0x00, 0x00, 0xaa, 0xbb}
	if !bytes.Equal(got, want) {
		t.Errorf("Bytes() = %x, want %x", got, want)
	}

	decoded, err := ScriptFromBytes(got)
	if err != nil {
		t.Fatalf("ScriptFromBytes: %v", err)
	}
	if !decoded.Equal(s) {
		t.Errorf("decoded = %+v, want %+v", decoded, s)
	}
}

func TestScript_Equal(t *testing.T) {
	a := Script{Type: ScriptTypeGuard, Data: []byte{1, 2, 3}}
	tests := []struct {
		name  string
		other Script
		want  bool
	}{
		{"same", Script{Type: ScriptTypeGuard, Data: []byte{1, 2, 3}}, true},
		{"different type", Script{Type: ScriptTypeToken, Data: []byte{1, 2, 3}}, false},
		{"different data", Script{Type: ScriptTypeGuard, Data: []byte{1, 2, 4}}, false},
		{"prefix data", Script{Type: ScriptTypeGuard, Data: []byte{1, 2}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Equal(tt.other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScriptFromBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"nil", nil},
		{"short header", []byte{0x01, 0x00}},
		{"length too large", []byte{0x01, 0x05, 0x00, 0x00, 0x00, 0xaa}},
		{"trailing bytes", []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0xaa}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ScriptFromBytes(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseScript_Hex(t *testing.T) {
	s := Script{Type: ScriptTypeMinter, Data: []byte("minter")}
	parsed, err := ParseScript(s.Hex())
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	if !parsed.Equal(s) {
		t.Errorf("parsed = %+v, want %+v", parsed, s)
	}

	if _, err := ParseScript("zz"); err == nil {
		t.Error("expected error for invalid hex")
	}
}

func TestScript_JSON(t *testing.T) {
	s := Script{Type: ScriptTypeP2PKH, Data: []byte{0xde, 0xad}}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":1,"data":"dead"}` {
		t.Errorf("JSON = %s", data)
	}
	var decoded Script
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if !decoded.Equal(s) {
		t.Errorf("decoded = %+v, want %+v", decoded, s)
	}
}
