package types

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ScriptType identifies the type of locking script.
type ScriptType uint8

const (
	ScriptTypeP2PKH  ScriptType = 0x01 // Pay to public key hash
	ScriptTypeP2SH   ScriptType = 0x02 // Pay to script hash
	ScriptTypeMinter ScriptType = 0x10 // Token issuance authority
	ScriptTypeBurn   ScriptType = 0x11 // Token burn (unspendable)
	ScriptTypeToken  ScriptType = 0x12 // Token transfer covenant
	ScriptTypeGuard  ScriptType = 0x13 // Supply guard authority
	ScriptTypeState  ScriptType = 0x22 // State commitment carrier (unspendable)
)

// String returns a human-readable name for the script type.
func (st ScriptType) String() string {
	switch st {
	case ScriptTypeP2PKH:
		return "P2PKH"
	case ScriptTypeP2SH:
		return "P2SH"
	case ScriptTypeMinter:
		return "Minter"
	case ScriptTypeBurn:
		return "Burn"
	case ScriptTypeToken:
		return "Token"
	case ScriptTypeGuard:
		return "Guard"
	case ScriptTypeState:
		return "State"
	default:
		return "Unknown"
	}
}

// scriptHeaderSize is type(1) | data_len(4).
const scriptHeaderSize = 5

// Script defines the locking condition for an output. Its canonical
// byte form (Bytes) is the script identifier used everywhere a script
// is compared or hashed.
type Script struct {
	Type ScriptType `json:"type"`
	Data []byte     `json:"data"`
}

// Bytes returns the canonical encoding: type(1) | data_len LE u32 | data.
func (s Script) Bytes() []byte {
	buf := make([]byte, 0, scriptHeaderSize+len(s.Data))
	buf = append(buf, byte(s.Type))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.Data)))
	return append(buf, s.Data...)
}

// Equal reports whether two scripts have the same identifier.
func (s Script) Equal(other Script) bool {
	return s.Type == other.Type && bytes.Equal(s.Data, other.Data)
}

// IsZero returns true for the empty script (unused table slot).
func (s Script) IsZero() bool {
	return s.Type == 0 && len(s.Data) == 0
}

// Hex returns the hex encoding of the canonical script bytes.
func (s Script) Hex() string {
	return hex.EncodeToString(s.Bytes())
}

// ScriptFromBytes decodes a canonical script encoding produced by Bytes.
func ScriptFromBytes(b []byte) (Script, error) {
	if len(b) < scriptHeaderSize {
		return Script{}, fmt.Errorf("script too short: %d bytes", len(b))
	}
	n := binary.LittleEndian.Uint32(b[1:scriptHeaderSize])
	if uint64(n) != uint64(len(b)-scriptHeaderSize) {
		return Script{}, fmt.Errorf("script data length %d does not match %d remaining bytes", n, len(b)-scriptHeaderSize)
	}
	s := Script{Type: ScriptType(b[0])}
	if n > 0 {
		s.Data = make([]byte, n)
		copy(s.Data, b[scriptHeaderSize:])
	}
	return s, nil
}

// ParseScript decodes a hex string of canonical script bytes.
func ParseScript(s string) (Script, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Script{}, fmt.Errorf("invalid script hex: %w", err)
	}
	return ScriptFromBytes(b)
}

// scriptJSON is the JSON representation of a Script with hex-encoded data.
type scriptJSON struct {
	Type ScriptType `json:"type"`
	Data string     `json:"data"`
}

// MarshalJSON encodes the script with hex-encoded data.
func (s Script) MarshalJSON() ([]byte, error) {
	return json.Marshal(scriptJSON{
		Type: s.Type,
		Data: hex.EncodeToString(s.Data),
	})
}

// UnmarshalJSON decodes a script with hex-encoded data.
func (s *Script) UnmarshalJSON(data []byte) error {
	var j scriptJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	s.Type = j.Type
	s.Data = nil
	if j.Data != "" {
		b, err := hex.DecodeString(j.Data)
		if err != nil {
			return err
		}
		s.Data = b
	}
	return nil
}
