package token

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/internal/covenant"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// maxField is the longest name or symbol a minter script can carry.
const maxField = 255

// EncodeMintData encodes the issuer and token metadata into the Data of
// a ScriptTypeMinter script.
//
// Layout:
//
//	[20 bytes: issuer address]
//	[1 byte:  decimals]
//	[1 byte:  nameLen]   [nameLen bytes: name (UTF-8)]
//	[1 byte:  symbolLen] [symbolLen bytes: symbol (UTF-8)]
func EncodeMintData(meta Metadata) []byte {
	name := truncate(meta.Name)
	symbol := truncate(meta.Symbol)

	buf := make([]byte, 0, types.AddressSize+3+len(name)+len(symbol))
	buf = append(buf, meta.Creator[:]...)
	buf = append(buf, meta.Decimals)
	buf = append(buf, byte(len(name)))
	buf = append(buf, name...)
	buf = append(buf, byte(len(symbol)))
	return append(buf, symbol...)
}

// DecodeMintData parses minter script data produced by EncodeMintData.
// Unlike issuance itself, metadata is advisory, so any malformed layout
// is an error rather than a partial result.
func DecodeMintData(data []byte) (Metadata, error) {
	var meta Metadata
	if len(data) < types.AddressSize+3 {
		return meta, fmt.Errorf("mint data too short: %d bytes", len(data))
	}
	copy(meta.Creator[:], data[:types.AddressSize])
	off := types.AddressSize

	meta.Decimals = data[off]
	off++

	name, off, err := readField(data, off)
	if err != nil {
		return meta, fmt.Errorf("name: %w", err)
	}
	symbol, off, err := readField(data, off)
	if err != nil {
		return meta, fmt.Errorf("symbol: %w", err)
	}
	if off != len(data) {
		return meta, fmt.Errorf("%d trailing bytes", len(data)-off)
	}
	meta.Name, meta.Symbol = name, symbol
	return meta, nil
}

// MinterScript returns a minter script carrying meta.
func MinterScript(meta Metadata) types.Script {
	return types.Script{Type: types.ScriptTypeMinter, Data: EncodeMintData(meta)}
}

// ExtractAndStoreMetadata decodes the metadata carried by a contract's
// minter script and indexes it under the contract's token ID. It returns
// false without error if the token is already indexed.
func ExtractAndStoreMetadata(store *Store, c covenant.Contract) (bool, error) {
	if c.MinterScript.Type != types.ScriptTypeMinter {
		return false, fmt.Errorf("minter script has type %s", c.MinterScript.Type)
	}
	id := ContractID(c)
	if has, err := store.Has(id); err != nil || has {
		return false, err
	}
	meta, err := DecodeMintData(c.MinterScript.Data)
	if err != nil {
		return false, err
	}
	if err := store.Put(id, &meta); err != nil {
		return false, err
	}
	return true, nil
}

func readField(data []byte, off int) (string, int, error) {
	if off >= len(data) {
		return "", off, fmt.Errorf("missing length")
	}
	n := int(data[off])
	off++
	if off+n > len(data) {
		return "", off, fmt.Errorf("length %d exceeds data", n)
	}
	return string(data[off : off+n]), off + n, nil
}

func truncate(s string) []byte {
	b := []byte(s)
	if len(b) > maxField {
		b = b[:maxField]
	}
	return b
}
