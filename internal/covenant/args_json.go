package covenant

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Unlock argument kinds on the wire.
const (
	KindUser     = "user"
	KindContract = "contract"
)

// unlockArgsJSON is the tagged JSON form of UnlockArgs.
type unlockArgsJSON struct {
	Kind               string  `json:"kind"`
	PubKey             string  `json:"pubkey,omitempty"`
	Signature          string  `json:"signature,omitempty"`
	ContractInputIndex *uint32 `json:"contract_input_index,omitempty"`
}

// MarshalUnlockArgs encodes args with an explicit kind tag.
func MarshalUnlockArgs(args UnlockArgs) ([]byte, error) {
	switch a := args.(type) {
	case UserSpend:
		return json.Marshal(unlockArgsJSON{
			Kind:      KindUser,
			PubKey:    hex.EncodeToString(a.CompressedPubKey()),
			Signature: hex.EncodeToString(a.Signature),
		})
	case ContractSpend:
		idx := a.ContractInputIndex
		return json.Marshal(unlockArgsJSON{Kind: KindContract, ContractInputIndex: &idx})
	default:
		return nil, fmt.Errorf("unknown unlock arguments %T", args)
	}
}

// UnmarshalUnlockArgs decodes args produced by MarshalUnlockArgs. The kind
// tag is mandatory.
func UnmarshalUnlockArgs(data []byte) (UnlockArgs, error) {
	var j unlockArgsJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	switch j.Kind {
	case KindUser:
		pub, err := hex.DecodeString(j.PubKey)
		if err != nil {
			return nil, fmt.Errorf("pubkey: %w", err)
		}
		sig, err := hex.DecodeString(j.Signature)
		if err != nil {
			return nil, fmt.Errorf("signature: %w", err)
		}
		if len(pub) == 0 {
			return nil, fmt.Errorf("user spend requires a pubkey")
		}
		return UserSpend{PubKeyPrefix: pub[0], PubKey: pub[1:], Signature: sig}, nil
	case KindContract:
		if j.ContractInputIndex == nil {
			return nil, fmt.Errorf("contract spend requires contract_input_index")
		}
		return ContractSpend{ContractInputIndex: *j.ContractInputIndex}, nil
	default:
		return nil, fmt.Errorf("unknown unlock kind %q", j.Kind)
	}
}
