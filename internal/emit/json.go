package emit

import (
	"bytes"
	"encoding/json"
	"fmt"

	"neotables/internal/neohash"
	t "neotables/internal/types"
)

// SyscallJSON is one entry of syscalls.json.
type SyscallJSON struct {
	Name         string `json:"name"`
	Handler      string `json:"handler"`
	Price        string `json:"price"`
	CallFlags    string `json:"call_flags"`
	Hash         uint32 `json:"hash"`
	HashHex      string `json:"hash_hex"`
	ReturnsValue bool   `json:"returns_value"`
	ParamCount   uint8  `json:"param_count"`
}

// ContractJSON is one entry of native_contracts.json.
type ContractJSON struct {
	ClassName  string       `json:"class_name"`
	Name       string       `json:"name"`
	ScriptHash t.ScriptHash `json:"script_hash"`
	Address    string       `json:"address"`
	Methods    []string     `json:"methods"`
}

func SyscallDocument(recs []t.SyscallRecord) []SyscallJSON {
	out := make([]SyscallJSON, 0, len(recs))
	for _, r := range recs {
		out = append(out, SyscallJSON{
			Name:         r.Name,
			Handler:      r.Handler,
			Price:        r.Price,
			CallFlags:    r.CallFlags,
			Hash:         r.Hash,
			HashHex:      fmt.Sprintf("0x%08x", r.Hash),
			ReturnsValue: r.ReturnsValue,
			ParamCount:   r.ParamCount,
		})
	}
	return out
}

func ContractDocument(recs []t.NativeContractRecord) []ContractJSON {
	out := make([]ContractJSON, 0, len(recs))
	for _, r := range recs {
		methods := r.Methods
		if methods == nil {
			methods = []string{}
		}
		out = append(out, ContractJSON{
			ClassName:  r.ClassName,
			Name:       r.Name,
			ScriptHash: r.ScriptHash,
			Address:    neohash.Address(r.ScriptHash),
			Methods:    methods,
		})
	}
	return out
}

// MarshalJSON renders doc indented by two spaces with a trailing newline.
// HTML escaping is off so price expressions such as "1 << 15" stay
// readable.
func MarshalJSON(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("emit: encode json: %w", err)
	}
	return buf.Bytes(), nil
}
