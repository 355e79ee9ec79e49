package types

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// Extraction facts ----------------------------------------------------------------

// MethodRegistration is one [ContractMethod]-attributed declaration.
// ExposedName is the declared identifier unless the attribute overrides it.
type MethodRegistration struct {
	ExposedName   string `json:"exposed_name"`
	HandlerSymbol string `json:"handler_symbol"`
	ParamCount    int    `json:"param_count"`
	ReturnsValue  bool   `json:"returns_value"`
}

// ClassRecord is a class declaration merged from every unit with its name.
// Bases and Methods are ordered sets.
type ClassRecord struct {
	Name    string               `json:"name"`
	Bases   []string             `json:"bases"`
	Methods []MethodRegistration `json:"methods"`
}

// MethodNames returns the exposed names in declaration order.
func (c ClassRecord) MethodNames() []string {
	out := make([]string, 0, len(c.Methods))
	for _, m := range c.Methods {
		out = append(out, m.ExposedName)
	}
	return out
}

// SyscallRegistration is one Register(...) call-site.
type SyscallRegistration struct {
	Name          string `json:"name"`
	Handler       string `json:"handler"`
	PriceExpr     string `json:"price"`
	CallFlagsExpr string `json:"call_flags"`
}

// Emitted records -----------------------------------------------------------------

// ScriptHash is a 20-byte Neo contract address in digest byte order.
type ScriptHash [20]byte

// String renders the hash as lowercase hex in digest byte order.
func (h ScriptHash) String() string { return hex.EncodeToString(h[:]) }

// MarshalText implements encoding.TextMarshaler (lowercase hex).
func (h ScriptHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText accepts 40 hex digits, with or without a 0x prefix.
func (h *ScriptHash) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(strings.TrimPrefix(string(text), "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("script hash: %w", err)
	}
	if len(raw) != len(h) {
		return fmt.Errorf("script hash: want %d bytes, got %d", len(h), len(raw))
	}
	copy(h[:], raw)
	return nil
}

// Less orders hashes by their bytes.
func (h ScriptHash) Less(o ScriptHash) bool {
	return bytes.Compare(h[:], o[:]) < 0
}

// NativeContractRecord describes one top-level native contract.
type NativeContractRecord struct {
	ClassName  string     `json:"class_name"`
	Name       string     `json:"name"`
	ScriptHash ScriptHash `json:"script_hash"`
	Methods    []string   `json:"methods"`
}

// SyscallRecord is one row of the syscall table.
type SyscallRecord struct {
	Name         string `json:"name"`
	Handler      string `json:"handler"`
	Price        string `json:"price"`
	CallFlags    string `json:"call_flags"`
	Hash         uint32 `json:"hash"`
	ReturnsValue bool   `json:"returns_value"`
	ParamCount   uint8  `json:"param_count"`
}
