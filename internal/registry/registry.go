// Package registry answers lookups over the generated JSON tables.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"neotables/internal/emit"
	t "neotables/internal/types"
)

var ErrUnsorted = errors.New("registry: table is not sorted")

// Syscalls is a loaded syscalls.json, sorted by (hash, name).
type Syscalls struct {
	entries []emit.SyscallJSON
}

func LoadSyscalls(r io.Reader) (*Syscalls, error) {
	var entries []emit.SyscallJSON
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("registry: decode syscalls: %w", err)
	}
	for i := 1; i < len(entries); i++ {
		a, b := entries[i-1], entries[i]
		if a.Hash > b.Hash || (a.Hash == b.Hash && a.Name >= b.Name) {
			return nil, fmt.Errorf("%w: syscalls[%d] %s after %s", ErrUnsorted, i, b.Name, a.Name)
		}
	}
	return &Syscalls{entries: entries}, nil
}

func LoadSyscallsFile(path string) (*Syscalls, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSyscalls(f)
}

func (s *Syscalls) All() []emit.SyscallJSON { return s.entries }

// LookupAll returns every syscall with the given hash; more than one only
// on a 32-bit collision.
func (s *Syscalls) LookupAll(hash uint32) []emit.SyscallJSON {
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Hash >= hash })
	j := i
	for j < len(s.entries) && s.entries[j].Hash == hash {
		j++
	}
	return s.entries[i:j]
}

// Lookup returns the first syscall with the given hash.
func (s *Syscalls) Lookup(hash uint32) (emit.SyscallJSON, bool) {
	all := s.LookupAll(hash)
	if len(all) == 0 {
		return emit.SyscallJSON{}, false
	}
	return all[0], true
}

// ReturnsValue reports whether the syscall pushes a result. Unknown
// syscalls are assumed to.
func (s *Syscalls) ReturnsValue(hash uint32) bool {
	if info, ok := s.Lookup(hash); ok {
		return info.ReturnsValue
	}
	return true
}

// ParseSyscallHash accepts "0x9647E7CF", "9647e7cf" or a decimal value.
func ParseSyscallHash(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if h, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		v, err := strconv.ParseUint(h, 16, 32)
		return uint32(v), err
	}
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(v), nil
	}
	v, err := strconv.ParseUint(s, 16, 32)
	return uint32(v), err
}

// Contracts is a loaded native_contracts.json, sorted by script hash.
type Contracts struct {
	entries []emit.ContractJSON
}

func LoadContracts(r io.Reader) (*Contracts, error) {
	var entries []emit.ContractJSON
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("registry: decode contracts: %w", err)
	}
	for i := 1; i < len(entries); i++ {
		if !entries[i-1].ScriptHash.Less(entries[i].ScriptHash) {
			return nil, fmt.Errorf("%w: contracts[%d] %s after %s", ErrUnsorted, i, entries[i].Name, entries[i-1].Name)
		}
	}
	return &Contracts{entries: entries}, nil
}

func LoadContractsFile(path string) (*Contracts, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadContracts(f)
}

func (c *Contracts) All() []emit.ContractJSON { return c.entries }

// Lookup finds a contract by script hash in digest byte order.
func (c *Contracts) Lookup(hash t.ScriptHash) (emit.ContractJSON, bool) {
	i := sort.Search(len(c.entries), func(i int) bool { return !c.entries[i].ScriptHash.Less(hash) })
	if i < len(c.entries) && c.entries[i].ScriptHash == hash {
		return c.entries[i], true
	}
	return emit.ContractJSON{}, false
}

// LookupHex accepts a hash in digest order or in the reversed "0x..."
// form Neo tooling displays.
func (c *Contracts) LookupHex(s string) (emit.ContractJSON, bool, error) {
	var h t.ScriptHash
	if err := h.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return emit.ContractJSON{}, false, err
	}
	if info, ok := c.Lookup(h); ok {
		return info, true, nil
	}
	info, ok := c.Lookup(reverse(h))
	return info, ok, nil
}

func reverse(h t.ScriptHash) t.ScriptHash {
	for i, j := 0, len(h)-1; i < j; i, j = i+1, j-1 {
		h[i], h[j] = h[j], h[i]
	}
	return h
}

// MethodHint explains how a method token maps onto a native contract.
// CanonicalMethod is empty when the method is not one of the contract's.
type MethodHint struct {
	Contract        string
	CanonicalMethod string
}

// FormattedLabel renders "Contract::method", or
// "Contract::<unknown provided>" when the method was not resolved.
func (h MethodHint) FormattedLabel(provided string) string {
	if h.CanonicalMethod != "" {
		return h.Contract + "::" + h.CanonicalMethod
	}
	return h.Contract + "::<unknown " + provided + ">"
}

func (h MethodHint) HasExactMethod() bool { return h.CanonicalMethod != "" }

// DescribeMethodToken resolves method against the contract at hash. An
// exact match wins over an ASCII case-insensitive one. ok is false when
// the hash is not a native contract.
func (c *Contracts) DescribeMethodToken(hash t.ScriptHash, method string) (MethodHint, bool) {
	info, ok := c.Lookup(hash)
	if !ok {
		return MethodHint{}, false
	}
	hint := MethodHint{Contract: info.Name}
	for _, m := range info.Methods {
		if m == method {
			hint.CanonicalMethod = m
			return hint, true
		}
	}
	for _, m := range info.Methods {
		if strings.EqualFold(m, method) && isASCII(method) {
			hint.CanonicalMethod = m
			break
		}
	}
	return hint, true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
