// Package emit turns extracted facts into sorted tables and renders them
// as source code and JSON.
package emit

import (
	"errors"
	"fmt"
	"sort"

	"neotables/internal/neohash"
	t "neotables/internal/types"
)

var ErrDuplicateContract = errors.New("emit: duplicate contract script hash")

// DefaultParamCounts is the number of evaluation-stack arguments each
// syscall consumes, excluding the implicit engine receiver. Syscalls not
// listed consume none.
var DefaultParamCounts = map[string]uint8{
	"System.Runtime.Platform":               0,
	"System.Runtime.GetNetwork":             0,
	"System.Runtime.GetAddressVersion":      0,
	"System.Runtime.GetTrigger":             0,
	"System.Runtime.GetTime":                0,
	"System.Runtime.GetScriptContainer":     0,
	"System.Runtime.GetExecutingScriptHash": 0,
	"System.Runtime.GetCallingScriptHash":   0,
	"System.Runtime.GetEntryScriptHash":     0,
	"System.Runtime.LoadScript":             3,
	"System.Runtime.CheckWitness":           1,
	"System.Runtime.GetInvocationCounter":   0,
	"System.Runtime.GetRandom":              0,
	"System.Runtime.Log":                    1,
	"System.Runtime.Notify":                 2,
	"System.Runtime.GetNotifications":       1,
	"System.Runtime.GasLeft":                0,
	"System.Runtime.BurnGas":                1,
	"System.Runtime.CurrentSigners":         0,
	"System.Contract.Call":                  4,
	"System.Contract.CallNative":            1,
	"System.Contract.GetCallFlags":          0,
	"System.Contract.CreateStandardAccount": 1,
	"System.Contract.CreateMultisigAccount": 2,
	"System.Contract.NativeOnPersist":       0,
	"System.Contract.NativePostPersist":     0,
	"System.Storage.GetContext":             0,
	"System.Storage.GetReadOnlyContext":     0,
	"System.Storage.AsReadOnly":             1,
	"System.Storage.Get":                    2,
	"System.Storage.Find":                   3,
	"System.Storage.Put":                    3,
	"System.Storage.Delete":                 2,
	"System.Storage.Local.Get":              1,
	"System.Storage.Local.Find":             2,
	"System.Storage.Local.Put":              2,
	"System.Storage.Local.Delete":           1,
	"System.Crypto.CheckSig":                2,
	"System.Crypto.CheckMultisig":           2,
	"System.Iterator.Next":                  1,
	"System.Iterator.Value":                 1,
}

// DefaultVoidSyscalls push nothing onto the evaluation stack.
var DefaultVoidSyscalls = map[string]bool{
	"System.Runtime.Notify":             true,
	"System.Runtime.Log":                true,
	"System.Runtime.BurnGas":            true,
	"System.Storage.Put":                true,
	"System.Storage.Delete":             true,
	"System.Storage.Local.Put":          true,
	"System.Storage.Local.Delete":       true,
	"System.Contract.NativePostPersist": true,
	"System.Contract.NativeOnPersist":   true,
}

// BuildSyscallTable merges registration batches in order, so a later
// registration of the same name replaces an earlier one, and sorts the
// result by (hash, name). Nil maps select the defaults.
func BuildSyscallTable(batches [][]t.SyscallRegistration, arity map[string]uint8, voids map[string]bool) []t.SyscallRecord {
	if arity == nil {
		arity = DefaultParamCounts
	}
	if voids == nil {
		voids = DefaultVoidSyscalls
	}
	byName := map[string]t.SyscallRecord{}
	for _, batch := range batches {
		for _, reg := range batch {
			byName[reg.Name] = t.SyscallRecord{
				Name:         reg.Name,
				Handler:      reg.Handler,
				Price:        reg.PriceExpr,
				CallFlags:    reg.CallFlagsExpr,
				Hash:         neohash.SyscallHash(reg.Name),
				ReturnsValue: !voids[reg.Name],
				ParamCount:   arity[reg.Name],
			}
		}
	}
	out := make([]t.SyscallRecord, 0, len(byName))
	for _, rec := range byName {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hash != out[j].Hash {
			return out[i].Hash < out[j].Hash
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// NewContractRecord derives the script hash for className and normalizes
// methods to a sorted, unique list. The contract name is the class name.
func NewContractRecord(className string, methods []string) t.NativeContractRecord {
	return t.NativeContractRecord{
		ClassName:  className,
		Name:       className,
		ScriptHash: neohash.ContractScriptHash(className),
		Methods:    sortedUnique(methods),
	}
}

// BuildContractTable sorts records by script hash bytes. Two records with
// the same script hash are an error.
func BuildContractTable(records []t.NativeContractRecord) ([]t.NativeContractRecord, error) {
	out := make([]t.NativeContractRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScriptHash.Less(out[j].ScriptHash) })
	for i := 1; i < len(out); i++ {
		if out[i].ScriptHash == out[i-1].ScriptHash {
			return nil, fmt.Errorf("%w: %s (%s, %s)", ErrDuplicateContract, out[i].ScriptHash, out[i-1].ClassName, out[i].ClassName)
		}
	}
	for i := range out {
		out[i].Methods = sortedUnique(out[i].Methods)
	}
	return out, nil
}

func sortedUnique(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
