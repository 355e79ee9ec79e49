// Package neohash derives the identifiers Neo N3 uses to address syscalls
// and native contracts. Every function here is a pure function of its input.
package neohash

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"

	t "neotables/internal/types"
)

// VM opcodes used by the contract deployment script.
const (
	OpPushData1 byte = 0x0C
	OpPushData2 byte = 0x0D
	OpPushData4 byte = 0x0E
	OpPush0     byte = 0x10
	OpAbort     byte = 0x38
)

// AddressVersion is the Neo N3 address version byte.
const AddressVersion byte = 0x35

var ErrMalformedPush = errors.New("neohash: malformed push data")

// SyscallHash returns the interop id of a syscall: the first four bytes of
// SHA-256(name) read as a little-endian uint32.
func SyscallHash(name string) uint32 {
	sum := sha256.Sum256([]byte(name))
	return binary.LittleEndian.Uint32(sum[:4])
}

// EmitPushData appends a push of data to buf using the smallest of the
// three PUSHDATA forms.
func EmitPushData(buf, data []byte) []byte {
	n := len(data)
	switch {
	case n < 0x100:
		buf = append(buf, OpPushData1, byte(n))
	case n < 0x10000:
		buf = append(buf, OpPushData2)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(n))
	default:
		buf = append(buf, OpPushData4)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(n))
	}
	return append(buf, data...)
}

// DecodePushData reads one PUSHDATA instruction from the head of script and
// returns its opcode, payload and the remaining bytes.
func DecodePushData(script []byte) (op byte, payload, rest []byte, err error) {
	if len(script) == 0 {
		return 0, nil, nil, ErrMalformedPush
	}
	op = script[0]
	var width int
	switch op {
	case OpPushData1:
		width = 1
	case OpPushData2:
		width = 2
	case OpPushData4:
		width = 4
	default:
		return op, nil, nil, fmt.Errorf("%w: opcode 0x%02X", ErrMalformedPush, op)
	}
	if len(script) < 1+width {
		return op, nil, nil, fmt.Errorf("%w: truncated length", ErrMalformedPush)
	}
	var n uint64
	switch width {
	case 1:
		n = uint64(script[1])
	case 2:
		n = uint64(binary.LittleEndian.Uint16(script[1:3]))
	case 4:
		n = uint64(binary.LittleEndian.Uint32(script[1:5]))
	}
	body := script[1+width:]
	if uint64(len(body)) < n {
		return op, nil, nil, fmt.Errorf("%w: want %d bytes, have %d", ErrMalformedPush, n, len(body))
	}
	return op, body[:n], body[n:], nil
}

// ContractScript builds the deployment script native contract hashes are
// derived from: ABORT, push 20 zero bytes, PUSH0, push name.
func ContractScript(name string) []byte {
	var zero [20]byte
	buf := make([]byte, 0, 1+2+len(zero)+1+5+len(name))
	buf = append(buf, OpAbort)
	buf = EmitPushData(buf, zero[:])
	buf = append(buf, OpPush0)
	return EmitPushData(buf, []byte(name))
}

// ContractScriptHash returns RIPEMD-160(SHA-256(ContractScript(name))).
func ContractScriptHash(name string) t.ScriptHash {
	var out t.ScriptHash
	copy(out[:], btcutil.Hash160(ContractScript(name)))
	return out
}

// Address renders a script hash as a Neo N3 base58check address.
func Address(h t.ScriptHash) string {
	return base58.CheckEncode(h[:], AddressVersion)
}
