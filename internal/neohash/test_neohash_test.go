package neohash

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ripemd160"
)

func TestSyscallHashKnownValues(t *testing.T) {
	cases := map[string]uint32{
		"System.Runtime.Log":          0x9647E7CF,
		"System.Runtime.Notify":       0x616F0195,
		"System.Storage.Put":          0x84183FE6,
		"System.Contract.Call":        0x525B7D62,
		"System.Runtime.CheckWitness": 0x8CEC27F8,
	}
	for name, want := range cases {
		assert.Equalf(t, want, SyscallHash(name), "hash of %s", name)
	}
}

func TestSyscallHashIsDeterministic(t *testing.T) {
	for _, name := range []string{"", "System.Runtime.GetTime", "x"} {
		first := SyscallHash(name)
		for i := 0; i < 5; i++ {
			require.Equal(t, first, SyscallHash(name))
		}
	}
}

func TestPushDataRoundTrip(t *testing.T) {
	cases := []struct {
		n      int
		op     byte
		header int
	}{
		{0, OpPushData1, 2},
		{255, OpPushData1, 2},
		{256, OpPushData2, 3},
		{65535, OpPushData2, 3},
		{65536, OpPushData4, 5},
	}
	for _, tc := range cases {
		payload := bytes.Repeat([]byte{0xA5}, tc.n)
		enc := EmitPushData(nil, payload)
		require.Lenf(t, enc, tc.header+tc.n, "encoded length for %d", tc.n)

		op, got, rest, err := DecodePushData(enc)
		require.NoErrorf(t, err, "decode %d", tc.n)
		assert.Equalf(t, tc.op, op, "tier for %d", tc.n)
		assert.Truef(t, bytes.Equal(payload, got), "payload for %d", tc.n)
		assert.Empty(t, rest)
	}
}

func TestDecodePushDataRejectsTruncated(t *testing.T) {
	_, _, _, err := DecodePushData([]byte{OpPushData1, 4, 'a'})
	require.ErrorIs(t, err, ErrMalformedPush)

	_, _, _, err = DecodePushData([]byte{OpPush0})
	require.ErrorIs(t, err, ErrMalformedPush)

	_, _, _, err = DecodePushData(nil)
	require.ErrorIs(t, err, ErrMalformedPush)
}

func TestContractScriptLayout(t *testing.T) {
	got := hex.EncodeToString(ContractScript("NEO"))
	assert.Equal(t, "380c140000000000000000000000000000000000000000100c034e454f", got)
}

func TestContractScriptHashGolden(t *testing.T) {
	cases := map[string]string{
		"NEO":                "deb9978e3ca450d21de31bc28cca7c0e23b9b433",
		"NeoToken":           "f563ea40bc283d4d0e05c48ea305b3f2a07340ef",
		"GasToken":           "cf76e28bd0062c4a478ee35561011319f3cfa4d2",
		"ContractManagement": "fda3fa4346ea532a258fc497ddaddb6437c9fdff",
		"CryptoLib":          "1bf575ab1189688413610a35a12886cde0b66c72",
	}
	for name, want := range cases {
		assert.Equalf(t, want, ContractScriptHash(name).String(), "script hash of %s", name)
	}
}

func TestContractScriptHashMatchesTwoStageDigest(t *testing.T) {
	for _, name := range []string{"StdLib", "Ledger", "a-much-longer-contract-name"} {
		sha := sha256.Sum256(ContractScript(name))
		r := ripemd160.New()
		r.Write(sha[:])
		want := r.Sum(nil)
		got := ContractScriptHash(name)
		assert.Equalf(t, want, got[:], "two-stage digest of %s", name)
	}
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "NiHURyS83nX2mpxtA7xq84cGxVbHojj5Wc", Address(ContractScriptHash("NeoToken")))
}
