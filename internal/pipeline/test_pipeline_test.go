package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neotables/internal/artifact"
	"neotables/internal/catalog"
	"neotables/internal/emit"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func localCatalog(t *testing.T, root string) *catalog.Catalog {
	t.Helper()
	src, err := catalog.NewLocalSource(root)
	require.NoError(t, err)
	c, err := catalog.New(catalog.Config{Local: []catalog.Source{src}})
	require.NoError(t, err)
	return c
}

const runtimeCS = `partial class ApplicationEngine
{
    public static readonly InteropDescriptor System_Runtime_Platform = Register("System.Runtime.Platform", nameof(GetPlatform), 1 << 3, CallFlags.None);
    public static readonly InteropDescriptor System_Runtime_Log = Register("System.Runtime.Log", nameof(RuntimeLog), 1 << 15, CallFlags.AllowNotify);
    public static readonly InteropDescriptor System_Runtime_Notify = Register("System.Runtime.Notify", nameof(RuntimeNotify), 1 << 15, CallFlags.AllowNotify);
}
`

const storageCS = `partial class ApplicationEngine
{
    public static readonly InteropDescriptor System_Storage_Get = Register("System.Storage.Get", nameof(Get), 1 << 15, CallFlags.ReadStates);
    public static readonly InteropDescriptor System_Storage_Put = Register("System.Storage.Put", nameof(Put), 1 << 15, CallFlags.WriteStates);
    public static readonly InteropDescriptor System_Runtime_Log = Register("System.Runtime.Log", nameof(RuntimeLogV2), 1 << 15, CallFlags.AllowNotify);
}
`

func TestSyscallGeneratorEndToEnd(t *testing.T) {
	snap := t.TempDir()
	write(t, snap, "ApplicationEngine.Runtime.cs", runtimeCS)
	write(t, snap, "ApplicationEngine.Storage.cs", storageCS)

	gen := SyscallGenerator{
		Catalog:  localCatalog(t, snap),
		Renderer: emit.GoRenderer{Package: "tables"},
		Layout:   Layout{OutDir: "src", DataDir: "tools/data"},
	}
	out, err := gen.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, out.Count)
	require.Len(t, out.Artifacts, 2)
	assert.Equal(t, "src/syscalls_generated.go", out.Artifacts[0].Path)
	assert.Equal(t, "tools/data/syscalls.json", out.Artifacts[1].Path)

	var doc []emit.SyscallJSON
	require.NoError(t, json.Unmarshal(out.Artifacts[1].Data, &doc))
	require.Len(t, doc, 5)
	for i := 1; i < len(doc); i++ {
		assert.LessOrEqual(t, doc[i-1].Hash, doc[i].Hash)
	}
	for _, s := range doc {
		if s.Name == "System.Runtime.Log" {
			// Storage is merged after Runtime
			assert.Equal(t, "RuntimeLogV2", s.Handler)
		}
	}

	again, err := gen.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, out.Artifacts, again.Artifacts)
}

func TestSyscallGeneratorFailsWithoutAnySource(t *testing.T) {
	gen := SyscallGenerator{Catalog: localCatalog(t, t.TempDir()), Renderer: emit.GoRenderer{}}
	_, err := gen.Run(context.Background())
	assert.ErrorIs(t, err, catalog.ErrRootUnresolved)
}

const nativeContractCS = `namespace Neo.SmartContract.Native
{
    public abstract class NativeContract
    {
        public static ContractManagement ContractManagement { get; } = new();
        public static NeoToken NEO { get; } = new();
        public static GasToken GAS { get; } = new();
    }
}
`

const fungibleCS = `public abstract class FungibleToken<TState> : NativeContract
    where TState : AccountState, new()
{
    [ContractMethod]
    public virtual BigInteger TotalSupply(IReadOnlyStore snapshot) => 0;

    [ContractMethod(CpuFee = 1 << 15, RequiredCallFlags = CallFlags.ReadStates)]
    public virtual BigInteger BalanceOf(IReadOnlyStore snapshot, UInt160 account) => 0;
}
`

const neoCS = `public sealed class NeoToken : FungibleToken<NeoToken.NeoAccountState>, IExternalBase
{
    [ContractMethod(Name = "getCandidates")]
    private object GetCandidatesInternal(DataCache snapshot) => null;
}
`

const gasCS = `public sealed class GasToken : FungibleToken<AccountState>
{
}
`

const managementCS = `public sealed class ContractManagement : NativeContract
{
    [ContractMethod(RequiredCallFlags = CallFlags.ReadStates)]
    public ContractState GetContract(IReadOnlyStore snapshot, UInt160 hash) => null;
}
`

func nativeSnapshot(t *testing.T) string {
	snap := t.TempDir()
	write(t, snap, "Native/NativeContract.cs", nativeContractCS)
	write(t, snap, "Native/FungibleToken.cs", fungibleCS)
	write(t, snap, "Native/NeoToken.cs", neoCS)
	write(t, snap, "Native/GasToken.cs", gasCS)
	write(t, snap, "Native/ContractManagement.cs", managementCS)
	return snap
}

func TestContractGeneratorEndToEnd(t *testing.T) {
	gen := ContractGenerator{
		Catalog:  localCatalog(t, nativeSnapshot(t)),
		Renderer: emit.RustRenderer{},
		Layout:   Layout{OutDir: "src", DataDir: "tools/data"},
	}
	out, err := gen.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)
	assert.Equal(t, "src/native_contracts_generated.rs", out.Artifacts[0].Path)

	var doc []emit.ContractJSON
	require.NoError(t, json.Unmarshal(out.Artifacts[1].Data, &doc))
	require.Len(t, doc, 3)
	// sorted by script hash: GasToken cf76.., NeoToken f563.., ContractManagement fda3..
	assert.Equal(t, "GasToken", doc[0].Name)
	assert.Equal(t, []string{"BalanceOf", "TotalSupply"}, doc[0].Methods)
	assert.Equal(t, "NeoToken", doc[1].Name)
	assert.Equal(t, "NiHURyS83nX2mpxtA7xq84cGxVbHojj5Wc", doc[1].Address)
	// IExternalBase is never defined and contributes nothing
	assert.Equal(t, []string{"BalanceOf", "TotalSupply", "getCandidates"}, doc[1].Methods)
	assert.Equal(t, "ContractManagement", doc[2].Name)
	assert.Equal(t, "fda3fa4346ea532a258fc497ddaddb6437c9fdff", doc[2].ScriptHash.String())
	assert.Equal(t, []string{"GetContract"}, doc[2].Methods)
}

func TestContractGeneratorFailsWithoutRoot(t *testing.T) {
	snap := nativeSnapshot(t)
	require.NoError(t, os.Remove(filepath.Join(snap, "Native", "NativeContract.cs")))
	gen := ContractGenerator{Catalog: localCatalog(t, snap), Renderer: emit.GoRenderer{}}
	_, err := gen.Run(context.Background())
	assert.ErrorIs(t, err, catalog.ErrRootUnresolved)
}

func TestGenerateWritesArtifacts(t *testing.T) {
	snap := nativeSnapshot(t)
	write(t, snap, "ApplicationEngine.Runtime.cs", runtimeCS)
	cat := localCatalog(t, snap)
	root := t.TempDir()
	layout := Layout{OutDir: "src", DataDir: "tools/data"}

	outs, err := Generate(context.Background(), artifact.NewWriter(root, nil, nil), nil,
		SyscallGenerator{Catalog: cat, Renderer: emit.GoRenderer{}, Layout: layout},
		ContractGenerator{Catalog: cat, Renderer: emit.GoRenderer{}, Layout: layout},
	)
	require.NoError(t, err)
	require.Len(t, outs, 2)

	for _, rel := range []string{"src/syscalls_generated.go", "src/native_contracts_generated.go", "tools/data/syscalls.json", "tools/data/native_contracts.json"} {
		b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		require.NoError(t, err, rel)
		assert.True(t, strings.HasSuffix(string(b), "\n"), rel)
	}
}
