package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"neotables/internal/config"
)

func TestApplyFlagsOverridesOnlyChanged(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	var f globalFlags
	cmd.Flags().StringVar(&f.OutDir, "out", "", "")
	cmd.Flags().StringVar(&f.Lang, "lang", "", "")
	cmd.Flags().StringVar(&f.SnapshotDir, "snapshot", "", "")
	cmd.Flags().BoolVar(&f.Publish, "publish", false, "")
	require.NoError(t, cmd.Flags().Parse([]string{"--lang", "rust", "--publish"}))

	saved := flags
	flags = f
	t.Cleanup(func() { flags = saved })

	c := &config.Config{SnapshotDir: "snap", Output: config.OutputConfig{OutDir: "src", Lang: "go"}}
	applyFlags(cmd, c)
	assert.Equal(t, "rust", c.Output.Lang)
	assert.Equal(t, "src", c.Output.OutDir)
	assert.Equal(t, "snap", c.SnapshotDir)
	assert.True(t, c.Mirror.Publish)
}

func TestBuildCatalogOfflineNeedsSnapshot(t *testing.T) {
	c := &config.Config{SnapshotDir: filepath.Join(t.TempDir(), "missing")}
	_, err := buildCatalog(c, true, zap.NewNop())
	require.Error(t, err)
}

func TestBuildCatalogOfflineWithSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ApplicationEngine.Runtime.cs"), []byte("partial class ApplicationEngine {}"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Legacy"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Legacy", "ApplicationEngine.Old.cs"), []byte("partial class ApplicationEngine {}"), 0o644))
	c := &config.Config{
		SnapshotDir:    dir,
		SnapshotIgnore: []string{"Legacy"},
		Cache:          config.CacheConfig{Dir: filepath.Join(t.TempDir(), "cache")},
	}
	cat, err := buildCatalog(c, true, zap.NewNop())
	require.NoError(t, err)
	units, err := cat.Resolve(t.Context(), "ApplicationEngine.Runtime.cs")
	require.NoError(t, err)
	require.Len(t, units, 1)
	names, err := cat.Enumerate(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"ApplicationEngine.Runtime.cs"}, names)
}

func TestBuildWriterPublishRequiresMirror(t *testing.T) {
	c := &config.Config{Mirror: config.MirrorConfig{Publish: true}}
	_, err := buildWriter(c, zap.NewNop())
	require.Error(t, err)
}
