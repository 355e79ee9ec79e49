package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"neotables/internal/config"
	"neotables/internal/logging"
)

type globalFlags struct {
	SnapshotDir string
	OutDir      string
	DataDir     string
	Lang        string
	Package     string
	Ref         string
	CacheDir    string
	Offline     bool
	Publish     bool
	LogLevel    string
	LogFormat   string
}

var (
	flags  globalFlags
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "neotables",
	Short: "Generate Neo N3 syscall and native contract lookup tables",
	Long: `neotables scrapes the Neo C# sources (a local snapshot first, GitHub or an
S3 mirror as fallback) and writes deterministic lookup tables as Go or Rust
source plus JSON metadata.

Settings come from NEOTABLES_* environment variables (a .env file is read
when present); flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		applyFlags(cmd, cfg)
		l, err := logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// applyFlags copies explicitly set flags over the environment config.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("snapshot", &c.SnapshotDir, flags.SnapshotDir)
	set("out", &c.Output.OutDir, flags.OutDir)
	set("data", &c.Output.DataDir, flags.DataDir)
	set("lang", &c.Output.Lang, flags.Lang)
	set("package", &c.Output.Package, flags.Package)
	set("ref", &c.Fetch.Ref, flags.Ref)
	set("cache-dir", &c.Cache.Dir, flags.CacheDir)
	set("log-level", &c.Log.Level, flags.LogLevel)
	set("log-format", &c.Log.Format, flags.LogFormat)
	if cmd.Flags().Changed("publish") {
		c.Mirror.Publish = flags.Publish
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.SnapshotDir, "snapshot", "", "local SmartContract snapshot directory")
	pf.StringVar(&flags.OutDir, "out", "", "directory for generated source tables")
	pf.StringVar(&flags.DataDir, "data", "", "directory for generated JSON metadata")
	pf.StringVar(&flags.Lang, "lang", "", "output language: go|rust")
	pf.StringVar(&flags.Package, "package", "", "Go package name of generated files")
	pf.StringVar(&flags.Ref, "ref", "", "git ref for the GitHub contents API")
	pf.StringVar(&flags.CacheDir, "cache-dir", "", "persist fetched sources in this directory")
	pf.BoolVar(&flags.Offline, "offline", false, "use the local snapshot only")
	pf.BoolVar(&flags.Publish, "publish", false, "upload artifacts to the mirror bucket")
	pf.StringVar(&flags.LogLevel, "log-level", "", "debug|info|warn|error")
	pf.StringVar(&flags.LogFormat, "log-format", "", "console|json")

	rootCmd.AddCommand(syscallsCmd)
	rootCmd.AddCommand(contractsCmd)
	rootCmd.AddCommand(allCmd)
	rootCmd.AddCommand(lookupCmd)
}
