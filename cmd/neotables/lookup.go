package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"neotables/internal/emit"
	"neotables/internal/registry"
)

var lookupMethod string

var lookupCmd = &cobra.Command{
	Use:   "lookup <syscall-hash|script-hash>",
	Short: "Look up a syscall or native contract in the generated JSON",
	Long: `Look up an entry in the generated metadata. A 40-digit hex value is a
contract script hash (digest order or the reversed 0x form); anything else
is parsed as a syscall hash ("0x9647E7CF", "9647e7cf" or decimal).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := strings.TrimSpace(args[0])
		if len(strings.TrimPrefix(strings.ToLower(arg), "0x")) == 40 {
			return lookupContract(cmd, arg)
		}
		return lookupSyscall(cmd, arg)
	},
}

func init() {
	lookupCmd.Flags().StringVar(&lookupMethod, "method", "", "describe a method token on the contract")
}

func dataPath(table emit.Table) string {
	return filepath.Join(cfg.Output.DataDir, string(table)+".json")
}

func lookupSyscall(cmd *cobra.Command, arg string) error {
	hash, err := registry.ParseSyscallHash(arg)
	if err != nil {
		return fmt.Errorf("invalid syscall hash %q: %w", arg, err)
	}
	table, err := registry.LoadSyscallsFile(dataPath(emit.TableSyscalls))
	if err != nil {
		return err
	}
	matches := table.LookupAll(hash)
	if len(matches) == 0 {
		return fmt.Errorf("unknown syscall 0x%08X", hash)
	}
	return printJSON(cmd, matches)
}

func lookupContract(cmd *cobra.Command, arg string) error {
	table, err := registry.LoadContractsFile(dataPath(emit.TableContracts))
	if err != nil {
		return err
	}
	info, ok, err := table.LookupHex(arg)
	if err != nil {
		return fmt.Errorf("invalid script hash %q: %w", arg, err)
	}
	if !ok {
		return fmt.Errorf("unknown native contract %s", arg)
	}
	if lookupMethod == "" {
		return printJSON(cmd, info)
	}
	hint, _ := table.DescribeMethodToken(info.ScriptHash, lookupMethod)
	cmd.Println(hint.FormattedLabel(lookupMethod))
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
