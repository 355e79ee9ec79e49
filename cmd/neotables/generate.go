package main

import (
	"github.com/spf13/cobra"

	"neotables/internal/emit"
	"neotables/internal/pipeline"
)

var syscallsCmd = &cobra.Command{
	Use:   "syscalls",
	Short: "Regenerate the syscall table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return generate(cmd, emit.TableSyscalls)
	},
}

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "Regenerate the native contract table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return generate(cmd, emit.TableContracts)
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Regenerate both tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return generate(cmd, emit.TableSyscalls, emit.TableContracts)
	},
}

func generate(cmd *cobra.Command, tables ...emit.Table) error {
	cat, err := buildCatalog(cfg, flags.Offline, logger)
	if err != nil {
		return err
	}
	w, err := buildWriter(cfg, logger)
	if err != nil {
		return err
	}
	r, err := emit.NewRenderer(cfg.Output.Lang, cfg.Output.Package)
	if err != nil {
		return err
	}
	layout := pipeline.Layout{OutDir: cfg.Output.OutDir, DataDir: cfg.Output.DataDir}

	var gens []pipeline.Generator
	for _, table := range tables {
		switch table {
		case emit.TableSyscalls:
			gens = append(gens, pipeline.SyscallGenerator{Catalog: cat, Renderer: r, Layout: layout, Log: logger})
		case emit.TableContracts:
			gens = append(gens, pipeline.ContractGenerator{Catalog: cat, Renderer: r, Layout: layout, Log: logger})
		}
	}
	outs, err := pipeline.Generate(cmd.Context(), w, logger, gens...)
	if err != nil {
		return err
	}
	for _, out := range outs {
		for _, a := range out.Artifacts {
			cmd.Printf("wrote %s (%d %s)\n", a.Path, out.Count, out.Table)
		}
	}
	return nil
}
