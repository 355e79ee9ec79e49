package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"neotables/internal/catalog"
	"neotables/internal/emit"
	"neotables/internal/extract"
	t "neotables/internal/types"
)

// SyscallFiles are the ApplicationEngine partial classes that register
// interop services, in merge order.
var SyscallFiles = []string{
	"ApplicationEngine.Runtime.cs",
	"ApplicationEngine.Contract.cs",
	"ApplicationEngine.Crypto.cs",
	"ApplicationEngine.Storage.cs",
	"ApplicationEngine.Iterator.cs",
}

type SyscallGenerator struct {
	Catalog  catalog.SourceCatalog
	Renderer emit.Renderer
	Layout   Layout
	// Files defaults to SyscallFiles.
	Files []string
	// ParamCounts and Voids default to the emit tables.
	ParamCounts map[string]uint8
	Voids       map[string]bool
	Log         *zap.Logger
}

func (g SyscallGenerator) Table() emit.Table { return emit.TableSyscalls }

// Run fetches every file concurrently and merges registrations strictly in
// file order, so fetch timing never changes the table. Files with no
// content are skipped; the run fails only when none of them resolve.
func (g SyscallGenerator) Run(ctx context.Context) (Output, error) {
	log := g.Log
	if log == nil {
		log = zap.NewNop()
	}
	files := g.Files
	if len(files) == 0 {
		files = SyscallFiles
	}

	fetched := make([][]t.SourceUnit, len(files))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for i, name := range files {
		eg.Go(func() error {
			units, err := g.Catalog.Resolve(egCtx, name)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", name, err)
			}
			fetched[i] = units
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Output{}, err
	}

	var batches [][]t.SyscallRegistration
	found := false
	for i, units := range fetched {
		if len(units) == 0 {
			log.Warn("syscall source missing", zap.String("name", files[i]))
			continue
		}
		found = true
		for _, u := range units {
			regs := extract.ParseSyscallRegistrations(u.Content)
			log.Debug("syscall registrations", zap.String("name", u.Name), zap.String("origin", string(u.Origin)), zap.Int("count", len(regs)))
			batches = append(batches, regs)
		}
	}
	if !found {
		return Output{}, fmt.Errorf("%w: %v", catalog.ErrRootUnresolved, files)
	}

	table := emit.BuildSyscallTable(batches, g.ParamCounts, g.Voids)
	src, err := g.Renderer.RenderSyscalls(table)
	if err != nil {
		return Output{}, err
	}
	doc, err := emit.MarshalJSON(emit.SyscallDocument(table))
	if err != nil {
		return Output{}, err
	}
	return Output{
		Table:     emit.TableSyscalls,
		Count:     len(table),
		Artifacts: g.Layout.artifacts(emit.TableSyscalls, g.Renderer, src, doc),
	}, nil
}
