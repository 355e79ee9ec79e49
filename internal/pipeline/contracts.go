package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"neotables/internal/catalog"
	"neotables/internal/emit"
	"neotables/internal/hierarchy"
	t "neotables/internal/types"
)

// NativeDir holds the native contract classes, relative to SmartContract.
const NativeDir = "Native/"

type ContractGenerator struct {
	Catalog  catalog.SourceCatalog
	Renderer emit.Renderer
	Layout   Layout
	// Dir defaults to NativeDir and Root to hierarchy.DefaultRoot.
	Dir  string
	Root string
	Log  *zap.Logger
}

func (g ContractGenerator) Table() emit.Table { return emit.TableContracts }

// Run discovers the registered contract classes, flattens each one's
// methods through its base classes and emits the table sorted by script
// hash. An unresolved registry root fails the run.
func (g ContractGenerator) Run(ctx context.Context) (Output, error) {
	log := g.Log
	if log == nil {
		log = zap.NewNop()
	}
	dir := g.Dir
	if dir == "" {
		dir = NativeDir
	}
	r := hierarchy.New(g.Catalog, hierarchy.Options{Dir: dir, Root: g.Root, Logger: log})

	roots, err := r.Roots(ctx)
	if err != nil {
		return Output{}, err
	}
	records := make([]t.NativeContractRecord, 0, len(roots))
	for _, class := range roots {
		methods, err := r.ResolveMethods(ctx, class, nil)
		if err != nil {
			return Output{}, fmt.Errorf("resolve %s: %w", class, err)
		}
		rec := emit.NewContractRecord(class, methods)
		log.Debug("native contract", zap.String("class", class), zap.Stringer("script_hash", rec.ScriptHash), zap.Int("methods", len(rec.Methods)))
		records = append(records, rec)
	}

	table, err := emit.BuildContractTable(records)
	if err != nil {
		return Output{}, err
	}
	src, err := g.Renderer.RenderContracts(table)
	if err != nil {
		return Output{}, err
	}
	doc, err := emit.MarshalJSON(emit.ContractDocument(table))
	if err != nil {
		return Output{}, err
	}
	return Output{
		Table:     emit.TableContracts,
		Count:     len(table),
		Artifacts: g.Layout.artifacts(emit.TableContracts, g.Renderer, src, doc),
	}, nil
}
