// Package pipeline wires the catalog, extractors, resolver and emitters into
// the two table generators.
package pipeline

import (
	"context"
	"fmt"
	"path"

	"go.uber.org/zap"

	"neotables/internal/artifact"
	"neotables/internal/emit"
)

// Generator produces the artifacts of one table.
type Generator interface {
	Table() emit.Table
	Run(ctx context.Context) (Output, error)
}

// Output is the result of one generator run.
type Output struct {
	Table     emit.Table
	Count     int
	Artifacts []artifact.Artifact
}

// Layout places generated files relative to the writer root.
type Layout struct {
	OutDir  string
	DataDir string
}

func (l Layout) artifacts(table emit.Table, r emit.Renderer, src, doc []byte) []artifact.Artifact {
	return []artifact.Artifact{
		{Path: path.Join(l.OutDir, r.FileName(table)), Data: src, ContentType: contentType(r.Language())},
		{Path: path.Join(l.DataDir, string(table)+".json"), Data: doc, ContentType: "application/json"},
	}
}

func contentType(lang string) string {
	switch lang {
	case "go":
		return "text/x-go; charset=utf-8"
	case "rust":
		return "text/x-rust; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Generate runs every generator in order and writes its artifacts. A
// generator's artifacts are only written once it has fully succeeded.
func Generate(ctx context.Context, w *artifact.Writer, log *zap.Logger, gens ...Generator) ([]Output, error) {
	if log == nil {
		log = zap.NewNop()
	}
	outs := make([]Output, 0, len(gens))
	for _, g := range gens {
		out, err := g.Run(ctx)
		if err != nil {
			return outs, fmt.Errorf("%s: %w", g.Table(), err)
		}
		if err := w.Write(ctx, out.Artifacts...); err != nil {
			return outs, fmt.Errorf("%s: %w", g.Table(), err)
		}
		log.Info("table generated", zap.String("table", string(out.Table)), zap.Int("entries", out.Count))
		outs = append(outs, out)
	}
	return outs, nil
}
