// Package artifact writes generated tables to disk and, optionally,
// publishes them to an object store.
package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"neotables/internal/safeio"
)

var ErrWrite = errors.New("artifact: write failed")

// Artifact is one generated file. Path is slash-separated and relative to
// the writer root.
type Artifact struct {
	Path        string
	Data        []byte
	ContentType string
}

// Publisher receives every written artifact, keyed by its path.
type Publisher interface {
	Put(ctx context.Context, name string, content []byte, contentType string) error
}

type Writer struct {
	root string
	pub  Publisher
	log  *zap.Logger
}

// NewWriter returns a writer rooted at root. pub may be nil.
func NewWriter(root string, pub Publisher, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{root: root, pub: pub, log: log}
}

// Write stores every artifact atomically. A file whose content is already
// identical is left untouched. Failures wrap ErrWrite.
func (w *Writer) Write(ctx context.Context, arts ...Artifact) error {
	for _, a := range arts {
		rel := filepath.FromSlash(strings.TrimLeft(a.Path, "/"))
		if rel == "" || rel == "." {
			return fmt.Errorf("%w: empty path", ErrWrite)
		}
		dst := filepath.Join(w.root, rel)
		if old, err := os.ReadFile(dst); err == nil && bytes.Equal(old, a.Data) {
			w.log.Debug("artifact unchanged", zap.String("path", dst))
		} else {
			if err := safeio.WriteFileAtomic(dst, a.Data, 0o644); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrWrite, dst, err)
			}
			w.log.Info("artifact written", zap.String("path", dst), zap.Int("bytes", len(a.Data)))
		}
		if w.pub == nil {
			continue
		}
		if err := w.pub.Put(ctx, a.Path, a.Data, a.ContentType); err != nil {
			return fmt.Errorf("%w: publish %s: %w", ErrWrite, a.Path, err)
		}
		w.log.Info("artifact published", zap.String("key", a.Path))
	}
	return nil
}
