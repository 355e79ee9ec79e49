package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"neotables/internal/safeio"
	"neotables/internal/scan"
	t "neotables/internal/types"
)

// LocalSource reads units from a checked-out snapshot directory. Reads are
// confined to the snapshot root; the file index for List is built once on
// first use.
type LocalSource struct {
	fs     *safeio.SafeFS
	ignore []string

	once    sync.Once
	tree    scan.RepoTree
	scanErr error
}

// NewLocalSource opens the snapshot at root. Directories named in
// ignoreDirs are left out of listings.
func NewLocalSource(root string, ignoreDirs ...string) (*LocalSource, error) {
	fsys, err := safeio.NewSafeFS(root)
	if err != nil {
		return nil, err
	}
	return &LocalSource{fs: fsys, ignore: ignoreDirs}, nil
}

func (l *LocalSource) Origin() t.Origin { return t.OriginLocal }
func (l *LocalSource) Key() string      { return "local:" + l.fs.Root() }

func (l *LocalSource) Fetch(_ context.Context, name string) ([]byte, error) {
	b, err := l.fs.SafeReadFile(name)
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, safeio.ErrIsDir):
		return nil, notFound(name)
	case errors.Is(err, safeio.ErrOutsideRoot), errors.Is(err, safeio.ErrEmptyPath):
		return nil, NewPermanentError(err)
	default:
		return nil, fmt.Errorf("catalog: read %s: %w", name, err)
	}
}

func (l *LocalSource) List(_ context.Context, prefix string) ([]string, error) {
	l.once.Do(func() {
		l.tree, l.scanErr = scan.Scan(l.fs.Root(), scan.Options{IgnoreDirs: l.ignore})
	})
	if l.scanErr != nil {
		return nil, fmt.Errorf("catalog: index %s: %w", l.fs.Root(), l.scanErr)
	}
	var names []string
	base := prefix[strings.LastIndex(prefix, "/")+1:]
	for _, f := range l.tree.WithPrefix(base) {
		if strings.HasPrefix(f, prefix) {
			names = append(names, f)
		}
	}
	return names, nil
}
