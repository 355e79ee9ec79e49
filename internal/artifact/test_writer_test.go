package artifact

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPublisher struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (m *memPublisher) Put(_ context.Context, name string, content []byte, contentType string) error {
	if m.err != nil {
		return m.err
	}
	m.objects[name] = append([]byte(nil), content...)
	m.types[name] = contentType
	return nil
}

func TestWriterWritesAndPublishes(t *testing.T) {
	root := t.TempDir()
	pub := &memPublisher{objects: map[string][]byte{}, types: map[string]string{}}
	w := NewWriter(root, pub, nil)

	err := w.Write(context.Background(),
		Artifact{Path: "src/syscalls_generated.go", Data: []byte("package neotables\n"), ContentType: "text/x-go"},
		Artifact{Path: "tools/data/syscalls.json", Data: []byte("[]\n"), ContentType: "application/json"},
	)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(root, "src", "syscalls_generated.go"))
	require.NoError(t, err)
	assert.Equal(t, "package neotables\n", string(got))
	assert.Equal(t, "[]\n", string(pub.objects["tools/data/syscalls.json"]))
	assert.Equal(t, "application/json", pub.types["tools/data/syscalls.json"])
}

func TestWriterLeavesIdenticalFilesAlone(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, nil, nil)
	a := Artifact{Path: "out.json", Data: []byte("{}\n")}
	require.NoError(t, w.Write(context.Background(), a))

	p := filepath.Join(root, "out.json")
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(p, past, past))

	require.NoError(t, w.Write(context.Background(), a))
	fi, err := os.Stat(p)
	require.NoError(t, err)
	assert.True(t, fi.ModTime().Equal(past), "unchanged artifact was rewritten")
}

func TestWriterWrapsFailures(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "src"), nil, 0o644))
	w := NewWriter(root, nil, nil)
	err := w.Write(context.Background(), Artifact{Path: "src/x.go", Data: []byte("x")})
	assert.ErrorIs(t, err, ErrWrite)
	var pathErr *fs.PathError
	assert.ErrorAs(t, err, &pathErr, "filesystem cause is kept in the chain")

	gone := errors.New("bucket gone")
	pub := &memPublisher{err: gone}
	err = NewWriter(t.TempDir(), pub, nil).Write(context.Background(), Artifact{Path: "x.json", Data: []byte("x")})
	assert.ErrorIs(t, err, ErrWrite)
	assert.ErrorIs(t, err, gone)

	assert.ErrorIs(t, w.Write(context.Background(), Artifact{Path: ""}), ErrWrite)
}
