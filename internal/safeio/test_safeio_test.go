package safeio

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestSafeFSReadsRelativeUnderRoot(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "Native"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	p := filepath.Join(dir, "Native", "NeoToken.cs")
	if err := os.WriteFile(p, []byte("class NeoToken {}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fsys, err := NewSafeFS(dir)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	got, err := fsys.SafeReadFile("Native/NeoToken.cs")
	if err != nil {
		t.Fatalf("SafeReadFile: %v", err)
	}
	if string(got) != "class NeoToken {}" {
		t.Fatalf("content = %q", got)
	}
}

func TestSafeFSRejectsEscapes(t *testing.T) {
	dir := t.TempDir()
	fsys, err := NewSafeFS(dir)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	for _, rel := range []string{"../etc/passwd", "..", filepath.Join(dir, "abs.cs")} {
		if _, err := fsys.SafeReadFile(rel); !errors.Is(err, ErrOutsideRoot) {
			t.Fatalf("SafeReadFile(%q) err = %v, want ErrOutsideRoot", rel, err)
		}
	}
	if _, err := fsys.SafeReadFile(""); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("empty path err = %v", err)
	}
}

func TestSafeFSMissingFileIsNotExist(t *testing.T) {
	fsys, err := NewSafeFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	if _, err := fsys.SafeReadFile("Missing.cs"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestWriteFileAtomicReplacesWholeFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out", "table.json")
	if err := WriteFileAtomic(p, []byte("first"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFileAtomic(p, []byte("second"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}
	got, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("content = %q", got)
	}
	entries, err := os.ReadDir(filepath.Dir(p))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("leftover temp files: %v", entries)
	}
}

func TestWriteFileAtomicFailsWhenDirIsFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteFileAtomic(filepath.Join(blocker, "x.json"), []byte("x"), 0o644); err == nil {
		t.Fatalf("expected error writing under a regular file")
	}
}
