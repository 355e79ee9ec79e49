// Package scan indexes a local source snapshot so units can be looked up
// by file-name prefix.
package scan

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FileVisit carries per-entry metadata to user callbacks.
type FileVisit struct {
	// Root-relative path using forward slashes (e.g., "Native/NeoToken.cs").
	Path  string
	IsDir bool
}

// VisitFunc is invoked for every visited entry.
type VisitFunc func(f FileVisit)

// Options tunes a walk.
type Options struct {
	// IgnoreDirs are directory base names that are never entered. The
	// defaults in skipDirs always apply.
	IgnoreDirs []string
}

var skipDirs = map[string]bool{".git": true, "node_modules": true, "vendor": true, "bin": true, "obj": true}

// ScanWithOptions walks root in lexical order and calls cb for each entry
// below it. Unreadable entries are skipped.
func ScanWithOptions(root string, opts Options, cb VisitFunc) error {
	ignore := make(map[string]bool, len(opts.IgnoreDirs))
	for _, d := range opts.IgnoreDirs {
		if d = strings.TrimSpace(d); d != "" {
			ignore[d] = true
		}
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if path == root {
			return nil
		}
		if d.IsDir() && (skipDirs[d.Name()] || ignore[d.Name()]) {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		cb(FileVisit{Path: filepath.ToSlash(rel), IsDir: d.IsDir()})
		return nil
	})
}
