package scan

import (
	"path"
	"sort"
	"strings"
)

// RepoTree is a flat, sorted index of the file paths under Root.
type RepoTree struct {
	Root  string
	Files []string
}

// Scan indexes the text files under root, honouring opts.
func Scan(root string, opts Options) (RepoTree, error) {
	var files []string
	err := ScanWithOptions(root, opts, func(fv FileVisit) {
		if fv.IsDir || isBinary(fv.Path) {
			return
		}
		files = append(files, fv.Path)
	})
	sort.Strings(files)
	return RepoTree{Root: root, Files: files}, err
}

// WithPrefix returns the files whose base name starts with prefix, in path
// order. A class split into "NeoToken.cs" and "NeoToken.Candidates.cs" is
// found with the prefix "NeoToken.".
func (r RepoTree) WithPrefix(prefix string) []string {
	var out []string
	for _, f := range r.Files {
		if strings.HasPrefix(path.Base(f), prefix) {
			out = append(out, f)
		}
	}
	return out
}

func isBinary(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".ico", ".svg",
		".dll", ".exe", ".so", ".dylib", ".pdb", ".nupkg",
		".zip", ".gz", ".tgz", ".7z", ".nef":
		return true
	}
	return false
}
