package emit

import (
	"fmt"
	"strings"
	"text/template"

	t "neotables/internal/types"
)

// Table names an emitted table. It is also the stem of its file names.
type Table string

const (
	TableSyscalls  Table = "syscalls"
	TableContracts Table = "native_contracts"
)

// Renderer renders tables as source code for one target language.
type Renderer interface {
	// Language returns the language name, e.g. "go" or "rust".
	Language() string
	// FileName returns the generated file name for table,
	// e.g. "syscalls_generated.go".
	FileName(table Table) string
	RenderSyscalls(recs []t.SyscallRecord) ([]byte, error)
	RenderContracts(recs []t.NativeContractRecord) ([]byte, error)
}

// NewRenderer returns the renderer for lang. pkg is the Go package name
// and is ignored by other languages.
func NewRenderer(lang, pkg string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "go", "golang":
		return GoRenderer{Package: pkg}, nil
	case "rust", "rs":
		return RustRenderer{}, nil
	default:
		return nil, fmt.Errorf("emit: unsupported language %q", lang)
	}
}

func fileName(table Table, ext string) string {
	return string(table) + "_generated." + ext
}

func hashBytes(h t.ScriptHash) string {
	parts := make([]string, len(h))
	for i, b := range h {
		parts[i] = fmt.Sprintf("0x%02X", b)
	}
	return strings.Join(parts, ", ")
}

var funcs = template.FuncMap{
	"hex32":     func(v uint32) string { return fmt.Sprintf("0x%08X", v) },
	"hashBytes": hashBytes,
}
