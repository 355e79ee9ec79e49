package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"strconv"
	"strings"
	"text/template"

	t "neotables/internal/types"
)

const goHeader = "// Code generated by neotables. DO NOT EDIT.\n"

var goSyscalls = template.Must(template.New("syscalls.go").Funcs(funcs).Funcs(template.FuncMap{"quote": strconv.Quote}).Parse(goHeader + `
package {{.Package}}

// SyscallInfo describes one interop service.
type SyscallInfo struct {
	Hash uint32
	Name string
	Handler string
	Price string
	CallFlags string
	ReturnsValue bool
	// ParamCount is the number of evaluation-stack arguments consumed.
	ParamCount uint8
}

// Syscalls is sorted by Hash, then Name.
var Syscalls = []SyscallInfo{
{{- range .Records}}
	{Hash: {{hex32 .Hash}}, Name: {{quote .Name}}, Handler: {{quote .Handler}}, Price: {{quote .Price}}, CallFlags: {{quote .CallFlags}}, ReturnsValue: {{.ReturnsValue}}, ParamCount: {{.ParamCount}}},
{{- end}}
}
`))

var goContracts = template.Must(template.New("native_contracts.go").Funcs(funcs).Funcs(template.FuncMap{"quote": strconv.Quote, "quoteAll": quoteAll}).Parse(goHeader + `
package {{.Package}}

// NativeContractInfo describes one native contract and the methods it
// exposes.
type NativeContractInfo struct {
	Name string
	ScriptHash [20]byte
	Methods []string
}

// NativeContracts is sorted by ScriptHash.
var NativeContracts = []NativeContractInfo{
{{- range .Records}}
	{Name: {{quote .Name}}, ScriptHash: [20]byte{ {{- hashBytes .ScriptHash -}} }, Methods: []string{ {{- quoteAll .Methods -}} }},
{{- end}}
}
`))

// GoRenderer emits gofmt'ed Go source declaring package-level tables.
type GoRenderer struct {
	Package string
}

func (g GoRenderer) Language() string { return "go" }

func (g GoRenderer) FileName(table Table) string { return fileName(table, "go") }

func (g GoRenderer) pkg() string {
	if g.Package == "" {
		return "neotables"
	}
	return g.Package
}

func (g GoRenderer) RenderSyscalls(recs []t.SyscallRecord) ([]byte, error) {
	return g.render(goSyscalls, recs)
}

func (g GoRenderer) RenderContracts(recs []t.NativeContractRecord) ([]byte, error) {
	return g.render(goContracts, recs)
}

func (g GoRenderer) render(tmpl *template.Template, recs any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{"Package": g.pkg(), "Records": recs}); err != nil {
		return nil, fmt.Errorf("emit: render %s: %w", tmpl.Name(), err)
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("emit: gofmt %s: %w", tmpl.Name(), err)
	}
	return out, nil
}

func quoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = strconv.Quote(s)
	}
	return strings.Join(q, ", ")
}
