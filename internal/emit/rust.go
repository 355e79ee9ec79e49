package emit

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	t "neotables/internal/types"
)

var rustSyscalls = template.Must(template.New("syscalls.rs").Funcs(funcs).Funcs(template.FuncMap{"str": rustString}).Parse(
	`// This file is @generated by neotables. Do not edit manually.

pub struct SyscallInfo {
    pub hash: u32,
    pub name: &'static str,
    pub handler: &'static str,
    pub price: &'static str,
    pub call_flags: &'static str,
    pub returns_value: bool,
    /// Number of evaluation-stack arguments consumed by this syscall.
    pub param_count: u8,
}

pub const SYSCALLS: &[SyscallInfo] = &[
{{- range .}}
    SyscallInfo { hash: {{hex32 .Hash}}, name: {{str .Name}}, handler: {{str .Handler}}, price: {{str .Price}}, call_flags: {{str .CallFlags}}, returns_value: {{.ReturnsValue}}, param_count: {{.ParamCount}} },
{{- end}}
];
`))

var rustContracts = template.Must(template.New("native_contracts.rs").Funcs(funcs).Funcs(template.FuncMap{"str": rustString, "strs": rustStrings}).Parse(
	`// This file is @generated by neotables. Do not edit manually.

pub struct NativeContractInfo {
    pub name: &'static str,
    pub script_hash: [u8; 20],
    pub methods: &'static [&'static str],
}

pub const NATIVE_CONTRACTS: &[NativeContractInfo] = &[
{{- range .}}
    NativeContractInfo {
        name: {{str .Name}},
        script_hash: [{{hashBytes .ScriptHash}}],
        methods: &[{{strs .Methods}}],
    },
{{- end}}
];
`))

// RustRenderer emits `pub const` slices of static structs.
type RustRenderer struct{}

func (RustRenderer) Language() string { return "rust" }

func (RustRenderer) FileName(table Table) string { return fileName(table, "rs") }

func (RustRenderer) RenderSyscalls(recs []t.SyscallRecord) ([]byte, error) {
	return execute(rustSyscalls, recs)
}

func (RustRenderer) RenderContracts(recs []t.NativeContractRecord) ([]byte, error) {
	return execute(rustContracts, recs)
}

func execute(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("emit: render %s: %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

var rustEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)

func rustString(s string) string {
	return `"` + rustEscaper.Replace(s) + `"`
}

func rustStrings(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = rustString(s)
	}
	return strings.Join(q, ", ")
}
