// Package extract pulls structured facts out of C# source text with regular
// expressions. Every matcher is total: text without the expected structure
// yields an empty result, never an error.
package extract

import (
	"regexp"
	"strings"

	t "neotables/internal/types"
)

var (
	reClassDecl = regexp.MustCompile(`(?m)^[ \t]*(?:(?:public|internal|private|protected|sealed|abstract|static|partial|unsafe|readonly)\s+)*class\s+(?P<name>[A-Za-z_][A-Za-z0-9_]*)(?:\s*<[^>{]*>)?(?:\s*:\s*(?P<bases>[^{;]*))?`)
	reWhere     = regexp.MustCompile(`\bwhere\b`)

	reRegister = regexp.MustCompile(`Register\("(?P<name>[^"]+)",\s*(?:nameof\()?(?P<handler>[A-Za-z0-9_\.]+)\)?\s*,\s*(?P<price>[^,]+),\s*(?P<flags>CallFlags\.[A-Za-z0-9_\s|&^\.]+)(?:,\s*Hardfork\.[A-Za-z0-9_]+)?\)`)

	reContractRoot = regexp.MustCompile(`public\s+static\s+(?P<class>[A-Za-z0-9_]+)\s+(?P<name>[A-Za-z0-9_]+)\s*\{\s*get;\s*\}\s*=\s*new\(\);`)
)

// ParseClassDeclaration returns the name and bases of the first class
// declared in text. ok is false when no declaration is present, e.g. for a
// partial-class fragment without a header.
func ParseClassDeclaration(text string) (rec t.ClassRecord, ok bool) {
	m := reClassDecl.FindStringSubmatch(text)
	if m == nil {
		return t.ClassRecord{}, false
	}
	rec.Name = m[reClassDecl.SubexpIndex("name")]
	rec.Bases = splitBases(m[reClassDecl.SubexpIndex("bases")])
	return rec, true
}

// splitBases reads a base list up to any "where" constraint. Generic
// arguments are dropped, each entry keeps its first token, and qualified
// names are reduced to their last segment.
func splitBases(raw string) []string {
	if loc := reWhere.FindStringIndex(raw); loc != nil {
		raw = raw[:loc[0]]
	}
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(stripGenerics(raw), ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func stripGenerics(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseSyscallRegistrations finds every Register("name", handler, price,
// CallFlags...) call-site in text, in source order.
func ParseSyscallRegistrations(text string) []t.SyscallRegistration {
	var out []t.SyscallRegistration
	for _, m := range reRegister.FindAllStringSubmatch(text, -1) {
		out = append(out, t.SyscallRegistration{
			Name:          m[reRegister.SubexpIndex("name")],
			Handler:       m[reRegister.SubexpIndex("handler")],
			PriceExpr:     collapseSpace(m[reRegister.SubexpIndex("price")]),
			CallFlagsExpr: collapseSpace(m[reRegister.SubexpIndex("flags")]),
		})
	}
	return out
}

// ParseContractRoots returns the declared types of the static singleton
// properties (public static T Name { get; } = new();) in source order.
func ParseContractRoots(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range reContractRoot.FindAllStringSubmatch(text, -1) {
		class := m[reContractRoot.SubexpIndex("class")]
		if seen[class] {
			continue
		}
		seen[class] = true
		out = append(out, class)
	}
	return out
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
