package extract

import (
	"regexp"
	"strings"

	t "neotables/internal/types"
)

const contractMethodAttr = "[ContractMethod"

// maxPendingLines bounds how far below its attribute a signature is looked
// for, attribute continuation lines included.
const maxPendingLines = 8

var (
	reMethodSignature = regexp.MustCompile(`(?:public|internal|protected|private)\s+(?:async\s+)?(?:static\s+)?(?P<ret>\([^()]*\)[\w<>\[\]?]*|[\w<>\[\],\s]+)\s+(?P<name>[A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	reNameOverride    = regexp.MustCompile(`\bName\s*=\s*"(?P<name>[^"]+)"`)

	sigName = reMethodSignature.SubexpIndex("name")
	sigRet  = reMethodSignature.SubexpIndex("ret")
)

func group(s string, loc []int, i int) string {
	return s[loc[2*i]:loc[2*i+1]]
}

type methodState int

const (
	stateIdle methodState = iota
	statePending
)

// methodScanner walks a file line by line. A [ContractMethod line moves it
// to pending; the next buffered text that reads as a method signature emits
// one registration and moves it back to idle. A property or field
// declaration, or maxPendingLines lines without a signature, also returns
// it to idle.
type methodScanner struct {
	state    methodState
	override string
	buf      []string

	out  []t.MethodRegistration
	seen map[string]bool
}

// ParseContractMethods returns every [ContractMethod]-attributed method in
// text, in declaration order, unique by exposed name.
func ParseContractMethods(text string) []t.MethodRegistration {
	s := &methodScanner{seen: map[string]bool{}}
	for _, line := range strings.Split(text, "\n") {
		s.feed(strings.TrimSpace(line))
	}
	return s.out
}

func (s *methodScanner) feed(line string) {
	if strings.HasPrefix(line, contractMethodAttr) {
		s.state = statePending
		s.override = nameOverride(line)
		s.buf = s.buf[:0]
		return
	}
	if s.state != statePending {
		return
	}
	// stacked attributes and comments between the attribute and the method
	if strings.HasPrefix(line, "[") || strings.HasPrefix(line, "//") || line == "" {
		return
	}
	if s.override == "" && !strings.Contains(line, "(") {
		// multi-line attribute arguments may carry the override
		s.override = nameOverride(line)
	}
	s.buf = append(s.buf, line)
	if !strings.Contains(line, "(") {
		// a property or field under the attribute is not a method
		if strings.ContainsAny(line, "{;") || strings.Contains(line, "=>") || len(s.buf) >= maxPendingLines {
			s.reset()
		}
		return
	}
	joined := strings.Join(s.buf, " ")
	loc := reMethodSignature.FindStringSubmatchIndex(joined)
	if loc == nil {
		if len(s.buf) >= maxPendingLines {
			s.reset()
		}
		return
	}
	declared := group(joined, loc, sigName)
	ret := strings.TrimSpace(group(joined, loc, sigRet))
	params, _ := paramList(joined[loc[1]:])

	exposed := declared
	if s.override != "" {
		exposed = s.override
	}
	if !s.seen[exposed] {
		s.seen[exposed] = true
		s.out = append(s.out, t.MethodRegistration{
			ExposedName:   exposed,
			HandlerSymbol: declared,
			ParamCount:    countParams(params),
			ReturnsValue:  returnsValue(ret),
		})
	}
	s.reset()
}

func (s *methodScanner) reset() {
	s.state = stateIdle
	s.override = ""
	s.buf = s.buf[:0]
}

func nameOverride(line string) string {
	m := reNameOverride.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return m[reNameOverride.SubexpIndex("name")]
}

// returnsValue reports whether a return-type token sequence produces a
// value on the evaluation stack.
func returnsValue(ret string) bool {
	fields := strings.Fields(ret)
	if len(fields) == 0 {
		return true
	}
	last := fields[len(fields)-1]
	return last != "void" && last != "Task" && last != "ContractTask"
}

// paramList returns the text between the opening parenthesis (already
// consumed) and its matching close. closed is false when the list does not
// end within s, in which case the visible remainder is returned.
func paramList(s string) (string, bool) {
	depth := 1
	for i, r := range s {
		switch r {
		case '(', '<', '[':
			depth++
		case ')', '>', ']':
			depth--
			if depth == 0 {
				return s[:i], true
			}
		}
	}
	return s, false
}

// countParams counts top-level parameters, skipping the implicit engine
// and snapshot parameters native handlers receive.
func countParams(list string) int {
	if strings.TrimSpace(list) == "" {
		return 0
	}
	n := 0
	depth := 0
	start := 0
	parts := []string{}
	for i, r := range list {
		switch r {
		case '(', '<', '[':
			depth++
		case ')', '>', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, list[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, list[start:])
	for _, p := range parts {
		fields := strings.Fields(p)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "ApplicationEngine", "DataCache", "IReadOnlyStore":
			continue
		}
		n++
	}
	return n
}
