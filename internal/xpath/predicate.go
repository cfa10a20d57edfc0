package xpath

import (
	"strconv"
	"strings"
)

// Predicate is a closed set of bracket-filter forms. Evaluation is an
// exhaustive type switch in eval.go; adding a form means adding a struct
// here, a recognizer in parsePredicate, and a case there.
type Predicate interface{ pred() }

// strOp compares a string source (attribute value or text content) to a
// literal.
type strOp int

const (
	opExists strOp = iota
	opEq
	opNe
	opContains
	opStartsWith
	opEndsWith
)

// cmpOp compares a numeric source (position, count, string-length) to an
// integer.
type cmpOp int

const (
	cmpEq cmpOp = iota
	cmpNe
	cmpLt
	cmpLe
	cmpGt
	cmpGe
)

type positionPredicate struct{ Pos int }                     // [3]
type positionCmpPredicate struct {                           // [position() > 1]
	Op  cmpOp
	Pos int
}
type lastPredicate struct{}                                  // [last()], [position()=last()]
type attrPredicate struct {                                  // [@href], [@href='x'], [contains(@class,'x')], ...
	Name  string
	Op    strOp
	Value string
}
type textPredicate struct {                                  // [text()='x'], [contains(text(),'x')], ...
	Op    strOp
	Value string
}
type normSpacePredicate struct{ Value string }               // [normalize-space(text())='x']
type substringPredicate struct {                             // [substring(text(),2,3)='x']
	Start  int
	Length int
	HasLen bool
	Value  string
}
type substringBeforePredicate struct{ Sep, Value string }    // [substring-before(text(),'-')='x']
type substringAfterPredicate struct{ Sep, Value string }     // [substring-after(text(),'-')='x']
type translatePredicate struct{ From, To, Value string }     // [translate(text(),'abc','ABC')='X']
type countPredicate struct {                                 // [count(li) > 2]
	Tag string
	Op  cmpOp
	N   int
}
type stringLengthPredicate struct {                          // [string-length(text()) > 5]
	Op cmpOp
	N  int
}
type childPredicate struct{ Name string }                    // [li] — has a child element <li>
type notPredicate struct{ Inner Predicate }                  // [not(...)]
type andPredicate struct{ Subs []Predicate }
type orPredicate struct{ Subs []Predicate }

func (positionPredicate) pred()        {}
func (positionCmpPredicate) pred()     {}
func (lastPredicate) pred()            {}
func (attrPredicate) pred()            {}
func (textPredicate) pred()            {}
func (normSpacePredicate) pred()       {}
func (substringPredicate) pred()       {}
func (substringBeforePredicate) pred() {}
func (substringAfterPredicate) pred()  {}
func (translatePredicate) pred()       {}
func (countPredicate) pred()           {}
func (stringLengthPredicate) pred()    {}
func (childPredicate) pred()           {}
func (notPredicate) pred()             {}
func (andPredicate) pred()             {}
func (orPredicate) pred()              {}

// parsePredicate turns one bracket body into a Predicate. Unrecognized
// bodies return false and are dropped by the caller; that fallback is the
// contract, not an error path.
func parsePredicate(body string) (Predicate, bool) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, false
	}

	if parts := splitTop(body, " or "); len(parts) > 1 {
		subs := parseAll(parts)
		return combine(subs, func(s []Predicate) Predicate { return orPredicate{Subs: s} })
	}
	if parts := splitTop(body, " and "); len(parts) > 1 {
		subs := parseAll(parts)
		return combine(subs, func(s []Predicate) Predicate { return andPredicate{Subs: s} })
	}
	return parseSimplePredicate(body)
}

func parseAll(parts []string) []Predicate {
	var subs []Predicate
	for _, part := range parts {
		if p, ok := parsePredicate(part); ok {
			subs = append(subs, p)
		}
	}
	return subs
}

func combine(subs []Predicate, wrap func([]Predicate) Predicate) (Predicate, bool) {
	switch len(subs) {
	case 0:
		return nil, false
	case 1:
		return subs[0], true
	default:
		return wrap(subs), true
	}
}

func parseSimplePredicate(body string) (Predicate, bool) {
	// Bare integer: position index.
	if n, err := strconv.Atoi(body); err == nil && n > 0 {
		return positionPredicate{Pos: n}, true
	}

	if body == "last()" {
		return lastPredicate{}, true
	}

	if rest, ok := strings.CutPrefix(body, "position()"); ok {
		return parsePositionCmp(rest)
	}

	// Attribute shorthand: existence or literal comparison.
	if rest, ok := strings.CutPrefix(body, "@"); ok {
		return parseAttrCmp(rest)
	}

	if rest, ok := strings.CutPrefix(body, "text()"); ok {
		op, lit, ok := parseStrCmp(rest)
		if !ok {
			return nil, false
		}
		return textPredicate{Op: op, Value: lit}, true
	}

	// Function-call forms.
	if name, args, rest, ok := parseCall(body); ok {
		return parseFuncPredicate(name, args, rest)
	}

	// Bare identifier: child-existence test.
	if isIdent(body) {
		return childPredicate{Name: body}, true
	}

	return nil, false
}

func parsePositionCmp(rest string) (Predicate, bool) {
	op, rhs, ok := parseCmpOp(rest)
	if !ok {
		return nil, false
	}
	if rhs == "last()" {
		if op == cmpEq {
			return lastPredicate{}, true
		}
		return nil, false
	}
	n, err := strconv.Atoi(rhs)
	if err != nil {
		return nil, false
	}
	return positionCmpPredicate{Op: op, Pos: n}, true
}

func parseAttrCmp(rest string) (Predicate, bool) {
	name := takeIdent(rest)
	if name == "" {
		return nil, false
	}
	tail := strings.TrimSpace(rest[len(name):])
	if tail == "" {
		return attrPredicate{Name: name, Op: opExists}, true
	}
	op, lit, ok := parseStrCmp(tail)
	if !ok || op == opExists {
		return nil, false
	}
	return attrPredicate{Name: name, Op: op, Value: lit}, true
}

// parseFuncPredicate dispatches on the function name of a recognized call.
func parseFuncPredicate(name string, args []string, rest string) (Predicate, bool) {
	rest = strings.TrimSpace(rest)

	switch name {
	case "not":
		if len(args) != 1 || rest != "" {
			return nil, false
		}
		inner, ok := parsePredicate(args[0])
		if !ok {
			return nil, false
		}
		return notPredicate{Inner: inner}, true

	case "contains", "starts-with", "ends-with":
		if len(args) != 2 || rest != "" {
			return nil, false
		}
		lit, ok := literal(args[1])
		if !ok {
			return nil, false
		}
		op := map[string]strOp{"contains": opContains, "starts-with": opStartsWith, "ends-with": opEndsWith}[name]
		if attr, ok := strings.CutPrefix(args[0], "@"); ok && isIdent(attr) {
			return attrPredicate{Name: attr, Op: op, Value: lit}, true
		}
		if isTextSource(args[0]) {
			return textPredicate{Op: op, Value: lit}, true
		}
		return nil, false

	case "normalize-space":
		if len(args) > 1 {
			return nil, false
		}
		if len(args) == 1 && args[0] != "" && !isTextSource(args[0]) {
			return nil, false
		}
		lit, ok := eqLiteral(rest)
		if !ok {
			return nil, false
		}
		return normSpacePredicate{Value: lit}, true

	case "substring":
		if len(args) < 2 || len(args) > 3 || !isTextSource(args[0]) {
			return nil, false
		}
		start, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil {
			return nil, false
		}
		p := substringPredicate{Start: start}
		if len(args) == 3 {
			length, err := strconv.Atoi(strings.TrimSpace(args[2]))
			if err != nil {
				return nil, false
			}
			p.Length, p.HasLen = length, true
		}
		lit, ok := eqLiteral(rest)
		if !ok {
			return nil, false
		}
		p.Value = lit
		return p, true

	case "substring-before", "substring-after":
		if len(args) != 2 || !isTextSource(args[0]) {
			return nil, false
		}
		sep, ok := literal(args[1])
		if !ok {
			return nil, false
		}
		lit, ok := eqLiteral(rest)
		if !ok {
			return nil, false
		}
		if name == "substring-before" {
			return substringBeforePredicate{Sep: sep, Value: lit}, true
		}
		return substringAfterPredicate{Sep: sep, Value: lit}, true

	case "translate":
		if len(args) != 3 || !isTextSource(args[0]) {
			return nil, false
		}
		from, ok1 := literal(args[1])
		to, ok2 := literal(args[2])
		lit, ok3 := eqLiteral(rest)
		if !ok1 || !ok2 || !ok3 {
			return nil, false
		}
		return translatePredicate{From: from, To: to, Value: lit}, true

	case "count":
		if len(args) != 1 || !isIdent(args[0]) {
			return nil, false
		}
		op, rhs, ok := parseCmpOp(rest)
		if !ok {
			return nil, false
		}
		n, err := strconv.Atoi(rhs)
		if err != nil {
			return nil, false
		}
		return countPredicate{Tag: args[0], Op: op, N: n}, true

	case "string-length":
		if len(args) > 1 || (len(args) == 1 && args[0] != "" && !isTextSource(args[0])) {
			return nil, false
		}
		op, rhs, ok := parseCmpOp(rest)
		if !ok {
			return nil, false
		}
		n, err := strconv.Atoi(rhs)
		if err != nil {
			return nil, false
		}
		return stringLengthPredicate{Op: op, N: n}, true
	}

	return nil, false
}

// isTextSource reports whether a function operand refers to the context
// node's text: text() or the context itself.
func isTextSource(arg string) bool {
	arg = strings.TrimSpace(arg)
	return arg == "text()" || arg == "."
}

// parseCall splits "name(a, b)..." into its parts. The argument list is
// comma-split at depth 0 only, so nested calls and quoted commas survive.
func parseCall(s string) (name string, args []string, rest string, ok bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 {
		return "", nil, "", false
	}
	name = s[:open]
	if !isFuncName(name) {
		return "", nil, "", false
	}
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				inner := s[open+1 : i]
				if strings.TrimSpace(inner) == "" {
					args = nil
				} else {
					for _, a := range splitTop(inner, ",") {
						args = append(args, strings.TrimSpace(a))
					}
				}
				return name, args, s[i+1:], true
			}
		}
	}
	return "", nil, "", false
}

// parseStrCmp reads an optional =/!= operator followed by a quoted literal.
func parseStrCmp(s string) (strOp, string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return opExists, "", true
	}
	op := opEq
	if rest, ok := strings.CutPrefix(s, "!="); ok {
		op, s = opNe, rest
	} else if rest, ok := strings.CutPrefix(s, "="); ok {
		s = rest
	} else {
		return 0, "", false
	}
	lit, ok := literal(strings.TrimSpace(s))
	if !ok {
		return 0, "", false
	}
	return op, lit, true
}

// eqLiteral reads "= 'literal'" and nothing else.
func eqLiteral(s string) (string, bool) {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, "=")
	if !ok {
		return "", false
	}
	return literal(strings.TrimSpace(rest))
}

// parseCmpOp reads a comparison operator and returns the trimmed right side.
func parseCmpOp(s string) (cmpOp, string, bool) {
	s = strings.TrimSpace(s)
	ops := []struct {
		tok string
		op  cmpOp
	}{
		{"!=", cmpNe},
		{"<=", cmpLe},
		{">=", cmpGe},
		{"=", cmpEq},
		{"<", cmpLt},
		{">", cmpGt},
	}
	for _, o := range ops {
		if rest, ok := strings.CutPrefix(s, o.tok); ok {
			return o.op, strings.TrimSpace(rest), true
		}
	}
	return 0, "", false
}

// literal unwraps a single- or double-quoted string. The whole input must
// be the literal.
func literal(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if (q != '\'' && q != '"') || s[len(s)-1] != q {
		return "", false
	}
	inner := s[1 : len(s)-1]
	if strings.IndexByte(inner, q) >= 0 {
		return "", false
	}
	return inner, true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == ':'):
		default:
			return false
		}
	}
	return true
}

func isFuncName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r == '-') {
			return false
		}
	}
	return true
}

// takeIdent returns the leading identifier of s, or "".
func takeIdent(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_':
		case i > 0 && (c >= '0' && c <= '9' || c == '-' || c == ':'):
		default:
			return s[:i]
		}
	}
	return s
}

// splitTop splits s on sep at bracket/paren depth 0 outside quotes. Both
// quote kinds suspend depth counting, so literals are never mis-split.
func splitTop(s, sep string) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			i++
		case c == '\'' || c == '"':
			quote = c
			i++
		case c == '[' || c == '(':
			depth++
			i++
		case c == ']' || c == ')':
			depth--
			i++
		case depth == 0 && strings.HasPrefix(s[i:], sep):
			parts = append(parts, s[start:i])
			i += len(sep)
			start = i
		default:
			i++
		}
	}
	parts = append(parts, s[start:])
	return parts
}
