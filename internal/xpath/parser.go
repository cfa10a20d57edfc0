package xpath

import (
	"strings"

	"go.uber.org/zap"
)

// axisKeywords maps explicit axis:: prefixes to axes. Longer keywords are
// listed first so "following-sibling" never matches as "following".
var axisKeywords = []struct {
	kw   string
	axis Axis
}{
	{"following-sibling", AxisFollowingSibling},
	{"preceding-sibling", AxisPrecedingSibling},
	{"following", AxisFollowing},
	{"preceding", AxisPreceding},
	{"ancestor", AxisAncestor},
	{"parent", AxisParent},
	{"self", AxisSelf},
}

// Parse turns an expression into location steps. It never fails: when no
// further step can be consumed the remaining tail is dropped and logged at
// warn, and whatever parsed so far is returned.
func Parse(expr string, log *zap.Logger) []Step {
	if log == nil {
		log = zap.NewNop()
	}
	s := strings.TrimSpace(expr)
	var steps []Step
	for s != "" {
		step, rest, ok := parseStep(s)
		if !ok {
			log.Warn("dropping unparseable selector tail",
				zap.String("expression", expr),
				zap.String("tail", s))
			break
		}
		steps = append(steps, step)
		s = strings.TrimSpace(rest)
	}
	return steps
}

// SplitUnion splits a full expression on top-level | operators. Quotes and
// brackets suspend the split, so literals like [text()='a|b'] stay intact.
func SplitUnion(expr string) []string {
	var branches []string
	for _, part := range splitTop(expr, "|") {
		if part = strings.TrimSpace(part); part != "" {
			branches = append(branches, part)
		}
	}
	return branches
}

// parseStep consumes one leading axis marker, exactly one node test, and
// any bracketed predicates.
func parseStep(s string) (Step, string, bool) {
	step := Step{Axis: AxisChild}

	switch {
	case strings.HasPrefix(s, ".//"):
		step.Axis = AxisDescendant
		s = s[3:]
	case strings.HasPrefix(s, "./"):
		step.Axis = AxisChild
		s = s[2:]
	case strings.HasPrefix(s, ".."):
		// A complete parent step; only predicates may follow.
		step.Axis = AxisParent
		step.Test = NodeTest{Kind: TestAnyNode}
		s = parsePredicates(&step, s[2:])
		return step, s, true
	case strings.HasPrefix(s, "."):
		step.Axis = AxisSelf
		step.Test = NodeTest{Kind: TestAnyNode}
		s = parsePredicates(&step, s[1:])
		return step, s, true
	case strings.HasPrefix(s, "//"):
		step.Axis = AxisDescendant
		s = s[2:]
	case strings.HasPrefix(s, "/"):
		step.Axis = AxisChild
		s = s[1:]
	}

	// An explicit axis keyword wins over whatever the marker implied.
	if kw, rest, ok := cutAxisKeyword(s); ok {
		step.Axis = kw
		s = rest
	}

	test, rest, ok := parseNodeTest(s)
	if !ok {
		return Step{}, s, false
	}
	if test.Kind == TestName && strings.HasPrefix(s, "@") {
		step.Axis = AxisAttribute
	}
	step.Test = test
	s = parsePredicates(&step, rest)
	return step, s, true
}

func cutAxisKeyword(s string) (Axis, string, bool) {
	for _, a := range axisKeywords {
		if rest, ok := strings.CutPrefix(s, a.kw+"::"); ok {
			return a.axis, rest, true
		}
	}
	return 0, s, false
}

func parseNodeTest(s string) (NodeTest, string, bool) {
	switch {
	case strings.HasPrefix(s, "@"):
		name := takeIdent(s[1:])
		if name == "" {
			return NodeTest{}, s, false
		}
		return NodeTest{Kind: TestName, Name: name}, s[1+len(name):], true
	case strings.HasPrefix(s, "text()"):
		return NodeTest{Kind: TestText}, s[len("text()"):], true
	case strings.HasPrefix(s, "node()"):
		return NodeTest{Kind: TestAnyNode}, s[len("node()"):], true
	case strings.HasPrefix(s, "*"):
		return NodeTest{Kind: TestWildcard}, s[1:], true
	default:
		name := takeIdent(s)
		if name == "" {
			return NodeTest{}, s, false
		}
		return NodeTest{Kind: TestName, Name: name}, s[len(name):], true
	}
}

// parsePredicates consumes bracketed predicates. A bracket without a
// matching close swallows the rest of the input and is dropped silently;
// an unrecognized body is skipped, never an error.
func parsePredicates(step *Step, s string) string {
	for strings.HasPrefix(s, "[") {
		end := matchBracket(s)
		if end < 0 {
			return ""
		}
		if p, ok := parsePredicate(s[1:end]); ok {
			step.Preds = append(step.Preds, p)
		}
		s = s[end+1:]
	}
	return s
}

// matchBracket returns the index of the ] closing s[0], or -1. Quotes of
// either kind suspend bracket counting.
func matchBracket(s string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
