package xpath

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Evaluate applies parsed steps to a context node set as a left fold: each
// step consumes the previous step's nodes, one context node at a time, with
// outputs concatenated in context order. An empty step list (a selector
// that failed to parse) yields no results.
func Evaluate(steps []Step, context []*html.Node, log *zap.Logger) []Value {
	if log == nil {
		log = zap.NewNop()
	}
	if len(steps) == 0 {
		return nil
	}

	values := make([]Value, 0, len(context))
	for _, n := range context {
		values = append(values, Value{Node: n})
	}

	for _, step := range steps {
		var out []Value
		for _, v := range values {
			if v.Node == nil {
				// Attribute strings cannot seed further traversal.
				continue
			}
			out = append(out, applyStep(step, v.Node)...)
		}
		values = out
		if len(values) == 0 {
			break
		}
	}
	log.Debug("evaluated xpath steps",
		zap.Int("steps", len(steps)),
		zap.Int("matches", len(values)))
	return values
}

// applyStep computes one axis application for a single context node.
// Predicates see the node-test-filtered candidate list, so position() and
// last() are relative to this axis application only.
func applyStep(step Step, ctx *html.Node) []Value {
	if step.Axis == AxisAttribute {
		if val, ok := AttrValue(ctx, step.Test.Name); ok {
			return []Value{{Str: val}}
		}
		return nil
	}

	var candidates []*html.Node
	for _, n := range axisNodes(step.Axis, ctx) {
		if matchTest(n, step.Test) {
			candidates = append(candidates, n)
		}
	}

	var out []Value
	size := len(candidates)
	for i, n := range candidates {
		if holdsAll(step.Preds, n, i+1, size) {
			out = append(out, Value{Node: n})
		}
	}
	return out
}

func holdsAll(preds []Predicate, n *html.Node, pos, size int) bool {
	for _, p := range preds {
		if !holds(p, n, pos, size) {
			return false
		}
	}
	return true
}

// axisNodes returns the raw candidate set for an axis, before the node
// test. Only element and text nodes participate in the tree model.
func axisNodes(axis Axis, ctx *html.Node) []*html.Node {
	switch axis {
	case AxisChild:
		return children(ctx)
	case AxisDescendant:
		return descendants(ctx)
	case AxisSelf:
		return []*html.Node{ctx}
	case AxisParent:
		if ctx.Parent != nil {
			return []*html.Node{ctx.Parent}
		}
		return nil
	case AxisAncestor:
		var out []*html.Node
		for p := ctx.Parent; p != nil; p = p.Parent {
			out = append(out, p)
		}
		return out
	case AxisFollowingSibling:
		var out []*html.Node
		for s := ctx.NextSibling; s != nil; s = s.NextSibling {
			out = append(out, s)
		}
		return out
	case AxisPrecedingSibling:
		var out []*html.Node
		if ctx.Parent == nil {
			return nil
		}
		for s := ctx.Parent.FirstChild; s != nil && s != ctx; s = s.NextSibling {
			out = append(out, s)
		}
		return out
	case AxisFollowing:
		return documentOrder(ctx, false)
	case AxisPreceding:
		return documentOrder(ctx, true)
	}
	return nil
}

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func descendants(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			out = append(out, c)
			walk(c)
		}
	}
	walk(n)
	return out
}

// documentOrder collects every node strictly before (preceding=true) or
// after the context in a preorder walk of the whole tree, excluding the
// context's own ancestors and descendants.
func documentOrder(ctx *html.Node, preceding bool) []*html.Node {
	root := ctx
	for root.Parent != nil {
		root = root.Parent
	}
	ancestors := map[*html.Node]bool{}
	for p := ctx.Parent; p != nil; p = p.Parent {
		ancestors[p] = true
	}

	var out []*html.Node
	seen := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c == ctx {
				seen = true
				continue // skip the context subtree entirely
			}
			if preceding {
				if !seen && !ancestors[c] {
					out = append(out, c)
				}
			} else if seen {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	if preceding && !seen {
		// Context not reachable from its root; nothing is before it.
		return nil
	}
	return out
}

func matchTest(n *html.Node, t NodeTest) bool {
	switch t.Kind {
	case TestName:
		return n.Type == html.ElementNode && strings.EqualFold(n.Data, t.Name)
	case TestWildcard:
		return n.Type == html.ElementNode
	case TestText:
		return n.Type == html.TextNode
	case TestAnyNode:
		return n.Type == html.ElementNode || n.Type == html.TextNode
	}
	return false
}

// holds evaluates one predicate against a candidate with its 1-indexed
// position in the node-test-filtered list.
func holds(p Predicate, n *html.Node, pos, size int) bool {
	switch p := p.(type) {
	case positionPredicate:
		return pos == p.Pos
	case positionCmpPredicate:
		return cmpInt(pos, p.Op, p.Pos)
	case lastPredicate:
		return pos == size
	case attrPredicate:
		val, ok := AttrValue(n, p.Name)
		if p.Op == opExists {
			return ok
		}
		return strCompare(val, p.Op, p.Value)
	case textPredicate:
		t := NodeText(n)
		if p.Op == opExists {
			return t != ""
		}
		return strCompare(t, p.Op, p.Value)
	case normSpacePredicate:
		return normalizeSpace(NodeText(n)) == p.Value
	case substringPredicate:
		return substring(NodeText(n), p.Start, p.Length, p.HasLen) == p.Value
	case substringBeforePredicate:
		before, _, found := strings.Cut(NodeText(n), p.Sep)
		return found && before == p.Value
	case substringAfterPredicate:
		_, after, found := strings.Cut(NodeText(n), p.Sep)
		return found && after == p.Value
	case translatePredicate:
		return translate(NodeText(n), p.From, p.To) == p.Value
	case countPredicate:
		return cmpInt(countDescendants(n, p.Tag), p.Op, p.N)
	case stringLengthPredicate:
		return cmpInt(len([]rune(NodeText(n))), p.Op, p.N)
	case childPredicate:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && strings.EqualFold(c.Data, p.Name) {
				return true
			}
		}
		return false
	case notPredicate:
		return !holds(p.Inner, n, pos, size)
	case andPredicate:
		for _, sub := range p.Subs {
			if !holds(sub, n, pos, size) {
				return false
			}
		}
		return true
	case orPredicate:
		for _, sub := range p.Subs {
			if holds(sub, n, pos, size) {
				return true
			}
		}
		return false
	}
	return false
}

func cmpInt(a int, op cmpOp, b int) bool {
	switch op {
	case cmpEq:
		return a == b
	case cmpNe:
		return a != b
	case cmpLt:
		return a < b
	case cmpLe:
		return a <= b
	case cmpGt:
		return a > b
	case cmpGe:
		return a >= b
	}
	return false
}

func strCompare(val string, op strOp, lit string) bool {
	switch op {
	case opEq:
		return val == lit
	case opNe:
		return val != lit
	case opContains:
		return strings.Contains(val, lit)
	case opStartsWith:
		return strings.HasPrefix(val, lit)
	case opEndsWith:
		return strings.HasSuffix(val, lit)
	}
	return false
}

// NodeText returns the trimmed concatenated text content of a node's
// subtree (or the node's own payload for text nodes).
func NodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

// normalizeSpace collapses internal whitespace runs to single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// substring implements the 1-indexed XPath substring over runes, clamped
// to the source bounds.
func substring(s string, start, length int, hasLen bool) string {
	runes := []rune(s)
	from := start - 1
	to := len(runes)
	if hasLen {
		to = from + length
	}
	if from < 0 {
		from = 0
	}
	if to > len(runes) {
		to = len(runes)
	}
	if from >= len(runes) || to <= from {
		return ""
	}
	return string(runes[from:to])
}

// translate maps characters of from to the corresponding characters of to;
// characters of from with no counterpart are deleted.
func translate(s, from, to string) string {
	fromRunes := []rune(from)
	toRunes := []rune(to)
	repl := make(map[rune]rune, len(fromRunes))
	drop := make(map[rune]bool)
	for i, r := range fromRunes {
		if _, dup := repl[r]; dup || drop[r] {
			continue
		}
		if i < len(toRunes) {
			repl[r] = toRunes[i]
		} else {
			drop[r] = true
		}
	}
	var b strings.Builder
	for _, r := range s {
		if drop[r] {
			continue
		}
		if mapped, ok := repl[r]; ok {
			b.WriteRune(mapped)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// countDescendants counts elements with the tag name anywhere in the
// subtree, not just direct children.
func countDescendants(n *html.Node, tag string) int {
	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && strings.EqualFold(c.Data, tag) {
				count++
			}
			walk(c)
		}
	}
	walk(n)
	return count
}

func AttrValue(n *html.Node, name string) (string, bool) {
	if n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}
