package docquery

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/bytedance/sonic"
	"github.com/jmespath/go-jmespath"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/docquery/docquery/internal/xpath"
)

// Selector is an ordered, possibly empty view over matched values. It is
// immutable: every transformation returns a new Selector sharing the same
// document. The one exception is Remove, which mutates the shared tree.
type Selector struct {
	doc   *Document
	items []xpath.Value
	query string // the expression that produced this set, for diagnostics
	mode  extractMode
}

func (s *Selector) derive(query string, items []xpath.Value, mode extractMode) *Selector {
	return &Selector{doc: s.doc, items: items, query: query, mode: mode}
}

func (s *Selector) empty(query string) *Selector {
	return s.derive(query, nil, modeNode)
}

// Ok reports whether anything matched. Ok is always Count() > 0.
func (s *Selector) Ok() bool { return len(s.items) > 0 }

// Count returns the number of matched values.
func (s *Selector) Count() int { return len(s.items) }

// Query returns the expression that produced this Selector.
func (s *Selector) Query() string { return s.query }

// Get returns the first matched value, or the empty string when nothing
// matched. It never fails.
func (s *Selector) Get() string {
	if len(s.items) == 0 {
		return ""
	}
	return stringify(s.items[0])
}

// GetOr returns the first matched value, or def when nothing matched.
func (s *Selector) GetOr(def string) string {
	if len(s.items) == 0 {
		return def
	}
	return stringify(s.items[0])
}

// GetAll returns every matched value, realized eagerly.
func (s *Selector) GetAll() []string {
	out := make([]string, 0, len(s.items))
	for _, v := range s.items {
		out = append(out, stringify(v))
	}
	return out
}

// contextNodes returns the still-attached tree nodes of this result set;
// string values and removed nodes cannot seed further queries.
func (s *Selector) contextNodes() []*html.Node {
	var nodes []*html.Node
	for _, v := range s.items {
		if v.IsNode() && s.doc.attached(v.Node) {
			nodes = append(nodes, v.Node)
		}
	}
	return nodes
}

// CSS queries the current result set with a CSS selector, delegating the
// base clause to the native matcher. A selector the matcher rejects yields
// an empty Selector and a warning, never an error.
func (s *Selector) CSS(query string) *Selector {
	base, mode, attrName := splitPseudo(query)
	sel, err := cascadia.Parse(base)
	if err != nil {
		s.doc.log.Warn("invalid css selector",
			zap.String("selector", query),
			zap.Error(err))
		return s.empty(query)
	}

	var raw []xpath.Value
	seen := map[*html.Node]bool{}
	for _, ctx := range s.contextNodes() {
		var walk func(*html.Node)
		walk = func(n *html.Node) {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && sel.Match(c) && !seen[c] {
					seen[c] = true
					raw = append(raw, xpath.Value{Node: c})
				}
				walk(c)
			}
		}
		walk(ctx)
	}
	return s.derive(query, extract(raw, mode, attrName), mode)
}

// XPath queries the current result set with an XPath-subset expression.
// Top-level | branches evaluate independently; node results de-duplicate
// by identity across branches while string results never do.
func (s *Selector) XPath(query string) *Selector {
	ctx := s.contextNodes()
	mode := modeNode

	var out []xpath.Value
	seen := map[*html.Node]bool{}
	for _, branch := range xpath.SplitUnion(query) {
		base, branchMode, attrName := splitPseudo(branch)
		mode = branchMode
		steps := xpath.Parse(base, s.doc.log.Logger)
		values := extract(xpath.Evaluate(steps, ctx, s.doc.log.Logger), branchMode, attrName)
		for _, v := range values {
			if v.IsNode() {
				if seen[v.Node] {
					continue
				}
				seen[v.Node] = true
			}
			out = append(out, v)
		}
	}
	return s.derive(query, out, mode)
}

// Or returns the receiver when it matched anything, else the fallback.
func (s *Selector) Or(fallback *Selector) *Selector {
	if s.Ok() || fallback == nil {
		return s
	}
	return fallback
}

// Re projects every matched value through a regular expression. With
// capturing groups, only captured values are emitted (flattened across
// groups and source strings, unmatched optional groups skipped); without
// groups, full matches are emitted. Extraction is always global.
func (s *Selector) Re(pattern string) *Selector {
	re, err := s.doc.cachedRegex(pattern)
	if err != nil {
		s.doc.log.Warn("invalid regex pattern",
			zap.String("pattern", pattern),
			zap.Error(err))
		return s.empty(s.query)
	}

	var out []xpath.Value
	groups := re.NumSubexp()
	for _, src := range s.GetAll() {
		if groups == 0 {
			for _, m := range re.FindAllString(src, -1) {
				out = append(out, xpath.Value{Str: m})
			}
			continue
		}
		for _, m := range re.FindAllStringSubmatchIndex(src, -1) {
			for g := 1; g <= groups; g++ {
				if m[2*g] < 0 {
					continue
				}
				out = append(out, xpath.Value{Str: src[m[2*g]:m[2*g+1]]})
			}
		}
	}
	return s.derive(s.query, out, modeText)
}

// ReFirst returns the first regex projection, or the empty string.
func (s *Selector) ReFirst(pattern string) string {
	return s.Re(pattern).Get()
}

// ReFirstOr returns the first regex projection, or def when there is none.
func (s *Selector) ReFirstOr(pattern, def string) string {
	return s.Re(pattern).GetOr(def)
}

// JMESPath parses every matched value as JSON and applies a JMESPath
// query. Failures are swallowed per value and logged at warn; remaining
// values keep processing.
func (s *Selector) JMESPath(query string) *Selector {
	var out []xpath.Value
	for _, src := range s.GetAll() {
		var data interface{}
		if err := sonic.Unmarshal([]byte(src), &data); err != nil {
			s.doc.log.Warn("jmespath input is not valid json", zap.Error(err))
			continue
		}
		found, err := jmespath.Search(query, data)
		if err != nil {
			s.doc.log.Warn("jmespath query failed",
				zap.String("query", query),
				zap.Error(err))
			continue
		}
		if found == nil {
			continue
		}
		if str, ok := found.(string); ok {
			out = append(out, xpath.Value{Str: str})
			continue
		}
		encoded, err := sonic.Marshal(found)
		if err != nil {
			continue
		}
		out = append(out, xpath.Value{Str: string(encoded)})
	}
	return s.derive(s.query, out, modeText)
}

// First returns a Selector over the first matched value only.
func (s *Selector) First() *Selector { return s.Eq(0) }

// Last returns a Selector over the final matched value only.
func (s *Selector) Last() *Selector { return s.Eq(-1) }

// Eq returns a Selector over the value at index n; negative indices count
// from the end. Out-of-range indices yield an empty Selector.
func (s *Selector) Eq(n int) *Selector {
	if n < 0 {
		n += len(s.items)
	}
	if n < 0 || n >= len(s.items) {
		return s.empty(s.query)
	}
	return s.derive(s.query, s.items[n:n+1], s.mode)
}

// Each calls fn with one single-value Selector per match.
func (s *Selector) Each(fn func(int, *Selector)) *Selector {
	for i := range s.items {
		fn(i, s.derive(s.query, s.items[i:i+1], s.mode))
	}
	return s
}

// ToSlice splits the result set into single-value Selectors, each usable
// independently.
func (s *Selector) ToSlice() []*Selector {
	out := make([]*Selector, 0, len(s.items))
	for i := range s.items {
		out = append(out, s.derive(s.query, s.items[i:i+1], s.mode))
	}
	return out
}

// Text collapses the whole result set into one space-joined string of
// trimmed text.
func (s *Selector) Text() string {
	var parts []string
	for _, v := range s.items {
		var t string
		if v.IsNode() {
			t = xpath.NodeText(v.Node)
		} else {
			t = strings.TrimSpace(v.Str)
		}
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Attr looks up an attribute on the first matched element. The second
// return is false when nothing matched, the first match is not an element,
// or the attribute is absent.
func (s *Selector) Attr(name string) (string, bool) {
	if len(s.items) == 0 || !s.items[0].IsNode() {
		return "", false
	}
	return xpath.AttrValue(s.items[0].Node, name)
}

// AttrOr returns the attribute of the first matched element, or def.
func (s *Selector) AttrOr(name, def string) string {
	if val, ok := s.Attr(name); ok {
		return val
	}
	return def
}

// HTML returns the inner markup of the first match; for a whole-document
// Selector this is the document element's inner markup.
func (s *Selector) HTML() string {
	if len(s.items) == 0 || !s.items[0].IsNode() {
		return ""
	}
	return innerMarkup(s.items[0].Node)
}

// OuterHTML returns the serialized markup of the first match including its
// own tag.
func (s *Selector) OuterHTML() string {
	if len(s.items) == 0 || !s.items[0].IsNode() {
		return ""
	}
	return outerMarkup(s.items[0].Node)
}

// Remove detaches every matched node from the shared tree. String-valued
// and already-detached matches are no-ops. The effect is visible to every
// other Selector into the same document.
func (s *Selector) Remove() *Selector {
	for _, v := range s.items {
		if v.IsNode() && v.Node.Parent != nil {
			v.Node.Parent.RemoveChild(v.Node)
		}
	}
	return s
}

// Result is the structured, serializable summary of a query outcome.
type Result struct {
	OK       bool   `json:"ok"`
	Value    string `json:"value,omitempty"`
	Count    int    `json:"count,omitempty"`
	Selector string `json:"selector,omitempty"`
}

// Result reports success with the first value and match count, or failure
// with the selector that produced no matches.
func (s *Selector) Result() Result {
	if s.Ok() {
		return Result{OK: true, Value: s.Get(), Count: s.Count()}
	}
	return Result{OK: false, Selector: s.query}
}
