package docquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/docquery/docquery/internal/xpath"
)

// extractMode selects which scalar value a matched node yields.
type extractMode int

const (
	modeNode extractMode = iota // structural: markup for elements, payload for text
	modeText                    // trimmed text content
	modeAttr                    // named attribute value
)

var attrSuffixRe = regexp.MustCompile(`::attr\(([^()]*)\)$`)

// splitPseudo strips a trailing ::text or ::attr(name) directive from a
// whole expression. The same translation serves both the CSS and the XPath
// front end.
func splitPseudo(expr string) (string, extractMode, string) {
	if base, ok := strings.CutSuffix(expr, "::text"); ok {
		return base, modeText, ""
	}
	if m := attrSuffixRe.FindStringSubmatch(expr); m != nil {
		return expr[:len(expr)-len(m[0])], modeAttr, strings.TrimSpace(m[1])
	}
	return expr, modeNode, ""
}

// extract applies the extraction rule to raw query results. Text mode
// drops values whose trimmed text is empty and attr mode drops nodes
// lacking the attribute, so a Selector never carries empty results.
func extract(values []xpath.Value, mode extractMode, attrName string) []xpath.Value {
	if mode == modeNode {
		return values
	}
	out := make([]xpath.Value, 0, len(values))
	for _, v := range values {
		switch mode {
		case modeText:
			var t string
			if v.IsNode() {
				t = xpath.NodeText(v.Node)
			} else {
				t = strings.TrimSpace(v.Str)
			}
			if t != "" {
				out = append(out, xpath.Value{Str: t})
			}
		case modeAttr:
			if !v.IsNode() {
				continue
			}
			if val, ok := xpath.AttrValue(v.Node, attrName); ok {
				out = append(out, xpath.Value{Str: val})
			}
		}
	}
	return out
}

// stringify renders one matched value: raw strings pass through, text
// nodes yield their trimmed payload, and everything else serializes to
// outer markup.
func stringify(v xpath.Value) string {
	if !v.IsNode() {
		return v.Str
	}
	if v.Node.Type == html.TextNode {
		return strings.TrimSpace(v.Node.Data)
	}
	return outerMarkup(v.Node)
}

// outerMarkup serializes a node including its own tag. A document node
// serializes through its document element, or as concatenated sibling
// markup when the fragment has no single root.
func outerMarkup(n *html.Node) string {
	if n.Type == html.DocumentNode {
		if el := documentElement(n); el != nil {
			return outerMarkup(el)
		}
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			b.WriteString(outerMarkup(c))
		}
		return b.String()
	}
	markup, err := goquery.OuterHtml(goquery.NewDocumentFromNode(n).Selection)
	if err != nil {
		return ""
	}
	return markup
}

// innerMarkup serializes a node's children only.
func innerMarkup(n *html.Node) string {
	if n.Type == html.DocumentNode {
		if el := documentElement(n); el != nil {
			return innerMarkup(el)
		}
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			b.WriteString(outerMarkup(c))
		}
		return b.String()
	}
	markup, err := goquery.NewDocumentFromNode(n).Html()
	if err != nil {
		return ""
	}
	return markup
}

// documentElement returns the single element child of a document node,
// or nil for a multi-top-level fragment.
func documentElement(doc *html.Node) *html.Node {
	var el *html.Node
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if el != nil {
			return nil
		}
		el = c
	}
	return el
}
