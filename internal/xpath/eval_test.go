package xpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parseDoc(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func query(t *testing.T, src, expr string) []Value {
	t.Helper()
	doc := parseDoc(t, src)
	return Evaluate(Parse(expr, nil), []*html.Node{doc}, nil)
}

func tagNames(values []Value) []string {
	var out []string
	for _, v := range values {
		if v.IsNode() {
			out = append(out, v.Node.Data)
		}
	}
	return out
}

func texts(values []Value) []string {
	var out []string
	for _, v := range values {
		if v.IsNode() {
			out = append(out, NodeText(v.Node))
		} else {
			out = append(out, v.Str)
		}
	}
	return out
}

const listDoc = `<ul><li>one</li><li>two</li><li>three</li><li>four</li></ul>`

func TestEvaluateDescendant(t *testing.T) {
	values := query(t, listDoc, "//li")
	require.Len(t, values, 4)
	assert.Equal(t, []string{"one", "two", "three", "four"}, texts(values))
}

func TestEvaluateChildChain(t *testing.T) {
	values := query(t, listDoc, "//ul/li")
	assert.Len(t, values, 4)

	// li elements are not direct children of body.
	values = query(t, listDoc, "//body/li")
	assert.Empty(t, values)
}

func TestEvaluateAttributeAxis(t *testing.T) {
	values := query(t, `<a href="/x">t</a>`, "//a/@href")
	require.Len(t, values, 1)
	assert.False(t, values[0].IsNode())
	assert.Equal(t, "/x", values[0].Str)

	// Missing attributes produce nothing, not empty strings.
	values = query(t, `<a href="/x">t</a>`, "//a/@title")
	assert.Empty(t, values)
}

func TestEvaluatePositionPredicates(t *testing.T) {
	values := query(t, listDoc, "//li[2]")
	require.Len(t, values, 1)
	assert.Equal(t, "two", texts(values)[0])

	values = query(t, listDoc, "//li[position() > 1]")
	assert.Equal(t, []string{"two", "three", "four"}, texts(values))

	values = query(t, listDoc, "//li[last()]")
	require.Len(t, values, 1)
	assert.Equal(t, "four", texts(values)[0])

	values = query(t, listDoc, "//li[position()=last()]")
	require.Len(t, values, 1)
	assert.Equal(t, "four", texts(values)[0])
}

func TestEvaluatePositionIsPerAxisApplication(t *testing.T) {
	src := `<div><p>a</p><p>b</p></div><div><p>c</p><p>d</p></div>`
	values := query(t, src, "//div/p[1]")
	assert.Equal(t, []string{"a", "c"}, texts(values))
}

func TestEvaluateTextAndAnyNodeTests(t *testing.T) {
	values := query(t, listDoc, "//li/text()")
	assert.Equal(t, []string{"one", "two", "three", "four"}, texts(values))

	values = query(t, `<div>x<span>y</span></div>`, "//div/node()")
	assert.Len(t, values, 2)
}

func TestEvaluateWildcard(t *testing.T) {
	values := query(t, `<div><p>a</p><span>b</span></div>`, "//div/*")
	assert.Equal(t, []string{"p", "span"}, tagNames(values))
}

func TestEvaluateParentAndAncestor(t *testing.T) {
	values := query(t, listDoc, "//li/..")
	// One ul reached through four li contexts.
	assert.Equal(t, []string{"ul", "ul", "ul", "ul"}, tagNames(values))

	values = query(t, listDoc, "//ul/ancestor::*")
	assert.Equal(t, []string{"body", "html"}, tagNames(values))
}

func TestEvaluateSiblingAxes(t *testing.T) {
	src := `<ul><li>a</li><li id="m">b</li><li>c</li><li>d</li></ul>`
	values := query(t, src, "//li[@id='m']/following-sibling::li")
	assert.Equal(t, []string{"c", "d"}, texts(values))

	values = query(t, src, "//li[@id='m']/preceding-sibling::li")
	assert.Equal(t, []string{"a"}, texts(values))
}

func TestEvaluateFollowingPreceding(t *testing.T) {
	src := `<p>before1</p><p>before2</p><div><span id="m">mark</span></div><p>after1</p><p>after2</p>`

	values := query(t, src, "//span[@id='m']/following::p")
	assert.Equal(t, []string{"after1", "after2"}, texts(values))

	values = query(t, src, "//span[@id='m']/preceding::p")
	assert.Equal(t, []string{"before1", "before2"}, texts(values))

	// The ancestor chain is excluded from preceding; descendants from
	// following.
	values = query(t, src, "//span[@id='m']/preceding::div")
	assert.Empty(t, values)
}

func TestEvaluateSelf(t *testing.T) {
	values := query(t, listDoc, "//li[1]/self::li")
	require.Len(t, values, 1)
	assert.Equal(t, "one", texts(values)[0])
}

func TestEvaluateAttrPredicates(t *testing.T) {
	src := `<a href="https://go.dev/doc">docs</a><a href="/local.png" class="img icon">img</a><a>bare</a>`

	assert.Len(t, query(t, src, "//a[@href]"), 2)
	assert.Len(t, query(t, src, "//a[not(@href)]"), 1)
	assert.Len(t, query(t, src, "//a[@href='/local.png']"), 1)
	assert.Len(t, query(t, src, "//a[contains(@class, 'icon')]"), 1)
	assert.Len(t, query(t, src, "//a[starts-with(@href, 'https')]"), 1)
	assert.Len(t, query(t, src, "//a[ends-with(@href, '.png')]"), 1)

	// A missing attribute compares as the empty string.
	assert.Len(t, query(t, src, "//a[@href!='']"), 2)
}

func TestEvaluateTextPredicates(t *testing.T) {
	src := `<p> Hello   World </p><p>bye</p>`

	assert.Len(t, query(t, src, "//p[contains(text(), 'bye')]"), 1)
	assert.Len(t, query(t, src, "//p[text()='bye']"), 1)
	assert.Len(t, query(t, src, "//p[text()!='bye']"), 1)
	assert.Len(t, query(t, src, "//p[starts-with(text(), 'Hel')]"), 1)
	assert.Len(t, query(t, src, "//p[normalize-space(text())='Hello World']"), 1)
}

func TestEvaluateStringFunctions(t *testing.T) {
	src := `<p>abcdef</p><p>one-two</p>`

	assert.Len(t, query(t, src, "//p[substring(text(), 2, 3)='bcd']"), 1)
	assert.Len(t, query(t, src, "//p[substring-before(text(), '-')='one']"), 1)
	assert.Len(t, query(t, src, "//p[substring-after(text(), '-')='two']"), 1)
	assert.Len(t, query(t, src, "//p[translate(text(), 'abc', 'ABC')='ABCdef']"), 1)
	assert.Len(t, query(t, src, "//p[string-length(text()) = 6]"), 1)
	assert.Len(t, query(t, src, "//p[string-length(text()) >= 6]"), 2)
}

func TestEvaluateCountPredicate(t *testing.T) {
	src := `<ul id="a"><li>1</li><li>2</li></ul><ul id="b"><li>1</li><li>2</li><li>3</li></ul>`

	values := query(t, src, "//ul[count(li) > 2]")
	require.Len(t, values, 1)
	id, _ := AttrValue(values[0].Node, "id")
	assert.Equal(t, "b", id)

	// count sees all descendants, not just direct children.
	nested := `<div id="outer"><section><li>1</li><li>2</li></section></div>`
	assert.Len(t, query(t, nested, "//div[count(li) = 2]"), 1)
}

func TestEvaluateChildExistence(t *testing.T) {
	src := `<div><span>x</span></div><div><p>y</p></div>`
	values := query(t, src, "//div[span]")
	require.Len(t, values, 1)
	assert.Equal(t, "x", texts(values)[0])
}

func TestEvaluateBooleanCombinators(t *testing.T) {
	src := `<a href="/x" class="on">1</a><a href="/y">2</a><a class="on">3</a>`

	assert.Len(t, query(t, src, "//a[@href and @class]"), 1)
	assert.Len(t, query(t, src, "//a[@href or @class]"), 3)
	assert.Len(t, query(t, src, "//a[not(@href) and @class]"), 1)
}

func TestEvaluateCaseInsensitiveTags(t *testing.T) {
	values := query(t, `<DIV>x</DIV>`, "//DIV")
	assert.Len(t, values, 1)
}

func TestEvaluateEmptySteps(t *testing.T) {
	doc := parseDoc(t, listDoc)
	assert.Empty(t, Evaluate(nil, []*html.Node{doc}, nil))
	assert.Empty(t, Evaluate(Parse("//[bad", nil), []*html.Node{doc}, nil))
}

func TestEvaluateIdempotent(t *testing.T) {
	doc := parseDoc(t, listDoc)
	steps := Parse("//li[position() > 1]", nil)
	first := Evaluate(steps, []*html.Node{doc}, nil)
	second := Evaluate(steps, []*html.Node{doc}, nil)
	assert.Equal(t, first, second)
}

func TestNodeTextAndHelpers(t *testing.T) {
	doc := parseDoc(t, `<div> a <b>b</b> c </div>`)
	values := Evaluate(Parse("//div", nil), []*html.Node{doc}, nil)
	require.Len(t, values, 1)
	assert.Equal(t, "a b c", normalizeSpace(NodeText(values[0].Node)))

	assert.Equal(t, "bcd", substring("abcdef", 2, 3, true))
	assert.Equal(t, "bcdef", substring("abcdef", 2, 0, false))
	assert.Equal(t, "", substring("abc", 10, 2, true))
	assert.Equal(t, "a", substring("abc", -1, 3, true))

	assert.Equal(t, "ABCd", translate("abcd", "abc", "ABC"))
	assert.Equal(t, "bd", translate("abcd", "ac", ""))
}
