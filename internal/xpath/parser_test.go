package xpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAxisMarkers(t *testing.T) {
	tests := []struct {
		expr string
		axis Axis
		name string
	}{
		{"//div", AxisDescendant, "div"},
		{"/div", AxisChild, "div"},
		{".//div", AxisDescendant, "div"},
		{"./div", AxisChild, "div"},
		{"div", AxisChild, "div"},
		{"ancestor::div", AxisAncestor, "div"},
		{"parent::div", AxisParent, "div"},
		{"self::div", AxisSelf, "div"},
		{"following::p", AxisFollowing, "p"},
		{"preceding::p", AxisPreceding, "p"},
		{"following-sibling::p", AxisFollowingSibling, "p"},
		{"preceding-sibling::p", AxisPrecedingSibling, "p"},
		{"//following-sibling::p", AxisFollowingSibling, "p"},
	}

	for _, tt := range tests {
		steps := Parse(tt.expr, nil)
		require.Len(t, steps, 1, "expr %q", tt.expr)
		assert.Equal(t, tt.axis, steps[0].Axis, "expr %q", tt.expr)
		assert.Equal(t, TestName, steps[0].Test.Kind, "expr %q", tt.expr)
		assert.Equal(t, tt.name, steps[0].Test.Name, "expr %q", tt.expr)
	}
}

func TestParseNodeTests(t *testing.T) {
	steps := Parse("//text()", nil)
	require.Len(t, steps, 1)
	assert.Equal(t, TestText, steps[0].Test.Kind)

	steps = Parse("//node()", nil)
	require.Len(t, steps, 1)
	assert.Equal(t, TestAnyNode, steps[0].Test.Kind)

	steps = Parse("//*", nil)
	require.Len(t, steps, 1)
	assert.Equal(t, TestWildcard, steps[0].Test.Kind)

	steps = Parse("//a/@href", nil)
	require.Len(t, steps, 2)
	assert.Equal(t, AxisAttribute, steps[1].Axis)
	assert.Equal(t, "href", steps[1].Test.Name)
}

func TestParseDotSteps(t *testing.T) {
	steps := Parse(".", nil)
	require.Len(t, steps, 1)
	assert.Equal(t, AxisSelf, steps[0].Axis)

	steps = Parse("..", nil)
	require.Len(t, steps, 1)
	assert.Equal(t, AxisParent, steps[0].Axis)

	steps = Parse("../div", nil)
	require.Len(t, steps, 2)
	assert.Equal(t, AxisParent, steps[0].Axis)
	assert.Equal(t, AxisChild, steps[1].Axis)
	assert.Equal(t, "div", steps[1].Test.Name)
}

func TestParseMultiStep(t *testing.T) {
	steps := Parse("//ul/li[2]/a/@href", nil)
	require.Len(t, steps, 4)
	assert.Equal(t, AxisDescendant, steps[0].Axis)
	assert.Equal(t, "ul", steps[0].Test.Name)
	assert.Equal(t, "li", steps[1].Test.Name)
	require.Len(t, steps[1].Preds, 1)
	assert.Equal(t, positionPredicate{Pos: 2}, steps[1].Preds[0])
	assert.Equal(t, AxisAttribute, steps[3].Axis)
}

func TestParsePredicateForms(t *testing.T) {
	tests := []struct {
		body string
		want Predicate
	}{
		{"3", positionPredicate{Pos: 3}},
		{"last()", lastPredicate{}},
		{"position()=last()", lastPredicate{}},
		{"position() > 1", positionCmpPredicate{Op: cmpGt, Pos: 1}},
		{"position() <= 2", positionCmpPredicate{Op: cmpLe, Pos: 2}},
		{"@href", attrPredicate{Name: "href", Op: opExists}},
		{"@href='/x'", attrPredicate{Name: "href", Op: opEq, Value: "/x"}},
		{"@href != '/x'", attrPredicate{Name: "href", Op: opNe, Value: "/x"}},
		{"contains(@class, 'nav')", attrPredicate{Name: "class", Op: opContains, Value: "nav"}},
		{"starts-with(@href, 'http')", attrPredicate{Name: "href", Op: opStartsWith, Value: "http"}},
		{"ends-with(@href, '.png')", attrPredicate{Name: "href", Op: opEndsWith, Value: ".png"}},
		{"text()='A'", textPredicate{Op: opEq, Value: "A"}},
		{"text()!='A'", textPredicate{Op: opNe, Value: "A"}},
		{"contains(text(), 'A')", textPredicate{Op: opContains, Value: "A"}},
		{"contains(., 'A')", textPredicate{Op: opContains, Value: "A"}},
		{"normalize-space(text())='A B'", normSpacePredicate{Value: "A B"}},
		{"substring(text(), 2, 3)='bcd'", substringPredicate{Start: 2, Length: 3, HasLen: true, Value: "bcd"}},
		{"substring-before(text(), '-')='a'", substringBeforePredicate{Sep: "-", Value: "a"}},
		{"substring-after(text(), '-')='b'", substringAfterPredicate{Sep: "-", Value: "b"}},
		{"translate(text(), 'abc', 'ABC')='ABC'", translatePredicate{From: "abc", To: "ABC", Value: "ABC"}},
		{"count(li) > 2", countPredicate{Tag: "li", Op: cmpGt, N: 2}},
		{"string-length(text()) >= 5", stringLengthPredicate{Op: cmpGe, N: 5}},
		{"li", childPredicate{Name: "li"}},
		{"not(@href)", notPredicate{Inner: attrPredicate{Name: "href", Op: opExists}}},
	}

	for _, tt := range tests {
		got, ok := parsePredicate(tt.body)
		require.True(t, ok, "body %q", tt.body)
		assert.Equal(t, tt.want, got, "body %q", tt.body)
	}
}

func TestParsePredicateCombinators(t *testing.T) {
	p, ok := parsePredicate("@href and @title")
	require.True(t, ok)
	and, isAnd := p.(andPredicate)
	require.True(t, isAnd)
	assert.Len(t, and.Subs, 2)

	p, ok = parsePredicate("@href or text()='A'")
	require.True(t, ok)
	or, isOr := p.(orPredicate)
	require.True(t, isOr)
	assert.Len(t, or.Subs, 2)

	// " or " inside a literal must not split.
	p, ok = parsePredicate("text()='cats or dogs'")
	require.True(t, ok)
	assert.Equal(t, textPredicate{Op: opEq, Value: "cats or dogs"}, p)
}

func TestParsePredicateFallback(t *testing.T) {
	// Unrecognized bodies yield no predicate, never an error.
	for _, body := range []string{"", "???", "-1", "0", "frob(@x)", "position()"} {
		_, ok := parsePredicate(body)
		assert.False(t, ok, "body %q", body)
	}

	// An unrecognized bracket is skipped while the step survives.
	steps := Parse("//li[???]", nil)
	require.Len(t, steps, 1)
	assert.Empty(t, steps[0].Preds)
}

func TestParseDropsUnparseableTail(t *testing.T) {
	steps := Parse("//a/::junk", nil)
	require.Len(t, steps, 1)
	assert.Equal(t, "a", steps[0].Test.Name)

	// Unterminated predicate bracket swallows the rest silently.
	steps = Parse("//li[position() > 1", nil)
	require.Len(t, steps, 1)
	assert.Empty(t, steps[0].Preds)
}

func TestParseNeverPanics(t *testing.T) {
	adversarial := []string{
		"",
		"//[bad",
		"////",
		"[[[",
		"]]]",
		"//a[@href='unterminated",
		`//a["mixed']`,
		"::::",
		"@",
		"//a | | //b",
		strings.Repeat("[", 1000),
		strings.Repeat("//a", 500),
		"//a[not(not(not(@x)))]",
	}
	for _, expr := range adversarial {
		assert.NotPanics(t, func() { Parse(expr, nil) }, "expr %q", expr)
	}
}

func TestSplitUnion(t *testing.T) {
	assert.Equal(t, []string{"//a", "//b"}, SplitUnion("//a | //b"))
	assert.Equal(t, []string{"//a"}, SplitUnion("//a"))

	assert.Equal(t, []string{"//a[@x='1']", "//b", "//c"}, SplitUnion("//a[@x='1'] | //b | //c"))

	// | inside quotes or brackets must not split.
	assert.Equal(t,
		[]string{"//a[text()='x|y']"},
		SplitUnion("//a[text()='x|y']"))
}
