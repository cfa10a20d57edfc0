package xpath

import "golang.org/x/net/html"

// Axis identifies the traversal direction of one location step.
type Axis int

const (
	AxisChild Axis = iota
	AxisDescendant
	AxisSelf
	AxisAttribute
	AxisParent
	AxisAncestor
	AxisFollowingSibling
	AxisPrecedingSibling
	AxisFollowing
	AxisPreceding
)

// String returns the XPath keyword for the axis.
func (a Axis) String() string {
	switch a {
	case AxisChild:
		return "child"
	case AxisDescendant:
		return "descendant"
	case AxisSelf:
		return "self"
	case AxisAttribute:
		return "attribute"
	case AxisParent:
		return "parent"
	case AxisAncestor:
		return "ancestor"
	case AxisFollowingSibling:
		return "following-sibling"
	case AxisPrecedingSibling:
		return "preceding-sibling"
	case AxisFollowing:
		return "following"
	case AxisPreceding:
		return "preceding"
	}
	return "unknown"
}

// TestKind discriminates the node test of a step.
type TestKind int

const (
	TestName     TestKind = iota // element by tag name, case-insensitive
	TestWildcard                 // * (any element)
	TestText                     // text()
	TestAnyNode                  // node()
)

// NodeTest selects which candidates of an axis survive the step.
type NodeTest struct {
	Kind TestKind
	Name string // tag name for TestName, attribute name for the attribute axis
}

// Step is one parsed location step: axis, node test, and the predicates
// applied to the node-test-filtered candidate list.
type Step struct {
	Axis  Axis
	Test  NodeTest
	Preds []Predicate
}

// Value is a single evaluation result. The attribute axis produces raw
// strings; every other axis produces tree nodes.
type Value struct {
	Node *html.Node
	Str  string
}

// IsNode reports whether the value references a tree node.
func (v Value) IsNode() bool { return v.Node != nil }
