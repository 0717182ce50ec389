// Package tree provides a format-neutral element tree built from XML or HTML
// and a depth-first field finder over it.
//
// Upstream feeds rename and re-nest fields between revisions, so callers look
// values up by a set of aliases instead of binding to a fixed schema.
package tree

import (
	"strings"

	"hearings/pkg/utils"
)

// Kind is the node type.
type Kind int

// Node kinds.
const (
	DocumentNode Kind = iota
	ElementNode
	TextNode
)

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is an element, a text run, or the document root.
type Node struct {
	Name     string
	Data     string
	Attrs    []Attr
	Children []*Node
	Kind     Kind
}

// Element creates an element node. Used by parsers and tests.
func Element(name string, children ...*Node) *Node {
	return &Node{Kind: ElementNode, Name: name, Children: children}
}

// Text creates a text node.
func Text(data string) *Node {
	return &Node{Kind: TextNode, Data: data}
}

// WithAttr adds an attribute and returns n.
func (n *Node) WithAttr(name, value string) *Node {
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})

	return n
}

// Attr returns the value of the named attribute (case-insensitive).
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}

	for _, a := range n.Attrs {
		if strings.EqualFold(a.Name, name) {
			return a.Value
		}
	}

	return ""
}

// Content concatenates all text below n in document order and normalizes it.
//
// Text runs are joined with a single space, even when the markup puts them
// side by side: "H.R.<b>1</b>" reads "H.R. 1" and "foo<i>bar</i>" reads
// "foo bar". Whitespace is then collapsed, so runs that already carry their
// own spacing are not doubled.
func (n *Node) Content() string {
	if n == nil {
		return ""
	}

	var parts []string

	collectText(n, &parts)

	return utils.Normalize(strings.Join(parts, " "))
}

func collectText(n *Node, parts *[]string) {
	if n.Kind == TextNode {
		*parts = append(*parts, n.Data)

		return
	}

	for _, c := range n.Children {
		collectText(c, parts)
	}
}

// Walk visits n and its descendants depth-first. Returning false from fn skips
// the children of the visited node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}

	if !fn(n) {
		return
	}

	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Select returns every element below n for which match is true, in document order.
func Select(n *Node, match func(*Node) bool) []*Node {
	var out []*Node

	Walk(n, func(c *Node) bool {
		if c.Kind == ElementNode && match(c) {
			out = append(out, c)
		}

		return true
	})

	return out
}

// ByName matches elements with the given name (case-insensitive).
func ByName(names ...string) func(*Node) bool {
	want := aliasSet(names)

	return func(n *Node) bool {
		return want[strings.ToLower(n.Name)]
	}
}

// Path follows the element-name path from n and returns every element at the
// final step. Names are matched exactly, the way a property path would be.
func Path(n *Node, names ...string) []*Node {
	if n == nil {
		return nil
	}

	level := []*Node{n}

	for _, name := range names {
		var next []*Node

		for _, p := range level {
			for _, c := range p.Children {
				if c.Kind == ElementNode && c.Name == name {
					next = append(next, c)
				}
			}
		}

		if len(next) == 0 {
			return nil
		}

		level = next
	}

	return level
}
