package tree

import (
	"strings"

	"hearings/pkg/utils"
)

// Find returns the normalized content of the first field below n whose name
// matches one of aliases, case-insensitively.
//
// All attributes and child elements of a node are checked before recursing,
// then children are searched depth-first in document order. A field whose
// content is empty does not count as a match. When aliases match at several
// depths the first depth-first hit wins. Content is taken with Node.Content,
// so inline markup inside a field reads as space-separated runs.
func Find(n *Node, aliases ...string) (string, bool) {
	if len(aliases) == 0 {
		return "", false
	}

	return find(n, aliasSet(aliases))
}

// FindString is Find without the presence flag.
func FindString(n *Node, aliases ...string) string {
	v, _ := Find(n, aliases...)

	return v
}

func find(n *Node, want map[string]bool) (string, bool) {
	if n == nil || n.Kind == TextNode {
		return "", false
	}

	for _, a := range n.Attrs {
		if want[strings.ToLower(a.Name)] {
			if v := utils.Normalize(a.Value); v != "" {
				return v, true
			}
		}
	}

	for _, c := range n.Children {
		if c.Kind == ElementNode && want[strings.ToLower(c.Name)] {
			if v := c.Content(); v != "" {
				return v, true
			}
		}
	}

	for _, c := range n.Children {
		if c.Kind != ElementNode {
			continue
		}

		if v, ok := find(c, want); ok {
			return v, true
		}
	}

	return "", false
}

// FindAll returns the content of every matching field below n in document
// order. Matched nodes are not searched further.
func FindAll(n *Node, aliases ...string) []string {
	want := aliasSet(aliases)

	var out []string

	Walk(n, func(c *Node) bool {
		if c == n || c.Kind != ElementNode || !want[strings.ToLower(c.Name)] {
			return true
		}

		if v := c.Content(); v != "" {
			out = append(out, v)
		}

		return false
	})

	return out
}

func aliasSet(aliases []string) map[string]bool {
	want := make(map[string]bool, len(aliases))
	for _, a := range aliases {
		want[strings.ToLower(a)] = true
	}

	return want
}
