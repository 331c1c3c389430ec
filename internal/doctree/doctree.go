// Package doctree nests a flat outline into sections and renders it as an
// indented text outline.
package doctree

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
)

// DocTree is the root of a nested outline.
type DocTree struct {
	Title    string     `json:"title"`    // Document title (from metadata, inference or filename)
	Children []*DocNode `json:"children"` // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     `json:"title"`
	Level    string     `json:"level"`
	Page     int        `json:"page"`
	Text     string     `json:"content,omitempty"`
	Children []*DocNode `json:"children,omitempty"`
}

// FromOutline nests entries by level. A heading becomes the child of the
// closest preceding heading with a smaller level.
func FromOutline(o *outline.Outline) *DocTree {
	tree := &DocTree{Title: o.Title, Children: []*DocNode{}}

	type stackEntry struct {
		node  *DocNode
		level int
	}
	root := &DocNode{}
	stack := []stackEntry{{node: root, level: 0}}

	for _, e := range o.Outline {
		level := depth(e.Level)
		node := &DocNode{Title: e.Text, Level: e.Level, Page: e.Page, Text: e.Content}

		// Pop stack until we find a parent with lower level.
		for len(stack) > 1 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, stackEntry{node: node, level: level})
	}

	if root.Children != nil {
		tree.Children = root.Children
	}
	return tree
}

func depth(level string) int {
	var n int
	if _, err := fmt.Sscanf(level, "H%d", &n); err != nil || n < 1 {
		return 1
	}
	return n
}

// Walk visits nodes depth-first. breadcrumb holds the titles of the node's
// ancestors.
func (t *DocTree) Walk(fn func(n *DocNode, breadcrumb []string)) {
	var visit func(nodes []*DocNode, trail []string)
	visit = func(nodes []*DocNode, trail []string) {
		for _, n := range nodes {
			fn(n, trail)
			visit(n.Children, append(trail[:len(trail):len(trail)], n.Title))
		}
	}
	visit(t.Children, nil)
}

// Render writes the indented text outline, two spaces per level.
func (t *DocTree) Render(w io.Writer) error {
	var b strings.Builder
	if t.Title != "" {
		b.WriteString(t.Title)
		b.WriteString("\n\n")
	}
	t.Walk(func(n *DocNode, breadcrumb []string) {
		fmt.Fprintf(&b, "%s%s %s (p. %d)\n", strings.Repeat("  ", len(breadcrumb)), n.Level, n.Title, n.Page)
	})
	_, err := io.WriteString(w, b.String())
	return err
}

// Count returns the number of nodes in the tree.
func (t *DocTree) Count() int {
	n := 0
	t.Walk(func(*DocNode, []string) { n++ })
	return n
}
