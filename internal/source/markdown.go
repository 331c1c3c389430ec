package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. ATX and setext
// headings get heading sizes; a paragraph made entirely of strong emphasis
// is set bold at body size.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	l := newLayout("Helvetica")
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		layoutMarkdownBlock(l, n, src)
	}
	return l.document(""), nil
}

func layoutMarkdownBlock(l *layout, n ast.Node, src []byte) {
	switch node := n.(type) {
	case *ast.Heading:
		l.heading(inlineText(node, src), node.Level)
	case *ast.Paragraph, *ast.TextBlock:
		l.paragraph(inlineText(node, src), BodySize, allStrong(node), false)
	case *ast.List:
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			if t := inlineText(item, src); t != "" {
				l.paragraph("• "+t, BodySize, false, false)
			}
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if t := strings.TrimSpace(string(seg.Value(src))); t != "" {
				l.line(t, BodySize, false, false)
			}
		}
		l.gap(paragraphGap)
	case *ast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			layoutMarkdownBlock(l, c, src)
		}
	case *ast.ThematicBreak, *ast.HTMLBlock:
		// no visible text
	default:
		if t := inlineText(node, src); t != "" {
			l.paragraph(t, BodySize, false, false)
		}
	}
}

// inlineText collects the text of every inline node below n.
func inlineText(n ast.Node, src []byte) string {
	var buf strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(buf.String()), " ")
}

func allStrong(n ast.Node) bool {
	if n.ChildCount() != 1 {
		return false
	}
	em, ok := n.FirstChild().(*ast.Emphasis)
	return ok && em.Level == 2
}
