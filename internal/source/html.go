package source

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Heading tags get heading sizes, block
// elements become paragraphs and loose inline text is gathered until the
// next block starts.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	l := newLayout("Times-Roman")
	var loose strings.Builder
	flushText := func() {
		if t := collapse(loose.String()); t != "" {
			l.paragraph(t, BodySize, false, false)
		}
		loose.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			loose.WriteString(n.Data)
			return
		case html.ElementNode:
			if level := headingLevel(n.Data); level > 0 {
				flushText()
				l.heading(textContent(n), level)
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "noscript", "template":
				return
			case "br":
				loose.WriteByte(' ')
				return
			case "p", "li", "td", "th", "blockquote", "pre", "dt", "dd", "caption", "figcaption":
				flushText()
				t := textContent(n)
				if t != "" {
					bold, italic := emphasis(n)
					if n.Data == "li" {
						t = "• " + t
					}
					l.paragraph(t, BodySize, bold, italic)
				}
				return
			case "div", "section", "article", "main", "aside", "table", "tr", "ul", "ol", "dl", "figure", "form", "hr":
				flushText()
				defer flushText()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	flushText()

	return l.document(findTitle(doc)), nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style"):
			return
		case n.Type == html.ElementNode && n.Data == "br":
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return collapse(buf.String())
}

// emphasis reports whether all visible text under n sits inside bold or
// italic markup.
func emphasis(n *html.Node) (bold, italic bool) {
	bold, italic = true, true
	seen := false
	var visit func(n *html.Node, b, i bool)
	visit = func(n *html.Node, b, i bool) {
		if n.Type == html.TextNode {
			if strings.TrimSpace(n.Data) != "" {
				seen = true
				bold = bold && b
				italic = italic && i
			}
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "b", "strong":
				b = true
			case "i", "em":
				i = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c, b, i)
		}
	}
	visit(n, false, false)
	if !seen {
		return false, false
	}
	return bold, italic
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
