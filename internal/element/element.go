// Package element defines the positioned text model shared by every stage of
// the outline engine and the normalizer that builds it from raw parser spans.
package element

import "strings"

// BBox is a rectangle in page space. Y grows downward, so Y0 is the top edge.
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// IsZero reports whether the parser supplied no geometry at all.
func (b BBox) IsZero() bool {
	return b.X0 == 0 && b.Y0 == 0 && b.X1 == 0 && b.Y1 == 0
}

func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// Union returns the smallest box covering both b and o.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		X0: min(b.X0, o.X0),
		Y0: min(b.Y0, o.Y0),
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
	}
}

// Span is one raw text fragment as reported by a document parser.
type Span struct {
	Page       int
	Text       string
	FontSize   float64
	FontName   string
	Bold       bool
	Italic     bool
	BBox       BBox
	PageHeight float64 // 0 when the parser does not know the page size
}

// TextElement is one visually coherent run of text on one page.
type TextElement struct {
	Text       string
	Page       int
	FontSize   float64
	Bold       bool
	Italic     bool
	FontName   string
	BBox       BBox
	LineHeight float64
	PageHeight float64
}

// WordCount returns the number of whitespace-separated words.
func (e TextElement) WordCount() int {
	return len(strings.Fields(e.Text))
}

// FontLooksBold infers weight from a font name such as "ABCDEF+Arial-BoldMT".
func FontLooksBold(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range []string{"bold", "black", "heavy", "semibold", "demibold"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// FontLooksItalic infers slant from a font name.
func FontLooksItalic(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "italic") || strings.Contains(lower, "oblique")
}

// BaseFontName strips the six-letter subset tag some PDF producers prepend.
func BaseFontName(name string) string {
	if i := strings.IndexByte(name, '+'); i == 6 {
		return name[i+1:]
	}
	return name
}
