package source

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/element"
)

// Formats without coordinates (markdown, HTML, DOCX, plain text) are placed
// on a synthetic US Letter page so the geometry signals still apply.
const (
	pageWidth    = 612.0
	pageHeight   = 792.0
	marginLeft   = 72.0
	marginTop    = 80.0
	marginBottom = 712.0

	// BodySize is the point size used for ordinary paragraphs.
	BodySize = 11.0

	leading      = 1.2 // line advance as a multiple of font size
	glyphWidth   = 0.5 // average glyph width as a multiple of font size
	paragraphGap = 6.0

	headingSpaceBefore = 1.5
	headingSpaceAfter  = 1.2
)

// headingSizes follows the usual browser defaults for h1..h6.
var headingSizes = [...]float64{24, 18, 15, 13, 12, 12}

// HeadingSize returns the point size used for a heading level.
func HeadingSize(level int) float64 {
	if level < 1 {
		level = 1
	}
	if level > len(headingSizes) {
		level = len(headingSizes)
	}
	return headingSizes[level-1]
}

type layout struct {
	font  string
	page  int
	y     float64
	blank bool // nothing placed on the current page yet
	spans []element.Span
}

func newLayout(font string) *layout {
	return &layout{font: font, page: 1, y: marginTop, blank: true}
}

// gap adds vertical whitespace. Space at the top of a page is dropped.
func (l *layout) gap(points float64) {
	if l.blank {
		return
	}
	l.y += points
}

func (l *layout) heading(text string, level int) {
	l.headingSized(text, HeadingSize(level), true, false)
}

func (l *layout) headingSized(text string, size float64, bold, italic bool) {
	lines := wrap(text, size)
	if len(lines) == 0 {
		return
	}
	l.gap(headingSpaceBefore * size)
	for _, ln := range lines {
		l.line(ln, size, bold, italic)
	}
	l.gap(headingSpaceAfter * size)
}

func (l *layout) paragraph(text string, size float64, bold, italic bool) {
	lines := wrap(text, size)
	if len(lines) == 0 {
		return
	}
	for _, ln := range lines {
		l.line(ln, size, bold, italic)
	}
	l.gap(paragraphGap)
}

func (l *layout) line(text string, size float64, bold, italic bool) {
	if l.y+size > marginBottom {
		l.page++
		l.y = marginTop
		l.blank = true
	}
	width := float64(utf8.RuneCountInString(text)) * glyphWidth * size
	l.spans = append(l.spans, element.Span{
		Page:       l.page,
		Text:       text,
		FontSize:   size,
		FontName:   l.font,
		Bold:       bold,
		Italic:     italic,
		BBox:       element.BBox{X0: marginLeft, Y0: l.y, X1: marginLeft + width, Y1: l.y + size},
		PageHeight: pageHeight,
	})
	l.y += leading * size
	l.blank = false
}

func (l *layout) document(title string) *Document {
	doc := &Document{Title: title, Spans: l.spans}
	if len(l.spans) > 0 {
		doc.PageCount = l.spans[len(l.spans)-1].Page
	}
	return doc
}

// wrap breaks text into lines that fit the text column at the given size.
func wrap(text string, size float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	limit := int((pageWidth - 2*marginLeft) / (glyphWidth * size))

	var lines []string
	var cur strings.Builder
	n := 0
	for _, w := range words {
		wn := utf8.RuneCountInString(w)
		if n > 0 && n+1+wn > limit {
			lines = append(lines, cur.String())
			cur.Reset()
			n = 0
		}
		if n > 0 {
			cur.WriteByte(' ')
			n++
		}
		cur.WriteString(w)
		n += wn
	}
	if n > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
