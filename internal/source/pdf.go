package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/element"
	"github.com/dgallion1/docoutline/internal/outline"
	pdflib "github.com/ledongthuc/pdf"
)

// defaultPageHeight is used when no usable MediaBox is found.
const defaultPageHeight = 792.0

// PDFParser handles PDF files. Each glyph run the library reports becomes a
// span in top-down page coordinates; the normalizer joins them into lines.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) (*Document, error) {
	// ledongthuc/pdf requires a ReaderAt+size, so we write to a temp file.
	tmp, size, cleanup, err := spool(r, "docoutline-pdf-*.pdf")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	reader, err := pdflib.NewReader(tmp, size)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return extractPDF(reader)
}

// extractPDF walks every page. The library panics on some malformed files,
// so panics are turned into errors.
func extractPDF(reader *pdflib.Reader) (doc *Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("extract pdf text: %v", rec)
		}
	}()

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, &outline.InvalidInputError{Reason: "document has no pages"}
	}

	doc = &Document{Title: pdfTitle(reader), PageCount: numPages}
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		box := mediaBox(page)
		for _, t := range page.Content().Text {
			if s, ok := glyphSpan(i, box, t); ok {
				doc.Spans = append(doc.Spans, s)
			}
		}
	}
	return doc, nil
}

// pageBox is the vertical extent of a page in PDF user space.
type pageBox struct {
	Bottom, Top float64
}

func (b pageBox) Height() float64 { return b.Top - b.Bottom }

// glyphSpan converts one library text item. PDF baselines count up from the
// bottom of the page; spans count down from the top.
func glyphSpan(page int, box pageBox, t pdflib.Text) (element.Span, bool) {
	if t.S == "" || t.FontSize <= 0 {
		return element.Span{}, false
	}
	top := box.Top - t.Y - t.FontSize
	return element.Span{
		Page:       page,
		Text:       t.S,
		FontSize:   t.FontSize,
		FontName:   element.BaseFontName(t.Font),
		Bold:       element.FontLooksBold(t.Font),
		Italic:     element.FontLooksItalic(t.Font),
		BBox:       element.BBox{X0: t.X, Y0: top, X1: t.X + t.W, Y1: top + t.FontSize},
		PageHeight: box.Height(),
	}, true
}

// maxTreeDepth bounds the walk up the page tree on malformed files.
const maxTreeDepth = 32

// mediaBox reads the page MediaBox, inherited from the nearest page-tree
// ancestor that sets one.
func mediaBox(page pdflib.Page) pageBox {
	v := page.V
	for depth := 0; depth < maxTreeDepth && !v.IsNull(); depth++ {
		if box := v.Key("MediaBox"); box.Len() == 4 {
			b := pageBox{Bottom: box.Index(1).Float64(), Top: box.Index(3).Float64()}
			if b.Height() > 0 {
				return b
			}
		}
		v = v.Key("Parent")
	}
	return pageBox{Top: defaultPageHeight}
}

func pdfTitle(reader *pdflib.Reader) string {
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	return strings.TrimSpace(info.Key("Title").Text())
}
