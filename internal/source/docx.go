package source

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraph styles and direct run
// formatting decide the size and weight each paragraph is laid out with.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*Document, error) {
	// go-docx needs a ReaderAt+size, so write to temp file.
	tmp, size, cleanup, err := spool(r, "docoutline-docx-*.docx")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	doc, err := docx.Parse(tmp, size)
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	l := newLayout("Calibri")
	layoutDocxItems(l, doc.Document.Body.Items)
	return l.document(""), nil
}

func layoutDocxItems(l *layout, items []interface{}) {
	for _, item := range items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		f := docxParagraphFormat(para)
		if f.text == "" {
			continue
		}
		if f.heading {
			l.headingSized(f.text, f.size, f.bold, f.italic)
		} else {
			l.paragraph(f.text, f.size, f.bold, f.italic)
		}
	}
}

type docxFormat struct {
	text         string
	size         float64
	bold, italic bool
	heading      bool
}

// docxParagraphFormat resolves how a paragraph is rendered. A heading style
// wins over run formatting; otherwise the paragraph is bold or italic only
// when every text run is.
func docxParagraphFormat(para *docx.Paragraph) docxFormat {
	f := docxFormat{size: BodySize}
	allBold, allItalic, runs := true, true, 0
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var text strings.Builder
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				text.WriteString(t.Text)
			}
		}
		if strings.TrimSpace(text.String()) != "" {
			runs++
			props := run.RunProperties
			allBold = allBold && props != nil && props.Bold != nil
			allItalic = allItalic && props != nil && props.Italic != nil
			if props != nil && props.Size != nil {
				// w:sz is in half-points
				if hp, err := strconv.ParseFloat(props.Size.Val, 64); err == nil && hp > 0 {
					f.size = max(f.size, hp/2)
				}
			}
		}
		buf.WriteString(text.String())
	}
	f.text = collapse(buf.String())
	f.bold = runs > 0 && allBold
	f.italic = runs > 0 && allItalic

	switch style := docxStyle(para); {
	case style == "title":
		f.size, f.bold, f.heading = 26, true, true
	case style == "subtitle":
		f.size, f.italic, f.heading = 15, true, true
	default:
		if level := docxHeadingLevel(style); level > 0 {
			f.size, f.bold, f.heading = HeadingSize(level), true, true
		}
	}
	return f
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}

// docxHeadingLevel parses normalized style names like "heading2".
func docxHeadingLevel(style string) int {
	rest, ok := strings.CutPrefix(style, "heading")
	if !ok {
		return 0
	}
	level, err := strconv.Atoi(rest)
	if err != nil || level < 1 || level > 9 {
		return 0
	}
	return level
}
