package element

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// sizeTolerance is the font size difference still treated as the same formatting.
	sizeTolerance = 0.5
	// spaceGapRatio is the horizontal gap, as a fraction of font size, that implies a word break.
	spaceGapRatio = 0.15
	// columnGapRatio is the gap, as a multiple of font size, that splits a row into separate elements.
	columnGapRatio = 4.0
)

// Normalize cleans raw spans and merges same-line, same-format runs into
// TextElements ordered by page, then top edge, then left edge. Unusable spans
// are dropped; it never fails.
func Normalize(spans []Span) []TextElement {
	byPage := make(map[int][]Span)
	var pages []int
	var prev Span
	hasPrev := false

	for _, s := range spans {
		if s.Page < 1 || !(s.FontSize > 0) || math.IsInf(s.FontSize, 0) {
			continue
		}
		s.Text = CleanText(s.Text)
		if s.Text == "" {
			continue
		}
		if hasPrev && isRepeat(prev, s) {
			continue
		}
		if _, ok := byPage[s.Page]; !ok {
			pages = append(pages, s.Page)
		}
		byPage[s.Page] = append(byPage[s.Page], s)
		prev, hasPrev = s, true
	}
	sort.Ints(pages)

	var out []TextElement
	for _, page := range pages {
		for _, row := range groupRows(byPage[page]) {
			out = append(out, mergeRow(row)...)
		}
	}

	kept := out[:0]
	for _, e := range out {
		if hasAlnum(e.Text) {
			kept = append(kept, e)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.BBox.Y0 != b.BBox.Y0 {
			return a.BBox.Y0 < b.BBox.Y0
		}
		return a.BBox.X0 < b.BBox.X0
	})
	return kept
}

// CleanText applies NFKC normalization, drops control characters and soft
// hyphens, and collapses whitespace runs to single spaces.
func CleanText(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\u00ad' || r == '\ufeff':
			return -1
		case unicode.IsControl(r):
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// isRepeat detects overprinted duplicates, a common way PDFs fake bold text.
func isRepeat(a, b Span) bool {
	if a.Page != b.Page || a.Text != b.Text || a.BBox.IsZero() {
		return false
	}
	return math.Abs(a.BBox.X0-b.BBox.X0) < 1 && math.Abs(a.BBox.Y0-b.BBox.Y0) < 1
}

func spanHeight(s Span) float64 {
	if h := s.BBox.Height(); h > 0 {
		return h
	}
	return s.FontSize
}

// groupRows clusters the spans of one page into visual lines. Spans without
// geometry cannot be placed and each becomes its own row in input order.
func groupRows(spans []Span) [][]Span {
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y0 != sorted[j].BBox.Y0 {
			return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	var rows [][]Span
	var top, bottom float64
	for _, s := range sorted {
		if s.BBox.IsZero() {
			rows = append(rows, []Span{s})
			top, bottom = 0, 0
			continue
		}
		if n := len(rows); n > 0 && bottom > top {
			center := (s.BBox.Y0 + s.BBox.Y1) / 2
			if s.BBox.Y1 <= s.BBox.Y0 {
				center = s.BBox.Y0
			}
			if center >= top && center <= bottom {
				rows[n-1] = append(rows[n-1], s)
				bottom = max(bottom, s.BBox.Y0+spanHeight(s))
				continue
			}
		}
		rows = append(rows, []Span{s})
		top = s.BBox.Y0
		bottom = s.BBox.Y0 + spanHeight(s)
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].BBox.X0 < row[j].BBox.X0 })
	}
	return rows
}

// mergeRow joins adjacent spans of a row that share formatting.
func mergeRow(row []Span) []TextElement {
	var out []TextElement
	var b strings.Builder
	var cur TextElement
	fontChars := map[string]int{}
	open := false

	flush := func() {
		if !open {
			return
		}
		cur.Text = strings.TrimSpace(b.String())
		cur.FontName = dominantName(fontChars)
		cur.LineHeight = cur.BBox.Height()
		if cur.LineHeight <= 0 {
			cur.LineHeight = cur.FontSize
		}
		out = append(out, cur)
		b.Reset()
		clear(fontChars)
		open = false
	}

	for _, s := range row {
		if open && sameFormat(cur, s) && !s.BBox.IsZero() {
			gap := s.BBox.X0 - cur.BBox.X1
			if gap <= columnGapRatio*s.FontSize {
				if gap > spaceGapRatio*s.FontSize {
					b.WriteByte(' ')
				}
				b.WriteString(s.Text)
				cur.BBox = cur.BBox.Union(s.BBox)
				cur.PageHeight = max(cur.PageHeight, s.PageHeight)
				fontChars[s.FontName] += len(s.Text)
				continue
			}
		}
		flush()
		open = true
		b.WriteString(s.Text)
		fontChars[s.FontName] += len(s.Text)
		cur = TextElement{
			Page:       s.Page,
			FontSize:   s.FontSize,
			Bold:       s.Bold,
			Italic:     s.Italic,
			BBox:       s.BBox,
			PageHeight: s.PageHeight,
		}
	}
	flush()
	return out
}

func sameFormat(e TextElement, s Span) bool {
	return e.Bold == s.Bold && e.Italic == s.Italic &&
		math.Abs(e.FontSize-s.FontSize) <= sizeTolerance
}

// dominantName picks the font with the most characters; ties break by name.
func dominantName(counts map[string]int) string {
	best, bestN := "", -1
	for name, n := range counts {
		if n > bestN || (n == bestN && name < best) {
			best, bestN = name, n
		}
	}
	return best
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
