// Package content attaches the body text under each heading to it.
package content

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/element"
	"github.com/dgallion1/docoutline/internal/patterns"
	"github.com/dgallion1/docoutline/internal/scoring"
)

const (
	// MarginZone is the fraction of page height at the top and bottom treated
	// as running header or footer space.
	MarginZone = 0.10
	// MinContentRunes is the shortest content worth reporting.
	MinContentRunes = 10
	// MaxContentRunes stops accumulation for very long sections.
	MaxContentRunes = 2500
)

// Link returns one content string per heading. A heading governs every
// non-heading element after it up to the next heading of the same or a
// higher level. Headings must be in reading order and carry indexes into
// elements.
func Link(headings []scoring.Candidate, elements []element.TextElement) []string {
	out := make([]string, len(headings))
	if len(headings) == 0 {
		return out
	}

	isHeading := make(map[int]bool, len(headings))
	for _, h := range headings {
		isHeading[h.Index] = true
	}
	geo := element.Geometry(elements)

	for i, h := range headings {
		end := len(elements)
		for _, next := range headings[i+1:] {
			if next.Level <= h.Level {
				end = next.Index
				break
			}
		}

		var parts []string
		size := 0
		for k := h.Index + 1; k < end && k < len(elements); k++ {
			el := elements[k]
			if isHeading[k] || el.Page < h.Element.Page || inMarginZone(el, geo[el.Page]) {
				continue
			}
			text := strings.TrimSpace(patterns.StripBullet(el.Text))
			if text == "" {
				continue
			}
			parts = append(parts, text)
			size += len([]rune(text)) + 1
			if size > MaxContentRunes {
				break
			}
		}
		out[i] = clean(parts)
	}
	return out
}

func inMarginZone(el element.TextElement, g element.PageGeometry) bool {
	if el.BBox.IsZero() || !g.HasBounds() || g.Height <= 0 {
		return false
	}
	rel := el.BBox.Y0 / g.Height
	return rel < MarginZone || rel > 1-MarginZone
}

func clean(parts []string) string {
	text := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	if len([]rune(text)) < MinContentRunes {
		return ""
	}
	return text
}
