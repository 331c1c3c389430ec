package content

import (
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/element"
	"github.com/dgallion1/docoutline/internal/scoring"
)

func line(page int, text string, y0 float64) element.TextElement {
	return element.TextElement{
		Text:       text,
		Page:       page,
		FontSize:   11,
		BBox:       element.BBox{X0: 72, Y0: y0, X1: 500, Y1: y0 + 11},
		PageHeight: 792,
	}
}

func heading(index int, level scoring.Level, el element.TextElement) scoring.Candidate {
	return scoring.Candidate{Element: el, Index: index, Level: level, Score: 0.8}
}

func TestLink_SpansUntilSameOrHigherLevel(t *testing.T) {
	elements := []element.TextElement{
		line(1, "1. Overview", 100),
		line(1, "The overview explains the goals.", 120),
		line(1, "1.1 Scope", 150),
		line(1, "Scope covers the billing service.", 170),
		line(1, "It excludes reporting.", 185),
		line(2, "2. Design", 100),
		line(2, "Design follows the existing layout.", 120),
	}
	headings := []scoring.Candidate{
		heading(0, scoring.H1, elements[0]),
		heading(2, scoring.H2, elements[2]),
		heading(5, scoring.H1, elements[5]),
	}

	got := Link(headings, elements)
	want := []string{
		"The overview explains the goals. Scope covers the billing service. It excludes reporting.",
		"Scope covers the billing service. It excludes reporting.",
		"Design follows the existing layout.",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d contents, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("content[%d]:\n  want %q\n  got  %q", i, want[i], got[i])
		}
	}
}

func TestLink_SkipsHeaderAndFooterZones(t *testing.T) {
	elements := []element.TextElement{
		line(1, "Introduction", 100),
		line(1, "Body text that belongs here.", 130),
		line(2, "ACME CONFIDENTIAL DRAFT", 20),
		line(2, "More body text on the next page.", 100),
		line(2, "Page 2", 770),
	}
	got := Link([]scoring.Candidate{heading(0, scoring.H1, elements[0])}, elements)
	want := "Body text that belongs here. More body text on the next page."
	if got[0] != want {
		t.Errorf("want %q, got %q", want, got[0])
	}
}

func TestLink_StripsBulletsAndDropsShortContent(t *testing.T) {
	elements := []element.TextElement{
		line(1, "Checklist", 100),
		line(1, "• first item to review", 120),
		line(1, "- second item", 135),
		line(1, "Summary", 200),
		line(1, "ok", 220),
	}
	headings := []scoring.Candidate{
		heading(0, scoring.H2, elements[0]),
		heading(3, scoring.H2, elements[3]),
	}
	got := Link(headings, elements)
	if got[0] != "first item to review second item" {
		t.Errorf("unexpected content %q", got[0])
	}
	if got[1] != "" {
		t.Errorf("expected empty content for short text, got %q", got[1])
	}
}

func TestLink_NoGeometrySkipsZoneFilter(t *testing.T) {
	elements := []element.TextElement{
		{Text: "Heading", Page: 1, FontSize: 14},
		{Text: "content without any coordinates", Page: 1, FontSize: 11},
	}
	got := Link([]scoring.Candidate{heading(0, scoring.H1, elements[0])}, elements)
	if got[0] != "content without any coordinates" {
		t.Errorf("unexpected content %q", got[0])
	}
}

func TestLink_CapsLongSections(t *testing.T) {
	elements := []element.TextElement{line(1, "Appendix", 100)}
	for i := 0; i < 400; i++ {
		elements = append(elements, element.TextElement{Text: "lorem ipsum dolor sit amet", Page: 1, FontSize: 11})
	}
	got := Link([]scoring.Candidate{heading(0, scoring.H1, elements[0])}, elements)
	if n := len([]rune(got[0])); n > MaxContentRunes+40 {
		t.Errorf("expected content near the cap, got %d runes", n)
	}
	if !strings.HasPrefix(got[0], "lorem ipsum") {
		t.Errorf("unexpected content start %q", got[0][:20])
	}
}

func TestLink_Empty(t *testing.T) {
	if got := Link(nil, nil); len(got) != 0 {
		t.Errorf("expected no content, got %v", got)
	}
}
