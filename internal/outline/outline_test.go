package outline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/dgallion1/docoutline/internal/element"
)

func sp(page int, text string, size float64, bold bool, y0 float64) element.Span {
	return element.Span{
		Page:       page,
		Text:       text,
		FontSize:   size,
		FontName:   "Helvetica",
		Bold:       bold,
		BBox:       element.BBox{X0: 72, Y0: y0, X1: 500, Y1: y0 + size},
		PageHeight: 792,
	}
}

func scenarioSpans() []element.Span {
	return []element.Span{
		sp(1, "1. Introduction", 16, true, 90),
		sp(1, "This is a long prose paragraph describing the project in full detail and...", 12, false, 130),
		sp(1, "1.1 Background", 14, true, 170),
	}
}

func TestExtract_Scenario(t *testing.T) {
	got, err := New(DefaultConfig(), nil).Extract(scenarioSpans())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Entry{
		{Level: "H1", Text: "1. Introduction", Page: 1},
		{Level: "H2", Text: "1.1 Background", Page: 1},
	}
	if len(got.Outline) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(got.Outline), got.Outline)
	}
	for i := range want {
		if got.Outline[i] != want[i] {
			t.Errorf("entry %d: want %+v, got %+v", i, want[i], got.Outline[i])
		}
	}
}

func TestExtract_Idempotent(t *testing.T) {
	e := New(DefaultConfig(), nil).WithContentLinking(true)
	spans := sampleDocument()

	a, err := e.Extract(spans)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := e.Extract(spans)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if !bytes.Equal(ja, jb) {
		t.Errorf("outputs differ:\n%s\n%s", ja, jb)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	got, err := New(DefaultConfig(), nil).Extract(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Outline == nil || len(got.Outline) != 0 {
		t.Errorf("expected empty non-nil outline, got %#v", got.Outline)
	}
	data, _ := json.Marshal(got)
	if string(data) != `{"title":"","outline":[]}` {
		t.Errorf("unexpected JSON %s", data)
	}
}

func TestExtract_InvalidPage(t *testing.T) {
	spans := []element.Span{sp(1, "Fine", 12, false, 100), sp(0, "Broken", 12, false, 120)}
	_, err := New(DefaultConfig(), nil).Extract(spans)
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
}

func TestExtract_UniformFontFallback(t *testing.T) {
	spans := []element.Span{
		sp(1, "1. Introduction", 12, false, 100),
		sp(1, "the system reads files from disk and turns them into structured records for", 12, false, 140),
		sp(1, "later processing by the indexing service which runs on a nightly schedule.", 12, false, 154),
		sp(1, "Each record keeps its source path, checksum and the time it was ingested.", 12, false, 168),
	}
	got, err := New(DefaultConfig(), nil).Extract(spans)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Outline) != 1 || got.Outline[0].Text != "1. Introduction" || got.Outline[0].Level != "H1" {
		t.Errorf("expected only the isolated heading, got %+v", got.Outline)
	}
}

func TestExtract_PageNumberRejected(t *testing.T) {
	spans := []element.Span{
		sp(1, "Quarterly Operations Review", 20, true, 100),
		sp(1, "the quarter closed with stable costs across every region and no outages reported", 11, false, 140),
		sp(1, "PAGE 3 OF 20", 13, true, 700),
	}
	got, err := New(DefaultConfig(), nil).Extract(spans)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range got.Outline {
		if e.Text == "PAGE 3 OF 20" {
			t.Fatal("page number accepted as heading")
		}
	}
}

func TestExtract_ChapterOnEveryPage(t *testing.T) {
	var spans []element.Span
	for page := 1; page <= 4; page++ {
		spans = append(spans,
			sp(page, fmt.Sprintf("Chapter %d", page), 20, true, 80),
			sp(page, "the chapter opens with a long description of the field work that the crew carried out", 11, false, 130),
			sp(page, "and the results collected over the season.", 11, false, 144),
			sp(page, fmt.Sprintf("Field Survey - %d", page), 9, false, 760),
		)
	}
	got, err := New(DefaultConfig(), nil).Extract(spans)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Outline) != 4 {
		t.Fatalf("expected 4 chapters, got %+v", got.Outline)
	}
	for i, e := range got.Outline {
		want := fmt.Sprintf("Chapter %d", i+1)
		if e.Text != want || e.Level != "H1" || e.Page != i+1 {
			t.Errorf("entry %d: expected H1 %q on page %d, got %+v", i, want, i+1, e)
		}
	}
}

func TestExtract_MonotonicHierarchy(t *testing.T) {
	got, err := New(DefaultConfig(), nil).Extract(sampleDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Outline) == 0 {
		t.Fatal("expected headings")
	}
	depth := map[string]int{"H1": 1, "H2": 2, "H3": 3}
	if got.Outline[0].Level != "H1" {
		t.Errorf("first entry must be H1, got %s", got.Outline[0].Level)
	}
	prev := 0
	for i, e := range got.Outline {
		d, ok := depth[e.Level]
		if !ok {
			t.Fatalf("entry %d has invalid level %q", i, e.Level)
		}
		if d > prev+1 {
			t.Errorf("entry %d %q jumps from depth %d to %d", i, e.Text, prev, d)
		}
		if i > 0 && got.Outline[i-1].Text == e.Text {
			t.Errorf("entry %d duplicates its predecessor %q", i, e.Text)
		}
		prev = d
	}
}

func TestExtract_ContentAndTitle(t *testing.T) {
	got, err := New(DefaultConfig(), nil).WithContentLinking(true).Extract(sampleDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Platform Migration Plan" {
		t.Errorf("expected inferred title, got %q", got.Title)
	}
	var found bool
	for _, e := range got.Outline {
		if e.Text == "2. Current State" {
			found = true
			if e.Content == "" {
				t.Error("expected content under 2. Current State")
			}
		}
	}
	if !found {
		t.Errorf("expected heading 2. Current State in %+v", got.Outline)
	}
}

func TestExtract_MaxPages(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPages = 1
	got, err := New(cfg, nil).Extract(sampleDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range got.Outline {
		if e.Page > 1 {
			t.Errorf("entry from page %d beyond limit: %q", e.Page, e.Text)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg := DefaultConfig()
	cfg.MaxPages = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative max pages")
	}
	cfg = DefaultConfig()
	cfg.Hierarchy.LevelPolicy = "random"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown level policy")
	}
}

// sampleDocument is a three-page report with a title, numbered sections,
// body paragraphs and a running footer.
func sampleDocument() []element.Span {
	body := []string{
		"the current platform runs on a fleet of virtual machines managed by hand and",
		"every release requires a maintenance window that customers notice each month.",
	}
	var spans []element.Span
	add := func(page int, text string, size float64, bold bool, y float64) {
		spans = append(spans, sp(page, text, size, bold, y))
	}

	add(1, "Platform Migration Plan", 24, true, 90)
	add(1, "1. Summary", 16, true, 160)
	add(1, body[0], 11, false, 200)
	add(1, body[1], 11, false, 214)
	add(1, "2. Current State", 16, true, 280)
	add(1, body[0], 11, false, 320)
	add(1, body[1], 11, false, 334)
	add(1, "2.1 Inventory", 13, true, 400)
	add(1, body[0], 11, false, 440)

	add(2, "2.1.1 Databases", 12, true, 100)
	add(2, body[1], 11, false, 140)
	add(2, "3. Target Architecture", 16, true, 220)
	add(2, body[0], 11, false, 260)
	add(2, body[1], 11, false, 274)

	add(3, "3.2.4 Rollback Drills", 12, true, 100)
	add(3, body[0], 11, false, 140)
	add(3, "4. Timeline", 16, true, 220)
	add(3, body[1], 11, false, 260)

	for page := 1; page <= 3; page++ {
		add(page, fmt.Sprintf("Migration Plan - Page %d", page), 9, false, 760)
	}
	return spans
}
