// Package outline is the heading-inference engine. It turns positioned text
// spans into a leveled outline and performs no I/O.
package outline

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/dgallion1/docoutline/internal/content"
	"github.com/dgallion1/docoutline/internal/element"
	"github.com/dgallion1/docoutline/internal/hierarchy"
	"github.com/dgallion1/docoutline/internal/profile"
	"github.com/dgallion1/docoutline/internal/scoring"
)

// Entry is one heading of the outline.
type Entry struct {
	Level   string `json:"level"`
	Text    string `json:"text"`
	Page    int    `json:"page"`
	Content string `json:"content,omitempty"`
}

// Outline is the engine result. Outline is never nil.
type Outline struct {
	Title   string  `json:"title"`
	Outline []Entry `json:"outline"`
}

// InvalidInputError reports input the engine cannot interpret at all.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// Config bundles every engine setting.
type Config struct {
	Scoring     scoring.Config   `yaml:",inline"`
	Hierarchy   hierarchy.Config `yaml:",inline"`
	LinkContent bool             `yaml:"link_content"`
	MaxPages    int              `yaml:"max_pages"` // 0 means no limit
}

// DefaultConfig returns the standard engine settings.
func DefaultConfig() Config {
	return Config{
		Scoring:   scoring.DefaultConfig(),
		Hierarchy: hierarchy.DefaultConfig(),
		MaxPages:  50,
	}
}

// Validate checks every section of the configuration.
func (c Config) Validate() error {
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if err := c.Hierarchy.Validate(); err != nil {
		return fmt.Errorf("hierarchy: %w", err)
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max_pages must not be negative, got %d", c.MaxPages)
	}
	return nil
}

// titleFactor is how much larger than average the title font must be.
const titleFactor = 1.2

// Engine runs the inference pipeline. It holds only configuration and is
// safe for concurrent use.
type Engine struct {
	cfg    Config
	scorer *scoring.Scorer
	log    *slog.Logger
}

// New creates an Engine. A nil logger discards output.
func New(cfg Config, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{cfg: cfg, scorer: scoring.New(cfg.Scoring), log: log}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// WithContentLinking returns a copy of the engine with content linking
// switched on or off.
func (e *Engine) WithContentLinking(on bool) *Engine {
	cp := *e
	cp.cfg.LinkContent = on
	return &cp
}

// Extract infers the outline of one document.
func (e *Engine) Extract(spans []element.Span) (*Outline, error) {
	kept := spans[:0:0]
	for _, s := range spans {
		if s.Page <= 0 {
			return nil, &InvalidInputError{Reason: fmt.Sprintf("page number %d is not positive", s.Page)}
		}
		if e.cfg.MaxPages > 0 && s.Page > e.cfg.MaxPages {
			continue
		}
		kept = append(kept, s)
	}

	elements := element.Normalize(kept)
	out := &Outline{Outline: []Entry{}}
	if len(elements) == 0 {
		e.log.Debug("no text elements", "spans", len(spans))
		return out, nil
	}

	prof := profile.Compute(elements)
	e.log.Debug("document profiled", "elements", len(elements), "profile", prof)

	candidates := e.scorer.ScoreAll(elements, prof)
	headings := hierarchy.Classify(candidates, prof, e.cfg.Hierarchy)
	e.log.Debug("headings classified",
		"candidates", countAccepted(candidates),
		"headings", len(headings),
	)

	var contents []string
	if e.cfg.LinkContent {
		contents = content.Link(headings, elements)
	}

	out.Title = inferTitle(elements, prof)
	for i, h := range headings {
		entry := Entry{Level: h.Level.String(), Text: h.Element.Text, Page: h.Element.Page}
		if contents != nil {
			entry.Content = contents[i]
		}
		out.Outline = append(out.Outline, entry)
	}
	return out, nil
}

func countAccepted(cs []scoring.Candidate) int {
	n := 0
	for _, c := range cs {
		if c.Accepted() {
			n++
		}
	}
	return n
}

// inferTitle joins the consecutive first-page lines set in the largest font,
// provided that font clearly stands out from the body.
func inferTitle(elements []element.TextElement, p profile.DocumentProfile) string {
	if p.IsDegenerate() {
		return ""
	}
	first := elements[0].Page
	largest := 0.0
	for _, el := range elements {
		if el.Page != first {
			break
		}
		largest = max(largest, el.FontSize)
	}
	if largest < titleFactor*p.AvgFontSize {
		return ""
	}

	var parts []string
	for _, el := range elements {
		if el.Page != first {
			break
		}
		if math.Abs(el.FontSize-largest) <= 0.5 {
			parts = append(parts, el.Text)
		} else if len(parts) > 0 {
			break
		}
	}
	return strings.Join(parts, " ")
}
