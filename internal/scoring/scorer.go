// Package scoring rates how heading-like each text element is by combining
// font, text-shape, layout and pattern signals into one confidence value.
package scoring

import (
	"strings"
	"unicode"

	"github.com/dgallion1/docoutline/internal/element"
	"github.com/dgallion1/docoutline/internal/patterns"
	"github.com/dgallion1/docoutline/internal/profile"
)

// Level is a heading level. The zero value marks a rejected candidate.
type Level int

const (
	Rejected Level = iota
	H1
	H2
	H3
)

func (l Level) String() string {
	switch l {
	case H1:
		return "H1"
	case H2:
		return "H2"
	case H3:
		return "H3"
	}
	return "REJECTED"
}

// Candidate is an element together with its scoring verdict.
type Candidate struct {
	Element   element.TextElement
	Index     int // position in the normalized element list
	Score     float64
	Level     Level
	LevelHint int
	Veto      string
	Matched   []string
}

// Accepted reports whether the candidate passed scoring.
func (c Candidate) Accepted() bool { return c.Level != Rejected }

// Context is what the scorer may know about an element's surroundings.
type Context struct {
	Prev, Next *element.TextElement
	Page       element.PageGeometry
	Repeated   bool
}

// VetoRepeated names the veto applied to cross-page boilerplate.
const VetoRepeated = "repeated"

const (
	neutralFontScore = 0.5
	leftMarginSlack  = 10.0
	topZone          = 0.15
)

// Scorer is safe for concurrent use.
type Scorer struct {
	cfg      Config
	patterns *patterns.Classifier
}

// New returns a Scorer using cfg and the standard pattern table.
func New(cfg Config) *Scorer {
	return &Scorer{cfg: cfg, patterns: patterns.New(cfg.MaxHeadingWords)}
}

// NewWithPatterns returns a Scorer over a custom pattern table.
func NewWithPatterns(cfg Config, c *patterns.Classifier) *Scorer {
	return &Scorer{cfg: cfg, patterns: c}
}

// Config returns the scorer configuration.
func (s *Scorer) Config() Config { return s.cfg }

// Score returns the heading confidence of el in [0,1].
func (s *Scorer) Score(el element.TextElement, p profile.DocumentProfile, ctx Context) float64 {
	return s.Evaluate(el, p, ctx).Score
}

// Evaluate scores el and decides whether it is accepted. Accepted candidates
// get a provisional level from their pattern hint, or H3 without one; the
// hierarchy stage assigns the final level.
func (s *Scorer) Evaluate(el element.TextElement, p profile.DocumentProfile, ctx Context) Candidate {
	pr := s.patterns.Classify(el.Text)
	c := Candidate{Element: el, LevelHint: pr.LevelHint, Veto: pr.Veto, Matched: pr.Matched}
	if ctx.Repeated && c.Veto == "" {
		c.Veto = VetoRepeated
	}
	if c.Veto != "" {
		return c
	}

	sum := s.cfg.weightSum()
	if sum <= 0 {
		return c
	}
	total := s.cfg.FontWeight*FontScore(el, p) +
		s.cfg.TextWeight*TextScore(el.Text, s.cfg.MaxHeadingWords) +
		s.cfg.LayoutWeight*LayoutScore(el, ctx, s.cfg.IsolationFactor) +
		s.cfg.PatternWeight*pr.Score
	c.Score = clamp(total / sum)

	if c.Score >= s.cfg.MinScoreThreshold {
		c.Level = H3
		if pr.LevelHint > 0 {
			c.Level = Level(pr.LevelHint)
		}
	}
	return c
}

// ScoreAll evaluates every element of a document in reading order.
func (s *Scorer) ScoreAll(elements []element.TextElement, p profile.DocumentProfile) []Candidate {
	geo := element.Geometry(elements)
	repeated := patterns.DetectRepeated(elements)
	out := make([]Candidate, len(elements))
	for i, el := range elements {
		ctx := Context{Page: geo[el.Page], Repeated: repeated[i]}
		if i > 0 {
			ctx.Prev = &elements[i-1]
		}
		if i+1 < len(elements) {
			ctx.Next = &elements[i+1]
		}
		out[i] = s.Evaluate(el, p, ctx)
		out[i].Index = i
	}
	return out
}

// FontScore rates size and weight against the document profile. A
// degenerate profile yields a constant neutral value.
func FontScore(el element.TextElement, p profile.DocumentProfile) float64 {
	if p.IsDegenerate() {
		return neutralFontScore
	}
	ratio := el.FontSize / p.AvgFontSize
	var size float64
	switch {
	case ratio <= 1:
	case ratio <= 1.6:
		size = (ratio - 1) / 0.6 * 0.8
	default:
		size = 0.8 + 0.2*min(1, (ratio-1.6)/0.8)
	}

	score := 0.6 * size
	if el.Bold {
		score += 0.3
	} else if el.Italic {
		score += 0.05
	}
	if ratio > 1 && el.FontName != "" && p.DominantFontName != "" && el.FontName != p.DominantFontName {
		score += 0.1
	}
	return clamp(score)
}

// TextScore rates word count, capitalization and prose density. Text that
// opens in lowercase or reads as a sentence is penalized.
func TextScore(text string, maxWords int) float64 {
	n := len(strings.Fields(text))
	var length float64
	switch {
	case n >= 2 && n <= 6:
		length = 1.0
	case n > 6 && n <= maxWords:
		length = 0.7
	case n == 1:
		length = 0.4
	}

	score := 0.5 * length
	switch {
	case patterns.IsAllCaps(text):
		score += 0.3
	case n >= 2 && patterns.IsTitleCase(text):
		score += 0.25
	case startsUpper(text):
		score += 0.1
	case startsLower(text):
		score -= 0.2
	}
	switch {
	case !strings.HasSuffix(text, "."):
		score += 0.1
	case n >= 2 && patterns.EndsSentence(text) && !patterns.HasNumbering(text):
		score -= 0.2
	}
	score -= 0.8 * patterns.ProseDensity(text)
	return clamp(score)
}

// LayoutScore rates alignment, surrounding whitespace and position on the
// page. Missing or off-page neighbors count as whitespace.
func LayoutScore(el element.TextElement, ctx Context, isolationFactor float64) float64 {
	hasBox := !el.BBox.IsZero() && ctx.Page.HasBounds()
	var score float64

	if !hasBox || el.BBox.X0-ctx.Page.MinX0 <= leftMarginSlack {
		score += 0.3
	}

	lineHeight := el.LineHeight
	if lineHeight <= 0 {
		lineHeight = el.FontSize
	}
	limit := isolationFactor * lineHeight
	above := ctx.Prev == nil || ctx.Prev.Page != el.Page ||
		(hasBox && !ctx.Prev.BBox.IsZero() && el.BBox.Y0-ctx.Prev.BBox.Y1 > limit)
	below := ctx.Next == nil || ctx.Next.Page != el.Page ||
		(hasBox && !ctx.Next.BBox.IsZero() && ctx.Next.BBox.Y0-el.BBox.Y1 > limit)
	switch {
	case above && below:
		score += 0.5
	case above || below:
		score += 0.3
	}

	if hasBox && ctx.Page.TextSpan() > 0 && (el.BBox.Y0-ctx.Page.MinY0)/ctx.Page.TextSpan() <= topZone {
		score += 0.2
	}
	return clamp(score)
}

func startsUpper(text string) bool {
	for _, r := range text {
		return unicode.IsUpper(r)
	}
	return false
}

func startsLower(text string) bool {
	for _, r := range text {
		return unicode.IsLower(r)
	}
	return false
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}
