// Package patterns classifies a single line of text as heading-like or not.
// Rules live in a declarative table of matchers: heading matchers contribute
// a weight, exclusion matchers veto the line outright.
package patterns

import (
	"regexp"
	"strings"
	"unicode"
)

// Category tags a matcher as a heading signal or an exclusion.
type Category int

const (
	Heading Category = iota
	Exclusion
)

func (c Category) String() string {
	if c == Exclusion {
		return "exclusion"
	}
	return "heading"
}

// Line is the pre-split form of a text handed to matchers.
type Line struct {
	Text  string
	Words []string
}

// Matcher is one rule of the table.
type Matcher struct {
	Name      string
	Category  Category
	Weight    float64 // contribution in [0,1]; unused for exclusions
	LevelHint int     // 1..3 when the rule implies a heading level, else 0
	Match     func(Line) bool
}

// Result is the outcome of running the whole table over one text.
type Result struct {
	Score     float64 // maximum heading weight, 0 when vetoed
	LevelHint int
	Matched   []string
	Veto      string // name of the first exclusion that fired
}

// Vetoed reports whether an exclusion matcher fired.
func (r Result) Vetoed() bool { return r.Veto != "" }

// DefaultMaxHeadingWords is the word count above which text cannot be a heading.
const DefaultMaxHeadingWords = 12

// Classifier runs the matcher table. It holds no mutable state.
type Classifier struct {
	matchers []Matcher
}

// New builds the standard table. maxWords <= 0 selects DefaultMaxHeadingWords.
func New(maxWords int) *Classifier {
	if maxWords <= 0 {
		maxWords = DefaultMaxHeadingWords
	}
	m := make([]Matcher, 0, len(headingMatchers)+len(exclusionMatchers)+1)
	m = append(m, headingMatchers...)
	m = append(m, exclusionMatchers...)
	m = append(m, Matcher{
		Name:     "too-long",
		Category: Exclusion,
		Match:    func(l Line) bool { return len(l.Words) > maxWords },
	})
	return &Classifier{matchers: m}
}

// NewWith builds a classifier over a caller-supplied table.
func NewWith(matchers []Matcher) *Classifier {
	return &Classifier{matchers: append([]Matcher(nil), matchers...)}
}

// Matchers returns a copy of the table, useful for extending it.
func (c *Classifier) Matchers() []Matcher {
	return append([]Matcher(nil), c.matchers...)
}

// Classify runs every matcher over text.
func (c *Classifier) Classify(text string) Result {
	line := Line{Text: strings.TrimSpace(text), Words: strings.Fields(text)}
	var r Result
	hintWeight := -1.0
	for _, m := range c.matchers {
		if !m.Match(line) {
			continue
		}
		if m.Category == Exclusion {
			if r.Veto == "" {
				r.Veto = m.Name
			}
			continue
		}
		r.Matched = append(r.Matched, m.Name)
		r.Score = max(r.Score, m.Weight)
		if m.LevelHint > 0 && m.Weight > hintWeight {
			r.LevelHint, hintWeight = m.LevelHint, m.Weight
		}
	}
	if r.Vetoed() {
		r.Score = 0
	}
	return r
}

var (
	reSubSubSection = regexp.MustCompile(`^\d+\.\d+\.\d+\.?\s+\S`)
	reSubSection    = regexp.MustCompile(`^\d+\.\d+\.?\s+\S`)
	reSection       = regexp.MustCompile(`^\d+\.\s+\S|^\d+\s+\p{Lu}`)
	reNumberLabel   = regexp.MustCompile(`^\d+(?:\.\d+)*\.\s+\S|^\d+(?:\.\d+)+\s+\S`)
	reRoman         = regexp.MustCompile(`^([IVXLC]+)\.\s+\S`)
	reValidRoman    = regexp.MustCompile(`^(?:L?X{0,3}|XL|XC)(?:IX|IV|V?I{0,3})$`)
	reUpperLetter   = regexp.MustCompile(`^\p{Lu}[.)]\s+\S`)
	reLowerLetter   = regexp.MustCompile(`^\(?\p{Ll}\)\s+\S`)
	reChapter       = regexp.MustCompile(`(?i)^(chapter|part|section|appendix)\s+(\d+|[ivxlc]+|[a-z])\b`)
	reStep          = regexp.MustCompile(`(?i)^(step|phase|stage|round)\s+\d+\b`)
	reBullet        = regexp.MustCompile(`^[•·▪▫◦‣⁃*\-–]\s*`)

	rePageNumber = regexp.MustCompile(`(?i)^(?:\d+|page\s+\d+(?:\s*(?:of|/)\s*\d+)?|\d+\s*(?:of|/)\s*\d+|[-–—]\s*\d+\s*[-–—])$`)
	reCopyright  = regexp.MustCompile(`(?i)copyright|©|\ball rights reserved\b|\bconfidential\b`)
	reURL        = regexp.MustCompile(`(?i)\bhttps?://|\bwww\.|\.(?:com|org|net|io|gov|edu)\b`)
	reEmail      = regexp.MustCompile(`[^\s@]+@[^\s@]+\.[^\s@]+`)
	reCaption    = regexp.MustCompile(`(?i)^(?:figure|fig\.|table|exhibit)\s+\d|^(?:see|refer to)\s`)
)

// structuralKeywords are section names that are headings on their own.
var structuralKeywords = []string{
	"abstract", "acknowledgements", "acknowledgments", "analysis", "appendix",
	"background", "bibliography", "conclusion", "conclusions", "contents",
	"discussion", "evaluation", "executive summary", "foreword", "future work",
	"glossary", "implementation", "index", "introduction", "methodology",
	"methods", "objectives", "overview", "preface", "problem statement",
	"references", "related work", "requirements", "results", "scope",
	"summary", "table of contents",
}

var headingMatchers = []Matcher{
	{Name: "chapter", Weight: 1.0, LevelHint: 1, Match: func(l Line) bool { return reChapter.MatchString(l.Text) }},
	{Name: "numbered-1.1.1", Weight: 0.9, LevelHint: 3, Match: func(l Line) bool { return reSubSubSection.MatchString(l.Text) }},
	{Name: "numbered-1.1", Weight: 0.9, LevelHint: 2, Match: func(l Line) bool {
		return reSubSection.MatchString(l.Text) && !reSubSubSection.MatchString(l.Text)
	}},
	{Name: "numbered-1", Weight: 0.9, LevelHint: 1, Match: func(l Line) bool { return reSection.MatchString(l.Text) }},
	{Name: "roman", Weight: 0.8, LevelHint: 1, Match: matchRoman},
	{Name: "structural-keyword", Weight: 0.85, Match: matchKeyword},
	{Name: "all-caps", Weight: 0.75, Match: func(l Line) bool { return len(l.Words) <= 8 && IsAllCaps(l.Text) }},
	{Name: "letter-upper", Weight: 0.7, LevelHint: 2, Match: func(l Line) bool {
		return reUpperLetter.MatchString(l.Text) && !matchRoman(l)
	}},
	{Name: "letter-lower", Weight: 0.7, LevelHint: 3, Match: func(l Line) bool { return reLowerLetter.MatchString(l.Text) }},
	{Name: "step", Weight: 0.7, LevelHint: 3, Match: func(l Line) bool { return reStep.MatchString(l.Text) }},
	{Name: "title-case", Weight: 0.6, Match: func(l Line) bool {
		return len(l.Words) >= 2 && len(l.Words) <= 10 && IsTitleCase(l.Text)
	}},
	{Name: "trailing-colon", Weight: 0.55, Match: func(l Line) bool {
		return strings.HasSuffix(l.Text, ":") && len(l.Words) <= 6 && startsUpper(l.Text)
	}},
	{Name: "bullet-colon", Weight: 0.5, Match: func(l Line) bool {
		return HasBullet(l.Text) && strings.Contains(l.Text, ":")
	}},
}

var exclusionMatchers = []Matcher{
	{Name: "page-number", Category: Exclusion, Match: func(l Line) bool { return rePageNumber.MatchString(l.Text) }},
	{Name: "copyright", Category: Exclusion, Match: func(l Line) bool { return reCopyright.MatchString(l.Text) }},
	{Name: "url", Category: Exclusion, Match: func(l Line) bool { return reURL.MatchString(l.Text) }},
	{Name: "email", Category: Exclusion, Match: func(l Line) bool { return reEmail.MatchString(l.Text) }},
	{Name: "caption", Category: Exclusion, Match: func(l Line) bool { return reCaption.MatchString(l.Text) }},
	{Name: "too-short", Category: Exclusion, Match: func(l Line) bool { return len([]rune(l.Text)) < 3 }},
	{Name: "fragment", Category: Exclusion, Match: isFragment},
	{Name: "prose", Category: Exclusion, Match: isProse},
	{Name: "sentence", Category: Exclusion, Match: isSentence},
}

// HasNumbering reports whether text opens with a section label such as
// "2.1", "IV.", "b)" or "Chapter 3".
func HasNumbering(text string) bool {
	l := Line{Text: text}
	return reChapter.MatchString(text) || reStep.MatchString(text) ||
		reNumberLabel.MatchString(text) ||
		reUpperLetter.MatchString(text) || reLowerLetter.MatchString(text) ||
		matchRoman(l)
}

func matchRoman(l Line) bool {
	m := reRoman.FindStringSubmatch(l.Text)
	if m == nil {
		return false
	}
	// Single letters other than I are far more often list labels.
	return reValidRoman.MatchString(m[1]) && (len(m[1]) > 1 || m[1] == "I")
}

func matchKeyword(l Line) bool {
	lower := strings.ToLower(l.Text)
	for _, kw := range structuralKeywords {
		if !strings.HasPrefix(lower, kw) {
			continue
		}
		rest := lower[len(kw):]
		if rest == "" {
			return true
		}
		r := []rune(rest)[0]
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// IsAllCaps reports whether text has at least three letters and none of
// them is lowercase.
func IsAllCaps(text string) bool {
	letters := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			if unicode.IsLower(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 3
}

var minorWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "but": true,
	"by": true, "for": true, "in": true, "nor": true, "of": true, "on": true,
	"or": true, "the": true, "to": true, "vs": true, "with": true, "from": true,
}

// IsTitleCase reports whether every word that starts with a letter is
// capitalized, allowing short function words after the first.
func IsTitleCase(text string) bool {
	capitalized := 0
	for i, w := range strings.Fields(text) {
		first := []rune(w)[0]
		if !unicode.IsLetter(first) {
			continue
		}
		if unicode.IsUpper(first) {
			capitalized++
			continue
		}
		if i == 0 || !minorWords[strings.ToLower(strings.Trim(w, ",:;"))] {
			return false
		}
	}
	return capitalized > 0 && !IsAllCaps(text)
}

// HasBullet reports whether text starts with a list bullet.
func HasBullet(text string) bool {
	return reBullet.MatchString(text)
}

// StripBullet removes a leading list bullet and the whitespace after it.
func StripBullet(text string) string {
	return reBullet.ReplaceAllString(text, "")
}

func startsUpper(text string) bool {
	for _, r := range text {
		return unicode.IsUpper(r)
	}
	return false
}

func firstLetterCase(text string) (upper, lower bool) {
	for _, r := range text {
		if !unicode.IsLetter(r) {
			return false, false
		}
		return unicode.IsUpper(r), unicode.IsLower(r)
	}
	return false, false
}

var danglingWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"of": true, "to": true, "with": true, "for": true, "in": true,
}

// isFragment catches a line that is the tail or the head of a wrapped
// sentence.
func isFragment(l Line) bool {
	if len(l.Words) == 0 {
		return false
	}
	upper, lower := firstLetterCase(l.Text)
	last := l.Text[len(l.Text)-1]
	if lower && strings.ContainsRune(".!?", rune(last)) {
		return true
	}
	if !upper {
		return false
	}
	if strings.ContainsRune(",;-", rune(last)) {
		return true
	}
	return len(l.Words) > 1 && danglingWords[l.Words[len(l.Words)-1]]
}

// MinSentenceWords is the word count from which an unnumbered line ending in
// a period is read as a sentence.
const MinSentenceWords = 3

func isSentence(l Line) bool {
	return len(l.Words) >= MinSentenceWords && EndsSentence(l.Text) && !HasNumbering(l.Text)
}

// EndsSentence reports whether text closes with a period that is not part of
// an abbreviation such as "U.S.".
func EndsSentence(text string) bool {
	text = strings.TrimSpace(text)
	if !strings.HasSuffix(text, ".") {
		return false
	}
	fields := strings.Fields(text)
	last := strings.TrimSuffix(fields[len(fields)-1], ".")
	return !strings.Contains(last, ".")
}

func isProse(l Line) bool {
	n := len(l.Words)
	if n >= 6 && strings.HasSuffix(l.Text, ".") {
		return true
	}
	c := countClasses(l.Words)
	if c.articles > 0 && c.conjunctions > 0 && c.verbs > 0 {
		return true
	}
	return n >= 5 && ProseDensity(l.Text) >= 0.5
}
