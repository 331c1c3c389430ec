package hierarchy

import (
	"math"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/dgallion1/docoutline/internal/patterns"
	"github.com/dgallion1/docoutline/internal/scoring"
)

// Dedup drops candidates that repeat an earlier kept heading. A repeat
// survives only when it sits on another page and its score differs from the
// earlier one by more than margin.
func Dedup(candidates []scoring.Candidate, margin float64) []scoring.Candidate {
	fold := cases.Fold()
	type seen struct {
		key, label string
		page       int
		score      float64
	}
	var kept []seen
	out := make([]scoring.Candidate, 0, len(candidates))

outer:
	for _, c := range candidates {
		key := NormalizeText(fold, c.Element.Text)
		label := labelOf(key)
		for _, k := range kept {
			if k.label != label || !withinTolerance(k.key, key) {
				continue
			}
			if k.page == c.Element.Page || math.Abs(k.score-c.Score) <= margin {
				continue outer
			}
		}
		kept = append(kept, seen{key: key, label: label, page: c.Element.Page, score: c.Score})
		out = append(out, c)
	}
	return out
}

// NormalizeText case-folds text, strips a leading bullet and collapses
// whitespace so headings can be compared.
func NormalizeText(fold cases.Caser, text string) string {
	text = strings.TrimSpace(patterns.StripBullet(strings.TrimSpace(text)))
	return strings.Join(strings.Fields(fold.String(text)), " ")
}

func withinTolerance(a, b string) bool {
	if a == b {
		return true
	}
	n := max(len([]rune(a)), len([]rune(b)))
	tol := 1
	if n > 12 {
		tol = 2
	}
	return levenshtein.ComputeDistance(a, b) <= tol
}

// labelOf returns what tells numbered siblings apart: the digits of key plus
// a trailing single letter or Roman numeral ("appendix b", "part ii").
func labelOf(key string) string {
	label := patterns.Digits(key)
	fields := strings.Fields(key)
	if len(fields) < 2 {
		return label
	}
	last := strings.TrimRight(fields[len(fields)-1], ".:)")
	if isLetterLabel(last) {
		label += "/" + last
	}
	return label
}

func isLetterLabel(s string) bool {
	rs := []rune(s)
	if len(rs) == 1 {
		return unicode.IsLetter(rs[0])
	}
	if len(rs) == 0 || len(rs) > 6 {
		return false
	}
	for _, r := range rs {
		if !strings.ContainsRune("ivx", r) {
			return false
		}
	}
	return true
}
