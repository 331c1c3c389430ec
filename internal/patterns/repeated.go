package patterns

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/dgallion1/docoutline/internal/element"
)

const (
	// BandHeight is the vertical band, in points, that counts as the same position.
	BandHeight = 10.0
	// MinRepeatPages is the number of distinct pages a text must recur on.
	MinRepeatPages = 3
	// maxFuzzyRunes bounds near-duplicate matching to header-sized strings.
	maxFuzzyRunes = 80
)

type bandKey struct {
	band int
	key  string
}

// DetectRepeated flags elements whose text recurs, exactly or nearly, at the
// same vertical band on at least MinRepeatPages distinct pages. Running page
// numbers are masked so footers still cluster; any other digits must match.
// Elements without a bounding box are never flagged.
func DetectRepeated(elements []element.TextElement) []bool {
	fold := cases.Fold()
	keys := make([]bandKey, len(elements))
	pages := map[bandKey]map[int]bool{}
	byBand := map[int][]string{}

	for i, e := range elements {
		if e.BBox.IsZero() {
			continue
		}
		k := bandKey{band: int(math.Floor(e.BBox.Y0 / BandHeight)), key: repetitionKey(fold, e.Text, e.Page)}
		keys[i] = k
		if pages[k] == nil {
			pages[k] = map[int]bool{}
			byBand[k.band] = append(byBand[k.band], k.key)
		}
		pages[k][e.Page] = true
	}

	verdict := map[bandKey]bool{}
	out := make([]bool, len(elements))
	for i, e := range elements {
		if e.BBox.IsZero() {
			continue
		}
		k := keys[i]
		v, ok := verdict[k]
		if !ok {
			v = clusterPages(k, byBand, pages) >= MinRepeatPages
			verdict[k] = v
		}
		out[i] = v
	}
	return out
}

// clusterPages counts distinct pages holding a near-equal key in the band
// of k or either neighboring band.
func clusterPages(k bandKey, byBand map[int][]string, pages map[bandKey]map[int]bool) int {
	seen := map[int]bool{}
	for band := k.band - 1; band <= k.band+1; band++ {
		for _, other := range byBand[band] {
			if !nearlyEqual(k.key, other) {
				continue
			}
			for p := range pages[bandKey{band: band, key: other}] {
				seen[p] = true
			}
		}
	}
	return len(seen)
}

func nearlyEqual(a, b string) bool {
	if a == b {
		return true
	}
	if Digits(a) != Digits(b) {
		return false
	}
	ra, rb := len([]rune(a)), len([]rune(b))
	if ra > maxFuzzyRunes || rb > maxFuzzyRunes {
		return false
	}
	tol := 1
	if max(ra, rb) >= 20 {
		tol = 2
	}
	if ra-rb > tol || rb-ra > tol {
		return false
	}
	return levenshtein.ComputeDistance(a, b) <= tol
}

// repetitionKey folds case and masks page numbers. Every digit run of a
// page-number-shaped text is masked; elsewhere only a run equal to the
// element's own page is, unless the number labels a section.
func repetitionKey(fold cases.Caser, text string, page int) string {
	folded := fold.String(text)
	trimmed := strings.TrimSpace(text)
	only := strconv.Itoa(page)
	switch {
	case rePageNumber.MatchString(trimmed):
		only = ""
	case HasNumbering(trimmed):
		only = "-"
	}

	var b strings.Builder
	rs := []rune(folded)
	for i := 0; i < len(rs); {
		if !unicode.IsDigit(rs[i]) {
			b.WriteRune(rs[i])
			i++
			continue
		}
		j := i
		for j < len(rs) && unicode.IsDigit(rs[j]) {
			j++
		}
		if run := string(rs[i:j]); only == "" || run == only {
			b.WriteByte('#')
		} else {
			b.WriteString(run)
		}
		i = j
	}
	return b.String()
}

// Digits returns the decimal digits of s in order.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
