package hierarchy

import "github.com/dgallion1/docoutline/internal/scoring"

// Repair walks the candidates once in order and promotes any heading that
// is more than one level deeper than the heading before it. The walk starts
// at level zero, so the first heading always ends up H1. Levels are only
// ever raised.
func Repair(candidates []scoring.Candidate) {
	last := scoring.Rejected
	for i := range candidates {
		c := &candidates[i]
		if c.Level > last+1 {
			c.Level = last + 1
		}
		last = c.Level
	}
}
