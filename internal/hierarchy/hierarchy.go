// Package hierarchy turns accepted heading candidates into an outline:
// it assigns H1..H3, drops near-duplicates and repairs level jumps.
package hierarchy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dgallion1/docoutline/internal/patterns"
	"github.com/dgallion1/docoutline/internal/profile"
	"github.com/dgallion1/docoutline/internal/scoring"
)

// LevelPolicy decides which cue wins when font size and pattern disagree.
type LevelPolicy string

const (
	// PolicyPattern lets numbering and keywords decide, falling back to font rank.
	PolicyPattern LevelPolicy = "pattern"
	// PolicyFont lets font rank decide whenever candidates differ in size.
	PolicyFont LevelPolicy = "font"
)

// Config controls level assignment and deduplication.
type Config struct {
	LevelPolicy      LevelPolicy `yaml:"level_policy"`
	DedupScoreMargin float64     `yaml:"dedup_score_margin"`
}

// DefaultConfig returns the pattern-first policy.
func DefaultConfig() Config {
	return Config{LevelPolicy: PolicyPattern, DedupScoreMargin: 0.1}
}

// Validate rejects unknown policies and negative margins.
func (c Config) Validate() error {
	switch c.LevelPolicy {
	case PolicyPattern, PolicyFont:
	default:
		return fmt.Errorf("unknown level policy %q", c.LevelPolicy)
	}
	if c.DedupScoreMargin < 0 {
		return fmt.Errorf("dedup_score_margin must not be negative, got %v", c.DedupScoreMargin)
	}
	return nil
}

const (
	sizeBucket      = 0.5
	longCapsRunes   = 15
	largeFontFactor = 1.8
)

// Classify keeps the accepted candidates, assigns their levels, removes
// near-duplicates and repairs the hierarchy. The result is in reading order.
func Classify(candidates []scoring.Candidate, p profile.DocumentProfile, cfg Config) []scoring.Candidate {
	var accepted []scoring.Candidate
	for _, c := range candidates {
		if c.Accepted() {
			accepted = append(accepted, c)
		}
	}
	if len(accepted) == 0 {
		return []scoring.Candidate{}
	}
	sort.SliceStable(accepted, func(i, j int) bool { return accepted[i].Index < accepted[j].Index })

	AssignLevels(accepted, p, cfg.LevelPolicy)
	accepted = Dedup(accepted, cfg.DedupScoreMargin)
	Repair(accepted)
	return accepted
}

// AssignLevels sets the initial level of every candidate in place.
func AssignLevels(candidates []scoring.Candidate, p profile.DocumentProfile, policy LevelPolicy) {
	ranks := newFontRanks(candidates, p)
	for i := range candidates {
		c := &candidates[i]
		if policy == PolicyFont && ranks.informative() {
			c.Level = ranks.level(c.Element.FontSize)
			continue
		}
		switch {
		case c.LevelHint > 0:
			c.Level = scoring.Level(min(c.LevelHint, 3))
		case textCue(*c, p) != scoring.Rejected:
			c.Level = textCue(*c, p)
		case ranks.informative():
			c.Level = ranks.level(c.Element.FontSize)
		default:
			c.Level = scoreLevel(c.Score)
		}
	}
}

// textCue reads a level off the shape of the text alone.
func textCue(c scoring.Candidate, p profile.DocumentProfile) scoring.Level {
	text := c.Element.Text
	if patterns.IsAllCaps(text) && len([]rune(text)) > longCapsRunes {
		return scoring.H1
	}
	if !p.IsDegenerate() && c.Element.FontSize >= largeFontFactor*p.AvgFontSize {
		return scoring.H1
	}
	if strings.HasSuffix(text, ":") || patterns.HasBullet(text) {
		return scoring.H3
	}
	return scoring.Rejected
}

func scoreLevel(score float64) scoring.Level {
	switch {
	case score >= 0.7:
		return scoring.H1
	case score >= 0.5:
		return scoring.H2
	}
	return scoring.H3
}

// fontRanks orders the distinct heading sizes of a document.
type fontRanks struct {
	body     float64 // sizes at or below this are body text; 0 when unknown
	buckets  []int   // heading size buckets, largest first
	distinct int     // distinct buckets over all candidates
}

func bucketOf(size float64) int {
	return int(math.Round(size / sizeBucket))
}

func newFontRanks(candidates []scoring.Candidate, p profile.DocumentProfile) fontRanks {
	r := fontRanks{}
	if !p.IsDegenerate() {
		r.body = p.AvgFontSize
	}
	all := map[int]bool{}
	heading := map[int]bool{}
	for _, c := range candidates {
		b := bucketOf(c.Element.FontSize)
		all[b] = true
		if c.Element.FontSize > r.body {
			heading[b] = true
		}
	}
	r.distinct = len(all)
	for b := range heading {
		r.buckets = append(r.buckets, b)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(r.buckets)))
	return r
}

// informative reports whether font size separates the candidates at all.
func (r fontRanks) informative() bool { return r.distinct > 1 }

func (r fontRanks) level(size float64) scoring.Level {
	if size <= r.body {
		return scoring.H3
	}
	b := bucketOf(size)
	for i, hb := range r.buckets {
		if hb == b {
			return scoring.Level(min(i+1, 3))
		}
	}
	return scoring.H3
}
