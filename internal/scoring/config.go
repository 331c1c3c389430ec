package scoring

import (
	"fmt"

	"github.com/dgallion1/docoutline/internal/patterns"
)

// Config holds the scorer weights and thresholds.
type Config struct {
	FontWeight        float64 `yaml:"font_weight"`
	TextWeight        float64 `yaml:"text_weight"`
	LayoutWeight      float64 `yaml:"layout_weight"`
	PatternWeight     float64 `yaml:"pattern_weight"`
	MinScoreThreshold float64 `yaml:"min_score_threshold"`
	IsolationFactor   float64 `yaml:"isolation_factor"`
	MaxHeadingWords   int     `yaml:"max_heading_words"`
}

// DefaultConfig returns the standard weighting.
func DefaultConfig() Config {
	return Config{
		FontWeight:        0.35,
		TextWeight:        0.30,
		LayoutWeight:      0.20,
		PatternWeight:     0.15,
		MinScoreThreshold: 0.35,
		IsolationFactor:   1.2,
		MaxHeadingWords:   patterns.DefaultMaxHeadingWords,
	}
}

func (c Config) weightSum() float64 {
	return c.FontWeight + c.TextWeight + c.LayoutWeight + c.PatternWeight
}

// Validate checks that the configuration can produce scores in [0,1].
func (c Config) Validate() error {
	weights := []struct {
		name  string
		value float64
	}{
		{"font_weight", c.FontWeight},
		{"text_weight", c.TextWeight},
		{"layout_weight", c.LayoutWeight},
		{"pattern_weight", c.PatternWeight},
	}
	for _, w := range weights {
		if w.value < 0 {
			return fmt.Errorf("%s must not be negative, got %v", w.name, w.value)
		}
	}
	if c.weightSum() <= 0 {
		return fmt.Errorf("scoring weights must not all be zero")
	}
	if c.MinScoreThreshold < 0 || c.MinScoreThreshold > 1 {
		return fmt.Errorf("min_score_threshold must be within [0,1], got %v", c.MinScoreThreshold)
	}
	if c.IsolationFactor <= 0 {
		return fmt.Errorf("isolation_factor must be positive, got %v", c.IsolationFactor)
	}
	if c.MaxHeadingWords <= 0 {
		return fmt.Errorf("max_heading_words must be positive, got %d", c.MaxHeadingWords)
	}
	return nil
}
