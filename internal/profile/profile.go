// Package profile computes document-wide font statistics from a bounded
// sample of pages.
package profile

import (
	"log/slog"
	"sort"

	"github.com/dgallion1/docoutline/internal/element"
)

const (
	// MinSamplePages is always sampled when the document has that many pages.
	MinSamplePages = 8
	// MaxSamplePages bounds the sample window for large documents.
	MaxSamplePages = 15
	// sparseElementCount keeps widening the window past MinSamplePages while
	// fewer elements than this have been seen.
	sparseElementCount = 200
)

// DocumentProfile holds the font statistics of a document. A zero
// AvgFontSize marks the profile as degenerate: sizes were unknown or uniform.
type DocumentProfile struct {
	AvgFontSize      float64
	MedianFontSize   float64
	MinFontSize      float64
	MaxFontSize      float64
	DominantFontName string
	SampledPageCount int
}

// IsDegenerate reports whether font size carries no signal for this document.
func (p DocumentProfile) IsDegenerate() bool {
	return p.AvgFontSize == 0
}

// LogValue implements slog.LogValuer so the profile can be logged as a group.
func (p DocumentProfile) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("avg_font_size", p.AvgFontSize),
		slog.Float64("median_font_size", p.MedianFontSize),
		slog.Float64("min_font_size", p.MinFontSize),
		slog.Float64("max_font_size", p.MaxFontSize),
		slog.String("dominant_font", p.DominantFontName),
		slog.Int("sampled_pages", p.SampledPageCount),
		slog.Bool("degenerate", p.IsDegenerate()),
	)
}

// Compute derives the profile from the elements of the sampled pages.
// Elements must be in reading order.
func Compute(elements []element.TextElement) DocumentProfile {
	sample, pages := Sample(elements)
	if len(sample) == 0 {
		return DocumentProfile{}
	}

	sizes := make([]float64, len(sample))
	chars := map[string]int{}
	var sum float64
	for i, e := range sample {
		sizes[i] = e.FontSize
		sum += e.FontSize
		if e.FontName != "" {
			chars[e.FontName] += len([]rune(e.Text))
		}
	}
	sort.Float64s(sizes)

	p := DocumentProfile{
		MinFontSize:      sizes[0],
		MaxFontSize:      sizes[len(sizes)-1],
		DominantFontName: dominant(chars),
		SampledPageCount: pages,
	}
	if p.MinFontSize == p.MaxFontSize {
		return p
	}
	p.AvgFontSize = sum / float64(len(sizes))
	p.MedianFontSize = median(sizes)
	return p
}

// Sample returns the elements of the sampling window and the number of
// pages it covers. Documents of up to MinSamplePages pages are taken whole;
// longer ones start at MinSamplePages and grow one page at a time, up to
// MaxSamplePages, while the sample is sparse.
func Sample(elements []element.TextElement) ([]element.TextElement, int) {
	var pages []int
	perPage := map[int]int{}
	for _, e := range elements {
		if perPage[e.Page] == 0 {
			pages = append(pages, e.Page)
		}
		perPage[e.Page]++
	}
	sort.Ints(pages)

	window := min(len(pages), MinSamplePages)
	count := 0
	for _, p := range pages[:window] {
		count += perPage[p]
	}
	for window < len(pages) && window < MaxSamplePages && count < sparseElementCount {
		count += perPage[pages[window]]
		window++
	}
	if window == 0 {
		return nil, 0
	}

	last := pages[window-1]
	sample := make([]element.TextElement, 0, count)
	for _, e := range elements {
		if e.Page <= last {
			sample = append(sample, e)
		}
	}
	return sample, window
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func dominant(chars map[string]int) string {
	best, bestN := "", 0
	for name, n := range chars {
		if n > bestN || (n == bestN && name < best) {
			best, bestN = name, n
		}
	}
	return best
}
