package element

// PageGeometry summarizes where text sits on one page.
type PageGeometry struct {
	Page   int
	MinX0  float64
	MinY0  float64
	MaxY1  float64
	Height float64 // parser page height when known, else MaxY1
}

// HasBounds reports whether any element on the page carried a bounding box.
func (g PageGeometry) HasBounds() bool {
	return g.MaxY1 > 0 && g.MaxY1 > g.MinY0
}

// TextSpan is the vertical extent occupied by text on the page.
func (g PageGeometry) TextSpan() float64 {
	return g.MaxY1 - g.MinY0
}

// Geometry computes PageGeometry for every page that has elements. Elements
// without a bounding box do not contribute.
func Geometry(elements []TextElement) map[int]PageGeometry {
	out := make(map[int]PageGeometry)
	for _, e := range elements {
		g, seen := out[e.Page]
		if !seen {
			g = PageGeometry{Page: e.Page}
		}
		g.Height = max(g.Height, e.PageHeight)
		if e.BBox.IsZero() {
			out[e.Page] = g
			continue
		}
		if !seen || !g.HasBounds() {
			g.MinX0, g.MinY0, g.MaxY1 = e.BBox.X0, e.BBox.Y0, e.BBox.Y1
		} else {
			g.MinX0 = min(g.MinX0, e.BBox.X0)
			g.MinY0 = min(g.MinY0, e.BBox.Y0)
			g.MaxY1 = max(g.MaxY1, e.BBox.Y1)
		}
		out[e.Page] = g
	}
	for page, g := range out {
		if g.Height <= 0 {
			g.Height = g.MaxY1
			out[page] = g
		}
	}
	return out
}
