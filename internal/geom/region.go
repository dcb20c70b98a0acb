package geom

// Region is a set of rectangles. Rectangles may overlap.
type Region []Rect

// IsEmpty reports whether the region covers no pixel.
func (g Region) IsEmpty() bool {
	for _, r := range g {
		if !r.IsEmpty() {
			return false
		}
	}
	return true
}

// Intersects reports whether any rectangle of g overlaps r.
func (g Region) Intersects(r Rect) bool {
	for _, part := range g {
		if part.Intersects(r) {
			return true
		}
	}
	return false
}

// Subtract removes r from every rectangle in g.
func (g Region) Subtract(r Rect) Region {
	var out Region
	for _, part := range g {
		if !part.Intersects(r) {
			out = append(out, part)
			continue
		}
		out = append(out, Subtract(part, r)...)
	}
	return out
}

// Bounds returns the bounding rectangle of the region.
func (g Region) Bounds() Rect {
	var b Rect
	for _, r := range g {
		b = b.United(r)
	}
	return b
}
