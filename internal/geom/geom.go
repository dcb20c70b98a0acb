// Package geom holds the integer geometry shared by the window manager core.
//
// Rectangles use exclusive right and bottom edges: a Rect{X: 0, Width: 10}
// covers columns 0 through 9 and Right() returns 10.
package geom

import (
	"fmt"

	"github.com/BurntSushi/xgbutil/xrect"
)

// Point is a position in root window coordinates.
type Point struct {
	X int
	Y int
}

// Add returns p translated by o.
func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }

// Sub returns p - o.
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

func (p Point) String() string { return fmt.Sprintf("%d,%d", p.X, p.Y) }

// Size is a width/height pair.
type Size struct {
	Width  int
	Height int
}

// IsEmpty reports whether either dimension is not positive.
func (s Size) IsEmpty() bool { return s.Width <= 0 || s.Height <= 0 }

// ExpandedTo returns the component-wise maximum of s and o.
func (s Size) ExpandedTo(o Size) Size {
	return Size{Width: max(s.Width, o.Width), Height: max(s.Height, o.Height)}
}

// BoundedTo returns the component-wise minimum of s and o.
func (s Size) BoundedTo(o Size) Size {
	return Size{Width: min(s.Width, o.Width), Height: min(s.Height, o.Height)}
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// Margins describes per-edge thickness, e.g. decoration borders.
type Margins struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Horizontal returns Left+Right.
func (m Margins) Horizontal() int { return m.Left + m.Right }

// Vertical returns Top+Bottom.
func (m Margins) Vertical() int { return m.Top + m.Bottom }

// IsZero reports whether every edge is zero.
func (m Margins) IsZero() bool { return m == Margins{} }

// Rect represents a window position and size.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// NewRect builds a Rect from a position and a size.
func NewRect(pos Point, size Size) Rect {
	return Rect{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}
}

func (r Rect) Left() int   { return r.X }
func (r Rect) Top() int    { return r.Y }
func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

func (r Rect) Pos() Point  { return Point{X: r.X, Y: r.Y} }
func (r Rect) Size() Size  { return Size{Width: r.Width, Height: r.Height} }
func (r Rect) Area() int   { return r.Width * r.Height }
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Center returns the center point, rounding toward the top-left.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// MovedTo returns r with its top-left corner at p.
func (r Rect) MovedTo(p Point) Rect {
	r.X, r.Y = p.X, p.Y
	return r
}

// Translated returns r shifted by dx, dy.
func (r Rect) Translated(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Resized returns r with the same top-left corner and a new size.
func (r Rect) Resized(s Size) Rect {
	r.Width, r.Height = s.Width, s.Height
	return r
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	if o.IsEmpty() || r.IsEmpty() {
		return false
	}
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Intersects reports whether r and o share at least one pixel.
func (r Rect) Intersects(o Rect) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Intersected returns the overlap of r and o, or the zero Rect.
func (r Rect) Intersected(o Rect) Rect {
	if !r.Intersects(o) {
		return Rect{}
	}
	x1, y1 := max(r.X, o.X), max(r.Y, o.Y)
	x2, y2 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// United returns the bounding rectangle of r and o. Empty inputs are ignored.
func (r Rect) United(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	x1, y1 := min(r.X, o.X), min(r.Y, o.Y)
	x2, y2 := max(r.Right(), o.Right()), max(r.Bottom(), o.Bottom())
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Grown returns r enlarged by m on each edge.
func (r Rect) Grown(m Margins) Rect {
	return Rect{
		X:      r.X - m.Left,
		Y:      r.Y - m.Top,
		Width:  r.Width + m.Horizontal(),
		Height: r.Height + m.Vertical(),
	}
}

// Shrunk returns r reduced by m on each edge.
func (r Rect) Shrunk(m Margins) Rect {
	return Rect{
		X:      r.X + m.Left,
		Y:      r.Y + m.Top,
		Width:  r.Width - m.Horizontal(),
		Height: r.Height - m.Vertical(),
	}
}

// WithEdges returns the rect spanning the given edges (right/bottom exclusive).
func WithEdges(left, top, right, bottom int) Rect {
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// XRect converts r for use with xgbutil helpers.
func (r Rect) XRect() *xrect.XRect {
	return xrect.New(r.X, r.Y, r.Width, r.Height)
}

// FromXRect converts an xgbutil rectangle.
func FromXRect(x xrect.Rect) Rect {
	rx, ry, rw, rh := xrect.RectPieces(x)
	return Rect{X: rx, Y: ry, Width: rw, Height: rh}
}

// Subtract returns the pieces of a not covered by b.
func Subtract(a, b Rect) []Rect {
	pieces := xrect.Subtract(a.XRect(), b.XRect())
	out := make([]Rect, 0, len(pieces))
	for _, p := range pieces {
		// xrect keeps pieces with negative extents when b sticks out of a.
		if piece := FromXRect(p); !piece.IsEmpty() {
			out = append(out, piece)
		}
	}
	return out
}

// LargestOverlap returns the index of the rect in candidates that overlaps
// needle the most, or -1 when none overlaps.
func LargestOverlap(needle Rect, candidates []Rect) int {
	haystack := make([]xrect.Rect, 0, len(candidates))
	for _, c := range candidates {
		haystack = append(haystack, c.XRect())
	}
	return xrect.LargestOverlap(needle.XRect(), haystack)
}

// OverlapArea returns the area shared by a and b.
func OverlapArea(a, b Rect) int {
	if a.IsEmpty() || b.IsEmpty() {
		return 0
	}
	return xrect.IntersectArea(a.XRect(), b.XRect())
}
