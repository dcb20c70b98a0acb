package window

import (
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/KDE/kwin-sub007/internal/geom"
)

// Strut is an extended strut in display coordinates. Start/end ranges are
// half-open: [Start, End).
type Strut struct {
	Left, Right, Top, Bottom int

	LeftStart, LeftEnd     int
	RightStart, RightEnd   int
	TopStart, TopEnd       int
	BottomStart, BottomEnd int
}

// StrutRect is a reserved rectangle tagged with the edge it belongs to.
type StrutRect struct {
	geom.Rect
	Area StrutArea
}

// StrutFromPartial converts _NET_WM_STRUT_PARTIAL. The property stores
// inclusive end coordinates.
func StrutFromPartial(p *ewmh.WmStrutPartial) Strut {
	if p == nil {
		return Strut{}
	}
	s := Strut{
		Left:   int(p.Left),
		Right:  int(p.Right),
		Top:    int(p.Top),
		Bottom: int(p.Bottom),
	}
	s.LeftStart, s.LeftEnd = int(p.LeftStartY), int(p.LeftEndY)+1
	s.RightStart, s.RightEnd = int(p.RightStartY), int(p.RightEndY)+1
	s.TopStart, s.TopEnd = int(p.TopStartX), int(p.TopEndX)+1
	s.BottomStart, s.BottomEnd = int(p.BottomStartX), int(p.BottomEndX)+1
	return s
}

// StrutFromLegacy converts _NET_WM_STRUT, which always spans the whole
// display edge.
func StrutFromLegacy(p *ewmh.WmStrut, display geom.Size) Strut {
	if p == nil {
		return Strut{}
	}
	s := Strut{Left: int(p.Left), Right: int(p.Right), Top: int(p.Top), Bottom: int(p.Bottom)}
	if s.Left != 0 {
		s.LeftStart, s.LeftEnd = 0, display.Height
	}
	if s.Right != 0 {
		s.RightStart, s.RightEnd = 0, display.Height
	}
	if s.Top != 0 {
		s.TopStart, s.TopEnd = 0, display.Width
	}
	if s.Bottom != 0 {
		s.BottomStart, s.BottomEnd = 0, display.Width
	}
	return s
}

// IsEmpty reports whether the strut reserves nothing.
func (s Strut) IsEmpty() bool {
	return s.Left == 0 && s.Right == 0 && s.Top == 0 && s.Bottom == 0
}

// Rect returns the reserved rectangle for one edge, or an empty StrutRect.
func (s Strut) Rect(area StrutArea, display geom.Size) StrutRect {
	switch area {
	case StrutAreaTop:
		if s.Top != 0 {
			return StrutRect{Rect: geom.Rect{X: s.TopStart, Y: 0, Width: s.TopEnd - s.TopStart, Height: s.Top}, Area: area}
		}
	case StrutAreaRight:
		if s.Right != 0 {
			return StrutRect{Rect: geom.Rect{X: display.Width - s.Right, Y: s.RightStart, Width: s.Right, Height: s.RightEnd - s.RightStart}, Area: area}
		}
	case StrutAreaBottom:
		if s.Bottom != 0 {
			return StrutRect{Rect: geom.Rect{X: s.BottomStart, Y: display.Height - s.Bottom, Width: s.BottomEnd - s.BottomStart, Height: s.Bottom}, Area: area}
		}
	case StrutAreaLeft:
		if s.Left != 0 {
			return StrutRect{Rect: geom.Rect{X: 0, Y: s.LeftStart, Width: s.Left, Height: s.LeftEnd - s.LeftStart}, Area: area}
		}
	default:
		panic("window: invalid strut area")
	}
	return StrutRect{}
}

// Rects returns every non-empty edge rectangle.
func (s Strut) Rects(display geom.Size) []StrutRect {
	var out []StrutRect
	for _, area := range []StrutArea{StrutAreaTop, StrutAreaRight, StrutAreaBottom, StrutAreaLeft} {
		if r := s.Rect(area, display); !r.IsEmpty() {
			out = append(out, r)
		}
	}
	return out
}
