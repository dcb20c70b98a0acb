package movemode

import (
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
)

// Direction represents an arrow key direction
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Keyboard step sizes in pixels.
const (
	StepNormal = 8
	StepFine   = 1
)

// Step returns the pointer offset for one arrow key press.
func Step(dir Direction, fine bool) geom.Point {
	n := StepNormal
	if fine {
		n = StepFine
	}
	switch dir {
	case DirUp:
		return geom.Point{Y: -n}
	case DirDown:
		return geom.Point{Y: n}
	case DirLeft:
		return geom.Point{X: -n}
	case DirRight:
		return geom.Point{X: n}
	}
	return geom.Point{}
}

// GravityAt picks the edges a resize started at p drags. The frame is split
// into thirds on each axis; the middle cell resizes from the bottom right.
func GravityAt(frame geom.Rect, p geom.Point) window.Gravity {
	left := p.X < frame.X+frame.Width/3
	right := p.X >= frame.Right()-frame.Width/3
	top := p.Y < frame.Y+frame.Height/3
	bottom := p.Y >= frame.Bottom()-frame.Height/3

	switch {
	case top && left:
		return window.GravityTopLeft
	case top && right:
		return window.GravityTopRight
	case bottom && left:
		return window.GravityBottomLeft
	case bottom && right:
		return window.GravityBottomRight
	case left:
		return window.GravityLeft
	case right:
		return window.GravityRight
	case top:
		return window.GravityTop
	case bottom:
		return window.GravityBottom
	}
	return window.GravityBottomRight
}

// edges reports which edges gravity moves.
func edges(g window.Gravity) (left, right, top, bottom bool) {
	switch g {
	case window.GravityLeft:
		left = true
	case window.GravityRight:
		right = true
	case window.GravityTop:
		top = true
	case window.GravityBottom:
		bottom = true
	case window.GravityTopLeft:
		top, left = true, true
	case window.GravityTopRight:
		top, right = true, true
	case window.GravityBottomLeft:
		bottom, left = true, true
	case window.GravityBottomRight:
		bottom, right = true, true
	}
	return
}

// resizeFrame moves the edges of r selected by g by delta. Edges never
// cross; a collapsed axis keeps one pixel.
func resizeFrame(r geom.Rect, g window.Gravity, delta geom.Point) geom.Rect {
	l, t, rt, b := r.X, r.Y, r.Right(), r.Bottom()
	left, right, top, bottom := edges(g)
	if left {
		l = min(l+delta.X, rt-1)
	}
	if right {
		rt = max(rt+delta.X, l+1)
	}
	if top {
		t = min(t+delta.Y, b-1)
	}
	if bottom {
		b = max(b+delta.Y, t+1)
	}
	return geom.Rect{X: l, Y: t, Width: rt - l, Height: b - t}
}

// anchorSize resizes r to size keeping the edges g does not drag in place.
func anchorSize(r geom.Rect, size geom.Size, g window.Gravity) geom.Rect {
	left, _, top, _ := edges(g)
	out := r.Resized(size)
	if left {
		out.X = r.Right() - size.Width
	}
	if top {
		out.Y = r.Bottom() - size.Height
	}
	return out
}
