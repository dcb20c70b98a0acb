// Package snap adjusts window positions and sizes so that edges close to a
// screen border, another window or the screen center line up exactly.
//
// All computations are pure: the engine reads the windows and areas it is
// given and returns a new position or rectangle.
package snap

import (
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
)

// Options are the snap zone radii in pixels. A zero radius disables that
// kind of snapping.
type Options struct {
	BorderZone int
	WindowZone int
	CenterZone int
	// OnlyWhenOverlapping snaps an edge only once it has crossed its target.
	OnlyWhenOverlapping bool
}

// Environment provides the areas and windows snapping is computed against.
type Environment interface {
	// MaximizeAreaAt is the maximize area of the screen containing p.
	MaximizeAreaAt(w *window.Window, p geom.Point) geom.Rect
	// MovementArea bounds interactive resizes.
	MovementArea(w *window.Window) geom.Rect
	// ScreensIntersecting counts the screens overlapping r.
	ScreensIntersecting(r geom.Rect) int
	// Windows lists all managed windows.
	Windows() []*window.Window
	CurrentDesktop() int
}

// Engine snaps against an Environment.
type Engine struct {
	opts Options
	env  Environment
}

// New returns an engine using opts.
func New(opts Options, env Environment) *Engine {
	return &Engine{opts: opts, env: env}
}

// Options returns the active snap zones.
func (e *Engine) Options() Options { return e.opts }

// SetOptions replaces the snap zones, e.g. after a configuration reload.
func (e *Engine) SetOptions(o Options) { e.opts = o }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// isTarget reports whether other can be snapped against.
func (e *Engine) isTarget(w, other *window.Window) bool {
	if other == w || other.Minimized || other.IsShade() || !other.IsShown() {
		return false
	}
	if !other.IsOnDesktop(e.env.CurrentDesktop()) {
		return false
	}
	switch other.Kind {
	case window.KindDesktop, window.KindSplash, window.KindNotification,
		window.KindCriticalNotification, window.KindOnScreenDisplay:
		return false
	}
	return true
}

// AdjustPosition snaps a candidate top-left position of w. strength scales
// every zone; 1 uses them unchanged. unrestricted allows the window to
// extend above the top of the area before center snapping kicks in.
func (e *Engine) AdjustPosition(w *window.Window, pos geom.Point, unrestricted bool, strength float64) geom.Point {
	borderZone := geom.Size{Width: e.opts.BorderZone, Height: e.opts.BorderZone}
	var maxRect geom.Rect
	guide := window.MaximizeRestore
	center := pos.Add(geom.Point{X: w.Frame.Width / 2, Y: w.Frame.Height / 2})

	if w.Maximize != window.MaximizeRestore {
		maxRect = e.env.MaximizeAreaAt(w, center)
		geo := w.Frame
		if w.Maximize&window.MaximizeHorizontal != 0 && (geo.X == maxRect.X || geo.Right() == maxRect.Right()) {
			guide |= window.MaximizeHorizontal
			borderZone.Width = max(borderZone.Width+2, maxRect.Width/16)
		}
		if w.Maximize&window.MaximizeVertical != 0 && (geo.Y == maxRect.Y || geo.Bottom() == maxRect.Bottom()) {
			guide |= window.MaximizeVertical
			borderZone.Height = max(borderZone.Height+2, maxRect.Height/16)
		}
	}

	if e.opts.WindowZone == 0 && borderZone.Width == 0 && borderZone.Height == 0 && e.opts.CenterZone == 0 {
		return pos
	}

	sOWO := e.opts.OnlyWhenOverlapping
	if maxRect.IsEmpty() {
		maxRect = e.env.MaximizeAreaAt(w, center)
	}
	xmin, xmax := maxRect.X, maxRect.Right()
	ymin, ymax := maxRect.Y, maxRect.Bottom()

	cx, cy := pos.X, pos.Y
	cw, ch := w.Frame.Width, w.Frame.Height
	rx, ry := cx+cw, cy+ch

	nx, ny := cx, cy
	deltaX, deltaY := xmax, ymax

	snapX := int(float64(borderZone.Width) * strength)
	snapY := int(float64(borderZone.Height) * strength)
	if snapX != 0 || snapY != 0 {
		margins := e.visibleFrameMargins(w, maxRect)
		if (!sOWO || cx < xmin) && abs(xmin-cx) < snapX {
			deltaX = abs(xmin - cx)
			nx = xmin - margins.Left
		}
		if (!sOWO || rx > xmax) && abs(rx-xmax) < snapX && abs(xmax-rx) < deltaX {
			deltaX = abs(rx - xmax)
			nx = xmax - cw + margins.Right
		}
		if (!sOWO || cy < ymin) && abs(ymin-cy) < snapY {
			deltaY = abs(ymin - cy)
			ny = ymin - margins.Top
		}
		if (!sOWO || ry > ymax) && abs(ry-ymax) < snapY && abs(ymax-ry) < deltaY {
			deltaY = abs(ry - ymax)
			ny = ymax - ch + margins.Bottom
		}
	}

	if snap := int(float64(e.opts.WindowZone) * strength); snap != 0 {
		for _, l := range e.env.Windows() {
			if !e.isTarget(w, l) {
				continue
			}
			lx, ly := l.Frame.X, l.Frame.Y
			lrx, lry := l.Frame.Right(), l.Frame.Bottom()

			if guide&window.MaximizeHorizontal == 0 &&
				((cy <= lry && cy >= ly) || (ry >= ly && ry <= lry) || (cy <= ly && ry >= lry)) {
				if (!sOWO || cx < lrx) && abs(lrx-cx) < snap && abs(lrx-cx) < deltaX {
					deltaX = abs(lrx - cx)
					nx = lrx
				}
				if (!sOWO || rx > lx) && abs(rx-lx) < snap && abs(rx-lx) < deltaX {
					deltaX = abs(rx - lx)
					nx = lx - cw
				}
			}

			if guide&window.MaximizeVertical == 0 &&
				((cx <= lrx && cx >= lx) || (rx >= lx && rx <= lrx) || (cx <= lx && rx >= lrx)) {
				if (!sOWO || cy < lry) && abs(lry-cy) < snap && abs(lry-cy) < deltaY {
					deltaY = abs(lry - cy)
					ny = lry
				}
				if (!sOWO || ry > ly) && abs(ry-ly) < snap && abs(ry-ly) < deltaY {
					deltaY = abs(ry - ly)
					ny = ly - ch
				}
			}

			// Corners: once an x edge is glued to l, line up top or bottom too.
			if guide&window.MaximizeVertical == 0 && (nx == lrx || nx+cw == lx) {
				if (!sOWO || ry > lry) && abs(lry-ry) < snap && abs(lry-ry) < deltaY {
					deltaY = abs(lry - ry)
					ny = lry - ch
				}
				if (!sOWO || cy < ly) && abs(cy-ly) < snap && abs(cy-ly) < deltaY {
					deltaY = abs(cy - ly)
					ny = ly
				}
			}
			if guide&window.MaximizeHorizontal == 0 && (ny == lry || ny+ch == ly) {
				if (!sOWO || rx > lrx) && abs(lrx-rx) < snap && abs(lrx-rx) < deltaX {
					deltaX = abs(lrx - rx)
					nx = lrx - cw
				}
				if (!sOWO || cx < lx) && abs(cx-lx) < snap && abs(cx-lx) < deltaX {
					deltaX = abs(cx - lx)
					nx = lx
				}
			}
		}
	}

	if snap := int(float64(e.opts.CenterZone) * strength); snap != 0 {
		diffX := abs((xmin+xmax)/2 - (cx + cw/2))
		diffY := abs((ymin+ymax)/2 - (cy + ch/2))
		switch {
		case diffX < snap && diffY < snap && diffX < deltaX && diffY < deltaY:
			nx = (xmin+xmax)/2 - cw/2
			ny = (ymin+ymax)/2 - ch/2
		case e.opts.BorderZone != 0:
			// Along a screen edge, also pull toward the middle of that edge.
			if (nx == xmin || nx == xmax-cw) && diffY < snap && diffY < deltaY {
				ny = (ymin+ymax)/2 - ch/2
			} else if ((unrestricted && ny == ymin) || (!unrestricted && ny <= ymin) || ny == ymax-ch) &&
				diffX < snap && diffX < deltaX {
				nx = (xmin+xmax)/2 - cw/2
			}
		}
	}

	return geom.Point{X: nx, Y: ny}
}

// visibleFrameMargins returns the client-side frame margins that may hang
// over a screen edge. Margins on the titlebar edge, on maximized axes and on
// edges shared with another screen stay inside the area.
func (e *Engine) visibleFrameMargins(w *window.Window, maxRect geom.Rect) geom.Margins {
	m := w.FrameMargins
	geo := w.Frame
	// The titlebar is always on top.
	m.Top = 0
	if m.Left != 0 && (w.Maximize&window.MaximizeHorizontal != 0 ||
		e.env.ScreensIntersecting(geo.Translated(maxRect.X-(m.Left+geo.X), 0)) > 1) {
		m.Left = 0
	}
	if m.Right != 0 && (w.Maximize&window.MaximizeHorizontal != 0 ||
		e.env.ScreensIntersecting(geo.Translated(maxRect.Right()+m.Right-geo.Right(), 0)) > 1) {
		m.Right = 0
	}
	if m.Bottom != 0 && (w.Maximize&window.MaximizeVertical != 0 ||
		e.env.ScreensIntersecting(geo.Translated(0, maxRect.Bottom()+m.Bottom-geo.Bottom())) > 1) {
		m.Bottom = 0
	}
	return m
}

// AdjustSize snaps the moving edges of a resize. gravity names the edges or
// corner being dragged; the opposite edges stay put. r is the candidate
// frame and the returned rectangle keeps the fixed edges of r.
func (e *Engine) AdjustSize(w *window.Window, r geom.Rect, gravity window.Gravity) geom.Rect {
	if e.opts.WindowZone == 0 && e.opts.BorderZone == 0 {
		return r
	}
	var moveLeft, moveRight, moveTop, moveBottom bool
	switch gravity {
	case window.GravityBottomRight:
		moveBottom, moveRight = true, true
	case window.GravityRight:
		moveRight = true
	case window.GravityBottom:
		moveBottom = true
	case window.GravityTopLeft:
		moveTop, moveLeft = true, true
	case window.GravityLeft:
		moveLeft = true
	case window.GravityTop:
		moveTop = true
	case window.GravityTopRight:
		moveTop, moveRight = true, true
	case window.GravityBottomLeft:
		moveBottom, moveLeft = true, true
	default:
		panic("snap: resize with invalid gravity " + gravity.String())
	}

	sOWO := e.opts.OnlyWhenOverlapping
	area := e.env.MovementArea(w)
	xmin, xmax := area.X, area.Right()
	ymin, ymax := area.Y, area.Bottom()

	cx, cy, rx, ry := r.X, r.Y, r.Right(), r.Bottom()
	nx, ny, nrx, nry := cx, cy, rx, ry

	if snap := e.opts.BorderZone; snap != 0 {
		deltaX, deltaY := snap, snap
		if moveLeft && (!sOWO || cx < xmin) && abs(xmin-cx) < deltaX {
			deltaX = abs(xmin - cx)
			nx = xmin
		}
		if moveRight && (!sOWO || rx > xmax) && abs(xmax-rx) < deltaX {
			nrx = xmax
		}
		if moveTop && (!sOWO || cy < ymin) && abs(ymin-cy) < deltaY {
			deltaY = abs(ymin - cy)
			ny = ymin
		}
		if moveBottom && (!sOWO || ry > ymax) && abs(ymax-ry) < deltaY {
			nry = ymax
		}
	}

	if snap := e.opts.WindowZone; snap != 0 {
		deltaX, deltaY := snap, snap
		desktop := e.env.CurrentDesktop()
		for _, l := range e.env.Windows() {
			if l == w || l.Minimized || !l.IsShown() || !l.IsOnDesktop(desktop) {
				continue
			}
			lx, ly := l.Frame.X, l.Frame.Y
			lrx, lry := l.Frame.Right(), l.Frame.Bottom()
			withinHeight := (cy <= lry && cy >= ly) || (ry >= ly && ry <= lry) || (cy <= ly && ry >= lry)
			withinWidth := (cx <= lrx && cx >= lx) || (rx >= lx && rx <= lrx) || (cx <= lx && rx >= lrx)

			snapTop := func() {
				if (!sOWO || cy < lry) && withinWidth && abs(lry-cy) < deltaY {
					deltaY = abs(lry - cy)
					ny = lry
				}
			}
			snapBottom := func() {
				if (!sOWO || ry > ly) && withinWidth && abs(ly-ry) < deltaY {
					deltaY = abs(ly - ry)
					nry = ly
				}
			}
			snapLeft := func() {
				if (!sOWO || cx < lrx) && withinHeight && abs(lrx-cx) < deltaX {
					deltaX = abs(lrx - cx)
					nx = lrx
				}
			}
			snapRight := func() {
				if (!sOWO || rx > lx) && withinHeight && abs(lx-rx) < deltaX {
					deltaX = abs(lx - rx)
					nrx = lx
				}
			}
			// Corner variants align with the parallel edge of a neighbour
			// the window is already glued to.
			cornerTop := func() {
				if (!sOWO || cy < ly) && (nx == lrx || nrx == lx) && abs(ly-cy) < deltaY {
					deltaY = abs(ly - cy)
					ny = ly
				}
			}
			cornerBottom := func() {
				if (!sOWO || ry > lry) && (nx == lrx || nrx == lx) && abs(lry-ry) < deltaY {
					deltaY = abs(lry - ry)
					nry = lry
				}
			}
			cornerLeft := func() {
				if (!sOWO || cx < lx) && (ny == lry || nry == ly) && abs(lx-cx) < deltaX {
					deltaX = abs(lx - cx)
					nx = lx
				}
			}
			cornerRight := func() {
				if (!sOWO || rx > lrx) && (ny == lry || nry == ly) && abs(lrx-rx) < deltaX {
					deltaX = abs(lrx - rx)
					nrx = lrx
				}
			}

			switch gravity {
			case window.GravityBottomRight:
				snapBottom()
				snapRight()
				cornerBottom()
				cornerRight()
			case window.GravityRight:
				snapRight()
				cornerRight()
			case window.GravityBottom:
				snapBottom()
				cornerBottom()
			case window.GravityTopLeft:
				snapTop()
				snapLeft()
				cornerTop()
				cornerLeft()
			case window.GravityLeft:
				snapLeft()
				cornerLeft()
			case window.GravityTop:
				snapTop()
				cornerTop()
			case window.GravityTopRight:
				snapTop()
				snapRight()
				cornerTop()
				cornerRight()
			case window.GravityBottomLeft:
				snapBottom()
				snapLeft()
				cornerBottom()
				cornerLeft()
			}
		}
	}

	return geom.WithEdges(nx, ny, nrx, nry)
}
