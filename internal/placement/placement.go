// Package placement positions new windows and implements the pack, grow
// and shrink window operations.
package placement

import (
	"log"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
)

// Host is the workspace the engine places windows into.
type Host interface {
	// Windows returns the managed windows in stacking order, bottom first.
	Windows() []*window.Window
	CurrentDesktop() int
	ClientArea(opt workarea.AreaOption, w *window.Window) geom.Rect
	ClientAreaAt(opt workarea.AreaOption, p geom.Point, desktop int) geom.Rect
	ScreenAt(p geom.Point) int
	ScreensIntersecting(r geom.Rect) int
	MainWindows(w *window.Window) []*window.Window
	Pointer() geom.Point
	// ConstrainFrameSize applies size hints and tab group limits.
	ConstrainFrameSize(w *window.Window, s geom.Size, mode window.SizeMode) geom.Size
	Maximize(w *window.Window, mode window.MaximizeMode)
	CheckWorkspacePosition(w *window.Window)
	// RulePlacement returns the placement forced by window rules, or Default.
	RulePlacement(w *window.Window) Policy
}

// Options configure the engine.
type Options struct {
	Policy Policy
	// BorderSnapZone enables hiding frame margins at screen edges after
	// placement when non-zero.
	BorderSnapZone int
}

type cascadeState struct {
	pos      geom.Point
	col, row int
}

// Engine carries the state placement keeps between windows: the cascade
// position of every desktop and the random placement cursor.
type Engine struct {
	host Host
	opts Options

	cascade map[int]*cascadeState
	randX   int
	randY   int
}

const randomStep = 24

// New returns an engine placing into host.
func New(host Host, opts Options) *Engine {
	if opts.Policy == Default || opts.Policy == Unknown {
		opts.Policy = Smart
	}
	return &Engine{
		host:    host,
		opts:    opts,
		cascade: make(map[int]*cascadeState),
		randX:   randomStep,
		randY:   2 * randomStep,
	}
}

func (e *Engine) Options() Options { return e.opts }

func (e *Engine) SetOptions(o Options) {
	if o.Policy == Default || o.Policy == Unknown {
		o.Policy = Smart
	}
	e.opts = o
}

// Place positions w inside area according to its rules and its kind.
func (e *Engine) Place(w *window.Window, area geom.Rect) {
	if p := e.host.RulePlacement(w); p != Default {
		e.PlaceWith(w, area, p, Unknown)
		return
	}
	switch {
	case w.Kind == window.KindUtility:
		e.PlaceWith(w, area, Default, Unknown)
	case w.Kind == window.KindDialog:
		e.placeOnMainWindow(w, area, e.opts.Policy)
	case w.Kind == window.KindSplash:
		e.placeOnMainWindow(w, area, Unknown)
	case w.Kind == window.KindOnScreenDisplay || w.Kind == window.KindNotification ||
		w.Kind == window.KindCriticalNotification:
		e.placeOnScreenDisplay(w, area)
	case w.IsTransient():
		e.placeOnMainWindow(w, area, e.opts.Policy)
	default:
		e.PlaceWith(w, area, e.opts.Policy, Unknown)
	}
}

// PlaceWith places w with an explicit policy. next is the fallback used by
// policies that can give up.
func (e *Engine) PlaceWith(w *window.Window, area geom.Rect, policy, next Policy) {
	if policy == Unknown {
		policy = Default
	}
	if policy == Default {
		policy = e.opts.Policy
	}
	if area.IsEmpty() {
		log.Printf("placement: empty area for %#x", w.XID)
		return
	}
	switch policy {
	case NoPlacement:
		return
	case Random:
		e.placeAtRandom(w, area)
	case Cascade:
		e.placeCascaded(w, area, next)
	case Centered:
		e.placeCentered(w, area)
	case ZeroCornered:
		w.Move(area.Pos())
	case UnderMouse:
		e.placeUnderMouse(w, area)
	case OnMainWindow:
		e.placeOnMainWindow(w, area, next)
	case Maximizing:
		e.placeMaximizing(w, area, next)
	default:
		e.placeSmart(w, area)
	}

	if e.opts.BorderSnapZone != 0 {
		e.hideFrameMargins(w)
	}
}

// hideFrameMargins pushes invisible frame margins past the edges of the
// full area so the visible border lines up with the screen edge. The
// titlebar is on top, so the top margin always stays visible.
func (e *Engine) hideFrameMargins(w *window.Window) {
	geo := w.Frame
	corner := geo.Pos()
	m := w.FrameMargins
	full := e.host.ClientArea(workarea.FullArea, w)
	if w.Maximize&window.MaximizeHorizontal == 0 {
		if geo.Right() == full.Right() {
			corner.X += m.Right
		}
		if geo.X == full.X {
			corner.X -= m.Left
		}
	}
	if w.Maximize&window.MaximizeVertical == 0 && geo.Bottom() == full.Bottom() {
		corner.Y += m.Bottom
	}
	w.Move(corner)
}

func (e *Engine) placeAtRandom(w *window.Window, area geom.Rect) {
	if e.randX < area.X {
		e.randX = area.X
	}
	if e.randY < area.Y {
		e.randY = area.Y
	}
	e.randX += randomStep
	e.randY += 2 * randomStep

	if e.randX > area.Width/2 {
		e.randX = area.X + randomStep
	}
	if e.randY > area.Height/2 {
		e.randY = area.Y + randomStep
	}
	tx, ty := e.randX, e.randY
	if tx+w.Frame.Width > area.Right() {
		tx = max(area.Right()-w.Frame.Width, 0)
		e.randX = area.X
	}
	if ty+w.Frame.Height > area.Bottom() {
		ty = max(area.Bottom()-w.Frame.Height, 0)
		e.randY = area.Y
	}
	w.Move(geom.Point{X: tx, Y: ty})
}

// irrelevant reports whether other is ignored when placing w on desktop.
func irrelevant(other, w *window.Window, desktop int) bool {
	return other == nil || other == w || !other.IsShown() ||
		!other.IsOnDesktop(desktop) || other.Kind == window.KindDesktop
}

func (e *Engine) desktopOf(w *window.Window) int {
	if w.Desktop == 0 || w.IsOnAllDesktops() {
		return e.host.CurrentDesktop()
	}
	return w.Desktop
}

// placeSmart scans candidate positions left to right, then top to bottom,
// and keeps the one with the least weighted overlap. It stops at the first
// position without any overlap.
func (e *Engine) placeSmart(w *window.Window, area geom.Rect) {
	if w.Frame.IsEmpty() {
		return
	}
	const (
		none   = 0
		hWrong = -1
		wWrong = -2
	)
	desktop := e.desktopOf(w)
	others := e.host.Windows()

	// The scan works on inclusive pixel coordinates.
	areaRight, areaBottom := area.Right()-1, area.Bottom()-1
	x, y := area.X, area.Y
	xOpt, yOpt := x, y
	ch := w.Frame.Height - 1
	cw := w.Frame.Width - 1

	var overlap, minOverlap int
	firstPass := true
	for {
		switch {
		case y+ch > areaBottom && ch < area.Height:
			overlap = hWrong
		case x+cw > areaRight:
			overlap = wWrong
		default:
			overlap = none
			cxl, cxr := x, x+cw
			cyt, cyb := y, y+ch
			for _, o := range others {
				if irrelevant(o, w, desktop) {
					continue
				}
				xl, yt := o.Frame.X, o.Frame.Y
				xr, yb := xl+o.Frame.Width, yt+o.Frame.Height
				if cxl < xr && cxr > xl && cyt < yb && cyb > yt {
					xl, xr = max(cxl, xl), min(cxr, xr)
					yt, yb = max(cyt, yt), min(cyb, yb)
					switch {
					case o.KeepAbove:
						overlap += 16 * (xr - xl) * (yb - yt)
					case o.KeepBelow && o.Kind != window.KindDock:
						// Windows kept below do not count.
					default:
						overlap += (xr - xl) * (yb - yt)
					}
				}
			}
		}

		if overlap == none {
			xOpt, yOpt = x, y
			break
		}
		if firstPass {
			firstPass = false
			minOverlap = overlap
		} else if overlap >= none && overlap < minOverlap {
			minOverlap = overlap
			xOpt, yOpt = x, y
		}

		if overlap > none {
			possible := areaRight
			if possible-cw > x {
				possible -= cw
			}
			for _, o := range others {
				if irrelevant(o, w, desktop) {
					continue
				}
				xl, yt := o.Frame.X, o.Frame.Y
				xr, yb := xl+o.Frame.Width, yt+o.Frame.Height
				// Not enough room above or below o: the next candidate is
				// the first column clear of it.
				if y < yb && yt < ch+y {
					if xr > x && possible > xr {
						possible = xr
					}
					if basket := xl - cw; basket > x && possible > basket {
						possible = basket
					}
				}
			}
			x = possible
		} else if overlap == wWrong {
			x = area.X
			possible := areaBottom
			if possible-ch > y {
				possible -= ch
			}
			for _, o := range others {
				if irrelevant(o, w, desktop) {
					continue
				}
				yt := o.Frame.Y
				yb := yt + o.Frame.Height
				if yb > y && possible > yb {
					possible = yb
				}
				if basket := yt - ch; basket > y && possible > basket {
					possible = basket
				}
			}
			y = possible
		}

		if overlap == hWrong || y >= areaBottom {
			break
		}
	}

	if ch >= area.Height {
		yOpt = area.Y
	}
	w.Move(geom.Point{X: xOpt, Y: yOpt})
}

// ReinitCascading resets the cascade of one desktop, or of every desktop
// when desktop is 0.
func (e *Engine) ReinitCascading(desktop int) {
	if desktop == 0 {
		clear(e.cascade)
		return
	}
	delete(e.cascade, desktop)
}

// CascadeOffset is the step between two cascaded windows.
func (e *Engine) CascadeOffset(w *window.Window) geom.Point {
	area := e.host.ClientAreaAt(workarea.PlacementArea, w.Frame.Center(), w.Desktop)
	return geom.Point{X: area.Width / 48, Y: area.Height / 48}
}

func (e *Engine) placeCascaded(w *window.Window, area geom.Rect, next Policy) {
	if w.Frame.IsEmpty() {
		return
	}
	delta := e.CascadeOffset(w)
	desktop := e.desktopOf(w)
	cw, ch := w.Frame.Width, w.Frame.Height
	if next == Unknown {
		next = Smart
	}

	ci := e.cascade[desktop]
	if ci == nil || ci.pos.X < area.X || ci.pos.Y < area.Y {
		ci = &cascadeState{pos: area.Pos()}
		e.cascade[desktop] = ci
	}

	xp, yp := ci.pos.X, ci.pos.Y
	if yp+ch > area.Bottom() {
		yp = area.Y
	}
	if xp+cw > area.Right() {
		if yp == area.Y {
			e.PlaceWith(w, area, next, Unknown)
			return
		}
		xp = area.X
	}

	if ci.pos.X != area.X && ci.pos.Y != area.Y {
		if xp != area.X && yp == area.Y {
			ci.col++
			xp = area.X + delta.X*ci.col
		}
		if yp != area.Y && xp == area.X {
			ci.row++
			yp = area.Y + delta.Y*ci.row
		}
		if xp+cw > area.Right() || yp+ch > area.Bottom() {
			e.PlaceWith(w, area, next, Unknown)
			return
		}
	}

	w.Move(geom.Point{X: xp, Y: yp})
	ci.pos = geom.Point{X: xp + delta.X, Y: yp + delta.Y}
}

func (e *Engine) placeCentered(w *window.Window, area geom.Rect) {
	w.Move(geom.Point{
		X: area.X + (area.Width-w.Frame.Width)/2,
		Y: area.Y + (area.Height-w.Frame.Height)/2,
	})
}

// placeOnScreenDisplay centers horizontally at two thirds of the height.
func (e *Engine) placeOnScreenDisplay(w *window.Window, area geom.Rect) {
	w.Move(geom.Point{
		X: area.X + (area.Width-w.Frame.Width)/2,
		Y: area.Y + 2*area.Height/3 - w.Frame.Height/2,
	})
}

func (e *Engine) placeUnderMouse(w *window.Window, area geom.Rect) {
	p := e.host.Pointer()
	w.Move(geom.Point{X: p.X - w.Frame.Width/2, Y: p.Y - w.Frame.Height/2})
	e.KeepInArea(w, area, false)
}

// placeOnMainWindow centers w over its main window. Without exactly one
// usable main window on the current desktop it falls back to Centered.
func (e *Engine) placeOnMainWindow(w *window.Window, area geom.Rect, next Policy) {
	if next == Unknown {
		next = Centered
	}
	if next == Maximizing {
		e.placeMaximizing(w, area, NoPlacement)
	}
	mains := e.host.MainWindows(w)
	current := e.host.CurrentDesktop()
	var placeOn, candidate *window.Window
	count := 0
	for _, m := range mains {
		if len(mains) > 1 && m.IsSpecial() {
			continue
		}
		count++
		candidate = m
		if m.IsOnDesktop(current) {
			if placeOn != nil {
				e.PlaceWith(w, area, Centered, Unknown)
				return
			}
			placeOn = m
		}
	}
	if placeOn == nil {
		if count != 1 {
			e.PlaceWith(w, area, Centered, Unknown)
			return
		}
		placeOn = candidate
	}
	if placeOn.Kind == window.KindDesktop {
		e.PlaceWith(w, area, Centered, Unknown)
		return
	}
	c := placeOn.Frame.Center()
	w.Move(geom.Point{X: c.X - w.Frame.Width/2, Y: c.Y - w.Frame.Height/2})
	// The main window may be on another screen.
	e.KeepInArea(w, e.host.ClientArea(workarea.PlacementArea, w), false)
}

func (e *Engine) frameMaxSize(w *window.Window) geom.Size {
	return w.ClientSizeToFrameSize(w.Hints.Max)
}

func (e *Engine) placeMaximizing(w *window.Window, area geom.Rect, next Policy) {
	if next == Unknown {
		next = Smart
	}
	maxSize := e.frameMaxSize(w)
	if w.IsMaximizable() && maxSize.Width >= area.Width && maxSize.Height >= area.Height {
		if e.host.ClientArea(workarea.MaximizeArea, w) == area {
			e.host.Maximize(w, window.MaximizeFull)
		} else {
			w.SetFrameGeometry(area, false)
		}
		return
	}
	e.ResizeWithChecks(w, maxSize.BoundedTo(area.Size()))
	e.PlaceWith(w, area, next, Unknown)
}

// ResizeWithChecks resizes the frame of w to the closest size its hints
// allow, keeping the top-left corner.
func (e *Engine) ResizeWithChecks(w *window.Window, s geom.Size) {
	s = e.host.ConstrainFrameSize(w, s, window.SizeModeAny)
	w.SetFrameGeometry(w.Frame.Resized(s), false)
}

// KeepInArea moves w inside area, shrinking it first when it does not
// fit. With partial set, only 100 pixels of the window must stay inside
// and the size is left alone.
func (e *Engine) KeepInArea(w *window.Window, area geom.Rect, partial bool) {
	if partial {
		area = geom.WithEdges(
			min(area.X-w.Frame.Width+100, area.X),
			min(area.Y-w.Frame.Height+100, area.Y),
			max(area.Right()+w.Frame.Width-100, area.Right()),
			max(area.Bottom()+w.Frame.Height-100, area.Bottom()),
		)
	} else if area.Width < w.Frame.Width || area.Height < w.Frame.Height {
		e.ResizeWithChecks(w, w.Frame.Size().BoundedTo(area.Size()))
	}
	geo := w.Frame
	tx, ty := geo.X, geo.Y
	if geo.Right() > area.Right() && geo.Width <= area.Width {
		tx = area.Right() - geo.Width
	}
	if geo.Bottom() > area.Bottom() && geo.Height <= area.Height {
		ty = area.Bottom() - geo.Height
	}
	if !area.Contains(geo.Pos()) {
		tx = max(tx, area.X)
		ty = max(ty, area.Y)
	}
	if tx != geo.X || ty != geo.Y {
		w.Move(geom.Point{X: tx, Y: ty})
	}
}

// CascadeDesktop re-cascades every movable window of the current desktop.
func (e *Engine) CascadeDesktop() {
	desktop := e.host.CurrentDesktop()
	e.ReinitCascading(desktop)
	for _, w := range e.host.Windows() {
		if !w.IsOnDesktop(desktop) || w.Minimized || w.IsOnAllDesktops() || !w.IsMovable() {
			continue
		}
		e.placeCascaded(w, e.host.ClientArea(workarea.PlacementArea, w), Unknown)
	}
}

// UnclutterDesktop smart-places every movable window of the current
// desktop, topmost first.
func (e *Engine) UnclutterDesktop() {
	desktop := e.host.CurrentDesktop()
	all := e.host.Windows()
	for i := len(all) - 1; i >= 0; i-- {
		w := all[i]
		if !w.IsOnDesktop(desktop) || w.Minimized || w.IsOnAllDesktops() || !w.IsMovable() {
			continue
		}
		e.placeSmart(w, e.host.ClientArea(workarea.PlacementArea, w))
	}
}
