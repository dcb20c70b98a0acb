package placement

import (
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
)

// The pack helpers below work on inclusive pixel coordinates: a right or
// bottom value names the last column or row a window covers.

func lastX(r geom.Rect) int { return r.Right() - 1 }
func lastY(r geom.Rect) int { return r.Bottom() - 1 }

func overlapsVertically(a, b geom.Rect) bool {
	return !(a.Y > lastY(b) || lastY(a) < b.Y)
}

func overlapsHorizontally(a, b geom.Rect) bool {
	return !(a.X > lastX(b) || lastX(a) < b.X)
}

// PackPositionLeft returns how far left an edge at oldX can travel before
// it bumps into another window or the maximize area. With leftEdge set the
// moving edge is the left one, otherwise the right one.
func (e *Engine) PackPositionLeft(w *window.Window, oldX int, leftEdge bool) int {
	geo := w.Frame
	newX := e.host.ClientArea(workarea.MaximizeArea, w).X
	if oldX <= newX {
		// Try the screen to the left.
		newX = e.host.ClientAreaAt(workarea.MaximizeArea, geom.Point{X: geo.X - 1, Y: geo.Center().Y}, w.Desktop).X
	}
	right := newX - w.FrameMargins.Left
	moved := geo
	moved.X = right - geo.Width + 1
	if e.host.ScreensIntersecting(moved) < 2 {
		newX = right
	}
	if oldX <= newX {
		return oldX
	}
	desktop := e.desktopOf(w)
	for _, o := range e.host.Windows() {
		if irrelevant(o, w, desktop) {
			continue
		}
		x := o.Frame.X - 1
		if leftEdge {
			x = lastX(o.Frame) + 1
		}
		if x > newX && x < oldX && overlapsVertically(geo, o.Frame) {
			newX = x
		}
	}
	return newX
}

// PackPositionRight is PackPositionLeft toward the right.
func (e *Engine) PackPositionRight(w *window.Window, oldX int, rightEdge bool) int {
	geo := w.Frame
	newX := lastX(e.host.ClientArea(workarea.MaximizeArea, w))
	if oldX >= newX {
		newX = lastX(e.host.ClientAreaAt(workarea.MaximizeArea, geom.Point{X: geo.Right(), Y: geo.Center().Y}, w.Desktop))
	}
	right := newX + w.FrameMargins.Right
	moved := geo
	moved.X = right - geo.Width + 1
	if e.host.ScreensIntersecting(moved) < 2 {
		newX = right
	}
	if oldX >= newX {
		return oldX
	}
	desktop := e.desktopOf(w)
	for _, o := range e.host.Windows() {
		if irrelevant(o, w, desktop) {
			continue
		}
		x := lastX(o.Frame) + 1
		if rightEdge {
			x = o.Frame.X - 1
		}
		if x < newX && x > oldX && overlapsVertically(geo, o.Frame) {
			newX = x
		}
	}
	return newX
}

// PackPositionUp is PackPositionLeft upward. The titlebar is on top, so the
// top frame margin is never pushed off screen.
func (e *Engine) PackPositionUp(w *window.Window, oldY int, topEdge bool) int {
	geo := w.Frame
	newY := e.host.ClientArea(workarea.MaximizeArea, w).Y
	if oldY <= newY {
		newY = e.host.ClientAreaAt(workarea.MaximizeArea, geom.Point{X: geo.Center().X, Y: geo.Y - 1}, w.Desktop).Y
	}
	if oldY <= newY {
		return oldY
	}
	desktop := e.desktopOf(w)
	for _, o := range e.host.Windows() {
		if irrelevant(o, w, desktop) {
			continue
		}
		y := o.Frame.Y - 1
		if topEdge {
			y = lastY(o.Frame) + 1
		}
		if y > newY && y < oldY && overlapsHorizontally(geo, o.Frame) {
			newY = y
		}
	}
	return newY
}

// PackPositionDown is PackPositionLeft downward.
func (e *Engine) PackPositionDown(w *window.Window, oldY int, bottomEdge bool) int {
	geo := w.Frame
	newY := lastY(e.host.ClientArea(workarea.MaximizeArea, w))
	if oldY >= newY {
		newY = lastY(e.host.ClientAreaAt(workarea.MaximizeArea, geom.Point{X: geo.Center().X, Y: geo.Bottom()}, w.Desktop))
	}
	bottom := newY + w.FrameMargins.Bottom
	moved := geo
	moved.Y = bottom - geo.Height + 1
	if e.host.ScreensIntersecting(moved) < 2 {
		newY = bottom
	}
	if oldY >= newY {
		return oldY
	}
	desktop := e.desktopOf(w)
	for _, o := range e.host.Windows() {
		if irrelevant(o, w, desktop) {
			continue
		}
		y := lastY(o.Frame) + 1
		if bottomEdge {
			y = o.Frame.Y - 1
		}
		if y < newY && y > oldY && overlapsHorizontally(geo, o.Frame) {
			newY = y
		}
	}
	return newY
}

// PackTo moves w and, when that lands it on another screen, lets the
// workspace re-fit a maximized window to the new screen.
func (e *Engine) PackTo(w *window.Window, left, top int) {
	oldScreen := w.Screen
	w.Move(geom.Point{X: left, Y: top})
	w.Screen = e.host.ScreenAt(w.Frame.Center())
	if w.Screen != oldScreen && w.Maximize != window.MaximizeRestore {
		e.host.CheckWorkspacePosition(w)
	}
}

// PackLeft moves w left until it touches a neighbour or the area edge.
func (e *Engine) PackLeft(w *window.Window) {
	if w.IsMovable() {
		e.PackTo(w, e.PackPositionLeft(w, w.Frame.X, true), w.Frame.Y)
	}
}

func (e *Engine) PackRight(w *window.Window) {
	if w.IsMovable() {
		e.PackTo(w, e.PackPositionRight(w, lastX(w.Frame), true)-w.Frame.Width+1, w.Frame.Y)
	}
}

func (e *Engine) PackUp(w *window.Window) {
	if w.IsMovable() {
		e.PackTo(w, w.Frame.X, e.PackPositionUp(w, w.Frame.Y, true))
	}
}

func (e *Engine) PackDown(w *window.Window) {
	if w.IsMovable() {
		e.PackTo(w, w.Frame.X, e.PackPositionDown(w, lastY(w.Frame), true)-w.Frame.Height+1)
	}
}

// GrowHorizontal extends the right edge of w up to the next obstacle.
func (e *Engine) GrowHorizontal(w *window.Window) {
	if !w.IsResizable() || w.IsShade() {
		return
	}
	geo := w.Frame
	geo.Width = e.PackPositionRight(w, lastX(geo), true) - geo.X + 1
	adj := e.host.ConstrainFrameSize(w, geo.Size(), window.SizeModeFixedW)
	if w.Frame.Size() == adj && geo.Size() != adj && w.Hints.Increment.Width > 1 {
		// Rounding to the increment ate the growth; try one increment further.
		newRight := e.PackPositionRight(w, lastX(geo)+w.Hints.Increment.Width-1, true)
		area := e.host.ClientAreaAt(workarea.MovementArea, geom.Point{X: (w.Frame.X + newRight) / 2, Y: w.Frame.Center().Y}, w.Desktop)
		if lastX(area) >= newRight {
			geo.Width = newRight - geo.X + 1
		}
	}
	geo = geo.Resized(e.host.ConstrainFrameSize(w, geo.Size(), window.SizeModeFixedW))
	geo = geo.Resized(e.host.ConstrainFrameSize(w, geo.Size(), window.SizeModeFixedH))
	w.SetFrameGeometry(geo, false)
}

// ShrinkHorizontal pulls the right edge of w back to the previous obstacle.
func (e *Engine) ShrinkHorizontal(w *window.Window) {
	if !w.IsResizable() || w.IsShade() {
		return
	}
	geo := w.Frame
	geo.Width = e.PackPositionLeft(w, lastX(geo), false) - geo.X + 1
	if geo.Width <= 1 {
		return
	}
	geo = geo.Resized(e.host.ConstrainFrameSize(w, geo.Size(), window.SizeModeFixedW))
	if geo.Width > 20 {
		w.SetFrameGeometry(geo, false)
	}
}

// GrowVertical extends the bottom edge of w up to the next obstacle.
func (e *Engine) GrowVertical(w *window.Window) {
	if !w.IsResizable() || w.IsShade() {
		return
	}
	geo := w.Frame
	geo.Height = e.PackPositionDown(w, lastY(geo), true) - geo.Y + 1
	adj := e.host.ConstrainFrameSize(w, geo.Size(), window.SizeModeFixedH)
	if w.Frame.Size() == adj && geo.Size() != adj && w.Hints.Increment.Height > 1 {
		newBottom := e.PackPositionDown(w, lastY(geo)+w.Hints.Increment.Height-1, true)
		area := e.host.ClientAreaAt(workarea.MovementArea, geom.Point{X: w.Frame.Center().X, Y: (w.Frame.Y + newBottom) / 2}, w.Desktop)
		if lastY(area) >= newBottom {
			geo.Height = newBottom - geo.Y + 1
		}
	}
	geo = geo.Resized(e.host.ConstrainFrameSize(w, geo.Size(), window.SizeModeFixedH))
	w.SetFrameGeometry(geo, false)
}

// ShrinkVertical pulls the bottom edge of w back to the previous obstacle.
func (e *Engine) ShrinkVertical(w *window.Window) {
	if !w.IsResizable() || w.IsShade() {
		return
	}
	geo := w.Frame
	geo.Height = e.PackPositionUp(w, lastY(geo), false) - geo.Y + 1
	if geo.Height <= 1 {
		return
	}
	geo = geo.Resized(e.host.ConstrainFrameSize(w, geo.Size(), window.SizeModeFixedH))
	if geo.Height > 20 {
		w.SetFrameGeometry(geo, false)
	}
}
