package tiling

import (
	"log"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
)

// QuickTileGeometry bisects area for mode: halves for edges, quarters for
// corners. The right and bottom halves get the odd pixel.
func QuickTileGeometry(mode window.QuickTileMode, area geom.Rect) geom.Rect {
	if mode == window.QuickTileMaximize {
		return area
	}
	r := area
	switch {
	case mode&window.QuickTileLeft != 0:
		r.Width = area.Width / 2
	case mode&window.QuickTileRight != 0:
		r.Width = area.Width - area.Width/2
		r.X = area.Right() - r.Width
	}
	switch {
	case mode&window.QuickTileTop != 0:
		r.Height = area.Height / 2
	case mode&window.QuickTileBottom != 0:
		r.Height = area.Height - area.Height/2
		r.Y = area.Bottom() - r.Height
	}
	return r
}

// sanitize drops contradictory flags such as Left|Right on one axis.
func sanitize(mode window.QuickTileMode) window.QuickTileMode {
	if mode&window.QuickTileHorizontal == window.QuickTileHorizontal {
		mode &^= window.QuickTileHorizontal
	}
	if mode&window.QuickTileVertical == window.QuickTileVertical {
		mode &^= window.QuickTileVertical
	}
	return mode
}

func (m *Machine) tileArea(w *window.Window, at geom.Point) geom.Rect {
	return m.host.ClientAreaAt(workarea.MaximizeArea, at, w.Desktop)
}

// SetQuickTile tiles w to mode. keyboard selects the screen from the window
// center instead of the pointer. Tiling a window to the side it is already
// tiled to moves it to the next screen in that direction, or untiles it
// when there is none.
func (m *Machine) SetQuickTile(w *window.Window, mode window.QuickTileMode, keyboard bool) {
	if !w.IsResizable() {
		log.Printf("tiling: %#x cannot be tiled", w.XID)
		return
	}
	batch := w.BlockGeometryUpdates()
	defer batch.Release()
	defer m.host.Changed(w, PropQuickTile)

	if mode == window.QuickTileMaximize {
		if w.Maximize == window.MaximizeFull {
			w.QuickTile = window.QuickTileNone
			m.Maximize(w, window.MaximizeRestore)
			return
		}
		m.Maximize(w, window.MaximizeFull)
		area := m.host.ClientArea(workarea.MaximizeArea, w)
		if w.Frame.Y != area.Y {
			w.SetFrameGeometry(w.Frame.MovedTo(geom.Point{X: w.Frame.X, Y: area.Y}), false)
		}
		w.QuickTile = window.QuickTileMaximize
		return
	}

	mode = sanitize(mode)
	force := w.IsDecorated()

	// Maximized windows are restored first so a single request tiles them.
	if w.Maximize != window.MaximizeRestore {
		w.QuickTile = window.QuickTileNone
		m.Maximize(w, window.MaximizeRestore)
		if mode != window.QuickTileNone {
			w.QuickTileRestore = w.Frame
			at := m.host.Pointer()
			if keyboard {
				at = w.Frame.Center()
			}
			w.SetFrameGeometry(QuickTileGeometry(mode, m.tileArea(w, at)), force)
			w.QuickTile = mode
		}
		return
	}

	if mode != window.QuickTileNone {
		at := m.host.Pointer()
		if keyboard {
			at = w.Frame.Center()
		}
		switch {
		case w.QuickTile == mode:
			next, ok := m.nextScreen(w, mode)
			if !ok {
				mode = window.QuickTileNone
				break
			}
			screens := m.host.Screens()
			cur := screens[m.screenOf(w, screens)]
			delta := next.Pos().Sub(cur.Pos())
			w.QuickTileRestore = w.QuickTileRestore.Translated(delta.X, delta.Y)
			w.SetFrameGeometry(w.QuickTileRestore, false)
			at = next.Center()
			// Arriving from the other side.
			mode = (^mode & window.QuickTileHorizontal) | (mode & window.QuickTileVertical)
		case w.QuickTile == window.QuickTileNone:
			w.QuickTileRestore = w.Frame
		}
		if mode != window.QuickTileNone {
			w.SetFrameGeometry(QuickTileGeometry(mode, m.tileArea(w, at)), force)
			w.QuickTile = mode
			return
		}
	}

	w.QuickTile = window.QuickTileNone
	if w.QuickTileRestore.IsEmpty() {
		// Started tiled before placement ran.
		w.QuickTileRestore = w.Frame
	}
	w.SetFrameGeometry(w.QuickTileRestore, force)
	m.host.CheckWorkspacePosition(w)
}

func (m *Machine) screenOf(w *window.Window, screens []geom.Rect) int {
	if w.Screen >= 0 && w.Screen < len(screens) {
		return w.Screen
	}
	idx := geom.LargestOverlap(w.Frame, screens)
	return max(idx, 0)
}

// nextScreen finds the closest screen on the same row in the horizontal
// direction of mode.
func (m *Machine) nextScreen(w *window.Window, mode window.QuickTileMode) (geom.Rect, bool) {
	dir := mode & window.QuickTileHorizontal
	screens := m.host.Screens()
	if dir == 0 || len(screens) < 2 {
		return geom.Rect{}, false
	}
	cur := m.screenOf(w, screens)
	curScreen := screens[cur]
	next := cur
	for i, s := range screens {
		if i == cur {
			continue
		}
		if s.Bottom() <= curScreen.Y || s.Y >= curScreen.Bottom() {
			continue
		}
		x := s.Center().X
		if dir == window.QuickTileLeft {
			if x >= curScreen.Center().X || (next != cur && x <= screens[next].Center().X) {
				continue
			}
		} else if x <= curScreen.Center().X || (next != cur && x >= screens[next].Center().X) {
			continue
		}
		next = i
	}
	if next == cur {
		return geom.Rect{}, false
	}
	return screens[next], true
}
