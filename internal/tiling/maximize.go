package tiling

import (
	"log"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
)

// Maximize moves w to mode, toggling the axes that differ.
func (m *Machine) Maximize(w *window.Window, mode window.MaximizeMode) {
	m.ChangeMaximize(w,
		mode&window.MaximizeHorizontal != w.Maximize&window.MaximizeHorizontal,
		mode&window.MaximizeVertical != w.Maximize&window.MaximizeVertical,
		false)
}

// ChangeMaximize toggles the given axes. With adjust set the mode is kept
// and only the geometry is recomputed, e.g. after the work area changed.
func (m *Machine) ChangeMaximize(w *window.Window, horizontal, vertical, adjust bool) {
	if m.recursion {
		return
	}
	if !w.IsResizable() || w.Kind == window.KindToolbar {
		log.Printf("tiling: %#x cannot be maximized", w.XID)
		return
	}
	area := m.host.ClientArea(workarea.MaximizeArea, w)

	old := w.Maximize
	mode := old
	if !adjust {
		if vertical {
			mode ^= window.MaximizeVertical
		}
		if horizontal {
			mode ^= window.MaximizeHorizontal
		}
	}
	mode = m.checkAspect(w, old, mode, area)
	mode = m.host.RuleMaximize(w, mode)
	if !adjust && mode == old {
		return
	}

	batch := w.BlockGeometryUpdates()
	defer batch.Release()

	// Never maximized one way and restored the other in one step.
	if (old == window.MaximizeVertical && mode == window.MaximizeHorizontal) ||
		(old == window.MaximizeHorizontal && mode == window.MaximizeVertical) {
		m.transition(w, old, window.MaximizeRestore, area, false)
		old = window.MaximizeRestore
	}
	m.transition(w, old, mode, area, adjust)
	m.host.Changed(w, PropMaximize)
}

// checkAspect turns a single-axis maximize of a window with a fixed aspect
// ratio into a full maximize, or a restore, when the other axis would leave
// the area.
func (m *Machine) checkAspect(w *window.Window, old, mode window.MaximizeMode, area geom.Rect) window.MaximizeMode {
	if !w.Hints.HasAspect || (mode != window.MaximizeVertical && mode != window.MaximizeHorizontal) {
		return mode
	}
	if !m.host.RuleStrictGeometry(w) {
		return mode
	}
	minA, maxA := w.Hints.MinAspect, w.Hints.MaxAspect
	if mode == window.MaximizeVertical || old&window.MaximizeVertical != 0 {
		fx, fy := float64(minA.Width), float64(maxA.Height)
		if fx*float64(area.Height)/fy > float64(area.Width) {
			if old&window.MaximizeHorizontal != 0 {
				return window.MaximizeRestore
			}
			return window.MaximizeFull
		}
		return mode
	}
	fx, fy := float64(maxA.Width), float64(minA.Height)
	if fy*float64(area.Width)/fx > float64(area.Height) {
		if old&window.MaximizeVertical != 0 {
			return window.MaximizeRestore
		}
		return window.MaximizeFull
	}
	return mode
}

func (m *Machine) transition(w *window.Window, old, mode window.MaximizeMode, area geom.Rect, adjust bool) {
	w.Maximize = mode

	// Remember the axes that are about to be maximized. An axis that already
	// was maximized keeps its stored extent. A tiled window that is not
	// maximized yet remembers its tile; QuickTileRestore keeps the frame
	// from before the tile.
	if w.QuickTile == window.QuickTileNone || old == window.MaximizeRestore {
		saved := w.GeomRestore
		sz := w.Frame.Size()
		if !adjust && old&window.MaximizeVertical == 0 {
			saved.Y, saved.Height = w.Frame.Y, sz.Height
		}
		if !adjust && old&window.MaximizeHorizontal == 0 {
			saved.X, saved.Width = w.Frame.X, sz.Width
		}
		w.GeomRestore = saved
	}

	if m.opts.BorderlessMaximized {
		if old != window.MaximizeFull && mode == window.MaximizeFull {
			w.NoBorderRestore = w.NoBorder
		}
		m.recursion = true
		m.host.SetNoBorder(w, m.host.RuleNoBorder(w, w.NoBorderRestore || mode == window.MaximizeFull))
		m.recursion = false
	}
	force := w.IsDecorated()

	// Resizing one axis of a tiled window leaves the tile without restoring.
	if w.QuickTile != window.QuickTileNone {
		leavingScreen := old == window.MaximizeFull && !area.Contains(w.GeomRestore.Center())
		if !leavingScreen && ((old == window.MaximizeVertical && mode == window.MaximizeRestore) ||
			(old == window.MaximizeFull && mode == window.MaximizeHorizontal)) {
			w.QuickTile = window.QuickTileNone
		}
	}

	restore := w.GeomRestore
	switch mode {
	case window.MaximizeVertical:
		if old&window.MaximizeHorizontal != 0 {
			if restore.Width == 0 || !area.Contains(restore.Center()) {
				size := m.host.ConstrainFrameSize(w, geom.Size{Width: w.Frame.Width * 2 / 3, Height: area.Height}, window.SizeModeFixedH)
				w.SetFrameGeometry(w.Frame.Resized(size), force)
				m.host.PlaceSmart(w, area)
			} else {
				size := m.host.ConstrainFrameSize(w, geom.Size{Width: restore.Width, Height: area.Height}, window.SizeModeFixedH)
				w.SetFrameGeometry(geom.NewRect(geom.Point{X: restore.X, Y: area.Y}, size), force)
			}
			return
		}
		pos := m.host.RulePosition(w, geom.Point{X: w.Frame.X, Y: area.Y})
		size := m.host.ConstrainFrameSize(w, geom.Size{Width: w.Frame.Width, Height: area.Height}, window.SizeModeFixedH)
		w.SetFrameGeometry(geom.NewRect(pos, size), force)

	case window.MaximizeHorizontal:
		if old&window.MaximizeVertical != 0 {
			if restore.Height == 0 || !area.Contains(restore.Center()) {
				size := m.host.ConstrainFrameSize(w, geom.Size{Width: area.Width, Height: w.Frame.Height * 2 / 3}, window.SizeModeFixedW)
				w.SetFrameGeometry(w.Frame.Resized(size), force)
				m.host.PlaceSmart(w, area)
			} else {
				size := m.host.ConstrainFrameSize(w, geom.Size{Width: area.Width, Height: restore.Height}, window.SizeModeFixedW)
				w.SetFrameGeometry(geom.NewRect(geom.Point{X: area.X, Y: restore.Y}, size), force)
			}
			return
		}
		pos := m.host.RulePosition(w, geom.Point{X: area.X, Y: w.Frame.Y})
		size := m.host.ConstrainFrameSize(w, geom.Size{Width: area.Width, Height: w.Frame.Height}, window.SizeModeFixedW)
		w.SetFrameGeometry(geom.NewRect(pos, size), force)

	case window.MaximizeRestore:
		m.restore(w, old, area, force)

	case window.MaximizeFull:
		m.maximizeFull(w, area, force)
	}
}

func (m *Machine) restore(w *window.Window, old window.MaximizeMode, area geom.Rect, force bool) {
	saved := w.GeomRestore
	r := w.Frame
	// A partially maximized window only remembers the maximized axis.
	if old&window.MaximizeVertical != 0 {
		r.Y, r.Height = saved.Y, saved.Height
	}
	if old&window.MaximizeHorizontal != 0 {
		r.X, r.Width = saved.X, saved.Width
	}
	if r.IsEmpty() {
		size := geom.Size{Width: area.Width * 2 / 3, Height: area.Height * 2 / 3}
		if saved.Width > 0 {
			size.Width = saved.Width
		}
		if saved.Height > 0 {
			size.Height = saved.Height
		}
		size = m.host.ConstrainFrameSize(w, size, window.SizeModeAny)
		w.SetFrameGeometry(w.Frame.Resized(size), force)
		m.host.PlaceSmart(w, area)
		r = w.Frame
		if saved.Width > 0 {
			r.X = saved.X
		}
		if saved.Height > 0 {
			r.Y = saved.Y
		}
		w.GeomRestore = r
	}
	if w.Hints.HasAspect {
		r = r.Resized(m.host.ConstrainFrameSize(w, r.Size(), window.SizeModeAny))
	}
	w.SetFrameGeometry(r, force)
	if !area.Contains(w.GeomRestore.Center()) {
		// Restoring onto another screen.
		m.host.Place(w, area)
	}
	w.QuickTile = window.QuickTileNone
}

func (m *Machine) maximizeFull(w *window.Window, area geom.Rect, force bool) {
	r := area.MovedTo(m.host.RulePosition(w, area.Pos()))
	r = r.Resized(m.host.ConstrainFrameSize(w, r.Size(), window.SizeModeMax))
	if r.Size() != area.Size() {
		c := area.Center()
		r = r.MovedTo(geom.Point{X: c.X - r.Width/2, Y: c.Y - r.Height/2})
		closeHeight := r.Height > 97*area.Height/100
		closeWidth := r.Width > 97*area.Width/100
		overHeight := r.Height > area.Height
		overWidth := r.Width > area.Width
		if closeWidth || closeHeight {
			screen := m.host.ClientAreaAt(workarea.ScreenArea, area.Center(), w.Desktop)
			// The titlebar sits on top: prefer keeping it visible.
			if closeHeight {
				if overHeight || screen.Y == area.Y {
					r = geom.WithEdges(r.X, area.Y, r.Right(), r.Bottom())
				} else if screen.Bottom() == area.Bottom() {
					r = geom.WithEdges(r.X, r.Y, r.Right(), area.Bottom())
				}
			}
			if closeWidth {
				if screen.Right() == area.Right() {
					r = geom.WithEdges(r.X, r.Y, area.Right(), r.Bottom())
				} else if overWidth || screen.X == area.X {
					r = geom.WithEdges(area.X, r.Y, r.Right(), r.Bottom())
				}
			}
		}
		r = r.MovedTo(m.host.RulePosition(w, r.Pos()))
	}
	w.SetFrameGeometry(r, force)
	if m.opts.ElectricBorderMaximize && r.Y == area.Y {
		w.QuickTile = window.QuickTileMaximize
	} else {
		w.QuickTile = window.QuickTileNone
	}
}
