package workspace

import (
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/rules"
	"github.com/KDE/kwin-sub007/internal/sizing"
	"github.com/KDE/kwin-sub007/internal/tabgroup"
	"github.com/KDE/kwin-sub007/internal/tiling"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
)

// ConstrainFrameSize applies the size hints of w, or the combined limits of
// its tab group, to a frame size.
func (s *State) ConstrainFrameSize(w *window.Window, size geom.Size, mode window.SizeMode) geom.Size {
	var limits sizing.Limits
	if g := s.tabs.GroupOf(w); g != nil {
		limits.Min, limits.Max = g.SizeLimits()
	}
	return sizing.ConstrainFrameSize(sizing.InputFor(w, limits), size, mode)
}

// setFrame moves and resizes w to frame, adjusted to its size constraints.
func (s *State) setFrame(w *window.Window, frame geom.Rect) {
	if !w.IsShade() {
		frame = frame.Resized(s.ConstrainFrameSize(w, frame.Size(), window.SizeModeAny))
	}
	w.SetFrameGeometry(frame, false)
}

// MoveResize is a geometry change requested by the client or the user. It
// breaks quick tiling, is remembered by rules and followed by the tab group.
func (s *State) MoveResize(w *window.Window, frame geom.Rect) {
	if w.QuickTile != window.QuickTileNone && frame.Size() != w.Frame.Size() {
		w.QuickTile = window.QuickTileNone
	}
	s.setFrame(w, frame)
	s.rules[w.ID].Update(w, rules.PropPosition|rules.PropSize)
	if s.tabSync == 0 {
		s.tabs.UpdateStates(w, tabgroup.StateGeometry, nil)
	}
}

// CheckWorkspacePosition keeps w inside the areas it belongs to after the
// work area or screen layout changed.
func (s *State) CheckWorkspacePosition(w *window.Window) {
	s.checkWorkspacePosition(w, geom.Rect{}, 0)
}

// checkWorkspacePosition fits w to the current areas. oldFrame and
// oldDesktop describe w before the change; zero values mean "unchanged".
// Windows touching an edge of the old area keep touching it, and windows
// that were fully inside stay inside.
func (s *State) checkWorkspacePosition(w *window.Window, oldFrame geom.Rect, oldDesktop int) {
	if !w.IsPlaceable() || !w.Managed {
		return
	}
	if oldFrame.IsEmpty() {
		oldFrame = w.Frame
	}
	if oldDesktop == 0 {
		oldDesktop = w.Desktop
	}

	if w.Fullscreen {
		area := s.ClientArea(workarea.FullScreenArea, w)
		if w.Frame != area {
			w.SetFrameGeometry(area, false)
		}
		return
	}
	if w.IsMaximized() {
		batch := w.BlockGeometryUpdates()
		s.tiling.ChangeMaximize(w, false, false, true)
		screen := s.ClientArea(workarea.ScreenArea, w)
		w.SetFrameGeometry(checkOffscreenPosition(w.Frame, screen), false)
		batch.Release()
		return
	}
	if w.QuickTile != window.QuickTileNone {
		area := s.ClientAreaAt(workarea.MaximizeArea, w.Frame.Center(), w.Desktop)
		w.SetFrameGeometry(tiling.QuickTileGeometry(w.QuickTile, area), false)
		return
	}

	borders := w.EffectiveBorders()
	oldClient := oldFrame.Shrunk(borders)
	n := w.Frame

	var oldScreen geom.Rect
	if s.tracker.InUpdate() {
		oldScreen = closestScreen(s.tracker.PreviousScreenSizes(), oldFrame.Center())
	} else {
		oldScreen = s.ClientAreaAt(workarea.ScreenArea, oldFrame.Center(), oldDesktop)
	}
	screen := s.ClientAreaAt(workarea.ScreenArea, n.Center(), w.Desktop)

	oldTall := geom.Rect{X: oldFrame.X, Y: oldScreen.Y, Width: oldFrame.Width, Height: oldScreen.Height}
	oldWide := geom.Rect{X: oldScreen.X, Y: oldFrame.Y, Width: oldScreen.Width, Height: oldFrame.Height}
	tall := geom.Rect{X: n.X, Y: screen.Y, Width: n.Width, Height: screen.Height}
	wide := geom.Rect{X: screen.X, Y: n.Y, Width: screen.Width, Height: n.Height}

	oldEdges := edges{top: oldScreen.Y, right: oldScreen.Right(), bottom: oldScreen.Bottom(), left: oldScreen.X}
	newEdges := edges{top: screen.Y, right: screen.Right(), bottom: screen.Bottom(), left: screen.X}
	moveArea := s.tracker.RestrictedMoveArea
	if s.tracker.InUpdate() {
		moveArea = s.tracker.PreviousRestrictedMoveArea
	}
	oldEdges.restrict(moveArea(oldDesktop, window.StrutAreaAll), oldTall, oldWide)
	newEdges.restrict(s.tracker.RestrictedMoveArea(w.Desktop, window.StrutAreaAll), tall, wide)

	nClient := n.Shrunk(borders)
	var save, keep [4]bool
	var pad [4]int
	const top, right, bottom, left = 0, 1, 2, 3

	if oldFrame.X >= oldEdges.left {
		save[left] = n.X < newEdges.left
	}
	if oldFrame.X == oldEdges.left {
		keep[left] = n.X != newEdges.left
	} else if oldClient.X == oldEdges.left && nClient.X != newEdges.left {
		pad[left] = borders.Left
		keep[left] = true
	}
	if oldFrame.Y >= oldEdges.top {
		save[top] = n.Y < newEdges.top
	}
	if oldFrame.Y == oldEdges.top {
		keep[top] = n.Y != newEdges.top
	} else if oldClient.Y == oldEdges.top && nClient.Y != newEdges.top {
		pad[top] = borders.Top
		keep[top] = true
	}
	if oldFrame.Right() <= oldEdges.right {
		save[right] = n.Right() > newEdges.right
	}
	if oldFrame.Right() == oldEdges.right {
		keep[right] = n.Right() != newEdges.right
	} else if oldClient.Right() == oldEdges.right && nClient.Right() != newEdges.right {
		pad[right] = borders.Right
		keep[right] = true
	}
	if oldFrame.Bottom() <= oldEdges.bottom {
		save[bottom] = n.Bottom() > newEdges.bottom
	}
	if oldFrame.Bottom() == oldEdges.bottom {
		keep[bottom] = n.Bottom() != newEdges.bottom
	} else if oldClient.Bottom() == oldEdges.bottom && nClient.Bottom() != newEdges.bottom {
		pad[bottom] = borders.Bottom
		keep[bottom] = true
	}

	// A window kept at both opposing edges would be stretched, keep neither.
	if keep[left] && keep[right] {
		keep[left], keep[right] = false, false
		pad[left], pad[right] = 0, 0
	}
	if keep[top] && keep[bottom] {
		keep[top], keep[bottom] = false, false
		pad[top], pad[bottom] = 0, 0
	}

	spansScreens := func() bool { return s.tracker.ScreensIntersecting(n) > 1 }

	if save[left] || keep[left] {
		n.X = max(newEdges.left, screen.X) - pad[left]
	}
	if pad[left] != 0 && spansScreens() {
		n.X += pad[left]
	}
	if save[top] || keep[top] {
		n.Y = max(newEdges.top, screen.Y) - pad[top]
	}
	if pad[top] != 0 && spansScreens() {
		n.Y += pad[top]
	}
	if save[right] || keep[right] {
		n.X = min(newEdges.right, screen.Right()) + pad[right] - n.Width
	}
	if pad[right] != 0 && spansScreens() {
		n.X -= pad[right]
	}
	if oldFrame.X >= oldEdges.left && n.X < newEdges.left {
		n = geom.WithEdges(max(newEdges.left, screen.X), n.Y, n.Right(), n.Bottom())
	} else if oldClient.X >= oldEdges.left && n.X+borders.Left < newEdges.left {
		n = geom.WithEdges(max(newEdges.left, screen.X)-borders.Left, n.Y, n.Right(), n.Bottom())
		if spansScreens() {
			n = geom.WithEdges(n.X+borders.Left, n.Y, n.Right(), n.Bottom())
		}
	}
	if save[bottom] || keep[bottom] {
		n.Y = min(newEdges.bottom, screen.Bottom()) + pad[bottom] - n.Height
	}
	if pad[bottom] != 0 && spansScreens() {
		n.Y -= pad[bottom]
	}
	if oldFrame.Y >= oldEdges.top && n.Y < newEdges.top {
		n = geom.WithEdges(n.X, max(newEdges.top, screen.Y), n.Right(), n.Bottom())
	} else if oldClient.Y >= oldEdges.top && n.Y+borders.Top < newEdges.top {
		n = geom.WithEdges(n.X, max(newEdges.top, screen.Y)-borders.Top, n.Right(), n.Bottom())
		if spansScreens() {
			n = geom.WithEdges(n.X, n.Y+borders.Top, n.Right(), n.Bottom())
		}
	}

	n = checkOffscreenPosition(n, screen)
	if !w.IsShade() {
		n = n.Resized(s.ConstrainFrameSize(w, n.Size(), window.SizeModeAny))
	}
	if n != w.Frame {
		w.SetFrameGeometry(n, false)
	}
}

type edges struct{ top, right, bottom, left int }

// restrict moves the edges inwards past every strut rectangle that
// overlaps the window's column (tall) or row (wide).
func (e *edges) restrict(struts []window.StrutRect, tall, wide geom.Rect) {
	for _, sr := range struts {
		switch sr.Area {
		case window.StrutAreaTop:
			if r := sr.Rect.Intersected(tall); !r.IsEmpty() {
				e.top = max(e.top, r.Bottom())
			}
		case window.StrutAreaBottom:
			if r := sr.Rect.Intersected(tall); !r.IsEmpty() {
				e.bottom = min(e.bottom, r.Y)
			}
		case window.StrutAreaLeft:
			if r := sr.Rect.Intersected(wide); !r.IsEmpty() {
				e.left = max(e.left, r.Right())
			}
		case window.StrutAreaRight:
			if r := sr.Rect.Intersected(wide); !r.IsEmpty() {
				e.right = min(e.right, r.X)
			}
		}
	}
}

// closestScreen returns the screen containing p, or the one whose center
// is nearest to it.
func closestScreen(screens []geom.Rect, p geom.Point) geom.Rect {
	var best geom.Rect
	bestDist := -1
	for _, sc := range screens {
		if sc.Contains(p) {
			return sc
		}
		c := sc.Center()
		d := abs(c.X-p.X) + abs(c.Y-p.Y)
		if bestDist < 0 || d < bestDist {
			best, bestDist = sc, d
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// checkOffscreenPosition pulls a frame that lies completely outside screen
// back so that a quarter of it is visible.
func checkOffscreenPosition(r, screen geom.Rect) geom.Rect {
	if r.X >= screen.Right() {
		r.X = screen.Right() - 1 - screen.Width/4
	} else if r.Right() <= screen.X {
		r.X = screen.X + screen.Width/4 + 1 - r.Width
	}
	if r.Y >= screen.Bottom() {
		r.Y = screen.Bottom() - 1 - screen.Height/4
	} else if r.Bottom() <= screen.Y {
		r.Y = screen.Y + screen.Height/4 + 1 - r.Height
	}
	return r
}

// UpdateClientArea recomputes the work areas from the struts of all windows
// and repositions windows when they changed.
func (s *State) UpdateClientArea() {
	changed := s.tracker.Recompute(s.arena.All(), func() {
		for _, w := range s.arena.All() {
			s.CheckWorkspacePosition(w)
		}
	})
	if changed {
		s.publishDesktops()
	}
}

// SetScreens replaces the screen layout.
func (s *State) SetScreens(screens []geom.Rect) {
	s.tracker.SetScreens(screens)
	s.UpdateClientArea()
}

// SetStrut updates the strut of a panel and the work areas with it.
func (s *State) SetStrut(w *window.Window, strut window.Strut) {
	w.Strut = strut
	s.UpdateClientArea()
}

// SetSizeHints replaces the size hints of w, applying min and max size
// rules, and refits w and its tab group.
func (s *State) SetSizeHints(w *window.Window, hints window.SizeHints) {
	wr := s.rules[w.ID]
	hints.Min = wr.CheckMinSize(hints.Min)
	hints.Max = wr.CheckMaxSize(hints.Max)
	w.Hints = hints
	if g := s.tabs.GroupOf(w); g != nil {
		s.tabs.UpdateSizeLimits(g)
		return
	}
	s.setFrame(w, w.Frame)
}

// SendToScreen moves w to screen keeping its relative position, and
// re-applies maximize, quick tile and fullscreen on the new screen.
func (s *State) SendToScreen(w *window.Window, screen int) {
	screen = s.rules[w.ID].CheckScreen(screen, false, len(s.tracker.Screens()))
	if screen < 0 || screen >= len(s.tracker.Screens()) || screen == w.Screen || !w.IsMovableAcrossScreens() {
		return
	}
	oldArea := s.ClientArea(workarea.MaximizeArea, w)
	target := s.tracker.ClientArea(workarea.MaximizeArea, screen, w.Desktop)

	batch := w.BlockGeometryUpdates()
	defer batch.Release()
	dx, dy := target.X-oldArea.X, target.Y-oldArea.Y
	oldFrame := w.Frame
	w.SetFrameGeometry(w.Frame.Translated(dx, dy), false)
	if !w.QuickTileRestore.IsEmpty() {
		w.QuickTileRestore = w.QuickTileRestore.Translated(dx, dy)
	}
	if !w.GeomRestore.IsEmpty() {
		w.GeomRestore = w.GeomRestore.Translated(dx, dy)
	}
	if w.Fullscreen && !w.FullscreenRestore.IsEmpty() {
		w.FullscreenRestore = w.FullscreenRestore.Translated(dx, dy)
	}
	w.Screen = screen
	s.checkWorkspacePosition(w, oldFrame, w.Desktop)
	s.rules[w.ID].Update(w, rules.PropScreen|rules.PropPosition)
}
