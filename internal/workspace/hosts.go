package workspace

import (
	"log"

	"github.com/KDE/kwin-sub007/internal/activation"
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/placement"
	"github.com/KDE/kwin-sub007/internal/platform"
	"github.com/KDE/kwin-sub007/internal/rules"
	"github.com/KDE/kwin-sub007/internal/snap"
	"github.com/KDE/kwin-sub007/internal/tabgroup"
	"github.com/KDE/kwin-sub007/internal/tiling"
	"github.com/KDE/kwin-sub007/internal/timestamp"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
)

var (
	_ placement.Host      = (*State)(nil)
	_ tiling.Host         = (*State)(nil)
	_ activation.Host     = (*State)(nil)
	_ snap.Environment    = (*State)(nil)
	_ window.GeometrySink = (*State)(nil)
	_ tabgroup.Host       = tabHost{}
)

func (s *State) Arena() *window.Arena      { return s.arena }
func (s *State) Windows() []*window.Window { return s.arena.All() }
func (s *State) CurrentDesktop() int       { return s.tracker.CurrentDesktop() }
func (s *State) DesktopCount() int         { return s.tracker.DesktopCount() }
func (s *State) Screens() []geom.Rect      { return s.tracker.Screens() }
func (s *State) Now() timestamp.Time       { return s.backend.ServerTime() }

func (s *State) ClientArea(opt workarea.AreaOption, w *window.Window) geom.Rect {
	return s.tracker.ClientAreaFor(opt, w)
}

func (s *State) ClientAreaAt(opt workarea.AreaOption, p geom.Point, desktop int) geom.Rect {
	return s.tracker.ClientAreaAt(opt, p, desktop)
}

func (s *State) ScreenAt(p geom.Point) int           { return s.tracker.ScreenAt(p) }
func (s *State) ScreensIntersecting(r geom.Rect) int { return s.tracker.ScreensIntersecting(r) }
func (s *State) MainWindows(w *window.Window) []*window.Window {
	return s.arena.MainWindows(w)
}

// Pointer returns the pointer position, the origin when it cannot be read.
func (s *State) Pointer() geom.Point {
	p, err := s.backend.Pointer()
	if err != nil {
		log.Printf("workspace: failed to query pointer: %v", err)
		return geom.Point{}
	}
	return p
}

// MaximizeAreaAt is the maximize area of the screen containing p on the
// desktop of w.
func (s *State) MaximizeAreaAt(w *window.Window, p geom.Point) geom.Rect {
	return s.tracker.ClientAreaAt(workarea.MaximizeArea, p, w.Desktop)
}

func (s *State) MovementArea(w *window.Window) geom.Rect {
	return s.tracker.ClientAreaFor(workarea.MovementArea, w)
}

// Rule checks used by the components.

func (s *State) RulePlacement(w *window.Window) placement.Policy {
	return s.rules[w.ID].CheckPlacement(placement.Default)
}

func (s *State) RuleMaximize(w *window.Window, mode window.MaximizeMode) window.MaximizeMode {
	return s.rules[w.ID].CheckMaximize(mode, false)
}

func (s *State) RulePosition(w *window.Window, p geom.Point) geom.Point {
	return s.rules[w.ID].CheckPosition(p, false)
}

func (s *State) RuleNoBorder(w *window.Window, noBorder bool) bool {
	return s.rules[w.ID].CheckNoBorder(noBorder, false)
}

func (s *State) RuleFullscreen(w *window.Window, fullscreen bool) bool {
	return s.rules[w.ID].CheckFullscreen(fullscreen, false)
}

func (s *State) RuleStrictGeometry(w *window.Window) bool {
	return s.rules[w.ID].CheckStrictGeometry(w.StrictGeometry)
}

func (s *State) RuleFSP(w *window.Window, configured activation.Level) activation.Level {
	return s.rules[w.ID].CheckFSP(configured)
}

// Changed finishes a maximize, quick tile or fullscreen transition: the
// new state is published, remembered by rules and copied to the tab group.
func (s *State) Changed(w *window.Window, p tiling.Property) {
	s.publishState(w)
	wr := s.rules[w.ID]
	var states tabgroup.State
	switch p {
	case tiling.PropMaximize:
		wr.Update(w, rules.PropMaximizeVert|rules.PropMaximizeHoriz|rules.PropPosition|rules.PropSize)
		states = tabgroup.StateMaximized | tabgroup.StateGeometry
	case tiling.PropQuickTile:
		wr.Update(w, rules.PropPosition|rules.PropSize)
		states = tabgroup.StateQuickTile | tabgroup.StateGeometry
	case tiling.PropFullscreen:
		wr.Update(w, rules.PropFullscreen)
		s.restack()
	}
	if states != 0 && s.tabSync == 0 {
		s.tabs.UpdateStates(w, states, nil)
	}
}

// Placement and tiling services.

func (s *State) Maximize(w *window.Window, mode window.MaximizeMode) { s.tiling.Maximize(w, mode) }

func (s *State) PlaceSmart(w *window.Window, area geom.Rect) {
	s.place.PlaceWith(w, area, placement.Smart, placement.Unknown)
}

func (s *State) Place(w *window.Window, area geom.Rect) { s.place.Place(w, area) }

// Raise puts w on top of the stacking order, with its transients above it.
func (s *State) Raise(w *window.Window) {
	s.arena.Raise(w.ID)
	for _, c := range s.arena.All() {
		if c != w && s.arena.HasTransient(w, c) {
			s.arena.Raise(c.ID)
		}
	}
	s.restack()
}

// Lower puts w at the bottom of the stacking order.
func (s *State) Lower(w *window.Window) {
	s.arena.Lower(w.ID)
	s.restack()
}

// RaiseWithinApplication raises w above the other windows of its
// application without covering windows of other applications.
func (s *State) RaiseWithinApplication(w *window.Window) {
	all := s.arena.All()
	for i := len(all) - 1; i >= 0; i-- {
		c := all[i]
		if c == w {
			return
		}
		if s.act.BelongToSameApplication(w, c, false) {
			s.arena.RestackAbove(w.ID, c.ID)
			s.restack()
			return
		}
	}
}

// SetNoBorder toggles the decoration keeping the client area in place.
func (s *State) SetNoBorder(w *window.Window, noBorder bool) {
	noBorder = s.rules[w.ID].CheckNoBorder(noBorder, false)
	if w.IsSpecial() {
		noBorder = true
	}
	if w.NoBorder == noBorder {
		return
	}
	client := w.ClientRect()
	w.NoBorder = noBorder
	w.SetFrameGeometry(client.Grown(w.EffectiveBorders()), false)
	s.rules[w.ID].Update(w, rules.PropNoBorder)
	s.publishState(w)
}

// Activation services.

func (s *State) SendToDesktop(w *window.Window, d int) { s.SetDesktop(w, d) }

func (s *State) Unminimize(w *window.Window) { s.SetMinimized(w, false) }

func (s *State) ShowTab(w *window.Window) { s.tabs.SetCurrent(w, false) }

// Focus hands input focus to w. The backend confirms focus synchronously,
// so the window is treated as focused right away; the later FocusIn event
// repeats this without effect.
func (s *State) Focus(w *window.Window) {
	if err := s.backend.Focus(platform.WindowID(w.XID), s.Now()); err != nil {
		log.Printf("workspace: failed to focus %#x: %v", w.XID, err)
		return
	}
	s.FocusIn(w)
}

func (s *State) FocusToNull() {
	if err := s.backend.FocusRoot(); err != nil {
		log.Printf("workspace: failed to reset focus: %v", err)
	}
}

// WindowUnderPointer returns the topmost focusable window under the pointer
// on screen, or nil.
func (s *State) WindowUnderPointer(screen int) *window.Window {
	p := s.Pointer()
	if screen >= 0 && s.tracker.ScreenAt(p) != screen {
		return nil
	}
	all := s.arena.All()
	for i := len(all) - 1; i >= 0; i-- {
		c := all[i]
		if !c.IsShown() || !c.IsOnDesktop(s.CurrentDesktop()) || !c.WantsTabFocus() {
			continue
		}
		if c.Frame.Contains(p) {
			return c
		}
	}
	return nil
}

// ActiveChanged publishes the active window.
func (s *State) ActiveChanged(w *window.Window) {
	var id platform.WindowID
	if w != nil {
		id = platform.WindowID(w.XID)
	}
	if err := s.backend.PublishActive(id); err != nil {
		log.Printf("workspace: failed to publish active window: %v", err)
	}
	s.restack()
}

// ApplyFrameGeometry delivers a committed frame to the backend. Shaded
// windows only show their decoration.
func (s *State) ApplyFrameGeometry(w *window.Window, frame geom.Rect) {
	w.Screen = s.tracker.ScreenAt(frame.Center())
	visible := frame
	if w.IsShade() {
		visible.Height = w.EffectiveBorders().Vertical()
	}
	if err := s.backend.Configure(platform.WindowID(w.XID), visible); err != nil {
		log.Printf("workspace: failed to configure %#x: %v", w.XID, err)
	}
}

// tabHost applies changes requested by the tab group synchronizer to one
// member without propagating them back to the group.
type tabHost struct{ s *State }

func (h tabHost) run(f func()) {
	h.s.tabSync++
	defer func() { h.s.tabSync-- }()
	f()
}

func (h tabHost) SetShade(w *window.Window, mode window.ShadeMode) {
	h.run(func() { h.s.setShade(w, mode) })
}

func (h tabHost) SetNoBorder(w *window.Window, noBorder bool) {
	h.run(func() { h.s.SetNoBorder(w, noBorder) })
}

func (h tabHost) SetFrameGeometry(w *window.Window, frame geom.Rect) {
	h.run(func() { h.s.setFrame(w, frame) })
}

func (h tabHost) SetDesktop(w *window.Window, desktop int) {
	h.run(func() { h.s.setDesktop(w, desktop) })
}

func (h tabHost) SetActivities(w *window.Window, activities []string) {
	w.Activities = append([]string(nil), activities...)
}

func (h tabHost) SetMinimized(w *window.Window, minimized bool) {
	h.run(func() { h.s.setMinimized(w, minimized) })
}

func (h tabHost) SetQuickTile(w *window.Window, mode window.QuickTileMode) {
	h.run(func() { h.s.tiling.SetQuickTile(w, mode, false) })
}

func (h tabHost) Maximize(w *window.Window, mode window.MaximizeMode) {
	h.run(func() { h.s.tiling.Maximize(w, mode) })
}

func (h tabHost) SetKeepAbove(w *window.Window, above bool) {
	h.run(func() { h.s.setKeepAbove(w, above) })
}

func (h tabHost) SetKeepBelow(w *window.Window, below bool) {
	h.run(func() { h.s.setKeepBelow(w, below) })
}

func (h tabHost) SetShown(w *window.Window, shown bool) {
	w.Hidden = !shown
	h.s.updateVisibility(w)
	h.s.publishState(w)
}

func (h tabHost) IsActive(w *window.Window) bool { return h.s.act.Active() == w }

func (h tabHost) Activate(w *window.Window) { h.s.act.ActivateWindow(w, false) }

func (h tabHost) Close(w *window.Window) { h.s.Close(w) }
