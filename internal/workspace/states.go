package workspace

import (
	"log"

	"github.com/KDE/kwin-sub007/internal/rules"
	"github.com/KDE/kwin-sub007/internal/tabgroup"
	"github.com/KDE/kwin-sub007/internal/window"
)

// propagate copies states of w to the rest of its tab group unless the
// change came from the group itself.
func (s *State) propagate(w *window.Window, states tabgroup.State) {
	if s.tabSync == 0 {
		s.tabs.UpdateStates(w, states, nil)
	}
}

func (s *State) setDesktop(w *window.Window, desktop int) {
	desktop = s.rules[w.ID].CheckDesktop(desktop, false)
	if desktop != window.OnAllDesktops {
		desktop = max(1, min(desktop, s.tracker.DesktopCount()))
	}
	if w.Desktop == desktop {
		return
	}
	oldDesktop := w.Desktop
	w.Desktop = desktop
	s.act.UpdateFocusChain(w, false)
	for _, c := range s.arena.All() {
		// Transients follow their main window.
		if c != w && s.arena.HasTransient(w, c) && c.Desktop != desktop {
			s.setDesktop(c, desktop)
		}
	}
	s.updateVisibility(w)
	s.rules[w.ID].Update(w, rules.PropDesktop)
	s.publishState(w)
	if w.HasStrut() {
		s.UpdateClientArea()
	} else {
		s.checkWorkspacePosition(w, w.Frame, oldDesktop)
	}
	if s.act.Active() == w && !w.IsOnDesktop(s.CurrentDesktop()) {
		s.act.ActivateNextWindow(w)
	}
}

// SetDesktop moves w and its tab group to desktop, or to all desktops
// with window.OnAllDesktops.
func (s *State) SetDesktop(w *window.Window, desktop int) {
	s.setDesktop(w, desktop)
	s.propagate(w, tabgroup.StateDesktop)
}

// SetCurrentDesktop switches the visible desktop.
func (s *State) SetCurrentDesktop(d int) {
	if d < 1 || d > s.tracker.DesktopCount() || d == s.tracker.CurrentDesktop() {
		return
	}
	s.tracker.SetCurrentDesktop(d)
	for _, w := range s.arena.All() {
		s.updateVisibility(w)
	}
	s.publishDesktops()
	if active := s.act.Active(); active == nil || !active.IsOnDesktop(d) {
		s.act.ActivateOnDesktop(d)
	}
}

// SetDesktopCount changes the number of desktops. Windows on removed
// desktops move to the last one.
func (s *State) SetDesktopCount(n int) {
	if n < 1 {
		n = 1
	}
	s.tracker.SetDesktopCount(n)
	for _, w := range s.arena.All() {
		if w.Desktop != window.OnAllDesktops && w.Desktop > n {
			s.setDesktop(w, n)
		}
	}
	s.UpdateClientArea()
	s.publishDesktops()
}

func (s *State) setMinimized(w *window.Window, minimized bool) {
	minimized = s.rules[w.ID].CheckMinimize(minimized, false)
	if minimized && !w.IsMinimizable() {
		return
	}
	if w.Minimized == minimized {
		return
	}
	w.Minimized = minimized
	s.updateVisibility(w)
	for _, c := range s.arena.All() {
		if c != w && c.Modal && s.arena.HasTransient(w, c) && c.Minimized != minimized {
			s.setMinimized(c, minimized)
		}
	}
	if minimized && s.act.Active() == w {
		s.act.ActivateNextWindow(w)
	}
	s.rules[w.ID].Update(w, rules.PropMinimize)
	s.publishState(w)
}

// SetMinimized minimizes or restores w and its tab group.
func (s *State) SetMinimized(w *window.Window, minimized bool) {
	s.setMinimized(w, minimized)
	s.propagate(w, tabgroup.StateMinimized)
}

func (s *State) setShade(w *window.Window, mode window.ShadeMode) {
	mode = s.rules[w.ID].CheckShade(mode, false)
	if w.IsSpecial() || w.NoBorder {
		mode = window.ShadeNone
	}
	if w.Shade == mode {
		return
	}
	if mode != window.ShadeNone && w.Fullscreen {
		log.Printf("workspace: not shading fullscreen window %#x", w.XID)
		return
	}
	w.Shade = mode
	w.SetFrameGeometry(w.Frame, true)
	if mode == window.ShadeNormal && s.act.Active() == w {
		// The client area is gone, keep the frame focused instead.
		s.FocusToNull()
	}
	s.rules[w.ID].Update(w, rules.PropShade)
	s.publishState(w)
}

// SetShade shades or unshades w and its tab group.
func (s *State) SetShade(w *window.Window, mode window.ShadeMode) {
	s.setShade(w, mode)
	s.propagate(w, tabgroup.StateShaded)
}

func (s *State) setKeepAbove(w *window.Window, above bool) {
	above = s.rules[w.ID].CheckKeepAbove(above, false)
	if above && w.KeepBelow {
		s.setKeepBelow(w, false)
	}
	if w.KeepAbove == above {
		return
	}
	w.KeepAbove = above
	s.restack()
	s.rules[w.ID].Update(w, rules.PropAbove)
	s.publishState(w)
}

func (s *State) setKeepBelow(w *window.Window, below bool) {
	below = s.rules[w.ID].CheckKeepBelow(below, false)
	if below && w.KeepAbove {
		s.setKeepAbove(w, false)
	}
	if w.KeepBelow == below {
		return
	}
	w.KeepBelow = below
	s.restack()
	s.rules[w.ID].Update(w, rules.PropBelow)
	s.publishState(w)
}

// SetKeepAbove moves w and its tab group in or out of the keep-above layer.
func (s *State) SetKeepAbove(w *window.Window, above bool) {
	s.setKeepAbove(w, above)
	s.propagate(w, tabgroup.StateLayer)
}

// SetKeepBelow moves w and its tab group in or out of the keep-below layer.
func (s *State) SetKeepBelow(w *window.Window, below bool) {
	s.setKeepBelow(w, below)
	s.propagate(w, tabgroup.StateLayer)
}

// SetSkip updates the taskbar, pager and switcher flags of w.
func (s *State) SetSkip(w *window.Window, taskbar, pager, switcher bool) {
	wr := s.rules[w.ID]
	w.SkipTaskbar = wr.CheckSkipTaskbar(taskbar, false)
	w.SkipPager = wr.CheckSkipPager(pager, false)
	w.SkipSwitcher = wr.CheckSkipSwitcher(switcher, false)
	wr.Update(w, rules.PropSkipTaskbar|rules.PropSkipPager|rules.PropSkipSwitcher)
	s.publishState(w)
}
