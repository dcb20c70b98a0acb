package activation

import (
	"log"
	"slices"

	"github.com/KDE/kwin-sub007/internal/timestamp"
	"github.com/KDE/kwin-sub007/internal/window"
)

// Flags modify RequestFocus.
type Flags uint8

const (
	FlagFocus Flags = 1 << iota
	FlagForceFocus
	FlagRaise
)

func removeID(ids []window.ID, id window.ID) []window.ID {
	return slices.DeleteFunc(ids, func(x window.ID) bool { return x == id })
}

// chainDesktops returns the desktops whose chains should contain w.
func (s *State) chainDesktops(w *window.Window) []int {
	if !w.IsOnAllDesktops() {
		return []int{w.Desktop}
	}
	out := make([]int, 0, s.host.DesktopCount())
	for d := 1; d <= s.host.DesktopCount(); d++ {
		out = append(out, d)
	}
	return out
}

// UpdateFocusChain places w in the chains of its desktops. makeFirst moves it
// to the most recently used end; otherwise a window that is not yet in a
// chain is added as least recently used. Windows that never take focus are
// removed.
func (s *State) UpdateFocusChain(w *window.Window, makeFirst bool) {
	if !w.WantsTabFocus() && w.Kind != window.KindUtility {
		s.removeFromChains(w.ID)
		return
	}
	for d := range s.focusChains {
		if !w.IsOnDesktop(d) {
			s.focusChains[d] = removeID(s.focusChains[d], w.ID)
		}
	}
	for _, d := range s.chainDesktops(w) {
		chain := s.focusChains[d]
		switch {
		case makeFirst:
			chain = append(removeID(chain, w.ID), w.ID)
		case !slices.Contains(chain, w.ID):
			chain = append([]window.ID{w.ID}, chain...)
		}
		s.focusChains[d] = chain
	}
}

func (s *State) removeFromChains(id window.ID) {
	for d, chain := range s.focusChains {
		s.focusChains[d] = removeID(chain, id)
	}
}

// FocusChain returns the focus chain of a desktop, least recently used first.
func (s *State) FocusChain(desktop int) []*window.Window {
	out := make([]*window.Window, 0, len(s.focusChains[desktop]))
	for _, id := range s.focusChains[desktop] {
		if w := s.get(id); w != nil {
			out = append(out, w)
		}
	}
	return out
}

// AttentionChain returns the windows demanding attention, newest first.
func (s *State) AttentionChain() []*window.Window {
	out := make([]*window.Window, 0, len(s.attention))
	for _, id := range s.attention {
		if w := s.get(id); w != nil {
			out = append(out, w)
		}
	}
	return out
}

// ShouldGetFocus returns the pending focus requests, oldest first.
func (s *State) ShouldGetFocus() []*window.Window {
	out := make([]*window.Window, 0, len(s.shouldGetFocus))
	for _, id := range s.shouldGetFocus {
		if w := s.get(id); w != nil {
			out = append(out, w)
		}
	}
	return out
}

// Remove forgets a window that is being unmanaged. The caller activates a
// replacement with ActivateNextWindow before calling Remove.
func (s *State) Remove(w *window.Window) {
	s.removeFromChains(w.ID)
	s.attention = removeID(s.attention, w.ID)
	s.shouldGetFocus = removeID(s.shouldGetFocus, w.ID)
	if s.active == w.ID {
		s.active = window.NoID
		s.host.ActiveChanged(nil)
	}
	if s.lastActive == w.ID {
		s.lastActive = window.NoID
	}
}

// GotFocusIn drops every pending focus request up to and including w once
// the server confirms that w has focus.
func (s *State) GotFocusIn(w *window.Window) {
	if i := slices.Index(s.shouldGetFocus, w.ID); i >= 0 {
		s.shouldGetFocus = slices.Delete(s.shouldGetFocus, 0, i+1)
	}
}

// RestoreFocus re-requests focus after something else, e.g. a grab, took it.
func (s *State) RestoreFocus() {
	if n := len(s.shouldGetFocus); n > 0 {
		if w := s.get(s.shouldGetFocus[n-1]); w != nil {
			s.RequestFocus(w, FlagFocus)
			return
		}
	}
	if w := s.LastActive(); w != nil {
		s.RequestFocus(w, FlagFocus)
	}
}

// SetActiveWindow records w as the active window, nil for none.
func (s *State) SetActiveWindow(w *window.Window) {
	var id window.ID
	if w != nil {
		id = w.ID
	}
	if id == s.active {
		return
	}
	if prev := s.Active(); prev != nil && prev.Shade == window.ShadeActivated {
		prev.Shade = window.ShadeNormal
	}
	s.active = id
	if w != nil {
		s.lastActive = id
		s.UpdateFocusChain(w, true)
		s.DemandAttention(w, false)
	}
	s.host.ActiveChanged(w)
}

// ActivateWindow makes w visible and, when the focus policy allows it or
// force is set, focused. It is the entry point for user initiated
// activation, so it also counts as user interaction.
func (s *State) ActivateWindow(w *window.Window, force bool) {
	if w == nil {
		s.FocusToNull()
		s.SetActiveWindow(nil)
		return
	}
	s.host.Raise(w)
	if !w.IsOnDesktop(s.host.CurrentDesktop()) {
		s.host.SetCurrentDesktop(w.Desktop)
	}
	if w.Minimized {
		s.host.Unminimize(w)
	}
	if w.Hidden && w.TabGroup != window.NoTabGroup {
		s.host.ShowTab(w)
	}
	if s.opts.FocusPolicy.IsReasonable() || force {
		flags := FlagFocus
		if force {
			flags |= FlagForceFocus
		}
		s.RequestFocus(w, flags)
	}
	if w.Kind != window.KindDesktop {
		s.UpdateUserTime(w, timestamp.Zero)
	}
}

// RequestFocus gives w input focus without the user interaction side
// effects of ActivateWindow.
func (s *State) RequestFocus(w *window.Window, flags Flags) {
	if flags&FlagFocus == 0 && flags&FlagRaise != 0 {
		s.host.Raise(w)
		return
	}
	s.TakeActivity(w, flags)
}

// TakeActivity hands focus to w or to its modal transient.
func (s *State) TakeActivity(w *window.Window, flags Flags) {
	if w == nil {
		s.FocusToNull()
		return
	}
	if flags&FlagFocus != 0 {
		if modal := s.findModal(w); modal != nil && modal != w {
			if !modal.IsOnDesktop(w.Desktop) {
				s.host.SendToDesktop(modal, w.Desktop)
			}
			if !modal.IsShown() {
				return
			}
			// The modal may refuse focus, the main window is not an option.
			w = modal
		}
	}
	if (w.Kind == window.KindDock || w.Kind == window.KindSplash) && flags&FlagForceFocus == 0 {
		flags &^= FlagFocus
	}
	if w.IsShade() {
		if w.WantsInput && flags&FlagFocus != 0 {
			// Shaded windows keep focus on the frame.
			s.SetActiveWindow(w)
			s.host.FocusToNull()
		}
		flags &^= FlagFocus
	}
	if w.Hidden && w.TabGroup != window.NoTabGroup {
		s.host.ShowTab(w)
	}
	if !w.IsShown() {
		log.Printf("activation: %#x is not shown, cannot take activity", w.XID)
		return
	}
	if flags&FlagFocus != 0 {
		s.shouldGetFocus = append(removeID(s.shouldGetFocus, w.ID), w.ID)
		s.host.Focus(w)
	}
	if flags&FlagRaise != 0 {
		s.host.Raise(w)
	}
	s.activeScreen = w.Screen
}

// findModal returns the topmost modal transient of w.
func (s *State) findModal(w *window.Window) *window.Window {
	arena := s.host.Arena()
	all := arena.All()
	for i := len(all) - 1; i >= 0; i-- {
		c := all[i]
		if c != w && c.Modal && arena.HasTransient(w, c) {
			if nested := s.findModal(c); nested != nil {
				return nested
			}
			return c
		}
	}
	return nil
}

// FocusToNull drops input focus and forgets pending requests.
func (s *State) FocusToNull() {
	s.host.FocusToNull()
}

func (s *State) isUsableFocusCandidate(c, prev *window.Window) bool {
	if c == prev || !c.IsShown() || !c.IsOnDesktop(s.host.CurrentDesktop()) {
		return false
	}
	if s.opts.SeparateScreenFocus && prev != nil && c.Screen != prev.Screen {
		return false
	}
	return true
}

func (s *State) desktopWindow(desktop int) *window.Window {
	all := s.host.Arena().All()
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Kind == window.KindDesktop && all[i].IsOnDesktop(desktop) {
			return all[i]
		}
	}
	return nil
}

// ActivateNextWindow picks a new active window after w loses activity, e.g.
// because it was closed or minimized. It reports whether a window was
// activated.
func (s *State) ActivateNextWindow(w *window.Window) bool {
	n := len(s.shouldGetFocus)
	if w != nil {
		isActive := s.active == w.ID
		isPending := n > 0 && s.shouldGetFocus[n-1] == w.ID
		if !isActive && !isPending {
			return false
		}
		if isActive {
			s.SetActiveWindow(nil)
		}
		s.shouldGetFocus = removeID(s.shouldGetFocus, w.ID)
	}
	if !s.opts.FocusPolicy.IsReasonable() {
		return false
	}

	desktop := s.host.CurrentDesktop()
	var next *window.Window
	if s.opts.FocusPolicy.NextFocusPrefersMouse() {
		screen := s.activeScreen
		if w != nil {
			screen = w.Screen
		}
		if c := s.host.WindowUnderPointer(screen); c != nil && c != w && c.IsShown() {
			next = c
		}
	}
	if next == nil && w != nil && w.IsTransient() {
		if main := s.get(w.TransientFor); main != nil && s.isUsableFocusCandidate(main, w) {
			next = main
			s.host.Raise(main)
		}
	}
	if next == nil {
		chain := s.FocusChain(desktop)
		for i := len(chain) - 1; i >= 0; i-- {
			if s.isUsableFocusCandidate(chain[i], w) {
				next = chain[i]
				break
			}
		}
	}
	if next == nil {
		next = s.desktopWindow(desktop)
	}
	if next == nil {
		s.FocusToNull()
		return false
	}
	s.RequestFocus(next, FlagFocus)
	return true
}

// ActivateOnDesktop focuses the most recently used window of a desktop after
// a desktop switch.
func (s *State) ActivateOnDesktop(desktop int) {
	if !s.opts.FocusPolicy.IsReasonable() {
		return
	}
	if ac := s.Active(); ac != nil && ac.IsOnDesktop(desktop) && ac.IsShown() {
		return
	}
	chain := s.FocusChain(desktop)
	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]
		if c.IsShown() && (!s.opts.SeparateScreenFocus || c.Screen == s.activeScreen) {
			s.RequestFocus(c, FlagFocus)
			return
		}
	}
	if d := s.desktopWindow(desktop); d != nil {
		s.RequestFocus(d, FlagFocus)
		return
	}
	s.SetActiveWindow(nil)
	s.FocusToNull()
}

// SetCurrentScreen moves focus to the most recently used window of screen
// when screens have separate focus.
func (s *State) SetCurrentScreen(screen int) {
	if !s.opts.SeparateScreenFocus {
		s.activeScreen = screen
		return
	}
	desktop := s.host.CurrentDesktop()
	var next *window.Window
	chain := s.FocusChain(desktop)
	for i := len(chain) - 1; i >= 0; i-- {
		if c := chain[i]; c.IsShown() && c.Screen == screen {
			next = c
			break
		}
	}
	if next == nil {
		next = s.desktopWindow(desktop)
	}
	if next != nil && next != s.Active() {
		s.RequestFocus(next, FlagFocus)
	}
	s.activeScreen = screen
}

// DemandAttention marks w as wanting the user's attention. The active window
// never demands attention.
func (s *State) DemandAttention(w *window.Window, set bool) {
	if set && s.active == w.ID {
		set = false
	}
	if w.DemandsAttention == set {
		return
	}
	w.DemandsAttention = set
	s.attention = removeID(s.attention, w.ID)
	if set {
		s.attention = append([]window.ID{w.ID}, s.attention...)
	}
}

// StartupIDChanged applies a startup notification that was matched to an
// already managed window.
func (s *State) StartupIDChanged(w *window.Window, asn *StartupInfo) {
	if asn == nil {
		return
	}
	w.StartupID = asn.ID
	desktop := asn.Desktop
	if desktop == 0 {
		desktop = s.host.CurrentDesktop()
	}
	if !w.IsOnAllDesktops() && w.Desktop != desktop {
		s.host.SendToDesktop(w, desktop)
	}
	if asn.Screen != -1 {
		s.host.SendToScreen(w, asn.Screen)
	}
	s.GroupStartupIDChanged(w, asn)
	t := asn.Time()
	if t == timestamp.Zero {
		return
	}
	activate := s.AllowActivation(w, t, false, false)
	if asn.Desktop != 0 && !w.IsOnDesktop(s.host.CurrentDesktop()) {
		// The user switched away while the application was starting.
		activate = false
	}
	if activate {
		s.ActivateWindow(w, false)
	} else {
		s.DemandAttention(w, true)
	}
}
