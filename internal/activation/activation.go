// Package activation decides which window may take input focus and keeps
// the bookkeeping around it: the active window, the queue of windows that
// were asked to take focus, per-desktop focus chains and the attention
// chain.
//
// Focus stealing prevention compares the timestamp of an activation request
// with the user time of the window that is currently active. How strictly
// the comparison is applied depends on a level between None and Extreme.
package activation

import (
	"fmt"
	"log"
	"strings"

	"github.com/KDE/kwin-sub007/internal/timestamp"
	"github.com/KDE/kwin-sub007/internal/window"
)

// Level is the focus stealing prevention strictness.
type Level int

const (
	// LevelNone always allows activation.
	LevelNone Level = iota
	// LevelLow allows activation when unsure.
	LevelLow
	// LevelNormal denies activation when unsure.
	LevelNormal
	// LevelHigh only allows windows of the active application.
	LevelHigh
	// LevelExtreme never allows activation without user interaction.
	LevelExtreme
)

var levelNames = [...]string{"none", "low", "normal", "high", "extreme"}

func (l Level) String() string {
	if l >= LevelNone && l <= LevelExtreme {
		return levelNames[l]
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Valid reports whether l is within None..Extreme.
func (l Level) Valid() bool { return l >= LevelNone && l <= LevelExtreme }

// FocusPolicy is the configured focus model.
type FocusPolicy int

const (
	ClickToFocus FocusPolicy = iota
	FocusFollowsMouse
	FocusUnderMouse
	FocusStrictlyUnderMouse
)

var focusPolicyNames = [...]string{"click", "follow-mouse", "focus-under-mouse", "focus-strictly-under-mouse"}

func (p FocusPolicy) String() string {
	if p >= ClickToFocus && p <= FocusStrictlyUnderMouse {
		return focusPolicyNames[p]
	}
	return fmt.Sprintf("focus-policy(%d)", int(p))
}

// ParseFocusPolicy parses the names produced by String.
func ParseFocusPolicy(s string) (FocusPolicy, error) {
	for i, name := range focusPolicyNames {
		if strings.EqualFold(s, name) {
			return FocusPolicy(i), nil
		}
	}
	return ClickToFocus, fmt.Errorf("unknown focus policy %q", s)
}

// IsReasonable reports whether the policy lets the window manager move focus
// on its own, e.g. to a newly activated window.
func (p FocusPolicy) IsReasonable() bool {
	return p == ClickToFocus || p == FocusFollowsMouse
}

// NextFocusPrefersMouse reports whether the window under the pointer gets
// focus when the active window goes away.
func (p FocusPolicy) NextFocusPrefersMouse() bool {
	return p == FocusUnderMouse || p == FocusStrictlyUnderMouse
}

// Options configure the arbiter.
type Options struct {
	Level               Level
	FocusPolicy         FocusPolicy
	SeparateScreenFocus bool
}

// Host performs the side effects of activation on the workspace.
type Host interface {
	Arena() *window.Arena
	Now() timestamp.Time
	CurrentDesktop() int
	DesktopCount() int
	SetCurrentDesktop(d int)
	SendToDesktop(w *window.Window, d int)
	SendToScreen(w *window.Window, screen int)
	Raise(w *window.Window)
	RaiseWithinApplication(w *window.Window)
	Unminimize(w *window.Window)
	// ShowTab makes w the visible window of its tab group.
	ShowTab(w *window.Window)
	// Focus hands input focus to w; FocusToNull drops it.
	Focus(w *window.Window)
	FocusToNull()
	WindowUnderPointer(screen int) *window.Window
	// RuleFSP applies window rules to the configured level.
	RuleFSP(w *window.Window, configured Level) Level
	// ActiveChanged publishes the new active window, nil for none.
	ActiveChanged(w *window.Window)
}

// State is the activation bookkeeping of one workspace.
type State struct {
	host Host
	opts Options

	active     window.ID
	lastActive window.ID
	// shouldGetFocus lists windows that were asked to take focus and have
	// not confirmed it yet, oldest first.
	shouldGetFocus []window.ID
	// focusChains holds one chain per desktop, least recently used first.
	focusChains map[int][]window.ID
	// attention lists windows demanding attention, newest first.
	attention []window.ID

	activeScreen int
	// SessionSaving relaxes the rules while a session is being saved so
	// that save dialogs are not blocked.
	SessionSaving bool
}

// New returns an empty activation state.
func New(host Host, opts Options) *State {
	return &State{host: host, opts: opts, focusChains: make(map[int][]window.ID)}
}

func (s *State) Options() Options     { return s.opts }
func (s *State) SetOptions(o Options) { s.opts = o }

func (s *State) get(id window.ID) *window.Window { return s.host.Arena().Get(id) }

// Active returns the active window or nil.
func (s *State) Active() *window.Window { return s.get(s.active) }

// LastActive returns the window that was active most recently, which may
// still be the active one.
func (s *State) LastActive() *window.Window { return s.get(s.lastActive) }

// ActiveScreen is the screen of the last focused window.
func (s *State) ActiveScreen() int { return s.activeScreen }

// MostRecentlyActivated returns the window that was last asked to take
// focus, or the active window when no request is pending.
func (s *State) MostRecentlyActivated() *window.Window {
	if n := len(s.shouldGetFocus); n > 0 {
		return s.get(s.shouldGetFocus[n-1])
	}
	return s.Active()
}

func (s *State) expectsFocus(w *window.Window) bool {
	for _, id := range s.shouldGetFocus {
		if id == w.ID {
			return true
		}
	}
	return false
}

func (s *State) level(w *window.Window) Level {
	return s.host.RuleFSP(w, s.opts.Level)
}

// AllowActivation decides whether w may become active for a request
// carrying time t. focusIn marks an unsolicited focus change reported by the
// server; ignoreDesktop skips the current-desktop check for explicit
// requests from pagers and taskbars.
func (s *State) AllowActivation(w *window.Window, t timestamp.Time, focusIn, ignoreDesktop bool) bool {
	if t == timestamp.Unknown {
		t = s.UserTime(w)
	}
	level := s.level(w)
	if s.SessionSaving && level <= LevelNormal {
		return true
	}
	ac := s.MostRecentlyActivated()
	if focusIn {
		if s.expectsFocus(w) {
			// The focus change was our own doing.
			return true
		}
		// The previously active window already lost focus.
		ac = s.LastActive()
	}
	if level == LevelNone {
		return true
	}
	if t == timestamp.Zero {
		return false
	}
	if level == LevelExtreme {
		return false
	}
	if !ignoreDesktop && !w.IsOnDesktop(s.host.CurrentDesktop()) {
		return false
	}
	if ac == nil || ac.Kind == window.KindDesktop {
		log.Printf("activation: no window active, allowing %#x", w.XID)
		return true
	}
	if s.BelongToSameApplication(w, ac, true) {
		log.Printf("activation: %#x belongs to the active application", w.XID)
		return true
	}
	if level == LevelHigh {
		return false
	}
	if t == timestamp.Unknown {
		log.Printf("activation: no timestamp for %#x", w.XID)
		return level == LevelLow
	}
	userTime := s.UserTime(ac)
	allowed := t.NotOlderThan(userTime)
	log.Printf("activation: %#x compared %v with %v: %t", w.XID, t, userTime, allowed)
	return allowed
}

// AllowFullRaising decides whether w may be raised above every window on its
// own request. Refused windows are only raised within their application.
func (s *State) AllowFullRaising(w *window.Window, t timestamp.Time) bool {
	level := s.level(w)
	if s.SessionSaving && level <= LevelNormal {
		return true
	}
	ac := s.MostRecentlyActivated()
	if level == LevelNone {
		return true
	}
	if level == LevelExtreme {
		return false
	}
	if ac == nil || ac.Kind == window.KindDesktop {
		return true
	}
	if s.BelongToSameApplication(w, ac, true) {
		return true
	}
	if level == LevelHigh {
		return false
	}
	return t.NotOlderThan(s.UserTime(ac))
}

// RaiseWindowRequest handles a client asking to be raised. Requests from
// pagers and taskbars are always honored.
func (s *State) RaiseWindowRequest(w *window.Window, t timestamp.Time, fromTool bool) {
	if fromTool || s.AllowFullRaising(w, t) {
		s.host.Raise(w)
		return
	}
	s.host.RaiseWithinApplication(w)
	s.DemandAttention(w, true)
}

// BelongToSameApplication reports whether two windows are from the same
// application. relaxedForActive treats different main windows of one
// program as the same application when one of them is active.
func (s *State) BelongToSameApplication(c1, c2 *window.Window, relaxedForActive bool) bool {
	arena := s.host.Arena()
	hasLeader := func(w *window.Window) bool { return w.Leader != 0 && w.Leader != w.XID }
	switch {
	case c1 == c2:
		return true
	case c1.IsTransient() && arena.HasTransient(c2, c1):
		return true
	case c2.IsTransient() && arena.HasTransient(c1, c2):
		return true
	case c1.Group != window.NoGroup && c1.Group == c2.Group:
		return true
	case c1.Leader == c2.Leader && hasLeader(c1) && hasLeader(c2):
		return true
	case c1.PID != c2.PID || c1.Machine != c2.Machine:
		return false
	case c1.Leader != c2.Leader && hasLeader(c1) && hasLeader(c2):
		return false
	case c1.ResourceClass != c2.ResourceClass:
		return false
	case !s.sameAppWindowRoleMatch(c1, c2, relaxedForActive):
		return false
	case c1.PID == 0 || c2.PID == 0:
		// Without _NET_WM_PID there is nothing left to go by.
		return false
	}
	return true
}

// sameAppWindowRoleMatch treats main windows whose roles contain '#' as
// separate applications unless they are the same window or one of them is
// active.
func (s *State) sameAppWindowRoleMatch(c1, c2 *window.Window, activeHack bool) bool {
	arena := s.host.Arena()
	if c1.IsTransient() {
		for t := arena.Get(c1.TransientFor); t != nil && t != c1; t = arena.Get(t.TransientFor) {
			c1 = t
		}
		if c1.GroupTransient {
			return c1.Group == c2.Group
		}
	}
	if c2.IsTransient() {
		for t := arena.Get(c2.TransientFor); t != nil && t != c2; t = arena.Get(t.TransientFor) {
			c2 = t
		}
		if c2.GroupTransient {
			return c1.Group == c2.Group
		}
	}
	if strings.Contains(c1.Role, "#") && strings.Contains(c2.Role, "#") {
		if !activeHack {
			return c1 == c2
		}
		if c1.ID != s.active && c2.ID != s.active {
			return c1 == c2
		}
	}
	return true
}
