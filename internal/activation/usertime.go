package activation

import (
	"log"

	"github.com/KDE/kwin-sub007/internal/timestamp"
	"github.com/KDE/kwin-sub007/internal/window"
)

// StartupInfo is the startup notification data matched to a window.
type StartupInfo struct {
	ID string
	// Timestamp is the time embedded in the startup ID.
	Timestamp timestamp.Time
	// DataTimestamp is the TIMESTAMP field of the notification data, or
	// Unknown.
	DataTimestamp timestamp.Time
	// Desktop is the requested desktop, 0 for none.
	Desktop int
	// Screen is the requested screen, -1 for none.
	Screen int
}

// Time returns the timestamp to use for activation decisions: the startup
// ID time, falling back to the data timestamp.
func (i *StartupInfo) Time() timestamp.Time {
	if i == nil {
		return timestamp.Zero
	}
	if i.Timestamp != timestamp.Zero {
		return i.Timestamp
	}
	if i.DataTimestamp != timestamp.Unknown {
		return i.DataTimestamp
	}
	return timestamp.Zero
}

// excludedFromSameApp lists kinds that do not count as "another window of
// the application" when deciding whether a new window is the first one.
func excludedFromSameApp(w *window.Window) bool {
	switch w.Kind {
	case window.KindSplash, window.KindToolbar, window.KindUtility, window.KindMenu:
		return true
	}
	return false
}

// ReadUserTime resolves the user time of a window that is being managed.
// prop is the value of _NET_WM_USER_TIME (Unknown when absent), asn the
// matched startup notification and session reports whether the window is
// restored from a saved session.
func (s *State) ReadUserTime(w *window.Window, prop timestamp.Time, asn *StartupInfo, session bool) timestamp.Time {
	t := prop
	if asn != nil && t != timestamp.Zero {
		if asn.Timestamp != timestamp.Zero && (t == timestamp.Unknown || asn.Timestamp.NewerThan(t)) {
			t = asn.Timestamp
		} else if asn.DataTimestamp != timestamp.Unknown && (t == timestamp.Unknown || asn.DataTimestamp.NewerThan(t)) {
			t = asn.DataTimestamp
		}
	}
	if t != timestamp.Unknown {
		return t
	}

	// A window without any timestamp that is not the first window of its
	// application should not steal focus from the application the user is
	// working with.
	if act := s.MostRecentlyActivated(); act != nil && !s.BelongToSameApplication(act, w, true) {
		if !s.isFirstWindow(w, act) && s.level(w) > LevelNone {
			log.Printf("activation: refusing user time for %#x, not the first window of its application", w.XID)
			return timestamp.Zero
		}
	}
	if session {
		return timestamp.Unknown
	}
	return w.CreationTime
}

func (s *State) isFirstWindow(w, act *window.Window) bool {
	arena := s.host.Arena()
	if w.IsTransient() {
		if arena.HasTransient(act, w) {
			return true
		}
		if !w.GroupTransient {
			return false
		}
		// A group transient is the first window when no main window of the
		// application exists yet.
		for _, other := range arena.All() {
			if other != w && !other.IsTransient() && !excludedFromSameApp(other) && s.BelongToSameApplication(w, other, true) {
				return false
			}
		}
		return true
	}
	for _, other := range arena.All() {
		if other != w && !excludedFromSameApp(other) && s.BelongToSameApplication(w, other, true) {
			return false
		}
	}
	return true
}

// UpdateUserTime records user interaction with w at time t; zero means now.
// Both the window and its group only move forward in time, and the group
// follows the window's time.
func (s *State) UpdateUserTime(w *window.Window, t timestamp.Time) {
	now := s.host.Now()
	if t == timestamp.Zero {
		t = now
	}
	if t != timestamp.Unknown && (w.UserTime == timestamp.Zero || w.UserTime == timestamp.Unknown || t.NewerThan(w.UserTime)) {
		w.UserTime = t
	}
	// A window that refuses activation does not move its group.
	if g := s.host.Arena().Group(w.Group); g != nil && w.UserTime != timestamp.Zero {
		g.UpdateUserTime(w.UserTime, now)
	}
}

// UserTime returns the effective user time of w: its own time, or the time
// of its group when that is more recent or the window has none.
func (s *State) UserTime(w *window.Window) timestamp.Time {
	t := w.UserTime
	if t == timestamp.Zero {
		// Explicitly asked not to be activated.
		return timestamp.Zero
	}
	g := s.host.Arena().Group(w.Group)
	if g == nil || g.UserTime == timestamp.Unknown {
		return t
	}
	if t == timestamp.Unknown || g.UserTime.NewerThan(t) {
		return g.UserTime
	}
	return t
}

// GroupStartupIDChanged bumps the group time of w when a startup
// notification with a newer timestamp arrives for the application.
func (s *State) GroupStartupIDChanged(w *window.Window, asn *StartupInfo) {
	g := s.host.Arena().Group(w.Group)
	if g == nil || asn == nil {
		return
	}
	t := asn.Time()
	if t == timestamp.Zero || g.UserTime == timestamp.Unknown {
		return
	}
	if g.UserTime == timestamp.Zero || t.NewerThan(g.UserTime) {
		g.UserTime = t
	}
}
