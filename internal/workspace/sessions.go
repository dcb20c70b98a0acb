package workspace

import (
	"fmt"
	"log"

	"github.com/KDE/kwin-sub007/internal/session"
	"github.com/KDE/kwin-sub007/internal/window"
)

func (s *State) tabInfo(w *window.Window) (session.TabInfo, bool) {
	g := s.tabs.GroupOf(w)
	if g == nil || g.Len() < 2 {
		return session.TabInfo{}, false
	}
	key := g.Key
	if key == "" {
		key = fmt.Sprintf("group-%d", g.ID)
	}
	return session.TabInfo{Key: key, Current: g.Current() == w.ID}, true
}

// SaveSession captures the managed windows and writes them to store.
func (s *State) SaveSession(store *session.Store, name string) (*session.Session, error) {
	if err := session.ValidateName(name); err != nil {
		return nil, err
	}
	s.act.SessionSaving = true
	defer func() { s.act.SessionSaving = false }()

	var active window.ID
	if a := s.act.Active(); a != nil {
		active = a.ID
	}
	sess := session.Capture(name, s.arena, active, s.tabInfo)
	if err := store.Write(sess); err != nil {
		return nil, err
	}
	log.Printf("workspace: saved session %q with %d windows", name, len(sess.Windows))
	return sess, nil
}

// RestoreSession applies sess to the windows managed right now and keeps
// the unclaimed records for windows that appear later. It returns the
// number of windows that were restored immediately.
func (s *State) RestoreSession(sess *session.Session) int {
	s.pending = session.NewPending(sess)
	restored := 0
	var activate *window.Window
	for _, w := range s.arena.All() {
		if !w.Managed || w.IsSpecial() {
			continue
		}
		rec := s.pending.Take(w)
		if rec == nil {
			continue
		}
		s.applyRecord(w, rec)
		if rec.Active {
			activate = w
		}
		restored++
	}
	s.restackRestored()
	if activate != nil {
		s.act.ActivateWindow(activate, false)
	}
	log.Printf("workspace: restored %d windows, %d records pending", restored, s.pending.Len())
	return restored
}

// applyRecord restores a record onto a window that is already managed.
func (s *State) applyRecord(w *window.Window, rec *session.Record) {
	if g := s.tabs.GroupOf(w); g != nil {
		s.tabs.Remove(w, w.Frame, false)
	}
	batch := w.BlockGeometryUpdates()
	if w.Fullscreen {
		s.tiling.SetFullscreen(w, false, false)
	}
	if w.IsMaximized() {
		s.tiling.Maximize(w, window.MaximizeRestore)
	}
	if w.QuickTile != window.QuickTileNone {
		s.tiling.SetQuickTile(w, window.QuickTileNone, true)
	}
	desktop, minimized, shade := w.Desktop, w.Minimized, w.Shade
	above, below := w.KeepAbove, w.KeepBelow
	mode, tile, fullscreen := s.applyRecordGeometry(w, rec)

	// Apply left the new values on w, route them through the setters so
	// they are published and checked against rules.
	newDesktop, newMinimized, newShade := w.Desktop, w.Minimized, w.Shade
	newAbove, newBelow := w.KeepAbove, w.KeepBelow
	w.Desktop, w.Minimized, w.Shade = desktop, minimized, shade
	w.KeepAbove, w.KeepBelow = above, below
	s.setDesktop(w, newDesktop)
	s.setShade(w, newShade)
	s.setKeepAbove(w, newAbove)
	s.setKeepBelow(w, newBelow)

	if mode != window.MaximizeRestore {
		s.tiling.Maximize(w, mode)
		if !rec.GeomRestore.IsEmpty() {
			w.GeomRestore = rec.GeomRestore
		}
	} else if tile != window.QuickTileNone {
		s.tiling.SetQuickTile(w, tile, true)
	}
	if fullscreen {
		s.tiling.SetFullscreen(w, true, false)
		if !rec.FullscreenRestore.IsEmpty() {
			w.FullscreenRestore = rec.FullscreenRestore
		}
	}
	batch.Release()
	s.setMinimized(w, newMinimized)
	if rec.TabGroup != "" {
		s.autogroup(w, s.rules[w.ID], rec)
	}
	s.publishState(w)
}

// restackRestored orders restored windows by their saved stacking index.
func (s *State) restackRestored() {
	if len(s.restored) == 0 {
		return
	}
	for _, w := range session.StackingOrder(s.arena.All(), s.restored) {
		if s.restored[w.ID] != nil {
			s.arena.Raise(w.ID)
		}
	}
	// Windows without a record stay on top in their previous order.
	for _, w := range s.arena.All() {
		if s.restored[w.ID] == nil {
			s.arena.Raise(w.ID)
		}
	}
	s.restack()
}

// PendingRecords is the number of session records waiting for a window.
func (s *State) PendingRecords() int {
	if s.pending == nil {
		return 0
	}
	return s.pending.Len()
}
