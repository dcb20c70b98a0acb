package workspace

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KDE/kwin-sub007/internal/activation"
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/platform"
	"github.com/KDE/kwin-sub007/internal/rules"
	"github.com/KDE/kwin-sub007/internal/session"
	"github.com/KDE/kwin-sub007/internal/timestamp"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
)

var screen = geom.Rect{Width: 1000, Height: 800}

func newState(t *testing.T, book *rules.Book) (*State, *platform.Memory) {
	t.Helper()
	mem := platform.NewMemory(screen)
	opts := DefaultOptions()
	opts.Desktops = 2
	s, err := New(mem, opts, book)
	if err != nil {
		t.Fatalf("new workspace: %v", err)
	}
	return s, mem
}

func client(id platform.WindowID, class string, pid int, frame geom.Rect) platform.Client {
	return platform.Client{
		ID:            id,
		Kind:          window.KindNormal,
		ResourceName:  class,
		ResourceClass: class,
		PID:           pid,
		Frame:         frame,
		Hints:         window.DefaultSizeHints(),
		UserTime:      timestamp.Unknown,
		WantsInput:    true,
	}
}

func xids(ws []*window.Window) []uint32 {
	out := make([]uint32, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.XID)
	}
	return out
}

func TestManage_PlacesAndActivatesFirstWindow(t *testing.T) {
	s, mem := newState(t, nil)
	w := s.Manage(client(1, "konsole", 10, geom.Rect{X: 300, Y: 300, Width: 400, Height: 300}), ManageOptions{})

	if want := (geom.Rect{Width: 400, Height: 300}); w.Frame != want {
		t.Fatalf("expected smart placement at %v, got %v", want, w.Frame)
	}
	if got, ok := mem.FrameOf(1); !ok || got != w.Frame {
		t.Fatalf("expected backend frame %v, got %v", w.Frame, got)
	}
	if s.Active() != w {
		t.Fatalf("expected the first window to be active")
	}
	if mem.Focused != 1 || mem.Active != 1 {
		t.Fatalf("expected focus and active window 1, got %d and %d", mem.Focused, mem.Active)
	}
	if !mem.Mapped[1] {
		t.Fatalf("expected window to be mapped")
	}

	second := s.Manage(client(2, "dolphin", 11, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	if second.Frame.Intersects(w.Frame) {
		t.Fatalf("expected smart placement to avoid overlap, got %v and %v", w.Frame, second.Frame)
	}
}

func TestManage_OlderTimestampDoesNotStealFocus(t *testing.T) {
	s, mem := newState(t, nil)
	first := s.Manage(client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	s.Activate(first)

	c := client(2, "dolphin", 11, geom.Rect{Width: 400, Height: 300})
	c.UserTime = 1
	late := s.Manage(c, ManageOptions{})

	if s.Active() != first {
		t.Fatalf("expected the active window to keep focus")
	}
	if !late.DemandsAttention {
		t.Fatalf("expected the refused window to demand attention")
	}
	if !mem.States[2].DemandsAttention {
		t.Fatalf("expected demands attention to be published")
	}
	order := xids(s.Windows())
	if diff := cmp.Diff([]uint32{2, 1}, order); diff != "" {
		t.Fatalf("expected the refused window below the active one (-want +got):\n%s", diff)
	}
}

func TestManage_ZeroTimestampNeverActivates(t *testing.T) {
	s, _ := newState(t, nil)
	c := client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300})
	c.UserTime = timestamp.Zero
	w := s.Manage(c, ManageOptions{})
	if s.Active() == w {
		t.Fatalf("expected a zero user time to prevent activation")
	}
}

func TestManage_RemappedWindowWithoutTimestampDoesNotStealFocus(t *testing.T) {
	s, mem := newState(t, nil)
	if got := s.Options().Activation.Level; got != activation.LevelNormal {
		t.Fatalf("expected level %v, got %v", activation.LevelNormal, got)
	}
	konsole := s.Manage(client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	xterm := s.Manage(client(2, "xterm", 11, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	if xterm.CreationTime == timestamp.Unknown {
		t.Fatalf("expected a creation time for a new window")
	}
	if s.Active() != xterm {
		t.Fatalf("expected the first window of a new application to be activated")
	}

	s.Activate(konsole)
	s.UserTimeChanged(konsole, mem.ServerTime())
	s.HandleEvent(platform.Event{Kind: platform.EventUnmap, Window: 2, Withdrawn: true})
	if s.Window(2) != nil {
		t.Fatalf("expected the withdrawn window to be released")
	}

	remapped := s.Manage(client(2, "xterm", 11, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	if remapped.CreationTime != timestamp.Unknown {
		t.Fatalf("expected no creation time after withdraw, got %v", remapped.CreationTime)
	}
	if remapped.UserTime != timestamp.Unknown {
		t.Fatalf("expected an unknown user time, got %v", remapped.UserTime)
	}
	if s.Active() != konsole {
		t.Fatalf("expected konsole to keep focus, got %#x", s.Active().XID)
	}
	if !remapped.DemandsAttention {
		t.Fatalf("expected the re-mapped window to demand attention")
	}

	// A destroyed window id is forgotten; a new window reusing it is new.
	s.HandleEvent(platform.Event{Kind: platform.EventDestroy, Window: 2})
	fresh := s.Manage(client(2, "xterm", 11, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	if fresh.CreationTime == timestamp.Unknown {
		t.Fatalf("expected a new creation time after destroy")
	}
}

func TestStrut_RepositionsWindowAtEdge(t *testing.T) {
	s, mem := newState(t, nil)
	w := s.Manage(client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	if w.Frame.X != 0 {
		t.Fatalf("expected window at the left edge, got %v", w.Frame)
	}

	panel := platform.Client{
		ID:    9,
		Kind:  window.KindDock,
		Frame: geom.Rect{Width: 50, Height: 800},
		Hints: window.DefaultSizeHints(),
		Strut: window.Strut{Left: 50, LeftStart: 0, LeftEnd: 800},
	}
	s.Manage(panel, ManageOptions{})

	if got := s.Area(workarea.WorkArea, 0, 0); got != (geom.Rect{X: 50, Width: 950, Height: 800}) {
		t.Fatalf("unexpected work area %v", got)
	}
	if w.Frame.X != 50 {
		t.Fatalf("expected the window to follow the panel edge, got %v", w.Frame)
	}
	if got, _ := mem.FrameOf(1); got != w.Frame {
		t.Fatalf("expected backend frame %v, got %v", w.Frame, got)
	}
	if len(mem.WorkAreas) != 2 || mem.WorkAreas[0].X != 50 {
		t.Fatalf("expected published work areas, got %v", mem.WorkAreas)
	}

	s.Unmanage(s.Window(9), false)
	if got := s.Area(workarea.WorkArea, 0, 0); got != screen {
		t.Fatalf("expected the work area back after the panel left, got %v", got)
	}
}

func TestCheckOffscreenPosition(t *testing.T) {
	area := geom.Rect{Width: 1000, Height: 800}
	tests := []struct {
		name string
		in   geom.Rect
		want geom.Rect
	}{
		{"visible", geom.Rect{X: 10, Y: 10, Width: 100, Height: 100}, geom.Rect{X: 10, Y: 10, Width: 100, Height: 100}},
		{"right", geom.Rect{X: 1200, Y: 10, Width: 100, Height: 100}, geom.Rect{X: 749, Y: 10, Width: 100, Height: 100}},
		{"left", geom.Rect{X: -500, Y: 10, Width: 100, Height: 100}, geom.Rect{X: 151, Y: 10, Width: 100, Height: 100}},
		{"below", geom.Rect{X: 10, Y: 900, Width: 100, Height: 100}, geom.Rect{X: 10, Y: 599, Width: 100, Height: 100}},
		{"above", geom.Rect{X: 10, Y: -300, Width: 100, Height: 100}, geom.Rect{X: 10, Y: 101, Width: 100, Height: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkOffscreenPosition(tt.in, area); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestScreenChange_MaximizedWindowFollowsNewArea(t *testing.T) {
	s, _ := newState(t, nil)
	w := s.Manage(client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	s.SetMaximize(w, window.MaximizeFull)
	if w.Frame != screen {
		t.Fatalf("expected maximized frame %v, got %v", screen, w.Frame)
	}

	smaller := geom.Rect{Width: 800, Height: 600}
	s.SetScreens([]geom.Rect{smaller})
	if w.Frame != smaller {
		t.Fatalf("expected maximized frame to follow the screen, got %v", w.Frame)
	}
	s.SetMaximize(w, window.MaximizeRestore)
	if want := (geom.Rect{Width: 400, Height: 300}); w.Frame != want {
		t.Fatalf("expected restore geometry %v, got %v", want, w.Frame)
	}
}

func TestRules_AppliedWhenManaged(t *testing.T) {
	book := rules.NewBook("")
	err := book.Append(&rules.Rule{
		Description: "xterm on desktop two",
		Class:       &rules.Matcher{Value: "xterm", Match: rules.MatchExact},
		Desktop:     &rules.Set[int]{Value: 2, Rule: rules.SetForce},
		Above:       &rules.Set[bool]{Value: true, Rule: rules.SetApply},
		Size:        &rules.Set[geom.Size]{Value: geom.Size{Width: 500, Height: 400}, Rule: rules.SetApply},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	s, mem := newState(t, book)
	w := s.Manage(client(1, "xterm", 10, geom.Rect{Width: 200, Height: 200}), ManageOptions{})

	if w.Desktop != 2 || !w.KeepAbove {
		t.Fatalf("expected desktop 2 and keep above, got %d and %t", w.Desktop, w.KeepAbove)
	}
	if w.Frame.Size() != (geom.Size{Width: 500, Height: 400}) {
		t.Fatalf("expected rule size, got %v", w.Frame)
	}
	if s.CurrentDesktop() != 2 || !mem.Mapped[1] {
		t.Fatalf("expected the desktop to switch to the activated window")
	}

	// Forced desktop rules also hold against later requests.
	s.SetDesktop(w, 1)
	if w.Desktop != 2 {
		t.Fatalf("expected the forced desktop to win, got %d", w.Desktop)
	}
	// Apply rules only decide the initial value.
	s.SetKeepAbove(w, false)
	if w.KeepAbove {
		t.Fatalf("expected keep above to be changeable")
	}
}

func TestQuickTile_CombinesShortcuts(t *testing.T) {
	s, _ := newState(t, nil)
	w := s.Manage(client(1, "konsole", 10, geom.Rect{X: 100, Y: 100, Width: 400, Height: 300}), ManageOptions{})
	original := w.Frame

	s.QuickTile(w, window.QuickTileLeft)
	if want := (geom.Rect{Width: 500, Height: 800}); w.Frame != want {
		t.Fatalf("expected left half %v, got %v", want, w.Frame)
	}
	s.QuickTile(w, window.QuickTileTop)
	if w.QuickTile != window.QuickTileTop|window.QuickTileLeft {
		t.Fatalf("expected the shortcuts to combine, got %v", w.QuickTile)
	}
	if want := (geom.Rect{Width: 500, Height: 400}); w.Frame != want {
		t.Fatalf("expected top-left quarter %v, got %v", want, w.Frame)
	}

	s.Tiling().SetQuickTile(w, window.QuickTileNone, true)
	if w.Frame != original {
		t.Fatalf("expected the pre-tile geometry %v, got %v", original, w.Frame)
	}
}

func TestTabGroup_FollowsMaximizeAndMinimize(t *testing.T) {
	s, mem := newState(t, nil)
	a := s.Manage(client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	b := s.Manage(client(2, "konsole", 11, geom.Rect{Width: 300, Height: 200}), ManageOptions{})

	if err := s.TabAdd(b, a); err != nil {
		t.Fatalf("tab add: %v", err)
	}
	if b.Frame != a.Frame {
		t.Fatalf("expected the new tab to take the group geometry, got %v and %v", a.Frame, b.Frame)
	}
	if !a.Hidden || b.Hidden || mem.Mapped[1] {
		t.Fatalf("expected only the new tab to be visible")
	}

	s.SetMaximize(b, window.MaximizeFull)
	if a.Maximize != window.MaximizeFull || a.Frame != b.Frame {
		t.Fatalf("expected the hidden tab to follow the maximize, got %v at %v", a.Maximize, a.Frame)
	}

	s.SetMinimized(b, true)
	if !a.Minimized {
		t.Fatalf("expected the group to minimize together")
	}
	s.SetMinimized(b, false)

	if err := s.TabNext(b, false); err != nil {
		t.Fatalf("tab next: %v", err)
	}
	if a.Hidden || !b.Hidden {
		t.Fatalf("expected the other tab to become visible")
	}

	if err := s.TabRemove(b); err != nil {
		t.Fatalf("tab remove: %v", err)
	}
	if b.Hidden || s.Tabs().GroupOf(a) != nil {
		t.Fatalf("expected a two window group to dissolve")
	}
	if err := s.TabRemove(b); err == nil {
		t.Fatalf("expected an error for a window without group")
	}
}

func TestUnmanage_ActivatesNextWindow(t *testing.T) {
	s, mem := newState(t, nil)
	a := s.Manage(client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	b := s.Manage(client(2, "dolphin", 11, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	s.Activate(b)

	s.Unmanage(b, false)
	if s.Active() != a {
		t.Fatalf("expected focus to return to the previous window")
	}
	if mem.Focused != 1 {
		t.Fatalf("expected backend focus on window 1, got %d", mem.Focused)
	}
	if s.Window(2) != nil {
		t.Fatalf("expected the window to be released")
	}
}

func TestMinimize_ActivatesNextAndUnmaps(t *testing.T) {
	s, mem := newState(t, nil)
	a := s.Manage(client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	b := s.Manage(client(2, "dolphin", 11, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	s.Activate(b)

	s.SetMinimized(b, true)
	if mem.Mapped[2] {
		t.Fatalf("expected a minimized window to be unmapped")
	}
	if s.Active() != a {
		t.Fatalf("expected the previous window to become active")
	}
	s.Activate(b)
	if b.Minimized || s.Active() != b {
		t.Fatalf("expected activation to unminimize")
	}
}

func TestSetCurrentDesktop_MapsAndFocuses(t *testing.T) {
	s, mem := newState(t, nil)
	a := s.Manage(client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	b := s.Manage(client(2, "dolphin", 11, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	s.SetDesktop(b, 2)
	if mem.Mapped[2] {
		t.Fatalf("expected a window on desktop 2 to be unmapped")
	}

	s.SetCurrentDesktop(2)
	if mem.Current != 2 {
		t.Fatalf("expected current desktop to be published, got %d", mem.Current)
	}
	if !mem.Mapped[2] || mem.Mapped[1] {
		t.Fatalf("expected mapping to follow the desktop, got %v", mem.Mapped)
	}
	if s.Active() != b {
		t.Fatalf("expected the window of the new desktop to be focused")
	}
	s.Activate(a)
	if s.CurrentDesktop() != 1 {
		t.Fatalf("expected activation to switch back to desktop 1")
	}
}

func TestSession_SaveAndRestore(t *testing.T) {
	s, _ := newState(t, nil)
	a := s.Manage(client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	b := s.Manage(client(2, "dolphin", 11, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	s.SetMaximize(b, window.MaximizeVertical)
	savedA, savedB := a.Frame, b.Frame

	store := session.NewStore(t.TempDir())
	sess, err := s.SaveSession(store, "work")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(sess.Windows) != 2 {
		t.Fatalf("expected 2 records, got %d", len(sess.Windows))
	}

	s.MoveResize(a, geom.Rect{X: 500, Y: 400, Width: 300, Height: 200})
	s.SetMaximize(b, window.MaximizeRestore)
	s.SetDesktop(a, 2)

	loaded, err := store.Read("work")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := s.RestoreSession(loaded); got != 2 {
		t.Fatalf("expected 2 restored windows, got %d", got)
	}
	if a.Frame != savedA || a.Desktop != 1 {
		t.Fatalf("expected a back at %v on desktop 1, got %v on %d", savedA, a.Frame, a.Desktop)
	}
	if b.Maximize != window.MaximizeVertical || b.Frame != savedB {
		t.Fatalf("expected b vertically maximized at %v, got %v at %v", savedB, b.Maximize, b.Frame)
	}

	// A window managed later claims nothing once all records are used.
	if s.PendingRecords() != 0 {
		t.Fatalf("expected no pending records, got %d", s.PendingRecords())
	}
	if _, err := s.SaveSession(store, "../escape"); err == nil {
		t.Fatalf("expected an invalid session name to be rejected")
	}
}

func TestSession_PendingRecordAppliedOnManage(t *testing.T) {
	s, _ := newState(t, nil)
	s.RestoreSession(&session.Session{Name: "work", Windows: []session.Record{{
		ResourceName:  "kate",
		ResourceClass: "kate",
		Geometry:      geom.Rect{X: 200, Y: 100, Width: 500, Height: 400},
		Desktop:       2,
		KeepBelow:     true,
	}}})
	if s.PendingRecords() != 1 {
		t.Fatalf("expected the record to wait for its window")
	}

	w := s.Manage(client(1, "kate", 10, geom.Rect{Width: 300, Height: 300}), ManageOptions{})
	if w.Frame != (geom.Rect{X: 200, Y: 100, Width: 500, Height: 400}) || w.Desktop != 2 || !w.KeepBelow {
		t.Fatalf("expected the record to be applied, got %v desktop %d below %t", w.Frame, w.Desktop, w.KeepBelow)
	}
	if s.PendingRecords() != 0 {
		t.Fatalf("expected the record to be claimed")
	}
}

func TestStatusAndListWindows(t *testing.T) {
	s, _ := newState(t, nil)
	s.Manage(client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	st := s.Status()
	if st.Windows != 1 || st.Active != 1 || st.Desktops != 2 || st.CurrentDesktop != 1 {
		t.Fatalf("unexpected status %+v", st)
	}
	list := s.ListWindows()
	if len(list) != 1 || list[0].Class != "konsole" || !list[0].Active || list[0].Maximize != "restore" {
		t.Fatalf("unexpected window list %+v", list)
	}
}
