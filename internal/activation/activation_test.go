package activation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/timestamp"
	"github.com/KDE/kwin-sub007/internal/window"
)

type fakeHost struct {
	arena    *window.Arena
	now      timestamp.Time
	desktop  int
	desktops int
	rule     func(Level) Level

	focused    []uint32
	raised     []uint32
	appRaised  []uint32
	activeXID  uint32
	nullFocus  int
	underMouse *window.Window
	switchedTo []int
}

func newHost() *fakeHost {
	return &fakeHost{arena: window.NewArena(), now: 5000, desktop: 1, desktops: 2}
}

func (h *fakeHost) Arena() *window.Arena    { return h.arena }
func (h *fakeHost) Now() timestamp.Time     { return h.now }
func (h *fakeHost) CurrentDesktop() int     { return h.desktop }
func (h *fakeHost) DesktopCount() int       { return h.desktops }
func (h *fakeHost) SetCurrentDesktop(d int) { h.desktop = d; h.switchedTo = append(h.switchedTo, d) }
func (h *fakeHost) SendToDesktop(w *window.Window, d int) {
	w.Desktop = d
}
func (h *fakeHost) SendToScreen(w *window.Window, s int) { w.Screen = s }
func (h *fakeHost) Raise(w *window.Window) {
	h.arena.Raise(w.ID)
	h.raised = append(h.raised, w.XID)
}
func (h *fakeHost) RaiseWithinApplication(w *window.Window) { h.appRaised = append(h.appRaised, w.XID) }
func (h *fakeHost) Unminimize(w *window.Window)             { w.Minimized = false }
func (h *fakeHost) ShowTab(w *window.Window)                { w.Hidden = false }
func (h *fakeHost) Focus(w *window.Window)                  { h.focused = append(h.focused, w.XID) }
func (h *fakeHost) FocusToNull()                            { h.nullFocus++ }
func (h *fakeHost) WindowUnderPointer(int) *window.Window   { return h.underMouse }
func (h *fakeHost) RuleFSP(_ *window.Window, l Level) Level {
	if h.rule != nil {
		return h.rule(l)
	}
	return l
}
func (h *fakeHost) ActiveChanged(w *window.Window) {
	h.activeXID = 0
	if w != nil {
		h.activeXID = w.XID
	}
}

func (h *fakeHost) add(xid uint32, pid int, class string) *window.Window {
	w := window.New(xid, window.KindNormal, geom.Rect{Width: 100, Height: 100}, 1)
	w.PID = pid
	w.ResourceClass = class
	h.arena.Insert(w)
	return w
}

func xids(ws ...*window.Window) []uint32 {
	out := make([]uint32, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.XID)
	}
	return out
}

func TestAllowActivationNormalLevel(t *testing.T) {
	h := newHost()
	s := New(h, Options{Level: LevelNormal})
	a := h.add(0xa, 1, "editor")
	b := h.add(0xb, 2, "browser")
	a.UserTime = 1000
	s.SetActiveWindow(a)

	tests := []struct {
		name     string
		time     timestamp.Time
		expected bool
	}{
		{"older request", 900, false},
		{"same time", 1000, true},
		{"newer request", 1100, true},
		{"explicit zero", timestamp.Zero, false},
		{"unknown falls back to window user time", timestamp.Unknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.AllowActivation(b, tt.time, false, false); got != tt.expected {
				t.Fatalf("expected %t, got %t", tt.expected, got)
			}
		})
	}
}

func TestAllowActivationUnknownTimeAtLowLevel(t *testing.T) {
	h := newHost()
	s := New(h, Options{Level: LevelLow})
	a := h.add(0xa, 1, "editor")
	b := h.add(0xb, 2, "browser")
	a.UserTime = 1000
	s.SetActiveWindow(a)

	if !s.AllowActivation(b, timestamp.Unknown, false, false) {
		t.Fatalf("expected low level to allow a window without timestamp")
	}
}

func TestAllowActivationLevelsAreMonotonic(t *testing.T) {
	times := []timestamp.Time{timestamp.Zero, 1, 900, 1000, 1100, timestamp.Unknown}
	for _, tm := range times {
		prev := true
		for level := LevelNone; level <= LevelExtreme; level++ {
			h := newHost()
			s := New(h, Options{Level: level})
			a := h.add(0xa, 1, "editor")
			b := h.add(0xb, 2, "browser")
			a.UserTime = 1000
			s.SetActiveWindow(a)

			got := s.AllowActivation(b, tm, false, false)
			if got && !prev {
				t.Fatalf("time %v: level %v allows what a lower level refused", tm, level)
			}
			prev = got
		}
	}
}

func TestAllowActivationSpecialCases(t *testing.T) {
	t.Run("level none allows zero time", func(t *testing.T) {
		h := newHost()
		s := New(h, Options{Level: LevelNone})
		b := h.add(0xb, 2, "browser")
		if !s.AllowActivation(b, timestamp.Zero, false, false) {
			t.Fatalf("expected level none to allow")
		}
	})
	t.Run("no active window", func(t *testing.T) {
		h := newHost()
		s := New(h, Options{Level: LevelHigh})
		b := h.add(0xb, 2, "browser")
		if !s.AllowActivation(b, 10, false, false) {
			t.Fatalf("expected activation without an active window")
		}
	})
	t.Run("other desktop", func(t *testing.T) {
		h := newHost()
		s := New(h, Options{Level: LevelNormal})
		b := h.add(0xb, 2, "browser")
		b.Desktop = 2
		if s.AllowActivation(b, 10, false, false) {
			t.Fatalf("expected refusal for a window on another desktop")
		}
		if !s.AllowActivation(b, 10, false, true) {
			t.Fatalf("expected ignoreDesktop to allow")
		}
	})
	t.Run("high level allows same application", func(t *testing.T) {
		h := newHost()
		s := New(h, Options{Level: LevelHigh})
		a := h.add(0xa, 1, "editor")
		a2 := h.add(0xa2, 1, "editor")
		b := h.add(0xb, 2, "browser")
		a.UserTime = 1000
		s.SetActiveWindow(a)
		if !s.AllowActivation(a2, 10, false, false) {
			t.Fatalf("expected same application to be allowed")
		}
		if s.AllowActivation(b, 2000, false, false) {
			t.Fatalf("expected other application to be refused")
		}
	})
	t.Run("session saving", func(t *testing.T) {
		h := newHost()
		s := New(h, Options{Level: LevelNormal})
		s.SessionSaving = true
		b := h.add(0xb, 2, "browser")
		if !s.AllowActivation(b, timestamp.Zero, false, false) {
			t.Fatalf("expected session saving to allow")
		}
	})
	t.Run("rule overrides level", func(t *testing.T) {
		h := newHost()
		h.rule = func(Level) Level { return LevelExtreme }
		s := New(h, Options{Level: LevelNone})
		b := h.add(0xb, 2, "browser")
		if s.AllowActivation(b, 10, false, false) {
			t.Fatalf("expected rule level extreme to refuse")
		}
	})
}

func TestFocusInFromPendingRequest(t *testing.T) {
	h := newHost()
	s := New(h, Options{Level: LevelExtreme})
	a := h.add(0xa, 1, "editor")
	b := h.add(0xb, 2, "browser")
	s.RequestFocus(a, FlagFocus)
	s.RequestFocus(b, FlagFocus)

	if s.MostRecentlyActivated() != b {
		t.Fatalf("expected b to be most recently activated")
	}
	if !s.AllowActivation(a, 1, true, false) {
		t.Fatalf("expected focus-in of a pending window to be allowed")
	}
	s.GotFocusIn(a)
	if diff := cmp.Diff(xids(b), xids(s.ShouldGetFocus()...)); diff != "" {
		t.Fatalf("queue mismatch (-want +got):\n%s", diff)
	}
	s.GotFocusIn(b)
	if len(s.ShouldGetFocus()) != 0 {
		t.Fatalf("expected empty queue, got %d", len(s.ShouldGetFocus()))
	}
	if diff := cmp.Diff([]uint32{0xa, 0xb}, h.focused); diff != "" {
		t.Fatalf("focus calls mismatch (-want +got):\n%s", diff)
	}
}

func TestBelongToSameApplication(t *testing.T) {
	h := newHost()
	s := New(h, Options{})
	main := h.add(1, 10, "app")
	dialog := h.add(2, 99, "other")
	dialog.TransientFor = main.ID
	sibling := h.add(3, 10, "app")
	stranger := h.add(4, 11, "app")
	noPID := h.add(5, 0, "app")
	noPID2 := h.add(6, 0, "app")
	led1 := h.add(7, 20, "x")
	led2 := h.add(8, 21, "y")
	led1.Leader, led2.Leader = 0x100, 0x100
	roleA := h.add(9, 30, "multi")
	roleB := h.add(10, 30, "multi")
	roleA.Role, roleB.Role = "main#1", "main#2"

	tests := []struct {
		name     string
		a, b     *window.Window
		expected bool
	}{
		{"same window", main, main, true},
		{"transient", main, dialog, true},
		{"same pid and class", main, sibling, true},
		{"different pid", main, stranger, false},
		{"no pid", noPID, noPID2, false},
		{"shared leader", led1, led2, true},
		{"numbered roles", roleA, roleB, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.BelongToSameApplication(tt.a, tt.b, false); got != tt.expected {
				t.Fatalf("expected %t, got %t", tt.expected, got)
			}
		})
	}

	s.SetActiveWindow(roleA)
	if !s.BelongToSameApplication(roleA, roleB, true) {
		t.Fatalf("expected numbered roles to match when one is active")
	}
}

func TestUpdateUserTimeOnlyMovesForward(t *testing.T) {
	h := newHost()
	s := New(h, Options{})
	w := h.add(1, 1, "app")
	g := h.arena.JoinGroup(w, 0x50)

	s.UpdateUserTime(w, 1000)
	s.UpdateUserTime(w, 500)
	if w.UserTime != 1000 {
		t.Fatalf("expected 1000, got %v", w.UserTime)
	}
	if g.UserTime != 1000 {
		t.Fatalf("expected group time 1000, got %v", g.UserTime)
	}
	s.UpdateUserTime(w, timestamp.Zero)
	if w.UserTime != h.now {
		t.Fatalf("expected now %v, got %v", h.now, w.UserTime)
	}

	w.UserTime = 0xFFFFFFF0
	s.UpdateUserTime(w, 5)
	if w.UserTime != 5 {
		t.Fatalf("expected wrapped time 5, got %v", w.UserTime)
	}
}

func TestUpdateUserTimeGroupFollowsWindow(t *testing.T) {
	h := newHost()
	s := New(h, Options{})
	w := h.add(1, 1, "app")
	g := h.arena.JoinGroup(w, 0x50)

	w.UserTime = 1000
	g.UserTime = 300
	s.UpdateUserTime(w, 500)
	if w.UserTime != 1000 {
		t.Fatalf("expected window time 1000, got %v", w.UserTime)
	}
	if g.UserTime != 1000 {
		t.Fatalf("expected group time to follow the window to 1000, got %v", g.UserTime)
	}

	w.UserTime = timestamp.Zero
	g.UserTime = 300
	s.UpdateUserTime(w, timestamp.Unknown)
	if g.UserTime != 300 {
		t.Fatalf("expected a refusing window to leave the group at 300, got %v", g.UserTime)
	}
}

func TestUserTimeUsesGroup(t *testing.T) {
	h := newHost()
	s := New(h, Options{})
	w := h.add(1, 1, "app")
	g := h.arena.JoinGroup(w, 0x50)

	g.UserTime = 2000
	w.UserTime = 1000
	if got := s.UserTime(w); got != 2000 {
		t.Fatalf("expected group time 2000, got %v", got)
	}
	w.UserTime = timestamp.Unknown
	if got := s.UserTime(w); got != 2000 {
		t.Fatalf("expected group time for unknown, got %v", got)
	}
	w.UserTime = timestamp.Zero
	if got := s.UserTime(w); got != timestamp.Zero {
		t.Fatalf("expected zero to be kept, got %v", got)
	}
}

func TestReadUserTime(t *testing.T) {
	t.Run("startup id timestamp", func(t *testing.T) {
		h := newHost()
		s := New(h, Options{Level: LevelNormal})
		w := h.add(1, 1, "app")
		got := s.ReadUserTime(w, timestamp.Unknown, &StartupInfo{Timestamp: 500, DataTimestamp: timestamp.Unknown}, false)
		if got != 500 {
			t.Fatalf("expected 500, got %v", got)
		}
	})
	t.Run("property wins when newer", func(t *testing.T) {
		h := newHost()
		s := New(h, Options{Level: LevelNormal})
		w := h.add(1, 1, "app")
		got := s.ReadUserTime(w, 800, &StartupInfo{Timestamp: 500, DataTimestamp: timestamp.Unknown}, false)
		if got != 800 {
			t.Fatalf("expected 800, got %v", got)
		}
	})
	t.Run("second window of background application", func(t *testing.T) {
		h := newHost()
		s := New(h, Options{Level: LevelNormal})
		active := h.add(1, 1, "editor")
		h.add(2, 2, "browser")
		w := h.add(3, 2, "browser")
		w.CreationTime = 4000
		s.SetActiveWindow(active)
		if got := s.ReadUserTime(w, timestamp.Unknown, nil, false); got != timestamp.Zero {
			t.Fatalf("expected 0, got %v", got)
		}
	})
	t.Run("window of the active application", func(t *testing.T) {
		h := newHost()
		s := New(h, Options{Level: LevelNormal})
		active := h.add(1, 2, "browser")
		active.Role = "browser#1"
		h.add(2, 2, "browser")
		w := h.add(3, 2, "browser")
		w.Role = "browser#2"
		w.CreationTime = 4000
		s.SetActiveWindow(active)
		if got := s.ReadUserTime(w, timestamp.Unknown, nil, false); got != 4000 {
			t.Fatalf("expected 4000, got %v", got)
		}
	})
	t.Run("first window uses creation time", func(t *testing.T) {
		h := newHost()
		s := New(h, Options{Level: LevelNormal})
		active := h.add(1, 1, "editor")
		w := h.add(3, 2, "browser")
		w.CreationTime = 4000
		s.SetActiveWindow(active)
		if got := s.ReadUserTime(w, timestamp.Unknown, nil, false); got != 4000 {
			t.Fatalf("expected 4000, got %v", got)
		}
		if got := s.ReadUserTime(w, timestamp.Unknown, nil, true); got != timestamp.Unknown {
			t.Fatalf("expected unknown for session windows, got %v", got)
		}
	})
}

func TestActivateNextWindow(t *testing.T) {
	h := newHost()
	s := New(h, Options{Level: LevelNormal})
	a := h.add(0xa, 1, "editor")
	b := h.add(0xb, 2, "browser")
	s.SetActiveWindow(a)
	s.SetActiveWindow(b)

	if !s.ActivateNextWindow(b) {
		t.Fatalf("expected a window to be activated")
	}
	if s.Active() != nil {
		t.Fatalf("expected no active window until focus-in")
	}
	if diff := cmp.Diff([]uint32{0xa}, h.focused); diff != "" {
		t.Fatalf("focus mismatch (-want +got):\n%s", diff)
	}
	if s.ActivateNextWindow(b) {
		t.Fatalf("expected no-op for a window that is neither active nor pending")
	}
}

func TestActivateNextWindowPrefersMainWindow(t *testing.T) {
	h := newHost()
	s := New(h, Options{})
	main := h.add(0xa, 1, "editor")
	other := h.add(0xb, 2, "browser")
	dialog := h.add(0xc, 1, "editor")
	dialog.TransientFor = main.ID
	s.SetActiveWindow(main)
	s.SetActiveWindow(other)
	s.SetActiveWindow(dialog)

	s.ActivateNextWindow(dialog)
	if diff := cmp.Diff([]uint32{0xa}, h.focused); diff != "" {
		t.Fatalf("focus mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint32{0xa}, h.raised); diff != "" {
		t.Fatalf("raise mismatch (-want +got):\n%s", diff)
	}
}

func TestActivateNextWindowFallsBackToDesktop(t *testing.T) {
	h := newHost()
	s := New(h, Options{})
	desk := window.New(0xd, window.KindDesktop, geom.Rect{Width: 1000, Height: 1000}, window.OnAllDesktops)
	h.arena.Insert(desk)
	a := h.add(0xa, 1, "editor")
	s.SetActiveWindow(a)

	s.ActivateNextWindow(a)
	if diff := cmp.Diff([]uint32{0xd}, h.focused); diff != "" {
		t.Fatalf("focus mismatch (-want +got):\n%s", diff)
	}
}

func TestActivateWindow(t *testing.T) {
	h := newHost()
	s := New(h, Options{})
	w := h.add(0xa, 1, "editor")
	w.Desktop = 2
	w.Minimized = true

	s.ActivateWindow(w, false)
	if h.desktop != 2 {
		t.Fatalf("expected switch to desktop 2, got %d", h.desktop)
	}
	if w.Minimized {
		t.Fatalf("expected window to be unminimized")
	}
	if w.UserTime != h.now {
		t.Fatalf("expected user time %v, got %v", h.now, w.UserTime)
	}
	if diff := cmp.Diff([]uint32{0xa}, h.focused); diff != "" {
		t.Fatalf("focus mismatch (-want +got):\n%s", diff)
	}
}

func TestTakeActivityRedirectsToModal(t *testing.T) {
	h := newHost()
	s := New(h, Options{})
	main := h.add(0xa, 1, "editor")
	modal := h.add(0xb, 1, "editor")
	modal.TransientFor = main.ID
	modal.Modal = true

	s.TakeActivity(main, FlagFocus)
	if diff := cmp.Diff([]uint32{0xb}, h.focused); diff != "" {
		t.Fatalf("focus mismatch (-want +got):\n%s", diff)
	}
}

func TestTakeActivitySkipsDockWithoutForce(t *testing.T) {
	h := newHost()
	s := New(h, Options{})
	dock := window.New(0xd, window.KindDock, geom.Rect{Width: 10, Height: 10}, 1)
	h.arena.Insert(dock)

	s.TakeActivity(dock, FlagFocus)
	if len(h.focused) != 0 {
		t.Fatalf("expected dock not to take focus, got %v", h.focused)
	}
	s.TakeActivity(dock, FlagFocus|FlagForceFocus)
	if len(h.focused) != 1 {
		t.Fatalf("expected forced focus, got %v", h.focused)
	}
}

func TestDemandAttention(t *testing.T) {
	h := newHost()
	s := New(h, Options{})
	a := h.add(0xa, 1, "editor")
	b := h.add(0xb, 2, "browser")
	c := h.add(0xc, 3, "mail")
	s.SetActiveWindow(a)

	s.DemandAttention(a, true)
	if a.DemandsAttention {
		t.Fatalf("expected the active window not to demand attention")
	}
	s.DemandAttention(b, true)
	s.DemandAttention(c, true)
	if diff := cmp.Diff(xids(c, b), xids(s.AttentionChain()...)); diff != "" {
		t.Fatalf("attention mismatch (-want +got):\n%s", diff)
	}
	s.SetActiveWindow(b)
	if b.DemandsAttention {
		t.Fatalf("expected activation to clear attention")
	}
	if diff := cmp.Diff(xids(c), xids(s.AttentionChain()...)); diff != "" {
		t.Fatalf("attention mismatch (-want +got):\n%s", diff)
	}
}

func TestRaiseWindowRequest(t *testing.T) {
	h := newHost()
	s := New(h, Options{Level: LevelNormal})
	a := h.add(0xa, 1, "editor")
	b := h.add(0xb, 2, "browser")
	a.UserTime = 1000
	s.SetActiveWindow(a)

	s.RaiseWindowRequest(b, 900, false)
	if diff := cmp.Diff([]uint32{0xb}, h.appRaised); diff != "" {
		t.Fatalf("expected raise within application (-want +got):\n%s", diff)
	}
	if !b.DemandsAttention {
		t.Fatalf("expected refused raise to demand attention")
	}
	s.RaiseWindowRequest(b, 900, true)
	if diff := cmp.Diff([]uint32{0xb}, h.raised); diff != "" {
		t.Fatalf("expected tool request to raise (-want +got):\n%s", diff)
	}
}

func TestStartupIDChanged(t *testing.T) {
	h := newHost()
	s := New(h, Options{Level: LevelNormal})
	a := h.add(0xa, 1, "editor")
	b := h.add(0xb, 2, "browser")
	a.UserTime = 1000
	s.SetActiveWindow(a)

	s.StartupIDChanged(b, &StartupInfo{ID: "b-1", Timestamp: 2000, DataTimestamp: timestamp.Unknown, Desktop: 2, Screen: -1})
	if b.Desktop != 2 {
		t.Fatalf("expected window on desktop 2, got %d", b.Desktop)
	}
	if !b.DemandsAttention {
		t.Fatalf("expected attention instead of activation on another desktop")
	}

	s.StartupIDChanged(b, &StartupInfo{ID: "b-2", Timestamp: 3000, DataTimestamp: timestamp.Unknown, Screen: 1})
	if b.Desktop != 1 || b.Screen != 1 {
		t.Fatalf("expected desktop 1 screen 1, got %d/%d", b.Desktop, b.Screen)
	}
	if diff := cmp.Diff([]uint32{0xb}, h.focused); diff != "" {
		t.Fatalf("focus mismatch (-want +got):\n%s", diff)
	}
}

func TestFocusChainAllDesktops(t *testing.T) {
	h := newHost()
	s := New(h, Options{})
	a := h.add(0xa, 1, "editor")
	sticky := h.add(0xb, 2, "browser")
	sticky.Desktop = window.OnAllDesktops
	s.UpdateFocusChain(a, true)
	s.UpdateFocusChain(sticky, true)

	if diff := cmp.Diff(xids(a, sticky), xids(s.FocusChain(1)...)); diff != "" {
		t.Fatalf("desktop 1 chain mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(xids(sticky), xids(s.FocusChain(2)...)); diff != "" {
		t.Fatalf("desktop 2 chain mismatch (-want +got):\n%s", diff)
	}
	s.Remove(sticky)
	if len(s.FocusChain(2)) != 0 {
		t.Fatalf("expected removal from every chain")
	}
}

func TestParseFocusPolicy(t *testing.T) {
	for _, p := range []FocusPolicy{ClickToFocus, FocusFollowsMouse, FocusUnderMouse, FocusStrictlyUnderMouse} {
		got, err := ParseFocusPolicy(p.String())
		if err != nil || got != p {
			t.Fatalf("expected %v, got %v (%v)", p, got, err)
		}
	}
	if _, err := ParseFocusPolicy("sloppy"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
