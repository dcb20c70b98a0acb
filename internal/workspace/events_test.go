package workspace

import (
	"testing"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/platform"
	"github.com/KDE/kwin-sub007/internal/timestamp"
	"github.com/KDE/kwin-sub007/internal/window"
)

func TestHandleEvent_MapRequestManagesAndUnminimizes(t *testing.T) {
	s, _ := newState(t, nil)
	c := client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300})

	s.HandleEvent(platform.Event{Kind: platform.EventMapRequest, Window: 1, Client: c})
	w := s.Window(1)
	if w == nil || !w.Managed {
		t.Fatalf("expected window 1 to be managed")
	}

	s.SetMinimized(w, true)
	s.HandleEvent(platform.Event{Kind: platform.EventMapRequest, Window: 1, Client: c})
	if w.Minimized {
		t.Fatalf("expected a repeated map request to unminimize")
	}
	if len(s.ListWindows()) != 1 {
		t.Fatalf("expected one managed window, got %d", len(s.ListWindows()))
	}
}

func TestHandleEvent_StartupID(t *testing.T) {
	s, _ := newState(t, nil)
	konsole := s.Manage(client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300}), ManageOptions{})
	s.UserTimeChanged(konsole, 500)

	c := client(2, "xterm", 20, geom.Rect{Width: 400, Height: 300})
	c.StartupID = "xterm-1_TIME1000"
	c.StartupTime = platform.StartupTime(c.StartupID)
	s.HandleEvent(platform.Event{Kind: platform.EventMapRequest, Window: 2, Client: c})
	xterm := s.Window(2)
	if xterm == nil {
		t.Fatalf("expected window 2 to be managed")
	}
	if xterm.UserTime != 1000 {
		t.Fatalf("expected user time 1000 from the startup id, got %v", xterm.UserTime)
	}
	if s.Active() != xterm {
		t.Fatalf("expected the launched window to be activated")
	}

	s.Activate(konsole)
	s.UserTimeChanged(konsole, 2000)

	tests := []struct {
		name      string
		id        string
		time      timestamp.Time
		active    *window.Window
		attention bool
	}{
		{"older than the active window", "xterm-2_TIME1500", 1500, konsole, true},
		{"same id is ignored", "xterm-2_TIME1500", 3000, konsole, true},
		{"newer than the active window", "xterm-3_TIME3000", 3000, xterm, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.HandleEvent(platform.Event{Kind: platform.EventStartupID, Window: 2, StartupID: tt.id, Time: tt.time})
			if xterm.StartupID != tt.id {
				t.Fatalf("expected startup id %q, got %q", tt.id, xterm.StartupID)
			}
			if s.Active() != tt.active {
				t.Fatalf("expected active %#x, got %#x", tt.active.XID, s.Active().XID)
			}
			if xterm.DemandsAttention != tt.attention {
				t.Fatalf("expected demands attention %t, got %t", tt.attention, xterm.DemandsAttention)
			}
		})
	}
}

func TestHandleEvent_ConfigureRequest(t *testing.T) {
	s, mem := newState(t, nil)
	w := s.Manage(client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300}), ManageOptions{})

	want := geom.Rect{X: 100, Y: 120, Width: 500, Height: 350}
	s.HandleEvent(platform.Event{Kind: platform.EventConfigureRequest, Window: 1, Frame: want})
	if w.Frame != want {
		t.Fatalf("expected %v, got %v", want, w.Frame)
	}

	s.SetMaximize(w, window.MaximizeFull)
	maximized := w.Frame
	s.HandleEvent(platform.Event{Kind: platform.EventConfigureRequest, Window: 1, Frame: want})
	if w.Frame != maximized {
		t.Fatalf("expected a maximized window to keep %v, got %v", maximized, w.Frame)
	}

	popup := geom.Rect{X: 5, Y: 5, Width: 50, Height: 20}
	s.HandleEvent(platform.Event{Kind: platform.EventConfigureRequest, Window: 77, Frame: popup})
	if got, ok := mem.FrameOf(77); !ok || got != popup {
		t.Fatalf("expected unmanaged window to get %v, got %v", popup, got)
	}
}

func TestHandleEvent_StateRequests(t *testing.T) {
	s, _ := newState(t, nil)
	w := s.Manage(client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300}), ManageOptions{})

	tests := []struct {
		name   string
		action platform.StateAction
		states platform.StateFlag
		check  func() bool
	}{
		{"maximize both", platform.StateAdd, platform.StateMaximizedVert | platform.StateMaximizedHorz, func() bool { return w.Maximize == window.MaximizeFull }},
		{"drop horizontal", platform.StateRemove, platform.StateMaximizedHorz, func() bool { return w.Maximize == window.MaximizeVertical }},
		{"restore", platform.StateRemove, platform.StateMaximizedVert, func() bool { return w.Maximize == window.MaximizeRestore }},
		{"toggle above", platform.StateToggle, platform.StateAbove, func() bool { return w.KeepAbove }},
		{"toggle above again", platform.StateToggle, platform.StateAbove, func() bool { return !w.KeepAbove }},
		{"skip taskbar", platform.StateAdd, platform.StateSkipTaskbar, func() bool { return w.SkipTaskbar && !w.SkipPager }},
		{"fullscreen", platform.StateAdd, platform.StateFullscreen, func() bool { return w.Fullscreen }},
		{"leave fullscreen", platform.StateRemove, platform.StateFullscreen, func() bool { return !w.Fullscreen }},
		{"hide", platform.StateAdd, platform.StateHidden, func() bool { return w.Minimized }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.HandleEvent(platform.Event{Kind: platform.EventStateRequest, Window: 1, Action: tt.action, States: tt.states})
			if !tt.check() {
				t.Fatalf("state request %v %b not applied", tt.action, tt.states)
			}
		})
	}
}

func TestHandleEvent_DestroyAndScreens(t *testing.T) {
	s, _ := newState(t, nil)
	s.Manage(client(1, "konsole", 10, geom.Rect{Width: 400, Height: 300}), ManageOptions{})

	s.HandleEvent(platform.Event{Kind: platform.EventDestroy, Window: 1})
	if s.Window(1) != nil {
		t.Fatalf("expected window 1 to be released")
	}
	// Events for unknown windows are ignored.
	s.HandleEvent(platform.Event{Kind: platform.EventFocusIn, Window: 1})

	screens := []geom.Rect{screen, {X: 1000, Width: 1280, Height: 1024}}
	s.HandleEvent(platform.Event{Kind: platform.EventScreensChanged, Screens: screens})
	if got := len(s.Screens()); got != 2 {
		t.Fatalf("expected 2 screens, got %d", got)
	}

	s.HandleEvent(platform.Event{Kind: platform.EventCurrentDesktopRequest, Desktop: 2})
	if s.CurrentDesktop() != 2 {
		t.Fatalf("expected desktop 2, got %d", s.CurrentDesktop())
	}
}

func TestStateAction_Apply(t *testing.T) {
	if platform.StateAdd.Apply(false) != true || platform.StateRemove.Apply(true) != false {
		t.Fatalf("add and remove must force the flag")
	}
	if platform.StateToggle.Apply(true) != false || platform.StateToggle.Apply(false) != true {
		t.Fatalf("toggle must flip the flag")
	}
}
