//go:build linux

package platform

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/timestamp"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/x11"
)

func TestClientFromProps(t *testing.T) {
	p := &x11.Props{
		Kind:          window.KindNormal,
		Title:         "notes.txt - Kate",
		ResourceName:  "kate",
		ResourceClass: "kate",
		PID:           4242,
		Frame:         geom.Rect{X: 10, Y: 20, Width: 640, Height: 480},
		Hints:         window.DefaultSizeHints(),
		UserTime:      900,
		HasUserTime:   true,
		Desktop:       2,
		States:        []string{"_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_ABOVE"},
		StartupID:     "kate-4242-host_TIME880",
		Input:         true,
		Urgent:        true,
	}

	c := ClientFromProps(0x400001, p)
	if c.StartupID != p.StartupID || c.StartupTime != 880 {
		t.Fatalf("expected startup time 880 from %q, got %v", c.StartupID, c.StartupTime)
	}
	if c.Maximize != window.MaximizeVertical {
		t.Fatalf("expected vertical maximize, got %v", c.Maximize)
	}
	if !c.KeepAbove || c.KeepBelow {
		t.Fatalf("expected keep above only, got above=%v below=%v", c.KeepAbove, c.KeepBelow)
	}
	if !c.DemandsAttention {
		t.Fatalf("expected urgency to demand attention")
	}
	if c.UserTime != 900 || c.Desktop != 2 || c.Frame != p.Frame {
		t.Fatalf("unexpected client %+v", c)
	}

	p.HasUserTime = false
	p.Iconic = true
	c = ClientFromProps(0x400001, p)
	if c.UserTime != timestamp.Unknown {
		t.Fatalf("expected unknown user time, got %v", c.UserTime)
	}
	if !c.Minimized {
		t.Fatalf("expected an iconic window to be minimized")
	}
}

func TestTranslateClientMessage(t *testing.T) {
	atoms := map[uint32]string{
		10: "_NET_WM_STATE_MAXIMIZED_VERT",
		11: "_NET_WM_STATE_MAXIMIZED_HORZ",
		12: "_NET_WM_STATE_STICKY",
	}
	atomName := func(a uint32) string { return atoms[a] }

	tests := []struct {
		name    string
		msgType string
		data    []uint32
		want    Event
		ok      bool
	}{
		{
			name:    "pager activation",
			msgType: "_NET_ACTIVE_WINDOW",
			data:    []uint32{2, 1234},
			want:    Event{Kind: EventActivateRequest, Window: 7, Time: 1234, FromTool: true},
			ok:      true,
		},
		{
			name:    "maximize both",
			msgType: "_NET_WM_STATE",
			data:    []uint32{1, 10, 11},
			want:    Event{Kind: EventStateRequest, Window: 7, Action: StateAdd, States: StateMaximizedVert | StateMaximizedHorz},
			ok:      true,
		},
		{
			name:    "unsupported state",
			msgType: "_NET_WM_STATE",
			data:    []uint32{2, 12, 0},
			ok:      false,
		},
		{
			name:    "sticky desktop",
			msgType: "_NET_WM_DESKTOP",
			data:    []uint32{0xFFFFFFFF},
			want:    Event{Kind: EventDesktopRequest, Window: 7, Desktop: window.OnAllDesktops},
			ok:      true,
		},
		{
			name:    "switch desktop",
			msgType: "_NET_CURRENT_DESKTOP",
			data:    []uint32{2},
			want:    Event{Kind: EventCurrentDesktopRequest, Desktop: 3},
			ok:      true,
		},
		{
			name:    "iconify",
			msgType: "WM_CHANGE_STATE",
			data:    []uint32{3},
			want:    Event{Kind: EventStateRequest, Window: 7, Action: StateAdd, States: StateHidden},
			ok:      true,
		},
		{
			name:    "close",
			msgType: "_NET_CLOSE_WINDOW",
			want:    Event{Kind: EventCloseRequest, Window: 7},
			ok:      true,
		},
		{
			name:    "unknown",
			msgType: "_NET_MOVERESIZE_WINDOW",
			data:    []uint32{1, 2, 3},
			ok:      false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TranslateClientMessage(7, tt.msgType, tt.data, atomName)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("event mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeConfigure(t *testing.T) {
	cur := geom.Rect{X: 10, Y: 10, Width: 300, Height: 200}
	req := x11.ConfigureRequest{
		Rect: geom.Rect{Width: 500},
		Mask: 1 << 2, // width only
	}
	want := geom.Rect{X: 10, Y: 10, Width: 500, Height: 200}
	if got := mergeConfigure(cur, req); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
