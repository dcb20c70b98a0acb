// Package platform is the boundary between the window management core and
// the windowing system it drives.
package platform

import (
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/timestamp"
	"github.com/KDE/kwin-sub007/internal/window"
)

// WindowID is the protocol handle of a window.
type WindowID uint32

// Client is a top-level window as read from the server when it gets
// managed.
type Client struct {
	ID            WindowID
	Kind          window.Kind
	Title         string
	ResourceName  string
	ResourceClass string
	Role          string
	Machine       string
	PID           int
	// Leader is WM_CLIENT_LEADER, GroupLeader the WM_HINTS window group.
	Leader         WindowID
	GroupLeader    WindowID
	TransientFor   WindowID
	GroupTransient bool
	Modal          bool

	Frame   geom.Rect
	Borders geom.Margins
	Hints   window.SizeHints
	Strut   window.Strut

	// UserTime is _NET_WM_USER_TIME, timestamp.Unknown when unset.
	UserTime    timestamp.Time
	StartupID   string
	// StartupTime is the time embedded in StartupID, timestamp.Zero when
	// it carries none.
	StartupTime timestamp.Time
	SessionID   string

	// Desktop is the requested desktop, 0 when the client did not ask.
	Desktop          int
	Maximize         window.MaximizeMode
	Fullscreen       bool
	Minimized        bool
	Shaded           bool
	KeepAbove        bool
	KeepBelow        bool
	SkipTaskbar      bool
	SkipPager        bool
	DemandsAttention bool
	WantsInput       bool
	// Mapped is set for windows that were already visible when the window
	// manager started.
	Mapped bool
}

// WindowState is the per-window state published back to clients and
// pagers.
type WindowState struct {
	Desktop          int
	Maximize         window.MaximizeMode
	Fullscreen       bool
	Hidden           bool
	Shaded           bool
	KeepAbove        bool
	KeepBelow        bool
	SkipTaskbar      bool
	SkipPager        bool
	DemandsAttention bool
}

// StateOf returns the published state of w.
func StateOf(w *window.Window) WindowState {
	return WindowState{
		Desktop:          w.Desktop,
		Maximize:         w.Maximize,
		Fullscreen:       w.Fullscreen,
		Hidden:           !w.IsShown(),
		Shaded:           w.IsShade(),
		KeepAbove:        w.KeepAbove,
		KeepBelow:        w.KeepBelow,
		SkipTaskbar:      w.SkipTaskbar,
		SkipPager:        w.SkipPager,
		DemandsAttention: w.DemandsAttention,
	}
}

// Backend abstracts the window-system operations the core issues.
type Backend interface {
	Screens() ([]geom.Rect, error)
	Clients() ([]Client, error)
	// ServerTime is the timestamp of the most recent server event.
	ServerTime() timestamp.Time
	Pointer() (geom.Point, error)

	Configure(id WindowID, frame geom.Rect) error
	SetMapped(id WindowID, mapped bool) error
	Focus(id WindowID, t timestamp.Time) error
	FocusRoot() error
	// Restack applies a stacking order, bottom first.
	Restack(ids []WindowID) error
	Close(id WindowID) error

	PublishState(id WindowID, st WindowState) error
	PublishActive(id WindowID) error
	PublishDesktops(current, count int, workAreas []geom.Rect) error
}
