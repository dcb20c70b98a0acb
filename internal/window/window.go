// Package window holds the managed-window record and the arena that owns
// every window of a workspace.
//
// Windows refer to each other through arena IDs rather than pointers, so
// transient links, application groups and tab groups never form ownership
// cycles.
package window

import (
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/timestamp"
)

// ID indexes a window in its Arena. The zero value refers to no window.
type ID int

const NoID ID = 0

// GroupID identifies an application group (shared client leader).
type GroupID int

const NoGroup GroupID = 0

// TabGroupID identifies a tab group. Only the tabgroup package assigns it.
type TabGroupID int

const NoTabGroup TabGroupID = 0

// Window is the mutable state of one managed window.
type Window struct {
	ID  ID
	XID uint32

	Kind          Kind
	Title         string
	ResourceName  string
	ResourceClass string
	Role          string
	Machine       string
	PID           int
	// Leader is WM_CLIENT_LEADER, GroupLeader the WM_HINTS window group.
	Leader       uint32
	GroupLeader  uint32
	TransientFor ID
	// GroupTransient marks a window transient for its whole group rather
	// than for one main window.
	GroupTransient bool
	Modal          bool
	Group          GroupID
	TabGroup       TabGroupID

	// Frame is the frame geometry including decoration borders.
	Frame        geom.Rect
	Borders      geom.Margins
	FrameMargins geom.Margins
	NoBorder     bool
	Hints        SizeHints
	// StrictGeometry enforces increments and aspect ratios.
	StrictGeometry bool

	Maximize   MaximizeMode
	QuickTile  QuickTileMode
	Shade      ShadeMode
	Fullscreen bool
	Minimized  bool
	// Hidden is set for tab group members that are not the visible tab.
	Hidden bool

	Desktop    int
	Screen     int
	Activities []string

	KeepAbove        bool
	KeepBelow        bool
	SkipTaskbar      bool
	SkipPager        bool
	SkipSwitcher     bool
	DemandsAttention bool
	WantsInput       bool
	Closeable        bool
	Shortcut         string

	Strut        Strut
	UserTime     timestamp.Time
	CreationTime timestamp.Time
	StartupID    string
	// SessionID is the SM_CLIENT_ID of the client leader, if any.
	SessionID string

	// GeomRestore is the geometry to return to when unmaximizing.
	GeomRestore geom.Rect
	// QuickTileRestore is kept apart from GeomRestore so maximize and
	// quick tile transitions cannot clobber each other's restore state.
	QuickTileRestore  geom.Rect
	FullscreenRestore geom.Rect
	// NoBorderRestore remembers the border state before a borderless maximize.
	NoBorderRestore bool

	Managed bool

	batch batchState
}

// New returns a window with neutral hints, on the given desktop.
func New(xid uint32, kind Kind, frame geom.Rect, desktop int) *Window {
	return &Window{
		XID:            xid,
		Kind:           kind,
		Frame:          frame,
		Hints:          DefaultSizeHints(),
		StrictGeometry: true,
		Desktop:        desktop,
		WantsInput:     true,
		Closeable:      true,
		UserTime:       timestamp.Unknown,
		CreationTime:   timestamp.Unknown,
	}
}

// EffectiveBorders returns the decoration borders, zero when undecorated.
func (w *Window) EffectiveBorders() geom.Margins {
	if !w.IsDecorated() {
		return geom.Margins{}
	}
	return w.Borders
}

// IsDecorated reports whether the window carries a server-side decoration.
func (w *Window) IsDecorated() bool {
	return !w.NoBorder && !w.Borders.IsZero()
}

// ClientRect is the frame geometry without decoration.
func (w *Window) ClientRect() geom.Rect {
	return w.Frame.Shrunk(w.EffectiveBorders())
}

// ClientSizeToFrameSize adds the decoration to a client size.
func (w *Window) ClientSizeToFrameSize(s geom.Size) geom.Size {
	b := w.EffectiveBorders()
	return geom.Size{Width: s.Width + b.Horizontal(), Height: s.Height + b.Vertical()}
}

// FrameSizeToClientSize strips the decoration from a frame size.
func (w *Window) FrameSizeToClientSize(s geom.Size) geom.Size {
	b := w.EffectiveBorders()
	return geom.Size{Width: s.Width - b.Horizontal(), Height: s.Height - b.Vertical()}
}

func (w *Window) IsShade() bool         { return w.Shade != ShadeNone }
func (w *Window) IsTransient() bool     { return w.TransientFor != NoID || w.GroupTransient }
func (w *Window) IsSpecial() bool       { return w.Kind.IsSpecial() }
func (w *Window) IsOnAllDesktops() bool { return w.Desktop == OnAllDesktops }
func (w *Window) HasStrut() bool        { return !w.Strut.IsEmpty() }
func (w *Window) IsMaximized() bool     { return w.Maximize != MaximizeRestore }

// IsShown reports whether the window is mapped and visible.
func (w *Window) IsShown() bool { return !w.Minimized && !w.Hidden }

// IsOnDesktop reports whether the window is visible on desktop d.
func (w *Window) IsOnDesktop(d int) bool {
	return w.Desktop == OnAllDesktops || w.Desktop == d
}

// IsMovable reports whether the user may move the window.
func (w *Window) IsMovable() bool {
	if w.Fullscreen {
		return false
	}
	if w.IsSpecial() && w.Kind != KindSplash && w.Kind != KindToolbar {
		return false
	}
	return true
}

// IsMovableAcrossScreens is IsMovable without the fullscreen restriction.
func (w *Window) IsMovableAcrossScreens() bool {
	return !w.IsSpecial() || w.Kind == KindSplash || w.Kind == KindToolbar
}

// IsResizable reports whether min and max size leave room on some axis.
func (w *Window) IsResizable() bool {
	if w.Fullscreen || w.IsSpecial() {
		return false
	}
	return w.Hints.Min.Width < w.Hints.Max.Width || w.Hints.Min.Height < w.Hints.Max.Height
}

// IsMaximizable reports whether maximize transitions are allowed at all.
func (w *Window) IsMaximizable() bool {
	return w.IsResizable() && w.Kind != KindToolbar
}

// IsMinimizable reports whether the window may be minimized.
func (w *Window) IsMinimizable() bool {
	return !w.IsSpecial() || w.IsTransient()
}

// IsPlaceable reports whether placement and workspace repositioning apply.
func (w *Window) IsPlaceable() bool {
	return w.Kind != KindDesktop && w.Kind != KindDock
}

// WantsTabFocus reports whether the window takes part in focus cycling.
func (w *Window) WantsTabFocus() bool {
	return (w.Kind == KindNormal || w.Kind == KindDialog) && w.WantsInput
}
