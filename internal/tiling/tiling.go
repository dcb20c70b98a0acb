// Package tiling implements the maximize, quick tile and fullscreen state
// machine of a window.
//
// Maximize and quick tile keep separate restore geometries on the window
// (GeomRestore and QuickTileRestore) so that one transition never clobbers
// the state the other one needs to come back from.
package tiling

import (
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
)

// Property names the window state a transition changed.
type Property int

const (
	PropMaximize Property = iota
	PropQuickTile
	PropFullscreen
)

// Host provides the workspace services the state machine depends on.
type Host interface {
	ClientArea(opt workarea.AreaOption, w *window.Window) geom.Rect
	ClientAreaAt(opt workarea.AreaOption, p geom.Point, desktop int) geom.Rect
	Screens() []geom.Rect
	Pointer() geom.Point
	ConstrainFrameSize(w *window.Window, s geom.Size, mode window.SizeMode) geom.Size
	// PlaceSmart smart-places w inside area, Place uses its configured policy.
	PlaceSmart(w *window.Window, area geom.Rect)
	Place(w *window.Window, area geom.Rect)
	CheckWorkspacePosition(w *window.Window)
	Raise(w *window.Window)
	// SetNoBorder toggles the decoration and updates the frame.
	SetNoBorder(w *window.Window, noBorder bool)

	RuleMaximize(w *window.Window, mode window.MaximizeMode) window.MaximizeMode
	RulePosition(w *window.Window, p geom.Point) geom.Point
	RuleNoBorder(w *window.Window, noBorder bool) bool
	RuleFullscreen(w *window.Window, fullscreen bool) bool
	RuleStrictGeometry(w *window.Window) bool

	// Changed runs after a transition completed, e.g. to sync tab groups
	// and remember rule values.
	Changed(w *window.Window, p Property)
}

// Options configure the state machine.
type Options struct {
	// BorderlessMaximized drops the decoration of fully maximized windows.
	BorderlessMaximized bool
	// ElectricBorderMaximize marks fully maximized windows touching the top
	// of the area as quick tiled to Maximize, so dragging them away restores.
	ElectricBorderMaximize bool
}

// Machine runs maximize, quick tile and fullscreen transitions.
type Machine struct {
	host Host
	opts Options

	// recursion guards ChangeMaximize against re-entry through SetNoBorder.
	recursion bool
	monitors  map[window.ID]Monitors
}

// New returns a state machine backed by host.
func New(host Host, opts Options) *Machine {
	return &Machine{host: host, opts: opts, monitors: make(map[window.ID]Monitors)}
}

func (m *Machine) Options() Options     { return m.opts }
func (m *Machine) SetOptions(o Options) { m.opts = o }

// Forget drops per-window state of an unmanaged window.
func (m *Machine) Forget(w *window.Window) { delete(m.monitors, w.ID) }
