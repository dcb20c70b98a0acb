package tiling

import (
	"fmt"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
)

// Monitors is a _NET_WM_FULLSCREEN_MONITORS topology: the screens whose
// edges bound a fullscreen window.
type Monitors struct {
	Top, Bottom, Left, Right int
}

// UserCanSetFullscreen reports whether the user may toggle fullscreen on w.
func UserCanSetFullscreen(w *window.Window) bool {
	return w.Kind == window.KindNormal || w.Kind == window.KindDialog
}

// SetFullscreen enters or leaves fullscreen. user marks requests coming from
// the user rather than the client.
func (m *Machine) SetFullscreen(w *window.Window, set, user bool) {
	set = m.host.RuleFullscreen(w, set)
	if w.Fullscreen == set {
		return
	}
	if user && !UserCanSetFullscreen(w) {
		return
	}
	w.Shade = window.ShadeNone
	if !w.Fullscreen {
		w.FullscreenRestore = w.Frame
	}
	w.Fullscreen = set
	if set {
		m.host.Raise(w)
	}

	batch := w.BlockGeometryUpdates()
	defer batch.Release()
	if set {
		if mon, ok := m.monitors[w.ID]; ok {
			w.SetFrameGeometry(m.monitorsArea(mon), false)
		} else {
			w.SetFrameGeometry(m.host.ClientArea(workarea.FullScreenArea, w), false)
		}
	} else {
		r := w.FullscreenRestore
		w.SetFrameGeometry(r.Resized(m.host.ConstrainFrameSize(w, r.Size(), window.SizeModeAny)), false)
	}
	m.host.Changed(w, PropFullscreen)
}

// SetFullscreenMonitors records the screens a fullscreen w should span and
// applies them right away when w is fullscreen.
func (m *Machine) SetFullscreenMonitors(w *window.Window, mon Monitors) error {
	n := len(m.host.Screens())
	for _, i := range []int{mon.Top, mon.Bottom, mon.Left, mon.Right} {
		if i < 0 || i >= n {
			return fmt.Errorf("fullscreen monitors: screen %d out of range, have %d", i, n)
		}
	}
	m.monitors[w.ID] = mon
	if w.Fullscreen {
		w.SetFrameGeometry(m.monitorsArea(mon), false)
	}
	return nil
}

func (m *Machine) monitorsArea(mon Monitors) geom.Rect {
	s := m.host.Screens()
	return s[mon.Top].United(s[mon.Bottom]).United(s[mon.Left]).United(s[mon.Right])
}
