package workspace

import (
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
)

// WindowInfo is a read-only snapshot of one managed window.
type WindowInfo struct {
	ID               uint32    `json:"id"`
	Title            string    `json:"title"`
	Class            string    `json:"class"`
	Kind             string    `json:"kind"`
	Frame            geom.Rect `json:"frame"`
	Desktop          int       `json:"desktop"`
	Screen           int       `json:"screen"`
	Maximize         string    `json:"maximize"`
	QuickTile        string    `json:"quick_tile"`
	Fullscreen       bool      `json:"fullscreen"`
	Minimized        bool      `json:"minimized"`
	Shaded           bool      `json:"shaded"`
	Active           bool      `json:"active"`
	DemandsAttention bool      `json:"demands_attention"`
	TabGroup         int       `json:"tab_group,omitempty"`
	TabCurrent       bool      `json:"tab_current,omitempty"`
}

// Status summarises the workspace.
type Status struct {
	Windows        int         `json:"windows"`
	CurrentDesktop int         `json:"current_desktop"`
	Desktops       int         `json:"desktops"`
	Screens        []geom.Rect `json:"screens"`
	Active         uint32      `json:"active,omitempty"`
	TabGroups      int         `json:"tab_groups"`
	PendingRecords int         `json:"pending_records"`
}

// Info returns the snapshot of w.
func (s *State) Info(w *window.Window) WindowInfo {
	info := WindowInfo{
		ID:               w.XID,
		Title:            w.Title,
		Class:            w.ResourceClass,
		Kind:             w.Kind.String(),
		Frame:            w.Frame,
		Desktop:          w.Desktop,
		Screen:           w.Screen,
		Maximize:         w.Maximize.String(),
		QuickTile:        w.QuickTile.String(),
		Fullscreen:       w.Fullscreen,
		Minimized:        w.Minimized,
		Shaded:           w.IsShade(),
		Active:           s.act.Active() == w,
		DemandsAttention: w.DemandsAttention,
	}
	if g := s.tabs.GroupOf(w); g != nil {
		info.TabGroup = int(g.ID)
		info.TabCurrent = g.Current() == w.ID
	}
	return info
}

// ListWindows returns a snapshot of every managed window, bottom first.
func (s *State) ListWindows() []WindowInfo {
	all := s.arena.All()
	out := make([]WindowInfo, 0, len(all))
	for _, w := range all {
		if w.Managed {
			out = append(out, s.Info(w))
		}
	}
	return out
}

// Status returns a summary of the workspace.
func (s *State) Status() Status {
	st := Status{
		Windows:        s.arena.Len(),
		CurrentDesktop: s.tracker.CurrentDesktop(),
		Desktops:       s.tracker.DesktopCount(),
		Screens:        s.tracker.Screens(),
		TabGroups:      len(s.tabs.Groups()),
		PendingRecords: s.PendingRecords(),
	}
	if a := s.act.Active(); a != nil {
		st.Active = a.XID
	}
	return st
}

// Area returns the client area opt of screen on desktop; desktop 0 means
// the current one.
func (s *State) Area(opt workarea.AreaOption, screen, desktop int) geom.Rect {
	if desktop == 0 {
		desktop = s.tracker.CurrentDesktop()
	}
	return s.tracker.ClientArea(opt, screen, desktop)
}
