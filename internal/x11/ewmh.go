package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/KDE/kwin-sub007/internal/geom"
)

// Supported lists the EWMH hints this window manager implements.
var Supported = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_CLIENT_LIST",
	"_NET_CLIENT_LIST_STACKING",
	"_NET_ACTIVE_WINDOW",
	"_NET_CLOSE_WINDOW",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_CURRENT_DESKTOP",
	"_NET_WORKAREA",
	"_NET_WM_NAME",
	"_NET_WM_DESKTOP",
	"_NET_WM_STATE",
	"_NET_WM_STATE_MAXIMIZED_VERT",
	"_NET_WM_STATE_MAXIMIZED_HORZ",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_WM_STATE_SHADED",
	"_NET_WM_STATE_HIDDEN",
	"_NET_WM_STATE_ABOVE",
	"_NET_WM_STATE_BELOW",
	"_NET_WM_STATE_SKIP_TASKBAR",
	"_NET_WM_STATE_SKIP_PAGER",
	"_NET_WM_STATE_DEMANDS_ATTENTION",
	"_NET_WM_STRUT",
	"_NET_WM_STRUT_PARTIAL",
	"_NET_WM_USER_TIME",
	"_NET_WM_USER_TIME_WINDOW",
	"_NET_WM_WINDOW_TYPE",
}

// Announce creates the _NET_SUPPORTING_WM_CHECK window and publishes the
// supported hint list under name.
func (c *Connection) Announce(name string) error {
	check, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return err
	}
	check.Create(c.Root, -1, -1, 1, 1, 0)

	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, check.Id); err != nil {
		return err
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, check.Id, check.Id); err != nil {
		return err
	}
	if err := ewmh.WmNameSet(c.XUtil, check.Id, name); err != nil {
		return err
	}
	return ewmh.SupportedSet(c.XUtil, Supported)
}

// WindowState is the per-window state mirrored into _NET_WM_STATE and
// _NET_WM_DESKTOP.
type WindowState struct {
	Desktop          int
	MaximizedVert    bool
	MaximizedHorz    bool
	Fullscreen       bool
	Hidden           bool
	Shaded           bool
	Above            bool
	Below            bool
	SkipTaskbar      bool
	SkipPager        bool
	DemandsAttention bool
}

// StateNames returns the _NET_WM_STATE atoms for st.
func (st WindowState) StateNames() []string {
	flags := []struct {
		on   bool
		name string
	}{
		{st.MaximizedVert, "_NET_WM_STATE_MAXIMIZED_VERT"},
		{st.MaximizedHorz, "_NET_WM_STATE_MAXIMIZED_HORZ"},
		{st.Fullscreen, "_NET_WM_STATE_FULLSCREEN"},
		{st.Hidden, "_NET_WM_STATE_HIDDEN"},
		{st.Shaded, "_NET_WM_STATE_SHADED"},
		{st.Above, "_NET_WM_STATE_ABOVE"},
		{st.Below, "_NET_WM_STATE_BELOW"},
		{st.SkipTaskbar, "_NET_WM_STATE_SKIP_TASKBAR"},
		{st.SkipPager, "_NET_WM_STATE_SKIP_PAGER"},
		{st.DemandsAttention, "_NET_WM_STATE_DEMANDS_ATTENTION"},
	}
	names := []string{}
	for _, f := range flags {
		if f.on {
			names = append(names, f.name)
		}
	}
	return names
}

// PublishState writes _NET_WM_STATE and _NET_WM_DESKTOP of win.
func (c *Connection) PublishState(win xproto.Window, st WindowState) error {
	if err := ewmh.WmStateSet(c.XUtil, win, st.StateNames()); err != nil {
		return err
	}
	return ewmh.WmDesktopSet(c.XUtil, win, desktopToWire(st.Desktop))
}

// PublishActive writes _NET_ACTIVE_WINDOW; zero clears it.
func (c *Connection) PublishActive(win xproto.Window) error {
	return ewmh.ActiveWindowSet(c.XUtil, win)
}

// PublishDesktops writes the desktop count, the 1-based current desktop
// and one work area per desktop.
func (c *Connection) PublishDesktops(current, count int, areas []geom.Rect) error {
	if err := ewmh.NumberOfDesktopsSet(c.XUtil, uint(count)); err != nil {
		return err
	}
	if err := ewmh.CurrentDesktopSet(c.XUtil, desktopToWire(current)); err != nil {
		return err
	}
	wa := make([]ewmh.Workarea, 0, len(areas))
	for _, r := range areas {
		wa = append(wa, ewmh.Workarea{X: r.X, Y: r.Y, Width: uint(r.Width), Height: uint(r.Height)})
	}
	return ewmh.WorkareaSet(c.XUtil, wa)
}
