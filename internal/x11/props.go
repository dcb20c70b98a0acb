package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
)

// AllDesktops is the _NET_WM_DESKTOP value of sticky windows.
const AllDesktops = 0xFFFFFFFF

// Props is everything read from a client window when it gets managed.
type Props struct {
	Kind          window.Kind
	Title         string
	ResourceName  string
	ResourceClass string
	Role          string
	Machine       string
	PID           int
	Leader        xproto.Window
	GroupLeader   xproto.Window
	TransientFor  xproto.Window
	// GroupTransient is set for windows transient for the root window.
	GroupTransient bool

	Frame geom.Rect
	Hints window.SizeHints
	Strut window.Strut

	UserTime    uint32
	HasUserTime bool
	StartupID   string
	SessionID   string

	// Desktop is 1-based, window.OnAllDesktops for sticky windows and 0
	// when the client did not ask for one.
	Desktop int
	States  []string
	Input   bool
	Urgent  bool

	Mapped           bool
	OverrideRedirect bool
	// Iconic is set when WM_STATE says the window was iconified by a
	// window manager.
	Iconic bool
}

// HasState reports whether the _NET_WM_STATE list contains name.
func (p *Props) HasState(name string) bool {
	for _, s := range p.States {
		if s == name {
			return true
		}
	}
	return false
}

// ReadProps reads the properties of win. Only the geometry and attribute
// queries are fatal; every missing property falls back to its default.
func (c *Connection) ReadProps(win xproto.Window) (*Props, error) {
	xu := c.XUtil
	attrs, err := xproto.GetWindowAttributes(xu.Conn(), win).Reply()
	if err != nil {
		return nil, err
	}
	frame, err := c.windowRect(win)
	if err != nil {
		return nil, err
	}

	p := &Props{
		Frame:            frame,
		Mapped:           attrs.MapState == xproto.MapStateViewable,
		OverrideRedirect: attrs.OverrideRedirect,
		Input:            true,
	}

	if transient, err := icccm.WmTransientForGet(xu, win); err == nil {
		if transient == c.Root || transient == 0 {
			p.GroupTransient = transient == c.Root
		} else {
			p.TransientFor = transient
		}
	}
	types, _ := ewmh.WmWindowTypeGet(xu, win)
	p.Kind = window.KindFromTypes(types, p.TransientFor != 0 || p.GroupTransient)

	if name, err := ewmh.WmNameGet(xu, win); err == nil && name != "" {
		p.Title = name
	} else if name, err := icccm.WmNameGet(xu, win); err == nil {
		p.Title = name
	}
	if class, err := icccm.WmClassGet(xu, win); err == nil {
		p.ResourceName = class.Instance
		p.ResourceClass = class.Class
	}
	p.Role, _ = xprop.PropValStr(xprop.GetProperty(xu, win, "WM_WINDOW_ROLE"))
	p.Machine, _ = icccm.WmClientMachineGet(xu, win)
	if pid, err := ewmh.WmPidGet(xu, win); err == nil {
		p.PID = int(pid)
	}
	p.Leader, _ = xprop.PropValWindow(xprop.GetProperty(xu, win, "WM_CLIENT_LEADER"))
	if p.Leader != 0 {
		p.SessionID, _ = xprop.PropValStr(xprop.GetProperty(xu, p.Leader, "SM_CLIENT_ID"))
	}

	if hints, err := icccm.WmHintsGet(xu, win); err == nil {
		if hints.Flags&icccm.HintInput != 0 {
			p.Input = hints.Input != 0
		}
		if hints.Flags&icccm.HintWindowGroup != 0 {
			p.GroupLeader = hints.WindowGroup
		}
		p.Urgent = hints.Flags&icccm.HintUrgency != 0
	}

	if nh, err := icccm.WmNormalHintsGet(xu, win); err == nil {
		p.Hints = window.NormalizeHints(nh)
	} else {
		p.Hints = window.DefaultSizeHints()
	}
	p.Strut = c.readStrut(win)

	p.UserTime, p.HasUserTime = c.readUserTime(win)
	p.StartupID = c.ReadStartupID(win)

	if d, err := ewmh.WmDesktopGet(xu, win); err == nil {
		p.Desktop = desktopFromWire(d)
	}
	p.States, _ = ewmh.WmStateGet(xu, win)

	if st, err := icccm.WmStateGet(xu, win); err == nil {
		p.Iconic = st.State == icccm.StateIconic
	}
	return p, nil
}

// readStrut reads _NET_WM_STRUT_PARTIAL, falling back to _NET_WM_STRUT.
func (c *Connection) readStrut(win xproto.Window) window.Strut {
	if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
		return window.StrutFromPartial(sp)
	}
	// Some docks only set _NET_WM_STRUT (no partial ranges).
	if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
		size, err := c.DisplaySize()
		if err != nil {
			return window.Strut{}
		}
		return window.StrutFromLegacy(s, size)
	}
	return window.Strut{}
}

// ReadStrut returns the current strut of win.
func (c *Connection) ReadStrut(win xproto.Window) window.Strut {
	return c.readStrut(win)
}

// ReadSizeHints returns the normalized WM_NORMAL_HINTS of win.
func (c *Connection) ReadSizeHints(win xproto.Window) window.SizeHints {
	nh, err := icccm.WmNormalHintsGet(c.XUtil, win)
	if err != nil {
		return window.DefaultSizeHints()
	}
	return window.NormalizeHints(nh)
}

// ReadTitle returns the best available title of win.
func (c *Connection) ReadTitle(win xproto.Window) string {
	if name, err := ewmh.WmNameGet(c.XUtil, win); err == nil && name != "" {
		return name
	}
	name, _ := icccm.WmNameGet(c.XUtil, win)
	return name
}

// ReadStartupID returns _NET_STARTUP_ID, empty when unset.
func (c *Connection) ReadStartupID(win xproto.Window) string {
	id, _ := xprop.PropValStr(xprop.GetProperty(c.XUtil, win, "_NET_STARTUP_ID"))
	return id
}

// ReadUserTime returns _NET_WM_USER_TIME, following _NET_WM_USER_TIME_WINDOW.
func (c *Connection) ReadUserTime(win xproto.Window) (uint32, bool) {
	return c.readUserTime(win)
}

func (c *Connection) readUserTime(win xproto.Window) (uint32, bool) {
	src := win
	if tw, err := ewmh.WmUserTimeWindowGet(c.XUtil, win); err == nil && tw != 0 {
		src = tw
	}
	t, err := ewmh.WmUserTimeGet(c.XUtil, src)
	if err != nil {
		return 0, false
	}
	return uint32(t), true
}

// windowRect returns the geometry of win in root coordinates.
func (c *Connection) windowRect(win xproto.Window) (geom.Rect, error) {
	g, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return geom.Rect{}, err
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return geom.Rect{}, err
	}
	return geom.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(g.Width),
		Height: int(g.Height),
	}, nil
}

// TopLevels returns the children of the root window, bottom first.
func (c *Connection) TopLevels() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, err
	}
	return tree.Children, nil
}

func desktopFromWire(d uint) int {
	if d == AllDesktops {
		return window.OnAllDesktops
	}
	return int(d) + 1
}

func desktopToWire(d int) uint {
	if d == window.OnAllDesktops {
		return AllDesktops
	}
	if d < 1 {
		return 0
	}
	return uint(d - 1)
}
