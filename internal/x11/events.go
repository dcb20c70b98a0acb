package x11

import (
	"sync/atomic"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/KDE/kwin-sub007/internal/geom"
)

// ConfigureRequest is a client's geometry request. Mask uses the
// xproto.ConfigWindow* bits; fields outside the mask are unset.
type ConfigureRequest struct {
	Window  xproto.Window
	Rect    geom.Rect
	Mask    uint16
	Sibling xproto.Window
	Stack   byte
}

// Values returns the request in ConfigureWindow value order.
func (r ConfigureRequest) Values() []uint32 {
	var vals []uint32
	if r.Mask&xproto.ConfigWindowX != 0 {
		vals = append(vals, uint32(int32(r.Rect.X)))
	}
	if r.Mask&xproto.ConfigWindowY != 0 {
		vals = append(vals, uint32(int32(r.Rect.Y)))
	}
	if r.Mask&xproto.ConfigWindowWidth != 0 {
		vals = append(vals, uint32(r.Rect.Width))
	}
	if r.Mask&xproto.ConfigWindowHeight != 0 {
		vals = append(vals, uint32(r.Rect.Height))
	}
	if r.Mask&xproto.ConfigWindowBorderWidth != 0 {
		vals = append(vals, 0)
	}
	if r.Mask&xproto.ConfigWindowSibling != 0 {
		vals = append(vals, uint32(r.Sibling))
	}
	if r.Mask&xproto.ConfigWindowStackMode != 0 {
		vals = append(vals, uint32(r.Stack))
	}
	return vals
}

// EventHandler receives the server events a window manager reacts to.
type EventHandler interface {
	MapRequest(win xproto.Window)
	// Unmap reports an unmap of a top-level. Synthetic is set for the
	// ICCCM withdraw notification.
	Unmap(win xproto.Window, synthetic bool)
	Destroy(win xproto.Window)
	ConfigureRequest(req ConfigureRequest)
	PropertyChange(win xproto.Window, atom string)
	ClientMessage(win xproto.Window, msgType string, data []uint32)
	FocusIn(win xproto.Window)
	ScreensChanged()
}

// Subscribe routes every server event through h. Callbacks run on the
// goroutine executing EventLoop.
func (c *Connection) Subscribe(h EventHandler) {
	xevent.HookFun(func(xu *xgbutil.XUtil, ev interface{}) bool {
		c.dispatch(h, ev)
		return true
	}).Connect(c.XUtil)
}

// LastTime is the most recent server timestamp seen in an event.
func (c *Connection) LastTime() uint32 {
	return atomic.LoadUint32(&c.lastTime)
}

func (c *Connection) noteTime(t xproto.Timestamp) {
	if t != 0 {
		atomic.StoreUint32(&c.lastTime, uint32(t))
	}
}

func (c *Connection) dispatch(h EventHandler, ev interface{}) {
	switch e := ev.(type) {
	case xproto.MapRequestEvent:
		h.MapRequest(e.Window)
	case xproto.UnmapNotifyEvent:
		// Clients may select StructureNotify themselves; only the root
		// copy counts.
		if e.Event == c.Root {
			h.Unmap(e.Window, false)
		}
	case xproto.DestroyNotifyEvent:
		if e.Event == c.Root {
			h.Destroy(e.Window)
		}
	case xproto.ConfigureRequestEvent:
		h.ConfigureRequest(ConfigureRequest{
			Window:  e.Window,
			Rect:    geom.Rect{X: int(e.X), Y: int(e.Y), Width: int(e.Width), Height: int(e.Height)},
			Mask:    e.ValueMask,
			Sibling: e.Sibling,
			Stack:   e.StackMode,
		})
	case xproto.PropertyNotifyEvent:
		c.noteTime(e.Time)
		name, err := xprop.AtomName(c.XUtil, e.Atom)
		if err == nil {
			h.PropertyChange(e.Window, name)
		}
	case xproto.ClientMessageEvent:
		name, err := xprop.AtomName(c.XUtil, e.Type)
		if err != nil {
			return
		}
		if e.Format != 32 {
			return
		}
		h.ClientMessage(e.Window, name, e.Data.Data32)
	case xproto.FocusInEvent:
		if e.Mode == xproto.NotifyModeNormal || e.Mode == xproto.NotifyModeWhileGrabbed {
			h.FocusIn(e.Event)
		}
	case xproto.KeyPressEvent:
		c.noteTime(e.Time)
	case xproto.ButtonPressEvent:
		c.noteTime(e.Time)
	case xproto.EnterNotifyEvent:
		c.noteTime(e.Time)
	case randr.ScreenChangeNotifyEvent:
		c.noteTime(e.Timestamp)
		h.ScreensChanged()
	}
}
