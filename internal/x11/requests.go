package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/KDE/kwin-sub007/internal/geom"
)

// Configure moves and resizes win and sends the synthetic ConfigureNotify
// ICCCM requires from a reparenting-free window manager.
func (c *Connection) Configure(win xproto.Window, r geom.Rect) error {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	values := []uint32{
		uint32(int32(r.X)), uint32(int32(r.Y)),
		uint32(max(r.Width, 1)), uint32(max(r.Height, 1)),
	}
	if err := xproto.ConfigureWindowChecked(c.XUtil.Conn(), win, mask, values).Check(); err != nil {
		return fmt.Errorf("configure %#x: %w", uint32(win), err)
	}

	notify := xproto.ConfigureNotifyEvent{
		Event:  win,
		Window: win,
		X:      int16(r.X),
		Y:      int16(r.Y),
		Width:  uint16(max(r.Width, 1)),
		Height: uint16(max(r.Height, 1)),
	}
	return xproto.SendEventChecked(c.XUtil.Conn(), false, win,
		xproto.EventMaskStructureNotify, string(notify.Bytes())).Check()
}

// ConfigureRaw forwards a configure request of a window we do not manage.
func (c *Connection) ConfigureRaw(win xproto.Window, mask uint16, values []uint32) error {
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), win, mask, values).Check()
}

// Map shows win and marks it NormalState.
func (c *Connection) Map(win xproto.Window) error {
	if err := icccm.WmStateSet(c.XUtil, win, &icccm.WmState{State: icccm.StateNormal}); err != nil {
		return err
	}
	return xproto.MapWindowChecked(c.XUtil.Conn(), win).Check()
}

// Unmap hides win and marks it IconicState so it stays managed across a
// window manager restart.
func (c *Connection) Unmap(win xproto.Window) error {
	if err := icccm.WmStateSet(c.XUtil, win, &icccm.WmState{State: icccm.StateIconic}); err != nil {
		return err
	}
	return xproto.UnmapWindowChecked(c.XUtil.Conn(), win).Check()
}

// Withdraw marks win WithdrawnState after the client unmapped it.
func (c *Connection) Withdraw(win xproto.Window) error {
	return icccm.WmStateSet(c.XUtil, win, &icccm.WmState{State: icccm.StateWithdrawn})
}

// Focus gives input focus to win. Clients that take part in WM_TAKE_FOCUS
// get the message as well.
func (c *Connection) Focus(win xproto.Window, t uint32, input bool) error {
	if input {
		err := xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot,
			win, xproto.Timestamp(t)).Check()
		if err != nil {
			return fmt.Errorf("focus %#x: %w", uint32(win), err)
		}
	}
	if c.supportsProtocol(win, "WM_TAKE_FOCUS") {
		return c.sendProtocol(win, "WM_TAKE_FOCUS", t)
	}
	return nil
}

// FocusRoot drops focus back to the root window.
func (c *Connection) FocusRoot() error {
	return xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot,
		c.Root, xproto.TimeCurrentTime).Check()
}

// Restack stacks wins bottom first, then publishes the client lists.
func (c *Connection) Restack(wins []xproto.Window) error {
	for i := 1; i < len(wins); i++ {
		mask := uint16(xproto.ConfigWindowSibling | xproto.ConfigWindowStackMode)
		values := []uint32{uint32(wins[i-1]), xproto.StackModeAbove}
		if err := xproto.ConfigureWindowChecked(c.XUtil.Conn(), wins[i], mask, values).Check(); err != nil {
			return fmt.Errorf("restack %#x: %w", uint32(wins[i]), err)
		}
	}
	if err := ewmh.ClientListStackingSet(c.XUtil, wins); err != nil {
		return err
	}
	return ewmh.ClientListSet(c.XUtil, wins)
}

// CloseWindow asks win to close via WM_DELETE_WINDOW, killing the client
// when it does not speak the protocol.
func (c *Connection) CloseWindow(win xproto.Window) error {
	if c.supportsProtocol(win, "WM_DELETE_WINDOW") {
		return c.sendProtocol(win, "WM_DELETE_WINDOW", xproto.TimeCurrentTime)
	}
	return xproto.KillClientChecked(c.XUtil.Conn(), uint32(win)).Check()
}

func (c *Connection) supportsProtocol(win xproto.Window, name string) bool {
	protocols, err := icccm.WmProtocolsGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, p := range protocols {
		if p == name {
			return true
		}
	}
	return false
}

// sendProtocol sends a WM_PROTOCOLS client message to win.
func (c *Connection) sendProtocol(win xproto.Window, name string, t uint32) error {
	protocols, err := c.atom("WM_PROTOCOLS")
	if err != nil {
		return err
	}
	msg, err := c.atom(name)
	if err != nil {
		return err
	}
	cm, err := xevent.NewClientMessage(32, win, protocols, int(msg), int(t))
	if err != nil {
		return err
	}
	return xproto.SendEventChecked(c.XUtil.Conn(), false, win,
		xproto.EventMaskNoEvent, string(cm.Bytes())).Check()
}

// Watch selects the events the window manager follows on a client.
func (c *Connection) Watch(win xproto.Window) error {
	mask := uint32(xproto.EventMaskPropertyChange | xproto.EventMaskFocusChange)
	return xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), win, xproto.CwEventMask, []uint32{mask}).Check()
}
