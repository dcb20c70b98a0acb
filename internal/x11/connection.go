// Package x11 talks to the X server on behalf of the window manager: it
// claims substructure redirection on the root window, reads client
// properties, applies geometry and stacking, and publishes EWMH state.
package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	randrOnce sync.Once
	randrErr  error
	lastTime  uint32
}

// NewConnection connects to display, or to $DISPLAY when display is empty,
// and initializes the keybind module.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// BecomeWM selects substructure redirection on the root window. Only one
// client can hold it, so this fails while another window manager runs.
func (c *Connection) BecomeWM() error {
	mask := uint32(xproto.EventMaskSubstructureRedirect |
		xproto.EventMaskSubstructureNotify |
		xproto.EventMaskPropertyChange |
		xproto.EventMaskFocusChange)
	err := xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), c.Root, xproto.CwEventMask, []uint32{mask}).Check()
	if err != nil {
		return fmt.Errorf("another window manager is already running: %w", err)
	}
	return nil
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit makes EventLoop return after the current event.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// atom interns name through the xprop atom cache.
func (c *Connection) atom(name string) (xproto.Atom, error) {
	a, err := xprop.Atm(c.XUtil, name)
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	return a, nil
}
