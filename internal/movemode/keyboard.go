package movemode

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
)

// DefaultTimeout cancels an abandoned keyboard operation.
const DefaultTimeout = 10 * time.Second

const (
	keysymUp      = 0xff52
	keysymDown    = 0xff54
	keysymLeft    = 0xff51
	keysymRight   = 0xff53
	keysymReturn  = 0xff0d
	keysymEscape  = 0xff1b
	keysymKPEnter = 0xff8d
	keysymSpace   = 0x0020
)

// Keyboard drives a Controller from the arrow keys while the keyboard is
// grabbed. Each arrow press moves a virtual pointer by one step.
type Keyboard struct {
	mu         sync.Mutex
	xu         *xgbutil.XUtil
	root       xproto.Window
	controller *Controller
	dispatch   func(func())

	pointer         geom.Point
	active          bool
	timeout         *time.Timer
	timeoutDuration time.Duration

	grabWindow         xproto.Window
	keyHandlerAttached bool
}

// NewKeyboard creates a keyboard driver. dispatch runs key handling on the
// goroutine that owns the window manager state; nil runs it inline.
func NewKeyboard(xu *xgbutil.XUtil, root xproto.Window, c *Controller, dispatch func(func())) *Keyboard {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Keyboard{
		xu:              xu,
		root:            root,
		controller:      c,
		dispatch:        dispatch,
		timeoutDuration: DefaultTimeout,
	}
}

// SetTimeout changes the idle timeout; zero or less restores the default.
func (k *Keyboard) SetTimeout(d time.Duration) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if d <= 0 {
		d = DefaultTimeout
	}
	k.timeoutDuration = d
}

// Begin starts a keyboard move or resize of w. Resizes drag the bottom
// right corner.
func (k *Keyboard) Begin(w *window.Window, op Operation) error {
	if k.xu == nil {
		return fmt.Errorf("keyboard move/resize needs an X connection")
	}
	pointer := w.Frame.Center()
	gravity := window.GravityNone
	if op == OpResize {
		pointer = geom.Point{X: w.Frame.Right() - 1, Y: w.Frame.Bottom() - 1}
		gravity = window.GravityBottomRight
	}
	if err := k.controller.Start(w, op, gravity, pointer); err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.grabKeyboard(); err != nil {
		log.Printf("Move mode: failed to grab keyboard: %v", err)
		k.controller.Cancel()
		return err
	}
	k.pointer = pointer
	k.active = true
	k.startTimeout()
	return nil
}

// end releases the grab once the controller is done.
func (k *Keyboard) end() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.active {
		return
	}
	if k.timeout != nil {
		k.timeout.Stop()
		k.timeout = nil
	}
	k.ungrabKeyboard()
	k.active = false
}

// startTimeout starts or resets the idle timeout
func (k *Keyboard) startTimeout() {
	if k.timeout != nil {
		k.timeout.Stop()
	}
	k.timeout = time.AfterFunc(k.timeoutDuration, func() {
		k.controller.RequestCancel()
		k.dispatch(func() {
			log.Println("Move mode: timeout - restoring")
			k.controller.Cancel()
			k.end()
		})
	})
}

// grabKeyboard grabs the keyboard and sets up key event handling
func (k *Keyboard) grabKeyboard() error {
	xu := k.xu
	if err := k.ensureGrabWindow(); err != nil {
		return err
	}

	grab := func() (*xproto.GrabKeyboardReply, error) {
		return xproto.GrabKeyboard(
			xu.Conn(),
			false,
			k.root,
			xproto.TimeCurrentTime,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		).Reply()
	}

	reply, err := grab()
	if err != nil {
		return err
	}

	// Entered from a global shortcut, the keyboard may already be grabbed by
	// this client.
	if reply.Status == xproto.GrabStatusAlreadyGrabbed {
		xproto.UngrabKeyboard(xu.Conn(), xproto.TimeCurrentTime)
		reply, err = grab()
		if err != nil {
			return err
		}
	}

	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("keyboard grab failed with status %d", reply.Status)
	}

	xevent.RedirectKeyEvents(xu, k.grabWindow)
	if !k.keyHandlerAttached {
		xevent.KeyPressFun(k.handleKeyPress).Connect(xu, k.grabWindow)
		k.keyHandlerAttached = true
	}

	log.Println("Move mode: keyboard grabbed")
	return nil
}

// ungrabKeyboard releases the keyboard grab
func (k *Keyboard) ungrabKeyboard() {
	xu := k.xu

	xproto.UngrabKeyboard(xu.Conn(), xproto.TimeCurrentTime)
	xevent.RedirectKeyEvents(xu, 0)

	if k.keyHandlerAttached && k.grabWindow != 0 {
		xevent.Detach(xu, k.grabWindow)
		k.keyHandlerAttached = false
	}

	log.Println("Move mode: keyboard released")
}

func (k *Keyboard) ensureGrabWindow() error {
	if k.grabWindow != 0 {
		return nil
	}

	conn := k.xu.Conn()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}

	// InputOnly target for key callbacks while the keyboard is grabbed.
	err = xproto.CreateWindowChecked(
		conn,
		0,
		wid,
		k.root,
		0, 0,
		1, 1,
		0,
		xproto.WindowClassInputOnly,
		xproto.Visualid(0),
		xproto.CwEventMask,
		[]uint32{uint32(xproto.EventMaskKeyPress)},
	).Check()
	if err != nil {
		return err
	}

	xproto.MapWindow(conn, wid)

	k.grabWindow = wid
	return nil
}

// handleKeyPress processes key events while keyboard is grabbed
func (k *Keyboard) handleKeyPress(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
	keysym := keybind.KeysymGet(xu, ev.Detail, 0)
	fine := ev.State&xproto.ModMaskControl != 0

	k.dispatch(func() {
		switch keysym {
		case keysymUp:
			k.step(DirUp, fine)
		case keysymDown:
			k.step(DirDown, fine)
		case keysymLeft:
			k.step(DirLeft, fine)
		case keysymRight:
			k.step(DirRight, fine)
		case keysymReturn, keysymKPEnter, keysymSpace:
			if _, err := k.controller.Finish(); err != nil {
				log.Printf("Move mode: %v", err)
			}
			k.end()
		case keysymEscape:
			log.Println("Move mode: cancelled")
			k.controller.Cancel()
			k.end()
		}
	})
}

func (k *Keyboard) step(dir Direction, fine bool) {
	k.mu.Lock()
	if !k.active {
		k.mu.Unlock()
		return
	}
	k.startTimeout()
	k.pointer = k.pointer.Add(Step(dir, fine))
	p := k.pointer
	k.mu.Unlock()

	k.controller.Update(p)
}
