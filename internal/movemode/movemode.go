package movemode

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/snap"
	"github.com/KDE/kwin-sub007/internal/tiling"
	"github.com/KDE/kwin-sub007/internal/window"
)

// ErrActive is returned when an operation is already in progress.
var ErrActive = errors.New("move/resize already in progress")

// Host is the window manager the operation acts on.
type Host interface {
	Snap() *snap.Engine
	Tiling() *tiling.Machine
	ConstrainFrameSize(w *window.Window, size geom.Size, mode window.SizeMode) geom.Size
	MoveResize(w *window.Window, frame geom.Rect)
	Raise(w *window.Window)
}

// Renderer draws the outline of the pending geometry and a short legend.
type Renderer interface {
	Render(outline geom.Rect, lines []string) error
	HideAll()
}

// Controller runs one interactive move or resize at a time.
type Controller struct {
	mu       sync.Mutex
	host     Host
	overlay  Renderer
	state    *State
	cancel   atomic.Bool
	strength float64
}

// NewController creates a controller. overlay may be nil.
func NewController(host Host, overlay Renderer) *Controller {
	return &Controller{
		host:     host,
		overlay:  overlay,
		state:    NewState(),
		strength: 1,
	}
}

// IsActive returns true if an operation is in progress
func (c *Controller) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase != PhaseInactive
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase
}

// Window returns the window being moved or resized, or nil.
func (c *Controller) Window() *window.Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Window
}

// Start begins moving or resizing w with the pointer at pointer. For a
// resize, gravity names the dragged edges; GravityNone picks them from the
// pointer position.
func (c *Controller) Start(w *window.Window, op Operation, gravity window.Gravity, pointer geom.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseInactive {
		return ErrActive
	}
	switch {
	case w.Fullscreen:
		return fmt.Errorf("window %#x is fullscreen", w.XID)
	case op == OpMove && !w.IsMovable():
		return fmt.Errorf("window %#x is not movable", w.XID)
	case op == OpResize && (!w.IsResizable() || w.IsShade()):
		return fmt.Errorf("window %#x is not resizable", w.XID)
	}

	c.cancel.Store(false)
	c.state.Initial = takeSnapshot(w)
	c.state.Window = w
	c.state.Phase = op.phase()
	c.state.Anchor = pointer
	c.host.Raise(w)

	if op == OpMove {
		c.detach(w, pointer)
		c.state.Offset = pointer.Sub(w.Frame.Pos())
	} else {
		if gravity == window.GravityNone {
			gravity = GravityAt(w.Frame, pointer)
		}
		c.state.Gravity = gravity
		if w.Maximize != window.MaximizeRestore {
			// Resizing keeps the maximized geometry as the starting point.
			w.GeomRestore = w.Frame
			c.host.Tiling().Maximize(w, window.MaximizeRestore)
		}
	}
	c.state.Start = w.Frame

	log.Printf("Move mode: %s %#x from %v", op, w.XID, w.Frame)
	c.render()
	return nil
}

// detach takes a maximized or tiled window out of that state at the start of
// a move, keeping the pointer at the same relative spot of the frame.
func (c *Controller) detach(w *window.Window, pointer geom.Point) {
	before := w.Frame
	switch {
	case w.Maximize != window.MaximizeRestore:
		c.host.Tiling().Maximize(w, window.MaximizeRestore)
	case w.QuickTile != window.QuickTileNone:
		c.host.Tiling().SetQuickTile(w, window.QuickTileNone, false)
	default:
		return
	}
	if w.Frame == before || before.Width == 0 {
		return
	}
	x := pointer.X - (pointer.X-before.X)*w.Frame.Width/before.Width
	y := pointer.Y - min(pointer.Y-before.Y, w.Frame.Height-1)
	c.host.MoveResize(w, w.Frame.MovedTo(geom.Point{X: x, Y: y}))
}

// Update follows the pointer. Moves and resizes are snapped to the screen
// edges and the other windows.
func (c *Controller) Update(pointer geom.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == PhaseInactive {
		return
	}
	if c.cancel.Load() {
		c.cancelLocked()
		return
	}

	w := c.state.Window
	switch c.state.Phase {
	case PhaseMoving:
		pos := c.host.Snap().AdjustPosition(w, pointer.Sub(c.state.Offset), false, c.strength)
		c.host.MoveResize(w, w.Frame.MovedTo(pos))
	case PhaseResizing:
		g := c.state.Gravity
		r := resizeFrame(c.state.Start, g, pointer.Sub(c.state.Anchor))
		r = c.host.Snap().AdjustSize(w, r, g)
		size := c.host.ConstrainFrameSize(w, r.Size(), window.SizeModeAny)
		c.host.MoveResize(w, anchorSize(r, size, g))
	}
	c.render()
}

// Finish commits the operation and returns the final frame. A cancel
// requested meanwhile restores the initial geometry instead.
func (c *Controller) Finish() (geom.Rect, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == PhaseInactive {
		return geom.Rect{}, fmt.Errorf("no move/resize in progress")
	}
	if c.cancel.Load() {
		return c.cancelLocked(), nil
	}
	w := c.state.Window
	log.Printf("Move mode: %#x finished at %v", w.XID, w.Frame)
	c.exitLocked()
	return w.Frame, nil
}

// Cancel ends the operation and restores the window exactly as it was.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseInactive {
		c.cancelLocked()
	}
}

// RequestCancel marks the operation for cancellation. It is safe to call
// from any goroutine; the next Update or Finish performs the restore.
func (c *Controller) RequestCancel() {
	c.cancel.Store(true)
}

func (c *Controller) cancelLocked() geom.Rect {
	w := c.state.Window
	init := c.state.Initial

	if init.QuickTile != window.QuickTileNone && w.QuickTile != init.QuickTile {
		w.QuickTileRestore = init.QuickTileRestore
		c.host.Tiling().SetQuickTile(w, init.QuickTile, true)
	}
	if init.Maximize != window.MaximizeRestore && w.Maximize != init.Maximize {
		c.host.Tiling().Maximize(w, init.Maximize)
	}
	if w.Frame != init.Frame {
		c.host.MoveResize(w, init.Frame)
	}
	w.GeomRestore = init.GeomRestore
	w.QuickTileRestore = init.QuickTileRestore

	log.Printf("Move mode: %#x cancelled, back at %v", w.XID, w.Frame)
	c.exitLocked()
	return w.Frame
}

func (c *Controller) exitLocked() {
	if c.overlay != nil {
		c.overlay.HideAll()
	}
	c.cancel.Store(false)
	c.state.Reset()
}

func (c *Controller) render() {
	if c.overlay == nil || c.state.Window == nil {
		return
	}
	frame := c.state.Window.Frame
	if err := c.overlay.Render(frame, hintLinesForPhase(c.state.Phase, frame)); err != nil {
		log.Printf("Move mode: overlay failed: %v", err)
	}
}
