package movemode

import (
	"fmt"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
)

// Phase represents the current phase of an interactive operation
type Phase int

const (
	// PhaseInactive means no window is being moved or resized
	PhaseInactive Phase = iota
	// PhaseMoving means the window follows the pointer
	PhaseMoving
	// PhaseResizing means the dragged edges follow the pointer
	PhaseResizing
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseInactive:
		return "inactive"
	case PhaseMoving:
		return "moving"
	case PhaseResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Operation selects between moving and resizing.
type Operation int

const (
	OpMove Operation = iota
	OpResize
)

func (o Operation) String() string {
	if o == OpResize {
		return "resize"
	}
	return "move"
}

// ParseOperation accepts "move" and "resize".
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "move":
		return OpMove, nil
	case "resize":
		return OpResize, nil
	}
	return OpMove, fmt.Errorf("unknown operation %q", s)
}

func (o Operation) phase() Phase {
	if o == OpResize {
		return PhaseResizing
	}
	return PhaseMoving
}

// snapshot is the window state restored verbatim by a cancel.
type snapshot struct {
	Frame            geom.Rect
	Maximize         window.MaximizeMode
	GeomRestore      geom.Rect
	QuickTile        window.QuickTileMode
	QuickTileRestore geom.Rect
}

func takeSnapshot(w *window.Window) snapshot {
	return snapshot{
		Frame:            w.Frame,
		Maximize:         w.Maximize,
		GeomRestore:      w.GeomRestore,
		QuickTile:        w.QuickTile,
		QuickTileRestore: w.QuickTileRestore,
	}
}

// State holds the current operation
type State struct {
	Phase   Phase
	Window  *window.Window
	Gravity window.Gravity
	Anchor  geom.Point // pointer position when the operation started
	Offset  geom.Point // pointer relative to the frame origin while moving
	Start   geom.Rect  // frame the pointer deltas are applied to
	Initial snapshot
}

// NewState creates a new inactive state
func NewState() *State {
	return &State{Phase: PhaseInactive}
}

// Reset resets the state to inactive
func (s *State) Reset() {
	*s = State{Phase: PhaseInactive}
}
