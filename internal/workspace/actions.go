package workspace

import (
	"fmt"
	"log"

	"github.com/KDE/kwin-sub007/internal/placement"
	"github.com/KDE/kwin-sub007/internal/platform"
	"github.com/KDE/kwin-sub007/internal/tabgroup"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
)

// Direction names the target of pack, grow and shrink operations.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
	Up    Direction = "up"
	Down  Direction = "down"
)

// ParseDirection accepts the names of the Direction constants.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Left, Right, Up, Down:
		return d, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// Activate is an explicit user request to activate w.
func (s *State) Activate(w *window.Window) {
	s.act.ActivateWindow(w, true)
}

// SetMaximize is a user maximize request.
func (s *State) SetMaximize(w *window.Window, mode window.MaximizeMode) {
	if !w.IsMaximizable() {
		log.Printf("workspace: %#x cannot be maximized", w.XID)
		return
	}
	s.tiling.Maximize(w, mode)
}

// ToggleMaximize maximizes w fully, or restores it when it already is.
func (s *State) ToggleMaximize(w *window.Window) {
	if w.Maximize == window.MaximizeFull {
		s.SetMaximize(w, window.MaximizeRestore)
		return
	}
	s.SetMaximize(w, window.MaximizeFull)
}

// QuickTile is a quick tile shortcut. Two edge shortcuts on different axes
// pressed within the combine timeout tile to the corner between them.
func (s *State) QuickTile(w *window.Window, mode window.QuickTileMode) {
	s.tiling.SetQuickTile(w, s.combiner.Combine(mode), true)
}

// SetFullscreen is a user fullscreen request.
func (s *State) SetFullscreen(w *window.Window, set bool) {
	s.tiling.SetFullscreen(w, set, true)
}

// ToggleShade shades w, or unshades it when it is shaded.
func (s *State) ToggleShade(w *window.Window) {
	if w.IsShade() {
		s.SetShade(w, window.ShadeNone)
		return
	}
	s.SetShade(w, window.ShadeNormal)
}

// PlaceWindow runs placement for w again with the configured policy, or
// with policy when it is not Default.
func (s *State) PlaceWindow(w *window.Window, policy placement.Policy) {
	if !w.IsPlaceable() || !w.IsMovable() {
		return
	}
	area := s.ClientArea(workarea.PlacementArea, w)
	if policy == placement.Default || policy == placement.Unknown {
		s.place.Place(w, area)
	} else {
		s.place.PlaceWith(w, area, policy, placement.Unknown)
	}
	s.propagate(w, tabgroup.StateGeometry)
}

// Pack moves w in direction d until it touches a window or the area edge.
func (s *State) Pack(w *window.Window, d Direction) {
	if !w.IsMovable() {
		return
	}
	switch d {
	case Left:
		s.place.PackLeft(w)
	case Right:
		s.place.PackRight(w)
	case Up:
		s.place.PackUp(w)
	case Down:
		s.place.PackDown(w)
	}
	s.propagate(w, tabgroup.StateGeometry)
}

// Grow extends w towards d up to the next obstacle. Left and Up shrink.
func (s *State) Grow(w *window.Window, d Direction) {
	if !w.IsResizable() || w.IsShade() {
		return
	}
	switch d {
	case Right:
		s.place.GrowHorizontal(w)
	case Down:
		s.place.GrowVertical(w)
	case Left:
		s.place.ShrinkHorizontal(w)
	case Up:
		s.place.ShrinkVertical(w)
	}
	s.propagate(w, tabgroup.StateGeometry)
}

// CascadeDesktop cascades the windows of the current desktop.
func (s *State) CascadeDesktop() { s.place.CascadeDesktop() }

// UnclutterDesktop smart-places the windows of the current desktop.
func (s *State) UnclutterDesktop() { s.place.UnclutterDesktop() }

// TabAdd tabs w to other, making w the visible tab.
func (s *State) TabAdd(w, other *window.Window) error {
	if w.Kind != window.KindNormal || other.Kind != window.KindNormal {
		return fmt.Errorf("only normal windows can be tabbed")
	}
	if !s.tabs.AddNextTo(w, other, true, true) {
		return fmt.Errorf("window %#x cannot join the tab group of %#x", w.XID, other.XID)
	}
	return nil
}

// TabRemove takes w out of its tab group, cascading it off the group.
func (s *State) TabRemove(w *window.Window) error {
	g := s.tabs.GroupOf(w)
	if g == nil {
		return fmt.Errorf("window %#x is not tabbed", w.XID)
	}
	frame := w.Frame.MovedTo(w.Frame.Pos().Add(s.place.CascadeOffset(w)))
	s.tabs.Remove(w, frame, false)
	return nil
}

// TabNext shows the next tab of the group w belongs to, or the previous one
// when back is set.
func (s *State) TabNext(w *window.Window, back bool) error {
	g := s.tabs.GroupOf(w)
	if g == nil {
		return fmt.Errorf("window %#x is not tabbed", w.XID)
	}
	if back {
		s.tabs.ActivatePrev(g)
	} else {
		s.tabs.ActivateNext(g)
	}
	return nil
}

// Close asks w to close.
func (s *State) Close(w *window.Window) {
	if !w.Closeable {
		log.Printf("workspace: %#x is not closeable", w.XID)
		return
	}
	if err := s.backend.Close(platform.WindowID(w.XID)); err != nil {
		log.Printf("workspace: failed to close %#x: %v", w.XID, err)
	}
}
