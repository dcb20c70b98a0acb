package hotkeys

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KDE/kwin-sub007/internal/movemode"
	"github.com/KDE/kwin-sub007/internal/placement"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workspace"
)

// ErrNoActiveWindow is returned by window actions when nothing is active.
var ErrNoActiveWindow = errors.New("no active window")

// Mover starts an interactive keyboard move or resize.
type Mover interface {
	Begin(w *window.Window, op movemode.Operation) error
}

// Run performs a hotkey action on the active window of st. mover may be
// nil, in which case move and resize are unavailable.
func Run(st *workspace.State, action string, mover Mover) error {
	switch action {
	case "cascade":
		st.CascadeDesktop()
		return nil
	case "unclutter":
		st.UnclutterDesktop()
		return nil
	case "desktop-next", "desktop-prev":
		st.SetCurrentDesktop(stepDesktop(st.CurrentDesktop(), st.DesktopCount(), action == "desktop-next"))
		return nil
	}

	w := st.Active()
	if w == nil {
		return ErrNoActiveWindow
	}

	if mode, ok := strings.CutPrefix(action, "quick-tile-"); ok {
		tile, err := window.ParseQuickTileMode(mode)
		if err != nil {
			return err
		}
		st.QuickTile(w, tile)
		return nil
	}
	if dir, ok := strings.CutPrefix(action, "pack-"); ok {
		d, err := workspace.ParseDirection(dir)
		if err != nil {
			return err
		}
		st.Pack(w, d)
		return nil
	}

	switch action {
	case "maximize":
		st.ToggleMaximize(w)
	case "maximize-vertical":
		st.SetMaximize(w, w.Maximize^window.MaximizeVertical)
	case "maximize-horizontal":
		st.SetMaximize(w, w.Maximize^window.MaximizeHorizontal)
	case "fullscreen":
		st.SetFullscreen(w, !w.Fullscreen)
	case "minimize":
		st.SetMinimized(w, true)
	case "shade":
		st.ToggleShade(w)
	case "keep-above":
		st.SetKeepAbove(w, !w.KeepAbove)
	case "keep-below":
		st.SetKeepBelow(w, !w.KeepBelow)
	case "close":
		st.Close(w)
	case "grow-horizontal":
		st.Grow(w, workspace.Right)
	case "shrink-horizontal":
		st.Grow(w, workspace.Left)
	case "grow-vertical":
		st.Grow(w, workspace.Down)
	case "shrink-vertical":
		st.Grow(w, workspace.Up)
	case "tab-next":
		return st.TabNext(w, false)
	case "tab-prev":
		return st.TabNext(w, true)
	case "tab-remove":
		return st.TabRemove(w)
	case "place":
		st.PlaceWindow(w, placement.Default)
	case "move", "resize":
		if mover == nil {
			return fmt.Errorf("%s needs an X connection", action)
		}
		op, err := movemode.ParseOperation(action)
		if err != nil {
			return err
		}
		return mover.Begin(w, op)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}

// stepDesktop wraps around at both ends.
func stepDesktop(current, count int, forward bool) int {
	if count <= 1 {
		return 1
	}
	if forward {
		return current%count + 1
	}
	if current <= 1 {
		return count
	}
	return current - 1
}
