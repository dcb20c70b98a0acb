package workspace

import (
	"log"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/platform"
	"github.com/KDE/kwin-sub007/internal/window"
)

// HandleEvent applies one event from the windowing system.
func (s *State) HandleEvent(ev platform.Event) {
	if ev.Kind == platform.EventMapRequest {
		s.mapRequest(ev.Client)
		return
	}
	switch ev.Kind {
	case platform.EventScreensChanged:
		s.SetScreens(ev.Screens)
		return
	case platform.EventCurrentDesktopRequest:
		s.SetCurrentDesktop(ev.Desktop)
		return
	}

	if ev.Kind == platform.EventDestroy {
		delete(s.created, ev.Window)
	}

	w := s.Window(ev.Window)
	if w == nil || !w.Managed {
		if ev.Kind == platform.EventConfigureRequest {
			// Unmanaged windows get what they ask for.
			if err := s.backend.Configure(ev.Window, ev.Frame); err != nil {
				log.Printf("workspace: configure %#x: %v", uint32(ev.Window), err)
			}
		}
		return
	}

	switch ev.Kind {
	case platform.EventUnmap:
		s.Unmanage(w, ev.Withdrawn)
	case platform.EventDestroy:
		s.Unmanage(w, false)
	case platform.EventConfigureRequest:
		s.configureRequest(w, ev.Frame)
	case platform.EventActivateRequest:
		s.RequestActivation(w, ev.Time, ev.FromTool)
	case platform.EventFocusIn:
		s.FocusIn(w)
	case platform.EventUserTime:
		s.UserTimeChanged(w, ev.Time)
	case platform.EventTitle:
		s.TitleChanged(w, ev.Title)
	case platform.EventStrut:
		s.SetStrut(w, ev.Strut)
	case platform.EventSizeHints:
		s.SetSizeHints(w, ev.Hints)
	case platform.EventStateRequest:
		s.stateRequest(w, ev.Action, ev.States)
	case platform.EventDesktopRequest:
		s.SetDesktop(w, ev.Desktop)
	case platform.EventCloseRequest:
		s.Close(w)
	case platform.EventStartupID:
		s.StartupIDChanged(w, ev.StartupID, ev.Time)
	}
}

func (s *State) mapRequest(c platform.Client) {
	if w := s.Window(c.ID); w != nil {
		if w.Minimized {
			s.SetMinimized(w, false)
		}
		return
	}
	s.Manage(c, ManageOptions{
		Startup:           startupInfo(c.StartupID, c.StartupTime),
		PositionRequested: c.Hints.HasPosition,
	})
}

// configureRequest honours a client's geometry request unless the window
// is in a state that dictates its geometry.
func (s *State) configureRequest(w *window.Window, frame geom.Rect) {
	if w.Fullscreen || w.Maximize == window.MaximizeFull || w.QuickTile != window.QuickTileNone || !w.IsMovable() {
		// Confirm the current geometry so the client stops waiting.
		s.MoveResize(w, w.Frame)
		return
	}
	if frame.IsEmpty() {
		frame = frame.Resized(w.Frame.Size())
	}
	size := s.ConstrainFrameSize(w, frame.Size(), window.SizeModeAny)
	s.MoveResize(w, geom.NewRect(frame.Pos(), size))
	s.CheckWorkspacePosition(w)
}

// stateRequest applies a _NET_WM_STATE change request.
func (s *State) stateRequest(w *window.Window, action platform.StateAction, states platform.StateFlag) {
	if states&(platform.StateMaximizedVert|platform.StateMaximizedHorz) != 0 {
		mode := w.Maximize
		if states&platform.StateMaximizedVert != 0 {
			mode = setMaximizeBit(mode, window.MaximizeVertical, action.Apply(mode&window.MaximizeVertical != 0))
		}
		if states&platform.StateMaximizedHorz != 0 {
			mode = setMaximizeBit(mode, window.MaximizeHorizontal, action.Apply(mode&window.MaximizeHorizontal != 0))
		}
		s.SetMaximize(w, mode)
	}
	if states&platform.StateFullscreen != 0 {
		s.SetFullscreen(w, action.Apply(w.Fullscreen))
	}
	if states&platform.StateShaded != 0 {
		mode := window.ShadeNone
		if action.Apply(w.IsShade()) {
			mode = window.ShadeNormal
		}
		s.SetShade(w, mode)
	}
	if states&platform.StateAbove != 0 {
		s.SetKeepAbove(w, action.Apply(w.KeepAbove))
	}
	if states&platform.StateBelow != 0 {
		s.SetKeepBelow(w, action.Apply(w.KeepBelow))
	}
	if states&platform.StateDemandsAttention != 0 {
		s.act.DemandAttention(w, action.Apply(w.DemandsAttention))
		s.publishState(w)
	}
	if states&platform.StateHidden != 0 {
		s.SetMinimized(w, action.Apply(w.Minimized))
	}
	if states&(platform.StateSkipTaskbar|platform.StateSkipPager) != 0 {
		taskbar, pager := w.SkipTaskbar, w.SkipPager
		if states&platform.StateSkipTaskbar != 0 {
			taskbar = action.Apply(taskbar)
		}
		if states&platform.StateSkipPager != 0 {
			pager = action.Apply(pager)
		}
		s.SetSkip(w, taskbar, pager, w.SkipSwitcher)
	}
}

func setMaximizeBit(mode, bit window.MaximizeMode, set bool) window.MaximizeMode {
	if set {
		return mode | bit
	}
	return mode &^ bit
}
