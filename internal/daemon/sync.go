package daemon

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/KDE/kwin-sub007/internal/platform"
	"github.com/KDE/kwin-sub007/internal/workspace"
)

// SyncResult counts what a synchronization pass changed.
type SyncResult struct {
	Managed        int
	Released       int
	ScreensChanged bool
	RulesSaved     bool
}

func (r SyncResult) Changed() bool {
	return r.Managed > 0 || r.Released > 0 || r.ScreensChanged || r.RulesSaved
}

// StateSynchronizer brings the workspace in line with what the server
// reports: windows that appeared without a map event get managed, windows
// that vanished get released.
type StateSynchronizer struct {
	logger *slog.Logger
}

// NewStateSynchronizer creates a new state synchronizer.
func NewStateSynchronizer(logger *slog.Logger) *StateSynchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateSynchronizer{logger: logger}
}

// Sync runs one pass. It must run on the loop goroutine.
func (s *StateSynchronizer) Sync(st *workspace.State) (SyncResult, error) {
	var res SyncResult
	backend := st.Backend()

	screens, err := backend.Screens()
	if err != nil {
		return res, fmt.Errorf("failed to read screens: %w", err)
	}
	if !slices.Equal(screens, st.Screens()) {
		s.logger.Info("screen layout changed", "screens", len(screens))
		st.SetScreens(screens)
		res.ScreensChanged = true
	}

	clients, err := backend.Clients()
	if err != nil {
		return res, fmt.Errorf("failed to list clients: %w", err)
	}
	present := make(map[platform.WindowID]bool, len(clients))
	for _, c := range clients {
		present[c.ID] = true
		if st.Window(c.ID) != nil {
			continue
		}
		st.Manage(c, workspace.ManageOptions{})
		s.logger.Debug("managed missed window", "window_id", uint32(c.ID), "class", c.ResourceClass)
		res.Managed++
	}

	for _, w := range st.Windows() {
		if !w.Managed || present[platform.WindowID(w.XID)] {
			continue
		}
		s.logger.Info("window vanished, releasing", "window_id", w.XID, "class", w.ResourceClass)
		st.Unmanage(w, false)
		res.Released++
	}

	if book := st.Book(); book != nil {
		book.CleanupTemporary()
		if book.Dirty() {
			if err := book.Save(); err != nil {
				s.logger.Warn("failed to save window rules", "path", book.Path(), "error", err)
			} else {
				res.RulesSaved = true
			}
		}
	}
	return res, nil
}
