package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceWindow = 250 * time.Millisecond

// Watcher turns writes to the config and rules files into reload requests.
// Bursts of events within the debounce window produce one request.
type Watcher struct {
	targets  map[string]string
	requests chan<- string
	logger   *slog.Logger
}

// NewWatcher watches files; reasons maps each path to the reload reason
// sent when it changes.
func NewWatcher(files map[string]string, requests chan<- string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	targets := make(map[string]string, len(files))
	for path, reason := range files {
		if path == "" {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		targets[filepath.Clean(path)] = reason
	}
	return &Watcher{targets: targets, requests: requests, logger: logger}
}

func (w *Watcher) String() string { return "config-watcher" }

// Serve watches until ctx ends.
func (w *Watcher) Serve(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer watcher.Close()

	// Editors replace files, so watch the directories.
	dirs := make(map[string]bool)
	for path := range w.targets {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			w.logger.Debug("unable to watch directory", "dir", dir, "error", err)
			continue
		}
		dirs[dir] = true
	}

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		reason  string
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			r, tracked := w.targets[filepath.Clean(event.Name)]
			if !tracked {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			reason = r
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					<-timerCh
				}
				timer.Reset(debounceWindow)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case w.requests <- reason:
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}
