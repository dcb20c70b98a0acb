// Package daemon runs the window manager: one loop goroutine owns the
// workspace, and every other service (IPC, hotkeys, the X event pump, the
// config watcher, the reconciler) hands it closures.
package daemon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KDE/kwin-sub007/internal/workspace"
)

type task struct {
	fn   func(*workspace.State) error
	done chan error
}

// Loop serializes access to a workspace.
type Loop struct {
	st     *workspace.State
	tasks  chan task
	logger *slog.Logger
}

// NewLoop creates a loop for st. Nothing runs until Serve is called.
func NewLoop(st *workspace.State, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		st:     st,
		tasks:  make(chan task, 256),
		logger: logger,
	}
}

// Do runs fn on the loop goroutine and waits for it to finish or for ctx to
// end. A command abandoned by its caller still runs.
func (l *Loop) Do(ctx context.Context, fn func(*workspace.State) error) error {
	t := task{fn: fn, done: make(chan error, 1)}
	select {
	case l.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn without waiting for it. It blocks only while the queue is
// full.
func (l *Loop) Post(fn func(*workspace.State)) {
	l.tasks <- task{fn: func(st *workspace.State) error {
		fn(st)
		return nil
	}}
}

// Dispatch adapts Post to callers that know nothing about the workspace.
func (l *Loop) Dispatch(fn func()) {
	l.Post(func(*workspace.State) { fn() })
}

// Serve runs queued tasks until ctx ends.
func (l *Loop) Serve(ctx context.Context) error {
	l.logger.Info("event loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("event loop stopped")
			return ctx.Err()
		case t := <-l.tasks:
			err := l.run(t.fn)
			if t.done != nil {
				t.done <- err
			} else if err != nil {
				l.logger.Warn("task failed", "error", err)
			}
		}
	}
}

func (l *Loop) String() string { return "loop" }

// run executes fn, turning a panic into an error so one bad event does not
// take the window manager down.
func (l *Loop) run(fn func(*workspace.State) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panic recovered", "panic", r)
			err = fmt.Errorf("internal error: %v", r)
		}
	}()
	return fn(l.st)
}
