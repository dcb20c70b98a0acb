package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/KDE/kwin-sub007/internal/workspace"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks for state drift and corrects it.
type Reconciler struct {
	interval time.Duration
	sync     *StateSynchronizer
	loop     *Loop
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, sync *StateSynchronizer, loop *Loop) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		sync:     sync,
		loop:     loop,
		logger:   logger,
	}
}

// Serve starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return ctx.Err()
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

func (r *Reconciler) String() string { return "reconciler" }

// reconcile performs a single reconciliation pass on the loop.
func (r *Reconciler) reconcile(ctx context.Context) {
	var res SyncResult
	err := r.loop.Do(ctx, func(st *workspace.State) error {
		var err error
		res, err = r.sync.Sync(st)
		return err
	})
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("reconciler: pass failed", "error", err)
		}
		return
	}
	if res.Changed() {
		r.logger.Info("reconciler: corrected drift",
			"managed", res.Managed,
			"released", res.Released,
			"screens_changed", res.ScreensChanged,
			"rules_saved", res.RulesSaved)
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) {
	r.reconcile(ctx)
}
