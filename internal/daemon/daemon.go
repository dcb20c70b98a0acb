package daemon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-cmp/cmp"
	"github.com/thejerf/suture/v4"

	"github.com/KDE/kwin-sub007/internal/config"
	"github.com/KDE/kwin-sub007/internal/ipc"
	"github.com/KDE/kwin-sub007/internal/platform"
	"github.com/KDE/kwin-sub007/internal/rules"
	"github.com/KDE/kwin-sub007/internal/workspace"
)

// Options configure a daemon.
type Options struct {
	// ConfigPath is watched and reloaded; empty means the default path.
	ConfigPath string
	Config     *config.Config
	Backend    platform.Backend
	// SocketPath overrides the runtime IPC socket path.
	SocketPath string
	Logger     *slog.Logger
	// Level is adjusted when log_level changes on reload.
	Level *slog.LevelVar
}

// Daemon owns the workspace and the services around it.
type Daemon struct {
	cfgPath string
	cfg     *config.Config
	level   *slog.LevelVar
	logger  *slog.Logger

	loop       *Loop
	server     *ipc.Server
	sync       *StateSynchronizer
	reconciler *Reconciler
	watcher    *Watcher

	reloadRequests chan string
	ipcReload      chan struct{}
	extra          []suture.Service
	onReload       []func(*config.Config)
}

// New builds the workspace on opts.Backend and wires the services. Nothing
// runs until Run.
func New(opts Options) (*Daemon, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("daemon needs a backend")
	}
	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		cfgPath = p
	}
	cfg := opts.Config
	if cfg == nil {
		res, err := config.LoadFromPath(cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = res.Config
	}
	level := opts.Level
	if level == nil {
		level = new(slog.LevelVar)
	}
	level.Set(ParseLevel(cfg.LogLevel))
	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(nil, level)
	}

	book, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load window rules: %w", err)
	}
	st, err := workspace.New(opts.Backend, cfg.WorkspaceOptions(), book)
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		cfgPath:        cfgPath,
		cfg:            cfg,
		level:          level,
		logger:         logger,
		reloadRequests: make(chan string, 1),
		ipcReload:      make(chan struct{}, 1),
	}
	d.loop = NewLoop(st, logger.With("service", "loop"))
	d.sync = NewStateSynchronizer(logger.With("service", "sync"))
	d.reconciler = NewReconciler(ReconcilerConfig{
		Interval: cfg.ReconcileEvery(),
		Logger:   logger.With("service", "reconciler"),
	}, d.sync, d.loop)
	d.watcher = NewWatcher(map[string]string{
		cfgPath:       "config file updated",
		cfg.RulesFile: "rules file updated",
	}, d.reloadRequests, logger.With("service", "watcher"))

	d.server, err = ipc.NewServer(opts.SocketPath, cfg, d.loop, d.ipcReload)
	if err != nil {
		return nil, err
	}
	d.server.ConfigPath = cfgPath
	return d, nil
}

// Loop is the loop that owns the workspace.
func (d *Daemon) Loop() *Loop { return d.loop }

// Workspace is the managed state. Use it for wiring before Run; afterwards
// it belongs to the loop goroutine.
func (d *Daemon) Workspace() *workspace.State { return d.loop.st }

// Logger is the daemon logger.
func (d *Daemon) Logger() *slog.Logger { return d.logger }

// Config is the configuration in effect. Call it on the loop goroutine or
// before Run.
func (d *Daemon) Config() *config.Config { return d.cfg }

// SocketPath is where the IPC server listens.
func (d *Daemon) SocketPath() string { return d.server.SocketPath() }

// Add registers another supervised service. Call before Run.
func (d *Daemon) Add(svc suture.Service) { d.extra = append(d.extra, svc) }

// OnReload registers fn to run on the loop goroutine after a new
// configuration took effect.
func (d *Daemon) OnReload(fn func(*config.Config)) { d.onReload = append(d.onReload, fn) }

// Run manages the existing windows and supervises every service until ctx
// ends.
func (d *Daemon) Run(ctx context.Context) error {
	sup := suture.New("kwin", suture.Spec{
		EventHook: supervisorHook(d.logger.With("service", "supervisor")),
	})
	sup.Add(d.loop)
	sup.Add(d.server)
	sup.Add(d.reconciler)
	sup.Add(d.watcher)
	sup.Add(reloadService{d})
	for _, svc := range d.extra {
		sup.Add(svc)
	}

	d.loop.Post(func(st *workspace.State) {
		res, err := d.sync.Sync(st)
		if err != nil {
			d.logger.Error("initial sync failed", "error", err)
			return
		}
		d.logger.Info("managing existing windows", "windows", res.Managed)
	})

	err := sup.Serve(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Reload loads the configuration again and applies it to the workspace.
func (d *Daemon) Reload(ctx context.Context, reason string) error {
	d.logger.Info("reloading config", "reason", reason)
	res, err := config.LoadFromPath(d.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := res.Config

	return d.loop.Do(ctx, func(st *workspace.State) error {
		if diff := cmp.Diff(d.cfg, cfg); diff != "" {
			d.logger.Info("config changed", "diff", diff)
		}
		if cfg.RulesFile != d.cfg.RulesFile {
			book, err := rules.Load(cfg.RulesFile)
			if err != nil {
				return fmt.Errorf("load window rules: %w", err)
			}
			st.SetBook(book)
		} else if book := st.Book(); book != nil {
			if err := book.Reload(); err != nil {
				return fmt.Errorf("reload window rules: %w", err)
			}
		}
		st.SetOptions(cfg.WorkspaceOptions())
		d.level.Set(ParseLevel(cfg.LogLevel))
		d.server.UpdateConfig(cfg)
		d.cfg = cfg
		for _, fn := range d.onReload {
			fn(cfg)
		}
		return nil
	})
}

// reloadService serves the reload requests of the watcher and IPC.
type reloadService struct{ d *Daemon }

func (r reloadService) String() string { return "reloader" }

func (r reloadService) Serve(ctx context.Context) error {
	d := r.d
	for {
		var reason string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case reason = <-d.reloadRequests:
		case <-d.ipcReload:
			reason = "reload requested over IPC"
		}
		if err := d.Reload(ctx, reason); err != nil && ctx.Err() == nil {
			d.logger.Error("reload failed", "error", err)
		}
	}
}
