package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KDE/kwin-sub007/internal/config"
	"github.com/KDE/kwin-sub007/internal/daemon"
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/hotkeys"
	"github.com/KDE/kwin-sub007/internal/movemode"
	"github.com/KDE/kwin-sub007/internal/platform"
	"github.com/KDE/kwin-sub007/internal/runtimepath"
	"github.com/KDE/kwin-sub007/internal/workspace"
)

func runDaemon(args []string) int {
	fs := newFlagSet("daemon", "daemon [--config PATH] [--display DISPLAY] [--headless]",
		"Run the window manager in the foreground.")
	cfgPath := fs.String("config", "", "Config file path (default: ~/.config/kwin-sub007/config.yaml)")
	display := fs.String("display", "", "X display (default: display from config, then $DISPLAY)")
	headless := fs.Bool("headless", false, "Run without an X server on a 1920x1080 virtual screen")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return fail(err)
	}
	level := new(slog.LevelVar)
	level.Set(daemon.ParseLevel(cfg.LogLevel))
	logger := daemon.NewLogger(os.Stderr, level)
	// The window management packages log through the standard logger.
	slog.SetDefault(logger)

	if *display == "" {
		*display = cfg.Display
	}
	if *display == "" {
		*display = os.Getenv("DISPLAY")
	}
	socket, err := runtimepath.SocketPathFor(*display)
	if err != nil {
		return fail(err)
	}

	var backend platform.Backend
	var x *platform.LinuxBackend
	if *headless {
		backend = platform.NewMemory(geom.Rect{Width: 1920, Height: 1080})
	} else {
		x, err = platform.NewLinuxBackendFromDisplay(*display)
		if err != nil {
			return fail(err)
		}
		defer x.Disconnect()
		if err := x.Start(runtimepath.Name); err != nil {
			return fail(err)
		}
		backend = x
	}

	d, err := daemon.New(daemon.Options{
		ConfigPath: *cfgPath,
		Config:     cfg,
		Backend:    backend,
		SocketPath: socket,
		Logger:     logger,
		Level:      level,
	})
	if err != nil {
		return fail(err)
	}
	if x != nil {
		cleanup := wireX11(d, x, cfg)
		defer cleanup()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("window manager started", "socket", d.SocketPath(), "display", *display, "headless", *headless)
	if err := d.Run(ctx); err != nil {
		logger.Error("daemon stopped", "error", err)
		return 1
	}
	logger.Info("window manager stopped")
	return 0
}

// wireX11 connects the X event source, interactive move/resize and global
// hotkeys to the daemon. The returned function releases X resources.
func wireX11(d *daemon.Daemon, x *platform.LinuxBackend, cfg *config.Config) func() {
	logger := d.Logger()
	loop := d.Loop()

	x.SetSink(func(ev platform.Event) {
		loop.Post(func(st *workspace.State) { st.HandleEvent(ev) })
	})
	d.Add(x)

	overlay := movemode.NewOverlayManager(x.XUtil(), x.RootWindow())
	controller := movemode.NewController(d.Workspace(), overlay)
	keyboard := movemode.NewKeyboard(x.XUtil(), x.RootWindow(), controller, loop.Dispatch)
	keyboard.SetTimeout(time.Duration(cfg.MoveModeTimeout) * time.Second)

	keys := hotkeys.NewHandler(x, loop, keyboard, logger.With("service", "hotkeys"))
	if err := keys.Bind(cfg.Hotkeys); err != nil {
		logger.Warn("some hotkeys could not be bound", "error", err)
	}
	d.OnReload(func(c *config.Config) {
		keyboard.SetTimeout(time.Duration(c.MoveModeTimeout) * time.Second)
		if err := keys.Bind(c.Hotkeys); err != nil {
			logger.Warn("some hotkeys could not be bound", "error", err)
		}
	})

	return func() {
		controller.RequestCancel()
		keys.Unbind()
		overlay.Cleanup()
	}
}
