package daemon

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KDE/kwin-sub007/internal/config"
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/platform"
	"github.com/KDE/kwin-sub007/internal/timestamp"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workspace"
)

func testClient(id platform.WindowID, class string) platform.Client {
	return platform.Client{
		ID:            id,
		Kind:          window.KindNormal,
		ResourceName:  class,
		ResourceClass: class,
		PID:           int(id) + 100,
		Frame:         geom.Rect{X: 20, Y: 20, Width: 300, Height: 200},
		Hints:         window.DefaultSizeHints(),
		UserTime:      timestamp.Unknown,
		WantsInput:    true,
	}
}

func newTestDaemon(t *testing.T, configYAML string) (*Daemon, *platform.Memory, string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	configYAML += "rules_file: " + filepath.Join(dir, "rules.yaml") + "\n"
	if err := os.WriteFile(cfgPath, []byte(configYAML), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	mem := platform.NewMemory(geom.Rect{Width: 1000, Height: 800})
	var logs bytes.Buffer
	d, err := New(Options{
		ConfigPath: cfgPath,
		Backend:    mem,
		SocketPath: filepath.Join(dir, "kwin.sock"),
		Logger:     NewLogger(&logs, nil),
	})
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	return d, mem, cfgPath
}

func runLoop(t *testing.T, l *Loop) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ctx
}

func TestLoop_DoRunsOnLoop(t *testing.T) {
	d, _, _ := newTestDaemon(t, "")
	ctx := runLoop(t, d.Loop())

	var desktops int
	err := d.Loop().Do(ctx, func(st *workspace.State) error {
		desktops = st.DesktopCount()
		return nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if desktops != 4 {
		t.Fatalf("expected 4 desktops, got %d", desktops)
	}

	want := errors.New("boom")
	if err := d.Loop().Do(ctx, func(*workspace.State) error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected task error, got %v", err)
	}
}

func TestLoop_RecoversPanics(t *testing.T) {
	d, _, _ := newTestDaemon(t, "")
	ctx := runLoop(t, d.Loop())

	err := d.Loop().Do(ctx, func(*workspace.State) error { panic("bad event") })
	if err == nil || !strings.Contains(err.Error(), "bad event") {
		t.Fatalf("expected recovered panic, got %v", err)
	}
	if err := d.Loop().Do(ctx, func(*workspace.State) error { return nil }); err != nil {
		t.Fatalf("expected the loop to keep running, got %v", err)
	}
}

func TestLoop_DoHonoursContext(t *testing.T) {
	d, _, _ := newTestDaemon(t, "")
	// The loop is not running, so the task never completes.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := d.Loop().Do(ctx, func(*workspace.State) error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestSync_ManagesMissedAndReleasesVanished(t *testing.T) {
	d, mem, _ := newTestDaemon(t, "")
	ctx := runLoop(t, d.Loop())

	mem.Pending = []platform.Client{testClient(1, "konsole"), testClient(2, "kate")}
	var res SyncResult
	sync := func() {
		t.Helper()
		err := d.Loop().Do(ctx, func(st *workspace.State) error {
			var err error
			res, err = d.sync.Sync(st)
			return err
		})
		if err != nil {
			t.Fatalf("sync: %v", err)
		}
	}

	sync()
	if res.Managed != 2 || res.Released != 0 {
		t.Fatalf("expected 2 managed, got %+v", res)
	}

	mem.Pending = mem.Pending[:1]
	mem.ScreenRects = []geom.Rect{{Width: 1000, Height: 800}, {X: 1000, Width: 800, Height: 600}}
	sync()
	if res.Managed != 0 || res.Released != 1 || !res.ScreensChanged {
		t.Fatalf("expected window 2 released and screens changed, got %+v", res)
	}

	sync()
	if res.Changed() {
		t.Fatalf("expected a quiet pass, got %+v", res)
	}
}

func TestReload_AppliesNewOptions(t *testing.T) {
	d, _, cfgPath := newTestDaemon(t, "desktops: 2\n")
	ctx := runLoop(t, d.Loop())

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	data = bytes.Replace(data, []byte("desktops: 2"), []byte("desktops: 6\nlog_level: debug"), 1)
	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var seen int
	d.OnReload(func(cfg *config.Config) { seen = cfg.Desktops })
	if err := d.Reload(ctx, "test"); err != nil {
		t.Fatalf("reload: %v", err)
	}

	var desktops int
	d.Loop().Do(ctx, func(st *workspace.State) error {
		desktops = st.DesktopCount()
		return nil
	})
	if desktops != 6 || seen != 6 {
		t.Fatalf("expected 6 desktops after reload, got %d (hook saw %d)", desktops, seen)
	}
	if d.level.Level() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", d.level.Level())
	}
}

func TestReload_InvalidConfigKeepsCurrent(t *testing.T) {
	d, _, cfgPath := newTestDaemon(t, "desktops: 2\n")
	ctx := runLoop(t, d.Loop())

	if err := os.WriteFile(cfgPath, []byte("desktops: 0\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := d.Reload(ctx, "test"); err == nil {
		t.Fatalf("expected an invalid config to be rejected")
	}
	if d.Config().Desktops != 2 {
		t.Fatalf("expected config to stay at 2 desktops, got %d", d.Config().Desktops)
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("desktops: 2\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	requests := make(chan string, 4)
	w := NewWatcher(map[string]string{path: "config file updated"}, requests, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Serve(ctx)

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("desktops: 3\n"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case reason := <-requests:
		if reason != "config file updated" {
			t.Fatalf("unexpected reason %q", reason)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("expected a reload request")
	}
	select {
	case reason := <-requests:
		t.Fatalf("expected one request for the burst, got another: %q", reason)
	case <-time.After(2 * debounceWindow):
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}
