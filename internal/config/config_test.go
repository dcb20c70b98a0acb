package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/KDE/kwin-sub007/internal/activation"
	"github.com/KDE/kwin-sub007/internal/placement"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.ReconcileEvery() != 5*time.Second {
		t.Fatalf("expected 5s reconcile interval, got %v", cfg.ReconcileEvery())
	}
	if got := activation.Level(cfg.FocusStealingPrevention); got != activation.LevelNormal {
		t.Fatalf("expected focus stealing prevention %v, got %v", activation.LevelNormal, got)
	}
	if got := cfg.WorkspaceOptions().Activation.Level; got != activation.LevelNormal {
		t.Fatalf("expected workspace level %v, got %v", activation.LevelNormal, got)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), res.Config); diff != "" {
		t.Fatalf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_OverridesAndWorkspaceOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"focus_stealing_prevention: 3",
		"focus_policy: follow-mouse",
		"snap:",
		"  window_zone: 4",
		"  center_zone: 6",
		"placement: cascade",
		"quick_tile_combine_timeout_ms: 250",
		"desktops: 6",
		"hotkeys:",
		"  maximize: Mod4-m",
		"  close: \"\"",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Snap.BorderZone != 10 || cfg.Snap.WindowZone != 4 {
		t.Fatalf("expected partial snap override, got %+v", cfg.Snap)
	}
	if cfg.Hotkeys["maximize"] != "Mod4-m" {
		t.Fatalf("expected maximize rebound, got %q", cfg.Hotkeys["maximize"])
	}
	if _, ok := cfg.Hotkeys["close"]; ok {
		t.Fatalf("expected close to be unbound")
	}
	if cfg.Hotkeys["quick-tile-left"] != "Mod4-Left" {
		t.Fatalf("expected default hotkeys to remain, got %v", cfg.Hotkeys)
	}

	opts := cfg.WorkspaceOptions()
	if opts.Activation.Level != activation.LevelHigh {
		t.Fatalf("expected level high, got %v", opts.Activation.Level)
	}
	if opts.Activation.FocusPolicy != activation.FocusFollowsMouse {
		t.Fatalf("expected follow-mouse, got %v", opts.Activation.FocusPolicy)
	}
	if opts.Placement.Policy != placement.Cascade {
		t.Fatalf("expected cascade placement, got %v", opts.Placement.Policy)
	}
	if opts.Snap.CenterZone != 6 || opts.Desktops != 6 {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.CombineTimeout != 250*time.Millisecond {
		t.Fatalf("expected 250ms combine timeout, got %v", opts.CombineTimeout)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "log_level: info\ndesktops: 0\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if verr.Path != "desktops" {
		t.Fatalf("expected path desktops, got %q", verr.Path)
	}
	if verr.Source.Line != 2 || verr.Source.Column != 11 {
		t.Fatalf("expected source 2:11, got %d:%d", verr.Source.Line, verr.Source.Column)
	}
	if !strings.HasSuffix(verr.Source.File, "config.yaml") {
		t.Fatalf("expected source file, got %q", verr.Source.File)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"fsp level", func(c *Config) { c.FocusStealingPrevention = 5 }, "focus_stealing_prevention"},
		{"focus policy", func(c *Config) { c.FocusPolicy = "telepathy" }, "focus_policy"},
		{"snap zone", func(c *Config) { c.Snap.BorderZone = -1 }, "snap.border_zone"},
		{"placement", func(c *Config) { c.Placement = "on-main-window" }, "placement"},
		{"hotkey action", func(c *Config) { c.Hotkeys["teleport"] = "Mod4-t" }, "hotkeys.teleport"},
		{"interval", func(c *Config) { c.ReconcileInterval = "soon" }, "reconcile_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) || verr.Path != tt.path {
				t.Fatalf("expected validation error at %s, got %v", tt.path, err)
			}
		})
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(configD, "10-base.yaml"), "desktops: 5\nsnap:\n  border_zone: 3\n")
	writeFile(t, filepath.Join(configD, "20-override.yaml"), "desktops: 6\n")

	// Main file overrides includes.
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"include:",
		"  - config.d",
		"desktops: 7",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Desktops != 7 {
		t.Fatalf("expected desktops to be 7, got %d", res.Config.Desktops)
	}
	if res.Config.Snap.BorderZone != 3 {
		t.Fatalf("expected border_zone from include, got %d", res.Config.Snap.BorderZone)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected three loaded files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestExplain_ReportsFileOrDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "display: \":1\"\nhotkeys:\n  shade: Mod4-s\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "display")
	if err != nil {
		t.Fatalf("explain display: %v", err)
	}
	if val != ":1" || src.Kind != SourceFile || src.Line != 1 {
		t.Fatalf("expected :1 from line 1, got %v from %+v", val, src)
	}

	val, src, err = Explain(res, "hotkeys.shade")
	if err != nil || val != "Mod4-s" || src.Line != 3 {
		t.Fatalf("expected hotkeys.shade from line 3, got %v %+v %v", val, src, err)
	}

	val, src, err = Explain(res, "snap.border_zone")
	if err != nil || val != 10 || src.Kind != SourceDefault {
		t.Fatalf("expected default border zone, got %v %+v %v", val, src, err)
	}

	if _, _, err := Explain(res, "gap_size"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestSaveTo_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Desktops = 3
	cfg.Hotkeys["shade"] = "Mod4-s"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(cfg, res.Config); diff != "" {
		t.Fatalf("expected saved config back (-want +got):\n%s", diff)
	}
}
