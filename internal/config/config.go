package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/KDE/kwin-sub007/internal/activation"
	"github.com/KDE/kwin-sub007/internal/placement"
	"github.com/KDE/kwin-sub007/internal/snap"
	"github.com/KDE/kwin-sub007/internal/tiling"
	"github.com/KDE/kwin-sub007/internal/workspace"
)

// AppName names the configuration and data directories.
const AppName = "kwin-sub007"

// SnapConfig holds the snap zones in pixels.
type SnapConfig struct {
	BorderZone          int  `yaml:"border_zone"`
	WindowZone          int  `yaml:"window_zone"`
	CenterZone          int  `yaml:"center_zone"`
	OnlyWhenOverlapping bool `yaml:"only_when_overlapping"`
}

// HotkeyActions lists the action names the hotkeys map accepts.
var HotkeyActions = []string{
	"quick-tile-left", "quick-tile-right", "quick-tile-top", "quick-tile-bottom",
	"quick-tile-top-left", "quick-tile-top-right", "quick-tile-bottom-left", "quick-tile-bottom-right",
	"maximize", "maximize-vertical", "maximize-horizontal", "fullscreen",
	"minimize", "shade", "keep-above", "keep-below", "close",
	"move", "resize",
	"pack-left", "pack-right", "pack-up", "pack-down",
	"grow-horizontal", "shrink-horizontal", "grow-vertical", "shrink-vertical",
	"tab-next", "tab-prev", "tab-remove",
	"place", "cascade", "unclutter",
	"desktop-next", "desktop-prev",
}

type Config struct {
	LogLevel                   string            `yaml:"log_level"`
	FocusStealingPrevention    int               `yaml:"focus_stealing_prevention"`
	FocusPolicy                string            `yaml:"focus_policy"`
	SeparateScreenFocus        bool              `yaml:"separate_screen_focus"`
	Snap                       SnapConfig        `yaml:"snap"`
	Placement                  string            `yaml:"placement"`
	BorderlessMaximizedWindows bool              `yaml:"borderless_maximized_windows"`
	ElectricBorderMaximize     bool              `yaml:"electric_border_maximize"`
	QuickTileCombineTimeoutMS  int               `yaml:"quick_tile_combine_timeout_ms"`
	AutogroupSimilar           bool              `yaml:"autogroup_similar"`
	AutogroupInForeground      bool              `yaml:"autogroup_in_foreground"`
	Desktops                   int               `yaml:"desktops"`
	MoveModeTimeout            int               `yaml:"move_mode_timeout"`
	RulesFile                  string            `yaml:"rules_file"`
	SessionDir                 string            `yaml:"session_dir"`
	Hotkeys                    map[string]string `yaml:"hotkeys"`
	ReconcileInterval          string            `yaml:"reconcile_interval"`
	Display                    string            `yaml:"display,omitempty"`
	XAuthority                 string            `yaml:"xauthority,omitempty"`
}

func defaultHotkeys() map[string]string {
	return map[string]string{
		"quick-tile-left":   "Mod4-Left",
		"quick-tile-right":  "Mod4-Right",
		"quick-tile-top":    "Mod4-Up",
		"quick-tile-bottom": "Mod4-Down",
		"maximize":          "Mod4-Page_Up",
		"minimize":          "Mod4-Page_Down",
		"move":              "Mod1-F7",
		"resize":            "Mod1-F8",
		"close":             "Mod1-F4",
		"tab-next":          "Mod4-Mod1-Right",
		"tab-prev":          "Mod4-Mod1-Left",
	}
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:                "info",
		FocusStealingPrevention: int(activation.LevelNormal),
		FocusPolicy:             activation.ClickToFocus.String(),
		Snap: SnapConfig{
			BorderZone: 10,
			WindowZone: 10,
		},
		Placement:                 "smart",
		ElectricBorderMaximize:    true,
		QuickTileCombineTimeoutMS: int(tiling.DefaultCombineTimeout / time.Millisecond),
		AutogroupInForeground:     true,
		Desktops:                  4,
		MoveModeTimeout:           10,
		RulesFile:                 filepath.Join(xdg.ConfigHome, AppName, "rules.yaml"),
		SessionDir:                filepath.Join(xdg.DataHome, AppName, "sessions"),
		Hotkeys:                   defaultHotkeys(),
		ReconcileInterval:         "5s",
	}
}

// Save validates c and writes it to the default config path.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo validates c and writes it to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if !activation.Level(c.FocusStealingPrevention).Valid() {
		return &ValidationError{Path: "focus_stealing_prevention", Err: fmt.Errorf("focus_stealing_prevention must be between 0 and 4")}
	}
	if _, err := activation.ParseFocusPolicy(c.FocusPolicy); err != nil {
		return &ValidationError{Path: "focus_policy", Err: err}
	}
	if c.Snap.BorderZone < 0 {
		return &ValidationError{Path: "snap.border_zone", Err: fmt.Errorf("border_zone must be >= 0")}
	}
	if c.Snap.WindowZone < 0 {
		return &ValidationError{Path: "snap.window_zone", Err: fmt.Errorf("window_zone must be >= 0")}
	}
	if c.Snap.CenterZone < 0 {
		return &ValidationError{Path: "snap.center_zone", Err: fmt.Errorf("center_zone must be >= 0")}
	}
	if !isPlacementName(c.Placement) {
		return &ValidationError{Path: "placement", Err: fmt.Errorf("unknown placement policy %q", c.Placement)}
	}
	if c.QuickTileCombineTimeoutMS < 0 {
		return &ValidationError{Path: "quick_tile_combine_timeout_ms", Err: fmt.Errorf("quick_tile_combine_timeout_ms must be >= 0")}
	}
	if c.Desktops < 1 || c.Desktops > 20 {
		return &ValidationError{Path: "desktops", Err: fmt.Errorf("desktops must be between 1 and 20")}
	}
	if c.MoveModeTimeout < 0 {
		return &ValidationError{Path: "move_mode_timeout", Err: fmt.Errorf("move_mode_timeout must be >= 0")}
	}
	if strings.TrimSpace(c.SessionDir) == "" {
		return &ValidationError{Path: "session_dir", Err: fmt.Errorf("session_dir must not be empty")}
	}
	if c.Hotkeys == nil {
		return &ValidationError{Path: "hotkeys", Err: fmt.Errorf("hotkeys must not be null")}
	}
	for _, action := range sortedKeys(c.Hotkeys) {
		if !slices.Contains(HotkeyActions, action) {
			return &ValidationError{Path: "hotkeys." + action, Err: fmt.Errorf("unknown action %q", action)}
		}
		if strings.TrimSpace(c.Hotkeys[action]) == "" {
			return &ValidationError{Path: "hotkeys." + action, Err: fmt.Errorf("key sequence must not be empty")}
		}
	}
	if d, err := time.ParseDuration(c.ReconcileInterval); err != nil || d <= 0 {
		return &ValidationError{Path: "reconcile_interval", Err: fmt.Errorf("reconcile_interval must be a positive duration like 5s")}
	}
	return nil
}

// isPlacementName accepts the policy names that make sense globally.
func isPlacementName(name string) bool {
	want := strings.ReplaceAll(strings.TrimSpace(name), "-", "")
	for _, p := range []placement.Policy{
		placement.NoPlacement, placement.Random, placement.Smart, placement.Cascade,
		placement.Centered, placement.ZeroCornered, placement.UnderMouse, placement.Maximizing,
	} {
		if strings.EqualFold(want, p.String()) {
			return true
		}
	}
	return false
}

// ReconcileEvery is the parsed reconcile interval.
func (c *Config) ReconcileEvery() time.Duration {
	d, err := time.ParseDuration(c.ReconcileInterval)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// CombineTimeout is the quick tile combine window.
func (c *Config) CombineTimeout() time.Duration {
	return time.Duration(c.QuickTileCombineTimeoutMS) * time.Millisecond
}

// WorkspaceOptions converts c to the options of the window manager core.
func (c *Config) WorkspaceOptions() workspace.Options {
	policy, err := activation.ParseFocusPolicy(c.FocusPolicy)
	if err != nil {
		policy = activation.ClickToFocus
	}
	return workspace.Options{
		Desktops: c.Desktops,
		Activation: activation.Options{
			Level:               activation.Level(c.FocusStealingPrevention),
			FocusPolicy:         policy,
			SeparateScreenFocus: c.SeparateScreenFocus,
		},
		Snap: snap.Options{
			BorderZone:          c.Snap.BorderZone,
			WindowZone:          c.Snap.WindowZone,
			CenterZone:          c.Snap.CenterZone,
			OnlyWhenOverlapping: c.Snap.OnlyWhenOverlapping,
		},
		Placement: placement.Options{
			Policy:         placement.PolicyFromString(c.Placement, true),
			BorderSnapZone: c.Snap.BorderZone,
		},
		Tiling: tiling.Options{
			BorderlessMaximized:    c.BorderlessMaximizedWindows,
			ElectricBorderMaximize: c.ElectricBorderMaximize,
		},
		CombineTimeout:        c.CombineTimeout(),
		AutogroupSimilar:      c.AutogroupSimilar,
		AutogroupInForeground: c.AutogroupInForeground,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
