package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths are the top-level keys, snap.<zone> and hotkeys.<action>:
//
//	log_level
//	focus_policy
//	snap.border_zone
//	placement
//	hotkeys.quick-tile-left
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	if action, ok := strings.CutPrefix(path, "hotkeys."); ok {
		keys, ok := cfg.Hotkeys[action]
		if !ok {
			return nil, fmt.Errorf("no hotkey bound to %s", action)
		}
		return keys, nil
	}

	values := map[string]any{
		"log_level":                     cfg.LogLevel,
		"focus_stealing_prevention":     cfg.FocusStealingPrevention,
		"focus_policy":                  cfg.FocusPolicy,
		"separate_screen_focus":         cfg.SeparateScreenFocus,
		"snap":                          cfg.Snap,
		"snap.border_zone":              cfg.Snap.BorderZone,
		"snap.window_zone":              cfg.Snap.WindowZone,
		"snap.center_zone":              cfg.Snap.CenterZone,
		"snap.only_when_overlapping":    cfg.Snap.OnlyWhenOverlapping,
		"placement":                     cfg.Placement,
		"borderless_maximized_windows":  cfg.BorderlessMaximizedWindows,
		"electric_border_maximize":      cfg.ElectricBorderMaximize,
		"quick_tile_combine_timeout_ms": cfg.QuickTileCombineTimeoutMS,
		"autogroup_similar":             cfg.AutogroupSimilar,
		"autogroup_in_foreground":       cfg.AutogroupInForeground,
		"desktops":                      cfg.Desktops,
		"move_mode_timeout":             cfg.MoveModeTimeout,
		"rules_file":                    cfg.RulesFile,
		"session_dir":                   cfg.SessionDir,
		"hotkeys":                       cfg.Hotkeys,
		"reconcile_interval":            cfg.ReconcileInterval,
		"display":                       cfg.Display,
		"xauthority":                    cfg.XAuthority,
	}
	v, ok := values[path]
	if !ok {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	return v, nil
}
