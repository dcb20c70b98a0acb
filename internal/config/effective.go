package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw over DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	applyPtr(&cfg.LogLevel, raw.LogLevel)
	applyPtr(&cfg.FocusStealingPrevention, raw.FocusStealingPrevention)
	applyPtr(&cfg.FocusPolicy, raw.FocusPolicy)
	applyPtr(&cfg.SeparateScreenFocus, raw.SeparateScreenFocus)
	if raw.Snap != nil {
		applyPtr(&cfg.Snap.BorderZone, raw.Snap.BorderZone)
		applyPtr(&cfg.Snap.WindowZone, raw.Snap.WindowZone)
		applyPtr(&cfg.Snap.CenterZone, raw.Snap.CenterZone)
		applyPtr(&cfg.Snap.OnlyWhenOverlapping, raw.Snap.OnlyWhenOverlapping)
	}
	applyPtr(&cfg.Placement, raw.Placement)
	applyPtr(&cfg.BorderlessMaximizedWindows, raw.BorderlessMaximizedWindows)
	applyPtr(&cfg.ElectricBorderMaximize, raw.ElectricBorderMaximize)
	applyPtr(&cfg.QuickTileCombineTimeoutMS, raw.QuickTileCombineTimeoutMS)
	applyPtr(&cfg.AutogroupSimilar, raw.AutogroupSimilar)
	applyPtr(&cfg.AutogroupInForeground, raw.AutogroupInForeground)
	applyPtr(&cfg.Desktops, raw.Desktops)
	applyPtr(&cfg.MoveModeTimeout, raw.MoveModeTimeout)
	applyPtr(&cfg.RulesFile, raw.RulesFile)
	applyPtr(&cfg.SessionDir, raw.SessionDir)
	for action, keys := range raw.Hotkeys {
		if keys == "" {
			// An empty sequence unbinds a default.
			delete(cfg.Hotkeys, action)
			continue
		}
		cfg.Hotkeys[action] = keys
	}
	applyPtr(&cfg.ReconcileInterval, raw.ReconcileInterval)
	applyPtr(&cfg.Display, raw.Display)
	applyPtr(&cfg.XAuthority, raw.XAuthority)

	if cfg.RulesFile != "" {
		path, err := expandHome(cfg.RulesFile)
		if err != nil {
			return nil, &ValidationError{Path: "rules_file", Err: err}
		}
		cfg.RulesFile = path
	}
	path, err := expandHome(cfg.SessionDir)
	if err != nil {
		return nil, &ValidationError{Path: "session_dir", Err: err}
	}
	cfg.SessionDir = path

	return cfg, nil
}

func applyPtr[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
