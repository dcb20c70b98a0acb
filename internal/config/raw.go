package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawSnapConfig struct {
	BorderZone          *int  `yaml:"border_zone"`
	WindowZone          *int  `yaml:"window_zone"`
	CenterZone          *int  `yaml:"center_zone"`
	OnlyWhenOverlapping *bool `yaml:"only_when_overlapping"`
}

type RawConfig struct {
	Include                    IncludeList       `yaml:"include"`
	LogLevel                   *string           `yaml:"log_level"`
	FocusStealingPrevention    *int              `yaml:"focus_stealing_prevention"`
	FocusPolicy                *string           `yaml:"focus_policy"`
	SeparateScreenFocus        *bool             `yaml:"separate_screen_focus"`
	Snap                       *RawSnapConfig    `yaml:"snap"`
	Placement                  *string           `yaml:"placement"`
	BorderlessMaximizedWindows *bool             `yaml:"borderless_maximized_windows"`
	ElectricBorderMaximize     *bool             `yaml:"electric_border_maximize"`
	QuickTileCombineTimeoutMS  *int              `yaml:"quick_tile_combine_timeout_ms"`
	AutogroupSimilar           *bool             `yaml:"autogroup_similar"`
	AutogroupInForeground      *bool             `yaml:"autogroup_in_foreground"`
	Desktops                   *int              `yaml:"desktops"`
	MoveModeTimeout            *int              `yaml:"move_mode_timeout"`
	RulesFile                  *string           `yaml:"rules_file"`
	SessionDir                 *string           `yaml:"session_dir"`
	Hotkeys                    map[string]string `yaml:"hotkeys"`
	ReconcileInterval          *string           `yaml:"reconcile_interval"`
	Display                    *string           `yaml:"display"`
	XAuthority                 *string           `yaml:"xauthority"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	mergePtr(&out.LogLevel, overlay.LogLevel)
	mergePtr(&out.FocusStealingPrevention, overlay.FocusStealingPrevention)
	mergePtr(&out.FocusPolicy, overlay.FocusPolicy)
	mergePtr(&out.SeparateScreenFocus, overlay.SeparateScreenFocus)
	if overlay.Snap != nil {
		if out.Snap == nil {
			out.Snap = &RawSnapConfig{}
		} else {
			snap := *out.Snap
			out.Snap = &snap
		}
		mergePtr(&out.Snap.BorderZone, overlay.Snap.BorderZone)
		mergePtr(&out.Snap.WindowZone, overlay.Snap.WindowZone)
		mergePtr(&out.Snap.CenterZone, overlay.Snap.CenterZone)
		mergePtr(&out.Snap.OnlyWhenOverlapping, overlay.Snap.OnlyWhenOverlapping)
	}
	mergePtr(&out.Placement, overlay.Placement)
	mergePtr(&out.BorderlessMaximizedWindows, overlay.BorderlessMaximizedWindows)
	mergePtr(&out.ElectricBorderMaximize, overlay.ElectricBorderMaximize)
	mergePtr(&out.QuickTileCombineTimeoutMS, overlay.QuickTileCombineTimeoutMS)
	mergePtr(&out.AutogroupSimilar, overlay.AutogroupSimilar)
	mergePtr(&out.AutogroupInForeground, overlay.AutogroupInForeground)
	mergePtr(&out.Desktops, overlay.Desktops)
	mergePtr(&out.MoveModeTimeout, overlay.MoveModeTimeout)
	mergePtr(&out.RulesFile, overlay.RulesFile)
	mergePtr(&out.SessionDir, overlay.SessionDir)
	if overlay.Hotkeys != nil {
		merged := make(map[string]string, len(out.Hotkeys)+len(overlay.Hotkeys))
		for action, keys := range out.Hotkeys {
			merged[action] = keys
		}
		for action, keys := range overlay.Hotkeys {
			merged[action] = keys
		}
		out.Hotkeys = merged
	}
	mergePtr(&out.ReconcileInterval, overlay.ReconcileInterval)
	mergePtr(&out.Display, overlay.Display)
	mergePtr(&out.XAuthority, overlay.XAuthority)

	return out
}

func mergePtr[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}
