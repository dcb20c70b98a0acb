package mcp

import "github.com/KDE/kwin-sub007/internal/workspace"

// WindowInput targets one window. Zero means the active window.
type WindowInput struct {
	Window uint32 `json:"window,omitempty" jsonschema:"Window id as listed by list_windows (default: the active window)"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Class   string `json:"class,omitempty" jsonschema:"Only list windows whose resource class contains this text (case-insensitive)"`
	Desktop int    `json:"desktop,omitempty" jsonschema:"Only list windows on this desktop, counting from 1 (default: all desktops)"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []workspace.WindowInfo `json:"windows"`
}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	Status        workspace.Status `json:"status"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// MaximizeInput is the input for the maximize_window tool.
type MaximizeInput struct {
	Window uint32 `json:"window,omitempty" jsonschema:"Window id (default: the active window)"`
	Mode   string `json:"mode,omitempty" jsonschema:"One of restore, vertical, horizontal, full. Empty toggles full maximize."`
}

// QuickTileInput is the input for the quick_tile_window tool.
type QuickTileInput struct {
	Window uint32 `json:"window,omitempty" jsonschema:"Window id (default: the active window)"`
	Mode   string `json:"mode" jsonschema:"required,One of none, maximize, left, right, top, bottom, top-left, top-right, bottom-left, bottom-right"`
}

// FullscreenInput is the input for the set_fullscreen tool.
type FullscreenInput struct {
	Window uint32 `json:"window,omitempty" jsonschema:"Window id (default: the active window)"`
	Set    *bool  `json:"set,omitempty" jsonschema:"true enters fullscreen, false leaves it; omit to toggle"`
}

// PlaceInput is the input for the place_window tool.
type PlaceInput struct {
	Window uint32 `json:"window,omitempty" jsonschema:"Window id (default: the active window)"`
	Policy string `json:"policy,omitempty" jsonschema:"Placement policy such as smart, cascade, centered, zero-cornered, under-mouse, maximizing, random (default: the configured policy)"`
}

// PackInput is the input for the pack_window tool.
type PackInput struct {
	Window    uint32 `json:"window,omitempty" jsonschema:"Window id (default: the active window)"`
	Direction string `json:"direction" jsonschema:"required,One of left, right, up, down"`
	Grow      bool   `json:"grow,omitempty" jsonschema:"Grow towards the direction instead of moving; left and up shrink"`
}

// TabInput is the input for the tab_window tool.
type TabInput struct {
	Window uint32 `json:"window,omitempty" jsonschema:"Window id (default: the active window)"`
	Action string `json:"action" jsonschema:"required,One of add, remove, next, prev"`
	Other  uint32 `json:"other,omitempty" jsonschema:"For add: the window whose tab group to join"`
}

// WorkareaInput is the input for the get_workarea tool.
type WorkareaInput struct {
	Area    string `json:"area,omitempty" jsonschema:"One of placement, movement, maximize, maximize-full, fullscreen, work, full, screen (default: work)"`
	Screen  int    `json:"screen,omitempty" jsonschema:"Screen index counting from 0"`
	Desktop int    `json:"desktop,omitempty" jsonschema:"Desktop counting from 1 (default: the current desktop)"`
}

// WorkareaOutput is the output for the get_workarea tool.
type WorkareaOutput struct {
	Area    string `json:"area"`
	Screen  int    `json:"screen"`
	Desktop int    `json:"desktop"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// SessionInput is the input for the session tools.
type SessionInput struct {
	Name string `json:"name" jsonschema:"required,Session name (letters, digits, dash, underscore)"`
}

// SessionOutput is the output for the session tools.
type SessionOutput struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Windows  int    `json:"windows,omitempty"`
	Restored int    `json:"restored,omitempty"`
}

// OKOutput acknowledges a command without data.
type OKOutput struct {
	OK bool `json:"ok"`
}
