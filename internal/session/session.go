// Package session stores the state of managed windows so it can be
// applied again when the same applications map their windows after a
// restart.
package session

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
)

// Session is a persisted snapshot of every managed window.
type Session struct {
	Name    string    `json:"name"`
	ID      string    `json:"id"`
	SavedAt time.Time `json:"saved_at"`
	Windows []Record  `json:"windows"`
}

// Record is the saved state of one window.
type Record struct {
	SessionID     string `json:"session_id,omitempty"`
	ResourceName  string `json:"resource_name"`
	ResourceClass string `json:"resource_class"`
	Role          string `json:"role,omitempty"`
	Machine       string `json:"machine,omitempty"`
	Title         string `json:"title,omitempty"`
	// Kind is empty when the window had a regular type.
	Kind string `json:"kind,omitempty"`

	Geometry          geom.Rect `json:"geometry"`
	GeomRestore       geom.Rect `json:"geom_restore"`
	FullscreenRestore geom.Rect `json:"fullscreen_restore"`
	Maximize          string    `json:"maximize,omitempty"`
	QuickTile         string    `json:"quick_tile,omitempty"`
	Fullscreen        bool      `json:"fullscreen,omitempty"`

	Desktop       int      `json:"desktop"`
	OnAllDesktops bool     `json:"on_all_desktops,omitempty"`
	Activities    []string `json:"activities,omitempty"`
	Minimized     bool     `json:"minimized,omitempty"`
	Shaded        bool     `json:"shaded,omitempty"`
	KeepAbove     bool     `json:"keep_above,omitempty"`
	KeepBelow     bool     `json:"keep_below,omitempty"`
	SkipTaskbar   bool     `json:"skip_taskbar,omitempty"`
	SkipPager     bool     `json:"skip_pager,omitempty"`
	SkipSwitcher  bool     `json:"skip_switcher,omitempty"`
	NoBorder      bool     `json:"no_border,omitempty"`
	Shortcut      string   `json:"shortcut,omitempty"`
	StackingOrder int      `json:"stacking_order"`
	Active        bool     `json:"active,omitempty"`
	// TabGroup links records that shared a tab group.
	TabGroup string `json:"tab_group,omitempty"`
	// TabCurrent marks the visible member of its tab group.
	TabCurrent bool `json:"tab_current,omitempty"`
}

// TabInfo describes the tab group membership of a window at save time.
type TabInfo struct {
	Key     string
	Current bool
}

// Capture snapshots the windows of arena in stacking order. tabs reports
// the tab group of a window and may be nil.
func Capture(name string, arena *window.Arena, active window.ID, tabs func(*window.Window) (TabInfo, bool)) *Session {
	s := &Session{
		Name:    name,
		ID:      uuid.NewString(),
		SavedAt: time.Now().UTC(),
	}
	links := make(map[string]string)
	for i, w := range arena.All() {
		if !w.Managed || w.IsSpecial() {
			continue
		}
		rec := FromWindow(w)
		rec.StackingOrder = i
		rec.Active = w.ID == active
		if tabs != nil {
			if info, ok := tabs(w); ok {
				key, seen := links[info.Key]
				if !seen {
					key = uuid.NewString()
					links[info.Key] = key
				}
				rec.TabGroup = key
				rec.TabCurrent = info.Current
			}
		}
		s.Windows = append(s.Windows, rec)
	}
	return s
}

// FromWindow builds the record of w without stacking or tab information.
func FromWindow(w *window.Window) Record {
	rec := Record{
		SessionID:         w.SessionID,
		ResourceName:      w.ResourceName,
		ResourceClass:     w.ResourceClass,
		Role:              w.Role,
		Machine:           w.Machine,
		Title:             w.Title,
		Geometry:          w.Frame,
		GeomRestore:       w.GeomRestore,
		FullscreenRestore: w.FullscreenRestore,
		Fullscreen:        w.Fullscreen,
		Desktop:           w.Desktop,
		OnAllDesktops:     w.IsOnAllDesktops(),
		Activities:        slices.Clone(w.Activities),
		Minimized:         w.Minimized,
		Shaded:            w.IsShade(),
		KeepAbove:         w.KeepAbove,
		KeepBelow:         w.KeepBelow,
		SkipTaskbar:       w.SkipTaskbar,
		SkipPager:         w.SkipPager,
		SkipSwitcher:      w.SkipSwitcher,
		NoBorder:          w.NoBorder,
		Shortcut:          w.Shortcut,
	}
	if w.Kind != window.KindNormal {
		rec.Kind = w.Kind.String()
	}
	if w.Maximize != window.MaximizeRestore {
		rec.Maximize = w.Maximize.String()
	}
	if w.QuickTile != window.QuickTileNone {
		rec.QuickTile = w.QuickTile.String()
	}
	return rec
}

// kindMatches accepts untyped records for any regular window.
func (r *Record) kindMatches(w *window.Window) bool {
	if r.Kind == "" {
		return !w.IsSpecial()
	}
	k, ok := window.ParseKind(r.Kind)
	return ok && k == w.Kind
}

// Apply copies the stored state into w. Maximize, quick tile and
// fullscreen are returned rather than applied since they have to go
// through the state machine once the window has a geometry.
func (r *Record) Apply(w *window.Window) (window.MaximizeMode, window.QuickTileMode, bool) {
	w.Frame = r.Geometry
	w.GeomRestore = r.GeomRestore
	w.FullscreenRestore = r.FullscreenRestore
	if r.OnAllDesktops {
		w.Desktop = window.OnAllDesktops
	} else if r.Desktop > 0 {
		w.Desktop = r.Desktop
	}
	w.Activities = slices.Clone(r.Activities)
	w.Minimized = r.Minimized
	if r.Shaded {
		w.Shade = window.ShadeNormal
	} else {
		w.Shade = window.ShadeNone
	}
	w.KeepAbove = r.KeepAbove
	w.KeepBelow = r.KeepBelow
	w.SkipTaskbar = r.SkipTaskbar
	w.SkipPager = r.SkipPager
	w.SkipSwitcher = r.SkipSwitcher
	w.NoBorder = r.NoBorder
	w.Shortcut = r.Shortcut

	mode, err := window.ParseMaximizeMode(r.Maximize)
	if err != nil {
		mode = window.MaximizeRestore
	}
	tile := window.QuickTileNone
	if r.QuickTile != "" {
		if q, err := window.ParseQuickTileMode(r.QuickTile); err == nil {
			tile = q
		}
	}
	return mode, tile, r.Fullscreen
}
