// Package workspace ties the window management components together. State
// owns the managed windows and acts as the host of every component, so an
// event from the windowing system only has to reach one object.
package workspace

import (
	"fmt"
	"log"
	"time"

	"github.com/KDE/kwin-sub007/internal/activation"
	"github.com/KDE/kwin-sub007/internal/placement"
	"github.com/KDE/kwin-sub007/internal/platform"
	"github.com/KDE/kwin-sub007/internal/rules"
	"github.com/KDE/kwin-sub007/internal/session"
	"github.com/KDE/kwin-sub007/internal/snap"
	"github.com/KDE/kwin-sub007/internal/tabgroup"
	"github.com/KDE/kwin-sub007/internal/tiling"
	"github.com/KDE/kwin-sub007/internal/timestamp"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
)

// Options configure a workspace and the components it owns.
type Options struct {
	Desktops   int
	Activation activation.Options
	Snap       snap.Options
	Placement  placement.Options
	Tiling     tiling.Options
	// CombineTimeout is how long a quick tile shortcut waits for a second
	// one on the other axis.
	CombineTimeout time.Duration
	// AutogroupSimilar tabs new windows to a window of the same class.
	AutogroupSimilar bool
	// AutogroupInForeground makes autogrouped windows the visible tab.
	AutogroupInForeground bool
}

// DefaultOptions mirror the stock configuration.
func DefaultOptions() Options {
	return Options{
		Desktops: 4,
		Activation: activation.Options{
			Level:       activation.LevelNormal,
			FocusPolicy: activation.ClickToFocus,
		},
		Snap: snap.Options{BorderZone: 10, WindowZone: 10},
		Placement: placement.Options{
			Policy:         placement.Smart,
			BorderSnapZone: 10,
		},
		Tiling:                tiling.Options{ElectricBorderMaximize: true},
		CombineTimeout:        tiling.DefaultCombineTimeout,
		AutogroupInForeground: true,
	}
}

// State is the window manager core of one display.
type State struct {
	backend platform.Backend
	opts    Options

	arena    *window.Arena
	tracker  *workarea.Tracker
	act      *activation.State
	tabs     *tabgroup.Synchronizer
	place    *placement.Engine
	snap     *snap.Engine
	tiling   *tiling.Machine
	combiner *tiling.Combiner

	book  *rules.Book
	rules map[window.ID]*rules.WindowRules

	pending  *session.Pending
	restored map[window.ID]*session.Record

	// created holds the time each client window was first seen. Withdrawn
	// windows stay in the map with an unknown time until they are destroyed.
	created map[platform.WindowID]timestamp.Time

	// tabSync is non-zero while the tab group synchronizer drives a change,
	// which must not be propagated back to the group.
	tabSync int
}

// New builds a workspace on backend. book may be nil when no window rules
// are configured.
func New(backend platform.Backend, opts Options, book *rules.Book) (*State, error) {
	screens, err := backend.Screens()
	if err != nil {
		return nil, fmt.Errorf("failed to read screens: %w", err)
	}
	if opts.Desktops < 1 {
		opts.Desktops = 1
	}
	s := &State{
		backend:  backend,
		opts:     opts,
		arena:    window.NewArena(),
		tracker:  workarea.NewTracker(screens, opts.Desktops),
		book:     book,
		rules:    make(map[window.ID]*rules.WindowRules),
		combiner: tiling.NewCombiner(opts.CombineTimeout),
		restored: make(map[window.ID]*session.Record),
		created:  make(map[platform.WindowID]timestamp.Time),
	}
	s.act = activation.New(s, opts.Activation)
	s.tabs = tabgroup.New(s.arena, tabHost{s})
	s.place = placement.New(s, opts.Placement)
	s.snap = snap.New(opts.Snap, s)
	s.tiling = tiling.New(s, opts.Tiling)
	s.tracker.Recompute(nil, nil)
	s.publishDesktops()
	return s, nil
}

func (s *State) Options() Options { return s.opts }

// SetOptions applies a new configuration to every component. Desktop count
// changes move windows from removed desktops to the last remaining one.
func (s *State) SetOptions(opts Options) {
	if opts.Desktops < 1 {
		opts.Desktops = 1
	}
	s.act.SetOptions(opts.Activation)
	s.snap.SetOptions(opts.Snap)
	s.place.SetOptions(opts.Placement)
	s.tiling.SetOptions(opts.Tiling)
	s.combiner.Timeout = opts.CombineTimeout
	if opts.Desktops != s.opts.Desktops {
		s.opts = opts
		s.SetDesktopCount(opts.Desktops)
		return
	}
	s.opts = opts
}

func (s *State) Backend() platform.Backend     { return s.backend }
func (s *State) Tracker() *workarea.Tracker    { return s.tracker }
func (s *State) Activation() *activation.State { return s.act }
func (s *State) Tabs() *tabgroup.Synchronizer  { return s.tabs }
func (s *State) Placement() *placement.Engine  { return s.place }
func (s *State) Snap() *snap.Engine            { return s.snap }
func (s *State) Tiling() *tiling.Machine       { return s.tiling }
func (s *State) Book() *rules.Book             { return s.book }
func (s *State) Active() *window.Window        { return s.act.Active() }

// RulesOf returns the rules w matched when it was managed.
func (s *State) RulesOf(w *window.Window) *rules.WindowRules { return s.rules[w.ID] }

// SetBook replaces the rule book, e.g. after a reload. Windows keep the
// rules they matched until they are managed again.
func (s *State) SetBook(book *rules.Book) { s.book = book }

// Window returns the managed window with protocol id xid.
func (s *State) Window(xid platform.WindowID) *window.Window {
	return s.arena.ByXID(uint32(xid))
}

func (s *State) publishState(w *window.Window) {
	if err := s.backend.PublishState(platform.WindowID(w.XID), platform.StateOf(w)); err != nil {
		log.Printf("workspace: failed to publish state of %#x: %v", w.XID, err)
	}
}

func (s *State) publishDesktops() {
	if err := s.backend.PublishDesktops(s.tracker.CurrentDesktop(), s.tracker.DesktopCount(), s.tracker.WorkAreas()); err != nil {
		log.Printf("workspace: failed to publish desktops: %v", err)
	}
}

// restack pushes the arena stacking order to the backend, keeping desktop
// windows at the bottom and the keep-above layer on top.
func (s *State) restack() {
	var below, normal, above, top []platform.WindowID
	for _, w := range s.arena.All() {
		id := platform.WindowID(w.XID)
		switch {
		case w.Kind == window.KindDesktop:
			below = append(below, id)
		case w.Fullscreen && s.act.Active() == w:
			top = append(top, id)
		case w.Kind == window.KindDock || w.KeepAbove:
			above = append(above, id)
		case w.KeepBelow:
			below = append(below, id)
		default:
			normal = append(normal, id)
		}
	}
	order := append(append(append(below, normal...), above...), top...)
	if err := s.backend.Restack(order); err != nil {
		log.Printf("workspace: failed to restack: %v", err)
	}
}

// updateVisibility maps w when it is shown on the current desktop.
func (s *State) updateVisibility(w *window.Window) {
	mapped := w.IsShown() && w.IsOnDesktop(s.tracker.CurrentDesktop())
	if err := s.backend.SetMapped(platform.WindowID(w.XID), mapped); err != nil {
		log.Printf("workspace: failed to map %#x: %v", w.XID, err)
	}
}
