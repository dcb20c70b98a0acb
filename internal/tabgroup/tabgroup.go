// Package tabgroup keeps windows that share one frame position in sync.
//
// All members of a group have the same frame geometry, desktop and shade
// mode. Only the current member is shown; the others are hidden behind it.
// Membership changes go through Synchronizer so that no window ends up in
// two groups.
package tabgroup

import (
	"fmt"
	"log"
	"slices"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
)

// State selects which properties UpdateStates copies between members.
type State uint16

const (
	StateMinimized State = 1 << iota
	StateMaximized
	StateShaded
	StateGeometry
	StateDesktop
	StateActivity
	StateLayer
	StateQuickTile

	StateAll = StateMinimized | StateMaximized | StateShaded | StateGeometry |
		StateDesktop | StateActivity | StateLayer | StateQuickTile
)

// Host applies property changes to member windows. Implementations may
// refuse or adjust a change; the synchronizer checks the outcome.
type Host interface {
	SetShade(w *window.Window, mode window.ShadeMode)
	SetNoBorder(w *window.Window, noBorder bool)
	// SetFrameGeometry moves and resizes w, subject to its size constraints.
	SetFrameGeometry(w *window.Window, frame geom.Rect)
	SetDesktop(w *window.Window, desktop int)
	SetActivities(w *window.Window, activities []string)
	SetMinimized(w *window.Window, minimized bool)
	SetQuickTile(w *window.Window, mode window.QuickTileMode)
	Maximize(w *window.Window, mode window.MaximizeMode)
	SetKeepAbove(w *window.Window, above bool)
	SetKeepBelow(w *window.Window, below bool)
	// SetShown maps or unmaps a member.
	SetShown(w *window.Window, shown bool)
	IsActive(w *window.Window) bool
	Activate(w *window.Window)
	Close(w *window.Window)
}

// Group is one tab group.
type Group struct {
	ID window.TabGroupID
	// Key links the group across sessions and autogrouping rules.
	Key string

	members []window.ID
	current window.ID
	minSize geom.Size
	maxSize geom.Size

	blocked int
	pending State
}

// Members returns the member IDs in tab order.
func (g *Group) Members() []window.ID { return slices.Clone(g.members) }

// Current is the visible member.
func (g *Group) Current() window.ID { return g.current }

// Len is the member count.
func (g *Group) Len() int { return len(g.members) }

// Contains reports membership.
func (g *Group) Contains(id window.ID) bool { return slices.Contains(g.members, id) }

// Index returns the position of id in the tab order, or -1.
func (g *Group) Index(id window.ID) int { return slices.Index(g.members, id) }

// SizeLimits returns the combined client size limits of all members.
func (g *Group) SizeLimits() (minSize, maxSize geom.Size) { return g.minSize, g.maxSize }

// Synchronizer owns every tab group of a workspace.
type Synchronizer struct {
	arena  *window.Arena
	host   Host
	groups map[window.TabGroupID]*Group
	nextID window.TabGroupID
}

// New returns a synchronizer without groups.
func New(arena *window.Arena, host Host) *Synchronizer {
	return &Synchronizer{arena: arena, host: host, groups: make(map[window.TabGroupID]*Group)}
}

// Group resolves a group ID.
func (s *Synchronizer) Group(id window.TabGroupID) *Group { return s.groups[id] }

// GroupOf returns the group of w, or nil.
func (s *Synchronizer) GroupOf(w *window.Window) *Group { return s.groups[w.TabGroup] }

// Groups returns every group ordered by ID.
func (s *Synchronizer) Groups() []*Group {
	out := make([]*Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b *Group) int { return int(a.ID) - int(b.ID) })
	return out
}

// ByKey finds a group by its link key.
func (s *Synchronizer) ByKey(key string) *Group {
	if key == "" {
		return nil
	}
	for _, g := range s.Groups() {
		if g.Key == key {
			return g
		}
	}
	return nil
}

// NewGroup puts w into a group of its own. A window that already has a
// group keeps it.
func (s *Synchronizer) NewGroup(w *window.Window) *Group {
	if g := s.groups[w.TabGroup]; g != nil {
		return g
	}
	s.nextID++
	g := &Group{ID: s.nextID, Key: fmt.Sprintf("tabgroup-%d", s.nextID), members: []window.ID{w.ID}, current: w.ID}
	s.groups[g.ID] = g
	w.TabGroup = g.ID
	s.UpdateSizeLimits(g)
	return g
}

func (s *Synchronizer) window(id window.ID) *window.Window { return s.arena.Get(id) }

// CurrentWindow returns the visible member of g.
func (s *Synchronizer) CurrentWindow(g *Group) *window.Window { return s.window(g.current) }

// Windows returns the members of g in tab order.
func (s *Synchronizer) Windows(g *Group) []*window.Window {
	out := make([]*window.Window, 0, len(g.members))
	for _, id := range g.members {
		if w := s.window(id); w != nil {
			out = append(out, w)
		}
	}
	return out
}

// Add inserts w into g before index (clamped to the member count). The
// window is forced to the shade mode, geometry and desktop of the current
// member in that order; if any of them cannot be matched w is restored and
// stays in its previous group. becomeVisible makes w the current member.
func (s *Synchronizer) Add(g *Group, w *window.Window, index int, becomeVisible bool) bool {
	if g == nil || g.Contains(w.ID) {
		return false
	}
	cur := s.CurrentWindow(g)
	if cur == nil {
		return false
	}

	oldNoBorder := w.NoBorder
	oldShade := w.Shade
	oldFrame := w.Frame
	oldDesktop := w.Desktop
	restore := func(reason string) bool {
		log.Printf("tabgroup: cannot add %#x to group %d: %s", w.XID, g.ID, reason)
		if w.Desktop != oldDesktop {
			s.host.SetDesktop(w, oldDesktop)
		}
		if w.Frame != oldFrame {
			s.host.SetFrameGeometry(w, oldFrame)
		}
		if w.Shade != oldShade {
			s.host.SetShade(w, oldShade)
		}
		if w.NoBorder != oldNoBorder {
			s.host.SetNoBorder(w, oldNoBorder)
		}
		return false
	}

	// Tabs live in the decoration.
	if w.NoBorder {
		s.host.SetNoBorder(w, false)
		if w.NoBorder {
			return restore("window cannot be decorated")
		}
	}
	if w.Shade != cur.Shade {
		s.host.SetShade(w, cur.Shade)
		if w.Shade != cur.Shade {
			return restore("shade mode mismatch")
		}
	}
	if w.Frame != cur.Frame {
		s.host.SetFrameGeometry(w, cur.Frame)
		if w.Frame != cur.Frame {
			return restore("geometry mismatch")
		}
	}
	if w.Desktop != cur.Desktop {
		s.host.SetDesktop(w, cur.Desktop)
		if w.Desktop != cur.Desktop {
			return restore("desktop mismatch")
		}
	}

	if old := s.groups[w.TabGroup]; old != nil {
		s.detach(old, w, geom.Rect{}, false)
	}
	index = max(0, min(index, len(g.members)))
	g.members = slices.Insert(g.members, index, w.ID)
	w.TabGroup = g.ID
	s.UpdateSizeLimits(g)
	s.UpdateStates(cur, StateAll&^(StateGeometry|StateDesktop|StateShaded), w)

	if becomeVisible {
		s.SetCurrent(w, true)
	} else {
		s.host.SetShown(w, false)
	}
	return true
}

// AddNextTo inserts w next to other, creating a group for other when needed.
func (s *Synchronizer) AddNextTo(w, other *window.Window, after, becomeVisible bool) bool {
	if w == other {
		return false
	}
	g := s.NewGroup(other)
	index := g.Index(other.ID)
	if after {
		index++
	}
	return s.Add(g, w, index, becomeVisible)
}

// Remove takes w out of its group. A non-empty newGeometry is applied to w
// afterwards. singleton gives w a fresh group of its own. A group that drops
// to a single member dissolves.
func (s *Synchronizer) Remove(w *window.Window, newGeometry geom.Rect, singleton bool) bool {
	g := s.groups[w.TabGroup]
	if g == nil || !g.Contains(w.ID) {
		return false
	}
	s.detach(g, w, newGeometry, singleton)
	return true
}

func (s *Synchronizer) detach(g *Group, w *window.Window, newGeometry geom.Rect, singleton bool) {
	index := g.Index(w.ID)
	wasActive := s.host.IsActive(w)
	g.members = slices.Delete(g.members, index, index+1)
	w.TabGroup = window.NoTabGroup

	if g.current == w.ID && len(g.members) > 0 {
		next := s.window(g.members[min(index, len(g.members)-1)])
		g.current = next.ID
		s.host.SetShown(next, true)
		if wasActive {
			s.host.Activate(next)
		}
	}
	if len(g.members) <= 1 {
		if len(g.members) == 1 {
			if last := s.window(g.members[0]); last != nil {
				last.TabGroup = window.NoTabGroup
				s.host.SetShown(last, true)
			}
		}
		delete(s.groups, g.ID)
	} else {
		s.UpdateSizeLimits(g)
	}

	s.host.SetShown(w, true)
	if !newGeometry.IsEmpty() {
		s.host.SetFrameGeometry(w, newGeometry)
	}
	if singleton {
		s.NewGroup(w)
	}
}

// SetCurrent shows w and hides the other members. Focus follows when the
// previous current member was active.
func (s *Synchronizer) SetCurrent(w *window.Window, force bool) {
	g := s.groups[w.TabGroup]
	if g == nil || (g.current == w.ID && !force) {
		return
	}
	prev := s.window(g.current)
	g.current = w.ID
	s.host.SetShown(w, true)
	for _, m := range s.Windows(g) {
		if m != w {
			s.host.SetShown(m, false)
		}
	}
	if prev != nil && prev != w && s.host.IsActive(prev) {
		s.host.Activate(w)
	}
}

// ActivateNext makes the member after the current one current, wrapping.
func (s *Synchronizer) ActivateNext(g *Group) { s.cycle(g, 1) }

// ActivatePrev makes the member before the current one current, wrapping.
func (s *Synchronizer) ActivatePrev(g *Group) { s.cycle(g, -1) }

func (s *Synchronizer) cycle(g *Group, step int) {
	if g == nil || len(g.members) < 2 {
		return
	}
	n := len(g.members)
	i := (g.Index(g.current) + step + n) % n
	if w := s.window(g.members[i]); w != nil {
		s.SetCurrent(w, false)
	}
}

// Move reorders w to sit before index within its group.
func (s *Synchronizer) Move(w *window.Window, index int) bool {
	g := s.groups[w.TabGroup]
	if g == nil {
		return false
	}
	from := g.Index(w.ID)
	g.members = slices.Delete(g.members, from, from+1)
	if index > from {
		index--
	}
	index = max(0, min(index, len(g.members)))
	g.members = slices.Insert(g.members, index, w.ID)
	return true
}

// CloseAll asks every member to close.
func (s *Synchronizer) CloseAll(g *Group) {
	for _, w := range s.Windows(g) {
		if w.Closeable {
			s.host.Close(w)
		}
	}
}

// UpdateStates copies the selected properties of main to the other members,
// or only to only when it is not nil. Members whose geometry or desktop still
// differ afterwards are removed from the group once the scan is done.
func (s *Synchronizer) UpdateStates(main *window.Window, states State, only *window.Window) {
	g := s.groups[main.TabGroup]
	if g == nil {
		return
	}
	if g.blocked > 0 {
		g.pending |= states
		return
	}
	targets := s.Windows(g)
	if only != nil {
		targets = []*window.Window{only}
	}
	var broken []*window.Window
	for _, c := range targets {
		if c == main {
			continue
		}
		if states&StateMinimized != 0 && c.Minimized != main.Minimized {
			s.host.SetMinimized(c, main.Minimized)
		}
		// Quick tile and maximize each recompute geometry, so they run
		// before the geometry is copied.
		if states&StateQuickTile != 0 && c.QuickTile != main.QuickTile {
			s.host.SetQuickTile(c, main.QuickTile)
		}
		if states&StateMaximized != 0 && c.Maximize != main.Maximize {
			s.host.Maximize(c, main.Maximize)
		}
		if states&StateGeometry != 0 && c.Frame != main.Frame {
			s.host.SetFrameGeometry(c, main.Frame)
		}
		if states&StateShaded != 0 && c.Shade != main.Shade {
			s.host.SetShade(c, main.Shade)
		}
		if states&StateDesktop != 0 && c.Desktop != main.Desktop {
			s.host.SetDesktop(c, main.Desktop)
		}
		if states&StateActivity != 0 && !slices.Equal(c.Activities, main.Activities) {
			s.host.SetActivities(c, main.Activities)
		}
		if states&StateLayer != 0 {
			if c.KeepAbove != main.KeepAbove {
				s.host.SetKeepAbove(c, main.KeepAbove)
			}
			if c.KeepBelow != main.KeepBelow {
				s.host.SetKeepBelow(c, main.KeepBelow)
			}
		}
		if (states&StateGeometry != 0 && c.Frame != main.Frame) ||
			(states&StateDesktop != 0 && c.Desktop != main.Desktop) {
			broken = append(broken, c)
		}
	}
	for _, c := range broken {
		log.Printf("tabgroup: %#x cannot follow group %d, removing it", c.XID, g.ID)
		s.Remove(c, geom.Rect{}, false)
	}
}

// StateBatch defers UpdateStates calls for a group until Release.
type StateBatch struct {
	s        *Synchronizer
	g        *Group
	released bool
}

// Block defers state propagation for g. Batches nest; the outermost
// Release propagates everything collected from the current member once.
func (s *Synchronizer) Block(g *Group) *StateBatch {
	if g == nil {
		return &StateBatch{released: true}
	}
	g.blocked++
	return &StateBatch{s: s, g: g}
}

// Release closes the batch. Releasing twice is a no-op.
func (b *StateBatch) Release() {
	if b == nil || b.released {
		return
	}
	b.released = true
	g := b.g
	g.blocked--
	if g.blocked > 0 || g.pending == 0 {
		return
	}
	pending := g.pending
	g.pending = 0
	if _, alive := b.s.groups[g.ID]; !alive {
		return
	}
	if cur := b.s.CurrentWindow(g); cur != nil {
		b.s.UpdateStates(cur, pending, nil)
	}
}

// UpdateSizeLimits combines the size limits of all members and fits the
// group geometry into them. Call it when a member's size hints change.
func (s *Synchronizer) UpdateSizeLimits(g *Group) {
	members := s.Windows(g)
	if len(members) == 0 {
		return
	}
	g.minSize = geom.Size{}
	g.maxSize = geom.Size{Width: window.MaxDimension, Height: window.MaxDimension}
	for _, m := range members {
		g.minSize = g.minSize.ExpandedTo(m.Hints.Min)
		g.maxSize = g.maxSize.BoundedTo(m.Hints.Max)
	}
	// Incompatible members: the maximum gives way.
	g.maxSize = g.maxSize.ExpandedTo(g.minSize)

	cur := s.CurrentWindow(g)
	if cur == nil || cur.IsShade() {
		return
	}
	client := cur.FrameSizeToClientSize(cur.Frame.Size())
	fitted := client.ExpandedTo(g.minSize).BoundedTo(g.maxSize)
	if fitted == client {
		return
	}
	frame := cur.Frame.Resized(cur.ClientSizeToFrameSize(fitted))
	for _, m := range members {
		s.host.SetFrameGeometry(m, frame)
	}
}

// FindAutogroupTarget returns the window a newly managed w should be tabbed
// to: a member of the group linked by key, or, when bySimilarity is set, a
// window of the same class on the same desktop.
func (s *Synchronizer) FindAutogroupTarget(w *window.Window, key string, bySimilarity bool) *window.Window {
	if g := s.ByKey(key); g != nil {
		return s.CurrentWindow(g)
	}
	if !bySimilarity {
		return nil
	}
	all := s.arena.All()
	for i := len(all) - 1; i >= 0; i-- {
		c := all[i]
		if c == w || c.Kind != window.KindNormal || c.Minimized {
			continue
		}
		if c.ResourceClass == w.ResourceClass && c.ResourceName == w.ResourceName && c.IsOnDesktop(w.Desktop) {
			if g := s.groups[c.TabGroup]; g != nil {
				return s.CurrentWindow(g)
			}
			return c
		}
	}
	return nil
}
