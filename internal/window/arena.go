package window

import "slices"

// Arena owns every managed window of a workspace together with the
// application groups and the stacking order (bottom to top).
type Arena struct {
	slots    []*Window
	stacking []ID

	groups        map[GroupID]*Group
	groupByLeader map[uint32]GroupID
	nextGroup     GroupID
}

// NewArena returns an empty arena. Slot 0 stays unused so NoID never
// resolves to a window.
func NewArena() *Arena {
	return &Arena{
		slots:         []*Window{nil},
		groups:        make(map[GroupID]*Group),
		groupByLeader: make(map[uint32]GroupID),
	}
}

// Insert stores w, assigns its ID and puts it on top of the stack.
func (a *Arena) Insert(w *Window) ID {
	id := ID(len(a.slots))
	for i := 1; i < len(a.slots); i++ {
		if a.slots[i] == nil {
			id = ID(i)
			break
		}
	}
	w.ID = id
	if int(id) == len(a.slots) {
		a.slots = append(a.slots, w)
	} else {
		a.slots[id] = w
	}
	a.stacking = append(a.stacking, id)
	return id
}

// Remove drops a window, its group membership and its stacking slot.
// References held by other windows are cleared.
func (a *Arena) Remove(id ID) {
	w := a.Get(id)
	if w == nil {
		return
	}
	if g := a.groups[w.Group]; g != nil {
		g.remove(id)
		if len(g.Members) == 0 {
			delete(a.groups, g.ID)
			if a.groupByLeader[g.Leader] == g.ID {
				delete(a.groupByLeader, g.Leader)
			}
		}
	}
	for _, other := range a.slots {
		if other != nil && other.TransientFor == id {
			other.TransientFor = NoID
		}
	}
	a.stacking = slices.DeleteFunc(a.stacking, func(s ID) bool { return s == id })
	a.slots[id] = nil
}

// Get resolves an ID. It returns nil for NoID or a freed slot.
func (a *Arena) Get(id ID) *Window {
	if id <= NoID || int(id) >= len(a.slots) {
		return nil
	}
	return a.slots[id]
}

// ByXID finds a window by its protocol handle.
func (a *Arena) ByXID(xid uint32) *Window {
	for _, w := range a.slots {
		if w != nil && w.XID == xid {
			return w
		}
	}
	return nil
}

// Len is the number of managed windows.
func (a *Arena) Len() int { return len(a.stacking) }

// All returns the windows in stacking order, bottom first.
func (a *Arena) All() []*Window {
	out := make([]*Window, 0, len(a.stacking))
	for _, id := range a.stacking {
		out = append(out, a.slots[id])
	}
	return out
}

// StackingIndex returns the position of id in the stacking order, or -1.
func (a *Arena) StackingIndex(id ID) int { return slices.Index(a.stacking, id) }

// Raise moves id to the top of the stack.
func (a *Arena) Raise(id ID) {
	if a.StackingIndex(id) < 0 {
		return
	}
	a.stacking = slices.DeleteFunc(a.stacking, func(s ID) bool { return s == id })
	a.stacking = append(a.stacking, id)
}

// Lower moves id to the bottom of the stack.
func (a *Arena) Lower(id ID) {
	if a.StackingIndex(id) < 0 {
		return
	}
	a.stacking = slices.DeleteFunc(a.stacking, func(s ID) bool { return s == id })
	a.stacking = append([]ID{id}, a.stacking...)
}

// RestackAbove places id directly above ref.
func (a *Arena) RestackAbove(id, ref ID) {
	if id == ref || a.StackingIndex(id) < 0 || a.StackingIndex(ref) < 0 {
		return
	}
	a.stacking = slices.DeleteFunc(a.stacking, func(s ID) bool { return s == id })
	i := slices.Index(a.stacking, ref)
	a.stacking = slices.Insert(a.stacking, i+1, id)
}

// Group resolves a group ID.
func (a *Arena) Group(id GroupID) *Group { return a.groups[id] }

// JoinGroup puts w into the group of leader, creating it when needed. A zero
// leader gives the window a group of its own.
func (a *Arena) JoinGroup(w *Window, leader uint32) *Group {
	if old := a.groups[w.Group]; old != nil {
		if old.Leader == leader && leader != 0 {
			return old
		}
		old.remove(w.ID)
		if len(old.Members) == 0 {
			delete(a.groups, old.ID)
			if a.groupByLeader[old.Leader] == old.ID {
				delete(a.groupByLeader, old.Leader)
			}
		}
	}
	var g *Group
	if leader != 0 {
		g = a.groups[a.groupByLeader[leader]]
	}
	if g == nil {
		a.nextGroup++
		g = newGroup(a.nextGroup, leader)
		a.groups[g.ID] = g
		if leader != 0 {
			a.groupByLeader[leader] = g.ID
		}
	}
	g.add(w.ID)
	w.Group = g.ID
	return g
}

// MainWindows returns the windows w is transient for, following the chain.
func (a *Arena) MainWindows(w *Window) []*Window {
	var out []*Window
	seen := map[ID]bool{w.ID: true}
	for cur := a.Get(w.TransientFor); cur != nil && !seen[cur.ID]; cur = a.Get(cur.TransientFor) {
		seen[cur.ID] = true
		out = append(out, cur)
	}
	return out
}

// HasTransient reports whether t is a (possibly indirect) transient of w.
func (a *Arena) HasTransient(w, t *Window) bool {
	for _, m := range a.MainWindows(t) {
		if m.ID == w.ID {
			return true
		}
	}
	return false
}
