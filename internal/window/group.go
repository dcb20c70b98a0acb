package window

import (
	"slices"

	"github.com/KDE/kwin-sub007/internal/timestamp"
)

// Group collects the windows of one application (same client leader). Its
// user time only moves forward and serves as the fallback for members that
// have no usable timestamp of their own.
type Group struct {
	ID       GroupID
	Leader   uint32
	Members  []ID
	UserTime timestamp.Time
}

func newGroup(id GroupID, leader uint32) *Group {
	return &Group{ID: id, Leader: leader, UserTime: timestamp.Unknown}
}

// UpdateUserTime advances the group time. A zero t stands for "now".
func (g *Group) UpdateUserTime(t timestamp.Time, now timestamp.Time) {
	if t == timestamp.Zero {
		t = now
	}
	if t != timestamp.Unknown && (g.UserTime == timestamp.Zero || g.UserTime == timestamp.Unknown || t.NewerThan(g.UserTime)) {
		g.UserTime = t
	}
}

// Contains reports membership.
func (g *Group) Contains(id ID) bool { return slices.Contains(g.Members, id) }

func (g *Group) add(id ID) {
	if !g.Contains(id) {
		g.Members = append(g.Members, id)
	}
}

func (g *Group) remove(id ID) {
	g.Members = slices.DeleteFunc(g.Members, func(m ID) bool { return m == id })
}
