package session

import (
	"sort"

	"github.com/KDE/kwin-sub007/internal/window"
)

// Pending holds the records of a loaded session that have not been claimed
// by a window yet.
type Pending struct {
	records []*Record
	// tabs maps a tab group key to the window that claimed it first.
	tabs map[string]window.ID
}

// NewPending prepares the records of s for matching.
func NewPending(s *Session) *Pending {
	p := &Pending{tabs: make(map[string]window.ID)}
	if s == nil {
		return p
	}
	for i := range s.Windows {
		rec := s.Windows[i]
		p.records = append(p.records, &rec)
	}
	return p
}

// Len is the number of unclaimed records.
func (p *Pending) Len() int { return len(p.records) }

// Take finds and removes the record for w. Windows with a session id
// match records with the same id and role; others match by resource
// name, class and client machine. The window kind has to agree in both
// cases.
func (p *Pending) Take(w *window.Window) *Record {
	for i, rec := range p.records {
		if !rec.kindMatches(w) || !rec.matches(w) {
			continue
		}
		p.records = append(p.records[:i], p.records[i+1:]...)
		return rec
	}
	return nil
}

func (r *Record) matches(w *window.Window) bool {
	if w.SessionID != "" {
		if r.SessionID != w.SessionID {
			return false
		}
		if w.Role != "" {
			return r.Role == w.Role
		}
		return r.Role == "" && r.ResourceName == w.ResourceName && r.ResourceClass == w.ResourceClass
	}
	return r.ResourceName == w.ResourceName &&
		r.ResourceClass == w.ResourceClass &&
		r.Machine == w.Machine
}

// LinkTab records that w restored rec and returns the window w has to be
// tabbed with, or NoID when w is the first of its tab group.
func (p *Pending) LinkTab(w *window.Window, rec *Record) window.ID {
	if rec == nil || rec.TabGroup == "" {
		return window.NoID
	}
	first, ok := p.tabs[rec.TabGroup]
	if !ok {
		p.tabs[rec.TabGroup] = w.ID
		return window.NoID
	}
	return first
}

// ForgetWindow drops tab links that point at a window that went away.
func (p *Pending) ForgetWindow(id window.ID) {
	for key, wid := range p.tabs {
		if wid == id {
			delete(p.tabs, key)
		}
	}
}

// StackingOrder sorts windows by the stacking index of their records,
// bottom first. Windows without a record keep their relative order above
// the restored ones.
func StackingOrder(ws []*window.Window, recs map[window.ID]*Record) []*window.Window {
	out := append([]*window.Window(nil), ws...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := recs[out[i].ID], recs[out[j].ID]
		switch {
		case ri == nil:
			return false
		case rj == nil:
			return true
		}
		return ri.StackingOrder < rj.StackingOrder
	})
	return out
}
