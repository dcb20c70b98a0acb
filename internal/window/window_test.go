package window

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/timestamp"
)

func TestNormalizeHints_BaseIsFallbackForMin(t *testing.T) {
	h := NormalizeHints(&icccm.NormalHints{
		Flags:      icccm.SizeHintPBaseSize | icccm.SizeHintPResizeInc,
		BaseWidth:  20,
		BaseHeight: 10,
		WidthInc:   0,
		HeightInc:  7,
	})
	if h.Min != (geom.Size{Width: 20, Height: 10}) {
		t.Fatalf("expected min to fall back to base, got %v", h.Min)
	}
	if h.Increment != (geom.Size{Width: 1, Height: 7}) {
		t.Fatalf("expected increments clamped to >= 1, got %v", h.Increment)
	}
	if h.Max != (geom.Size{Width: MaxDimension, Height: MaxDimension}) {
		t.Fatalf("expected unlimited max, got %v", h.Max)
	}
	if h.IncrementBase() != h.Base || h.AspectBase() != h.Base {
		t.Fatalf("expected base size to drive increments and aspect")
	}
}

func TestNormalizeHints_AspectAndMinWithoutBase(t *testing.T) {
	h := NormalizeHints(&icccm.NormalHints{
		Flags:        icccm.SizeHintPMinSize | icccm.SizeHintPAspect,
		MinWidth:     200,
		MinHeight:    150,
		MinAspectNum: 4,
		MinAspectDen: 0,
		MaxAspectNum: 16,
		MaxAspectDen: 9,
	})
	if !h.HasAspect || h.MinAspect != (geom.Size{Width: 4, Height: 1}) {
		t.Fatalf("expected zero denominator clamped to 1, got %v", h.MinAspect)
	}
	if h.IncrementBase() != (geom.Size{Width: 200, Height: 150}) {
		t.Fatalf("expected min size as increment base, got %v", h.IncrementBase())
	}
	if h.AspectBase() != (geom.Size{}) {
		t.Fatalf("expected no aspect base without base size, got %v", h.AspectBase())
	}
}

func TestWindow_Capabilities(t *testing.T) {
	w := New(1, KindNormal, geom.Rect{Width: 100, Height: 100}, 1)
	if !w.IsResizable() || !w.IsMaximizable() || !w.IsMovable() {
		t.Fatalf("expected a default normal window to be resizable, maximizable and movable")
	}

	w.Hints.Min = geom.Size{Width: 300, Height: 200}
	w.Hints.Max = w.Hints.Min
	if w.IsResizable() {
		t.Fatalf("expected fixed-size window to be non resizable")
	}

	dock := New(2, KindDock, geom.Rect{Width: 100, Height: 30}, OnAllDesktops)
	if dock.IsMovable() || dock.IsResizable() || dock.IsPlaceable() {
		t.Fatalf("expected dock to be fixed in place")
	}
	if !dock.IsOnDesktop(3) {
		t.Fatalf("expected sticky dock to be on every desktop")
	}

	tb := New(3, KindToolbar, geom.Rect{Width: 100, Height: 30}, 1)
	if !tb.IsMovable() || tb.IsMaximizable() {
		t.Fatalf("expected toolbar movable but not maximizable")
	}
}

func TestStrut_PartialAndLegacy(t *testing.T) {
	display := geom.Size{Width: 1920, Height: 1080}
	s := StrutFromPartial(&ewmh.WmStrutPartial{Bottom: 30, BottomStartX: 0, BottomEndX: 1919})
	r := s.Rect(StrutAreaBottom, display)
	if r.Rect != (geom.Rect{X: 0, Y: 1050, Width: 1920, Height: 30}) || r.Area != StrutAreaBottom {
		t.Fatalf("unexpected bottom strut rect %v", r)
	}
	if len(s.Rects(display)) != 1 {
		t.Fatalf("expected only one edge")
	}

	legacy := StrutFromLegacy(&ewmh.WmStrut{Left: 40}, display)
	if got := legacy.Rect(StrutAreaLeft, display).Rect; got != (geom.Rect{X: 0, Y: 0, Width: 40, Height: 1080}) {
		t.Fatalf("unexpected legacy left strut %v", got)
	}
}

type recordingSink struct {
	applied []geom.Rect
}

func (s *recordingSink) ApplyFrameGeometry(_ *Window, frame geom.Rect) {
	s.applied = append(s.applied, frame)
}

func TestGeometryBatch_AppliesOnceOnOutermostRelease(t *testing.T) {
	sink := &recordingSink{}
	w := New(1, KindNormal, geom.Rect{Width: 100, Height: 100}, 1)
	w.AttachSink(sink)

	outer := w.BlockGeometryUpdates()
	w.SetFrameGeometry(geom.Rect{X: 10, Width: 100, Height: 100}, false)
	inner := w.BlockGeometryUpdates()
	w.SetFrameGeometry(geom.Rect{X: 20, Width: 120, Height: 100}, false)
	inner.Release()
	if len(sink.applied) != 0 {
		t.Fatalf("expected no delivery before the outer release, got %v", sink.applied)
	}
	outer.Release()
	outer.Release()

	if len(sink.applied) != 1 {
		t.Fatalf("expected exactly one delivery, got %d", len(sink.applied))
	}
	if sink.applied[0] != (geom.Rect{X: 20, Width: 120, Height: 100}) {
		t.Fatalf("expected final geometry, got %v", sink.applied[0])
	}

	w.SetFrameGeometry(w.Frame, false)
	if len(sink.applied) != 1 {
		t.Fatalf("expected unchanged geometry to be skipped")
	}
	w.SetFrameGeometry(w.Frame, true)
	if len(sink.applied) != 2 {
		t.Fatalf("expected forced geometry to be delivered")
	}
}

func TestArena_GroupsAndStacking(t *testing.T) {
	a := NewArena()
	w1 := New(10, KindNormal, geom.Rect{}, 1)
	w2 := New(11, KindNormal, geom.Rect{}, 1)
	id1 := a.Insert(w1)
	id2 := a.Insert(w2)
	if id1 == NoID || id1 == id2 {
		t.Fatalf("expected distinct ids, got %d %d", id1, id2)
	}

	g1 := a.JoinGroup(w1, 0x400)
	g2 := a.JoinGroup(w2, 0x400)
	if g1 != g2 || len(g1.Members) != 2 {
		t.Fatalf("expected shared group with 2 members")
	}

	a.Lower(id2)
	if all := a.All(); all[0] != w2 || all[1] != w1 {
		t.Fatalf("expected w2 at the bottom")
	}

	w2.TransientFor = id1
	a.Remove(id1)
	if w2.TransientFor != NoID {
		t.Fatalf("expected dangling transient link to be cleared")
	}
	if a.Get(id1) != nil || a.Len() != 1 {
		t.Fatalf("expected window to be removed")
	}
	if a.ByXID(11) != w2 {
		t.Fatalf("expected lookup by xid")
	}
}

func TestGroup_UserTimeRatchet(t *testing.T) {
	g := newGroup(1, 0)
	for _, ts := range []timestamp.Time{100, 50, 300, timestamp.Unknown, 200} {
		prev := g.UserTime
		g.UpdateUserTime(ts, 1000)
		if prev.Known() && timestamp.Compare(g.UserTime, prev) == timestamp.Before {
			t.Fatalf("group time went backwards: %v -> %v", prev, g.UserTime)
		}
	}
	if g.UserTime != 300 {
		t.Fatalf("expected 300, got %v", g.UserTime)
	}
	g.UpdateUserTime(timestamp.Zero, 1000)
	if g.UserTime != 1000 {
		t.Fatalf("expected zero to mean now, got %v", g.UserTime)
	}
}
