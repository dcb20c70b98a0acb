package session

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
)

func managed(arena *window.Arena, xid uint32, class string, frame geom.Rect) *window.Window {
	w := window.New(xid, window.KindNormal, frame, 1)
	w.ResourceName = class
	w.ResourceClass = class
	w.Managed = true
	arena.Insert(w)
	return w
}

func TestCaptureAndStore(t *testing.T) {
	arena := window.NewArena()
	a := managed(arena, 1, "konsole", geom.Rect{X: 0, Y: 0, Width: 400, Height: 300})
	a.Maximize = window.MaximizeVertical
	a.GeomRestore = geom.Rect{X: 0, Y: 100, Width: 400, Height: 300}
	a.KeepAbove = true
	b := managed(arena, 2, "konsole", geom.Rect{X: 10, Y: 10, Width: 400, Height: 300})
	b.Desktop = window.OnAllDesktops
	c := managed(arena, 3, "dolphin", geom.Rect{X: 500, Y: 0, Width: 300, Height: 300})
	c.QuickTile = window.QuickTileRight
	dock := window.New(4, window.KindDock, geom.Rect{Width: 1000, Height: 30}, 1)
	dock.Managed = true
	arena.Insert(dock)

	tabs := func(w *window.Window) (TabInfo, bool) {
		if w == a || w == b {
			return TabInfo{Key: "tabgroup-1", Current: w == a}, true
		}
		return TabInfo{}, false
	}
	sess := Capture("work", arena, c.ID, tabs)

	if got := len(sess.Windows); got != 3 {
		t.Fatalf("expected docks to be skipped, got %d records", got)
	}
	if sess.ID == "" {
		t.Fatalf("expected a session id")
	}
	ra, rb, rc := sess.Windows[0], sess.Windows[1], sess.Windows[2]
	if ra.TabGroup == "" || ra.TabGroup != rb.TabGroup {
		t.Fatalf("expected a shared tab key, got %q and %q", ra.TabGroup, rb.TabGroup)
	}
	if ra.TabGroup == "tabgroup-1" {
		t.Fatalf("expected the runtime key to be replaced")
	}
	if !ra.TabCurrent || rb.TabCurrent {
		t.Fatalf("expected only the first record to be current")
	}
	if ra.Maximize != "vertical" || !rb.OnAllDesktops || rc.QuickTile != "right" || !rc.Active {
		t.Fatalf("unexpected records: %+v %+v %+v", ra, rb, rc)
	}
	if rc.StackingOrder != 2 {
		t.Fatalf("expected stacking order 2, got %d", rc.StackingOrder)
	}

	store := NewStore(t.TempDir())
	if err := store.Write(sess); err != nil {
		t.Fatalf("write: %v", err)
	}
	names, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"work"}, names); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	back, err := store.Read("work")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff(sess.Windows, back.Windows); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if err := store.Delete("work"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Read("work"); err == nil {
		t.Fatalf("expected read after delete to fail")
	}
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"", "  ", "a/b", "..", "x..y"} {
		if err := ValidateName(name); err == nil {
			t.Errorf("expected %q to be rejected", name)
		}
	}
	if err := ValidateName("evening"); err != nil {
		t.Errorf("expected valid name, got %v", err)
	}
}

func TestPendingTake(t *testing.T) {
	sess := &Session{Windows: []Record{
		{SessionID: "sm1", Role: "editor", ResourceName: "kate", ResourceClass: "kate", Desktop: 2},
		{SessionID: "sm1", Role: "browser", ResourceName: "kate", ResourceClass: "kate", Desktop: 3},
		{ResourceName: "xterm", ResourceClass: "XTerm", Machine: "host", Desktop: 4},
		{ResourceName: "xterm", ResourceClass: "XTerm", Machine: "host", Kind: "dialog"},
	}}
	p := NewPending(sess)

	browser := window.New(1, window.KindNormal, geom.Rect{}, 1)
	browser.SessionID, browser.Role = "sm1", "browser"
	if rec := p.Take(browser); rec == nil || rec.Desktop != 3 {
		t.Fatalf("expected the browser record, got %+v", rec)
	}

	stranger := window.New(2, window.KindNormal, geom.Rect{}, 1)
	stranger.SessionID, stranger.Role = "sm2", "editor"
	if rec := p.Take(stranger); rec != nil {
		t.Fatalf("expected no record for another session id, got %+v", rec)
	}

	xterm := window.New(3, window.KindNormal, geom.Rect{}, 1)
	xterm.ResourceName, xterm.ResourceClass, xterm.Machine = "xterm", "XTerm", "host"
	if rec := p.Take(xterm); rec == nil || rec.Desktop != 4 {
		t.Fatalf("expected the normal xterm record, got %+v", rec)
	}
	if rec := p.Take(xterm); rec != nil {
		t.Fatalf("expected the dialog record not to match a normal window, got %+v", rec)
	}
	if got := p.Len(); got != 2 {
		t.Fatalf("expected 2 unclaimed records, got %d", got)
	}
}

func TestApplyRecord(t *testing.T) {
	rec := Record{
		Geometry:    geom.Rect{X: 5, Y: 6, Width: 700, Height: 500},
		GeomRestore: geom.Rect{X: 1, Y: 2, Width: 300, Height: 200},
		Maximize:    "full",
		QuickTile:   "top-left",
		Fullscreen:  true,
		Desktop:     3,
		Shaded:      true,
		Minimized:   true,
		KeepBelow:   true,
		Shortcut:    "Meta+E",
		Activities:  []string{"home"},
	}
	w := window.New(1, window.KindNormal, geom.Rect{}, 1)
	mode, tile, fs := rec.Apply(w)
	if mode != window.MaximizeFull || tile != window.QuickTileTop|window.QuickTileLeft || !fs {
		t.Fatalf("unexpected modes %v %v %v", mode, tile, fs)
	}
	if w.Frame != rec.Geometry || w.GeomRestore != rec.GeomRestore {
		t.Fatalf("expected geometry restored, got %v / %v", w.Frame, w.GeomRestore)
	}
	if w.Desktop != 3 || w.Shade != window.ShadeNormal || !w.Minimized || !w.KeepBelow || w.Shortcut != "Meta+E" {
		t.Fatalf("unexpected window state %+v", w)
	}
	rec.Activities[0] = "changed"
	if w.Activities[0] != "home" {
		t.Fatalf("expected activities to be copied")
	}
}

func TestLinkTabAndStacking(t *testing.T) {
	arena := window.NewArena()
	a := managed(arena, 1, "a", geom.Rect{})
	b := managed(arena, 2, "b", geom.Rect{})
	c := managed(arena, 3, "c", geom.Rect{})

	p := NewPending(nil)
	ra := &Record{TabGroup: "k", StackingOrder: 5}
	rb := &Record{TabGroup: "k", StackingOrder: 1}
	if got := p.LinkTab(a, ra); got != window.NoID {
		t.Fatalf("expected the first member to start the group, got %v", got)
	}
	if got := p.LinkTab(b, rb); got != a.ID {
		t.Fatalf("expected b to join a, got %v", got)
	}
	p.ForgetWindow(a.ID)
	if got := p.LinkTab(b, rb); got != window.NoID {
		t.Fatalf("expected a forgotten window to release its key, got %v", got)
	}

	order := StackingOrder([]*window.Window{a, b, c}, map[window.ID]*Record{a.ID: ra, b.ID: rb})
	got := []uint32{order[0].XID, order[1].XID, order[2].XID}
	if diff := cmp.Diff([]uint32{2, 1, 3}, got); diff != "" {
		t.Fatalf("stacking mismatch (-want +got):\n%s", diff)
	}
}
