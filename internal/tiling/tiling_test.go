package tiling

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
)

type fakeHost struct {
	screens   []geom.Rect
	pointer   geom.Point
	ruleMax   func(window.MaximizeMode) window.MaximizeMode
	placed    int
	checked   int
	changed   []Property
	raised    int
	noBorders []bool
}

func newHost(screens ...geom.Rect) *fakeHost {
	if len(screens) == 0 {
		screens = []geom.Rect{{Width: 1000, Height: 800}}
	}
	return &fakeHost{screens: screens}
}

func (h *fakeHost) screenAt(p geom.Point) geom.Rect {
	for _, s := range h.screens {
		if s.Contains(p) {
			return s
		}
	}
	return h.screens[0]
}

func (h *fakeHost) ClientArea(_ workarea.AreaOption, w *window.Window) geom.Rect {
	return h.screenAt(w.Frame.Center())
}
func (h *fakeHost) ClientAreaAt(_ workarea.AreaOption, p geom.Point, _ int) geom.Rect {
	return h.screenAt(p)
}
func (h *fakeHost) Screens() []geom.Rect { return h.screens }
func (h *fakeHost) Pointer() geom.Point  { return h.pointer }
func (h *fakeHost) ConstrainFrameSize(w *window.Window, s geom.Size, _ window.SizeMode) geom.Size {
	return s.ExpandedTo(w.Hints.Min).BoundedTo(w.Hints.Max)
}
func (h *fakeHost) PlaceSmart(w *window.Window, area geom.Rect) {
	h.placed++
	c := area.Center()
	w.Move(geom.Point{X: c.X - w.Frame.Width/2, Y: c.Y - w.Frame.Height/2})
}
func (h *fakeHost) Place(w *window.Window, area geom.Rect) { h.PlaceSmart(w, area) }
func (h *fakeHost) CheckWorkspacePosition(*window.Window) { h.checked++ }
func (h *fakeHost) Raise(*window.Window)                  { h.raised++ }
func (h *fakeHost) SetNoBorder(w *window.Window, nb bool) {
	w.NoBorder = nb
	h.noBorders = append(h.noBorders, nb)
}
func (h *fakeHost) RuleMaximize(_ *window.Window, m window.MaximizeMode) window.MaximizeMode {
	if h.ruleMax != nil {
		return h.ruleMax(m)
	}
	return m
}
func (h *fakeHost) RulePosition(_ *window.Window, p geom.Point) geom.Point { return p }
func (h *fakeHost) RuleNoBorder(_ *window.Window, nb bool) bool           { return nb }
func (h *fakeHost) RuleFullscreen(_ *window.Window, fs bool) bool         { return fs }
func (h *fakeHost) RuleStrictGeometry(*window.Window) bool                { return true }
func (h *fakeHost) Changed(_ *window.Window, p Property)                  { h.changed = append(h.changed, p) }

func newWindow() *window.Window {
	return window.New(1, window.KindNormal, geom.Rect{X: 100, Y: 100, Width: 400, Height: 300}, 1)
}

func TestMaximizeRoundTrip(t *testing.T) {
	h := newHost()
	m := New(h, Options{})
	w := newWindow()
	before := w.Frame

	m.Maximize(w, window.MaximizeFull)
	if diff := cmp.Diff(geom.Rect{Width: 1000, Height: 800}, w.Frame); diff != "" {
		t.Fatalf("maximized geometry mismatch (-want +got):\n%s", diff)
	}
	if w.Maximize != window.MaximizeFull {
		t.Fatalf("expected full, got %v", w.Maximize)
	}
	m.Maximize(w, window.MaximizeRestore)
	if diff := cmp.Diff(before, w.Frame); diff != "" {
		t.Fatalf("restored geometry mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Property{PropMaximize, PropMaximize}, h.changed); diff != "" {
		t.Fatalf("change notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestVerticalThenHorizontalReusesRestoreHeight(t *testing.T) {
	h := newHost()
	m := New(h, Options{})
	w := newWindow()

	m.Maximize(w, window.MaximizeVertical)
	if diff := cmp.Diff(geom.Rect{X: 100, Width: 400, Height: 800}, w.Frame); diff != "" {
		t.Fatalf("vertical geometry mismatch (-want +got):\n%s", diff)
	}
	w.SetFrameGeometry(w.Frame.MovedTo(geom.Point{X: 200, Y: 0}), false)

	m.ChangeMaximize(w, true, false, false)
	if w.Maximize != window.MaximizeFull {
		t.Fatalf("expected full, got %v", w.Maximize)
	}
	want := geom.Rect{X: 200, Y: 100, Width: 400, Height: 300}
	if diff := cmp.Diff(want, w.GeomRestore); diff != "" {
		t.Fatalf("restore geometry mismatch (-want +got):\n%s", diff)
	}
	m.Maximize(w, window.MaximizeRestore)
	if diff := cmp.Diff(want, w.Frame); diff != "" {
		t.Fatalf("restored geometry mismatch (-want +got):\n%s", diff)
	}
}

func TestSwitchingAxisRestoresFirst(t *testing.T) {
	h := newHost()
	m := New(h, Options{})
	w := newWindow()

	m.Maximize(w, window.MaximizeVertical)
	m.Maximize(w, window.MaximizeHorizontal)
	if w.Maximize != window.MaximizeHorizontal {
		t.Fatalf("expected horizontal, got %v", w.Maximize)
	}
	if diff := cmp.Diff(geom.Rect{Y: 100, Width: 1000, Height: 300}, w.Frame); diff != "" {
		t.Fatalf("horizontal geometry mismatch (-want +got):\n%s", diff)
	}
}

func TestFullToVerticalUsesRestoreWidth(t *testing.T) {
	h := newHost()
	m := New(h, Options{})
	w := newWindow()

	m.Maximize(w, window.MaximizeFull)
	m.ChangeMaximize(w, true, false, false)
	if w.Maximize != window.MaximizeVertical {
		t.Fatalf("expected vertical, got %v", w.Maximize)
	}
	if diff := cmp.Diff(geom.Rect{X: 100, Width: 400, Height: 800}, w.Frame); diff != "" {
		t.Fatalf("geometry mismatch (-want +got):\n%s", diff)
	}
}

func TestMaximizeRefused(t *testing.T) {
	t.Run("fixed size", func(t *testing.T) {
		h := newHost()
		m := New(h, Options{})
		w := newWindow()
		w.Hints.Min = geom.Size{Width: 400, Height: 300}
		w.Hints.Max = geom.Size{Width: 400, Height: 300}
		m.Maximize(w, window.MaximizeFull)
		if w.Maximize != window.MaximizeRestore || len(h.changed) != 0 {
			t.Fatalf("expected refusal, got %v", w.Maximize)
		}
	})
	t.Run("rule forces restore", func(t *testing.T) {
		h := newHost()
		h.ruleMax = func(window.MaximizeMode) window.MaximizeMode { return window.MaximizeRestore }
		m := New(h, Options{})
		w := newWindow()
		m.Maximize(w, window.MaximizeFull)
		if w.Maximize != window.MaximizeRestore {
			t.Fatalf("expected restore, got %v", w.Maximize)
		}
	})
}

func TestRestoreWithoutStoredGeometry(t *testing.T) {
	h := newHost()
	m := New(h, Options{})
	w := newWindow()
	w.Frame = geom.Rect{Width: 1000, Height: 800}
	w.Maximize = window.MaximizeFull

	m.Maximize(w, window.MaximizeRestore)
	if w.Frame.Size() != (geom.Size{Width: 666, Height: 533}) {
		t.Fatalf("expected 666x533, got %v", w.Frame.Size())
	}
	if h.placed != 1 {
		t.Fatalf("expected placement, got %d", h.placed)
	}
	if w.GeomRestore != w.Frame {
		t.Fatalf("expected restore geometry %v, got %v", w.Frame, w.GeomRestore)
	}
}

func TestBorderlessMaximized(t *testing.T) {
	h := newHost()
	m := New(h, Options{BorderlessMaximized: true})
	w := newWindow()
	w.Borders = geom.Margins{Left: 2, Top: 20, Right: 2, Bottom: 2}

	m.Maximize(w, window.MaximizeFull)
	if !w.NoBorder {
		t.Fatalf("expected no border while maximized")
	}
	m.Maximize(w, window.MaximizeRestore)
	if w.NoBorder {
		t.Fatalf("expected border back after restore")
	}
}

func TestElectricBorderMaximizeMarksQuickTile(t *testing.T) {
	h := newHost()
	m := New(h, Options{ElectricBorderMaximize: true})
	w := newWindow()

	m.Maximize(w, window.MaximizeFull)
	if w.QuickTile != window.QuickTileMaximize {
		t.Fatalf("expected maximize tile, got %v", w.QuickTile)
	}
	m.Maximize(w, window.MaximizeRestore)
	if w.QuickTile != window.QuickTileNone {
		t.Fatalf("expected no tile, got %v", w.QuickTile)
	}
}

func TestQuickTileGeometry(t *testing.T) {
	area := geom.Rect{X: 10, Y: 20, Width: 1001, Height: 801}
	tests := []struct {
		mode     window.QuickTileMode
		expected geom.Rect
	}{
		{window.QuickTileLeft, geom.Rect{X: 10, Y: 20, Width: 500, Height: 801}},
		{window.QuickTileRight, geom.Rect{X: 510, Y: 20, Width: 501, Height: 801}},
		{window.QuickTileTop, geom.Rect{X: 10, Y: 20, Width: 1001, Height: 400}},
		{window.QuickTileBottom, geom.Rect{X: 10, Y: 420, Width: 1001, Height: 401}},
		{window.QuickTileTop | window.QuickTileRight, geom.Rect{X: 510, Y: 20, Width: 501, Height: 400}},
		{window.QuickTileBottom | window.QuickTileLeft, geom.Rect{X: 10, Y: 420, Width: 500, Height: 401}},
		{window.QuickTileMaximize, area},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, QuickTileGeometry(tt.mode, area)); diff != "" {
				t.Fatalf("geometry mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQuickTileAndRestore(t *testing.T) {
	h := newHost()
	m := New(h, Options{})
	w := newWindow()
	before := w.Frame

	m.SetQuickTile(w, window.QuickTileLeft, true)
	if diff := cmp.Diff(geom.Rect{Width: 500, Height: 800}, w.Frame); diff != "" {
		t.Fatalf("tile geometry mismatch (-want +got):\n%s", diff)
	}
	if w.QuickTileRestore != before || w.GeomRestore != (geom.Rect{}) {
		t.Fatalf("expected tile restore %v and untouched maximize restore, got %v / %v", before, w.QuickTileRestore, w.GeomRestore)
	}
	m.SetQuickTile(w, window.QuickTileTop|window.QuickTileLeft, true)
	if w.QuickTileRestore != before {
		t.Fatalf("expected tile restore kept across tiles, got %v", w.QuickTileRestore)
	}
	m.SetQuickTile(w, window.QuickTileNone, true)
	if diff := cmp.Diff(before, w.Frame); diff != "" {
		t.Fatalf("untiled geometry mismatch (-want +got):\n%s", diff)
	}
	if h.checked != 1 {
		t.Fatalf("expected workspace position check, got %d", h.checked)
	}
}

func TestMaximizeRoundTripFromTile(t *testing.T) {
	h := newHost()
	m := New(h, Options{})
	w := newWindow()
	before := w.Frame

	m.SetQuickTile(w, window.QuickTileLeft, true)
	tiled := w.Frame
	if diff := cmp.Diff(geom.Rect{Width: 500, Height: 800}, tiled); diff != "" {
		t.Fatalf("tile geometry mismatch (-want +got):\n%s", diff)
	}

	m.Maximize(w, window.MaximizeFull)
	if diff := cmp.Diff(geom.Rect{Width: 1000, Height: 800}, w.Frame); diff != "" {
		t.Fatalf("maximized geometry mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tiled, w.GeomRestore); diff != "" {
		t.Fatalf("expected the tile as restore geometry (-want +got):\n%s", diff)
	}
	if w.QuickTileRestore != before {
		t.Fatalf("expected tile restore %v to survive the maximize, got %v", before, w.QuickTileRestore)
	}

	m.Maximize(w, window.MaximizeRestore)
	if diff := cmp.Diff(tiled, w.Frame); diff != "" {
		t.Fatalf("restored geometry mismatch (-want +got):\n%s", diff)
	}
	if h.placed != 0 {
		t.Fatalf("expected no placement fallback, got %d", h.placed)
	}
}

func TestQuickTileSameSideTogglesOnSingleScreen(t *testing.T) {
	h := newHost()
	m := New(h, Options{})
	w := newWindow()
	before := w.Frame

	m.SetQuickTile(w, window.QuickTileLeft, true)
	m.SetQuickTile(w, window.QuickTileLeft, true)
	if w.QuickTile != window.QuickTileNone || w.Frame != before {
		t.Fatalf("expected untiled at %v, got %v at %v", before, w.QuickTile, w.Frame)
	}
}

func TestQuickTileSameSideMovesToNextScreen(t *testing.T) {
	h := newHost(geom.Rect{Width: 1000, Height: 800}, geom.Rect{X: 1000, Width: 1000, Height: 800})
	m := New(h, Options{})
	w := newWindow()

	m.SetQuickTile(w, window.QuickTileRight, true)
	if diff := cmp.Diff(geom.Rect{X: 500, Width: 500, Height: 800}, w.Frame); diff != "" {
		t.Fatalf("tile geometry mismatch (-want +got):\n%s", diff)
	}
	m.SetQuickTile(w, window.QuickTileRight, true)
	if w.QuickTile != window.QuickTileLeft {
		t.Fatalf("expected left tile on the next screen, got %v", w.QuickTile)
	}
	if diff := cmp.Diff(geom.Rect{X: 1000, Width: 500, Height: 800}, w.Frame); diff != "" {
		t.Fatalf("tile geometry mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geom.Rect{X: 1100, Y: 100, Width: 400, Height: 300}, w.QuickTileRestore); diff != "" {
		t.Fatalf("restore mismatch (-want +got):\n%s", diff)
	}
}

func TestQuickTileMaximizedWindow(t *testing.T) {
	h := newHost()
	m := New(h, Options{})
	w := newWindow()
	before := w.Frame
	m.Maximize(w, window.MaximizeFull)

	m.SetQuickTile(w, window.QuickTileRight, true)
	if w.Maximize != window.MaximizeRestore || w.QuickTile != window.QuickTileRight {
		t.Fatalf("expected restored and tiled, got %v / %v", w.Maximize, w.QuickTile)
	}
	if w.QuickTileRestore != before {
		t.Fatalf("expected tile restore %v, got %v", before, w.QuickTileRestore)
	}
}

func TestQuickTileMaximizeToggles(t *testing.T) {
	h := newHost()
	m := New(h, Options{})
	w := newWindow()
	before := w.Frame

	m.SetQuickTile(w, window.QuickTileMaximize, true)
	if w.Maximize != window.MaximizeFull || w.QuickTile != window.QuickTileMaximize {
		t.Fatalf("expected maximized tile, got %v / %v", w.Maximize, w.QuickTile)
	}
	m.SetQuickTile(w, window.QuickTileMaximize, true)
	if w.Maximize != window.MaximizeRestore || w.Frame != before {
		t.Fatalf("expected restore to %v, got %v at %v", before, w.Maximize, w.Frame)
	}
}

func TestFullscreen(t *testing.T) {
	h := newHost(geom.Rect{Width: 1000, Height: 800}, geom.Rect{X: 1000, Width: 1000, Height: 800})
	m := New(h, Options{})
	w := newWindow()
	w.Shade = window.ShadeNormal
	before := w.Frame

	m.SetFullscreen(w, true, true)
	if !w.Fullscreen || w.Shade != window.ShadeNone {
		t.Fatalf("expected unshaded fullscreen")
	}
	if diff := cmp.Diff(geom.Rect{Width: 1000, Height: 800}, w.Frame); diff != "" {
		t.Fatalf("fullscreen geometry mismatch (-want +got):\n%s", diff)
	}
	if err := m.SetFullscreenMonitors(w, Monitors{Top: 0, Bottom: 0, Left: 0, Right: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(geom.Rect{Width: 2000, Height: 800}, w.Frame); diff != "" {
		t.Fatalf("monitor span mismatch (-want +got):\n%s", diff)
	}
	m.SetFullscreen(w, false, true)
	if diff := cmp.Diff(before, w.Frame); diff != "" {
		t.Fatalf("restored geometry mismatch (-want +got):\n%s", diff)
	}
	if err := m.SetFullscreenMonitors(w, Monitors{Right: 2}); err == nil {
		t.Fatalf("expected error for missing screen")
	}
}

func TestFullscreenRefusedForUserOnDock(t *testing.T) {
	h := newHost()
	m := New(h, Options{})
	w := window.New(2, window.KindDock, geom.Rect{Width: 1000, Height: 30}, 1)
	m.SetFullscreen(w, true, true)
	if w.Fullscreen {
		t.Fatalf("expected refusal")
	}
}

func TestCombiner(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewCombiner(time.Second)
	c.now = func() time.Time { return now }

	if got := c.Combine(window.QuickTileLeft); got != window.QuickTileLeft {
		t.Fatalf("expected left, got %v", got)
	}
	now = now.Add(500 * time.Millisecond)
	if got := c.Combine(window.QuickTileTop); got != window.QuickTileTop|window.QuickTileLeft {
		t.Fatalf("expected top-left, got %v", got)
	}
	now = now.Add(100 * time.Millisecond)
	if got := c.Combine(window.QuickTileBottom); got != window.QuickTileBottom {
		t.Fatalf("expected bottom after a combination, got %v", got)
	}
	now = now.Add(2 * time.Second)
	if got := c.Combine(window.QuickTileRight); got != window.QuickTileRight {
		t.Fatalf("expected right after timeout, got %v", got)
	}
	now = now.Add(100 * time.Millisecond)
	if got := c.Combine(window.QuickTileLeft); got != window.QuickTileLeft {
		t.Fatalf("expected left for same axis, got %v", got)
	}
}
