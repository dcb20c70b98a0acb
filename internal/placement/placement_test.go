package placement

import (
	"testing"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
)

type fakeHost struct {
	area      geom.Rect
	windows   []*window.Window
	mains     map[*window.Window][]*window.Window
	pointer   geom.Point
	rule      Policy
	maximized []*window.Window
	checked   []*window.Window
}

func newHost(windows ...*window.Window) *fakeHost {
	return &fakeHost{
		area:    geom.Rect{Width: 1000, Height: 800},
		windows: windows,
		mains:   map[*window.Window][]*window.Window{},
		rule:    Default,
	}
}

func (h *fakeHost) Windows() []*window.Window { return h.windows }
func (h *fakeHost) CurrentDesktop() int       { return 1 }
func (h *fakeHost) ClientArea(workarea.AreaOption, *window.Window) geom.Rect {
	return h.area
}
func (h *fakeHost) ClientAreaAt(workarea.AreaOption, geom.Point, int) geom.Rect {
	return h.area
}
func (h *fakeHost) ScreenAt(geom.Point) int { return 0 }
func (h *fakeHost) ScreensIntersecting(r geom.Rect) int {
	if h.area.Intersects(r) {
		return 1
	}
	return 0
}
func (h *fakeHost) MainWindows(w *window.Window) []*window.Window { return h.mains[w] }
func (h *fakeHost) Pointer() geom.Point                           { return h.pointer }
func (h *fakeHost) ConstrainFrameSize(w *window.Window, s geom.Size, _ window.SizeMode) geom.Size {
	return s.BoundedTo(w.ClientSizeToFrameSize(w.Hints.Max)).ExpandedTo(w.ClientSizeToFrameSize(w.Hints.Min))
}
func (h *fakeHost) Maximize(w *window.Window, mode window.MaximizeMode) {
	w.Maximize = mode
	h.maximized = append(h.maximized, w)
}
func (h *fakeHost) CheckWorkspacePosition(w *window.Window) { h.checked = append(h.checked, w) }
func (h *fakeHost) RulePlacement(*window.Window) Policy     { return h.rule }

func newWindow(xid uint32, r geom.Rect) *window.Window {
	return window.New(xid, window.KindNormal, r, 1)
}

func TestPolicyFromString(t *testing.T) {
	tests := []struct {
		in        string
		noSpecial bool
		want      Policy
	}{
		{in: "Smart", want: Smart},
		{in: "cascade", want: Cascade},
		{in: "under-mouse", want: UnderMouse},
		{in: "OnMainWindow", want: OnMainWindow},
		{in: "OnMainWindow", noSpecial: true, want: Smart},
		{in: "Default", noSpecial: true, want: Smart},
		{in: "bogus", want: Smart},
		{in: "NoPlacement", want: NoPlacement},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := PolicyFromString(tt.in, tt.noSpecial); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
	for p := NoPlacement; p <= Maximizing; p++ {
		if p == Unknown {
			continue
		}
		if got := PolicyFromString(p.String(), false); got != p {
			t.Fatalf("expected %v to round trip, got %v", p, got)
		}
	}
}

func TestPlaceSmart_AvoidsOverlap(t *testing.T) {
	existing := newWindow(1, geom.Rect{X: 0, Y: 0, Width: 400, Height: 300})
	w := newWindow(2, geom.Rect{Width: 300, Height: 200})
	h := newHost(existing, w)
	e := New(h, Options{Policy: Smart})

	e.Place(w, h.area)
	if w.Frame.Intersects(existing.Frame) {
		t.Fatalf("expected no overlap, got %v", w.Frame)
	}
	if w.Frame.Pos() != (geom.Point{X: 400, Y: 0}) {
		t.Fatalf("expected first free column 400,0, got %v", w.Frame.Pos())
	}
}

func TestPlaceSmart_KeepAboveWeighsMore(t *testing.T) {
	// The area only fits the new window in two spots, each overlapping one
	// of the existing windows by the same amount.
	above := newWindow(1, geom.Rect{X: 0, Y: 0, Width: 300, Height: 400})
	above.KeepAbove = true
	plain := newWindow(2, geom.Rect{X: 300, Y: 0, Width: 300, Height: 400})
	w := newWindow(3, geom.Rect{Width: 400, Height: 400})
	h := newHost(above, plain, w)
	h.area = geom.Rect{Width: 600, Height: 400}
	e := New(h, Options{Policy: Smart})

	e.Place(w, h.area)
	overlapAbove := geom.OverlapArea(w.Frame, above.Frame)
	overlapPlain := geom.OverlapArea(w.Frame, plain.Frame)
	if overlapAbove >= overlapPlain {
		t.Fatalf("expected less overlap with the keep-above window, got %d vs %d at %v", overlapAbove, overlapPlain, w.Frame)
	}
}

func TestPlaceSmart_IgnoresMinimizedAndDesktop(t *testing.T) {
	minimized := newWindow(1, geom.Rect{Width: 500, Height: 500})
	minimized.Minimized = true
	desk := window.New(2, window.KindDesktop, geom.Rect{Width: 1000, Height: 800}, window.OnAllDesktops)
	w := newWindow(3, geom.Rect{X: 50, Y: 50, Width: 200, Height: 200})
	h := newHost(desk, minimized, w)
	New(h, Options{Policy: Smart}).Place(w, h.area)
	if w.Frame.Pos() != (geom.Point{}) {
		t.Fatalf("expected top-left corner, got %v", w.Frame.Pos())
	}
}

func TestPlaceCascade_StepsPerDesktop(t *testing.T) {
	h := newHost()
	e := New(h, Options{Policy: Cascade})
	delta := geom.Point{X: 1000 / 48, Y: 800 / 48}

	var got []geom.Point
	for i := 0; i < 3; i++ {
		w := newWindow(uint32(i+1), geom.Rect{Width: 200, Height: 150})
		e.Place(w, h.area)
		got = append(got, w.Frame.Pos())
	}
	want := []geom.Point{{}, delta, {X: 2 * delta.X, Y: 2 * delta.Y}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("window %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	e.ReinitCascading(1)
	w := newWindow(9, geom.Rect{Width: 200, Height: 150})
	e.Place(w, h.area)
	if w.Frame.Pos() != (geom.Point{}) {
		t.Fatalf("expected cascade to restart, got %v", w.Frame.Pos())
	}
}

func TestPlace_CenteredZeroCorneredAndOSD(t *testing.T) {
	h := newHost()
	e := New(h, Options{Policy: Centered})
	w := newWindow(1, geom.Rect{Width: 200, Height: 100})
	e.Place(w, h.area)
	if w.Frame.Pos() != (geom.Point{X: 400, Y: 350}) {
		t.Fatalf("expected centered, got %v", w.Frame.Pos())
	}

	e.PlaceWith(w, h.area, ZeroCornered, Unknown)
	if w.Frame.Pos() != (geom.Point{}) {
		t.Fatalf("expected zero corner, got %v", w.Frame.Pos())
	}

	osd := window.New(2, window.KindOnScreenDisplay, geom.Rect{Width: 200, Height: 100}, 1)
	e.Place(osd, h.area)
	if osd.Frame.Pos() != (geom.Point{X: 400, Y: 800*2/3 - 50}) {
		t.Fatalf("expected OSD at two thirds, got %v", osd.Frame.Pos())
	}
}

func TestPlace_RuleOverridesKind(t *testing.T) {
	h := newHost()
	h.rule = NoPlacement
	w := window.New(1, window.KindOnScreenDisplay, geom.Rect{X: 7, Y: 9, Width: 200, Height: 100}, 1)
	New(h, Options{Policy: Centered}).Place(w, h.area)
	if w.Frame.Pos() != (geom.Point{X: 7, Y: 9}) {
		t.Fatalf("expected rule to leave the window alone, got %v", w.Frame.Pos())
	}
}

func TestPlaceUnderMouse_KeepsInArea(t *testing.T) {
	h := newHost()
	h.pointer = geom.Point{X: 990, Y: 10}
	w := newWindow(1, geom.Rect{Width: 200, Height: 100})
	New(h, Options{Policy: UnderMouse}).Place(w, h.area)
	if w.Frame != (geom.Rect{X: 800, Y: 0, Width: 200, Height: 100}) {
		t.Fatalf("expected window clamped to the area, got %v", w.Frame)
	}
}

func TestPlaceOnMainWindow(t *testing.T) {
	main := newWindow(1, geom.Rect{X: 100, Y: 100, Width: 400, Height: 400})
	dialog := window.New(2, window.KindDialog, geom.Rect{Width: 200, Height: 100}, 1)
	h := newHost(main, dialog)
	h.mains[dialog] = []*window.Window{main}
	e := New(h, Options{Policy: Smart})

	e.Place(dialog, h.area)
	if dialog.Frame.Center() != main.Frame.Center() {
		t.Fatalf("expected dialog centered on its main window, got %v", dialog.Frame)
	}

	second := newWindow(3, geom.Rect{X: 600, Y: 300, Width: 200, Height: 200})
	h.mains[dialog] = []*window.Window{main, second}
	e.Place(dialog, h.area)
	if dialog.Frame.Pos() != (geom.Point{X: 400, Y: 350}) {
		t.Fatalf("expected fallback to centered with two main windows, got %v", dialog.Frame)
	}
}

func TestPlaceMaximizing(t *testing.T) {
	h := newHost()
	e := New(h, Options{Policy: Maximizing})

	w := newWindow(1, geom.Rect{Width: 200, Height: 100})
	e.Place(w, h.area)
	if len(h.maximized) != 1 || w.Maximize != window.MaximizeFull {
		t.Fatalf("expected resizable window to be maximized")
	}

	small := newWindow(2, geom.Rect{Width: 200, Height: 100})
	small.Hints.Max = geom.Size{Width: 300, Height: 300}
	e.Place(small, h.area)
	if small.Frame.Size() != (geom.Size{Width: 300, Height: 300}) {
		t.Fatalf("expected window grown to its maximum size, got %v", small.Frame)
	}
	if small.Maximize != window.MaximizeRestore {
		t.Fatalf("expected bounded window not to be maximized")
	}
}

func TestPlaceRandom_StaysInArea(t *testing.T) {
	h := newHost()
	e := New(h, Options{Policy: Random})
	for i := 0; i < 50; i++ {
		w := newWindow(uint32(i+1), geom.Rect{Width: 300, Height: 200})
		e.Place(w, h.area)
		if !h.area.ContainsRect(w.Frame) {
			t.Fatalf("placement %d: %v outside %v", i, w.Frame, h.area)
		}
	}
}

func TestKeepInArea(t *testing.T) {
	h := newHost()
	e := New(h, Options{})

	w := newWindow(1, geom.Rect{X: 900, Y: -20, Width: 200, Height: 100})
	e.KeepInArea(w, h.area, false)
	if w.Frame != (geom.Rect{X: 800, Y: 0, Width: 200, Height: 100}) {
		t.Fatalf("expected window moved inside, got %v", w.Frame)
	}

	big := newWindow(2, geom.Rect{X: 10, Y: 10, Width: 1200, Height: 900})
	e.KeepInArea(big, h.area, false)
	if big.Frame != h.area {
		t.Fatalf("expected window shrunk to the area, got %v", big.Frame)
	}

	partial := newWindow(3, geom.Rect{X: 950, Y: 100, Width: 200, Height: 100})
	e.KeepInArea(partial, h.area, true)
	if partial.Frame.X != 900 {
		t.Fatalf("expected 100 pixels to stay inside the area, got %v", partial.Frame)
	}
}

func TestPackAndGrow(t *testing.T) {
	left := newWindow(1, geom.Rect{X: 0, Y: 100, Width: 200, Height: 200})
	w := newWindow(2, geom.Rect{X: 500, Y: 150, Width: 200, Height: 100})
	h := newHost(left, w)
	e := New(h, Options{})

	e.PackLeft(w)
	if w.Frame.X != 200 {
		t.Fatalf("expected window packed against its neighbour, got %v", w.Frame)
	}
	e.PackRight(w)
	if w.Frame.Right() != 1000 {
		t.Fatalf("expected window packed against the right edge, got %v", w.Frame)
	}
	e.PackUp(w)
	if w.Frame.Y != 0 {
		t.Fatalf("expected window packed to the top, got %v", w.Frame)
	}

	w.Move(geom.Point{X: 300, Y: 150})
	e.GrowHorizontal(w)
	if w.Frame.X != 300 || w.Frame.Right() != 1000 {
		t.Fatalf("expected right edge grown to the area edge, got %v", w.Frame)
	}
	e.GrowVertical(w)
	if w.Frame.Bottom() != 800 {
		t.Fatalf("expected bottom edge grown to the area edge, got %v", w.Frame)
	}
}
