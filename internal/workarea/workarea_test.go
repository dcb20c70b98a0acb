package workarea

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
)

var singleScreen = []geom.Rect{{Width: 1920, Height: 1080}}

func panel(desktop int, strut *ewmh.WmStrutPartial, frame geom.Rect) *window.Window {
	w := window.New(0x100, window.KindDock, frame, desktop)
	w.Strut = window.StrutFromPartial(strut)
	return w
}

func TestRecompute_BottomPanelShrinksAreas(t *testing.T) {
	tr := NewTracker(singleScreen, 2)
	p := panel(window.OnAllDesktops, &ewmh.WmStrutPartial{Bottom: 40, BottomStartX: 0, BottomEndX: 1919},
		geom.Rect{Y: 1040, Width: 1920, Height: 40})

	called := false
	if !tr.Recompute([]*window.Window{p}, func() {
		called = true
		if !tr.InUpdate() {
			t.Errorf("expected InUpdate during reposition")
		}
		if len(tr.PreviousRestrictedMoveArea(1, window.StrutAreaAll)) != 0 {
			t.Errorf("expected no previous struts")
		}
	}) {
		t.Fatalf("expected first recompute to report a change")
	}
	if !called {
		t.Fatalf("expected reposition callback")
	}

	want := geom.Rect{Width: 1920, Height: 1040}
	for d := 1; d <= 2; d++ {
		if got := tr.ClientArea(WorkArea, 0, d); got != want {
			t.Fatalf("desktop %d: expected work area %v, got %v", d, want, got)
		}
		if got := tr.ClientArea(MaximizeArea, 0, d); got != want {
			t.Fatalf("desktop %d: expected maximize area %v, got %v", d, want, got)
		}
	}
	if got := tr.ClientArea(MovementArea, 0, 1); got != singleScreen[0] {
		t.Fatalf("expected movement area to ignore struts, got %v", got)
	}
	struts := tr.RestrictedMoveArea(1, window.StrutAreaBottom)
	if len(struts) != 1 || struts[0].Rect != (geom.Rect{Y: 1040, Width: 1920, Height: 40}) {
		t.Fatalf("unexpected restricted move area %v", struts)
	}
	if len(tr.RestrictedMoveArea(1, window.StrutAreaTop)) != 0 {
		t.Fatalf("expected no top struts")
	}

	if tr.Recompute([]*window.Window{p}, func() { t.Fatalf("unexpected reposition") }) {
		t.Fatalf("expected unchanged recompute to report no change")
	}
}

func TestRecompute_StrutOnlyOnItsDesktop(t *testing.T) {
	tr := NewTracker(singleScreen, 2)
	p := panel(2, &ewmh.WmStrutPartial{Left: 50, LeftStartY: 0, LeftEndY: 1079}, geom.Rect{Width: 50, Height: 1080})
	tr.Recompute([]*window.Window{p}, nil)

	if got := tr.ClientArea(WorkArea, 0, 1); got != singleScreen[0] {
		t.Fatalf("expected desktop 1 untouched, got %v", got)
	}
	if got := tr.ClientArea(WorkArea, 0, 2); got != (geom.Rect{X: 50, Width: 1870, Height: 1080}) {
		t.Fatalf("expected left strut on desktop 2, got %v", got)
	}
}

func TestRecompute_PreviousStrutsVisibleDuringUpdate(t *testing.T) {
	tr := NewTracker(singleScreen, 1)
	small := panel(1, &ewmh.WmStrutPartial{Top: 20, TopStartX: 0, TopEndX: 1919}, geom.Rect{Width: 1920, Height: 20})
	tr.Recompute([]*window.Window{small}, nil)

	small.Strut = window.StrutFromPartial(&ewmh.WmStrutPartial{Top: 30, TopStartX: 0, TopEndX: 1919})
	var prev []window.StrutRect
	tr.Recompute([]*window.Window{small}, func() {
		prev = tr.PreviousRestrictedMoveArea(1, window.StrutAreaTop)
	})
	if len(prev) != 1 || prev[0].Height != 20 {
		t.Fatalf("expected previous 20px strut, got %v", prev)
	}
	if len(tr.PreviousRestrictedMoveArea(1, window.StrutAreaTop)) != 0 {
		t.Fatalf("expected previous struts to be cleared after the update")
	}
}

func TestRecompute_MultiScreen(t *testing.T) {
	screens := []geom.Rect{
		{Width: 1920, Height: 1080},
		{X: 1920, Width: 1280, Height: 1024},
	}
	tr := NewTracker(screens, 1)

	// A bottom panel on the shorter right screen, expressed against the full
	// display height, leaves a reserved band below that screen.
	p := panel(1, &ewmh.WmStrutPartial{Bottom: 86, BottomStartX: 1920, BottomEndX: 3199},
		geom.Rect{X: 1920, Y: 994, Width: 1280, Height: 30})
	p.Screen = 1
	tr.Recompute([]*window.Window{p}, nil)

	if got := tr.ClientArea(WorkArea, 0, 1); got != tr.FullGeometry() {
		t.Fatalf("expected offscreen strut to leave the work area alone, got %v", got)
	}
	if got := tr.ClientArea(MaximizeArea, 1, 1); got != (geom.Rect{X: 1920, Width: 1280, Height: 994}) {
		t.Fatalf("expected right screen maximize area above the panel, got %v", got)
	}
	if got := tr.ClientArea(MaximizeArea, 0, 1); got != screens[0] {
		t.Fatalf("expected left screen untouched, got %v", got)
	}
	if got := tr.ScreenAt(geom.Point{X: 2000, Y: 10}); got != 1 {
		t.Fatalf("expected screen 1, got %d", got)
	}
}

func TestSetScreens_PreviousSizesDuringUpdate(t *testing.T) {
	tr := NewTracker(singleScreen, 1)
	tr.Recompute(nil, nil)

	tr.SetScreens([]geom.Rect{{Width: 1280, Height: 720}})
	var prev []geom.Rect
	if !tr.Recompute(nil, func() { prev = tr.PreviousScreenSizes() }) {
		t.Fatalf("expected a screen change to trigger repositioning")
	}
	if len(prev) != 1 || prev[0] != singleScreen[0] {
		t.Fatalf("expected previous screen sizes, got %v", prev)
	}
	if got := tr.PreviousScreenSizes(); got[0].Width != 1280 {
		t.Fatalf("expected current sizes outside an update, got %v", got)
	}
}

func TestClientArea_BeforeFirstRecompute(t *testing.T) {
	tr := NewTracker(singleScreen, 3)
	for _, opt := range []AreaOption{PlacementArea, MaximizeArea, WorkArea, FullArea, ScreenArea} {
		if got := tr.ClientArea(opt, 0, 2); got != singleScreen[0] {
			t.Fatalf("%v: expected screen geometry fallback, got %v", opt, got)
		}
	}
}

func TestParseAreaOption(t *testing.T) {
	for opt := range areaNames {
		got, err := ParseAreaOption(opt.String())
		if err != nil || got != opt {
			t.Fatalf("expected %v, got %v (%v)", opt, got, err)
		}
	}
	if _, err := ParseAreaOption("nope"); err == nil {
		t.Fatalf("expected error")
	}
}
