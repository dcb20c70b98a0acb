// Package workarea aggregates the struts reserved by panels and docks into
// the usable area of every desktop and screen.
//
// Desktops are numbered from 1. Screens are indexed in the order they were
// handed to SetScreens.
package workarea

import (
	"fmt"
	"log"
	"slices"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
)

// AreaOption selects which area ClientArea returns.
type AreaOption int

const (
	// PlacementArea is where new windows are placed: the screen minus struts.
	PlacementArea AreaOption = iota
	// MovementArea bounds interactive moves and resizes: the whole screen.
	MovementArea
	// MaximizeArea is the screen minus struts.
	MaximizeArea
	// MaximizeFullArea is the whole screen, used when struts are ignored.
	MaximizeFullArea
	// FullScreenArea is the whole screen.
	FullScreenArea
	// WorkArea is the desktop-wide area minus struts, across all screens.
	WorkArea
	// FullArea is the bounding box of all screens.
	FullArea
	// ScreenArea is the whole screen.
	ScreenArea
)

var areaNames = map[AreaOption]string{
	PlacementArea:    "placement",
	MovementArea:     "movement",
	MaximizeArea:     "maximize",
	MaximizeFullArea: "maximize-full",
	FullScreenArea:   "fullscreen",
	WorkArea:         "work",
	FullArea:         "full",
	ScreenArea:       "screen",
}

func (o AreaOption) String() string {
	if s, ok := areaNames[o]; ok {
		return s
	}
	return fmt.Sprintf("area(%d)", int(o))
}

// ParseAreaOption parses the names produced by String.
func ParseAreaOption(s string) (AreaOption, error) {
	for o, name := range areaNames {
		if name == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown area %q", s)
}

// Tracker holds the per-desktop work areas, the per-desktop per-screen
// maximize areas and the strut rectangles that restrict interactive moves.
type Tracker struct {
	screens        []geom.Rect
	previousScreen []geom.Rect
	desktops       int
	current        int

	// Indexed by desktop; slot 0 is unused.
	workAreas   []geom.Rect
	screenAreas [][]geom.Rect
	restricted  [][]window.StrutRect

	oldRestricted  [][]window.StrutRect
	oldScreenAreas [][]geom.Rect
	inUpdate       bool
}

// NewTracker returns a tracker for the given screens and desktop count.
// Until the first Recompute every area falls back to the screen geometry.
func NewTracker(screens []geom.Rect, desktops int) *Tracker {
	t := &Tracker{current: 1}
	t.SetScreens(screens)
	t.SetDesktopCount(desktops)
	t.previousScreen = nil
	return t
}

// SetScreens replaces the screen layout. The old layout stays available
// through PreviousScreenSizes until the next Recompute finishes.
func (t *Tracker) SetScreens(screens []geom.Rect) {
	if t.previousScreen == nil {
		t.previousScreen = t.screens
	}
	t.screens = slices.Clone(screens)
}

// SetDesktopCount changes the number of desktops. Areas of new desktops
// stay empty until the next Recompute.
func (t *Tracker) SetDesktopCount(n int) {
	if n < 1 {
		n = 1
	}
	t.desktops = n
	t.workAreas = resize(t.workAreas, n+1)
	t.screenAreas = resize(t.screenAreas, n+1)
	t.restricted = resize(t.restricted, n+1)
	if t.current > n {
		t.current = n
	}
}

func resize[T any](s []T, n int) []T {
	if len(s) >= n {
		return s[:n]
	}
	return append(s, make([]T, n-len(s))...)
}

// SetCurrentDesktop records the desktop used when callers ask for areas of
// "the current desktop".
func (t *Tracker) SetCurrentDesktop(d int) {
	if d >= 1 && d <= t.desktops {
		t.current = d
	}
}

func (t *Tracker) CurrentDesktop() int { return t.current }
func (t *Tracker) DesktopCount() int   { return t.desktops }
func (t *Tracker) Screens() []geom.Rect {
	return slices.Clone(t.screens)
}

// FullGeometry is the bounding box of every screen.
func (t *Tracker) FullGeometry() geom.Rect {
	var full geom.Rect
	for i, s := range t.screens {
		if i == 0 {
			full = s
			continue
		}
		full = full.United(s)
	}
	return full
}

// DisplaySize is the size of the virtual screen, starting at the origin.
func (t *Tracker) DisplaySize() geom.Size {
	full := t.FullGeometry()
	return geom.Size{Width: full.Right(), Height: full.Bottom()}
}

// ScreenGeometry returns the geometry of screen i, or the full geometry for
// an out-of-range index.
func (t *Tracker) ScreenGeometry(i int) geom.Rect {
	if i < 0 || i >= len(t.screens) {
		return t.FullGeometry()
	}
	return t.screens[i]
}

// ScreenAt returns the screen containing p, or the screen whose center is
// closest to p.
func (t *Tracker) ScreenAt(p geom.Point) int {
	best, dist := 0, -1
	for i, s := range t.screens {
		if s.Contains(p) {
			return i
		}
		c := s.Center()
		d := abs(c.X-p.X) + abs(c.Y-p.Y)
		if dist < 0 || d < dist {
			best, dist = i, d
		}
	}
	return best
}

// ScreensIntersecting counts the screens overlapping r.
func (t *Tracker) ScreensIntersecting(r geom.Rect) int {
	n := 0
	for _, s := range t.screens {
		if s.Intersects(r) {
			n++
		}
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (t *Tracker) resolveDesktop(desktop int) int {
	if desktop == window.OnAllDesktops || desktop < 1 || desktop > t.desktops {
		return t.current
	}
	return desktop
}

// ClientArea returns the area selected by opt on the given screen and
// desktop. Desktop OnAllDesktops or 0 means the current desktop.
func (t *Tracker) ClientArea(opt AreaOption, screen, desktop int) geom.Rect {
	desktop = t.resolveDesktop(desktop)
	screenGeo := t.ScreenGeometry(screen)
	sarea := screenGeo
	if areas := t.screenAreas[desktop]; screen >= 0 && screen < len(areas) && !areas[screen].IsEmpty() {
		sarea = areas[screen]
	}
	warea := t.workAreas[desktop]
	if warea.IsEmpty() {
		warea = t.FullGeometry()
	}
	switch opt {
	case MaximizeArea, PlacementArea:
		return sarea
	case MaximizeFullArea, FullScreenArea, MovementArea, ScreenArea:
		return screenGeo
	case WorkArea:
		return warea
	case FullArea:
		return t.FullGeometry()
	}
	panic("workarea: invalid area option " + opt.String())
}

// ClientAreaAt is ClientArea for the screen containing p.
func (t *Tracker) ClientAreaAt(opt AreaOption, p geom.Point, desktop int) geom.Rect {
	return t.ClientArea(opt, t.ScreenAt(p), desktop)
}

// ClientAreaFor is ClientArea for the screen and desktop of w.
func (t *Tracker) ClientAreaFor(opt AreaOption, w *window.Window) geom.Rect {
	return t.ClientArea(opt, t.ScreenAt(w.Frame.Center()), w.Desktop)
}

// RestrictedMoveArea returns the strut rectangles of desktop whose edge is
// in areas.
func (t *Tracker) RestrictedMoveArea(desktop int, areas window.StrutArea) []window.StrutRect {
	return filterStruts(t.restricted, t.resolveDesktop(desktop), areas)
}

// PreviousRestrictedMoveArea is RestrictedMoveArea as it was before the
// Recompute in progress. Outside of a Recompute it is empty.
func (t *Tracker) PreviousRestrictedMoveArea(desktop int, areas window.StrutArea) []window.StrutRect {
	return filterStruts(t.oldRestricted, t.resolveDesktop(desktop), areas)
}

func filterStruts(all [][]window.StrutRect, desktop int, areas window.StrutArea) []window.StrutRect {
	if desktop >= len(all) {
		return nil
	}
	var out []window.StrutRect
	for _, r := range all[desktop] {
		if r.Area&areas != 0 {
			out = append(out, r)
		}
	}
	return out
}

// PreviousScreenArea is the maximize area of a screen before the Recompute
// in progress, falling back to the current one.
func (t *Tracker) PreviousScreenArea(screen, desktop int) geom.Rect {
	desktop = t.resolveDesktop(desktop)
	if desktop < len(t.oldScreenAreas) && screen >= 0 && screen < len(t.oldScreenAreas[desktop]) {
		return t.oldScreenAreas[desktop][screen]
	}
	return t.ClientArea(MaximizeArea, screen, desktop)
}

// PreviousScreenSizes returns the screen geometries from before the last
// SetScreens call while a Recompute is running, and the current ones
// otherwise.
func (t *Tracker) PreviousScreenSizes() []geom.Rect {
	if t.inUpdate && t.previousScreen != nil {
		return slices.Clone(t.previousScreen)
	}
	return t.Screens()
}

// InUpdate reports whether a Recompute is repositioning windows.
func (t *Tracker) InUpdate() bool { return t.inUpdate }

// AdjustedArea shrinks area by the struts of w. Strut rectangles are clipped
// to the screen w is on. When area is the full geometry, struts at screen
// edges that are inside the virtual screen are ignored, since the desktop
// wide work area cannot describe them.
func (t *Tracker) AdjustedArea(w *window.Window, area geom.Rect) geom.Rect {
	display := t.DisplaySize()
	screen := t.ScreenGeometry(w.Screen)
	left := w.Strut.Rect(window.StrutAreaLeft, display).Rect
	right := w.Strut.Rect(window.StrutAreaRight, display).Rect
	top := w.Strut.Rect(window.StrutAreaTop, display).Rect
	bottom := w.Strut.Rect(window.StrutAreaBottom, display).Rect

	if area == t.FullGeometry() {
		if left.X < screen.X {
			left = geom.Rect{}
		}
		if right.Right() > screen.Right() {
			right = geom.Rect{}
		}
		if top.Y < screen.Y {
			top = geom.Rect{}
		}
		if bottom.Bottom() > screen.Bottom() {
			bottom = geom.Rect{}
		}
	}

	if !left.IsEmpty() {
		left = geom.WithEdges(max(left.X, screen.X), left.Y, left.Right(), left.Bottom())
	}
	if !right.IsEmpty() {
		right = geom.WithEdges(right.X, right.Y, min(right.Right(), screen.Right()), right.Bottom())
	}
	if !top.IsEmpty() {
		top = geom.WithEdges(top.X, max(top.Y, screen.Y), top.Right(), top.Bottom())
	}
	if !bottom.IsEmpty() {
		bottom = geom.WithEdges(bottom.X, bottom.Y, bottom.Right(), min(bottom.Bottom(), screen.Bottom()))
	}

	r := area
	if left.Intersects(area) {
		r = geom.WithEdges(left.Right(), r.Y, r.Right(), r.Bottom())
	}
	if right.Intersects(area) {
		r = geom.WithEdges(r.X, r.Y, right.X, r.Bottom())
	}
	if top.Intersects(area) {
		r = geom.WithEdges(r.X, top.Bottom(), r.Right(), r.Bottom())
	}
	if bottom.Intersects(area) {
		r = geom.WithEdges(r.X, r.Y, r.Right(), bottom.Y)
	}
	return r
}

// hasOffscreenStrut reports whether some strut of w reserves space that no
// screen shows.
func (t *Tracker) hasOffscreenStrut(w *window.Window) bool {
	var region geom.Region
	for _, r := range w.Strut.Rects(t.DisplaySize()) {
		region = append(region, r.Rect)
	}
	for _, s := range t.screens {
		region = region.Subtract(s)
	}
	return !region.IsEmpty()
}

// Recompute rebuilds every area from the struts of windows. When anything
// changed it publishes the new areas and calls reposition while the
// previous strut rectangles and screen areas are still readable through the
// Previous* accessors. It reports whether anything changed.
func (t *Tracker) Recompute(windows []*window.Window, reposition func()) bool {
	full := t.FullGeometry()
	n := t.desktops

	workAreas := make([]geom.Rect, n+1)
	screenAreas := make([][]geom.Rect, n+1)
	restricted := make([][]window.StrutRect, n+1)
	for d := 1; d <= n; d++ {
		workAreas[d] = full
		screenAreas[d] = slices.Clone(t.screens)
	}

	for _, w := range windows {
		if !w.HasStrut() {
			continue
		}
		r := t.AdjustedArea(w, full)
		if r.IsEmpty() {
			continue
		}
		for _, s := range t.screens {
			if !r.Intersects(s) {
				log.Printf("workarea: strut of %#x would exclude screen %v, ignoring it", w.XID, s)
				r = full
				break
			}
		}

		clientScreen := t.ScreenGeometry(w.Screen)
		var struts []window.StrutRect
		for _, sr := range w.Strut.Rects(t.DisplaySize()) {
			sr.Rect = sr.Rect.Intersected(clientScreen)
			if !sr.IsEmpty() {
				struts = append(struts, sr)
			}
		}
		offscreen := t.hasOffscreenStrut(w)

		for d := 1; d <= n; d++ {
			if !w.IsOnDesktop(d) {
				continue
			}
			if !offscreen {
				workAreas[d] = workAreas[d].Intersected(r)
			}
			restricted[d] = append(restricted[d], struts...)
			for i, s := range t.screens {
				adjusted := screenAreas[d][i].Intersected(t.AdjustedArea(w, s))
				// A strut covering the whole screen would leave nothing to
				// maximize into.
				if !adjusted.IsEmpty() {
					screenAreas[d][i] = adjusted
				}
			}
		}
	}

	changed := !slices.Equal(workAreas, t.workAreas) ||
		!slices.EqualFunc(screenAreas, t.screenAreas, func(a, b []geom.Rect) bool { return slices.Equal(a, b) }) ||
		!slices.EqualFunc(restricted, t.restricted, func(a, b []window.StrutRect) bool { return slices.Equal(a, b) }) ||
		t.previousScreen != nil
	if !changed {
		return false
	}

	t.oldRestricted = t.restricted
	t.oldScreenAreas = t.screenAreas
	t.workAreas = workAreas
	t.screenAreas = screenAreas
	t.restricted = restricted

	t.inUpdate = true
	if reposition != nil {
		reposition()
	}
	t.inUpdate = false
	t.oldRestricted = nil
	t.oldScreenAreas = nil
	t.previousScreen = nil
	return true
}

// WorkAreas returns the work area of every desktop, index 0 being desktop 1.
func (t *Tracker) WorkAreas() []geom.Rect {
	out := make([]geom.Rect, 0, t.desktops)
	for d := 1; d <= t.desktops; d++ {
		out = append(out, t.ClientArea(WorkArea, 0, d))
	}
	return out
}
