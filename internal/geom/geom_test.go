package geom

import "testing"

func TestRect_EdgesAreExclusive(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}
	if r.Right() != 110 || r.Bottom() != 70 {
		t.Fatalf("expected right=110 bottom=70, got %d %d", r.Right(), r.Bottom())
	}
	if !r.Contains(Point{X: 109, Y: 69}) {
		t.Fatalf("expected last pixel to be inside")
	}
	if r.Contains(Point{X: 110, Y: 69}) {
		t.Fatalf("expected right edge to be outside")
	}
}

func TestRect_IntersectedAndUnited(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 50, Y: 60, Width: 100, Height: 100}

	got := a.Intersected(b)
	want := Rect{X: 50, Y: 60, Width: 50, Height: 40}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if u := a.United(b); u != (Rect{X: 0, Y: 0, Width: 150, Height: 160}) {
		t.Fatalf("unexpected union %v", u)
	}

	touching := Rect{X: 100, Y: 0, Width: 10, Height: 10}
	if a.Intersects(touching) {
		t.Fatalf("adjacent rects must not intersect")
	}
}

func TestSubtract_StrutFromScreen(t *testing.T) {
	screen := Rect{X: 0, Y: 0, Width: 1000, Height: 800}
	panel := Rect{X: 0, Y: 770, Width: 1000, Height: 30}

	pieces := Subtract(screen, panel)
	if len(pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d: %v", len(pieces), pieces)
	}
	if pieces[0] != (Rect{X: 0, Y: 0, Width: 1000, Height: 770}) {
		t.Fatalf("unexpected remainder %v", pieces[0])
	}
}

func TestLargestOverlap(t *testing.T) {
	screens := []Rect{
		{X: 0, Y: 0, Width: 1000, Height: 800},
		{X: 1000, Y: 0, Width: 1000, Height: 800},
	}
	win := Rect{X: 900, Y: 100, Width: 300, Height: 200}
	if got := LargestOverlap(win, screens); got != 1 {
		t.Fatalf("expected screen 1, got %d", got)
	}
	if got := LargestOverlap(Rect{X: 5000, Y: 0, Width: 10, Height: 10}, screens); got != -1 {
		t.Fatalf("expected -1 for no overlap, got %d", got)
	}
}

func TestRegion_SubtractAndIntersects(t *testing.T) {
	g := Region{{X: 0, Y: 0, Width: 100, Height: 100}}
	g = g.Subtract(Rect{X: 0, Y: 0, Width: 100, Height: 20})
	if g.Intersects(Rect{X: 10, Y: 5, Width: 5, Height: 5}) {
		t.Fatalf("expected removed strip to be gone")
	}
	if !g.Intersects(Rect{X: 10, Y: 50, Width: 5, Height: 5}) {
		t.Fatalf("expected remainder to intersect")
	}
	if b := g.Bounds(); b != (Rect{X: 0, Y: 20, Width: 100, Height: 80}) {
		t.Fatalf("unexpected bounds %v", b)
	}
}
