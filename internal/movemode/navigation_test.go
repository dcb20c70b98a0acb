package movemode

import (
	"testing"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
)

func TestGravityAt(t *testing.T) {
	frame := geom.Rect{Width: 300, Height: 300}

	tests := []struct {
		name     string
		p        geom.Point
		expected window.Gravity
	}{
		{"top left", geom.Point{X: 10, Y: 10}, window.GravityTopLeft},
		{"top", geom.Point{X: 150, Y: 10}, window.GravityTop},
		{"top right", geom.Point{X: 290, Y: 10}, window.GravityTopRight},
		{"left", geom.Point{X: 10, Y: 150}, window.GravityLeft},
		{"center", geom.Point{X: 150, Y: 150}, window.GravityBottomRight},
		{"right", geom.Point{X: 290, Y: 150}, window.GravityRight},
		{"bottom left", geom.Point{X: 10, Y: 290}, window.GravityBottomLeft},
		{"bottom", geom.Point{X: 150, Y: 290}, window.GravityBottom},
		{"bottom right", geom.Point{X: 290, Y: 290}, window.GravityBottomRight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GravityAt(frame, tt.p); got != tt.expected {
				t.Errorf("GravityAt(%v) = %v, want %v", tt.p, got, tt.expected)
			}
		})
	}
}

func TestResizeFrame(t *testing.T) {
	start := geom.Rect{Width: 100, Height: 100}

	tests := []struct {
		name     string
		gravity  window.Gravity
		delta    geom.Point
		expected geom.Rect
	}{
		{"grow right", window.GravityRight, geom.Point{X: 20, Y: 30}, geom.Rect{Width: 120, Height: 100}},
		{"grow bottom", window.GravityBottom, geom.Point{X: 20, Y: 30}, geom.Rect{Width: 100, Height: 130}},
		{"grow top left", window.GravityTopLeft, geom.Point{X: -10, Y: -10}, geom.Rect{X: -10, Y: -10, Width: 110, Height: 110}},
		{"left edge stops before right", window.GravityLeft, geom.Point{X: 150}, geom.Rect{X: 99, Width: 1, Height: 100}},
		{"bottom edge stops below top", window.GravityBottom, geom.Point{Y: -500}, geom.Rect{Width: 100, Height: 1}},
		{"none keeps frame", window.GravityNone, geom.Point{X: 40, Y: 40}, start},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resizeFrame(start, tt.gravity, tt.delta); got != tt.expected {
				t.Errorf("resizeFrame(%v) = %v, want %v", tt.delta, got, tt.expected)
			}
		})
	}
}

func TestAnchorSizeKeepsFixedEdges(t *testing.T) {
	r := geom.Rect{X: 100, Y: 100, Width: 50, Height: 50}
	size := geom.Size{Width: 80, Height: 80}

	if got, want := anchorSize(r, size, window.GravityTopLeft), (geom.Rect{X: 70, Y: 70, Width: 80, Height: 80}); got != want {
		t.Errorf("top left: got %v, want %v", got, want)
	}
	if got, want := anchorSize(r, size, window.GravityBottomRight), (geom.Rect{X: 100, Y: 100, Width: 80, Height: 80}); got != want {
		t.Errorf("bottom right: got %v, want %v", got, want)
	}
}

func TestStep(t *testing.T) {
	if got := Step(DirLeft, true); got != (geom.Point{X: -StepFine}) {
		t.Errorf("fine left step = %v", got)
	}
	if got := Step(DirDown, false); got != (geom.Point{Y: StepNormal}) {
		t.Errorf("down step = %v", got)
	}
}
