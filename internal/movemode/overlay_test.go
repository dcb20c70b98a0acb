package movemode

import (
	"strings"
	"testing"

	"github.com/KDE/kwin-sub007/internal/geom"
)

func TestHintLinesForPhaseShowGeometry(t *testing.T) {
	frame := geom.Rect{X: 5, Y: 6, Width: 640, Height: 480}

	move := strings.Join(hintLinesForPhase(PhaseMoving, frame), "\n")
	if !strings.Contains(move, "Move: 5,6") || !strings.Contains(move, "Esc     restore") {
		t.Fatalf("unexpected move hint:\n%s", move)
	}
	resize := strings.Join(hintLinesForPhase(PhaseResizing, frame), "\n")
	if !strings.Contains(resize, "Resize: 640x480") {
		t.Fatalf("unexpected resize hint:\n%s", resize)
	}
	if lines := hintLinesForPhase(PhaseInactive, frame); lines != nil {
		t.Fatalf("expected no hint while inactive, got %v", lines)
	}
}

func TestChooseHintPositionAvoidsOverlapWhenPossible(t *testing.T) {
	bounds := geom.Rect{Width: 800, Height: 600}
	width, height := 220, 80

	// Occupy top-right so placement should choose another corner.
	avoid := []geom.Rect{{X: 568, Y: 12, Width: 220, Height: 80}}
	x, y := chooseHintPosition(bounds, avoid, width, height)
	got := geom.Rect{X: x, Y: y, Width: width, Height: height}

	if got.Intersects(avoid[0]) {
		t.Fatalf("hint overlaps avoid rect: got=%+v avoid=%+v", got, avoid[0])
	}
	if !bounds.ContainsRect(got) {
		t.Fatalf("hint escaped bounds: got=%+v bounds=%+v", got, bounds)
	}
}

func TestChooseHintPositionClampsOversizedHintToBoundsOrigin(t *testing.T) {
	bounds := geom.Rect{X: 100, Y: 200, Width: 140, Height: 90}
	x, y := chooseHintPosition(bounds, nil, 260, 160)

	if x != bounds.X || y != bounds.Y {
		t.Fatalf("expected oversized hint to clamp to bounds origin (%d,%d), got (%d,%d)", bounds.X, bounds.Y, x, y)
	}
}
