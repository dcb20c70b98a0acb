// Package sizing resolves a requested window size against the window's size
// hints: minimum/maximum size, base size with resize increments, and aspect
// ratio limits.
package sizing

import (
	"log"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/window"
)

// Limits are extra min/max bounds imposed from outside the window, such as
// the combined bounds of a tab group. A zero Limits imposes nothing.
type Limits struct {
	Min geom.Size
	Max geom.Size
}

func (l Limits) isZero() bool { return l == Limits{} }

// Input is everything the solver reads from a window.
type Input struct {
	Hints   window.SizeHints
	Borders geom.Margins
	// Strict enables increment and aspect enforcement.
	Strict bool
	Limits Limits
}

// InputFor collects the solver input of w. Fullscreen windows are never
// held to increments or aspect ratios.
func InputFor(w *window.Window, limits Limits) Input {
	return Input{
		Hints:   w.Hints,
		Borders: w.EffectiveBorders(),
		Strict:  w.StrictGeometry && !w.Fullscreen,
		Limits:  limits,
	}
}

func (in Input) bounds() (geom.Size, geom.Size) {
	minSize, maxSize := in.Hints.Min, in.Hints.Max
	if !in.Limits.isZero() {
		minSize, maxSize = in.Limits.Min, in.Limits.Max
	}
	decoMin := geom.Size{Width: in.Borders.Horizontal(), Height: in.Borders.Vertical()}
	minSize = minSize.ExpandedTo(decoMin)
	return minSize, maxSize
}

// ConstrainClientSize returns the closest client size the hints permit.
func ConstrainClientSize(in Input, size geom.Size, mode window.SizeMode) geom.Size {
	w, h := size.Width, size.Height
	if w < 1 || h < 1 {
		log.Printf("sizing: constraining empty size %v", size)
	}
	w, h = max(w, 1), max(h, 1)

	minSize, maxSize := in.bounds()
	w = min(maxSize.Width, w)
	h = min(maxSize.Height, h)
	w = max(minSize.Width, w)
	h = max(minSize.Height, h)

	if !in.Strict {
		return geom.Size{Width: w, Height: h}
	}

	inc := in.Hints.Increment
	incBase := in.Hints.IncrementBase()
	w = (w-incBase.Width)/inc.Width*inc.Width + incBase.Width
	h = (h-incBase.Height)/inc.Height*inc.Height + incBase.Height

	if in.Hints.HasAspect {
		a := aspect{
			minW: float64(in.Hints.MinAspect.Width),
			minH: float64(in.Hints.MinAspect.Height),
			maxW: float64(in.Hints.MaxAspect.Width),
			maxH: float64(in.Hints.MaxAspect.Height),
			incW: inc.Width,
			incH: inc.Height,
		}
		base := in.Hints.AspectBase()
		a.w = w - base.Width
		a.h = h - base.Height
		a.maxWidth = maxSize.Width - base.Width
		a.minWidth = minSize.Width - base.Width
		a.maxHeight = maxSize.Height - base.Height
		a.minHeight = minSize.Height - base.Height
		a.apply(mode)
		w = a.w + base.Width
		h = a.h + base.Height
	}
	return geom.Size{Width: w, Height: h}
}

// SizeForClientSize constrains a client size and returns the frame size,
// or the constrained client size when ignoreFrame is set.
func SizeForClientSize(in Input, size geom.Size, mode window.SizeMode, ignoreFrame bool) geom.Size {
	s := ConstrainClientSize(in, size, mode)
	if ignoreFrame {
		return s
	}
	return geom.Size{Width: s.Width + in.Borders.Horizontal(), Height: s.Height + in.Borders.Vertical()}
}

// ConstrainFrameSize constrains a frame size through its client size.
func ConstrainFrameSize(in Input, frame geom.Size, mode window.SizeMode) geom.Size {
	client := geom.Size{Width: frame.Width - in.Borders.Horizontal(), Height: frame.Height - in.Borders.Vertical()}
	return SizeForClientSize(in, client, mode, false)
}

// aspect applies the FVWM aspect checks. Sizes are relative to the base
// size; deltas are truncated to whole increments.
type aspect struct {
	minW, minH, maxW, maxH float64
	incW, incH             int

	w, h                 int
	minWidth, maxWidth   int
	minHeight, maxHeight int
}

func (a *aspect) tooNarrow() bool { return a.minW*float64(a.h) > a.minH*float64(a.w) }
func (a *aspect) tooWide() bool   { return a.maxW*float64(a.h) < a.maxH*float64(a.w) }

func (a *aspect) growW() {
	if a.tooNarrow() {
		delta := int(a.minW*float64(a.h)/a.minH-float64(a.w)) / a.incW * a.incW
		if a.w+delta <= a.maxWidth {
			a.w += delta
		}
	}
}

func (a *aspect) shrinkHGrowW() {
	if a.tooNarrow() {
		delta := int(float64(a.h)-float64(a.w)*a.minH/a.minW) / a.incH * a.incH
		if a.h-delta >= a.minHeight {
			a.h -= delta
			return
		}
		delta = int(a.minW*float64(a.h)/a.minH-float64(a.w)) / a.incW * a.incW
		if a.w+delta <= a.maxWidth {
			a.w += delta
		}
	}
}

func (a *aspect) growH() {
	if a.tooWide() {
		delta := int(float64(a.w)*a.maxH/a.maxW-float64(a.h)) / a.incH * a.incH
		if a.h+delta <= a.maxHeight {
			a.h += delta
		}
	}
}

func (a *aspect) shrinkWGrowH() {
	if a.tooWide() {
		delta := int(float64(a.w)-a.maxW*float64(a.h)/a.maxH) / a.incW * a.incW
		if a.w-delta >= a.minWidth {
			a.w -= delta
			return
		}
		delta = int(float64(a.w)*a.maxH/a.maxW-float64(a.h)) / a.incH * a.incH
		if a.h+delta <= a.maxHeight {
			a.h += delta
		}
	}
}

func (a *aspect) apply(mode window.SizeMode) {
	switch mode {
	case window.SizeModeAny, window.SizeModeFixedW:
		// Height changes are tried first so a fixed width survives.
		a.growH()
		a.shrinkHGrowW()
		a.shrinkWGrowH()
		a.growW()
	case window.SizeModeFixedH:
		a.growW()
		a.shrinkWGrowH()
		a.shrinkHGrowW()
		a.growH()
	case window.SizeModeMax:
		a.shrinkHGrowW()
		a.shrinkWGrowH()
		a.growW()
		a.growH()
	}
}
