package window

import (
	"math"

	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/KDE/kwin-sub007/internal/geom"
)

// MaxDimension stands in for "no maximum size".
const MaxDimension = math.MaxInt32

// SizeHints are WM_NORMAL_HINTS with every value defined. Missing hints are
// replaced by neutral defaults so the constraint solver never has to check
// flags for min/max/increments.
type SizeHints struct {
	Min       geom.Size
	Max       geom.Size
	Base      geom.Size
	Increment geom.Size
	// Aspect ratios are stored as numerator (Width) over denominator (Height).
	MinAspect geom.Size
	MaxAspect geom.Size

	HasMin      bool
	HasMax      bool
	HasBase     bool
	HasAspect   bool
	HasPosition bool
	HasSize     bool
	WinGravity  int
}

// DefaultSizeHints returns the hints of a window that set none.
func DefaultSizeHints() SizeHints {
	return SizeHints{
		Max:        geom.Size{Width: MaxDimension, Height: MaxDimension},
		Increment:  geom.Size{Width: 1, Height: 1},
		MinAspect:  geom.Size{Width: 1, Height: MaxDimension},
		MaxAspect:  geom.Size{Width: MaxDimension, Height: 1},
		WinGravity: 1,
	}
}

// NormalizeHints converts a raw WM_NORMAL_HINTS property.
func NormalizeHints(nh *icccm.NormalHints) SizeHints {
	h := DefaultSizeHints()
	if nh == nil {
		return h
	}
	flags := nh.Flags
	h.HasPosition = flags&(icccm.SizeHintUSPosition|icccm.SizeHintPPosition) != 0
	h.HasSize = flags&(icccm.SizeHintUSSize|icccm.SizeHintPSize) != 0

	if flags&icccm.SizeHintPBaseSize != 0 {
		h.HasBase = true
		h.Base = geom.Size{Width: int(nh.BaseWidth), Height: int(nh.BaseHeight)}
	}
	if flags&icccm.SizeHintPMinSize != 0 {
		h.HasMin = true
		h.Min = geom.Size{Width: int(nh.MinWidth), Height: int(nh.MinHeight)}
	} else {
		// ICCCM 4.1.2.3: base size is the fallback for a missing minimum.
		h.Min = h.Base
	}
	if flags&icccm.SizeHintPMaxSize != 0 {
		h.HasMax = true
		h.Max = geom.Size{Width: max(int(nh.MaxWidth), 1), Height: max(int(nh.MaxHeight), 1)}
	}
	if flags&icccm.SizeHintPResizeInc != 0 {
		h.Increment = geom.Size{Width: max(int(nh.WidthInc), 1), Height: max(int(nh.HeightInc), 1)}
	}
	if flags&icccm.SizeHintPAspect != 0 {
		h.HasAspect = true
		h.MinAspect = geom.Size{Width: int(nh.MinAspectNum), Height: max(int(nh.MinAspectDen), 1)}
		h.MaxAspect = geom.Size{Width: int(nh.MaxAspectNum), Height: max(int(nh.MaxAspectDen), 1)}
	}
	if flags&icccm.SizeHintPWinGravity != 0 {
		h.WinGravity = int(nh.WinGravity)
	}
	return h
}

// IncrementBase is the size increments are counted from: the base size when
// set, the minimum size otherwise.
func (h SizeHints) IncrementBase() geom.Size {
	if h.HasBase {
		return h.Base
	}
	return h.Min
}

// AspectBase is the size subtracted before aspect checks. Unlike
// IncrementBase it does not fall back to the minimum size.
func (h SizeHints) AspectBase() geom.Size {
	if h.HasBase {
		return h.Base
	}
	return geom.Size{}
}
