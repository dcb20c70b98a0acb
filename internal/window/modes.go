package window

import (
	"fmt"
	"strings"
)

// MaximizeMode is a bitmask of maximized axes.
type MaximizeMode uint8

const (
	MaximizeRestore    MaximizeMode = 0
	MaximizeVertical   MaximizeMode = 1 << 0
	MaximizeHorizontal MaximizeMode = 1 << 1
	MaximizeFull                    = MaximizeVertical | MaximizeHorizontal
)

func (m MaximizeMode) String() string {
	switch m {
	case MaximizeRestore:
		return "restore"
	case MaximizeVertical:
		return "vertical"
	case MaximizeHorizontal:
		return "horizontal"
	case MaximizeFull:
		return "full"
	}
	return fmt.Sprintf("MaximizeMode(%d)", uint8(m))
}

// ParseMaximizeMode parses the names produced by String.
func ParseMaximizeMode(s string) (MaximizeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "restore", "none", "":
		return MaximizeRestore, nil
	case "vertical", "vert":
		return MaximizeVertical, nil
	case "horizontal", "horiz":
		return MaximizeHorizontal, nil
	case "full", "both":
		return MaximizeFull, nil
	}
	return MaximizeRestore, fmt.Errorf("unknown maximize mode %q", s)
}

// QuickTileMode is a bitmask of screen edges a window is tiled against.
type QuickTileMode uint8

const (
	QuickTileNone   QuickTileMode = 0
	QuickTileLeft   QuickTileMode = 1 << 0
	QuickTileRight  QuickTileMode = 1 << 1
	QuickTileTop    QuickTileMode = 1 << 2
	QuickTileBottom QuickTileMode = 1 << 3

	QuickTileHorizontal = QuickTileLeft | QuickTileRight
	QuickTileVertical   = QuickTileTop | QuickTileBottom
	QuickTileMaximize   = QuickTileHorizontal | QuickTileVertical
)

var quickTileNames = []struct {
	mode QuickTileMode
	name string
}{
	{QuickTileNone, "none"},
	{QuickTileMaximize, "maximize"},
	{QuickTileLeft, "left"},
	{QuickTileRight, "right"},
	{QuickTileTop, "top"},
	{QuickTileBottom, "bottom"},
	{QuickTileTop | QuickTileLeft, "top-left"},
	{QuickTileTop | QuickTileRight, "top-right"},
	{QuickTileBottom | QuickTileLeft, "bottom-left"},
	{QuickTileBottom | QuickTileRight, "bottom-right"},
}

func (q QuickTileMode) String() string {
	for _, n := range quickTileNames {
		if n.mode == q {
			return n.name
		}
	}
	return fmt.Sprintf("QuickTileMode(%d)", uint8(q))
}

// ParseQuickTileMode parses the names produced by String.
func ParseQuickTileMode(s string) (QuickTileMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, n := range quickTileNames {
		if n.name == name {
			return n.mode, nil
		}
	}
	return QuickTileNone, fmt.Errorf("unknown quick tile mode %q", s)
}

// ShadeMode describes whether only the titlebar of a window is shown.
type ShadeMode uint8

const (
	ShadeNone ShadeMode = iota
	ShadeNormal
	ShadeHover
	ShadeActivated
)

func (s ShadeMode) String() string {
	switch s {
	case ShadeNone:
		return "none"
	case ShadeNormal:
		return "normal"
	case ShadeHover:
		return "hover"
	case ShadeActivated:
		return "activated"
	}
	return "unknown"
}

// SizeMode selects which dimension the constraint solver tries to keep when
// an aspect ratio forces a change.
type SizeMode int

const (
	SizeModeAny SizeMode = iota
	SizeModeFixedW
	SizeModeFixedH
	SizeModeMax
)

// Gravity identifies the edge or corner being dragged during a resize.
type Gravity int

const (
	GravityNone Gravity = iota
	GravityLeft
	GravityRight
	GravityTop
	GravityTopLeft
	GravityTopRight
	GravityBottom
	GravityBottomLeft
	GravityBottomRight
)

func (g Gravity) String() string {
	switch g {
	case GravityNone:
		return "none"
	case GravityLeft:
		return "left"
	case GravityRight:
		return "right"
	case GravityTop:
		return "top"
	case GravityTopLeft:
		return "top-left"
	case GravityTopRight:
		return "top-right"
	case GravityBottom:
		return "bottom"
	case GravityBottomLeft:
		return "bottom-left"
	case GravityBottomRight:
		return "bottom-right"
	}
	return "invalid"
}

// StrutArea is a bitmask of screen edges.
type StrutArea uint8

const (
	StrutAreaInvalid StrutArea = 0
	StrutAreaTop     StrutArea = 1 << 0
	StrutAreaRight   StrutArea = 1 << 1
	StrutAreaBottom  StrutArea = 1 << 2
	StrutAreaLeft    StrutArea = 1 << 3
	StrutAreaAll               = StrutAreaTop | StrutAreaRight | StrutAreaBottom | StrutAreaLeft
)

// Desktop numbers start at 1. OnAllDesktops marks sticky windows.
const OnAllDesktops = -1
