package platform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/timestamp"
	"github.com/KDE/kwin-sub007/internal/window"
)

// EventKind identifies what a windowing system event reports or requests.
type EventKind int

const (
	// EventMapRequest carries the full Client of a window asking to be
	// shown.
	EventMapRequest EventKind = iota
	EventUnmap
	EventDestroy
	EventConfigureRequest
	EventActivateRequest
	EventFocusIn
	EventUserTime
	EventTitle
	EventStrut
	EventSizeHints
	EventStateRequest
	EventDesktopRequest
	EventCurrentDesktopRequest
	EventCloseRequest
	EventScreensChanged
	// EventStartupID reports a changed _NET_STARTUP_ID in StartupID, with
	// its embedded time in Time.
	EventStartupID
)

var eventNames = [...]string{
	EventMapRequest:            "map-request",
	EventUnmap:                 "unmap",
	EventDestroy:               "destroy",
	EventConfigureRequest:      "configure-request",
	EventActivateRequest:       "activate-request",
	EventFocusIn:               "focus-in",
	EventUserTime:              "user-time",
	EventTitle:                 "title",
	EventStrut:                 "strut",
	EventSizeHints:             "size-hints",
	EventStateRequest:          "state-request",
	EventDesktopRequest:        "desktop-request",
	EventCurrentDesktopRequest: "current-desktop-request",
	EventCloseRequest:          "close-request",
	EventScreensChanged:        "screens-changed",
	EventStartupID:             "startup-id",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// StateAction is the _NET_WM_STATE request action.
type StateAction int

const (
	StateRemove StateAction = iota
	StateAdd
	StateToggle
)

// Apply returns the new value of a flag that is currently cur.
func (a StateAction) Apply(cur bool) bool {
	switch a {
	case StateRemove:
		return false
	case StateAdd:
		return true
	default:
		return !cur
	}
}

// StateFlag is a set of window states named in a state request.
type StateFlag uint16

const (
	StateMaximizedVert StateFlag = 1 << iota
	StateMaximizedHorz
	StateFullscreen
	StateShaded
	StateAbove
	StateBelow
	StateDemandsAttention
	StateHidden
	StateSkipTaskbar
	StateSkipPager
)

// Event is one input from the windowing system. Only the fields that
// belong to Kind are set.
type Event struct {
	Kind   EventKind
	Window WindowID

	Client Client
	// Frame is the requested frame geometry of a configure request.
	Frame geom.Rect
	// Time is the user time or the activation timestamp.
	Time timestamp.Time
	// FromTool marks activation requests sent by pagers and tools.
	FromTool bool
	// Withdrawn is set when the client unmapped its window itself.
	Withdrawn bool
	Title     string
	Strut     window.Strut
	Hints     window.SizeHints
	Action    StateAction
	States    StateFlag
	Desktop   int
	Screens   []geom.Rect
	StartupID string
}

func (e Event) String() string {
	return fmt.Sprintf("%s %#x", e.Kind, uint32(e.Window))
}

// StartupTime returns the timestamp a startup notification id carries in
// its "_TIME<n>" suffix, or timestamp.Zero when there is none.
func StartupTime(id string) timestamp.Time {
	i := strings.LastIndex(id, "_TIME")
	if i < 0 {
		return timestamp.Zero
	}
	n, err := strconv.ParseUint(id[i+len("_TIME"):], 10, 32)
	if err != nil {
		return timestamp.Zero
	}
	return timestamp.Time(n)
}
