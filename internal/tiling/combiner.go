package tiling

import (
	"time"

	"github.com/KDE/kwin-sub007/internal/window"
)

// DefaultCombineTimeout is how long a quick tile shortcut waits for a second
// one on the other axis.
const DefaultCombineTimeout = time.Second

// Combiner merges two quick tile shortcuts pressed in quick succession,
// such as Left followed by Top, into a corner tile.
type Combiner struct {
	Timeout time.Duration
	now     func() time.Time

	last window.QuickTileMode
	at   time.Time
}

// NewCombiner returns a combiner using the wall clock.
func NewCombiner(timeout time.Duration) *Combiner {
	if timeout <= 0 {
		timeout = DefaultCombineTimeout
	}
	return &Combiner{Timeout: timeout, now: time.Now}
}

func edgeOnly(m window.QuickTileMode) (horizontal, vertical bool) {
	h := m&window.QuickTileHorizontal != 0
	v := m&window.QuickTileVertical != 0
	return h && !v, v && !h
}

// Combine returns the mode to apply for a shortcut requesting mode.
func (c *Combiner) Combine(mode window.QuickTileMode) window.QuickTileMode {
	now := c.now()
	if prev := c.last; prev != window.QuickTileNone && now.Sub(c.at) < c.Timeout {
		c.last = window.QuickTileNone
		prevH, prevV := edgeOnly(prev)
		curH, curV := edgeOnly(mode)
		if (prevH && curV) || (prevV && curH) {
			return prev | mode
		}
	}
	c.last = mode
	c.at = now
	return mode
}
