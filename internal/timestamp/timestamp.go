// Package timestamp implements the cyclic 32-bit server time domain used for
// focus stealing prevention.
//
// Server timestamps wrap around roughly every 49.7 days, so two values can
// only be ordered relative to each other: a difference with the high bit set
// means the first value is older.
package timestamp

import "strconv"

// Time is a server timestamp in milliseconds.
type Time uint32

const (
	// Zero is the explicit "do not activate" timestamp (CurrentTime).
	Zero Time = 0
	// Unknown marks a timestamp that could not be resolved (-1U).
	Unknown Time = 0xFFFFFFFF
)

// Ordering is the result of comparing two timestamps.
type Ordering int

const (
	Before Ordering = -1
	Equal  Ordering = 0
	After  Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Before:
		return "before"
	case Equal:
		return "equal"
	case After:
		return "after"
	default:
		return "invalid"
	}
}

// Compare orders a relative to b on the cyclic time domain.
func Compare(a, b Time) Ordering {
	d := int32(uint32(a) - uint32(b))
	switch {
	case d < 0:
		return Before
	case d > 0:
		return After
	default:
		return Equal
	}
}

// NewerThan reports whether t is strictly after o.
func (t Time) NewerThan(o Time) bool { return Compare(t, o) == After }

// NotOlderThan reports whether t is at or after o.
func (t Time) NotOlderThan(o Time) bool { return Compare(t, o) != Before }

// Known reports whether t carries a real timestamp.
func (t Time) Known() bool { return t != Unknown }

func (t Time) String() string {
	switch t {
	case Unknown:
		return "unknown"
	case Zero:
		return "0"
	}
	return strconv.FormatUint(uint64(t), 10)
}

// Clock returns the current server time.
type Clock func() Time
