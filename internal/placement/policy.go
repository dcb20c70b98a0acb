package placement

import (
	"fmt"
	"strings"
)

// Policy selects how a new window is positioned.
type Policy int

const (
	NoPlacement Policy = iota
	// Default defers to the configured policy.
	Default
	// Unknown lets the callee pick its own fallback.
	Unknown
	Random
	Smart
	Cascade
	Centered
	ZeroCornered
	UnderMouse
	OnMainWindow
	Maximizing
)

var policyNames = [...]string{
	NoPlacement:  "NoPlacement",
	Default:      "Default",
	Unknown:      "Unknown",
	Random:       "Random",
	Smart:        "Smart",
	Cascade:      "Cascade",
	Centered:     "Centered",
	ZeroCornered: "ZeroCornered",
	UnderMouse:   "UnderMouse",
	OnMainWindow: "OnMainWindow",
	Maximizing:   "Maximizing",
}

func (p Policy) String() string {
	if p >= 0 && int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// PolicyFromString parses a policy name case-insensitively. Unknown names
// map to Smart. With noSpecial set, Default and OnMainWindow are not
// accepted either, as they make no sense as a global setting.
func PolicyFromString(s string, noSpecial bool) Policy {
	s = strings.ReplaceAll(strings.TrimSpace(s), "-", "")
	for i, name := range policyNames {
		p := Policy(i)
		if !strings.EqualFold(s, name) || p == Unknown {
			continue
		}
		if noSpecial && (p == Default || p == OnMainWindow) {
			return Smart
		}
		return p
	}
	return Smart
}

// MarshalText encodes the policy name for YAML and JSON.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts the names PolicyFromString accepts.
func (p *Policy) UnmarshalText(b []byte) error {
	*p = PolicyFromString(string(b), false)
	return nil
}
