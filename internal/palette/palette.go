// Package palette drives dmenu-style launchers (rofi, dmenu) to pick a
// window or a window operation from a keyboard-driven list.
package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without selecting an item.
var ErrCancelled = errors.New("palette cancelled")

// Item is a single selectable entry in a palette menu.
type Item struct {
	Label  string
	Action string // returned on selection
	Icon   string // icon name, shown when the backend supports icons
	Meta   string // hidden search keywords
	// Header rows separate groups and cannot be chosen.
	IsHeader bool
	IsActive bool
	IsUrgent bool
}

// Exit codes for the rofi custom keybindings.
const (
	ExitNormal  = 0
	ExitCustom1 = 10 // Alt+Return
	ExitCustom2 = 11 // Alt+d
)

// SelectResult contains the result of a palette selection.
type SelectResult struct {
	Item     Item
	ExitCode int
}

// Backend shows a palette to the user and returns the selected item.
type Backend interface {
	// Show displays items under prompt. message is an optional line shown
	// above the list where the backend supports it.
	Show(prompt string, items []Item, message string) (SelectResult, error)
	// CustomKeys reports whether ExitCustom1 and ExitCustom2 can occur.
	CustomKeys() bool
}

// launchers in detection order.
var launchers = []string{"rofi", "dmenu"}

// NewBackend creates a backend by name. "auto" or "" picks the first
// launcher found in PATH.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		for _, l := range launchers {
			if _, err := exec.LookPath(l); err == nil {
				return NewBackend(l)
			}
		}
		return nil, fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(launchers, ", "))
	}

	switch name {
	case "rofi":
		if _, err := exec.LookPath("rofi"); err != nil {
			return nil, fmt.Errorf("palette backend %q not found in PATH", name)
		}
		return NewRofiBackend(), nil
	case "dmenu":
		if _, err := exec.LookPath("dmenu"); err != nil {
			return nil, fmt.Errorf("palette backend %q not found in PATH", name)
		}
		return NewDmenuBackend(), nil
	default:
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, %s)", name, strings.Join(launchers, ", "))
	}
}
