package palette

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/KDE/kwin-sub007/internal/workspace"
)

// Client is the part of the daemon client the switcher drives.
type Client interface {
	ListWindows() ([]workspace.WindowInfo, error)
	Activate(id uint32) error
	Maximize(id uint32, mode string) error
	QuickTile(id uint32, mode string) error
	Fullscreen(id uint32, set *bool) error
	Shade(id uint32) error
	Place(id uint32, policy string) error
	Pack(id uint32, direction string, grow bool) error
}

const windowActionPrefix = "window:"

// WindowItems groups windows under one header per desktop. Windows on all
// desktops come last.
func WindowItems(windows []workspace.WindowInfo) []Item {
	byDesktop := make(map[int][]workspace.WindowInfo)
	var desktops []int
	for _, w := range windows {
		if _, ok := byDesktop[w.Desktop]; !ok {
			desktops = append(desktops, w.Desktop)
		}
		byDesktop[w.Desktop] = append(byDesktop[w.Desktop], w)
	}
	sort.Slice(desktops, func(i, j int) bool {
		a, b := desktops[i], desktops[j]
		if a == -1 || b == -1 {
			return b == -1 && a != -1
		}
		return a < b
	})

	var items []Item
	for _, d := range desktops {
		header := fmt.Sprintf("Desktop %d", d)
		if d == -1 {
			header = "All Desktops"
		}
		items = append(items, Item{Label: header, IsHeader: true})
		for _, w := range byDesktop[d] {
			items = append(items, windowItem(w))
		}
	}
	return items
}

func windowItem(w workspace.WindowInfo) Item {
	title := w.Title
	if title == "" {
		title = "(untitled)"
	}
	label := title
	if w.Class != "" {
		label += "  [" + w.Class + "]"
	}
	if w.Minimized {
		label += "  (minimized)"
	}
	return Item{
		Label:    label,
		Action:   windowActionPrefix + strconv.FormatUint(uint64(w.ID), 10),
		Icon:     strings.ToLower(w.Class),
		Meta:     w.Class,
		IsActive: w.Active,
		IsUrgent: w.DemandsAttention,
	}
}

// windowID extracts the window from an action produced by WindowItems.
func windowID(action string) (uint32, bool) {
	rest, ok := strings.CutPrefix(action, windowActionPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(id), true
}

// OperationsMenu is the window operations tree offered for one window.
func OperationsMenu() []MenuItem {
	tile := func(mode, label string) MenuItem {
		return MenuItem{Label: label, Action: "tile:" + mode}
	}
	pack := func(dir string) MenuItem {
		return MenuItem{Label: "Pack " + dir, Action: "pack:" + dir}
	}
	return []MenuItem{
		{Label: "Activate", Action: "activate", Icon: "go-jump"},
		{Label: "Maximize", Action: "maximize", Icon: "window-maximize"},
		{Label: "Maximize Vertically", Action: "maximize:vertical"},
		{Label: "Maximize Horizontally", Action: "maximize:horizontal"},
		{Label: "Fullscreen", Action: "fullscreen", Icon: "view-fullscreen"},
		{Label: "Shade", Action: "shade", Icon: "window-shade"},
		{Label: "Quick Tile", Icon: "view-split-left-right", Submenu: []MenuItem{
			tile("left", "Left"), tile("right", "Right"), tile("top", "Top"), tile("bottom", "Bottom"),
			tile("top-left", "Top Left"), tile("top-right", "Top Right"),
			tile("bottom-left", "Bottom Left"), tile("bottom-right", "Bottom Right"),
			tile("none", "Untile"),
		}},
		{Label: "Pack", Icon: "transform-move", Submenu: []MenuItem{
			pack("left"), pack("right"), pack("up"), pack("down"),
		}},
		{Label: "Place Again", Action: "place", Icon: "window-new"},
	}
}

// Apply performs an operations menu action on window id.
func Apply(client Client, id uint32, action string) error {
	name, arg, _ := strings.Cut(action, ":")
	switch name {
	case "activate":
		return client.Activate(id)
	case "maximize":
		return client.Maximize(id, arg)
	case "fullscreen":
		return client.Fullscreen(id, nil)
	case "shade":
		return client.Shade(id)
	case "tile":
		return client.QuickTile(id, arg)
	case "pack":
		return client.Pack(id, arg, false)
	case "place":
		return client.Place(id, "")
	}
	return fmt.Errorf("unknown window operation %q", action)
}

// Switcher lets the user pick a window and activate it or run an operation
// on it.
type Switcher struct {
	backend Backend
	client  Client
	prompt  string
}

func NewSwitcher(backend Backend, client Client, prompt string) *Switcher {
	return &Switcher{backend: backend, client: client, prompt: prompt}
}

// Run shows the window list once. Enter activates the chosen window,
// Alt+Return opens the operations menu and Alt+d toggles maximize.
func (s *Switcher) Run() error {
	windows, err := s.client.ListWindows()
	if err != nil {
		return err
	}
	if len(windows) == 0 {
		return fmt.Errorf("no managed windows")
	}

	message := ""
	if s.backend.CustomKeys() {
		message = "Enter: activate   Alt+Return: operations   Alt+d: maximize"
	}
	for {
		result, err := s.backend.Show(s.prompt, WindowItems(windows), message)
		if err != nil {
			return err
		}
		id, ok := windowID(result.Item.Action)
		if !ok {
			// A header was chosen.
			continue
		}

		switch result.ExitCode {
		case ExitCustom1:
			return s.operate(id)
		case ExitCustom2:
			return s.client.Maximize(id, "")
		default:
			if !s.backend.CustomKeys() {
				return s.operate(id)
			}
			return s.client.Activate(id)
		}
	}
}

// operate shows the operations menu for id. Without custom keys this is the
// only way to reach the operations, so Activate leads the menu.
func (s *Switcher) operate(id uint32) error {
	menu := NewMenu(s.backend, fmt.Sprintf("%#x", id), OperationsMenu())
	action, err := menu.Show()
	if err != nil {
		return err
	}
	return Apply(s.client, id, action)
}
