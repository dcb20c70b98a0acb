package palette

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MenuItem is a node of a hierarchical menu. Leaves carry an Action;
// parents carry a Submenu.
type MenuItem struct {
	Label    string
	Action   string
	Icon     string
	IsHeader bool
	IsActive bool
	Submenu  []MenuItem
}

// IsParent reports whether the item opens a submenu.
func (m MenuItem) IsParent() bool {
	return len(m.Submenu) > 0
}

// Menu walks a MenuItem tree with a palette backend.
type Menu struct {
	backend Backend
	prompt  string
	root    []MenuItem
	message string
}

func NewMenu(backend Backend, prompt string, items []MenuItem) *Menu {
	return &Menu{backend: backend, prompt: prompt, root: items}
}

// SetMessage sets the line shown above the list.
func (m *Menu) SetMessage(msg string) {
	m.message = msg
}

// Show returns the action of the chosen leaf, or ErrCancelled when the user
// leaves the top level.
func (m *Menu) Show() (string, error) {
	return m.showLevel(m.root, nil)
}

const (
	backAction    = "__back__"
	submenuPrefix = "__submenu__:"
)

func (m *Menu) showLevel(items []MenuItem, breadcrumb []string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("menu: no items to show")
	}

	for {
		rows := make([]Item, 0, len(items)+1)
		if len(breadcrumb) > 0 {
			rows = append(rows, Item{Label: "← Back", Action: backAction, Icon: "go-previous"})
		}
		for i, item := range items {
			row := Item{
				Label:    item.Label,
				Action:   item.Action,
				Icon:     item.Icon,
				IsHeader: item.IsHeader,
				IsActive: item.IsActive,
			}
			if item.IsParent() {
				row.Label += " →"
				row.Action = submenuPrefix + strconv.Itoa(i)
			}
			rows = append(rows, row)
		}

		prompt := m.prompt
		if len(breadcrumb) > 0 {
			prompt = breadcrumb[len(breadcrumb)-1]
		}

		result, err := m.backend.Show(prompt, rows, m.message)
		if err != nil {
			return "", err
		}

		// dmenu cannot refuse header rows; choosing one shows the level again.
		if result.Item.IsHeader || strings.TrimSpace(result.Item.Action) == "" {
			continue
		}
		if result.Item.Action == backAction {
			return "", ErrCancelled
		}
		if rest, ok := strings.CutPrefix(result.Item.Action, submenuPrefix); ok {
			idx, err := strconv.Atoi(rest)
			if err != nil || idx < 0 || idx >= len(items) {
				continue
			}
			action, err := m.showLevel(items[idx].Submenu, append(breadcrumb, items[idx].Label))
			if errors.Is(err, ErrCancelled) {
				continue
			}
			return action, err
		}
		return result.Item.Action, nil
	}
}
