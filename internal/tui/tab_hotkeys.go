package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/KDE/kwin-sub007/internal/config"
)

// hotkeyItem is one bindable action.
type hotkeyItem struct {
	action string
	keys   string
}

func (i hotkeyItem) Title() string { return i.action }

func (i hotkeyItem) Description() string {
	if i.keys == "" {
		return "unbound"
	}
	return i.keys
}

func (i hotkeyItem) FilterValue() string { return i.action }

func buildHotkeyItems(cfg *config.Config) []list.Item {
	items := make([]list.Item, 0, len(config.HotkeyActions))
	for _, action := range config.HotkeyActions {
		item := hotkeyItem{action: action}
		if cfg != nil {
			item.keys = cfg.Hotkeys[action]
		}
		items = append(items, item)
	}
	return items
}

// validKeySequence accepts xgbutil key strings such as "Mod4-Shift-Left".
func validKeySequence(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("key sequence must not be empty")
	}
	if strings.ContainsAny(s, " \t") {
		return fmt.Errorf("separate modifiers with '-', e.g. Mod4-Left")
	}
	for _, part := range strings.Split(s, "-") {
		if part == "" {
			return fmt.Errorf("empty key in %q", s)
		}
	}
	return nil
}

// HotkeysTab binds keys to window actions.
type HotkeysTab struct {
	list   list.Model
	cfg    *config.Config
	width  int
	height int

	editing   bool
	textInput textinput.Model
	errText   string
}

func NewHotkeysTab(cfg *config.Config) HotkeysTab {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(buildHotkeyItems(cfg), delegate, 0, 0)
	l.Title = "Hotkeys"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	ti := textinput.New()
	ti.Placeholder = "e.g. Mod4-Left, Mod1-F7"
	ti.CharLimit = 64

	return HotkeysTab{list: l, cfg: cfg, textInput: ti}
}

// Update implements tea.Model.
func (h HotkeysTab) Update(msg tea.Msg) (HotkeysTab, tea.Cmd) {
	if h.editing {
		return h.updateEditing(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.width = msg.Width
		h.height = msg.Height
		h.list.SetSize(msg.Width, max(msg.Height-3, 1))
		return h, nil

	case tea.KeyMsg:
		item, ok := h.list.SelectedItem().(hotkeyItem)
		switch msg.String() {
		case "enter", "e":
			if !ok || h.cfg == nil {
				return h, nil
			}
			h.editing = true
			h.errText = ""
			h.textInput.SetValue(item.keys)
			h.textInput.CursorEnd()
			h.textInput.Focus()
			return h, textinput.Blink
		case "x", "delete":
			if ok && h.cfg != nil {
				delete(h.cfg.Hotkeys, item.action)
				h.list.SetItems(buildHotkeyItems(h.cfg))
			}
			return h, nil
		}
	}

	var cmd tea.Cmd
	h.list, cmd = h.list.Update(msg)
	return h, cmd
}

func (h HotkeysTab) updateEditing(msg tea.Msg) (HotkeysTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			h.editing = false
			h.textInput.Blur()
			return h, nil
		case "enter":
			value := strings.TrimSpace(h.textInput.Value())
			if err := validKeySequence(value); err != nil {
				h.errText = err.Error()
				return h, nil
			}
			if item, ok := h.list.SelectedItem().(hotkeyItem); ok {
				if h.cfg.Hotkeys == nil {
					h.cfg.Hotkeys = make(map[string]string)
				}
				h.cfg.Hotkeys[item.action] = value
				h.list.SetItems(buildHotkeyItems(h.cfg))
			}
			h.editing = false
			h.errText = ""
			h.textInput.Blur()
			return h, nil
		}
	}

	var cmd tea.Cmd
	h.textInput, cmd = h.textInput.Update(msg)
	return h, cmd
}

// View implements tea.Model.
func (h HotkeysTab) View() string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	var footer string
	switch {
	case h.editing:
		footer = "keys: " + h.textInput.View()
		if h.errText != "" {
			footer += "  " + lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(h.errText)
		}
	default:
		footer = dim.Render("enter/e:edit  x:unbind  ctrl-s:save")
	}
	return lipgloss.JoinVertical(lipgloss.Left, h.list.View(), "", lipgloss.NewStyle().Padding(0, 1).Render(footer))
}
