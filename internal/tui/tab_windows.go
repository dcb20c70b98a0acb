package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/KDE/kwin-sub007/internal/workspace"
)

// windowItem implements list.Item for one managed window.
type windowItem struct {
	info workspace.WindowInfo
}

func (i windowItem) Title() string {
	prefix := "  "
	if i.info.Active {
		prefix = "* "
	}
	title := i.info.Title
	if title == "" {
		title = "(untitled)"
	}
	return prefix + title
}

func (i windowItem) Description() string {
	desktop := fmt.Sprintf("desktop %d", i.info.Desktop)
	if i.info.Desktop == -1 {
		desktop = "all desktops"
	}
	parts := []string{fmt.Sprintf("%#x", i.info.ID), i.info.Class, desktop, i.info.Frame.String()}
	parts = append(parts, windowStates(i.info)...)
	return strings.Join(parts, " | ")
}

func (i windowItem) FilterValue() string { return i.info.Class + " " + i.info.Title }

// windowStates lists the non-default states of a window for display.
func windowStates(info workspace.WindowInfo) []string {
	var states []string
	if info.Maximize != "" && info.Maximize != "restore" {
		states = append(states, "maximized:"+info.Maximize)
	}
	if info.QuickTile != "" && info.QuickTile != "none" {
		states = append(states, "tiled:"+info.QuickTile)
	}
	if info.Fullscreen {
		states = append(states, "fullscreen")
	}
	if info.Minimized {
		states = append(states, "minimized")
	}
	if info.Shaded {
		states = append(states, "shaded")
	}
	if info.DemandsAttention {
		states = append(states, "attention")
	}
	if info.TabGroup != 0 {
		states = append(states, fmt.Sprintf("group %d", info.TabGroup))
	}
	return states
}

// statusMsg is sent after a daemon request completes.
type statusMsg struct {
	text string
}

type clearStatusMsg struct{}

// WindowsTab lists managed windows and sends actions for the selected one.
type WindowsTab struct {
	list   list.Model
	client Client

	statusText string

	width  int
	height int
	ready  bool
}

func NewWindowsTab(client Client) WindowsTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Windows"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return WindowsTab{list: l, client: client}
}

// setWindows replaces the list contents, keeping the selection on the same
// window when it still exists.
func (wt *WindowsTab) setWindows(windows []workspace.WindowInfo) {
	selected := wt.selectedID()
	items := make([]list.Item, 0, len(windows))
	index := 0
	for i, info := range windows {
		items = append(items, windowItem{info: info})
		if info.ID == selected {
			index = i
		}
	}
	wt.list.SetItems(items)
	if len(items) > 0 {
		wt.list.Select(index)
	}
}

func (wt WindowsTab) selectedID() uint32 {
	item, ok := wt.list.SelectedItem().(windowItem)
	if !ok {
		return 0
	}
	return item.info.ID
}

func clearStatusLater() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// Update implements tea.Model.
func (wt WindowsTab) Update(msg tea.Msg) (WindowsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		wt.width = msg.Width
		wt.height = msg.Height
		wt.list.SetSize(msg.Width, max(msg.Height-2, 1))
		wt.ready = true
		return wt, nil

	case snapshotMsg:
		if msg.err == nil {
			wt.setWindows(msg.windows)
		}
		return wt, nil

	case statusMsg:
		wt.statusText = msg.text
		return wt, clearStatusLater()

	case clearStatusMsg:
		wt.statusText = ""
		return wt, nil

	case tea.KeyMsg:
		if cmd := wt.action(msg.String()); cmd != nil {
			return wt, cmd
		}
	}

	var cmd tea.Cmd
	wt.list, cmd = wt.list.Update(msg)
	return wt, cmd
}

// windowAction maps a key to a daemon request on one window. ok is false
// for keys that are not window actions.
func windowAction(key string) (label string, do func(Client, uint32) error, ok bool) {
	switch key {
	case "enter", "a":
		return "activated", func(c Client, id uint32) error { return c.Activate(id) }, true
	case "m":
		return "maximize toggled", func(c Client, id uint32) error { return c.Maximize(id, "") }, true
	case "v":
		return "maximized vertically", func(c Client, id uint32) error { return c.Maximize(id, "vertical") }, true
	case "b":
		return "maximized horizontally", func(c Client, id uint32) error { return c.Maximize(id, "horizontal") }, true
	case "f":
		return "fullscreen toggled", func(c Client, id uint32) error { return c.Fullscreen(id, nil) }, true
	case "s":
		return "shade toggled", func(c Client, id uint32) error { return c.Shade(id) }, true
	case "p":
		return "placed", func(c Client, id uint32) error { return c.Place(id, "") }, true
	case "H", "L", "K", "J":
		mode := map[string]string{"H": "left", "L": "right", "K": "top", "J": "bottom"}[key]
		return "tiled " + mode, func(c Client, id uint32) error { return c.QuickTile(id, mode) }, true
	case "alt+h", "alt+l", "alt+k", "alt+j":
		dir := map[string]string{"alt+h": "left", "alt+l": "right", "alt+k": "up", "alt+j": "down"}[key]
		return "packed " + dir, func(c Client, id uint32) error { return c.Pack(id, dir, false) }, true
	}
	return "", nil, false
}

// runAction performs the request for key on window id and describes the
// outcome.
func runAction(client Client, key string, id uint32) statusMsg {
	label, do, ok := windowAction(key)
	switch {
	case !ok:
		return statusMsg{text: "unknown action " + key}
	case id == 0:
		return statusMsg{text: "no window selected"}
	case client == nil:
		return statusMsg{text: "daemon not connected"}
	}
	if err := do(client, id); err != nil {
		return statusMsg{text: fmt.Sprintf("error: %v", err)}
	}
	return statusMsg{text: fmt.Sprintf("%#x %s", id, label)}
}

// action returns the command for key, or nil when key is not an action.
func (wt WindowsTab) action(key string) tea.Cmd {
	if key == "r" {
		return fetchSnapshot(wt.client)
	}
	if _, _, ok := windowAction(key); !ok {
		return nil
	}
	client, id := wt.client, wt.selectedID()
	return tea.Sequence(
		func() tea.Msg { return runAction(client, key, id) },
		fetchSnapshot(client),
	)
}

// View implements tea.Model.
func (wt WindowsTab) View() string {
	if !wt.ready || wt.width == 0 || wt.height == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, wt.list.View(), wt.renderTabStatus())
}

func (wt WindowsTab) renderTabStatus() string {
	left := ""
	if wt.statusText != "" {
		color := lipgloss.Color("42")
		if strings.HasPrefix(wt.statusText, "error") {
			color = lipgloss.Color("196")
		}
		left = lipgloss.NewStyle().Foreground(color).Render(wt.statusText)
	}

	right := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render("enter:activate  m/v/b:maximize  f:fullscreen  s:shade  H/J/K/L:tile  alt+hjkl:pack  p:place  r:refresh")

	gap := max(wt.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return lipgloss.NewStyle().
		Width(wt.width).
		Padding(0, 1).
		Render(left + strings.Repeat(" ", gap) + right)
}
