package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/KDE/kwin-sub007/internal/config"
	"github.com/KDE/kwin-sub007/internal/ipc"
	"github.com/KDE/kwin-sub007/internal/workspace"
)

const refreshInterval = 2 * time.Second

// snapshotMsg carries a fresh view of the daemon.
type snapshotMsg struct {
	status  *ipc.StatusData
	windows []workspace.WindowInfo
	err     error
}

type tickMsg struct{}

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	result     *config.LoadResult
	loadErr    error
	client     Client

	activeTab Tab

	windowsTab  WindowsTab
	settingsTab SettingsTab
	hotkeysTab  HotkeysTab

	// Save overlay
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	// status is nil while the daemon does not answer.
	status *ipc.StatusData

	width  int
	height int
}

func newModel(configPath string, client Client) model {
	m := model{
		configPath: configPath,
		client:     client,
		activeTab:  TabWindows,
	}
	m.loadConfig()

	var cfg *config.Config
	if m.result != nil {
		cfg = m.result.Config
		m.originalConfig = cloneConfig(cfg)
	}
	m.windowsTab = NewWindowsTab(client)
	m.settingsTab = NewSettingsTab(cfg)
	m.hotkeysTab = NewHotkeysTab(cfg)
	return m
}

func (m *model) loadConfig() {
	var res *config.LoadResult
	var err error
	if m.configPath == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(m.configPath)
	}
	if err != nil {
		m.loadErr = err
		return
	}
	m.result = res
}

// savePath is where the editors write the config.
func (m model) savePath() (string, error) {
	if m.configPath != "" {
		return m.configPath, nil
	}
	return config.DefaultConfigPath()
}

func fetchSnapshot(client Client) tea.Cmd {
	return func() tea.Msg {
		if client == nil {
			return snapshotMsg{}
		}
		status, err := client.Status()
		if err != nil {
			return snapshotMsg{err: err}
		}
		windows, err := client.ListWindows()
		return snapshotMsg{status: status, windows: windows, err: err}
	}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(fetchSnapshot(m.client), scheduleRefresh())
}

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height
	sub := tea.WindowSizeMsg{Width: width, Height: m.contentHeight()}
	m.windowsTab, _ = m.windowsTab.Update(sub)
	m.settingsTab, _ = m.settingsTab.Update(sub)
	m.hotkeysTab, _ = m.hotkeysTab.Update(sub)
}

// contentHeight is the room left for tab content: status bar, tab bar with
// its margin, and help bar take four lines.
func (m model) contentHeight() int {
	return max(m.height-4, 1)
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tickMsg:
		return m, tea.Batch(fetchSnapshot(m.client), scheduleRefresh())
	case snapshotMsg:
		if msg.err != nil {
			m.status = nil
		} else {
			m.status = msg.status
		}
		var cmd tea.Cmd
		m.windowsTab, cmd = m.windowsTab.Update(msg)
		return m, cmd
	}

	// The save overlay captures all input when active.
	if m.saveOverlay.Active() {
		if km, ok := msg.(tea.KeyMsg); ok {
			if km.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			path, err := m.savePath()
			m.saveOverlay = m.saveOverlay.Update(km, m.result.Config, path, err, m.client, m.status != nil)
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.result.Config)
			}
		}
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" {
		if m.result != nil && m.result.Config != nil {
			m.saveOverlay.Show(m.originalConfig, m.result.Config)
		}
		return m, nil
	}

	// An open form or key editor consumes every key except ctrl+c.
	capturing := (m.activeTab == TabSettings && m.settingsTab.editing) ||
		(m.activeTab == TabHotkeys && m.hotkeysTab.editing)
	if capturing {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.delegate(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabWindows
			return m, nil
		case "2":
			m.activeTab = TabSettings
			return m, nil
		case "3":
			m.activeTab = TabHotkeys
			return m, nil
		}
	}
	return m.delegate(msg)
}

func (m model) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case TabWindows:
		m.windowsTab, cmd = m.windowsTab.Update(msg)
	case TabSettings:
		m.settingsTab, cmd = m.settingsTab.Update(msg)
	case TabHotkeys:
		m.hotkeysTab, cmd = m.hotkeysTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	used := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := max(m.height-used, 1)

	var content string
	switch {
	case m.saveOverlay.Active():
		content = m.saveOverlay.View(m.width, contentHeight)
	case m.loadErr != nil && m.activeTab != TabWindows:
		content = lipgloss.NewStyle().
			Width(m.width).
			Height(contentHeight).
			Foreground(lipgloss.Color("196")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("config error: " + m.loadErr.Error())
	default:
		switch m.activeTab {
		case TabWindows:
			content = m.windowsTab.View()
		case TabSettings:
			content = m.settingsTab.View()
		case TabHotkeys:
			content = m.hotkeysTab.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, statusBar, tabBar, content, helpBar)
}
