// Package tui is the interactive dashboard: a live window list driven over
// the daemon socket, plus editors for the settings and hotkeys that write
// the config file back.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/KDE/kwin-sub007/internal/ipc"
	"github.com/KDE/kwin-sub007/internal/workspace"
)

// Client is the part of the daemon client the dashboard drives.
type Client interface {
	Ping() error
	Reload() error
	Status() (*ipc.StatusData, error)
	ListWindows() ([]workspace.WindowInfo, error)
	Activate(id uint32) error
	Maximize(id uint32, mode string) error
	QuickTile(id uint32, mode string) error
	Fullscreen(id uint32, set *bool) error
	Shade(id uint32) error
	Place(id uint32, policy string) error
	Pack(id uint32, direction string, grow bool) error
}

var _ Client = (*ipc.Client)(nil)

// Run starts the dashboard on the current terminal. configPath selects the
// file the editors save to; empty means the default path.
func Run(configPath string, client Client) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	p := tea.NewProgram(newModel(configPath, client), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
