// Package mcp exposes the window manager to MCP clients over stdio. Every
// tool is a thin wrapper around one daemon IPC command.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/KDE/kwin-sub007/internal/ipc"
	"github.com/KDE/kwin-sub007/internal/workspace"
)

const (
	ServerName    = "kwin-sub007"
	ServerVersion = "0.1.0"
)

// Daemon is the part of the IPC client the tools use.
type Daemon interface {
	Status() (*ipc.StatusData, error)
	ListWindows() ([]workspace.WindowInfo, error)
	Activate(id uint32) error
	Maximize(id uint32, mode string) error
	QuickTile(id uint32, mode string) error
	Fullscreen(id uint32, set *bool) error
	Shade(id uint32) error
	Place(id uint32, policy string) error
	Pack(id uint32, direction string, grow bool) error
	TabAdd(id, other uint32) error
	TabRemove(id uint32) error
	TabNext(id uint32, back bool) error
	Workarea(area string, screen, desktop int) (*ipc.WorkareaData, error)
	SaveSession(name string) (*ipc.SessionData, error)
	RestoreSession(name string) (*ipc.SessionData, error)
	Reload() error
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for window management.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates an MCP server that forwards to daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves one session over transport.
func (s *Server) Connect(ctx context.Context, transport mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.mcpServer.Connect(ctx, transport, nil)
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the window count, current desktop, desktop count, screens and active window of the running window manager.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List managed windows bottom of the stack first, with id, title, class, frame geometry, desktop and state. Optionally filter by class or desktop.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "activate_window",
		Description: "Activate a window: switch to its desktop, unminimize it, raise it and give it focus.",
	}, s.handleActivate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "maximize_window",
		Description: "Set the maximize mode of a window, or toggle full maximize when no mode is given.",
	}, s.handleMaximize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "quick_tile_window",
		Description: "Tile a window to a half or quarter of its screen. Repeating the same side moves it to the neighbouring screen.",
	}, s.handleQuickTile)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_fullscreen",
		Description: "Enter or leave fullscreen for a window, or toggle it.",
	}, s.handleFullscreen)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "shade_window",
		Description: "Toggle shading (rolling the window up to its titlebar).",
	}, s.handleShade)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "place_window",
		Description: "Re-run initial placement for a window with a placement policy.",
	}, s.handlePlace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pack_window",
		Description: "Move a window towards a direction until it touches another window or the work area edge, or grow/shrink it that way.",
	}, s.handlePack)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "tab_window",
		Description: "Manage window tab groups: add a window to another window's group, remove it from its group, or switch to the next or previous tab.",
	}, s.handleTab)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_workarea",
		Description: "Return a client area rectangle (work area, maximize area, full screen...) for a screen and desktop.",
	}, s.handleWorkarea)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_session",
		Description: "Save the geometry and state of every session-managed window under a name.",
	}, s.handleSaveSession)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_session",
		Description: "Apply a saved session to the windows currently managed.",
	}, s.handleRestoreSession)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Reload the window manager configuration and window rules from disk.",
	}, s.handleReload)
}
