package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/KDE/kwin-sub007/internal/runtimepath"
	"github.com/KDE/kwin-sub007/internal/workspace"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the daemon listening on socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends cmd with payload and decodes the response data into out when
// out is not nil.
func (c *Client) call(cmd CommandType, payload, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// Status retrieves daemon status
func (c *Client) Status() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListWindows returns the managed windows, bottom of the stack first.
func (c *Client) ListWindows() ([]workspace.WindowInfo, error) {
	var data WindowsData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return data.Windows, nil
}

// Activate asks the daemon to activate a window; zero means the active one.
func (c *Client) Activate(id uint32) error {
	return c.call(CommandActivate, WindowPayload{Window: id}, nil)
}

// Maximize sets the maximize mode of a window; an empty mode toggles.
func (c *Client) Maximize(id uint32, mode string) error {
	return c.call(CommandMaximize, MaximizePayload{Window: id, Mode: mode}, nil)
}

func (c *Client) QuickTile(id uint32, mode string) error {
	return c.call(CommandQuickTile, QuickTilePayload{Window: id, Mode: mode}, nil)
}

// Fullscreen forces fullscreen on or off; a nil set toggles.
func (c *Client) Fullscreen(id uint32, set *bool) error {
	return c.call(CommandFullscreen, FullscreenPayload{Window: id, Set: set}, nil)
}

func (c *Client) Shade(id uint32) error {
	return c.call(CommandShade, WindowPayload{Window: id}, nil)
}

// Place re-runs placement; an empty policy uses the configured one.
func (c *Client) Place(id uint32, policy string) error {
	return c.call(CommandPlace, PlacePayload{Window: id, Policy: policy}, nil)
}

// Pack moves a window towards direction, or grows it when grow is set.
func (c *Client) Pack(id uint32, direction string, grow bool) error {
	return c.call(CommandPack, PackPayload{Window: id, Direction: direction, Grow: grow}, nil)
}

func (c *Client) TabAdd(id, other uint32) error {
	return c.call(CommandTabAdd, TabAddPayload{Window: id, Other: other}, nil)
}

func (c *Client) TabRemove(id uint32) error {
	return c.call(CommandTabRemove, WindowPayload{Window: id}, nil)
}

func (c *Client) TabNext(id uint32, back bool) error {
	return c.call(CommandTabNext, TabNextPayload{Window: id, Back: back}, nil)
}

// Workarea returns a client area. Desktop zero means the current desktop.
func (c *Client) Workarea(area string, screen, desktop int) (*WorkareaData, error) {
	var data WorkareaData
	if err := c.call(CommandWorkarea, WorkareaPayload{Area: area, Screen: screen, Desktop: desktop}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) SaveSession(name string) (*SessionData, error) {
	var data SessionData
	if err := c.call(CommandSaveSession, SessionPayload{Name: name}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) RestoreSession(name string) (*SessionData, error) {
	var data SessionData
	if err := c.call(CommandRestoreSession, SessionPayload{Name: name}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.Status()
	return err
}
