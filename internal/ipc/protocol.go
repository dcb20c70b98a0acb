package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/workspace"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandStatus         CommandType = "STATUS"
	CommandListWindows    CommandType = "LIST_WINDOWS"
	CommandActivate       CommandType = "ACTIVATE"
	CommandMaximize       CommandType = "MAXIMIZE"
	CommandQuickTile      CommandType = "QUICK_TILE"
	CommandFullscreen     CommandType = "FULLSCREEN"
	CommandShade          CommandType = "SHADE"
	CommandPlace          CommandType = "PLACE"
	CommandPack           CommandType = "PACK"
	CommandTabAdd         CommandType = "TAB_ADD"
	CommandTabRemove      CommandType = "TAB_REMOVE"
	CommandTabNext        CommandType = "TAB_NEXT"
	CommandWorkarea       CommandType = "WORKAREA"
	CommandSaveSession    CommandType = "SAVE_SESSION"
	CommandRestoreSession CommandType = "RESTORE_SESSION"
	CommandReload         CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by STATUS
type StatusData struct {
	workspace.Status
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Windows []workspace.WindowInfo `json:"windows"`
}

// WindowPayload targets one window. A zero Window means the active one.
type WindowPayload struct {
	Window uint32 `json:"window,omitempty"`
}

type MaximizePayload struct {
	Window uint32 `json:"window,omitempty"`
	// Mode is full, vertical, horizontal or restore; empty toggles full.
	Mode string `json:"mode,omitempty"`
}

type QuickTilePayload struct {
	Window uint32 `json:"window,omitempty"`
	Mode   string `json:"mode"`
}

type FullscreenPayload struct {
	Window uint32 `json:"window,omitempty"`
	// Set forces the state; nil toggles.
	Set *bool `json:"set,omitempty"`
}

type PlacePayload struct {
	Window uint32 `json:"window,omitempty"`
	Policy string `json:"policy,omitempty"`
}

type PackPayload struct {
	Window    uint32 `json:"window,omitempty"`
	Direction string `json:"direction"`
	// Grow resizes towards the direction instead of moving.
	Grow bool `json:"grow,omitempty"`
}

type TabAddPayload struct {
	Window uint32 `json:"window,omitempty"`
	Other  uint32 `json:"other"`
}

type TabNextPayload struct {
	Window uint32 `json:"window,omitempty"`
	Back   bool   `json:"back,omitempty"`
}

type WorkareaPayload struct {
	Area    string `json:"area,omitempty"`
	Screen  int    `json:"screen"`
	Desktop int    `json:"desktop,omitempty"`
}

type WorkareaData struct {
	Area    string    `json:"area"`
	Screen  int       `json:"screen"`
	Desktop int       `json:"desktop"`
	Rect    geom.Rect `json:"rect"`
}

type SessionPayload struct {
	Name string `json:"name"`
}

type SessionData struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	Windows  int    `json:"windows"`
	Restored int    `json:"restored,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
