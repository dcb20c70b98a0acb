package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/KDE/kwin-sub007/internal/workspace"
)

func ok(err error) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.daemon.Status()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{Status: status.Status, UptimeSeconds: status.UptimeSeconds}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows, err := s.daemon.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	class := strings.ToLower(strings.TrimSpace(args.Class))
	out := make([]workspace.WindowInfo, 0, len(windows))
	for _, w := range windows {
		if class != "" && !strings.Contains(strings.ToLower(w.Class), class) {
			continue
		}
		// Sticky windows show on every desktop.
		if args.Desktop > 0 && w.Desktop != args.Desktop && w.Desktop != -1 {
			continue
		}
		out = append(out, w)
	}
	return nil, ListWindowsOutput{Windows: out}, nil
}

func (s *Server) handleActivate(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	return ok(s.daemon.Activate(args.Window))
}

func (s *Server) handleMaximize(_ context.Context, _ *mcpsdk.CallToolRequest, args MaximizeInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	return ok(s.daemon.Maximize(args.Window, args.Mode))
}

func (s *Server) handleQuickTile(_ context.Context, _ *mcpsdk.CallToolRequest, args QuickTileInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if strings.TrimSpace(args.Mode) == "" {
		return nil, OKOutput{}, fmt.Errorf("mode is required")
	}
	return ok(s.daemon.QuickTile(args.Window, args.Mode))
}

func (s *Server) handleFullscreen(_ context.Context, _ *mcpsdk.CallToolRequest, args FullscreenInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	return ok(s.daemon.Fullscreen(args.Window, args.Set))
}

func (s *Server) handleShade(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	return ok(s.daemon.Shade(args.Window))
}

func (s *Server) handlePlace(_ context.Context, _ *mcpsdk.CallToolRequest, args PlaceInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	return ok(s.daemon.Place(args.Window, args.Policy))
}

func (s *Server) handlePack(_ context.Context, _ *mcpsdk.CallToolRequest, args PackInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	return ok(s.daemon.Pack(args.Window, args.Direction, args.Grow))
}

func (s *Server) handleTab(_ context.Context, _ *mcpsdk.CallToolRequest, args TabInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	switch args.Action {
	case "add":
		if args.Other == 0 {
			return nil, OKOutput{}, fmt.Errorf("add requires other")
		}
		return ok(s.daemon.TabAdd(args.Window, args.Other))
	case "remove":
		return ok(s.daemon.TabRemove(args.Window))
	case "next":
		return ok(s.daemon.TabNext(args.Window, false))
	case "prev":
		return ok(s.daemon.TabNext(args.Window, true))
	}
	return nil, OKOutput{}, fmt.Errorf("unknown tab action %q (want add, remove, next or prev)", args.Action)
}

func (s *Server) handleWorkarea(_ context.Context, _ *mcpsdk.CallToolRequest, args WorkareaInput) (*mcpsdk.CallToolResult, WorkareaOutput, error) {
	data, err := s.daemon.Workarea(args.Area, args.Screen, args.Desktop)
	if err != nil {
		return nil, WorkareaOutput{}, err
	}
	return nil, WorkareaOutput{
		Area:    data.Area,
		Screen:  data.Screen,
		Desktop: data.Desktop,
		X:       data.Rect.X,
		Y:       data.Rect.Y,
		Width:   data.Rect.Width,
		Height:  data.Rect.Height,
	}, nil
}

func (s *Server) handleSaveSession(_ context.Context, _ *mcpsdk.CallToolRequest, args SessionInput) (*mcpsdk.CallToolResult, SessionOutput, error) {
	data, err := s.daemon.SaveSession(args.Name)
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, SessionOutput{Name: data.Name, Path: data.Path, Windows: data.Windows}, nil
}

func (s *Server) handleRestoreSession(_ context.Context, _ *mcpsdk.CallToolRequest, args SessionInput) (*mcpsdk.CallToolResult, SessionOutput, error) {
	data, err := s.daemon.RestoreSession(args.Name)
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, SessionOutput{Name: data.Name, Path: data.Path, Restored: data.Restored}, nil
}

func (s *Server) handleReload(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, OKOutput, error) {
	return ok(s.daemon.Reload())
}
