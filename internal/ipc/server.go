package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/KDE/kwin-sub007/internal/config"
	"github.com/KDE/kwin-sub007/internal/placement"
	"github.com/KDE/kwin-sub007/internal/platform"
	"github.com/KDE/kwin-sub007/internal/runtimepath"
	"github.com/KDE/kwin-sub007/internal/session"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
	"github.com/KDE/kwin-sub007/internal/workspace"
)

// commandTimeout bounds how long a request waits for the workspace loop.
const commandTimeout = 5 * time.Second

// Executor runs fn on the goroutine that owns the workspace.
type Executor interface {
	Do(ctx context.Context, fn func(*workspace.State) error) error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	listener   net.Listener
	cfg        *config.Config
	cfgMu      sync.RWMutex
	exec       Executor
	startTime  time.Time
	reloadChan chan struct{}

	// ConfigPath is reloaded on RELOAD; empty means the default path.
	ConfigPath string

	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. An empty socketPath uses the runtime
// socket path.
func NewServer(socketPath string, cfg *config.Config, exec Executor, reloadChan chan struct{}) (*Server, error) {
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = p
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		exec:       exec,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// SocketPath is where the server listens.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// Serve runs the server until ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	s.shutdownMu.Lock()
	s.shuttingDown = false
	s.shutdownMu.Unlock()

	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return ctx.Err()
}

func (s *Server) String() string { return "ipc" }

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandStatus:
		return s.handleStatus()
	case CommandListWindows:
		return s.handleListWindows()
	case CommandActivate:
		return s.windowCommand(req.Payload, func(st *workspace.State, w *window.Window, _ WindowPayload) error {
			st.Activate(w)
			return nil
		})
	case CommandMaximize:
		return s.handleMaximize(req.Payload)
	case CommandQuickTile:
		return s.handleQuickTile(req.Payload)
	case CommandFullscreen:
		return s.handleFullscreen(req.Payload)
	case CommandShade:
		return s.windowCommand(req.Payload, func(st *workspace.State, w *window.Window, _ WindowPayload) error {
			st.ToggleShade(w)
			return nil
		})
	case CommandPlace:
		return s.handlePlace(req.Payload)
	case CommandPack:
		return s.handlePack(req.Payload)
	case CommandTabAdd:
		return s.handleTabAdd(req.Payload)
	case CommandTabRemove:
		return s.windowCommand(req.Payload, func(st *workspace.State, w *window.Window, _ WindowPayload) error {
			return st.TabRemove(w)
		})
	case CommandTabNext:
		return s.handleTabNext(req.Payload)
	case CommandWorkarea:
		return s.handleWorkarea(req.Payload)
	case CommandSaveSession:
		return s.handleSaveSession(req.Payload)
	case CommandRestoreSession:
		return s.handleRestoreSession(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// do runs fn on the workspace loop with the command timeout.
func (s *Server) do(fn func(*workspace.State) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return s.exec.Do(ctx, fn)
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// target resolves a window id, zero meaning the active window.
func target(st *workspace.State, id uint32) (*window.Window, error) {
	if id == 0 {
		if w := st.Active(); w != nil {
			return w, nil
		}
		return nil, fmt.Errorf("no active window")
	}
	w := st.Window(platform.WindowID(id))
	if w == nil || !w.Managed {
		return nil, fmt.Errorf("window %#x is not managed", id)
	}
	return w, nil
}

func okOrError(err error, data any) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// windowCommand handles the commands whose payload only names a window.
func (s *Server) windowCommand(payload json.RawMessage, fn func(*workspace.State, *window.Window, WindowPayload) error) *Response {
	var req WindowPayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	err := s.do(func(st *workspace.State) error {
		w, err := target(st, req.Window)
		if err != nil {
			return err
		}
		return fn(st, w, req)
	})
	return okOrError(err, nil)
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	res, err := config.LoadFromPath(s.configPath())
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	s.UpdateConfig(res.Config)

	// Notify the daemon (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) configPath() string {
	if s.ConfigPath != "" {
		return s.ConfigPath
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return ""
	}
	return path
}

func (s *Server) handleStatus() *Response {
	var data StatusData
	err := s.do(func(st *workspace.State) error {
		data.Status = st.Status()
		return nil
	})
	data.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	return okOrError(err, data)
}

func (s *Server) handleListWindows() *Response {
	var data WindowsData
	err := s.do(func(st *workspace.State) error {
		data.Windows = st.ListWindows()
		return nil
	})
	return okOrError(err, data)
}

func (s *Server) handleMaximize(payload json.RawMessage) *Response {
	var req MaximizePayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	err := s.do(func(st *workspace.State) error {
		w, err := target(st, req.Window)
		if err != nil {
			return err
		}
		if req.Mode == "" {
			st.ToggleMaximize(w)
			return nil
		}
		mode, err := window.ParseMaximizeMode(req.Mode)
		if err != nil {
			return err
		}
		st.SetMaximize(w, mode)
		return nil
	})
	return okOrError(err, nil)
}

func (s *Server) handleQuickTile(payload json.RawMessage) *Response {
	var req QuickTilePayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	mode, err := window.ParseQuickTileMode(req.Mode)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	err = s.do(func(st *workspace.State) error {
		w, err := target(st, req.Window)
		if err != nil {
			return err
		}
		st.QuickTile(w, mode)
		return nil
	})
	return okOrError(err, nil)
}

func (s *Server) handleFullscreen(payload json.RawMessage) *Response {
	var req FullscreenPayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	err := s.do(func(st *workspace.State) error {
		w, err := target(st, req.Window)
		if err != nil {
			return err
		}
		set := !w.Fullscreen
		if req.Set != nil {
			set = *req.Set
		}
		st.SetFullscreen(w, set)
		return nil
	})
	return okOrError(err, nil)
}

func (s *Server) handlePlace(payload json.RawMessage) *Response {
	var req PlacePayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	policy := placement.Default
	if req.Policy != "" {
		policy = placement.PolicyFromString(req.Policy, false)
		// Unknown names fall back to Smart.
		if !strings.EqualFold(policy.String(), strings.ReplaceAll(strings.TrimSpace(req.Policy), "-", "")) {
			return NewErrorResponse(fmt.Sprintf("unknown placement policy %q", req.Policy))
		}
	}
	err := s.do(func(st *workspace.State) error {
		w, err := target(st, req.Window)
		if err != nil {
			return err
		}
		st.PlaceWindow(w, policy)
		return nil
	})
	return okOrError(err, nil)
}

func (s *Server) handlePack(payload json.RawMessage) *Response {
	var req PackPayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	dir, err := workspace.ParseDirection(req.Direction)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	err = s.do(func(st *workspace.State) error {
		w, err := target(st, req.Window)
		if err != nil {
			return err
		}
		if req.Grow {
			st.Grow(w, dir)
		} else {
			st.Pack(w, dir)
		}
		return nil
	})
	return okOrError(err, nil)
}

func (s *Server) handleTabAdd(payload json.RawMessage) *Response {
	var req TabAddPayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	if req.Other == 0 {
		return NewErrorResponse("other is required")
	}
	err := s.do(func(st *workspace.State) error {
		w, err := target(st, req.Window)
		if err != nil {
			return err
		}
		other, err := target(st, req.Other)
		if err != nil {
			return err
		}
		return st.TabAdd(w, other)
	})
	return okOrError(err, nil)
}

func (s *Server) handleTabNext(payload json.RawMessage) *Response {
	var req TabNextPayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	err := s.do(func(st *workspace.State) error {
		w, err := target(st, req.Window)
		if err != nil {
			return err
		}
		return st.TabNext(w, req.Back)
	})
	return okOrError(err, nil)
}

func (s *Server) handleWorkarea(payload json.RawMessage) *Response {
	var req WorkareaPayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	opt := workarea.WorkArea
	if req.Area != "" {
		var err error
		if opt, err = workarea.ParseAreaOption(req.Area); err != nil {
			return NewErrorResponse(err.Error())
		}
	}
	data := WorkareaData{Area: opt.String(), Screen: req.Screen}
	err := s.do(func(st *workspace.State) error {
		if req.Screen < 0 || req.Screen >= len(st.Screens()) {
			return fmt.Errorf("screen %d does not exist", req.Screen)
		}
		if req.Desktop < 0 || req.Desktop > st.DesktopCount() {
			return fmt.Errorf("desktop %d does not exist", req.Desktop)
		}
		data.Desktop = req.Desktop
		if data.Desktop == 0 {
			data.Desktop = st.CurrentDesktop()
		}
		data.Rect = st.Area(opt, req.Screen, data.Desktop)
		return nil
	})
	return okOrError(err, data)
}

func (s *Server) store() *session.Store {
	return session.NewStore(s.GetConfig().SessionDir)
}

func (s *Server) handleSaveSession(payload json.RawMessage) *Response {
	var req SessionPayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	store := s.store()
	data := SessionData{Name: req.Name}
	err := s.do(func(st *workspace.State) error {
		sess, err := st.SaveSession(store, req.Name)
		if err != nil {
			return err
		}
		data.Windows = len(sess.Windows)
		return nil
	})
	if err == nil {
		data.Path, _ = store.Path(req.Name)
	}
	return okOrError(err, data)
}

func (s *Server) handleRestoreSession(payload json.RawMessage) *Response {
	var req SessionPayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	sess, err := s.store().Read(req.Name)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	data := SessionData{Name: sess.Name, Windows: len(sess.Windows)}
	err = s.do(func(st *workspace.State) error {
		data.Restored = st.RestoreSession(sess)
		return nil
	})
	return okOrError(err, data)
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
