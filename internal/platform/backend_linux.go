//go:build linux

package platform

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/timestamp"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/x11"
)

// LinuxBackend drives an X11 server as its window manager.
type LinuxBackend struct {
	conn *x11.Connection

	mu sync.Mutex
	// ignoreUnmap counts the unmaps we caused ourselves, so they are not
	// mistaken for a client withdrawing its window.
	ignoreUnmap map[WindowID]int
	input       map[WindowID]bool
	sink        func(Event)
	subscribed  bool
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{
		conn:        conn,
		ignoreUnmap: make(map[WindowID]int),
		input:       make(map[WindowID]bool),
	}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn), nil
}

// Start takes over window management on the root window and announces
// the EWMH support.
func (b *LinuxBackend) Start(name string) error {
	if err := b.conn.BecomeWM(); err != nil {
		return err
	}
	if err := b.conn.SelectScreenChanges(); err != nil {
		log.Printf("platform: randr screen change notifications unavailable: %v", err)
	}
	return b.conn.Announce(name)
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// SetSink installs the function that receives translated events. It must
// be set before Serve.
func (b *LinuxBackend) SetSink(sink func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sink = sink
}

// Serve runs the X event loop until ctx is done.
func (b *LinuxBackend) Serve(ctx context.Context) error {
	b.mu.Lock()
	if !b.subscribed {
		b.conn.Subscribe(b)
		b.subscribed = true
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.conn.EventLoop()
	}()

	select {
	case <-ctx.Done():
		b.conn.Quit()
		return ctx.Err()
	case <-done:
		return fmt.Errorf("x11 event loop exited")
	}
}

func (b *LinuxBackend) String() string { return "x11-events" }

func (b *LinuxBackend) Screens() ([]geom.Rect, error) {
	return b.conn.Screens()
}

// Clients returns every top-level that is mapped or that a window manager
// iconified, which covers windows present before we started.
func (b *LinuxBackend) Clients() ([]Client, error) {
	wins, err := b.conn.TopLevels()
	if err != nil {
		return nil, fmt.Errorf("failed to query top-level windows: %w", err)
	}
	var clients []Client
	for _, win := range wins {
		p, err := b.conn.ReadProps(win)
		if err != nil || p.OverrideRedirect {
			continue
		}
		if !p.Mapped && !p.Iconic {
			continue
		}
		if err := b.conn.Watch(win); err != nil {
			continue
		}
		c := ClientFromProps(WindowID(win), p)
		c.Mapped = p.Mapped
		b.rememberInput(c)
		clients = append(clients, c)
	}
	return clients, nil
}

func (b *LinuxBackend) ServerTime() timestamp.Time {
	return timestamp.Time(b.conn.LastTime())
}

func (b *LinuxBackend) Pointer() (geom.Point, error) {
	return b.conn.Pointer()
}

func (b *LinuxBackend) Configure(id WindowID, frame geom.Rect) error {
	return b.conn.Configure(xproto.Window(id), frame)
}

func (b *LinuxBackend) SetMapped(id WindowID, mapped bool) error {
	if mapped {
		return b.conn.Map(xproto.Window(id))
	}
	b.mu.Lock()
	b.ignoreUnmap[id]++
	b.mu.Unlock()
	if err := b.conn.Unmap(xproto.Window(id)); err != nil {
		b.mu.Lock()
		b.ignoreUnmap[id]--
		b.mu.Unlock()
		return err
	}
	return nil
}

func (b *LinuxBackend) Focus(id WindowID, t timestamp.Time) error {
	b.mu.Lock()
	input, ok := b.input[id]
	b.mu.Unlock()
	if !ok {
		input = true
	}
	return b.conn.Focus(xproto.Window(id), uint32(t), input)
}

func (b *LinuxBackend) FocusRoot() error {
	return b.conn.FocusRoot()
}

func (b *LinuxBackend) Restack(ids []WindowID) error {
	wins := make([]xproto.Window, len(ids))
	for i, id := range ids {
		wins[i] = xproto.Window(id)
	}
	return b.conn.Restack(wins)
}

func (b *LinuxBackend) Close(id WindowID) error {
	return b.conn.CloseWindow(xproto.Window(id))
}

func (b *LinuxBackend) PublishState(id WindowID, st WindowState) error {
	return b.conn.PublishState(xproto.Window(id), x11.WindowState{
		Desktop:          st.Desktop,
		MaximizedVert:    st.Maximize&window.MaximizeVertical != 0,
		MaximizedHorz:    st.Maximize&window.MaximizeHorizontal != 0,
		Fullscreen:       st.Fullscreen,
		Hidden:           st.Hidden,
		Shaded:           st.Shaded,
		Above:            st.KeepAbove,
		Below:            st.KeepBelow,
		SkipTaskbar:      st.SkipTaskbar,
		SkipPager:        st.SkipPager,
		DemandsAttention: st.DemandsAttention,
	})
}

func (b *LinuxBackend) PublishActive(id WindowID) error {
	return b.conn.PublishActive(xproto.Window(id))
}

func (b *LinuxBackend) PublishDesktops(current, count int, workAreas []geom.Rect) error {
	return b.conn.PublishDesktops(current, count, workAreas)
}

func (b *LinuxBackend) rememberInput(c Client) {
	b.mu.Lock()
	b.input[c.ID] = c.WantsInput
	b.mu.Unlock()
}

func (b *LinuxBackend) emit(ev Event) {
	b.mu.Lock()
	sink := b.sink
	b.mu.Unlock()
	if sink != nil {
		sink(ev)
	}
}

// MapRequest implements x11.EventHandler.
func (b *LinuxBackend) MapRequest(win xproto.Window) {
	p, err := b.conn.ReadProps(win)
	if err != nil {
		log.Printf("platform: map request %#x: %v", uint32(win), err)
		return
	}
	if err := b.conn.Watch(win); err != nil {
		log.Printf("platform: watch %#x: %v", uint32(win), err)
	}
	c := ClientFromProps(WindowID(win), p)
	b.rememberInput(c)
	b.emit(Event{Kind: EventMapRequest, Window: c.ID, Client: c})
}

func (b *LinuxBackend) Unmap(win xproto.Window, _ bool) {
	id := WindowID(win)
	b.mu.Lock()
	if b.ignoreUnmap[id] > 0 {
		b.ignoreUnmap[id]--
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	if err := b.conn.Withdraw(win); err != nil {
		log.Printf("platform: withdraw %#x: %v", uint32(win), err)
	}
	b.emit(Event{Kind: EventUnmap, Window: id, Withdrawn: true})
}

func (b *LinuxBackend) Destroy(win xproto.Window) {
	id := WindowID(win)
	b.mu.Lock()
	delete(b.ignoreUnmap, id)
	delete(b.input, id)
	b.mu.Unlock()
	b.emit(Event{Kind: EventDestroy, Window: id})
}

// ConfigureRequest fills the fields the client left out with the current
// geometry so the core always sees a complete frame.
func (b *LinuxBackend) ConfigureRequest(req x11.ConfigureRequest) {
	frame := req.Rect
	if req.Mask&(xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight) == 0 {
		// Pure stacking or border requests are answered by the next restack.
		return
	}
	if cur, err := b.currentFrame(req.Window); err == nil {
		frame = mergeConfigure(cur, req)
	}
	b.emit(Event{Kind: EventConfigureRequest, Window: WindowID(req.Window), Frame: frame})
}

func (b *LinuxBackend) currentFrame(win xproto.Window) (geom.Rect, error) {
	p, err := b.conn.ReadProps(win)
	if err != nil {
		return geom.Rect{}, err
	}
	return p.Frame, nil
}

func mergeConfigure(cur geom.Rect, req x11.ConfigureRequest) geom.Rect {
	if req.Mask&xproto.ConfigWindowX != 0 {
		cur.X = req.Rect.X
	}
	if req.Mask&xproto.ConfigWindowY != 0 {
		cur.Y = req.Rect.Y
	}
	if req.Mask&xproto.ConfigWindowWidth != 0 {
		cur.Width = req.Rect.Width
	}
	if req.Mask&xproto.ConfigWindowHeight != 0 {
		cur.Height = req.Rect.Height
	}
	return cur
}

func (b *LinuxBackend) PropertyChange(win xproto.Window, atom string) {
	id := WindowID(win)
	switch atom {
	case "WM_NAME", "_NET_WM_NAME":
		b.emit(Event{Kind: EventTitle, Window: id, Title: b.conn.ReadTitle(win)})
	case "WM_NORMAL_HINTS":
		b.emit(Event{Kind: EventSizeHints, Window: id, Hints: b.conn.ReadSizeHints(win)})
	case "_NET_WM_STRUT", "_NET_WM_STRUT_PARTIAL":
		b.emit(Event{Kind: EventStrut, Window: id, Strut: b.conn.ReadStrut(win)})
	case "_NET_WM_USER_TIME":
		if t, ok := b.conn.ReadUserTime(win); ok {
			b.emit(Event{Kind: EventUserTime, Window: id, Time: timestamp.Time(t)})
		}
	case "_NET_STARTUP_ID":
		sid := b.conn.ReadStartupID(win)
		b.emit(Event{Kind: EventStartupID, Window: id, StartupID: sid, Time: StartupTime(sid)})
	case "WM_HINTS":
		hints, err := icccm.WmHintsGet(b.conn.XUtil, win)
		if err != nil {
			return
		}
		action := StateRemove
		if hints.Flags&icccm.HintUrgency != 0 {
			action = StateAdd
		}
		b.emit(Event{Kind: EventStateRequest, Window: id, Action: action, States: StateDemandsAttention})
	}
}

func (b *LinuxBackend) ClientMessage(win xproto.Window, msgType string, data []uint32) {
	atomName := func(atom uint32) string {
		name, _ := xprop.AtomName(b.conn.XUtil, xproto.Atom(atom))
		return name
	}
	if ev, ok := TranslateClientMessage(WindowID(win), msgType, data, atomName); ok {
		b.emit(ev)
	}
}

func (b *LinuxBackend) FocusIn(win xproto.Window) {
	if win == b.conn.Root {
		return
	}
	b.emit(Event{Kind: EventFocusIn, Window: WindowID(win)})
}

func (b *LinuxBackend) ScreensChanged() {
	screens, err := b.conn.Screens()
	if err != nil {
		log.Printf("platform: screens changed: %v", err)
		return
	}
	b.emit(Event{Kind: EventScreensChanged, Screens: screens})
}

// ClientFromProps converts the properties of a window being managed.
func ClientFromProps(id WindowID, p *x11.Props) Client {
	c := Client{
		ID:               id,
		Kind:             p.Kind,
		Title:            p.Title,
		ResourceName:     p.ResourceName,
		ResourceClass:    p.ResourceClass,
		Role:             p.Role,
		Machine:          p.Machine,
		PID:              p.PID,
		Leader:           WindowID(p.Leader),
		GroupLeader:      WindowID(p.GroupLeader),
		TransientFor:     WindowID(p.TransientFor),
		GroupTransient:   p.GroupTransient,
		Modal:            p.HasState("_NET_WM_STATE_MODAL"),
		Frame:            p.Frame,
		Hints:            p.Hints,
		Strut:            p.Strut,
		UserTime:         timestamp.Unknown,
		StartupID:        p.StartupID,
		StartupTime:      StartupTime(p.StartupID),
		SessionID:        p.SessionID,
		Desktop:          p.Desktop,
		Fullscreen:       p.HasState("_NET_WM_STATE_FULLSCREEN"),
		Minimized:        p.Iconic || p.HasState("_NET_WM_STATE_HIDDEN"),
		Shaded:           p.HasState("_NET_WM_STATE_SHADED"),
		KeepAbove:        p.HasState("_NET_WM_STATE_ABOVE"),
		KeepBelow:        p.HasState("_NET_WM_STATE_BELOW"),
		SkipTaskbar:      p.HasState("_NET_WM_STATE_SKIP_TASKBAR"),
		SkipPager:        p.HasState("_NET_WM_STATE_SKIP_PAGER"),
		DemandsAttention: p.Urgent || p.HasState("_NET_WM_STATE_DEMANDS_ATTENTION"),
		WantsInput:       p.Input,
	}
	if p.HasUserTime {
		c.UserTime = timestamp.Time(p.UserTime)
	}
	if p.HasState("_NET_WM_STATE_MAXIMIZED_VERT") {
		c.Maximize |= window.MaximizeVertical
	}
	if p.HasState("_NET_WM_STATE_MAXIMIZED_HORZ") {
		c.Maximize |= window.MaximizeHorizontal
	}
	return c
}

var stateAtoms = map[string]StateFlag{
	"_NET_WM_STATE_MAXIMIZED_VERT":    StateMaximizedVert,
	"_NET_WM_STATE_MAXIMIZED_HORZ":    StateMaximizedHorz,
	"_NET_WM_STATE_FULLSCREEN":        StateFullscreen,
	"_NET_WM_STATE_SHADED":            StateShaded,
	"_NET_WM_STATE_ABOVE":             StateAbove,
	"_NET_WM_STATE_BELOW":             StateBelow,
	"_NET_WM_STATE_DEMANDS_ATTENTION": StateDemandsAttention,
	"_NET_WM_STATE_HIDDEN":            StateHidden,
	"_NET_WM_STATE_SKIP_TASKBAR":      StateSkipTaskbar,
	"_NET_WM_STATE_SKIP_PAGER":        StateSkipPager,
}

// TranslateClientMessage turns a root or client message into an Event.
// atomName resolves the property atoms of a _NET_WM_STATE request.
func TranslateClientMessage(id WindowID, msgType string, data []uint32, atomName func(uint32) string) (Event, bool) {
	get := func(i int) uint32 {
		if i < len(data) {
			return data[i]
		}
		return 0
	}
	switch msgType {
	case "_NET_ACTIVE_WINDOW":
		// Source indication 2 is a pager or other tool.
		return Event{Kind: EventActivateRequest, Window: id, Time: timestamp.Time(get(1)), FromTool: get(0) == 2}, true
	case "_NET_CLOSE_WINDOW":
		return Event{Kind: EventCloseRequest, Window: id}, true
	case "_NET_WM_DESKTOP":
		return Event{Kind: EventDesktopRequest, Window: id, Desktop: wireDesktop(get(0))}, true
	case "_NET_CURRENT_DESKTOP":
		return Event{Kind: EventCurrentDesktopRequest, Desktop: int(get(0)) + 1}, true
	case "WM_CHANGE_STATE":
		if get(0) == icccm.StateIconic {
			return Event{Kind: EventStateRequest, Window: id, Action: StateAdd, States: StateHidden}, true
		}
	case "_NET_WM_STATE":
		var flags StateFlag
		for _, atom := range []uint32{get(1), get(2)} {
			if atom != 0 {
				flags |= stateAtoms[atomName(atom)]
			}
		}
		if flags == 0 {
			return Event{}, false
		}
		return Event{Kind: EventStateRequest, Window: id, Action: StateAction(get(0)), States: flags}, true
	}
	return Event{}, false
}

func wireDesktop(d uint32) int {
	if d == x11.AllDesktops {
		return window.OnAllDesktops
	}
	return int(d) + 1
}
