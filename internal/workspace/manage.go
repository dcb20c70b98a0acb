package workspace

import (
	"log"

	"github.com/KDE/kwin-sub007/internal/activation"
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/platform"
	"github.com/KDE/kwin-sub007/internal/rules"
	"github.com/KDE/kwin-sub007/internal/session"
	"github.com/KDE/kwin-sub007/internal/timestamp"
	"github.com/KDE/kwin-sub007/internal/window"
	"github.com/KDE/kwin-sub007/internal/workarea"
)

// ManageOptions carry what is known about a window beyond its properties.
type ManageOptions struct {
	// Startup is the matched startup notification, if any.
	Startup *activation.StartupInfo
	// PositionRequested is set when the client asked for its position
	// (USPosition or PPosition), which skips placement.
	PositionRequested bool
}

func newWindow(c platform.Client) *window.Window {
	w := window.New(uint32(c.ID), c.Kind, c.Frame, c.Desktop)
	w.Title = c.Title
	w.ResourceName = c.ResourceName
	w.ResourceClass = c.ResourceClass
	w.Role = c.Role
	w.Machine = c.Machine
	w.PID = c.PID
	w.Leader = uint32(c.Leader)
	w.GroupLeader = uint32(c.GroupLeader)
	w.GroupTransient = c.GroupTransient
	w.Modal = c.Modal
	w.Borders = c.Borders
	w.Hints = c.Hints
	w.Strut = c.Strut
	w.StartupID = c.StartupID
	w.SessionID = c.SessionID
	w.WantsInput = c.WantsInput
	w.SkipTaskbar = c.SkipTaskbar
	w.SkipPager = c.SkipPager
	w.KeepAbove = c.KeepAbove && !c.KeepBelow
	w.KeepBelow = c.KeepBelow && !c.KeepAbove
	if w.IsSpecial() {
		w.NoBorder = true
	}
	return w
}

// Manage takes c under management: window rules and a pending session
// record are applied, the window is placed and finally activated when focus
// stealing prevention allows it.
func (s *State) Manage(c platform.Client, opts ManageOptions) *window.Window {
	if w := s.Window(c.ID); w != nil {
		return w
	}
	w := newWindow(c)
	s.arena.Insert(w)
	leader := w.Leader
	if leader == 0 {
		leader = w.GroupLeader
	}
	s.arena.JoinGroup(w, leader)
	if t := s.Window(c.TransientFor); t != nil && t != w {
		w.TransientFor = t.ID
	}
	w.Screen = s.tracker.ScreenAt(w.Frame.Center())
	w.CreationTime = s.creationTime(c.ID)
	w.AttachSink(s)

	var wr *rules.WindowRules
	if s.book != nil {
		wr = s.book.Find(w, false)
	}
	s.rules[w.ID] = wr

	var rec *session.Record
	if s.pending != nil {
		rec = s.pending.Take(w)
	}

	batch := w.BlockGeometryUpdates()

	w.Hints.Min = wr.CheckMinSize(w.Hints.Min)
	w.Hints.Max = wr.CheckMaxSize(w.Hints.Max)
	w.StrictGeometry = wr.CheckStrictGeometry(w.StrictGeometry)
	w.WantsInput = wr.CheckAcceptFocus(w.WantsInput)
	w.Closeable = wr.CheckCloseable(w.Closeable)
	w.NoBorder = wr.CheckNoBorder(w.NoBorder, true)
	if w.IsSpecial() {
		w.NoBorder = true
	}

	desktop := wr.CheckDesktop(s.initialDesktop(w, c, rec, opts.Startup), true)
	if desktop != window.OnAllDesktops {
		desktop = max(1, min(desktop, s.tracker.DesktopCount()))
	}
	w.Desktop = desktop

	userTime := s.act.ReadUserTime(w, c.UserTime, opts.Startup, rec != nil)
	w.UserTime = userTime
	if userTime != timestamp.Zero {
		s.act.UpdateUserTime(w, userTime)
	}

	maxMode, tile, fullscreen := c.Maximize, window.QuickTileNone, c.Fullscreen
	if rec != nil {
		maxMode, tile, fullscreen = s.applyRecordGeometry(w, rec)
		w.Desktop = desktop
	} else {
		s.initialGeometry(w, c, wr, opts)
	}

	minimized := w.Minimized
	if rec == nil {
		minimized = c.Minimized
	}
	w.Minimized = wr.CheckMinimize(minimized, true) && w.IsMinimizable()
	w.SkipTaskbar = wr.CheckSkipTaskbar(w.SkipTaskbar, true)
	w.SkipPager = wr.CheckSkipPager(w.SkipPager, true)
	w.SkipSwitcher = wr.CheckSkipSwitcher(w.SkipSwitcher, true)
	w.KeepAbove = wr.CheckKeepAbove(w.KeepAbove, true)
	w.KeepBelow = wr.CheckKeepBelow(w.KeepBelow, true) && !w.KeepAbove
	w.Shortcut = wr.CheckShortcut(w.Shortcut, true)
	shade := w.Shade
	if rec == nil && c.Shaded {
		shade = window.ShadeNormal
	}
	w.Shade = window.ShadeNone
	if shade = wr.CheckShade(shade, true); shade != window.ShadeNone && !w.NoBorder {
		w.Shade = shade
	}

	w.Managed = true
	if m := wr.CheckMaximize(maxMode, true); m != window.MaximizeRestore {
		s.tiling.Maximize(w, m)
	}
	if tile != window.QuickTileNone && !w.IsMaximized() {
		s.tiling.SetQuickTile(w, tile, true)
	}
	if wr.CheckFullscreen(fullscreen, true) {
		s.tiling.SetFullscreen(w, true, false)
	}
	if rec != nil && !rec.FullscreenRestore.IsEmpty() && w.Fullscreen {
		w.FullscreenRestore = rec.FullscreenRestore
	}
	if rec != nil && !rec.GeomRestore.IsEmpty() && w.IsMaximized() {
		w.GeomRestore = rec.GeomRestore
	}
	batch.Release()
	// Apply the frame even when no change happened inside the batch.
	w.SetFrameGeometry(w.Frame, true)

	if w.Kind == window.KindDesktop {
		s.arena.Lower(w.ID)
	}
	s.autogroup(w, wr, rec)

	if w.HasStrut() {
		s.UpdateClientArea()
	}
	s.act.UpdateFocusChain(w, false)
	s.updateVisibility(w)
	s.publishState(w)
	s.activateManaged(w, c, rec)
	s.restack()

	log.Printf("workspace: managing %#x (%s) on desktop %d at %v", w.XID, w.ResourceClass, w.Desktop, w.Frame)
	return w
}

// creationTime returns the time the client window was first seen. A window
// that was withdrawn lost its creation time, so when it is mapped again it
// has to bring a user time of its own.
func (s *State) creationTime(id platform.WindowID) timestamp.Time {
	if t, seen := s.created[id]; seen {
		return t
	}
	t := s.Now()
	s.created[id] = t
	return t
}

// initialDesktop picks the desktop of a new window: the session record,
// the startup notification, the client's request or the main window.
func (s *State) initialDesktop(w *window.Window, c platform.Client, rec *session.Record, asn *activation.StartupInfo) int {
	switch {
	case rec != nil && rec.OnAllDesktops:
		return window.OnAllDesktops
	case rec != nil && rec.Desktop != 0:
		return rec.Desktop
	case w.IsTransient():
		for _, m := range s.arena.MainWindows(w) {
			return m.Desktop
		}
	case asn != nil && asn.Desktop != 0:
		return asn.Desktop
	case c.Desktop != 0:
		return c.Desktop
	}
	if w.Kind == window.KindDesktop || w.Kind == window.KindDock {
		return window.OnAllDesktops
	}
	return s.tracker.CurrentDesktop()
}

// initialGeometry places a window that has no session record.
func (s *State) initialGeometry(w *window.Window, c platform.Client, wr *rules.WindowRules, opts ManageOptions) {
	frame := wr.CheckGeometry(w.Frame, true)
	positioned := frame.Pos() != w.Frame.Pos()
	frame = frame.Resized(s.ConstrainFrameSize(w, frame.Size(), window.SizeModeAny))
	w.SetFrameGeometry(frame, false)

	if c.Mapped || !w.IsPlaceable() {
		return
	}
	screen := s.tracker.ScreenAt(w.Frame.Center())
	if opts.Startup != nil && opts.Startup.Screen >= 0 {
		screen = opts.Startup.Screen
	}
	if rs := wr.CheckScreen(screen, true, len(s.tracker.Screens())); rs != screen {
		screen = rs
		positioned = false
	}
	area := s.tracker.ClientArea(workarea.PlacementArea, screen, w.Desktop)
	if !positioned && (!opts.PositionRequested || w.IsTransient() && w.Frame.Pos() == (geom.Point{})) {
		s.place.Place(w, area)
	}
	if !w.IsSpecial() || w.Kind == window.KindToolbar {
		s.place.KeepInArea(w, area, false)
	}
}

// applyRecordGeometry restores the geometry of a session record. Windows
// that were maximized or tiled start at their restore geometry so the
// transitions remember it.
func (s *State) applyRecordGeometry(w *window.Window, rec *session.Record) (window.MaximizeMode, window.QuickTileMode, bool) {
	mode, tile, fullscreen := rec.Apply(w)
	frame := w.Frame
	switch {
	case fullscreen && !rec.FullscreenRestore.IsEmpty():
		frame = rec.FullscreenRestore
	case (mode != window.MaximizeRestore || tile != window.QuickTileNone) && !rec.GeomRestore.IsEmpty():
		frame = rec.GeomRestore
	}
	w.Maximize = window.MaximizeRestore
	w.QuickTile = window.QuickTileNone
	w.Fullscreen = false
	w.SetFrameGeometry(frame, false)
	s.restored[w.ID] = rec
	return mode, tile, fullscreen
}

// autogroup tabs a new window to its group from the session or rules, or
// to a similar window when autogrouping by similarity is enabled.
func (s *State) autogroup(w *window.Window, wr *rules.WindowRules, rec *session.Record) {
	if w.Kind != window.KindNormal {
		return
	}
	if rec != nil && rec.TabGroup != "" {
		if first := s.arena.Get(s.pending.LinkTab(w, rec)); first != nil {
			s.tabs.AddNextTo(w, first, true, rec.TabCurrent)
		} else {
			s.tabs.NewGroup(w).Key = rec.TabGroup
		}
		return
	}
	key := wr.CheckAutogroupByID("")
	similar := wr.CheckAutogrouping(s.opts.AutogroupSimilar)
	if key == "" && !similar {
		return
	}
	if target := s.tabs.FindAutogroupTarget(w, key, similar); target != nil && target != w {
		s.tabs.AddNextTo(w, target, true, wr.CheckAutogroupInForeground(s.opts.AutogroupInForeground))
		return
	}
	if key != "" {
		s.tabs.NewGroup(w).Key = key
	}
}

// activateManaged decides whether a new window gets focus. Windows that
// are denied activation are stacked below the active window and demand
// attention instead.
func (s *State) activateManaged(w *window.Window, c platform.Client, rec *session.Record) {
	if w.Kind == window.KindDesktop || w.Kind == window.KindDock || !w.IsShown() {
		return
	}
	if c.Mapped || rec != nil {
		if rec != nil && rec.Active {
			s.act.ActivateWindow(w, false)
		}
		return
	}
	if !w.IsOnDesktop(s.CurrentDesktop()) {
		if s.act.AllowActivation(w, s.act.UserTime(w), false, true) {
			s.SetCurrentDesktop(w.Desktop)
		} else {
			s.act.DemandAttention(w, true)
			return
		}
	}
	if s.act.AllowActivation(w, s.act.UserTime(w), false, false) {
		s.act.ActivateWindow(w, false)
		return
	}
	if active := s.act.Active(); active != nil {
		s.arena.Raise(w.ID)
		s.arena.RestackAbove(active.ID, w.ID)
	}
	s.act.DemandAttention(w, true)
	s.publishState(w)
}

// Unmanage releases w. withdrawn is set when the client unmapped the
// window itself rather than being destroyed.
func (s *State) Unmanage(w *window.Window, withdrawn bool) {
	if s.arena.Get(w.ID) == nil {
		return
	}
	s.tabs.Remove(w, geom.Rect{}, false)
	s.act.ActivateNextWindow(w)
	s.act.Remove(w)
	if wr := s.rules[w.ID]; wr != nil && s.book != nil {
		s.book.DiscardUsed(wr, withdrawn)
	}
	delete(s.rules, w.ID)
	delete(s.restored, w.ID)
	if withdrawn {
		s.created[platform.WindowID(w.XID)] = timestamp.Unknown
	} else {
		delete(s.created, platform.WindowID(w.XID))
	}
	if s.pending != nil {
		s.pending.ForgetWindow(w.ID)
	}
	s.tiling.Forget(w)
	strut := w.HasStrut()
	w.Managed = false
	w.AttachSink(nil)
	s.arena.Remove(w.ID)
	if strut {
		s.UpdateClientArea()
	}
	s.restack()
	log.Printf("workspace: released %#x", w.XID)
}

// FocusIn handles confirmation from the server that w has input focus.
func (s *State) FocusIn(w *window.Window) {
	s.act.GotFocusIn(w)
	s.act.SetActiveWindow(w)
}

// startupInfo builds the startup notification of a window from its
// _NET_STARTUP_ID. The notification data is not tracked, so desktop and
// screen are left unset.
func startupInfo(id string, t timestamp.Time) *activation.StartupInfo {
	if id == "" {
		return nil
	}
	return &activation.StartupInfo{
		ID:            id,
		Timestamp:     t,
		DataTimestamp: timestamp.Unknown,
		Screen:        -1,
	}
}

// StartupIDChanged applies a new _NET_STARTUP_ID of w, which may move it
// to the current desktop and activate it.
func (s *State) StartupIDChanged(w *window.Window, id string, t timestamp.Time) {
	asn := startupInfo(id, t)
	if asn == nil || id == w.StartupID {
		return
	}
	s.act.StartupIDChanged(w, asn)
	s.publishState(w)
	s.restack()
}

// UserTimeChanged records a new _NET_WM_USER_TIME of w.
func (s *State) UserTimeChanged(w *window.Window, t timestamp.Time) {
	s.act.UpdateUserTime(w, t)
}

// TitleChanged re-evaluates the rules of w when they depend on the title.
func (s *State) TitleChanged(w *window.Window, title string) {
	w.Title = title
	if !s.rules[w.ID].TracksTitle() || s.book == nil {
		return
	}
	s.rules[w.ID] = s.book.Find(w, true)
}

// RequestActivation handles an activation request from a client or pager.
// Pagers and tools may always activate; clients are subject to focus
// stealing prevention.
func (s *State) RequestActivation(w *window.Window, t timestamp.Time, fromTool bool) {
	if fromTool || s.act.AllowActivation(w, t, false, false) {
		s.act.ActivateWindow(w, fromTool)
		return
	}
	s.act.DemandAttention(w, true)
	s.publishState(w)
}
