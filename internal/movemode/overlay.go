package movemode

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/KDE/kwin-sub007/internal/geom"
)

// Colors
const (
	ColorOutline  = 0x3498db // Blue - pending geometry
	ColorHintText = 0xf5f7fa // Light text for hint overlay
	ColorHintBg   = 0x1f2933 // Dark hint background
)

// Border thickness in pixels
const BorderThickness = 4

const (
	hintMargin     = 12
	hintPaddingX   = 10
	hintPaddingY   = 8
	hintLineHeight = 16
	hintCharWidth  = 7
	hintMinWidth   = 220
)

// hintOverlay is a compact single-window text panel for the key legend.
type hintOverlay struct {
	Window   xproto.Window
	GC       xproto.Gcontext
	Font     xproto.Font
	created  bool
	mapped   bool
	disabled bool
}

// BorderOverlay represents a rectangular border made of 4 thin windows
type BorderOverlay struct {
	Top     xproto.Window
	Bottom  xproto.Window
	Left    xproto.Window
	Right   xproto.Window
	created bool
	mapped  bool
}

// OverlayManager draws the outline and legend with override-redirect
// windows.
type OverlayManager struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	outline *BorderOverlay
	hint    *hintOverlay
}

// NewOverlayManager creates a new overlay manager
func NewOverlayManager(xu *xgbutil.XUtil, root xproto.Window) *OverlayManager {
	return &OverlayManager{
		xu:      xu,
		root:    root,
		outline: &BorderOverlay{},
		hint:    &hintOverlay{},
	}
}

// Render draws the outline around rect and the legend next to it.
func (m *OverlayManager) Render(rect geom.Rect, lines []string) error {
	if m.xu == nil {
		return fmt.Errorf("overlay has no X connection")
	}
	if err := m.showBorder(m.outline, rect, ColorOutline); err != nil {
		return err
	}
	m.renderHint(lines, rect)
	return nil
}

// HideAll hides all overlays without destroying them.
func (m *OverlayManager) HideAll() {
	if m.xu == nil {
		return
	}
	m.hideBorder(m.outline)
	m.hideHint()
}

// Cleanup destroys all overlay windows
func (m *OverlayManager) Cleanup() {
	if m.xu == nil {
		return
	}
	m.destroyBorder(m.outline)
	m.destroyHint()
}

// showBorder creates or updates a border around the given rectangle
func (m *OverlayManager) showBorder(border *BorderOverlay, rect geom.Rect, color uint32) error {
	if !border.created {
		if err := m.createBorderWindows(border); err != nil {
			return err
		}
	}

	x, y := rect.X, rect.Y
	w, h := rect.Width, rect.Height
	t := BorderThickness

	m.updateWindow(border.Top, x, y, w, t, color)
	m.updateWindow(border.Bottom, x, y+h-t, w, t, color)
	m.updateWindow(border.Left, x, y+t, t, h-2*t, color)
	m.updateWindow(border.Right, x+w-t, y+t, t, h-2*t, color)

	xproto.MapWindow(m.xu.Conn(), border.Top)
	xproto.MapWindow(m.xu.Conn(), border.Bottom)
	xproto.MapWindow(m.xu.Conn(), border.Left)
	xproto.MapWindow(m.xu.Conn(), border.Right)

	border.mapped = true
	return nil
}

// hideBorder unmaps the border windows (but doesn't destroy them)
func (m *OverlayManager) hideBorder(border *BorderOverlay) {
	if !border.mapped {
		return
	}

	xproto.UnmapWindow(m.xu.Conn(), border.Top)
	xproto.UnmapWindow(m.xu.Conn(), border.Bottom)
	xproto.UnmapWindow(m.xu.Conn(), border.Left)
	xproto.UnmapWindow(m.xu.Conn(), border.Right)

	border.mapped = false
}

func (m *OverlayManager) destroyBorder(border *BorderOverlay) {
	for _, wid := range []xproto.Window{border.Top, border.Bottom, border.Left, border.Right} {
		if wid != 0 {
			xproto.DestroyWindow(m.xu.Conn(), wid)
		}
	}
	*border = BorderOverlay{}
}

func (m *OverlayManager) createBorderWindows(border *BorderOverlay) error {
	for _, wid := range []*xproto.Window{&border.Top, &border.Bottom, &border.Left, &border.Right} {
		var err error
		*wid, err = m.createOverrideRedirectWindow()
		if err != nil {
			return err
		}
	}
	border.created = true
	return nil
}

// createOverrideRedirectWindow creates a single override-redirect window
func (m *OverlayManager) createOverrideRedirectWindow() (xproto.Window, error) {
	conn := m.xu.Conn()
	screen := m.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		m.root,
		0, 0,
		1, 1,
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwOverrideRedirect|xproto.CwBackPixel,
		// Values follow the mask bit order: CwBackPixel before CwOverrideRedirect.
		[]uint32{0, 1},
	).Check()
	if err != nil {
		return 0, err
	}
	return wid, nil
}

// updateWindow moves, resizes, and recolors a window
func (m *OverlayManager) updateWindow(wid xproto.Window, x, y, width, height int, color uint32) {
	conn := m.xu.Conn()

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	xproto.ConfigureWindow(
		conn,
		wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(x),
			uint32(y),
			uint32(width),
			uint32(height),
			xproto.StackModeAbove,
		},
	)
	xproto.ChangeWindowAttributes(conn, wid, xproto.CwBackPixel, []uint32{color})
	xproto.ClearArea(conn, false, wid, 0, 0, 0, 0)
}

func (m *OverlayManager) renderHint(lines []string, avoid geom.Rect) {
	if len(lines) == 0 || !m.ensureHintResources() {
		m.hideHint()
		return
	}

	hint := m.hint
	conn := m.xu.Conn()

	width, height := hintDimensions(lines)
	bounds := m.screenBounds()
	width = min(width, max(bounds.Width-2*hintMargin, 1))
	height = min(height, max(bounds.Height-2*hintMargin, 1))

	x, y := chooseHintPosition(bounds, []geom.Rect{avoid}, width, height)

	xproto.ConfigureWindow(
		conn,
		hint.Window,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(x),
			uint32(y),
			uint32(width),
			uint32(height),
			xproto.StackModeAbove,
		},
	)
	xproto.ChangeWindowAttributes(conn, hint.Window, xproto.CwBackPixel, []uint32{ColorHintBg})
	xproto.ChangeGC(
		conn,
		hint.GC,
		xproto.GcForeground|xproto.GcBackground,
		[]uint32{ColorHintText, ColorHintBg},
	)
	xproto.ClearArea(conn, false, hint.Window, 0, 0, 0, 0)

	baseline := hintPaddingY + hintLineHeight - 4
	for i, line := range lines {
		if line == "" {
			continue
		}
		if len(line) > 255 {
			line = line[:255]
		}
		xproto.ImageText8(
			conn,
			byte(len(line)),
			xproto.Drawable(hint.Window),
			hint.GC,
			int16(hintPaddingX),
			int16(baseline+i*hintLineHeight),
			line,
		)
	}

	xproto.MapWindow(conn, hint.Window)
	hint.mapped = true
}

func (m *OverlayManager) ensureHintResources() bool {
	if m.hint.disabled {
		return false
	}
	if m.hint.created {
		return true
	}

	conn := m.xu.Conn()

	hintWindow, err := m.createOverrideRedirectWindow()
	if err != nil {
		m.disableHint()
		return false
	}

	font, err := xproto.NewFontId(conn)
	if err != nil {
		xproto.DestroyWindow(conn, hintWindow)
		m.disableHint()
		return false
	}

	opened := false
	for _, fontName := range []string{"fixed", "9x15", "8x13", "6x13"} {
		if xproto.OpenFontChecked(conn, font, uint16(len(fontName)), fontName).Check() == nil {
			opened = true
			break
		}
	}
	if !opened {
		xproto.DestroyWindow(conn, hintWindow)
		m.disableHint()
		return false
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		xproto.DestroyWindow(conn, hintWindow)
		m.disableHint()
		return false
	}

	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(hintWindow),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{ColorHintText, ColorHintBg, uint32(font), 0},
	).Check()
	if err != nil {
		xproto.FreeGC(conn, gc)
		xproto.CloseFont(conn, font)
		xproto.DestroyWindow(conn, hintWindow)
		m.disableHint()
		return false
	}

	m.hint.Window = hintWindow
	m.hint.GC = gc
	m.hint.Font = font
	m.hint.created = true
	return true
}

func (m *OverlayManager) disableHint() {
	m.destroyHint()
	m.hint.disabled = true
}

func (m *OverlayManager) hideHint() {
	if !m.hint.mapped {
		return
	}
	xproto.UnmapWindow(m.xu.Conn(), m.hint.Window)
	m.hint.mapped = false
}

func (m *OverlayManager) destroyHint() {
	if m.hint.GC != 0 {
		xproto.FreeGC(m.xu.Conn(), m.hint.GC)
	}
	if m.hint.Font != 0 {
		xproto.CloseFont(m.xu.Conn(), m.hint.Font)
	}
	if m.hint.Window != 0 {
		xproto.DestroyWindow(m.xu.Conn(), m.hint.Window)
	}
	disabled := m.hint.disabled
	*m.hint = hintOverlay{disabled: disabled}
}

func (m *OverlayManager) screenBounds() geom.Rect {
	screen := m.xu.Screen()
	if screen == nil {
		return geom.Rect{Width: 800, Height: 600}
	}
	return geom.Rect{Width: int(screen.WidthInPixels), Height: int(screen.HeightInPixels)}
}

func hintLinesForPhase(phase Phase, frame geom.Rect) []string {
	switch phase {
	case PhaseMoving:
		return []string{
			fmt.Sprintf("Move: %d,%d", frame.X, frame.Y),
			"Arrows  move (Ctrl: 1px)",
			"Enter   finish",
			"Esc     restore",
		}
	case PhaseResizing:
		return []string{
			fmt.Sprintf("Resize: %dx%d", frame.Width, frame.Height),
			"Arrows  resize (Ctrl: 1px)",
			"Enter   finish",
			"Esc     restore",
		}
	default:
		return nil
	}
}

func hintDimensions(lines []string) (width, height int) {
	maxChars := 0
	for _, line := range lines {
		maxChars = max(maxChars, len(line))
	}
	width = max(maxChars*hintCharWidth+2*hintPaddingX, hintMinWidth)
	height = len(lines)*hintLineHeight + 2*hintPaddingY
	return width, height
}

func chooseHintPosition(bounds geom.Rect, avoidRects []geom.Rect, width, height int) (int, int) {
	width = max(width, 1)
	height = max(height, 1)

	left := bounds.X + hintMargin
	right := max(bounds.Right()-hintMargin-width, left)
	top := bounds.Y + hintMargin
	bottom := max(bounds.Bottom()-hintMargin-height, top)

	candidates := []geom.Rect{
		{X: right, Y: top, Width: width, Height: height},
		{X: left, Y: top, Width: width, Height: height},
		{X: right, Y: bottom, Width: width, Height: height},
		{X: left, Y: bottom, Width: width, Height: height},
	}

	for _, candidate := range candidates {
		obscures := false
		for _, avoid := range avoidRects {
			if candidate.Intersects(avoid) {
				obscures = true
				break
			}
		}
		if !obscures {
			return clampHintOrigin(candidate.X, candidate.Y, bounds, width, height)
		}
	}

	// Every corner overlaps the window being moved.
	return clampHintOrigin(candidates[0].X, candidates[0].Y, bounds, width, height)
}

func clampHintOrigin(x, y int, bounds geom.Rect, width, height int) (int, int) {
	left := bounds.X + hintMargin
	right := bounds.Right() - hintMargin - width
	if right < left {
		left = bounds.X
		right = bounds.Right() - width
	}
	right = max(right, left)

	top := bounds.Y + hintMargin
	bottom := bounds.Bottom() - hintMargin - height
	if bottom < top {
		top = bounds.Y
		bottom = bounds.Bottom() - height
	}
	bottom = max(bottom, top)

	return min(max(x, left), right), min(max(y, top), bottom)
}
