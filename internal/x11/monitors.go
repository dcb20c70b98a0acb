package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/KDE/kwin-sub007/internal/geom"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Rect returns the monitor geometry.
func (m Monitor) Rect() geom.Rect {
	return geom.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

// initRandR initializes the RandR extension once per connection.
func (c *Connection) initRandR() error {
	c.randrOnce.Do(func() {
		c.randrErr = randr.Init(c.XUtil.Conn())
	})
	if c.randrErr != nil {
		return fmt.Errorf("randr init failed: %w", c.randrErr)
	}
	return nil
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := c.initRandR(); err != nil {
		return nil, err
	}

	// Get screen resources
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// Screens returns the monitor rectangles in CRTC order, or the root window
// geometry when RandR reports nothing usable.
func (c *Connection) Screens() ([]geom.Rect, error) {
	monitors, err := c.GetMonitors()
	if err == nil && len(monitors) > 0 {
		rects := make([]geom.Rect, 0, len(monitors))
		for _, m := range monitors {
			rects = append(rects, m.Rect())
		}
		return dedupeClones(rects), nil
	}

	size, rootErr := c.DisplaySize()
	if rootErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, rootErr
	}
	return []geom.Rect{geom.NewRect(geom.Point{}, size)}, nil
}

// DisplaySize is the size of the root window.
func (c *Connection) DisplaySize() (geom.Size, error) {
	root, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return geom.Size{}, fmt.Errorf("failed to get root geometry: %w", err)
	}
	return geom.Size{Width: int(root.Width), Height: int(root.Height)}, nil
}

// SelectScreenChanges asks RandR for screen change notifications.
func (c *Connection) SelectScreenChanges() error {
	if err := c.initRandR(); err != nil {
		return err
	}
	return randr.SelectInputChecked(c.XUtil.Conn(), c.Root, randr.NotifyMaskScreenChange).Check()
}

// Pointer returns the pointer position in root coordinates.
func (c *Connection) Pointer() (geom.Point, error) {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return geom.Point{}, fmt.Errorf("failed to query pointer: %w", err)
	}
	return geom.Point{X: int(pointer.RootX), Y: int(pointer.RootY)}, nil
}

// dedupeClones drops mirrored outputs that share a CRTC geometry.
func dedupeClones(rects []geom.Rect) []geom.Rect {
	out := rects[:0]
	seen := make(map[geom.Rect]bool, len(rects))
	for _, r := range rects {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
