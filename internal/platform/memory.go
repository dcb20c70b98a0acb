package platform

import (
	"fmt"
	"slices"
	"sync"

	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/timestamp"
)

// Memory is a Backend without a display server. It records every request
// and answers queries from its own fields, which makes it useful for
// headless runs and tests.
type Memory struct {
	mu sync.Mutex

	ScreenRects []geom.Rect
	Pending     []Client
	PointerPos  geom.Point
	Time        timestamp.Time

	Frames    map[WindowID]geom.Rect
	Mapped    map[WindowID]bool
	States    map[WindowID]WindowState
	Focused   WindowID
	Stacking  []WindowID
	Closed    []WindowID
	Active    WindowID
	Current   int
	Count     int
	WorkAreas []geom.Rect
}

var _ Backend = (*Memory)(nil)

// NewMemory returns a memory backend with the given screens.
func NewMemory(screens ...geom.Rect) *Memory {
	return &Memory{
		ScreenRects: screens,
		Time:        1,
		Frames:      make(map[WindowID]geom.Rect),
		Mapped:      make(map[WindowID]bool),
		States:      make(map[WindowID]WindowState),
	}
}

func (m *Memory) Screens() ([]geom.Rect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ScreenRects) == 0 {
		return nil, fmt.Errorf("no screens configured")
	}
	return slices.Clone(m.ScreenRects), nil
}

func (m *Memory) Clients() ([]Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Pending), nil
}

// ServerTime advances by one on every call so that successive requests
// are ordered.
func (m *Memory) ServerTime() timestamp.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Time++
	return m.Time
}

func (m *Memory) Pointer() (geom.Point, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PointerPos, nil
}

func (m *Memory) Configure(id WindowID, frame geom.Rect) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames[id] = frame
	return nil
}

func (m *Memory) SetMapped(id WindowID, mapped bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mapped[id] = mapped
	return nil
}

func (m *Memory) Focus(id WindowID, _ timestamp.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Focused = id
	return nil
}

func (m *Memory) FocusRoot() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Focused = 0
	return nil
}

func (m *Memory) Restack(ids []WindowID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stacking = slices.Clone(ids)
	return nil
}

func (m *Memory) Close(id WindowID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = append(m.Closed, id)
	return nil
}

func (m *Memory) PublishState(id WindowID, st WindowState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.States[id] = st
	return nil
}

func (m *Memory) PublishActive(id WindowID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Active = id
	return nil
}

func (m *Memory) PublishDesktops(current, count int, workAreas []geom.Rect) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Current = current
	m.Count = count
	m.WorkAreas = slices.Clone(workAreas)
	return nil
}

// FrameOf returns the last configured frame of id.
func (m *Memory) FrameOf(id WindowID) (geom.Rect, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Frames[id]
	return r, ok
}
