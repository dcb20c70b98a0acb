// Package hotkeys binds global key sequences to window management actions.
package hotkeys

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/KDE/kwin-sub007/internal/platform"
	"github.com/KDE/kwin-sub007/internal/workspace"
)

// Poster queues work for the goroutine owning the window manager state.
type Poster interface {
	Post(fn func(*workspace.State))
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	mu     sync.Mutex
	xu     *xgbutil.XUtil
	root   xproto.Window
	loop   Poster
	mover  Mover
	logger *slog.Logger
	bound  []string
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. Backends without an X
// connection get a handler whose Bind is a no-op.
func NewHandler(backend platform.Backend, loop Poster, mover Mover, logger *slog.Logger) *Handler {
	var xu *xgbutil.XUtil
	var root xproto.Window
	if accessor, ok := backend.(x11Accessor); ok {
		xu = accessor.XUtil()
		root = accessor.RootWindow()
	}
	if logger == nil {
		logger = slog.Default()
	}

	if xu != nil {
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(xu)
		})
	}

	return &Handler{
		xu:     xu,
		root:   root,
		loop:   loop,
		mover:  mover,
		logger: logger,
	}
}

// Bind replaces every binding with bindings, a map from action to key
// sequence. Sequences that fail to grab are reported together; the rest
// stay bound.
func (h *Handler) Bind(bindings map[string]string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.xu == nil {
		return nil
	}

	h.unbindLocked()

	actions := make([]string, 0, len(bindings))
	for action := range bindings {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	var failed []string
	for _, action := range actions {
		keys := bindings[action]
		if err := h.registerFunc(keys, h.trigger(action)); err != nil {
			failed = append(failed, fmt.Sprintf("%s (%s): %v", action, keys, err))
			continue
		}
		h.bound = append(h.bound, keys)
	}
	h.logger.Info("hotkeys bound", "count", len(h.bound))
	if len(failed) > 0 {
		return fmt.Errorf("failed to bind hotkeys: %v", failed)
	}
	return nil
}

func (h *Handler) trigger(action string) func() {
	return func() {
		h.loop.Post(func(st *workspace.State) {
			if err := Run(st, action, h.mover); err != nil {
				h.logger.Debug("hotkey action failed", "action", action, "err", err)
			}
		})
	}
}

// Unbind releases every grabbed sequence.
func (h *Handler) Unbind() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.xu == nil {
		return
	}
	h.unbindLocked()
}

func (h *Handler) unbindLocked() {
	for _, keys := range h.bound {
		mods, codes, err := keybind.ParseString(h.xu, keys)
		if err != nil {
			continue
		}
		for _, code := range codes {
			keybind.Ungrab(h.xu, h.root, mods, code)
		}
	}
	keybind.Detach(h.xu, h.root)
	h.bound = nil
}

// registerFunc registers an arbitrary hotkey callback.
func (h *Handler) registerFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
