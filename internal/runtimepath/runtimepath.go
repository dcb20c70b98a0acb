package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Name prefixes every runtime file the window manager creates.
const Name = "kwin-sub007"

// Dir returns the runtime directory used for the IPC socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) the xdg default runtime directory (if present)
// 3) /tmp/kwin-sub007-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	if xdg.RuntimeDir != "" {
		if info, err := os.Stat(xdg.RuntimeDir); err == nil && info.IsDir() {
			return xdg.RuntimeDir, nil
		}
	}

	tmpDir := fmt.Sprintf("/tmp/%s-runtime-%d", Name, os.Getuid())
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path. A display-specific
// socket keeps one daemon per X display apart from another.
func SocketPath() (string, error) {
	return SocketPathFor(os.Getenv("DISPLAY"))
}

// SocketPathFor returns the socket path of the daemon managing display.
func SocketPathFor(display string) (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	name := Name + ".sock"
	if id := displayID(display); id != "" {
		name = Name + "-" + id + ".sock"
	}
	return filepath.Join(runtimeDir, name), nil
}

// displayID reduces ":1.0" or "host:1" to the display number.
func displayID(display string) string {
	if display == "" {
		return ""
	}
	start := 0
	for i := len(display) - 1; i >= 0; i-- {
		if display[i] == ':' {
			start = i + 1
			break
		}
	}
	id := display[start:]
	for i := 0; i < len(id); i++ {
		if id[i] == '.' {
			id = id[:i]
			break
		}
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return ""
		}
	}
	return id
}
