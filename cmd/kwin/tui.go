package main

import (
	"github.com/KDE/kwin-sub007/internal/ipc"
	"github.com/KDE/kwin-sub007/internal/tui"
)

func runTUI(args []string) int {
	fs := newFlagSet("tui", "tui [--config PATH]",
		"Browse and act on managed windows, and edit settings and hotkeys.")
	path := fs.String("config", "", "Config file to edit (default: ~/.config/kwin-sub007/config.yaml)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if err := tui.Run(*path, ipc.NewClient()); err != nil {
		return fail(err)
	}
	return 0
}
