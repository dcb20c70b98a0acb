package main

import (
	"errors"

	"github.com/KDE/kwin-sub007/internal/ipc"
	"github.com/KDE/kwin-sub007/internal/palette"
	"github.com/KDE/kwin-sub007/internal/runtimepath"
)

func runSwitch(args []string) int {
	fs := newFlagSet("switch", "switch [--backend auto|rofi|dmenu]",
		"Pick a window from a launcher and activate it, or open its operations menu.")
	backendName := fs.String("backend", "auto", "Launcher to use")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	backend, err := palette.NewBackend(*backendName)
	if err != nil {
		return fail(err)
	}
	err = palette.NewSwitcher(backend, ipc.NewClient(), runtimepath.Name).Run()
	if errors.Is(err, palette.ErrCancelled) {
		return 0
	}
	if err != nil {
		return fail(err)
	}
	return 0
}
