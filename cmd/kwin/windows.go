package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/KDE/kwin-sub007/internal/ipc"
	"github.com/KDE/kwin-sub007/internal/session"
	"github.com/KDE/kwin-sub007/internal/workspace"
)

func runStatus(args []string) int {
	fs := newFlagSet("status", "status [--json]", "Show daemon status via IPC.")
	jsonOut := fs.Bool("json", false, "Print JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().Status()
	if err != nil {
		return fail(err)
	}
	if wantJSON(*jsonOut) {
		if err := writeJSON(os.Stdout, status); err != nil {
			return fail(err)
		}
		return 0
	}
	fmt.Printf("windows:         %d\n", status.Windows)
	fmt.Printf("desktop:         %d/%d\n", status.CurrentDesktop, status.Desktops)
	fmt.Printf("screens:         %d\n", len(status.Screens))
	for i, s := range status.Screens {
		fmt.Printf("  %d: %s\n", i, s)
	}
	if status.Active != 0 {
		fmt.Printf("active:          %#x\n", status.Active)
	}
	fmt.Printf("tab_groups:      %d\n", status.TabGroups)
	fmt.Printf("pending_session: %d\n", status.PendingRecords)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	return 0
}

func runWindows(args []string) int {
	fs := newFlagSet("windows", "windows [--json] [--class CLASS]", "List managed windows, bottom of the stack first.")
	jsonOut := fs.Bool("json", false, "Print JSON")
	class := fs.String("class", "", "Only windows whose class contains CLASS")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	windows, err := ipc.NewClient().ListWindows()
	if err != nil {
		return fail(err)
	}
	windows = filterByClass(windows, *class)
	if wantJSON(*jsonOut) {
		if err := writeJSON(os.Stdout, windows); err != nil {
			return fail(err)
		}
		return 0
	}
	if err := writeWindowTable(os.Stdout, windows, terminalWidth()); err != nil {
		return fail(err)
	}
	return 0
}

func filterByClass(windows []workspace.WindowInfo, class string) []workspace.WindowInfo {
	class = strings.ToLower(strings.TrimSpace(class))
	if class == "" {
		return windows
	}
	out := windows[:0:0]
	for _, w := range windows {
		if strings.Contains(strings.ToLower(w.Class), class) {
			out = append(out, w)
		}
	}
	return out
}

// runWindowCommand handles the commands that take only a window id.
func runWindowCommand(name string, args []string) int {
	fs := newFlagSet(name, name+" [ID]", fmt.Sprintf("Run %s on a window (default: the active window).", name))
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	id, err := optionalWindow(fs, 0)
	if err != nil {
		return fail(err)
	}
	client := ipc.NewClient()
	switch name {
	case "activate":
		err = client.Activate(id)
	case "shade":
		err = client.Shade(id)
	}
	if err != nil {
		return fail(err)
	}
	return 0
}

func runMaximize(args []string) int {
	fs := newFlagSet("maximize", "maximize [--mode MODE] [ID]",
		"Set the maximize mode of a window. Without --mode, full maximize is toggled.")
	mode := fs.String("mode", "", "restore, vertical, horizontal or full")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	id, err := optionalWindow(fs, 0)
	if err != nil {
		return fail(err)
	}
	if err := ipc.NewClient().Maximize(id, *mode); err != nil {
		return fail(err)
	}
	return 0
}

func runTile(args []string) int {
	fs := newFlagSet("tile", "tile MODE [ID]",
		"Quick tile a window. MODE is none, maximize, left, right, top, bottom,\ntop-left, top-right, bottom-left or bottom-right.")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "tile requires MODE")
		fs.Usage()
		return 2
	}
	id, err := optionalWindow(fs, 1)
	if err != nil {
		return fail(err)
	}
	if err := ipc.NewClient().QuickTile(id, fs.Arg(0)); err != nil {
		return fail(err)
	}
	return 0
}

func runFullscreen(args []string) int {
	fs := newFlagSet("fullscreen", "fullscreen [--on|--off] [ID]", "Set or toggle fullscreen.")
	on := fs.Bool("on", false, "Enter fullscreen")
	off := fs.Bool("off", false, "Leave fullscreen")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if *on && *off {
		fmt.Fprintln(os.Stderr, "--on and --off are exclusive")
		return 2
	}
	var set *bool
	if *on || *off {
		v := *on
		set = &v
	}
	id, err := optionalWindow(fs, 0)
	if err != nil {
		return fail(err)
	}
	if err := ipc.NewClient().Fullscreen(id, set); err != nil {
		return fail(err)
	}
	return 0
}

func runPlace(args []string) int {
	fs := newFlagSet("place", "place [--policy POLICY] [ID]", "Re-run placement for a window.")
	policy := fs.String("policy", "", "Placement policy (default: the configured one)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	id, err := optionalWindow(fs, 0)
	if err != nil {
		return fail(err)
	}
	if err := ipc.NewClient().Place(id, *policy); err != nil {
		return fail(err)
	}
	return 0
}

func runPack(args []string) int {
	fs := newFlagSet("pack", "pack [--grow] left|right|up|down [ID]",
		"Move a window until it touches a neighbour or the work area edge.\nWith --grow, extend it instead; left and up shrink.")
	grow := fs.Bool("grow", false, "Grow or shrink instead of moving")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "pack requires a direction")
		fs.Usage()
		return 2
	}
	id, err := optionalWindow(fs, 1)
	if err != nil {
		return fail(err)
	}
	if err := ipc.NewClient().Pack(id, fs.Arg(0), *grow); err != nil {
		return fail(err)
	}
	return 0
}

func runTab(args []string) int {
	usage := func() {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  kwin tab add ID OTHER   Add window ID to the tab group of OTHER")
		fmt.Fprintln(os.Stderr, "  kwin tab remove [ID]    Take a window out of its tab group")
		fmt.Fprintln(os.Stderr, "  kwin tab next [ID]      Show the next tab")
		fmt.Fprintln(os.Stderr, "  kwin tab prev [ID]      Show the previous tab")
	}
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage()
		return 2
	}

	client := ipc.NewClient()
	rest := args[1:]
	var id uint32
	var err error
	if len(rest) > 0 {
		if id, err = parseWindowID(rest[0]); err != nil {
			return fail(err)
		}
	}

	switch args[0] {
	case "add":
		if len(rest) != 2 {
			usage()
			return 2
		}
		var other uint32
		if other, err = parseWindowID(rest[1]); err != nil {
			return fail(err)
		}
		err = client.TabAdd(id, other)
	case "remove":
		err = client.TabRemove(id)
	case "next":
		err = client.TabNext(id, false)
	case "prev":
		err = client.TabNext(id, true)
	default:
		fmt.Fprintf(os.Stderr, "Unknown tab command: %s\n\n", args[0])
		usage()
		return 2
	}
	if err != nil {
		return fail(err)
	}
	return 0
}

func runWorkarea(args []string) int {
	fs := newFlagSet("workarea", "workarea [--area AREA] [--screen N] [--desktop N] [--json]",
		"Show a client area. AREA is placement, movement, maximize, maximize-full,\nfullscreen, work, full or screen.")
	area := fs.String("area", "work", "Area kind")
	screen := fs.Int("screen", 0, "Screen index")
	desktop := fs.Int("desktop", 0, "Desktop (default: current)")
	jsonOut := fs.Bool("json", false, "Print JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	data, err := ipc.NewClient().Workarea(*area, *screen, *desktop)
	if err != nil {
		return fail(err)
	}
	if wantJSON(*jsonOut) {
		if err := writeJSON(os.Stdout, data); err != nil {
			return fail(err)
		}
		return 0
	}
	fmt.Printf("%s (screen %d, desktop %d): %s\n", data.Area, data.Screen, data.Desktop, data.Rect)
	return 0
}

func runSession(args []string) int {
	usage := func() {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  kwin session save NAME")
		fmt.Fprintln(os.Stderr, "  kwin session restore NAME")
		fmt.Fprintln(os.Stderr, "  kwin session list")
	}
	if len(args) == 0 {
		usage()
		return 2
	}

	switch args[0] {
	case "save", "restore":
		if len(args) != 2 {
			usage()
			return 2
		}
		client := ipc.NewClient()
		if args[0] == "save" {
			data, err := client.SaveSession(args[1])
			if err != nil {
				return fail(err)
			}
			fmt.Printf("saved %d windows to %s\n", data.Windows, data.Path)
			return 0
		}
		data, err := client.RestoreSession(args[1])
		if err != nil {
			return fail(err)
		}
		fmt.Printf("restored %d windows from %s\n", data.Restored, data.Name)
		return 0

	case "list":
		cfg, err := loadConfig("")
		if err != nil {
			return fail(err)
		}
		names, err := session.NewStore(cfg.SessionDir).List()
		if err != nil {
			return fail(err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return 0

	case "help", "-h", "--help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown session command: %s\n\n", args[0])
		usage()
		return 2
	}
}

func runReload(args []string) int {
	fs := newFlagSet("reload", "reload", "Ask the daemon to reload its config and window rules.")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if err := ipc.NewClient().Reload(); err != nil {
		return fail(err)
	}
	return 0
}
