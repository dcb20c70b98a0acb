package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "activate", "shade":
		os.Exit(runWindowCommand(os.Args[1], os.Args[2:]))
	case "maximize":
		os.Exit(runMaximize(os.Args[2:]))
	case "tile":
		os.Exit(runTile(os.Args[2:]))
	case "fullscreen":
		os.Exit(runFullscreen(os.Args[2:]))
	case "place":
		os.Exit(runPlace(os.Args[2:]))
	case "pack":
		os.Exit(runPack(os.Args[2:]))
	case "tab":
		os.Exit(runTab(os.Args[2:]))
	case "workarea":
		os.Exit(runWorkarea(os.Args[2:]))
	case "session":
		os.Exit(runSession(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "switch":
		os.Exit(runSwitch(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: kwin <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Run the window manager (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  windows             List managed windows")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  activate [ID]       Activate a window")
	fmt.Fprintln(w, "  maximize [ID]       Set or toggle the maximize mode")
	fmt.Fprintln(w, "  tile MODE [ID]      Quick tile a window")
	fmt.Fprintln(w, "  fullscreen [ID]     Set or toggle fullscreen")
	fmt.Fprintln(w, "  shade [ID]          Toggle shading")
	fmt.Fprintln(w, "  place [ID]          Re-run placement")
	fmt.Fprintln(w, "  pack DIR [ID]       Pack, grow or shrink a window")
	fmt.Fprintln(w, "  tab add|remove|next|prev")
	fmt.Fprintln(w, "                      Manage tab groups")
	fmt.Fprintln(w, "  workarea            Show a client area")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  session save NAME   Save the window session")
	fmt.Fprintln(w, "  session restore NAME")
	fmt.Fprintln(w, "                      Apply a saved session")
	fmt.Fprintln(w, "  session list        List saved sessions")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  reload              Reload config and window rules")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  switch              Pick a window with rofi or dmenu")
	fmt.Fprintln(w, "  tui                 Interactive dashboard and settings editor")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Windows are addressed by id (decimal or 0x hex); omit it for the active window.")
	fmt.Fprintln(w, "Run 'kwin <command> --help' for command-specific options.")
}

// parseWindowID accepts decimal and 0x-prefixed hex ids.
func parseWindowID(s string) (uint32, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return uint32(id), nil
}

// optionalWindow reads an optional trailing window id from fs.
func optionalWindow(fs *flag.FlagSet, index int) (uint32, error) {
	if fs.NArg() <= index {
		return 0, nil
	}
	return parseWindowID(fs.Arg(index))
}

// parseFlags parses args and maps help to exit code 0 and errors to 2.
func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func newFlagSet(name, usage, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kwin "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, description)
		hasFlags := false
		fs.VisitAll(func(*flag.Flag) { hasFlags = true })
		if hasFlags {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
	}
	return fs
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, err)
	return 1
}
