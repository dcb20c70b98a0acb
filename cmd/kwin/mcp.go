package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/KDE/kwin-sub007/internal/ipc"
	"github.com/KDE/kwin-sub007/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: kwin mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	fs := newFlagSet("serve", "mcp serve [--socket PATH]",
		"Start the MCP server on stdio. Every tool forwards to the running daemon.")
	socket := fs.String("socket", "", "Daemon socket (default: the socket for $DISPLAY)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	client := ipc.NewClient()
	if *socket != "" {
		client = ipc.NewClientAt(*socket)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcp.NewServer(client).Run(ctx); err != nil && ctx.Err() == nil {
		return fail(err)
	}
	return 0
}
