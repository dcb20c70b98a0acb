package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/KDE/kwin-sub007/internal/workspace"
)

// wantJSON decides the output format: --json forces JSON, and so does a
// stdout that is not a terminal.
func wantJSON(flagSet bool) bool {
	if flagSet {
		return true
	}
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

// terminalWidth is the width of stdout, or 0 when it is not a terminal.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeWindowTable prints one line per window. Titles are cut to fit
// width when width is positive.
func writeWindowTable(w io.Writer, windows []workspace.WindowInfo, width int) error {
	// The other columns take roughly this much room.
	titleWidth := 0
	if width > 0 {
		titleWidth = max(width-64, 16)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDESKTOP\tGEOMETRY\tSTATE\tCLASS\tTITLE")
	for _, info := range windows {
		desktop := fmt.Sprint(info.Desktop)
		if info.Desktop == -1 {
			desktop = "all"
		}
		fmt.Fprintf(tw, "%#x\t%s\t%s\t%s\t%s\t%s\n",
			info.ID, desktop, info.Frame, windowFlags(info), info.Class, truncate(info.Title, titleWidth))
	}
	return tw.Flush()
}

// windowFlags is a compact state column: "*" active, "M" maximized,
// "T" tiled, "F" fullscreen, "_" minimized, "S" shaded, "!" attention and
// "#n" the tab group.
func windowFlags(info workspace.WindowInfo) string {
	var b strings.Builder
	if info.Active {
		b.WriteByte('*')
	}
	if info.Maximize != "" && info.Maximize != "restore" {
		b.WriteByte('M')
	}
	if info.QuickTile != "" && info.QuickTile != "none" {
		b.WriteByte('T')
	}
	if info.Fullscreen {
		b.WriteByte('F')
	}
	if info.Minimized {
		b.WriteByte('_')
	}
	if info.Shaded {
		b.WriteByte('S')
	}
	if info.DemandsAttention {
		b.WriteByte('!')
	}
	if info.TabGroup != 0 {
		fmt.Fprintf(&b, "#%d", info.TabGroup)
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
