package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/KDE/kwin-sub007/internal/config"
)

type savePhase int

const (
	saveHidden  savePhase = iota
	savePreview           // showing diff, awaiting confirm
	saveResult            // showing outcome message
)

type diffKind int

const (
	diffContext diffKind = iota
	diffRemoved
	diffAdded
)

type diffLine struct {
	kind diffKind
	text string
}

// SaveOverlay previews the pending config changes as a YAML diff and writes
// the file on confirmation.
type SaveOverlay struct {
	phase        savePhase
	diffLines    []diffLine
	path         string
	err          error
	reloaded     bool
	scrollOffset int
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show computes the diff and opens the preview.
func (s *SaveOverlay) Show(original, current *config.Config) {
	s.err = nil
	s.reloaded = false
	s.scrollOffset = 0

	lines := computeDiffLines(original, current)
	if len(lines) == 0 {
		s.phase = saveResult
		s.err = fmt.Errorf("no changes to save")
		return
	}
	s.diffLines = lines
	s.phase = savePreview
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles a key while the overlay is visible. On confirmation the
// config is written to path and a running daemon is asked to reload.
func (s SaveOverlay) Update(msg tea.KeyMsg, cfg *config.Config, path string, pathErr error, client Client, connected bool) SaveOverlay {
	switch s.phase {
	case savePreview:
		switch msg.String() {
		case "esc":
			s.phase = saveHidden
		case "enter", "y":
			s.path = path
			s.err = pathErr
			if s.err == nil {
				s.err = cfg.SaveTo(path)
			}
			if s.err == nil && connected && client != nil {
				s.reloaded = client.Reload() == nil
			}
			s.phase = saveResult
		case "up", "k":
			if s.scrollOffset > 0 {
				s.scrollOffset--
			}
		case "down", "j":
			s.scrollOffset++
		}
	case saveResult:
		s.phase = saveHidden
	}
	return s
}

// View renders the overlay centred in the content area.
func (s SaveOverlay) View(width, height int) string {
	var content string
	boxW := min(max(width-8, 30), 80)
	switch s.phase {
	case savePreview:
		content = s.previewContent(boxW, height)
	case saveResult:
		boxW = min(boxW, 60)
		content = s.resultContent()
	default:
		return ""
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(boxW).
		Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (s SaveOverlay) previewContent(boxW, areaH int) string {
	addStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	rmStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	ctxStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	// Title, footer, blank lines, border and padding take ten lines.
	diffH := max(areaH-10, 3)
	off := min(s.scrollOffset, max(len(s.diffLines)-diffH, 0))
	end := min(off+diffH, len(s.diffLines))
	innerW := max(boxW-6, 10)

	var lines []string
	for _, dl := range s.diffLines[off:end] {
		text := truncateRunes(dl.text, innerW-2)
		switch dl.kind {
		case diffAdded:
			lines = append(lines, addStyle.Render("+ "+text))
		case diffRemoved:
			lines = append(lines, rmStyle.Render("- "+text))
		default:
			lines = append(lines, ctxStyle.Render("  "+text))
		}
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Render("Save Config: Pending Changes")
	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("enter: save  esc: cancel  j/k: scroll")
	return title + "\n\n" + strings.Join(lines, "\n") + "\n\n" + footer
}

func (s SaveOverlay) resultContent() string {
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	var msg string
	if s.err != nil {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("Error: " + s.err.Error())
	} else {
		msg = green.Bold(true).Render("Config saved to " + s.path)
		if s.reloaded {
			msg += "\n" + green.Render("Daemon reloaded")
		}
	}
	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("press any key to dismiss")
	return msg + "\n\n" + footer
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if n < 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}

// computeDiffLines diffs the YAML renderings of two configs, keeping two
// lines of context around each change.
func computeDiffLines(original, current *config.Config) []diffLine {
	if original == nil || current == nil {
		return nil
	}
	a, err := yaml.Marshal(original)
	if err != nil {
		return nil
	}
	b, err := yaml.Marshal(current)
	if err != nil {
		return nil
	}
	as := strings.TrimSpace(string(a))
	bs := strings.TrimSpace(string(b))
	if as == bs {
		return nil
	}
	return filterDiffContext(lcsDiff(strings.Split(as, "\n"), strings.Split(bs, "\n")), 2)
}

// lcsDiff is a line diff over the longest common subsequence.
func lcsDiff(a, b []string) []diffLine {
	m, n := len(a), len(b)
	tbl := make([][]int, m+1)
	for i := range tbl {
		tbl[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if a[i] == b[j] {
				tbl[i][j] = tbl[i+1][j+1] + 1
			} else {
				tbl[i][j] = max(tbl[i+1][j], tbl[i][j+1])
			}
		}
	}

	var out []diffLine
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case a[i] == b[j]:
			out = append(out, diffLine{diffContext, a[i]})
			i++
			j++
		case tbl[i+1][j] >= tbl[i][j+1]:
			out = append(out, diffLine{diffRemoved, a[i]})
			i++
		default:
			out = append(out, diffLine{diffAdded, b[j]})
			j++
		}
	}
	for ; i < m; i++ {
		out = append(out, diffLine{diffRemoved, a[i]})
	}
	for ; j < n; j++ {
		out = append(out, diffLine{diffAdded, b[j]})
	}
	return out
}

// filterDiffContext keeps changed lines and ctx lines around them. Skipped
// runs become a single "..." line.
func filterDiffContext(lines []diffLine, ctx int) []diffLine {
	keep := make([]bool, len(lines))
	changed := false
	for i, l := range lines {
		if l.kind == diffContext {
			continue
		}
		changed = true
		for j := max(i-ctx, 0); j <= min(i+ctx, len(lines)-1); j++ {
			keep[j] = true
		}
	}
	if !changed {
		return nil
	}

	var out []diffLine
	skipped := false
	for i, l := range lines {
		if !keep[i] {
			skipped = true
			continue
		}
		if skipped && len(out) > 0 {
			out = append(out, diffLine{diffContext, "..."})
		}
		skipped = false
		out = append(out, l)
	}
	return out
}

// cloneConfig deep-copies a config through YAML.
func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil
	}
	var clone config.Config
	if err := yaml.Unmarshal(data, &clone); err != nil {
		return nil
	}
	return &clone
}
