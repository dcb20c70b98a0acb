package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// launcher runs a dmenu-compatible program with the rows on stdin.
type launcher struct {
	command string
	// rofi gets index output, markup, icons, row states and custom keys.
	rofi bool
}

func NewRofiBackend() Backend  { return &launcher{command: "rofi", rofi: true} }
func NewDmenuBackend() Backend { return &launcher{command: "dmenu"} }

func (l *launcher) CustomKeys() bool { return l.rofi }

func (l *launcher) Show(prompt string, items []Item, message string) (SelectResult, error) {
	if len(items) == 0 {
		return SelectResult{}, fmt.Errorf("palette: no items to show")
	}
	rows := make([]Item, len(items))
	copy(rows, items)

	cmd := exec.Command(l.command, l.args(prompt, message, rows)...)
	cmd.Stdin = strings.NewReader(l.input(rows))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return SelectResult{}, fmt.Errorf("%s failed: %w", l.command, err)
		}
		exitCode = exitErr.ExitCode()
		switch {
		case selection == "" && (exitCode == 1 || exitCode == 130):
			return SelectResult{}, ErrCancelled
		case exitCode != ExitCustom1 && exitCode != ExitCustom2:
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return SelectResult{}, fmt.Errorf("%s failed: %s", l.command, msg)
			}
			return SelectResult{}, fmt.Errorf("%s failed: %w", l.command, err)
		}
	}
	if selection == "" {
		return SelectResult{}, ErrCancelled
	}

	item, err := l.parseSelection(selection, rows)
	if err != nil {
		return SelectResult{}, err
	}
	return SelectResult{Item: item, ExitCode: exitCode}, nil
}

func (l *launcher) args(prompt, message string, rows []Item) []string {
	if !l.rofi {
		args := []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		return args
	}

	// Index output keeps selection parsing independent of the labels.
	args := []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
	if prompt != "" {
		args = append(args, "-p", prompt)
	}
	var active, urgent []string
	selected := -1
	for i, row := range rows {
		if row.IsHeader {
			continue
		}
		if selected == -1 {
			selected = i
		}
		if row.IsActive {
			active = append(active, strconv.Itoa(i))
		}
		if row.IsUrgent {
			urgent = append(urgent, strconv.Itoa(i))
		}
	}
	if len(active) > 0 {
		args = append(args, "-a", strings.Join(active, ","))
	}
	if len(urgent) > 0 {
		args = append(args, "-u", strings.Join(urgent, ","))
	}
	if selected >= 0 {
		args = append(args, "-selected-row", strconv.Itoa(selected))
	}
	args = append(args, "-kb-custom-1", "Alt+Return", "-kb-custom-2", "Alt+d")
	if message != "" {
		args = append(args, "-mesg", message)
	}
	return args
}

// input renders one line per row. dmenu answers with the label, so equal
// labels get a numeric suffix there.
func (l *launcher) input(rows []Item) string {
	if !l.rofi {
		seen := make(map[string]int)
		for i := range rows {
			label := sanitizeLabel(rows[i].Label)
			if n := seen[label]; n > 0 {
				rows[i].Label = fmt.Sprintf("%s (%d)", label, n+1)
			}
			seen[label]++
		}
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = l.formatRow(row)
	}
	return strings.Join(lines, "\n")
}

// formatRow uses the rofi row property protocol: one NUL after the label,
// then key/value pairs separated by \x1f.
func (l *launcher) formatRow(row Item) string {
	label := sanitizeLabel(row.Label)
	if !l.rofi {
		return label
	}
	label = html.EscapeString(label)
	var attrs []string
	if row.IsHeader {
		label = "<b>" + label + "</b>"
		attrs = append(attrs, "nonselectable", "true")
	}
	if row.Icon != "" {
		attrs = append(attrs, "icon", sanitizeField(row.Icon))
	}
	if row.Meta != "" {
		attrs = append(attrs, "meta", sanitizeField(row.Meta))
	}
	if len(attrs) == 0 {
		return label
	}
	return label + "\x00" + strings.Join(attrs, "\x1f")
}

func (l *launcher) parseSelection(selection string, rows []Item) (Item, error) {
	if l.rofi {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(rows) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return rows[idx], nil
		}
	}
	for _, row := range rows {
		if sanitizeLabel(row.Label) == selection {
			return row, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(label))
}

func sanitizeField(value string) string {
	return strings.TrimSpace(strings.NewReplacer("\x00", " ", "\x1f", " ", "\r", " ", "\n", " ").Replace(value))
}
