package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/KDE/kwin-sub007/internal/activation"
	"github.com/KDE/kwin-sub007/internal/config"
	"github.com/KDE/kwin-sub007/internal/placement"
)

// SettingsTab shows the behaviour settings and edits them with a form.
type SettingsTab struct {
	cfg *config.Config

	width  int
	height int

	editing bool
	form    *huh.Form
	formErr string

	// Form-bound values; numbers are edited as strings.
	fPlacement       string
	fFocusPolicy     string
	fFocusStealing   int
	fDesktops        string
	fBorderZone      string
	fWindowZone      string
	fCenterZone      string
	fMoveModeTimeout string
	fLogLevel        string
	fElectricBorder  bool
	fAutogroup       bool
}

func NewSettingsTab(cfg *config.Config) SettingsTab {
	return SettingsTab{cfg: cfg}
}

// Update implements tea.Model.
func (s SettingsTab) Update(msg tea.Msg) (SettingsTab, tea.Cmd) {
	if s.editing {
		return s.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" && s.cfg != nil {
			s.startEditing()
			return s, s.form.Init()
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}
	return s, nil
}

func (s SettingsTab) updateEditing(msg tea.Msg) (SettingsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			s.editing = false
			s.form = nil
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	if s.form.State == huh.StateCompleted {
		s.formErr = ""
		if err := s.applyForm(); err != nil {
			s.formErr = err.Error()
		}
		s.editing = false
		s.form = nil
		return s, nil
	}
	return s, cmd
}

func placementOptions() []huh.Option[string] {
	var opts []huh.Option[string]
	for _, p := range []placement.Policy{
		placement.Smart, placement.Maximizing, placement.Cascade, placement.Centered,
		placement.Random, placement.ZeroCornered, placement.UnderMouse, placement.NoPlacement,
	} {
		opts = append(opts, huh.NewOption(p.String(), p.String()))
	}
	return opts
}

func focusPolicyOptions() []huh.Option[string] {
	var opts []huh.Option[string]
	for p := activation.ClickToFocus; p <= activation.FocusStrictlyUnderMouse; p++ {
		opts = append(opts, huh.NewOption(p.String(), p.String()))
	}
	return opts
}

func focusStealingOptions() []huh.Option[int] {
	var opts []huh.Option[int]
	for l := activation.LevelNone; l <= activation.LevelExtreme; l++ {
		opts = append(opts, huh.NewOption(l.String(), int(l)))
	}
	return opts
}

func validateNonNegative(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number >= 0")
	}
	return nil
}

func validateDesktops(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 || n > 20 {
		return fmt.Errorf("enter a number between 1 and 20")
	}
	return nil
}

func (s *SettingsTab) startEditing() {
	cfg := s.cfg
	s.fPlacement = cfg.Placement
	s.fFocusPolicy = cfg.FocusPolicy
	s.fFocusStealing = cfg.FocusStealingPrevention
	s.fDesktops = strconv.Itoa(cfg.Desktops)
	s.fBorderZone = strconv.Itoa(cfg.Snap.BorderZone)
	s.fWindowZone = strconv.Itoa(cfg.Snap.WindowZone)
	s.fCenterZone = strconv.Itoa(cfg.Snap.CenterZone)
	s.fMoveModeTimeout = strconv.Itoa(cfg.MoveModeTimeout)
	s.fLogLevel = cfg.LogLevel
	s.fElectricBorder = cfg.ElectricBorderMaximize
	s.fAutogroup = cfg.AutogroupSimilar

	w := max(s.width-4, 40)
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Placement").
				Description("Where new windows appear").
				Options(placementOptions()...).
				Value(&s.fPlacement),
			huh.NewSelect[string]().
				Title("Focus Policy").
				Options(focusPolicyOptions()...).
				Value(&s.fFocusPolicy),
			huh.NewSelect[int]().
				Title("Focus Stealing Prevention").
				Description("How hard new windows must prove user intent to take focus").
				Options(focusStealingOptions()...).
				Value(&s.fFocusStealing),
			huh.NewInput().
				Title("Desktops").
				Validate(validateDesktops).
				Value(&s.fDesktops),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Snap: Border Zone").
				Description("Pixels from a screen edge that attract a moved window").
				Validate(validateNonNegative).
				Value(&s.fBorderZone),
			huh.NewInput().
				Title("Snap: Window Zone").
				Validate(validateNonNegative).
				Value(&s.fWindowZone),
			huh.NewInput().
				Title("Snap: Center Zone").
				Validate(validateNonNegative).
				Value(&s.fCenterZone),
			huh.NewConfirm().
				Title("Maximize at the top screen edge").
				Value(&s.fElectricBorder),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Move Mode Timeout").
				Description("Seconds of keyboard move/resize inactivity before it ends").
				Validate(validateNonNegative).
				Value(&s.fMoveModeTimeout),
			huh.NewConfirm().
				Title("Group similar windows into tabs").
				Value(&s.fAutogroup),
			huh.NewSelect[string]().
				Title("Log Level").
				Options(huh.NewOptions("debug", "info", "warning", "error")...).
				Value(&s.fLogLevel),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	s.editing = true
}

// applyForm copies the form values into the config. The config is only
// changed when the result validates.
func (s *SettingsTab) applyForm() error {
	if s.cfg == nil {
		return nil
	}
	next := *s.cfg
	next.Placement = s.fPlacement
	next.FocusPolicy = s.fFocusPolicy
	next.FocusStealingPrevention = s.fFocusStealing
	next.LogLevel = s.fLogLevel
	next.ElectricBorderMaximize = s.fElectricBorder
	next.AutogroupSimilar = s.fAutogroup

	ints := []struct {
		field string
		src   string
		dst   *int
	}{
		{"desktops", s.fDesktops, &next.Desktops},
		{"snap.border_zone", s.fBorderZone, &next.Snap.BorderZone},
		{"snap.window_zone", s.fWindowZone, &next.Snap.WindowZone},
		{"snap.center_zone", s.fCenterZone, &next.Snap.CenterZone},
		{"move_mode_timeout", s.fMoveModeTimeout, &next.MoveModeTimeout},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(strings.TrimSpace(f.src))
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", f.field, f.src)
		}
		*f.dst = v
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*s.cfg = next
	return nil
}

// View implements tea.Model.
func (s SettingsTab) View() string {
	if s.editing && s.form != nil {
		header := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render("Editing Settings") +
			lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Render("  (esc to cancel)")
		return lipgloss.NewStyle().
			Width(s.width).
			Height(s.height).
			Padding(1, 2).
			Render(header + "\n\n" + s.form.View())
	}
	return s.viewDisplay()
}

func (s SettingsTab) viewDisplay() string {
	cfg := s.cfg
	if cfg == nil {
		return lipgloss.NewStyle().
			Width(s.width).
			Height(s.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No config loaded")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(28).
		Align(lipgloss.Right).
		PaddingRight(2)
	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)
	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	snapZones := fmt.Sprintf("border:%d window:%d center:%d",
		cfg.Snap.BorderZone, cfg.Snap.WindowZone, cfg.Snap.CenterZone)

	lines := []string{
		"",
		row("Placement", cfg.Placement),
		row("Focus Policy", cfg.FocusPolicy),
		row("Focus Stealing Prevention", activation.Level(cfg.FocusStealingPrevention).String()),
		row("Desktops", strconv.Itoa(cfg.Desktops)),
		"",
		row("Snap Zones", snapZones),
		row("Electric Border Maximize", strconv.FormatBool(cfg.ElectricBorderMaximize)),
		row("Autogroup Similar", strconv.FormatBool(cfg.AutogroupSimilar)),
		"",
		row("Move Mode Timeout", fmt.Sprintf("%ds", cfg.MoveModeTimeout)),
		row("Log Level", cfg.LogLevel),
		row("Session Directory", cfg.SessionDir),
		"",
	}
	if s.formErr != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("  not applied: "+s.formErr))
	}
	lines = append(lines, dimStyle.Render("  Press 'e' to edit settings, ctrl-s to save"))

	return lipgloss.NewStyle().
		Width(s.width).
		Height(s.height).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}
