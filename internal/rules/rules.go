// Package rules implements per-window overrides configured by the user.
//
// A Rule matches windows by class, role, title, machine and kind, and
// carries an optional value plus a disposition for each property it
// overrides. Set dispositions (Apply, Remember, ApplyNow, Force,
// ForceTemporarily) may be changed by the user afterwards; force
// dispositions pin a property for the window's whole life.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KDE/kwin-sub007/internal/activation"
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/placement"
	"github.com/KDE/kwin-sub007/internal/window"
)

// SetRule is the disposition of a property the user can still change.
type SetRule int

const (
	SetUnused SetRule = iota
	SetDontAffect
	SetForce
	// SetApply applies the value when the window is first managed.
	SetApply
	// SetRemember applies like SetApply and writes later changes back.
	SetRemember
	// SetApplyNow applies once and is then dropped from the rule.
	SetApplyNow
	// SetForceTemporarily forces until the window goes away.
	SetForceTemporarily
)

var setRuleNames = [...]string{"unused", "dont-affect", "force", "apply", "remember", "apply-now", "force-temporarily"}

func (r SetRule) String() string {
	if r >= SetUnused && int(r) < len(setRuleNames) {
		return setRuleNames[r]
	}
	return fmt.Sprintf("SetRule(%d)", int(r))
}

func (r SetRule) MarshalYAML() (interface{}, error) { return r.String(), nil }

func (r *SetRule) UnmarshalYAML(value *yaml.Node) error {
	for i, name := range setRuleNames {
		if strings.EqualFold(value.Value, name) {
			*r = SetRule(i)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown rule disposition %q", value.Line, value.Value)
}

// applies reports whether the stored value replaces the window's own.
func (r SetRule) applies(init bool) bool {
	if r <= SetDontAffect {
		return false
	}
	return r == SetForce || r == SetApplyNow || r == SetForceTemporarily || init
}

// ForceRule is the disposition of a property that is only ever forced.
type ForceRule int

const (
	ForceUnused ForceRule = iota
	ForceDontAffect
	ForceForce
	ForceTemporarily
)

var forceRuleNames = [...]string{"unused", "dont-affect", "force", "force-temporarily"}

func (r ForceRule) String() string {
	if r >= ForceUnused && int(r) < len(forceRuleNames) {
		return forceRuleNames[r]
	}
	return fmt.Sprintf("ForceRule(%d)", int(r))
}

func (r ForceRule) MarshalYAML() (interface{}, error) { return r.String(), nil }

func (r *ForceRule) UnmarshalYAML(value *yaml.Node) error {
	for i, name := range forceRuleNames {
		if strings.EqualFold(value.Value, name) {
			*r = ForceRule(i)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown force disposition %q", value.Line, value.Value)
}

// StringMatch selects how a match criterion compares strings.
type StringMatch int

const (
	MatchUnimportant StringMatch = iota
	MatchExact
	MatchSubstring
	MatchRegexp
)

var stringMatchNames = [...]string{"unimportant", "exact", "substring", "regexp"}

func (m StringMatch) String() string {
	if m >= MatchUnimportant && int(m) < len(stringMatchNames) {
		return stringMatchNames[m]
	}
	return fmt.Sprintf("StringMatch(%d)", int(m))
}

func (m StringMatch) MarshalYAML() (interface{}, error) { return m.String(), nil }

func (m *StringMatch) UnmarshalYAML(value *yaml.Node) error {
	for i, name := range stringMatchNames {
		if strings.EqualFold(value.Value, name) {
			*m = StringMatch(i)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown string match %q", value.Line, value.Value)
}

// Set is a user-changeable property override.
type Set[T any] struct {
	Value T       `yaml:"value"`
	Rule  SetRule `yaml:"rule"`
}

func (s *Set[T]) active() bool { return s != nil && s.Rule != SetUnused }

// apply writes the value into arg when the disposition allows it and
// reports whether later rules must be skipped.
func (s *Set[T]) apply(arg *T, init bool) bool {
	if s == nil {
		return false
	}
	if s.Rule.applies(init) {
		*arg = s.Value
	}
	return s.Rule != SetUnused
}

// Force is a forced property override.
type Force[T any] struct {
	Value T         `yaml:"value"`
	Rule  ForceRule `yaml:"rule"`
}

func (f *Force[T]) active() bool { return f != nil && f.Rule != ForceUnused }

func (f *Force[T]) apply(arg *T) bool {
	if f == nil {
		return false
	}
	if f.Rule == ForceForce || f.Rule == ForceTemporarily {
		*arg = f.Value
	}
	return f.Rule != ForceUnused
}

// Matcher is one string criterion.
type Matcher struct {
	Value string      `yaml:"value"`
	Match StringMatch `yaml:"match"`

	re *regexp.Regexp
}

func (m *Matcher) compile() error {
	if m == nil || m.Match != MatchRegexp {
		return nil
	}
	re, err := regexp.Compile(m.Value)
	if err != nil {
		return fmt.Errorf("invalid pattern %q: %w", m.Value, err)
	}
	m.re = re
	return nil
}

func (m *Matcher) matches(s string) bool {
	if m == nil {
		return true
	}
	switch m.Match {
	case MatchExact:
		return s == m.Value
	case MatchSubstring:
		return strings.Contains(s, m.Value)
	case MatchRegexp:
		if m.re == nil {
			if err := m.compile(); err != nil {
				return false
			}
		}
		return m.re.MatchString(s)
	}
	return true
}

// Rule is one entry of the rule book.
type Rule struct {
	Description string `yaml:"description,omitempty"`

	Class *Matcher `yaml:"class,omitempty"`
	// ClassComplete matches against "name class" instead of the class only.
	ClassComplete bool     `yaml:"class_complete,omitempty"`
	Role          *Matcher `yaml:"role,omitempty"`
	Title         *Matcher `yaml:"title,omitempty"`
	Machine       *Matcher `yaml:"machine,omitempty"`
	// Types lists window kinds by name; empty matches every kind.
	Types []string `yaml:"types,omitempty"`

	Placement      *Force[placement.Policy] `yaml:"placement,omitempty"`
	Position       *Set[geom.Point]         `yaml:"position,omitempty"`
	Size           *Set[geom.Size]          `yaml:"size,omitempty"`
	MinSize        *Force[geom.Size]        `yaml:"minsize,omitempty"`
	MaxSize        *Force[geom.Size]        `yaml:"maxsize,omitempty"`
	Desktop        *Set[int]                `yaml:"desktop,omitempty"`
	Screen         *Set[int]                `yaml:"screen,omitempty"`
	MaximizeVert   *Set[bool]               `yaml:"maximizevert,omitempty"`
	MaximizeHoriz  *Set[bool]               `yaml:"maximizehoriz,omitempty"`
	Minimize       *Set[bool]               `yaml:"minimize,omitempty"`
	Shade          *Set[bool]               `yaml:"shade,omitempty"`
	SkipTaskbar    *Set[bool]               `yaml:"skiptaskbar,omitempty"`
	SkipPager      *Set[bool]               `yaml:"skippager,omitempty"`
	SkipSwitcher   *Set[bool]               `yaml:"skipswitcher,omitempty"`
	Above          *Set[bool]               `yaml:"above,omitempty"`
	Below          *Set[bool]               `yaml:"below,omitempty"`
	Fullscreen     *Set[bool]               `yaml:"fullscreen,omitempty"`
	NoBorder       *Set[bool]               `yaml:"noborder,omitempty"`
	StrictGeometry *Force[bool]             `yaml:"strictgeometry,omitempty"`
	FSPLevel       *Force[activation.Level] `yaml:"fsplevel,omitempty"`
	AcceptFocus    *Force[bool]             `yaml:"acceptfocus,omitempty"`
	Closeable      *Force[bool]             `yaml:"closeable,omitempty"`
	Autogroup      *Force[bool]             `yaml:"autogroup,omitempty"`
	AutogroupFG    *Force[bool]             `yaml:"autogroupfg,omitempty"`
	AutogroupID    *Force[string]           `yaml:"autogroupid,omitempty"`
	Shortcut       *Set[string]             `yaml:"shortcut,omitempty"`

	kinds []window.Kind
	// temporary counts cleanup rounds left; zero for permanent rules.
	temporary int
}

// Compile validates the criteria and prepares regular expressions.
func (r *Rule) Compile() error {
	for _, m := range []*Matcher{r.Class, r.Role, r.Title, r.Machine} {
		if err := m.compile(); err != nil {
			return err
		}
	}
	r.kinds = r.kinds[:0]
	for _, name := range r.Types {
		k, ok := window.ParseKind(name)
		if !ok {
			return fmt.Errorf("unknown window type %q", name)
		}
		r.kinds = append(r.kinds, k)
	}
	if r.FSPLevel != nil && !r.FSPLevel.Value.Valid() {
		return fmt.Errorf("fsplevel %d out of range", int(r.FSPLevel.Value))
	}
	return nil
}

// IsTemporary reports whether the rule was added for a limited time.
func (r *Rule) IsTemporary() bool { return r.temporary > 0 }

// TracksTitle reports whether the match depends on the window title, in
// which case rules must be re-evaluated when the title changes.
func (r *Rule) TracksTitle() bool { return r.Title != nil && r.Title.Match != MatchUnimportant }

// Match reports whether w satisfies every criterion.
func (r *Rule) Match(w *window.Window) bool {
	if len(r.Types) > 0 {
		if len(r.kinds) != len(r.Types) {
			if err := r.Compile(); err != nil {
				return false
			}
		}
		found := false
		for _, k := range r.kinds {
			if k == w.Kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	class := strings.ToLower(w.ResourceClass)
	if r.ClassComplete {
		class = strings.ToLower(w.ResourceName) + " " + class
	}
	if !r.Class.matches(class) {
		return false
	}
	if !r.Role.matches(strings.ToLower(w.Role)) {
		return false
	}
	if !r.Machine.matches(w.Machine) {
		return false
	}
	return r.Title.matches(w.Title)
}

// IsEmpty reports whether the rule no longer overrides anything.
func (r *Rule) IsEmpty() bool {
	return !(r.Placement.active() || r.Position.active() || r.Size.active() ||
		r.MinSize.active() || r.MaxSize.active() || r.Desktop.active() ||
		r.Screen.active() || r.MaximizeVert.active() || r.MaximizeHoriz.active() ||
		r.Minimize.active() || r.Shade.active() || r.SkipTaskbar.active() ||
		r.SkipPager.active() || r.SkipSwitcher.active() || r.Above.active() ||
		r.Below.active() || r.Fullscreen.active() || r.NoBorder.active() ||
		r.StrictGeometry.active() || r.FSPLevel.active() || r.AcceptFocus.active() ||
		r.Closeable.active() || r.Autogroup.active() || r.AutogroupFG.active() ||
		r.AutogroupID.active() || r.Shortcut.active())
}

// Property selects the properties a remember write-back looks at.
type Property uint32

const (
	PropPosition Property = 1 << iota
	PropSize
	PropDesktop
	PropScreen
	PropMaximizeVert
	PropMaximizeHoriz
	PropMinimize
	PropShade
	PropSkipTaskbar
	PropSkipPager
	PropSkipSwitcher
	PropAbove
	PropBelow
	PropFullscreen
	PropNoBorder

	PropAll Property = 1<<iota - 1
)

func remember[T comparable](s *Set[T], sel, prop Property, v T) bool {
	if sel&prop == 0 || s == nil || s.Rule != SetRemember || s.Value == v {
		return false
	}
	s.Value = v
	return true
}

// Update copies the current state of w into every property marked
// Remember and selected by sel. It reports whether anything changed.
func (r *Rule) Update(w *window.Window, sel Property) bool {
	updated := false
	if !w.Fullscreen {
		if r.Position != nil {
			p := r.Position.Value
			if w.Maximize&window.MaximizeHorizontal == 0 {
				p.X = w.Frame.X
			}
			if w.Maximize&window.MaximizeVertical == 0 {
				p.Y = w.Frame.Y
			}
			updated = remember(r.Position, sel, PropPosition, p) || updated
		}
		if r.Size != nil {
			s := r.Size.Value
			if w.Maximize&window.MaximizeHorizontal == 0 {
				s.Width = w.Frame.Width
			}
			if w.Maximize&window.MaximizeVertical == 0 {
				s.Height = w.Frame.Height
			}
			updated = remember(r.Size, sel, PropSize, s) || updated
		}
	}
	updated = remember(r.Desktop, sel, PropDesktop, w.Desktop) || updated
	updated = remember(r.Screen, sel, PropScreen, w.Screen) || updated
	updated = remember(r.MaximizeVert, sel, PropMaximizeVert, w.Maximize&window.MaximizeVertical != 0) || updated
	updated = remember(r.MaximizeHoriz, sel, PropMaximizeHoriz, w.Maximize&window.MaximizeHorizontal != 0) || updated
	updated = remember(r.Minimize, sel, PropMinimize, w.Minimized) || updated
	updated = remember(r.Shade, sel, PropShade, w.IsShade()) || updated
	updated = remember(r.SkipTaskbar, sel, PropSkipTaskbar, w.SkipTaskbar) || updated
	updated = remember(r.SkipPager, sel, PropSkipPager, w.SkipPager) || updated
	updated = remember(r.SkipSwitcher, sel, PropSkipSwitcher, w.SkipSwitcher) || updated
	updated = remember(r.Above, sel, PropAbove, w.KeepAbove) || updated
	updated = remember(r.Below, sel, PropBelow, w.KeepBelow) || updated
	updated = remember(r.Fullscreen, sel, PropFullscreen, w.Fullscreen) || updated
	updated = remember(r.NoBorder, sel, PropNoBorder, w.NoBorder) || updated
	return updated
}

func discardSet[T any](p **Set[T], withdrawn bool) bool {
	s := *p
	if s == nil {
		return false
	}
	if s.Rule == SetApplyNow || (withdrawn && s.Rule == SetForceTemporarily) {
		*p = nil
		return true
	}
	return false
}

func discardForce[T any](p **Force[T], withdrawn bool) bool {
	f := *p
	if f == nil || !withdrawn || f.Rule != ForceTemporarily {
		return false
	}
	*p = nil
	return true
}

// DiscardUsed drops ApplyNow properties, and ForceTemporarily properties
// once the window is withdrawn. It reports whether the rule changed.
func (r *Rule) DiscardUsed(withdrawn bool) bool {
	changed := false
	changed = discardForce(&r.Placement, withdrawn) || changed
	changed = discardSet(&r.Position, withdrawn) || changed
	changed = discardSet(&r.Size, withdrawn) || changed
	changed = discardForce(&r.MinSize, withdrawn) || changed
	changed = discardForce(&r.MaxSize, withdrawn) || changed
	changed = discardSet(&r.Desktop, withdrawn) || changed
	changed = discardSet(&r.Screen, withdrawn) || changed
	changed = discardSet(&r.MaximizeVert, withdrawn) || changed
	changed = discardSet(&r.MaximizeHoriz, withdrawn) || changed
	changed = discardSet(&r.Minimize, withdrawn) || changed
	changed = discardSet(&r.Shade, withdrawn) || changed
	changed = discardSet(&r.SkipTaskbar, withdrawn) || changed
	changed = discardSet(&r.SkipPager, withdrawn) || changed
	changed = discardSet(&r.SkipSwitcher, withdrawn) || changed
	changed = discardSet(&r.Above, withdrawn) || changed
	changed = discardSet(&r.Below, withdrawn) || changed
	changed = discardSet(&r.Fullscreen, withdrawn) || changed
	changed = discardSet(&r.NoBorder, withdrawn) || changed
	changed = discardForce(&r.StrictGeometry, withdrawn) || changed
	changed = discardForce(&r.FSPLevel, withdrawn) || changed
	changed = discardForce(&r.AcceptFocus, withdrawn) || changed
	changed = discardForce(&r.Closeable, withdrawn) || changed
	changed = discardForce(&r.Autogroup, withdrawn) || changed
	changed = discardForce(&r.AutogroupFG, withdrawn) || changed
	changed = discardForce(&r.AutogroupID, withdrawn) || changed
	changed = discardSet(&r.Shortcut, withdrawn) || changed
	return changed
}

func (r *Rule) String() string {
	class := ""
	if r.Class != nil {
		class = r.Class.Value
	}
	return fmt.Sprintf("[%s:%s]", r.Description, class)
}
