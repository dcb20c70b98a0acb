package rules

import (
	"github.com/KDE/kwin-sub007/internal/activation"
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/placement"
	"github.com/KDE/kwin-sub007/internal/window"
)

// WindowRules is the ordered list of rules that matched one window. The
// first rule that has an opinion about a property decides it; a nil
// *WindowRules checks nothing and returns every argument unchanged.
type WindowRules struct {
	book  *Book
	rules []*Rule
}

// Rules returns the matched rules in priority order.
func (wr *WindowRules) Rules() []*Rule {
	if wr == nil {
		return nil
	}
	return wr.rules
}

// Contains reports whether r is one of the matched rules.
func (wr *WindowRules) Contains(r *Rule) bool {
	for _, x := range wr.Rules() {
		if x == r {
			return true
		}
	}
	return false
}

// TracksTitle reports whether any matched rule depends on the title.
func (wr *WindowRules) TracksTitle() bool {
	for _, r := range wr.Rules() {
		if r.TracksTitle() {
			return true
		}
	}
	return false
}

func (wr *WindowRules) remove(r *Rule) {
	for i, x := range wr.rules {
		if x == r {
			wr.rules = append(wr.rules[:i], wr.rules[i+1:]...)
			return
		}
	}
}

func checkSet[T any](wr *WindowRules, pick func(*Rule) *Set[T], arg T, init bool) T {
	for _, r := range wr.Rules() {
		if pick(r).apply(&arg, init) {
			break
		}
	}
	return arg
}

func checkForce[T any](wr *WindowRules, pick func(*Rule) *Force[T], arg T) T {
	for _, r := range wr.Rules() {
		if pick(r).apply(&arg) {
			break
		}
	}
	return arg
}

func (wr *WindowRules) CheckPlacement(p placement.Policy) placement.Policy {
	return checkForce(wr, func(r *Rule) *Force[placement.Policy] { return r.Placement }, p)
}

func (wr *WindowRules) CheckPosition(p geom.Point, init bool) geom.Point {
	return checkSet(wr, func(r *Rule) *Set[geom.Point] { return r.Position }, p, init)
}

// CheckSize ignores rules whose stored size is empty.
func (wr *WindowRules) CheckSize(s geom.Size, init bool) geom.Size {
	out := checkSet(wr, func(r *Rule) *Set[geom.Size] { return r.Size }, s, init)
	if out.IsEmpty() {
		return s
	}
	return out
}

func (wr *WindowRules) CheckGeometry(r geom.Rect, init bool) geom.Rect {
	return geom.NewRect(wr.CheckPosition(r.Pos(), init), wr.CheckSize(r.Size(), init))
}

func (wr *WindowRules) CheckMinSize(s geom.Size) geom.Size {
	return checkForce(wr, func(r *Rule) *Force[geom.Size] { return r.MinSize }, s)
}

func (wr *WindowRules) CheckMaxSize(s geom.Size) geom.Size {
	return checkForce(wr, func(r *Rule) *Force[geom.Size] { return r.MaxSize }, s)
}

func (wr *WindowRules) CheckDesktop(d int, init bool) int {
	return checkSet(wr, func(r *Rule) *Set[int] { return r.Desktop }, d, init)
}

// CheckScreen keeps the candidate when the forced screen does not exist.
func (wr *WindowRules) CheckScreen(screen int, init bool, screens int) int {
	out := checkSet(wr, func(r *Rule) *Set[int] { return r.Screen }, screen, init)
	if out < 0 || out >= screens {
		return screen
	}
	return out
}

// CheckMaximize decides each axis independently.
func (wr *WindowRules) CheckMaximize(mode window.MaximizeMode, init bool) window.MaximizeMode {
	vert := checkSet(wr, func(r *Rule) *Set[bool] { return r.MaximizeVert }, mode&window.MaximizeVertical != 0, init)
	horiz := checkSet(wr, func(r *Rule) *Set[bool] { return r.MaximizeHoriz }, mode&window.MaximizeHorizontal != 0, init)
	out := window.MaximizeRestore
	if vert {
		out |= window.MaximizeVertical
	}
	if horiz {
		out |= window.MaximizeHorizontal
	}
	return out
}

func (wr *WindowRules) CheckMinimize(minimized bool, init bool) bool {
	return checkSet(wr, func(r *Rule) *Set[bool] { return r.Minimize }, minimized, init)
}

// CheckShade maps the boolean rule onto shade modes; hover and activated
// shading count as shaded.
func (wr *WindowRules) CheckShade(mode window.ShadeMode, init bool) window.ShadeMode {
	shaded := checkSet(wr, func(r *Rule) *Set[bool] { return r.Shade }, mode != window.ShadeNone, init)
	switch {
	case !shaded:
		return window.ShadeNone
	case mode == window.ShadeNone:
		return window.ShadeNormal
	}
	return mode
}

func (wr *WindowRules) CheckSkipTaskbar(skip bool, init bool) bool {
	return checkSet(wr, func(r *Rule) *Set[bool] { return r.SkipTaskbar }, skip, init)
}

func (wr *WindowRules) CheckSkipPager(skip bool, init bool) bool {
	return checkSet(wr, func(r *Rule) *Set[bool] { return r.SkipPager }, skip, init)
}

func (wr *WindowRules) CheckSkipSwitcher(skip bool, init bool) bool {
	return checkSet(wr, func(r *Rule) *Set[bool] { return r.SkipSwitcher }, skip, init)
}

func (wr *WindowRules) CheckKeepAbove(above bool, init bool) bool {
	return checkSet(wr, func(r *Rule) *Set[bool] { return r.Above }, above, init)
}

func (wr *WindowRules) CheckKeepBelow(below bool, init bool) bool {
	return checkSet(wr, func(r *Rule) *Set[bool] { return r.Below }, below, init)
}

func (wr *WindowRules) CheckFullscreen(fs bool, init bool) bool {
	return checkSet(wr, func(r *Rule) *Set[bool] { return r.Fullscreen }, fs, init)
}

func (wr *WindowRules) CheckNoBorder(noBorder bool, init bool) bool {
	return checkSet(wr, func(r *Rule) *Set[bool] { return r.NoBorder }, noBorder, init)
}

func (wr *WindowRules) CheckStrictGeometry(strict bool) bool {
	return checkForce(wr, func(r *Rule) *Force[bool] { return r.StrictGeometry }, strict)
}

func (wr *WindowRules) CheckFSP(level activation.Level) activation.Level {
	return checkForce(wr, func(r *Rule) *Force[activation.Level] { return r.FSPLevel }, level)
}

func (wr *WindowRules) CheckAcceptFocus(accept bool) bool {
	return checkForce(wr, func(r *Rule) *Force[bool] { return r.AcceptFocus }, accept)
}

func (wr *WindowRules) CheckCloseable(closeable bool) bool {
	return checkForce(wr, func(r *Rule) *Force[bool] { return r.Closeable }, closeable)
}

func (wr *WindowRules) CheckAutogrouping(autogroup bool) bool {
	return checkForce(wr, func(r *Rule) *Force[bool] { return r.Autogroup }, autogroup)
}

func (wr *WindowRules) CheckAutogroupInForeground(fg bool) bool {
	return checkForce(wr, func(r *Rule) *Force[bool] { return r.AutogroupFG }, fg)
}

func (wr *WindowRules) CheckAutogroupByID(id string) string {
	return checkForce(wr, func(r *Rule) *Force[string] { return r.AutogroupID }, id)
}

func (wr *WindowRules) CheckShortcut(shortcut string, init bool) string {
	return checkSet(wr, func(r *Rule) *Set[string] { return r.Shortcut }, shortcut, init)
}

// Update writes the remembered properties of w back into the matched
// rules and asks the book to be saved when any of them changed.
func (wr *WindowRules) Update(w *window.Window, sel Property) bool {
	updated := false
	for _, r := range wr.Rules() {
		if r.Update(w, sel) {
			updated = true
		}
	}
	if updated && wr.book != nil {
		wr.book.RequestSave()
	}
	return updated
}

// DiscardTemporary drops the temporary rules from this window's list.
func (wr *WindowRules) DiscardTemporary() {
	if wr == nil {
		return
	}
	kept := wr.rules[:0]
	for _, r := range wr.rules {
		if !r.IsTemporary() {
			kept = append(kept, r)
		}
	}
	wr.rules = kept
}
