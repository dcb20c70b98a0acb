package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/KDE/kwin-sub007/internal/window"
)

// temporaryRounds is how many cleanup rounds a temporary rule survives.
const temporaryRounds = 2

// File is the on-disk layout of the rule book.
type File struct {
	Rules []*Rule `yaml:"rules"`
}

// Book is the ordered rule list. Earlier rules take priority.
type Book struct {
	path  string
	rules []*Rule
	dirty bool
}

// DefaultPath returns the rules file under the XDG config directory.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "kwin-sub007", "rules.yaml")
}

// NewBook returns an empty book that saves to path.
func NewBook(path string) *Book {
	return &Book{path: path}
}

// Load reads the book at path. A missing file yields an empty book.
func Load(path string) (*Book, error) {
	b := NewBook(path)
	if err := b.Reload(); err != nil {
		return nil, err
	}
	return b, nil
}

// Reload replaces the permanent rules with the file contents. Temporary
// rules stay in front.
func (b *Book) Reload() error {
	var f File
	data, err := os.ReadFile(b.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to read rules %s: %w", b.path, err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to parse rules %s: %w", b.path, err)
		}
	}
	for i, r := range f.Rules {
		if r == nil {
			return fmt.Errorf("%s: rule %d is empty", b.path, i)
		}
		if err := r.Compile(); err != nil {
			return fmt.Errorf("%s: rule %d (%s): %w", b.path, i, r.Description, err)
		}
	}
	var temp []*Rule
	for _, r := range b.rules {
		if r.IsTemporary() {
			temp = append(temp, r)
		}
	}
	b.rules = append(temp, f.Rules...)
	b.dirty = false
	return nil
}

// Path is where Save writes.
func (b *Book) Path() string { return b.path }

// Rules returns the rules in priority order.
func (b *Book) Rules() []*Rule { return b.rules }

// Append adds a permanent rule with the lowest priority.
func (b *Book) Append(r *Rule) error {
	if err := r.Compile(); err != nil {
		return err
	}
	b.rules = append(b.rules, r)
	b.dirty = true
	return nil
}

// AddTemporary adds a rule with the highest priority that is dropped
// after a few cleanup rounds or once it matched a window.
func (b *Book) AddTemporary(r *Rule) error {
	if err := r.Compile(); err != nil {
		return err
	}
	r.temporary = temporaryRounds
	b.rules = append([]*Rule{r}, b.rules...)
	return nil
}

// CleanupTemporary ages the temporary rules and removes the expired ones.
// It reports whether temporary rules remain, so the caller knows to
// schedule another round.
func (b *Book) CleanupTemporary() bool {
	remaining := false
	kept := b.rules[:0]
	for _, r := range b.rules {
		if r.temporary > 0 {
			r.temporary--
			if r.temporary == 0 {
				continue
			}
			remaining = true
		}
		kept = append(kept, r)
	}
	b.rules = kept
	return remaining
}

// Find collects the rules matching w. Temporary rules are consumed by the
// first window they match.
func (b *Book) Find(w *window.Window, ignoreTemporary bool) *WindowRules {
	wr := &WindowRules{book: b}
	kept := b.rules[:0]
	for _, r := range b.rules {
		if ignoreTemporary && r.IsTemporary() {
			kept = append(kept, r)
			continue
		}
		if r.Match(w) {
			log.Printf("rules: rule %s matched window 0x%x", r, w.XID)
			wr.rules = append(wr.rules, r)
			if r.IsTemporary() {
				continue
			}
		}
		kept = append(kept, r)
	}
	b.rules = kept
	return wr
}

// DiscardUsed applies DiscardUsed to every rule of wr and removes rules
// that became empty from both wr and the book.
func (b *Book) DiscardUsed(wr *WindowRules, withdrawn bool) {
	updated := false
	kept := b.rules[:0]
	for _, r := range b.rules {
		if wr.Contains(r) {
			if r.DiscardUsed(withdrawn) {
				updated = true
			}
			if r.IsEmpty() {
				wr.remove(r)
				continue
			}
		}
		kept = append(kept, r)
	}
	b.rules = kept
	if updated {
		b.RequestSave()
	}
}

// RequestSave marks the book as needing to be written.
func (b *Book) RequestSave() { b.dirty = true }

// Dirty reports whether unsaved changes exist.
func (b *Book) Dirty() bool { return b.dirty }

// Save writes every permanent rule to the book's path.
func (b *Book) Save() error {
	if b.path == "" {
		return fmt.Errorf("rules path is not set")
	}
	var f File
	for _, r := range b.rules {
		if !r.IsTemporary() {
			f.Rules = append(f.Rules, r)
		}
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return fmt.Errorf("failed to create rules directory: %w", err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write rules: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("failed to replace rules: %w", err)
	}
	b.dirty = false
	return nil
}
