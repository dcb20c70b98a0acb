package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
)

// DefaultDir is where sessions live unless configured otherwise.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "kwin-sub007", "sessions")
}

// Store reads and writes sessions as JSON files in one directory.
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir, or DefaultDir when dir is empty.
func NewStore(dir string) *Store {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultDir()
	}
	return &Store{Dir: dir}
}

// ValidateName rejects names that would escape the session directory.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("session name is required")
	}
	if strings.Contains(name, string(os.PathSeparator)) || name != filepath.Base(name) {
		return fmt.Errorf("invalid session name %q", name)
	}
	if name == "." || name == ".." || strings.Contains(name, "..") {
		return fmt.Errorf("invalid session name %q", name)
	}
	return nil
}

// Path returns the file a session is stored in.
func (s *Store) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, name+".json"), nil
}

func (s *Store) Write(sess *Session) error {
	if sess == nil {
		return fmt.Errorf("session is nil")
	}
	path, err := s.Path(sess.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write session %q: %w", sess.Name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write session %q: %w", sess.Name, err)
	}
	return nil
}

func (s *Store) Read(name string) (*Session, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session %q: %w", name, err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session %q: %w", name, err)
	}
	if sess.Name == "" {
		sess.Name = name
	}
	return &sess, nil
}

func (s *Store) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete session %q: %w", name, err)
	}
	return nil
}

// List returns the stored session names, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(out)
	return out, nil
}
