// Package localstate persists the device-local session: the account name of
// the currently logged-in user. It survives process restarts and is cleared
// on logout.
package localstate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const stateFile = "session"

// Store reads and writes the session file under a state directory
// (typically os.UserConfigDir()/noteboard).
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the per-user state directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "noteboard"), nil
}

// Save records the authenticated account name.
func (s *Store) Save(account string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	path := filepath.Join(s.dir, stateFile)
	if err := os.WriteFile(path, []byte(account+"\n"), 0o600); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the saved account name, or "" when no session exists.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, stateFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("load session: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Clear removes the session. Clearing an absent session is a no-op.
func (s *Store) Clear() error {
	err := os.Remove(filepath.Join(s.dir, stateFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
