package crmclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNotLoggedIn is returned when no usable session is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// Session is what the command line client remembers between runs.
type Session struct {
	Login string    `json:"login"`
	User  string    `json:"user"`
	At    time.Time `json:"at"`
	Token string    `json:"token,omitempty"`
}

// DisplayName is the user name, falling back to the login.
func (s *Session) DisplayName() string {
	if s.User != "" {
		return s.User
	}
	if s.Login != "" {
		return s.Login
	}
	return "Unknown"
}

// DefaultSessionPath is crm/session.json under the user's config directory.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, "crm", "session.json"), nil
}

// LoadSession reads the session at path. A missing file is ErrNotLoggedIn;
// an unreadable one is removed and also reported as ErrNotLoggedIn.
func LoadSession(path string) (*Session, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil || s.Login == "" {
		_ = os.Remove(path)
		return nil, ErrNotLoggedIn
	}
	return &s, nil
}

// SaveSession writes s to path, readable by the owner only.
func SaveSession(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// ClearSession removes the session at path. A missing file is not an error.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
