package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/filex"
)

// ErrNotLoggedIn is returned when no saved session exists.
var ErrNotLoggedIn = errors.New("not logged in, run \"vaultctl login\" first")

// Session is what login persists between invocations.
type Session struct {
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// SaveSession writes s to path, readable by the owner only. The file is
// replaced atomically.
func SaveSession(path string, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession reads the session at path.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil || s.AccessToken == "" {
		return nil, ErrNotLoggedIn
	}
	return &s, nil
}

// ClearSession removes the session at path. A missing file is not an error.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
