// Package fsdb keeps small pieces of client state on the local
// filesystem. Today that is only the cached session, which lets CLI
// invocations reuse a sign-in instead of asking for credentials every
// run.
package fsdb

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/buddyapp/buddy/internal/domain"
)

const sessionFile = "session.yaml"

// SessionStore persists one session under a directory.
type SessionStore struct {
	dir string
}

// NewSessionStore stores state under the given directory, typically the
// BUDDY config dir.
func NewSessionStore(dir string) *SessionStore {
	return &SessionStore{dir: dir}
}

func (s *SessionStore) path() string {
	return filepath.Join(s.dir, sessionFile)
}

// Load reads the cached session. No file means no session: (nil, nil).
func (s *SessionStore) Load() (*domain.Session, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var sess domain.Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	if sess.UID == "" {
		return nil, nil
	}
	return &sess, nil
}

// Save writes the session. Tokens live here, so the file is 0600.
func (s *SessionStore) Save(sess *domain.Session) error {
	data, err := yaml.Marshal(sess)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path(), data, 0o600)
}

// Clear removes the cached session. Clearing an absent session is fine.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
