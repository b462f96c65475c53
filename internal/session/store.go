package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/avral/gatehouse/internal/fsx"
	"github.com/avral/gatehouse/internal/logger"
)

// Store persists at most one session token at a fixed path so a session
// survives process restarts. Saves overwrite; Clear removes the file.
// Writes are atomic and serialized within this process; concurrent
// processes are last-writer-wins.
type Store struct {
	mu    sync.Mutex
	path  string
	codec *Codec
}

// sessionFile is the on-disk layout: one JSON object with the token.
type sessionFile struct {
	Token string `json:"token"`
}

func NewStore(path string, codec *Codec) *Store {
	return &Store{path: path, codec: codec}
}

// Save issues a token for the given identity/navigation state and writes
// it as the sole content of the session file.
func (s *Store) Save(username string, isAdmin bool, page, section string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.codec.Issue(username, isAdmin, page, section)
	if err != nil {
		return fmt.Errorf("issuing session token: %w", err)
	}
	b, err := json.Marshal(sessionFile{Token: token})
	if err != nil {
		return fmt.Errorf("encoding session file: %w", err)
	}
	if err := fsx.EnsureDir(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	if err := fsx.WriteFileAtomic(s.path, b, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Load reads the persisted token, if any, and validates it. A missing
// file, unreadable content or invalid token all report ok=false.
func (s *Store) Load() (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := fsx.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Reading session file %s: %v", s.path, err)
		}
		return State{}, false
	}
	var f sessionFile
	if err := json.Unmarshal(b, &f); err != nil {
		logger.Warn("Malformed session file %s: %v", s.path, err)
		return State{}, false
	}
	return s.codec.Parse(f.Token)
}

// Clear deletes the session file. Clearing an absent file succeeds.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fsx.Remove(s.path); err != nil {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// Restore populates st from the persisted session. When st is already
// authenticated this is a no-op success; when no valid session exists st
// is left untouched.
func (s *Store) Restore(st *State) bool {
	if st.Authenticated {
		return true
	}
	loaded, ok := s.Load()
	if !ok {
		return false
	}
	*st = loaded
	logger.Info("Restored session for %s (admin: %t, page: %s)", st.Username, st.IsAdmin, st.CurrentPage)
	return true
}
