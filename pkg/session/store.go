package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mch/mch/pkg/client"
)

// State is what a Store persists.
type State struct {
	User          *client.Account `json:"user,omitempty"`
	Token         string          `json:"token,omitempty"`
	LastActivity  time.Time       `json:"last_activity,omitempty"`
	IdleTimeout   time.Duration   `json:"idle_timeout,omitempty"`
	LogoutReason  string          `json:"logout_reason,omitempty"`
	LogoutMessage string          `json:"logout_message,omitempty"`
}

// Store persists session state between runs.
type Store interface {
	Load() (*State, error)
	Save(*State) error
}

// FileStore keeps the state as a JSON file readable only by its owner.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns ~/.config/mch/session.json, or the equivalent for the
// platform.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mch", "session.json"), nil
}

// Load returns an empty State when the file does not exist.
func (s *FileStore) Load() (*State, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &State{}, nil
	}
	if err != nil {
		return nil, err
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return &st, nil
}

func (s *FileStore) Save(st *State) error {
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// MemoryStore is a Store that lives only as long as the process.
type MemoryStore struct {
	mu sync.Mutex
	st State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := s.st
	return &cp, nil
}

func (s *MemoryStore) Save(st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = *st
	return nil
}
