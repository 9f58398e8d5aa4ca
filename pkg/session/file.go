package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// cliSessionFile is the fixed filename of the single CLI session.
const cliSessionFile = "github.json"

// FileStore persists the CLI session as a JSON file in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based session store.
// If baseDir is empty, it defaults to ~/.config/marketmap/sessions/.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "marketmap", "sessions")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// NewCLIStore creates the store at the default location.
func NewCLIStore() (*FileStore, error) {
	return NewFileStore("")
}

func (s *FileStore) sessionPath() string {
	return filepath.Join(s.baseDir, cliSessionFile)
}

// GetSession returns the stored session, or nil when none exists.
// Expired sessions are removed and reported as absent.
func (s *FileStore) GetSession(ctx context.Context) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.sessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}

	if sess.IsExpired() {
		_ = os.Remove(s.sessionPath())
		return nil, nil
	}
	return &sess, nil
}

// SaveSession writes the session, replacing any previous one.
func (s *FileStore) SaveSession(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.sessionPath(), data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// DeleteSession removes the stored session. Missing sessions are not an error.
func (s *FileStore) DeleteSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.sessionPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
