package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileDocument mirrors the {"state": ..., "version": n} layout browser storage
// middleware uses for the same key, so the file can be seeded from an export.
type fileDocument struct {
	State   fileState `json:"state"`
	Version int       `json:"version"`
}

type fileState struct {
	Token     *string `json:"token"`
	PublicKey *string `json:"publicKey"`
	User      *User   `json:"user"`
}

// FileStore persists the session as a JSON document on disk.
// Writes go to a temporary file that is renamed over the target.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store writing to path. The parent directory is
// created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath returns <user config dir>/goauth-client/jwt-auth-storage.json.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "goauth-client", DefaultKey+".json"), nil
}

// Path returns the file location.
func (f *FileStore) Path() string {
	return f.path
}

// Save implements [Store].
func (f *FileStore) Save(_ context.Context, s State) error {
	doc := fileDocument{Version: 0}
	if s.Token != "" {
		doc.State.Token = &s.Token
	}
	if s.PublicKey != "" {
		doc.State.PublicKey = &s.PublicKey
	}
	doc.State.User = s.User

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Load implements [Store].
func (f *FileStore) Load(_ context.Context) (State, bool, error) {
	f.mu.Lock()
	data, err := os.ReadFile(f.path)
	f.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("read session file: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return State{}, false, fmt.Errorf("decode session file: %w", err)
	}

	s := State{SchemaVersion: CurrentSchemaVersion, User: doc.State.User}
	if doc.State.Token != nil {
		s.Token = *doc.State.Token
	}
	if doc.State.PublicKey != nil {
		s.PublicKey = *doc.State.PublicKey
	}
	return s, true, nil
}

// Clear implements [Store].
func (f *FileStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
