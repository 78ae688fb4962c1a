package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const tokenFilePermMode = 0600

// ErrNoToken is returned when no session token has been saved.
var ErrNoToken = errors.New("not logged in")

// SecureStore keeps the session token between runs.
type SecureStore interface {
	Load() (string, error)
	Save(token string) error
	Delete() error
}

// FileStore keeps the token in a file readable only by the owner.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// DefaultTokenPath is ~/.config/syncalendar/token, or a file in the
// working directory when the config dir is unknown.
func DefaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".syncalendar-token"
	}
	return filepath.Join(dir, "syncalendar", "token")
}

func (fs *FileStore) Load() (string, error) {
	data, err := os.ReadFile(fs.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("unable to read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (fs *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(fs.Path), 0700); err != nil {
		return fmt.Errorf("unable to create token dir: %w", err)
	}

	f, err := os.OpenFile(fs.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, tokenFilePermMode)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(token + "\n"); err != nil {
		return fmt.Errorf("unable to write token: %w", err)
	}
	return nil
}

func (fs *FileStore) Delete() error {
	if err := os.Remove(fs.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("unable to remove token file: %w", err)
	}
	return nil
}

// MemoryStore keeps the token for the life of the process.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (ms *MemoryStore) Load() (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.token == "" {
		return "", ErrNoToken
	}
	return ms.token, nil
}

func (ms *MemoryStore) Save(token string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.token = token
	return nil
}

func (ms *MemoryStore) Delete() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.token = ""
	return nil
}
