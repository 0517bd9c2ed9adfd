package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
)

// DefaultSlot is the single session ID used by the CLI.
const DefaultSlot = "default"

// FileStore persists CLI sessions in one JSON file keyed by slot. The file
// holds a bearer token, so it is written with mode 0600 under a 0700
// directory, via a temp file and rename so a crash never leaves it torn.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// FilePath returns the CLI session file location: $BUSCTL_SESSION_FILE,
// else $XDG_CONFIG_HOME/busctl/session.json, else ~/.config/busctl/session.json.
func FilePath() string {
	if p := os.Getenv("BUSCTL_SESSION_FILE"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "busctl-session.json")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "busctl", "session.json")
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(_ context.Context, id string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.readAll()
	if err != nil {
		return nil, err
	}
	s, ok := all[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (f *FileStore) Save(_ context.Context, id string, s *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.readAll()
	if err != nil {
		return err
	}
	all[id] = *s
	return f.writeAll(all)
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.readAll()
	if err != nil {
		return err
	}
	if _, ok := all[id]; !ok {
		return nil
	}
	delete(all, id)
	if len(all) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing session file %s: %w", f.path, err)
		}
		return nil
	}
	return f.writeAll(all)
}

func (f *FileStore) readAll() (map[string]domain.Session, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]domain.Session{}, nil
		}
		return nil, fmt.Errorf("reading session file %s: %w", f.path, err)
	}
	all := map[string]domain.Session{}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", f.path, err)
	}
	return all, nil
}

func (f *FileStore) writeAll(all map[string]domain.Session) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("creating temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp session file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("writing session file %s: %w", f.path, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
