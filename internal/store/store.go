// Package store owns the on-disk side of the registry: JSON persistence with
// atomic replacement, the change marker, and the advisory lock that
// serializes updater and processor invocations.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"grimm.is/instanced/internal/instance"
)

// ErrCorruptRegistry marks a registry file that exists but cannot be decoded.
// Corruption is fatal; it is never repaired or treated as an empty registry.
var ErrCorruptRegistry = errors.New("corrupt registry file")

// Store reads and writes the registry file and scopes the advisory lock.
type Store struct {
	path        string
	lockPath    string
	lockTimeout time.Duration
}

// New creates a store for the given registry and lock file paths.
func New(path, lockPath string, lockTimeout time.Duration) *Store {
	return &Store{
		path:        path,
		lockPath:    lockPath,
		lockTimeout: lockTimeout,
	}
}

// Path returns the registry file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the registry file exists.
func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat registry file: %w", err)
}

// Load reads the registry. A missing file is an empty registry; an existing
// file that cannot be read or decoded is an error.
func (s *Store) Load() (instance.Registry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return instance.Registry{}, nil
		}
		return nil, fmt.Errorf("read registry file %s: %w", s.path, err)
	}

	reg := instance.Registry{}
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRegistry, s.path, err)
	}
	return reg, nil
}

// Save serializes the registry deterministically (encoding/json sorts map
// keys) and replaces the registry file atomically, so concurrent readers
// never observe a partial write.
func (s *Store) Save(reg instance.Registry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	data = append(data, '\n')
	if err := WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write registry file %s: %w", s.path, err)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary file in the target's directory
// and renames it over the target.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
