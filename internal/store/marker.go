package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Marker is the durable "registry changed since last processed" flag. Only
// presence matters; the file has no content. Set and TakeIfSet are always
// called inside the store's lock scope, which is what makes clearing the
// marker and reading the registry one atomic unit from the writer's view.
type Marker struct {
	path string
}

// NewMarker creates a marker bound to the given path.
func NewMarker(path string) *Marker {
	return &Marker{path: path}
}

// Path returns the marker file path.
func (m *Marker) Path() string {
	return m.path
}

// Set idempotently marks an unprocessed change.
func (m *Marker) Set() error {
	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("touch marker file %s: %w", m.path, err)
	}
	return f.Close()
}

// TakeIfSet clears the marker and reports whether it was set.
func (m *Marker) TakeIfSet() (bool, error) {
	err := os.Remove(m.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("clear marker file %s: %w", m.path, err)
}
