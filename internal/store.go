package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoValue is returned by Store.Read when the key has never been written
// or holds only whitespace.
var ErrNoValue = errors.New("no stored value")

// Store keeps one plain-text value per file under a single directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file backing key. Keys are path-escaped so profile names
// containing separators stay inside the store directory, and a leading dot
// is escaped so no key maps to a hidden or temporary file.
func (s *Store) Path(key string) string {
	name := url.PathEscape(key)
	if strings.HasPrefix(name, ".") {
		name = "%2E" + name[1:]
	}
	return filepath.Join(s.dir, name)
}

// Read returns the trimmed contents stored under key.
func (s *Store) Read(key string) (string, error) {
	b, err := os.ReadFile(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoValue
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	value := strings.TrimSpace(string(b))
	if value == "" {
		return "", ErrNoValue
	}
	return value, nil
}

// Write replaces the value stored under key. The value is written to a
// dot-prefixed temporary file and renamed into place. Key files never start
// with a dot, so the temporary name cannot shadow another key.
func (s *Store) Write(key, value string) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	f, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmp := f.Name()
	if _, err := f.WriteString(value + "\n"); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp, s.Path(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Remove deletes the value stored under key. Removing a missing key is not
// an error.
func (s *Store) Remove(key string) error {
	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
