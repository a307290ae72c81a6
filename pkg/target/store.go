package target

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const storeExt = ".yaml"

// Store keeps named target sets as YAML files under one directory, so a
// set authored in one inspect session can seed the next.
type Store struct {
	dir string
}

// DefaultStoreDir is ~/.dompick/targets, falling back to a relative path
// when the home directory cannot be resolved.
func DefaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".dompick", "targets")
	}
	return filepath.Join(home, ".dompick", "targets")
}

// NewStore returns a store rooted at dir. The directory is created on the
// first save, not here.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// List returns the stored set names, sorted. A store directory that does
// not exist yet is an empty store, not an error.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), storeExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), storeExt))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads the named set.
func (s *Store) Load(name string) (*Set, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return FromFile(path)
}

// Save writes the named set atomically: the YAML lands in a temp file in
// the store directory first and is renamed into place, so a crash mid-save
// never leaves a half-written set behind.
func (s *Store) Save(name string, set *Set) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	data, err := set.marshal(storeExt)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("install target set: %w", err)
	}
	return nil
}

// Delete removes the named set.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove target set: %w", err)
	}
	return nil
}

// path validates the name and resolves it inside the store directory.
// Names are plain identifiers, never paths.
func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid set name %q", name)
	}
	return filepath.Join(s.dir, name+storeExt), nil
}
