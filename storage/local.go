// Package storage keeps rendered prediction artifacts on local disk.
package storage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes artifacts under Dir. Keys become file names, so
// distinct keys never collide.
type LocalStore struct {
	Dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{Dir: dir}
}

// Save writes data as <Dir>/<key>.png and returns that path.
func (s *LocalStore) Save(key string, data []byte) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid artifact key %q", key)
	}
	if err := ensureDir(s.Dir); err != nil {
		return "", fmt.Errorf("failed to ensure artifact directory: %w", err)
	}

	location := filepath.ToSlash(filepath.Join(s.Dir, key+".png"))
	tmp := location + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, location); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return location, nil
}

// Remove deletes an artifact previously returned by Save.
func (s *LocalStore) Remove(location string) error {
	if err := os.Remove(location); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func ensureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Printf("Creating directory: %s", dir)
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
