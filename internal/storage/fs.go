package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FS implements Provider backed by a local uploads directory.
type FS struct {
	root string // absolute path to uploads directory
}

// NewFS creates a new FS provider rooted at the given directory, creating it
// if necessary.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &FS{root: abs}, nil
}

// safeName validates that name is a plain file name (no path separators, no
// traversal) and returns the absolute path under the uploads root.
func (f *FS) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("storage: file name is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("storage: invalid file name: %s", name)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes uploads root: %s", name)
	}
	return abs, nil
}

// Save writes content atomically (tmp file → fsync → rename) under a
// timestamped unique name and returns that name.
func (f *FS) Save(fileName string, content []byte) (string, error) {
	stored := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), filepath.Base(fileName))
	abs, err := f.safeName(stored)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(f.root, ".veritext-tmp-*")
	if err != nil {
		return "", fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return "", fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return "", fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return stored, nil
}

// Read returns the raw bytes of a stored file.
func (f *FS) Read(storedName string) ([]byte, error) {
	abs, err := f.safeName(storedName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", storedName, err)
	}
	return data, nil
}

// Delete removes a stored file.
func (f *FS) Delete(storedName string) error {
	abs, err := f.safeName(storedName)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", storedName, err)
	}
	return nil
}
