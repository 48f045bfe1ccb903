// Package local holds the filesystem primitives shared by the dedup store and the
// notification queue: directory checks, traversal-safe joins and atomic writes.
package local

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathTraversal is returned when a name resolves outside its base directory.
var ErrPathTraversal = errors.New("path traversal detected")

// EnsureDir creates dir when missing and verifies it is a writable directory.
func EnsureDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("directory is required")
	}

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
			return fmt.Errorf("failed to create directory: %w", mkErr)
		}
	case err != nil:
		return fmt.Errorf("failed to stat directory: %w", err)
	case !info.IsDir():
		return fmt.Errorf("%s is not a directory", dir)
	}

	probe, err := os.CreateTemp(dir, ".writable_test")
	if err != nil {
		return fmt.Errorf("directory is not writable: %w", err)
	}
	name := probe.Name()
	if err := probe.Close(); err != nil {
		return fmt.Errorf("failed to close probe file: %w", err)
	}
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("failed to clean up probe file: %w", err)
	}
	return nil
}

// Resolve joins name under baseDir and rejects names that escape it.
func Resolve(baseDir, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("path is required")
	}
	cleanBase := filepath.Clean(baseDir)
	full := filepath.Clean(filepath.Join(cleanBase, name))
	if !strings.HasPrefix(full, cleanBase+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return full, nil
}

// WriteFileAtomic writes data to a temporary file next to path, syncs it and renames it over
// path, so readers see either the old content or the new content and never a partial write.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
