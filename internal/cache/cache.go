// Package cache persists the last accepted launcher path between runs.
//
// The record is a plain text file holding nothing but the path. It is written
// without a trailing newline and read back unmodified.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the name of the cache file in its default location.
const FileName = "saved_php_path.txt"

// EnvFile overrides the cache location.
const EnvFile = "PHPFIND_CACHE_FILE"

// ErrNoCachedPath is returned by Load when there is no readable record.
var ErrNoCachedPath = errors.New("no cached path")

// Error describes a failed cache operation.
type Error struct {
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("cache %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// PathCache stores one launcher path in a file.
type PathCache struct {
	file string
}

// New returns a cache backed by file.
func New(file string) *PathCache {
	return &PathCache{file: file}
}

// File returns the backing file location.
func (c *PathCache) File() string {
	return c.file
}

// Load returns the full content of the cache file. A missing or unreadable
// file yields an error matching ErrNoCachedPath.
func (c *PathCache) Load() (string, error) {
	data, err := os.ReadFile(c.file)
	if err != nil {
		return "", &Error{Path: c.file, Message: "read", Cause: errors.Join(ErrNoCachedPath, err)}
	}
	return string(data), nil
}

// Save replaces the record with exactly the bytes of path.
func (c *PathCache) Save(path string) error {
	dir := filepath.Dir(c.file)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Error{Path: c.file, Message: "create directory", Cause: err}
	}

	tmpFile, err := os.CreateTemp(dir, ".phpfind-tmp-*")
	if err != nil {
		return &Error{Path: c.file, Message: "create temporary file", Cause: err}
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmpFile.WriteString(path); err != nil {
		tmpFile.Close()
		return &Error{Path: c.file, Message: "write", Cause: err}
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return &Error{Path: c.file, Message: "sync", Cause: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &Error{Path: c.file, Message: "close", Cause: err}
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return &Error{Path: c.file, Message: "chmod", Cause: err}
	}

	if err := os.Rename(tmpPath, c.file); err != nil {
		return &Error{Path: c.file, Message: "rename temporary file", Cause: err}
	}
	return nil
}

// Clear removes the record. Removing a missing record is not an error.
func (c *PathCache) Clear() error {
	if err := os.Remove(c.file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &Error{Path: c.file, Message: "remove", Cause: err}
	}
	return nil
}

// DefaultFile returns the cache location used when nothing is configured:
// $PHPFIND_CACHE_FILE if set, otherwise FileName beside the running
// executable.
func DefaultFile() (string, error) {
	if file := os.Getenv(EnvFile); file != "" {
		return file, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), FileName), nil
}
