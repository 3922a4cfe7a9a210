// Package security confines file access to the configured base directory.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrOutsideDirectory is returned for paths that escape the base directory
	ErrOutsideDirectory = errors.New("path is outside the configured directory")
	// ErrExtension is returned for files with an extension the caller does not accept
	ErrExtension = errors.New("unsupported file extension")
)

// PathValidator resolves user supplied paths against a base directory and
// rejects anything that leaves it, including through symlinks
type PathValidator struct {
	baseDirectory string
	realBase      string
}

// NewPathValidator creates a validator rooted at baseDirectory, which must exist
func NewPathValidator(baseDirectory string) (*PathValidator, error) {
	if baseDirectory == "" {
		return nil, fmt.Errorf("base directory cannot be empty")
	}

	abs, err := filepath.Abs(baseDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot access base directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base directory is not a directory: %s", abs)
	}

	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	return &PathValidator{baseDirectory: filepath.Clean(abs), realBase: filepath.Clean(real)}, nil
}

// BaseDirectory returns the absolute base directory
func (v *PathValidator) BaseDirectory() string {
	return v.baseDirectory
}

// Resolve returns the absolute form of path. Relative paths are taken from
// the base directory. Null bytes are stripped. The result, and its target
// when it is a symlink, must lie within the base directory.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.baseDirectory, path)
	}
	clean := filepath.Clean(path)

	if !v.within(clean) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}

	// A file that does not exist yet cannot be a symlink; the caller reports it missing
	if real, err := filepath.EvalSymlinks(clean); err == nil && !v.within(real) {
		return "", fmt.Errorf("%w: %s resolves to %s", ErrOutsideDirectory, path, real)
	}

	return clean, nil
}

// ValidatePath checks that path resolves inside the base directory
func (v *PathValidator) ValidatePath(path string) error {
	_, err := v.Resolve(path)
	return err
}

// ResolveFile resolves path and checks its extension against exts
// (case-insensitive, with the leading dot)
func (v *PathValidator) ResolveFile(path string, exts ...string) (string, error) {
	resolved, err := v.Resolve(path)
	if err != nil {
		return "", err
	}
	if len(exts) == 0 {
		return resolved, nil
	}

	ext := strings.ToLower(filepath.Ext(resolved))
	for _, allowed := range exts {
		if ext == strings.ToLower(allowed) {
			return resolved, nil
		}
	}
	return "", fmt.Errorf("%w %q (want one of: %s)", ErrExtension, ext, strings.Join(exts, ", "))
}

func (v *PathValidator) within(path string) bool {
	for _, base := range []string{v.baseDirectory, v.realBase} {
		if path == base {
			return true
		}
		prefix := base
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
