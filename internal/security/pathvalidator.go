package security

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrPathEscapes  = errors.New("path escapes output directory")
	ErrAbsolutePath = errors.New("absolute paths are not allowed")
	ErrEmptyPath    = errors.New("empty path not allowed")
)

// PathValidator confines mapped output paths to a single output directory.
// Directory creation and existence checks go through os.Root, so a symlink
// inside the output tree cannot redirect them elsewhere.
type PathValidator struct {
	root *os.Root
	dir  string
}

// New opens a validator rooted at dir, which must already exist
func New(dir string) (*PathValidator, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open output root: %w", err)
	}

	return &PathValidator{
		root: root,
		dir:  absPath,
	}, nil
}

// Close releases the root handle
func (pv *PathValidator) Close() error {
	if pv.root != nil {
		return pv.root.Close()
	}
	return nil
}

// Dir returns the absolute output directory
func (pv *PathValidator) Dir() string {
	return pv.dir
}

// Normalize validates a path relative to the output directory and returns
// its cleaned form. Empty, absolute and escaping paths are rejected.
func (pv *PathValidator) Normalize(rel string) (string, error) {
	if rel == "" {
		return "", ErrEmptyPath
	}

	if !filepath.IsLocal(rel) {
		if filepath.IsAbs(rel) {
			return "", fmt.Errorf("%w: %s", ErrAbsolutePath, rel)
		}
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, rel)
	}

	clean := filepath.Clean(rel)
	joined, err := filepath.Rel(pv.dir, filepath.Join(pv.dir, clean))
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}
	if joined == ".." || strings.HasPrefix(joined, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, rel)
	}
	return joined, nil
}

// Resolve validates rel and returns the absolute path inside the output directory
func (pv *PathValidator) Resolve(rel string) (string, error) {
	clean, err := pv.Normalize(rel)
	if err != nil {
		return "", err
	}
	return filepath.Join(pv.dir, clean), nil
}

// EnsureParent creates the parent directories of rel inside the root
func (pv *PathValidator) EnsureParent(rel string, perm os.FileMode) error {
	clean, err := pv.Normalize(rel)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	parent := filepath.Dir(clean)
	if parent == "." {
		return nil
	}
	return pv.root.MkdirAll(parent, perm)
}

// Lookup returns the entry at rel without following a final symlink,
// or nil when nothing is there.
func (pv *PathValidator) Lookup(rel string) (fs.FileInfo, error) {
	clean, err := pv.Normalize(rel)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	info, err := pv.root.Lstat(clean)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return info, err
}

// Create opens rel for writing inside the root, truncating it.
// Symlinks that lead out of the output directory are refused.
func (pv *PathValidator) Create(rel string, perm os.FileMode) (*os.File, error) {
	clean, err := pv.Normalize(rel)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	return pv.root.OpenFile(clean, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
}

// Remove deletes rel inside the root
func (pv *PathValidator) Remove(rel string) error {
	clean, err := pv.Normalize(rel)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	return pv.root.Remove(clean)
}
