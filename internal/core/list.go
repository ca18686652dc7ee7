package core

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ListEncrypted returns the files under dir that the detector recognises,
// in lexical order. Unreadable entries are skipped.
func ListEncrypted(dir string, recursive bool, detector Detector) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	var found []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && detector.IsEncrypted(path) {
			found = append(found, path)
		}
		return nil
	})
	return found, err
}
