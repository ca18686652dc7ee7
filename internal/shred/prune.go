package shred

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
)

// CleanEmptyDirectories removes empty directories under root, deepest first,
// and finally root itself if it ended up empty. It returns how many
// directories were removed. A root that is not a directory is a no-op.
func CleanEmptyDirectories(root string, recursive bool) (int, error) {
	return defaultShredder.CleanEmptyDirectories(root, recursive)
}

func (s *Shredder) CleanEmptyDirectories(root string, recursive bool) (int, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return 0, nil
	}

	removed := 0
	if recursive {
		var dirs []string
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// unreadable entries are skipped, not fatal
				return nil
			}
			if d.IsDir() && path != root {
				dirs = append(dirs, path)
			}
			return nil
		})

		sort.SliceStable(dirs, func(i, j int) bool {
			return depth(dirs[i]) > depth(dirs[j])
		})

		for _, dir := range dirs {
			ok, err := s.removeIfEmpty(dir)
			if err != nil {
				return removed, err
			}
			if ok {
				removed++
			}
		}
	}

	ok, err := s.removeIfEmpty(root)
	if err != nil {
		return removed, err
	}
	if ok {
		removed++
	}
	return removed, nil
}

func (s *Shredder) removeIfEmpty(dir string) (bool, error) {
	if !isEmptyDir(dir) {
		return false, nil
	}
	if err := os.Remove(dir); err != nil {
		if errors.Is(err, syscall.ENOTEMPTY) || errors.Is(err, syscall.EEXIST) || errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	s.emit(Event{Type: EventDirRemoved, Path: dir})
	return true, nil
}

// isEmptyDir treats a directory that cannot be read as not empty
func isEmptyDir(dir string) bool {
	f, err := os.Open(dir)
	if err != nil {
		return false
	}
	defer f.Close()
	_, err = f.Readdirnames(1)
	return errors.Is(err, io.EOF)
}

func depth(path string) int {
	return strings.Count(filepath.Clean(path), string(filepath.Separator))
}
