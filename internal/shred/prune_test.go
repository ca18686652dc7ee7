package shred

import (
	"os"
	"path/filepath"
	"testing"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCleanEmptyDirectoriesRecursive(t *testing.T) {
	root := filepath.Join(t.TempDir(), "root")
	mkdirs(t, root, "a/b/c", "d")

	var removed []string
	s := New()
	s.OnEvent = func(ev Event) {
		if ev.Type == EventDirRemoved {
			removed = append(removed, ev.Path)
		}
	}

	n, err := s.CleanEmptyDirectories(root, true)
	if err != nil {
		t.Fatalf("CleanEmptyDirectories failed: %v", err)
	}
	// a/b/c, a/b, a, d and root
	if n != 5 {
		t.Errorf("Expected 5 removed directories, got %d", n)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Error("Root should be removed once empty")
	}
	if len(removed) != 5 || removed[0] != filepath.Join(root, "a", "b", "c") {
		t.Errorf("Expected deepest directory first, got %v", removed)
	}
}

func TestCleanEmptyDirectoriesKeepsFiles(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "keep/empty", "gone")
	if err := os.WriteFile(filepath.Join(root, "keep", "file.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	n, err := CleanEmptyDirectories(root, true)
	if err != nil {
		t.Fatalf("CleanEmptyDirectories failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 removed directories, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(root, "keep", "file.txt")); err != nil {
		t.Error("Directory with a file must be kept")
	}
	if _, err := os.Stat(root); err != nil {
		t.Error("Non-empty root must be kept")
	}
}

func TestCleanEmptyDirectoriesNonRecursive(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "sub")

	n, err := CleanEmptyDirectories(root, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Non-recursive run should only consider the root, removed %d", n)
	}

	empty := filepath.Join(root, "sub")
	n, err = CleanEmptyDirectories(empty, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Expected empty root to be removed, got %d", n)
	}
}

func TestCleanEmptyDirectoriesNotADir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{file, filepath.Join(dir, "missing")} {
		n, err := CleanEmptyDirectories(p, true)
		if err != nil || n != 0 {
			t.Errorf("CleanEmptyDirectories(%s) = %d, %v; want 0, nil", p, n, err)
		}
	}
}
