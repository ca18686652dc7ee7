package security

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func newValidator(t *testing.T) (*PathValidator, string) {
	t.Helper()
	dir := t.TempDir()
	pv, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	t.Cleanup(func() { pv.Close() })
	return pv, dir
}

func TestPathValidator_Normalize(t *testing.T) {
	pv, _ := newValidator(t)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"simple file", "a.txt.enc", "a.txt.enc", nil},
		{"nested", "sub/dir/a.txt.enc", filepath.Join("sub", "dir", "a.txt.enc"), nil},
		{"dot slash", "./a.txt", "a.txt", nil},
		{"dot segments", "a/./b/../c.txt", filepath.Join("a", "c.txt"), nil},
		{"parent", "../a.txt", "", ErrPathEscapes},
		{"nested parent", "a/../../b.txt", "", ErrPathEscapes},
		{"absolute", "/etc/passwd", "", ErrAbsolutePath},
		{"empty", "", "", ErrEmptyPath},
	}
	if runtime.GOOS == "windows" {
		tests[6].input = `C:\Windows\win.ini`
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pv.Normalize(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Normalize(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPathValidator_Resolve(t *testing.T) {
	pv, dir := newValidator(t)
	abs, _ := filepath.Abs(dir)

	got, err := pv.Resolve("x/y.enc")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if want := filepath.Join(abs, "x", "y.enc"); got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
	if pv.Dir() != abs {
		t.Errorf("Dir = %q, want %q", pv.Dir(), abs)
	}
	if _, err := pv.Resolve("../../escape"); !errors.Is(err, ErrPathEscapes) {
		t.Errorf("Expected ErrPathEscapes, got %v", err)
	}
}

func TestPathValidator_EnsureParent(t *testing.T) {
	pv, dir := newValidator(t)

	if err := pv.EnsureParent("a/b/c/file.enc", 0755); err != nil {
		t.Fatalf("EnsureParent failed: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "a", "b", "c"))
	if err != nil || !info.IsDir() {
		t.Errorf("Parent directories should exist: %v", err)
	}

	if err := pv.EnsureParent("top.enc", 0755); err != nil {
		t.Errorf("File at root needs no parent: %v", err)
	}
	if err := pv.EnsureParent("../outside/file.enc", 0755); err == nil {
		t.Error("Expected error for escaping path")
	}
}

func TestPathValidator_Lookup(t *testing.T) {
	pv, dir := newValidator(t)
	if err := os.WriteFile(filepath.Join(dir, "here.enc"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	info, err := pv.Lookup("here.enc")
	if err != nil || info == nil || !info.Mode().IsRegular() {
		t.Errorf("Lookup(here.enc) = %v, %v", info, err)
	}
	info, err = pv.Lookup("missing.enc")
	if err != nil || info != nil {
		t.Errorf("Lookup(missing.enc) = %v, %v", info, err)
	}
	if _, err := pv.Lookup("../escape.enc"); err == nil {
		t.Error("Expected error for escaping path")
	}
}

func TestPathValidator_CreateRemove(t *testing.T) {
	pv, dir := newValidator(t)

	f, err := pv.Create("new.enc", 0600)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := f.Write([]byte("data")); err != nil {
		t.Fatal(err)
	}
	f.Close()

	data, err := os.ReadFile(filepath.Join(dir, "new.enc"))
	if err != nil || string(data) != "data" {
		t.Fatalf("ReadFile = %q, %v", data, err)
	}

	if err := pv.Remove("new.enc"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "new.enc")); !os.IsNotExist(err) {
		t.Error("File should be removed")
	}
	if _, err := pv.Create("/abs.enc", 0600); !errors.Is(err, ErrAbsolutePath) {
		t.Errorf("Expected ErrAbsolutePath, got %v", err)
	}
}

func TestPathValidator_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	pv, dir := newValidator(t)
	outside := t.TempDir()

	if err := os.Symlink(outside, filepath.Join(dir, "link")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	// lexically fine, but the root refuses to follow the link out
	if err := pv.EnsureParent("link/sub/file.enc", 0755); err == nil {
		t.Error("Expected os.Root to refuse creating directories through an escaping symlink")
	}
	if _, err := os.Stat(filepath.Join(outside, "sub")); !os.IsNotExist(err) {
		t.Error("No directory should be created outside the root")
	}
}

func TestPathValidator_CreateThroughEscapingSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	pv, dir := newValidator(t)
	victim := filepath.Join(t.TempDir(), "victim.txt")
	if err := os.WriteFile(victim, []byte("keep me"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(victim, filepath.Join(dir, "a.txt.enc")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	if f, err := pv.Create("a.txt.enc", 0600); err == nil {
		f.Close()
		t.Fatal("Expected os.Root to refuse writing through an escaping symlink")
	}
	data, _ := os.ReadFile(victim)
	if string(data) != "keep me" {
		t.Errorf("File outside the root was modified: %q", data)
	}
}
