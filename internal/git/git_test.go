package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}
	run("init", "-q")
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{
		"tracked.txt":    "a",
		"sub/nested.txt": "b",
		"untracked.txt":  "c",
		".gitignore":     "*.secret\n",
		"ignored.secret": "d",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	run("add", "tracked.txt", "sub/nested.txt", ".gitignore")
	run("commit", "-q", "-m", "init")
	return dir
}

func TestCheckTracked(t *testing.T) {
	dir := initRepo(t)

	status, err := CheckTracked([]string{
		filepath.Join(dir, "tracked.txt"),
		filepath.Join(dir, "untracked.txt"),
	})
	if err != nil {
		t.Fatalf("CheckTracked failed: %v", err)
	}
	if len(status.Tracked) != 1 || filepath.Base(status.Tracked[0]) != "tracked.txt" {
		t.Errorf("Expected only tracked.txt, got %v", status.Tracked)
	}

	status, err = CheckTracked([]string{filepath.Join(dir, "sub")})
	if err != nil {
		t.Fatalf("CheckTracked failed: %v", err)
	}
	if len(status.Tracked) != 1 || filepath.Base(status.Tracked[0]) != "nested.txt" {
		t.Errorf("Expected nested.txt under sub, got %v", status.Tracked)
	}

	out := FormatStatus(status)
	if !strings.Contains(out, "nested.txt") || !strings.Contains(out, "history") {
		t.Errorf("Unexpected formatted status: %q", out)
	}
}

func TestCheckTrackedOutsideRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	f := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(f, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	status, err := CheckTracked([]string{f})
	if err != nil {
		t.Fatalf("CheckTracked failed: %v", err)
	}
	if len(status.Tracked) != 0 || status.Checked != 1 {
		t.Errorf("Unexpected status outside repo: %+v", status)
	}
	if FormatStatus(status) != "" {
		t.Error("Nothing should be reported outside a repository")
	}
}

func TestCheckIgnored(t *testing.T) {
	dir := initRepo(t)

	status := CheckIgnored([]string{
		filepath.Join(dir, "ignored.secret"),
		filepath.Join(dir, "untracked.txt"),
	})
	if len(status.Unignored) != 1 || filepath.Base(status.Unignored[0]) != "untracked.txt" {
		t.Errorf("Expected untracked.txt to be reported, got %v", status.Unignored)
	}
	if !strings.Contains(FormatStatus(status), ".gitignore") {
		t.Error("Formatted status should mention .gitignore")
	}
}
