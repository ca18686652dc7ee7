package git

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Status contains git state for a set of paths
type Status struct {
	Checked   int
	Tracked   []string // Plaintext tracked by git (history keeps a copy)
	Unignored []string // Decrypted files git would pick up on the next add
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	err := cmd.Run()
	return err == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--error-unmatch", "--", path)
	cmd.Dir = workDir
	return cmd.Run() == nil
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir

	// git check-ignore returns exit code 0 if file is ignored
	return cmd.Run() == nil
}

// trackedUnder lists tracked files below dir as absolute paths
func trackedUnder(dir string) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "-z", "--full-name", "--", ".")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	top, err := topLevel(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, name := range bytes.Split(out, []byte{0}) {
		if len(name) == 0 {
			continue
		}
		files = append(files, filepath.Join(top, filepath.FromSlash(string(name))))
	}
	return files, nil
}

func topLevel(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// workDirOf returns the directory git should run in for path
func workDirOf(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return filepath.Dir(path), false
	}
	if info.IsDir() {
		return path, true
	}
	return filepath.Dir(path), false
}

// CheckTracked reports which of the given files, or files below the given
// directories, are tracked by git. Paths outside any repository are ignored.
func CheckTracked(paths []string) (*Status, error) {
	status := &Status{}
	repos := make(map[string]bool)

	for _, p := range paths {
		workDir, isDir := workDirOf(p)
		inRepo, seen := repos[workDir]
		if !seen {
			inRepo = IsGitRepo(workDir)
			repos[workDir] = inRepo
		}
		status.Checked++
		if !inRepo {
			continue
		}

		if isDir {
			files, err := trackedUnder(workDir)
			if err != nil {
				return status, err
			}
			status.Tracked = append(status.Tracked, files...)
			continue
		}
		if IsTracked(workDir, filepath.Base(p)) {
			status.Tracked = append(status.Tracked, p)
		}
	}
	return status, nil
}

// CheckIgnored reports which of the given files sit in a repository
// without being ignored
func CheckIgnored(paths []string) *Status {
	status := &Status{}
	for _, p := range paths {
		status.Checked++
		workDir := filepath.Dir(p)
		if !IsGitRepo(workDir) {
			continue
		}
		base := filepath.Base(p)
		if !IsIgnored(workDir, base) && !IsTracked(workDir, base) {
			status.Unignored = append(status.Unignored, p)
		}
	}
	return status
}

// FormatStatus formats git status for display
func FormatStatus(status *Status) string {
	if status == nil || (len(status.Tracked) == 0 && len(status.Unignored) == 0) {
		return ""
	}

	var result strings.Builder
	if len(status.Tracked) > 0 {
		result.WriteString(fmt.Sprintf("warning: %d file(s) are tracked by git; shredding does not remove them from history:\n", len(status.Tracked)))
		for _, file := range status.Tracked {
			result.WriteString(fmt.Sprintf("   - %s\n", file))
		}
	}
	if len(status.Unignored) > 0 {
		result.WriteString(fmt.Sprintf("warning: %d decrypted file(s) are not in .gitignore:\n", len(status.Unignored)))
		for _, file := range status.Unignored {
			result.WriteString(fmt.Sprintf("   - %s (add to .gitignore)\n", file))
		}
	}
	return result.String()
}
