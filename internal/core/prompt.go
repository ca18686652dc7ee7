package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// OverwriteAction is the answer to an existing-output prompt
type OverwriteAction int

const (
	OverwriteNo  OverwriteAction = iota // Skip this file
	OverwriteYes                        // Overwrite this file only
	OverwriteAll                        // Overwrite this and all later files
)

func (a OverwriteAction) String() string {
	switch a {
	case OverwriteYes:
		return "yes"
	case OverwriteAll:
		return "all"
	default:
		return "no"
	}
}

// Prompter asks the user to confirm destructive steps
type Prompter interface {
	ConfirmSecureDelete(path string, isDir, cleanFolders bool) (bool, error)
	ConfirmOverwrite(path string) (OverwriteAction, error)
}

// StaticPrompter answers every prompt the same way.
// It backs --yes and non-interactive runs.
type StaticPrompter struct {
	SecureDelete bool
	Overwrite    OverwriteAction
}

func (s StaticPrompter) ConfirmSecureDelete(string, bool, bool) (bool, error) {
	return s.SecureDelete, nil
}

func (s StaticPrompter) ConfirmOverwrite(string) (OverwriteAction, error) {
	return s.Overwrite, nil
}

// TerminalPrompter asks on the terminal using single-key answers
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer
}

// NewTerminalPrompter prompts on stdin and stderr
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

// ConfirmSecureDelete warns that originals will be destroyed; the default is no
func (p *TerminalPrompter) ConfirmSecureDelete(path string, isDir, cleanFolders bool) (bool, error) {
	descriptor := "file"
	if isDir {
		descriptor = "all files in directory"
	}
	fmt.Fprintf(p.Out, "WARNING: You are about to SECURELY DELETE the original %s after processing.\n", descriptor)
	fmt.Fprintln(p.Out, "This operation CANNOT be undone!")
	if cleanFolders {
		fmt.Fprintln(p.Out, "Empty folders will also be deleted after processing.")
	}
	fmt.Fprintf(p.Out, "Path: %s\n", path)

	for {
		fmt.Fprint(p.Out, "Are you sure you want to proceed? [y/N]: ")
		choice, err := p.readChoice()
		if err != nil {
			return false, err
		}
		switch choice {
		case "y":
			return true, nil
		case "n", "", "\r", "\n":
			return false, nil
		default:
			fmt.Fprintln(p.Out, "Please enter y or n")
		}
	}
}

// ConfirmOverwrite asks what to do with an existing output file
func (p *TerminalPrompter) ConfirmOverwrite(path string) (OverwriteAction, error) {
	fmt.Fprintf(p.Out, "File '%s' already exists.\n", path)
	for {
		fmt.Fprint(p.Out, "  [y] Yes (this file)  [n] No (skip file)  [a] All (all files)\nChoice: ")
		choice, err := p.readChoice()
		if err != nil {
			return OverwriteNo, err
		}
		switch choice {
		case "y":
			return OverwriteYes, nil
		case "n":
			return OverwriteNo, nil
		case "a":
			return OverwriteAll, nil
		default:
			fmt.Fprintln(p.Out, "Invalid choice. Please enter y, n, a")
		}
	}
}

// readChoice reads a single character choice from the terminal
func (p *TerminalPrompter) readChoice() (string, error) {
	in := p.In
	if in == nil {
		in = os.Stdin
	}

	// Try to use raw mode for single-key input
	oldState, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		// Fallback to line input
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.ToLower(strings.TrimSpace(line)), nil
	}
	defer func() { _ = term.Restore(int(in.Fd()), oldState) }()

	buf := make([]byte, 1)
	if _, err := in.Read(buf); err != nil {
		return "", err
	}
	if buf[0] == 3 { // Ctrl-C in raw mode
		fmt.Fprint(p.Out, "\r\n")
		return "", ErrCancelled
	}

	choice := strings.ToLower(string(buf[0]))
	fmt.Fprintf(p.Out, "%s\r\n", strings.TrimSpace(choice)) // Echo the choice
	return choice, nil
}
