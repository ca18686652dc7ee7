package shred

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPasses = errors.New("pass count must be at least 1")
	ErrOpen          = errors.New("failed to open file for secure deletion")
	ErrOverwrite     = errors.New("failed during overwrite pass")
	ErrDelete        = errors.New("failed to delete file after overwriting")
)

// Error describes a failed secure deletion. Kind is one of ErrOpen,
// ErrOverwrite or ErrDelete; Pass is set for overwrite failures.
type Error struct {
	Kind error
	Path string
	Pass int
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%v: %s", e.Kind, e.Path)
	if e.Pass > 0 {
		msg = fmt.Sprintf("%s (pass %d)", msg, e.Pass)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
