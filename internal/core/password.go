package core

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/illarion/cryptshred/internal/crypto"
	"github.com/illarion/cryptshred/internal/keyring"
	"golang.org/x/term"
)

// EnvPasswordVar is read by EnvPassword
const EnvPasswordVar = "CRYPTSHRED_PASSWORD"

var (
	ErrNoPassword       = errors.New("no password available")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyPassword    = errors.New("password must not be empty")
)

// PasswordSource yields a password owned by the caller, who must clear it
type PasswordSource interface {
	Password() ([]byte, error)
}

// WithPassword acquires a password from src, runs fn with it and clears it
// on every exit path. fn must not retain the slice.
func WithPassword(src PasswordSource, fn func(password []byte) error) error {
	password, err := src.Password()
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)
	return fn(password)
}

// StaticPassword returns a copy of a fixed password
type StaticPassword []byte

func (p StaticPassword) Password() ([]byte, error) {
	if len(p) == 0 {
		return nil, ErrNoPassword
	}
	return append([]byte(nil), p...), nil
}

// EnvPassword reads the password from an environment variable
type EnvPassword struct {
	Var string // defaults to CRYPTSHRED_PASSWORD
}

func (e EnvPassword) Password() ([]byte, error) {
	name := e.Var
	if name == "" {
		name = EnvPasswordVar
	}
	password := os.Getenv(name)
	if password == "" {
		return nil, ErrNoPassword
	}
	// Return a copy to avoid issues when clearing the bytes
	result := make([]byte, len(password))
	copy(result, password)
	return result, nil
}

// KeyringPassword reads the password stored for an account in the OS keyring
type KeyringPassword struct {
	Account string
}

func (k KeyringPassword) Password() ([]byte, error) {
	password, err := keyring.GetPassword(k.Account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNoPassword
		}
		return nil, fmt.Errorf("failed to read keyring: %w", err)
	}
	return password, nil
}

// TerminalPassword prompts on the controlling terminal without echo
type TerminalPassword struct {
	Prompt  string
	Confirm bool // ask twice, as when choosing an encryption password
}

func (t TerminalPassword) Password() ([]byte, error) {
	prompt := t.Prompt
	if prompt == "" {
		prompt = "Enter password: "
	}
	if !t.Confirm {
		return ReadPassword(prompt)
	}
	return ReadPasswordConfirm(prompt)
}

// ChainPassword tries each source in order and returns the first password.
// Sources reporting ErrNoPassword are skipped; any other error stops the chain.
type ChainPassword []PasswordSource

func (c ChainPassword) Password() ([]byte, error) {
	for _, src := range c {
		password, err := src.Password()
		if err == nil {
			return password, nil
		}
		if !errors.Is(err, ErrNoPassword) {
			return nil, err
		}
	}
	return nil, ErrNoPassword
}

// ReadPassword reads a password from the terminal without echoing
func ReadPassword(prompt string) ([]byte, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return nil, ErrNoPassword
	}

	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // New line after password

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}
	return password, nil
}

// ReadPasswordConfirm reads a password twice and ensures they match
func ReadPasswordConfirm(prompt string) ([]byte, error) {
	password1, err := ReadPassword(prompt)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password1)

	password2, err := ReadPassword("Confirm password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password2)

	if !crypto.ConstantTimeCompare(password1, password2) {
		return nil, ErrPasswordMismatch
	}

	// Return a copy of the password
	result := make([]byte, len(password1))
	copy(result, password1)
	return result, nil
}
