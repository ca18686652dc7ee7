package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// EncryptedExt is appended to encrypted output names
const EncryptedExt = ".enc"

const fileMode = 0600

// Engine encrypts and decrypts whole files.
// The zero value uses DefaultIterations and crypto/rand.
type Engine struct {
	// Iterations is the PBKDF2 cost. It is not stored in the header, so
	// files must be decrypted with the same value they were encrypted with.
	Iterations int
	Rand       io.Reader
}

// New returns an engine with the default key derivation cost
func New() *Engine {
	return &Engine{
		Iterations: DefaultIterations,
		Rand:       rand.Reader,
	}
}

var defaultEngine = New()

// EncryptFile encrypts in to out using the default engine
func EncryptFile(in, out string, password []byte) error {
	return defaultEngine.EncryptFile(in, out, password)
}

// DecryptFile decrypts in to out using the default engine
func DecryptFile(in, out string, password []byte) error {
	return defaultEngine.DecryptFile(in, out, password)
}

func (e *Engine) iterations() int {
	if e.Iterations <= 0 {
		return DefaultIterations
	}
	return e.Iterations
}

func (e *Engine) random() io.Reader {
	if e.Rand == nil {
		return rand.Reader
	}
	return e.Rand
}

// Destination creates and removes output files. Writing through it lets a
// caller confine outputs, as security.PathValidator does with os.Root.
type Destination interface {
	Create(name string, perm os.FileMode) (*os.File, error)
	Remove(name string) error
}

// OSDestination writes output files directly to the filesystem
type OSDestination struct{}

func (OSDestination) Create(name string, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
}

func (OSDestination) Remove(name string) error {
	return os.Remove(name)
}

// EncryptFile reads in, encrypts it under a key derived from password and a
// fresh salt, and writes the framed result to out.
// The password is borrowed; the caller remains responsible for clearing it.
func (e *Engine) EncryptFile(in, out string, password []byte) error {
	return e.EncryptTo(OSDestination{}, in, out, password)
}

// EncryptTo is EncryptFile with out created through dst.
// The destination is only created once encryption has succeeded.
func (e *Engine) EncryptTo(dst Destination, in, out string, password []byte) error {
	plaintext, err := os.ReadFile(in)
	if err != nil {
		return &FileError{Op: "encrypt", Stage: StageReadSource, Path: in, Err: err}
	}
	defer ClearBytes(plaintext)

	header, err := NewFileHeader(e.random())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	key, err := DeriveKey(password, header.Salt, e.iterations())
	if err != nil {
		return err
	}
	defer ClearBytes(key)

	ciphertext, err := seal(key, header.Nonce, plaintext)
	if err != nil {
		return err
	}

	f, err := dst.Create(out, fileMode)
	if err != nil {
		return &FileError{Op: "encrypt", Stage: StageCreateDest, Path: out, Err: err}
	}

	if err := WriteHeader(f, header); err != nil {
		discard(dst, f, out)
		return &FileError{Op: "encrypt", Stage: StageWriteHeader, Path: out, Err: err}
	}
	if _, err := f.Write(ciphertext); err != nil {
		discard(dst, f, out)
		return &FileError{Op: "encrypt", Stage: StageWritePayload, Path: out, Err: err}
	}
	if err := f.Close(); err != nil {
		dst.Remove(out)
		return &FileError{Op: "encrypt", Stage: StageWritePayload, Path: out, Err: err}
	}
	return nil
}

// DecryptFile verifies and decrypts in, writing the plaintext to out.
// Nothing is written when authentication fails.
func (e *Engine) DecryptFile(in, out string, password []byte) error {
	return e.DecryptTo(OSDestination{}, in, out, password)
}

// DecryptTo is DecryptFile with out created through dst
func (e *Engine) DecryptTo(dst Destination, in, out string, password []byte) error {
	f, err := os.Open(in)
	if err != nil {
		return &FileError{Op: "decrypt", Stage: StageOpenSource, Path: in, Err: err}
	}
	defer f.Close()

	plaintext, err := e.decrypt(f, in, password)
	if err != nil {
		return err
	}
	defer ClearBytes(plaintext)

	if err := writeFile(dst, out, plaintext); err != nil {
		return &FileError{Op: "decrypt", Stage: StageWriteDest, Path: out, Err: err}
	}
	return nil
}

// DecryptReader decrypts a framed stream fully into memory.
// The caller must ClearBytes the returned plaintext.
func (e *Engine) DecryptReader(r io.Reader, password []byte) ([]byte, error) {
	return e.decrypt(r, "", password)
}

func (e *Engine) decrypt(r io.Reader, path string, password []byte) ([]byte, error) {
	header, err := ReadHeader(r)
	if err != nil {
		if errors.Is(err, ErrInvalidFormat) || errors.Is(err, ErrUnsupportedVersion) {
			return nil, err
		}
		return nil, &FileError{Op: "decrypt", Stage: StageReadHeader, Path: path, Err: err}
	}

	key, err := DeriveKey(password, header.Salt, e.iterations())
	if err != nil {
		return nil, err
	}
	defer ClearBytes(key)

	ciphertext, err := io.ReadAll(r)
	if err != nil {
		return nil, &FileError{Op: "decrypt", Stage: StageReadPayload, Path: path, Err: err}
	}

	return open(key, header.Nonce, ciphertext)
}

func writeFile(dst Destination, name string, data []byte) error {
	f, err := dst.Create(name, fileMode)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		discard(dst, f, name)
		return err
	}
	if err := f.Close(); err != nil {
		dst.Remove(name)
		return err
	}
	return nil
}

// discard closes and removes a partially written destination
func discard(dst Destination, f *os.File, name string) {
	f.Close()
	dst.Remove(name)
}

// HasEncryptedExt reports whether the path ends in EncryptedExt
func HasEncryptedExt(path string) bool {
	return strings.HasSuffix(path, EncryptedExt) && len(filepath.Base(path)) > len(EncryptedExt)
}

// Detector decides whether a file on disk looks like our encrypted format
type Detector struct {
	// RequireExtension additionally requires the .enc suffix
	RequireExtension bool
}

// IsEncrypted reports whether path is a regular file with a valid version 1 header
func IsEncrypted(path string) bool {
	var d Detector
	return d.IsEncrypted(path)
}

// IsEncrypted never fails; any error reading or parsing the file means false.
func (d *Detector) IsEncrypted(path string) bool {
	if d.RequireExtension && !HasEncryptedExt(path) {
		return false
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	data, err := readHeaderBytes(f, MinHeaderLen, MaxHeaderLen)
	if err != nil {
		return false
	}
	// a real file carries at least the authentication tag after the header
	if info.Size() < int64(lengthPrefixSize+len(data)+TagSize) {
		return false
	}
	_, err = DecodeHeader(data)
	return err == nil
}
