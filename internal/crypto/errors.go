package crypto

import (
	"errors"
	"fmt"
)

var (
	ErrKeyDerivation      = errors.New("failed to derive encryption key")
	ErrEncryption         = errors.New("failed to encrypt data")
	ErrDecryption         = errors.New("decryption failed")
	ErrInvalidFormat      = errors.New("invalid file format")
	ErrUnsupportedVersion = errors.New("unsupported version")
)

// Stages of file processing reported in FileError
const (
	StageReadSource   = "read source"
	StageCreateDest   = "create destination"
	StageWriteHeader  = "write header"
	StageWritePayload = "write payload"
	StageOpenSource   = "open source"
	StageReadHeader   = "read header"
	StageReadPayload  = "read payload"
	StageWriteDest    = "write destination"
)

// FileError reports an I/O failure at a named stage of encryption or decryption
type FileError struct {
	Op    string // "encrypt" or "decrypt"
	Stage string // one of the Stage constants
	Path  string
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Stage, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// DecryptionError is returned when authenticated decryption fails.
// The message deliberately does not say whether the password, the tag or
// the ciphertext was at fault.
type DecryptionError struct {
	Err error
}

func (e *DecryptionError) Error() string {
	return ErrDecryption.Error()
}

func (e *DecryptionError) Unwrap() error {
	return e.Err
}

func (e *DecryptionError) Is(target error) bool {
	return target == ErrDecryption
}

// UnsupportedVersionError carries the header version that was rejected
type UnsupportedVersionError struct {
	Version uint8
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUnsupportedVersion, e.Version)
}

func (e *UnsupportedVersionError) Is(target error) bool {
	return target == ErrUnsupportedVersion
}

// IsDecryptionError reports whether err is a failed authentication or decryption
func IsDecryptionError(err error) bool {
	var de *DecryptionError
	return errors.As(err, &de)
}
