package core

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/illarion/cryptshred/internal/crypto"
)

// Mode selects encryption or decryption
type Mode int

const (
	ModeEncrypt Mode = iota
	ModeDecrypt
)

func (m Mode) String() string {
	if m == ModeDecrypt {
		return "decrypt"
	}
	return "encrypt"
}

// DecryptedExt is appended when decrypting a file whose name lacks .enc
const DecryptedExt = ".dec"

// OutputName maps a file name for mode. Encryption appends .enc; decryption
// strips it, or appends .dec when the name carries no .enc suffix so the
// input is never overwritten.
func OutputName(name string, mode Mode) string {
	if mode == ModeEncrypt {
		return name + crypto.EncryptedExt
	}
	if crypto.HasEncryptedExt(name) {
		return strings.TrimSuffix(name, crypto.EncryptedExt)
	}
	return name + DecryptedExt
}

// OutputPath returns the destination for a single input file.
// With no output, the result sits next to the input. An existing directory
// output receives the mapped file name; any other output is used verbatim.
func OutputPath(input, output string, mode Mode) string {
	if output == "" {
		return filepath.Join(filepath.Dir(input), OutputName(filepath.Base(input), mode))
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, OutputName(filepath.Base(input), mode))
	}
	return output
}

// RelativeOutputPath maps file, found under base, to its relative location
// below the output directory: the same relative directory, mapped name.
func RelativeOutputPath(file, base string, mode Mode) (string, error) {
	rel, err := filepath.Rel(base, file)
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(rel), OutputName(filepath.Base(rel), mode)), nil
}
