package core

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/illarion/cryptshred/internal/crypto"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	BinarySampleSize   = 8192 // Bytes to sample for text/binary detection
	BinaryThresholdPct = 10   // Max % non-printable chars for text files
)

// DetectFileType determines if a file is likely text or binary.
// Returns true if the file appears to be text.
//
// Detection heuristic (in order):
//  1. Null bytes present → binary (executables, images, etc.)
//  2. Invalid UTF-8 → binary
//  3. >10% non-printable control chars → binary
func DetectFileType(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	if bytes.IndexByte(data, 0) != -1 {
		return false
	}

	sample := data
	if len(sample) > BinarySampleSize {
		sample = sample[:BinarySampleSize]
		// the cut may land inside a multibyte rune
		for i := len(sample) - 1; i >= 0 && i >= len(sample)-utf8.UTFMax; i-- {
			if utf8.RuneStart(sample[i]) {
				if !utf8.FullRune(sample[i:]) {
					sample = sample[:i]
				}
				break
			}
		}
	}
	if !utf8.Valid(sample) {
		return false
	}

	nonPrintable := 0
	for _, b := range sample {
		// Allow common whitespace: tab, newline, carriage return
		if (b < 32 && b != 9 && b != 10 && b != 13) || b == 127 {
			nonPrintable++
		}
	}
	return nonPrintable <= len(sample)*BinaryThresholdPct/100
}

// sameContent compares contents by SHA-256 digest
func sameContent(a, b []byte) bool {
	ha := sha256.Sum256(a)
	hb := sha256.Sum256(b)
	return ha == hb
}

// GenerateUnifiedDiff renders a line diff from the decrypted content (old)
// to the plaintext file (new). It returns "" when both are identical.
func GenerateUnifiedDiff(oldName, newName string, oldData, newData []byte) string {
	if sameContent(oldData, newData) {
		return ""
	}
	if !DetectFileType(oldData) || !DetectFileType(newData) {
		return fmt.Sprintf("Binary file %s differs from %s\n", oldName, newName)
	}

	dmp := diffmatchpatch.New()

	// Line-mode diff for better output
	oldStr, newStr := string(oldData), string(newData)
	a, b, lineArray := dmp.DiffLinesToChars(oldStr, newStr)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	patches := dmp.PatchMake(oldStr, diffs)
	if len(patches) == 0 {
		return ""
	}

	var result strings.Builder
	fmt.Fprintf(&result, "--- %s\n", oldName)
	fmt.Fprintf(&result, "+++ %s\n", newName)
	result.WriteString(dmp.PatchToText(patches))
	return result.String()
}

// Diff decrypts encPath in memory and diffs it against plainPath.
// Neither file is modified and no plaintext touches the disk.
func Diff(engine *crypto.Engine, encPath, plainPath string, password []byte) (string, error) {
	f, err := os.Open(encPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", encPath, err)
	}
	defer f.Close()

	decrypted, err := engine.DecryptReader(f, password)
	if err != nil {
		return "", err
	}
	defer crypto.ClearBytes(decrypted)

	local, err := os.ReadFile(plainPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", plainPath, err)
	}
	defer crypto.ClearBytes(local)

	return GenerateUnifiedDiff(encPath, plainPath, decrypted, local), nil
}
