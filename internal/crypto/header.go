package crypto

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

const (
	// HeaderVersion is the only header version this build reads and writes
	HeaderVersion = uint8(1)

	// MinHeaderLen and MaxHeaderLen bound the header length when sniffing files
	MinHeaderLen = 10
	MaxHeaderLen = 1024

	// maxHeaderLen bounds the allocation made from an untrusted length prefix
	maxHeaderLen = 64 * 1024

	lengthPrefixSize = 4
)

// FileHeader is the metadata stored in front of every encrypted file
type FileHeader struct {
	Version uint8
	Salt    []byte
	Nonce   []byte
}

// byteSeq encodes as a JSON array of integers rather than base64,
// matching the header layout produced by earlier releases.
type byteSeq []byte

func (b byteSeq) MarshalJSON() ([]byte, error) {
	out := make([]byte, 0, 2+len(b)*4)
	out = append(out, '[')
	for i, v := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(v), 10)
	}
	return append(out, ']'), nil
}

func (b *byteSeq) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	if ints == nil {
		return errors.New("byte sequence is null")
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("byte value %d out of range", v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// wireHeader is the JSON form. Pointers detect missing fields;
// unknown fields are ignored so later versions can extend the header.
type wireHeader struct {
	Version *uint8   `json:"version"`
	Salt    *byteSeq `json:"salt"`
	Nonce   *byteSeq `json:"nonce"`
}

// NewFileHeader creates a version 1 header with a fresh salt and nonce from r
func NewFileHeader(r io.Reader) (*FileHeader, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(r, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(r, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return &FileHeader{
		Version: HeaderVersion,
		Salt:    salt,
		Nonce:   nonce,
	}, nil
}

// EncodeHeader serializes the header to its JSON form
func EncodeHeader(h *FileHeader) ([]byte, error) {
	version := h.Version
	salt := byteSeq(h.Salt)
	nonce := byteSeq(h.Nonce)
	return json.Marshal(wireHeader{
		Version: &version,
		Salt:    &salt,
		Nonce:   &nonce,
	})
}

// DecodeHeader parses a serialized header.
// Malformed input yields ErrInvalidFormat; a well-formed header with another
// version yields an UnsupportedVersionError.
func DecodeHeader(data []byte) (*FileHeader, error) {
	var w wireHeader
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if w.Version == nil {
		return nil, fmt.Errorf("%w: header has no version", ErrInvalidFormat)
	}
	// later versions may drop or replace fields, so the version decides first
	if *w.Version != HeaderVersion {
		return nil, &UnsupportedVersionError{Version: *w.Version}
	}
	if w.Salt == nil || w.Nonce == nil {
		return nil, fmt.Errorf("%w: header is missing required fields", ErrInvalidFormat)
	}
	if len(*w.Salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrInvalidFormat, SaltSize, len(*w.Salt))
	}
	if len(*w.Nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrInvalidFormat, NonceSize, len(*w.Nonce))
	}
	return &FileHeader{
		Version: *w.Version,
		Salt:    []byte(*w.Salt),
		Nonce:   []byte(*w.Nonce),
	}, nil
}

// WriteHeader writes the little-endian length prefix followed by the header
func WriteHeader(w io.Writer, h *FileHeader) error {
	data, err := EncodeHeader(h)
	if err != nil {
		return fmt.Errorf("failed to serialize header: %w", err)
	}
	prefix := make([]byte, lengthPrefixSize)
	binary.LittleEndian.PutUint32(prefix, uint32(len(data)))
	if _, err := w.Write(prefix); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadHeader reads the length prefix and header from r.
// A short read or an implausible length is reported as ErrInvalidFormat.
func ReadHeader(r io.Reader) (*FileHeader, error) {
	data, err := readHeaderBytes(r, 1, maxHeaderLen)
	if err != nil {
		return nil, err
	}
	return DecodeHeader(data)
}

func readHeaderBytes(r io.Reader, minLen, maxLen int) ([]byte, error) {
	prefix := make([]byte, lengthPrefixSize)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, headerReadError(err)
	}
	n := binary.LittleEndian.Uint32(prefix)
	if n < uint32(minLen) || n > uint32(maxLen) {
		return nil, fmt.Errorf("%w: header length %d out of range", ErrInvalidFormat, n)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, headerReadError(err)
	}
	return data, nil
}

func headerReadError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated header", ErrInvalidFormat)
	}
	return err
}
