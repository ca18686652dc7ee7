package shred

import (
	"crypto/rand"
	"errors"
	"io"
	"io/fs"
)

// DefaultChunkSize is the write buffer size used for each pass
const DefaultChunkSize = 8 * 1024

// Shredder overwrites and removes files
type Shredder struct {
	FS        FileSystem
	ChunkSize int
	Rand      io.Reader
	OnEvent   func(Event)
}

// New returns a Shredder on the real filesystem
func New() *Shredder {
	return &Shredder{
		FS:        OSFileSystem{},
		ChunkSize: DefaultChunkSize,
		Rand:      rand.Reader,
	}
}

var defaultShredder = New()

// SecureDelete shreds path with the default Shredder
func SecureDelete(path string, passes int) error {
	return defaultShredder.SecureDelete(path, passes)
}

func (s *Shredder) emit(ev Event) {
	if s.OnEvent != nil {
		s.OnEvent(ev)
	}
}

func (s *Shredder) fs() FileSystem {
	if s.FS == nil {
		return OSFileSystem{}
	}
	return s.FS
}

func (s *Shredder) chunkSize() int {
	if s.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return s.ChunkSize
}

func (s *Shredder) random() io.Reader {
	if s.Rand == nil {
		return rand.Reader
	}
	return s.Rand
}

// SecureDelete overwrites path passes times and then unlinks it.
//
// A missing file is not an error. If any pass fails the file is left in
// place; an ErrDelete error means the data was overwritten but the name
// could not be removed.
func (s *Shredder) SecureDelete(path string, passes int) error {
	if passes < 1 {
		return ErrInvalidPasses
	}

	fsys := s.fs()
	info, err := fsys.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.emit(Event{Type: EventMissing, Path: path})
			return nil
		}
		return &Error{Kind: ErrOpen, Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &Error{Kind: ErrOpen, Path: path, Err: errors.New("not a regular file")}
	}

	size := info.Size()
	if size == 0 {
		if err := fsys.Remove(path); err != nil {
			return &Error{Kind: ErrDelete, Path: path, Err: err}
		}
		s.emit(Event{Type: EventEmptyRemoved, Path: path})
		return nil
	}

	f, err := fsys.OpenWrite(path)
	if err != nil {
		return &Error{Kind: ErrOpen, Path: path, Err: err}
	}

	buf := make([]byte, s.chunkSize())
	for pass := 1; pass <= passes; pass++ {
		if err := s.overwrite(f, path, pass, passes, size, buf); err != nil {
			f.Close()
			return &Error{Kind: ErrOverwrite, Path: path, Pass: pass, Err: err}
		}
	}

	if err := f.Close(); err != nil {
		return &Error{Kind: ErrOverwrite, Path: path, Err: err}
	}
	if err := fsys.Remove(path); err != nil {
		return &Error{Kind: ErrDelete, Path: path, Err: err}
	}
	s.emit(Event{Type: EventRemoved, Path: path, Passes: passes, Total: size})
	return nil
}

// overwrite runs a single pass from offset 0 through size and syncs it
func (s *Shredder) overwrite(f File, path string, pass, passes int, size int64, buf []byte) error {
	pattern := PatternFor(pass)
	s.emit(Event{Type: EventPassStarted, Path: path, Pass: pass, Passes: passes, Pattern: pattern, Total: size})

	if pattern != PatternRandom {
		pattern.fill(buf)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	var written int64
	for written < size {
		chunk := buf
		if remaining := size - written; remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}
		if pattern == PatternRandom {
			if _, err := io.ReadFull(s.random(), chunk); err != nil {
				return err
			}
		}
		n, err := f.Write(chunk)
		if err != nil {
			return err
		}
		if n != len(chunk) {
			return io.ErrShortWrite
		}
		written += int64(n)
		s.emit(Event{Type: EventProgress, Path: path, Pass: pass, Passes: passes, Pattern: pattern, Bytes: written, Total: size})
	}

	if err := f.Sync(); err != nil {
		return err
	}
	s.emit(Event{Type: EventPassSynced, Path: path, Pass: pass, Passes: passes, Pattern: pattern, Bytes: written, Total: size})
	return nil
}
