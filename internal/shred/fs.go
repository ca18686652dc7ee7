package shred

import (
	"io"
	"os"
)

// File is the subset of *os.File the overwrite loop needs
type File interface {
	io.Writer
	io.Seeker
	Sync() error
	Close() error
}

// FileSystem abstracts the calls made while shredding so tests can
// observe and fail individual writes and syncs.
type FileSystem interface {
	Lstat(name string) (os.FileInfo, error)
	OpenWrite(name string) (File, error)
	Remove(name string) error
}

// OSFileSystem is the FileSystem backed by the os package
type OSFileSystem struct{}

func (OSFileSystem) Lstat(name string) (os.FileInfo, error) {
	return os.Lstat(name)
}

// OpenWrite opens an existing file for writing without truncating it
func (OSFileSystem) OpenWrite(name string) (File, error) {
	return os.OpenFile(name, os.O_WRONLY, 0)
}

func (OSFileSystem) Remove(name string) error {
	return os.Remove(name)
}
