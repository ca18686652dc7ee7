package core

import "errors"

var (
	ErrPathNotFound = errors.New("path does not exist")
	ErrNotDirectory = errors.New("not a directory")
	ErrCancelled    = errors.New("operation cancelled")
	ErrOutputExists = errors.New("output file exists")

	ErrOutputNotRegular = errors.New("output exists and is not a regular file")
)
