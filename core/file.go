package core

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

var (
	// ErrFileRequired is returned when manipulate on a folder.
	ErrFileRequired = errors.New("file required")

	// ErrInputNotFound is returned when the path to package does not exist.
	ErrInputNotFound = errors.New("input path does not exist")
)

// File is a regular file on disk opened for sequential reads.
type File struct {
	os.FileInfo
	underlying *os.File
	size       int64
}

var _ io.ReadCloser = (*File)(nil)

// Exists reports whether name exists, following symbolic links.
func Exists(name string) (bool, error) {
	_, err := os.Stat(name)
	if os.IsNotExist(err) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

// Open opens a regular file on disk. Empty files are allowed.
func Open(name string) (*File, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	if info.IsDir() {
		file.Close()
		return nil, ErrFileRequired
	}

	return &File{
		FileInfo:   info,
		underlying: file,
		size:       info.Size(),
	}, nil
}

func (file *File) Read(buf []byte) (int, error) {
	return file.underlying.Read(buf)
}

func (file *File) Close() error {
	return file.underlying.Close()
}

// Size returns the file size observed when the file was opened.
func (file *File) Size() int64 {
	return file.size
}
