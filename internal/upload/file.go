package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is a candidate for upload.
type File interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// LocalFile is a file on disk.
type LocalFile struct {
	path string
	size int64
}

// NewLocalFile stats path and returns it as an upload candidate.
func NewLocalFile(path string) (*LocalFile, error) {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &LocalFile{path: path, size: info.Size()}, nil
}

func (f *LocalFile) Name() string                 { return filepath.Base(f.path) }
func (f *LocalFile) Size() int64                  { return f.size }
func (f *LocalFile) Path() string                 { return f.path }
func (f *LocalFile) Open() (io.ReadCloser, error) { return os.Open(f.path) }
