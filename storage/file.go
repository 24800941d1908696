package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File stores the snapshot at a path on disk.
type File struct {
	path string
}

func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("snapshot path required")
	}
	return &File{path: path}, nil
}

func (f *File) Path() string {
	return f.path
}

// Load returns the file contents. A missing file yields an error wrapping
// fs.ErrNotExist.
func (f *File) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return data, nil
}

// Store replaces the file contents. The data is written next to the target
// and renamed over it, so a failed write leaves the previous snapshot intact.
func (f *File) Store(data []byte) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Join(err, os.Remove(tmp))
	}
	return nil
}
