// Package local stores uploaded files on the local filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "mindbloom-backend/pkg/errors"
)

// FileStore keeps files flat in one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", pkgerrors.NewValidationError("invalid file name")
	}
	return filepath.Join(s.dir, name), nil
}

// Save writes at most maxBytes from r to name. A larger body is rejected and
// nothing is kept.
func (s *FileStore) Save(_ context.Context, name string, r io.Reader, maxBytes int64) (int64, error) {
	path, err := s.path(name)
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, pkgerrors.NewConflictError("file already exists")
		}
		return 0, pkgerrors.Wrap(err, "failed to create file")
	}

	n, err := io.Copy(f, io.LimitReader(r, maxBytes+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		_ = os.Remove(path)
		return 0, pkgerrors.Wrap(err, "failed to write file")
	case n > maxBytes:
		_ = os.Remove(path)
		return 0, pkgerrors.NewValidationError(fmt.Sprintf("file exceeds the %d byte limit", maxBytes)).WithCode("FILE_TOO_LARGE")
	case closeErr != nil:
		_ = os.Remove(path)
		return 0, pkgerrors.Wrap(closeErr, "failed to write file")
	}
	return n, nil
}

// Open returns the contents of name.
func (s *FileStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, pkgerrors.NewNotFoundError("file")
	}
	return f, err
}

// Delete removes name. A missing file is not an error.
func (s *FileStore) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return pkgerrors.Wrap(err, "failed to delete file")
	}
	return nil
}
