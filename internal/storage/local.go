package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// LocalStorage writes objects as flat files under a base directory.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create storage directory")
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve base path")
	}
	return &LocalStorage{basePath: abs}, nil
}

func (ls *LocalStorage) Store(ctx context.Context, filename string, content io.Reader, contentType string) (string, int64, error) {
	key := newKey(filename)
	fullPath, err := ls.path(key)
	if err != nil {
		return "", 0, err
	}

	file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", 0, errors.Wrap(err, "failed to create file")
	}

	n, err := io.Copy(file, content)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(fullPath)
		return "", 0, errors.Wrap(err, "failed to write file")
	}

	return key, n, nil
}

func (ls *LocalStorage) Retrieve(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := ls.path(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to open file")
	}
	return file, nil
}

func (ls *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := ls.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "failed to delete file")
	}
	return nil
}

// path resolves key inside basePath and rejects anything that escapes it.
func (ls *LocalStorage) path(key string) (string, error) {
	fullPath := filepath.Join(ls.basePath, key)
	if !strings.HasPrefix(fullPath, ls.basePath+string(filepath.Separator)) {
		return "", errors.New("invalid file path: path traversal detected")
	}
	return fullPath, nil
}
