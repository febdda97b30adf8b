// Package storage keeps uploaded media bytes. Records in the media table point
// at objects here by key.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/civiceye/backend/internal/config"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("file not found")

// Storage defines the interface for file storage operations
type Storage interface {
	// Store saves content under a fresh key and returns the key and the
	// number of bytes written
	Store(ctx context.Context, filename string, content io.Reader, contentType string) (string, int64, error)

	// Retrieve opens the object stored under key
	Retrieve(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// New builds the backend selected by cfg.StorageType.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch StorageType(cfg.StorageType) {
	case StorageTypeLocal, "":
		basePath := cfg.UploadDir
		if basePath == "" {
			basePath = "./uploads"
		}
		return NewLocalStorage(basePath)

	case StorageTypeS3:
		if cfg.S3Bucket == "" || cfg.S3Region == "" {
			return nil, errors.New("S3 storage requires STORAGE_S3_BUCKET and STORAGE_S3_REGION")
		}
		return NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Region)

	default:
		return nil, errors.Errorf("unknown storage type: %s", cfg.StorageType)
	}
}

// newKey names a stored object by a random UUID plus the original extension.
func newKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(sanitizeFilename(filename)))
	return uuid.NewString() + ext
}

func sanitizeFilename(filename string) string {
	r := strings.NewReplacer(
		"/", "_", "\\", "_", "..", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	return r.Replace(filename)
}
