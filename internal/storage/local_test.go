package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiceye/backend/internal/config"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key, n, err := ls.Store(ctx, "Pothole.JPG", strings.NewReader("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotContains(t, key, "Pothole")

	rc, err := ls.Retrieve(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, ls.Delete(ctx, key))
	_, err = ls.Retrieve(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, ls.Delete(ctx, key))
}

func TestLocalStorage_KeysAreUnique(t *testing.T) {
	ctx := context.Background()
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	a, _, err := ls.Store(ctx, "same.png", strings.NewReader("a"), "image/png")
	require.NoError(t, err)
	b, _, err := ls.Store(ctx, "same.png", strings.NewReader("b"), "image/png")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = ls.Retrieve(ctx, "../../etc/passwd")
	assert.ErrorContains(t, err, "path traversal")
	assert.ErrorContains(t, ls.Delete(ctx, "../outside"), "path traversal")
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, &config.Config{StorageType: "local", UploadDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = New(ctx, &config.Config{StorageType: "s3"})
	assert.ErrorContains(t, err, "STORAGE_S3_BUCKET")

	_, err = New(ctx, &config.Config{StorageType: "ftp"})
	assert.ErrorContains(t, err, "unknown storage type")
}
