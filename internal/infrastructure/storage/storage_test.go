package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sangkips/tillpoint-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/storage/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "branding/logo.png", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "/storage/branding/logo.png", url)

	raw, err := os.ReadFile(filepath.Join(dir, "branding", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(raw))

	require.NoError(t, store.Delete(context.Background(), "branding/logo.png"))
	require.NoError(t, store.Delete(context.Background(), "branding/logo.png"))
}

func TestLocalStoreStaysUnderRoot(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "root"), "/s")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../../escape.txt", "text/plain", []byte("x"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "root", "escape.txt"))
	assert.NoError(t, err)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Driver: "s3"})
	assert.Error(t, err)
}
