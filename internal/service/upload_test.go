package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageStore_Save(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(dir, 16)

	url, err := store.Save(newFileHeader(t, "photo.PNG", []byte("png-bytes")))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, UploadsURLPrefix))
	assert.True(t, strings.HasSuffix(url, ".png"))
	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, UploadsURLPrefix)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestImageStore_Save_UniqueNames(t *testing.T) {
	store := NewImageStore(t.TempDir(), 16)

	first, err := store.Save(newFileHeader(t, "a.jpg", []byte("1")))
	require.NoError(t, err)
	second, err := store.Save(newFileHeader(t, "a.jpg", []byte("2")))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestImageStore_Save_Rejects(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(dir, 4)

	_, err := store.Save(newFileHeader(t, "script.sh", []byte("x")))
	assert.ErrorIs(t, err, ErrInvalidFileFormat)

	_, err = store.Save(newFileHeader(t, "big.jpg", []byte("too large")))
	assert.ErrorIs(t, err, ErrFileSizeExceeded)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImageStore_Remove(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(t.TempDir(), "secret.png")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pic.png"), []byte("x"), 0o644))
	store := NewImageStore(dir, 16)

	store.Remove("/uploads/pic.png")
	store.Remove("/uploads/missing.png")
	store.Remove(outside)

	_, err := os.Stat(filepath.Join(dir, "pic.png"))
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, outside)
}
