package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisk_SaveOpenDelete(t *testing.T) {
	dir := t.TempDir()
	disk, err := NewDisk(dir, 1024)
	require.NoError(t, err)
	ctx := context.Background()

	name, size, err := disk.Save(ctx, ".PDF", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.Equal(t, int64(8), size)

	rc, err := disk.Open(ctx, name)
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(content))

	require.NoError(t, disk.Delete(ctx, name))
	_, err = disk.Open(ctx, name)
	assert.ErrorIs(t, err, ErrFileNotFound)

	// deleting twice is not an error
	assert.NoError(t, disk.Delete(ctx, name))
}

func TestDisk_SaveTooLarge(t *testing.T) {
	dir := t.TempDir()
	disk, err := NewDisk(dir, 4)
	require.NoError(t, err)

	_, _, err = disk.Save(context.Background(), "epub", bytes.NewReader([]byte("12345")))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDisk_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	disk, err := NewDisk(filepath.Join(dir, "uploads"), 0)
	require.NoError(t, err)

	for _, name := range []string{"", "../secret", ".env", "a/b.pdf"} {
		_, err := disk.Open(context.Background(), name)
		assert.ErrorIs(t, err, ErrFileNotFound, name)
	}
}

func TestDisk_SaveCanceled(t *testing.T) {
	disk, err := NewDisk(t.TempDir(), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = disk.Save(ctx, "mobi", strings.NewReader("data"))
	assert.ErrorIs(t, err, context.Canceled)
}
