package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, max int64) (*Store, string) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewStore(dir, max, logger)
	require.NoError(t, err)
	return store, dir
}

func TestSanitizeFilename(t *testing.T) {
	testCases := map[string]string{
		"photo.jpg":             "photo.jpg",
		"../../etc/passwd":      "passwd",
		`C:\Users\me\flood.png`: "flood.png",
		"my voice note.mp3":     "my_voice_note.mp3",
		"..":                    "",
		"наводнение.jpg":        "jpg",
	}
	for in, want := range testCases {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestStore_Save(t *testing.T) {
	store, dir := newTestStore(t, 16)

	path, err := store.Save(context.Background(), "abc", "../evil name.png", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc_evil_name.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestStore_Save_TooLarge(t *testing.T) {
	store, dir := newTestStore(t, 4)

	_, err := store.Save(context.Background(), "abc", "big.bin", strings.NewReader("0123456789"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_Save_Duplicate(t *testing.T) {
	store, _ := newTestStore(t, 0)

	_, err := store.Save(context.Background(), "abc", "a.txt", strings.NewReader("1"))
	require.NoError(t, err)
	_, err = store.Save(context.Background(), "abc", "a.txt", strings.NewReader("2"))
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestStore_Save_EmptyName(t *testing.T) {
	store, _ := newTestStore(t, 0)

	_, err := store.Save(context.Background(), "abc", "..", strings.NewReader("x"))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestStore_Delete(t *testing.T) {
	store, dir := newTestStore(t, 16)
	ctx := context.Background()

	path, err := store.Save(ctx, "abc", "photo.jpg", strings.NewReader("hello"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, path))
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// already gone
	require.NoError(t, store.Delete(ctx, path))

	outside := filepath.Join(filepath.Dir(dir), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	err = store.Delete(ctx, outside)
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}
