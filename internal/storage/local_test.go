package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalStore(dir)
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(1700000000123) }

	img := Image{Data: []byte("png-bytes"), ContentType: "image/png", Ext: ".png"}
	saved, err := store.Save(context.Background(), img, "ignored")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^event-1700000000123-\d+\.png$`), saved.Filename)
	assert.Equal(t, PublicPrefix+saved.Filename, saved.URL)
	assert.Empty(t, saved.PublicID)

	data, err := os.ReadFile(filepath.Join(dir, saved.Filename))
	require.NoError(t, err)
	assert.Equal(t, img.Data, data)

	require.NoError(t, store.Delete(context.Background(), saved.URL))
	_, err = os.Stat(filepath.Join(dir, saved.Filename))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is not an error
	assert.NoError(t, store.Delete(context.Background(), saved.URL))
}

func TestLocalStore_DeleteIgnoresForeignURLs(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	keep := filepath.Join(dir, "keep.png")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0o644))

	for _, u := range []string{
		"https://res.cloudinary.com/demo/image/upload/keep.png",
		"/static/keep.png",
		"",
	} {
		assert.NoError(t, store.Delete(context.Background(), u))
	}

	_, err = os.Stat(keep)
	assert.NoError(t, err)
}

func TestUnconfigured(t *testing.T) {
	store := &Unconfigured{Service: "cloudinary", Missing: []string{"CLOUDINARY_API_KEY"}}

	_, err := store.Save(context.Background(), Image{}, "avatars")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLOUDINARY_API_KEY")
	assert.Error(t, store.Delete(context.Background(), "x"))
	assert.Equal(t, "cloudinary", store.Name())
}
