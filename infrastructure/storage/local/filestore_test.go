package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	n, err := store.Save(ctx, "abc.jpg", strings.NewReader("image"), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	rc, err := store.Open(ctx, "abc.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "image", string(data))

	require.NoError(t, store.Delete(ctx, "abc.jpg"))
	_, err = store.Open(ctx, "abc.jpg")
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.NoError(t, store.Delete(ctx, "abc.jpg"))
}

func TestFileStore_RejectsOversize(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "big.mp4", strings.NewReader("0123456789x"), 10)
	assert.True(t, pkgerrors.IsValidation(err))

	_, statErr := os.Stat(filepath.Join(dir, "big.mp4"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_RejectsPathTricks(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../evil", "a/b.jpg", ".hidden", ""} {
		_, err := store.Save(context.Background(), name, strings.NewReader("x"), 10)
		assert.True(t, pkgerrors.IsValidation(err), name)
	}
}
