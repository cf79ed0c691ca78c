package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "k", "v1"))
	require.NoError(t, s.Put(ctx, "k", "v2"))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Close(ctx))
	assert.ErrorIs(t, s.Put(ctx, "k", "v3"), ErrClosed)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	s, err := NewFileStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "fish_batches_v1", `[{"id":"a"}]`))
	require.NoError(t, s.Close(ctx))

	reopened, err := NewFileStore(path, nil)
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, "fish_batches_v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, v)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_MalformedFileStartsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := NewFileStore(path, nil)
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, "fish_batches_v1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "k", "v"))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"k": "v"`)
}

func TestFileStore_EmptyPath(t *testing.T) {
	_, err := NewFileStore("", nil)
	assert.Error(t, err)
}
