package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKV runs the behavior every KV backend must share.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "a", "1"))
	require.NoError(t, kv.Set(ctx, "b", ""))
	require.NoError(t, kv.Set(ctx, "a", "2"))

	v, ok, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v, "last write wins")

	v, ok, err = kv.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok, "empty values are still present")
	assert.Equal(t, "", v)

	require.NoError(t, kv.Delete(ctx, "a"))
	require.NoError(t, kv.Delete(ctx, "a"))
	_, ok, err = kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestFileKV(t *testing.T) {
	kv, err := NewFileKV(filepath.Join(t.TempDir(), "nested", "store.json"))
	require.NoError(t, err)
	exerciseKV(t, kv)
}

func TestFileKV_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	first, err := NewFileKV(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "selectedTemplate", "2"))

	second, err := NewFileKV(path)
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, "selectedTemplate")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should be cleaned up")
}

func TestFileKV_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	kv, err := NewFileKV(path)
	require.NoError(t, err)

	_, _, err = kv.Get(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse store file")
}

func TestNewFileKV_EmptyPath(t *testing.T) {
	_, err := NewFileKV("")
	assert.Error(t, err)
}
