package semantics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"rpg/internal/rpgmodel"
)

func TestCache_PutGetRoundTrip(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "cache.json"))
	feature := rpgmodel.NewSemanticFeature("does a thing", []string{"a", "b"}, rpgmodel.IntentBehavior)

	cache.Put("k1", feature)
	got, ok := cache.Get("k1")

	require.True(t, ok)
	require.Equal(t, feature.Description(), got.Description())
	require.Equal(t, feature.Keywords(), got.Keywords())
}

func TestCache_Miss(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "cache.json"))
	_, ok := cache.Get("nope")
	require.False(t, ok)
}

func TestCache_FlushWritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache := NewCache(path)
	cache.Put("k1", rpgmodel.NewSemanticFeature("desc", []string{"x"}, ""))

	require.NoError(t, cache.Flush())

	_, err := os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestCache_LoadsExistingFileLazily(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	writer := NewCache(path)
	writer.Put("k1", rpgmodel.NewSemanticFeature("desc", []string{"x"}, ""))
	require.NoError(t, writer.Flush())

	reader := NewCache(path)
	got, ok := reader.Get("k1")
	require.True(t, ok)
	require.Equal(t, "desc", got.Description())
}

func TestCache_FlushNoOpWhenNotDirty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache := NewCache(path)

	require.NoError(t, cache.Flush())

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
