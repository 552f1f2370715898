package serializer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"rpg/internal/rpgmodel"
	"rpg/internal/rpgstore"
)

func seedStore(t *testing.T) *rpgstore.MemoryStore {
	t.Helper()
	store := rpgstore.NewMemoryStore()
	node := rpgmodel.NewHighLevelNode("src/pkg", rpgmodel.NewSemanticFeature("pkg description", []string{"pkg"}, ""), "src/pkg")
	require.NoError(t, store.AddNode(node))
	return store
}

func TestWrite_WritesCanonicalFile(t *testing.T) {
	store := seedStore(t)
	dir := t.TempDir()

	err := Write(store, rpgstore.ExportConfig{Name: "repo"}, dir, Options{})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, CanonicalFile))
	require.NoError(t, err)
	require.Contains(t, string(data), "src/pkg")

	_, err = os.Stat(filepath.Join(dir, CompressedFile))
	require.True(t, os.IsNotExist(err))
}

func TestWrite_CompressAlsoWritesZstdSibling(t *testing.T) {
	store := seedStore(t)
	dir := t.TempDir()

	err := Write(store, rpgstore.ExportConfig{Name: "repo"}, dir, Options{Compress: true})
	require.NoError(t, err)

	canonical, err := os.ReadFile(filepath.Join(dir, CanonicalFile))
	require.NoError(t, err)

	compressed, err := os.ReadFile(filepath.Join(dir, CompressedFile))
	require.NoError(t, err)

	decoder, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer decoder.Close()

	decoded, err := decoder.DecodeAll(compressed, nil)
	require.NoError(t, err)
	require.Equal(t, canonical, decoded)
}

func TestRead_RoundTripsIntoFreshStore(t *testing.T) {
	source := seedStore(t)
	dir := t.TempDir()
	require.NoError(t, Write(source, rpgstore.ExportConfig{Name: "repo"}, dir, Options{}))

	dest := rpgstore.NewMemoryStore()
	require.NoError(t, Read(dest, dir))
	require.True(t, dest.HasNode("src/pkg"))
}

func TestRead_MissingCanonicalFileErrors(t *testing.T) {
	dir := t.TempDir()
	err := Read(rpgstore.NewMemoryStore(), dir)
	require.Error(t, err)
}
