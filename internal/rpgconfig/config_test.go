package rpgconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_NoConfigFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Store.Kind)
	require.Equal(t, 0.4, cfg.Evolution.DriftThreshold)
}

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".rpg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rpg", "config.json"),
		[]byte(`{"version":1,"evolution":{"driftThreshold":0.6,"useLLM":true,"includeSource":true},"store":{"kind":"sqlite","path":".rpg/graph.sqlite"}}`), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 0.6, cfg.Evolution.DriftThreshold)
	require.True(t, cfg.Evolution.UseLLM)
	require.Equal(t, "sqlite", cfg.Store.Kind)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".rpg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rpg", "config.yaml"),
		[]byte("version: 1\nstore:\n  kind: sqlite\n  path: .rpg/graph.sqlite\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.Store.Kind)
}

func TestValidate_RejectsUnsupportedVersion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Version = 99
	require.Error(t, cfg.Validate())
}

func TestValidate_RejectsDriftThresholdOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Evolution.DriftThreshold = 1.5
	require.Error(t, cfg.Validate())
}

func TestValidate_RejectsUnknownStoreKind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Kind = "postgres"
	require.Error(t, cfg.Validate())
}

func TestSaveJSON_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Evolution.DriftThreshold = 0.7

	require.NoError(t, cfg.SaveJSON(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 0.7, loaded.Evolution.DriftThreshold)
}

func TestSaveTOML_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Store.Kind = "sqlite"

	require.NoError(t, cfg.SaveTOML(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "sqlite", loaded.Store.Kind)
}
