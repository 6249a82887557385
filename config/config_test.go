package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.Chunker.ChunkSize)
	assert.Equal(t, 1000, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 6, cfg.Retrieval.TopK)
	assert.Equal(t, "gemini", cfg.Embedder.Backend)
	assert.Equal(t, "gemini-1.5-flash", cfg.Generation.Model)
	assert.Equal(t, int64(10), cfg.Upload.MaxFileSizeMB)
	assert.Equal(t, 0, cfg.Session.TTLMinutes)
	require.NotNil(t, cfg.Generation.Temperature)
	assert.Equal(t, 0.3, *cfg.Generation.Temperature)
}

func TestLoadZeroTemperatureIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("generation:\n  temperature: 0\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Generation.Temperature)
	assert.Equal(t, 0.0, *cfg.Generation.Temperature)
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("chunker:\n  chunk_size: 8000\nretrieval:\n  top_k: 4\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Chunker.ChunkSize)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	// Untouched sections keep defaults.
	assert.Equal(t, 1000, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, "gemini", cfg.Embedder.Backend)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunker: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
