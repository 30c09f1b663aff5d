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
	assert.Equal(t, "fallback", cfg.Embedder.Type)
	assert.Equal(t, 384, cfg.Embedder.Dimension)
	assert.Equal(t, 1000, cfg.Chunker.WindowChars)
	assert.Equal(t, 200, cfg.Chunker.OverlapChars)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, 20, cfg.Retrieval.SearchK)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 5000.0, cfg.Policy.Tier1Amount)
	assert.Equal(t, 3000.0, cfg.Policy.BaseAmount)
	assert.Contains(t, cfg.Policy.Tier1Cities, "chennai")
	assert.Equal(t, 50, cfg.History.MaxRecords)
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := []byte("embedder:\n  type: openai\n  openai:\n    model: text-embedding-3-small\nchunker:\n  window_chars: 600\n")
	require.NoError(t, os.WriteFile(path, partial, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Embedder.Type)
	assert.Equal(t, 384, cfg.Embedder.Dimension)
	require.NotNil(t, cfg.Embedder.OpenAI)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, 30, cfg.Embedder.OpenAI.TimeoutSecs)
	assert.Equal(t, 600, cfg.Chunker.WindowChars)
	assert.Equal(t, 200, cfg.Chunker.OverlapChars)
	assert.Equal(t, 512, cfg.LLM.MaxTokens)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedder: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")
	cfg := defaultConfig()
	cfg.VectorStore = VectorStoreConfig{
		Type:   "qdrant",
		Qdrant: &QdrantConfig{URL: "http://localhost:6333", Collection: "claims"},
	}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.VectorStore, loaded.VectorStore)
	assert.Equal(t, cfg.Policy, loaded.Policy)
	assert.Equal(t, cfg.StorageDir, loaded.StorageDir)
}
