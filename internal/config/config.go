package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the embedding provider. Type
// "fallback" runs without a primary model on pseudo-embeddings only.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	Dimension int                   `yaml:"dimension"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures the sliding-window chunker, in characters.
type ChunkerConfig struct {
	WindowChars  int `yaml:"window_chars"`
	OverlapChars int `yaml:"overlap_chars"`
}

// VectorStoreConfig selects and configures the vector index backend.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector index.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LLMConfig configures the chat completions collaborator.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// RetrievalConfig sets the search-broad and final result counts.
type RetrievalConfig struct {
	SearchK                int  `yaml:"search_k"`
	TopK                   int  `yaml:"top_k"`
	IncludeSystemDocuments bool `yaml:"include_system_documents"`
}

// PolicyConfig carries the business rule constants.
type PolicyConfig struct {
	Tier1Cities []string `yaml:"tier1_cities"`
	Tier1Amount float64  `yaml:"tier1_amount"`
	BaseAmount  float64  `yaml:"base_amount"`
}

// HistoryConfig bounds the query history ledger.
type HistoryConfig struct {
	MaxRecords int `yaml:"max_records"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	LLM         LLMConfig         `yaml:"llm"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Policy      PolicyConfig      `yaml:"policy"`
	History     HistoryConfig     `yaml:"history"`
	StorageDir  string            `yaml:"storage_dir"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/docqa/config.yaml and
// returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder:    EmbedderConfig{Type: "fallback", Dimension: 384},
		Chunker:     ChunkerConfig{WindowChars: 1000, OverlapChars: 200},
		VectorStore: VectorStoreConfig{Type: "memory"},
		LLM:         LLMConfig{APIKeyEnv: "OPENAI_API_KEY", Temperature: 0.1, MaxTokens: 512, TimeoutSecs: 60},
		Retrieval:   RetrievalConfig{SearchK: 20, TopK: 5},
		Policy: PolicyConfig{
			Tier1Cities: []string{"mumbai", "delhi", "bangalore", "kolkata", "chennai"},
			Tier1Amount: 5000,
			BaseAmount:  3000,
		},
		History:    HistoryConfig{MaxRecords: 50},
		StorageDir: "uploads",
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 384
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Chunker.WindowChars == 0 {
		cfg.Chunker.WindowChars = 1000
	}
	if cfg.Chunker.OverlapChars == 0 {
		cfg.Chunker.OverlapChars = 200
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 512
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
	if cfg.Retrieval.SearchK == 0 {
		cfg.Retrieval.SearchK = 20
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if len(cfg.Policy.Tier1Cities) == 0 {
		cfg.Policy.Tier1Cities = []string{"mumbai", "delhi", "bangalore", "kolkata", "chennai"}
	}
	if cfg.Policy.Tier1Amount == 0 {
		cfg.Policy.Tier1Amount = 5000
	}
	if cfg.Policy.BaseAmount == 0 {
		cfg.Policy.BaseAmount = 3000
	}
	if cfg.History.MaxRecords == 0 {
		cfg.History.MaxRecords = 50
	}
}
