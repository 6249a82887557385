package config

import (
	"errors"
	"os"

	"pdfqa-backend/embedding"

	"gopkg.in/yaml.v3"
)

// ChunkerConfig configures how extracted text is split into chunks
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// RetrievalConfig configures similarity search
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// SessionConfig configures session lifetime. TTLMinutes 0 keeps sessions
// for the life of the process.
type SessionConfig struct {
	TTLMinutes           int `yaml:"ttl_minutes"`
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes"`
}

// UploadConfig configures upload limits
type UploadConfig struct {
	MaxFileSizeMB int64 `yaml:"max_file_size_mb"`
}

// GenerationConfig configures the answer model. Temperature is a pointer so
// an explicit 0 (deterministic output) survives defaulting.
type GenerationConfig struct {
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
}

// Config is the root application configuration. Secrets (API keys,
// DATABASE_URL, storage credentials) come from the environment, not from
// this file.
type Config struct {
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Embedder   embedding.Config `yaml:"embedder"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Session    SessionConfig    `yaml:"session"`
	Upload     UploadConfig     `yaml:"upload"`
	Generation GenerationConfig `yaml:"generation"`
}

// Load reads a config from path. If the file does not exist, defaults are
// returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Chunker.ChunkSize <= 0 {
		cfg.Chunker.ChunkSize = 10000
	}
	if cfg.Chunker.ChunkOverlap <= 0 {
		cfg.Chunker.ChunkOverlap = 1000
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 6
	}
	if cfg.Session.SweepIntervalMinutes <= 0 {
		cfg.Session.SweepIntervalMinutes = 5
	}
	if cfg.Upload.MaxFileSizeMB <= 0 {
		cfg.Upload.MaxFileSizeMB = 10
	}
	if cfg.Embedder.Backend == "" {
		cfg.Embedder.Backend = "gemini"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "gemini-1.5-flash"
	}
	if cfg.Generation.Temperature == nil {
		t := 0.3
		cfg.Generation.Temperature = &t
	}
}
