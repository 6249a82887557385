package embedding

import (
	"context"
	"fmt"
	"math"
)

// Embedder converts text into L2-normalized vectors for similarity search
type Embedder interface {
	// EmbedDocuments embeds document chunks for indexing
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)

	// EmbedQuery embeds a retrieval query
	EmbedQuery(ctx context.Context, text string) ([]float64, error)

	// Dimension returns the embedding dimension
	Dimension() int
}

// Config selects and configures the embedder backend
type Config struct {
	Backend     string `yaml:"backend"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// New creates an embedder for the configured backend
func New(cfg Config) (Embedder, error) {
	switch cfg.Backend {
	case "", "gemini":
		return NewGeminiEmbedder(cfg), nil
	case "openai":
		return NewOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unknown embedder backend: %s", cfg.Backend)
	}
}

// normalize scales a vector to unit length in place
func normalize(v []float64) {
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range v {
			v[i] /= norm
		}
	}
}
