package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder generates embeddings via the OpenAI embeddings API
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	batchSize  int
}

// NewOpenAIEmbedder creates an OpenAI embedder from config, applying defaults
func NewOpenAIEmbedder(cfg Config) (*OpenAIEmbedder, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}

	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		// Model defaults
		dimensions = 1536
		if model == "text-embedding-3-large" {
			dimensions = 3072
		}
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 16
	}

	return &OpenAIEmbedder{
		client:     openai.NewClient(key),
		model:      model,
		dimensions: dimensions,
		batchSize:  batchSize,
	}, nil
}

// Dimension returns the embedding dimension
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimensions
}

// EmbedQuery embeds a single retrieval query
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds document chunks in batches
func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	embeddings := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := e.embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch starting at %d: %w", start, err)
		}
		embeddings = append(embeddings, batch...)
	}
	return embeddings, nil
}

func (e *OpenAIEmbedder) embed(ctx context.Context, texts []string) ([][]float64, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(e.model),
		Input:      texts,
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("API returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([][]float64, len(resp.Data))
	for i, item := range resp.Data {
		v := make([]float64, len(item.Embedding))
		for j, x := range item.Embedding {
			v[j] = float64(x)
		}
		normalize(v)
		vectors[i] = v
	}
	return vectors, nil
}
