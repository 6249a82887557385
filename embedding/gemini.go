package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const (
	embedContentAPI = "https://generativelanguage.googleapis.com/v1beta/models/%s:embedContent"
	batchEmbedAPI   = "https://generativelanguage.googleapis.com/v1beta/models/%s:batchEmbedContents"
	maxRetries      = 3
	initialBackoff  = time.Second
)

// GeminiEmbedder generates embeddings via the Gemini embedding API
type GeminiEmbedder struct {
	model      string
	dimensions int
	batchSize  int
	client     *http.Client
}

// NewGeminiEmbedder creates a Gemini embedder from config, applying defaults
func NewGeminiEmbedder(cfg Config) *GeminiEmbedder {
	model := cfg.Model
	if model == "" {
		model = "gemini-embedding-001"
	}
	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = 768
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 16
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiEmbedder{
		model:      model,
		dimensions: dimensions,
		batchSize:  batchSize,
		client:     &http.Client{Timeout: timeout},
	}
}

// EmbeddingRequest represents an embedding API request
type EmbeddingRequest struct {
	Model                string       `json:"model"`
	Content              ContentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

// ContentInput represents content for embedding
type ContentInput struct {
	Parts []PartInput `json:"parts"`
}

// PartInput represents a part of content
type PartInput struct {
	Text string `json:"text"`
}

// EmbeddingResponse represents an embedding API response
type EmbeddingResponse struct {
	Embedding EmbeddingData `json:"embedding"`
}

// EmbeddingData contains the embedding values
type EmbeddingData struct {
	Values []float64 `json:"values"`
}

// BatchEmbeddingRequest wraps multiple embedding requests
type BatchEmbeddingRequest struct {
	Requests []EmbeddingRequest `json:"requests"`
}

// BatchEmbeddingResponse is the batch API response (no nested "embedding" key)
type BatchEmbeddingResponse struct {
	Embeddings []EmbeddingData `json:"embeddings"`
}

// Dimension returns the embedding dimension
func (e *GeminiEmbedder) Dimension() int {
	return e.dimensions
}

// EmbedQuery embeds a single retrieval query
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	reqBody := EmbeddingRequest{
		Model: "models/" + e.model,
		Content: ContentInput{
			Parts: []PartInput{{Text: text}},
		},
		TaskType:             "RETRIEVAL_QUERY",
		OutputDimensionality: e.dimensions,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf(embedContentAPI, e.model)

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", apiKey)

		resp, err := e.client.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var apiResp EmbeddingResponse
			if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
				resp.Body.Close()
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode response: %w", err)
				}
				continue
			}
			resp.Body.Close()

			embedding := apiResp.Embedding.Values
			normalize(embedding)
			return embedding, nil
		}

		resp.Body.Close()

		// Don't retry on 400 or 401 errors
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("embedding API error: %d", resp.StatusCode)
		}

		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("embedding API error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("embedding request failed")
}

// EmbedDocuments embeds document chunks in batches via batchEmbedContents
func (e *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	embeddings := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := e.embedBatch(ctx, apiKey, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch starting at %d: %w", start, err)
		}
		embeddings = append(embeddings, batch...)
	}

	return embeddings, nil
}

func (e *GeminiEmbedder) embedBatch(ctx context.Context, apiKey string, texts []string) ([][]float64, error) {
	reqBody := BatchEmbeddingRequest{
		Requests: make([]EmbeddingRequest, 0, len(texts)),
	}
	for _, text := range texts {
		reqBody.Requests = append(reqBody.Requests, EmbeddingRequest{
			Model: "models/" + e.model,
			Content: ContentInput{
				Parts: []PartInput{{Text: text}},
			},
			TaskType:             "RETRIEVAL_DOCUMENT",
			OutputDimensionality: e.dimensions,
		})
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf(batchEmbedAPI, e.model)

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", apiKey)

		resp, err := e.client.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var apiResp BatchEmbeddingResponse
			if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
				resp.Body.Close()
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode response: %w", err)
				}
				continue
			}
			resp.Body.Close()

			if len(apiResp.Embeddings) != len(texts) {
				return nil, fmt.Errorf("batch API returned %d embeddings for %d texts", len(apiResp.Embeddings), len(texts))
			}

			vectors := make([][]float64, len(apiResp.Embeddings))
			for i, item := range apiResp.Embeddings {
				vectors[i] = item.Values
				normalize(vectors[i])
			}
			return vectors, nil
		}

		resp.Body.Close()

		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("embedding API error: %d", resp.StatusCode)
		}

		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("embedding API error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("batch embedding request failed")
}
