package models

import (
	"time"

	"github.com/google/uuid"
)

// Session represents one uploaded document and its vector index handle
type Session struct {
	ID          uuid.UUID  `json:"id"`
	Filename    string     `json:"filename"`
	Pages       int        `json:"pages"`
	ChunkCount  int        `json:"chunk_count"`
	StoragePath string     `json:"storage_path,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// DocumentChunk represents a chunk of extracted document text
type DocumentChunk struct {
	SessionID uuid.UUID `json:"session_id"`
	Index     int       `json:"index"`
	Page      int       `json:"page"`
	Text      string    `json:"text"`
	Embedding []float64 `json:"-"`
	Score     float64   `json:"score,omitempty"` // Vector similarity score
}
