package repository

import (
	"context"
	"fmt"
	"strings"

	"pdfqa-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChunkRepository handles database operations for document chunks
type ChunkRepository struct {
	db *pgxpool.Pool
}

// NewChunkRepository creates a new chunk repository
func NewChunkRepository(db *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// BulkInsert stores all chunks of a session
func (r *ChunkRepository) BulkInsert(ctx context.Context, chunks []models.DocumentChunk) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO document_chunks (
			session_id, chunk_index, page, chunk_text, embedding
		) VALUES ($1, $2, $3, $4, $5::vector)`

	for _, chunk := range chunks {
		batch.Queue(query, chunk.SessionID, chunk.Index, chunk.Page, chunk.Text, formatVector(chunk.Embedding))
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}
	}
	return nil
}

// SearchBySession performs a cosine similarity search within one session.
// embedding: normalized query vector
// limit: maximum number of chunks to return
func (r *ChunkRepository) SearchBySession(
	ctx context.Context,
	sessionID uuid.UUID,
	embedding []float64,
	limit int,
) ([]models.DocumentChunk, error) {
	vectorStr := formatVector(embedding)

	query := `
		SELECT
			session_id,
			chunk_index,
			page,
			chunk_text,
			1 - (embedding <=> $2::vector) AS score
		FROM document_chunks
		WHERE session_id = $1
		ORDER BY
			embedding <=> $2::vector
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, sessionID, vectorStr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query document chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.DocumentChunk
	for rows.Next() {
		var chunk models.DocumentChunk
		err := rows.Scan(
			&chunk.SessionID,
			&chunk.Index,
			&chunk.Page,
			&chunk.Text,
			&chunk.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document chunks: %w", err)
	}

	return chunks, nil
}
