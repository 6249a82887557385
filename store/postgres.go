package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pdfqa-backend/models"
	"pdfqa-backend/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a pgvector-backed session store. Sessions survive process
// restarts; similarity search runs in the database.
type PostgresStore struct {
	sessionRepo *repository.SessionRepository
	chunkRepo   *repository.ChunkRepository
	ttl         time.Duration
}

// NewPostgresStore creates a Postgres session store. A ttl of 0 disables expiry.
func NewPostgresStore(db *pgxpool.Pool, ttl time.Duration) *PostgresStore {
	return &PostgresStore{
		sessionRepo: repository.NewSessionRepository(db),
		chunkRepo:   repository.NewChunkRepository(db),
		ttl:         ttl,
	}
}

// CreateSession stores a session and its embedded chunks
func (s *PostgresStore) CreateSession(ctx context.Context, session *models.Session, chunks []models.DocumentChunk) error {
	if s.ttl > 0 {
		expiresAt := time.Now().Add(s.ttl)
		session.ExpiresAt = &expiresAt
	}
	session.ChunkCount = len(chunks)

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if err := s.chunkRepo.BulkInsert(ctx, chunks); err != nil {
		// Don't leave a session without an index behind.
		_ = s.sessionRepo.Delete(ctx, session.ID)
		return fmt.Errorf("failed to store chunks: %w", err)
	}
	return nil
}

// GetSession retrieves session metadata
func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// Search returns the topK chunks most similar to the query vector
func (s *PostgresStore) Search(ctx context.Context, id uuid.UUID, vector []float64, topK int) ([]models.DocumentChunk, error) {
	if topK <= 0 {
		topK = 4
	}

	// Session must resolve first so an unknown id is a 404, not an empty result.
	if _, err := s.GetSession(ctx, id); err != nil {
		return nil, err
	}

	return s.chunkRepo.SearchBySession(ctx, id, vector, topK)
}

// DeleteSession removes a session and its chunks
func (s *PostgresStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}
