package store

import (
	"context"
	"errors"

	"pdfqa-backend/models"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session id does not resolve to a
// previously created index.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore maps session identifiers to per-document vector indexes
type SessionStore interface {
	// CreateSession stores a session together with its embedded chunks
	CreateSession(ctx context.Context, session *models.Session, chunks []models.DocumentChunk) error

	// GetSession retrieves session metadata
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)

	// Search returns the topK most similar chunks for the query vector,
	// highest score first
	Search(ctx context.Context, id uuid.UUID, vector []float64, topK int) ([]models.DocumentChunk, error)

	// DeleteSession removes a session and its index
	DeleteSession(ctx context.Context, id uuid.UUID) error
}
