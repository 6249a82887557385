package repository

import (
	"context"
	"errors"

	"pdfqa-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("not found")

// SessionRepository handles database operations for sessions
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session record
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (
			id, filename, pages, chunk_count, storage_path, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return r.db.QueryRow(
		ctx, query,
		session.ID,
		session.Filename,
		session.Pages,
		session.ChunkCount,
		session.StoragePath,
		session.ExpiresAt,
	).Scan(&session.CreatedAt)
}

// GetByID retrieves a live session by ID. Expired sessions are not returned.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session := &models.Session{}
	query := `
		SELECT id, filename, pages, chunk_count, storage_path, created_at, expires_at
		FROM sessions
		WHERE id = $1
		AND (expires_at IS NULL OR expires_at > NOW())`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.Filename,
		&session.Pages,
		&session.ChunkCount,
		&session.StoragePath,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return session, nil
}

// Delete removes a session. Chunks go with it via ON DELETE CASCADE.
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByFilename returns the number of sessions created from a filename
func (r *SessionRepository) CountByFilename(ctx context.Context, filename string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sessions WHERE filename = $1`, filename).Scan(&count)
	return count, err
}

// DeleteExpired removes all sessions past their expiry
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
