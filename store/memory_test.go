package store

import (
	"context"
	"testing"
	"time"

	"pdfqa-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, s *MemoryStore, vectors ...[]float64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	chunks := make([]models.DocumentChunk, len(vectors))
	for i, v := range vectors {
		chunks[i] = models.DocumentChunk{
			SessionID: id,
			Index:     i,
			Page:      i + 1,
			Text:      "chunk",
			Embedding: v,
		}
	}
	err := s.CreateSession(context.Background(), &models.Session{ID: id, Filename: "policy.pdf", Pages: len(vectors)}, chunks)
	require.NoError(t, err)
	return id
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	s := NewMemoryStore(0, 0)
	defer s.Close()

	id := newTestSession(t, s, []float64{1, 0}, []float64{0, 1})

	session, err := s.GetSession(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "policy.pdf", session.Filename)
	assert.Equal(t, 2, session.ChunkCount)
	assert.False(t, session.CreatedAt.IsZero())
	assert.Nil(t, session.ExpiresAt)
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	s := NewMemoryStore(0, 0)
	defer s.Close()

	_, err := s.GetSession(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreSearchOrdering(t *testing.T) {
	s := NewMemoryStore(0, 0)
	defer s.Close()

	id := newTestSession(t, s,
		[]float64{1, 0},
		[]float64{0, 1},
		[]float64{0.7071, 0.7071},
	)

	results, err := s.Search(context.Background(), id, []float64{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Best match is the identical vector, then the diagonal one.
	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, 2, results[1].Index)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemoryStoreSearchTopKClamped(t *testing.T) {
	s := NewMemoryStore(0, 0)
	defer s.Close()

	id := newTestSession(t, s, []float64{1, 0})
	results, err := s.Search(context.Background(), id, []float64{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestMemoryStoreSearchUnknownSession(t *testing.T) {
	s := NewMemoryStore(0, 0)
	defer s.Close()

	_, err := s.Search(context.Background(), uuid.New(), []float64{1, 0}, 4)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore(0, 0)
	defer s.Close()

	id := newTestSession(t, s, []float64{1, 0})
	require.NoError(t, s.DeleteSession(context.Background(), id))

	_, err := s.GetSession(context.Background(), id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, s.DeleteSession(context.Background(), id), ErrSessionNotFound)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	s := NewMemoryStore(10*time.Millisecond, 5*time.Millisecond)
	defer s.Close()

	id := newTestSession(t, s, []float64{1, 0})

	session, err := s.GetSession(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, session.ExpiresAt)

	// Expired sessions are invisible even before the sweeper runs.
	time.Sleep(20 * time.Millisecond)
	_, err = s.GetSession(context.Background(), id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// And the sweeper eventually removes them.
	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestDot(t *testing.T) {
	assert.InDelta(t, 1.0, dot([]float64{1, 0}, []float64{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, dot([]float64{1, 0}, []float64{0, 1}), 1e-9)
	// Mismatched lengths use the shorter vector.
	assert.InDelta(t, 2.0, dot([]float64{1, 1, 5}, []float64{1, 1}), 1e-9)
}
