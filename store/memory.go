package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"pdfqa-backend/models"

	"github.com/google/uuid"
)

// MemoryStore is an in-process session store using brute-force cosine
// similarity over normalized vectors. Sessions live until deleted, or until
// the TTL sweeper collects them when a TTL is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*memorySession
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

type memorySession struct {
	session models.Session
	chunks  []models.DocumentChunk
}

// NewMemoryStore creates a memory store. A ttl of 0 disables expiry.
func NewMemoryStore(ttl time.Duration, sweepInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[uuid.UUID]*memorySession),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	if ttl > 0 {
		if sweepInterval <= 0 {
			sweepInterval = time.Minute
		}
		go s.sweep(sweepInterval)
	}
	return s
}

// Close stops the TTL sweeper
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// CreateSession stores a session and its embedded chunks
func (s *MemoryStore) CreateSession(ctx context.Context, session *models.Session, chunks []models.DocumentChunk) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if s.ttl > 0 {
		expiresAt := session.CreatedAt.Add(s.ttl)
		session.ExpiresAt = &expiresAt
	}
	session.ChunkCount = len(chunks)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = &memorySession{
		session: *session,
		chunks:  chunks,
	}
	return nil
}

// GetSession retrieves session metadata
func (s *MemoryStore) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[id]
	if !ok || s.expired(entry) {
		return nil, ErrSessionNotFound
	}
	session := entry.session
	return &session, nil
}

// Search returns the topK chunks most similar to the query vector
func (s *MemoryStore) Search(ctx context.Context, id uuid.UUID, vector []float64, topK int) ([]models.DocumentChunk, error) {
	if topK <= 0 {
		topK = 4
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[id]
	if !ok || s.expired(entry) {
		return nil, ErrSessionNotFound
	}

	// Vectors are L2-normalized, so dot product equals cosine similarity.
	results := make([]models.DocumentChunk, len(entry.chunks))
	for i, chunk := range entry.chunks {
		chunk.Score = dot(chunk.Embedding, vector)
		results[i] = chunk
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// DeleteSession removes a session and its index
func (s *MemoryStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) expired(entry *memorySession) bool {
	return entry.session.ExpiresAt != nil && time.Now().After(*entry.session.ExpiresAt)
}

// sweep periodically removes expired sessions
func (s *MemoryStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			for id, entry := range s.sessions {
				if s.expired(entry) {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
