package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"pdfqa-backend/chunker"
	"pdfqa-backend/embedding"
	"pdfqa-backend/models"
	"pdfqa-backend/pdf"
	"pdfqa-backend/storage"
	"pdfqa-backend/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyDocument     = errors.New("no extractable text in document")
	ErrExtractionFailed  = errors.New("failed to extract document text")
	ErrEmbeddingFailed   = errors.New("failed to generate embeddings")
	ErrDocumentNotStored = errors.New("no stored document for session")
)

// TextExtractor extracts per-page text from a document file
type TextExtractor interface {
	ExtractPages(path string) ([]pdf.PageText, int, error)
}

// IngestService handles the upload-and-index pipeline: extract, chunk,
// embed, store.
type IngestService struct {
	storage   storage.Storage
	extractor TextExtractor
	splitter  *chunker.Splitter
	embedder  embedding.Embedder
	store     store.SessionStore
	logger    *logrus.Logger
}

// IngestServiceOption is a functional option for IngestService
type IngestServiceOption func(*IngestService)

// IngestWithStorage sets the file storage backend
func IngestWithStorage(s storage.Storage) IngestServiceOption {
	return func(svc *IngestService) {
		svc.storage = s
	}
}

// IngestWithExtractor sets the text extractor
func IngestWithExtractor(e TextExtractor) IngestServiceOption {
	return func(svc *IngestService) {
		svc.extractor = e
	}
}

// IngestWithSplitter sets the text splitter
func IngestWithSplitter(sp *chunker.Splitter) IngestServiceOption {
	return func(svc *IngestService) {
		svc.splitter = sp
	}
}

// IngestWithEmbedder sets the embedder
func IngestWithEmbedder(e embedding.Embedder) IngestServiceOption {
	return func(svc *IngestService) {
		svc.embedder = e
	}
}

// IngestWithSessionStore sets the session store
func IngestWithSessionStore(st store.SessionStore) IngestServiceOption {
	return func(svc *IngestService) {
		svc.store = st
	}
}

// IngestWithLogger sets the logger
func IngestWithLogger(l *logrus.Logger) IngestServiceOption {
	return func(svc *IngestService) {
		svc.logger = l
	}
}

// NewIngestService creates a new ingest service
func NewIngestService(opts ...IngestServiceOption) *IngestService {
	svc := &IngestService{}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = logrus.New()
	}
	return svc
}

// IngestRequest represents an uploaded document to process
type IngestRequest struct {
	Filename string
	Data     io.Reader
}

// IngestResult represents the created session
type IngestResult struct {
	SessionID  uuid.UUID
	Filename   string
	Pages      int
	ChunkCount int
}

// Ingest runs the full pipeline on an uploaded PDF and creates a session
func (s *IngestService) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if s.extractor == nil {
		return nil, errors.New("text extractor not set")
	}
	if s.splitter == nil {
		return nil, errors.New("text splitter not set")
	}
	if s.embedder == nil {
		return nil, errors.New("embedder not set")
	}
	if s.store == nil {
		return nil, errors.New("session store not set")
	}

	// pdfcpu works on files, so the upload goes through a temp file first.
	tmpPath, err := s.writeTempFile(req.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	defer os.Remove(tmpPath)

	pages, pageCount, err := s.extractor.ExtractPages(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	sessionID := uuid.New()
	chunks := s.chunkPages(sessionID, pages)
	if len(chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", ErrEmbeddingFailed, len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	session := &models.Session{
		ID:       sessionID,
		Filename: req.Filename,
		Pages:    pageCount,
	}

	// Keep the original document so it can be re-downloaded and so session
	// deletion can clean it up.
	if s.storage != nil {
		file, err := os.Open(tmpPath)
		if err != nil {
			return nil, fmt.Errorf("failed to reopen upload: %w", err)
		}
		storagePath, err := s.storage.Upload(ctx, sessionID, req.Filename, file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to store document: %w", err)
		}
		session.StoragePath = storagePath
	}

	if err := s.store.CreateSession(ctx, session, chunks); err != nil {
		// Try to clean up the stored file
		if s.storage != nil && session.StoragePath != "" {
			_ = s.storage.Delete(ctx, session.StoragePath)
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"filename":   req.Filename,
		"pages":      pageCount,
		"chunks":     len(chunks),
	}).Info("Document ingested")

	return &IngestResult{
		SessionID:  sessionID,
		Filename:   req.Filename,
		Pages:      pageCount,
		ChunkCount: len(chunks),
	}, nil
}

// GetSession retrieves session metadata
func (s *IngestService) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	if s.store == nil {
		return nil, errors.New("session store not set")
	}
	return s.store.GetSession(ctx, id)
}

// DownloadDocument streams the original document behind a session
func (s *IngestService) DownloadDocument(ctx context.Context, id uuid.UUID) (io.ReadCloser, *models.Session, error) {
	if s.store == nil {
		return nil, nil, errors.New("session store not set")
	}

	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if s.storage == nil || session.StoragePath == "" {
		return nil, nil, ErrDocumentNotStored
	}

	reader, err := s.storage.Download(ctx, session.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download document: %w", err)
	}
	return reader, session, nil
}

// DeleteSession removes a session, its index and its stored file
func (s *IngestService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if s.store == nil {
		return errors.New("session store not set")
	}

	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return err
	}

	if s.storage != nil && session.StoragePath != "" {
		if err := s.storage.Delete(ctx, session.StoragePath); err != nil {
			s.logger.WithError(err).WithField("session_id", id).Warn("Failed to delete stored document")
		}
	}
	return nil
}

// chunkPages splits each page's text and tags chunks with their page number
func (s *IngestService) chunkPages(sessionID uuid.UUID, pages []pdf.PageText) []models.DocumentChunk {
	var chunks []models.DocumentChunk
	index := 0
	for _, page := range pages {
		for _, text := range s.splitter.Split(page.Text) {
			chunks = append(chunks, models.DocumentChunk{
				SessionID: sessionID,
				Index:     index,
				Page:      page.Number,
				Text:      text,
			})
			index++
		}
	}
	return chunks
}

// writeTempFile buffers the uploaded data to a temp file and returns its path
func (s *IngestService) writeTempFile(data io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "pdfqa_upload_*.pdf")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
