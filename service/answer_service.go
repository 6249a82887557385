package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pdfqa-backend/embedding"
	"pdfqa-backend/models"
	"pdfqa-backend/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrGenerationFailed = errors.New("failed to generate answer")
	ErrNoQuestion       = errors.New("question must not be empty")
)

const (
	maxRetries     = 3
	initialBackoff = time.Second
)

// Generator produces model output for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// AnswerService handles the question-answering pipeline: embed, retrieve,
// prompt, parse.
type AnswerService struct {
	store       store.SessionStore
	embedder    embedding.Embedder
	generator   Generator
	topK        int
	temperature float64
	logger      *logrus.Logger
}

// AnswerServiceOption is a functional option for AnswerService
type AnswerServiceOption func(*AnswerService)

// AnswerWithSessionStore sets the session store
func AnswerWithSessionStore(st store.SessionStore) AnswerServiceOption {
	return func(s *AnswerService) {
		s.store = st
	}
}

// AnswerWithEmbedder sets the query embedder
func AnswerWithEmbedder(e embedding.Embedder) AnswerServiceOption {
	return func(s *AnswerService) {
		s.embedder = e
	}
}

// AnswerWithGenerator sets the LLM generator
func AnswerWithGenerator(g Generator) AnswerServiceOption {
	return func(s *AnswerService) {
		s.generator = g
	}
}

// AnswerWithTopK sets how many chunks are retrieved per question
func AnswerWithTopK(k int) AnswerServiceOption {
	return func(s *AnswerService) {
		s.topK = k
	}
}

// AnswerWithTemperature sets the generation temperature
func AnswerWithTemperature(t float64) AnswerServiceOption {
	return func(s *AnswerService) {
		s.temperature = t
	}
}

// AnswerWithLogger sets the logger
func AnswerWithLogger(l *logrus.Logger) AnswerServiceOption {
	return func(s *AnswerService) {
		s.logger = l
	}
}

// NewAnswerService creates a new answer service
func NewAnswerService(opts ...AnswerServiceOption) *AnswerService {
	s := &AnswerService{
		topK:        6,
		temperature: 0.3,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logrus.New()
	}
	return s
}

// AskRequest represents a question against a session
type AskRequest struct {
	SessionID uuid.UUID
	Question  string
}

// AskResult represents the fixed response envelope
type AskResult struct {
	Answer string `json:"answer"`
	Reason string `json:"reason"`
	Clause string `json:"clause"`
}

// Ask answers a question about the document behind a session
func (s *AnswerService) Ask(ctx context.Context, req AskRequest) (*AskResult, error) {
	if s.store == nil {
		return nil, errors.New("session store not set")
	}
	if s.embedder == nil {
		return nil, errors.New("embedder not set")
	}
	if s.generator == nil {
		return nil, errors.New("generator not set")
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, ErrNoQuestion
	}

	// Resolve the session before doing any upstream work.
	if _, err := s.store.GetSession(ctx, req.SessionID); err != nil {
		return nil, err
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	chunks, err := s.store.Search(ctx, req.SessionID, queryVec, s.topK)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(chunks, question)

	var content string
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		content, err = s.generator.Generate(ctx, prompt, s.temperature)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
			}
			continue
		}
		if content != "" {
			break
		}
		if attempt == maxRetries-1 {
			return nil, ErrGenerationFailed
		}
	}
	if content == "" {
		return nil, ErrGenerationFailed
	}

	result := parseModelOutput(content)

	s.logger.WithFields(logrus.Fields{
		"session_id": req.SessionID,
		"chunks":     len(chunks),
	}).Debug("Question answered")

	return &result, nil
}

// buildPrompt assembles the retrieved context and the question into the
// instruction that produces the {answer, reason, clause} envelope
func buildPrompt(chunks []models.DocumentChunk, question string) string {
	var contextText strings.Builder
	for _, chunk := range chunks {
		contextText.WriteString(fmt.Sprintf("[Page %d] %s\n\n", chunk.Page, chunk.Text))
	}

	return fmt.Sprintf(`You are a helpful assistant that answers questions about insurance policies based on the provided context.

Sample Query: "46M, knee surgery, Pune, 3-month policy"

Sample Response:
{
    "answer": "Yes, knee surgery is covered under the policy.",
    "reason": "",
    "clause": "Refer to page 53 and line no 40."
}

INSTRUCTIONS:
1. Keep answers VERY SHORT - just "Yes" or "No" or a brief specific answer
2. Give a reason ONLY if the request is rejected or not covered, e.g. "4-month waiting period not completed" or "It is not covered under the policy"
3. Always provide a clause reference with the page number, like "Refer to page 53 and line no 40."
4. Consider time frames and whether any waiting periods have been completed
5. Each context passage is prefixed with its page number in brackets

Return a valid JSON response with the following format:
{
    "answer": "",
    "reason": "",
    "clause": ""
}

Context:
%s
Question: %s

Answer:`, contextText.String(), question)
}

// parseModelOutput maps free-text model output into the fixed envelope.
// Markdown fences are stripped; non-JSON output falls back to the raw text
// as the answer.
func parseModelOutput(text string) AskResult {
	cleaned := strings.TrimSpace(text)

	// Strip ```json ... ``` fences if present.
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	// Tolerate prose around the JSON object.
	if start := strings.Index(cleaned, "{"); start >= 0 {
		if end := strings.LastIndex(cleaned, "}"); end > start {
			candidate := cleaned[start : end+1]
			var result AskResult
			if err := json.Unmarshal([]byte(candidate), &result); err == nil {
				return result
			}
		}
	}

	return AskResult{Answer: strings.TrimSpace(text)}
}
