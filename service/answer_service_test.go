package service

import (
	"context"
	"errors"
	"testing"

	"pdfqa-backend/models"
	"pdfqa-backend/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vec []float64
	err error
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = f.vec
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEmbedder) Dimension() int { return len(f.vec) }

type fakeGenerator struct {
	output   string
	err      error
	failures int
	calls    int
	prompts  []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if f.calls <= f.failures {
		return "", errors.New("transient error")
	}
	return f.output, nil
}

func seedSession(t *testing.T, st store.SessionStore) uuid.UUID {
	t.Helper()
	sessionID := uuid.New()
	session := &models.Session{
		ID:         sessionID,
		Filename:   "policy.pdf",
		Pages:      2,
		ChunkCount: 2,
	}
	chunks := []models.DocumentChunk{
		{SessionID: sessionID, Index: 0, Page: 1, Text: "Knee surgery is covered.", Embedding: []float64{1, 0}},
		{SessionID: sessionID, Index: 1, Page: 2, Text: "Waiting period is four months.", Embedding: []float64{0, 1}},
	}
	require.NoError(t, st.CreateSession(context.Background(), session, chunks))
	return sessionID
}

func TestAskReturnsParsedEnvelope(t *testing.T) {
	st := store.NewMemoryStore(0, 0)
	defer st.Close()
	sessionID := seedSession(t, st)

	gen := &fakeGenerator{output: `{"answer": "Yes", "reason": "", "clause": "Refer to page 1 and line no 3."}`}
	svc := NewAnswerService(
		AnswerWithSessionStore(st),
		AnswerWithEmbedder(&fakeEmbedder{vec: []float64{1, 0}}),
		AnswerWithGenerator(gen),
		AnswerWithTopK(2),
	)

	result, err := svc.Ask(context.Background(), AskRequest{SessionID: sessionID, Question: "Is knee surgery covered?"})
	require.NoError(t, err)
	assert.Equal(t, "Yes", result.Answer)
	assert.Empty(t, result.Reason)
	assert.Equal(t, "Refer to page 1 and line no 3.", result.Clause)
}

func TestAskUnknownSession(t *testing.T) {
	st := store.NewMemoryStore(0, 0)
	defer st.Close()

	svc := NewAnswerService(
		AnswerWithSessionStore(st),
		AnswerWithEmbedder(&fakeEmbedder{vec: []float64{1, 0}}),
		AnswerWithGenerator(&fakeGenerator{output: "irrelevant"}),
	)

	_, err := svc.Ask(context.Background(), AskRequest{SessionID: uuid.New(), Question: "anything"})
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestAskEmptyQuestion(t *testing.T) {
	st := store.NewMemoryStore(0, 0)
	defer st.Close()
	sessionID := seedSession(t, st)

	svc := NewAnswerService(
		AnswerWithSessionStore(st),
		AnswerWithEmbedder(&fakeEmbedder{vec: []float64{1, 0}}),
		AnswerWithGenerator(&fakeGenerator{output: "irrelevant"}),
	)

	_, err := svc.Ask(context.Background(), AskRequest{SessionID: sessionID, Question: "   "})
	assert.ErrorIs(t, err, ErrNoQuestion)
}

func TestAskRetriesTransientFailures(t *testing.T) {
	st := store.NewMemoryStore(0, 0)
	defer st.Close()
	sessionID := seedSession(t, st)

	gen := &fakeGenerator{output: `{"answer": "No", "reason": "Not covered", "clause": "Refer to page 2."}`, failures: 2}
	svc := NewAnswerService(
		AnswerWithSessionStore(st),
		AnswerWithEmbedder(&fakeEmbedder{vec: []float64{0, 1}}),
		AnswerWithGenerator(gen),
	)

	result, err := svc.Ask(context.Background(), AskRequest{SessionID: sessionID, Question: "Is it covered?"})
	require.NoError(t, err)
	assert.Equal(t, 3, gen.calls)
	assert.Equal(t, "No", result.Answer)
	assert.Equal(t, "Not covered", result.Reason)
}

func TestAskPromptContainsContextAndQuestion(t *testing.T) {
	st := store.NewMemoryStore(0, 0)
	defer st.Close()
	sessionID := seedSession(t, st)

	gen := &fakeGenerator{output: `{"answer": "Yes", "reason": "", "clause": ""}`}
	svc := NewAnswerService(
		AnswerWithSessionStore(st),
		AnswerWithEmbedder(&fakeEmbedder{vec: []float64{1, 0}}),
		AnswerWithGenerator(gen),
		AnswerWithTopK(1),
	)

	_, err := svc.Ask(context.Background(), AskRequest{SessionID: sessionID, Question: "Is knee surgery covered?"})
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "[Page 1] Knee surgery is covered.")
	assert.NotContains(t, gen.prompts[0], "Waiting period")
	assert.Contains(t, gen.prompts[0], "Question: Is knee surgery covered?")
}

func TestParseModelOutput(t *testing.T) {
	tests := []struct {
		name string
		text string
		want AskResult
	}{
		{
			name: "clean JSON",
			text: `{"answer": "Yes", "reason": "", "clause": "Refer to page 5."}`,
			want: AskResult{Answer: "Yes", Clause: "Refer to page 5."},
		},
		{
			name: "fenced JSON",
			text: "```json\n{\"answer\": \"No\", \"reason\": \"Waiting period\", \"clause\": \"Page 12\"}\n```",
			want: AskResult{Answer: "No", Reason: "Waiting period", Clause: "Page 12"},
		},
		{
			name: "JSON surrounded by prose",
			text: "Here is the result:\n{\"answer\": \"Yes\", \"reason\": \"\", \"clause\": \"Page 3\"}\nHope that helps.",
			want: AskResult{Answer: "Yes", Clause: "Page 3"},
		},
		{
			name: "plain text fallback",
			text: "The policy covers knee surgery.",
			want: AskResult{Answer: "The policy covers knee surgery."},
		},
		{
			name: "malformed JSON falls back to raw text",
			text: `{"answer": "Yes", "reason":`,
			want: AskResult{Answer: `{"answer": "Yes", "reason":`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseModelOutput(tt.text))
		})
	}
}
