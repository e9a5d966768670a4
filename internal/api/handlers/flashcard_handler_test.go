package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimsonMba/MTSU-Connect/internal/models"
)

func chunksFixture() []models.DocumentChunk {
	return []models.DocumentChunk{
		{DocumentID: "doc1", ChunkIndex: 0, Content: "Photosynthesis converts light into chemical energy."},
		{DocumentID: "doc1", ChunkIndex: 1, Content: "Chlorophyll absorbs red and blue light."},
	}
}

func TestGenerateFlashcards_StoresParsedCards(t *testing.T) {
	var stored []models.Flashcard
	db := &mockDB{
		onGetChunks: func(ctx context.Context, documentID string) ([]models.DocumentChunk, error) {
			return chunksFixture(), nil
		},
		onInsertCards: func(ctx context.Context, cards []models.Flashcard) error {
			stored = cards
			return nil
		},
	}
	llm := &mockLLM{
		onGenerate: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "```json\n[{\"question\": \"What does photosynthesis produce?\", \"answer\": \"Chemical energy.\"}, {\"question\": \"What absorbs light?\", \"answer\": \"Chlorophyll.\"}]\n```", nil
		},
	}
	h := NewFlashcardHandler(db, llm)

	req := httptest.NewRequest(http.MethodPost, "/api/flashcards/generate", strings.NewReader(`{"document_id": "doc1", "count": 2}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok": true, "created": 2}`, rec.Body.String())

	require.Len(t, stored, 2)
	assert.Equal(t, "doc1", stored[0].DocumentID)
	assert.NotEmpty(t, stored[0].ID)
	assert.Equal(t, "What does photosynthesis produce?", stored[0].Question)
	assert.Equal(t, "Chemical energy.", stored[0].Answer)
}

func TestGenerateFlashcards_EmptyDocumentIs404(t *testing.T) {
	h := NewFlashcardHandler(&mockDB{}, &mockLLM{})

	req := httptest.NewRequest(http.MethodPost, "/api/flashcards/generate", strings.NewReader(`{"document_id": "doc1"}`))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateFlashcards_UnparseableModelOutput(t *testing.T) {
	db := &mockDB{
		onGetChunks: func(ctx context.Context, documentID string) ([]models.DocumentChunk, error) {
			return chunksFixture(), nil
		},
	}
	llm := &mockLLM{
		onGenerate: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "Sorry, I can't produce JSON today.", nil
		},
	}
	h := NewFlashcardHandler(db, llm)

	req := httptest.NewRequest(http.MethodPost, "/api/flashcards/generate", strings.NewReader(`{"document_id": "doc1"}`))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "unparseable")
}

func TestListFlashcards(t *testing.T) {
	db := &mockDB{
		onListCards: func(ctx context.Context, documentID string) ([]models.Flashcard, error) {
			assert.Equal(t, "doc1", documentID)
			return []models.Flashcard{{ID: "c1", DocumentID: "doc1", Question: "Q", Answer: "A"}}, nil
		},
	}
	h := NewFlashcardHandler(db, &mockLLM{})

	req := httptest.NewRequest(http.MethodGet, "/api/flashcards?document_id=doc1", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"question":"Q"`)
}

func TestListFlashcards_RequiresDocumentID(t *testing.T) {
	h := NewFlashcardHandler(&mockDB{}, &mockLLM{})

	req := httptest.NewRequest(http.MethodGet, "/api/flashcards", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
