package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dimsonMba/MTSU-Connect/internal/core"
	"github.com/dimsonMba/MTSU-Connect/internal/models"
)

// flashcardContextChars caps how much document text is handed to the
// model when generating cards.
const flashcardContextChars = 12000

const flashcardSystemPrompt = "You create study flashcards from course material. " +
	"Respond with a JSON array only, no prose: [{\"question\": \"...\", \"answer\": \"...\"}]"

type FlashcardHandler struct {
	dbclient core.DbClient
	llm      core.LLMProvider
}

func NewFlashcardHandler(db core.DbClient, llm core.LLMProvider) *FlashcardHandler {
	return &FlashcardHandler{dbclient: db, llm: llm}
}

type GenerateFlashcardsRequest struct {
	DocumentID string `json:"document_id"`
	Count      int    `json:"count"`
}

type generatedCard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (h *FlashcardHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req GenerateFlashcardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}
	if strings.TrimSpace(req.DocumentID) == "" {
		respondError(w, http.StatusBadRequest, "document_id is required", "")
		return
	}
	count := req.Count
	if count <= 0 || count > 50 {
		count = 10
	}

	chunks, err := h.dbclient.GetChunksByDocument(ctx, req.DocumentID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not load document content", err.Error())
		return
	}
	if len(chunks) == 0 {
		respondError(w, http.StatusNotFound, "document has no ingested content", "")
		return
	}

	var sb strings.Builder
	for _, ch := range chunks {
		if sb.Len() >= flashcardContextChars {
			break
		}
		sb.WriteString(ch.Content)
		sb.WriteString("\n")
	}

	userPrompt := fmt.Sprintf("Create %d flashcards from this material:\n\n%s", count, sb.String())
	raw, err := h.llm.Generate(ctx, flashcardSystemPrompt, userPrompt)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "generation failed", err.Error())
		return
	}

	parsed, err := parseCardJSON(raw)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "model returned unparseable flashcards", err.Error())
		return
	}

	now := time.Now()
	cards := make([]models.Flashcard, 0, len(parsed))
	for _, c := range parsed {
		if strings.TrimSpace(c.Question) == "" || strings.TrimSpace(c.Answer) == "" {
			continue
		}
		cards = append(cards, models.Flashcard{
			ID:         uuid.NewString(),
			DocumentID: req.DocumentID,
			Question:   c.Question,
			Answer:     c.Answer,
			CreatedAt:  now,
		})
	}
	if len(cards) == 0 {
		respondError(w, http.StatusInternalServerError, "model returned no usable flashcards", "")
		return
	}

	if err := h.dbclient.InsertFlashcards(ctx, cards); err != nil {
		respondError(w, http.StatusInternalServerError, "could not store flashcards", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "created": len(cards)})
}

func (h *FlashcardHandler) List(w http.ResponseWriter, r *http.Request) {
	documentID := strings.TrimSpace(r.URL.Query().Get("document_id"))
	if documentID == "" {
		respondError(w, http.StatusBadRequest, "document_id query parameter is required", "")
		return
	}

	cards, err := h.dbclient.ListFlashcardsByDocument(r.Context(), documentID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not list flashcards", err.Error())
		return
	}
	if cards == nil {
		cards = []models.Flashcard{}
	}

	respondJSON(w, http.StatusOK, cards)
}

// parseCardJSON tolerates the model wrapping its JSON in markdown fences.
func parseCardJSON(raw string) ([]generatedCard, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	var cards []generatedCard
	if err := json.Unmarshal([]byte(s), &cards); err != nil {
		return nil, err
	}
	return cards, nil
}
