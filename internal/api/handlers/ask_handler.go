package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dimsonMba/MTSU-Connect/internal/core"
)

// inScopeThreshold is the minimum cosine similarity of the best match
// before the question is considered answerable from the document.
const inScopeThreshold = 0.25

const askSystemPrompt = "You are a study assistant answering based only on the given document content. " +
	"If the answer is not in the context, say 'I cannot find this in the document.'"

type AskHandler struct {
	dbclient core.DbClient
	embedder core.EmbeddingProvider
	llm      core.LLMProvider
}

func NewAskHandler(db core.DbClient, emb core.EmbeddingProvider, llm core.LLMProvider) *AskHandler {
	return &AskHandler{dbclient: db, embedder: emb, llm: llm}
}

type AskRequest struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
}

type askSource struct {
	ChunkIndex int     `json:"chunk_index"`
	Similarity float64 `json:"similarity"`
}

type askResponse struct {
	Answer        string      `json:"answer"`
	InScope       bool        `json:"in_scope"`
	TopSimilarity float64     `json:"top_similarity"`
	Sources       []askSource `json:"sources"`
}

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}
	if strings.TrimSpace(req.DocumentID) == "" || strings.TrimSpace(req.Question) == "" {
		respondError(w, http.StatusBadRequest, "document_id and question are required", "")
		return
	}

	doc, err := h.dbclient.GetDocumentByID(ctx, req.DocumentID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "document lookup failed", err.Error())
		return
	}
	if doc == nil {
		respondError(w, http.StatusNotFound, "document not found", "")
		return
	}

	vecs, err := h.embedder.EmbedBatch(ctx, []string{req.Question})
	if err != nil || len(vecs) == 0 {
		respondError(w, http.StatusInternalServerError, "embedding failed", fmt.Sprintf("%v", err))
		return
	}

	matches, err := h.dbclient.SearchDocumentChunks(ctx, req.DocumentID, vecs[0], 5)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "search failed", err.Error())
		return
	}

	resp := askResponse{Sources: []askSource{}}
	for _, m := range matches {
		resp.Sources = append(resp.Sources, askSource{ChunkIndex: m.ChunkIndex, Similarity: m.Similarity})
	}
	if len(matches) > 0 {
		resp.TopSimilarity = matches[0].Similarity
	}
	resp.InScope = len(matches) > 0 && resp.TopSimilarity >= inScopeThreshold

	if !resp.InScope {
		resp.Answer = "I cannot find this in the document."
		respondJSON(w, http.StatusOK, resp)
		return
	}

	var sb strings.Builder
	for _, m := range matches {
		sb.WriteString(m.Content)
		sb.WriteString("\n---\n")
	}
	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", sb.String(), req.Question)

	answer, err := h.llm.Generate(ctx, askSystemPrompt, userPrompt)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "generation failed", err.Error())
		return
	}
	resp.Answer = answer

	respondJSON(w, http.StatusOK, resp)
}
