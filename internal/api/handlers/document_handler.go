package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dimsonMba/MTSU-Connect/internal/core"
	"github.com/dimsonMba/MTSU-Connect/internal/models"
)

type DocumentHandler struct {
	dbclient core.DbClient
}

func NewDocumentHandler(db core.DbClient) *DocumentHandler {
	return &DocumentHandler{dbclient: db}
}

type CreateDocumentRequest struct {
	Title         string `json:"title"`
	StorageBucket string `json:"storage_bucket"`
	StoragePath   string `json:"storage_path"`
}

// CreateDocument registers a document row. Content arrives later via
// /api/ingest, either inline or as a staged upload.
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		respondError(w, http.StatusBadRequest, "title is required", "")
		return
	}

	now := time.Now()
	doc := &models.Document{
		ID:            uuid.NewString(),
		Title:         req.Title,
		StorageBucket: req.StorageBucket,
		StoragePath:   req.StoragePath,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.dbclient.CreateDocument(r.Context(), doc); err != nil {
		respondError(w, http.StatusInternalServerError, "could not store document", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.dbclient.GetDocumentByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "document lookup failed", err.Error())
		return
	}
	if doc == nil {
		respondError(w, http.StatusNotFound, "document not found", "")
		return
	}

	respondJSON(w, http.StatusOK, doc)
}
