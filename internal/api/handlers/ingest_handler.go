package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dimsonMba/MTSU-Connect/internal/core"
	"github.com/dimsonMba/MTSU-Connect/internal/core/ingestion"
	"github.com/dimsonMba/MTSU-Connect/internal/metrics"
)

const maxUploadBytes = 52 << 20

// Ingestor is the slice of the ingestion pipeline the HTTP layer needs.
type Ingestor interface {
	Ingest(ctx context.Context, documentID string, src ingestion.Source) (*ingestion.Result, error)
}

type IngestHandler struct {
	ingestor Ingestor
}

func NewIngestHandler(ing Ingestor) *IngestHandler {
	return &IngestHandler{ingestor: ing}
}

type ingestJSONRequest struct {
	DocumentID string `json:"document_id"`
	Text       string `json:"text"`
}

// Ingest accepts three request shapes on the same route: a JSON body,
// a multipart form (text field or file upload), or any other body read
// verbatim as plain text. The document id may ride in the body, the
// form, or the ?document_id query parameter.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	ctx := r.Context()

	documentID := strings.TrimSpace(r.URL.Query().Get("document_id"))

	var src ingestion.Source
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case contentType == "application/json":
		var req ingestJSONRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metrics.RecordIngestRun("bad_request", started)
			respondError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
			return
		}
		if id := strings.TrimSpace(req.DocumentID); id != "" {
			documentID = id
		}
		if strings.TrimSpace(req.Text) != "" {
			src = ingestion.InlineText{Text: req.Text, Origin: ingestion.SourceJSON}
		} else {
			src = ingestion.StoredDocumentRef{}
		}

	case strings.HasPrefix(contentType, "multipart/"):
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			metrics.RecordIngestRun("bad_request", started)
			respondError(w, http.StatusBadRequest, "invalid multipart form", err.Error())
			return
		}
		if id := strings.TrimSpace(r.FormValue("document_id")); id != "" {
			documentID = id
		}

		if text := r.FormValue("text"); strings.TrimSpace(text) != "" {
			src = ingestion.InlineText{Text: text, Origin: ingestion.SourceMultipart}
		} else if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				metrics.RecordIngestRun("bad_request", started)
				respondError(w, http.StatusBadRequest, "could not read uploaded file", err.Error())
				return
			}
			src = ingestion.UploadedFile{
				Data:     data,
				Filename: header.Filename,
				Mime:     header.Header.Get("Content-Type"),
			}
		} else {
			src = ingestion.StoredDocumentRef{}
		}

	default:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
		if err != nil {
			metrics.RecordIngestRun("bad_request", started)
			respondError(w, http.StatusBadRequest, "could not read request body", err.Error())
			return
		}
		src = ingestion.InlineText{Text: string(body), Origin: ingestion.SourceText}
	}

	res, err := h.ingestor.Ingest(ctx, documentID, src)
	if err != nil {
		h.writeIngestError(w, err, started)
		return
	}

	if res.Staged {
		metrics.RecordIngestRun("staged", started)
		respondJSON(w, http.StatusOK, map[string]any{
			"ok":           true,
			"stage":        "uploaded",
			"document_id":  res.DocumentID,
			"storage_path": res.StoragePath,
			"next":         "POST /api/ingest with {\"document_id\": \"...\"} to extract and index the stored file",
		})
		return
	}

	metrics.RecordIngestRun("ok", started)
	respondJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"document_id": res.DocumentID,
		"chunks":      res.Chunks,
	})
}

func (h *IngestHandler) writeIngestError(w http.ResponseWriter, err error, started time.Time) {
	var inputErr *core.InputError
	if errors.As(err, &inputErr) {
		metrics.RecordIngestRun("bad_request", started)
		respondError(w, http.StatusBadRequest, inputErr.Msg, inputErr.Hint)
		return
	}

	log.Printf("ingestion failed: %v", err)
	metrics.RecordIngestRun("error", started)

	var upErr *core.UpstreamError
	if errors.As(err, &upErr) {
		respondError(w, http.StatusInternalServerError, "ingestion failed", upErr.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "ingestion failed", err.Error())
}
