package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimsonMba/MTSU-Connect/internal/core"
	"github.com/dimsonMba/MTSU-Connect/internal/core/ingestion"
)

type mockIngestor struct {
	onIngest func(ctx context.Context, documentID string, src ingestion.Source) (*ingestion.Result, error)
}

func (m *mockIngestor) Ingest(ctx context.Context, documentID string, src ingestion.Source) (*ingestion.Result, error) {
	return m.onIngest(ctx, documentID, src)
}

func TestIngest_JSONBody(t *testing.T) {
	var gotID string
	var gotSrc ingestion.Source
	h := NewIngestHandler(&mockIngestor{
		onIngest: func(ctx context.Context, documentID string, src ingestion.Source) (*ingestion.Result, error) {
			gotID, gotSrc = documentID, src
			return &ingestion.Result{DocumentID: documentID, Chunks: 2}, nil
		},
	})

	body := `{"document_id": "doc1", "text": "hello world"}`
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Ingest(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "doc1", gotID)
	inline, ok := gotSrc.(ingestion.InlineText)
	require.True(t, ok)
	assert.Equal(t, "hello world", inline.Text)
	assert.Equal(t, ingestion.SourceJSON, inline.Origin)
	assert.JSONEq(t, `{"ok": true, "document_id": "doc1", "chunks": 2}`, rec.Body.String())
}

func TestIngest_JSONWithoutTextUsesStoredDocument(t *testing.T) {
	var gotSrc ingestion.Source
	h := NewIngestHandler(&mockIngestor{
		onIngest: func(ctx context.Context, documentID string, src ingestion.Source) (*ingestion.Result, error) {
			gotSrc = src
			return &ingestion.Result{DocumentID: documentID, Chunks: 4}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(`{"document_id": "doc1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Ingest(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	_, ok := gotSrc.(ingestion.StoredDocumentRef)
	assert.True(t, ok)
}

func TestIngest_MultipartFileStagesUpload(t *testing.T) {
	var gotID string
	var gotSrc ingestion.Source
	h := NewIngestHandler(&mockIngestor{
		onIngest: func(ctx context.Context, documentID string, src ingestion.Source) (*ingestion.Result, error) {
			gotID, gotSrc = documentID, src
			return &ingestion.Result{DocumentID: documentID, Staged: true, StoragePath: documentID + "/notes.pdf"}, nil
		},
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("document_id", "doc1"))
	fw, err := mw.CreateFormFile("file", "notes.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h.Ingest(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "doc1", gotID)
	up, ok := gotSrc.(ingestion.UploadedFile)
	require.True(t, ok)
	assert.Equal(t, "notes.pdf", up.Filename)
	assert.Equal(t, []byte("%PDF-1.4 fake"), up.Data)
	assert.Contains(t, rec.Body.String(), `"stage":"uploaded"`)
	assert.Contains(t, rec.Body.String(), `"storage_path":"doc1/notes.pdf"`)
}

func TestIngest_RawBodyTreatedAsText(t *testing.T) {
	var gotID string
	var gotSrc ingestion.Source
	h := NewIngestHandler(&mockIngestor{
		onIngest: func(ctx context.Context, documentID string, src ingestion.Source) (*ingestion.Result, error) {
			gotID, gotSrc = documentID, src
			return &ingestion.Result{DocumentID: documentID, Chunks: 1}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ingest?document_id=doc9", strings.NewReader("plain lecture notes"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()

	h.Ingest(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "doc9", gotID)
	inline, ok := gotSrc.(ingestion.InlineText)
	require.True(t, ok)
	assert.Equal(t, "plain lecture notes", inline.Text)
	assert.Equal(t, ingestion.SourceText, inline.Origin)
}

func TestIngest_InputErrorMapsTo400(t *testing.T) {
	h := NewIngestHandler(&mockIngestor{
		onIngest: func(ctx context.Context, documentID string, src ingestion.Source) (*ingestion.Result, error) {
			return nil, &core.InputError{Msg: "document_id required", Hint: "pass document_id in the body or query"}
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(`{"text": "hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Ingest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "document_id required")
}

func TestIngest_UpstreamErrorMapsTo500(t *testing.T) {
	h := NewIngestHandler(&mockIngestor{
		onIngest: func(ctx context.Context, documentID string, src ingestion.Source) (*ingestion.Result, error) {
			return nil, &core.UpstreamError{Service: "embeddings", Status: 429, Body: "slow down", Err: errors.New("rate limited")}
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(`{"document_id": "doc1", "text": "hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Ingest(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "ingestion failed")
}
