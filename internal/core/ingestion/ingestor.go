package ingestion

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dimsonMba/MTSU-Connect/internal/core"
	"github.com/dimsonMba/MTSU-Connect/internal/core/pdfextract"
	"github.com/dimsonMba/MTSU-Connect/internal/metrics"
	"github.com/dimsonMba/MTSU-Connect/internal/models"
)

// Config tunes the ingestion pipeline.
//
// MaxChunkChars:   upper bound on chunk length (default 1600).
// ChunkOverlap:    characters repeated between adjacent chunks (default 200).
// EmbedBatchSize:  max texts per embedding call, bounded by the endpoint's
//                  payload/token limits (default 64).
// InsertBatchSize: max rows per store insert, bounded by the store's write
//                  payload limit (default 200).
type Config struct {
	MaxChunkChars   int
	ChunkOverlap    int
	EmbedBatchSize  int
	InsertBatchSize int
}

func (c *Config) withDefaults() Config {
	out := Config{
		MaxChunkChars:   DefaultChunkMaxChars,
		ChunkOverlap:    DefaultChunkOverlap,
		EmbedBatchSize:  64,
		InsertBatchSize: 200,
	}
	if c == nil {
		return out
	}
	if c.MaxChunkChars > 0 {
		out.MaxChunkChars = c.MaxChunkChars
	}
	if c.ChunkOverlap >= 0 {
		out.ChunkOverlap = c.ChunkOverlap
	}
	if c.EmbedBatchSize > 0 {
		out.EmbedBatchSize = c.EmbedBatchSize
	}
	if c.InsertBatchSize > 0 {
		out.InsertBatchSize = c.InsertBatchSize
	}
	return out
}

// Ingestor runs the extract → chunk → embed → persist pipeline for one
// document per call. Re-ingestion is idempotent: every run deletes the
// document's existing chunk rows before inserting the new set, so a
// failed run can always be retried from scratch.
type Ingestor struct {
	db       core.DbClient
	obj      core.ObjectClient
	embedder core.EmbeddingProvider
	bucket   string
	cfg      Config

	// Serializes runs per document id; two concurrent ingestions of the
	// same document would interleave delete and insert.
	locks sync.Map
}

func NewIngestor(db core.DbClient, obj core.ObjectClient, emb core.EmbeddingProvider, bucket string, cfg *Config) *Ingestor {
	return &Ingestor{
		db:       db,
		obj:      obj,
		embedder: emb,
		bucket:   bucket,
		cfg:      cfg.withDefaults(),
	}
}

// Ingest resolves the source to text and replaces the document's chunk
// rows. UploadedFile sources are staged in object storage and returned
// early without chunking.
func (ing *Ingestor) Ingest(ctx context.Context, documentID string, src Source) (*Result, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, &core.InputError{
			Msg:  "missing document_id",
			Hint: "send document_id in the JSON body, a form field, or the query string",
		}
	}

	meta := map[string]any{}
	var text string

	switch s := src.(type) {
	case InlineText:
		text = s.Text
		meta["source"] = s.Origin

	case UploadedFile:
		return ing.stageUpload(ctx, documentID, s)

	case StoredDocumentRef:
		resolved, err := ing.resolveStored(ctx, documentID, meta)
		if err != nil {
			return nil, err
		}
		text = resolved

	default:
		return nil, &core.InputError{
			Msg:  "no text provided",
			Hint: "send text inline, upload a file, or ensure the document has a storage path on record",
		}
	}

	return ing.processText(ctx, documentID, text, meta)
}

// stageUpload writes the raw bytes to object storage under
// {document_id}/{filename} and defers extraction to a later call.
func (ing *Ingestor) stageUpload(ctx context.Context, documentID string, s UploadedFile) (*Result, error) {
	safeName := filepath.Base(s.Filename)
	if safeName == "" || safeName == "." || safeName == "/" {
		safeName = "upload-" + uuid.NewString()
	}
	contentType := s.Mime
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := documentID + "/" + safeName
	if _, err := ing.obj.UploadFile(ctx, ing.bucket, key, s.Data, contentType); err != nil {
		return nil, err
	}

	log.Printf("ingestion: staged %d bytes at %s/%s for document %s", len(s.Data), ing.bucket, key, documentID)
	return &Result{DocumentID: documentID, Staged: true, StoragePath: key}, nil
}

// resolveStored downloads the document's recorded object, updates the
// page-count estimate, and extracts text, falling back to a title label
// when the heuristics come up empty.
func (ing *Ingestor) resolveStored(ctx context.Context, documentID string, meta map[string]any) (string, error) {
	doc, err := ing.db.GetDocumentByID(ctx, documentID)
	if err != nil {
		return "", err
	}
	if doc == nil || doc.StoragePath == "" {
		return "", &core.InputError{
			Msg:  "no text provided and document has no storage path",
			Hint: "send {document_id, text} or upload the file first",
		}
	}

	bucket := doc.StorageBucket
	if bucket == "" {
		bucket = ing.bucket
	}
	data, err := ing.obj.GetFile(ctx, bucket, doc.StoragePath)
	if err != nil {
		return "", err
	}

	// Page-count side effect. 0 means unknown and must not clobber a
	// previously stored estimate; update failures only warn.
	if pages := pdfextract.EstimatePageCount(data); pages >= 1 {
		if err := ing.db.UpdateDocumentPageCount(ctx, documentID, pages); err != nil {
			log.Printf("ingestion: failed to update page_count for %s: %v", documentID, err)
		} else {
			meta["page_count"] = pages
		}
	}

	text, mode := pdfextract.ExtractText(data)
	if strings.TrimSpace(text) == "" {
		label := doc.Title
		if label == "" {
			label = doc.StoragePath
		}
		text = "Document: " + label
		log.Printf("ingestion: could not extract text from %s, using fallback %q", doc.StoragePath, text)
	}

	meta["source"] = SourceStoragePDF
	meta["storage_path"] = doc.StoragePath
	meta["extraction"] = mode.String()
	meta["extracted_length"] = len(text)
	return text, nil
}

// processText is the destructive half of the pipeline: normalize, clear
// prior chunks, chunk, embed in batches, insert in batches.
func (ing *Ingestor) processText(ctx context.Context, documentID, text string, meta map[string]any) (*Result, error) {
	text = NormalizeText(text)
	if text == "" {
		// Nothing to ingest. Leaving any prior chunk set untouched beats
		// replacing it with nothing.
		return &Result{DocumentID: documentID, Chunks: 0}, nil
	}

	mu := ing.lockFor(documentID)
	mu.Lock()
	defer mu.Unlock()

	// The delete must land before any insert; aborting here keeps the
	// prior chunk set intact rather than risking a mixed state.
	if err := ing.db.DeleteChunksByDocument(ctx, documentID); err != nil {
		return nil, err
	}

	chunks := ChunkText(text, ing.cfg.MaxChunkChars, ing.cfg.ChunkOverlap)
	meta["ingest"] = "ingest_text"

	rows := make([]models.DocumentChunk, 0, len(chunks))
	for start := 0; start < len(chunks); start += ing.cfg.EmbedBatchSize {
		end := min(start+ing.cfg.EmbedBatchSize, len(chunks))
		slice := chunks[start:end]

		vectors, err := ing.embedder.EmbedBatch(ctx, slice)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(slice) {
			return nil, &core.UpstreamError{
				Service: "embeddings",
				Err:     fmt.Errorf("batch returned %d vectors for %d texts", len(vectors), len(slice)),
			}
		}
		metrics.IncrementEmbeddingBatches()

		for i, content := range slice {
			rows = append(rows, models.DocumentChunk{
				DocumentID: documentID,
				ChunkIndex: start + i,
				Content:    content,
				Embedding:  vectors[i],
				Meta:       meta,
			})
		}
	}

	for start := 0; start < len(rows); start += ing.cfg.InsertBatchSize {
		end := min(start+ing.cfg.InsertBatchSize, len(rows))
		if err := ing.db.InsertDocumentChunks(ctx, rows[start:end]); err != nil {
			return nil, err
		}
	}

	metrics.AddChunksIngested(len(chunks))
	log.Printf("ingestion: document %s ingested with %d chunks", documentID, len(chunks))
	return &Result{DocumentID: documentID, Chunks: len(chunks)}, nil
}

func (ing *Ingestor) lockFor(id string) *sync.Mutex {
	v, _ := ing.locks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}
