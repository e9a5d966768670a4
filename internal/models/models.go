package models

import (
	"time"
)

// Document represents an uploaded study document (usually a PDF).
type Document struct {
	ID            string    `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	StorageBucket string    `db:"storage_bucket" json:"storage_bucket"`
	StoragePath   string    `db:"storage_path" json:"storage_path"`
	PageCount     int       `db:"page_count" json:"page_count"` // 0 until ingestion estimates it
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentChunk is one embedded text chunk of a document.
// (document_id, chunk_index) is unique; ingestion replaces the full set.
type DocumentChunk struct {
	DocumentID string         `db:"document_id" json:"document_id"`
	ChunkIndex int            `db:"chunk_index" json:"chunk_index"`
	Content    string         `db:"content" json:"content"`
	Embedding  []float32      `db:"embedding" json:"embedding"` // pgvector column
	Meta       map[string]any `db:"meta" json:"meta"`           // provenance bag
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// ChunkMatch is a chunk returned by similarity search.
type ChunkMatch struct {
	DocumentChunk
	Similarity float64 `json:"similarity"`
}

// Flashcard is one generated question/answer pair for a document.
type Flashcard struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	Question   string    `db:"question" json:"question"`
	Answer     string    `db:"answer" json:"answer"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
