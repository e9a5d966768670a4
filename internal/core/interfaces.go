package core

import (
	"context"
	"io"

	"github.com/dimsonMba/MTSU-Connect/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	UpdateDocumentPageCount(ctx context.Context, id string, pages int) error

	DeleteChunksByDocument(ctx context.Context, documentID string) error
	InsertDocumentChunks(ctx context.Context, chunks []models.DocumentChunk) error
	GetChunksByDocument(ctx context.Context, documentID string) ([]models.DocumentChunk, error)
	SearchDocumentChunks(ctx context.Context, documentID string, queryVec []float32, limit int) ([]models.ChunkMatch, error)

	InsertFlashcards(ctx context.Context, cards []models.Flashcard) error
	ListFlashcardsByDocument(ctx context.Context, documentID string) ([]models.Flashcard, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
	DeleteFile(ctx context.Context, bucket, key string) error

	GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// EmbeddingProvider turns a batch of texts into vectors, one network call
// per invocation. Output has the same length and order as the input; the
// call either embeds every text or fails as a whole.
type EmbeddingProvider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider generates chat/completion responses for the ask and
// flashcard features.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
