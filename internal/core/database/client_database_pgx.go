package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dimsonMba/MTSU-Connect/internal/config"
	"github.com/dimsonMba/MTSU-Connect/internal/core"
	"github.com/dimsonMba/MTSU-Connect/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	sqldb, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	sqldb.SetMaxOpenConns(20)
	sqldb.SetMaxIdleConns(10)
	sqldb.SetConnMaxLifetime(30 * time.Minute)
	sqldb.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := sqldb.PingContext(pingCtx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, sqldb, cfg.EmbedDim); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: sqldb}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Documents

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents (id, title, storage_bucket, storage_path, page_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()), COALESCE($7, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.Title, doc.StorageBucket, doc.StoragePath, doc.PageCount, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return &core.PersistError{Op: "insert_document", Err: err}
	}
	return nil
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	const q = `
		SELECT id, title, storage_bucket, storage_path, page_count, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	var d models.Document
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.Title, &d.StorageBucket, &d.StoragePath, &d.PageCount, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &core.PersistError{Op: "get_document", Err: err}
	}
	return &d, nil
}

func (c *DatabaseClient) UpdateDocumentPageCount(ctx context.Context, id string, pages int) error {
	const q = `
		UPDATE documents
		SET page_count = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, pages)
	if err != nil {
		return &core.PersistError{Op: "update_page_count", Err: err}
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &core.PersistError{Op: "update_page_count", Err: fmt.Errorf("document not found: %s", id)}
	}
	return nil
}

// Document chunks

// DeleteChunksByDocument removes every chunk row for the document. Runs
// before any insert so re-ingestion never collides on (document_id,
// chunk_index).
func (c *DatabaseClient) DeleteChunksByDocument(ctx context.Context, documentID string) error {
	const q = `DELETE FROM document_chunks WHERE document_id = $1`
	if _, err := c.db.ExecContext(ctx, q, documentID); err != nil {
		return &core.PersistError{Op: "delete_chunks", Err: err}
	}
	return nil
}

// InsertDocumentChunks inserts chunks in a single transaction. Callers
// keep batches under the store's write payload limit; this method writes
// whatever it is given atomically.
func (c *DatabaseClient) InsertDocumentChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return &core.PersistError{Op: "insert_chunks", Err: err}
	}

	const q = `
		INSERT INTO document_chunks (document_id, chunk_index, content, embedding, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return &core.PersistError{Op: "insert_chunks", Err: err}
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		vec := pgvector.NewVector(ch.Embedding)

		meta, err := json.Marshal(ch.Meta)
		if err != nil {
			_ = tx.Rollback()
			return &core.PersistError{Op: "insert_chunks", Err: fmt.Errorf("marshal meta: %w", err)}
		}

		if _, err := stmt.ExecContext(ctx,
			ch.DocumentID, ch.ChunkIndex, ch.Content, vec, meta, ch.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return &core.PersistError{Op: "insert_chunks", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &core.PersistError{Op: "insert_chunks", Err: err}
	}
	return nil
}

func (c *DatabaseClient) GetChunksByDocument(ctx context.Context, documentID string) ([]models.DocumentChunk, error) {
	const q = `
		SELECT document_id, chunk_index, content, embedding, meta, created_at
		FROM document_chunks
		WHERE document_id = $1
		ORDER BY chunk_index ASC
	`
	rows, err := c.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, &core.PersistError{Op: "get_chunks", Err: err}
	}
	defer rows.Close()

	var out []models.DocumentChunk
	for rows.Next() {
		ch, err := scanChunk(rows)
		if err != nil {
			return nil, &core.PersistError{Op: "get_chunks", Err: err}
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.PersistError{Op: "get_chunks", Err: err}
	}
	return out, nil
}

// SearchDocumentChunks finds the top-k most similar chunks within a
// document for a query embedding, using cosine distance.
func (c *DatabaseClient) SearchDocumentChunks(ctx context.Context, documentID string, queryVec []float32, limit int) ([]models.ChunkMatch, error) {
	const q = `
		SELECT document_id, chunk_index, content, embedding, meta, created_at,
		       1 - (embedding <=> $2) AS similarity
		FROM document_chunks
		WHERE document_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	vec := pgvector.NewVector(queryVec)
	rows, err := c.db.QueryContext(ctx, q, documentID, vec, limit)
	if err != nil {
		return nil, &core.PersistError{Op: "search_chunks", Err: err}
	}
	defer rows.Close()

	var out []models.ChunkMatch
	for rows.Next() {
		var (
			ch   models.DocumentChunk
			emb  pgvector.Vector
			meta []byte
			sim  float64
		)
		if err := rows.Scan(&ch.DocumentID, &ch.ChunkIndex, &ch.Content, &emb, &meta, &ch.CreatedAt, &sim); err != nil {
			return nil, &core.PersistError{Op: "search_chunks", Err: err}
		}
		ch.Embedding = emb.Slice()
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &ch.Meta)
		}
		out = append(out, models.ChunkMatch{DocumentChunk: ch, Similarity: sim})
	}
	if err := rows.Err(); err != nil {
		return nil, &core.PersistError{Op: "search_chunks", Err: err}
	}
	return out, nil
}

// Flashcards

func (c *DatabaseClient) InsertFlashcards(ctx context.Context, cards []models.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return &core.PersistError{Op: "insert_flashcards", Err: err}
	}

	const q = `
		INSERT INTO flashcards (id, document_id, question, answer, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`
	for i := range cards {
		fc := &cards[i]
		if _, err := tx.ExecContext(ctx, q, fc.ID, fc.DocumentID, fc.Question, fc.Answer, fc.CreatedAt); err != nil {
			_ = tx.Rollback()
			return &core.PersistError{Op: "insert_flashcards", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &core.PersistError{Op: "insert_flashcards", Err: err}
	}
	return nil
}

func (c *DatabaseClient) ListFlashcardsByDocument(ctx context.Context, documentID string) ([]models.Flashcard, error) {
	const q = `
		SELECT id, document_id, question, answer, created_at
		FROM flashcards
		WHERE document_id = $1
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, &core.PersistError{Op: "list_flashcards", Err: err}
	}
	defer rows.Close()

	var out []models.Flashcard
	for rows.Next() {
		var fc models.Flashcard
		if err := rows.Scan(&fc.ID, &fc.DocumentID, &fc.Question, &fc.Answer, &fc.CreatedAt); err != nil {
			return nil, &core.PersistError{Op: "list_flashcards", Err: err}
		}
		out = append(out, fc)
	}
	return out, rows.Err()
}

func scanChunk(rows *sql.Rows) (models.DocumentChunk, error) {
	var (
		ch   models.DocumentChunk
		emb  pgvector.Vector
		meta []byte
	)
	if err := rows.Scan(&ch.DocumentID, &ch.ChunkIndex, &ch.Content, &emb, &meta, &ch.CreatedAt); err != nil {
		return ch, err
	}
	ch.Embedding = emb.Slice()
	if len(meta) > 0 {
		_ = json.Unmarshal(meta, &ch.Meta)
	}
	return ch, nil
}
