package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"
)

//go:embed scripts/initdb.sql
var bootstrapFS embed.FS

// EnsureBootstrapped creates the schema on first run. The embedded SQL
// carries a placeholder for the embedding dimension so the vector column
// matches the configured model.
func EnsureBootstrapped(ctx context.Context, db *sql.DB, embedDim int) error {

	ctxBoot, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	var exists bool
	err := db.QueryRowContext(ctxBoot, `
		SELECT EXISTS (
		  SELECT 1 FROM information_schema.tables
		  WHERE table_name = 'document_chunks'
		)`).
		Scan(&exists)
	if err != nil {
		return fmt.Errorf("schema check failed: %w", err)
	}
	if exists {
		return nil
	}

	return runBootstrap(ctxBoot, db, embedDim)
}

func runBootstrap(ctx context.Context, db *sql.DB, embedDim int) error {
	sqlBytes, err := bootstrapFS.ReadFile("scripts/initdb.sql")
	if err != nil {
		return fmt.Errorf("read initdb.sql: %w", err)
	}
	script := strings.ReplaceAll(string(sqlBytes), "{{EMBED_DIM}}", fmt.Sprint(embedDim))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, script); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("exec bootstrap: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bootstrap: %w", err)
	}
	return nil
}
