// Package storage persists built chunks to SQLite so individual chunks can be
// inspected without holding the corpus in memory.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// ChunkStore persists the chunks of the latest corpus snapshot.
type ChunkStore struct {
	db *sql.DB
}

// NewChunkStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewChunkStore(dbPath string) (*ChunkStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &ChunkStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		doc_id TEXT NOT NULL,
		title TEXT,
		text TEXT NOT NULL,
		source TEXT NOT NULL,
		doc_type TEXT,
		section TEXT,
		tags TEXT,
		version TEXT,
		last_updated TIMESTAMP,
		status TEXT,
		ord INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks(doc_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
	`
	_, err := db.Exec(schema)
	return err
}

// ReplaceAll swaps the stored chunk set for the given one in a single
// transaction, matching the snapshot swap semantics of the in-memory indexes.
func (s *ChunkStore) ReplaceAll(ctx context.Context, chunks []*models.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, doc_id, title, text, source, doc_type, section, tags, version, last_updated, status, ord)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		tagsJSON, err := json.Marshal(c.Tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags for %s: %w", c.ID, err)
		}
		var lastUpdated any
		if !c.LastUpdated.IsZero() {
			lastUpdated = c.LastUpdated.UTC()
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.DocID, c.Title, c.Text, string(c.Source), c.DocType,
			c.Section, string(tagsJSON), c.Version, lastUpdated, string(c.Status), i,
		); err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// GetChunk returns one chunk by id, or sql.ErrNoRows if absent.
func (s *ChunkStore) GetChunk(ctx context.Context, id string) (*models.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, doc_id, title, text, source, doc_type, section, tags, version, last_updated, status
		FROM chunks WHERE id = ?`, id)
	return scanChunk(row)
}

// ListChunks returns chunks in build order, paginated.
func (s *ChunkStore) ListChunks(ctx context.Context, limit, offset int) ([]*models.Chunk, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, doc_id, title, text, source, doc_type, section, tags, version, last_updated, status
		FROM chunks ORDER BY ord LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	defer rows.Close()

	var out []*models.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountChunks returns the number of stored chunks.
func (s *ChunkStore) CountChunks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *ChunkStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner) (*models.Chunk, error) {
	var (
		c           models.Chunk
		source      string
		status      string
		tagsJSON    string
		lastUpdated sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.DocID, &c.Title, &c.Text, &source, &c.DocType,
		&c.Section, &tagsJSON, &c.Version, &lastUpdated, &status); err != nil {
		return nil, err
	}
	c.Source = models.Source(source)
	c.Status = models.TicketStatus(status)
	if lastUpdated.Valid {
		c.LastUpdated = lastUpdated.Time
	}
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &c.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags for %s: %w", c.ID, err)
		}
	}
	return &c, nil
}

// DiskUsageBytes reports the size of the database file, ignoring WAL
// sidecars. Zero when the file does not exist yet.
func DiskUsageBytes(dbPath string) int64 {
	info, err := os.Stat(dbPath)
	if err != nil {
		return 0
	}
	return info.Size()
}
