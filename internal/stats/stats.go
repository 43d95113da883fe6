// Package stats persists usage statistics and prompt history in SQLite.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// PromptRecord is a single committed prompt with metadata.
type PromptRecord struct {
	ID        string
	Text      string
	WordCount int
	CreatedAt time.Time
}

// Totals are the lifetime counters shown on the status line.
type Totals struct {
	Prompts int64
	Words   int64
}

// Store is a SQLite-backed stats store.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the stats database location under the XDG data dir.
func DefaultPath() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "parla", "stats.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "parla", "stats.db"), nil
}

// Open opens or creates the stats database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create stats directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open stats database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize stats schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS prompts (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		word_count INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_prompts_created_at ON prompts(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordPrompt stores a committed prompt and returns the persisted record.
func (s *Store) RecordPrompt(ctx context.Context, text string) (PromptRecord, error) {
	record := PromptRecord{
		ID:        uuid.NewString(),
		Text:      text,
		WordCount: len(strings.Fields(text)),
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prompts (id, text, word_count, created_at) VALUES (?, ?, ?, ?)`,
		record.ID, record.Text, record.WordCount, record.CreatedAt,
	)
	if err != nil {
		return PromptRecord{}, fmt.Errorf("insert prompt: %w", err)
	}
	return record, nil
}

// Totals returns lifetime prompt and word counters.
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	var totals Totals
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(word_count), 0) FROM prompts`)
	if err := row.Scan(&totals.Prompts, &totals.Words); err != nil {
		return Totals{}, fmt.Errorf("query totals: %w", err)
	}
	return totals, nil
}

// Recent returns up to limit prompts, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]PromptRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, word_count, created_at FROM prompts ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []PromptRecord
	for rows.Next() {
		var r PromptRecord
		if err := rows.Scan(&r.ID, &r.Text, &r.WordCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return records, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
