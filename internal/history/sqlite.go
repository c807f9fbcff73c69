package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/crateful/unbox/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS extractions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    file_name   TEXT NOT NULL DEFAULT '',
    format      TEXT NOT NULL DEFAULT '',
    engine      TEXT NOT NULL DEFAULT '',
    entries     INTEGER NOT NULL DEFAULT 0,
    encrypted   INTEGER NOT NULL DEFAULT 0,
    outcome     TEXT NOT NULL,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL
);
`

// SQLiteHistory records extraction attempts. Only metadata is stored,
// never entry payloads.
type SQLiteHistory struct {
	mu sync.RWMutex
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLiteHistory, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteHistory{db: db}, nil
}

func (h *SQLiteHistory) Add(rec *domain.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.db.Exec(`
		INSERT INTO extractions
		(file_name, format, engine, entries, encrypted, outcome, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.FileName, string(rec.Format), rec.Engine, rec.Entries,
		boolToInt(rec.Encrypted), rec.Outcome,
		rec.Duration.Milliseconds(), rec.CreatedAt.Format(time.RFC3339))
	return err
}

func (h *SQLiteHistory) List(limit int) ([]*domain.Record, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rows, err := h.db.Query(`
		SELECT file_name, format, engine, entries, encrypted, outcome, duration_ms, created_at
		FROM extractions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*domain.Record
	for rows.Next() {
		var rec domain.Record
		var format, createdAt string
		var encrypted int
		var durationMs int64

		if err := rows.Scan(&rec.FileName, &format, &rec.Engine, &rec.Entries,
			&encrypted, &rec.Outcome, &durationMs, &createdAt); err != nil {
			return nil, err
		}

		rec.Format = domain.FormatID(format)
		rec.Encrypted = encrypted == 1
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		recs = append(recs, &rec)
	}

	return recs, rows.Err()
}

func (h *SQLiteHistory) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.db.Exec("DELETE FROM extractions")
	return err
}

func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
