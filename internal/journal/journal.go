// Package journal keeps a local sqlite record of scan attempts, including
// the raw recognised text, for later diagnosis.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"notesfrais/internal/core"
	applog "notesfrais/internal/log"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Journal implements ports.ScanRecorder on sqlite.
type Journal struct {
	db     *sql.DB
	logger *applog.Logger
}

// Open creates the database file if needed and applies migrations.
func Open(dbPath string, logger *applog.Logger) (*Journal, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db, logger: logger.WithComponent(applog.ComponentJournal)}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// RecordScan stores one attempt.
func (j *Journal) RecordScan(ctx context.Context, e core.ScanEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO scan_journal (id, file_name, outcome, message, applied, raw_text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.FileName, e.Outcome, e.Message, strings.Join(e.Applied, ","), e.RawText,
		e.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert scan entry: %w", err)
	}

	j.logger.DebugContext(ctx, "Scan journaled",
		applog.FieldOperation, applog.OpRecord,
		"id", e.ID,
		applog.FieldOutcome, e.Outcome)
	return nil
}

// Recent returns up to limit entries, newest first. An outcome filter of ""
// matches everything.
func (j *Journal) Recent(ctx context.Context, limit int, outcome string) ([]core.ScanEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, file_name, outcome, message, applied, raw_text, created_at
		 FROM scan_journal
		 WHERE (? = '' OR outcome = ?)
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, outcome, outcome, limit)
	if err != nil {
		return nil, fmt.Errorf("query scan journal: %w", err)
	}
	defer rows.Close()

	var out []core.ScanEntry
	for rows.Next() {
		var (
			e                core.ScanEntry
			applied, created string
		)
		if err := rows.Scan(&e.ID, &e.FileName, &e.Outcome, &e.Message, &applied, &e.RawText, &created); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		if applied != "" {
			e.Applied = strings.Split(applied, ",")
		}
		if t, err := time.Parse(timeLayout, created); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan journal: %w", err)
	}
	return out, nil
}
