// Package journal keeps a SQLite log of render cycles. It stores what
// happened during a render, never the aggregates it produced.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"paydash/internal/core"
	applog "paydash/internal/log"
)

// Fixed width so rendered_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DefaultLimit caps Recent when the caller passes a non-positive limit.
const DefaultLimit = 50

type SQLiteJournal struct {
	db     *sql.DB
	logger *applog.Logger
}

// Open creates the database directory when needed, applies migrations
// and returns a ready journal.
func Open(dbPath string, logger *applog.Logger) (*SQLiteJournal, error) {
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
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteJournal{db: db, logger: logger.WithComponent(applog.ComponentJournal)}, nil
}

func (j *SQLiteJournal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (j *SQLiteJournal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

// Record stores one render outcome.
func (j *SQLiteJournal) Record(ctx context.Context, o core.RenderOutcome) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO render_journal (id, source, variant, records, users, status, error_kind, duration_ms, rendered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Source, o.Variant, o.Records, o.Users, string(o.Status), o.ErrorKind,
		o.Duration.Milliseconds(), o.At.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert render %s: %w", o.ID, err)
	}

	j.logger.DebugContext(ctx, "Render outcome recorded",
		applog.FieldRenderID, o.ID,
		"status", o.Status,
		applog.FieldOperation, applog.OpRecord)
	return nil
}

// Recent returns up to limit outcomes, newest first.
func (j *SQLiteJournal) Recent(ctx context.Context, limit int) ([]core.RenderOutcome, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, source, variant, records, users, status, error_kind, duration_ms, rendered_at
		FROM render_journal
		ORDER BY rendered_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent renders: %w", err)
	}
	defer rows.Close()

	var out []core.RenderOutcome
	for rows.Next() {
		var (
			o          core.RenderOutcome
			status, at string
			durationMS int64
		)
		if err := rows.Scan(&o.ID, &o.Source, &o.Variant, &o.Records, &o.Users, &status, &o.ErrorKind, &durationMS, &at); err != nil {
			return nil, fmt.Errorf("scan render row: %w", err)
		}
		o.Status = core.RenderStatus(status)
		o.Duration = time.Duration(durationMS) * time.Millisecond
		o.At, err = time.Parse(timeLayout, at)
		if err != nil {
			return nil, fmt.Errorf("parse rendered_at %q: %w", at, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate render rows: %w", err)
	}
	return out, nil
}
