// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records conversion runs in a SQLite database: one row per
// run, per page and per detected region.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdfvision/pkg/types"
)

// ErrNotFound is returned when a run ID is not in the ledger.
var ErrNotFound = errors.New("run not found")

// Store is the ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			pdf_path TEXT NOT NULL,
			output_dir TEXT,
			output_path TEXT,
			status TEXT NOT NULL,
			pages INTEGER,
			failed_pages TEXT,
			started_at TEXT,
			finished_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS pages (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			page INTEGER NOT NULL,
			width REAL,
			height REAL,
			PRIMARY KEY (run_id, page)
		)`,
		`CREATE TABLE IF NOT EXISTS regions (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			page INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			name TEXT NOT NULL,
			x0 REAL, y0 REAL, x1 REAL, y1 REAL,
			PRIMARY KEY (run_id, page, idx)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_document ON runs(document_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a finished conversion and its detected regions in one
// transaction. Recording the same run ID twice replaces the earlier rows.
func (s *Store) Record(ctx context.Context, r *types.ConversionResult, pages []types.PageRegions) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, r.RunID); err != nil {
		return fmt.Errorf("deleting old run: %w", err)
	}

	failed, _ := json.Marshal(r.FailedPage)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, document_id, pdf_path, output_dir, output_path, status, pages, failed_pages, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Document.ID, r.Document.PDFPath, r.Document.OutputDir, r.OutputPath,
		string(r.Status), r.Pages, string(failed),
		formatTime(r.StartedAt), formatTime(r.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	pageStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pages (run_id, page, width, height) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing page insert: %w", err)
	}
	defer pageStmt.Close()

	regionStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO regions (run_id, page, idx, name, x0, y0, x1, y1) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing region insert: %w", err)
	}
	defer regionStmt.Close()

	for _, p := range pages {
		if _, err := pageStmt.ExecContext(ctx, r.RunID, p.Page, p.Width, p.Height); err != nil {
			return fmt.Errorf("inserting page %d: %w", p.Page, err)
		}
		for _, rg := range p.Regions {
			_, err := regionStmt.ExecContext(ctx, r.RunID, p.Page, rg.Index, rg.Name,
				rg.Rect.X0, rg.Rect.Y0, rg.Rect.X1, rg.Rect.Y1)
			if err != nil {
				return fmt.Errorf("inserting region %s: %w", rg.Name, err)
			}
		}
	}

	return tx.Commit()
}

// timeLayout is fixed width so that text order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
