// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfvision/pkg/types"
)

// Run is one recorded conversion with its regions.
type Run struct {
	ID          string                 `json:"id" yaml:"id"`
	DocumentID  string                 `json:"document_id" yaml:"document_id"`
	PDFPath     string                 `json:"pdf_path" yaml:"pdf_path"`
	OutputPath  string                 `json:"output_path" yaml:"output_path"`
	Status      types.ConversionStatus `json:"status" yaml:"status"`
	Pages       int                    `json:"pages" yaml:"pages"`
	FailedPages []int                  `json:"failed_pages,omitempty" yaml:"failed_pages,omitempty"`
	StartedAt   time.Time              `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time              `json:"finished_at" yaml:"finished_at"`
	Regions     []types.PageRegions    `json:"regions,omitempty" yaml:"regions,omitempty"`
}

// RegionCount returns the number of regions across all pages.
func (r Run) RegionCount() int {
	n := 0
	for _, p := range r.Regions {
		n += len(p.Regions)
	}
	return n
}

// QueryOptions filters List.
type QueryOptions struct {
	DocumentID string
	Status     types.ConversionStatus
	Limit      int // 0 means no limit
}

// List returns runs newest first, with their regions.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]Run, error) {
	query := `SELECT id, document_id, pdf_path, output_path, status, pages, failed_pages, started_at, finished_at
		FROM runs WHERE 1=1`
	var args []any
	if opts.DocumentID != "" {
		query += ` AND document_id = ?`
		args = append(args, opts.DocumentID)
	}
	if opts.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY started_at DESC, id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		if runs[i].Regions, err = s.regions(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Get returns one run by ID.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, pdf_path, output_path, status, pages, failed_pages, started_at, finished_at
		 FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, err
	}
	r.Regions, err = s.regions(ctx, id)
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r                 Run
		status, failed    string
		outputPath        sql.NullString
		started, finished sql.NullString
	)
	err := sc.Scan(&r.ID, &r.DocumentID, &r.PDFPath, &outputPath, &status, &r.Pages, &failed, &started, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	r.Status = types.ConversionStatus(status)
	r.OutputPath = outputPath.String
	r.StartedAt = parseTime(started.String)
	r.FinishedAt = parseTime(finished.String)
	if failed != "" && failed != "null" {
		_ = json.Unmarshal([]byte(failed), &r.FailedPages)
	}
	return r, nil
}

func (s *Store) regions(ctx context.Context, runID string) ([]types.PageRegions, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.page, p.width, p.height, r.idx, r.name, r.x0, r.y0, r.x1, r.y1
		 FROM pages p LEFT JOIN regions r ON r.run_id = p.run_id AND r.page = p.page
		 WHERE p.run_id = ?
		 ORDER BY p.page, r.idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying regions: %w", err)
	}
	defer rows.Close()

	var out []types.PageRegions
	for rows.Next() {
		var (
			page           int
			width, height  float64
			idx            sql.NullInt64
			name           sql.NullString
			x0, y0, x1, y1 sql.NullFloat64
		)
		if err := rows.Scan(&page, &width, &height, &idx, &name, &x0, &y0, &x1, &y1); err != nil {
			return nil, fmt.Errorf("scanning region: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].Page != page {
			out = append(out, types.PageRegions{Page: page, Width: width, Height: height, Regions: []types.Region{}})
		}
		if idx.Valid {
			cur := &out[len(out)-1]
			cur.Regions = append(cur.Regions, types.Region{
				Index: int(idx.Int64),
				Name:  name.String,
				Rect:  types.Rect{X0: x0.Float64, Y0: y0.Float64, X1: x1.Float64, Y1: y1.Float64},
			})
		}
	}
	return out, rows.Err()
}

// ExportYAML writes every run matching opts to w as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, opts QueryOptions) error {
	runs, err := s.List(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if runs == nil {
		runs = []Run{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(runs); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes every run matching opts to w as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, opts QueryOptions) error {
	runs, err := s.List(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if runs == nil {
		runs = []Run{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(runs); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}
