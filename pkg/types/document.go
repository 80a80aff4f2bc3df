// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates the state of PDF-to-Markdown conversion for a
// document.
type ConversionStatus string

const (
	ConversionNone    ConversionStatus = "none"
	ConversionDone    ConversionStatus = "converted"
	ConversionPartial ConversionStatus = "partial"
	ConversionFailed  ConversionStatus = "failed"
)

// Document identifies one PDF queued for conversion.
type Document struct {
	// ID is a slug derived from the file name (e.g. "annual-report").
	ID string `json:"id" yaml:"id"`

	// PDFPath is the local filesystem path to the PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// OutputDir receives output.md and the region crops.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// ConversionResult summarizes one converted document.
type ConversionResult struct {
	RunID      string           `json:"run_id" yaml:"run_id"`
	Document   Document         `json:"document" yaml:"document"`
	Status     ConversionStatus `json:"status" yaml:"status"`
	Pages      int              `json:"pages" yaml:"pages"`
	FailedPage []int            `json:"failed_pages,omitempty" yaml:"failed_pages,omitempty"`
	Markdown   string           `json:"-" yaml:"-"`
	OutputPath string           `json:"output_path" yaml:"output_path"`
	Crops      []string         `json:"crops" yaml:"crops"`
	StartedAt  time.Time        `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time        `json:"finished_at" yaml:"finished_at"`
}
