// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdfvision/pkg/types"
)

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Partial   int
	Skipped   int
	Failed    int
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Partial + r.Skipped + r.Failed
}

// HasFailures reports whether any document failed or lost pages.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0 || r.Partial > 0
}

// ConvertDocument converts one document unless its output.md already
// exists, printing one status line to w.
func ConvertDocument(ctx context.Context, p *Pipeline, doc types.Document, w io.Writer) types.ConversionStatus {
	mdPath := filepath.Join(doc.OutputDir, OutputFile)
	if _, err := os.Stat(mdPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", doc.ID)
		return types.ConversionNone
	}

	res, err := p.Convert(ctx, doc)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", doc.ID, err)
		return types.ConversionFailed
	}
	if res.Status == types.ConversionPartial {
		fmt.Fprintf(w, "partial: %s (%d of %d pages failed)\n", doc.ID, len(res.FailedPage), res.Pages)
		return res.Status
	}
	fmt.Fprintf(w, "converted: %s (%d pages, %d regions)\n", doc.ID, res.Pages, len(res.Crops))
	return res.Status
}

// ConvertBatch converts documents in order, printing per-file status to w
// and returning a summary.
func ConvertBatch(ctx context.Context, p *Pipeline, docs []types.Document, w io.Writer) BatchResult {
	var result BatchResult
	for _, d := range docs {
		switch ConvertDocument(ctx, p, d, w) {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionPartial:
			result.Partial++
		case types.ConversionNone:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d partial, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Partial, result.Skipped, result.Failed, result.Total())
	return result
}

// Documents builds Document records from PDF paths. A single PDF writes
// straight into outDir; several PDFs each get a subdirectory named by ID.
// IDs are unique within the batch: a repeated base name gets a numeric
// suffix ("report", "report-2").
func Documents(pdfPaths []string, outDir string) []types.Document {
	docs := make([]types.Document, len(pdfPaths))
	seen := make(map[string]bool, len(pdfPaths))
	for i, p := range pdfPaths {
		id := uniqueID(DocumentID(p), seen)
		dir := outDir
		if len(pdfPaths) > 1 {
			dir = filepath.Join(outDir, id)
		}
		docs[i] = types.Document{ID: id, PDFPath: p, OutputDir: dir}
	}
	return docs
}

func uniqueID(base string, seen map[string]bool) string {
	id := base
	for n := 2; seen[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	seen[id] = true
	return id
}

// DocumentID derives an ID from the file name without its extension.
func DocumentID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
