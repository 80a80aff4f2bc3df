// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns PDFs into markdown. Each page's content regions are
// detected, cropped to PNG files and outlined on a page image that a vision
// model transcribes; the page texts are joined into output.md.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/pdfvision/internal/logging"
	"github.com/pdiddy/pdfvision/internal/mdref"
	"github.com/pdiddy/pdfvision/internal/pdfpage"
	"github.com/pdiddy/pdfvision/internal/render"
	"github.com/pdiddy/pdfvision/internal/transcribe"
	"github.com/pdiddy/pdfvision/pkg/types"
)

// OutputFile is the markdown file written into the output directory.
const OutputFile = "output.md"

// Transcriber turns annotated pages into per-page outcomes.
type Transcriber interface {
	Run(ctx context.Context, pages []transcribe.Page) ([]transcribe.Outcome, error)
}

// Recorder persists a finished conversion. A nil Recorder records nothing.
type Recorder interface {
	Record(ctx context.Context, result *types.ConversionResult, pages []types.PageRegions) error
}

// Pipeline holds the collaborators of a conversion.
type Pipeline struct {
	Rasterizer  render.Rasterizer
	Transcriber Transcriber
	Recorder    Recorder
	Config      types.ConversionConfig
	Model       string // recorded in frontmatter
	Logger      logging.Logger

	now func() time.Time
}

func (p *Pipeline) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now().UTC()
}

// Convert processes one document: it writes the region crops and output.md
// into doc.OutputDir and returns the result. Page images are removed once
// transcribed unless KeepPages is set. Per-page transcription failures yield
// ConversionPartial; errors opening, rendering or writing abort the document
// and are recorded as ConversionFailed.
func (p *Pipeline) Convert(ctx context.Context, doc types.Document) (*types.ConversionResult, error) {
	result := &types.ConversionResult{
		RunID:     uuid.NewString(),
		Document:  doc,
		StartedAt: p.clock(),
		Crops:     []string{},
	}

	regions, err := p.convert(ctx, doc, result)
	if err != nil {
		result.Status = types.ConversionFailed
	}
	result.FinishedAt = p.clock()
	p.record(ctx, result, regions)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Pipeline) convert(ctx context.Context, doc types.Document, result *types.ConversionResult) ([]types.PageRegions, error) {
	log := logging.OrDefault(p.Logger)
	if err := os.MkdirAll(doc.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	pages, regions, err := p.renderPages(ctx, doc)
	if err != nil {
		removePageImages(doc.OutputDir, pages)
		return regions, err
	}
	result.Pages = len(pages)
	for _, pr := range regions {
		for _, r := range pr.Regions {
			result.Crops = append(result.Crops, r.Name)
		}
	}

	outcomes, err := p.Transcriber.Run(ctx, pages)
	if !p.Config.KeepPages {
		removePageImages(doc.OutputDir, pages)
	}
	if err != nil {
		return regions, fmt.Errorf("transcribing: %w", err)
	}

	result.Status = types.ConversionDone
	for _, o := range outcomes {
		if o.Failed() {
			result.FailedPage = append(result.FailedPage, o.Page)
			result.Status = types.ConversionPartial
		}
	}

	result.Markdown = transcribe.Join(outcomes)
	body := result.Markdown
	if p.Config.Frontmatter {
		body = p.frontmatter(doc, result) + body
	}
	result.OutputPath = filepath.Join(doc.OutputDir, OutputFile)
	if err := os.WriteFile(result.OutputPath, []byte(body), 0o644); err != nil {
		return regions, fmt.Errorf("writing %s: %w", result.OutputPath, err)
	}

	report := mdref.Audit(result.Markdown, result.Crops)
	for _, name := range report.Unreferenced {
		log.Warnf("%s: crop %s is not referenced in the markdown", doc.ID, name)
	}
	for _, name := range report.Unknown {
		log.Warnf("%s: markdown references unknown image %s", doc.ID, name)
	}
	return regions, nil
}

func (p *Pipeline) record(ctx context.Context, result *types.ConversionResult, regions []types.PageRegions) {
	if p.Recorder == nil {
		return
	}
	if err := p.Recorder.Record(ctx, result, regions); err != nil {
		logging.OrDefault(p.Logger).Errorf("%s: recording run: %v", result.Document.ID, err)
	}
}

// renderPages detects regions on every page, saves their crops and builds
// the annotated page images. Pages are rendered in order from one open
// document.
func (p *Pipeline) renderPages(ctx context.Context, doc types.Document) ([]transcribe.Page, []types.PageRegions, error) {
	log := logging.OrDefault(p.Logger)
	cfg := p.Config.Render

	pdf, err := pdfpage.Open(doc.PDFPath)
	if err != nil {
		return nil, nil, err
	}
	defer pdf.Close()

	pages := make([]transcribe.Page, 0, pdf.NumPages())
	regions := make([]types.PageRegions, 0, pdf.NumPages())
	for i := 0; i < pdf.NumPages(); i++ {
		if err := ctx.Err(); err != nil {
			return pages, regions, err
		}
		det, err := detectPage(pdf, i, p.Config.Layout)
		if err != nil {
			return pages, regions, err
		}
		log.Debugf("%s: page %d: %d regions (%+v)", doc.ID, i, len(det.Regions), det.Trace)

		img, err := p.Rasterizer.RasterizePage(ctx, doc.PDFPath, i, render.PointsPerInch*cfg.CropScale)
		if err != nil {
			return pages, regions, err
		}
		for _, r := range det.Regions {
			crop := render.Crop(img, r.Rect, cfg.CropScale)
			if err := render.SavePNG(filepath.Join(doc.OutputDir, r.Name), crop); err != nil {
				return pages, regions, err
			}
		}

		annotated := render.Scale(img, cfg.PageScale/cfg.CropScale)
		labels := make([]string, len(det.Regions))
		for j, r := range det.Regions {
			render.Annotate(annotated, r.Rect, r.Name, cfg.PageScale)
			labels[j] = r.Name
		}
		data, err := render.EncodePNG(annotated)
		if err != nil {
			return pages, regions, fmt.Errorf("encoding page %d: %w", i, err)
		}
		if err := os.WriteFile(pageImagePath(doc.OutputDir, i), data, 0o644); err != nil {
			return pages, regions, fmt.Errorf("writing page %d image: %w", i, err)
		}

		pages = append(pages, transcribe.Page{Index: i, Image: data, MIMEType: "image/png", Labels: labels})
		regions = append(regions, det.PageRegions)
	}
	return pages, regions, nil
}

func pageImagePath(dir string, page int) string {
	return filepath.Join(dir, fmt.Sprintf("%d.png", page))
}

func removePageImages(dir string, pages []transcribe.Page) {
	for _, pg := range pages {
		_ = os.Remove(pageImagePath(dir, pg.Index))
	}
}

// frontmatter returns the YAML header prepended to output.md.
func (p *Pipeline) frontmatter(doc types.Document, r *types.ConversionResult) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "source_pdf: %q\n", doc.PDFPath)
	fmt.Fprintf(&b, "converted_at: %q\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "pages: %d\n", r.Pages)
	if p.Model != "" {
		fmt.Fprintf(&b, "model: %q\n", p.Model)
	}
	fmt.Fprintf(&b, "run_id: %q\n", r.RunID)
	b.WriteString("---\n\n")
	return b.String()
}
