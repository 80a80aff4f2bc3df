// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfvision/internal/convert"
	"github.com/pdiddy/pdfvision/internal/ledger"
	"github.com/pdiddy/pdfvision/internal/logging"
	"github.com/pdiddy/pdfvision/internal/render"
	"github.com/pdiddy/pdfvision/internal/transcribe"
	"github.com/pdiddy/pdfvision/internal/vision"
)

var convertCmd = &cobra.Command{
	Use:   "convert <pdf>...",
	Short: "Convert PDF files to markdown with a vision model",
	Long: `Convert detects the content regions of every page, writes each region
to a PNG crop, outlines and labels the regions on a page image and sends
that image to a vision model. The per-page answers are joined into
output.md next to the crops.

A single PDF is written directly into --output-dir; several PDFs each get
a subdirectory named after the file. A page whose model call fails leaves
an error line in output.md and marks the document partial. Documents whose
output.md already exists are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Vision.APIKey == "" {
		logging.Default.Warnf("no API key for %s; set --api-key or .secrets/ before relying on the output", cfg.Vision.Provider)
	}

	rasterizer, err := render.New(ctx, cfg.Render)
	if err != nil {
		return err
	}
	backend, err := vision.New(ctx, cfg.Vision)
	if err != nil {
		return err
	}
	prompts, err := vision.NewPrompts(cfg.Vision)
	if err != nil {
		return err
	}

	p := &convert.Pipeline{
		Rasterizer: rasterizer,
		Transcriber: &transcribe.Orchestrator{
			Backend: backend,
			Prompts: prompts,
			Workers: cfg.Vision.Workers,
			Logger:  logging.Default,
		},
		Config: cfg,
		Model:  cfg.Vision.Model,
		Logger: logging.Default,
	}

	if cfg.Ledger != "" {
		store, err := ledger.Open(cfg.Ledger)
		if err != nil {
			return err
		}
		defer store.Close()
		p.Recorder = store
	}

	docs := convert.Documents(args, cfg.OutputDir)
	result := convert.ConvertBatch(ctx, p, docs, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed, %d partial", result.Failed, result.Partial)
	}
	return nil
}

func init() {
	f := convertCmd.Flags()
	f.StringP("output-dir", "o", "./out", "directory for output.md, crops and page images")
	f.String("provider", "openai", "vision API: openai or gemini")
	f.String("model", "gpt-4o", "vision model identifier")
	f.String("base-url", "", "API endpoint override for OpenAI-compatible servers")
	f.String("api-key", "", "API key (default: .secrets/<provider>-api-key)")
	f.Int("workers", 1, "pages transcribed concurrently")
	f.Bool("keep-pages", false, "keep the annotated page images")
	f.Bool("frontmatter", false, "prepend YAML frontmatter to output.md")
	f.String("ledger", "", "SQLite file recording each run (empty disables)")
	f.String("render-backend", "pdftoppm", "rasterizer: pdftoppm or container")

	bindFlags(f, map[string]string{
		"output_dir":      "output-dir",
		"vision.provider": "provider",
		"vision.model":    "model",
		"vision.base_url": "base-url",
		"vision.api_key":  "api-key",
		"vision.workers":  "workers",
		"keep_pages":      "keep-pages",
		"frontmatter":     "frontmatter",
		"ledger":          "ledger",
		"render.backend":  "render-backend",
	})

	rootCmd.AddCommand(convertCmd)
}
