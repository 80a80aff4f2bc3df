// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render rasterizes PDF pages and produces the region crops and
// annotated page images sent to the vision model.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strconv"

	"github.com/pdiddy/pdfvision/internal/container"
	"github.com/pdiddy/pdfvision/pkg/types"
)

// PointsPerInch converts a zoom factor to a resolution: scale 1 is 72 dpi.
const PointsPerInch = 72

// Rasterizer renders one page of a PDF to an image. pageIndex is 0-based.
type Rasterizer interface {
	RasterizePage(ctx context.Context, pdfPath string, pageIndex int, dpi float64) (image.Image, error)
}

// runFunc runs a command line, wiring stdin and stdout.
type runFunc func(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error

// Poppler rasterizes with pdftoppm, either from PATH or inside a container.
type Poppler struct {
	run  runFunc
	desc string
}

// NewPoppler returns a rasterizer using pdftoppm on PATH.
func NewPoppler() *Poppler {
	return &Poppler{run: container.Local, desc: "pdftoppm"}
}

// NewContainerPoppler returns a rasterizer running pdftoppm inside image.
func NewContainerPoppler(rt container.Runtime, image string) *Poppler {
	return &Poppler{
		run: func(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
			return rt.Run(ctx, image, args, stdin, stdout)
		},
		desc: rt.Name() + " " + image,
	}
}

// New builds the rasterizer selected by cfg. The container backend detects
// docker or podman and verifies the image is present.
func New(ctx context.Context, cfg types.RenderConfig) (Rasterizer, error) {
	switch cfg.Backend {
	case types.RenderPdftoppm, "":
		return NewPoppler(), nil
	case types.RenderContainer:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		if err := rt.ImageExists(ctx, cfg.ContainerImage); err != nil {
			return nil, err
		}
		return NewContainerPoppler(rt, cfg.ContainerImage), nil
	default:
		return nil, fmt.Errorf("unknown render backend %q", cfg.Backend)
	}
}

// RasterizePage streams the PDF to pdftoppm on stdin and decodes the single
// PNG it writes to stdout.
func (p *Poppler) RasterizePage(ctx context.Context, pdfPath string, pageIndex int, dpi float64) (image.Image, error) {
	if pageIndex < 0 {
		return nil, fmt.Errorf("invalid page index %d", pageIndex)
	}
	if dpi <= 0 {
		return nil, fmt.Errorf("invalid resolution %g dpi", dpi)
	}
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	defer f.Close()

	page := strconv.Itoa(pageIndex + 1)
	args := []string{
		"pdftoppm", "-png",
		"-r", strconv.FormatFloat(dpi, 'f', -1, 64),
		"-f", page, "-l", page,
		"-singlefile", "-",
	}
	var out bytes.Buffer
	if err := p.run(ctx, args, f, &out); err != nil {
		return nil, fmt.Errorf("rasterizing page %d with %s: %w", pageIndex, p.desc, err)
	}
	img, err := png.Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("decoding page %d image: %w", pageIndex, err)
	}
	return img, nil
}
