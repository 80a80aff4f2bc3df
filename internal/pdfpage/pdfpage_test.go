// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfpage

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfvision/internal/layout"
	"github.com/pdiddy/pdfvision/pkg/types"
)

// writeTestPDF generates a two-page A4 PDF in points. Page one holds a
// stroked rectangle, a rule line, an image and a line of text.
func writeTestPDF(t *testing.T) string {
	t.Helper()

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewGray(image.Rect(0, 0, 4, 4))))

	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	doc.Rect(100, 100, 200, 150, "D")
	doc.Line(72, 400, 300, 400)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader("dot", opts, &img)
	doc.ImageOptions("dot", 350, 500, 100, 80, false, opts, 0, "")
	doc.Text(72, 700, "Hello World")
	doc.AddPage()

	path := filepath.Join(t.TempDir(), "sample.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, doc.Output(f))
	require.NoError(t, f.Close())
	return path
}

func assertRect(t *testing.T, want, got types.Rect) {
	t.Helper()
	assert.InDelta(t, want.X0, got.X0, 0.05, "x0")
	assert.InDelta(t, want.Y0, got.Y0, 0.05, "y0")
	assert.InDelta(t, want.X1, got.X1, 0.05, "x1")
	assert.InDelta(t, want.Y1, got.Y1, 0.05, "y1")
}

func TestOpen(t *testing.T) {
	doc, err := Open(writeTestPDF(t))
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, 2, doc.NumPages())

	page, err := doc.Page(0)
	require.NoError(t, err)
	w, h := page.Size()
	assert.InDelta(t, 595.28, w, 0.01)
	assert.InDelta(t, 841.89, h, 0.01)

	_, err = doc.Page(2)
	assert.Error(t, err)
	_, err = doc.Page(-1)
	assert.Error(t, err)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("not a pdf"), 0o644))
	_, err = Open(bad)
	assert.Error(t, err)
}

func TestPage_DrawingBoxes(t *testing.T) {
	doc, err := Open(writeTestPDF(t))
	require.NoError(t, err)
	defer doc.Close()
	page, err := doc.Page(0)
	require.NoError(t, err)

	drawings, err := page.DrawingBoxes()
	require.NoError(t, err)
	require.Len(t, drawings, 2)
	assertRect(t, types.Rect{X0: 100, Y0: 100, X1: 300, Y1: 250}, drawings[0])
	assertRect(t, types.Rect{X0: 72, Y0: 400, X1: 300, Y1: 400}, drawings[1])
}

func TestPage_DrawingBoxes_DiscardsUnusedOperands(t *testing.T) {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.AddPage()
	// w takes one operand; the extra ones must not feed the short re below.
	doc.RawWriteStr("10 20 30 40 50 60 w\n5 re f\n")
	doc.RawWriteStr("0 0 1 RG /F1 12 Tf\n100 100 50 50 re f\n")

	path := filepath.Join(t.TempDir(), "operands.pdf")
	require.NoError(t, doc.OutputFileAndClose(path))

	pdfDoc, err := Open(path)
	require.NoError(t, err)
	defer pdfDoc.Close()
	page, err := pdfDoc.Page(0)
	require.NoError(t, err)

	drawings, err := page.DrawingBoxes()
	require.NoError(t, err)
	require.Len(t, drawings, 1)
	_, h := page.Size()
	assertRect(t, types.Rect{X0: 100, Y0: h - 150, X1: 150, Y1: h - 100}, drawings[0])
}

func TestPage_ImageBoxes(t *testing.T) {
	doc, err := Open(writeTestPDF(t))
	require.NoError(t, err)
	defer doc.Close()
	page, err := doc.Page(0)
	require.NoError(t, err)

	images, err := page.ImageBoxes()
	require.NoError(t, err)
	require.Len(t, images, 1)
	assertRect(t, types.Rect{X0: 350, Y0: 500, X1: 450, Y1: 580}, images[0])
}

func TestPage_TextBlocks(t *testing.T) {
	doc, err := Open(writeTestPDF(t))
	require.NoError(t, err)
	defer doc.Close()
	page, err := doc.Page(0)
	require.NoError(t, err)

	blocks, err := page.TextBlocks()
	require.NoError(t, err)
	require.NotEmpty(t, blocks)

	var found *types.TextBlock
	for i := range blocks {
		if strings.Contains(blocks[i].Text, "Hello") {
			found = &blocks[i]
		}
	}
	require.NotNil(t, found, "blocks: %+v", blocks)
	assert.InDelta(t, 72, found.Rect.X0, 1)
	assert.Less(t, found.Rect.Y0, 700.0)
	assert.Greater(t, found.Rect.Y1, 690.0)
}

func TestPage_EmptyPage(t *testing.T) {
	doc, err := Open(writeTestPDF(t))
	require.NoError(t, err)
	defer doc.Close()
	page, err := doc.Page(1)
	require.NoError(t, err)

	drawings, err := page.DrawingBoxes()
	require.NoError(t, err)
	assert.Empty(t, drawings)
	images, err := page.ImageBoxes()
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestPage_Regions(t *testing.T) {
	doc, err := Open(writeTestPDF(t))
	require.NoError(t, err)
	defer doc.Close()
	page, err := doc.Page(0)
	require.NoError(t, err)

	regions, err := layout.ExtractRegions(page, types.DefaultLayoutConfig())
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assertRect(t, types.Rect{X0: 100, Y0: 100, X1: 300, Y1: 250}, regions[0])
	assertRect(t, types.Rect{X0: 350, Y0: 500, X1: 450, Y1: 580}, regions[1])
}

func TestMatrix(t *testing.T) {
	scale := matrix{2, 0, 0, 3, 0, 0}
	shift := matrix{1, 0, 0, 1, 10, 20}

	x, y := scale.mul(shift).apply(1, 1)
	assert.Equal(t, 12.0, x)
	assert.Equal(t, 23.0, y)

	x, y = shift.mul(scale).apply(1, 1)
	assert.Equal(t, 22.0, x)
	assert.Equal(t, 63.0, y)

	x, y = identity().apply(5, 7)
	assert.Equal(t, 5.0, x)
	assert.Equal(t, 7.0, y)
}

func TestGroupBlocks(t *testing.T) {
	word := func(x, base float64, s string) []glyph {
		out := make([]glyph, 0, len(s))
		for i, r := range s {
			out = append(out, glyph{x: x + float64(i)*6, base: base, w: 6, size: 12, s: string(r)})
		}
		return out
	}

	var glyphs []glyph
	glyphs = append(glyphs, word(72, 100, "First")...)
	glyphs = append(glyphs, word(72+5*6+4, 100, "line")...)
	glyphs = append(glyphs, word(72, 114, "second")...)
	glyphs = append(glyphs, word(72, 300, "far")...)

	blocks := groupBlocks(glyphs)
	require.Len(t, blocks, 2)
	assert.Equal(t, "First line\nsecond\n", blocks[0].Text)
	assert.Equal(t, "far\n", blocks[1].Text)
	assert.InDelta(t, 72, blocks[0].Rect.X0, 1e-9)
	assert.InDelta(t, 100-0.8*12, blocks[0].Rect.Y0, 1e-9)
	assert.InDelta(t, 114+0.2*12, blocks[0].Rect.Y1, 1e-9)
}

func TestGroupBlocks_Columns(t *testing.T) {
	left := glyph{x: 72, base: 100, w: 6, size: 12, s: "a"}
	right := glyph{x: 400, base: 100, w: 6, size: 12, s: "b"}

	blocks := groupBlocks([]glyph{left, right})
	require.Len(t, blocks, 2)
	assert.Equal(t, "a\n", blocks[0].Text)
	assert.Equal(t, "b\n", blocks[1].Text)
}

func TestGroupBlocks_ZeroWidthGlyphs(t *testing.T) {
	glyphs := []glyph{
		{x: 72, base: 100, size: 10, s: "a"},
		{x: 72, base: 100, size: 10, s: "b"},
	}
	blocks := groupBlocks(glyphs)
	require.Len(t, blocks, 1)
	assert.Equal(t, "ab\n", blocks[0].Text)
	assert.InDelta(t, 77, blocks[0].Rect.X1, 1e-9)
}
