// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfpage reads the raw geometry of PDF pages: the bounding boxes of
// painted vector paths, placed images, and grouped text blocks. Boxes are
// reported in PDF points relative to the top-left corner of the page's crop
// box, the same space the rasterizer renders.
//
// Page rotation is not applied.
package pdfpage

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/pdfvision/pkg/types"
)

// Document is an open PDF file.
type Document struct {
	path string
	file *os.File
	r    *pdf.Reader
}

// Open opens the PDF at path.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat PDF %s: %w", path, err)
	}
	r, err := newReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading PDF %s: %w", path, err)
	}
	return &Document{path: path, file: f, r: r}, nil
}

// newReader guards against panics inside the PDF library on malformed files.
func newReader(f *os.File, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed PDF: %v", p)
		}
	}()
	return pdf.NewReader(f, size)
}

// Path returns the file path the document was opened from.
func (d *Document) Path() string { return d.path }

// NumPages returns the number of pages.
func (d *Document) NumPages() int { return d.r.NumPage() }

// Close releases the underlying file.
func (d *Document) Close() error { return d.file.Close() }

// Page returns the page at the 0-based index.
func (d *Document) Page(index int) (*Page, error) {
	if index < 0 || index >= d.NumPages() {
		return nil, fmt.Errorf("page %d out of range [0, %d)", index, d.NumPages())
	}
	p := d.r.Page(index + 1)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d has no page object", index)
	}
	return &Page{index: index, p: p, box: pageBox(p)}, nil
}

// Page is one page of a Document. It is not safe for concurrent use.
type Page struct {
	index int
	p     pdf.Page
	box   types.Rect // crop box in PDF user space (y up)

	scanned  bool
	scanErr  error
	drawings []types.Rect
	images   []types.Rect
}

// Index returns the 0-based page index.
func (p *Page) Index() int { return p.index }

// Size returns the page width and height in points.
func (p *Page) Size() (width, height float64) {
	return p.box.Width(), p.box.Height()
}

// DrawingBoxes returns the bounding box of every painted path, in content
// stream order.
func (p *Page) DrawingBoxes() ([]types.Rect, error) {
	if err := p.scan(); err != nil {
		return nil, err
	}
	return p.drawings, nil
}

// ImageBoxes returns the placement box of every image drawn on the page,
// including images inside form XObjects.
func (p *Page) ImageBoxes() ([]types.Rect, error) {
	if err := p.scan(); err != nil {
		return nil, err
	}
	return p.images, nil
}

// TextBlocks returns the page's text grouped into lines and blocks.
func (p *Page) TextBlocks() (blocks []types.TextBlock, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: extracting text: %v", p.index, r)
		}
	}()
	content := p.p.Content()
	glyphs := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, glyph{
			x:    t.X - p.box.X0,
			base: p.box.Y1 - t.Y,
			w:    t.W,
			size: t.FontSize,
			s:    t.S,
		})
	}
	return groupBlocks(glyphs), nil
}

func (p *Page) scan() (err error) {
	if p.scanned {
		return p.scanErr
	}
	p.scanned = true
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: interpreting content: %v", p.index, r)
		}
		p.scanErr = err
	}()

	g := newGraphics(p.box)
	g.run(p.p.V.Key("Contents"), p.p.Resources(), 0)
	p.drawings = g.drawings
	p.images = g.images
	return nil
}

// pageBox returns the crop box, falling back to the media box and then to
// US Letter, resolving inheritance through the page tree.
func pageBox(p pdf.Page) types.Rect {
	for _, key := range []string{"CropBox", "MediaBox"} {
		if v := inherited(p.V, key); v.Kind() == pdf.Array && v.Len() == 4 {
			a, b := v.Index(0).Float64(), v.Index(1).Float64()
			c, d := v.Index(2).Float64(), v.Index(3).Float64()
			r := types.Rect{X0: min(a, c), Y0: min(b, d), X1: max(a, c), Y1: max(b, d)}
			if r.Width() > 0 && r.Height() > 0 {
				return r
			}
		}
	}
	return types.Rect{X1: 612, Y1: 792}
}

func inherited(v pdf.Value, key string) pdf.Value {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}
