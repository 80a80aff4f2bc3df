// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfpage

import (
	"math"
	"strings"

	"github.com/pdiddy/pdfvision/internal/geom"
	"github.com/pdiddy/pdfvision/pkg/types"
)

const (
	defaultFontSize = 10.0
	// Fonts without a width table report zero advances; estimate instead.
	fallbackAdvance = 0.5
	ascent          = 0.8
	descent         = 0.2
)

// glyph is one shown character in top-left page coordinates.
type glyph struct {
	x, base float64 // origin x and baseline y
	w       float64
	size    float64
	s       string
}

type line struct {
	box  types.Rect
	base float64
	size float64
	text strings.Builder
}

// groupBlocks groups glyphs into lines by shared baseline and horizontal
// adjacency, then groups consecutive lines into blocks by vertical
// proximity and horizontal overlap. Content stream order is preserved.
func groupBlocks(glyphs []glyph) []types.TextBlock {
	lines := groupLines(glyphs)
	var blocks []types.TextBlock
	var cur *types.TextBlock
	var last *line
	for _, l := range lines {
		text := strings.TrimRight(l.text.String(), " ")
		if text == "" {
			continue
		}
		if cur != nil && sameBlock(cur.Rect, last, l) {
			cur.Rect = geom.Union(cur.Rect, l.box)
			cur.Text += text + "\n"
		} else {
			if cur != nil {
				blocks = append(blocks, *cur)
			}
			cur = &types.TextBlock{Rect: l.box, Text: text + "\n"}
		}
		last = l
	}
	if cur != nil {
		blocks = append(blocks, *cur)
	}
	return blocks
}

func groupLines(glyphs []glyph) []*line {
	var lines []*line
	var cur *line
	for _, g := range glyphs {
		size := math.Abs(g.size)
		if size == 0 {
			size = defaultFontSize
		}
		w := g.w
		if w <= 0 {
			w = fallbackAdvance * size * float64(len([]rune(g.s)))
		}
		box := types.Rect{X0: g.x, Y0: g.base - ascent*size, X1: g.x + w, Y1: g.base + descent*size}

		if cur != nil && sameLine(cur, g.x, g.base, size) {
			if gap := g.x - cur.box.X1; gap > 0.15*size && g.s != " " && !strings.HasSuffix(cur.text.String(), " ") {
				cur.text.WriteByte(' ')
			}
			cur.text.WriteString(g.s)
			cur.box = geom.Union(cur.box, box)
			cur.size = math.Max(cur.size, size)
			continue
		}
		cur = &line{box: box, base: g.base, size: size}
		cur.text.WriteString(g.s)
		lines = append(lines, cur)
	}
	return lines
}

// sameLine reports whether a glyph at (x, base) continues the line: its
// baseline is within half a font size and it neither jumps back over the
// line nor leaves a column-sized gap.
func sameLine(l *line, x, base, size float64) bool {
	tol := 0.5 * math.Max(l.size, size)
	if math.Abs(base-l.base) > tol {
		return false
	}
	return x >= l.box.X0-size && x-l.box.X1 <= 3*math.Max(l.size, size)
}

func sameBlock(block types.Rect, prev, next *line) bool {
	gap := next.box.Y0 - prev.box.Y1
	if gap < -0.5*next.size || gap > 0.5*next.size {
		return false
	}
	return next.box.X0 <= block.X1 && next.box.X1 >= block.X0
}
