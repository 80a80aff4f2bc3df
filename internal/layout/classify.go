// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/pdfvision/pkg/types"
)

// AverageLineLength returns the number of characters in text divided by its
// line count, where lines are separated by "\n" (a trailing newline counts
// as an empty final line). Text is NFC-normalized first so decomposed
// accents count once.
func AverageLineLength(text string) float64 {
	text = norm.NFC.String(text)
	lines := strings.Count(text, "\n") + 1
	return float64(utf8.RuneCountInString(text)) / float64(lines)
}

// ClassifyText tags a text block as large (prose) or small (labels, numbers).
func ClassifyText(block types.TextBlock, minAvgChars float64) types.PrimitiveClass {
	if AverageLineLength(block.Text) > minAvgChars {
		return types.ClassLargeText
	}
	return types.ClassSmallText
}

// splitText partitions text blocks into large and small boxes, keeping input
// order within each class.
func splitText(blocks []types.TextBlock, minAvgChars float64) (large, small []types.Rect) {
	for _, b := range blocks {
		if ClassifyText(b, minAvgChars) == types.ClassLargeText {
			large = append(large, b.Rect)
		} else {
			small = append(small, b.Rect)
		}
	}
	return large, small
}

// isShortLine reports whether a drawing is too small to be a meaningful rule.
func isShortLine(r types.Rect, cfg types.LayoutConfig) bool {
	return r.Height() < cfg.ShortLineHeight && r.Width() < cfg.ShortLineWidth
}
