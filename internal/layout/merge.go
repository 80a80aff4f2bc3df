// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"github.com/pdiddy/pdfvision/internal/geom"
	"github.com/pdiddy/pdfvision/pkg/types"
)

// Merge unions rectangles that lie within distance of each other until no
// pair qualifies. When horizontal is positive, a flat rule line also merges
// with an edge-aligned box whose bottom is within horizontal of it (see
// geom.HorizontalNear).
//
// Ties are broken by list order: each rectangle in a pass absorbs every later
// qualifying rectangle of that pass, growing as it goes, and the grown
// rectangle is emitted in the position of its first member. Passes repeat
// until one performs no merge. Every merge removes one rectangle, so at most
// len(rects) passes run. rects is not modified.
func Merge(rects []types.Rect, distance, horizontal float64) []types.Rect {
	current := make([]types.Rect, len(rects))
	copy(current, rects)
	for {
		next, merged := mergePass(current, distance, horizontal)
		if !merged {
			return next
		}
		current = next
	}
}

func mergePass(rects []types.Rect, distance, horizontal float64) ([]types.Rect, bool) {
	out := make([]types.Rect, 0, len(rects))
	absorbed := make([]bool, len(rects))
	merged := false
	for i := range rects {
		if absorbed[i] {
			continue
		}
		cur := rects[i]
		for j := i + 1; j < len(rects); j++ {
			if absorbed[j] || !mergeable(cur, rects[j], distance, horizontal) {
				continue
			}
			cur = geom.Union(cur, rects[j])
			absorbed[j] = true
			merged = true
		}
		out = append(out, cur)
	}
	return out, merged
}

func mergeable(a, b types.Rect, distance, horizontal float64) bool {
	if geom.Near(a, b, distance) {
		return true
	}
	return horizontal > 0 && geom.HorizontalNear(a, b, horizontal)
}
