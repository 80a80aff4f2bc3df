// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"github.com/pdiddy/pdfvision/internal/geom"
	"github.com/pdiddy/pdfvision/pkg/types"
)

// Adsorb folds each source rectangle into the first target within distance,
// replacing that target with the union. Targets grow cumulatively, so a later
// source may join a target an earlier source already enlarged. Sources never
// merge with each other. Sources that reach no target are returned in input
// order as unmatched. Neither input slice is modified.
func Adsorb(sources, targets []types.Rect, distance float64) (unmatched, updated []types.Rect) {
	updated, assigned := adsorb(sources, targets, distance)
	unmatched = make([]types.Rect, 0)
	for i, s := range sources {
		if assigned[i] < 0 {
			unmatched = append(unmatched, s)
		}
	}
	return unmatched, updated
}

// adsorb performs the absorption and reports, per source, the index of the
// target it joined or -1.
func adsorb(sources, targets []types.Rect, distance float64) ([]types.Rect, []int) {
	updated := make([]types.Rect, len(targets))
	copy(updated, targets)
	assigned := make([]int, len(sources))
	for i, s := range sources {
		assigned[i] = -1
		for j, t := range updated {
			if geom.Near(s, t, distance) {
				updated[j] = geom.Union(s, t)
				assigned[i] = j
				break
			}
		}
	}
	return updated, assigned
}
