// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/pdfvision/pkg/types"
)

func TestAdsorb(t *testing.T) {
	image := box(100, 100, 300, 300)

	tests := []struct {
		name          string
		sources       []types.Rect
		targets       []types.Rect
		distance      float64
		wantUnmatched []types.Rect
		wantTargets   []types.Rect
	}{
		{
			name:          "caption inside image box",
			sources:       []types.Rect{box(120, 280, 200, 295)},
			targets:       []types.Rect{image},
			distance:      0.1,
			wantUnmatched: []types.Rect{},
			wantTargets:   []types.Rect{image},
		},
		{
			name:          "overlapping paragraph grows region",
			sources:       []types.Rect{box(250, 250, 400, 320)},
			targets:       []types.Rect{image},
			distance:      0.1,
			wantUnmatched: []types.Rect{},
			wantTargets:   []types.Rect{box(100, 100, 400, 320)},
		},
		{
			name:          "label 4 units away is absorbed",
			sources:       []types.Rect{box(304, 150, 330, 160)},
			targets:       []types.Rect{image},
			distance:      5,
			wantUnmatched: []types.Rect{},
			wantTargets:   []types.Rect{box(100, 100, 330, 300)},
		},
		{
			name:          "label 6 units away survives unmatched",
			sources:       []types.Rect{box(306, 150, 330, 160)},
			targets:       []types.Rect{image},
			distance:      5,
			wantUnmatched: []types.Rect{box(306, 150, 330, 160)},
			wantTargets:   []types.Rect{image},
		},
		{
			name:          "first qualifying target wins",
			sources:       []types.Rect{box(48, 0, 52, 10)},
			targets:       []types.Rect{box(0, 0, 46, 10), box(54, 0, 100, 10)},
			distance:      5,
			wantUnmatched: []types.Rect{},
			wantTargets:   []types.Rect{box(0, 0, 52, 10), box(54, 0, 100, 10)},
		},
		{
			name: "later source uses grown target",
			sources: []types.Rect{
				box(304, 100, 320, 110),
				box(324, 100, 340, 110),
			},
			targets:       []types.Rect{image},
			distance:      5,
			wantUnmatched: []types.Rect{},
			wantTargets:   []types.Rect{box(100, 100, 340, 300)},
		},
		{
			name:          "no targets",
			sources:       []types.Rect{box(0, 0, 1, 1)},
			targets:       nil,
			distance:      5,
			wantUnmatched: []types.Rect{box(0, 0, 1, 1)},
			wantTargets:   []types.Rect{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unmatched, targets := Adsorb(tt.sources, tt.targets, tt.distance)
			assert.Equal(t, tt.wantUnmatched, unmatched)
			assert.Equal(t, tt.wantTargets, targets)
		})
	}
}

func TestAdsorb_SourcesNeverMergeWithEachOther(t *testing.T) {
	sources := []types.Rect{box(0, 0, 10, 10), box(11, 0, 20, 10)}
	unmatched, targets := Adsorb(sources, []types.Rect{box(500, 500, 600, 600)}, 5)
	assert.Equal(t, sources, unmatched)
	assert.Equal(t, []types.Rect{box(500, 500, 600, 600)}, targets)
}

func TestAdsorb_Conserves(t *testing.T) {
	sources := randomRects(7, 80)
	targets := randomRects(8, 15)

	updated, assigned := adsorb(sources, targets, 5)
	unmatched, _ := Adsorb(sources, targets, 5)

	matched := 0
	for i, idx := range assigned {
		if idx < 0 {
			continue
		}
		matched++
		assert.True(t, updated[idx].Contains(sources[i]), "source %v not inside its target %v", sources[i], updated[idx])
	}
	assert.Equal(t, len(sources), matched+len(unmatched))
	assert.Len(t, updated, len(targets))
	for i := range targets {
		assert.True(t, updated[i].Contains(targets[i]))
	}
}
