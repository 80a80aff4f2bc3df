// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout detects content regions (tables, figures, captioned images)
// on a PDF page from its raw drawing, image and text boxes.
//
// Detection is a fixed sequence: drawings and images are merged into
// candidate regions, prose text overlapping a region and labels near one are
// adsorbed into it, the result is merged again and small boxes are dropped.
// Text that reaches no region is left to be read from the page image, so it
// never becomes a region of its own. Everything here is pure and
// deterministic; pages can be processed concurrently.
package layout

import (
	"fmt"

	"github.com/pdiddy/pdfvision/internal/geom"
	"github.com/pdiddy/pdfvision/pkg/types"
)

// Source supplies the raw primitives of one page.
type Source interface {
	DrawingBoxes() ([]types.Rect, error)
	ImageBoxes() ([]types.Rect, error)
	TextBlocks() ([]types.TextBlock, error)
}

// Trace records how many rectangles each stage of Extract saw. It is
// informational only.
type Trace struct {
	Drawings      int `json:"drawings" yaml:"drawings"`
	ShortLines    int `json:"short_lines_dropped" yaml:"short_lines_dropped"`
	Images        int `json:"images" yaml:"images"`
	Merged        int `json:"merged" yaml:"merged"`
	Invalid       int `json:"invalid_dropped" yaml:"invalid_dropped"`
	LargeText     int `json:"large_text" yaml:"large_text"`
	LargeAbsorbed int `json:"large_text_absorbed" yaml:"large_text_absorbed"`
	SmallText     int `json:"small_text" yaml:"small_text"`
	SmallAbsorbed int `json:"small_text_absorbed" yaml:"small_text_absorbed"`
	Remerged      int `json:"remerged" yaml:"remerged"`
	TooSmall      int `json:"too_small_dropped" yaml:"too_small_dropped"`
	Regions       int `json:"regions" yaml:"regions"`
}

// Collect reads every primitive from src.
func Collect(src Source) (types.Primitives, error) {
	var p types.Primitives
	var err error
	if p.Drawings, err = src.DrawingBoxes(); err != nil {
		return p, fmt.Errorf("reading drawings: %w", err)
	}
	if p.Images, err = src.ImageBoxes(); err != nil {
		return p, fmt.Errorf("reading images: %w", err)
	}
	if p.Text, err = src.TextBlocks(); err != nil {
		return p, fmt.Errorf("reading text blocks: %w", err)
	}
	return p, nil
}

// ExtractRegions collects the primitives of src and runs Extract on them.
func ExtractRegions(src Source, cfg types.LayoutConfig) ([]types.Rect, error) {
	p, err := Collect(src)
	if err != nil {
		return nil, err
	}
	return Extract(p, cfg), nil
}

// Extract returns the content regions of a page in detection order.
func Extract(p types.Primitives, cfg types.LayoutConfig) []types.Rect {
	rects, _ := ExtractWithTrace(p, cfg)
	return rects
}

// ExtractWithTrace is Extract plus per-stage counts.
func ExtractWithTrace(p types.Primitives, cfg types.LayoutConfig) ([]types.Rect, Trace) {
	tr := Trace{Drawings: len(p.Drawings), Images: len(p.Images)}

	candidates := make([]types.Rect, 0, len(p.Drawings)+len(p.Images))
	for _, d := range p.Drawings {
		if isShortLine(d, cfg) {
			tr.ShortLines++
			continue
		}
		candidates = append(candidates, d)
	}
	candidates = append(candidates, p.Images...)

	merged := Merge(candidates, cfg.MergeDistance, cfg.HorizontalDistance)
	tr.Merged = len(merged)

	regions := make([]types.Rect, 0, len(merged))
	for _, m := range merged {
		if !geom.IsValid(m) {
			tr.Invalid++
			continue
		}
		regions = append(regions, m)
	}

	large, small := splitText(p.Text, cfg.LargeTextMinAvgChars)
	tr.LargeText, tr.SmallText = len(large), len(small)

	unmatched, regions := Adsorb(large, regions, cfg.LargeTextDistance)
	tr.LargeAbsorbed = len(large) - len(unmatched)
	unmatched, regions = Adsorb(small, regions, cfg.SmallTextDistance)
	tr.SmallAbsorbed = len(small) - len(unmatched)

	regions = Merge(regions, cfg.RemergeDistance, 0)
	tr.Remerged = len(regions)

	out := make([]types.Rect, 0, len(regions))
	for _, r := range regions {
		if r.Width() <= cfg.MinRegionSize || r.Height() <= cfg.MinRegionSize {
			tr.TooSmall++
			continue
		}
		out = append(out, r)
	}
	tr.Regions = len(out)
	return out, tr
}

// Name assigns page-local indexes and crop names to detected rectangles.
func Name(pageIndex int, rects []types.Rect) []types.Region {
	regions := make([]types.Region, len(rects))
	for i, r := range rects {
		regions[i] = types.Region{Index: i, Rect: r, Name: types.RegionName(pageIndex, i)}
	}
	return regions
}
