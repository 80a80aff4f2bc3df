// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"

	"github.com/pdiddy/pdfvision/internal/layout"
	"github.com/pdiddy/pdfvision/internal/pdfpage"
	"github.com/pdiddy/pdfvision/pkg/types"
)

// PageDetection is the region detection result for one page.
type PageDetection struct {
	types.PageRegions `yaml:",inline"`
	Trace             layout.Trace `json:"trace" yaml:"trace"`
}

// DetectRegions runs region detection on every page of the PDF without
// rendering anything.
func DetectRegions(pdfPath string, cfg types.LayoutConfig) ([]PageDetection, error) {
	doc, err := pdfpage.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	out := make([]PageDetection, 0, doc.NumPages())
	for i := 0; i < doc.NumPages(); i++ {
		d, err := detectPage(doc, i, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func detectPage(doc *pdfpage.Document, index int, cfg types.LayoutConfig) (PageDetection, error) {
	page, err := doc.Page(index)
	if err != nil {
		return PageDetection{}, err
	}
	prims, err := layout.Collect(page)
	if err != nil {
		return PageDetection{}, fmt.Errorf("page %d: %w", index, err)
	}
	rects, trace := layout.ExtractWithTrace(prims, cfg)
	w, h := page.Size()
	return PageDetection{
		PageRegions: types.PageRegions{
			Page:    index,
			Width:   w,
			Height:  h,
			Regions: layout.Name(index, rects),
		},
		Trace: trace,
	}, nil
}
