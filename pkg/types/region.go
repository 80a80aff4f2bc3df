// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Rect is an axis-aligned box in page space. Coordinates are PDF points with
// the origin at the top-left corner of the page and y growing downward.
// X1 >= X0 and Y1 >= Y0; zero width or height is legal (rule lines).
type Rect struct {
	X0 float64 `json:"x0" yaml:"x0"`
	Y0 float64 `json:"y0" yaml:"y0"`
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
}

// Width returns X1 - X0.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns Y1 - Y0.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Area returns Width * Height.
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X0 >= r.X0 && o.Y0 >= r.Y0 && o.X1 <= r.X1 && o.Y1 <= r.Y1
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f, %.2f)", r.X0, r.Y0, r.X1, r.Y1)
}

// PrimitiveClass tags a raw page primitive by its source element.
type PrimitiveClass string

const (
	ClassDrawing   PrimitiveClass = "drawing"
	ClassImage     PrimitiveClass = "image"
	ClassSmallText PrimitiveClass = "small_text"
	ClassLargeText PrimitiveClass = "large_text"
)

// TextBlock is a block of text lines and its bounding box. Text holds one
// line per "\n"-terminated row.
type TextBlock struct {
	Rect Rect   `json:"rect" yaml:"rect"`
	Text string `json:"text" yaml:"text"`
}

// Primitives holds the raw geometry of one page that region detection
// consumes.
type Primitives struct {
	Drawings []Rect      `json:"drawings" yaml:"drawings"`
	Images   []Rect      `json:"images" yaml:"images"`
	Text     []TextBlock `json:"text" yaml:"text"`
}

// Region is a detected content region that survived every filter.
type Region struct {
	// Index is the 0-based, page-local position of the region.
	Index int `json:"index" yaml:"index"`

	// Rect is the region's bounds in page space.
	Rect Rect `json:"rect" yaml:"rect"`

	// Name is the crop file name, {pageIndex}_{regionIndex}.png.
	Name string `json:"name" yaml:"name"`
}

// RegionName returns the crop file name for a region on a page.
func RegionName(pageIndex, regionIndex int) string {
	return fmt.Sprintf("%d_%d.png", pageIndex, regionIndex)
}

// PageRegions groups the regions detected on one page.
type PageRegions struct {
	Page    int      `json:"page" yaml:"page"`
	Width   float64  `json:"width" yaml:"width"`
	Height  float64  `json:"height" yaml:"height"`
	Regions []Region `json:"regions" yaml:"regions"`
}
