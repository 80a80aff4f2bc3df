// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geom provides the rectangle predicates region detection is built
// on: buffered distance, rule-line alignment, union and validity.
//
// Inputs must be finite with non-negative width and height. NaN or inverted
// rectangles are a caller error and are not checked here, except by IsValid.
package geom

import (
	"math"

	"github.com/pdiddy/pdfvision/pkg/types"
)

// Epsilon is the buffer applied around every rectangle before measuring
// distance, and the tolerance used for rule-line detection.
const Epsilon = 0.1

// Distance returns the Euclidean distance between two rectangles, or 0 when
// they touch or overlap.
func Distance(a, b types.Rect) float64 {
	dx := math.Max(0, math.Max(a.X0-b.X1, b.X0-a.X1))
	dy := math.Max(0, math.Max(a.Y0-b.Y1, b.Y0-a.Y1))
	return math.Hypot(dx, dy)
}

// BufferedDistance returns the distance between a and b after each is grown
// by Epsilon on every side.
func BufferedDistance(a, b types.Rect) float64 {
	return math.Max(0, Distance(a, b)-2*Epsilon)
}

// Near reports whether the buffered distance between a and b is below
// threshold. Overlapping or touching rectangles are near for any positive
// threshold.
func Near(a, b types.Rect, threshold float64) bool {
	return BufferedDistance(a, b) < threshold
}

// HorizontalNear attaches a rule line to the box it underlines. It applies
// only when a or b is flat (height <= Epsilon) and both share left and right
// edges within Epsilon; it then reports whether their bottoms are closer
// than threshold.
func HorizontalNear(a, b types.Rect, threshold float64) bool {
	if !isFlat(a) && !isFlat(b) {
		return false
	}
	if math.Abs(a.X0-b.X0) >= Epsilon || math.Abs(a.X1-b.X1) >= Epsilon {
		return false
	}
	return math.Abs(a.Y1-b.Y1) < threshold
}

func isFlat(r types.Rect) bool {
	return math.Abs(r.Height()) <= Epsilon
}

// Union returns the smallest rectangle containing a and b.
func Union(a, b types.Rect) types.Rect {
	return types.Rect{
		X0: math.Min(a.X0, b.X0),
		Y0: math.Min(a.Y0, b.Y0),
		X1: math.Max(a.X1, b.X1),
		Y1: math.Max(a.Y1, b.Y1),
	}
}

// IsValid reports whether r is usable as a region: finite coordinates and
// strictly positive width and height. Degenerate boxes such as lone rule
// lines are not valid.
func IsValid(r types.Rect) bool {
	for _, v := range [...]float64{r.X0, r.Y0, r.X1, r.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.X1 > r.X0 && r.Y1 > r.Y0
}

// Bounds returns the union of all rects and false when rects is empty.
func Bounds(rects []types.Rect) (types.Rect, bool) {
	if len(rects) == 0 {
		return types.Rect{}, false
	}
	out := rects[0]
	for _, r := range rects[1:] {
		out = Union(out, r)
	}
	return out, true
}
