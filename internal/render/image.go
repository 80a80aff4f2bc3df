// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/pdiddy/pdfvision/pkg/types"
)

var (
	outlineColor = color.RGBA{R: 255, A: 255}
	labelBG      = color.White
)

// Label box geometry in points, relative to the region's top-left corner.
const (
	labelOffsetX = 2
	labelOffsetY = 10
	labelWidth   = 80
	labelAscent  = 9
	labelDescent = 2
	outlinePad   = 1
)

// Crop copies the pixels of rect (in points) out of a page image rendered
// at scale pixels per point. The result starts at the origin.
func Crop(img image.Image, rect types.Rect, scale float64) *image.RGBA {
	r := pixelRect(rect, scale).Intersect(img.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}

// Scale resamples img by factor with Catmull-Rom interpolation.
func Scale(img image.Image, factor float64) *image.RGBA {
	b := img.Bounds()
	w := max(1, int(math.Round(float64(b.Dx())*factor)))
	h := max(1, int(math.Round(float64(b.Dy())*factor)))
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}

// ToRGBA returns a mutable copy of img.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Annotate outlines rect in red one point outside the region and writes
// label in red on a white box just inside its top-left corner. Coordinates
// are in points; dst is rendered at scale pixels per point.
func Annotate(dst draw.Image, rect types.Rect, label string, scale float64) {
	stroke := max(1, int(math.Round(scale)))
	outer := pixelRect(types.Rect{
		X0: rect.X0 - outlinePad, Y0: rect.Y0 - outlinePad,
		X1: rect.X1 + outlinePad, Y1: rect.Y1 + outlinePad,
	}, scale)
	strokeRect(dst, outer, stroke, outlineColor)

	tx, ty := rect.X0+labelOffsetX, rect.Y0+labelOffsetY
	box := pixelRect(types.Rect{
		X0: tx, Y0: ty - labelAscent,
		X1: tx + labelWidth, Y1: ty + labelDescent,
	}, scale)
	draw.Draw(dst, box.Intersect(dst.Bounds()), image.NewUniform(labelBG), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(outlineColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(math.Round(tx*scale)), int(math.Round(ty*scale))),
	}
	d.DrawString(label)
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// EncodePNG returns the PNG encoding of img.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pixelRect converts a rectangle in points to the enclosing pixel rectangle.
func pixelRect(r types.Rect, scale float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X0*scale)), int(math.Floor(r.Y0*scale)),
		int(math.Ceil(r.X1*scale)), int(math.Ceil(r.Y1*scale)),
	)
}

func strokeRect(dst draw.Image, r image.Rectangle, width int, c color.Color) {
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}
