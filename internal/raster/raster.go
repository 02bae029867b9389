/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package raster holds the small set of drawing primitives the bitmap
// renderer and ink rendering share: stroked polylines and axis aligned
// rectangles, each with an aliased mode for displays without grayscale.
package raster

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// Threshold is the coverage (0..255) from which an aliased pixel is set.
const Threshold = 128

const miterLimit = 4

func fixedPt(p image.Point) fixed.Point26_6 {
	// pixel centres, so a 1px horizontal stroke covers exactly one row
	return fixed.Point26_6{X: fixed.Int26_6(p.X*64 + 32), Y: fixed.Int26_6(p.Y*64 + 32)}
}

// StrokePolyline strokes pts with round joins. Dotted lines alternate one
// width of ink with two widths of gap. Without antialias every covered pixel
// is either left alone or set to col.
func StrokePolyline(dst draw.Image, pts []image.Point, col color.Color, width float64, dotted, antialias bool) {
	if len(pts) == 0 {
		return
	}
	if width <= 0 {
		width = 1
	}
	if len(pts) == 1 {
		r := int(width) / 2
		p := pts[0]
		FillRect(dst, image.Rect(p.X-r, p.Y-r, p.X-r+max(int(width), 1), p.Y-r+max(int(width), 1)), col)
		return
	}

	b := dst.Bounds()
	var target draw.Image = dst
	var mask *image.Alpha
	if !antialias {
		mask = image.NewAlpha(b)
		target = mask
	}
	scanner := rasterx.NewScannerGV(b.Max.X, b.Max.Y, target, b)
	d := rasterx.NewDasher(b.Max.X, b.Max.Y, scanner)

	var dashes []float64
	capFn := rasterx.RoundCap
	if dotted {
		dashes = []float64{width, 2 * width}
		capFn = rasterx.ButtCap
	}
	d.SetStroke(fixed.Int26_6(width*64), fixed.Int26_6(miterLimit*64), capFn, nil, nil, rasterx.Round, dashes, 0)
	d.Start(fixedPt(pts[0]))
	for _, p := range pts[1:] {
		d.Line(fixedPt(p))
	}
	d.Stop(false)
	if antialias {
		d.SetColor(col)
	} else {
		d.SetColor(color.Alpha{A: 255})
	}
	d.Draw()
	d.Clear()

	if mask != nil {
		ApplyMask(dst, mask, col)
	}
}

// ApplyMask sets col wherever mask coverage reaches Threshold.
func ApplyMask(dst draw.Image, mask *image.Alpha, col color.Color) {
	r := mask.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if mask.AlphaAt(x, y).A >= Threshold {
				dst.Set(x, y, col)
			}
		}
	}
}

// FillRect fills r, clipped to dst.
func FillRect(dst draw.Image, r image.Rectangle, col color.Color) {
	draw.Draw(dst, r.Canon(), image.NewUniform(col), image.Point{}, draw.Src)
}

// StrokeRect draws a border of the given pixel width inside r.
func StrokeRect(dst draw.Image, r image.Rectangle, col color.Color, width int) {
	r = r.Canon()
	if r.Empty() {
		return
	}
	width = max(width, 1)
	if 2*width >= r.Dx() || 2*width >= r.Dy() {
		FillRect(dst, r, col)
		return
	}
	FillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), col)
	FillRect(dst, image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), col)
	FillRect(dst, image.Rect(r.Min.X, r.Min.Y+width, r.Min.X+width, r.Max.Y-width), col)
	FillRect(dst, image.Rect(r.Max.X-width, r.Min.Y+width, r.Max.X, r.Max.Y-width), col)
}

// Binarize maps every pixel of src to black or white by luminance, for
// monochrome targets that need an exact 1-bit image.
func Binarize(src image.Image) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(src.At(x, y)).(color.Gray)
			if g.Y >= Threshold {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}
