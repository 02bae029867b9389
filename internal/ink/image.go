/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ink

import (
	"image"
	"image/color"

	"inkplatform/internal/raster"
)

// Pen is the stroke style of generated ink images.
type Pen struct {
	Color color.RGBA
	Width float64
}

// DefaultPen is dark blue, 2px wide.
func DefaultPen() Pen {
	return Pen{Color: color.RGBA{R: 0, G: 0, B: 139, A: 255}, Width: 2}
}

// Image draws the strokes of samples onto a size canvas filled with bg.
// Samples are taken to be in the canvas coordinate space.
func Image(samples []InkData, size image.Point, pen Pen, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: size})
	raster.FillRect(img, img.Bounds(), bg)
	if pen.Width <= 0 {
		pen.Width = 1
	}
	for _, s := range Strokes(samples) {
		raster.StrokePolyline(img, s, pen.Color, pen.Width, false, true)
	}
	return img
}

// ImageScaled draws samples recorded in a from-sized space onto a to-sized
// canvas.
func ImageScaled(samples []InkData, from, to image.Point, pen Pen, bg color.Color) *image.RGBA {
	if from == to {
		return Image(samples, to, pen, bg)
	}
	return Image(Rescale(samples, from, to), to, pen, bg)
}
