/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render turns a layout into a bitmap for a display surface.
//
// Rendering is pure: fitted font sizes and adopted text boxes are computed
// locally and only written back to elements when Options.PersistFit is set.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"inkplatform/internal/element"
	"inkplatform/internal/layout"
	applog "inkplatform/internal/log"
	"inkplatform/internal/raster"
	"inkplatform/internal/textlayout"
)

// Options controls a single render.
type Options struct {
	// ColorCapable enables button fills and antialiasing. Without it every
	// drawn pixel is pure black, white or the element's own color.
	ColorCapable bool
	// Provider resolves fonts; the bundled Go Regular face when nil.
	Provider textlayout.Provider
	// PersistFit writes fitted font sizes and measured box sizes back to
	// the elements.
	PersistFit bool
}

var defaultProvider = textlayout.NewGoProvider()

func (o Options) provider() textlayout.Provider {
	if o.Provider != nil {
		return o.Provider
	}
	return defaultProvider
}

// Bitmap renders l for a width x height surface: it recomputes the layout
// geometry first, then draws.
func Bitmap(l layout.Layout, width, height int, opt Options) *image.RGBA {
	l.Render(width, height)
	return Draw(l, width, height, opt)
}

// Draw paints the elements of l in z-order onto a white canvas without
// touching layout geometry.
func Draw(l layout.Layout, width, height int, opt Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	raster.FillRect(img, img.Bounds(), color.White)
	for _, e := range l.Elements() {
		DrawElement(img, e, opt)
	}
	applog.WithComponent("render").Debug("layout rendered",
		slog.String("layout", l.Name()),
		slog.Int("width", width),
		slog.Int("height", height),
		slog.Bool("color", opt.ColorCapable),
		slog.Int("elements", len(l.Elements())))
	return img
}

// DrawElement paints a single element onto dst.
func DrawElement(dst *image.RGBA, e element.Element, opt Options) {
	switch el := e.(type) {
	case *element.Text:
		size, box := fitText(opt.provider(), el.Text, el.FontSize, el.Bounds(), el.AutoResize)
		if opt.PersistFit {
			el.FontSize = size
			el.SetSize(box.Size())
		}
		drawText(dst, opt, el.Text, size, box, el.HAlign, el.VAlign, el.Color.RGBA())
	case *element.Button:
		size, box := fitText(opt.provider(), el.Text, el.FontSize, el.Bounds(), el.AutoResize)
		if opt.PersistFit {
			el.FontSize = size
			el.SetSize(box.Size())
		}
		if opt.ColorCapable {
			raster.FillRect(dst, box, el.FillColor.RGBA())
		}
		raster.StrokeRect(dst, box, el.BorderColor.RGBA(), 1)
		drawText(dst, opt, el.Text, size, box, element.AlignCenter, element.AlignCenter, el.TextColor.RGBA())
	case *element.Image:
		if el.Picture == nil {
			return
		}
		r := el.Bounds()
		if r.Empty() {
			r = image.Rectangle{Min: el.Location(), Max: el.Location().Add(el.Picture.Bounds().Size())}
		}
		draw.Draw(dst, r, el.Picture, el.Picture.Bounds().Min, draw.Over)
	case *element.Line:
		raster.StrokePolyline(dst, []image.Point{el.Start, el.End}, el.Color.RGBA(), el.Width, el.Dotted, opt.ColorCapable)
	}
}

// fitText returns the font size and box used to draw text. An empty box
// adopts the natural size of the text; with autoResize the size shrinks in
// whole steps until the text fits.
func fitText(p textlayout.Provider, text string, size int, box image.Rectangle, autoResize bool) (int, image.Rectangle) {
	if size <= 0 {
		size = element.DefaultFontSize
	}
	spec := textlayout.FontSpec{SizePt: float32(size)}
	if box.Empty() {
		w, h := textlayout.MeasureString(p, spec, text)
		return size, image.Rectangle{Min: box.Min, Max: box.Min.Add(image.Pt(w, h))}
	}
	if autoResize {
		size = textlayout.FitFontSize(p, spec, text, box.Dx(), box.Dy())
	}
	return size, box
}

// drawText aligns each line of text inside box and clips to it.
func drawText(dst *image.RGBA, opt Options, text string, size int, box image.Rectangle, h, v element.Alignment, col color.RGBA) {
	if text == "" || box.Empty() {
		return
	}
	face, m := opt.provider().Resolve(textlayout.FontSpec{SizePt: float32(size)})
	lines := textlayout.Lines(text)
	lineH := int(m.Ascent + m.Descent)
	gap := int(m.LineGap)
	blockH := len(lines)*lineH + (len(lines)-1)*gap

	top := box.Min.Y
	switch v {
	case element.AlignCenter:
		top += (box.Dy() - blockH) / 2
	case element.AlignFar:
		top = box.Max.Y - blockH
	}

	var target draw.Image
	var mask *image.Alpha
	if opt.ColorCapable {
		target = dst.SubImage(box).(*image.RGBA)
	} else {
		mask = image.NewAlpha(box)
		target = mask
	}
	d := &font.Drawer{Dst: target, Src: image.NewUniform(col), Face: face}
	if mask != nil {
		d.Src = image.Opaque
	}
	for i, ln := range lines {
		w := textlayout.Advance(face, ln)
		x := box.Min.X
		switch h {
		case element.AlignCenter:
			x += (box.Dx() - w) / 2
		case element.AlignFar:
			x = box.Max.X - w
		}
		y := top + i*(lineH+gap) + int(m.Ascent)
		d.Dot = fixed.P(x, y)
		d.DrawString(ln)
	}
	if mask != nil {
		raster.ApplyMask(dst, mask, col)
	}
}

// NaturalSize measures the text of a text or button element at its font
// size. It is the measure function layout.RequiredSize expects.
func NaturalSize(p textlayout.Provider) func(element.Element) image.Point {
	if p == nil {
		p = defaultProvider
	}
	return func(e element.Element) image.Point {
		var text string
		var size int
		switch el := e.(type) {
		case *element.Text:
			text, size = el.Text, el.FontSize
		case *element.Button:
			text, size = el.Text, el.FontSize
		default:
			return e.Size()
		}
		w, h := textlayout.MeasureString(p, textlayout.FontSpec{SizePt: float32(size)}, text)
		return image.Pt(w, h)
	}
}

// Scale resamples img to width x height.
func Scale(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
