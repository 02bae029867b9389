/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image"
	"image/color"
	"testing"

	"inkplatform/internal/element"
	"inkplatform/internal/layout"
)

func pure(c color.RGBA) bool {
	for _, v := range []uint8{c.R, c.G, c.B} {
		if v != 0 && v != 255 {
			return false
		}
	}
	return true
}

func sampleLayout() *layout.Base {
	l := layout.New("screen")
	title := element.NewText("title", "Please sign below")
	title.SetBounds(image.Rect(10, 10, 390, 70))
	l.AddElement(title)
	ok := element.NewButton("ok", "OK")
	ok.SetBounds(image.Rect(100, 200, 300, 280))
	l.AddElement(ok)
	l.AddElement(element.NewLine("rule", image.Pt(10, 150), image.Pt(390, 150)))
	return l
}

func TestEmptyLayoutIsWhite(t *testing.T) {
	img := Bitmap(layout.New("empty"), 32, 16, Options{})
	if img.Bounds() != image.Rect(0, 0, 32, 16) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			if img.RGBAAt(x, y) != (color.RGBA{255, 255, 255, 255}) {
				t.Fatalf("pixel %d,%d not white", x, y)
			}
		}
	}
}

func TestMonoRenderHasNoGray(t *testing.T) {
	img := Bitmap(sampleLayout(), 400, 300, Options{})
	inked := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if !pure(c) {
				t.Fatalf("gray pixel %v at %d,%d", c, x, y)
			}
			if c.R == 0 {
				inked++
			}
		}
	}
	if inked == 0 {
		t.Fatalf("nothing drawn")
	}
	// no fill on mono surfaces
	if c := img.RGBAAt(103, 203); c.R != 255 {
		t.Fatalf("mono button filled: %v", c)
	}
	if c := img.RGBAAt(100, 240); c.R != 0 {
		t.Fatalf("button border missing: %v", c)
	}
	if c := img.RGBAAt(200, 150); c.R != 0 {
		t.Fatalf("line missing: %v", c)
	}
}

func TestColorRenderFillsButtons(t *testing.T) {
	img := Bitmap(sampleLayout(), 400, 300, Options{ColorCapable: true})
	if got, want := img.RGBAAt(103, 203), element.LightGray.RGBA(); got != want {
		t.Fatalf("fill = %v, want %v", got, want)
	}
	if c := img.RGBAAt(299, 240); c != (color.RGBA{0, 0, 0, 255}) {
		t.Fatalf("border = %v", c)
	}
}

func TestRenderIsPureUnlessPersisted(t *testing.T) {
	l := layout.New("fit")
	txt := element.NewText("long", "A rather long line of text")
	txt.SetBounds(image.Rect(0, 0, 120, 40))
	l.AddElement(txt)

	Bitmap(l, 200, 100, Options{})
	if txt.FontSize != element.DefaultFontSize {
		t.Fatalf("font size mutated to %d", txt.FontSize)
	}
	Bitmap(l, 200, 100, Options{PersistFit: true})
	if txt.FontSize >= element.DefaultFontSize || txt.FontSize < 1 {
		t.Fatalf("fitted font size = %d", txt.FontSize)
	}
	if txt.Bounds() != image.Rect(0, 0, 120, 40) {
		t.Fatalf("box changed: %v", txt.Bounds())
	}
}

func TestZeroSizedTextAdoptsMeasuredSize(t *testing.T) {
	l := layout.New("natural")
	txt := l.AddText("hi", "Hi", 5, 5, 20)
	want := NaturalSize(nil)(txt)
	if want.X == 0 || want.Y == 0 {
		t.Fatalf("natural size = %v", want)
	}
	if got := layout.RequiredSize(l, NaturalSize(nil)); got != image.Pt(5, 5).Add(want) {
		t.Fatalf("RequiredSize = %v, want %v", got, image.Pt(5, 5).Add(want))
	}
	Bitmap(l, 100, 100, Options{PersistFit: true})
	if txt.Size() != want || txt.FontSize != 20 {
		t.Fatalf("adopted size = %v font %d, want %v font 20", txt.Size(), txt.FontSize, want)
	}
}

func TestImageBlitUnscaled(t *testing.T) {
	pic := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range pic.Pix {
		pic.Pix[i] = 0xff
		if i%4 == 1 || i%4 == 2 {
			pic.Pix[i] = 0
		}
	}
	l := layout.New("img")
	im := element.NewImage("logo", pic)
	im.SetLocation(image.Pt(10, 10))
	l.AddElement(im)
	img := Bitmap(l, 20, 20, Options{})
	if c := img.RGBAAt(13, 13); c != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("image pixel = %v", c)
	}
	if c := img.RGBAAt(14, 14); c.G != 255 {
		t.Fatalf("image drawn beyond its size: %v", c)
	}
}

func TestBitmapRendersLayoutFirst(t *testing.T) {
	s := layout.NewSignature("Sign")
	img := Bitmap(s, 800, 480, Options{ColorCapable: true})
	ok := s.Element(layout.SigOk)
	if ok == nil {
		t.Fatalf("signature not rendered")
	}
	if c := img.RGBAAt(ok.Bounds().Min.X, ok.Bounds().Min.Y+5); c.R != 0 {
		t.Fatalf("ok border = %v", c)
	}
}

func TestScale(t *testing.T) {
	img := Bitmap(sampleLayout(), 400, 300, Options{})
	out := Scale(img, 800, 600)
	if out.Bounds().Dx() != 800 || out.Bounds().Dy() != 600 {
		t.Fatalf("scaled bounds = %v", out.Bounds())
	}
	if c := out.RGBAAt(5, 5); c.R != 255 {
		t.Fatalf("background lost: %v", c)
	}
}
