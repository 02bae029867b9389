/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout resolves font faces for element text and measures
// single and multi-line strings in pixels.
package textlayout

import (
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontSpec describes a requested font. Sizes are in points at 72 DPI, which
// makes them pixel sizes on the target bitmap.
type FontSpec struct {
	Family string // logical family name
	SizePt float32
	Weight int // 100..900
	Italic bool
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// LineHeight is the distance between two baselines.
func (m Metrics) LineHeight() int { return int(m.Ascent + m.Descent + m.LineGap) }

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
// The requested size is ignored.
type BasicProvider struct{}

func (BasicProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

var (
	goOnce sync.Once
	goFont *opentype.Font
	goErr  error
)

func goRegular() (*opentype.Font, error) {
	goOnce.Do(func() { goFont, goErr = opentype.Parse(goregular.TTF) })
	return goFont, goErr
}

// GoProvider renders with the bundled Go Regular face and caches one face
// per pixel size. The zero value is ready to use and safe for concurrent use.
type GoProvider struct {
	mu    sync.Mutex
	faces map[int]font.Face
}

func NewGoProvider() *GoProvider { return &GoProvider{} }

func (p *GoProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	size := int(spec.SizePt + 0.5)
	if size <= 0 {
		size = 12
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if f, ok := p.faces[size]; ok {
		return f, metricsOf(f)
	}
	otf, err := goRegular()
	if err != nil {
		return BasicProvider{}.Resolve(spec)
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return BasicProvider{}.Resolve(spec)
	}
	if p.faces == nil {
		p.faces = make(map[int]font.Face)
	}
	p.faces[size] = face
	return face, metricsOf(face)
}

// Lines splits text on newlines. A trailing newline does not add a line.
func Lines(text string) []string {
	text = strings.TrimSuffix(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	return strings.Split(text, "\n")
}

// Advance is the pixel width of a single line drawn with face.
func Advance(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// MeasureString returns the size of the smallest box holding text drawn
// with the resolved face, one line per newline.
func MeasureString(p Provider, spec FontSpec, text string) (w, h int) {
	if p == nil {
		p = BasicProvider{}
	}
	face, m := p.Resolve(spec)
	lines := Lines(text)
	for _, ln := range lines {
		w = max(w, Advance(face, ln))
	}
	h = len(lines)*int(m.Ascent+m.Descent) + (len(lines)-1)*int(m.LineGap)
	return w, h
}

// FitFontSize returns the largest size not above spec.SizePt at which text
// fits into maxW x maxH. It never returns less than 1; a box too small for
// size 1 still gets 1.
func FitFontSize(p Provider, spec FontSpec, text string, maxW, maxH int) int {
	size := int(spec.SizePt)
	for ; size > 1; size-- {
		spec.SizePt = float32(size)
		w, h := MeasureString(p, spec, text)
		if w <= maxW && h <= maxH {
			break
		}
	}
	return max(size, 1)
}

// Baseline returns the dot for the first line of a block whose top-left
// corner is at x,y.
func Baseline(m Metrics, x, y int) fixed.Point26_6 {
	return fixed.P(x, y+int(m.Ascent))
}
