/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package element defines the positioned UI primitives a layout is built from:
// text, buttons, images and lines.
package element

import (
	"image"
	"image/color"
	"strings"
)

// Kind is the discriminator of an element variant.
type Kind int

const (
	KindText Kind = iota
	KindButton
	KindLine
	KindImage
)

var kindNames = [...]string{"TEXT", "BUTTON", "LINE", "IMAGE"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// ParseKind maps an ElementType string to a Kind, ignoring case.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Action is what happens when a clickable element is released.
type Action int

const (
	ActionNone Action = iota
	ActionDone
	ActionRefresh
	ActionCancel
)

var actionNames = [...]string{"NONE", "DONE", "REFRESH", "CANCEL"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "NONE"
	}
	return actionNames[a]
}

// ParseAction is case-insensitive; unknown strings map to ActionNone.
func ParseAction(s string) Action {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range actionNames {
		if n == s {
			return Action(i)
		}
	}
	return ActionNone
}

// Alignment positions text inside its box along one axis.
type Alignment int

const (
	AlignNear Alignment = iota
	AlignCenter
	AlignFar
)

var (
	hAlignNames = [...]string{"LEFT", "CENTRE", "RIGHT"}
	vAlignNames = [...]string{"TOP", "MIDDLE", "BOTTOM"}
)

// HorizontalName returns LEFT, CENTRE or RIGHT.
func (a Alignment) HorizontalName() string { return alignName(hAlignNames, a) }

// VerticalName returns TOP, MIDDLE or BOTTOM.
func (a Alignment) VerticalName() string { return alignName(vAlignNames, a) }

func alignName(names [3]string, a Alignment) string {
	if a < 0 || int(a) >= len(names) {
		return names[AlignCenter]
	}
	return names[a]
}

// ParseAlignment accepts both the horizontal and the vertical vocabulary,
// ignoring case.
func ParseAlignment(s string) (Alignment, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i := range hAlignNames {
		if hAlignNames[i] == s || vAlignNames[i] == s {
			return Alignment(i), true
		}
	}
	if s == "CENTER" {
		return AlignCenter, true
	}
	return AlignCenter, false
}

// Color is an opaque RGB color.
type Color struct{ R, G, B uint8 }

var (
	Black     = Color{0, 0, 0}
	White     = Color{255, 255, 255}
	LightGray = Color{211, 211, 211}
	DarkBlue  = Color{0, 0, 139}
)

func (c Color) RGBA() color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255} }

// Element is implemented by every layout primitive.
type Element interface {
	Name() string
	Kind() Kind
	Location() image.Point
	Size() image.Point
	SetLocation(p image.Point)
	SetSize(sz image.Point)
	// Bounds is location+size with exclusive max edges.
	Bounds() image.Rectangle
	// ResizeToNewDimension scales location and size by newSize/oldSize per axis.
	ResizeToNewDimension(oldSize, newSize image.Point)
}

// Clickable is implemented by elements that carry a release action.
type Clickable interface {
	Element
	Activation() (Action, string)
}

// Box holds the name and geometry shared by text, buttons and images.
type Box struct {
	name string
	loc  image.Point
	size image.Point
}

func newBox(name string) Box { return Box{name: name} }

func (b *Box) Name() string                { return b.name }
func (b *Box) Location() image.Point       { return b.loc }
func (b *Box) Size() image.Point           { return b.size }
func (b *Box) SetLocation(p image.Point)   { b.loc = p }
func (b *Box) SetSize(sz image.Point)      { b.size = sz }
func (b *Box) Bounds() image.Rectangle     { return image.Rectangle{Min: b.loc, Max: b.loc.Add(b.size)} }
func (b *Box) SetBounds(r image.Rectangle) { b.loc, b.size = r.Min, r.Size() }

func (b *Box) ResizeToNewDimension(oldSize, newSize image.Point) {
	b.loc = scalePoint(b.loc, oldSize, newSize)
	b.size = scalePoint(b.size, oldSize, newSize)
}

// scalePoint truncates toward zero like an int cast of the float product.
func scalePoint(p, from, to image.Point) image.Point {
	if from.X != 0 {
		p.X = int(float64(p.X) * float64(to.X) / float64(from.X))
	}
	if from.Y != 0 {
		p.Y = int(float64(p.Y) * float64(to.Y) / float64(from.Y))
	}
	return p
}
