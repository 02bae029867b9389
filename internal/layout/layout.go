/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout holds named, ordered element collections (screens) and the
// placement algorithms of the box and signature variants.
package layout

import (
	"image"
	"strconv"
	"strings"

	"inkplatform/internal/element"
)

// Type is the layout discriminator.
type Type int

const (
	TypeDefault Type = iota
	TypeBox
	TypeSignature
)

var typeNames = [...]string{"DEFAULT", "BOX_LAYOUT", "SIGNATURE_LAYOUT"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "UNKNOWN"
	}
	return typeNames[t]
}

// ParseType maps a Layout discriminator string to a Type, ignoring case.
func ParseType(s string) (Type, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range typeNames {
		if n == s {
			return Type(i), true
		}
	}
	return 0, false
}

// ClickFunc handles the release of a clickable element.
type ClickFunc func(name string)

// Layout is one screen. Element order is z-order.
type Layout interface {
	Name() string
	Type() Type
	Elements() []element.Element
	Element(name string) element.Element
	// AddElement fails and leaves the layout unchanged when the name is taken.
	AddElement(e element.Element) bool
	RemoveElement(name string) bool
	// Render recomputes derived geometry for the target size. Idempotent.
	Render(width, height int)

	SetClickHandler(name string, fn ClickFunc) bool
	HasClickHandler(name string) bool
	ClearClickHandlers()
	// Click invokes the handler registered for name, if any.
	Click(name string) bool
}

// Base is the DEFAULT layout: elements keep the geometry they were given.
type Base struct {
	name     string
	elements []element.Element
	handlers map[string]ClickFunc
}

func New(name string) *Base { return &Base{name: name} }

func (l *Base) Name() string { return l.name }
func (l *Base) Type() Type   { return TypeDefault }
func (l *Base) Len() int     { return len(l.elements) }

// Elements returns a copy of the element list.
func (l *Base) Elements() []element.Element {
	return append([]element.Element(nil), l.elements...)
}

func (l *Base) Element(name string) element.Element {
	if i := l.index(name); i >= 0 {
		return l.elements[i]
	}
	return nil
}

func (l *Base) index(name string) int {
	for i, e := range l.elements {
		if e.Name() == name {
			return i
		}
	}
	return -1
}

func (l *Base) AddElement(e element.Element) bool {
	if e == nil || l.index(e.Name()) >= 0 {
		return false
	}
	l.elements = append(l.elements, e)
	return true
}

func (l *Base) RemoveElement(name string) bool {
	i := l.index(name)
	if i < 0 {
		return false
	}
	l.elements = append(l.elements[:i], l.elements[i+1:]...)
	delete(l.handlers, name)
	return true
}

// AddText adds a near/near aligned text at x,y. A zero sized box adopts
// the measured text size when rendered.
func (l *Base) AddText(name, text string, x, y, fontSize int) *element.Text {
	t := element.NewText(name, text)
	t.HAlign, t.VAlign = element.AlignNear, element.AlignNear
	t.SetLocation(image.Pt(x, y))
	if fontSize > 0 {
		t.FontSize = fontSize
	}
	if !l.AddElement(t) {
		return nil
	}
	return t
}

func (l *Base) Render(width, height int) {}

func (l *Base) SetClickHandler(name string, fn ClickFunc) bool {
	if l.index(name) < 0 {
		return false
	}
	if fn == nil {
		delete(l.handlers, name)
		return true
	}
	if l.handlers == nil {
		l.handlers = make(map[string]ClickFunc)
	}
	l.handlers[name] = fn
	return true
}

func (l *Base) HasClickHandler(name string) bool {
	_, ok := l.handlers[name]
	return ok
}

func (l *Base) ClearClickHandlers() { l.handlers = nil }

func (l *Base) Click(name string) bool {
	fn, ok := l.handlers[name]
	if !ok {
		return false
	}
	fn(name)
	return true
}

// Buttons is the current button projection of the element list.
func Buttons(l Layout) []*element.Button {
	var out []*element.Button
	for _, e := range l.Elements() {
		if b, ok := e.(*element.Button); ok {
			out = append(out, b)
		}
	}
	return out
}

// Images is the current image projection of the element list.
func Images(l Layout) []*element.Image {
	var out []*element.Image
	for _, e := range l.Elements() {
		if img, ok := e.(*element.Image); ok {
			out = append(out, img)
		}
	}
	return out
}

// IsButton reports whether an image has a click handler attached.
func IsButton(l Layout, img *element.Image) bool {
	return img != nil && l.HasClickHandler(img.Name())
}

// ButtonAt returns the first button, in z-order, containing p.
func ButtonAt(l Layout, p image.Point) *element.Button {
	for _, b := range Buttons(l) {
		if p.In(b.Bounds()) {
			return b
		}
	}
	return nil
}

// ClickableImageAt returns the first image with a click handler containing p.
func ClickableImageAt(l Layout, p image.Point) *element.Image {
	for _, img := range Images(l) {
		if IsButton(l, img) && p.In(img.Bounds()) {
			return img
		}
	}
	return nil
}

// HitTest returns the name of the element a pen at p is over, buttons
// taking precedence over clickable images, or "".
func HitTest(l Layout, p image.Point) string {
	if b := ButtonAt(l, p); b != nil {
		return b.Name()
	}
	if img := ClickableImageAt(l, p); img != nil {
		return img.Name()
	}
	return ""
}

// RequiredSize is the smallest canvas containing every element. measure
// supplies the natural size of zero sized text and buttons; nil skips them.
func RequiredSize(l Layout, measure func(element.Element) image.Point) image.Point {
	var sz image.Point
	for _, e := range l.Elements() {
		r := e.Bounds()
		if r.Empty() && measure != nil && e.Kind() != element.KindLine {
			r = image.Rectangle{Min: e.Location(), Max: e.Location().Add(measure(e))}
		}
		sz.X = max(sz.X, r.Max.X)
		sz.Y = max(sz.Y, r.Max.Y)
	}
	return sz
}

// SafeName returns base, or base followed by the smallest positive integer
// that makes it unique within l.
func SafeName(l Layout, base string) string {
	if l.Element(base) == nil {
		return base
	}
	for i := 1; ; i++ {
		n := base + strconv.Itoa(i)
		if l.Element(n) == nil {
			return n
		}
	}
}
