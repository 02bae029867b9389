/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package element

import "image"

// Default attribute values. Serializers omit fields equal to these.
const (
	DefaultFontSize  = 40
	DefaultLineWidth = 1.0
)

// Text is a block of text aligned inside its box.
type Text struct {
	Box
	Text       string
	Color      Color
	HAlign     Alignment
	VAlign     Alignment
	FontSize   int
	AutoResize bool
}

func NewText(name, text string) *Text {
	return &Text{
		Box:        newBox(name),
		Text:       text,
		Color:      Black,
		HAlign:     AlignCenter,
		VAlign:     AlignCenter,
		FontSize:   DefaultFontSize,
		AutoResize: true,
	}
}

func (t *Text) Kind() Kind { return KindText }

// Button is a filled, bordered box with centred text and a release action.
type Button struct {
	Box
	Text        string
	TextColor   Color
	FillColor   Color
	BorderColor Color
	FontSize    int
	AutoResize  bool
	Action      Action
	NextScreen  string
}

func NewButton(name, text string) *Button {
	return &Button{
		Box:         newBox(name),
		Text:        text,
		TextColor:   Black,
		FillColor:   LightGray,
		BorderColor: Black,
		FontSize:    DefaultFontSize,
		AutoResize:  true,
	}
}

func (b *Button) Kind() Kind { return KindButton }

func (b *Button) Activation() (Action, string) { return b.Action, b.NextScreen }

// SetNextScreen names the layout shown after release. A button without an
// explicit action becomes a Done button.
func (b *Button) SetNextScreen(name string) {
	b.NextScreen = name
	if name != "" && b.Action == ActionNone {
		b.Action = ActionDone
	}
}

// Image is a picture drawn unscaled at its location, clipped to its size.
// Source is the file the picture was loaded from, if any.
type Image struct {
	Box
	Picture    image.Image
	Source     string
	Action     Action
	NextScreen string
}

// NewImage sizes the element to the picture.
func NewImage(name string, pic image.Image) *Image {
	img := &Image{Box: newBox(name), Picture: pic}
	if pic != nil {
		img.size = pic.Bounds().Size()
	}
	return img
}

func (i *Image) Kind() Kind { return KindImage }

func (i *Image) Activation() (Action, string) { return i.Action, i.NextScreen }

func (i *Image) SetNextScreen(name string) {
	i.NextScreen = name
	if name != "" && i.Action == ActionNone {
		i.Action = ActionDone
	}
}

// Line is a straight segment. Its location is the start point.
type Line struct {
	name   string
	Start  image.Point
	End    image.Point
	Color  Color
	Width  float64
	Dotted bool
}

func NewLine(name string, start, end image.Point) *Line {
	return &Line{name: name, Start: start, End: end, Color: Black, Width: DefaultLineWidth}
}

func (l *Line) Name() string          { return l.name }
func (l *Line) Kind() Kind            { return KindLine }
func (l *Line) Location() image.Point { return l.Start }
func (l *Line) Size() image.Point     { return l.End.Sub(l.Start) }

// SetLocation moves both endpoints.
func (l *Line) SetLocation(p image.Point) {
	d := p.Sub(l.Start)
	l.Start = p
	l.End = l.End.Add(d)
}

// SetSize moves the end point relative to the start.
func (l *Line) SetSize(sz image.Point) { l.End = l.Start.Add(sz) }

// Bounds covers both endpoints inclusively.
func (l *Line) Bounds() image.Rectangle {
	r := image.Rectangle{Min: l.Start, Max: l.End}.Canon()
	r.Max = r.Max.Add(image.Pt(1, 1))
	return r
}

func (l *Line) ResizeToNewDimension(oldSize, newSize image.Point) {
	l.Start = scalePoint(l.Start, oldSize, newSize)
	l.End = scalePoint(l.End, oldSize, newSize)
}
