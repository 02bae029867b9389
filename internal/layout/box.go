/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"image"
	"log/slog"
	"strings"

	"inkplatform/internal/element"
	applog "inkplatform/internal/log"
)

// Position is one cell of the 3x3 box grid.
type Position int

const (
	TopLeft Position = iota
	TopCentre
	TopRight
	MiddleLeft
	MiddleCentre
	MiddleRight
	BottomLeft
	BottomCentre
	BottomRight
	PositionUnknown
)

// Positions lists the nine cells in render order.
var Positions = [...]Position{TopLeft, TopCentre, TopRight, MiddleLeft, MiddleCentre, MiddleRight, BottomLeft, BottomCentre, BottomRight}

var positionNames = [...]string{"TopLeft", "TopCentre", "TopRight", "MiddleLeft", "MiddleCentre", "MiddleRight", "BottomLeft", "BottomCentre", "BottomRight"}

// String returns the JSON bucket key of the position.
func (p Position) String() string {
	if p < 0 || p >= PositionUnknown {
		return "Unknown"
	}
	return positionNames[p]
}

func (p Position) column() int { return int(p) % 3 }
func (p Position) row() int    { return int(p) / 3 }

// Flow is the direction in which elements sharing a cell are laid out.
type Flow int

const (
	FlowRight Flow = iota
	FlowDown
)

func (f Flow) String() string {
	if f == FlowDown {
		return "DOWN"
	}
	return "RIGHT"
}

// ParseFlow is case-insensitive. Unrecognized input falls back to FlowRight
// with ok=false so callers can tell the fallback happened.
func ParseFlow(s string) (f Flow, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RIGHT":
		return FlowRight, true
	case "DOWN":
		return FlowDown, true
	}
	return FlowRight, false
}

// Debug grid line names.
const (
	GridOuterLeft             = "OUTER_LEFT_LINE"
	GridOuterTop              = "OUTER_TOP_LINE"
	GridOuterRight            = "OUTER_RIGHT_LINE"
	GridOuterBottom           = "OUTER_BOTTOM_LINE"
	GridInnerVerticalLeft     = "INNER_VERTICAL_LEFT_LINE"
	GridInnerVerticalRight    = "INNER_VERTICAL_RIGHT_LINE"
	GridInnerHorizontalTop    = "INNER_HORIZONTAL_TOP_LINE"
	GridInnerHorizontalBottom = "INNER_HORIZONTAL_BOTTOM_LINE"
)

const maxSpacing = 10

// BoxLayout places elements in a proportional 3x3 grid. Elements sharing a
// cell split it along the flow axis with spacing/10 of an element length
// between neighbours.
type BoxLayout struct {
	Base
	buckets  [9][]element.Element
	hRatio   [3]int // left, centre, right
	vRatio   [3]int // top, middle, bottom
	flow     Flow
	spacing  int
	ShowGrid bool
	grid     []string
}

func NewBox(name string) *BoxLayout {
	return &BoxLayout{
		Base:   Base{name: name},
		hRatio: [3]int{1, 1, 1},
		vRatio: [3]int{1, 1, 1},
	}
}

func (b *BoxLayout) Type() Type { return TypeBox }

func (b *BoxLayout) Flow() Flow       { return b.flow }
func (b *BoxLayout) SetFlow(f Flow)   { b.flow = f }
func (b *BoxLayout) Spacing() int     { return b.spacing }
func (b *BoxLayout) SetSpacing(s int) { b.spacing = min(max(s, 0), maxSpacing) }
func (b *BoxLayout) HorizontalRatio() (left, centre, right int) {
	return b.hRatio[0], b.hRatio[1], b.hRatio[2]
}
func (b *BoxLayout) VerticalRatio() (top, middle, bottom int) {
	return b.vRatio[0], b.vRatio[1], b.vRatio[2]
}

// SetHorizontalRatio sets left:centre:right. Non-positive parts become 1.
func (b *BoxLayout) SetHorizontalRatio(left, centre, right int) {
	b.hRatio = [3]int{ratio(left), ratio(centre), ratio(right)}
}

// SetVerticalRatio sets top:middle:bottom. Non-positive parts become 1.
func (b *BoxLayout) SetVerticalRatio(top, middle, bottom int) {
	b.vRatio = [3]int{ratio(top), ratio(middle), ratio(bottom)}
}

func ratio(v int) int {
	if v <= 0 {
		return 1
	}
	return v
}

// AddElementAt adds e to the layout and records it in the cell at pos.
func (b *BoxLayout) AddElementAt(e element.Element, pos Position) bool {
	if pos < 0 || pos >= PositionUnknown {
		return false
	}
	if !b.Base.AddElement(e) {
		return false
	}
	b.buckets[pos] = append(b.buckets[pos], e)
	return true
}

// AddText creates a text element named after its content (made unique) in
// the cell at pos. It returns nil when the element could not be added.
func (b *BoxLayout) AddText(text string, pos Position, hAlign element.Alignment) *element.Text {
	t := element.NewText(SafeName(b, text), text)
	t.HAlign = hAlign
	if !b.AddElementAt(t, pos) {
		return nil
	}
	return t
}

// RemoveElement detaches the element from its cell as well as the list.
func (b *BoxLayout) RemoveElement(name string) bool {
	if !b.Base.RemoveElement(name) {
		return false
	}
	if pos := b.PositionOf(name); pos != PositionUnknown {
		bucket := b.buckets[pos]
		for i, e := range bucket {
			if e.Name() == name {
				b.buckets[pos] = append(bucket[:i:i], bucket[i+1:]...)
				break
			}
		}
	}
	return true
}

// ElementsAt returns a copy of the elements recorded for pos.
func (b *BoxLayout) ElementsAt(pos Position) []element.Element {
	if pos < 0 || pos >= PositionUnknown {
		return nil
	}
	return append([]element.Element(nil), b.buckets[pos]...)
}

// PositionOf returns the cell holding the named element.
func (b *BoxLayout) PositionOf(name string) Position {
	for p, bucket := range b.buckets {
		for _, e := range bucket {
			if e.Name() == name {
				return Position(p)
			}
		}
	}
	return PositionUnknown
}

// IsGridLine reports whether name is a debug grid line owned by the layout.
func (b *BoxLayout) IsGridLine(name string) bool {
	for _, g := range b.grid {
		if g == name {
			return true
		}
	}
	return false
}

func cellLength(total int, ratios [3]int, i int) int {
	sum := ratios[0] + ratios[1] + ratios[2]
	return total * ratios[i] / sum
}

// cellOffset is the cumulative length of the preceding cells, less one
// pixel so neighbours share a border.
func cellOffset(total int, ratios [3]int, i int) int {
	off := 0
	for j := 0; j < i; j++ {
		off += cellLength(total, ratios, j)
	}
	if i > 0 {
		off--
	}
	return off
}

// CellBounds is the rectangle of the cell at pos for a width x height canvas.
func (b *BoxLayout) CellBounds(pos Position, width, height int) image.Rectangle {
	c, r := pos.column(), pos.row()
	x := cellOffset(width, b.hRatio, c)
	y := cellOffset(height, b.vRatio, r)
	return image.Rect(x, y, x+cellLength(width, b.hRatio, c), y+cellLength(height, b.vRatio, r))
}

// RenderPosition lays out the elements of one cell. Empty cells are skipped.
func (b *BoxLayout) RenderPosition(pos Position, width, height int) {
	if pos < 0 || pos >= PositionUnknown {
		return
	}
	list := b.buckets[pos]
	n := len(list)
	if n == 0 {
		return
	}
	cell := b.CellBounds(pos, width, height)
	assigned := cell.Dx()
	if b.flow == FlowDown {
		assigned = cell.Dy()
	}
	parts := n*10 + (n-1)*b.spacing
	elemLen := assigned * 10 / parts
	gapLen := assigned * b.spacing / parts

	for i, e := range list {
		off := i*elemLen + i*gapLen
		if b.flow == FlowDown {
			e.SetLocation(image.Pt(cell.Min.X, cell.Min.Y+off))
			e.SetSize(image.Pt(cell.Dx(), elemLen))
		} else {
			e.SetLocation(image.Pt(cell.Min.X+off, cell.Min.Y))
			e.SetSize(image.Pt(elemLen, cell.Dy()))
		}
	}
}

// Render places every cell in order, then refreshes the debug grid. When a
// grid line name collides with a user element the grid is switched off.
func (b *BoxLayout) Render(width, height int) {
	for _, p := range Positions {
		b.RenderPosition(p, width, height)
	}
	b.removeGrid()
	if !b.ShowGrid {
		return
	}
	if !b.createGrid(width, height) {
		b.removeGrid()
		b.ShowGrid = false
		applog.WithComponent("layout").Warn("grid disabled, line name already in use", slog.String("layout", b.name))
	}
}

func (b *BoxLayout) removeGrid() {
	for _, n := range b.grid {
		b.Base.RemoveElement(n)
	}
	b.grid = nil
}

func (b *BoxLayout) createGrid(w, h int) bool {
	topCentre := b.CellBounds(TopCentre, w, h).Min
	topRight := b.CellBounds(TopRight, w, h).Min
	middleLeft := b.CellBounds(MiddleLeft, w, h).Min
	bottomLeft := b.CellBounds(BottomLeft, w, h).Min

	lines := []*element.Line{
		element.NewLine(GridOuterLeft, image.Pt(0, 0), image.Pt(0, h)),
		element.NewLine(GridOuterTop, image.Pt(0, 0), image.Pt(w-1, 0)),
		element.NewLine(GridOuterRight, image.Pt(w-1, 0), image.Pt(w-1, h-1)),
		element.NewLine(GridOuterBottom, image.Pt(0, h-1), image.Pt(w-1, h-1)),
		element.NewLine(GridInnerVerticalLeft, topCentre, image.Pt(topCentre.X, h)),
		element.NewLine(GridInnerVerticalRight, topRight, image.Pt(topRight.X, h)),
		element.NewLine(GridInnerHorizontalTop, middleLeft, image.Pt(w, middleLeft.Y)),
		element.NewLine(GridInnerHorizontalBottom, bottomLeft, image.Pt(w, bottomLeft.Y)),
	}
	ok := true
	for _, ln := range lines {
		if b.Base.AddElement(ln) {
			b.grid = append(b.grid, ln.Name())
		} else {
			ok = false
		}
	}
	return ok
}
