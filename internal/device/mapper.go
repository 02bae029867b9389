/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package device

import (
	"image"

	"inkplatform/internal/ink"
)

// Mapper converts between tablet and screen coordinates. Signpads report
// in a finer sensor space and are mapped by ratio; surfaces whose tablet
// space is unknown or equal to the screen are mapped directly and clamped
// to the screen.
type Mapper struct {
	Tablet image.Point
	Screen image.Point
}

func NewMapper(d Descriptor) Mapper {
	return Mapper{Tablet: d.TabletSize(), Screen: d.ScreenSize()}
}

// Direct reports whether no ratio scaling applies.
func (m Mapper) Direct() bool {
	return m.Tablet.X <= 0 || m.Tablet.Y <= 0 || m.Tablet == m.Screen
}

func (m Mapper) ToScreen(p image.Point) image.Point {
	if m.Direct() {
		return clamp(p, m.Screen)
	}
	return ink.ConvertCoordinate(p, m.Tablet, m.Screen)
}

func (m Mapper) ToTablet(p image.Point) image.Point {
	if m.Direct() {
		return clamp(p, m.Screen)
	}
	return ink.ConvertCoordinate(p, m.Screen, m.Tablet)
}

func clamp(p, size image.Point) image.Point {
	if size.X > 0 {
		p.X = min(max(p.X, 0), size.X-1)
	}
	if size.Y > 0 {
		p.Y = min(max(p.Y, 0), size.Y-1)
	}
	return p
}

// Record converts screen space InkData back to the tablet space it is
// stored in. Direct mappers leave it unchanged.
func (m Mapper) Record(d ink.InkData) ink.InkData {
	if m.Direct() {
		return d
	}
	return d.DuplicateScaled(m.Screen, m.Tablet)
}

// Map converts a raw sample into screen space InkData.
func (m Mapper) Map(s Sample) ink.InkData {
	d := s.Ink()
	p := m.ToScreen(image.Pt(s.X, s.Y))
	d.X, d.Y = uint32(max(p.X, 0)), uint32(max(p.Y, 0))
	return d
}
