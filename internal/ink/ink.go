/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ink holds captured pen samples, their portable encodings and the
// stroke images drawn from them.
package ink

import "image"

// InkData is one pen sample. X and Y are in whatever coordinate space the
// producer chose; capture sessions record the device's tablet space.
type InkData struct {
	Seq       uint32
	X, Y      uint32
	Pressure  uint32
	Time      uint32
	Contact   bool
	Proximity bool
	// Tag names the button or clickable image under the pen, or is empty.
	Tag string
}

func (d InkData) Coordinates() image.Point { return image.Pt(int(d.X), int(d.Y)) }

// Duplicate returns a value copy.
func (d InkData) Duplicate() InkData { return d }

// DuplicateScaled copies d and rescales X and Y from one coordinate space
// to another, truncating toward zero.
func (d InkData) DuplicateScaled(from, to image.Point) InkData {
	out := d
	if from.X > 0 {
		out.X = uint32(float32(d.X) * float32(to.X) / float32(from.X))
	}
	if from.Y > 0 {
		out.Y = uint32(float32(d.Y) * float32(to.Y) / float32(from.Y))
	}
	return out
}

// ConvertCoordinate maps p from one space to another per axis as
// p*to/from in integer arithmetic. Axes with a non-positive source
// dimension are left unchanged.
func ConvertCoordinate(p, from, to image.Point) image.Point {
	if from.X > 0 {
		p.X = p.X * to.X / from.X
	}
	if from.Y > 0 {
		p.Y = p.Y * to.Y / from.Y
	}
	return p
}

// Rescale returns a copy of samples converted between spaces.
func Rescale(samples []InkData, from, to image.Point) []InkData {
	out := make([]InkData, len(samples))
	for i, s := range samples {
		out[i] = s.DuplicateScaled(from, to)
	}
	return out
}

// Strokes splits samples into polylines of consecutive contact samples.
// A contact run of a single sample produces no stroke.
func Strokes(samples []InkData) [][]image.Point {
	var out [][]image.Point
	var cur []image.Point
	flush := func() {
		if len(cur) > 1 {
			out = append(out, cur)
		}
		cur = nil
	}
	for _, s := range samples {
		if !s.Contact {
			flush()
			continue
		}
		cur = append(cur, s.Coordinates())
	}
	flush()
	return out
}
