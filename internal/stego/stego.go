/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package stego hides capture payloads in the least significant bits of
// rendered ink images.
package stego

import (
	"encoding/binary"
	"errors"
	"image"
	"image/draw"
	"math"
)

var (
	// ErrCapacity is returned when the payload does not fit the image.
	ErrCapacity = errors.New("stego: payload exceeds image capacity")
	// ErrNoPayload is returned when an image carries no plausible payload.
	ErrNoPayload = errors.New("stego: no embedded payload")
)

const (
	headerBits       = 32
	bitsPerPixel     = 3
	DefaultMaxScale  = 5.0
	DefaultScaleStep = 0.5
)

// CapacityBits is the planning capacity of img: one payload bit per pixel.
// Embed itself stores three bits per pixel, so a payload that passes the
// capacity check always has room for its length header.
func CapacityBits(img image.Image) int {
	if img == nil {
		return 0
	}
	return sizeBits(img.Bounds().Size())
}

func sizeBits(sz image.Point) int { return max(sz.X, 0) * max(sz.Y, 0) }

// BitsNeeded is the number of bits text occupies once embedded.
func BitsNeeded(text string) int { return len(text) * 8 }

func HasCapacity(img image.Image, text string) bool {
	return CapacityBits(img) >= BitsNeeded(text)
}

// GrowToFit scales base by step increments, up to maxScale, until its
// capacity holds bits. It returns the size reached, the scale that produced
// it and whether it fits.
func GrowToFit(base image.Point, bits int, maxScale, step float64) (image.Point, float64, bool) {
	if maxScale <= 0 {
		maxScale = DefaultMaxScale
	}
	if step <= 0 {
		step = DefaultScaleStep
	}
	size, scale := base, 1.0
	for sizeBits(size) < bits && scale+step <= maxScale+1e-9 {
		scale += step
		size = scaled(base, scale)
	}
	return size, scale, sizeBits(size) >= bits
}

func scaled(p image.Point, scale float64) image.Point {
	return image.Pt(int(math.Floor(float64(p.X)*scale)), int(math.Floor(float64(p.Y)*scale)))
}

// toNRGBA returns a copy of img with its origin at 0,0.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// channels visits the R, G and B bytes of img in row-major pixel order.
func channels(img *image.NRGBA, n int, fn func(i, off int)) {
	w := img.Rect.Dx()
	for i := 0; i < n; i++ {
		px := i / bitsPerPixel
		x, y := px%w, px/w
		fn(i, y*img.Stride+x*4+i%bitsPerPixel)
	}
}

// Embed returns a copy of img whose R, G and B least significant bits carry
// a 32-bit big-endian length followed by payload.
func Embed(img image.Image, payload []byte) (*image.NRGBA, error) {
	if img == nil {
		return nil, ErrCapacity
	}
	dst := toNRGBA(img)
	need := headerBits + len(payload)*8
	if need > dst.Rect.Dx()*dst.Rect.Dy()*bitsPerPixel {
		return nil, ErrCapacity
	}
	data := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(data, uint32(len(payload)))
	copy(data[4:], payload)

	channels(dst, need, func(i, off int) {
		bit := data[i/8] >> (7 - uint(i%8)) & 1
		dst.Pix[off] = dst.Pix[off]&^1 | bit
	})
	return dst, nil
}

// Extract reads a payload written by Embed.
func Extract(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, ErrNoPayload
	}
	src := toNRGBA(img)
	avail := src.Rect.Dx() * src.Rect.Dy() * bitsPerPixel
	if avail < headerBits {
		return nil, ErrNoPayload
	}
	read := func(n int) []byte {
		out := make([]byte, (n+7)/8)
		channels(src, n, func(i, off int) {
			out[i/8] |= (src.Pix[off] & 1) << (7 - uint(i%8))
		})
		return out
	}
	n := int(binary.BigEndian.Uint32(read(headerBits)))
	if n == 0 || headerBits+n*8 > avail {
		return nil, ErrNoPayload
	}
	return read(headerBits + n*8)[4:], nil
}
