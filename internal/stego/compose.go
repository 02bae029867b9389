/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package stego

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"

	"inkplatform/internal/ink"
	applog "inkplatform/internal/log"
	"inkplatform/internal/serialize"
)

// Result classifies the outcome of Compose.
type Result int

const (
	Successful Result = iota
	SerializeFail
	PictureTooSmall
	EmbedFail
	Error
)

var resultNames = [...]string{"Successful", "SerializeFail", "PictureTooSmall", "EmbedFail", "Error"}

func (r Result) String() string {
	if r < 0 || int(r) >= len(resultNames) {
		return "Unknown"
	}
	return resultNames[r]
}

// Options describes a capture image. When Context is set its envelope is
// the payload and its pen data the strokes; otherwise Samples are drawn and
// their JSON list is the payload.
type Options struct {
	Context *serialize.Context
	Samples []ink.InkData
	// Size of the image drawn. Defaults to the context device's screen size.
	Size       image.Point
	// Source is the space the samples are recorded in. Defaults to the
	// context device's ink space, then Size.
	Source     image.Point
	Pen        ink.Pen
	Background color.Color

	Encode     bool
	AutoResize bool
	MaxScale   float64
	Step       float64
}

func (o Options) samples() []ink.InkData {
	if o.Context != nil {
		return o.Context.PenData()
	}
	return o.Samples
}

func (o Options) source(size image.Point) image.Point {
	switch {
	case o.Source != (image.Point{}):
		return o.Source
	case o.Context != nil:
		return o.Context.Device().InkSpace()
	}
	return size
}

func (o Options) payload() ([]byte, error) {
	if o.Context != nil {
		return o.Context.MarshalJSON()
	}
	return ink.MarshalList(o.Samples)
}

// Compose draws the strokes and, when Encode is set, embeds the payload.
// With AutoResize the image grows in Step increments up to MaxScale until
// the payload fits. The returned image is never nil unless the result is
// Error; on PictureTooSmall it holds the strokes without a payload.
func Compose(ctx context.Context, opt Options) (*image.NRGBA, Result, error) {
	lg := applog.WithComponent("stego")
	size := opt.Size
	if size == (image.Point{}) && opt.Context != nil {
		size = opt.Context.Device().ScreenSize()
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, Error, errors.New("stego: empty image size")
	}
	if opt.Pen.Width <= 0 {
		opt.Pen = ink.DefaultPen()
	}
	if opt.Background == nil {
		opt.Background = color.White
	}
	samples := opt.samples()
	source := opt.source(size)

	img := ink.ImageScaled(samples, source, size, opt.Pen, opt.Background)
	if !opt.Encode {
		return toNRGBA(img), Successful, nil
	}

	payload, err := opt.payload()
	if err != nil {
		return toNRGBA(img), SerializeFail, err
	}
	bits := len(payload) * 8

	if sizeBits(size) < bits && opt.AutoResize {
		grown, scale, ok := GrowToFit(size, bits, opt.MaxScale, opt.Step)
		if err := ctx.Err(); err != nil {
			return nil, Error, err
		}
		img = ink.ImageScaled(samples, source, grown, opt.Pen, opt.Background)
		if ok {
			lg.Debug("image grown to fit payload", slog.Float64("scale", scale),
				slog.Int("width", grown.X), slog.Int("height", grown.Y))
		} else {
			lg.Warn("image growth exhausted", slog.Float64("scale", scale), slog.Int("bits", bits))
		}
	}

	if CapacityBits(img) < bits {
		return toNRGBA(img), PictureTooSmall, ErrCapacity
	}
	out, err := Embed(img, payload)
	if err != nil {
		return toNRGBA(img), EmbedFail, err
	}
	lg.Debug("payload embedded", slog.Int("bytes", len(payload)))
	return out, Successful, nil
}
