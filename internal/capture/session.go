/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package capture drives a pen surface through one signing session: it
// displays layouts, turns raw pen samples into tagged ink, fires button
// actions on pen lift and produces the capture context.
package capture

import (
	"context"
	"image"
	"image/draw"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"inkplatform/internal/device"
	"inkplatform/internal/element"
	"inkplatform/internal/ink"
	"inkplatform/internal/layout"
	applog "inkplatform/internal/log"
	"inkplatform/internal/raster"
	"inkplatform/internal/render"
	"inkplatform/internal/serialize"
)

// SignatureLayoutName is the name of the layout CaptureSignature shows.
const SignatureLayoutName = "Sign"

// Options configures a Session.
type Options struct {
	// InkingOnButton draws feedback strokes over buttons too. Samples over
	// buttons are recorded either way.
	InkingOnButton bool
	Pen            ink.Pen
	// Mono forces monochrome rendering on color capable surfaces.
	Mono bool
	// Render carries the font provider; ColorCapable is taken from the
	// device.
	Render render.Options
	// Pictures is passed to the capture context for image elements.
	Pictures serialize.Options
	// Annotations are added to every context the session produces.
	Annotations map[string]string
	// Now stamps signature layouts; time.Now when nil.
	Now func() time.Time
}

// Session is one capture on one surface. It is not safe for concurrent use;
// samples are processed one at a time in arrival order.
type Session struct {
	ID string

	// OnDone receives the context built when a Done action fires. Returning
	// true vetoes navigation and completion.
	OnDone func(*serialize.Context) bool
	// OnClear and OnCancel veto the default Refresh and Cancel handling by
	// returning true.
	OnClear  func() bool
	OnCancel func() bool
	// OnClick is told about every pen lift over a tagged element.
	OnClick func(name string)

	surface device.Surface
	desc    device.Descriptor
	mapper  device.Mapper
	opt     Options
	log     *slog.Logger

	layouts map[string]layout.Layout
	current layout.Layout
	bitmap  *image.RGBA
	live    *image.RGBA

	penData []ink.InkData
	prev    *ink.InkData
	inking  bool

	result   *serialize.Context
	finished bool
	closed   bool
}

// New opens a session on surface. A surface can host one session at a time;
// a second New returns DeviceBusy until the first is closed.
func New(surface device.Surface, opt Options) (*Session, device.ErrorCode) {
	if surface == nil {
		return nil, device.NullParam
	}
	id := uuid.NewString()
	if !acquire(surface, id) {
		return nil, device.DeviceBusy
	}
	if opt.Pen.Width <= 0 {
		opt.Pen = ink.DefaultPen()
	}
	desc := surface.Descriptor()
	s := &Session{
		ID:      id,
		surface: surface,
		desc:    desc,
		mapper:  device.NewMapper(desc),
		opt:     opt,
		log:     applog.WithSession(applog.WithComponent("capture"), id),
		layouts: map[string]layout.Layout{},
	}
	s.log.Info("session opened", slog.String("device", desc.ProductModel))
	return s, device.None
}

// Close stops inking and frees the surface for another session.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.setInking(false)
	release(s.surface, s.ID)
	s.log.Info("session closed", slog.Int("samples", len(s.penData)))
}

func (s *Session) Descriptor() device.Descriptor { return s.desc }
func (s *Session) Current() layout.Layout        { return s.current }
func (s *Session) Inking() bool                  { return s.inking }
func (s *Session) Finished() bool                { return s.finished }

// Result is the context of the last completed Done or Cancel, or nil.
func (s *Session) Result() *serialize.Context { return s.result }

// PenData returns a copy of the ink captured on the current layout.
func (s *Session) PenData() []ink.InkData { return append([]ink.InkData(nil), s.penData...) }

// Bitmap is the rendered current layout without ink.
func (s *Session) Bitmap() *image.RGBA { return s.bitmap }

// Live is the current layout with the ink feedback drawn so far.
func (s *Session) Live() *image.RGBA { return s.live }

func (s *Session) setInking(on bool) {
	s.inking = on
	s.surface.SetInking(on)
}

func (s *Session) resetInk() {
	s.penData = nil
	s.prev = nil
	if s.bitmap != nil {
		s.live = cloneRGBA(s.bitmap)
	}
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

func (s *Session) renderOptions() render.Options {
	ro := s.opt.Render
	ro.ColorCapable = s.desc.SupportColor && !s.opt.Mono
	return ro
}

// DisplayLayout renders l at the surface's screen size, attaches the
// session's action handlers, shows it and starts inking with fresh ink.
func (s *Session) DisplayLayout(l layout.Layout) device.ErrorCode {
	if l == nil {
		return device.NullParam
	}
	if s.closed {
		return device.NotConnected
	}
	if !s.desc.HasScreen {
		return device.NotSupported
	}
	size := s.desc.ScreenSize()
	if size.X <= 0 || size.Y <= 0 {
		return device.LayoutFail
	}
	bmp := render.Bitmap(l, size.X, size.Y, s.renderOptions())
	s.attachHandlers(l)

	if code := s.surface.Display(bmp); code != device.None {
		s.log.Warn("display failed", slog.String("layout", l.Name()), slog.String("code", code.String()))
		return code
	}
	if _, ok := s.layouts[l.Name()]; !ok {
		s.layouts[l.Name()] = l
	}
	s.current = l
	s.bitmap = bmp
	s.finished = false
	s.resetInk()
	s.setInking(true)
	s.log.Info("layout displayed", slog.String("layout", l.Name()), slog.String("type", l.Type().String()))
	return device.None
}

// attachHandlers routes every element carrying an action to the session.
// Elements without an action keep whatever handler the caller attached.
func (s *Session) attachHandlers(l layout.Layout) {
	for _, e := range l.Elements() {
		c, ok := e.(element.Clickable)
		if !ok {
			continue
		}
		if action, _ := c.Activation(); action != element.ActionNone {
			l.SetClickHandler(e.Name(), s.activate)
		}
	}
}

// DisplayLayouts registers a set of chained layouts and shows initial, or
// the first one when initial is empty.
func (s *Session) DisplayLayouts(list []layout.Layout, initial string) device.ErrorCode {
	if len(list) == 0 {
		return device.NullParam
	}
	for _, l := range list {
		if l != nil {
			s.layouts[l.Name()] = l
		}
	}
	if initial == "" {
		initial = list[0].Name()
	}
	return s.LoadNextLayout(initial)
}

// LoadNextLayout shows a registered layout by name.
func (s *Session) LoadNextLayout(name string) device.ErrorCode {
	l, ok := s.layouts[name]
	if !ok {
		s.log.Warn("layout not found", slog.String("layout", name))
		return device.LayoutNotFound
	}
	return s.DisplayLayout(l)
}

// CaptureSignature shows the standard signing screen.
func (s *Session) CaptureSignature(who, why string) device.ErrorCode {
	sig := layout.NewSignature(SignatureLayoutName)
	sig.Who, sig.Why = who, why
	sig.Now = s.opt.Now
	s.layouts[sig.Name()] = sig
	return s.DisplayLayout(sig)
}

// Process runs one raw sample through the capture state machine.
func (s *Session) Process(smp device.Sample) {
	if !s.inking || s.current == nil {
		return
	}
	cur := s.mapper.Map(smp)
	pt := cur.Coordinates()
	cur.Tag = layout.HitTest(s.current, pt)
	s.penData = append(s.penData, s.mapper.Record(cur))

	prev := s.prev
	if prev != nil && prev.Contact && cur.Contact && (cur.Tag == "" || s.opt.InkingOnButton) {
		raster.StrokePolyline(s.live, []image.Point{prev.Coordinates(), pt}, s.opt.Pen.Color, s.opt.Pen.Width, false, s.renderOptions().ColorCapable)
	}
	s.prev = &cur

	if !cur.Contact && prev != nil && prev.Contact && prev.Tag != "" {
		s.click(prev.Tag)
	}
}

func (s *Session) click(name string) {
	s.log.Debug("pen lifted over element", slog.String("element", name))
	if s.OnClick != nil {
		s.OnClick(name)
	}
	s.current.Click(name)
}

func (s *Session) activate(name string) {
	e, ok := s.current.Element(name).(element.Clickable)
	if !ok {
		return
	}
	action, next := e.Activation()
	switch action {
	case element.ActionDone:
		s.Done(next)
	case element.ActionRefresh:
		s.Clear()
	case element.ActionCancel:
		s.Cancel()
	}
}

// Context builds the capture context for the current layout and ink.
func (s *Session) Context() *serialize.Context {
	c := serialize.NewContext(s.desc, s.penData, s.current)
	c.Pictures = s.opt.Pictures
	for k, v := range s.opt.Annotations {
		c.AddData(k, v)
	}
	c.AddData("session", s.ID)
	return c
}

// Done completes the current layout. Unless OnDone vetoes it, the session
// moves on to next, or clears the screen and finishes when next is empty.
func (s *Session) Done(next string) device.ErrorCode {
	c := s.Context()
	s.log.Info("done", slog.String("layout", s.current.Name()), slog.Int("samples", len(s.penData)), slog.String("next", next))
	if s.OnDone != nil && s.OnDone(c) {
		s.log.Debug("done vetoed")
		return device.None
	}
	s.result = c
	if next != "" {
		return s.LoadNextLayout(next)
	}
	code := s.ClearScreen()
	s.finished = true
	return code
}

// Clear discards the ink and shows the current layout again.
func (s *Session) Clear() device.ErrorCode {
	if s.OnClear != nil && s.OnClear() {
		s.log.Debug("clear vetoed")
		return device.None
	}
	if s.bitmap == nil {
		return device.LayoutNotFound
	}
	if code := s.surface.Display(s.bitmap); code != device.None {
		return code
	}
	s.resetInk()
	s.log.Info("cleared", slog.String("layout", s.current.Name()))
	return device.None
}

// Cancel aborts the capture. The result becomes a UserCancelled context.
func (s *Session) Cancel() device.ErrorCode {
	if s.OnCancel != nil && s.OnCancel() {
		s.log.Debug("cancel vetoed")
		return device.None
	}
	s.result = serialize.NewErrorContext(device.UserCancelled, "")
	code := s.ClearScreen()
	s.finished = true
	s.log.Info("cancelled")
	return code
}

// ClearScreen blanks the surface and stops inking.
func (s *Session) ClearScreen() device.ErrorCode {
	s.setInking(false)
	return s.surface.Clear()
}

// Run feeds the surface's samples through Process until the capture
// finishes, ctx ends or the surface closes its sample stream.
func (s *Session) Run(ctx context.Context) (*serialize.Context, error) {
	samples := s.surface.Samples()
	for !s.finished {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case smp, ok := <-samples:
			if !ok {
				s.log.Warn("sample stream closed")
				return nil, device.NotConnected
			}
			s.Process(smp)
		}
	}
	return s.result, nil
}
