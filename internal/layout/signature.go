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
	"time"

	"inkplatform/internal/element"
)

// Names of the elements a SignatureLayout generates on Render.
const (
	SigOk     = "btnOk"
	SigClear  = "btnClear"
	SigCancel = "btnCancel"
	SigLine   = "dottedLine"
	SigWho    = "txtWho"
	SigWhy    = "txtWhy"
	SigTime   = "txtTime"
)

var signatureGenerated = [...]string{SigOk, SigClear, SigCancel, SigLine, SigWho, SigWhy, SigTime}

// wideAspect is the width/height ratio from which buttons move to a side column.
const wideAspect = 2.5

const signatureButtonFont = 20

// SignatureLayout is the fixed OK/Clear/Cancel signing screen with optional
// signer (Who), reason (Why) and timestamp above a dotted signature line.
type SignatureLayout struct {
	Base
	OkText     string
	ClearText  string
	CancelText string
	Who        string
	Why        string

	// Now stamps txtTime; time.Now when nil.
	Now func() time.Time
}

func NewSignature(name string) *SignatureLayout {
	return &SignatureLayout{Base: Base{name: name}, OkText: "OK", ClearText: "Clear", CancelText: "Cancel"}
}

func (s *SignatureLayout) Type() Type { return TypeSignature }

// IsGenerated reports whether name belongs to an element Render owns.
func IsGenerated(name string) bool {
	for _, n := range signatureGenerated {
		if n == name {
			return true
		}
	}
	return false
}

// Render regenerates the signing elements for the target size, replacing
// the ones produced by an earlier call.
func (s *SignatureLayout) Render(width, height int) {
	for _, n := range signatureGenerated {
		s.Base.RemoveElement(n)
	}
	if width <= 0 || height <= 0 {
		return
	}

	ok := element.NewButton(SigOk, s.OkText)
	clr := element.NewButton(SigClear, s.ClearText)
	cancel := element.NewButton(SigCancel, s.CancelText)
	ok.Action, clr.Action, cancel.Action = element.ActionDone, element.ActionRefresh, element.ActionCancel
	for _, b := range []*element.Button{ok, clr, cancel} {
		b.FontSize = signatureButtonFont
	}

	line := element.NewLine(SigLine, image.Point{}, image.Point{})
	line.Dotted = true
	who := element.NewText(SigWho, s.Who)
	why := element.NewText(SigWhy, s.Why)
	stamp := element.NewText(SigTime, s.now().Format("15:04 Monday, 2 January 2006"))

	annotated := s.Who != "" || s.Why != ""
	if float64(width)/float64(height) < wideAspect {
		w2, w3 := width/3, width/3
		w1 := width - w2 - w3
		y := height * 8 / 9
		bh := height - y
		ok.SetBounds(image.Rect(0, y, w1, y+bh))
		clr.SetBounds(image.Rect(w1, y, w1+w2, y+bh))
		cancel.SetBounds(image.Rect(w1+w2, y, width, y+bh))

		if annotated {
			lw := width * 5 / 7
			lx := (width - lw) / 2
			ly := height * 6 / 9
			line.Start, line.End = image.Pt(lx, ly), image.Pt(lx+lw, ly)

			placeText(why, image.Rect(0, 0, width, bh), element.AlignNear, element.AlignCenter)
			placeText(who, image.Rect(lx, ly, lx+lw, ly+bh), element.AlignNear, element.AlignFar)
			placeText(stamp, image.Rect(lx, ly+bh, lx+lw, ly+2*bh), element.AlignNear, element.AlignNear)
			for _, t := range []*element.Text{why, who, stamp} {
				t.FontSize = max(t.Size().Y/2, 1)
			}
		}
	} else {
		x := width * 4 / 5
		bw := width - x
		h2, h3 := height/3, height/3
		h1 := height - h2 - h3
		ok.SetBounds(image.Rect(x, 0, x+bw-1, h1))
		clr.SetBounds(image.Rect(x, h1, x+bw-1, h1+h2))
		cancel.SetBounds(image.Rect(x, h1+h2, x+bw-1, h1+h2+h3-1))

		if annotated {
			lw := x * 7 / 8
			lx := x / 16
			ly := h1 + h2
			line.Start, line.End = image.Pt(lx, ly), image.Pt(lx+lw, ly)

			placeText(why, image.Rect(0, 0, width, h1/2), element.AlignNear, element.AlignCenter)
			placeText(who, image.Rect(lx, ly, lx+lw, ly+h3/2), element.AlignFar, element.AlignCenter)
			placeText(stamp, image.Rect(lx, ly+h3/2, lx+lw, ly+h3), element.AlignFar, element.AlignNear)
		}
	}

	s.Base.AddElement(ok)
	s.Base.AddElement(clr)
	s.Base.AddElement(cancel)
	if annotated {
		s.Base.AddElement(line)
		s.Base.AddElement(stamp)
		if s.Who != "" {
			s.Base.AddElement(who)
		}
		if s.Why != "" {
			s.Base.AddElement(why)
		}
	}
}

func (s *SignatureLayout) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func placeText(t *element.Text, r image.Rectangle, h, v element.Alignment) {
	t.SetBounds(r)
	t.HAlign, t.VAlign = h, v
}
