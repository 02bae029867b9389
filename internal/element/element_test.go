/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package element

import (
	"image"
	"testing"
)

func TestDefaults(t *testing.T) {
	txt := NewText("t", "hello")
	if txt.FontSize != 40 || txt.Color != Black || txt.HAlign != AlignCenter || txt.VAlign != AlignCenter || !txt.AutoResize {
		t.Fatalf("unexpected text defaults: %+v", txt)
	}
	btn := NewButton("b", "OK")
	if btn.FillColor != LightGray || btn.BorderColor != Black || btn.TextColor != Black || btn.Action != ActionNone {
		t.Fatalf("unexpected button defaults: %+v", btn)
	}
	ln := NewLine("l", image.Pt(1, 2), image.Pt(10, 2))
	if ln.Width != 1 || ln.Color != Black || ln.Location() != image.Pt(1, 2) {
		t.Fatalf("unexpected line defaults: %+v", ln)
	}
}

func TestImageSizedToPicture(t *testing.T) {
	pic := image.NewRGBA(image.Rect(0, 0, 30, 20))
	img := NewImage("logo", pic)
	if img.Size() != image.Pt(30, 20) {
		t.Fatalf("size = %v, want 30x20", img.Size())
	}
}

func TestNextScreenImpliesDone(t *testing.T) {
	btn := NewButton("next", "Next")
	btn.SetNextScreen("page2")
	if a, next := btn.Activation(); a != ActionDone || next != "page2" {
		t.Fatalf("activation = %v %q", a, next)
	}
	cancel := NewButton("c", "Cancel")
	cancel.Action = ActionCancel
	cancel.SetNextScreen("page2")
	if cancel.Action != ActionCancel {
		t.Fatalf("explicit action overwritten: %v", cancel.Action)
	}
}

func TestResizeToNewDimension(t *testing.T) {
	btn := NewButton("b", "x")
	btn.SetBounds(image.Rect(100, 50, 300, 150))
	btn.ResizeToNewDimension(image.Pt(800, 480), image.Pt(400, 240))
	if got, want := btn.Bounds(), image.Rect(50, 25, 150, 75); got != want {
		t.Fatalf("bounds = %v, want %v", got, want)
	}

	ln := NewLine("l", image.Pt(10, 10), image.Pt(100, 30))
	ln.ResizeToNewDimension(image.Pt(100, 100), image.Pt(50, 200))
	if ln.Start != image.Pt(5, 20) || ln.End != image.Pt(50, 60) {
		t.Fatalf("line = %v-%v", ln.Start, ln.End)
	}
}

func TestLineMoveKeepsLength(t *testing.T) {
	ln := NewLine("l", image.Pt(0, 0), image.Pt(10, 5))
	ln.SetLocation(image.Pt(3, 3))
	if ln.End != image.Pt(13, 8) {
		t.Fatalf("end = %v", ln.End)
	}
	if got := ln.Bounds(); got != image.Rect(3, 3, 14, 9) {
		t.Fatalf("bounds = %v", got)
	}
}

func TestParsers(t *testing.T) {
	if k, ok := ParseKind("button"); !ok || k != KindButton {
		t.Fatalf("ParseKind(button) = %v %v", k, ok)
	}
	if _, ok := ParseKind("SLIDER"); ok {
		t.Fatalf("unknown kind accepted")
	}
	if ParseAction("refresh") != ActionRefresh || ParseAction("bogus") != ActionNone {
		t.Fatalf("ParseAction mismatch")
	}
	cases := map[string]Alignment{"left": AlignNear, "Top": AlignNear, "CENTRE": AlignCenter, "middle": AlignCenter, "right": AlignFar, "BOTTOM": AlignFar}
	for in, want := range cases {
		if got, ok := ParseAlignment(in); !ok || got != want {
			t.Fatalf("ParseAlignment(%q) = %v %v", in, got, ok)
		}
	}
	if AlignFar.HorizontalName() != "RIGHT" || AlignFar.VerticalName() != "BOTTOM" {
		t.Fatalf("alignment names mismatch")
	}
}
