/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package device

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"strings"
	"testing"
	"time"
)

func TestCatalogueLookup(t *testing.T) {
	d, ok := Lookup("stu530")
	if !ok || d.ProductModel != "STU-530" || d.ScreenSize() != image.Pt(800, 480) || !d.SupportColor {
		t.Fatalf("Lookup(stu530) = %+v %v", d, ok)
	}
	if d, ok := LookupPID(0x00a4); !ok || d.ProductModel != "STU-430" || d.SupportColor {
		t.Fatalf("LookupPID = %+v %v", d, ok)
	}
	if _, ok := Lookup("STU-999"); ok {
		t.Fatalf("unknown model found")
	}
	models := Models()
	if len(models) != 15 {
		t.Fatalf("models = %d", len(models))
	}
	for i := 1; i < len(models); i++ {
		if models[i-1].ProductModel > models[i].ProductModel {
			t.Fatalf("models not sorted")
		}
	}
	for _, m := range models {
		if m.DeviceType == PenDisplay && m.TabletSize() != m.ScreenSize() {
			t.Fatalf("%s: display tablet space differs from screen", m.ProductModel)
		}
	}
}

func TestDescriptorJSON(t *testing.T) {
	d, _ := Lookup("STU-540")
	d.SerialNo = "A1"
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"Vid":1386`, `"DeviceType":"Signpad"`, `"ConnectionMode":"Usb"`, `"TabletWidth":9600`, `"SerialNo":"A1"`} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("json %s missing %s", b, want)
		}
	}
	var back Descriptor
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != d {
		t.Fatalf("round trip: %+v != %+v", back, d)
	}
	if err := json.Unmarshal([]byte(`{"DeviceType":"Toaster"}`), &back); err == nil {
		t.Fatalf("unknown device type accepted")
	}
}

func TestIsSameDevice(t *testing.T) {
	a, _ := Lookup("STU-530")
	b := a
	if !a.IsSameDevice(b) {
		t.Fatalf("identical devices differ")
	}
	a.SerialNo, b.SerialNo = "111", "222"
	if a.IsSameDevice(b) {
		t.Fatalf("different serials matched")
	}
	b.SerialNo = "0"
	if !a.IsSameDevice(b) {
		t.Fatalf("unknown serial should match on ids")
	}
	c, _ := Lookup("STU-430")
	if a.IsSameDevice(c) {
		t.Fatalf("different pids matched")
	}
}

func TestErrorCode(t *testing.T) {
	if None.Err() != nil {
		t.Fatalf("None should not be an error")
	}
	err := DeviceBusy.Err()
	var code ErrorCode
	if !errors.As(err, &code) || code != DeviceBusy {
		t.Fatalf("errors.As = %v", code)
	}
	if !strings.HasPrefix(err.Error(), "DEVICE_BUSY: ") {
		t.Fatalf("message = %q", err.Error())
	}
	if ErrorCode(99).String() != "UNSPECIFIED" {
		t.Fatalf("out of range code = %s", ErrorCode(99))
	}
	var parsed ErrorCode
	_ = parsed.UnmarshalText([]byte("user_cancelled"))
	if parsed != UserCancelled {
		t.Fatalf("parsed = %v", parsed)
	}
}

func TestMapperRatio(t *testing.T) {
	d, _ := Lookup("STU-530")
	m := NewMapper(d)
	if m.Direct() {
		t.Fatalf("signpad should map by ratio")
	}
	if got := m.ToScreen(image.Pt(5400, 3240)); got != image.Pt(400, 240) {
		t.Fatalf("ToScreen = %v", got)
	}
	if got := m.ToTablet(image.Pt(400, 240)); got != image.Pt(5400, 3240) {
		t.Fatalf("ToTablet = %v", got)
	}
	s := m.Map(Sample{Seq: 7, X: 10800, Y: 0, Pressure: 99, Contact: true})
	if s.X != 800 || s.Y != 0 || s.Seq != 7 || s.Pressure != 99 || !s.Contact || s.Tag != "" {
		t.Fatalf("Map = %+v", s)
	}
}

func TestMapperRecordsTabletSpace(t *testing.T) {
	d, _ := Lookup("STU-530")
	m := NewMapper(d)
	if d.InkSpace() != d.TabletSize() {
		t.Fatalf("ink space = %v", d.InkSpace())
	}
	got := m.Record(m.Map(Sample{X: 5413, Y: 3253, Contact: true}))
	if got.X != 5400 || got.Y != 3240 {
		t.Fatalf("Record = %+v", got)
	}

	direct := Mapper{Screen: image.Pt(640, 480)}
	if got := direct.Record(direct.Map(Sample{X: 10, Y: 20})); got.X != 10 || got.Y != 20 {
		t.Fatalf("direct Record = %+v", got)
	}
	if (Descriptor{ScreenWidth: 640, ScreenHeight: 480}).InkSpace() != image.Pt(640, 480) {
		t.Fatalf("ink space without a tablet should be the screen")
	}
}

func TestMapperDirectClamps(t *testing.T) {
	m := Mapper{Screen: image.Pt(640, 480)}
	if !m.Direct() {
		t.Fatalf("unknown tablet space should map directly")
	}
	cases := map[image.Point]image.Point{
		{10, 20}:   {10, 20},
		{-5, 500}:  {0, 479},
		{9999, -1}: {639, 0},
		{639, 479}: {639, 479},
	}
	for in, want := range cases {
		if got := m.ToScreen(in); got != want {
			t.Fatalf("ToScreen(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestSimulatedSurface(t *testing.T) {
	d, _ := Lookup("STU-430")
	s := NewSimulated(d)
	var _ Surface = s

	img := image.NewRGBA(image.Rect(0, 0, 320, 200))
	if code := s.Display(img); code != None {
		t.Fatalf("display = %v", code)
	}
	s.DisplayResult = DisplayFail
	if code := s.Display(img); code != DisplayFail {
		t.Fatalf("forced failure = %v", code)
	}
	if len(s.Frames()) != 1 {
		t.Fatalf("frames = %d", len(s.Frames()))
	}
	s.SetInking(true)
	if !s.Inking() {
		t.Fatalf("inking flag not recorded")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go func() {
		_ = s.Feed(ctx, Sample{Seq: 1}, Sample{Seq: 2})
		s.Close()
	}()
	var seqs []uint32
	for smp := range s.Samples() {
		seqs = append(seqs, smp.Seq)
	}
	if len(seqs) != 2 || seqs[0] != 1 || seqs[1] != 2 {
		t.Fatalf("replayed %v", seqs)
	}
	if err := s.Feed(ctx, Sample{Seq: 3}); !errors.Is(err, NotConnected) {
		t.Fatalf("feed after close = %v", err)
	}
	s.Close()
}

func TestSimulatedCloseWhileFeeding(t *testing.T) {
	s := NewSimulated(Descriptor{})
	samples := make([]Sample, 200)
	for i := range samples {
		samples[i].Seq = uint32(i)
	}
	errc := make(chan error, 1)
	go func() { errc <- s.Feed(context.Background(), samples...) }()

	time.Sleep(50 * time.Millisecond)
	s.Close()
	select {
	case err := <-errc:
		if !errors.Is(err, NotConnected) {
			t.Fatalf("feed across close = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("feed still blocked after close")
	}
	n := 0
	for range s.Samples() {
		n++
	}
	if n != 64 {
		t.Fatalf("buffered samples = %d", n)
	}
}

func TestScreenlessSurface(t *testing.T) {
	s := NewSimulated(Descriptor{DeviceType: PenTablet})
	if code := s.Display(image.NewRGBA(image.Rect(0, 0, 1, 1))); code != NotSupported {
		t.Fatalf("display on screenless device = %v", code)
	}
}
