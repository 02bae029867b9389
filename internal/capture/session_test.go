/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package capture

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkplatform/internal/device"
	"inkplatform/internal/element"
	"inkplatform/internal/layout"
	"inkplatform/internal/serialize"
)

func pad() device.Descriptor {
	return device.Descriptor{
		ProductModel: "test-pad", HasScreen: true,
		ScreenWidth: 400, ScreenHeight: 300, TabletWidth: 400, TabletHeight: 300,
	}
}

func open(t *testing.T, desc device.Descriptor, opt Options) (*Session, *device.Simulated) {
	t.Helper()
	surf := device.NewSimulated(desc)
	s, code := New(surf, opt)
	require.Equal(t, device.None, code)
	t.Cleanup(s.Close)
	return s, surf
}

func pen(x, y int, contact bool) device.Sample {
	return device.Sample{X: x, Y: y, Pressure: 400, Contact: contact, Proximity: true}
}

func buttonLayout(name string) (*layout.Base, *element.Button) {
	l := layout.New(name)
	b := element.NewButton("btnA", "A")
	b.SetBounds(image.Rect(10, 10, 210, 110))
	l.AddElement(b)
	return l, b
}

func TestClickFiresOnceOnPenLift(t *testing.T) {
	s, _ := open(t, pad(), Options{})
	l, _ := buttonLayout("main")
	clicks, notified := 0, 0
	l.SetClickHandler("btnA", func(string) { clicks++ })
	s.OnClick = func(name string) {
		assert.Equal(t, "btnA", name)
		notified++
	}
	require.Equal(t, device.None, s.DisplayLayout(l))

	s.Process(pen(20, 20, true))
	s.Process(pen(20, 20, false))
	s.Process(pen(20, 20, false))

	assert.Equal(t, 1, clicks)
	assert.Equal(t, 1, notified)
	data := s.PenData()
	require.Len(t, data, 3)
	for _, d := range data {
		assert.Equal(t, "btnA", d.Tag)
	}
}

func TestSamplesOutsideElementsAreUntagged(t *testing.T) {
	s, _ := open(t, pad(), Options{})
	l, _ := buttonLayout("main")
	clicks := 0
	l.SetClickHandler("btnA", func(string) { clicks++ })
	require.Equal(t, device.None, s.DisplayLayout(l))

	s.Process(pen(300, 200, true))
	s.Process(pen(300, 200, false))
	s.Process(pen(20, 20, false))

	assert.Zero(t, clicks)
	data := s.PenData()
	require.Len(t, data, 3)
	assert.Equal(t, "", data[0].Tag)
	assert.Equal(t, "btnA", data[2].Tag)
}

func TestSamplesDiscardedWhenNotInking(t *testing.T) {
	s, _ := open(t, pad(), Options{})
	s.Process(pen(20, 20, true))
	assert.Empty(t, s.PenData())

	l, _ := buttonLayout("main")
	require.Equal(t, device.None, s.DisplayLayout(l))
	s.ClearScreen()
	s.Process(pen(20, 20, true))
	assert.Empty(t, s.PenData())
	assert.False(t, s.Inking())
}

func TestClickableImage(t *testing.T) {
	s, _ := open(t, pad(), Options{})
	l := layout.New("pics")
	img := element.NewImage("logo", image.NewRGBA(image.Rect(0, 0, 50, 50)))
	img.SetLocation(image.Pt(100, 100))
	img.Action = element.ActionCancel
	l.AddElement(img)
	require.Equal(t, device.None, s.DisplayLayout(l))
	assert.True(t, layout.IsButton(l, img))

	s.Process(pen(120, 120, true))
	s.Process(pen(120, 120, false))
	require.True(t, s.Finished())
	require.NotNil(t, s.Result())
	assert.Equal(t, device.UserCancelled, s.Result().Code())
}

func TestRatioMapping(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	desc, ok := device.Lookup("STU-530")
	require.True(t, ok)
	s, _ := open(t, desc, Options{})
	require.Equal(t, device.None, s.DisplayLayout(layout.New("blank")))

	s.Process(pen(5400, 3240, true))
	s.Process(pen(5940, 3240, true))
	s.Process(pen(5413, 3253, true))
	data := s.PenData()
	require.Len(t, data, 3)
	// Pen data is kept in tablet space at the screen's resolution.
	assert.Equal(t, [2]uint32{5400, 3240}, [2]uint32{data[0].X, data[0].Y})
	assert.Equal(t, [2]uint32{5940, 3240}, [2]uint32{data[1].X, data[1].Y})
	assert.Equal(t, [2]uint32{5400, 3240}, [2]uint32{data[2].X, data[2].Y})
	assert.Equal(t, desc.TabletSize(), s.Context().Device().InkSpace())

	// Feedback is drawn on the screen.
	assert.NotEqual(t, white, s.Live().RGBAAt(420, 240))
}

func TestInkFeedbackOverButtons(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	for _, onButton := range []bool{false, true} {
		s, _ := open(t, pad(), Options{InkingOnButton: onButton})
		l, _ := buttonLayout("main")
		require.Equal(t, device.None, s.DisplayLayout(l))
		require.Equal(t, white, s.Live().RGBAAt(40, 20))

		s.Process(pen(20, 20, true))
		s.Process(pen(60, 20, true))
		assert.Len(t, s.PenData(), 2)
		if onButton {
			assert.NotEqual(t, white, s.Live().RGBAAt(40, 20))
		} else {
			assert.Equal(t, white, s.Live().RGBAAt(40, 20))
		}
		assert.Equal(t, white, s.Bitmap().RGBAAt(40, 20))
		s.Close()
	}
}

func TestFeedbackNeedsContactOnBothEnds(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	s, _ := open(t, pad(), Options{})
	require.Equal(t, device.None, s.DisplayLayout(layout.New("blank")))

	s.Process(pen(250, 200, false))
	s.Process(pen(300, 200, true))
	assert.Equal(t, white, s.Live().RGBAAt(275, 200))

	s.Process(pen(350, 200, true))
	assert.NotEqual(t, white, s.Live().RGBAAt(325, 200))
}

func TestSignatureDone(t *testing.T) {
	fixed := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)
	s, surf := open(t, pad(), Options{Annotations: map[string]string{"order": "42"}, Now: func() time.Time { return fixed }})
	require.Equal(t, device.None, s.CaptureSignature("Alice", "Approval"))
	assert.True(t, surf.Inking())
	require.Len(t, surf.Frames(), 1)

	var got int
	s.OnDone = func(c *serialize.Context) bool {
		got = len(c.PenData())
		return false
	}

	s.Process(pen(150, 150, true))
	s.Process(pen(200, 160, true))
	s.Process(pen(200, 160, false))
	// btnOk spans (0,266)-(134,300) at 400x300.
	s.Process(pen(50, 280, true))
	s.Process(pen(50, 280, false))

	assert.Equal(t, 5, got)
	assert.True(t, s.Finished())
	assert.False(t, surf.Inking())
	assert.Equal(t, 1, surf.Clears())

	res := s.Result()
	require.NotNil(t, res)
	assert.False(t, res.IsError())
	v, _ := res.Data("order")
	assert.Equal(t, "42", v)
	id, _ := res.Data("session")
	assert.Equal(t, s.ID, id)
	sig, ok := res.Layout().(*layout.SignatureLayout)
	require.True(t, ok)
	assert.Equal(t, "Alice", sig.Who)
	txt := sig.Element(layout.SigTime).(*element.Text)
	assert.Contains(t, txt.Text, "4 March 2024")
}

func TestDoneVetoed(t *testing.T) {
	s, _ := open(t, pad(), Options{})
	require.Equal(t, device.None, s.CaptureSignature("", ""))
	s.OnDone = func(*serialize.Context) bool { return true }

	s.Process(pen(50, 280, true))
	s.Process(pen(50, 280, false))
	assert.False(t, s.Finished())
	assert.Nil(t, s.Result())
	assert.True(t, s.Inking())
}

func TestChainedLayouts(t *testing.T) {
	s, surf := open(t, pad(), Options{})
	first, btn := buttonLayout("first")
	btn.SetNextScreen("second")
	second := layout.New("second")

	require.Equal(t, device.None, s.DisplayLayouts([]layout.Layout{first, second}, ""))
	assert.Equal(t, "first", s.Current().Name())

	s.Process(pen(20, 20, true))
	s.Process(pen(20, 20, false))

	assert.Equal(t, "second", s.Current().Name())
	assert.False(t, s.Finished())
	assert.Empty(t, s.PenData())
	require.NotNil(t, s.Result())
	assert.Equal(t, "first", s.Result().Layout().Name())
	assert.Len(t, surf.Frames(), 2)

	assert.Equal(t, device.LayoutNotFound, s.LoadNextLayout("third"))
	assert.Equal(t, "second", s.Current().Name())
}

func TestRefreshRedisplays(t *testing.T) {
	s, surf := open(t, pad(), Options{})
	l, btn := buttonLayout("main")
	btn.Action = element.ActionRefresh
	require.Equal(t, device.None, s.DisplayLayout(l))

	s.Process(pen(300, 200, true))
	s.Process(pen(320, 210, true))
	s.Process(pen(20, 20, true))
	s.Process(pen(20, 20, false))

	assert.Empty(t, s.PenData())
	assert.Len(t, surf.Frames(), 2)
	assert.Equal(t, s.Bitmap().Pix, s.Live().Pix)
	assert.True(t, s.Inking())

	vetoed := 0
	s.OnClear = func() bool { vetoed++; return true }
	s.Process(pen(20, 20, true))
	s.Process(pen(20, 20, false))
	assert.Equal(t, 1, vetoed)
	assert.Len(t, s.PenData(), 2)
}

func TestCancel(t *testing.T) {
	s, surf := open(t, pad(), Options{})
	require.Equal(t, device.None, s.CaptureSignature("Bob", ""))

	// btnCancel spans (267,266)-(400,300).
	s.Process(pen(350, 280, true))
	s.Process(pen(350, 280, false))

	require.True(t, s.Finished())
	assert.Equal(t, device.UserCancelled, s.Result().Code())
	assert.Equal(t, 1, surf.Clears())
}

func TestSurfaceIsNotReentrant(t *testing.T) {
	surf := device.NewSimulated(pad())
	s1, code := New(surf, Options{})
	require.Equal(t, device.None, code)
	assert.True(t, InUse(surf))

	_, code = New(surf, Options{})
	assert.Equal(t, device.DeviceBusy, code)

	s1.Close()
	assert.False(t, InUse(surf))
	s2, code := New(surf, Options{})
	require.Equal(t, device.None, code)
	s2.Close()

	_, code = New(nil, Options{})
	assert.Equal(t, device.NullParam, code)
}

func TestDisplayErrors(t *testing.T) {
	desc := pad()
	desc.HasScreen = false
	s, _ := open(t, desc, Options{})
	assert.Equal(t, device.NotSupported, s.DisplayLayout(layout.New("x")))
	assert.Equal(t, device.NullParam, s.DisplayLayout(nil))

	s2, surf := open(t, pad(), Options{})
	surf.DisplayResult = device.DisplayFail
	assert.Equal(t, device.DisplayFail, s2.DisplayLayout(layout.New("x")))
	assert.Nil(t, s2.Current())
	assert.False(t, s2.Inking())
}

func TestRunCompletes(t *testing.T) {
	s, surf := open(t, pad(), Options{})
	require.Equal(t, device.None, s.CaptureSignature("Alice", ""))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() {
		_ = surf.Feed(ctx, pen(150, 150, true), pen(160, 150, true), pen(160, 150, false),
			pen(50, 280, true), pen(50, 280, false))
	}()

	res, err := s.Run(ctx)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, res.PenData(), 5)
}

func TestRunStops(t *testing.T) {
	s, surf := open(t, pad(), Options{})
	require.Equal(t, device.None, s.CaptureSignature("Alice", ""))
	surf.Close()
	_, err := s.Run(context.Background())
	assert.ErrorIs(t, err, device.NotConnected)

	s2, _ := open(t, pad(), Options{})
	require.Equal(t, device.None, s2.CaptureSignature("Alice", ""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s2.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
