/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package serialize maps layouts, elements and capture contexts to and from
// their JSON document form.
package serialize

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"

	"inkplatform/internal/element"
	"inkplatform/internal/layout"
	applog "inkplatform/internal/log"
)

// ErrUnknownLayout is returned by file level readers when the document's
// Layout discriminator names no known layout type.
var ErrUnknownLayout = errors.New("serialize: unknown layout type")

// Options controls where image pictures are read from and written to.
type Options struct {
	// BaseDir resolves relative PictureFilename values.
	BaseDir string
	// PictureDir receives the PNG files written for image elements.
	// os.TempDir() when empty.
	PictureDir string
}

type rgb [3]int

func toRGB(c element.Color) *rgb { return &rgb{int(c.R), int(c.G), int(c.B)} }

func (c *rgb) color(def element.Color) element.Color {
	if c == nil {
		return def
	}
	ch := func(v int) uint8 { return uint8(min(max(v, 0), 255)) }
	return element.Color{R: ch(c[0]), G: ch(c[1]), B: ch(c[2])}
}

// colorField omits c when it equals the default.
func colorField(c, def element.Color) *rgb {
	if c == def {
		return nil
	}
	return toRGB(c)
}

type elementJSON struct {
	ElementType string `json:"ElementType"`
	Name        string `json:"Name"`
	X           int    `json:"X,omitempty"`
	Y           int    `json:"Y,omitempty"`
	Width       int    `json:"Width,omitempty"`
	Height      int    `json:"Height,omitempty"`

	Text        string `json:"Text,omitempty"`
	TextColor   *rgb   `json:"TextColor,omitempty"`
	FillColor   *rgb   `json:"FillColor,omitempty"`
	BorderColor *rgb   `json:"BorderColor,omitempty"`
	Align       string `json:"Align,omitempty"`
	VAlign      string `json:"VAlign,omitempty"`
	FontSize    int    `json:"FontSize,omitempty"`
	AutoResize  *bool  `json:"AutoResize,omitempty"`

	NextScreen string `json:"NextScreen,omitempty"`
	Action     string `json:"Action,omitempty"`

	LineColor *rgb    `json:"LineColor,omitempty"`
	X1        int     `json:"X1,omitempty"`
	Y1        int     `json:"Y1,omitempty"`
	X2        int     `json:"X2,omitempty"`
	Y2        int     `json:"Y2,omitempty"`
	PenWidth  float64 `json:"PenWidth,omitempty"`
	Dotted    bool    `json:"Dotted,omitempty"`

	PictureFilename string `json:"PictureFilename,omitempty"`
}

type layoutJSON struct {
	Layout      string        `json:"Layout"`
	Name        string        `json:"Name"`
	ElementList []elementJSON `json:"ElementList,omitempty"`

	TopRatio    int    `json:"TopRatio,omitempty"`
	MiddleRatio int    `json:"MiddleRatio,omitempty"`
	BottomRatio int    `json:"BottomRatio,omitempty"`
	LeftRatio   int    `json:"LeftRatio,omitempty"`
	CentreRatio int    `json:"CentreRatio,omitempty"`
	RightRatio  int    `json:"RightRatio,omitempty"`
	Flow        string `json:"Flow,omitempty"`
	Spacing     int    `json:"Spacing,omitempty"`
	ShowGrid    bool   `json:"ShowGrid,omitempty"`

	TopLeft      []elementJSON `json:"TopLeft,omitempty"`
	TopCentre    []elementJSON `json:"TopCentre,omitempty"`
	TopRight     []elementJSON `json:"TopRight,omitempty"`
	MiddleLeft   []elementJSON `json:"MiddleLeft,omitempty"`
	MiddleCentre []elementJSON `json:"MiddleCentre,omitempty"`
	MiddleRight  []elementJSON `json:"MiddleRight,omitempty"`
	BottomLeft   []elementJSON `json:"BottomLeft,omitempty"`
	BottomCentre []elementJSON `json:"BottomCentre,omitempty"`
	BottomRight  []elementJSON `json:"BottomRight,omitempty"`

	OkText     string `json:"OkText,omitempty"`
	ClearText  string `json:"ClearText,omitempty"`
	CancelText string `json:"CancelText,omitempty"`
	Who        string `json:"Who,omitempty"`
	Why        string `json:"Why,omitempty"`
}

func (d *layoutJSON) bucket(p layout.Position) *[]elementJSON {
	switch p {
	case layout.TopLeft:
		return &d.TopLeft
	case layout.TopCentre:
		return &d.TopCentre
	case layout.TopRight:
		return &d.TopRight
	case layout.MiddleLeft:
		return &d.MiddleLeft
	case layout.MiddleCentre:
		return &d.MiddleCentre
	case layout.MiddleRight:
		return &d.MiddleRight
	case layout.BottomLeft:
		return &d.BottomLeft
	case layout.BottomCentre:
		return &d.BottomCentre
	case layout.BottomRight:
		return &d.BottomRight
	}
	return nil
}

// nonDefault returns 0, which the encoder omits, when v equals def.
func nonDefault(v, def int) int {
	if v == def {
		return 0
	}
	return v
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// MarshalLayout writes l as a layout document. Fields holding their default
// value are omitted. Image pictures are stored as PNG files and referenced
// by path.
func MarshalLayout(l layout.Layout, opt Options) ([]byte, error) {
	doc, err := encodeLayout(l, opt)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// MarshalLayoutIndent is MarshalLayout with two-space indentation.
func MarshalLayoutIndent(l layout.Layout, opt Options) ([]byte, error) {
	doc, err := encodeLayout(l, opt)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

func encodeLayout(l layout.Layout, opt Options) (*layoutJSON, error) {
	if l == nil {
		return nil, errors.New("serialize: nil layout")
	}
	doc := &layoutJSON{Layout: l.Type().String(), Name: l.Name()}

	skip := func(element.Element) bool { return false }
	switch v := l.(type) {
	case *layout.BoxLayout:
		lr, cr, rr := v.HorizontalRatio()
		tr, mr, br := v.VerticalRatio()
		doc.LeftRatio, doc.CentreRatio, doc.RightRatio = nonDefault(lr, 1), nonDefault(cr, 1), nonDefault(rr, 1)
		doc.TopRatio, doc.MiddleRatio, doc.BottomRatio = nonDefault(tr, 1), nonDefault(mr, 1), nonDefault(br, 1)
		if v.Flow() != layout.FlowRight {
			doc.Flow = v.Flow().String()
		}
		doc.Spacing = v.Spacing()
		doc.ShowGrid = v.ShowGrid
		for _, p := range layout.Positions {
			for _, e := range v.ElementsAt(p) {
				ej, err := encodeElement(e, opt)
				if err != nil {
					return nil, err
				}
				dst := doc.bucket(p)
				*dst = append(*dst, ej)
			}
		}
		skip = func(e element.Element) bool {
			return v.IsGridLine(e.Name()) || v.PositionOf(e.Name()) != layout.PositionUnknown
		}
	case *layout.SignatureLayout:
		doc.OkText = textField(v.OkText, "OK")
		doc.ClearText = textField(v.ClearText, "Clear")
		doc.CancelText = textField(v.CancelText, "Cancel")
		doc.Who, doc.Why = v.Who, v.Why
		skip = func(e element.Element) bool { return layout.IsGenerated(e.Name()) }
	}

	for _, e := range l.Elements() {
		if skip(e) {
			continue
		}
		ej, err := encodeElement(e, opt)
		if err != nil {
			return nil, err
		}
		doc.ElementList = append(doc.ElementList, ej)
	}
	return doc, nil
}

func textField(v, def string) string {
	if v == def {
		return ""
	}
	return v
}

func alignField(a element.Alignment, name func(element.Alignment) string) string {
	if a == element.AlignCenter {
		return ""
	}
	return name(a)
}

func autoResizeField(v bool) *bool {
	if v {
		return nil
	}
	return &v
}

func actionField(a element.Action) string {
	if a == element.ActionNone {
		return ""
	}
	return a.String()
}

func encodeElement(e element.Element, opt Options) (elementJSON, error) {
	ej := elementJSON{ElementType: e.Kind().String(), Name: e.Name()}
	if e.Kind() != element.KindLine {
		ej.X, ej.Y = e.Location().X, e.Location().Y
		ej.Width, ej.Height = e.Size().X, e.Size().Y
	}
	switch v := e.(type) {
	case *element.Text:
		ej.Text = v.Text
		ej.TextColor = colorField(v.Color, element.Black)
		ej.Align = alignField(v.HAlign, element.Alignment.HorizontalName)
		ej.VAlign = alignField(v.VAlign, element.Alignment.VerticalName)
		ej.FontSize = nonDefault(v.FontSize, element.DefaultFontSize)
		ej.AutoResize = autoResizeField(v.AutoResize)
	case *element.Button:
		ej.Text = v.Text
		ej.TextColor = colorField(v.TextColor, element.Black)
		ej.FillColor = colorField(v.FillColor, element.LightGray)
		ej.BorderColor = colorField(v.BorderColor, element.Black)
		ej.FontSize = nonDefault(v.FontSize, element.DefaultFontSize)
		ej.AutoResize = autoResizeField(v.AutoResize)
		ej.NextScreen = v.NextScreen
		ej.Action = actionField(v.Action)
	case *element.Line:
		ej.X1, ej.Y1, ej.X2, ej.Y2 = v.Start.X, v.Start.Y, v.End.X, v.End.Y
		ej.LineColor = colorField(v.Color, element.Black)
		if v.Width != element.DefaultLineWidth {
			ej.PenWidth = v.Width
		}
		ej.Dotted = v.Dotted
	case *element.Image:
		ej.NextScreen = v.NextScreen
		ej.Action = actionField(v.Action)
		path, err := writePicture(v, opt)
		if err != nil {
			return ej, fmt.Errorf("image %q: %w", v.Name(), err)
		}
		ej.PictureFilename = path
	default:
		return ej, fmt.Errorf("serialize: unsupported element %T", e)
	}
	return ej, nil
}

// writePicture stores the picture under a fresh UUID file name. An image
// without pixels keeps referencing its source file.
func writePicture(img *element.Image, opt Options) (string, error) {
	if img.Picture == nil {
		return img.Source, nil
	}
	dir := opt.PictureDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, uuid.NewString()+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img.Picture); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

// UnmarshalLayout reads a layout document. The Layout discriminator is read
// first. An unknown discriminator yields a nil layout and no error, and
// elements with an unknown ElementType are skipped. Malformed JSON and
// unreadable pictures are errors.
func UnmarshalLayout(data []byte, opt Options) (layout.Layout, error) {
	var doc layoutJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	lg := applog.WithComponent("serialize")

	kind := layout.TypeDefault
	if doc.Layout != "" {
		t, ok := layout.ParseType(doc.Layout)
		if !ok {
			lg.Warn("unknown layout type", slog.String("layout", doc.Layout))
			return nil, nil
		}
		kind = t
	}

	var l layout.Layout
	switch kind {
	case layout.TypeBox:
		box := layout.NewBox(doc.Name)
		box.SetHorizontalRatio(orDefault(doc.LeftRatio, 1), orDefault(doc.CentreRatio, 1), orDefault(doc.RightRatio, 1))
		box.SetVerticalRatio(orDefault(doc.TopRatio, 1), orDefault(doc.MiddleRatio, 1), orDefault(doc.BottomRatio, 1))
		if doc.Flow != "" {
			f, ok := layout.ParseFlow(doc.Flow)
			if !ok {
				lg.Warn("unknown flow, using RIGHT", slog.String("flow", doc.Flow))
			}
			box.SetFlow(f)
		}
		box.SetSpacing(doc.Spacing)
		box.ShowGrid = doc.ShowGrid
		// The document keeps no order across cells, so cell elements come
		// back in Positions order and free elements follow them. Drawing
		// order of a box may differ from the marshalled layout.
		for _, p := range layout.Positions {
			for _, ej := range *doc.bucket(p) {
				e, err := decodeElement(ej, opt)
				if err != nil {
					return nil, err
				}
				if e != nil && !box.AddElementAt(e, p) {
					lg.Warn("duplicate element skipped", slog.String("element", e.Name()))
				}
			}
		}
		l = box
	case layout.TypeSignature:
		sig := layout.NewSignature(doc.Name)
		if doc.OkText != "" {
			sig.OkText = doc.OkText
		}
		if doc.ClearText != "" {
			sig.ClearText = doc.ClearText
		}
		if doc.CancelText != "" {
			sig.CancelText = doc.CancelText
		}
		sig.Who, sig.Why = doc.Who, doc.Why
		l = sig
	default:
		l = layout.New(doc.Name)
	}

	for _, ej := range doc.ElementList {
		e, err := decodeElement(ej, opt)
		if err != nil {
			return nil, err
		}
		if e != nil && !l.AddElement(e) {
			lg.Warn("duplicate element skipped", slog.String("element", e.Name()))
		}
	}
	return l, nil
}

func autoResize(p *bool) bool { return p == nil || *p }

func alignment(s string) element.Alignment {
	a, _ := element.ParseAlignment(s)
	return a
}

func decodeElement(ej elementJSON, opt Options) (element.Element, error) {
	kind, ok := element.ParseKind(ej.ElementType)
	if !ok || ej.Name == "" {
		applog.WithComponent("serialize").Warn("element skipped",
			slog.String("type", ej.ElementType), slog.String("element", ej.Name))
		return nil, nil
	}
	bounds := image.Rect(ej.X, ej.Y, ej.X+ej.Width, ej.Y+ej.Height)

	switch kind {
	case element.KindText:
		t := element.NewText(ej.Name, ej.Text)
		t.SetBounds(bounds)
		t.Color = ej.TextColor.color(element.Black)
		t.HAlign, t.VAlign = alignment(ej.Align), alignment(ej.VAlign)
		t.FontSize = orDefault(ej.FontSize, element.DefaultFontSize)
		t.AutoResize = autoResize(ej.AutoResize)
		return t, nil
	case element.KindButton:
		b := element.NewButton(ej.Name, ej.Text)
		b.SetBounds(bounds)
		b.TextColor = ej.TextColor.color(element.Black)
		b.FillColor = ej.FillColor.color(element.LightGray)
		b.BorderColor = ej.BorderColor.color(element.Black)
		b.FontSize = orDefault(ej.FontSize, element.DefaultFontSize)
		b.AutoResize = autoResize(ej.AutoResize)
		b.Action = element.ParseAction(ej.Action)
		b.SetNextScreen(ej.NextScreen)
		return b, nil
	case element.KindLine:
		ln := element.NewLine(ej.Name, image.Pt(ej.X1, ej.Y1), image.Pt(ej.X2, ej.Y2))
		ln.Color = ej.LineColor.color(element.Black)
		if ej.PenWidth > 0 {
			ln.Width = ej.PenWidth
		}
		ln.Dotted = ej.Dotted
		return ln, nil
	case element.KindImage:
		pic, path, err := readPicture(ej.PictureFilename, opt)
		if err != nil {
			return nil, fmt.Errorf("image %q: %w", ej.Name, err)
		}
		img := element.NewImage(ej.Name, pic)
		img.Source = path
		if ej.Width > 0 || ej.Height > 0 {
			img.SetBounds(bounds)
		} else {
			img.SetLocation(bounds.Min)
		}
		img.Action = element.ParseAction(ej.Action)
		img.SetNextScreen(ej.NextScreen)
		return img, nil
	}
	return nil, nil
}

func readPicture(name string, opt Options) (image.Image, string, error) {
	if name == "" {
		return nil, "", errors.New("missing PictureFilename")
	}
	path := name
	if !filepath.IsAbs(path) && opt.BaseDir != "" {
		path = filepath.Join(opt.BaseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, path, err
	}
	defer f.Close()
	pic, _, err := image.Decode(f)
	if err != nil {
		return nil, path, fmt.Errorf("decode %s: %w", path, err)
	}
	return pic, path, nil
}
