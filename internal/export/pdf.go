/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/jung-kurt/gofpdf"

	"inkplatform/internal/element"
	"inkplatform/internal/ink"
	"inkplatform/internal/serialize"
)

// Sheet is one finished capture: the layout as displayed, the ink image and
// the context they came from. Any part may be nil.
type Sheet struct {
	Layout  image.Image
	Ink     image.Image
	Context *serialize.Context
}

// CanvasSize is the screen the ink was captured on.
func (s Sheet) CanvasSize() image.Point {
	if s.Context != nil {
		if sz := s.Context.Device().ScreenSize(); sz.X > 0 && sz.Y > 0 {
			return sz
		}
	}
	if s.Layout != nil {
		return s.Layout.Bounds().Size()
	}
	if s.Ink != nil {
		return s.Ink.Bounds().Size()
	}
	return image.Point{}
}

// CanvasInk is the context's pen data scaled from the device's ink space
// onto CanvasSize.
func (s Sheet) CanvasInk() []ink.InkData {
	if s.Context == nil {
		return nil
	}
	return ink.Rescale(s.Context.PenData(), s.Context.Device().InkSpace(), s.CanvasSize())
}

// PDFOptions controls the capture sheet. Units are points on an A4 page.
type PDFOptions struct {
	Title         string
	IncludeGuides bool
	GuideColor    element.Color
	// Now stamps the sheet footer; time.Now when nil.
	Now func() time.Time
}

const (
	pageW  = 595.0
	pageH  = 842.0
	margin = 36.0
)

// WriteCaptureSheet writes a single page PDF with the layout image, the ink
// image and the capture metadata.
func WriteCaptureSheet(path string, sheet Sheet, opt PDFOptions) error {
	title := opt.Title
	if title == "" {
		title = "Capture"
	}
	guideCol := opt.GuideColor
	if guideCol == (element.Color{}) {
		guideCol = element.Color{R: 255}
	}
	now := time.Now
	if opt.Now != nil {
		now = opt.Now
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetTitle(title, true)
	pdf.SetAuthor("inkplatform", false)
	pdf.SetCreationDate(now())
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(margin, margin+16, title)
	y := margin + 32

	boxW := pageW - 2*margin
	for _, part := range []struct {
		name string
		img  image.Image
	}{{"layout", sheet.Layout}, {"ink", sheet.Ink}} {
		if part.img == nil {
			continue
		}
		h, err := placeImage(pdf, part.name, part.img, margin, y, boxW)
		if err != nil {
			return fmt.Errorf("%s image: %w", part.name, err)
		}
		if opt.IncludeGuides {
			setDrawColor(pdf, guideCol)
			pdf.SetLineWidth(0.5)
			pdf.Rect(margin, y, boxW, h, "D")
		}
		y += h + 12
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range sheetLines(sheet) {
		if y > pageH-margin {
			break
		}
		y += 12
		pdf.Text(margin, y, line)
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(margin, pageH-margin/2, now().Format(time.RFC3339))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// placeImage draws img at x,y scaled to maxW, never enlarged, and returns
// the height used.
func placeImage(pdf *gofpdf.Fpdf, name string, img image.Image, x, y, maxW float64) (float64, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, &buf)
	if err := pdf.Error(); err != nil {
		return 0, err
	}
	sz := img.Bounds().Size()
	w := min(float64(sz.X), maxW)
	h := w * float64(sz.Y) / float64(max(sz.X, 1))
	if avail := pageH/2 - margin; h > avail {
		h = avail
		w = h * float64(sz.X) / float64(max(sz.Y, 1))
	}
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return h, pdf.Error()
}

func sheetLines(sheet Sheet) []string {
	c := sheet.Context
	if c == nil {
		return nil
	}
	if c.IsError() {
		return []string{"Result: " + c.String()}
	}
	d := c.Device()
	samples := c.PenData()
	lines := []string{
		fmt.Sprintf("Device: %s %s (serial %s)", d.VendorName, d.ProductModel, d.SerialNo),
		fmt.Sprintf("Samples: %d, strokes: %d", len(samples), len(ink.Strokes(samples))),
	}
	if l := c.Layout(); l != nil {
		lines = append(lines, fmt.Sprintf("Layout: %s (%s)", l.Name(), l.Type()))
	}
	dict := c.Dictionary()
	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, dict[k]))
	}
	return lines
}

func setDrawColor(pdf *gofpdf.Fpdf, c element.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}
