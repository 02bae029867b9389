/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"inkplatform/internal/raster"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb     PresetName = "web"
	PresetArchive PresetName = "archive"
	PresetDevice  PresetName = "device"
)

// BatchOptions controls which artifacts BatchExport writes for a sheet.
//
// Files are named <Name>-ink.png, <Name>-ink.svg, <Name>-layout.bmp and
// <Name>.pdf inside the output directory.
type BatchOptions struct {
	Preset  PresetName
	Formats []string // png, svg, bmp, pdf; empty means preset defaults
	Name    string   // base file name, "capture" when empty
	SVG     SVGOptions
	PDF     PDFOptions
}

// BatchExport writes the artifacts of one capture into outDir and returns
// the paths written.
func BatchExport(outDir string, sheet Sheet, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	name := opt.Name
	if name == "" {
		name = "capture"
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}

	samples := sheet.CanvasInk()

	var written []string
	for _, f := range formats {
		var out string
		var err error
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "png":
			if sheet.Ink == nil {
				continue
			}
			out = filepath.Join(outDir, name+"-ink.png")
			err = WriteImage(out, sheet.Ink)
		case "bmp":
			if sheet.Layout == nil {
				continue
			}
			out = filepath.Join(outDir, name+"-layout.bmp")
			err = WriteImage(out, deviceImage(sheet))
		case "svg":
			out = filepath.Join(outDir, name+"-ink.svg")
			err = WriteInkSVG(out, samples, sheet.CanvasSize(), opt.SVG)
		case "pdf":
			out = filepath.Join(outDir, name+".pdf")
			err = WriteCaptureSheet(out, sheet, opt.PDF)
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
		if err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, out)
	}
	return written, nil
}

// deviceImage is the layout raster as a pad would take it: 1-bit for
// monochrome devices.
func deviceImage(sheet Sheet) image.Image {
	if sheet.Context != nil && !sheet.Context.IsError() && !sheet.Context.Device().SupportColor {
		return raster.Binarize(sheet.Layout)
	}
	return sheet.Layout
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetDevice:
		return []string{"bmp"}
	default:
		return []string{"png", "svg", "pdf"}
	}
}
