/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"inkplatform/internal/config"
	"inkplatform/internal/device"
	"inkplatform/internal/export"
	"inkplatform/internal/ink"
	"inkplatform/internal/serialize"
	"inkplatform/internal/storage"
)

func inkFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".b64", ".base64":
		return "b64"
	case ".msgpack", ".mpk":
		return "msgpack"
	}
	return "json"
}

func readInk(path string) ([]ink.InkData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch inkFormat(path) {
	case "b64":
		return ink.DecodeBase64(strings.TrimSpace(string(data)))
	case "msgpack":
		return ink.UnmarshalMsgpack(data)
	}
	return ink.UnmarshalList(data)
}

func writeInk(path string, list []ink.InkData) error {
	var data []byte
	var err error
	switch inkFormat(path) {
	case "b64":
		var s string
		s, err = ink.EncodeBase64(list)
		data = []byte(s + "\n")
	case "msgpack":
		data, err = ink.MarshalMsgpack(list)
	default:
		data, err = ink.MarshalList(list)
	}
	if err != nil {
		return err
	}
	return storage.WriteFile(path, data)
}

func cmdInk(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: ink requires <in> <out>", errUsage)
	}
	list, err := readInk(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	return writeInk(args[1], list)
}

// strokeSource reads samples for SVG export and scales them onto the
// canvas. Ink lists are taken to be in the space named by space. A JSON
// file that is not an ink list is tried as a saved capture, whose device
// gives both spaces.
func strokeSource(path string, space, size image.Point) ([]ink.InkData, image.Point, error) {
	list, err := readInk(path)
	if err == nil {
		return ink.Rescale(list, space, size), size, nil
	}
	if inkFormat(path) != "json" {
		return nil, size, err
	}
	c, cerr := storage.LoadCapture(path, serialize.Options{})
	if cerr != nil {
		return nil, size, fmt.Errorf("%w; as capture: %v", err, cerr)
	}
	d := c.Device()
	if sz := d.ScreenSize(); sz.X > 0 && sz.Y > 0 {
		size = sz
	}
	return ink.Rescale(c.PenData(), d.InkSpace(), size), size, nil
}

func cmdSVG(args []string, cfg config.AppConfig) error {
	fs := flag.NewFlagSet("svg", flag.ContinueOnError)
	model := fs.String("device", cfg.Capture.Device, "device the samples were captured on; its screen is the canvas")
	title := fs.String("title", "", "SVG title")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: svg requires <samples> <out.svg>", errUsage)
	}
	size := image.Pt(cfg.Render.Width, cfg.Render.Height)
	space := size
	if d, ok := device.Lookup(*model); ok {
		size, space = d.ScreenSize(), d.InkSpace()
	}
	list, size, err := strokeSource(fs.Arg(0), space, size)
	if err != nil {
		return err
	}
	pen, _ := cfg.Capture.Pen()
	return export.WriteInkSVG(fs.Arg(1), list, size, export.SVGOptions{Title: *title, Pen: pen})
}
