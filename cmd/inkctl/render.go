/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"path/filepath"
	"text/tabwriter"

	"inkplatform/internal/config"
	"inkplatform/internal/device"
	"inkplatform/internal/export"
	"inkplatform/internal/layout"
	applog "inkplatform/internal/log"
	"inkplatform/internal/render"
	"inkplatform/internal/serialize"
	"inkplatform/internal/textlayout"
)

func cmdDevices(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tTYPE\tSCREEN\tTABLET\tCOLOR")
	for _, d := range device.Models() {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%dx%d\t%t\n", d.ProductModel, d.DeviceType, d.ScreenWidth, d.ScreenHeight, d.TabletWidth, d.TabletHeight, d.SupportColor)
	}
	return tw.Flush()
}

func cmdValidate(w io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: validate requires <layout.json>", errUsage)
	}
	ctx := context.Background()
	data, err := serialize.ReadSource(ctx, args[0])
	if err != nil {
		return err
	}
	if err := serialize.Validate(data); err != nil {
		return err
	}
	opt := serialize.Options{}
	if !serialize.IsURL(args[0]) {
		opt.BaseDir = filepath.Dir(args[0])
	}
	l, err := serialize.UnmarshalLayout(data, opt)
	if err != nil {
		return err
	}
	if l == nil {
		return serialize.ErrUnknownLayout
	}
	fmt.Fprintf(w, "ok: %s (%s, %d elements)\n", l.Name(), l.Type(), len(l.Elements()))
	return nil
}

// renderFlags are shared by render and watch.
type renderFlags struct {
	width, height int
	mono          bool
	device        string
}

func (rf *renderFlags) bind(fs *flag.FlagSet, cfg config.AppConfig) {
	fs.IntVar(&rf.width, "w", cfg.Render.Width, "canvas width")
	fs.IntVar(&rf.height, "h", cfg.Render.Height, "canvas height")
	fs.BoolVar(&rf.mono, "mono", !cfg.Render.Color, "render monochrome")
	fs.StringVar(&rf.device, "device", "", "take size and color support from a device model")
}

// size resolves the canvas size and color flag, the device taking precedence.
func (rf *renderFlags) size() (image.Point, bool, error) {
	sz, colour := image.Pt(rf.width, rf.height), !rf.mono
	if rf.device != "" {
		d, ok := device.Lookup(rf.device)
		if !ok {
			return sz, colour, fmt.Errorf("unknown device %q", rf.device)
		}
		sz = d.ScreenSize()
		colour = colour && d.SupportColor
	}
	if sz.X <= 0 || sz.Y <= 0 {
		return sz, colour, fmt.Errorf("invalid canvas size %dx%d", sz.X, sz.Y)
	}
	return sz, colour, nil
}

// fontProvider loads the configured font file, falling back to Go Regular.
func fontProvider(cfg config.AppConfig) textlayout.Provider {
	goFace := textlayout.NewGoProvider()
	if cfg.Render.FontFile == "" {
		return goFace
	}
	lib := textlayout.NewFontLibrary()
	if err := lib.LoadFile("user", cfg.Render.FontFile); err != nil {
		applog.WithComponent("cli").Warn("font not loaded", slog.String("path", cfg.Render.FontFile), slog.Any("err", err))
		return goFace
	}
	return textlayout.OTProvider{Lib: lib, Family: "user", DPI: cfg.Render.DPI, Fallback: goFace}
}

func renderFile(ctx context.Context, src, out string, rf *renderFlags, cfg config.AppConfig) (layout.Layout, error) {
	sz, colour, err := rf.size()
	if err != nil {
		return nil, err
	}
	l, err := serialize.ReadLayoutFile(ctx, src, serialize.Options{})
	if err != nil {
		return nil, err
	}
	img := render.Bitmap(l, sz.X, sz.Y, render.Options{ColorCapable: colour, Provider: fontProvider(cfg)})
	if err := export.WriteImage(out, img); err != nil {
		return nil, err
	}
	return l, nil
}

func cmdRender(w io.Writer, args []string, cfg config.AppConfig) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var rf renderFlags
	rf.bind(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: render requires <layout.json> <out>", errUsage)
	}
	l, err := renderFile(context.Background(), fs.Arg(0), fs.Arg(1), &rf, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "rendered %s (%d elements) to %s\n", l.Name(), len(l.Elements()), fs.Arg(1))
	return nil
}
