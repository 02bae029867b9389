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
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"inkplatform/internal/capture"
	"inkplatform/internal/config"
	"inkplatform/internal/crash"
	"inkplatform/internal/device"
	"inkplatform/internal/export"
	"inkplatform/internal/ink"
	"inkplatform/internal/layout"
	applog "inkplatform/internal/log"
	"inkplatform/internal/render"
	"inkplatform/internal/serialize"
	"inkplatform/internal/stego"
	"inkplatform/internal/storage"
)

type captureFlags struct {
	device         string
	mono           bool
	inkingOnButton bool
	encode         bool
	annotations    annotations
}

// annotations collects repeated -data key=value flags.
type annotations map[string]string

func (a annotations) String() string { return fmt.Sprint(map[string]string(a)) }

func (a annotations) Set(v string) error {
	k, val, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	a[strings.TrimSpace(k)] = val
	return nil
}

func (cf *captureFlags) bind(fs *flag.FlagSet, cfg config.AppConfig) {
	cf.annotations = annotations{}
	fs.StringVar(&cf.device, "device", cfg.Capture.Device, "simulated device model")
	fs.BoolVar(&cf.mono, "mono", !cfg.Render.Color, "render monochrome")
	fs.BoolVar(&cf.inkingOnButton, "inking-on-button", cfg.Capture.InkingOnButton, "draw ink feedback over buttons")
	fs.BoolVar(&cf.encode, "encode", true, "embed the capture context in the ink image")
	fs.Var(cf.annotations, "data", "key=value added to the capture context (repeatable)")
}

func (cf *captureFlags) session(cfg config.AppConfig) (*capture.Session, *device.Simulated, error) {
	desc, ok := device.Lookup(cf.device)
	if !ok {
		return nil, nil, fmt.Errorf("unknown device %q", cf.device)
	}
	pen, err := cfg.Capture.Pen()
	if err != nil {
		applog.WithComponent("cli").Warn("pen color ignored", slog.Any("err", err))
	}
	sim := device.NewSimulated(desc)
	sess, code := capture.New(sim, capture.Options{
		InkingOnButton: cf.inkingOnButton,
		Pen:            pen,
		Mono:           cf.mono,
		Render:         render.Options{Provider: fontProvider(cfg)},
		Annotations:    cf.annotations,
	})
	if code != device.None {
		return nil, nil, code.Err()
	}
	return sess, sim, nil
}

func cmdSimulate(w io.Writer, args []string, cfg config.AppConfig, target *crash.Target) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	var cf captureFlags
	cf.bind(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 3 {
		return fmt.Errorf("%w: simulate requires <layout.json> <samples> <outdir>", errUsage)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := serialize.ReadLayoutFile(ctx, fs.Arg(0), serialize.Options{})
	if err != nil {
		return err
	}
	return replay(ctx, w, &cf, cfg, target, fs.Arg(1), fs.Arg(2), func(s *capture.Session) device.ErrorCode {
		return s.DisplayLayout(l)
	})
}

func cmdSign(w io.Writer, args []string, cfg config.AppConfig, target *crash.Target) error {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	var cf captureFlags
	cf.bind(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 4 {
		return fmt.Errorf("%w: sign requires <who> <why> <samples> <outdir>", errUsage)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	who, why := fs.Arg(0), fs.Arg(1)
	return replay(ctx, w, &cf, cfg, target, fs.Arg(2), fs.Arg(3), func(s *capture.Session) device.ErrorCode {
		return s.CaptureSignature(who, why)
	})
}

// replay runs one capture: show is called to put the first screen up, then
// the tablet samples in samplesPath are fed through the simulated surface.
func replay(ctx context.Context, w io.Writer, cf *captureFlags, cfg config.AppConfig, target *crash.Target,
	samplesPath, outDir string, show func(*capture.Session) device.ErrorCode) error {
	l := applog.WithComponent("cli")
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	list, err := readInk(samplesPath)
	if err != nil {
		return err
	}
	sess, sim, err := cf.session(cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	target.Dir = outDir
	target.Session = sess.ID
	target.PenData = sess.PenData

	if code := show(sess); code != device.None {
		return code.Err()
	}

	go func() {
		if err := sim.Feed(ctx, toSamples(list)...); err != nil {
			l.Warn("feed stopped", slog.Any("err", err))
		}
		sim.Close()
	}()

	c, err := sess.Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, device.NotConnected):
		// Samples ran out before the layout was completed.
		l.Warn("capture not completed, saving partial result", slog.Int("samples", len(sess.PenData())))
		c = sess.Context()
	default:
		return err
	}

	written, err := writeCapture(ctx, outDir, c, sess.Bitmap(), cf.encode, cfg)
	for _, p := range written {
		fmt.Fprintln(w, p)
	}
	return err
}

// writeCapture stores c in outDir with its artifacts and returns the paths
// written.
func writeCapture(ctx context.Context, outDir string, c *serialize.Context, screen image.Image, encode bool, cfg config.AppConfig) ([]string, error) {
	l := applog.WithComponent("cli")
	path, err := storage.SaveCapture(outDir, c)
	if err != nil {
		return nil, err
	}
	written := []string{path}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	pen, _ := cfg.Capture.Pen()

	sheet := export.Sheet{Layout: screen, Context: c}
	opt := export.BatchOptions{
		Preset: export.PresetArchive,
		Name:   name,
		SVG:    export.SVGOptions{Title: name, Pen: pen, Background: color.White},
		PDF:    export.PDFOptions{Title: "Capture " + name, IncludeGuides: true},
	}
	if c.IsError() {
		opt.Formats = []string{"pdf"}
	} else {
		img, res, err := stego.Compose(ctx, stego.Options{
			Context:    c,
			Pen:        pen,
			Background: color.White,
			Encode:     encode,
			AutoResize: cfg.Stego.AutoResize,
			MaxScale:   cfg.Stego.MaxScale,
			Step:       cfg.Stego.Step,
		})
		if res != stego.Successful {
			l.Warn("capture image not encoded", slog.String("result", res.String()), slog.Any("err", err))
		}
		if img == nil {
			return written, fmt.Errorf("compose capture image: %w", err)
		}
		sheet.Ink = img
	}

	more, err := export.BatchExport(outDir, sheet, opt)
	return append(written, more...), err
}

func cmdDecode(w io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: decode requires <image.png>", errUsage)
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	payload, err := stego.Extract(img)
	if err != nil {
		return err
	}
	if c, err := serialize.UnmarshalContext(payload, serialize.Options{}); err == nil {
		describeContext(w, c)
	}
	_, err = fmt.Fprintln(w, string(payload))
	return err
}

func describeContext(w io.Writer, c *serialize.Context) {
	if c.IsError() {
		fmt.Fprintf(w, "# result: %s\n", c)
		return
	}
	fmt.Fprintf(w, "# device: %s, samples: %d", c.Device().ProductModel, len(c.PenData()))
	if lay := c.Layout(); lay != nil {
		fmt.Fprintf(w, ", layout: %s", layoutName(lay))
	}
	fmt.Fprintln(w)
}

func layoutName(l layout.Layout) string {
	return fmt.Sprintf("%s (%s)", l.Name(), l.Type())
}

// toSamples turns recorded tablet space ink back into raw pen reports.
func toSamples(list []ink.InkData) []device.Sample {
	out := make([]device.Sample, len(list))
	for i, d := range list {
		out[i] = device.Sample{
			Seq: d.Seq, X: int(d.X), Y: int(d.Y), Pressure: d.Pressure, Time: d.Time,
			Contact: d.Contact, Proximity: d.Proximity,
		}
	}
	return out
}
