/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfig, path)
	for _, env := range envKeys {
		t.Setenv(env, "")
	}
	return path
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("cfg = %#v, want defaults", cfg)
	}
	if cfg.Render.Width != 800 || cfg.Render.Height != 480 || cfg.Capture.Device != "STU-530" || cfg.Stego.MaxScale != 5.0 {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := isolate(t)
	cfg := Defaults()
	cfg.Render.Width = 320
	cfg.Render.Height = 200
	cfg.Render.Color = false
	cfg.Capture.Device = "STU-430"
	cfg.Capture.InkingOnButton = true
	cfg.Stego.Step = 0.25
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip = %#v, want %#v", got, cfg)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("render: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Render.Width != 800 {
		t.Fatalf("defaults not returned on error: %#v", cfg.Render)
	}
}

func TestEnvOverridesRenderAndCapture(t *testing.T) {
	isolate(t)
	t.Setenv(EnvRenderWidth, "640")
	t.Setenv(EnvRenderHeight, "nope")
	t.Setenv(EnvRenderColor, "off")
	t.Setenv(EnvDevice, "DTU-1141")
	t.Setenv(EnvInkingOnButton, "yes")
	t.Setenv(EnvStegoResize, "0")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Render.Width != 640 || cfg.Render.Height != 480 || cfg.Render.Color {
		t.Fatalf("render overrides = %#v", cfg.Render)
	}
	if cfg.Capture.Device != "DTU-1141" || !cfg.Capture.InkingOnButton {
		t.Fatalf("capture overrides = %#v", cfg.Capture)
	}
	if cfg.Stego.AutoResize {
		t.Fatalf("stego override not applied")
	}
	if env, ok := EnvOverrideFor("render.width"); !ok || env != EnvRenderWidth {
		t.Fatalf("EnvOverrideFor(render.width) = %q %v", env, ok)
	}
	if _, ok := EnvOverrideFor("stego.max_scale"); ok {
		t.Fatalf("max_scale has no env override")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "DEBUG"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/ink.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/ink.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
	opts := dst.Logging.LogOptions()
	if opts.Level != "debug" || !opts.AddSource || opts.File != "C:/tmp/ink.log" {
		t.Fatalf("LogOptions = %#v", opts)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/ink.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/ink.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestCapturePen(t *testing.T) {
	pen, err := CaptureConfig{PenColor: "#f00", PenWidth: 3}.Pen()
	if err != nil {
		t.Fatalf("Pen() error: %v", err)
	}
	if pen.Color != (color.RGBA{R: 255, A: 255}) || pen.Width != 3 {
		t.Fatalf("pen = %#v", pen)
	}
	pen, err = Defaults().Capture.Pen()
	if err != nil || pen.Color != (color.RGBA{B: 139, A: 255}) {
		t.Fatalf("default pen = %#v, %v", pen, err)
	}
	if _, err := (CaptureConfig{PenColor: "blue"}).Pen(); err == nil {
		t.Fatalf("expected error for named color")
	}
}
