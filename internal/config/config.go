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
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"inkplatform/internal/ink"
	applog "inkplatform/internal/log"
	"inkplatform/internal/storage"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type RenderConfig struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Color    bool    `yaml:"color"`
	FontFile string  `yaml:"font_file"` // optional TTF/OTF, Go Regular when empty
	DPI      float64 `yaml:"dpi"`
}

type CaptureConfig struct {
	Device         string  `yaml:"device"`
	InkingOnButton bool    `yaml:"inking_on_button"`
	PenColor       string  `yaml:"pen_color"` // #rrggbb
	PenWidth       float64 `yaml:"pen_width"`
}

type StegoConfig struct {
	AutoResize bool    `yaml:"auto_resize"`
	MaxScale   float64 `yaml:"max_scale"`
	Step       float64 `yaml:"step"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Render        RenderConfig  `yaml:"render"`
	Capture       CaptureConfig `yaml:"capture"`
	Stego         StegoConfig   `yaml:"stego"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Render:        RenderConfig{Width: 800, Height: 480, Color: true, DPI: 72},
		Capture:       CaptureConfig{Device: "STU-530", PenColor: "#00008b", PenWidth: 2},
		Stego:         StegoConfig{AutoResize: true, MaxScale: 5.0, Step: 0.5},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfig         = "INK_CONFIG"
	EnvRenderWidth    = "INK_RENDER_WIDTH"
	EnvRenderHeight   = "INK_RENDER_HEIGHT"
	EnvRenderColor    = "INK_RENDER_COLOR"
	EnvDevice         = "INK_DEVICE"
	EnvInkingOnButton = "INK_INKING_ON_BUTTON"
	EnvStegoResize    = "INK_STEGO_AUTO_RESIZE"

	EnvLogLevel  = applog.EnvLevel
	EnvLogFormat = applog.EnvFormat
	EnvLogSource = applog.EnvSource
	EnvLogFile   = applog.EnvFile
)

// ConfigPath returns the per-user config file path, or $INK_CONFIG when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "inkplatform")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "inkplatform")
	default: // linux and others
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "inkplatform")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "inkplatform")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A file that exists but does not parse is an error; the defaults are still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML, keeping the previous file as a backup.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return storage.WriteFile(path, data)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Render.Width > 0 {
		dst.Render.Width = src.Render.Width
	}
	if src.Render.Height > 0 {
		dst.Render.Height = src.Render.Height
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Render.Color = src.Render.Color
	if strings.TrimSpace(src.Render.FontFile) != "" {
		dst.Render.FontFile = strings.TrimSpace(src.Render.FontFile)
	}
	if src.Render.DPI > 0 {
		dst.Render.DPI = src.Render.DPI
	}
	if strings.TrimSpace(src.Capture.Device) != "" {
		dst.Capture.Device = strings.TrimSpace(src.Capture.Device)
	}
	dst.Capture.InkingOnButton = src.Capture.InkingOnButton
	if strings.TrimSpace(src.Capture.PenColor) != "" {
		dst.Capture.PenColor = strings.TrimSpace(src.Capture.PenColor)
	}
	if src.Capture.PenWidth > 0 {
		dst.Capture.PenWidth = src.Capture.PenWidth
	}
	dst.Stego.AutoResize = src.Stego.AutoResize
	if src.Stego.MaxScale >= 1 {
		dst.Stego.MaxScale = src.Stego.MaxScale
	}
	if src.Stego.Step > 0 {
		dst.Stego.Step = src.Stego.Step
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvRenderWidth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Render.Width = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvRenderHeight)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Render.Height = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvRenderColor)); v != "" {
		cfg.Render.Color = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDevice)); v != "" {
		cfg.Capture.Device = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvInkingOnButton)); v != "" {
		cfg.Capture.InkingOnButton = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStegoResize)); v != "" {
		cfg.Stego.AutoResize = truthy(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"render.width":             EnvRenderWidth,
	"render.height":            EnvRenderHeight,
	"render.color":             EnvRenderColor,
	"capture.device":           EnvDevice,
	"capture.inking_on_button": EnvInkingOnButton,
	"stego.auto_resize":        EnvStegoResize,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// Pen parses the configured pen color and width. An unparsable color yields
// the default pen color with an error.
func (c CaptureConfig) Pen() (ink.Pen, error) {
	pen := ink.DefaultPen()
	if c.PenWidth > 0 {
		pen.Width = c.PenWidth
	}
	if strings.TrimSpace(c.PenColor) == "" {
		return pen, nil
	}
	col, err := ParseHexColor(c.PenColor)
	if err != nil {
		return pen, err
	}
	pen.Color = col
	return pen, nil
}

// ParseHexColor accepts #rgb and #rrggbb, with or without the hash.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// LogOptions maps the logging section onto logger options.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}
