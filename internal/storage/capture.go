/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"inkplatform/internal/ink"
	applog "inkplatform/internal/log"
	"inkplatform/internal/serialize"
)

const (
	capturePrefix  = "capture-"
	autosavePrefix = "autosave-"
)

// SaveCapture writes c to dir as capture-<session>.json. The session ID is
// taken from the "session" dictionary entry; a fresh UUID is used without one.
func SaveCapture(dir string, c *serialize.Context) (string, error) {
	if c == nil {
		return "", errors.New("nil context")
	}
	id, ok := c.Data("session")
	if !ok || strings.TrimSpace(id) == "" || strings.ContainsAny(id, `/\`) {
		id = uuid.NewString()
	}
	path := filepath.Join(dir, capturePrefix+id+".json")
	if err := WriteJSON(path, c); err != nil {
		return "", err
	}
	applog.WithComponent("storage").Info("capture saved", slog.String("path", path), slog.Bool("error", c.IsError()))
	return path, nil
}

// LoadCapture reads a context written by SaveCapture, falling back to its
// newest backup when the file is unreadable.
func LoadCapture(path string, opt serialize.Options) (*serialize.Context, error) {
	if opt.BaseDir == "" {
		opt.BaseDir = filepath.Dir(path)
	}
	var c *serialize.Context
	err := ReadWithBackup(path, func(b []byte) error {
		var perr error
		c, perr = serialize.UnmarshalContext(b, opt)
		return perr
	})
	if err != nil {
		return nil, fmt.Errorf("load capture: %w", err)
	}
	return c, nil
}

// AutosaveInk writes samples to dir as autosave-<stamp>.json so an
// interrupted capture can be recovered.
func AutosaveInk(dir string, samples []ink.InkData) (string, error) {
	data, err := ink.MarshalList(samples)
	if err != nil {
		return "", fmt.Errorf("marshal ink: %w", err)
	}
	path := filepath.Join(dir, autosavePrefix+now().Format(stampLayout)+".json")
	if err := WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// LatestAutosave returns the newest autosave in dir and its samples.
func LatestAutosave(dir string) (string, []ink.InkData, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return "", nil, fmt.Errorf("read autosave dir: %w", err)
	}
	var latest string
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, autosavePrefix) || filepath.Ext(name) != ".json" {
			continue
		}
		if name > latest {
			latest = name
		}
	}
	if latest == "" {
		return "", nil, errors.New("no autosave found")
	}
	path := filepath.Join(dir, latest)
	b, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read autosave: %w", err)
	}
	samples, err := ink.UnmarshalList(b)
	if err != nil {
		return path, nil, err
	}
	return path, samples, nil
}
