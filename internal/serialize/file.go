/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package serialize

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkplatform/internal/layout"
)

const maxLayoutDocument = 16 << 20

// IsURL reports whether src names an http or https resource.
func IsURL(src string) bool {
	s := strings.ToLower(src)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ReadSource loads raw bytes from a local path or an http(s) URL.
func ReadSource(ctx context.Context, src string) ([]byte, error) {
	if !IsURL(src) {
		return os.ReadFile(src)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: %s", src, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxLayoutDocument))
}

// ReadLayoutFile loads a layout from a local path or an http(s) URL.
// Relative picture paths of a local file resolve against its directory
// unless opt.BaseDir is set. An unknown layout type is ErrUnknownLayout.
func ReadLayoutFile(ctx context.Context, src string, opt Options) (layout.Layout, error) {
	data, err := ReadSource(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	if opt.BaseDir == "" && !IsURL(src) {
		opt.BaseDir = filepath.Dir(src)
	}
	l, err := UnmarshalLayout(data, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	if l == nil {
		return nil, fmt.Errorf("%s: %w", src, ErrUnknownLayout)
	}
	return l, nil
}
