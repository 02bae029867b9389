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
	"os"
	"path/filepath"
	"testing"
	"time"

	"inkplatform/internal/config"
)

func TestWatchRerendersOnChange(t *testing.T) {
	dir := t.TempDir()
	src := writeLayout(t, dir)
	out := filepath.Join(dir, "watch.png")
	rf := &renderFlags{width: 320, height: 200}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	renders := make(chan error, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchLayout(ctx, src, out, rf, config.Defaults(), func(err error) { renders <- err })
	}()

	wait := func(what string) {
		t.Helper()
		select {
		case err := <-renders:
			if err != nil {
				t.Fatalf("%s render: %v", what, err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s render", what)
		}
	}
	wait("initial")
	if err := os.Remove(out); err != nil {
		t.Fatalf("remove output: %v", err)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, data, 0o644); err != nil {
		t.Fatal(err)
	}
	wait("changed")
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output not rewritten: %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watch did not stop")
	}
}
