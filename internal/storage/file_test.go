/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock(t *testing.T, start time.Time) {
	t.Helper()
	cur := start
	now = func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
	t.Cleanup(func() { now = time.Now })
}

func TestWriteJSONCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layouts", "sign.json")
	if err := WriteJSON(path, map[string]string{"Name": "Sign"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["Name"] != "Sign" {
		t.Fatalf("Name = %q", got["Name"])
	}
	if !strings.HasSuffix(string(b), "\n") {
		t.Fatalf("missing trailing newline")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), BackupsDirName)); !os.IsNotExist(err) {
		t.Fatalf("first write must not create backups: %v", err)
	}
}

func TestWriteFileCreatesTimestampedBackup(t *testing.T) {
	fixedClock(t, time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC))
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.json")
	for _, v := range []string{"one", "two", "three"} {
		if err := WriteFile(path, []byte(v)); err != nil {
			t.Fatalf("WriteFile %s: %v", v, err)
		}
	}
	b, _ := os.ReadFile(path)
	if string(b) != "three" {
		t.Fatalf("content = %q", b)
	}
	list, err := Backups(path)
	if err != nil {
		t.Fatalf("Backups: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("backups = %v", list)
	}
	first, _ := os.ReadFile(list[0])
	second, _ := os.ReadFile(list[1])
	if string(first) != "one" || string(second) != "two" {
		t.Fatalf("backup contents = %q, %q", first, second)
	}
	if !strings.HasPrefix(filepath.Base(list[0]), "layout.json.20240304-") {
		t.Fatalf("unexpected backup name %s", list[0])
	}

	ents, _ := os.ReadDir(dir)
	for _, e := range ents {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestReadWithBackupFallsBack(t *testing.T) {
	fixedClock(t, time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC))
	path := filepath.Join(t.TempDir(), "capture.json")
	if err := WriteJSON(path, map[string]int{"v": 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteFile(path, []byte("{not json")); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	var got map[string]int
	err := ReadWithBackup(path, func(b []byte) error { return json.Unmarshal(b, &got) })
	if err != nil {
		t.Fatalf("ReadWithBackup: %v", err)
	}
	if got["v"] != 1 {
		t.Fatalf("restored = %v", got)
	}
}

func TestReadWithBackupNoBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	parseErr := errors.New("never called")
	err := ReadWithBackup(path, func([]byte) error { return parseErr })
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteFileRejectsEmptyPath(t *testing.T) {
	if err := WriteFile("  ", nil); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
