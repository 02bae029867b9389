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
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	applog "inkplatform/internal/log"
)

// BackupsDirName is created next to every file written through WriteFile.
const BackupsDirName = "backups"

const stampLayout = "20060102-150405"

// now is replaced in tests.
var now = time.Now

// WriteFile replaces path transactionally. A previous version of the file is
// copied to backups/<name>.<stamp>.bak in the same directory.
func WriteFile(path string, data []byte) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path is required")
	}
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}

	if _, statErr := os.Stat(path); statErr == nil {
		bpath := filepath.Join(dir, BackupsDirName, fmt.Sprintf("%s.%s.bak", name, now().Format(stampLayout)))
		if cerr := copyFile(path, bpath); cerr != nil {
			return fmt.Errorf("backup %s: %w", name, cerr)
		}
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", name, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp %s: %w", name, werr)
	}
	// Windows will not rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", name, rerr)
	}
	return nil
}

// WriteJSON marshals v indented and writes it with WriteFile.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return WriteFile(path, append(data, '\n'))
}

// ReadWithBackup reads path and hands the bytes to parse. When the file is
// missing or parse fails, the newest backup of it is tried instead.
func ReadWithBackup(path string, parse func([]byte) error) error {
	b, err := os.ReadFile(path)
	if err == nil {
		if err = parse(b); err == nil {
			return nil
		}
	}
	bpath, berr := latestBackup(path)
	if berr != nil {
		return fmt.Errorf("%w; backup attempt: %v", err, berr)
	}
	b, berr = os.ReadFile(bpath)
	if berr != nil {
		return fmt.Errorf("%w; read latest backup: %v", err, berr)
	}
	if berr = parse(b); berr != nil {
		return fmt.Errorf("%w; parse latest backup: %v", err, berr)
	}
	applog.WithComponent("storage").Warn("restored from backup", slog.String("path", path), slog.String("backup", bpath), slog.Any("err", err))
	return nil
}

// Backups lists the backups of path, oldest first.
func Backups(path string) ([]string, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

func latestBackup(path string) (string, error) {
	list, err := Backups(path)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", errors.New("no backups found")
	}
	return list[len(list)-1], nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
