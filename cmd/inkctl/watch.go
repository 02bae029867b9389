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
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"inkplatform/internal/config"
	applog "inkplatform/internal/log"
)

const watchDebounce = 100 * time.Millisecond

func cmdWatch(args []string, cfg config.AppConfig) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	var rf renderFlags
	rf.bind(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: watch requires <layout.json> <out>", errUsage)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchLayout(ctx, fs.Arg(0), fs.Arg(1), &rf, cfg, nil)
}

// watchLayout renders src once, then again after every burst of writes to
// it, until ctx ends. onRender, when set, is called after each attempt.
func watchLayout(ctx context.Context, src, out string, rf *renderFlags, cfg config.AppConfig, onRender func(error)) error {
	l := applog.WithComponent("watch")
	abs, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	// Editors often replace the file, so the directory is watched.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	rerender := func() {
		lay, err := renderFile(ctx, abs, out, rf, cfg)
		if err != nil {
			l.Error("render failed", slog.String("path", abs), slog.Any("err", err))
		} else {
			l.Info("rendered", slog.String("layout", lay.Name()), slog.String("out", out))
		}
		if onRender != nil {
			onRender(err)
		}
	}
	rerender()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			l.Debug("layout changed", slog.String("op", event.Op.String()))
			timer.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Warn("watcher error", slog.Any("err", err))
		case <-timer.C:
			rerender()
		}
	}
}
