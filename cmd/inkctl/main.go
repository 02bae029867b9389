/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command inkctl renders, validates and replays signature pad layouts.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"inkplatform/internal/config"
	"inkplatform/internal/crash"
	applog "inkplatform/internal/log"
	"inkplatform/internal/version"
)

func usage() {
	fmt.Println("inkctl - signature pad layout tool")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  inkctl version|-v|--version                      Show version")
	fmt.Println("  inkctl devices                                   List known pen devices")
	fmt.Println("  inkctl validate <layout.json|url>                Check a layout file against the schema")
	fmt.Println("  inkctl render [flags] <layout.json> <out.png|bmp> Render a layout to an image")
	fmt.Println("  inkctl watch [flags] <layout.json> <out.png|bmp>  Re-render whenever the layout changes")
	fmt.Println("  inkctl simulate [flags] <layout.json> <samples> <outdir>")
	fmt.Println("                                                   Replay tablet samples through a simulated pad")
	fmt.Println("  inkctl sign [flags] <who> <why> <samples> <outdir> Capture a signature from tablet samples")
	fmt.Println("  inkctl decode <image.png>                        Print the context embedded in a capture image")
	fmt.Println("  inkctl ink <in> <out>                            Convert ink between .json, .b64 and .msgpack")
	fmt.Println("  inkctl svg [flags] <samples|capture.json> <out.svg> Export strokes as SVG")
}

// errUsage makes main print the usage text and exit with 2.
var errUsage = errors.New("usage")

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(cfg.Logging.LogOptions())
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}

	target := &crash.Target{}
	defer crash.Recover(target)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}
	err := run(args[1], args[2:], cfg, target)
	switch {
	case err == nil:
		return
	case errors.Is(err, errUsage):
		fmt.Println(err)
		usage()
		os.Exit(2)
	default:
		l.Error("command failed", slog.String("cmd", args[1]), slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string, cfg config.AppConfig, target *crash.Target) error {
	switch cmd {
	case "version", "--version", "-v":
		fmt.Println(version.String())
		return nil
	case "devices":
		return cmdDevices(os.Stdout)
	case "validate":
		return cmdValidate(os.Stdout, args)
	case "render":
		return cmdRender(os.Stdout, args, cfg)
	case "watch":
		return cmdWatch(args, cfg)
	case "simulate":
		return cmdSimulate(os.Stdout, args, cfg, target)
	case "sign":
		return cmdSign(os.Stdout, args, cfg, target)
	case "decode":
		return cmdDecode(os.Stdout, args)
	case "ink":
		return cmdInk(args)
	case "svg":
		return cmdSVG(args, cfg)
	case "help", "-h", "--help":
		usage()
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}
