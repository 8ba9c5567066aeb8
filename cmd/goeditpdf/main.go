/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"goeditpdf/internal/action"
	"goeditpdf/internal/config"
	"goeditpdf/internal/crash"
	"goeditpdf/internal/document"
	applog "goeditpdf/internal/log"
	"goeditpdf/internal/pdfpage"
	"goeditpdf/internal/render"
	"goeditpdf/internal/ui"
	"goeditpdf/internal/version"
)

func usage(w io.Writer) {
	_, _ = fmt.Fprintf(w, "%s %s\n\n", document.AppName, version.String())
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  goeditpdf version|-v|--version               Show version")
	_, _ = fmt.Fprintln(w, "  goeditpdf info [-password pw] <file.pdf>      Print page count, boxes and rotations")
	_, _ = fmt.Fprintln(w, "  goeditpdf render [-password pw] <file.pdf> <outdir>")
	_, _ = fmt.Fprintln(w, "                                                Write page-<n>.png previews")
	_, _ = fmt.Fprintln(w, "  goeditpdf apply [-password pw] <script.json>  Run an action script")
	_, _ = fmt.Fprintln(w, "  goeditpdf ui [<file.pdf>]                     Launch desktop UI (build with -tags fyne)")
}

// docRef lets the crash handler reach the controller created by a command.
type docRef struct{ ctrl *document.Controller }

func (d *docRef) Path() string {
	if d.ctrl == nil {
		return ""
	}
	return d.ctrl.Path()
}

func (d *docRef) WriteRecovery(w io.Writer) error {
	if d.ctrl == nil {
		return document.ErrInvalidOperation
	}
	return d.ctrl.WriteRecovery(w)
}

var active = &docRef{}

func main() {
	defer crash.Recover(active)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, cfgPath, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.String("path", cfgPath), slog.Any("err", cfgErr))
	}
	l.Debug("start", slog.Int("args", len(args)))

	if len(args) == 0 {
		usage(stdout)
		return 0
	}
	var err error
	switch args[0] {
	case "version", "--version", "-v":
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	case "info":
		err = cmdInfo(args[1:], stdout)
	case "render":
		err = cmdRender(cfg, args[1:], stdout)
	case "apply":
		err = cmdApply(cfg, args[1:], stdout)
	case "ui":
		var path string
		if len(args) > 1 {
			path = args[1]
		}
		err = ui.Run(cfg, path)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
	var ue usageError
	switch {
	case errors.As(err, &ue):
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		usage(stderr)
		return 2
	case err != nil:
		l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

type usageError string

func (e usageError) Error() string { return string(e) }

// parse reads the shared -password flag and checks the positional count.
func parse(name string, args []string, positional int) (password string, rest []string, err error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&password, "password", "", "password of an encrypted PDF")
	if err := fs.Parse(args); err != nil {
		return "", nil, usageError(fmt.Sprintf("%s: %v", name, err))
	}
	if fs.NArg() != positional {
		return "", nil, usageError(fmt.Sprintf("%s expects %d argument(s), got %d", name, positional, fs.NArg()))
	}
	return password, fs.Args(), nil
}

// loadOptions prefers an explicit password over one stored in the keychain.
func loadOptions(path, password string) pdfpage.Options {
	if password != "" {
		return pdfpage.Options{Password: password}
	}
	if pw, err := config.PasswordFor(path); err == nil {
		return pdfpage.Options{Password: pw}
	}
	return pdfpage.Options{}
}

func cmdInfo(args []string, stdout io.Writer) error {
	password, rest, err := parse("info", args, 1)
	if err != nil {
		return err
	}
	path := rest[0]
	pages, err := pdfpage.LoadFile(path, loadOptions(path, password))
	if err != nil {
		return &document.LoadError{Path: path, Err: err}
	}
	_, _ = fmt.Fprintf(stdout, "%s: %d page(s)\n", filepath.Base(path), len(pages))
	for i, p := range pages {
		w, h := p.DisplaySize()
		_, _ = fmt.Fprintf(stdout, "  %3d  box %s  %.0fx%.0f pt  rotation %d\n", i+1, p.Box(), w, h, p.Rotation())
	}
	return nil
}

func cmdRender(cfg config.AppConfig, args []string, stdout io.Writer) error {
	password, rest, err := parse("render", args, 2)
	if err != nil {
		return err
	}
	path, outDir := rest[0], rest[1]
	pages, err := pdfpage.LoadFile(path, loadOptions(path, password))
	if err != nil {
		return &document.LoadError{Path: path, Err: err}
	}
	r, closeRenderer := render.FromConfig(cfg)
	defer func() { _ = closeRenderer() }()
	written, err := render.ExportPNG(r, pages, outDir)
	if err != nil {
		return err
	}
	for _, f := range written {
		_, _ = fmt.Fprintln(stdout, f)
	}
	return nil
}

func cmdApply(cfg config.AppConfig, args []string, stdout io.Writer) error {
	password, rest, err := parse("apply", args, 1)
	if err != nil {
		return err
	}
	script, err := action.LoadScript(rest[0])
	if err != nil {
		return err
	}
	r, closeRenderer := render.FromConfig(cfg)
	defer func() { _ = closeRenderer() }()

	ctrl := document.NewController(
		document.WithRenderer(r),
		document.WithBackup(cfg.General.BackupOnSave),
		document.WithPasswords(func(path string, attempt int) (string, bool) {
			if attempt > 1 {
				return "", false
			}
			opts := loadOptions(path, password)
			return opts.Password, opts.Password != ""
		}),
	)
	active.ctrl = ctrl
	defer func() { active.ctrl = nil }()

	if err := script.Run(ctrl); err != nil {
		return err
	}
	state := "saved"
	if !ctrl.Saved() {
		state = "unsaved changes"
	}
	_, _ = fmt.Fprintf(stdout, "%d action(s) applied; %d page(s), %s\n", len(script.Actions), ctrl.Len(), state)
	return nil
}
