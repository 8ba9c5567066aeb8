/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns an unrecovered panic into a crash report and a recovery
// copy of the open document before the process exits.
package crash

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "goeditpdf/internal/log"
	"goeditpdf/internal/storage"
	"goeditpdf/internal/version"
)

// Snapshotter can write the open document somewhere safe.
// *document.Controller implements it.
type Snapshotter interface {
	Path() string
	WriteRecovery(w io.Writer) error
}

// exitFn and reportDir are swapped out by tests.
var (
	exitFn    = os.Exit
	reportDir = os.TempDir
)

// Recover captures a panic, logs it with the stack, writes a crash report and
// a recovery copy of the document (if snap is non-nil and has pages), then
// exits with code 2.
//
// Usage: defer crash.Recover(ctrl)
func Recover(snap Snapshotter) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	stamp := time.Now().Format("20060102-150405")
	reportPath, err := writeReport(snap, stamp, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if snap != nil {
		if path, err := writeRecovery(snap, stamp); err != nil {
			l.Error("recovery copy failed", slog.Any("err", err))
		} else {
			l.Info("recovery copy written", slog.String("path", path))
			_, _ = fmt.Fprintf(os.Stderr, "Unsaved pages were written to: %s\n", path)
		}
	}

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func writeReport(snap Snapshotter, stamp string, panicVal any, stack []byte) (string, error) {
	path := filepath.Join(reportDir(), fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "GoEditPDF Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if snap != nil && snap.Path() != "" {
		_, _ = fmt.Fprintf(&buf, "Document: %s\n", snap.Path())
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	err := storage.WriteFileAtomic(path, storage.SaveOptions{}, func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
	return path, err
}

func writeRecovery(snap Snapshotter, stamp string) (string, error) {
	path := filepath.Join(reportDir(), fmt.Sprintf("goeditpdf-recovery-%s.pdf", stamp))
	if err := storage.WriteFileAtomic(path, storage.SaveOptions{}, snap.WriteRecovery); err != nil {
		return "", err
	}
	return path, nil
}
