/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeDoc struct {
	path string
	err  error
}

func (f fakeDoc) Path() string { return f.path }
func (f fakeDoc) WriteRecovery(w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, "%PDF-recovered")
	return err
}

// isolate redirects reports into a temp dir and intercepts the exit.
func isolate(t *testing.T) (dir string, code *int) {
	t.Helper()
	dir = t.TempDir()
	code = new(int)
	oldDir, oldExit := reportDir, exitFn
	reportDir = func() string { return dir }
	exitFn = func(c int) { *code = c }
	t.Cleanup(func() { reportDir, exitFn = oldDir, oldExit })

	oldStderr := os.Stderr
	devnull, err := os.Open(os.DevNull)
	if err == nil {
		os.Stderr = devnull
		t.Cleanup(func() { os.Stderr = oldStderr; _ = devnull.Close() })
	}
	return dir, code
}

func find(t *testing.T, dir, prefix string) string {
	t.Helper()
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

func TestWriteReport(t *testing.T) {
	dir, _ := isolate(t)
	path, err := writeReport(fakeDoc{path: "/docs/a.pdf"}, "20250101-000000", "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("report written to %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	for _, want := range []string{"GoEditPDF Crash Report", "Panic: boom", "Document: /docs/a.pdf", "stacktrace"} {
		if !strings.Contains(s, want) {
			t.Errorf("report misses %q:\n%s", want, s)
		}
	}
}

func TestRecoverWritesReportAndRecoveryCopy(t *testing.T) {
	dir, code := isolate(t)
	func() {
		defer Recover(fakeDoc{path: "x.pdf"})
		panic("boom")
	}()
	if *code != 2 {
		t.Fatalf("expected exit code 2, got %d", *code)
	}
	report := find(t, dir, "crash-")
	if report == "" {
		t.Fatal("no crash report")
	}
	rec := find(t, dir, "goeditpdf-recovery-")
	if rec == "" {
		t.Fatal("no recovery copy")
	}
	if b, _ := os.ReadFile(rec); string(b) != "%PDF-recovered" {
		t.Fatalf("recovery content = %q", b)
	}
}

func TestRecoverWithoutDocument(t *testing.T) {
	dir, code := isolate(t)
	func() {
		defer Recover(nil)
		panic(errors.New("nil doc"))
	}()
	if *code != 2 || find(t, dir, "crash-") == "" {
		t.Fatalf("exit=%d, report missing", *code)
	}
	if find(t, dir, "goeditpdf-recovery-") != "" {
		t.Fatal("recovery copy written without a document")
	}
}

func TestRecoverSnapshotFailureStillReports(t *testing.T) {
	dir, code := isolate(t)
	func() {
		defer Recover(fakeDoc{err: errors.New("empty")})
		panic("boom")
	}()
	if *code != 2 || find(t, dir, "crash-") == "" {
		t.Fatal("report missing after failed snapshot")
	}
	if find(t, dir, "goeditpdf-recovery-") != "" {
		t.Fatal("failed snapshot left a file behind")
	}
}

func TestRecoverWithoutPanicDoesNothing(t *testing.T) {
	dir, code := isolate(t)
	func() {
		defer Recover(fakeDoc{})
	}()
	if *code != 0 || find(t, dir, "") != "" {
		t.Fatal("Recover acted without a panic")
	}
}
