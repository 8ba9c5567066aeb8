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
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeString(s string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

func TestWriteFileAtomicCreatesAndReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")
	if err := WriteFileAtomic(path, SaveOptions{}, writeString("first")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFileAtomic(path, SaveOptions{}, writeString("second")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "second" {
		t.Fatalf("content = %q, %v", b, err)
	}
	assertNoTempFiles(t, dir)
}

func TestWriteFileAtomicFailureLeavesTargetUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("disk full")
	err := WriteFileAtomic(path, SaveOptions{}, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected writer error, got %v", err)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "original" {
		t.Fatalf("target modified on failure: %q", b)
	}
	assertNoTempFiles(t, dir)
}

func TestWriteFileAtomicMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "out.pdf")
	if err := WriteFileAtomic(path, SaveOptions{}, writeString("x")); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if err := WriteFileAtomic("  ", SaveOptions{}, writeString("x")); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestWriteFileAtomicWithBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	// no backup for a file that does not exist yet
	if err := WriteFileAtomic(path, SaveOptions{Backup: true}, writeString("v1")); err != nil {
		t.Fatalf("write v1: %v", err)
	}
	if bs, _ := Backups(path); len(bs) != 0 {
		t.Fatalf("unexpected backups: %v", bs)
	}
	if err := WriteFileAtomic(path, SaveOptions{Backup: true}, writeString("v2")); err != nil {
		t.Fatalf("write v2: %v", err)
	}
	bs, err := Backups(path)
	if err != nil || len(bs) != 1 {
		t.Fatalf("Backups = %v, %v", bs, err)
	}
	b, _ := os.ReadFile(bs[0])
	if string(b) != "v1" {
		t.Fatalf("backup content = %q", b)
	}
	if !strings.Contains(bs[0], BackupsDirName) {
		t.Fatalf("backup outside backups dir: %s", bs[0])
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	ents, _ := os.ReadDir(dir)
	for _, e := range ents {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}
