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
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupsDirName is created next to a saved document when backups are enabled.
const BackupsDirName = ".goeditpdf-backups"

// SaveOptions tune WriteFileAtomic.
type SaveOptions struct {
	// Backup copies an existing target into BackupsDirName before it is replaced.
	Backup bool
}

// WriteFileAtomic writes the output of write to path. The data goes to a temp
// file in the destination directory first and is renamed over path only after
// it was written and synced completely, so path is either the old or the new
// file, never a partial one.
func WriteFileAtomic(path string, opts SaveOptions, write func(io.Writer) error) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("destination path is required")
	}
	dir := filepath.Dir(path)
	if fi, err := os.Stat(dir); err != nil {
		return fmt.Errorf("destination directory: %w", err)
	} else if !fi.IsDir() {
		return fmt.Errorf("destination directory %s is not a directory", dir)
	}

	if opts.Backup {
		if _, err := BackupFile(path); err != nil {
			return fmt.Errorf("backup current file: %w", err)
		}
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, write); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(temp, path); err != nil {
		// Windows refuses to rename over an existing file
		if _, serr := os.Stat(path); serr == nil {
			if rerr := os.Remove(path); rerr == nil {
				err = os.Rename(temp, path)
			}
		}
		if err != nil {
			_ = os.Remove(temp)
			return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

// writeFileSync streams write into a new file and flushes it to disk.
func writeFileSync(path string, write func(io.Writer) error) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return err
	}
	return f.Sync()
}

// BackupFile copies path into <dir>/.goeditpdf-backups/<name>.<stamp>.bak.
// It returns an empty string and no error when path does not exist yet.
func BackupFile(path string) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405.000")
	bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
	if err := copyFile(path, bpath); err != nil {
		return "", err
	}
	return bpath, nil
}

// Backups lists the backups of path, oldest first.
func Backups(path string) ([]string, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		if name := e.Name(); strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // the stamp sorts lexicographically
	return out, nil
}

// copyFile copies src to dst, overwriting dst.
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
	return writeFileSync(dst, func(w io.Writer) error {
		_, err := io.Copy(w, sf)
		return err
	})
}
