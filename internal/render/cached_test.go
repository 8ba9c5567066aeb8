/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"goeditpdf/internal/pdfpage"
	"goeditpdf/internal/storage"
	"goeditpdf/internal/testpdf"
)

// countingRenderer returns a fixed-size image and counts Render calls.
type countingRenderer struct {
	calls int
	err   error
}

func (c *countingRenderer) Canvas(p *pdfpage.Page) ([]byte, error)       { return p.Data(), nil }
func (c *countingRenderer) Rasterize(canvas []byte) (image.Image, error) { return image.NewNRGBA(image.Rect(0, 0, 4, 3)), nil }
func (c *countingRenderer) Render(p *pdfpage.Page) (image.Image, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	w, h := p.DisplaySize()
	return image.NewNRGBA(image.Rect(0, 0, int(w/10), int(h/10))), nil
}

func TestCachedRendersOncePerPage(t *testing.T) {
	cache, err := storage.OpenPreviewCache(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	next := &countingRenderer{}
	c := NewCached(next, cache, 72)
	p := loadPages(t, testpdf.Square)[0]

	first, err := c.Render(p)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := c.Render(p)
	if err != nil {
		t.Fatalf("render again: %v", err)
	}
	if next.calls != 1 {
		t.Fatalf("expected one underlying render, got %d", next.calls)
	}
	if first.Bounds().Size() != second.Bounds().Size() {
		t.Fatalf("cached image size %v, fresh %v", second.Bounds(), first.Bounds())
	}

	rotated, _ := p.Rotate(90)
	if _, err := c.Render(rotated); err != nil {
		t.Fatalf("render rotated: %v", err)
	}
	if next.calls != 2 {
		t.Fatalf("rotated page must miss the cache, calls = %d", next.calls)
	}
}

func TestCachedPassesRenderErrorsThrough(t *testing.T) {
	cache, err := storage.OpenPreviewCache(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()
	boom := errors.New("boom")
	next := &countingRenderer{err: boom}
	if _, err := NewCached(next, cache, 72).Render(loadPages(t, testpdf.Square)[0]); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if next.calls != 1 {
		t.Fatalf("failed render retried: calls = %d", next.calls)
	}
}

func TestCachedWithoutCache(t *testing.T) {
	next := &countingRenderer{}
	c := NewCached(next, nil, 72)
	p := loadPages(t, testpdf.Square)[0]
	for i := 0; i < 2; i++ {
		if _, err := c.Render(p); err != nil {
			t.Fatal(err)
		}
	}
	if next.calls != 2 {
		t.Fatalf("nil cache should always render, calls = %d", next.calls)
	}
}

func TestExportPNG(t *testing.T) {
	pages := loadPages(t, testpdf.A4, testpdf.Square)
	out := filepath.Join(t.TempDir(), "png")
	paths, err := ExportPNG(&countingRenderer{}, pages, out)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %v", paths)
	}
	for i, want := range []string{"page-1.png", "page-2.png"} {
		if filepath.Base(paths[i]) != want {
			t.Errorf("file %d = %s, want %s", i, paths[i], want)
		}
		st, err := os.Stat(paths[i])
		if err != nil || st.Size() == 0 {
			t.Errorf("missing or empty %s: %v", paths[i], err)
		}
	}
}
