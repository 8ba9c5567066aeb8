/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"math"
	"testing"

	"goeditpdf/internal/geometry"
	"goeditpdf/internal/pdfpage"
	"goeditpdf/internal/testpdf"
)

func loadPages(t *testing.T, sizes ...testpdf.Size) []*pdfpage.Page {
	t.Helper()
	pages, err := pdfpage.Load(testpdf.Build(t, sizes...), pdfpage.Options{})
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return pages
}

func TestCanvasMatchesPageBox(t *testing.T) {
	p := loadPages(t, testpdf.Square)[0]
	cropped, err := p.Crop(geometry.R(50, 60, 250, 160))
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	b := NewBridge(0)
	for _, pg := range []*pdfpage.Page{p, cropped} {
		canvas, err := b.Canvas(pg)
		if err != nil {
			t.Fatalf("canvas: %v", err)
		}
		out, err := pdfpage.Load(canvas, pdfpage.Options{})
		if err != nil {
			t.Fatalf("canvas is not a readable PDF: %v", err)
		}
		if len(out) != 1 {
			t.Fatalf("canvas has %d pages", len(out))
		}
		got, want := out[0].Box(), pg.Box()
		if math.Abs(got.Width()-want.Width()) > 0.5 || math.Abs(got.Height()-want.Height()) > 0.5 {
			t.Errorf("canvas box %v, page box %v", got, want)
		}
	}
}

func TestCanvasRejectsNilPage(t *testing.T) {
	if _, err := NewBridge(72).Canvas(nil); err == nil {
		t.Fatal("expected error for nil page")
	}
}

func TestRenderSizeFollowsDPIAndRotation(t *testing.T) {
	p := loadPages(t, testpdf.Size{W: 200, H: 100})[0]
	b := NewBridge(144)
	if b.DPI() != 144 {
		t.Fatalf("dpi = %v", b.DPI())
	}
	img, err := b.Render(p)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); abs(w-400) > 2 || abs(h-200) > 2 {
		t.Fatalf("rendered %dx%d, want about 400x200", w, h)
	}
	rotated, err := p.Rotate(90)
	if err != nil {
		t.Fatal(err)
	}
	img, err = b.Render(rotated)
	if err != nil {
		t.Fatalf("render rotated: %v", err)
	}
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); abs(w-200) > 2 || abs(h-400) > 2 {
		t.Fatalf("rotated render %dx%d, want about 200x400", w, h)
	}
}

func TestRasterizeRejectsGarbage(t *testing.T) {
	if _, err := NewBridge(72).Rasterize([]byte("nope")); err == nil {
		t.Fatal("expected error for non-PDF canvas")
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
