/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package testpdf generates small PDF fixtures for tests.
package testpdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// Size is a page size in points.
type Size struct{ W, H float64 }

var (
	A4     = Size{W: 595, H: 842}
	Letter = Size{W: 612, H: 792}
	Square = Size{W: 300, H: 300}
)

// Build returns a PDF with one page per size. Each page carries its number as
// text and a filled rectangle in the lower left quarter so rasterized output
// is not blank.
func Build(t testing.TB, sizes ...Size) []byte {
	t.Helper()
	if len(sizes) == 0 {
		sizes = []Size{A4}
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: sizes[0].W, Ht: sizes[0].H},
	})
	pdf.SetFont("Helvetica", "", 14)
	for i, s := range sizes {
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: s.W, Ht: s.H})
		pdf.SetFillColor(200, 40, 40)
		pdf.Rect(0, s.H/2, s.W/2, s.H/2, "F")
		pdf.Text(20, 30, fmt.Sprintf("page %d", i+1))
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("build fixture pdf: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes Build(sizes...) into dir/name and returns the path.
func WriteFile(t testing.TB, dir, name string, sizes ...Size) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(t, sizes...), 0o644); err != nil {
		t.Fatalf("write fixture pdf: %v", err)
	}
	return path
}
