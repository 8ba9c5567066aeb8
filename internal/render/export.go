/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"goeditpdf/internal/pdfpage"
	"goeditpdf/internal/storage"
)

// ExportPNG renders every page and writes it as <outDir>/page-<n>.png
// (1-based). It returns the written paths in page order.
func ExportPNG(r Renderer, pages []*pdfpage.Page, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	out := make([]string, 0, len(pages))
	for i, p := range pages {
		img, err := r.Render(p)
		if err != nil {
			return out, fmt.Errorf("render page %d: %w", i+1, err)
		}
		name := filepath.Join(outDir, fmt.Sprintf("page-%d.png", i+1))
		err = storage.WriteFileAtomic(name, storage.SaveOptions{}, func(w io.Writer) error {
			return png.Encode(w, img)
		})
		if err != nil {
			return out, fmt.Errorf("write %s: %w", name, err)
		}
		out = append(out, name)
	}
	return out, nil
}
