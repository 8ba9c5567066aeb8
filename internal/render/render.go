/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render turns pages into preview bitmaps in two steps: the page is
// drawn onto a fresh gofpdf canvas sized to its box (gofpdi imports it as a
// form XObject), and the canvas is rasterized with go-poppler. The canvas is
// kept in memory; nothing is written to disk.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
	poppler "github.com/novvoo/go-poppler/pkg/pdf"

	"goeditpdf/internal/pdfpage"
)

// DefaultDPI is the natural preview resolution: one pixel per point.
const DefaultDPI = 72

// Renderer produces preview bitmaps for pages.
type Renderer interface {
	// Canvas draws the page onto a new canvas and returns it as PDF bytes.
	Canvas(p *pdfpage.Page) ([]byte, error)
	// Rasterize converts a canvas into a bitmap.
	Rasterize(canvas []byte) (image.Image, error)
	// Render is Rasterize(Canvas(p)) turned by the page's rotation.
	Render(p *pdfpage.Page) (image.Image, error)
}

// Bridge is the gofpdf/go-poppler Renderer.
type Bridge struct {
	dpi float64
}

// NewBridge returns a Bridge rasterizing at dpi (DefaultDPI if <= 0).
func NewBridge(dpi float64) *Bridge {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Bridge{dpi: dpi}
}

// DPI is the rasterization resolution.
func (b *Bridge) DPI() float64 { return b.dpi }

// Canvas places the page's crop box on a canvas of exactly that size.
// gofpdi reports malformed input by panicking, so the panic is turned into an error.
func (b *Bridge) Canvas(p *pdfpage.Page) (out []byte, err error) {
	if p == nil {
		return nil, errors.New("nil page")
	}
	box := p.Box()
	w, h := box.Width(), box.Height()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("page box %s has no area", box)
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("import page: %v", r)
		}
	}()

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	imp := gofpdi.NewImporter()
	var rs io.ReadSeeker = bytes.NewReader(p.Data())
	tpl := imp.ImportPageFromStream(pdf, &rs, 1, "/CropBox")
	imp.UseImportedTemplate(pdf, tpl, 0, 0, w, h)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write canvas: %w", err)
	}
	return buf.Bytes(), nil
}

// Rasterize renders page 1 of the canvas.
func (b *Bridge) Rasterize(canvas []byte) (image.Image, error) {
	doc, err := poppler.NewDocument(canvas)
	if err != nil {
		return nil, fmt.Errorf("parse canvas: %w", err)
	}
	defer doc.Close()
	if doc.NumPages() < 1 {
		return nil, errors.New("canvas has no pages")
	}
	pr := poppler.NewPageRenderer(doc, poppler.RenderOptions{DPI: b.dpi, Format: "png", AntiAlias: true})
	rp, err := pr.RenderPage(1)
	if err != nil {
		return nil, fmt.Errorf("rasterize canvas: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(rp.Data))
	if err != nil {
		return nil, fmt.Errorf("decode raster: %w", err)
	}
	return ToNRGBA(img), nil
}

// Render draws, rasterizes and rotates p.
func (b *Bridge) Render(p *pdfpage.Page) (image.Image, error) {
	canvas, err := b.Canvas(p)
	if err != nil {
		return nil, err
	}
	img, err := b.Rasterize(canvas)
	if err != nil {
		return nil, err
	}
	return Rotate(img, p.Rotation()), nil
}
