/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pdfpage is the page-tree collaborator: it splits a PDF into
// independent single-page documents, crops and rotates them, and merges them
// back into one file. All heavy lifting is done by pdfcpu.
//
// A Page is immutable. Crop and Rotate return a new Page and leave the
// receiver untouched, so a Page can be shared freely between the store and
// the renderer.
package pdfpage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"goeditpdf/internal/geometry"
)

// Page is one page of a document held as a standalone single-page PDF.
//
// The bytes never carry a /Rotate entry. The rotation is tracked beside them
// and applied when the document is written, which keeps rotation exact and
// lets the renderer work on upright content.
type Page struct {
	data     []byte
	box      geometry.Rect
	rotation int
}

// Box is the effective page box (the crop box, or the media box if none) in
// PDF user space.
func (p *Page) Box() geometry.Rect { return p.box }

// Rotation is the clockwise display rotation in degrees (0, 90, 180 or 270).
func (p *Page) Rotation() int { return p.rotation }

// Data returns the unrotated single-page PDF. Callers must not modify it.
func (p *Page) Data() []byte { return p.data }

// DisplaySize returns the width and height in points as the page is shown,
// i.e. with width and height exchanged for quarter turns.
func (p *Page) DisplaySize() (w, h float64) {
	if geometry.IsQuarterTurn(p.rotation) {
		return p.box.Height(), p.box.Width()
	}
	return p.box.Width(), p.box.Height()
}

// Key identifies the page content for caching. Pages with equal keys render
// to the same bitmap.
func (p *Page) Key() string {
	h := sha256.New()
	h.Write(p.data)
	h.Write([]byte(p.box.String()))
	h.Write([]byte(strconv.Itoa(p.rotation)))
	return hex.EncodeToString(h.Sum(nil))
}

// Rotate returns a copy of the page turned clockwise by deg degrees on top of
// its current rotation. deg must be a multiple of 90.
func (p *Page) Rotate(deg int) (*Page, error) {
	if deg%90 != 0 {
		return nil, fmt.Errorf("rotate by %d: rotation must be a multiple of 90", deg)
	}
	return &Page{data: p.data, box: p.box, rotation: geometry.NormalizeRotation(p.rotation + deg)}, nil
}

// Crop returns a copy of the page whose crop box is r (PDF user space).
func (p *Page) Crop(r geometry.Rect) (*Page, error) {
	r = r.Normalize()
	if r.IsEmpty() {
		return nil, fmt.Errorf("crop to %s: empty rectangle", r)
	}
	box, err := parseBox(r)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := crop(bytes.NewReader(p.data), &out, box); err != nil {
		return nil, fmt.Errorf("crop to %s: %w", r, err)
	}
	return &Page{data: out.Bytes(), box: r, rotation: p.rotation}, nil
}

func (p *Page) String() string {
	return fmt.Sprintf("page %s rot=%d", p.box, p.rotation)
}
