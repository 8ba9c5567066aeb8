//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// These tests exercise the Fyne widgets. They are gated behind the "fyne"
// build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"image"
	"math"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"

	"goeditpdf/internal/geometry"
)

func newTestView(t *testing.T) *PageView {
	t.Helper()
	test.NewTempApp(t)
	v := NewPageView(144)
	v.SetImage(image.NewNRGBA(image.Rect(0, 0, 400, 200)))
	v.Resize(fyne.NewSize(200, 100))
	return v
}

func TestPageViewSizeFollowsZoomAndDPI(t *testing.T) {
	v := newTestView(t)
	if got := v.imageSize(); got != fyne.NewSize(200, 100) {
		t.Fatalf("image size at zoom 1 = %v", got)
	}
	v.SetZoom(2)
	if got := v.imageSize(); got != fyne.NewSize(400, 200) {
		t.Fatalf("image size at zoom 2 = %v", got)
	}
	v.SetZoom(0)
	if v.Zoom() != 2 {
		t.Fatal("non-positive zoom must be ignored")
	}
}

func TestPageViewDragSelects(t *testing.T) {
	v := newTestView(t)
	var got geometry.Selection
	var gotOK bool
	v.OnSelectionChanged = func(sel geometry.Selection, ok bool) { got, gotOK = sel, ok }

	v.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(60, 30)}, Dragged: fyne.NewDelta(40, 20)})
	v.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(100, 75)}, Dragged: fyne.NewDelta(40, 45)})
	v.DragEnd()

	if !gotOK {
		t.Fatal("expected a usable selection")
	}
	r, want := got.Normalize(), geometry.R(0.1, 0.1, 0.5, 0.75)
	if math.Abs(r.X1-want.X1) > 1e-6 || math.Abs(r.Y1-want.Y1) > 1e-6 || math.Abs(r.X2-want.X2) > 1e-6 || math.Abs(r.Y2-want.Y2) > 1e-6 {
		t.Fatalf("selection = %v, want %v", r, want)
	}
	if _, ok := v.Selection(); !ok {
		t.Fatal("view lost the selection")
	}

	v.Tapped(&fyne.PointEvent{})
	if gotOK {
		t.Fatal("tap should clear the selection")
	}
}

func TestPageViewClickWithoutAreaIsDegenerate(t *testing.T) {
	v := newTestView(t)
	ok := true
	v.OnSelectionChanged = func(_ geometry.Selection, o bool) { ok = o }
	v.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(50, 50)}, Dragged: fyne.NewDelta(0, 10)})
	v.DragEnd()
	if ok {
		t.Fatal("zero-width drag must not enable cropping")
	}
}

func TestPageViewNewImageDropsSelection(t *testing.T) {
	v := newTestView(t)
	v.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(90, 90)}, Dragged: fyne.NewDelta(50, 50)})
	v.DragEnd()
	v.SetImage(image.NewNRGBA(image.Rect(0, 0, 10, 10)))
	if _, ok := v.Selection(); ok {
		t.Fatal("selection survived a new image")
	}
}

func TestPageViewRendererDrawsDashes(t *testing.T) {
	v := newTestView(t)
	r := v.CreateRenderer().(*pageViewRenderer)
	v.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(80, 80)}, Dragged: fyne.NewDelta(60, 60)})
	r.Layout(v.Size())
	visible := 0
	for _, ln := range r.lines {
		if ln.Visible() {
			visible++
		}
	}
	if visible == 0 || len(r.Objects()) != 3+len(r.lines) {
		t.Fatalf("visible dashes=%d objects=%d lines=%d", visible, len(r.Objects()), len(r.lines))
	}
}
