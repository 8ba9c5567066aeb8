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

package ui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"goeditpdf/internal/geometry"
)

// PageView shows the current preview and lets the user drag a crop
// selection over it. Previews are drawn at zoom * 72/dpi view units per
// pixel, so zoom 1 shows the page at its natural size.
type PageView struct {
	widget.BaseWidget

	img  image.Image
	zoom float32
	unit float32 // view units per preview pixel at zoom 1

	sel      geometry.Selection
	hasSel   bool
	dragging bool
	start    fyne.Position

	// OnSelectionChanged fires after a drag ends or the selection is cleared
	// by a tap. ok is false for a degenerate selection.
	OnSelectionChanged func(sel geometry.Selection, ok bool)
}

// NewPageView returns an empty view for previews rendered at dpi.
func NewPageView(dpi float64) *PageView {
	if dpi <= 0 {
		dpi = 72
	}
	v := &PageView{zoom: 1, unit: float32(72 / dpi)}
	v.ExtendBaseWidget(v)
	return v
}

// SetImage shows img and drops any selection.
func (v *PageView) SetImage(img image.Image) {
	v.img = img
	v.hasSel = false
	v.dragging = false
	v.Refresh()
}

func (v *PageView) Zoom() float32 { return v.zoom }

func (v *PageView) SetZoom(z float32) {
	if z <= 0 {
		return
	}
	v.zoom = z
	v.Refresh()
}

// Selection returns the current selection and whether it has an area.
func (v *PageView) Selection() (geometry.Selection, bool) {
	return v.sel, v.hasSel && !v.sel.IsDegenerate()
}

func (v *PageView) ClearSelection() {
	v.hasSel = false
	v.dragging = false
	v.Refresh()
	if v.OnSelectionChanged != nil {
		v.OnSelectionChanged(geometry.Selection{}, false)
	}
}

func (v *PageView) imageSize() fyne.Size {
	if v.img == nil {
		return fyne.NewSize(0, 0)
	}
	b := v.img.Bounds()
	s := v.zoom * v.unit
	return fyne.NewSize(float32(b.Dx())*s, float32(b.Dy())*s)
}

// imageFrame is where the preview sits in a view of the given size:
// centred when there is room, top-left otherwise.
func (v *PageView) imageFrame(size fyne.Size) frame {
	is := v.imageSize()
	return frame{X: max(0, (size.Width-is.Width)/2), Y: max(0, (size.Height-is.Height)/2), W: is.Width, H: is.Height}
}

func (v *PageView) Dragged(e *fyne.DragEvent) {
	if v.img == nil {
		return
	}
	if !v.dragging {
		v.dragging = true
		v.start = e.Position.Subtract(e.Dragged)
	}
	f := v.imageFrame(v.Size())
	v.sel = relativeSelection(f, v.start.X, v.start.Y, e.Position.X, e.Position.Y)
	v.hasSel = true
	v.Refresh()
}

func (v *PageView) DragEnd() {
	v.dragging = false
	if v.OnSelectionChanged != nil {
		sel, ok := v.Selection()
		v.OnSelectionChanged(sel, ok)
	}
}

// Tapped clears the selection.
func (v *PageView) Tapped(*fyne.PointEvent) {
	if v.hasSel {
		v.ClearSelection()
	}
}

func (v *PageView) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 60, G: 60, B: 64, A: 255})
	raster := canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	raster.FillMode = canvas.ImageFillStretch
	raster.ScaleMode = canvas.ImageScaleSmooth
	shade := canvas.NewRectangle(color.NRGBA{R: 0, G: 120, B: 255, A: 40})
	shade.Hide()
	r := &pageViewRenderer{v: v, bg: bg, raster: raster, shade: shade}
	r.rebuildObjects()
	return r
}

var dashColor = color.NRGBA{R: 0, G: 90, B: 220, A: 255}

type pageViewRenderer struct {
	v       *PageView
	bg      *canvas.Rectangle
	raster  *canvas.Image
	shade   *canvas.Rectangle
	lines   []*canvas.Line
	objects []fyne.CanvasObject
}

func (r *pageViewRenderer) rebuildObjects() {
	objs := []fyne.CanvasObject{r.bg, r.raster, r.shade}
	for _, ln := range r.lines {
		objs = append(objs, ln)
	}
	r.objects = objs
}

func (r *pageViewRenderer) Destroy()                     {}
func (r *pageViewRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *pageViewRenderer) MinSize() fyne.Size           { return r.v.imageSize() }

func (r *pageViewRenderer) Refresh() {
	if r.v.img != nil {
		r.raster.Image = r.v.img
		r.raster.Show()
	} else {
		r.raster.Hide()
	}
	r.raster.Refresh()
	r.Layout(r.v.Size())
	canvas.Refresh(r.v)
}

func (r *pageViewRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	f := r.v.imageFrame(size)
	r.raster.Move(fyne.NewPos(f.X, f.Y))
	r.raster.Resize(fyne.NewSize(f.W, f.H))

	var segs [][4]float32
	if r.v.hasSel {
		sf := selectionFrame(f, r.v.sel)
		r.shade.Move(fyne.NewPos(sf.X, sf.Y))
		r.shade.Resize(fyne.NewSize(sf.W, sf.H))
		r.shade.Show()
		segs = dashes(sf, 6, 4)
	} else {
		r.shade.Hide()
	}
	if len(segs) > len(r.lines) {
		for len(r.lines) < len(segs) {
			ln := canvas.NewLine(dashColor)
			ln.StrokeWidth = 1.5
			r.lines = append(r.lines, ln)
		}
		r.rebuildObjects()
	}
	for i, ln := range r.lines {
		if i >= len(segs) {
			ln.Hide()
			continue
		}
		s := segs[i]
		ln.Position1 = fyne.NewPos(s[0], s[1])
		ln.Position2 = fyne.NewPos(s[2], s[3])
		ln.Show()
		ln.Refresh()
	}
}
