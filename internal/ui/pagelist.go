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
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// pageItem is one row of the page list: thumbnail plus label. It handles its
// own taps so the list can support ctrl-click multi selection and a context
// menu.
type pageItem struct {
	widget.BaseWidget

	index int
	bg    *canvas.Rectangle
	thumb *canvas.Image
	label *widget.Label
	mod   fyne.KeyModifier

	onTap  func(index int, mod fyne.KeyModifier)
	onMenu func(index int, at fyne.Position)
}

func newPageItem(thumbSize float32, onTap func(int, fyne.KeyModifier), onMenu func(int, fyne.Position)) *pageItem {
	it := &pageItem{
		index:  -1,
		bg:     canvas.NewRectangle(color.Transparent),
		thumb:  canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, 1, 1))),
		label:  widget.NewLabel(""),
		onTap:  onTap,
		onMenu: onMenu,
	}
	it.thumb.FillMode = canvas.ImageFillContain
	it.thumb.SetMinSize(fyne.NewSize(thumbSize, thumbSize))
	it.ExtendBaseWidget(it)
	return it
}

func (it *pageItem) set(index int, thumb image.Image, text string, selected bool) {
	it.index = index
	if thumb != nil {
		it.thumb.Image = thumb
		it.thumb.Refresh()
	}
	it.label.SetText(text)
	if selected {
		it.bg.FillColor = theme.Color(theme.ColorNameSelection)
	} else {
		it.bg.FillColor = color.Transparent
	}
	it.bg.Refresh()
}

func (it *pageItem) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(it.bg, container.NewBorder(nil, nil, it.thumb, nil, it.label)))
}

func (it *pageItem) MouseDown(e *desktop.MouseEvent) { it.mod = e.Modifier }
func (it *pageItem) MouseUp(*desktop.MouseEvent)     {}

func (it *pageItem) Tapped(*fyne.PointEvent) {
	mod := it.mod
	it.mod = 0
	if it.onTap != nil && it.index >= 0 {
		it.onTap(it.index, mod)
	}
}

func (it *pageItem) TappedSecondary(e *fyne.PointEvent) {
	if it.onMenu != nil && it.index >= 0 {
		it.onMenu(it.index, e.AbsolutePosition)
	}
}
