/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"goeditpdf/internal/geometry"
)

// ToNRGBA copies img into a zero-origin *image.NRGBA unless it already is one.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Rotate turns img clockwise by a multiple of 90 degrees. Quarter turns map
// pixel centers onto pixel centers, so nearest neighbour sampling is exact.
func Rotate(img image.Image, deg int) image.Image {
	rot := geometry.NormalizeRotation(deg)
	if rot == 0 {
		return img
	}
	src := ToNRGBA(img)
	w, h := float64(src.Rect.Dx()), float64(src.Rect.Dy())
	var (
		dst *image.NRGBA
		m   f64.Aff3 // source to destination
	)
	switch rot {
	case 90:
		dst = image.NewNRGBA(image.Rect(0, 0, int(h), int(w)))
		m = f64.Aff3{0, -1, h, 1, 0, 0}
	case 180:
		dst = image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
		m = f64.Aff3{-1, 0, w, 0, -1, h}
	case 270:
		dst = image.NewNRGBA(image.Rect(0, 0, int(h), int(w)))
		m = f64.Aff3{0, 1, 0, -1, 0, w}
	}
	draw.NearestNeighbor.Transform(dst, m, src, src.Bounds(), draw.Src, nil)
	return dst
}

// Thumbnail scales img so that its longer side is maxSide pixels. Images that
// are already small enough are returned unchanged.
func Thumbnail(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) || w == 0 || h == 0 {
		return img
	}
	tw, th := maxSide, maxSide
	if w >= h {
		th = max(1, h*maxSide/w)
	} else {
		tw = max(1, w*maxSide/h)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
