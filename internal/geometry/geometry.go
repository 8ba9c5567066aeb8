/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geometry holds the small amount of rectangle math needed to turn a
// drag on a page preview into an absolute crop box in PDF user space.
package geometry

import "fmt"

// Point is a 2D point. For selections both coordinates are relative (0..1).
type Point struct{ X, Y float64 }

// Rect is an axis-aligned rectangle given by two corners (X1,Y1) and (X2,Y2).
// Page boxes use PDF user space units (points, y up).
type Rect struct {
	X1, Y1 float64
	X2, Y2 float64
}

func R(x1, y1, x2, y2 float64) Rect { return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2} }

func (r Rect) Width() float64  { return r.X2 - r.X1 }
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }

// Normalize orders the corners so that X1<=X2 and Y1<=Y2.
func (r Rect) Normalize() Rect {
	return Rect{
		X1: min(r.X1, r.X2), Y1: min(r.Y1, r.Y2),
		X2: max(r.X1, r.X2), Y2: max(r.Y1, r.Y2),
	}
}

// IsEmpty reports a zero-area rectangle.
func (r Rect) IsEmpty() bool { return r.X1 == r.X2 || r.Y1 == r.Y2 }

// OriginSize returns the rectangle as origin plus width and height.
func (r Rect) OriginSize() (x, y, w, h float64) {
	return r.X1, r.Y1, r.X2 - r.X1, r.Y2 - r.Y1
}

// Swap returns the rectangle with width and height exchanged around its origin.
// Used to get the displayed size of a page turned by a quarter.
func (r Rect) Swap() Rect {
	return Rect{X1: r.X1, Y1: r.Y1, X2: r.X1 + r.Height(), Y2: r.Y1 + r.Width()}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", r.X1, r.Y1, r.X2, r.Y2)
}

// Selection is a drag gesture over a displayed preview, in relative
// coordinates with the origin in the top-left corner.
type Selection struct {
	Start, End Point
}

func NewSelection(x1, y1, x2, y2 float64) Selection {
	return Selection{Start: Point{x1, y1}, End: Point{x2, y2}}
}

// Normalize returns the selection as a rectangle with ordered corners,
// clamped into the unit square.
func (s Selection) Normalize() Rect {
	r := Rect{X1: s.Start.X, Y1: s.Start.Y, X2: s.End.X, Y2: s.End.Y}.Normalize()
	return Rect{X1: clamp01(r.X1), Y1: clamp01(r.Y1), X2: clamp01(r.X2), Y2: clamp01(r.Y2)}
}

// IsDegenerate is true when the normalized selection has no area.
func (s Selection) IsDegenerate() bool { return s.Normalize().IsEmpty() }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// AbsoluteCrop scales a normalized relative rectangle into the page box.
//
//	cropX1 = X1 + x1*(X2-X1)   cropY1 = Y1 + y1*(Y2-Y1)
//	cropX2 = X1 + x2*(X2-X1)   cropY2 = Y1 + y2*(Y2-Y1)
func AbsoluteCrop(sel Rect, box Rect) Rect {
	w, h := box.Width(), box.Height()
	return Rect{
		X1: box.X1 + sel.X1*w,
		Y1: box.Y1 + sel.Y1*h,
		X2: box.X1 + sel.X2*w,
		Y2: box.Y1 + sel.Y2*h,
	}
}

// ToPageSpace maps a normalized selection drawn on the displayed preview
// (y down, page turned clockwise by rotation degrees) into the relative frame
// of the unrotated page with y pointing up, ready for AbsoluteCrop.
func ToPageSpace(sel Rect, rotation int) Rect {
	a := toPage(Point{sel.X1, sel.Y1}, rotation)
	b := toPage(Point{sel.X2, sel.Y2}, rotation)
	return Rect{X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y}.Normalize()
}

func toPage(p Point, rotation int) Point {
	switch NormalizeRotation(rotation) {
	case 90:
		return Point{X: p.Y, Y: p.X}
	case 180:
		return Point{X: 1 - p.X, Y: p.Y}
	case 270:
		return Point{X: 1 - p.Y, Y: 1 - p.X}
	default:
		return Point{X: p.X, Y: 1 - p.Y}
	}
}

// NormalizeRotation folds any multiple of 90 into 0, 90, 180 or 270.
func NormalizeRotation(deg int) int {
	r := deg % 360
	if r < 0 {
		r += 360
	}
	return r - r%90
}

// IsQuarterTurn reports whether the rotation swaps width and height.
func IsQuarterTurn(deg int) bool {
	r := NormalizeRotation(deg)
	return r == 90 || r == 270
}
