/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) <= 1e-9 }

func rectEqual(a, b Rect) bool {
	return almostEqual(a.X1, b.X1) && almostEqual(a.Y1, b.Y1) && almostEqual(a.X2, b.X2) && almostEqual(a.Y2, b.Y2)
}

func TestSelectionNormalizeOrdersCorners(t *testing.T) {
	s := NewSelection(0.8, 0.9, 0.2, 0.1)
	got := s.Normalize()
	want := R(0.2, 0.1, 0.8, 0.9)
	if !rectEqual(got, want) {
		t.Fatalf("Normalize() = %v, want %v", got, want)
	}
}

func TestSelectionNormalizeClamps(t *testing.T) {
	got := NewSelection(-0.5, 0.2, 1.7, 0.4).Normalize()
	if got.X1 != 0 || got.X2 != 1 {
		t.Fatalf("expected clamp into unit square, got %v", got)
	}
}

func TestSelectionDegenerate(t *testing.T) {
	cases := []struct {
		name string
		sel  Selection
		want bool
	}{
		{"point", NewSelection(0.3, 0.3, 0.3, 0.3), true},
		{"horizontal line", NewSelection(0.1, 0.5, 0.9, 0.5), true},
		{"vertical line", NewSelection(0.5, 0.1, 0.5, 0.9), true},
		{"area", NewSelection(0.1, 0.1, 0.2, 0.2), false},
		{"reversed area", NewSelection(0.9, 0.9, 0.1, 0.1), false},
	}
	for _, c := range cases {
		if got := c.sel.IsDegenerate(); got != c.want {
			t.Errorf("%s: IsDegenerate() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestAbsoluteCropFormula(t *testing.T) {
	box := R(10, 20, 610, 820)
	sel := R(0.1, 0.25, 0.5, 0.75)
	got := AbsoluteCrop(sel, box)
	want := R(10+0.1*600, 20+0.25*800, 10+0.5*600, 20+0.75*800)
	if !rectEqual(got, want) {
		t.Fatalf("AbsoluteCrop() = %v, want %v", got, want)
	}
	x, y, w, h := got.OriginSize()
	if !almostEqual(x, 70) || !almostEqual(y, 220) || !almostEqual(w, 240) || !almostEqual(h, 400) {
		t.Fatalf("OriginSize() = %v %v %v %v", x, y, w, h)
	}
}

func TestAbsoluteCropFullSelectionIsBox(t *testing.T) {
	box := R(0, 0, 595, 842)
	if got := AbsoluteCrop(R(0, 0, 1, 1), box); !rectEqual(got, box) {
		t.Fatalf("full selection should map to box, got %v", got)
	}
}

func TestToPageSpaceFlipsYWithoutRotation(t *testing.T) {
	// top strip of the preview is the top strip of the page, i.e. high y in PDF space
	got := ToPageSpace(R(0, 0, 1, 0.25), 0)
	if !rectEqual(got, R(0, 0.75, 1, 1)) {
		t.Fatalf("ToPageSpace(0) = %v", got)
	}
}

func TestToPageSpaceRotations(t *testing.T) {
	// left strip of the displayed preview for each rotation
	sel := R(0, 0, 0.25, 1)
	cases := []struct {
		rot  int
		want Rect
	}{
		{0, R(0, 0, 0.25, 1)},
		{90, R(0, 0, 1, 0.25)},  // displayed left edge is the page bottom
		{180, R(0.75, 0, 1, 1)}, // displayed left edge is the page right
		{270, R(0, 0.75, 1, 1)}, // displayed left edge is the page top
		{-90, R(0, 0.75, 1, 1)},
		{450, R(0, 0, 1, 0.25)},
	}
	for _, c := range cases {
		if got := ToPageSpace(sel, c.rot); !rectEqual(got, c.want) {
			t.Errorf("rotation %d: got %v, want %v", c.rot, got, c.want)
		}
	}
}

func TestToPageSpaceKeepsArea(t *testing.T) {
	sel := R(0.1, 0.2, 0.4, 0.9)
	area := sel.Width() * sel.Height()
	for _, rot := range []int{0, 90, 180, 270} {
		got := ToPageSpace(sel, rot)
		if !almostEqual(got.Width()*got.Height(), area) {
			t.Errorf("rotation %d changed area: %v", rot, got)
		}
	}
}

func TestNormalizeRotation(t *testing.T) {
	for in, want := range map[int]int{0: 0, 90: 90, 360: 0, 450: 90, -90: 270, -180: 180, 720: 0} {
		if got := NormalizeRotation(in); got != want {
			t.Errorf("NormalizeRotation(%d) = %d, want %d", in, got, want)
		}
	}
	if !IsQuarterTurn(270) || IsQuarterTurn(180) {
		t.Fatalf("IsQuarterTurn mismatch")
	}
}

func TestSwap(t *testing.T) {
	got := R(0, 0, 100, 200).Swap()
	if got.Width() != 200 || got.Height() != 100 {
		t.Fatalf("Swap() = %v", got)
	}
}
