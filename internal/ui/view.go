/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"strings"

	"goeditpdf/internal/action"
	"goeditpdf/internal/geometry"
)

// frame is a rectangle in view coordinates (device independent pixels).
type frame struct{ X, Y, W, H float32 }

// relativeSelection maps a drag between two view positions onto the preview
// drawn in f. The result is not clamped; Selection.Normalize does that.
func relativeSelection(f frame, x1, y1, x2, y2 float32) geometry.Selection {
	if f.W <= 0 || f.H <= 0 {
		return geometry.Selection{}
	}
	rx := func(v float32) float64 { return float64((v - f.X) / f.W) }
	ry := func(v float32) float64 { return float64((v - f.Y) / f.H) }
	return geometry.NewSelection(rx(x1), ry(y1), rx(x2), ry(y2))
}

// selectionFrame is the inverse of relativeSelection for a normalized selection.
func selectionFrame(f frame, sel geometry.Selection) frame {
	r := sel.Normalize()
	return frame{
		X: f.X + float32(r.X1)*f.W,
		Y: f.Y + float32(r.Y1)*f.H,
		W: float32(r.Width()) * f.W,
		H: float32(r.Height()) * f.H,
	}
}

// dashes splits the outline of f into dash segments {x1, y1, x2, y2}.
// Fyne has no dashed stroke, so the view draws these as separate lines.
func dashes(f frame, dash, gap float32) [][4]float32 {
	if dash <= 0 || f.W <= 0 || f.H <= 0 {
		return nil
	}
	var out [][4]float32
	edge := func(x1, y1, x2, y2 float32) {
		length := x2 - x1 + y2 - y1 // edges are axis-aligned
		dx, dy := (x2-x1)/length, (y2-y1)/length
		for s := float32(0); s < length; s += dash + gap {
			e := min(s+dash, length)
			out = append(out, [4]float32{x1 + dx*s, y1 + dy*s, x1 + dx*e, y1 + dy*e})
		}
	}
	r, b := f.X+f.W, f.Y+f.H
	edge(f.X, f.Y, r, f.Y)
	edge(r, f.Y, r, b)
	edge(f.X, b, r, b)
	edge(f.X, f.Y, f.X, b)
	return out
}

var zoomSteps = []float32{0.25, 0.5, 0.75, 1, 1.25, 1.5, 2, 3, 4}

// nextZoom returns the next zoom step above (dir > 0) or below (dir < 0) z.
func nextZoom(z float32, dir int) float32 {
	if dir > 0 {
		for _, s := range zoomSteps {
			if s > z+1e-3 {
				return s
			}
		}
		return zoomSteps[len(zoomSteps)-1]
	}
	for i := len(zoomSteps) - 1; i >= 0; i-- {
		if zoomSteps[i] < z-1e-3 {
			return zoomSteps[i]
		}
	}
	return zoomSteps[0]
}

// pageLabel is the "current / total" text of the action bar (1-based).
func pageLabel(index, total int) string {
	if total == 0 {
		return "0 / 0"
	}
	return fmt.Sprintf("%d / %d", index+1, total)
}

const recentMax = 10

// mergeRecent puts path in front of items, drops duplicates and caps the list.
func mergeRecent(items []string, path string, limit int) []string {
	out := make([]string, 0, len(items)+1)
	out = append(out, path)
	for _, s := range items {
		if strings.TrimSpace(s) == "" || strings.EqualFold(s, path) {
			continue
		}
		out = append(out, s)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// discardsChanges reports whether running kind would throw away unsaved edits.
// Only open replaces the document; addPages keeps it.
func discardsChanges(kind action.Kind, saved bool) bool {
	return kind == action.Open && !saved
}
