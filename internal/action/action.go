/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package action is the closed set of user actions and the dispatch table
// that applies them to a document controller. The Fyne surface, the CLI and
// action scripts all go through Dispatch.
package action

import (
	"errors"
	"fmt"

	"goeditpdf/internal/document"
	"goeditpdf/internal/geometry"
)

// Kind names an action.
type Kind string

const (
	Open     Kind = "open"
	AddPages Kind = "addPages"
	Save     Kind = "save"
	SaveAs   Kind = "saveAs"
	EditMeta Kind = "editMeta"
	First    Kind = "first"
	Last     Kind = "last"
	Back     Kind = "back"
	Forward  Kind = "forward"
	GoTo     Kind = "goto"
	Crop     Kind = "crop"
	Delete   Kind = "delete"
	Rotate   Kind = "rotate"
	Margin   Kind = "margin"
	Rescale  Kind = "rescale"
)

// Kinds lists every action in menu order.
var Kinds = []Kind{Open, AddPages, Save, SaveAs, EditMeta, First, Last, Back, Forward, GoTo, Crop, Delete, Rotate, Margin, Rescale}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrMissingPayload = errors.New("missing payload")
)

// Action is one user action with the payload it needs. Pages empty means the
// current page.
type Action struct {
	Kind      Kind      `json:"action"`
	Path      string    `json:"path,omitempty"`
	Selection []float64 `json:"selection,omitempty"` // x1, y1, x2, y2 relative to the preview
	Pages     []int     `json:"pages,omitempty"`
	Page      int       `json:"page,omitempty"`
}

// Target is what actions are applied to; *document.Controller implements it.
type Target interface {
	Open(path string) error
	AddPages(path string) error
	Save(path string) error
	EditMeta() error
	Navigate(d document.Direction) error
	GoTo(index int) error
	Crop(sel geometry.Selection) error
	Delete(indices []int) error
	Rotate(indices []int) error
	Margin(indices []int) error
	Rescale(indices []int) error
	Current() int
}

var _ Target = (*document.Controller)(nil)

// Dispatch applies a to t synchronously.
func Dispatch(t Target, a Action) error {
	switch a.Kind {
	case Open, AddPages, SaveAs:
		if a.Path == "" {
			return fmt.Errorf("%s: %w: path", a.Kind, ErrMissingPayload)
		}
	}
	switch a.Kind {
	case Open:
		return t.Open(a.Path)
	case AddPages:
		return t.AddPages(a.Path)
	case Save:
		return t.Save("")
	case SaveAs:
		return t.Save(a.Path)
	case EditMeta:
		return t.EditMeta()
	case First:
		return t.Navigate(document.First)
	case Last:
		return t.Navigate(document.Last)
	case Back:
		return t.Navigate(document.Back)
	case Forward:
		return t.Navigate(document.Forward)
	case GoTo:
		return t.GoTo(a.Page)
	case Crop:
		if len(a.Selection) != 4 {
			return fmt.Errorf("crop: %w: selection needs 4 values, got %d", ErrMissingPayload, len(a.Selection))
		}
		s := a.Selection
		return t.Crop(geometry.NewSelection(s[0], s[1], s[2], s[3]))
	case Delete:
		return t.Delete(pages(t, a))
	case Rotate:
		return t.Rotate(pages(t, a))
	case Margin:
		return t.Margin(pages(t, a))
	case Rescale:
		return t.Rescale(pages(t, a))
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
}

func pages(t Target, a Action) []int {
	if len(a.Pages) > 0 {
		return a.Pages
	}
	return []int{t.Current()}
}
