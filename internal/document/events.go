/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import "image"

// Listener is told about state changes so a surface can redraw. Calls happen
// synchronously on the goroutine that invoked the controller.
type Listener interface {
	// PreviewUpdated fires when the preview at index changed or should be shown.
	PreviewUpdated(index int, img image.Image)
	CurrentPageChanged(index, total int)
	TitleChanged(title string)
	// PagesChanged fires after pages were inserted or removed.
	PagesChanged(total int)
}

// NopListener ignores all events.
type NopListener struct{}

func (NopListener) PreviewUpdated(int, image.Image) {}
func (NopListener) CurrentPageChanged(int, int)     {}
func (NopListener) TitleChanged(string)             {}
func (NopListener) PagesChanged(int)                {}
