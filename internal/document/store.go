/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"image"

	"goeditpdf/internal/pdfpage"
)

// Store holds the pages of a document together with their previews. The two
// sequences always have the same length and index i in both refers to the
// same page.
type Store struct {
	pages    []*pdfpage.Page
	previews []image.Image
}

// Len returns the number of pages.
func (s *Store) Len() int { return len(s.pages) }

func (s *Store) Append(p *pdfpage.Page, preview image.Image) {
	s.pages = append(s.pages, p)
	s.previews = append(s.previews, preview)
}

// Replace swaps the page and preview at i. It reports false if i is out of range.
func (s *Store) Replace(i int, p *pdfpage.Page, preview image.Image) bool {
	if i < 0 || i >= len(s.pages) {
		return false
	}
	s.pages[i] = p
	s.previews[i] = preview
	return true
}

// RemoveAt deletes index i and shifts the following entries down.
func (s *Store) RemoveAt(i int) bool {
	if i < 0 || i >= len(s.pages) {
		return false
	}
	s.pages = append(s.pages[:i], s.pages[i+1:]...)
	s.previews = append(s.previews[:i], s.previews[i+1:]...)
	return true
}

func (s *Store) Get(i int) (*pdfpage.Page, image.Image, bool) {
	if i < 0 || i >= len(s.pages) {
		return nil, nil, false
	}
	return s.pages[i], s.previews[i], true
}

func (s *Store) Page(i int) *pdfpage.Page {
	p, _, _ := s.Get(i)
	return p
}

func (s *Store) Preview(i int) image.Image {
	_, img, _ := s.Get(i)
	return img
}

// Pages returns a copy of the page sequence in order.
func (s *Store) Pages() []*pdfpage.Page {
	out := make([]*pdfpage.Page, len(s.pages))
	copy(out, s.pages)
	return out
}

// Reset empties the store.
func (s *Store) Reset() {
	s.pages = nil
	s.previews = nil
}
