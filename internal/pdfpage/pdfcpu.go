/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pdfpage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"goeditpdf/internal/geometry"
	applog "goeditpdf/internal/log"
)

// ErrPasswordRequired is returned when a document is encrypted and no (or a
// wrong) password was supplied.
var ErrPasswordRequired = errors.New("pdfpage: password required")

// Options control how a source document is read.
type Options struct {
	// Password opens encrypted documents. It is tried as user and owner password.
	Password string
}

func newConfig(opts Options) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if opts.Password != "" {
		conf.UserPW = opts.Password
		conf.OwnerPW = opts.Password
	}
	return conf
}

// LoadFile reads every page of the PDF at path.
func LoadFile(path string, opts Options) ([]*Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data, opts)
}

// Load splits a PDF into single pages in document order.
func Load(data []byte, opts Options) ([]*Page, error) {
	l := applog.WithOperation(applog.WithComponent("pdfpage"), "load")
	conf := newConfig(opts)
	if opts.Password != "" {
		var plain bytes.Buffer
		if err := api.Decrypt(bytes.NewReader(data), &plain, conf); err != nil {
			return nil, classify(fmt.Errorf("decrypt: %w", err))
		}
		data = plain.Bytes()
		conf = newConfig(Options{})
	}
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return nil, classify(fmt.Errorf("read page tree: %w", err))
	}
	if n == 0 {
		return nil, errors.New("document has no pages")
	}
	bounds, err := api.Boxes(bytes.NewReader(data), nil, conf)
	if err != nil {
		return nil, classify(fmt.Errorf("read page boxes: %w", err))
	}
	if len(bounds) != n {
		return nil, fmt.Errorf("page boxes: got %d entries for %d pages", len(bounds), n)
	}

	pages := make([]*Page, 0, n)
	for i := 1; i <= n; i++ {
		var one bytes.Buffer
		if err := api.Trim(bytes.NewReader(data), &one, []string{strconv.Itoa(i)}, conf); err != nil {
			return nil, classify(fmt.Errorf("extract page %d: %w", i, err))
		}
		pb := bounds[i-1]
		rot := geometry.NormalizeRotation(pb.Rot)
		single := one.Bytes()
		if rot != 0 {
			// strip /Rotate; the rotation lives on the Page instead
			var upright bytes.Buffer
			if err := api.Rotate(bytes.NewReader(single), &upright, 360-rot, nil, conf); err != nil {
				return nil, fmt.Errorf("normalize rotation of page %d: %w", i, err)
			}
			single = upright.Bytes()
		}
		pages = append(pages, &Page{data: single, box: rectOf(pb.CropBox()), rotation: rot})
	}
	l.Debug("document split", slog.Int("pages", n))
	return pages, nil
}

// Write merges pages in order into a single PDF, applying each page's rotation.
func Write(w io.Writer, pages []*Page) error {
	if len(pages) == 0 {
		return errors.New("no pages to write")
	}
	conf := newConfig(Options{})
	rs := make([]io.ReadSeeker, 0, len(pages))
	for i, p := range pages {
		data := p.data
		if p.rotation != 0 {
			var rotated bytes.Buffer
			if err := api.Rotate(bytes.NewReader(data), &rotated, p.rotation, nil, conf); err != nil {
				return fmt.Errorf("rotate page %d: %w", i+1, err)
			}
			data = rotated.Bytes()
		}
		rs = append(rs, bytes.NewReader(data))
	}
	if len(rs) == 1 {
		_, err := io.Copy(w, rs[0])
		return err
	}
	if err := api.MergeRaw(rs, w, false, conf); err != nil {
		return fmt.Errorf("merge pages: %w", err)
	}
	return nil
}

// PageCount reports the number of pages of a PDF without splitting it.
func PageCount(data []byte, opts Options) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), newConfig(opts))
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

func crop(rs io.ReadSeeker, w io.Writer, box *model.Box) error {
	return api.Crop(rs, w, nil, box, newConfig(Options{}))
}

// parseBox builds an absolute pdfcpu box description "[llx lly urx ury]".
func parseBox(r geometry.Rect) (*model.Box, error) {
	desc := fmt.Sprintf("[%s %s %s %s]", ftoa(r.X1), ftoa(r.Y1), ftoa(r.X2), ftoa(r.Y2))
	box, err := model.ParseBox(desc, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("parse box %q: %w", desc, err)
	}
	return box, nil
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

func rectOf(r *types.Rectangle) geometry.Rect {
	if r == nil {
		return geometry.Rect{}
	}
	return geometry.R(r.LL.X, r.LL.Y, r.UR.X, r.UR.Y).Normalize()
}

// classify maps pdfcpu's password complaints onto ErrPasswordRequired.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "password") || strings.Contains(msg, "encrypted") {
		return fmt.Errorf("%w: %v", ErrPasswordRequired, err)
	}
	return err
}
