/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"
	"time"

	applog "goeditpdf/internal/log"
	"goeditpdf/internal/pdfpage"
	"goeditpdf/internal/storage"
)

// Cached serves Render from a persistent preview cache and falls back to the
// wrapped renderer on a miss. Cache failures are logged and otherwise ignored.
type Cached struct {
	next    Renderer
	cache   *storage.PreviewCache
	dpi     int
	timeout time.Duration
}

// NewCached wraps next. dpi is part of the cache key and must match the DPI
// next renders at.
func NewCached(next Renderer, cache *storage.PreviewCache, dpi float64) *Cached {
	return &Cached{next: next, cache: cache, dpi: int(dpi + 0.5), timeout: 30 * time.Second}
}

func (c *Cached) Canvas(p *pdfpage.Page) ([]byte, error)       { return c.next.Canvas(p) }
func (c *Cached) Rasterize(canvas []byte) (image.Image, error) { return c.next.Rasterize(canvas) }

func (c *Cached) Render(p *pdfpage.Page) (image.Image, error) {
	if c.cache == nil {
		return c.next.Render(p)
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var (
		rendered image.Image
		genErr   error
	)
	blob, err := c.cache.GetOrCreate(ctx, p.Key(), c.dpi, func(context.Context) ([]byte, int, int, error) {
		img, err := c.next.Render(p)
		if err != nil {
			genErr = err
			return nil, 0, 0, err
		}
		rendered = img
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, 0, 0, err
		}
		return buf.Bytes(), img.Bounds().Dx(), img.Bounds().Dy(), nil
	})
	if genErr != nil {
		return nil, genErr
	}
	if rendered != nil {
		// freshly rendered; a failed cache write does not matter to the caller
		if err != nil {
			c.warn("store preview", err)
		}
		return rendered, nil
	}
	if err != nil {
		c.warn("load preview", err)
		return c.next.Render(p)
	}
	img, err := png.Decode(bytes.NewReader(blob))
	if err != nil {
		c.warn("decode cached preview", err)
		return c.next.Render(p)
	}
	return ToNRGBA(img), nil
}

func (c *Cached) warn(what string, err error) {
	applog.WithComponent("render").Warn("preview cache: "+what+" failed", slog.Any("err", err))
}
