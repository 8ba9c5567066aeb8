/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"log/slog"

	"goeditpdf/internal/config"
	applog "goeditpdf/internal/log"
	"goeditpdf/internal/storage"
)

// FromConfig builds the renderer used by the application: a Bridge at the
// configured preview DPI, wrapped in the persistent preview cache when it is
// enabled. A cache that cannot be opened is logged and skipped. The returned
// close function is never nil.
func FromConfig(cfg config.AppConfig) (Renderer, func() error) {
	l := applog.WithComponent("render")
	bridge := NewBridge(cfg.Render.PreviewDPI)
	noop := func() error { return nil }
	if !cfg.Cache.Enabled {
		return bridge, noop
	}
	dir, err := cfg.Cache.CacheDir()
	if err != nil {
		l.Warn("preview cache disabled", slog.Any("err", err))
		return bridge, noop
	}
	cache, err := storage.OpenPreviewCache(dir, cfg.Cache.MaxBytes)
	if err != nil {
		l.Warn("preview cache disabled", slog.String("dir", dir), slog.Any("err", err))
		return bridge, noop
	}
	l.Debug("preview cache opened", slog.String("path", cache.Path()))
	return NewCached(bridge, cache, bridge.DPI()), cache.Close
}
