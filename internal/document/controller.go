/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document holds the open PDF and every editing operation on it.
//
// A Controller owns one Store plus the current page index, the save path and
// the saved flag. It is not safe for concurrent use: surfaces call it from a
// single goroutine and receive updates through a Listener.
package document

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log/slog"
	"path/filepath"
	"slices"

	"goeditpdf/internal/geometry"
	applog "goeditpdf/internal/log"
	"goeditpdf/internal/pdfpage"
	"goeditpdf/internal/render"
	"goeditpdf/internal/storage"
)

// AppName prefixes the window title.
const AppName = "GoEditPDF"

// Direction selects a navigation target relative to the current page.
type Direction int

const (
	First Direction = iota
	Last
	Back
	Forward
)

func (d Direction) String() string {
	switch d {
	case First:
		return "first"
	case Last:
		return "last"
	case Back:
		return "back"
	case Forward:
		return "forward"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// PasswordFunc is asked for the password of an encrypted file. attempt starts
// at 1. Returning ok=false gives up.
type PasswordFunc func(path string, attempt int) (password string, ok bool)

// maxPasswordAttempts bounds how often PasswordFunc is asked per load.
const maxPasswordAttempts = 3

type Option func(*Controller)

// WithRenderer sets the preview renderer (default: render.NewBridge at 72 dpi).
func WithRenderer(r render.Renderer) Option { return func(c *Controller) { c.renderer = r } }

func WithListener(l Listener) Option {
	return func(c *Controller) {
		if l != nil {
			c.listener = l
		}
	}
}

func WithPasswords(fn PasswordFunc) Option { return func(c *Controller) { c.password = fn } }

// WithBackup copies an existing destination aside before it is overwritten.
func WithBackup(on bool) Option { return func(c *Controller) { c.backup = on } }

type Controller struct {
	store    Store
	current  int
	path     string
	saved    bool
	renderer render.Renderer
	listener Listener
	password PasswordFunc
	backup   bool
	log      *slog.Logger
}

// NewController returns a controller holding an empty, saved document.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		saved:    true,
		renderer: render.NewBridge(render.DefaultDPI),
		listener: NopListener{},
		log:      applog.WithComponent("document"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) Len() int                  { return c.store.Len() }
func (c *Controller) Current() int              { return c.current }
func (c *Controller) Path() string              { return c.path }
func (c *Controller) Saved() bool               { return c.saved }
func (c *Controller) Page(i int) *pdfpage.Page  { return c.store.Page(i) }
func (c *Controller) Preview(i int) image.Image { return c.store.Preview(i) }

// Title is the window title: app name, then file name and a star when dirty.
// A document without a file name never carries the star.
func (c *Controller) Title() string {
	if c.path == "" {
		return AppName
	}
	t := AppName + " - " + filepath.Base(c.path)
	if !c.saved {
		t += "*"
	}
	return t
}

// Open replaces the document with the pages of path. On error nothing changes.
func (c *Controller) Open(path string) error {
	l := applog.WithOperation(c.log, "open").With(slog.String("path", path))
	pages, previews, err := c.load(path)
	if err != nil {
		l.Warn("open failed", slog.Any("err", err))
		return err
	}
	c.store.Reset()
	for i, p := range pages {
		c.store.Append(p, previews[i])
	}
	c.current = 0
	c.path = path
	c.saved = true
	l.Info("document opened", slog.Int("pages", len(pages)))

	c.listener.PagesChanged(c.store.Len())
	c.showCurrent()
	c.listener.TitleChanged(c.Title())
	return nil
}

// AddPages appends the pages of path. A document without a save path adopts path.
func (c *Controller) AddPages(path string) error {
	l := applog.WithOperation(c.log, "addPages").With(slog.String("path", path))
	pages, previews, err := c.load(path)
	if err != nil {
		l.Warn("add pages failed", slog.Any("err", err))
		return err
	}
	for i, p := range pages {
		c.store.Append(p, previews[i])
	}
	if c.path == "" {
		c.path = path
	}
	c.saved = false
	l.Info("pages added", slog.Int("added", len(pages)), slog.Int("total", c.store.Len()))

	c.listener.PagesChanged(c.store.Len())
	c.showCurrent()
	c.listener.TitleChanged(c.Title())
	return nil
}

// load reads and renders every page of path without touching the document.
func (c *Controller) load(path string) ([]*pdfpage.Page, []image.Image, error) {
	var opts pdfpage.Options
	pages, err := pdfpage.LoadFile(path, opts)
	for attempt := 1; errors.Is(err, pdfpage.ErrPasswordRequired) && c.password != nil && attempt <= maxPasswordAttempts; attempt++ {
		pw, ok := c.password(path, attempt)
		if !ok {
			break
		}
		opts.Password = pw
		pages, err = pdfpage.LoadFile(path, opts)
	}
	if err != nil {
		return nil, nil, &LoadError{Path: path, Err: err}
	}
	if len(pages) == 0 {
		return nil, nil, &LoadError{Path: path, Err: errors.New("document has no pages")}
	}
	previews := make([]image.Image, len(pages))
	for i, p := range pages {
		previews[i] = c.render(p)
	}
	return pages, previews, nil
}

// Save writes all pages to path, or to the current save path if path is
// empty. The file is replaced atomically; on error the previous content stays.
// A successful save with a new path adopts it.
func (c *Controller) Save(path string) error {
	target := c.path
	if path != "" {
		target = path
	}
	l := applog.WithOperation(c.log, "save").With(slog.String("path", target))
	if target == "" {
		return &WriteError{Err: errors.New("no file name given")}
	}
	if c.store.Len() == 0 {
		return &WriteError{Path: target, Err: ErrInvalidOperation}
	}
	pages := c.store.Pages()
	err := storage.WriteFileAtomic(target, storage.SaveOptions{Backup: c.backup}, func(w io.Writer) error {
		return pdfpage.Write(w, pages)
	})
	if err != nil {
		l.Error("save failed", slog.Any("err", err))
		return &WriteError{Path: target, Err: err}
	}
	c.path = target
	c.saved = true
	l.Info("document saved", slog.Int("pages", len(pages)))
	c.listener.TitleChanged(c.Title())
	return nil
}

// WriteRecovery writes the current pages to w without touching the saved flag.
func (c *Controller) WriteRecovery(w io.Writer) error {
	if c.store.Len() == 0 {
		return ErrInvalidOperation
	}
	return pdfpage.Write(w, c.store.Pages())
}

// Navigate moves the current page. Moving past either end does nothing.
func (c *Controller) Navigate(d Direction) error {
	n := c.store.Len()
	if n == 0 {
		return ErrInvalidOperation
	}
	next := c.current
	switch d {
	case First:
		next = 0
	case Last:
		next = n - 1
	case Back:
		next--
	case Forward:
		next++
	default:
		return fmt.Errorf("%w: unknown direction %d", ErrInvalidOperation, int(d))
	}
	return c.GoTo(next)
}

// GoTo makes index current, clamped to the page range.
func (c *Controller) GoTo(index int) error {
	n := c.store.Len()
	if n == 0 {
		return ErrInvalidOperation
	}
	index = clamp(index, n)
	if index == c.current {
		return nil
	}
	c.current = index
	c.showCurrent()
	return nil
}

// Crop cuts the current page down to sel, given relative to the displayed
// preview. A degenerate selection does nothing.
//
// The selection is mapped through geometry.ToPageSpace before
// geometry.AbsoluteCrop: preview y grows downwards and PDF y upwards, and a
// rotated page is displayed turned. Applying AbsoluteCrop to the raw
// selection would crop the vertically mirrored area (on a 600x800 page,
// 0.1,0.2-0.5,0.4 would give [60 160 300 320] instead of [60 480 300 640]).
func (c *Controller) Crop(sel geometry.Selection) error {
	if c.store.Len() == 0 {
		return ErrInvalidOperation
	}
	l := applog.WithOperation(c.log, "crop")
	if sel.IsDegenerate() {
		l.Debug("ignoring degenerate selection", slog.Any("selection", sel))
		return nil
	}
	page := c.store.Page(c.current)
	rel := geometry.ToPageSpace(sel.Normalize(), page.Rotation())
	box := geometry.AbsoluteCrop(rel, page.Box())
	cropped, err := page.Crop(box)
	if err != nil {
		l.Error("crop failed", slog.Int("page", c.current), slog.Any("err", err))
		return fmt.Errorf("crop page %d: %w", c.current+1, err)
	}
	c.store.Replace(c.current, cropped, c.render(cropped))
	l.Info("page cropped", slog.Int("page", c.current), slog.String("box", box.String()))
	c.listener.PreviewUpdated(c.current, c.store.Preview(c.current))
	c.markDirty()
	return nil
}

// Rotate turns each listed page a quarter turn clockwise. Out of range
// indices are skipped.
func (c *Controller) Rotate(indices []int) error {
	l := applog.WithOperation(c.log, "rotate")
	targets := descending(indices, c.store.Len())
	if len(targets) == 0 {
		return nil
	}
	for _, i := range targets {
		rotated, err := c.store.Page(i).Rotate(90)
		if err != nil {
			return fmt.Errorf("rotate page %d: %w", i+1, err)
		}
		c.store.Replace(i, rotated, c.render(rotated))
		c.listener.PreviewUpdated(i, c.store.Preview(i))
	}
	l.Info("pages rotated", slog.Any("pages", targets))
	c.markDirty()
	return nil
}

// Delete removes the listed pages. When the current page is removed the
// previous one becomes current. Out of range indices are skipped.
func (c *Controller) Delete(indices []int) error {
	l := applog.WithOperation(c.log, "delete")
	targets := descending(indices, c.store.Len())
	if len(targets) == 0 {
		return nil
	}
	for _, i := range targets {
		c.store.RemoveAt(i)
		if i == c.current {
			c.current--
		}
		c.current = clamp(c.current, c.store.Len())
	}
	l.Info("pages deleted", slog.Any("pages", targets), slog.Int("remaining", c.store.Len()))
	c.listener.PagesChanged(c.store.Len())
	c.showCurrent()
	c.markDirty()
	return nil
}

// Margin is reserved for adding page margins and currently does nothing.
func (c *Controller) Margin(indices []int) error {
	applog.WithOperation(c.log, "margin").Debug("margin is not implemented", slog.Any("pages", indices))
	return nil
}

// Rescale is reserved for scaling page content and currently does nothing.
func (c *Controller) Rescale(indices []int) error {
	applog.WithOperation(c.log, "rescale").Debug("rescale is not implemented", slog.Any("pages", indices))
	return nil
}

// EditMeta is reserved for editing document metadata and currently does nothing.
func (c *Controller) EditMeta() error {
	applog.WithOperation(c.log, "editMeta").Debug("metadata editing is not implemented")
	return nil
}

func (c *Controller) markDirty() {
	c.saved = false
	c.listener.TitleChanged(c.Title())
}

func (c *Controller) showCurrent() {
	n := c.store.Len()
	c.listener.CurrentPageChanged(c.current, n)
	if n > 0 {
		c.listener.PreviewUpdated(c.current, c.store.Preview(c.current))
	}
}

// render returns the preview of p. A page the rasterizer cannot handle gets a
// blank preview of the right size so the document stays editable.
func (c *Controller) render(p *pdfpage.Page) image.Image {
	img, err := c.renderer.Render(p)
	if err == nil {
		return img
	}
	c.log.Warn("preview render failed, using blank preview", slog.String("page", p.String()), slog.Any("err", err))
	w, h := p.DisplaySize()
	blank := image.NewNRGBA(image.Rect(0, 0, max(1, int(w)), max(1, int(h))))
	draw.Draw(blank, blank.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return blank
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// descending returns the distinct in-range indices, highest first.
func descending(indices []int, n int) []int {
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < n {
			out = append(out, i)
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)
	slices.Reverse(out)
	return out
}
