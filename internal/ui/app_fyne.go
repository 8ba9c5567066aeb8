//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"goeditpdf/internal/action"
	"goeditpdf/internal/config"
	"goeditpdf/internal/crash"
	"goeditpdf/internal/document"
	"goeditpdf/internal/geometry"
	applog "goeditpdf/internal/log"
	"goeditpdf/internal/pdfpage"
	"goeditpdf/internal/render"
	"goeditpdf/internal/version"
)

const recentPrefsKey = "recent.files"

// shell is the state of the desktop window. It receives controller events as
// a document.Listener; every callback runs on the Fyne event goroutine.
type shell struct {
	app  fyne.App
	w    fyne.Window
	cfg  config.AppConfig
	ctrl *document.Controller
	l    *slog.Logger

	view       *PageView
	list       *widget.List
	thumbs     []image.Image
	selected   map[int]bool
	pageEntry  *widget.Entry
	totalLabel *widget.Label
	cropBtn    *widget.Button
	status     *widget.Label

	mainMenu   *fyne.MainMenu
	recentItem *fyne.MenuItem

	// typed into the password dialog, offered to the controller on the next load
	pendingPassword string
}

// Run starts the desktop UI and blocks until the window is closed. A non-empty
// path is opened right away.
func Run(cfg config.AppConfig, path string) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	renderer, closeRenderer := render.FromConfig(cfg)
	defer func() {
		if err := closeRenderer(); err != nil {
			l.Warn("close preview cache", slog.Any("err", err))
		}
	}()

	fyneApp := app.NewWithID("io.goeditpdf")
	switch cfg.General.Theme {
	case "light":
		fyneApp.Settings().SetTheme(theme.LightTheme())
	case "dark":
		fyneApp.Settings().SetTheme(theme.DarkTheme())
	}
	w := fyneApp.NewWindow(document.AppName)
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1100), 640)
	winH := max(prefs.IntWithFallback("window.height", 800), 480)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	s := &shell{app: fyneApp, w: w, cfg: cfg, l: l, selected: map[int]bool{}}
	s.ctrl = document.NewController(
		document.WithRenderer(renderer),
		document.WithListener(s),
		document.WithPasswords(s.password),
		document.WithBackup(cfg.General.BackupOnSave),
	)
	defer crash.Recover(s.ctrl)

	w.SetContent(s.buildContent())
	s.buildMenu()
	s.bindKeys()

	w.SetCloseIntercept(func() {
		quit := func() {
			sz := w.Canvas().Size()
			prefs.SetInt("window.width", int(sz.Width))
			prefs.SetInt("window.height", int(sz.Height))
			w.Close()
		}
		if s.ctrl.Saved() {
			quit()
			return
		}
		dialog.ShowConfirm("Unsaved changes", "Discard unsaved changes and quit?", func(ok bool) {
			if ok {
				quit()
			}
		}, w)
	})

	if path != "" {
		s.openPath(action.Open, path)
	}
	w.ShowAndRun()
	return nil
}

func (s *shell) buildContent() fyne.CanvasObject {
	thumbSize := float32(s.cfg.Render.ThumbnailSize) / 2
	s.list = widget.NewList(
		func() int { return len(s.thumbs) },
		func() fyne.CanvasObject { return newPageItem(thumbSize, s.tapPage, s.pageMenu) },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			i := int(id)
			if i < 0 || i >= len(s.thumbs) {
				return
			}
			o.(*pageItem).set(i, s.thumbs[i], fmt.Sprintf("Page %d", i+1), s.selected[i])
		},
	)
	left := container.NewBorder(widget.NewLabel("Pages"), nil, nil, nil, s.list)

	s.view = NewPageView(s.cfg.Render.PreviewDPI)
	s.cropBtn = widget.NewButton("CROP", s.crop)
	s.cropBtn.Importance = widget.HighImportance
	s.cropBtn.Hide()
	s.view.OnSelectionChanged = func(_ geometry.Selection, ok bool) {
		if ok && s.ctrl.Len() > 0 {
			s.cropBtn.Show()
		} else {
			s.cropBtn.Hide()
		}
	}

	s.pageEntry = widget.NewEntry()
	s.pageEntry.OnSubmitted = func(text string) {
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			s.setStatus("Not a page number: " + text)
			return
		}
		s.do(action.Action{Kind: action.GoTo, Page: n - 1})
	}
	s.totalLabel = widget.NewLabel("/ 0")

	nav := func(k action.Kind) func() { return func() { s.do(action.Action{Kind: k}) } }
	zoom := func(dir int) func() {
		return func() {
			if dir == 0 {
				s.view.SetZoom(1)
			} else {
				s.view.SetZoom(nextZoom(s.view.Zoom(), dir))
			}
			s.setStatus(fmt.Sprintf("Zoom %.0f%%", s.view.Zoom()*100))
		}
	}
	bar := container.NewHBox(
		widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), nav(action.First)),
		widget.NewButtonWithIcon("", theme.NavigateBackIcon(), nav(action.Back)),
		container.NewGridWrap(fyne.NewSize(64, s.pageEntry.MinSize().Height), s.pageEntry),
		s.totalLabel,
		widget.NewButtonWithIcon("", theme.NavigateNextIcon(), nav(action.Forward)),
		widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), nav(action.Last)),
		widget.NewSeparator(),
		widget.NewButtonWithIcon("", theme.ZoomOutIcon(), zoom(-1)),
		widget.NewButtonWithIcon("", theme.ZoomInIcon(), zoom(1)),
		widget.NewButton("1:1", zoom(0)),
		widget.NewSeparator(),
		s.cropBtn,
	)

	s.status = widget.NewLabel("Ready")
	right := container.NewBorder(bar, s.status, nil, nil, container.NewScroll(s.view))
	split := container.NewHSplit(left, right)
	split.SetOffset(0.22)
	return split
}

func (s *shell) buildMenu() {
	openItem := fyne.NewMenuItem("Open…", func() { s.chooseFile(action.Open) })
	addItem := fyne.NewMenuItem("Add Pages…", func() { s.chooseFile(action.AddPages) })
	saveItem := fyne.NewMenuItem("Save", s.save)
	saveAsItem := fyne.NewMenuItem("Save As…", s.saveAs)
	metaItem := fyne.NewMenuItem("Edit Meta…", func() {
		s.do(action.Action{Kind: action.EditMeta})
		s.setStatus("Editing metadata is not available yet.")
	})
	s.recentItem = fyne.NewMenuItem("Open Recent", nil)
	s.refreshRecent()

	s.bind(openItem, fyne.KeyO, fyne.KeyModifierControl)
	s.bind(addItem, fyne.KeyO, fyne.KeyModifierControl|fyne.KeyModifierShift)
	s.bind(saveItem, fyne.KeyS, fyne.KeyModifierControl)
	s.bind(saveAsItem, fyne.KeyS, fyne.KeyModifierControl|fyne.KeyModifierShift)
	s.bind(metaItem, fyne.KeyM, fyne.KeyModifierControl)

	fileMenu := fyne.NewMenu("File", openItem, s.recentItem, addItem, fyne.NewMenuItemSeparator(), saveItem, saveAsItem, fyne.NewMenuItemSeparator(), metaItem)

	pageMenu := fyne.NewMenu("Page",
		fyne.NewMenuItem("Rotate", func() { s.onSelection(action.Rotate) }),
		fyne.NewMenuItem("Delete", func() { s.onSelection(action.Delete) }),
		fyne.NewMenuItem("Add Margin", func() { s.onSelection(action.Margin) }),
		fyne.NewMenuItem("Rescale", func() { s.onSelection(action.Rescale) }),
	)

	aboutItem := fyne.NewMenuItem("About "+document.AppName, func() {
		info := fmt.Sprintf("%s\nVersion: %s\nOS: %s\nArch: %s\nGo: %s",
			document.AppName, version.String(), runtime.GOOS, runtime.GOARCH, runtime.Version())
		dialog.ShowInformation("About", info, s.w)
	})
	s.mainMenu = fyne.NewMainMenu(fileMenu, pageMenu, fyne.NewMenu("Help", aboutItem))
	s.w.SetMainMenu(s.mainMenu)
}

// bind attaches a shortcut to a menu item and registers it on the canvas.
func (s *shell) bind(item *fyne.MenuItem, key fyne.KeyName, mod fyne.KeyModifier) {
	sc := &desktop.CustomShortcut{KeyName: key, Modifier: mod}
	item.Shortcut = sc
	s.w.Canvas().AddShortcut(sc, func(fyne.Shortcut) { item.Action() })
}

func (s *shell) bindKeys() {
	s.w.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) {
		switch e.Name {
		case fyne.KeyLeft, fyne.KeyPageUp:
			s.do(action.Action{Kind: action.Back})
		case fyne.KeyRight, fyne.KeyPageDown:
			s.do(action.Action{Kind: action.Forward})
		case fyne.KeyHome:
			s.do(action.Action{Kind: action.First})
		case fyne.KeyEnd:
			s.do(action.Action{Kind: action.Last})
		case fyne.KeyDelete:
			s.onSelection(action.Delete)
		case fyne.KeyEscape:
			s.view.ClearSelection()
		}
	})
}

// do dispatches a and reports failures. Navigation on an empty document is
// not worth a dialog.
func (s *shell) do(a action.Action) bool {
	err := action.Dispatch(s.ctrl, a)
	switch {
	case err == nil:
		return true
	case errors.Is(err, document.ErrInvalidOperation):
		s.l.Debug("action ignored", slog.String("action", string(a.Kind)), slog.Any("err", err))
	default:
		s.l.Error("action failed", slog.String("action", string(a.Kind)), slog.Any("err", err))
		dialog.ShowError(err, s.w)
	}
	return false
}

func (s *shell) setStatus(text string) { s.status.SetText(text) }

func (s *shell) chooseFile(kind action.Kind) {
	run := func() {
		fd := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, s.w)
				return
			}
			if r == nil {
				return
			}
			path := r.URI().Path()
			_ = r.Close()
			s.openPath(kind, path)
		}, s.w)
		fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".pdf", ".PDF"}))
		fd.Show()
	}
	s.confirmDiscard(kind, run)
}

// confirmDiscard runs next right away unless it would drop unsaved changes,
// in which case the user has to agree first.
func (s *shell) confirmDiscard(kind action.Kind, next func()) {
	if !discardsChanges(kind, s.ctrl.Saved()) {
		next()
		return
	}
	dialog.ShowConfirm("Unsaved changes", "Discard unsaved changes and open another file?", func(ok bool) {
		if ok {
			next()
		}
	}, s.w)
}

// openPath opens or appends path. An encrypted file asks for a password and
// tries again until it opens or the user cancels.
func (s *shell) openPath(kind action.Kind, path string) {
	err := action.Dispatch(s.ctrl, action.Action{Kind: kind, Path: path})
	typed := s.pendingPassword
	s.pendingPassword = ""
	if errors.Is(err, pdfpage.ErrPasswordRequired) {
		s.askPassword(path, func(pw string) {
			s.pendingPassword = pw
			s.openPath(kind, path)
		})
		return
	}
	if err != nil {
		s.l.Error("open failed", slog.String("path", path), slog.Any("err", err))
		dialog.ShowError(err, s.w)
		return
	}
	if typed != "" && s.cfg.General.RememberPasswords {
		if err := config.RememberPassword(path, typed); err != nil {
			s.l.Warn("store password failed", slog.Any("err", err))
		}
	}
	s.addRecent(path)
	if kind == action.Open {
		s.setStatus(fmt.Sprintf("Opened %s (%d pages)", filepath.Base(path), s.ctrl.Len()))
	} else {
		s.setStatus(fmt.Sprintf("Added pages from %s", filepath.Base(path)))
	}
}

// password feeds the controller first the typed password, then a stored one.
func (s *shell) password(path string, attempt int) (string, bool) {
	var candidates []string
	if s.pendingPassword != "" {
		candidates = append(candidates, s.pendingPassword)
	}
	if s.cfg.General.RememberPasswords {
		if pw, err := config.PasswordFor(path); err == nil {
			candidates = append(candidates, pw)
		}
	}
	if attempt-1 < len(candidates) {
		return candidates[attempt-1], true
	}
	return "", false
}

func (s *shell) askPassword(path string, then func(string)) {
	entry := widget.NewPasswordEntry()
	items := []*widget.FormItem{widget.NewFormItem("Password", entry)}
	dialog.ShowForm(filepath.Base(path)+" is encrypted", "Open", "Cancel", items, func(ok bool) {
		if ok && entry.Text != "" {
			then(entry.Text)
		}
	}, s.w)
}

func (s *shell) save() {
	if s.ctrl.Path() == "" {
		s.saveAs()
		return
	}
	if s.do(action.Action{Kind: action.Save}) {
		s.setStatus("Saved " + filepath.Base(s.ctrl.Path()))
	}
}

func (s *shell) saveAs() {
	if s.ctrl.Len() == 0 {
		dialog.ShowInformation("Save", "There are no pages to save.", s.w)
		return
	}
	fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, s.w)
			return
		}
		if wc == nil {
			return
		}
		path := wc.URI().Path()
		_ = wc.Close()
		if s.do(action.Action{Kind: action.SaveAs, Path: path}) {
			s.addRecent(path)
			s.setStatus("Saved " + filepath.Base(path))
		}
	}, s.w)
	name := "document.pdf"
	if p := s.ctrl.Path(); p != "" {
		name = filepath.Base(p)
		if dir, err := fstorage.ListerForURI(fstorage.NewFileURI(filepath.Dir(p))); err == nil {
			fd.SetLocation(dir)
		}
	}
	fd.SetFileName(name)
	fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".pdf"}))
	fd.Show()
}

func (s *shell) crop() {
	sel, ok := s.view.Selection()
	if !ok {
		return
	}
	r := sel.Normalize()
	if s.do(action.Action{Kind: action.Crop, Selection: []float64{r.X1, r.Y1, r.X2, r.Y2}}) {
		s.setStatus(fmt.Sprintf("Cropped page %d", s.ctrl.Current()+1))
	}
	s.view.ClearSelection()
}

// selectedPages returns the list selection in ascending order, or the
// current page when nothing is selected.
func (s *shell) selectedPages() []int {
	out := make([]int, 0, len(s.selected))
	for i, on := range s.selected {
		if on && i < s.ctrl.Len() {
			out = append(out, i)
		}
	}
	if len(out) == 0 && s.ctrl.Len() > 0 {
		out = append(out, s.ctrl.Current())
	}
	sort.Ints(out)
	return out
}

func (s *shell) onSelection(kind action.Kind) {
	pages := s.selectedPages()
	if len(pages) == 0 {
		return
	}
	if s.do(action.Action{Kind: kind, Pages: pages}) {
		switch kind {
		case action.Margin, action.Rescale:
			s.setStatus(string(kind) + " is not available yet.")
		default:
			s.setStatus(fmt.Sprintf("%s: %d page(s)", kind, len(pages)))
		}
	}
}

func (s *shell) tapPage(index int, mod fyne.KeyModifier) {
	if mod&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0 {
		s.selected[index] = !s.selected[index]
		s.list.Refresh()
		return
	}
	s.selected = map[int]bool{index: true}
	s.list.Refresh()
	s.do(action.Action{Kind: action.GoTo, Page: index})
}

func (s *shell) pageMenu(index int, at fyne.Position) {
	if !s.selected[index] {
		s.selected = map[int]bool{index: true}
		s.list.Refresh()
	}
	menu := fyne.NewMenu("",
		fyne.NewMenuItem("Delete", func() { s.onSelection(action.Delete) }),
		fyne.NewMenuItem("Add Margin", func() { s.onSelection(action.Margin) }),
		fyne.NewMenuItem("Rescale", func() { s.onSelection(action.Rescale) }),
		fyne.NewMenuItem("Rotate", func() { s.onSelection(action.Rotate) }),
	)
	widget.ShowPopUpMenuAtPosition(menu, s.w.Canvas(), at)
}

// document.Listener

func (s *shell) PreviewUpdated(index int, img image.Image) {
	if index >= 0 && index < len(s.thumbs) {
		s.thumbs[index] = render.Thumbnail(img, s.cfg.Render.ThumbnailSize)
		s.list.RefreshItem(widget.ListItemID(index))
	}
	if index == s.ctrl.Current() {
		s.view.SetImage(img)
		s.cropBtn.Hide()
	}
}

func (s *shell) CurrentPageChanged(index, total int) {
	if total == 0 {
		s.pageEntry.SetText("")
		s.view.SetImage(nil)
	} else {
		s.pageEntry.SetText(strconv.Itoa(index + 1))
		s.selected = map[int]bool{index: true}
		s.list.Refresh()
		s.list.ScrollTo(widget.ListItemID(index))
	}
	s.totalLabel.SetText("/ " + strconv.Itoa(total))
	s.l.Debug("current page", slog.String("page", pageLabel(index, total)))
}

func (s *shell) TitleChanged(title string) { s.w.SetTitle(title) }

func (s *shell) PagesChanged(total int) {
	s.thumbs = make([]image.Image, total)
	for i := range s.thumbs {
		if img := s.ctrl.Preview(i); img != nil {
			s.thumbs[i] = render.Thumbnail(img, s.cfg.Render.ThumbnailSize)
		}
	}
	s.selected = map[int]bool{}
	s.list.Refresh()
}

// recent files

func (s *shell) addRecent(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	saveRecent(s.app.Preferences(), mergeRecent(loadRecent(s.app.Preferences()), abs, recentMax))
	s.refreshRecent()
}

func (s *shell) refreshRecent() {
	files := loadRecent(s.app.Preferences())
	items := make([]*fyne.MenuItem, 0, len(files))
	for _, f := range files {
		items = append(items, fyne.NewMenuItem(f, func() {
			s.confirmDiscard(action.Open, func() { s.openPath(action.Open, f) })
		}))
	}
	if len(items) == 0 {
		none := fyne.NewMenuItem("(none)", nil)
		none.Disabled = true
		items = append(items, none)
	}
	s.recentItem.ChildMenu = fyne.NewMenu("", items...)
	if s.mainMenu != nil {
		s.mainMenu.Refresh()
	}
}

func loadRecent(p fyne.Preferences) []string {
	raw := p.StringWithFallback(recentPrefsKey, "")
	var items []string
	if strings.TrimSpace(raw) != "" {
		_ = json.Unmarshal([]byte(raw), &items)
	}
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, err := os.Stat(s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func saveRecent(p fyne.Preferences, items []string) {
	b, _ := json.Marshal(items)
	p.SetString(recentPrefsKey, string(b))
}
