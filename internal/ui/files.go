package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"InpaintBoard/internal/export"
	"InpaintBoard/internal/gallery"
	"InpaintBoard/internal/logging"
	"InpaintBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// saveAs asks for a file named like name and writes it with write.
func (a *App) saveAs(name string, write func(io.Writer) error) {
	ext := filepath.Ext(name)
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		path := writer.URI().Path()
		if err := write(writer); err != nil {
			logging.Logger().Error("save failed", "path", path, "err", err)
			dialog.ShowError(err, a.win)
			return
		}
		if !strings.EqualFold(filepath.Ext(path), ext) {
			logging.Logger().Warn("saved without expected extension", "path", path, "ext", ext)
		}
		a.SetMessage("Saved " + filepath.Base(path))
	}, a.win)
	fd.SetFileName(name)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	fd.Show()
}

// open asks for a file with one of exts and passes its URI to fn.
func (a *App) open(exts []string, fn func(fyne.URIReadCloser) error) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		if err := fn(reader); err != nil {
			logging.Logger().Error("open failed", "uri", reader.URI().String(), "err", err)
			dialog.ShowError(err, a.win)
		}
	}, a.win)
	fd.SetFilter(storage.NewExtensionFileFilter(exts))
	fd.Show()
}

func (a *App) saveDocument() {
	a.saveAs("canvas.json", func(w io.Writer) error {
		return export.WriteDocument(w, a.Session)
	})
}

func (a *App) openDocument() {
	a.open([]string{".json"}, func(r fyne.URIReadCloser) error {
		doc, err := export.ReadDocument(r)
		if err != nil {
			return err
		}
		a.loadDocument(doc)
		return nil
	})
}

// loadDocument replaces the strokes with doc and fetches its scene objects.
func (a *App) loadDocument(doc export.Document) {
	doc.Apply(a.Session)
	for _, obj := range doc.Objects {
		a.loader.LoadObject(a.ctx, obj)
	}
	a.Board.changed()
}

func (a *App) exportMask() {
	a.saveAs("mask.png", func(w io.Writer) error {
		return export.WriteMaskPNG(w, a.Session)
	})
}

func (a *App) exportPDF() {
	a.saveAs("canvas.pdf", func(w io.Writer) error {
		composite, err := a.Board.Compositor().ImageRegion(a.Session.BoundingBox().Rect())
		if err != nil {
			return fmt.Errorf("flatten canvas: %w", err)
		}
		return export.PDF(w, a.Session, composite)
	})
}

// addImage puts a local image into the user gallery, which displays it.
func (a *App) addImage() {
	a.open(imageExtensions, func(r fyne.URIReadCloser) error {
		a.Gallery.Add(gallery.Image{URL: r.URI().Path(), Category: gallery.CategoryUser})
		return nil
	})
}

// placeImage adds a local image to the scene at the bounding box corner.
func (a *App) placeImage() {
	a.open(imageExtensions, func(r fyne.URIReadCloser) error {
		box := a.Session.BoundingBox().Rect()
		a.loader.LoadObject(a.ctx, state.SceneObject{URL: r.URI().Path(), X: box.X, Y: box.Y})
		a.Board.changed()
		return nil
	})
}
