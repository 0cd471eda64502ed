package ui

import (
	"path"

	"InpaintBoard/internal/gallery"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// GalleryBar steps through the gallery images shown on the canvas. The
// previous and next buttons hide at the ends of the current category.
type GalleryBar struct {
	gallery *gallery.Gallery
	board   *CanvasWidget
	win     fyne.Window

	prev  *widget.Button
	next  *widget.Button
	view  *widget.Button
	label *widget.Label

	object fyne.CanvasObject
}

func NewGalleryBar(g *gallery.Gallery, board *CanvasWidget, win fyne.Window) *GalleryBar {
	b := &GalleryBar{gallery: g, board: board, win: win}
	b.prev = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() {
		g.SelectPrev()
		b.Update()
	})
	b.next = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() {
		g.SelectNext()
		b.Update()
	})
	b.view = widget.NewButtonWithIcon("", theme.VisibilityIcon(), b.showLightbox)
	b.label = widget.NewLabel("")
	b.object = container.NewHBox(b.prev, b.label, b.next, b.view)
	b.Update()
	return b
}

func (b *GalleryBar) Object() fyne.CanvasObject { return b.object }

// Update mirrors the gallery position into the buttons.
func (b *GalleryBar) Update() {
	img, ok := b.gallery.Display()
	if !ok {
		b.label.SetText("No image")
		b.prev.Hide()
		b.next.Hide()
		b.view.Disable()
		return
	}
	b.label.SetText(path.Base(img.URL))
	b.view.Enable()
	setVisible(b.prev, !b.gallery.IsOnFirst())
	setVisible(b.next, !b.gallery.IsOnLast())
}

func setVisible(o fyne.CanvasObject, visible bool) {
	if visible {
		o.Show()
	} else {
		o.Hide()
	}
}

// showLightbox opens the loaded base image at full window size.
func (b *GalleryBar) showLightbox() {
	bg := b.board.Session().Background()
	if bg == nil {
		return
	}
	img := canvas.NewImageFromImage(bg)
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(b.win.Canvas().Size().Subtract(fyne.NewSize(80, 120)))
	dialog.ShowCustom(b.label.Text, "Close", img, b.win)
}
