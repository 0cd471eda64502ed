package ui

import (
	"context"

	core "InpaintBoard/internal/canvas"
	"InpaintBoard/internal/config"
	"InpaintBoard/internal/gallery"
	"InpaintBoard/internal/logging"
	"InpaintBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
)

// App is the inpainting window: the canvas, its toolbar and the gallery
// bar around one session.
type App struct {
	ctx  context.Context
	fyne fyne.App
	win  fyne.Window

	Session *state.Session
	Board   *CanvasWidget
	Toolbar *Toolbar
	Gallery *gallery.Gallery

	galleryBar *GalleryBar
	loader     *core.Loader
}

// NewApp creates the application window from cfg. ctx bounds image loads.
func NewApp(ctx context.Context, cfg config.Config) *App {
	return newApp(ctx, app.New(), cfg)
}

func newApp(ctx context.Context, fa fyne.App, cfg config.Config) *App {
	a := &App{ctx: ctx, fyne: fa, Gallery: gallery.New()}
	a.win = fa.NewWindow("Inpaint Board")
	a.win.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))

	a.Session = state.NewSession(cfg.Canvas.SessionConfig(state.Dimensions{}))
	a.Board = NewCanvasWidget(a.Session, cfg.Canvas.WheelMultiplier)
	a.loader = core.NewLoader(a.Session, a.dispatch, a)

	a.Toolbar = NewToolbar(a.Board, Actions{
		SaveDocument: a.saveDocument,
		OpenDocument: a.openDocument,
		ExportMask:   a.exportMask,
		ExportPDF:    a.exportPDF,
		AddImage:     a.addImage,
		PlaceImage:   a.placeImage,
	})
	a.galleryBar = NewGalleryBar(a.Gallery, a.Board, a.win)
	a.Board.OnChange = a.Toolbar.Sync

	a.Gallery.OnChange(func(img gallery.Image, ok bool) {
		if ok {
			a.loader.Load(a.ctx, img.Ref())
		} else {
			a.Session.ClearImage()
		}
		a.galleryBar.Update()
		a.Board.changed()
	})

	keys := hotkeys{session: a.Session, changed: a.Board.changed}
	keys.bind(a.win.Canvas())

	content := container.NewBorder(a.Toolbar.Object(), a.galleryBar.Object(), nil, nil, a.Board)
	a.win.SetContent(content)
	return a
}

// dispatch runs fn on the Fyne event loop and redraws afterwards.
func (a *App) dispatch(fn func()) {
	fyne.Do(func() {
		fn()
		a.Board.changed()
	})
}

// Notify shows a desktop notification and repeats it in the status line.
func (a *App) Notify(title, message string) {
	a.fyne.SendNotification(fyne.NewNotification(title, message))
	a.Toolbar.SetMessage(title + ": " + message)
}

// SetMessage shows text in the status line. It must run on the event loop.
func (a *App) SetMessage(text string) {
	a.Toolbar.SetMessage(text)
}

// Post runs fn on the event loop. It is safe to call from any goroutine.
func (a *App) Post(fn func()) { a.dispatch(fn) }

// ApplyRemote merges a stroke op received from a peer. It must run on the
// event loop.
func (a *App) ApplyRemote(op state.Op) {
	a.Session.ApplyRemote(op)
	a.Board.changed()
}

// OpenImages adds local files or URLs to the user gallery. The last one
// given ends up displayed.
func (a *App) OpenImages(refs []string) {
	for _, ref := range refs {
		logging.Logger().Info("opening image", "ref", ref)
		a.Gallery.Add(gallery.Image{URL: ref, Category: gallery.CategoryUser})
	}
}

// Run shows the window and blocks until it is closed.
func (a *App) Run() {
	a.win.ShowAndRun()
}

var _ core.Notifier = (*App)(nil)
