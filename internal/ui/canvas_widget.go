package ui

import (
	"image"

	core "InpaintBoard/internal/canvas"
	"InpaintBoard/internal/logging"
	"InpaintBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// CanvasWidget is the host surface of an inpainting canvas. It forwards
// desktop pointer events to the controller and paints the compositor
// output through a raster.
type CanvasWidget struct {
	widget.BaseWidget

	session    *state.Session
	controller *core.Controller
	compositor *core.Compositor
	wheelScale float64

	pointer  state.Vec2
	hovering bool
	ready    bool
	last     image.Image

	// OnChange runs after every event that may have changed the session.
	OnChange func()
}

var _ fyne.Widget = (*CanvasWidget)(nil)
var _ fyne.Draggable = (*CanvasWidget)(nil)
var _ fyne.Scrollable = (*CanvasWidget)(nil)
var _ desktop.Mouseable = (*CanvasWidget)(nil)
var _ desktop.Hoverable = (*CanvasWidget)(nil)
var _ desktop.Cursorable = (*CanvasWidget)(nil)
var _ core.Surface = (*CanvasWidget)(nil)

// NewCanvasWidget returns a widget drawing s. wheelScale converts Fyne
// scroll distances to wheel units.
func NewCanvasWidget(s *state.Session, wheelScale float64) *CanvasWidget {
	w := &CanvasWidget{
		session:    s,
		compositor: core.NewCompositor(s),
		wheelScale: wheelScale,
	}
	w.controller = core.NewController(core.Handle{Session: s, Surface: w})
	w.ExtendBaseWidget(w)
	return w
}

func (w *CanvasWidget) Session() *state.Session             { return w.session }
func (w *CanvasWidget) Controller() *core.Controller        { return w.controller }
func (w *CanvasWidget) Compositor() *core.Compositor        { return w.compositor }
func (w *CanvasWidget) PointerPosition() (state.Vec2, bool) { return w.pointer, w.hovering }

// MaskReady reports whether the widget has been rendered at least once.
func (w *CanvasWidget) MaskReady() bool { return w.ready }

func (w *CanvasWidget) setPointer(p fyne.Position) {
	w.pointer = state.Vec2{X: float64(p.X), Y: float64(p.Y)}
	w.hovering = true
}

func (w *CanvasWidget) changed() {
	w.Refresh()
	if w.OnChange != nil {
		w.OnChange()
	}
}

func (w *CanvasWidget) MouseIn(e *desktop.MouseEvent) {
	w.setPointer(e.Position)
	w.controller.PointerEnter(e.Button == desktop.MouseButtonPrimary)
	w.changed()
}

func (w *CanvasWidget) MouseMoved(e *desktop.MouseEvent) {
	w.setPointer(e.Position)
	w.controller.PointerMove()
	w.changed()
}

func (w *CanvasWidget) MouseOut() {
	w.hovering = false
	w.controller.PointerLeave()
	w.changed()
}

func (w *CanvasWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	w.setPointer(e.Position)
	s := w.session
	switch {
	case s.StageDraggable():
		// Dragged pans the stage.
	case core.OverResizeHandle(s.BoundingBox(), s.Transform(), s.Transform().ToLogical(w.pointer)):
		w.controller.BeginBoxGesture(true)
	case e.Modifier&fyne.KeyModifierShift != 0:
		w.controller.BeginBoxGesture(false)
	default:
		w.controller.PointerDown()
	}
	w.changed()
}

func (w *CanvasWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	w.controller.EndBoxGesture()
	w.controller.PointerUp()
	w.changed()
}

func (w *CanvasWidget) Dragged(e *fyne.DragEvent) {
	w.setPointer(e.Position)
	if w.session.StageDraggable() {
		off := w.session.Transform().Offset
		w.controller.DragStage(state.Vec2{
			X: off.X + float64(e.Dragged.DX),
			Y: off.Y + float64(e.Dragged.DY),
		})
	} else {
		w.controller.PointerMove()
	}
	w.changed()
}

func (w *CanvasWidget) DragEnd() {}

// Scrolled zooms. Fyne reports wheel-up as a positive DY, which zooms in,
// while the wheel delta zooms in when negative.
func (w *CanvasWidget) Scrolled(e *fyne.ScrollEvent) {
	w.setPointer(e.Position)
	w.controller.Wheel(-float64(e.Scrolled.DY) * w.wheelScale)
	w.changed()
}

func (w *CanvasWidget) Cursor() desktop.Cursor {
	switch core.Derive(w.session).Cursor {
	case core.CursorNone:
		return desktop.HiddenCursor
	case core.CursorMove:
		return desktop.PointerCursor
	}
	return desktop.DefaultCursor
}

// render composes the layers, keeping the previous frame if rendering
// fails.
func (w *CanvasWidget) render(_, _ int) image.Image {
	img, err := w.compositor.Compose()
	if err != nil {
		logging.Logger().Error("compose canvas", "err", err)
		if w.last != nil {
			return w.last
		}
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	w.last = img
	return img
}

func (w *CanvasWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &canvasWidgetRenderer{board: w}
	r.raster = canvas.NewRaster(w.render)
	w.ready = true
	return r
}

type canvasWidgetRenderer struct {
	board  *CanvasWidget
	raster *canvas.Raster
}

func (r *canvasWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.raster}
}

func (r *canvasWidgetRenderer) Layout(size fyne.Size) {
	r.raster.Resize(size)
	r.board.session.SetViewport(state.Dimensions{
		Width:  float64(size.Width),
		Height: float64(size.Height),
	})
}

func (r *canvasWidgetRenderer) Refresh() {
	r.raster.Refresh()
}

func (r *canvasWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *canvasWidgetRenderer) Destroy() {}
