package ui

import (
	"fmt"
	"image/color"

	core "InpaintBoard/internal/canvas"
	"InpaintBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// maskPalette lists the mask colors offered next to the tools. The opacity
// of the configured mask color is kept when one is picked.
var maskPalette = []color.NRGBA{
	{R: 255, G: 90, B: 90, A: 255},
	{R: 90, G: 200, B: 90, A: 255},
	{R: 90, G: 140, B: 255, A: 255},
	{R: 255, G: 220, B: 60, A: 255},
	{A: 255},
}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(24, 24))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Actions are the toolbar buttons that need more than the session, such as
// file dialogs.
type Actions struct {
	SaveDocument func()
	OpenDocument func()
	ExportMask   func()
	ExportPDF    func()
	AddImage     func()
	PlaceImage   func()
}

// Toolbar edits the session options and mirrors them back after hotkeys or
// remote changes through Sync.
type Toolbar struct {
	board *CanvasWidget

	tool    *widget.Label
	size    *widget.Slider
	checks  map[string]*widget.Check
	view    *widget.Select
	status  *widget.Label
	message string

	object fyne.CanvasObject
}

const (
	checkShowMask   = "Mask"
	checkInvert     = "Invert"
	checkChecker    = "Checkerboard"
	checkBox        = "Box"
	checkBoxFill    = "Box fill"
	checkBoxLocked  = "Lock box"
	viewInpainting  = "Inpainting"
	viewOutpainting = "Outpainting"
)

// NewToolbar builds the toolbar for board.
func NewToolbar(board *CanvasWidget, actions Actions) *Toolbar {
	t := &Toolbar{board: board, checks: map[string]*widget.Check{}}
	s := board.Session()

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() { t.apply(func() { s.SetTool(state.ToolBrush) }) }),
		widget.NewToolbarAction(theme.ContentCutIcon(), func() { t.apply(func() { s.SetTool(state.ToolEraser) }) }),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() { t.apply(func() { s.SetTool(state.ToolMaskEraser) }) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() { t.apply(func() { s.Undo() }) }),
		widget.NewToolbarAction(theme.ContentRedoIcon(), func() { t.apply(func() { s.Redo() }) }),
		widget.NewToolbarAction(theme.DeleteIcon(), func() { t.apply(s.ClearMask) }),
		widget.NewToolbarAction(theme.ZoomFitIcon(), func() { t.apply(s.ResetView) }),
		widget.NewToolbarSeparator(),
		action(theme.FolderNewIcon(), actions.AddImage),
		action(theme.ContentAddIcon(), actions.PlaceImage),
		action(theme.FolderOpenIcon(), actions.OpenDocument),
		action(theme.DocumentSaveIcon(), actions.SaveDocument),
		action(theme.DownloadIcon(), actions.ExportMask),
		action(theme.DocumentPrintIcon(), actions.ExportPDF),
	)

	// --- Mask Color Palette ---
	onColorTapped := func(c color.Color) {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		t.apply(func() {
			s.UpdateOptions(func(o *state.Options) {
				o.MaskColor = state.RGBA{R: n.R, G: n.G, B: n.B, A: o.MaskColor.A}
			})
		})
	}
	colorBox := container.NewHBox()
	for _, c := range maskPalette {
		colorBox.Add(newColorSwatch(c, onColorTapped))
	}

	// --- Brush Size Slider ---
	t.size = widget.NewSlider(1, 200)
	t.size.SetValue(s.Options().BrushSize)
	t.size.OnChanged = func(val float64) {
		if val != s.Options().BrushSize {
			t.apply(func() { s.SetBrushSize(val) })
		}
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), t.size)

	// --- Display Toggles ---
	toggles := container.NewHBox()
	for _, name := range []string{checkShowMask, checkInvert, checkChecker, checkBox, checkBoxFill, checkBoxLocked} {
		name := name
		c := widget.NewCheck(name, func(on bool) { t.toggle(name, on) })
		t.checks[name] = c
		toggles.Add(c)
	}

	t.view = widget.NewSelect([]string{viewInpainting, viewOutpainting}, func(v string) {
		view := state.ViewInpainting
		if v == viewOutpainting {
			view = state.ViewOutpainting
		}
		if view != s.Options().View {
			t.apply(func() { s.UpdateOptions(func(o *state.Options) { o.View = view }) })
		}
	})

	t.tool = widget.NewLabel("")
	t.status = widget.NewLabel("")
	t.status.Truncation = fyne.TextTruncateEllipsis

	// --- Assemble everything ---
	top := container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		t.tool,
		widget.NewSeparator(),
		widget.NewLabel("Mask:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		layout.NewSpacer(),
	)
	bottom := container.NewBorder(nil, nil, container.NewHBox(t.view, toggles), nil, t.status)
	t.object = container.NewVBox(top, bottom)
	t.Sync()
	return t
}

func action(icon fyne.Resource, fn func()) widget.ToolbarItem {
	if fn == nil {
		fn = func() {}
	}
	return widget.NewToolbarAction(icon, fn)
}

// Object returns the toolbar content.
func (t *Toolbar) Object() fyne.CanvasObject { return t.object }

func (t *Toolbar) apply(fn func()) {
	fn()
	t.board.changed()
}

func (t *Toolbar) toggle(name string, on bool) {
	s := t.board.Session()
	if t.checked(name) == on {
		return
	}
	t.apply(func() {
		if name == checkBoxLocked {
			s.SetBoundingBoxLocked(on)
			return
		}
		s.UpdateOptions(func(o *state.Options) {
			switch name {
			case checkShowMask:
				o.ShowMask = on
			case checkInvert:
				o.InvertMask = on
			case checkChecker:
				o.ShowCheckerboard = on
			case checkBox:
				o.ShowBoundingBox = on
			case checkBoxFill:
				o.ShowBoundingBoxFill = on
			}
		})
	})
}

// checked returns the session value a toggle mirrors.
func (t *Toolbar) checked(name string) bool {
	s := t.board.Session()
	o := s.Options()
	switch name {
	case checkShowMask:
		return o.ShowMask
	case checkInvert:
		return o.InvertMask
	case checkChecker:
		return o.ShowCheckerboard
	case checkBox:
		return o.ShowBoundingBox
	case checkBoxFill:
		return o.ShowBoundingBoxFill
	case checkBoxLocked:
		return s.BoundingBox().Locked
	}
	return false
}

// SetMessage shows text next to the canvas status, such as the share link
// or a connection error.
func (t *Toolbar) SetMessage(text string) {
	t.message = text
	t.Sync()
}

// Sync copies the session state into the toolbar widgets.
func (t *Toolbar) Sync() {
	s := t.board.Session()
	o := s.Options()
	t.tool.SetText(fmt.Sprintf("%s %gpx", o.Tool, o.BrushSize))
	if t.size.Value != o.BrushSize {
		t.size.SetValue(o.BrushSize)
	}
	for name, c := range t.checks {
		if v := t.checked(name); c.Checked != v {
			c.SetChecked(v)
		}
	}
	view := viewInpainting
	if o.View == state.ViewOutpainting {
		view = viewOutpainting
	}
	if t.view.Selected != view {
		t.view.SetSelected(view)
	}
	text := "Box " + core.Derive(s).Status
	if t.message != "" {
		text += "   " + t.message
	}
	t.status.SetText(text)
}
