package ui

import (
	"InpaintBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// brushStep is the brush size change of one bracket key press.
const brushStep = 5

// hotkeys maps keyboard input to session changes. Space holds the pan
// modifier and ctrl the pinch-zoom flag; both are tracked on key down and
// up so they are current when the next pointer event arrives.
type hotkeys struct {
	session *state.Session
	changed func()
}

func (h hotkeys) bind(c fyne.Canvas) {
	if dc, ok := c.(desktop.Canvas); ok {
		dc.SetOnKeyDown(h.keyDown)
		dc.SetOnKeyUp(h.keyUp)
	}
	c.SetOnTypedRune(h.typedRune)

	undo := &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	redo := &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift}
	c.AddShortcut(undo, func(fyne.Shortcut) { h.undo() })
	c.AddShortcut(redo, func(fyne.Shortcut) { h.redo() })
}

func (h hotkeys) keyDown(e *fyne.KeyEvent) { h.setModifier(e.Name, true) }
func (h hotkeys) keyUp(e *fyne.KeyEvent)   { h.setModifier(e.Name, false) }

func (h hotkeys) setModifier(name fyne.KeyName, held bool) {
	switch name {
	case fyne.KeySpace:
		h.session.SetPanKeyHeld(held)
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		h.session.SetCtrlHeld(held)
	default:
		return
	}
	h.changed()
}

func (h hotkeys) typedRune(r rune) {
	s := h.session
	switch r {
	case 'b':
		s.SetTool(state.ToolBrush)
	case 'e':
		s.SetTool(state.ToolEraser)
	case 'm':
		s.SetTool(state.ToolMaskEraser)
	case '[':
		s.SetBrushSize(s.Options().BrushSize - brushStep)
	case ']':
		s.SetBrushSize(s.Options().BrushSize + brushStep)
	case 'h':
		s.UpdateOptions(func(o *state.Options) { o.ShowMask = !o.ShowMask })
	case 'r':
		s.ResetView()
	default:
		return
	}
	h.changed()
}

func (h hotkeys) undo() {
	if h.session.Undo() {
		h.changed()
	}
}

func (h hotkeys) redo() {
	if h.session.Redo() {
		h.changed()
	}
}
