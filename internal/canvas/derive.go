package canvas

import (
	"fmt"

	"InpaintBoard/internal/state"
)

// Cursor is the pointer style the host should show over the stage.
type Cursor int

const (
	// CursorInherit leaves the cursor to the host, used while a bounding box
	// handle is being dragged.
	CursorInherit Cursor = iota
	CursorNone
	CursorMove
	CursorDefault
)

func (c Cursor) String() string {
	switch c {
	case CursorNone:
		return "none"
	case CursorMove:
		return "move"
	case CursorDefault:
		return "default"
	}
	return ""
}

// Derived is the view state computed from a session.
type Derived struct {
	Cursor                 Cursor
	IsModifyingBoundingBox bool

	ImageLayerVisible       bool
	MaskLayerVisible        bool
	BrushPreviewVisible     bool
	BoundingBoxLayerVisible bool
	BoundingBoxVisible      bool
	BoundingBoxFillVisible  bool
	StageDraggable          bool

	// Status is the bounding box size shown above the stage, e.g. "512x512".
	Status string
}

// Derive computes the view state of s. It is pure and cheap; callers that
// need memoization can key on the session revisions.
func Derive(s *state.Session) Derived {
	o := s.Options()
	b := s.BoundingBox()
	_, hasCursor := s.Cursor()
	modifying := b.IsModifying()

	return Derived{
		Cursor:                  stageCursor(o, b),
		IsModifyingBoundingBox:  modifying,
		ImageLayerVisible:       !o.InvertMask && !o.ShowCheckerboard,
		MaskLayerVisible:        o.ShowMask,
		BrushPreviewVisible:     hasCursor && !modifying && !o.PanKeyHeld,
		BoundingBoxLayerVisible: o.ShowMask,
		BoundingBoxVisible:      o.ShowBoundingBox,
		BoundingBoxFillVisible:  o.ShowBoundingBoxFill && o.ShowBoundingBox,
		StageDraggable:          s.StageDraggable(),
		Status:                  fmt.Sprintf("%gx%g", b.Dimensions.Width, b.Dimensions.Height),
	}
}

func stageCursor(o state.Options, b state.BoundingBox) Cursor {
	switch {
	case b.Transforming:
		return CursorInherit
	case b.Moving || b.MouseOver || o.PanKeyHeld:
		return CursorMove
	case o.ShowMask:
		return CursorNone
	default:
		return CursorDefault
	}
}
