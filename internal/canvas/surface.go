package canvas

import "InpaintBoard/internal/state"

// Surface is the host rendering surface the canvas is mounted on. The
// controller asks it where the pointer is rather than trusting event
// coordinates, so a pointer that has left the surface maps to nothing.
type Surface interface {
	// PointerPosition returns the pointer in viewport coordinates, or false
	// when the surface has no pointer over it.
	PointerPosition() (state.Vec2, bool)
	// MaskReady reports whether the mask layer is mounted and can take
	// strokes.
	MaskReady() bool
}

// ScaledCursorPosition maps the surface pointer to logical canvas
// coordinates. It is recomputed on every call because the transform changes
// independently of pointer motion.
func ScaledCursorPosition(s Surface, t state.ViewTransform) (state.Vec2, bool) {
	raw, ok := s.PointerPosition()
	if !ok {
		return state.Vec2{}, false
	}
	return t.ToLogical(raw), true
}
