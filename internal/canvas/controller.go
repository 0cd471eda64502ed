package canvas

import (
	"InpaintBoard/internal/logging"
	"InpaintBoard/internal/state"
)

// Handle bundles the session and the surface a controller is bound to.
type Handle struct {
	Session *state.Session
	Surface Surface
}

// Controller turns pointer events into strokes, cursor updates and view
// changes. A controller is idle or drawing; the session holds the drawing
// flag and the controller remembers whether the current stroke has moved.
type Controller struct {
	h       Handle
	didMove bool
	box     boxGesture
}

type boxGesture struct {
	active bool
	resize bool
	anchor state.Vec2
	start  state.BoundingBox
}

func NewController(h Handle) *Controller {
	return &Controller{h: h}
}

func (c *Controller) cursor() (state.Vec2, bool) {
	return ScaledCursorPosition(c.h.Surface, c.h.Session.Transform())
}

// canDraw reports whether a stroke may start at the current pointer.
func (c *Controller) canDraw() (state.Vec2, bool) {
	p, ok := c.cursor()
	if !ok || !c.h.Surface.MaskReady() {
		return state.Vec2{}, false
	}
	s := c.h.Session
	if s.BoundingBox().IsModifying() || s.Options().PanKeyHeld {
		return state.Vec2{}, false
	}
	return p, true
}

// PointerDown starts a stroke in the list selected by the current tool.
func (c *Controller) PointerDown() {
	p, ok := c.canDraw()
	if !ok {
		return
	}
	o := c.h.Session.Options()
	c.didMove = false
	c.h.Session.BeginStroke(o.Tool, o.BrushSize/2, p)
}

// PointerMove tracks the cursor and extends the stroke in progress.
func (c *Controller) PointerMove() {
	p, ok := c.cursor()
	if !ok {
		return
	}
	s := c.h.Session
	s.SetCursor(p)
	s.SetMouseOverBoundingBox(OverResizeHandle(s.BoundingBox(), s.Transform(), p))

	if c.box.active {
		c.updateBoxGesture(p)
		return
	}
	if !c.h.Surface.MaskReady() || !s.IsDrawing() {
		return
	}
	if s.BoundingBox().IsModifying() || s.Options().PanKeyHeld {
		return
	}
	if st, ok := s.ActiveStroke(); ok {
		if last, ok := st.Last(); ok && last == p {
			return
		}
	}
	if s.AppendPoint(p) {
		c.didMove = true
	}
}

// PointerUp finishes the stroke in progress. A click without motion
// repeats the down-point so the stroke renders as a dot.
func (c *Controller) PointerUp() {
	s := c.h.Session
	if s.IsDrawing() && !c.didMove {
		if st, ok := s.ActiveStroke(); ok && st.Len() > 0 {
			s.AppendPoint(st.Point(0))
		}
	}
	if s.IsDrawing() {
		s.EndStroke()
	}
	c.didMove = false
}

// PointerLeave clears the cursor and ends any stroke in progress with the
// points it already has.
func (c *Controller) PointerLeave() {
	s := c.h.Session
	s.ClearCursor()
	s.SetMouseOverBoundingBox(false)
	if s.IsDrawing() {
		st, _ := s.EndStroke()
		logging.Logger().Debug("stroke cut at canvas edge", "id", st.ID, "points", st.Len())
	}
	c.didMove = false
}

// PointerEnter resumes drawing when the pointer comes back with the primary
// button still held.
func (c *Controller) PointerEnter(primaryHeld bool) {
	if p, ok := c.cursor(); ok {
		c.h.Session.SetCursor(p)
	}
	if primaryHeld {
		c.PointerDown()
	}
}

// Wheel zooms around the pointer. The session ignores it outside the
// outpainting view and while the pan key is held.
func (c *Controller) Wheel(delta float64) {
	raw, ok := c.h.Surface.PointerPosition()
	if !ok {
		return
	}
	s := c.h.Session
	if s.Zoom(raw, delta, s.Options().CtrlHeld) {
		if p, ok := c.cursor(); ok {
			s.SetCursor(p)
		}
	}
}

// DragStage moves the stage to offset while the stage is draggable.
func (c *Controller) DragStage(offset state.Vec2) {
	c.h.Session.Pan(offset)
}

// BeginBoxGesture grabs the bounding box under the pointer for moving, or
// its size handle when resize is set. Locked boxes cannot be grabbed.
func (c *Controller) BeginBoxGesture(resize bool) bool {
	p, ok := c.cursor()
	if !ok {
		return false
	}
	s := c.h.Session
	b := s.BoundingBox()
	if b.Locked || s.IsDrawing() {
		return false
	}
	if !resize && !b.Rect().Contains(p) {
		return false
	}
	c.box = boxGesture{active: true, resize: resize, anchor: p, start: b}
	if resize {
		s.SetTransformingBoundingBox(true)
	} else {
		s.SetMovingBoundingBox(true)
	}
	return true
}

// HandleSize is the side of the bounding box resize handle in viewport
// pixels.
const HandleSize = 10.0

// ResizeHandle returns the logical rectangle of the resize handle centred on
// the bottom-right corner of b.
func ResizeHandle(b state.BoundingBox, t state.ViewTransform) state.Rect {
	side := HandleSize / t.Scale
	r := b.Rect()
	return state.Rect{X: r.X + r.Width - side/2, Y: r.Y + r.Height - side/2, Width: side, Height: side}
}

// OverResizeHandle reports whether p is over the handle of an unlocked box.
func OverResizeHandle(b state.BoundingBox, t state.ViewTransform, p state.Vec2) bool {
	return !b.Locked && ResizeHandle(b, t).Contains(p)
}

func (c *Controller) updateBoxGesture(p state.Vec2) {
	d := state.Vec2{X: p.X - c.box.anchor.X, Y: p.Y - c.box.anchor.Y}
	s := c.h.Session
	if c.box.resize {
		s.SetBoundingBoxDimensions(state.Dimensions{
			Width:  c.box.start.Dimensions.Width + d.X,
			Height: c.box.start.Dimensions.Height + d.Y,
		})
		return
	}
	s.SetBoundingBoxPosition(state.Vec2{
		X: c.box.start.Position.X + d.X,
		Y: c.box.start.Position.Y + d.Y,
	})
}

// EndBoxGesture releases the bounding box.
func (c *Controller) EndBoxGesture() {
	if !c.box.active {
		return
	}
	c.box = boxGesture{}
	c.h.Session.SetTransformingBoundingBox(false)
	c.h.Session.SetMovingBoundingBox(false)
}
