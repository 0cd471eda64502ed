package state

import (
	"image"

	"InpaintBoard/internal/logging"

	"github.com/google/uuid"
)

// View is the primary editor view hosting the canvas.
type View int

const (
	ViewInpainting View = iota
	ViewOutpainting
)

func (v View) String() string {
	if v == ViewOutpainting {
		return "outpainting"
	}
	return "inpainting"
}

// Options are the tool and display settings supplied by the options and
// hotkey modules.
type Options struct {
	Tool                Tool
	BrushSize           float64
	MaskColor           RGBA
	ShowMask            bool
	InvertMask          bool
	ShowCheckerboard    bool
	ShowBoundingBox     bool
	ShowBoundingBoxFill bool
	PanKeyHeld          bool
	CtrlHeld            bool
	View                View
}

func DefaultOptions() Options {
	return Options{
		Tool:                ToolBrush,
		BrushSize:           50,
		MaskColor:           RGBA{R: 255, G: 90, B: 90, A: 0.5},
		ShowMask:            true,
		ShowBoundingBox:     true,
		ShowBoundingBoxFill: true,
		View:                ViewInpainting,
	}
}

// Revisions counts mutations per concern. Renderers key their caches on the
// counters they read.
type Revisions struct {
	Strokes     uint64
	Eraser      uint64
	Objects     uint64
	Background  uint64
	Transform   uint64
	BoundingBox uint64
	Cursor      uint64
	Options     uint64
}

// SessionConfig seeds a new Session.
type SessionConfig struct {
	Viewport     Dimensions
	Zoom         ZoomBounds
	BoundingBox  Dimensions
	HistoryDepth int
	Options      Options
}

// Session is the single state container of one canvas. It is not safe for
// concurrent use: every mutation happens on the event loop.
type Session struct {
	opts      Options
	transform ViewTransform
	bbox      BoundingBox

	strokes []Stroke
	eraser  []Stroke
	objects []SceneObject
	images  map[string]image.Image

	cursor    Vec2
	hasCursor bool

	drawing  bool
	active   StrokeList
	activeID string

	pending    *ImageRef
	background image.Image

	history *History
	rev     Revisions

	onOp func(Op)
}

func NewSession(cfg SessionConfig) *Session {
	opts := cfg.Options
	if opts.BrushSize <= 0 {
		opts = DefaultOptions()
	}
	bbox := cfg.BoundingBox
	if bbox.Width <= 0 || bbox.Height <= 0 {
		bbox = Dimensions{Width: 512, Height: 512}
	}
	return &Session{
		opts:      opts,
		transform: NewViewTransform(cfg.Viewport, cfg.Zoom),
		bbox:      NewBoundingBox(bbox),
		history:   NewHistory(cfg.HistoryDepth),
	}
}

// OnOp registers fn to receive locally finalized strokes and clears, e.g. to
// share them with peers. Only one listener is kept.
func (s *Session) OnOp(fn func(Op)) { s.onOp = fn }

func (s *Session) emit(op Op) {
	if s.onOp != nil {
		s.onOp(op)
	}
}

func (s *Session) Revisions() Revisions { return s.rev }

// Options

func (s *Session) Options() Options { return s.opts }

// UpdateOptions applies fn to a copy of the options and stores the result.
// The brush size is kept at or above 1.
func (s *Session) UpdateOptions(fn func(*Options)) {
	o := s.opts
	fn(&o)
	if o.BrushSize < 1 {
		o.BrushSize = 1
	}
	if !o.Tool.Valid() {
		o.Tool = s.opts.Tool
	}
	if o == s.opts {
		return
	}
	s.opts = o
	s.rev.Options++
}

func (s *Session) SetTool(t Tool) { s.UpdateOptions(func(o *Options) { o.Tool = t }) }

func (s *Session) SetBrushSize(size float64) {
	s.UpdateOptions(func(o *Options) { o.BrushSize = size })
}

func (s *Session) SetPanKeyHeld(held bool) {
	s.UpdateOptions(func(o *Options) { o.PanKeyHeld = held })
}

func (s *Session) SetCtrlHeld(held bool) {
	s.UpdateOptions(func(o *Options) { o.CtrlHeld = held })
}

// View transform

func (s *Session) Transform() ViewTransform { return s.transform }

func (s *Session) SetViewport(d Dimensions) {
	if d == s.transform.Viewport {
		return
	}
	s.transform.Viewport = d
	s.rev.Transform++
}

// CanZoom reports whether wheel zoom is enabled: only in the outpainting
// view and never while the pan modifier is held.
func (s *Session) CanZoom() bool {
	return s.opts.View == ViewOutpainting && !s.opts.PanKeyHeld
}

// StageDraggable reports whether drag gestures pan the view.
func (s *Session) StageDraggable() bool {
	return s.opts.PanKeyHeld && s.opts.View == ViewOutpainting
}

// Zoom applies a wheel gesture over the viewport position pointer.
// It reports whether the transform changed.
func (s *Session) Zoom(pointer Vec2, delta float64, ctrlHeld bool) bool {
	if !s.CanZoom() {
		return false
	}
	next := s.transform.Zoomed(pointer, delta, ctrlHeld)
	if next == s.transform {
		return false
	}
	s.transform = next
	s.rev.Transform++
	return true
}

// Pan moves the view to offset while the stage is draggable.
func (s *Session) Pan(offset Vec2) bool {
	if !s.StageDraggable() {
		return false
	}
	if offset == s.transform.Offset {
		return false
	}
	s.transform.Offset = offset
	s.rev.Transform++
	return true
}

// ResetView restores unit scale and zero offset.
func (s *Session) ResetView() {
	s.transform.Scale = 1
	s.transform.Offset = Vec2{}
	s.rev.Transform++
}

// Bounding box

func (s *Session) BoundingBox() BoundingBox { return s.bbox }

func (s *Session) SetBoundingBoxPosition(p Vec2) bool {
	if s.bbox.Locked || p == s.bbox.Position {
		return false
	}
	s.bbox.Position = p
	s.rev.BoundingBox++
	return true
}

// SetBoundingBoxDimensions resizes the box, snapping to BoundingBoxStep.
func (s *Session) SetBoundingBoxDimensions(d Dimensions) bool {
	d = snapDimensions(d)
	if s.bbox.Locked || d == s.bbox.Dimensions {
		return false
	}
	s.bbox.Dimensions = d
	s.rev.BoundingBox++
	return true
}

func (s *Session) SetBoundingBoxLocked(locked bool) {
	s.bbox.Locked = locked
	if locked {
		s.bbox.Transforming = false
		s.bbox.Moving = false
	}
	s.rev.BoundingBox++
}

func (s *Session) SetTransformingBoundingBox(v bool) {
	if v && s.bbox.Locked {
		return
	}
	s.bbox.Transforming = v
	s.rev.BoundingBox++
}

func (s *Session) SetMovingBoundingBox(v bool) {
	if v && s.bbox.Locked {
		return
	}
	s.bbox.Moving = v
	s.rev.BoundingBox++
}

func (s *Session) SetMouseOverBoundingBox(v bool) {
	if v == s.bbox.MouseOver {
		return
	}
	s.bbox.MouseOver = v
	s.rev.BoundingBox++
}

// Cursor

// Cursor returns the last logical pointer position, if the pointer is over
// the canvas.
func (s *Session) Cursor() (Vec2, bool) { return s.cursor, s.hasCursor }

func (s *Session) SetCursor(p Vec2) {
	if s.hasCursor && p == s.cursor {
		return
	}
	s.cursor, s.hasCursor = p, true
	s.rev.Cursor++
}

func (s *Session) ClearCursor() {
	if !s.hasCursor {
		return
	}
	s.cursor, s.hasCursor = Vec2{}, false
	s.rev.Cursor++
}

// Strokes

// Strokes returns the mask stroke list. Callers must not modify it.
func (s *Session) Strokes() []Stroke { return s.strokes }

// EraserLines returns the eraser line list. Callers must not modify it.
func (s *Session) EraserLines() []Stroke { return s.eraser }

func (s *Session) IsDrawing() bool { return s.drawing }

func (s *Session) listOf(l StrokeList) *[]Stroke {
	if l == ListEraser {
		return &s.eraser
	}
	return &s.strokes
}

func (s *Session) touch(l StrokeList) {
	if l == ListEraser {
		s.rev.Eraser++
	} else {
		s.rev.Strokes++
	}
}

func indexOfStroke(list []Stroke, id string) int {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// insertStroke puts st in front of the stroke with ID before, or at the end
// when before is empty or unknown.
func (s *Session) insertStroke(l StrokeList, st Stroke, before string) {
	list := s.listOf(l)
	i := len(*list)
	if before != "" {
		if j := indexOfStroke(*list, before); j >= 0 {
			i = j
		}
	}
	*list = append(*list, Stroke{})
	copy((*list)[i+1:], (*list)[i:])
	(*list)[i] = st
	s.touch(l)
}

// removeStroke deletes the stroke with id and returns it.
func (s *Session) removeStroke(l StrokeList, id string) (Stroke, bool) {
	list := s.listOf(l)
	i := indexOfStroke(*list, id)
	if i < 0 {
		return Stroke{}, false
	}
	st := (*list)[i]
	*list = append((*list)[:i:i], (*list)[i+1:]...)
	if s.drawing && s.active == l && s.activeID == id {
		s.drawing = false
	}
	s.touch(l)
	return st, true
}

// BeginStroke starts a stroke seeded with p in the list chosen by tool. A
// stroke still in progress is finalized first. Eraser lines remember how
// many scene objects lie under them.
func (s *Session) BeginStroke(tool Tool, width float64, p Vec2) Stroke {
	if s.drawing {
		s.EndStroke()
	}
	st := Stroke{
		ID:          uuid.NewString(),
		Tool:        tool,
		Points:      []float64{p.X, p.Y},
		StrokeWidth: width,
	}
	s.active = tool.List()
	if s.active == ListEraser {
		st.ObjectsBelow = len(s.objects)
	}
	s.activeID = st.ID
	s.insertStroke(s.active, st, "")
	s.drawing = true
	logging.Logger().Debug("stroke started", "id", st.ID, "tool", tool, "list", s.active)
	return st
}

func (s *Session) activeStroke() *Stroke {
	if !s.drawing {
		return nil
	}
	list := *s.listOf(s.active)
	if i := indexOfStroke(list, s.activeID); i >= 0 {
		return &list[i]
	}
	return nil
}

// AppendPoint extends the stroke in progress. It reports false when no
// stroke is being drawn.
func (s *Session) AppendPoint(p Vec2) bool {
	st := s.activeStroke()
	if st == nil {
		return false
	}
	st.Points = append(st.Points, p.X, p.Y)
	s.touch(s.active)
	return true
}

// ActiveStroke returns the stroke in progress.
func (s *Session) ActiveStroke() (Stroke, bool) {
	if st := s.activeStroke(); st != nil {
		return *st, true
	}
	return Stroke{}, false
}

// EndStroke finalizes the stroke in progress, records it for undo and
// clears the drawing state.
func (s *Session) EndStroke() (Stroke, bool) {
	st, ok := s.ActiveStroke()
	s.drawing = false
	if !ok {
		return Stroke{}, false
	}
	final := st.clone()
	s.history.push(edit{kind: editInsert, list: s.active, stroke: final.clone()})
	s.emit(Op{Type: OpInsertStroke, List: s.active, Stroke: &final})
	return st, true
}

// ClearMask removes every mask stroke.
func (s *Session) ClearMask() {
	if s.drawing && s.active == ListMask {
		s.EndStroke()
	}
	s.history.push(edit{kind: editClear, list: ListMask, cleared: cloneStrokes(s.strokes)})
	s.strokes = nil
	s.rev.Strokes++
	s.emit(Op{Type: OpClearMask, List: ListMask})
}

func (s *Session) snapshot() snapshot {
	return snapshot{strokes: cloneStrokes(s.strokes), eraser: cloneStrokes(s.eraser)}
}

func (s *Session) restore(snap snapshot) {
	s.strokes = cloneStrokes(snap.strokes)
	s.eraser = cloneStrokes(snap.eraser)
	s.rev.Strokes++
	s.rev.Eraser++
}

// reinsert adds a copy of st under a fresh ID, so peers that already saw
// and dropped the original accept it again.
func (s *Session) reinsert(l StrokeList, st Stroke, before string) Stroke {
	st = st.clone()
	st.ID = uuid.NewString()
	s.insertStroke(l, st, before)
	sent := st.clone()
	s.emit(Op{Type: OpInsertStroke, List: l, Stroke: &sent, Before: before})
	return st
}

// revert reverses e and returns the edit that redoes it.
func (s *Session) revert(e edit) edit {
	switch e.kind {
	case editInsert:
		if st, ok := s.removeStroke(e.list, e.stroke.ID); ok {
			e.stroke = st.clone()
			s.emit(Op{Type: OpRemoveStroke, List: e.list, Stroke: &Stroke{ID: st.ID}})
		}
	case editClear:
		var before string
		if len(s.strokes) > 0 {
			before = s.strokes[0].ID
		}
		restored := make([]Stroke, 0, len(e.cleared))
		for _, st := range e.cleared {
			restored = append(restored, s.reinsert(ListMask, st, before))
		}
		e.cleared = restored
	case editLoad:
		s.restore(e.before)
	}
	return e
}

// replay applies e again and returns the edit that reverts it.
func (s *Session) replay(e edit) edit {
	switch e.kind {
	case editInsert:
		e.stroke = s.reinsert(e.list, e.stroke, "")
	case editClear:
		e.cleared = cloneStrokes(s.strokes)
		s.strokes = nil
		s.rev.Strokes++
		s.emit(Op{Type: OpClearMask, List: ListMask})
	case editLoad:
		s.restore(e.after)
	}
	return e
}

// Undo reverts the last local stroke, clear or load. Strokes received from
// peers since then are kept, and the reversal is emitted like any other
// local change.
func (s *Session) Undo() bool {
	if s.drawing {
		s.EndStroke()
	}
	e, ok := s.history.popUndo()
	if ok {
		s.history.redo = append(s.history.redo, s.revert(e))
	}
	return ok
}

func (s *Session) Redo() bool {
	if s.drawing {
		s.EndStroke()
	}
	e, ok := s.history.popRedo()
	if ok {
		s.history.pushUndo(s.replay(e))
	}
	return ok
}

func (s *Session) History() *History { return s.history }

// LoadStrokes replaces both stroke lists, e.g. from a saved document. The
// replacement can be undone and is not shared with peers.
func (s *Session) LoadStrokes(strokes, eraser []Stroke) {
	if s.drawing {
		s.EndStroke()
	}
	before := s.snapshot()
	s.strokes = cloneStrokes(strokes)
	s.eraser = cloneStrokes(eraser)
	s.rev.Strokes++
	s.rev.Eraser++
	s.history.push(edit{kind: editLoad, before: before, after: s.snapshot()})
}

// ApplyRemote merges an op received from a peer. Remote ops do not enter the
// local undo history and are not re-emitted.
func (s *Session) ApplyRemote(op Op) {
	switch op.Type {
	case OpInsertStroke:
		if op.Stroke == nil {
			return
		}
		s.insertStroke(op.List, op.Stroke.clone(), op.Before)
	case OpRemoveStroke:
		if op.Stroke == nil {
			return
		}
		s.removeStroke(op.List, op.Stroke.ID)
	case OpClearMask:
		if s.drawing && s.active == ListMask {
			s.drawing = false
		}
		s.strokes = nil
		s.rev.Strokes++
	}
}

// Scene objects

func (s *Session) Objects() []SceneObject { return s.objects }

func (s *Session) AddObject(obj SceneObject) {
	s.objects = append(s.objects, obj)
	s.rev.Objects++
}

// SetObjectImage stores the decoded image for every object placed from url.
func (s *Session) SetObjectImage(url string, img image.Image) {
	if s.images == nil {
		s.images = make(map[string]image.Image)
	}
	s.images[url] = img
	s.rev.Objects++
}

// ObjectImage returns the decoded image for url, or nil while it loads.
func (s *Session) ObjectImage(url string) image.Image { return s.images[url] }

// Background image

// RequestImage records ref as the image to load. The background slot stays
// as it is until the load completes.
func (s *Session) RequestImage(ref ImageRef) { s.pending = &ref }

// PendingImage returns the image reference currently requested, if any.
func (s *Session) PendingImage() (ImageRef, bool) {
	if s.pending == nil {
		return ImageRef{}, false
	}
	return *s.pending, true
}

// SetBackground fills the background slot.
func (s *Session) SetBackground(img image.Image) {
	s.background = img
	s.rev.Background++
}

// Background returns the loaded base image, or nil.
func (s *Session) Background() image.Image { return s.background }

// ClearImage drops both the pending reference and the loaded image.
func (s *Session) ClearImage() {
	s.pending = nil
	if s.background != nil {
		s.background = nil
		s.rev.Background++
	}
}
