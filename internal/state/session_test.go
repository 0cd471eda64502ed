package state

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOutpaintingSession() *Session {
	opts := DefaultOptions()
	opts.View = ViewOutpainting
	return NewSession(SessionConfig{
		Viewport: Dimensions{Width: 800, Height: 600},
		Options:  opts,
	})
}

func TestStrokeLifecycle(t *testing.T) {
	s := NewSession(SessionConfig{})
	var ops []Op
	s.OnOp(func(op Op) { ops = append(ops, op) })

	st := s.BeginStroke(ToolBrush, 10, Vec2{X: 10, Y: 10})
	require.NotEmpty(t, st.ID)
	assert.True(t, s.IsDrawing())
	assert.True(t, s.AppendPoint(Vec2{X: 15, Y: 10}))

	final, ok := s.EndStroke()
	require.True(t, ok)
	assert.False(t, s.IsDrawing())
	assert.Equal(t, []float64{10, 10, 15, 10}, final.Points)
	assert.False(t, s.AppendPoint(Vec2{X: 99, Y: 99}))

	require.Len(t, ops, 1)
	assert.Equal(t, OpInsertStroke, ops[0].Type)
	assert.Equal(t, ListMask, ops[0].List)
	assert.Equal(t, final.Points, ops[0].Stroke.Points)
}

func TestStrokeKeepsListWhenToolChanges(t *testing.T) {
	s := NewSession(SessionConfig{})
	s.SetTool(ToolEraser)
	s.BeginStroke(s.Options().Tool, 5, Vec2{X: 1, Y: 1})
	s.SetTool(ToolBrush)
	s.AppendPoint(Vec2{X: 2, Y: 2})
	s.EndStroke()

	assert.Empty(t, s.Strokes())
	require.Len(t, s.EraserLines(), 1)
	assert.Equal(t, []float64{1, 1, 2, 2}, s.EraserLines()[0].Points)
}

func TestBeginStrokeFinalizesPrevious(t *testing.T) {
	s := NewSession(SessionConfig{})
	s.BeginStroke(ToolBrush, 5, Vec2{X: 1, Y: 1})
	s.BeginStroke(ToolEraser, 5, Vec2{X: 2, Y: 2})
	s.AppendPoint(Vec2{X: 3, Y: 3})

	require.Len(t, s.Strokes(), 1)
	assert.Equal(t, []float64{1, 1}, s.Strokes()[0].Points)
	assert.Equal(t, []float64{2, 2, 3, 3}, s.EraserLines()[0].Points)
}

func TestRemoteStrokeDoesNotHijackActiveStroke(t *testing.T) {
	s := NewSession(SessionConfig{})
	s.BeginStroke(ToolBrush, 5, Vec2{X: 1, Y: 1})
	s.ApplyRemote(Op{Type: OpInsertStroke, List: ListMask, Stroke: &Stroke{ID: "r", Points: []float64{7, 7}}})
	s.AppendPoint(Vec2{X: 2, Y: 2})

	require.Len(t, s.Strokes(), 2)
	assert.Equal(t, []float64{1, 1, 2, 2}, s.Strokes()[0].Points)
	assert.Equal(t, []float64{7, 7}, s.Strokes()[1].Points)
}

func TestUndoRedo(t *testing.T) {
	s := NewSession(SessionConfig{HistoryDepth: 10})
	s.BeginStroke(ToolBrush, 5, Vec2{X: 1, Y: 1})
	s.EndStroke()
	s.BeginStroke(ToolEraser, 5, Vec2{X: 2, Y: 2})
	s.EndStroke()

	require.True(t, s.Undo())
	assert.Len(t, s.Strokes(), 1)
	assert.Empty(t, s.EraserLines())

	require.True(t, s.Undo())
	assert.Empty(t, s.Strokes())
	assert.False(t, s.Undo())

	require.True(t, s.Redo())
	assert.Len(t, s.Strokes(), 1)
	assert.True(t, s.History().CanRedo())
}

func TestClearMask(t *testing.T) {
	s := NewSession(SessionConfig{})
	var ops []Op
	s.OnOp(func(op Op) { ops = append(ops, op) })
	s.BeginStroke(ToolBrush, 5, Vec2{X: 1, Y: 1})
	s.ClearMask()

	assert.Empty(t, s.Strokes())
	assert.False(t, s.IsDrawing())
	require.Len(t, ops, 2)
	assert.Equal(t, OpClearMask, ops[1].Type)

	require.True(t, s.Undo())
	assert.Len(t, s.Strokes(), 1)
}

func TestZoomGating(t *testing.T) {
	s := NewSession(SessionConfig{Viewport: Dimensions{Width: 100, Height: 100}})
	assert.False(t, s.Zoom(Vec2{X: 10, Y: 10}, -100, false), "inpainting view does not zoom")

	s.UpdateOptions(func(o *Options) { o.View = ViewOutpainting })
	s.SetPanKeyHeld(true)
	assert.False(t, s.Zoom(Vec2{X: 10, Y: 10}, -100, false), "pan modifier disables zoom")

	s.SetPanKeyHeld(false)
	rev := s.Revisions().Transform
	assert.True(t, s.Zoom(Vec2{X: 10, Y: 10}, -100, false))
	assert.Greater(t, s.Transform().Scale, 1.0)
	assert.Equal(t, rev+1, s.Revisions().Transform)
}

func TestPanGating(t *testing.T) {
	s := newOutpaintingSession()
	assert.False(t, s.Pan(Vec2{X: 5, Y: 5}))

	s.SetPanKeyHeld(true)
	assert.True(t, s.StageDraggable())
	assert.True(t, s.Pan(Vec2{X: 5, Y: 5}))
	assert.Equal(t, Vec2{X: 5, Y: 5}, s.Transform().Offset)

	s.ResetView()
	assert.Equal(t, Vec2{}, s.Transform().Offset)
	assert.Equal(t, 1.0, s.Transform().Scale)
}

func TestCursorRevisions(t *testing.T) {
	s := NewSession(SessionConfig{})
	s.SetCursor(Vec2{X: 1, Y: 1})
	s.SetCursor(Vec2{X: 1, Y: 1})
	assert.Equal(t, uint64(1), s.Revisions().Cursor)

	s.ClearCursor()
	_, ok := s.Cursor()
	assert.False(t, ok)
	assert.Equal(t, uint64(2), s.Revisions().Cursor)
}

func TestOptionsValidation(t *testing.T) {
	s := NewSession(SessionConfig{})
	s.SetBrushSize(0)
	assert.Equal(t, 1.0, s.Options().BrushSize)
	s.SetTool(Tool(99))
	assert.Equal(t, ToolBrush, s.Options().Tool)
}

func TestBackgroundSlot(t *testing.T) {
	s := NewSession(SessionConfig{})
	_, ok := s.PendingImage()
	assert.False(t, ok)

	s.RequestImage(ImageRef{URL: "a.png", Width: 4, Height: 4})
	ref, ok := s.PendingImage()
	require.True(t, ok)
	assert.Equal(t, "a.png", ref.URL)
	assert.Nil(t, s.Background())

	s.SetBackground(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	assert.NotNil(t, s.Background())

	s.ClearImage()
	assert.Nil(t, s.Background())
	_, ok = s.PendingImage()
	assert.False(t, ok)
}

func TestObjectImages(t *testing.T) {
	s := NewSession(SessionConfig{})
	s.AddObject(SceneObject{URL: "o.png", X: 3, Y: 4})
	assert.Nil(t, s.ObjectImage("o.png"))
	s.SetObjectImage("o.png", image.NewRGBA(image.Rect(0, 0, 1, 1)))
	assert.NotNil(t, s.ObjectImage("o.png"))
	assert.Equal(t, uint64(2), s.Revisions().Objects)
}

func TestLoadStrokes(t *testing.T) {
	s := NewSession(SessionConfig{})
	var ops []Op
	s.OnOp(func(op Op) { ops = append(ops, op) })
	s.BeginStroke(ToolBrush, 5, Vec2{X: 1, Y: 1})

	in := []Stroke{{ID: "a", Tool: ToolBrush, Points: []float64{2, 2, 3, 3}, StrokeWidth: 4}}
	s.LoadStrokes(in, nil)
	assert.False(t, s.IsDrawing())
	require.Len(t, s.Strokes(), 1)
	assert.Equal(t, "a", s.Strokes()[0].ID)
	in[0].Points[0] = 99
	assert.Equal(t, 2.0, s.Strokes()[0].Points[0], "input is copied")
	assert.Len(t, ops, 1, "only the interrupted stroke is emitted")

	require.True(t, s.Undo())
	require.Len(t, s.Strokes(), 1)
	assert.Equal(t, []float64{1, 1}, s.Strokes()[0].Points)
}

func remoteStroke(id string) Op {
	return Op{Type: OpInsertStroke, List: ListMask, Stroke: &Stroke{ID: id, Points: []float64{9, 9}, StrokeWidth: 2}}
}

func TestRemoteStrokeSurvivesLocalUndo(t *testing.T) {
	s := NewSession(SessionConfig{})
	s.BeginStroke(ToolBrush, 5, Vec2{X: 1, Y: 1})
	s.EndStroke()
	s.ApplyRemote(remoteStroke("peer"))

	require.True(t, s.Undo())
	require.Len(t, s.Strokes(), 1)
	assert.Equal(t, "peer", s.Strokes()[0].ID)

	require.True(t, s.Redo())
	require.Len(t, s.Strokes(), 2)
	assert.Equal(t, "peer", s.Strokes()[0].ID)
	assert.Equal(t, []float64{1, 1}, s.Strokes()[1].Points)
}

func TestUndoRedoAreEmitted(t *testing.T) {
	s := NewSession(SessionConfig{})
	var ops []Op
	s.OnOp(func(op Op) { ops = append(ops, op) })

	st := s.BeginStroke(ToolEraser, 5, Vec2{X: 1, Y: 1})
	s.EndStroke()
	require.True(t, s.Undo())
	require.True(t, s.Redo())

	require.Len(t, ops, 3)
	assert.Equal(t, OpRemoveStroke, ops[1].Type)
	assert.Equal(t, ListEraser, ops[1].List)
	assert.Equal(t, st.ID, ops[1].Stroke.ID)

	assert.Equal(t, OpInsertStroke, ops[2].Type)
	assert.NotEqual(t, st.ID, ops[2].Stroke.ID, "redo reinserts under a new id")
	assert.NotEqual(t, ops[0].Key(), ops[2].Key())

	// A peer applying the same ops ends up with the same list.
	peer := NewSession(SessionConfig{})
	for _, op := range ops {
		peer.ApplyRemote(op)
	}
	assert.Equal(t, s.EraserLines(), peer.EraserLines())
}

func TestUndoClearRestoresInFront(t *testing.T) {
	s := NewSession(SessionConfig{})
	var ops []Op
	s.OnOp(func(op Op) { ops = append(ops, op) })
	s.BeginStroke(ToolBrush, 5, Vec2{X: 1, Y: 1})
	s.EndStroke()
	s.BeginStroke(ToolMaskEraser, 5, Vec2{X: 2, Y: 2})
	s.EndStroke()
	s.ClearMask()
	s.ApplyRemote(remoteStroke("peer"))

	peer := NewSession(SessionConfig{})
	peer.ApplyRemote(remoteStroke("peer"))
	ops = nil

	require.True(t, s.Undo())
	require.Len(t, s.Strokes(), 3)
	assert.Equal(t, []float64{1, 1}, s.Strokes()[0].Points)
	assert.Equal(t, ToolMaskEraser, s.Strokes()[1].Tool)
	assert.Equal(t, "peer", s.Strokes()[2].ID)

	require.Len(t, ops, 2)
	for _, op := range ops {
		assert.Equal(t, "peer", op.Before)
		peer.ApplyRemote(op)
	}
	assert.Equal(t, s.Strokes(), peer.Strokes())

	require.True(t, s.Redo())
	assert.Empty(t, s.Strokes())
}

func TestUndoAfterRemoteClearIsHarmless(t *testing.T) {
	s := NewSession(SessionConfig{})
	var ops []Op
	s.OnOp(func(op Op) { ops = append(ops, op) })
	s.BeginStroke(ToolBrush, 5, Vec2{X: 1, Y: 1})
	s.EndStroke()
	s.ApplyRemote(Op{Type: OpClearMask, List: ListMask})

	require.True(t, s.Undo())
	assert.Empty(t, s.Strokes())
	assert.Len(t, ops, 1, "nothing left to remove, nothing emitted")
}

func TestRemoteInsertAndRemove(t *testing.T) {
	s := NewSession(SessionConfig{})
	s.ApplyRemote(remoteStroke("a"))
	s.ApplyRemote(remoteStroke("c"))
	op := remoteStroke("b")
	op.Before = "c"
	s.ApplyRemote(op)

	ids := func() []string {
		var out []string
		for _, st := range s.Strokes() {
			out = append(out, st.ID)
		}
		return out
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids())

	op = remoteStroke("d")
	op.Before = "missing"
	s.ApplyRemote(op)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids())

	s.ApplyRemote(Op{Type: OpRemoveStroke, List: ListMask, Stroke: &Stroke{ID: "b"}})
	s.ApplyRemote(Op{Type: OpRemoveStroke, List: ListMask, Stroke: &Stroke{ID: "nope"}})
	assert.Equal(t, []string{"a", "c", "d"}, ids())
}

func TestActiveStrokeSurvivesRemoteInsertInFront(t *testing.T) {
	s := NewSession(SessionConfig{})
	s.ApplyRemote(remoteStroke("a"))
	st := s.BeginStroke(ToolBrush, 5, Vec2{X: 1, Y: 1})
	op := remoteStroke("b")
	op.Before = "a"
	s.ApplyRemote(op)

	require.True(t, s.AppendPoint(Vec2{X: 3, Y: 3}))
	active, ok := s.ActiveStroke()
	require.True(t, ok)
	assert.Equal(t, st.ID, active.ID)
	assert.Equal(t, []float64{1, 1, 3, 3}, active.Points)
}

func TestEraserLinesRecordObjectsBelow(t *testing.T) {
	s := NewSession(SessionConfig{})
	first := s.BeginStroke(ToolEraser, 5, Vec2{X: 1, Y: 1})
	s.EndStroke()
	s.AddObject(SceneObject{URL: "o.png"})
	second := s.BeginStroke(ToolEraser, 5, Vec2{X: 1, Y: 1})
	s.EndStroke()

	assert.Equal(t, 0, first.ObjectsBelow)
	assert.Equal(t, 1, second.ObjectsBelow)
	assert.Equal(t, 1, s.EraserLines()[1].ObjectsBelow)
}
