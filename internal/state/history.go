package state

type editKind int

const (
	editInsert editKind = iota // one stroke added to a list
	editClear                  // mask list emptied
	editLoad                   // both lists replaced from a document
)

// snapshot is a deep copy of both stroke lists.
type snapshot struct {
	strokes []Stroke
	eraser  []Stroke
}

// edit is one undoable local change. Inserts and clears name the strokes
// they touched, so undoing them leaves strokes received from peers alone.
type edit struct {
	kind    editKind
	list    StrokeList
	stroke  Stroke
	cleared []Stroke
	before  snapshot
	after   snapshot
}

// History keeps undo and redo stacks of local edits.
type History struct {
	undo []edit
	redo []edit
	max  int
}

// NewHistory returns a history holding at most max undo steps (50 if max <= 0).
func NewHistory(max int) *History {
	if max <= 0 {
		max = 50
	}
	return &History{max: max}
}

// push records a new edit and invalidates redo.
func (h *History) push(e edit) {
	h.pushUndo(e)
	h.redo = h.redo[:0]
}

func (h *History) pushUndo(e edit) {
	h.undo = append(h.undo, e)
	if len(h.undo) > h.max {
		h.undo = h.undo[1:]
	}
}

func (h *History) popUndo() (edit, bool) {
	if len(h.undo) == 0 {
		return edit{}, false
	}
	last := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return last, true
}

func (h *History) popRedo() (edit, bool) {
	if len(h.redo) == 0 {
		return edit{}, false
	}
	last := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return last, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

func (h *History) Clear() {
	h.undo = h.undo[:0]
	h.redo = h.redo[:0]
}
