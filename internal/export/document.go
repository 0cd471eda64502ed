package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"InpaintBoard/internal/state"
)

// DocumentVersion is written into every stroke document.
const DocumentVersion = 1

var ErrBadDocument = errors.New("export: invalid stroke document")

// Document is the saved form of a canvas: both stroke lists and the
// bounding box they were drawn for.
type Document struct {
	Version     int                 `json:"version"`
	BoundingBox state.Rect          `json:"boundingBox"`
	Strokes     []state.Stroke      `json:"strokes"`
	EraserLines []state.Stroke      `json:"eraserLines"`
	Objects     []state.SceneObject `json:"objects,omitempty"`
}

func NewDocument(s *state.Session) Document {
	return Document{
		Version:     DocumentVersion,
		BoundingBox: s.BoundingBox().Rect(),
		Strokes:     s.Strokes(),
		EraserLines: s.EraserLines(),
		Objects:     s.Objects(),
	}
}

func WriteDocument(w io.Writer, s *state.Session) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(s)); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

func ReadDocument(r io.Reader) (Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}
	if d.Version != DocumentVersion {
		return Document{}, fmt.Errorf("%w: version %d", ErrBadDocument, d.Version)
	}
	for _, list := range [][]state.Stroke{d.Strokes, d.EraserLines} {
		for _, st := range list {
			if len(st.Points) == 0 || len(st.Points)%2 != 0 || st.StrokeWidth <= 0 {
				return Document{}, fmt.Errorf("%w: stroke %q", ErrBadDocument, st.ID)
			}
		}
	}
	return d, nil
}

// Apply loads the strokes and bounding box into s. Objects are left to the
// caller, which has to fetch their images.
func (d Document) Apply(s *state.Session) {
	s.LoadStrokes(d.Strokes, d.EraserLines)
	if !d.BoundingBox.Empty() {
		s.SetBoundingBoxDimensions(state.Dimensions{Width: d.BoundingBox.Width, Height: d.BoundingBox.Height})
		s.SetBoundingBoxPosition(state.Vec2{X: d.BoundingBox.X, Y: d.BoundingBox.Y})
	}
}
