package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"InpaintBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession() *state.Session {
	return state.NewSession(state.SessionConfig{
		Viewport:    state.Dimensions{Width: 200, Height: 200},
		BoundingBox: state.Dimensions{Width: 64, Height: 64},
	})
}

func dot(s *state.Session, tool state.Tool, x, y, width float64) {
	s.BeginStroke(tool, width, state.Vec2{X: x, Y: y})
	s.AppendPoint(state.Vec2{X: x, Y: y})
	s.EndStroke()
}

func gray(img image.Image, x, y int) uint8 {
	return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
}

func TestMask(t *testing.T) {
	s := newSession()
	dot(s, state.ToolBrush, 10, 10, 4)
	dot(s, state.ToolBrush, 40, 40, 6)
	dot(s, state.ToolMaskEraser, 40, 40, 2)

	img, err := Mask(s)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(64, 64), img.Bounds().Size())
	assert.Equal(t, uint8(255), gray(img, 10, 10))
	assert.Equal(t, uint8(0), gray(img, 30, 10))
	assert.Equal(t, uint8(0), gray(img, 40, 40), "erased from the mask")
	assert.Equal(t, uint8(255), gray(img, 40+4, 40))
}

func TestMaskFollowsBoundingBox(t *testing.T) {
	s := newSession()
	dot(s, state.ToolBrush, 110, 110, 4)
	require.True(t, s.SetBoundingBoxPosition(state.Vec2{X: 100, Y: 100}))

	img, err := Mask(s)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), gray(img, 10, 10))
}

func TestMaskIgnoresEraserLines(t *testing.T) {
	s := newSession()
	dot(s, state.ToolEraser, 10, 10, 4)
	_, err := Mask(s)
	assert.ErrorIs(t, err, ErrNoStrokes)
}

func TestWriteMaskPNG(t *testing.T) {
	s := newSession()
	dot(s, state.ToolBrush, 10, 10, 4)
	var buf bytes.Buffer
	require.NoError(t, WriteMaskPNG(&buf, s))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), gray(img, 10, 10))
}

func TestTint(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 2, 1))
	mask.SetGray(0, 0, color.Gray{Y: 255})
	out := tint(mask, state.RGBA{R: 255, G: 90, B: 90, A: 0.5})
	assert.Equal(t, color.NRGBA{R: 255, G: 90, B: 90, A: 128}, out.NRGBAAt(0, 0))
	assert.Zero(t, out.NRGBAAt(1, 0).A)
}

func TestPDF(t *testing.T) {
	s := newSession()
	composite := image.NewRGBA(image.Rect(0, 0, 64, 64))

	var empty bytes.Buffer
	require.NoError(t, PDF(&empty, s, nil))
	assert.True(t, strings.HasPrefix(empty.String(), "%PDF-"))

	dot(s, state.ToolBrush, 10, 10, 4)
	var full bytes.Buffer
	require.NoError(t, PDF(&full, s, composite))
	assert.True(t, strings.HasPrefix(full.String(), "%PDF-"))
	assert.Greater(t, full.Len(), empty.Len())
}

func TestDocumentRoundTrip(t *testing.T) {
	s := newSession()
	dot(s, state.ToolBrush, 10, 10, 4)
	dot(s, state.ToolEraser, 20, 20, 3)
	require.True(t, s.SetBoundingBoxPosition(state.Vec2{X: 32, Y: 16}))

	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, s))
	assert.Contains(t, buf.String(), `"tool": "eraser"`)

	doc, err := ReadDocument(&buf)
	require.NoError(t, err)

	other := newSession()
	doc.Apply(other)
	assert.Equal(t, s.Strokes(), other.Strokes())
	assert.Equal(t, s.EraserLines(), other.EraserLines())
	assert.Equal(t, state.Vec2{X: 32, Y: 16}, other.BoundingBox().Position)
}

func TestReadDocumentRejects(t *testing.T) {
	for name, data := range map[string]string{
		"not json":    `{`,
		"old version": `{"version": 0}`,
		"odd points":  `{"version": 1, "strokes": [{"id": "a", "tool": "brush", "points": [1, 2, 3], "strokeWidth": 2}]}`,
		"no width":    `{"version": 1, "eraserLines": [{"id": "a", "tool": "eraser", "points": [1, 2]}]}`,
		"bad tool":    `{"version": 1, "strokes": [{"id": "a", "tool": "pencil", "points": [1, 2], "strokeWidth": 2}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadDocument(strings.NewReader(data))
			assert.ErrorIs(t, err, ErrBadDocument)
		})
	}
}
