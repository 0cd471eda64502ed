package state

import (
	"fmt"
	"image/color"
	"math"
)

// Vec2 is a position or offset, in viewport or logical canvas space
// depending on context.
type Vec2 struct{ X, Y float64 }

type Dimensions struct{ Width, Height float64 }

// Tool selects which stroke list receives new input and how strokes are
// blended.
type Tool int

const (
	ToolBrush      Tool = iota // paints the mask
	ToolEraser                 // removes from the composed image
	ToolMaskEraser             // removes from the mask
)

// StrokeList identifies one of the two ordered stroke collections.
type StrokeList int

const (
	ListMask StrokeList = iota
	ListEraser
)

func (t Tool) String() string {
	switch t {
	case ToolBrush:
		return "brush"
	case ToolEraser:
		return "eraser"
	case ToolMaskEraser:
		return "maskEraser"
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// Valid reports whether t is one of the declared tools.
func (t Tool) Valid() bool {
	switch t {
	case ToolBrush, ToolEraser, ToolMaskEraser:
		return true
	}
	return false
}

// List returns the stroke list a stroke started with t is appended to.
func (t Tool) List() StrokeList {
	switch t {
	case ToolEraser:
		return ListEraser
	case ToolBrush, ToolMaskEraser:
		return ListMask
	}
	return ListMask
}

// Subtractive reports whether strokes drawn with t remove content.
func (t Tool) Subtractive() bool {
	switch t {
	case ToolEraser, ToolMaskEraser:
		return true
	case ToolBrush:
		return false
	}
	return false
}

func (t Tool) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("state: unknown tool %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Tool) UnmarshalText(b []byte) error {
	for _, c := range []Tool{ToolBrush, ToolEraser, ToolMaskEraser} {
		if c.String() == string(b) {
			*t = c
			return nil
		}
	}
	return fmt.Errorf("state: unknown tool %q", b)
}

func (l StrokeList) String() string {
	switch l {
	case ListMask:
		return "mask"
	case ListEraser:
		return "eraser"
	}
	return fmt.Sprintf("StrokeList(%d)", int(l))
}

// Stroke is a freehand polyline. Points holds flattened x,y pairs in draw
// order. StrokeWidth is half the brush size, so renderers draw it doubled.
// ObjectsBelow is set on eraser lines: the number of scene objects placed
// before the line was drawn, which are the only ones it cuts.
type Stroke struct {
	ID           string    `json:"id"`
	Tool         Tool      `json:"tool"`
	Points       []float64 `json:"points"`
	StrokeWidth  float64   `json:"strokeWidth"`
	ObjectsBelow int       `json:"objectsBelow,omitempty"`
}

// Len returns the number of points in the stroke.
func (s Stroke) Len() int { return len(s.Points) / 2 }

// Point returns the i-th point.
func (s Stroke) Point(i int) Vec2 {
	return Vec2{X: s.Points[2*i], Y: s.Points[2*i+1]}
}

// Last returns the most recently appended point.
func (s Stroke) Last() (Vec2, bool) {
	if s.Len() == 0 {
		return Vec2{}, false
	}
	return s.Point(s.Len() - 1), true
}

// IsDot reports whether every point of the stroke coincides, which is how a
// click without drag is stored.
func (s Stroke) IsDot() bool {
	if s.Len() == 0 {
		return false
	}
	first := s.Point(0)
	for i := 1; i < s.Len(); i++ {
		if s.Point(i) != first {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned box of the stroke, padded by its width.
func (s Stroke) Bounds() Rect {
	if s.Len() == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i < s.Len(); i++ {
		p := s.Point(i)
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	pad := s.StrokeWidth
	return Rect{X: minX - pad, Y: minY - pad, Width: maxX - minX + 2*pad, Height: maxY - minY + 2*pad}
}

func (s Stroke) clone() Stroke {
	c := s
	c.Points = append([]float64(nil), s.Points...)
	return c
}

func cloneStrokes(in []Stroke) []Stroke {
	out := make([]Stroke, len(in))
	for i, s := range in {
		out[i] = s.clone()
	}
	return out
}

// RGBA is a straight-alpha color with an opacity in [0, 1].
type RGBA struct {
	R uint8   `toml:"r" json:"r"`
	G uint8   `toml:"g" json:"g"`
	B uint8   `toml:"b" json:"b"`
	A float64 `toml:"a" json:"a"`
}

// NRGBA converts c to a standard library color.
func (c RGBA) NRGBA() color.NRGBA {
	a := math.Max(0, math.Min(1, c.A))
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(a * 255))}
}

func (c RGBA) String() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%g)", c.R, c.G, c.B, c.A)
}

// SceneObject is an image placed on the canvas at a logical position, used to
// compose outpainting scenes.
type SceneObject struct {
	URL string  `json:"url"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

// ImageRef identifies the base image supplied by the image provider.
type ImageRef struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type OpType string

const (
	OpInsertStroke OpType = "insert_stroke"
	OpRemoveStroke OpType = "remove_stroke"
	OpClearMask    OpType = "clear_mask"
)

// Op is a replicated change to the stroke lists. An insert lands in front of
// the stroke named by Before, or at the end of the list. A remove carries
// only the stroke ID.
type Op struct {
	Type    OpType     `json:"type"`
	List    StrokeList `json:"list"`
	Stroke  *Stroke    `json:"stroke,omitempty"`
	Before  string     `json:"before,omitempty"`
	Lamport uint64     `json:"lamport"`
	Site    string     `json:"site"`
}

// Key identifies an op for de-duplication.
func (o Op) Key() string {
	if o.Type == OpInsertStroke && o.Stroke != nil {
		return o.Stroke.ID
	}
	return fmt.Sprintf("%s-%s-%d", o.Type, o.Site, o.Lamport)
}
