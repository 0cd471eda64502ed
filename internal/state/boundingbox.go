package state

import "math"

// BoundingBoxStep is the granularity bounding box dimensions snap to.
const BoundingBoxStep = 64

// Rect is an axis-aligned rectangle in logical canvas space.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Canon returns r with non-negative width and height.
func (r Rect) Canon() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

func (r Rect) Overlaps(o Rect) bool {
	return !(r.X+r.Width < o.X || o.X+o.Width < r.X ||
		r.Y+r.Height < o.Y || o.Y+o.Height < r.Y)
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.Width, o.X+o.Width)
	maxY := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// BoundingBox is the region of interest handed to downstream processing.
// Transforming, Moving and MouseOver describe the interaction in progress on
// its handles; while the box is transformed or moved no strokes are drawn.
type BoundingBox struct {
	Position     Vec2
	Dimensions   Dimensions
	Locked       bool
	Transforming bool
	Moving       bool
	MouseOver    bool
}

func NewBoundingBox(dims Dimensions) BoundingBox {
	return BoundingBox{Dimensions: snapDimensions(dims)}
}

func (b BoundingBox) Rect() Rect {
	return Rect{X: b.Position.X, Y: b.Position.Y, Width: b.Dimensions.Width, Height: b.Dimensions.Height}
}

// IsModifying reports whether the box is being transformed or moved.
func (b BoundingBox) IsModifying() bool {
	return b.Transforming || b.Moving
}

func snapDimensions(d Dimensions) Dimensions {
	snap := func(v float64) float64 {
		v = math.Floor(v/BoundingBoxStep) * BoundingBoxStep
		return math.Max(BoundingBoxStep, v)
	}
	return Dimensions{Width: snap(d.Width), Height: snap(d.Height)}
}
