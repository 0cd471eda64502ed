package state

import "math"

// Zoom defaults. ScaleBy is the per-unit wheel factor: a negative wheel delta
// zooms in.
const (
	ScaleBy  = 0.999
	MinScale = 0.1
	MaxScale = 20.0
)

// ZoomBounds bounds the view scale and sets the per-unit zoom factor.
type ZoomBounds struct {
	Min  float64 `toml:"min_scale"`
	Max  float64 `toml:"max_scale"`
	Step float64 `toml:"scale_by"`
}

func DefaultZoomBounds() ZoomBounds {
	return ZoomBounds{Min: MinScale, Max: MaxScale, Step: ScaleBy}
}

func (b ZoomBounds) orDefault() ZoomBounds {
	if b.Min <= 0 || b.Max < b.Min || b.Step <= 0 {
		return DefaultZoomBounds()
	}
	return b
}

// Clamp limits scale to the bounds.
func (b ZoomBounds) Clamp(scale float64) float64 {
	b = b.orDefault()
	return math.Min(b.Max, math.Max(b.Min, scale))
}

// ViewTransform maps logical canvas coordinates to the viewport:
// viewport = logical*Scale + Offset.
type ViewTransform struct {
	Scale    float64
	Offset   Vec2
	Viewport Dimensions
	Bounds   ZoomBounds
}

func NewViewTransform(viewport Dimensions, bounds ZoomBounds) ViewTransform {
	return ViewTransform{Scale: 1, Viewport: viewport, Bounds: bounds.orDefault()}
}

// ToLogical converts a raw viewport position to logical canvas coordinates.
func (t ViewTransform) ToLogical(raw Vec2) Vec2 {
	return Vec2{
		X: (raw.X - t.Offset.X) / t.Scale,
		Y: (raw.Y - t.Offset.Y) / t.Scale,
	}
}

// ToViewport is the inverse of ToLogical.
func (t ViewTransform) ToViewport(p Vec2) Vec2 {
	return Vec2{
		X: p.X*t.Scale + t.Offset.X,
		Y: p.Y*t.Scale + t.Offset.Y,
	}
}

// VisibleLogical returns the logical rectangle covered by the viewport.
func (t ViewTransform) VisibleLogical() Rect {
	return Rect{
		X:      -t.Offset.X / t.Scale,
		Y:      -t.Offset.Y / t.Scale,
		Width:  t.Viewport.Width / t.Scale,
		Height: t.Viewport.Height / t.Scale,
	}
}

// Zoomed returns the transform after a wheel gesture of delta units over
// pointer. The logical point under pointer stays under pointer, including
// when the scale is clamped.
func (t ViewTransform) Zoomed(pointer Vec2, delta float64, ctrlHeld bool) ViewTransform {
	b := t.Bounds.orDefault()
	anchor := t.ToLogical(pointer)

	// Trackpad pinch arrives as a ctrl+wheel with the opposite sign.
	if ctrlHeld {
		delta = -delta
	}

	next := t
	next.Bounds = b
	next.Scale = b.Clamp(t.Scale * math.Pow(b.Step, delta))
	next.Offset = Vec2{
		X: pointer.X - anchor.X*next.Scale,
		Y: pointer.Y - anchor.Y*next.Scale,
	}
	return next
}
