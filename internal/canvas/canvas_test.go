package canvas

import (
	"InpaintBoard/internal/state"
)

type fakeSurface struct {
	pos   state.Vec2
	over  bool
	ready bool
}

func (f *fakeSurface) PointerPosition() (state.Vec2, bool) { return f.pos, f.over }
func (f *fakeSurface) MaskReady() bool                     { return f.ready }

func (f *fakeSurface) at(x, y float64) {
	f.pos = state.Vec2{X: x, Y: y}
	f.over = true
}

func newTestCanvas(opts ...func(*state.Options)) (*state.Session, *fakeSurface, *Controller) {
	o := state.DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	s := state.NewSession(state.SessionConfig{
		Viewport: state.Dimensions{Width: 100, Height: 100},
		Options:  o,
	})
	surf := &fakeSurface{ready: true}
	return s, surf, NewController(Handle{Session: s, Surface: surf})
}
