// Package export writes the canvas out as a binary mask PNG, a PDF sheet or
// a JSON stroke document.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"InpaintBoard/internal/canvas"
	"InpaintBoard/internal/state"

	"github.com/gogpu/gg"
)

var (
	ErrNoStrokes = errors.New("export: no mask strokes")
	ErrEmptyBox  = errors.New("export: bounding box has no area")
)

// boxTransform maps logical coordinates into the bounding box at unit
// scale.
func boxTransform(s *state.Session) (state.ViewTransform, int, int, error) {
	r := s.BoundingBox().Rect()
	w, h := int(math.Round(r.Width)), int(math.Round(r.Height))
	if w <= 0 || h <= 0 {
		return state.ViewTransform{}, 0, 0, ErrEmptyBox
	}
	return state.ViewTransform{
		Scale:    1,
		Offset:   state.Vec2{X: -r.X, Y: -r.Y},
		Viewport: state.Dimensions{Width: r.Width, Height: r.Height},
	}, w, h, nil
}

// Mask renders the mask strokes inside the bounding box as white on black.
// Strokes are drawn at their rendered width, twice the stored one.
func Mask(s *state.Session) (image.Image, error) {
	strokes := s.Strokes()
	if len(strokes) == 0 {
		return nil, ErrNoStrokes
	}
	t, w, h, err := boxTransform(s)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(w, h)
	defer dc.Close()
	dc.ClearWithColor(gg.Black)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	for _, st := range strokes {
		if st.Tool.Subtractive() {
			dc.SetColor(color.Black)
		} else {
			dc.SetColor(color.White)
		}
		if err := canvas.DrawStroke(dc, t, st, 2); err != nil {
			return nil, fmt.Errorf("draw stroke %s: %w", st.ID, err)
		}
	}
	return dc.Image(), nil
}

// WriteMaskPNG encodes Mask as PNG.
func WriteMaskPNG(w io.Writer, s *state.Session) error {
	img, err := Mask(s)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode mask: %w", err)
	}
	return nil
}

// tint turns a white-on-black mask into c with the mask as coverage.
func tint(mask image.Image, c state.RGBA) *image.NRGBA {
	b := mask.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	base := c.NRGBA()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v, _, _, _ := mask.At(b.Min.X+x, b.Min.Y+y).RGBA()
			a := uint32(base.A) * (v >> 8) / 255
			out.SetNRGBA(x, y, color.NRGBA{R: base.R, G: base.G, B: base.B, A: uint8(a)})
		}
	}
	return out
}
