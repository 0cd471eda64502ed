package canvas

import (
	"image"
	"image/color"
	"image/draw"

	"InpaintBoard/internal/state"

	"github.com/gogpu/gg"
)

// coverage runs fn on a scratch gg context and returns the alpha it left
// behind. Only coverage is taken from gg; color is applied by the caller.
func coverage(w, h int, fn func(dc *gg.Context) error) (*image.Alpha, error) {
	dc := gg.NewContext(w, h)
	defer dc.Close()
	dc.SetColor(color.White)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	if err := fn(dc); err != nil {
		return nil, err
	}
	return alphaOf(dc.Image()), nil
}

// strokeCoverage rasterizes strokes in viewport space. Stored widths are
// multiplied by widthScale and by the view scale.
func strokeCoverage(w, h int, t state.ViewTransform, strokes []state.Stroke, widthScale float64) (*image.Alpha, error) {
	return coverage(w, h, func(dc *gg.Context) error {
		for _, st := range strokes {
			if err := DrawStroke(dc, t, st, widthScale); err != nil {
				return err
			}
		}
		return nil
	})
}

// DrawStroke strokes st onto dc with the current color, mapping its points
// through t. Single-point and zero-length strokes are drawn as filled dots.
func DrawStroke(dc *gg.Context, t state.ViewTransform, st state.Stroke, widthScale float64) error {
	lw := st.StrokeWidth * widthScale * t.Scale
	if st.Len() == 0 || lw <= 0 {
		return nil
	}
	// A zero-length path strokes to nothing, so dots are filled explicitly.
	if st.IsDot() {
		p := t.ToViewport(st.Point(0))
		dc.DrawCircle(p.X, p.Y, lw/2)
		return dc.Fill()
	}
	dc.SetLineWidth(lw)
	p := t.ToViewport(st.Point(0))
	dc.MoveTo(p.X, p.Y)
	for i := 1; i < st.Len(); i++ {
		p = t.ToViewport(st.Point(i))
		dc.LineTo(p.X, p.Y)
	}
	return dc.Stroke()
}

func alphaOf(img image.Image) *image.Alpha {
	b := img.Bounds()
	out := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			src := rgba.Pix[y*rgba.Stride:]
			dst := out.Pix[y*out.Stride:]
			for x := 0; x < b.Dx(); x++ {
				dst[x] = src[4*x+3]
			}
		}
		return out
	}
	m := gg.NewMaskFromAlpha(img)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Pix[y*out.Stride+x] = m.At(x, y)
		}
	}
	return out
}

func cloneAlpha(a *image.Alpha) *image.Alpha {
	c := image.NewAlpha(a.Rect)
	copy(c.Pix, a.Pix)
	return c
}

func mul255(a, b uint8) uint8 {
	return uint8((uint32(a)*uint32(b) + 127) / 255)
}

// paintAlpha accumulates cov onto dst with source-over.
func paintAlpha(dst, cov *image.Alpha) {
	for i, c := range cov.Pix {
		d := dst.Pix[i]
		dst.Pix[i] = d + c - mul255(d, c)
	}
}

// eraseAlpha removes cov from dst with destination-out.
func eraseAlpha(dst, cov *image.Alpha) {
	for i, c := range cov.Pix {
		dst.Pix[i] = mul255(dst.Pix[i], 255-c)
	}
}

func invertAlpha(a *image.Alpha) *image.Alpha {
	c := image.NewAlpha(a.Rect)
	for i, v := range a.Pix {
		c.Pix[i] = 255 - v
	}
	return c
}

// destinationOut clears dst wherever cov is set. dst is premultiplied, so
// every channel scales by the remaining coverage.
func destinationOut(dst *image.RGBA, cov *image.Alpha) {
	b := dst.Rect
	for y := 0; y < b.Dy(); y++ {
		row := dst.Pix[y*dst.Stride:]
		crow := cov.Pix[y*cov.Stride:]
		for x := 0; x < b.Dx(); x++ {
			keep := 255 - crow[x]
			if keep == 255 {
				continue
			}
			px := row[4*x : 4*x+4]
			px[0] = mul255(px[0], keep)
			px[1] = mul255(px[1], keep)
			px[2] = mul255(px[2], keep)
			px[3] = mul255(px[3], keep)
		}
	}
}

// keepWhere returns src restricted to the coverage of m, replacing whatever
// the layer held: the source-in blend against a layer whose alpha is m.
func keepWhere(src image.Image, m *image.Alpha) *image.RGBA {
	out := image.NewRGBA(m.Rect)
	draw.DrawMask(out, out.Rect, src, image.Point{}, m, image.Point{}, draw.Src)
	return out
}

// fillCoverage paints c over dst wherever cov is set.
func fillCoverage(dst *image.RGBA, cov *image.Alpha, c color.Color) {
	draw.DrawMask(dst, dst.Rect, image.NewUniform(c), image.Point{}, cov, image.Point{}, draw.Over)
}
