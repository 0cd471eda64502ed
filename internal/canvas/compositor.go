package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"InpaintBoard/internal/state"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// Layer names one render pass of the compositor, back to front.
type Layer int

const (
	LayerImage Layer = iota
	LayerMask
	LayerBoundingBox
	layerCount
)

func (l Layer) String() string {
	switch l {
	case LayerImage:
		return "image"
	case LayerMask:
		return "mask"
	case LayerBoundingBox:
		return "boundingBox"
	}
	return fmt.Sprintf("Layer(%d)", int(l))
}

// Colors used by the overlay passes.
var (
	overlayColor   = color.NRGBA{A: 102}
	outlineColor   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	handleColor    = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	handleHotColor = color.NRGBA{R: 64, G: 160, B: 255, A: 255}
	previewDark    = color.NRGBA{A: 255}
	previewLight   = color.NRGBA{R: 255, G: 255, B: 255, A: 160}
	checkerLight   = color.RGBA{R: 102, G: 102, B: 102, A: 255}
	checkerDark    = color.RGBA{R: 64, G: 64, B: 64, A: 255}
	backdropColor  = color.RGBA{R: 32, G: 32, B: 32, A: 255}
)

const checkerCell = 16

// layerKey is the slice of session revisions a layer reads.
type layerKey struct {
	revs [7]uint64
	w, h int
}

type layerCache struct {
	key     layerKey
	img     *image.RGBA
	valid   bool
	renders int
}

type alphaCache struct {
	key   layerKey
	a     *image.Alpha
	valid bool
}

type imageCache struct {
	key   layerKey
	img   *image.RGBA
	valid bool
}

// Compositor renders a session as three independent layers over a
// backdrop. Each layer is cached on the revisions it reads, so appending a
// mask point re-renders the mask layer alone.
type Compositor struct {
	s        *state.Session
	layers   [layerCount]layerCache
	strokes  alphaCache
	bgView   imageCache
	checker  *image.RGBA
	backdrop *image.RGBA
}

func NewCompositor(s *state.Session) *Compositor {
	return &Compositor{s: s}
}

func (c *Compositor) size() (int, int) {
	vp := c.s.Transform().Viewport
	return int(math.Ceil(vp.Width)), int(math.Ceil(vp.Height))
}

// Renders returns how many times layer l has been rendered.
func (c *Compositor) Renders(l Layer) int { return c.layers[l].renders }

// Compose renders the visible layers over the backdrop.
func (c *Compositor) Compose() (*image.RGBA, error) {
	w, h := c.size()
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0)), nil
	}
	d := Derive(c.s)
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Rect, c.backdropFor(w, h), image.Point{}, draw.Src)

	visible := [layerCount]bool{
		LayerImage:       d.ImageLayerVisible,
		LayerMask:        d.MaskLayerVisible,
		LayerBoundingBox: d.BoundingBoxLayerVisible,
	}
	for l := Layer(0); l < layerCount; l++ {
		if !visible[l] {
			continue
		}
		img, err := c.Layer(l)
		if err != nil {
			return nil, fmt.Errorf("compose %s layer: %w", l, err)
		}
		draw.Draw(out, out.Rect, img, image.Point{}, draw.Over)
	}
	return out, nil
}

// Layer returns the current render of l, re-rendering it only when the
// revisions it depends on have moved. The result must not be modified.
func (c *Compositor) Layer(l Layer) (*image.RGBA, error) {
	w, h := c.size()
	key := c.keyFor(l, w, h)
	lc := &c.layers[l]
	if lc.valid && lc.key == key {
		return lc.img, nil
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var err error
	switch l {
	case LayerImage:
		err = c.renderImage(img)
	case LayerMask:
		err = c.renderMask(img)
	case LayerBoundingBox:
		err = c.renderBoundingBox(img)
	default:
		err = fmt.Errorf("unknown layer %d", int(l))
	}
	if err != nil {
		lc.valid = false
		return nil, err
	}
	lc.key, lc.img, lc.valid = key, img, true
	lc.renders++
	return img, nil
}

func (c *Compositor) keyFor(l Layer, w, h int) layerKey {
	r := c.s.Revisions()
	k := layerKey{w: w, h: h}
	switch l {
	case LayerImage:
		k.revs = [7]uint64{r.Background, r.Objects, r.Eraser, r.Transform}
	case LayerMask:
		k.revs = [7]uint64{r.Strokes, r.Cursor, r.Transform, r.Background, r.Options, r.BoundingBox}
	case LayerBoundingBox:
		k.revs = [7]uint64{r.BoundingBox, r.Transform, r.Options}
	}
	return k
}

func (c *Compositor) backdropFor(w, h int) *image.RGBA {
	if c.s.Options().ShowCheckerboard {
		if c.checker == nil || c.checker.Rect.Dx() != w || c.checker.Rect.Dy() != h {
			c.checker = checkerboard(w, h)
		}
		return c.checker
	}
	if c.backdrop == nil || c.backdrop.Rect.Dx() != w || c.backdrop.Rect.Dy() != h {
		c.backdrop = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(c.backdrop, c.backdrop.Rect, image.NewUniform(backdropColor), image.Point{}, draw.Src)
	}
	return c.backdrop
}

func checkerboard(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += checkerCell {
		for x := 0; x < w; x += checkerCell {
			col := checkerLight
			if (x/checkerCell+y/checkerCell)%2 == 1 {
				col = checkerDark
			}
			cell := image.Rect(x, y, x+checkerCell, y+checkerCell).Intersect(img.Rect)
			draw.Draw(img, cell, image.NewUniform(col), image.Point{}, draw.Src)
		}
	}
	return img
}

// placeImage draws src with its top-left corner at logical position at.
func placeImage(dst *image.RGBA, src image.Image, at state.Vec2, t state.ViewTransform) {
	b := src.Bounds()
	sc := t.Scale
	s2d := f64.Aff3{
		sc, 0, t.Offset.X + (at.X-float64(b.Min.X))*sc,
		0, sc, t.Offset.Y + (at.Y-float64(b.Min.Y))*sc,
	}
	var interp xdraw.Transformer = xdraw.ApproxBiLinear
	if sc >= 2 {
		interp = xdraw.NearestNeighbor
	}
	interp.Transform(dst, s2d, src, b, xdraw.Over, nil)
}

func (c *Compositor) renderImage(dst *image.RGBA) error {
	return c.drawImageLayer(dst, c.s.Transform())
}

// ImageRegion renders the image layer for the logical rectangle r at unit
// scale, bypassing the layer cache. Exports use it to flatten the bounding
// box.
func (c *Compositor) ImageRegion(r state.Rect) (*image.RGBA, error) {
	w, h := int(math.Round(r.Width)), int(math.Round(r.Height))
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	if dst.Rect.Empty() {
		return dst, nil
	}
	t := state.ViewTransform{
		Scale:    1,
		Offset:   state.Vec2{X: -r.X, Y: -r.Y},
		Viewport: state.Dimensions{Width: r.Width, Height: r.Height},
	}
	if err := c.drawImageLayer(dst, t); err != nil {
		return nil, err
	}
	return dst, nil
}

// drawImageLayer draws the base image and the scene objects in placement
// order. Each eraser line removes what was placed before it and leaves later
// objects whole. The source images are never touched.
func (c *Compositor) drawImageLayer(dst *image.RGBA, t state.ViewTransform) error {
	if bg := c.s.Background(); bg != nil {
		placeImage(dst, bg, state.Vec2{}, t)
	}
	objs := c.s.Objects()
	lines := c.s.EraserLines()
	for i := 0; i <= len(objs); i++ {
		if err := eraseLines(dst, t, linesOver(lines, i, len(objs))); err != nil {
			return err
		}
		if i == len(objs) {
			break
		}
		if img := c.s.ObjectImage(objs[i].URL); img != nil {
			placeImage(dst, img, state.Vec2{X: objs[i].X, Y: objs[i].Y}, t)
		}
	}
	return nil
}

// linesOver returns the eraser lines drawn when exactly n of total objects
// were placed. Counts outside [0, total] are clamped.
func linesOver(lines []state.Stroke, n, total int) []state.Stroke {
	var out []state.Stroke
	for _, l := range lines {
		if min(max(l.ObjectsBelow, 0), total) == n {
			out = append(out, l)
		}
	}
	return out
}

func eraseLines(dst *image.RGBA, t state.ViewTransform, lines []state.Stroke) error {
	if len(lines) == 0 {
		return nil
	}
	cov, err := strokeCoverage(dst.Rect.Dx(), dst.Rect.Dy(), t, lines, 2)
	if err != nil {
		return fmt.Errorf("rasterize eraser lines: %w", err)
	}
	destinationOut(dst, cov)
	return nil
}

// maskCoverage accumulates the mask strokes in order: brush strokes paint,
// mask eraser strokes remove.
func (c *Compositor) maskCoverage(w, h int) (*image.Alpha, error) {
	r := c.s.Revisions()
	key := layerKey{revs: [7]uint64{r.Strokes, r.Transform}, w: w, h: h}
	if c.strokes.valid && c.strokes.key == key {
		return c.strokes.a, nil
	}
	t := c.s.Transform()
	acc := image.NewAlpha(image.Rect(0, 0, w, h))
	strokes := c.s.Strokes()
	// Consecutive strokes of the same kind share one raster pass.
	for i := 0; i < len(strokes); {
		j := i + 1
		sub := strokes[i].Tool.Subtractive()
		for j < len(strokes) && strokes[j].Tool.Subtractive() == sub {
			j++
		}
		cov, err := strokeCoverage(w, h, t, strokes[i:j], 2)
		if err != nil {
			return nil, fmt.Errorf("rasterize mask strokes: %w", err)
		}
		if sub {
			eraseAlpha(acc, cov)
		} else {
			paintAlpha(acc, cov)
		}
		i = j
	}
	c.strokes = alphaCache{key: key, a: acc, valid: true}
	return acc, nil
}

func (c *Compositor) backgroundView(w, h int) *image.RGBA {
	r := c.s.Revisions()
	key := layerKey{revs: [7]uint64{r.Background, r.Transform}, w: w, h: h}
	if c.bgView.valid && c.bgView.key == key {
		return c.bgView.img
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if bg := c.s.Background(); bg != nil {
		placeImage(img, bg, state.Vec2{}, c.s.Transform())
	}
	c.bgView = imageCache{key: key, img: img, valid: true}
	return img
}

func (c *Compositor) renderMask(dst *image.RGBA) error {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	o := c.s.Options()
	t := c.s.Transform()

	base, err := c.maskCoverage(w, h)
	if err != nil {
		return err
	}
	cov := cloneAlpha(base)

	d := Derive(c.s)
	cursor, _ := c.s.Cursor()
	at := t.ToViewport(cursor)
	radius := o.BrushSize / 2 * t.Scale
	if d.BrushPreviewVisible {
		dot, err := coverage(w, h, func(dc *gg.Context) error {
			dc.DrawCircle(at.X, at.Y, radius)
			return dc.Fill()
		})
		if err != nil {
			return fmt.Errorf("rasterize brush preview: %w", err)
		}
		if o.Tool == state.ToolMaskEraser {
			eraseAlpha(cov, dot)
		} else {
			paintAlpha(cov, dot)
		}
	}

	draw.Draw(dst, dst.Rect, keepWhere(image.NewUniform(o.MaskColor.NRGBA()), cov), image.Point{}, draw.Src)

	if d.BrushPreviewVisible {
		if err := c.previewOutline(dst, at, radius); err != nil {
			return err
		}
	}

	bg := c.s.Background()
	switch {
	case bg == nil:
	case o.InvertMask:
		draw.Draw(dst, dst.Rect, keepWhere(c.backgroundView(w, h), alphaOf(dst)), image.Point{}, draw.Src)
	case o.ShowCheckerboard:
		draw.Draw(dst, dst.Rect, keepWhere(c.backgroundView(w, h), invertAlpha(alphaOf(dst))), image.Point{}, draw.Src)
	}
	return nil
}

func (c *Compositor) previewOutline(dst *image.RGBA, at state.Vec2, radius float64) error {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	rings := []struct {
		r   float64
		col color.Color
	}{
		{radius, previewDark},
		{radius + 1, previewLight},
	}
	for _, ring := range rings {
		cov, err := coverage(w, h, func(dc *gg.Context) error {
			dc.SetLineWidth(1)
			dc.DrawCircle(at.X, at.Y, ring.r)
			return dc.Stroke()
		})
		if err != nil {
			return fmt.Errorf("rasterize brush outline: %w", err)
		}
		fillCoverage(dst, cov, ring.col)
	}
	return nil
}

func (c *Compositor) renderBoundingBox(dst *image.RGBA) error {
	o := c.s.Options()
	if !o.ShowBoundingBox {
		return nil
	}
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	t := c.s.Transform()
	b := c.s.BoundingBox()
	r := b.Rect()
	tl := t.ToViewport(state.Vec2{X: r.X, Y: r.Y})
	br := t.ToViewport(state.Vec2{X: r.X + r.Width, Y: r.Y + r.Height})

	if o.ShowBoundingBoxFill {
		draw.Draw(dst, dst.Rect, image.NewUniform(overlayColor), image.Point{}, draw.Src)
		hole := image.Rect(int(math.Round(tl.X)), int(math.Round(tl.Y)), int(math.Round(br.X)), int(math.Round(br.Y)))
		draw.Draw(dst, hole.Intersect(dst.Rect), image.Transparent, image.Point{}, draw.Src)
	}

	outline, err := coverage(w, h, func(dc *gg.Context) error {
		dc.SetLineWidth(1)
		if b.Locked {
			dc.SetDash(4, 4)
		}
		dc.DrawRectangle(tl.X+0.5, tl.Y+0.5, br.X-tl.X-1, br.Y-tl.Y-1)
		return dc.Stroke()
	})
	if err != nil {
		return fmt.Errorf("rasterize bounding box: %w", err)
	}
	fillCoverage(dst, outline, outlineColor)

	if !b.Locked {
		hr := ResizeHandle(b, t)
		hv := t.ToViewport(state.Vec2{X: hr.X, Y: hr.Y})
		handle := image.Rect(int(hv.X), int(hv.Y), int(hv.X+HandleSize), int(hv.Y+HandleSize))
		col := handleColor
		if b.MouseOver || b.Transforming {
			col = handleHotColor
		}
		draw.Draw(dst, handle.Intersect(dst.Rect), image.NewUniform(col), image.Point{}, draw.Over)
	}

	label := Derive(c.s).Status
	y := int(tl.Y) - 4
	if y < 13 {
		y = int(tl.Y) + 15
	}
	fd := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(outlineColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(tl.X)+4, y),
	}
	fd.DrawString(label)
	return nil
}
