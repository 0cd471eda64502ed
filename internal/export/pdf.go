package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"InpaintBoard/internal/state"

	"github.com/jung-kurt/gofpdf"
)

// PDF writes a sheet the size of the bounding box: the flattened image
// region with the mask tinted over it, then the binary mask on a second
// page. composite may be nil, and a session without strokes yields a single
// page.
func PDF(w io.Writer, s *state.Session, composite image.Image) error {
	mask, err := Mask(s)
	if err != nil && !errors.Is(err, ErrNoStrokes) {
		return err
	}
	d := s.BoundingBox().Dimensions

	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: d.Width, Ht: d.Height},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.SetCreator("InpaintBoard", true)
	p.SetTitle(fmt.Sprintf("Canvas %gx%g", d.Width, d.Height), true)

	p.AddPage()
	if composite != nil {
		if err := placePNG(p, "composite", composite, d); err != nil {
			return err
		}
	}
	if mask != nil {
		if err := placePNG(p, "overlay", tint(mask, s.Options().MaskColor), d); err != nil {
			return err
		}
		p.AddPage()
		if err := placePNG(p, "mask", mask, d); err != nil {
			return err
		}
	}
	p.SetFont("Helvetica", "", 9)
	p.SetTextColor(255, 255, 255)
	p.Text(4, d.Height-4, fmt.Sprintf("%gx%g, %d strokes", d.Width, d.Height, len(s.Strokes())))

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func placePNG(p *gofpdf.Fpdf, name string, img image.Image, d state.Dimensions) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader(name, opts, &buf)
	p.ImageOptions(name, 0, 0, d.Width, d.Height, false, opts, 0, "")
	if p.Err() {
		return fmt.Errorf("place %s: %w", name, p.Error())
	}
	return nil
}
