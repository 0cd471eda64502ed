// Package gallery keeps the images produced or uploaded during a session and
// tracks which one is shown on the canvas.
package gallery

import (
	"InpaintBoard/internal/logging"
	"InpaintBoard/internal/state"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryResult Category = "result"
	CategoryUser   Category = "user"
)

type Image struct {
	UUID     string   `json:"uuid"`
	URL      string   `json:"url"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Category Category `json:"category"`
}

// Ref returns the reference the canvas loader takes.
func (i Image) Ref() state.ImageRef {
	return state.ImageRef{URL: i.URL, Width: i.Width, Height: i.Height}
}

// Gallery holds images per category, newest first. Navigation stays within
// the category of the current image.
type Gallery struct {
	categories   map[Category][]Image
	current      *Image
	intermediate *Image
	onChange     func(Image, bool)
}

func New() *Gallery {
	return &Gallery{categories: map[Category][]Image{
		CategoryResult: nil,
		CategoryUser:   nil,
	}}
}

// OnChange registers fn to run whenever the displayed image changes. The
// flag is false when nothing is displayed.
func (g *Gallery) OnChange(fn func(Image, bool)) { g.onChange = fn }

func (g *Gallery) changed() {
	if g.onChange != nil {
		img, ok := g.Display()
		g.onChange(img, ok)
	}
}

// Add inserts img at the front of its category and selects it.
func (g *Gallery) Add(img Image) Image {
	if img.UUID == "" {
		img.UUID = uuid.NewString()
	}
	if img.Category == "" {
		img.Category = CategoryResult
	}
	g.categories[img.Category] = append([]Image{img}, g.categories[img.Category]...)
	g.current = &img
	logging.Logger().Debug("gallery image added", "uuid", img.UUID, "category", img.Category)
	g.changed()
	return img
}

// Remove deletes the image with id. If it was current, the image that took
// its place (or the new last one) becomes current.
func (g *Gallery) Remove(id string) bool {
	for cat, imgs := range g.categories {
		i := indexOf(imgs, id)
		if i < 0 {
			continue
		}
		imgs = append(imgs[:i:i], imgs[i+1:]...)
		g.categories[cat] = imgs
		if g.current != nil && g.current.UUID == id {
			g.current = nil
			if len(imgs) > 0 {
				next := imgs[min(i, len(imgs)-1)]
				g.current = &next
			}
			g.changed()
		}
		return true
	}
	return false
}

// Select makes the image with id current.
func (g *Gallery) Select(id string) bool {
	for _, imgs := range g.categories {
		if i := indexOf(imgs, id); i >= 0 {
			img := imgs[i]
			g.current = &img
			g.changed()
			return true
		}
	}
	return false
}

// Current returns the selected image.
func (g *Gallery) Current() (Image, bool) {
	if g.current == nil {
		return Image{}, false
	}
	return *g.current, true
}

// SetIntermediate shows a progress image over the current one until it is
// cleared with ClearIntermediate.
func (g *Gallery) SetIntermediate(img Image) {
	g.intermediate = &img
	g.changed()
}

func (g *Gallery) ClearIntermediate() {
	if g.intermediate == nil {
		return
	}
	g.intermediate = nil
	g.changed()
}

// Display returns the image to show: the intermediate one if set, else the
// current one.
func (g *Gallery) Display() (Image, bool) {
	if g.intermediate != nil {
		return *g.intermediate, true
	}
	return g.Current()
}

// Images returns the images of c. Callers must not modify the slice.
func (g *Gallery) Images(c Category) []Image { return g.categories[c] }

// position returns the current category list and the index of the current
// image in it, or -1.
func (g *Gallery) position() ([]Image, int) {
	cat := CategoryResult
	if g.current != nil {
		cat = g.current.Category
	}
	imgs := g.categories[cat]
	if g.current == nil {
		return imgs, -1
	}
	return imgs, indexOf(imgs, g.current.UUID)
}

func (g *Gallery) IsOnFirst() bool {
	_, i := g.position()
	return i == 0
}

func (g *Gallery) IsOnLast() bool {
	imgs, i := g.position()
	return i >= 0 && i == len(imgs)-1
}

// SelectNext moves to the following image in the current category.
func (g *Gallery) SelectNext() bool {
	imgs, i := g.position()
	if i < 0 || i+1 >= len(imgs) {
		return false
	}
	next := imgs[i+1]
	g.current = &next
	g.changed()
	return true
}

// SelectPrev moves to the preceding image in the current category.
func (g *Gallery) SelectPrev() bool {
	imgs, i := g.position()
	if i <= 0 {
		return false
	}
	prev := imgs[i-1]
	g.current = &prev
	g.changed()
	return true
}

func indexOf(imgs []Image, id string) int {
	for i, img := range imgs {
		if img.UUID == id {
			return i
		}
	}
	return -1
}
