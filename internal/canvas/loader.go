package canvas

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"InpaintBoard/internal/logging"
	"InpaintBoard/internal/state"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrEmptyURL          = errors.New("canvas: empty image url")
	ErrUnsupportedScheme = errors.New("canvas: unsupported url scheme")
)

// LoadFailedTitle is the notification title shown when an image cannot be
// loaded.
const LoadFailedTitle = "Unable to Load Image"

// Dispatcher runs fn on the event loop that owns the session.
type Dispatcher func(fn func())

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(title, message string)
}

// Loader fetches images off the event loop and hands them back through a
// Dispatcher. A load is fire-and-forget: the session slot stays empty until
// it completes, and a failure only produces a notification.
type Loader struct {
	s        *state.Session
	dispatch Dispatcher
	notify   Notifier
	client   *http.Client
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets the client used for http and https URLs.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) { l.client = c }
}

func NewLoader(s *state.Session, dispatch Dispatcher, notify Notifier, opts ...LoaderOption) *Loader {
	l := &Loader{s: s, dispatch: dispatch, notify: notify, client: http.DefaultClient}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load requests ref as the base image. It must be called on the event loop.
// The current background stays on screen until the completion replaces it.
// A completion for a reference that is no longer pending is dropped.
func (l *Loader) Load(ctx context.Context, ref state.ImageRef) {
	l.s.RequestImage(ref)
	go func() {
		img, err := Fetch(ctx, l.client, ref.URL)
		l.dispatch(func() { l.finish(ref, img, err) })
	}()
}

func (l *Loader) finish(ref state.ImageRef, img image.Image, err error) {
	cur, ok := l.s.PendingImage()
	if !ok || cur != ref {
		logging.Logger().Debug("dropping stale image load", "url", ref.URL)
		return
	}
	if err != nil {
		logging.Logger().Warn("image load failed", "url", ref.URL, "err", err)
		l.notify.Notify(LoadFailedTitle, fmt.Sprintf("Image %s failed to load", ref.URL))
		l.s.ClearImage()
		return
	}
	l.s.SetBackground(img)
}

// LoadObject places obj on the canvas and fetches its image. The object is
// listed immediately and drawn once its image arrives.
func (l *Loader) LoadObject(ctx context.Context, obj state.SceneObject) {
	l.s.AddObject(obj)
	go func() {
		img, err := Fetch(ctx, l.client, obj.URL)
		l.dispatch(func() {
			if err != nil {
				logging.Logger().Warn("object image load failed", "url", obj.URL, "err", err)
				l.notify.Notify(LoadFailedTitle, fmt.Sprintf("Image %s failed to load", obj.URL))
				return
			}
			l.s.SetObjectImage(obj.URL, img)
		})
	}()
}

// Fetch reads and decodes the image at raw, which may be an http(s) URL, a
// file URL or a plain path.
func Fetch(ctx context.Context, client *http.Client, raw string) (image.Image, error) {
	if raw == "" {
		return nil, ErrEmptyURL
	}
	rc, err := open(ctx, client, raw)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, format, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", raw, err)
	}
	logging.Logger().Debug("image decoded", "url", raw, "format", format, "size", img.Bounds().Size())
	return img, nil
}

func open(ctx context.Context, client *http.Client, raw string) (io.ReadCloser, error) {
	if filepath.VolumeName(raw) != "" {
		return openFile(raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse image url: %w", err)
	}
	switch u.Scheme {
	case "":
		return openFile(raw)
	case "file":
		return openFile(u.Path)
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", raw, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("get %s: %s", raw, resp.Status)
		}
		return resp.Body, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return f, nil
}
