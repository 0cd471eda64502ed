package canvas

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"InpaintBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct{ title, message string }

type fakeNotifier struct{ notes []note }

func (f *fakeNotifier) Notify(title, message string) {
	f.notes = append(f.notes, note{title, message})
}

// queue collects dispatched callbacks so the test runs them on its own
// goroutine, like the event loop would.
type queue chan func()

func (q queue) dispatch(fn func()) { q <- fn }

func (q queue) drain(n int) {
	for i := 0; i < n; i++ {
		(<-q)()
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h, red)))
	return buf.Bytes()
}

func writePNG(t *testing.T, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, pngBytes(t, w, h), 0o644))
	return path
}

func TestFetchSources(t *testing.T) {
	data := pngBytes(t, 3, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()
	path := writePNG(t, "a.png", 3, 2)

	for _, raw := range []string{srv.URL + "/img.png", path, "file://" + path} {
		t.Run(raw, func(t *testing.T) {
			img, err := Fetch(context.Background(), srv.Client(), raw)
			require.NoError(t, err)
			assert.Equal(t, image.Pt(3, 2), img.Bounds().Size())
		})
	}

	_, err := Fetch(context.Background(), srv.Client(), srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "404")
}

func TestFetchErrors(t *testing.T) {
	_, err := Fetch(context.Background(), http.DefaultClient, "")
	assert.ErrorIs(t, err, ErrEmptyURL)

	_, err = Fetch(context.Background(), http.DefaultClient, "ftp://example.com/a.png")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = Fetch(context.Background(), http.DefaultClient, filepath.Join(t.TempDir(), "none.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	_, err = Fetch(context.Background(), http.DefaultClient, bad)
	assert.ErrorIs(t, err, image.ErrFormat)
}

func TestLoaderFillsBackground(t *testing.T) {
	s := state.NewSession(state.SessionConfig{})
	q := make(queue, 1)
	n := &fakeNotifier{}
	l := NewLoader(s, q.dispatch, n)

	ref := state.ImageRef{URL: writePNG(t, "a.png", 4, 4), Width: 4, Height: 4}
	l.Load(context.Background(), ref)
	assert.Nil(t, s.Background(), "slot stays empty until the load completes")

	q.drain(1)
	require.NotNil(t, s.Background())
	assert.Equal(t, image.Pt(4, 4), s.Background().Bounds().Size())
	assert.Empty(t, n.notes)
}

func TestLoaderKeepsOldBackgroundUntilReplaced(t *testing.T) {
	s := state.NewSession(state.SessionConfig{})
	q := make(queue, 2)
	l := NewLoader(s, q.dispatch, &fakeNotifier{})

	l.Load(context.Background(), state.ImageRef{URL: writePNG(t, "a.png", 3, 3)})
	q.drain(1)
	old := s.Background()
	require.NotNil(t, old)
	rev := s.Revisions().Background

	l.Load(context.Background(), state.ImageRef{URL: writePNG(t, "b.png", 6, 6)})
	assert.Same(t, old, s.Background())
	assert.Equal(t, rev, s.Revisions().Background, "no redraw before the new image lands")

	q.drain(1)
	require.NotNil(t, s.Background())
	assert.Equal(t, image.Pt(6, 6), s.Background().Bounds().Size())
	assert.Greater(t, s.Revisions().Background, rev)
}

func TestLoaderFailureNotifiesAndClears(t *testing.T) {
	s := state.NewSession(state.SessionConfig{})
	q := make(queue, 1)
	n := &fakeNotifier{}
	l := NewLoader(s, q.dispatch, n)

	url := filepath.Join(t.TempDir(), "missing.png")
	l.Load(context.Background(), state.ImageRef{URL: url})
	q.drain(1)

	assert.Nil(t, s.Background())
	_, pending := s.PendingImage()
	assert.False(t, pending)
	require.Len(t, n.notes, 1)
	assert.Equal(t, LoadFailedTitle, n.notes[0].title)
	assert.Equal(t, "Image "+url+" failed to load", n.notes[0].message)
}

func TestLoaderDropsStaleCompletion(t *testing.T) {
	s := state.NewSession(state.SessionConfig{})
	q := make(queue, 2)
	l := NewLoader(s, q.dispatch, &fakeNotifier{})

	first := state.ImageRef{URL: writePNG(t, "a.png", 2, 2)}
	second := state.ImageRef{URL: writePNG(t, "b.png", 5, 5)}
	l.Load(context.Background(), first)
	l.Load(context.Background(), second)
	q.drain(2)

	cur, ok := s.PendingImage()
	require.True(t, ok)
	assert.Equal(t, second, cur)
	require.NotNil(t, s.Background())
	assert.Equal(t, image.Pt(5, 5), s.Background().Bounds().Size())
}

func TestLoaderObjects(t *testing.T) {
	s := state.NewSession(state.SessionConfig{})
	q := make(queue, 2)
	n := &fakeNotifier{}
	l := NewLoader(s, q.dispatch, n)

	good := writePNG(t, "obj.png", 2, 2)
	l.LoadObject(context.Background(), state.SceneObject{URL: good, X: 10})
	l.LoadObject(context.Background(), state.SceneObject{URL: "ftp://nowhere/x.png"})
	assert.Len(t, s.Objects(), 2)
	q.drain(2)

	assert.NotNil(t, s.ObjectImage(good))
	require.Len(t, n.notes, 1)
	assert.Equal(t, LoadFailedTitle, n.notes[0].title)
}
