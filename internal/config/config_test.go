package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"InpaintBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[canvas]
brush_size = 24
wheel_multiplier = 4

[canvas.mask_color]
r = 0
g = 128
b = 255
a = 0.25

[canvas.zoom]
min_scale = 0.5
max_scale = 8
scale_by = 0.99

[network]
port = 9999

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 24.0, cfg.Canvas.BrushSize)
	assert.Equal(t, 4.0, cfg.Canvas.WheelMultiplier)
	assert.Equal(t, state.RGBA{G: 128, B: 255, A: 0.25}, cfg.Canvas.MaskColor)
	assert.Equal(t, state.ZoomBounds{Min: 0.5, Max: 8, Step: 0.99}, cfg.Canvas.Zoom)
	assert.Equal(t, 9999, cfg.Network.Port)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
	assert.Equal(t, Default().Window, cfg.Window, "untouched sections keep defaults")
}

func TestLoadNormalizesBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[canvas]
brush_size = -3
history_depth = 0

[canvas.zoom]
min_scale = 5
max_scale = 1
scale_by = 0.999

[network]
port = 70000
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	d := Default()
	assert.Equal(t, d.Canvas.BrushSize, cfg.Canvas.BrushSize)
	assert.Equal(t, d.Canvas.HistoryDepth, cfg.Canvas.HistoryDepth)
	assert.Equal(t, d.Canvas.Zoom, cfg.Canvas.Zoom)
	assert.Equal(t, d.Network.Port, cfg.Network.Port)
}

func TestLoadSyntaxError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[canvas\nbrush_size = "), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := Default()
	want.Canvas.BrushSize = 77
	want.Network.Advertise = false
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSlogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	} {
		assert.Equal(t, want, Log{Level: in}.SlogLevel(), in)
	}
}

func TestSessionConfig(t *testing.T) {
	c := Default().Canvas
	c.BrushSize = 12
	sc := c.SessionConfig(state.Dimensions{Width: 300, Height: 200})
	assert.Equal(t, 12.0, sc.Options.BrushSize)
	assert.Equal(t, state.ToolBrush, sc.Options.Tool)
	assert.Equal(t, 300.0, sc.Viewport.Width)
	assert.Equal(t, 512.0, sc.BoundingBox.Width)
}
