// Package config loads the application settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"InpaintBoard/internal/logging"
	"InpaintBoard/internal/state"

	"github.com/BurntSushi/toml"
)

const (
	appDir   = "inpaintboard"
	fileName = "config.toml"
)

type Config struct {
	Canvas  Canvas  `toml:"canvas"`
	Network Network `toml:"network"`
	Log     Log     `toml:"log"`
	Window  Window  `toml:"window"`
}

type Canvas struct {
	BrushSize       float64          `toml:"brush_size"`
	MaskColor       state.RGBA       `toml:"mask_color"`
	Zoom            state.ZoomBounds `toml:"zoom"`
	WheelMultiplier float64          `toml:"wheel_multiplier"`
	HistoryDepth    int              `toml:"history_depth"`
	BoundingBox     BoxSize          `toml:"bounding_box"`
}

type BoxSize struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type Network struct {
	Port      int  `toml:"port"`
	Advertise bool `toml:"advertise"`
}

type Log struct {
	Level string `toml:"level"`
}

type Window struct {
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`
}

func Default() Config {
	opts := state.DefaultOptions()
	return Config{
		Canvas: Canvas{
			BrushSize:       opts.BrushSize,
			MaskColor:       opts.MaskColor,
			Zoom:            state.DefaultZoomBounds(),
			WheelMultiplier: 10,
			HistoryDepth:    50,
			BoundingBox:     BoxSize{Width: 512, Height: 512},
		},
		Network: Network{Port: 8888, Advertise: true},
		Log:     Log{Level: "info"},
		Window:  Window{Width: 1024, Height: 768},
	}
}

// Path returns the default config file location under the user config
// directory.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// Load reads the file at path over the defaults. A missing file is not an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Default(), fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		logging.Logger().Warn("unknown config keys", "path", path, "keys", undecoded)
	}
	return cfg.normalized(), nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// normalized replaces out-of-range values with defaults.
func (c Config) normalized() Config {
	d := Default()
	if c.Canvas.BrushSize < 1 {
		c.Canvas.BrushSize = d.Canvas.BrushSize
	}
	if c.Canvas.WheelMultiplier <= 0 {
		c.Canvas.WheelMultiplier = d.Canvas.WheelMultiplier
	}
	if c.Canvas.HistoryDepth <= 0 {
		c.Canvas.HistoryDepth = d.Canvas.HistoryDepth
	}
	z := c.Canvas.Zoom
	if z.Min <= 0 || z.Max < z.Min || z.Step <= 0 || z.Step >= 1 {
		c.Canvas.Zoom = d.Canvas.Zoom
	}
	if c.Network.Port <= 0 || c.Network.Port > 65535 {
		c.Network.Port = d.Network.Port
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		c.Window = d.Window
	}
	return c
}

// SlogLevel maps the configured level name to a slog level, defaulting to
// info.
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// SessionConfig seeds a canvas session from the canvas settings.
func (c Canvas) SessionConfig(viewport state.Dimensions) state.SessionConfig {
	opts := state.DefaultOptions()
	opts.BrushSize = c.BrushSize
	opts.MaskColor = c.MaskColor
	return state.SessionConfig{
		Viewport:     viewport,
		Zoom:         c.Zoom,
		BoundingBox:  state.Dimensions{Width: c.BoundingBox.Width, Height: c.BoundingBox.Height},
		HistoryDepth: c.HistoryDepth,
		Options:      opts,
	}
}
