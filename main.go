package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"InpaintBoard/internal/config"
	"InpaintBoard/internal/logging"
	"InpaintBoard/internal/net"
	"InpaintBoard/internal/state"
	"InpaintBoard/internal/ui"
)

// discoverTimeout bounds the mDNS search of "inpaintboard join".
const discoverTimeout = 3 * time.Second

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() config.Config {
	path, err := config.Path()
	if err != nil {
		slog.Warn("no config directory, using defaults", "err", err)
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("bad config, using defaults", "path", path, "err", err)
		return config.Default()
	}
	return cfg
}

// Usage:
//
//	inpaintboard [image ...]         host a session, opening the images
//	inpaintboard inpaintboard://...  join the session behind a share link
//	inpaintboard join                join the first session found on the LAN
func main() {
	logger := newLogger(slog.LevelInfo)
	slog.SetDefault(logger)
	logging.SetLogger(logger)

	cfg := loadConfig()
	logger = newLogger(cfg.Log.SlogLevel())
	slog.SetDefault(logger)
	logging.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := ui.NewApp(ctx, cfg)
	replica := state.NewReplica(state.NewClock())
	onRemote := func(op state.Op) {
		a.Post(func() { a.Session.ApplyRemote(op) })
	}

	args := os.Args[1:]
	switch {
	case len(args) > 0 && net.IsLink(args[0]):
		go runClient(ctx, a, replica, args[0], onRemote)
	case len(args) > 0 && args[0] == "join":
		go joinDiscovered(ctx, a, replica, onRemote)
	default:
		runHost(ctx, a, cfg, replica, onRemote)
		a.OpenImages(args)
	}

	a.Run()
}

func runHost(ctx context.Context, a *ui.App, cfg config.Config, replica *state.Replica, onRemote func(state.Op)) {
	slog.Info("starting as host", "port", cfg.Network.Port)
	hub := net.NewHub(replica, onRemote)
	a.Session.OnOp(func(op state.Op) {
		if err := hub.Publish(op); err != nil {
			slog.Warn("publish op", "type", op.Type, "err", err)
		}
	})

	host := &net.Host{Port: cfg.Network.Port, Advertise: cfg.Network.Advertise, Hub: hub}
	go func() {
		if err := host.Run(ctx); err != nil {
			slog.Error("sharing stopped", "err", err)
			a.Post(func() { a.SetMessage(fmt.Sprintf("Sharing stopped: %v", err)) })
		}
	}()

	ip, err := net.OutgoingAddr()
	if err != nil {
		slog.Warn("no local address for share link", "err", err)
		return
	}
	link := net.ShareLink(ip, uint16(cfg.Network.Port))
	slog.Info("share link", "link", link)
	a.SetMessage("Share: " + link)
}

func runClient(ctx context.Context, a *ui.App, replica *state.Replica, link string, onRemote func(state.Op)) {
	slog.Info("starting as client", "link", link)
	c, err := net.Dial(ctx, link, replica, onRemote)
	if err != nil {
		a.Post(func() { a.SetMessage(fmt.Sprintf("Connection failed: %v", err)) })
		return
	}
	defer c.Close()

	local := c.LocalAddr().String()
	a.Post(func() {
		a.Session.OnOp(func(op state.Op) {
			if err := c.Publish(op); err != nil {
				slog.Warn("publish op", "type", op.Type, "err", err)
			}
		})
		a.SetMessage("Connected to host as " + local)
	})

	if err := c.Run(ctx); err != nil {
		a.Post(func() { a.SetMessage(fmt.Sprintf("Disconnected from host: %v", err)) })
	}
}

var errNoSession = errors.New("no session found on the local network")

func joinDiscovered(ctx context.Context, a *ui.App, replica *state.Replica, onRemote func(state.Op)) {
	var first string
	err := net.Browse(ctx, discoverTimeout, func(addr string) {
		if first == "" {
			first = addr
		}
	})
	if err == nil && first == "" {
		err = errNoSession
	}
	if err != nil {
		slog.Warn("discovery failed", "err", err)
		a.Post(func() { a.SetMessage(fmt.Sprintf("Discovery failed: %v", err)) })
		return
	}
	runClient(ctx, a, replica, net.Scheme+first, onRemote)
}
