package net

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"InpaintBoard/internal/logging"

	"golang.org/x/sync/errgroup"
)

// Host serves a Hub on a TCP port and optionally advertises it over mDNS.
type Host struct {
	Port      int
	Advertise bool
	Hub       *Hub
}

// Handler returns the HTTP handler peers connect to.
func (h *Host) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(WebSocketPath, h.Hub)
	return mux
}

// Run serves until ctx is done or the listener fails.
func (h *Host) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", h.Port),
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Logger().Info("host listening", "port", h.Port)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve on port %d: %w", h.Port, err)
		}
		return nil
	})

	if h.Advertise {
		g.Go(func() error {
			server, err := Advertise(h.Port)
			if err != nil {
				// Peers can still join with the share link.
				logging.Logger().Warn("mdns advertise failed", "err", err)
				return nil
			}
			<-ctx.Done()
			return server.Shutdown()
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		h.Hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
