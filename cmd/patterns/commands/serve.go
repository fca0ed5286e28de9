package commands

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/server"
)

// ServeCmd runs the preview server until interrupted.
type ServeCmd struct {
	Addr string `short:"a" help:"Listen address (overrides the manifest)"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := server.New(root.Manifest, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		_ = srv.Close()
	}()
	if s.Addr != "" {
		srv.SetAddr(s.Addr)
	}

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
