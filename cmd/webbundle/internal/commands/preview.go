package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wolfeidau/webbundle/internal/logger"
	"github.com/wolfeidau/webbundle/internal/preview"
)

// PreviewCmd serves the output directory of a previous build.
type PreviewCmd struct {
	ProjectFlags `embed:""`
	Listen       string   `help:"HTTP server listen address" default:"localhost:8080" env:"WEBBUNDLE_PREVIEW_LISTEN"`
	SPA          bool     `help:"serve the page for unknown paths" default:"false"`
	CORSOrigins  []string `help:"allowed CORS origins" env:"WEBBUNDLE_CORS_ORIGINS"`
}

func (c *PreviewCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := c.Resolve(log)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.Output.Path); err != nil {
		return fmt.Errorf("output directory not found, run build first: %w", err)
	}

	srv := configureHTTPServer(c.Listen, preview.Handler(preview.Config{
		Dir:         cfg.Output.Path,
		SPA:         c.SPA,
		CORSOrigins: c.CORSOrigins,
	}, log))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Str("dir", cfg.Output.Path).Msg("Preview server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info().Msg("Shutting down preview server")
	return srv.Shutdown(shutdownCtx)
}
