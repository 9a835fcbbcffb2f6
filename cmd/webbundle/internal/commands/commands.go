package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/webbundle/internal/buildconfig"
	"github.com/wolfeidau/webbundle/internal/telemetry"
)

// DefaultProjectFile is loaded from the working directory when present.
const DefaultProjectFile = "webbundle.yaml"

type Globals struct {
	Debug   bool
	Version string
}

// ProjectFlags are shared by every command that resolves a configuration.
type ProjectFlags struct {
	Config  string `help:"path to the project file (default: ./webbundle.yaml when present)" type:"path" env:"WEBBUNDLE_CONFIG"`
	Mode    string `help:"build mode (development or production), overrides NODE_ENV"`
	Tracing bool   `help:"export traces and metrics over OTLP" default:"false" env:"WEBBUNDLE_TRACING"`
}

// Resolve loads the project and assembles the configuration. An explicit
// --mode wins; otherwise NODE_ENV is read once, here.
func (f *ProjectFlags) Resolve(log zerolog.Logger) (buildconfig.Config, error) {
	project, err := f.loadProject()
	if err != nil {
		return buildconfig.Config{}, err
	}

	var mode buildconfig.Mode
	if f.Mode != "" {
		mode, err = buildconfig.ParseMode(f.Mode)
		if err != nil {
			return buildconfig.Config{}, err
		}
	} else {
		var recognised bool
		mode, recognised = buildconfig.ModeFromEnvStrict(os.LookupEnv)
		if !recognised {
			log.Warn().
				Str(buildconfig.ModeEnvVar, os.Getenv(buildconfig.ModeEnvVar)).
				Msg("Unrecognised build mode, building for production")
		}
	}

	cfg, err := buildconfig.New(mode, project)
	if err != nil {
		return buildconfig.Config{}, fmt.Errorf("invalid project: %w", err)
	}

	return cfg, nil
}

func (f *ProjectFlags) loadProject() (buildconfig.Project, error) {
	if f.Config != "" {
		return buildconfig.LoadProject(f.Config)
	}

	wd, err := os.Getwd()
	if err != nil {
		return buildconfig.Project{}, err
	}

	path := filepath.Join(wd, DefaultProjectFile)
	if _, err := os.Stat(path); err == nil {
		return buildconfig.LoadProject(path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return buildconfig.Project{}, err
	}

	return buildconfig.DefaultProject(wd), nil
}

// startTelemetry returns a function that flushes telemetry, a no-op when
// tracing is disabled.
func (f *ProjectFlags) startTelemetry(ctx context.Context, log zerolog.Logger, version string) func() {
	if !f.Tracing {
		return func() {}
	}

	log.Info().Msg("Tracing is enabled")
	shutdown, err := telemetry.InitTelemetry(ctx, "webbundle", version)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown telemetry")
		}
	}
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
