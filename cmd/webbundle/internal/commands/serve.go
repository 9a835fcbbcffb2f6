package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wolfeidau/webbundle/internal/assets"
	"github.com/wolfeidau/webbundle/internal/buildconfig"
	"github.com/wolfeidau/webbundle/internal/logger"
)

// ServeCmd runs the development server with rebuild on change.
type ServeCmd struct {
	ProjectFlags `embed:""`
	Host         string `help:"dev server listen host" default:"localhost" env:"WEBBUNDLE_HOST"`
	Port         int    `help:"dev server port, overrides the project file" default:"0" env:"WEBBUNDLE_PORT"`
	Sass         string `help:"path to the dart-sass binary (default: sass from PATH)" env:"WEBBUNDLE_SASS"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log, _ := logger.WithBuild(logger.Setup(globals.Debug))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer c.startTelemetry(ctx, log, globals.Version)()

	// serving defaults to development unless asked otherwise
	if c.Mode == "" {
		if _, ok := os.LookupEnv(buildconfig.ModeEnvVar); !ok {
			c.Mode = buildconfig.ModeDevelopment.String()
		}
	}

	cfg, err := c.Resolve(log)
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.DevServer.Port = c.Port
	}

	log.Info().Str("version", globals.Version).Msg(cfg.Describe())

	pipeline := assets.New(cfg,
		assets.WithLogger(log),
		assets.WithSassCompiler(assets.NewDartSass(c.Sass)),
	)

	return pipeline.Serve(ctx, c.Host)
}
