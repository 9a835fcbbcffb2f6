package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/wolfeidau/webbundle/internal/buildconfig"
	"github.com/wolfeidau/webbundle/internal/logger"
	"gopkg.in/yaml.v3"
)

// PrintCmd writes the resolved configuration, for inspecting what a build will do.
type PrintCmd struct {
	ProjectFlags `embed:""`
	Format       string `help:"output format" enum:"yaml,json" default:"yaml"`
}

func (c *PrintCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := c.Resolve(logger.Setup(globals.Debug))
	if err != nil {
		return err
	}
	return writeConfig(os.Stdout, cfg, c.Format)
}

func writeConfig(w io.Writer, cfg buildconfig.Config, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
