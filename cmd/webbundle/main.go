package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/webbundle/cmd/webbundle/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode."`
		Version kong.VersionFlag
		Build   commands.BuildCmd   `cmd:"" help:"Bundle the project into the output directory"`
		Serve   commands.ServeCmd   `cmd:"" help:"Run the development server"`
		Preview commands.PreviewCmd `cmd:"" help:"Serve a finished build"`
		Print   commands.PrintCmd   `cmd:"" help:"Print the resolved build configuration"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("webbundle"),
		kong.Description("Front-end asset bundler driven by esbuild."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
