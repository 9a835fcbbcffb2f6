package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/webbundle/internal/buildconfig"
	"gopkg.in/yaml.v3"
)

func TestProjectFlags_Resolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webbundle.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9000\n"), 0600))

	t.Setenv("NODE_ENV", "development")

	flags := ProjectFlags{Config: path}
	cfg, err := flags.Resolve(zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, buildconfig.ModeDevelopment, cfg.Mode)
	require.Equal(t, 9000, cfg.DevServer.Port)

	flags.Mode = "production"
	cfg, err = flags.Resolve(zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, buildconfig.ModeProduction, cfg.Mode)

	flags.Mode = "staging"
	_, err = flags.Resolve(zerolog.Nop())
	require.ErrorIs(t, err, buildconfig.ErrUnknownMode)
}

func TestProjectFlags_UnrecognisedEnvWarns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webbundle.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0600))
	t.Setenv("NODE_ENV", "staging")

	var buf bytes.Buffer
	flags := ProjectFlags{Config: path}
	cfg, err := flags.Resolve(zerolog.New(&buf))
	require.NoError(t, err)
	require.Equal(t, buildconfig.ModeProduction, cfg.Mode)
	require.Contains(t, buf.String(), "Unrecognised build mode")
}

func TestWriteConfig(t *testing.T) {
	cfg, err := buildconfig.New(buildconfig.ModeProduction, buildconfig.DefaultProject("/work"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeConfig(&buf, cfg, "yaml"))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "production", decoded["mode"])
	require.Equal(t, "/work/src", decoded["context"])

	buf.Reset()
	require.NoError(t, writeConfig(&buf, cfg, "json"))
	require.Contains(t, buf.String(), `"Mode": "production"`)

	require.Error(t, writeConfig(&buf, cfg, "toml"))
}
