package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"sync"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/webbundle/internal/buildconfig"
)

var (
	// ErrBuildFailed indicates esbuild reported one or more errors
	ErrBuildFailed = errors.New("esbuild failed with errors")
	// ErrNotBuilt indicates metadata was requested before a successful build
	ErrNotBuilt = errors.New("assets not built yet, call Build() first")
	// ErrEntryNotFound indicates an entry has no output in the metafile
	ErrEntryNotFound = errors.New("entrypoint not found in metadata")
)

// BuildMetadata is the subset of the esbuild metafile used by the pipeline.
type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	Bytes      int          `json:"bytes"`
	EntryPoint string       `json:"entryPoint"`
	CSSBundle  string       `json:"cssBundle"`
	Imports    []ImportInfo `json:"imports"`
}

type ImportInfo struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// ParseMetadata decodes an esbuild metafile.
func ParseMetadata(metafile string) (*BuildMetadata, error) {
	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(metafile), &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

// Pipeline executes a buildconfig.Config with esbuild.
type Pipeline struct {
	config   buildconfig.Config
	linter   Linter
	sass     SassCompiler
	logger   zerolog.Logger
	metadata *BuildMetadata
	mu       sync.RWMutex
}

type Option func(*Pipeline)

// WithLinter replaces the linter used by the lint stage.
func WithLinter(l Linter) Option {
	return func(p *Pipeline) {
		p.linter = l
	}
}

// WithSassCompiler replaces the compiler used by the sass stage.
func WithSassCompiler(c SassCompiler) Option {
	return func(p *Pipeline) {
		p.sass = c
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new asset pipeline for config
func New(config buildconfig.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		config: config,
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.linter == nil {
		p.linter = NewCommandLinter(DefaultLintCommand...)
	}
	if p.sass == nil {
		p.sass = NewDartSass("")
	}

	return p
}

func (p *Pipeline) Config() buildconfig.Config {
	return p.config
}

var templateFuncs = template.FuncMap{
	"marshal": marshal,
	"safe": func(s string) template.HTML {
		return template.HTML(s) //nolint:gosec
	},
}

func marshal(value any) string {
	buf := new(bytes.Buffer)

	if err := json.NewEncoder(buf).Encode(value); err != nil {
		panic(errors.New("context can only be json serializable"))
	}

	return buf.String()
}
