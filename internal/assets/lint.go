package assets

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/webbundle/internal/buildconfig"
)

// DefaultLintCommand is run with "--format unix <file>" appended.
var DefaultLintCommand = []string{"eslint"}

type LintIssue struct {
	File     string
	Line     int
	Column   int
	Message  string
	Severity string
	Rule     string
}

// Linter checks one source file.
type Linter interface {
	Lint(ctx context.Context, path string) ([]LintIssue, error)
}

// CommandLinter runs an external linter. When the command cannot be found the
// linter reports nothing.
type CommandLinter struct {
	command   []string
	once      sync.Once
	available bool
}

func NewCommandLinter(command ...string) *CommandLinter {
	return &CommandLinter{command: command}
}

func (c *CommandLinter) Available() bool {
	c.once.Do(func() {
		if len(c.command) == 0 {
			return
		}
		_, err := exec.LookPath(c.command[0])
		c.available = err == nil
	})
	return c.available
}

func (c *CommandLinter) Lint(ctx context.Context, path string) ([]LintIssue, error) {
	if !c.Available() {
		return nil, nil
	}

	args := append(append([]string{}, c.command[1:]...), "--format", "unix", path)
	cmd := exec.CommandContext(ctx, c.command[0], args...) // #nosec G204 - command comes from configuration

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	// eslint exits 1 when it found problems, anything else is a failure to run
	var exitErr *exec.ExitError
	if err != nil && (!errors.As(err, &exitErr) || exitErr.ExitCode() != 1) {
		return nil, fmt.Errorf("lint %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	return ParseUnixFormat(stdout.Bytes()), nil
}

var unixLine = regexp.MustCompile(`^(.+):(\d+):(\d+): (.*?)(?: \[(\w+)/([^\]]+)\])?$`)

// ParseUnixFormat parses "file:line:col: message [Severity/rule]" lines,
// skipping anything else such as the trailing summary.
func ParseUnixFormat(output []byte) []LintIssue {
	var issues []LintIssue

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		m := unixLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}

		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		issues = append(issues, LintIssue{
			File:     m[1],
			Line:     line,
			Column:   col,
			Message:  m[4],
			Severity: m[5],
			Rule:     m[6],
		})
	}

	return issues
}

func (i LintIssue) message() api.Message {
	text := i.Message
	if i.Rule != "" {
		text = fmt.Sprintf("%s (%s)", i.Message, i.Rule)
	}
	return api.Message{
		PluginName: "lint",
		Text:       text,
		Location: &api.Location{
			File:   i.File,
			Line:   i.Line,
			Column: i.Column,
		},
	}
}

// lintPlugin lints files whose matching rule has a lint stage before they are
// loaded. Issues are reported as warnings and never stop the build.
func lintPlugin(linter Linter, rules buildconfig.RuleTable, loaders map[string]api.Loader, logger zerolog.Logger) api.Plugin {
	var extensions []string
	for _, r := range rules {
		if r.Chain.Has(buildconfig.StageLint) {
			extensions = append(extensions, r.Extensions...)
		}
	}

	return api.Plugin{
		Name: "lint",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: extensionFilter(extensions)}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				rule, ok := rules.Match(args.Path)
				if !ok || !rule.Chain.Has(buildconfig.StageLint) {
					return api.OnLoadResult{}, nil
				}

				source, err := os.ReadFile(args.Path)
				if err != nil {
					return api.OnLoadResult{}, err
				}
				contents := string(source)

				result := api.OnLoadResult{
					Contents: &contents,
					Loader:   loaderFor(loaders, rule, args.Path),
				}

				issues, err := linter.Lint(context.Background(), args.Path)
				if err != nil {
					logger.Warn().Err(err).Str("file", args.Path).Msg("Lint failed")
					return result, nil
				}

				for _, issue := range issues {
					if issue.File == "" {
						issue.File = args.Path
					}
					result.Warnings = append(result.Warnings, issue.message())
				}

				return result, nil
			})
		},
	}
}

func loaderFor(loaders map[string]api.Loader, rule buildconfig.Rule, path string) api.Loader {
	for _, ext := range rule.Extensions {
		if strings.HasSuffix(path, ext) {
			if l, ok := loaders[ext]; ok {
				return l
			}
		}
	}
	return api.LoaderDefault
}

// extensionFilter is a Go regexp matching any of extensions at the end of a path.
func extensionFilter(extensions []string) string {
	quoted := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		quoted = append(quoted, regexp.QuoteMeta(ext))
	}
	return "(" + strings.Join(quoted, "|") + ")$"
}
