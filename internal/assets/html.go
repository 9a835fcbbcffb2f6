package assets

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/google/renameio/v2"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"github.com/wolfeidau/webbundle/internal/buildconfig"
)

// liveReloadScript subscribes to the esbuild dev server change stream.
const liveReloadScript = `<script>new EventSource("/esbuild").addEventListener("change", () => location.reload())</script>`

// Page is the data available to the page template.
type Page struct {
	Title    string
	Mode     string
	Styles   []string
	Scripts  []string
	Preloads []string
}

// Page collects the tags for every configured entry, in entry order. Chunks
// shared between entries are preloaded once.
func (p *Pipeline) Page(metadata *BuildMetadata, title string) (Page, error) {
	page := Page{Title: title, Mode: p.config.Mode.String()}

	for _, e := range p.config.Entries {
		scripts, entrypoint, err := metadata.Scripts(e.Name, p.publicPath)
		if err != nil {
			return Page{}, err
		}

		page.Scripts = append(page.Scripts, entrypoint)
		for _, s := range scripts[1:] {
			if !slices.Contains(page.Preloads, s) {
				page.Preloads = append(page.Preloads, s)
			}
		}

		if style, ok := metadata.Style(e.Name, p.publicPath); ok {
			page.Styles = append(page.Styles, style)
		}
	}

	return page, nil
}

// RenderPage executes the template with page and, when configured, injects the
// asset tags and collapses whitespace.
func RenderPage(opts buildconfig.HTMLOptions, page Page) ([]byte, error) {
	src, err := os.ReadFile(opts.Template)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	tmpl, err := template.New(filepath.Base(opts.Template)).Funcs(templateFuncs).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	out := buf.String()
	if opts.Inject {
		out = injectTags(out, page, opts.LiveReload)
	}

	if opts.CollapseWhitespace {
		out, err = collapseWhitespace(out)
		if err != nil {
			return nil, err
		}
	}

	return []byte(out), nil
}

func injectTags(doc string, page Page, liveReload bool) string {
	var head, body strings.Builder

	for _, href := range page.Styles {
		fmt.Fprintf(&head, "<link rel=\"stylesheet\" href=\"%s\">\n", template.HTMLEscapeString(href))
	}
	for _, href := range page.Preloads {
		fmt.Fprintf(&head, "<link rel=\"modulepreload\" href=\"%s\">\n", template.HTMLEscapeString(href))
	}
	for _, src := range page.Scripts {
		fmt.Fprintf(&body, "<script type=\"module\" src=\"%s\"></script>\n", template.HTMLEscapeString(src))
	}
	if liveReload {
		body.WriteString(liveReloadScript + "\n")
	}

	doc = insertBefore(doc, "</head>", head.String(), false)
	return insertBefore(doc, "</body>", body.String(), true)
}

// insertBefore places snippet in front of the last closing tag, or at the
// start or end of doc when the tag is missing.
func insertBefore(doc, tag, snippet string, appendIfMissing bool) string {
	if snippet == "" {
		return doc
	}

	idx := strings.LastIndex(strings.ToLower(doc), tag)
	if idx < 0 {
		if appendIfMissing {
			return doc + snippet
		}
		return snippet + doc
	}

	return doc[:idx] + snippet + doc[idx:]
}

func collapseWhitespace(doc string) (string, error) {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepComments:        true,
		KeepDefaultAttrVals: true,
		KeepDocumentTags:    true,
		KeepEndTags:         true,
		KeepQuotes:          true,
	})

	out, err := m.String("text/html", doc)
	if err != nil {
		return "", fmt.Errorf("failed to minify html: %w", err)
	}
	return out, nil
}

// htmlPlugin writes the page after every successful build.
func (p *Pipeline) htmlPlugin(opts buildconfig.HTMLOptions) api.Plugin {
	return api.Plugin{
		Name: "html",
		Setup: func(build api.PluginBuild) {
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					return api.OnEndResult{}, nil
				}

				metadata, err := ParseMetadata(result.Metafile)
				if err != nil {
					return api.OnEndResult{}, err
				}

				page, err := p.Page(metadata, opts.Title)
				if err != nil {
					return api.OnEndResult{}, err
				}

				out, err := RenderPage(opts, page)
				if err != nil {
					return api.OnEndResult{}, err
				}

				target := filepath.Join(p.config.Output.Path, opts.Filename)
				if err := renameio.WriteFile(target, out, 0o644); err != nil {
					return api.OnEndResult{}, fmt.Errorf("failed to write %s: %w", target, err)
				}

				p.logger.Debug().Str("file", target).Msg("Wrote page")
				return api.OnEndResult{}, nil
			})
		},
	}
}
