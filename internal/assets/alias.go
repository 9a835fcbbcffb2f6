package assets

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/webbundle/internal/buildconfig"
)

// ResolveAlias rewrites path using the first alias whose key is the whole path
// or a leading path segment of it.
func ResolveAlias(aliases []buildconfig.Alias, path string) (string, bool) {
	for _, a := range aliases {
		if path == a.Key {
			return a.Path, true
		}
		if rest, ok := strings.CutPrefix(path, a.Key+"/"); ok {
			return filepath.Join(a.Path, filepath.FromSlash(rest)), true
		}
	}
	return "", false
}

func aliasFilter(aliases []buildconfig.Alias) string {
	keys := make([]string, 0, len(aliases))
	for _, a := range aliases {
		keys = append(keys, regexp.QuoteMeta(a.Key))
	}
	return "^(" + strings.Join(keys, "|") + ")(/|$)"
}

// aliasPlugin checks the alias set before default resolution, then hands the
// rewritten absolute path back to esbuild so extension probing still applies.
func aliasPlugin(aliases []buildconfig.Alias) api.Plugin {
	return api.Plugin{
		Name: "alias",
		Setup: func(build api.PluginBuild) {
			if len(aliases) == 0 {
				return
			}

			build.OnResolve(api.OnResolveOptions{Filter: aliasFilter(aliases)}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				target, ok := ResolveAlias(aliases, args.Path)
				if !ok {
					return api.OnResolveResult{}, nil
				}

				res := build.Resolve(target, api.ResolveOptions{
					Importer:   args.Importer,
					ResolveDir: args.ResolveDir,
					Kind:       args.Kind,
					PluginData: args.PluginData,
				})
				if len(res.Errors) > 0 {
					return api.OnResolveResult{Errors: res.Errors}, nil
				}

				return api.OnResolveResult{
					Path:       res.Path,
					External:   res.External,
					Namespace:  res.Namespace,
					Suffix:     res.Suffix,
					PluginData: res.PluginData,
					Warnings:   res.Warnings,
				}, nil
			})
		},
	}
}
