package assets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/webbundle/internal/buildconfig"
)

const (
	entryPrefix    = "entry:"
	entryNamespace = "bundle-entry"
)

// EntrySource is the generated module for an entry: one side effect import per
// module, in the declared order, so a polyfill listed first runs first.
func EntrySource(modules []string) string {
	var b strings.Builder
	for _, m := range modules {
		b.WriteString("import ")
		b.WriteString(strconv.Quote(m))
		b.WriteString(";\n")
	}
	return b.String()
}

// entryName maps a metafile entryPoint back onto the configured entry name.
func entryName(entryPoint string) string {
	return strings.TrimPrefix(entryPoint, entryNamespace+":")
}

// entriesPlugin serves each named entry as a virtual module resolved from dir.
func entriesPlugin(dir string, entries []buildconfig.Entry) api.Plugin {
	modules := make(map[string][]string, len(entries))
	for _, e := range entries {
		modules[e.Name] = e.Modules
	}

	return api.Plugin{
		Name: "entries",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: "^" + entryPrefix}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				name := strings.TrimPrefix(args.Path, entryPrefix)
				if _, ok := modules[name]; !ok {
					return api.OnResolveResult{}, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
				}
				return api.OnResolveResult{Path: name, Namespace: entryNamespace}, nil
			})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: entryNamespace}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				contents := EntrySource(modules[args.Path])
				return api.OnLoadResult{
					Contents:   &contents,
					ResolveDir: dir,
					Loader:     api.LoaderJS,
				}, nil
			})
		},
	}
}
