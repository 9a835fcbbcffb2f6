package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/google/renameio/v2"
	"github.com/wolfeidau/webbundle/internal/buildconfig"
)

// CopyPattern copies a file into the directory pattern.To, or the contents of
// a directory into it.
func CopyPattern(pattern buildconfig.CopyPattern) ([]string, error) {
	info, err := os.Stat(pattern.From)
	if err != nil {
		return nil, fmt.Errorf("unable to locate %s: %w", pattern.From, err)
	}

	if !info.IsDir() {
		dst := filepath.Join(pattern.To, filepath.Base(pattern.From))
		return []string{dst}, copyFile(pattern.From, dst, info.Mode().Perm())
	}

	var copied []string
	err = filepath.WalkDir(pattern.From, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		rel, err := filepath.Rel(pattern.From, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		dst := filepath.Join(pattern.To, rel)
		copied = append(copied, dst)
		return copyFile(path, dst, info.Mode().Perm())
	})

	return copied, err
}

func copyFile(src, dst string, perm fs.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	return renameio.WriteFile(dst, data, perm)
}

// copyPlugin copies static assets that are not part of the module graph.
func (p *Pipeline) copyPlugin(patterns []buildconfig.CopyPattern) api.Plugin {
	return api.Plugin{
		Name: "copy",
		Setup: func(build api.PluginBuild) {
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					return api.OnEndResult{}, nil
				}

				for _, pattern := range patterns {
					copied, err := CopyPattern(pattern)
					if err != nil {
						return api.OnEndResult{}, err
					}
					p.logger.Debug().Str("from", pattern.From).Strs("files", copied).Msg("Copied static assets")
				}

				return api.OnEndResult{}, nil
			})
		},
	}
}
