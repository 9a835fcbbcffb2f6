// Package preview serves a finished build the way a static host would.
package preview

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	httpmiddleware "github.com/wolfeidau/webbundle/internal/http"
)

type Config struct {
	// Dir is the build output directory.
	Dir string
	// Index is served for the root and, with SPA set, for unknown paths.
	Index       string
	SPA         bool
	CORSOrigins []string
}

// Handler serves the files in cfg.Dir.
func Handler(cfg Config, logger zerolog.Logger) http.Handler {
	if cfg.Index == "" {
		cfg.Index = "index.html"
	}

	r := chi.NewRouter()
	r.Use(httpmiddleware.ClientIPMiddleware())
	r.Use(httpmiddleware.AccessLog(logger))
	r.Use(httpmiddleware.CacheControl())
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead},
		}).Handler)
	}

	files := http.FileServer(http.Dir(cfg.Dir))
	r.Handle("/*", gzhttp.GzipHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if cfg.SPA && !exists(cfg.Dir, req.URL.Path) {
			http.ServeFile(w, req, filepath.Join(cfg.Dir, cfg.Index))
			return
		}
		files.ServeHTTP(w, req)
	})))

	return r
}

func exists(dir, urlPath string) bool {
	clean := path.Clean("/" + urlPath)
	if clean == "/" {
		return true
	}
	_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))))
	return err == nil
}
