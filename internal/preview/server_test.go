package preview

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setupDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html><body>home</body></html>"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.ABCDEFGH.js"), []byte(strings.Repeat("console.log('x');\n", 200)), 0600))
	return dir
}

func TestHandler_ServesFiles(t *testing.T) {
	dir := setupDir(t)
	h := Handler(Config{Dir: dir}, zerolog.Nop())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "home")
	require.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/main.ABCDEFGH.js", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "public, max-age=31536000, immutable", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Gzip(t *testing.T) {
	dir := setupDir(t)
	h := Handler(Config{Dir: dir}, zerolog.Nop())

	r := httptest.NewRequest(http.MethodGet, "/main.ABCDEFGH.js", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Contains(t, string(body), "console.log")
}

func TestHandler_SPAFallback(t *testing.T) {
	dir := setupDir(t)
	h := Handler(Config{Dir: dir, SPA: true}, zerolog.Nop())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/42", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "home")
}

func TestHandler_CORS(t *testing.T) {
	dir := setupDir(t)
	h := Handler(Config{Dir: dir, CORSOrigins: []string{"https://example.com"}}, zerolog.Nop())

	r := httptest.NewRequest(http.MethodGet, "/main.ABCDEFGH.js", nil)
	r.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
