package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func siteDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "json"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>shell</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "json", "page-1.json"), []byte(`[{"id":"a"}]`), 0o644))
	return dir
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	h.ServeHTTP(w, req)
	return w
}

func newHandler(t *testing.T) http.Handler {
	return New(Options{Dir: siteDir(t), Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func TestServesDataFiles(t *testing.T) {
	w := get(t, newHandler(t), "/json/page-1.json")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":"a"}]`, w.Body.String())
}

func TestGalleryRoutesFallBackToShell(t *testing.T) {
	h := newHandler(t)
	for _, target := range []string{"/", "/3", "/ara/ku%C5%9F", "/ara/deniz/2"} {
		w := get(t, h, target)
		assert.Equal(t, http.StatusOK, w.Code, target)
		assert.Contains(t, w.Body.String(), "shell", target)
	}
}

func TestSearchLocationsWithDotsFallBackToShell(t *testing.T) {
	h := newHandler(t)
	for _, target := range []string{"/ara/v1.2", "/ara/foto.jpg/2", "/ara/a.b"} {
		w := get(t, h, target)
		assert.Equal(t, http.StatusOK, w.Code, target)
		assert.Contains(t, w.Body.String(), "shell", target)
	}
}

func TestGalleryRoute(t *testing.T) {
	tests := map[string]bool{
		"/":                  false,
		"/3":                 true,
		"/12":                true,
		"/ara":               true,
		"/ara/v1.2":          true,
		"/ara/kedi/2":        true,
		"/json/page-1.json":  false,
		"/3/x.json":          false,
		"/page.json":         false,
		"/pagefind/idx.json": false,
	}
	for in, want := range tests {
		assert.Equal(t, want, galleryRoute(in), "galleryRoute(%q)", in)
	}
}

func TestMissingAssetIsNotFound(t *testing.T) {
	w := get(t, newHandler(t), "/json/page-9.json")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTraversalStaysInsideDir(t *testing.T) {
	w := get(t, newHandler(t), "/../../etc/passwd")
	assert.NotContains(t, w.Body.String(), "root:")

	w = get(t, newHandler(t), "/../json/page-1.json")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":"a"}]`, w.Body.String())
}

func TestRejectsWrites(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/json/page-1.json", nil)
	newHandler(t).ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHandler(t)
	get(t, h, "/json/page-1.json")
	w := get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "galeri_server_requests_total")
}
