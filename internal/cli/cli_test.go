package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tengrikut/galeri/internal/partition"
	"github.com/tengrikut/galeri/internal/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeConfigTOML(t *testing.T, dir string) string {
	t.Helper()
	cfg := filepath.Join(dir, "config.toml")
	content := "debounce_ms = 10\nindex_poll_interval_ms = 10\nlog_level = \"warn\"\n"
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o600))
	return cfg
}

func writeSource(t *testing.T, dir string, items []partition.RawItem) {
	t.Helper()
	data, err := json.Marshal(items)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, partition.ItemsFile), data, 0o644))
}

func sampleItems() []partition.RawItem {
	return []partition.RawItem{
		{ID: "a", Href: "/eser/a", ImgSrc: "/img/a.webp", Alt: "Kedi"},
		{ID: "b", Href: "/eser/b", ImgSrc: "/img/b.webp", Alt: "Köpek"},
		{ID: "c", Href: "/eser/c", ImgSrc: "/img/c.webp", Alt: "Kedi ve köpek"},
		{Href: "", ImgSrc: "/img/x.webp", Alt: "missing href"},
	}
}

func TestSplitThenBrowseHeadless(t *testing.T) {
	tmp := t.TempDir()
	cfg := writeConfigTOML(t, tmp)
	src := filepath.Join(tmp, "src")
	out := filepath.Join(tmp, "dist")
	require.NoError(t, os.MkdirAll(src, 0o755))
	writeSource(t, src, sampleItems())

	stdout, _, err := execute(t, "--config", cfg, "split", "--source", src, "--out", out, "--per-page", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "3 items in 2 pages written to "+out)
	assert.Contains(t, stdout, "1 invalid items skipped")

	site := httptest.NewServer(server.New(server.Options{Dir: out, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}))
	t.Cleanup(site.Close)

	stdout, _, err = execute(t, "--config", cfg, "browse", "--site", site.URL, "/2")
	require.NoError(t, err)
	assert.Equal(t, "c\t/eser/c\t/img/c.webp\tKedi ve köpek\t\n", stdout)

	// The root command browses too.
	stdout, _, err = execute(t, "--config", cfg, "--site", site.URL, "/ara/kedi")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "a\t"))
}

func TestSplitRejectsNegativePageSize(t *testing.T) {
	tmp := t.TempDir()
	_, _, err := execute(t, "--config", writeConfigTOML(t, tmp), "split", "--source", tmp, "--per-page=-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--per-page")
}

func TestSplitMissingSource(t *testing.T) {
	tmp := t.TempDir()
	_, _, err := execute(t, "--config", writeConfigTOML(t, tmp), "split", "--source", filepath.Join(tmp, "nope"), "--out", filepath.Join(tmp, "out"))
	require.Error(t, err)
}

func TestBrowseRejectsExtraArgs(t *testing.T) {
	_, _, err := execute(t, "browse", "/1", "/2")
	require.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	tmp := t.TempDir()
	cfg := filepath.Join(tmp, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("log_level = \"loud\"\n"), 0o600))

	_, _, err := execute(t, "--config", cfg, "split", "--source", tmp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load galeri config")
}

func TestServeRejectsMissingDir(t *testing.T) {
	tmp := t.TempDir()
	_, _, err := execute(t, "--config", writeConfigTOML(t, tmp), "serve", "--dir", filepath.Join(tmp, "missing"), "--addr", "127.0.0.1:0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not readable")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f))
}
