//go:build integration

package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProductDoc(t *testing.T, dir string, urls ...string) string {
	t.Helper()
	doc := `{"format_version": "1.0", "fields": [{"name": "access_url"}], "rows": [`
	for i, u := range urls {
		if i > 0 {
			doc += ","
		}
		doc += fmt.Sprintf(`{"access_url": %q}`, u)
	}
	doc += `]}`

	path := filepath.Join(dir, "product.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestFetch_DownloadsViaPremFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("fits payload"))
	}))
	defer server.Close()

	tempDir := t.TempDir()
	product := writeProductDoc(t, tempDir, server.URL+"/a.fits")
	dest := filepath.Join(tempDir, "out")

	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"fetch", product,
		"--source", "prem",
		"--dest", dest,
		"--config", filepath.Join(tempDir, "config.yaml"),
	})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	content, err := os.ReadFile(filepath.Join(dest, "a.fits"))
	require.NoError(t, err)
	assert.Equal(t, "fits payload", string(content))
}

func TestFetch_DryRunResolvesWithoutDownloading(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tempDir := t.TempDir()
	product := writeProductDoc(t, tempDir, server.URL+"/a.fits")
	dest := filepath.Join(tempDir, "out")

	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"fetch", product,
		"--source", "prem",
		"--dest", dest,
		"--dry-run",
		"--config", filepath.Join(tempDir, "config.yaml"),
	})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	entries, err := os.ReadDir(dest)
	if err == nil {
		assert.Empty(t, entries)
	}
}

func TestFetch_FailsForMissingProduct(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"fetch", filepath.Join(t.TempDir(), "nope.json")})
	require.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestInspect_ListsAccessPoints(t *testing.T) {
	tempDir := t.TempDir()
	product := writeProductDoc(t, tempDir, "http://archive.org/a.fits")

	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"inspect", product,
		"--config", filepath.Join(tempDir, "config.yaml"),
	})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
}

func TestVersion(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
}
