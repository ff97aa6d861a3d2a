package cmd

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/runger/datagrid/internal/fixture"
)

type rootGlobals struct {
	configPath string
	endpoint   string
	collection string
	pageSize   int
}

type fetchGlobals struct {
	page  int
	limit int
	query string
	json  bool
}

func withRootGlobals(t *testing.T, g rootGlobals) {
	t.Helper()
	old := rootGlobals{
		configPath: configPath,
		endpoint:   endpointFlag,
		collection: collectionFlag,
		pageSize:   pageSizeFlag,
	}
	configPath = g.configPath
	endpointFlag = g.endpoint
	collectionFlag = g.collection
	pageSizeFlag = g.pageSize

	t.Cleanup(func() {
		configPath = old.configPath
		endpointFlag = old.endpoint
		collectionFlag = old.collection
		pageSizeFlag = old.pageSize
	})
}

func withFetchGlobals(t *testing.T, g fetchGlobals) {
	t.Helper()
	old := fetchGlobals{page: fetchPage, limit: fetchLimit, query: fetchQuery, json: fetchJSON}
	fetchPage = g.page
	fetchLimit = g.limit
	fetchQuery = g.query
	fetchJSON = g.json
	t.Cleanup(func() {
		fetchPage = old.page
		fetchLimit = old.limit
		fetchQuery = old.query
		fetchJSON = old.json
	})
	withColorMode(t, "never")
}

func withColorMode(t *testing.T, mode string) {
	t.Helper()
	old := colorMode
	colorMode = mode
	t.Cleanup(func() {
		colorMode = old
		applyColorMode()
	})
}

// withTestEnv points config lookups at a temp dir and clears overrides.
func withTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("DATAGRID_ENDPOINT", "")
	t.Setenv("DATAGRID_DEBUG", "")
	t.Setenv("DATAGRID_LOG_LEVEL", "")
	return dir
}

// startServer serves n fixture users under /users.
func startServer(t *testing.T, n int) (*httptest.Server, *fixture.Server) {
	t.Helper()
	fs := &fixture.Server{Records: fixture.Seed(n)}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)
	return srv, fs
}

// newTestCommand returns a command writing to the returned buffers.
func newTestCommand(t *testing.T) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&stdout)
	c.SetErr(&stderr)
	return c, &stdout, &stderr
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
