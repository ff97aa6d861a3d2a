package cmd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/datagrid/internal/fixture"
	"github.com/runger/datagrid/internal/listclient"
	"github.com/runger/datagrid/internal/table"
)

func setupFetch(t *testing.T, n int, g fetchGlobals) (*strings.Builder, func() error, *fixture.Server) {
	t.Helper()
	withTestEnv(t)
	t.Setenv("COLUMNS", "")
	srv, fs := startServer(t, n)
	withRootGlobals(t, rootGlobals{endpoint: srv.URL})
	withFetchGlobals(t, g)

	c, stdout, _ := newTestCommand(t)
	out := &strings.Builder{}
	run := func() error {
		err := runFetch(c, nil)
		out.WriteString(stdout.String())
		return err
	}
	return out, run, fs
}

func TestFetch_Table(t *testing.T) {
	out, run, _ := setupFetch(t, 45, fetchGlobals{page: 1, limit: 5})
	require.NoError(t, run())

	text := out.String()
	assert.Contains(t, text, "First Name")
	assert.Contains(t, text, "Music Genre")
	assert.Contains(t, text, "Alice")
	assert.Contains(t, text, "Alice Smith")
	assert.Contains(t, text, "2020-01-01 00:00:00")
	assert.NotContains(t, text, "Eve", "only the first five records")
	assert.Contains(t, text, "rows 1-5 of 45 · page 1 of 9")
}

func TestFetch_TableLaterPage(t *testing.T) {
	out, run, fx := setupFetch(t, 45, fetchGlobals{page: 3, limit: 5})
	require.NoError(t, run())

	assert.Contains(t, out.String(), "rows 11-15 of 45 · page 3 of 9")
	reqs := fx.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/users?_limit=5&_page=3", reqs[0])
}

func TestFetch_DefaultLimitFromConfig(t *testing.T) {
	_, run, fx := setupFetch(t, 45, fetchGlobals{page: 1})
	require.NoError(t, run())
	assert.Equal(t, "/users?_limit=20&_page=1", fx.Requests()[0])
}

func TestFetch_JSON(t *testing.T) {
	out, run, fx := setupFetch(t, 45, fetchGlobals{page: 2, limit: 3, query: "jazz", json: true})
	require.NoError(t, run())

	var doc struct {
		Page    int              `json:"page"`
		Limit   int              `json:"limit"`
		Total   *int             `json:"total"`
		Query   string           `json:"query"`
		Records []map[string]any `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(out.String()), &doc))
	assert.Equal(t, 2, doc.Page)
	assert.Equal(t, 3, doc.Limit)
	require.NotNil(t, doc.Total)
	assert.Equal(t, 7, *doc.Total)
	assert.Equal(t, "jazz", doc.Query)
	require.Len(t, doc.Records, 3)
	for _, r := range doc.Records {
		assert.Equal(t, "Jazz", r["music"])
	}
	assert.Contains(t, fx.Requests()[0], "q=jazz")
	assert.True(t, strings.Contains(out.String(), "\n  "), "output should be indented")
}

func TestFetch_JSONUnknownTotal(t *testing.T) {
	out, run, fx := setupFetch(t, 3, fetchGlobals{page: 1, json: true})
	fx.OmitTotal = true
	require.NoError(t, run())

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.String()), &doc))
	assert.Contains(t, doc, "total")
	assert.Nil(t, doc["total"])
}

func TestFetch_PatternFiltersPageLocally(t *testing.T) {
	out, run, fx := setupFetch(t, 45, fetchGlobals{page: 1, query: "/^A/", json: true})
	require.NoError(t, run())

	reqs := fx.Requests()
	require.Len(t, reqs, 1)
	assert.NotContains(t, reqs[0], "q=", "patterns are not sent to the server")

	var doc struct {
		Total   int              `json:"total"`
		Records []map[string]any `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(out.String()), &doc))
	assert.Equal(t, 45, doc.Total)
	var names []string
	for _, r := range doc.Records {
		names = append(names, r["firstName"].(string))
	}
	assert.Equal(t, []string{"Alice", "Anna", "Alice", "Anna"}, names)
}

func TestFetch_UnknownTotalFooter(t *testing.T) {
	out, run, fx := setupFetch(t, 3, fetchGlobals{page: 1})
	fx.OmitTotal = true
	require.NoError(t, run())
	assert.Contains(t, out.String(), "rows 1-3 of ? · page 1 of ?")
}

func TestFetch_EmptyPage(t *testing.T) {
	out, run, _ := setupFetch(t, 45, fetchGlobals{page: 10, limit: 5})
	require.NoError(t, run())
	assert.Contains(t, out.String(), "Nothing found")
	assert.Contains(t, out.String(), "rows 0-0 of 45 · page 10 of 9")
}

func TestFetch_StatusError(t *testing.T) {
	_, run, fx := setupFetch(t, 3, fetchGlobals{page: 1})
	fx.Status = http.StatusInternalServerError

	err := run()
	require.Error(t, err)
	var se *listclient.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.ErrorIs(t, err, listclient.ErrFetch)
}

func TestFetch_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		g    fetchGlobals
		want string
	}{
		{"page zero", fetchGlobals{page: 0}, "--page must be >= 1"},
		{"negative limit", fetchGlobals{page: 1, limit: -1}, "--limit must be >= 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, run, fx := setupFetch(t, 3, tt.g)
			err := run()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, fx.Requests())
		})
	}
}

func TestFitHeaders(t *testing.T) {
	headers := []table.Header{{ID: "a", Width: 10}, {ID: "b", Width: 10}, {ID: "c", Width: 10}}

	assert.Len(t, fitHeaders(headers, 0), 3, "unknown width keeps everything")
	assert.Len(t, fitHeaders(headers, 40), 3)
	assert.Len(t, fitHeaders(headers, 27), 2)
	assert.Len(t, fitHeaders(headers, 5), 1, "the first column is always kept")
}
