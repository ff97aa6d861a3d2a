package listclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/datagrid/internal/fixture"
)

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL, Collection: "users", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"relative", Options{BaseURL: "/api", Collection: "users"}},
		{"scheme", Options{BaseURL: "ftp://host", Collection: "users"}},
		{"no collection", Options{BaseURL: "http://host"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestFetch_FirstPage(t *testing.T) {
	srv := &fixture.Server{Records: fixture.Seed(45)}
	c := newTestClient(t, srv)

	p, err := c.Fetch(context.Background(), DefaultQuery())
	require.NoError(t, err)

	assert.Len(t, p.Records, 20)
	assert.Equal(t, 45, p.Total)
	assert.Equal(t, 3, p.PageCount(20))
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Equal(t, c.Key(DefaultQuery()), p.Key)
	assert.Equal(t, []string{"/users?_limit=20&_page=1"}, srv.Requests())
}

func TestFetch_Filter(t *testing.T) {
	srv := &fixture.Server{Records: fixture.Seed(45)}
	c := newTestClient(t, srv)

	p, err := c.Fetch(context.Background(), Query{PageSize: 20, Filter: "jazz"})
	require.NoError(t, err)

	assert.Equal(t, 7, p.Total)
	for _, r := range p.Records {
		assert.Equal(t, "Jazz", r.Get("music").String())
	}
	assert.Equal(t, []string{"/users?_limit=20&_page=1&q=jazz"}, srv.Requests())
}

func TestFetch_OutOfRangePage(t *testing.T) {
	c := newTestClient(t, &fixture.Server{Records: fixture.Seed(45)})

	p, err := c.Fetch(context.Background(), Query{PageIndex: 9, PageSize: 20})
	require.NoError(t, err)
	assert.Empty(t, p.Records)
	assert.Equal(t, 45, p.Total)
}

func TestFetch_MissingTotal(t *testing.T) {
	c := newTestClient(t, &fixture.Server{Records: fixture.Seed(5), OmitTotal: true})

	p, err := c.Fetch(context.Background(), DefaultQuery())
	require.NoError(t, err)
	assert.Len(t, p.Records, 5)
	assert.Equal(t, TotalUnknown, p.Total)
	assert.Equal(t, TotalUnknown, p.PageCount(20))
}

func TestFetch_CustomTotalHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Pagination-Total", "12")
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL, Collection: "users", TotalHeader: "x-pagination-total"})
	require.NoError(t, err)

	p, err := c.Fetch(context.Background(), DefaultQuery())
	require.NoError(t, err)
	assert.Equal(t, 12, p.Total)
}

func TestFetch_StatusError(t *testing.T) {
	c := newTestClient(t, &fixture.Server{Status: http.StatusInternalServerError})

	_, err := c.Fetch(context.Background(), DefaultQuery())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, c.Key(DefaultQuery()), se.URL)
}

func TestFetch_DecodeError(t *testing.T) {
	for _, body := range []string{`{"id":1}`, `not json`, `[1,2]`} {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		_, err := c.Fetch(context.Background(), DefaultQuery())
		assert.True(t, errors.Is(err, ErrDecode), "body %q: %v", body, err)
	}
}

func TestFetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url, Collection: "users", Timeout: time.Second})
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), DefaultQuery())
	assert.True(t, errors.Is(err, ErrFetch))
}

func TestFetch_InvalidQuery(t *testing.T) {
	srv := &fixture.Server{Records: fixture.Seed(1)}
	c := newTestClient(t, srv)

	_, err := c.Fetch(context.Background(), Query{PageSize: 0})
	assert.True(t, errors.Is(err, ErrInvalidQuery))
	assert.Empty(t, srv.Requests())
}

func TestFetch_RequestHeaders(t *testing.T) {
	var accept, requestID string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		requestID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`[]`))
	}))

	_, err := c.Fetch(context.Background(), DefaultQuery())
	require.NoError(t, err)
	assert.Equal(t, "application/json", accept)
	_, err = uuid.Parse(requestID)
	assert.NoError(t, err)
}

func TestGet_ServesFromCache(t *testing.T) {
	srv := &fixture.Server{Records: fixture.Seed(45)}
	c := newTestClient(t, srv)
	ctx := context.Background()

	_, ok := c.Cached(DefaultQuery())
	assert.False(t, ok)

	first, err := c.Get(ctx, DefaultQuery())
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := c.Get(ctx, DefaultQuery())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.False(t, second.Stale)
	assert.Equal(t, first.Page.Records, second.Page.Records)
	assert.Len(t, srv.Requests(), 1)

	// A different key is a different request.
	_, err = c.Get(ctx, Query{PageIndex: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, srv.Requests(), 2)
}

func TestGet_MarksStale(t *testing.T) {
	c := newTestClient(t, &fixture.Server{Records: fixture.Seed(3)})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.Get(context.Background(), DefaultQuery())
	require.NoError(t, err)

	now = now.Add(DefaultRevalidateAfter + time.Second)
	r, ok := c.Cached(DefaultQuery())
	require.True(t, ok)
	assert.True(t, r.Stale)
}

func TestGet_ErrorsAreNotCached(t *testing.T) {
	srv := &fixture.Server{Status: http.StatusBadGateway}
	c := newTestClient(t, srv)

	_, err := c.Get(context.Background(), DefaultQuery())
	require.Error(t, err)
	_, ok := c.Cached(DefaultQuery())
	assert.False(t, ok)
}

func TestRevalidate_ReplacesEntry(t *testing.T) {
	srv := &fixture.Server{Records: fixture.Seed(3)}
	c := newTestClient(t, srv)
	ctx := context.Background()

	_, err := c.Get(ctx, DefaultQuery())
	require.NoError(t, err)

	srv.SetRecords(fixture.Seed(4))
	p, err := c.Revalidate(ctx, DefaultQuery())
	require.NoError(t, err)
	assert.Len(t, p.Records, 4)

	r, ok := c.Cached(DefaultQuery())
	require.True(t, ok)
	assert.Len(t, r.Page.Records, 4)
	assert.Len(t, srv.Requests(), 2)
}

func TestGet_SharesInFlightRequest(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	hits := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		<-release
		w.Header().Set("X-Total-Count", "1")
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))

	const callers = 5
	var wg sync.WaitGroup
	results := make([]Result, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Get(context.Background(), DefaultQuery())
		}(i)
	}

	// Let the callers pile up on the in-flight request.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Len(t, results[i].Page.Records, 1)
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, hits)
}

func TestParseTotal(t *testing.T) {
	tests := map[string]int{
		"45":  45,
		" 7 ": 7,
		"0":   0,
		"":    TotalUnknown,
		"abc": TotalUnknown,
		"-3":  TotalUnknown,
		"4.5": TotalUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseTotal(in), "input %q", in)
	}
}
