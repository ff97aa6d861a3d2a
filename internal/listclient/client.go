package listclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/runger/datagrid/internal/table"
)

// Defaults for Options.
const (
	DefaultTotalHeader     = "X-Total-Count"
	DefaultTimeout         = 10 * time.Second
	DefaultRevalidateAfter = 30 * time.Second
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Collection string
	// TotalHeader names the response header carrying the total count.
	TotalHeader string
	Timeout     time.Duration
	CacheSize   int
	// RevalidateAfter is the age after which a cached page is stale.
	RevalidateAfter time.Duration
	Logger          *slog.Logger
	// HTTPClient replaces the default transport, mainly for tests.
	HTTPClient *http.Client
}

// Result is a page with its cache provenance.
type Result struct {
	Page   Page
	Cached bool
	Stale  bool
}

// Client fetches pages and caches them by URL. It is safe for concurrent
// use.
type Client struct {
	http            *resty.Client
	base            *url.URL
	collection      string
	totalHeader     string
	revalidateAfter time.Duration
	cache           *Cache
	group           singleflight.Group
	log             *slog.Logger
	now             func() time.Time
}

// New builds a client. BaseURL must be an absolute http(s) URL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("list client: invalid base URL: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("list client: base URL must be absolute, got: %s", opts.BaseURL)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("list client: base URL scheme must be http or https, got: %s", base.Scheme)
	}
	if strings.Trim(opts.Collection, "/") == "" {
		return nil, fmt.Errorf("list client: collection is required")
	}

	cache, err := NewCache(opts.CacheSize)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	totalHeader := opts.TotalHeader
	if totalHeader == "" {
		totalHeader = DefaultTotalHeader
	}
	revalidateAfter := opts.RevalidateAfter
	if revalidateAfter <= 0 {
		revalidateAfter = DefaultRevalidateAfter
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{log})

	return &Client{
		http:            rc,
		base:            base,
		collection:      strings.Trim(opts.Collection, "/"),
		totalHeader:     totalHeader,
		revalidateAfter: revalidateAfter,
		cache:           cache,
		log:             log,
		now:             time.Now,
	}, nil
}

// Key returns the cache key of a query: its full request URL.
func (c *Client) Key(q Query) string {
	return BuildURL(c.base, c.collection, q)
}

// Cached returns the cached page for q without touching the network.
func (c *Client) Cached(q Query) (Result, bool) {
	p, ok := c.cache.Get(c.Key(q))
	if !ok {
		return Result{}, false
	}
	return Result{Page: p, Cached: true, Stale: c.now().Sub(p.FetchedAt) > c.revalidateAfter}, true
}

// Get returns the cached page for q when there is one, otherwise fetches
// and caches it. Concurrent calls for the same key share one request.
func (c *Client) Get(ctx context.Context, q Query) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}
	if r, ok := c.Cached(q); ok {
		return r, nil
	}
	p, err := c.load(ctx, q)
	if err != nil {
		return Result{}, err
	}
	return Result{Page: p}, nil
}

// Revalidate refetches q unconditionally and replaces the cached page.
func (c *Client) Revalidate(ctx context.Context, q Query) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, err
	}
	return c.load(ctx, q)
}

func (c *Client) load(ctx context.Context, q Query) (Page, error) {
	key := c.Key(q)
	// The shared request must outlive any single caller's cancellation.
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		p, err := c.Fetch(shared, q)
		if err != nil {
			return nil, err
		}
		c.cache.Put(p)
		return p, nil
	})
	if err != nil {
		return Page{}, err
	}
	p, ok := v.(Page)
	if !ok {
		return Page{}, fmt.Errorf("list client: unexpected shared result %T", v)
	}
	return p, nil
}

// Fetch performs one GET for q, bypassing the cache.
func (c *Client) Fetch(ctx context.Context, q Query) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, err
	}
	key := c.Key(q)
	requestID := uuid.NewString()
	start := c.now()
	c.log.Debug("fetch page", "url", key, "request_id", requestID)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID).
		Get(key)
	if err != nil {
		c.log.Warn("fetch page failed", "url", key, "request_id", requestID, "error", err)
		return Page{}, fmt.Errorf("%w: GET %s: %w", ErrFetch, key, err)
	}
	if !resp.IsSuccess() {
		c.log.Warn("fetch page failed", "url", key, "request_id", requestID, "status", resp.StatusCode())
		return Page{}, &StatusError{Code: resp.StatusCode(), URL: key}
	}

	records, err := table.ParseRecords(resp.Body())
	if err != nil {
		c.log.Warn("decode page failed", "url", key, "request_id", requestID, "error", err)
		return Page{}, fmt.Errorf("%w: GET %s: %w", ErrDecode, key, err)
	}

	p := Page{
		Records:   records,
		Total:     parseTotal(resp.Header().Get(c.totalHeader)),
		Key:       key,
		Status:    resp.StatusCode(),
		FetchedAt: c.now(),
	}
	c.log.Info("fetched page",
		"url", key,
		"request_id", requestID,
		"status", p.Status,
		"records", len(p.Records),
		"total", p.Total,
		"duration_ms", c.now().Sub(start).Milliseconds(),
	)
	return p, nil
}

// parseTotal reads the total-count header. Missing, non-numeric and
// negative values mean unknown.
func parseTotal(h string) int {
	n, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || n < 0 {
		return TotalUnknown
	}
	return n
}

// restyLogger routes resty's internal messages into slog.
type restyLogger struct {
	log *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}
