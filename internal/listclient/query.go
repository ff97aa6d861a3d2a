// Package listclient fetches pages of records from a json-server style list
// endpoint and keeps them in a URL-keyed stale-while-revalidate cache.
package listclient

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/runger/datagrid/internal/table"
)

// TotalUnknown is Page.Total when the endpoint did not report a usable
// total.
const TotalUnknown = -1

// Defaults for a freshly mounted grid.
const (
	DefaultPageIndex = 0
	DefaultPageSize  = 20
)

// Query is the request state of a grid. Equal values are the same request.
type Query struct {
	PageIndex int
	PageSize  int
	Filter    string
}

// DefaultQuery returns {0, 20, ""}.
func DefaultQuery() Query {
	return Query{PageIndex: DefaultPageIndex, PageSize: DefaultPageSize}
}

// Validate checks PageIndex >= 0 and PageSize > 0.
func (q Query) Validate() error {
	if q.PageIndex < 0 {
		return fmt.Errorf("%w: page index %d is negative", ErrInvalidQuery, q.PageIndex)
	}
	if q.PageSize <= 0 {
		return fmt.Errorf("%w: page size %d must be positive", ErrInvalidQuery, q.PageSize)
	}
	return nil
}

// Params returns the endpoint parameters: _page is 1-based, q is present
// only for a non-empty filter.
func (q Query) Params() url.Values {
	v := url.Values{}
	v.Set("_page", strconv.Itoa(q.PageIndex+1))
	v.Set("_limit", strconv.Itoa(q.PageSize))
	if q.Filter != "" {
		v.Set("q", q.Filter)
	}
	return v
}

// BuildURL resolves the request URL for a query. Parameters are encoded in
// sorted order, so the result doubles as a stable cache key.
func BuildURL(base *url.URL, collection string, q Query) string {
	u := base.JoinPath(collection)
	u.RawQuery = q.Params().Encode()
	return u.String()
}

// Page is one fetched page. It is never mutated once returned.
type Page struct {
	Records   []table.Record
	Total     int
	Key       string
	Status    int
	FetchedAt time.Time
}

// TotalKnown reports whether the endpoint reported a total.
func (p Page) TotalKnown() bool {
	return p.Total >= 0
}

// PageCount returns ceil(Total/pageSize), or TotalUnknown.
func (p Page) PageCount(pageSize int) int {
	if !p.TotalKnown() || pageSize <= 0 {
		return TotalUnknown
	}
	return (p.Total + pageSize - 1) / pageSize
}
