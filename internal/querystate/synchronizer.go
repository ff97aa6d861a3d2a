// Package querystate owns a grid's request state (page index, page size,
// filter) and mirrors the filter into the location's q parameter in both
// directions.
package querystate

import (
	"fmt"
	"sync"

	"github.com/runger/datagrid/internal/listclient"
	"github.com/runger/datagrid/internal/location"
)

// FilterParam is the location query parameter holding the filter.
const FilterParam = "q"

// Synchronizer is the single source of truth for the current
// listclient.Query. It is safe for concurrent use; listeners run outside
// its lock.
type Synchronizer struct {
	loc *location.Store

	mu        sync.Mutex
	query     listclient.Query
	listeners []func(listclient.Query)

	unsubscribe func()
}

// New starts from initial, takes the filter from the location when the
// location has one, and follows later location changes of q.
func New(loc *location.Store, initial listclient.Query) (*Synchronizer, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	if v := loc.Get(FilterParam); v != "" {
		initial.Filter = v
	}
	s := &Synchronizer{loc: loc, query: initial}
	s.unsubscribe = loc.Subscribe(FilterParam, s.followLocation)
	return s, nil
}

// Close stops following the location.
func (s *Synchronizer) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Query returns the current query value.
func (s *Synchronizer) Query() listclient.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// OnChange registers fn to receive every effective change.
func (s *Synchronizer) OnChange(fn func(listclient.Query)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SetPageIndex moves to a page. The page size and filter are kept.
func (s *Synchronizer) SetPageIndex(index int) error {
	if index < 0 {
		return fmt.Errorf("%w: page index %d is negative", listclient.ErrInvalidQuery, index)
	}
	s.update(func(q *listclient.Query) { q.PageIndex = index })
	return nil
}

// SetPageSize changes the page size without resetting the page index.
func (s *Synchronizer) SetPageSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: page size %d must be positive", listclient.ErrInvalidQuery, size)
	}
	s.update(func(q *listclient.Query) { q.PageSize = size })
	return nil
}

// SetFilter changes the filter and writes it to the location; an empty
// filter removes the parameter.
func (s *Synchronizer) SetFilter(filter string) {
	s.update(func(q *listclient.Query) { q.Filter = filter })
	s.loc.Set(FilterParam, filter)
}

// followLocation applies an external change of q. The location already
// holds the value, so nothing is written back.
func (s *Synchronizer) followLocation(value string) {
	s.update(func(q *listclient.Query) { q.Filter = value })
}

func (s *Synchronizer) update(mutate func(*listclient.Query)) {
	s.mu.Lock()
	next := s.query
	mutate(&next)
	if next == s.query {
		s.mu.Unlock()
		return
	}
	s.query = next
	listeners := append([]func(listclient.Query){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
}
