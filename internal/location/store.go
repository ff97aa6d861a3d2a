// Package location holds the grid's "address bar": a URL whose query
// string carries shareable view state, with navigation history and
// per-parameter change subscriptions.
package location

import (
	"fmt"
	"net/url"
	"sync"
)

// Listener receives the new value of a subscribed query parameter. An
// absent parameter is reported as "".
type Listener func(value string)

type subscription struct {
	id  int
	key string
	fn  Listener
}

// Store is a goroutine-safe location with history.
type Store struct {
	mu      sync.Mutex
	history []*url.URL
	cursor  int
	subs    []subscription
	nextID  int
}

// New parses raw (a full URL, a path, or just "?q=x") into a store with a
// single history entry.
func New(raw string) (*Store, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse location %q: %w", raw, err)
	}
	return &Store{history: []*url.URL{u}}, nil
}

// MustNew is New for known-good literals.
func MustNew(raw string) *Store {
	s, err := New(raw)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Store) current() *url.URL {
	return s.history[s.cursor]
}

// Get returns the first value of a query parameter.
func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current().Query().Get(key)
}

// Values returns a copy of the current query parameters.
func (s *Store) Values() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current().Query()
}

// String returns the current URL.
func (s *Store) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current().String()
}

// Set writes a query parameter, creating or overwriting it; an empty value
// removes it. A change pushes a new history entry, dropping any forward
// entries. Setting the current value does nothing.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	cur := s.current()
	q := cur.Query()
	if q.Get(key) == value && (value != "" || !q.Has(key)) {
		s.mu.Unlock()
		return
	}
	if value == "" {
		q.Del(key)
	} else {
		q.Set(key, value)
	}
	next := *cur
	next.RawQuery = q.Encode()
	notify := s.push(&next, cur)
	s.mu.Unlock()

	notify()
}

// Navigate replaces the whole location, as following a link would.
func (s *Store) Navigate(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse location %q: %w", raw, err)
	}
	s.mu.Lock()
	notify := s.push(u, s.current())
	s.mu.Unlock()

	notify()
	return nil
}

// Back moves to the previous history entry. It reports false at the start
// of history.
func (s *Store) Back() bool {
	return s.move(-1)
}

// Forward moves to the next history entry. It reports false at the end of
// history.
func (s *Store) Forward() bool {
	return s.move(1)
}

func (s *Store) move(step int) bool {
	s.mu.Lock()
	target := s.cursor + step
	if target < 0 || target >= len(s.history) {
		s.mu.Unlock()
		return false
	}
	prev := s.current()
	s.cursor = target
	notify := s.changes(prev, s.current())
	s.mu.Unlock()

	notify()
	return true
}

// CanBack reports whether Back would move.
func (s *Store) CanBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor > 0
}

// CanForward reports whether Forward would move.
func (s *Store) CanForward() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor < len(s.history)-1
}

// Subscribe registers fn for changes of the key's value and returns a
// function that removes it. Listeners run after the store is unlocked, on
// the goroutine that made the change.
func (s *Store) Subscribe(key string, fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, key: key, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// push must be called with mu held.
func (s *Store) push(next, prev *url.URL) func() {
	s.history = append(s.history[:s.cursor+1:s.cursor+1], next)
	s.cursor++
	return s.changes(prev, next)
}

// changes must be called with mu held. It snapshots the listeners whose
// key changed between prev and next.
func (s *Store) changes(prev, next *url.URL) func() {
	pq, nq := prev.Query(), next.Query()
	type call struct {
		fn    Listener
		value string
	}
	var calls []call
	for _, sub := range s.subs {
		if pq.Get(sub.key) != nq.Get(sub.key) {
			calls = append(calls, call{fn: sub.fn, value: nq.Get(sub.key)})
		}
	}
	return func() {
		for _, c := range calls {
			c.fn(c.value)
		}
	}
}
