package fixture

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/runger/datagrid/internal/table"
)

// Server is a json-server style list endpoint over a fixed record set:
// _page (1-based) and _limit slice the set, q keeps records with any string
// or number field containing the text case-insensitively, and the
// x-total-count header carries the filtered total.
type Server struct {
	Records []table.Record

	// OmitTotal drops the total-count header.
	OmitTotal bool
	// Status, when non-zero, is returned instead of a page.
	Status int

	mu       sync.Mutex
	requests []string
}

var _ http.Handler = (*Server)(nil)

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.RequestURI())
	records := s.Records
	s.mu.Unlock()

	if s.Status != 0 {
		http.Error(w, http.StatusText(s.Status), s.Status)
		return
	}

	params := r.URL.Query()
	matched := filterRecords(records, params.Get("q"))

	page := atoiDefault(params.Get("_page"), 1)
	limit := atoiDefault(params.Get("_limit"), len(matched))
	start := min(max(page-1, 0)*limit, len(matched))
	end := min(start+limit, len(matched))

	var b strings.Builder
	b.WriteByte('[')
	for i, rec := range matched[start:end] {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(rec.Raw())
	}
	b.WriteByte(']')

	w.Header().Set("Content-Type", "application/json")
	if !s.OmitTotal {
		w.Header().Set("X-Total-Count", strconv.Itoa(len(matched)))
	}
	_, _ = w.Write([]byte(b.String()))
}

// SetRecords replaces the record set while the server is running.
func (s *Server) SetRecords(records []table.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = records
}

// Requests returns the request URIs served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

func filterRecords(records []table.Record, q string) []table.Record {
	if q == "" {
		return records
	}
	q = strings.ToLower(q)
	var out []table.Record
	for _, rec := range records {
		hit := false
		gjson.ParseBytes(rec.Raw()).ForEach(func(_, v gjson.Result) bool {
			if (v.Type == gjson.String || v.Type == gjson.Number) && strings.Contains(strings.ToLower(v.String()), q) {
				hit = true
				return false
			}
			return true
		})
		if hit {
			out = append(out, rec)
		}
	}
	return out
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
