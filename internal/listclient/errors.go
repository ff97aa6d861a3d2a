package listclient

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch covers transport failures and non-2xx responses.
	ErrFetch = errors.New("list client: fetch failed")
	// ErrDecode is returned when the body is not a JSON array of records.
	ErrDecode = errors.New("list client: decode failed")
	// ErrInvalidQuery is returned for a negative page index or a
	// non-positive page size.
	ErrInvalidQuery = errors.New("list client: invalid query")
)

// StatusError is a non-2xx response. It matches ErrFetch with errors.Is.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("list client: GET %s: status %d", e.URL, e.Code)
}

func (e *StatusError) Unwrap() error {
	return ErrFetch
}
