package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnavailable = errors.New("server unavailable")

// Error is a non-2xx response. Is matches it against the common sentinels
// so callers can keep using errors.Is.
type Error struct {
	StatusCode int
	Detail     string
	Fields     map[string]string
	sentinel   error
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Detail, e.StatusCode)
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Detail, strings.Join(parts, "; "), e.StatusCode)
}

func (e *Error) Unwrap() error { return e.sentinel }
