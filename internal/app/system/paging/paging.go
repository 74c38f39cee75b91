// internal/app/system/paging/paging.go
package paging

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// Int reads a non-negative integer query parameter. A missing or empty
// parameter yields 0 so callers fall back to their defaults.
func Int(r *http.Request, key string) (int, error) {
	s := query.Get(r, key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

// ParsePage extracts the 1-based "page" parameter (0 when absent).
func ParsePage(r *http.Request) (int, error) { return Int(r, "page") }

// ParseLimit extracts the "limit" parameter (0 when absent).
func ParseLimit(r *http.Request) (int, error) { return Int(r, "limit") }
