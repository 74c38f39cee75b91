// internal/app/system/limits/limits.go
package limits

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Request body size limits for the JSON endpoints.
const (
	// MaxMessageRequestSize bounds admin send requests. A full recipient list
	// of 24-hex ids fits comfortably.
	MaxMessageRequestSize = 256 << 10 // 256 KB

	// MaxReportRequestSize bounds bug report and feature request submissions.
	MaxReportRequestSize = 32 << 10 // 32 KB
)

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is required")

// DecodeJSON decodes a single JSON object from r into v, reading at most
// max bytes. Unknown fields and trailing data are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, max int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, max)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return ErrEmptyBody
		case errors.As(err, &tooBig):
			return fmt.Errorf("request body must not exceed %d bytes", tooBig.Limit)
		default:
			return fmt.Errorf("malformed JSON: %w", err)
		}
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
