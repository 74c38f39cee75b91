// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/noticeboard/internal/app/notify"
	"go.uber.org/zap"
)

// body is the JSON shape of every error response.
type body struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Write sends {"error": msg} with the given status.
func Write(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, body{Error: msg})
}

// Status maps a notify error to its HTTP status.
func Status(err error) int {
	switch {
	case stderrors.Is(err, notify.ErrValidation):
		return http.StatusBadRequest
	case stderrors.Is(err, notify.ErrForbidden):
		return http.StatusForbidden
	case stderrors.Is(err, notify.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FromService writes the response for a notify error. Client errors carry
// the error text; anything else is logged and answered with a generic 500.
func FromService(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := Status(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		Write(w, status, "internal error")
		return
	}
	Write(w, status, err.Error())
}

// BadRequest writes a 400 for a request body or query that could not be parsed.
func BadRequest(w http.ResponseWriter, msg string) {
	Write(w, http.StatusBadRequest, msg)
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Write(w, http.StatusNotFound, "not found")
}

// MethodNotAllowed answers known routes hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Write(w, http.StatusMethodNotAllowed, "method not allowed")
}
