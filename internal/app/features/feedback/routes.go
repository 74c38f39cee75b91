// internal/app/features/feedback/routes.go
package feedback

import (
	"net/http"

	"github.com/dalemusser/noticeboard/internal/app/system/auth"
	"github.com/dalemusser/noticeboard/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /api/feedback. When limiter is
// non-nil, submissions are throttled per identity.
func Routes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	if limiter != nil {
		r.Use(ratelimit.Middleware(limiter, identityKey))
	}
	r.Post("/", h.Submit)
	return r
}

func identityKey(r *http.Request) string {
	if id, ok := auth.CurrentIdentity(r); ok {
		return "id:" + id.ID
	}
	return ""
}
