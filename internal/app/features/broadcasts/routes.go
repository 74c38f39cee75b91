// internal/app/features/broadcasts/routes.go
package broadcasts

import (
	"github.com/dalemusser/noticeboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /api/broadcasts. The feed is open to
// anonymous callers; everything else needs a signed-in identity.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/unread-count", h.UnreadCount)
		pr.Post("/read-all", h.MarkAllRead)
		pr.Post("/{id}/read", h.MarkRead)
	})
	return r
}

// MountAdminRoutes mounts broadcast administration on an admin-only router.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Delete("/broadcasts/{id}", h.Delete)
}
