// internal/app/features/messages/routes.go
package messages

import (
	"github.com/dalemusser/noticeboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the organizer inbox router, mounted at /api/messages.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(auth.RoleOrganizer))
	r.Get("/", h.Inbox)
	r.Get("/unread-count", h.UnreadCount)
	r.Post("/{id}/read", h.MarkRead)
	return r
}

// MountAdminRoutes registers the admin message endpoints on r. The caller
// is responsible for the admin role guard.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/messages", h.Send)
	r.Get("/messages", h.History)
	r.Delete("/messages/{id}", h.Delete)
}
