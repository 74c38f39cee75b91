// internal/app/features/broadcasts/handler.go
package broadcasts

import (
	"net/http"

	apierrors "github.com/dalemusser/noticeboard/internal/app/features/errors"
	"github.com/dalemusser/noticeboard/internal/app/notify"
	"github.com/dalemusser/noticeboard/internal/app/system/auth"
	"github.com/dalemusser/noticeboard/internal/app/system/paging"
	"github.com/dalemusser/noticeboard/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the user-facing broadcast feed and read tracking, plus
// admin deletion of broadcasts.
type Handler struct {
	Svc *notify.Service
	Log *zap.Logger
}

func NewHandler(svc *notify.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

type feedResponse struct {
	Items []notify.FeedItem `json:"items"`
}

// List handles GET /api/broadcasts?limit=.
// Anonymous callers get every item with is_read=false.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := paging.ParseLimit(r)
	if err != nil {
		apierrors.BadRequest(w, err.Error())
		return
	}

	var userID string
	if id, ok := auth.CurrentIdentity(r); ok {
		userID = id.ID
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list broadcasts")
	defer cancel()

	items, err := h.Svc.ListBroadcasts(ctx, userID, limit)
	if err != nil {
		apierrors.FromService(w, r, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, feedResponse{Items: items})
}

type countResponse struct {
	Count int64 `json:"count"`
}

// UnreadCount handles GET /api/broadcasts/unread-count.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.CurrentIdentity(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "unread broadcast count")
	defer cancel()

	n, err := h.Svc.UnreadBroadcastCount(ctx, id.ID)
	if err != nil {
		apierrors.FromService(w, r, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, countResponse{Count: n})
}

type ackResponse struct {
	OK bool `json:"ok"`
}

// MarkRead handles POST /api/broadcasts/{id}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.CurrentIdentity(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mark broadcast read")
	defer cancel()

	if err := h.Svc.MarkBroadcastRead(ctx, chi.URLParam(r, "id"), id.ID); err != nil {
		apierrors.FromService(w, r, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, ackResponse{OK: true})
}

type markAllResponse struct {
	OK     bool  `json:"ok"`
	Marked int64 `json:"marked"`
}

// MarkAllRead handles POST /api/broadcasts/read-all.
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.CurrentIdentity(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "mark all broadcasts read")
	defer cancel()

	n, err := h.Svc.MarkAllBroadcastsRead(ctx, id.ID)
	if err != nil {
		apierrors.FromService(w, r, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, markAllResponse{OK: true, Marked: n})
}

// Delete handles DELETE /api/admin/broadcasts/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete broadcast")
	defer cancel()

	if err := h.Svc.DeleteBroadcast(ctx, chi.URLParam(r, "id")); err != nil {
		apierrors.FromService(w, r, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, ackResponse{OK: true})
}
