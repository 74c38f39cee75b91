// internal/app/features/messages/handler.go
package messages

import (
	"net/http"

	apierrors "github.com/dalemusser/noticeboard/internal/app/features/errors"
	"github.com/dalemusser/noticeboard/internal/app/notify"
	"github.com/dalemusser/noticeboard/internal/app/system/auth"
	"github.com/dalemusser/noticeboard/internal/app/system/limits"
	"github.com/dalemusser/noticeboard/internal/app/system/paging"
	"github.com/dalemusser/noticeboard/internal/app/system/timeouts"
	"github.com/dalemusser/noticeboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves admin sends and history plus the organizer inbox.
type Handler struct {
	Svc *notify.Service
	Log *zap.Logger
}

func NewHandler(svc *notify.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

type sendRequest struct {
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	Type         string   `json:"type"`
	RecipientIDs []string `json:"recipient_ids"`
}

// Send handles POST /api/admin/messages.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := limits.DecodeJSON(w, r, limits.MaxMessageRequestSize, &req); err != nil {
		apierrors.BadRequest(w, err.Error())
		return
	}
	id, _ := auth.CurrentIdentity(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "send message")
	defer cancel()

	res, err := h.Svc.SendMessage(ctx, notify.SendInput{
		Title:  req.Title,
		Body:   req.Body,
		Target: notify.ParseTarget(req.Type, req.RecipientIDs),
		Sender: models.Author{Identity: id.ID, Email: id.Email},
	})
	if err != nil {
		apierrors.FromService(w, r, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusCreated, res)
}

// History handles GET /api/admin/messages?page=&limit=.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	page, err := paging.ParsePage(r)
	if err != nil {
		apierrors.BadRequest(w, err.Error())
		return
	}
	limit, err := paging.ParseLimit(r)
	if err != nil {
		apierrors.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "message history")
	defer cancel()

	hp, err := h.Svc.ListMessageHistory(ctx, page, limit)
	if err != nil {
		apierrors.FromService(w, r, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, hp)
}

type ackResponse struct {
	OK bool `json:"ok"`
}

// Delete handles DELETE /api/admin/messages/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete message")
	defer cancel()

	if err := h.Svc.DeleteMessage(ctx, chi.URLParam(r, "id")); err != nil {
		apierrors.FromService(w, r, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, ackResponse{OK: true})
}

type inboxResponse struct {
	Items []notify.OrganizerMessage `json:"items"`
}

// Inbox handles GET /api/messages for the signed-in organizer.
func (h *Handler) Inbox(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.CurrentIdentity(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "organizer inbox")
	defer cancel()

	items, err := h.Svc.ListMessagesForOrganizer(ctx, id.ID)
	if err != nil {
		apierrors.FromService(w, r, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, inboxResponse{Items: items})
}

type countResponse struct {
	Count int64 `json:"count"`
}

// UnreadCount handles GET /api/messages/unread-count.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.CurrentIdentity(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "unread message count")
	defer cancel()

	n, err := h.Svc.UnreadMessageCount(ctx, id.ID)
	if err != nil {
		apierrors.FromService(w, r, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, countResponse{Count: n})
}

// MarkRead handles POST /api/messages/{id}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.CurrentIdentity(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mark message read")
	defer cancel()

	st, err := h.Svc.MarkMessageRead(ctx, chi.URLParam(r, "id"), id.ID)
	if err != nil {
		apierrors.FromService(w, r, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, st)
}
