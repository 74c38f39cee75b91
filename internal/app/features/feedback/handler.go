// internal/app/features/feedback/handler.go
package feedback

import (
	"net/http"

	apierrors "github.com/dalemusser/noticeboard/internal/app/features/errors"
	"github.com/dalemusser/noticeboard/internal/app/notify"
	"github.com/dalemusser/noticeboard/internal/app/system/auth"
	"github.com/dalemusser/noticeboard/internal/app/system/limits"
	"github.com/dalemusser/noticeboard/internal/app/system/timeouts"
	"github.com/dalemusser/noticeboard/internal/domain/models"
	"go.uber.org/zap"
)

// Handler accepts bug reports and feature requests from signed-in users.
type Handler struct {
	Svc *notify.Service
	Log *zap.Logger
}

func NewHandler(svc *notify.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

type reportRequest struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Submit handles POST /api/feedback.
//
// Request:
//
//	{ "kind":"bug"|"feature", "title":"…", "body":"…" }
//
// The report is stored as an admin message and answered with 201.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := limits.DecodeJSON(w, r, limits.MaxReportRequestSize, &req); err != nil {
		apierrors.BadRequest(w, err.Error())
		return
	}
	id, _ := auth.CurrentIdentity(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "submit report")
	defer cancel()

	res, err := h.Svc.SubmitReport(ctx, notify.ReportKind(req.Kind), req.Title, req.Body,
		models.Author{Identity: id.ID, Email: id.Email})
	if err != nil {
		apierrors.FromService(w, r, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusCreated, res)
}
