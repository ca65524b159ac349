package audit

import (
	"net/http"

	"courtdesk/internal/httpjson"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	auditor *Auditor
}

func NewHandler(auditor *Auditor) *Handler {
	return &Handler{auditor: auditor}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/admin/audit", h.handleAudit)
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	report, err := h.auditor.Run(r.Context())
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "audit failed")
		return
	}
	httpjson.Write(w, http.StatusOK, report)
}
