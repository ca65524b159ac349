// internal/catalog/handler.go
package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"courtdesk/internal/httpjson"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the plan routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/plans", h.handleListPlans)
	r.Post("/v1/plans", h.handleAddPlan)
	r.Get("/v1/plans/{planID}", h.handleGetPlan)
	r.Delete("/v1/plans/{planID}", h.handleDeactivatePlan)
}

func (h *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	activeOnly := false
	if v := r.URL.Query().Get("active"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "active must be a boolean")
			return
		}
		activeOnly = parsed
	}

	plans, err := h.service.ListPlans(r.Context(), activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	if plans == nil {
		plans = []*Plan{}
	}
	httpjson.Write(w, http.StatusOK, plans)
}

func (h *Handler) handleAddPlan(w http.ResponseWriter, r *http.Request) {
	var req Plan
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.service.AddPlan(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, plan)
}

func (h *Handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.GetPlan(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, plan)
}

func (h *Handler) handleDeactivatePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeactivatePlan(r.Context(), chi.URLParam(r, "planID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case IsErrNotFound(err):
		httpjson.ErrorCode(w, http.StatusNotFound, "not_found", err.Error())
	case IsErrInvalidPlan(err):
		httpjson.ErrorCode(w, http.StatusBadRequest, "invalid_plan", err.Error())
	case errors.Is(err, ErrDuplicate):
		httpjson.ErrorCode(w, http.StatusConflict, "duplicate", err.Error())
	default:
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
