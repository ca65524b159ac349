package booking

import (
	"errors"
	"net/http"

	"courtdesk/internal/httpjson"
	"courtdesk/internal/membership"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the quote route on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/bookings/quote", h.handleQuote)
}

// RegisterMutations mounts the confirmation route, which may deduct a session.
func (h *Handler) RegisterMutations(r chi.Router) {
	r.Post("/v1/bookings/confirm", h.handleConfirm)
}

type ConfirmRequest struct {
	Draft
	BookingID string `json:"bookingId"`
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	var d Draft
	if err := httpjson.Read(r, &d); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.Quote(r.Context(), d)
	if err != nil {
		writeError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, res)
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.Confirm(r.Context(), req.Draft, req.BookingID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, res)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidDraft) {
		httpjson.ErrorCode(w, http.StatusBadRequest, membership.CodeInvalidInput, err.Error())
		return
	}
	membership.WriteError(w, err)
}
