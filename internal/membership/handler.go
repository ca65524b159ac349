// internal/membership/handler.go
package membership

import (
	"net/http"

	"courtdesk/internal/httpjson"
	"courtdesk/internal/schedule"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the read routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/clients/{clientID}/membership", h.handleGetActive)
	r.Get("/v1/clients/{clientID}/memberships", h.handleListMemberships)
	r.Get("/v1/clients/{clientID}/history", h.handleHistory)
	r.Get("/v1/clients/{clientID}/summary", h.handleSummary)
	r.Get("/v1/memberships/{membershipID}", h.handleGetMembership)
}

// RegisterMutations mounts the routes that change the ledger, so callers can
// wrap them in stricter middleware.
func (h *Handler) RegisterMutations(r chi.Router) {
	r.Post("/v1/clients/{clientID}/memberships", h.handlePurchase)
	r.Post("/v1/memberships/{membershipID}/deductions", h.handleDeduct)
	r.Post("/v1/memberships/{membershipID}/adjustments", h.handleAdjust)
}

// PurchaseRequest buys a catalog plan, or a custom one when Custom is set.
type PurchaseRequest struct {
	PlanID       string        `json:"planId,omitempty"`
	PurchaseDate schedule.Date `json:"purchaseDate,omitzero"`
	Custom       *CustomPlan   `json:"custom,omitempty"`
}

type DeductRequest struct {
	BookingID string `json:"bookingId"`
}

type AdjustRequest struct {
	NewBalance int    `json:"newBalance"`
	Reason     string `json:"reason"`
	AdminID    string `json:"adminId"`
}

func (h *Handler) handleGetActive(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.GetActiveMembership(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	if m == nil {
		httpjson.ErrorCode(w, http.StatusNotFound, CodeNotFound, "client has no active membership")
		return
	}
	httpjson.Write(w, http.StatusOK, m)
}

func (h *Handler) handleListMemberships(w http.ResponseWriter, r *http.Request) {
	ms, err := h.service.ListMemberships(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	if ms == nil {
		ms = []*ClientMembership{}
	}
	httpjson.Write(w, http.StatusOK, ms)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.GetMembershipHistory(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	if txs == nil {
		txs = []*Transaction{}
	}
	httpjson.Write(w, http.StatusOK, txs)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.ClientSummary(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, sum)
}

func (h *Handler) handleGetMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := membershipID(w, r)
	if !ok {
		return
	}
	m, err := h.service.GetMembership(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, m)
}

func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.ErrorCode(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}
	clientID := chi.URLParam(r, "clientID")

	var (
		m   *ClientMembership
		err error
	)
	switch {
	case req.Custom != nil && req.PlanID != "":
		httpjson.ErrorCode(w, http.StatusBadRequest, CodeInvalidInput, "planId and custom are mutually exclusive")
		return
	case req.Custom != nil:
		m, err = h.service.PurchaseCustom(r.Context(), clientID, *req.Custom, req.PurchaseDate)
	default:
		m, err = h.service.PurchaseMembership(r.Context(), clientID, req.PlanID, req.PurchaseDate)
	}
	if err != nil {
		WriteError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, m)
}

func (h *Handler) handleDeduct(w http.ResponseWriter, r *http.Request) {
	id, ok := membershipID(w, r)
	if !ok {
		return
	}
	var req DeductRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.ErrorCode(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}
	tx, err := h.service.DeductSession(r.Context(), id, req.BookingID)
	if err != nil {
		WriteError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, tx)
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	id, ok := membershipID(w, r)
	if !ok {
		return
	}
	var req AdjustRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.ErrorCode(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}
	tx, err := h.service.AdjustBalance(r.Context(), id, req.NewBalance, req.Reason, req.AdminID)
	if err != nil {
		WriteError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, tx)
}

func membershipID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "membershipID"))
	if err != nil {
		httpjson.ErrorCode(w, http.StatusBadRequest, CodeInvalidInput, "invalid membership ID")
		return uuid.Nil, false
	}
	return id, true
}

// WriteError renders a ledger error with its status and code. Internal
// errors are not echoed to the client.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		httpjson.ErrorCode(w, status, CodeInternal, "internal error")
		return
	}
	httpjson.ErrorCode(w, status, Code(err), err.Error())
}
