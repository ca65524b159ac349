package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courtdesk/internal/audit"
	"courtdesk/internal/booking"
	"courtdesk/internal/catalog"
	"courtdesk/internal/membership"
	"courtdesk/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, rateLimit int, ping func(context.Context) error) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := store.NewMemoryStore()
	plans := catalog.NewService(repo, 1, logger)
	_, err := plans.Seed(context.Background(), catalog.DefaultPlans(1))
	require.NoError(t, err)
	ledger := membership.NewService(repo, plans,
		membership.WithLogger(logger),
		membership.WithClock(func() time.Time { return time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC) }),
	)
	return NewRouter(RouterDeps{
		Logger:         logger,
		Catalog:        plans,
		Ledger:         ledger,
		Booking:        booking.NewService(ledger, logger),
		Auditor:        audit.NewAuditor(repo, logger),
		AllowedOrigins: []string{"http://localhost:3000"},
		RateLimit:      rateLimit,
		Ping:           ping,
	})
}

func request(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	h.ServeHTTP(rec, httptest.NewRequest(method, path, r))
	return rec
}

func TestRouter_Routes(t *testing.T) {
	h := newTestRouter(t, 0, nil)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/v1/plans", "", http.StatusOK},
		{http.MethodGet, "/v1/plans/plan_001", "", http.StatusOK},
		{http.MethodGet, "/v1/clients/c-1/membership", "", http.StatusNotFound},
		{http.MethodPost, "/v1/clients/c-1/memberships", `{"planId":"plan_001","purchaseDate":"2024-03-04"}`, http.StatusCreated},
		{http.MethodGet, "/v1/clients/c-1/membership", "", http.StatusOK},
		{http.MethodGet, "/v1/clients/c-1/history", "", http.StatusOK},
		{http.MethodGet, "/v1/clients/c-1/summary", "", http.StatusOK},
		{http.MethodPost, "/v1/bookings/quote", `{"clientId":"c-1","date":"2024-03-04","time":"10:00","basePrice":500}`, http.StatusOK},
		{http.MethodPost, "/v1/bookings/confirm", `{"clientId":"c-1","date":"2024-03-04","time":"10:00","basePrice":500,"bookingId":"b-1"}`, http.StatusOK},
		{http.MethodGet, "/v1/admin/audit", "", http.StatusOK},
		{http.MethodDelete, "/v1/plans/plan_002", "", http.StatusNoContent},
	}
	for _, tt := range tests {
		rec := request(h, tt.method, tt.path, tt.body)
		assert.Equal(t, tt.want, rec.Code, "%s %s: %s", tt.method, tt.path, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"), tt.path)
	}
}

func TestRouter_RateLimitsMutations(t *testing.T) {
	h := newTestRouter(t, 1, nil)

	rec := request(h, http.MethodPost, "/v1/memberships/00000000-0000-0000-0000-000000000001/deductions", `{"bookingId":"b"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = request(h, http.MethodPost, "/v1/memberships/00000000-0000-0000-0000-000000000001/deductions", `{"bookingId":"b"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = request(h, http.MethodGet, "/v1/plans", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_HealthUnavailable(t *testing.T) {
	h := newTestRouter(t, 0, func(context.Context) error { return errors.New("db down") })
	rec := request(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
