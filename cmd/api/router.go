package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"courtdesk/internal/audit"
	"courtdesk/internal/booking"
	"courtdesk/internal/catalog"
	"courtdesk/internal/httpjson"
	"courtdesk/internal/membership"
	"courtdesk/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterDeps holds what the HTTP surface needs.
type RouterDeps struct {
	Logger         *slog.Logger
	Catalog        catalog.Service
	Ledger         membership.Service
	Booking        booking.Service
	Auditor        *audit.Auditor
	AllowedOrigins []string
	RateLimit      int
	// Ping reports storage health; nil means always healthy.
	Ping func(context.Context) error
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Trace)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.CORS(d.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ping(ctx); err != nil {
				httpjson.Write(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	plans := catalog.NewHandler(d.Catalog)
	ledger := membership.NewHandler(d.Ledger)
	bookings := booking.NewHandler(d.Booking)

	plans.Register(r)
	ledger.Register(r)
	bookings.Register(r)
	audit.NewHandler(d.Auditor).Register(r)

	limiter := middleware.NewRateLimiter(d.RateLimit)
	r.Group(func(r chi.Router) {
		r.Use(limiter.Handler)
		ledger.RegisterMutations(r)
		bookings.RegisterMutations(r)
	})
	return r
}
