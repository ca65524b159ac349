package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"courtdesk/internal/observability"

	"github.com/stretchr/testify/assert"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "abc", seen)
}

func TestRateLimiter(t *testing.T) {
	h := NewRateLimiter(2).Handler(ok)

	status := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, status("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, status("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, status("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, status("10.0.0.2:1000"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	h := NewRateLimiter(0).Handler(ok)
	for i := 0; i < 100; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(observability.LogConfig{Output: &buf})
	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/plans", nil))
	assert.Contains(t, buf.String(), "status=500")
	assert.Contains(t, buf.String(), "path=/v1/plans")
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://club.example"})(ok)
	req := httptest.NewRequest(http.MethodOptions, "/v1/plans", nil)
	req.Header.Set("Origin", "https://club.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://club.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestTrace(t *testing.T) {
	rec := httptest.NewRecorder()
	Trace(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
