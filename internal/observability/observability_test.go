package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:          "debug",
		Format:         "json",
		Output:         &buf,
		ServiceName:    "courtdesk",
		ServiceVersion: "1.2.3",
	})

	ctx := WithRequestID(context.Background(), "req-1")
	logger.With("component", "test").DebugContext(ctx, "hello", "client_id", "c-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "courtdesk", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "req-1", entry[RequestIDKey])
	assert.Equal(t, "c-1", entry["client_id"])
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Output: &buf})
	logger.Info("quiet")
	assert.Empty(t, buf.String())
	logger.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestWithRequestID_Generates(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	assert.Len(t, RequestIDFromContext(ctx), 36)
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestTracesURL(t *testing.T) {
	u, err := tracesURL("http://collector:4318")
	require.NoError(t, err)
	assert.Equal(t, "http://collector:4318/v1/traces", u)

	u, err = tracesURL("https://collector/custom/path")
	require.NoError(t, err)
	assert.Equal(t, "https://collector/custom/path", u)

	_, err = tracesURL("not a url")
	assert.Error(t, err)
}

func TestSetupTracing_Disabled(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), TracingConfig{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupTracing_Exports(t *testing.T) {
	var hits atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/traces" {
			hits.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := SetupTracing(context.Background(), TracingConfig{
		Endpoint:    collector.URL,
		ServiceName: "courtdesk-test",
	})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	span.End()
	_ = shutdown(context.Background())

	assert.Positive(t, hits.Load())
}
