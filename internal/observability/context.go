package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const requestIDCtxKey contextKey = "request_id"

// RequestIDKey is the log attribute holding the request ID.
const RequestIDKey = "request_id"

// WithRequestID adds a request ID to the context.
// If id is empty, a new UUID is generated.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, requestIDCtxKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDCtxKey).(string); ok {
		return id
	}
	return ""
}
