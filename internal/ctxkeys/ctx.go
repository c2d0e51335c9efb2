package ctxkeys

import (
	"context"

	"github.com/vicu/vicu-api/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	IdentityKey  contextKey = "identity"
	RequestIDKey contextKey = "request_id"
)

// Identity returns the caller identity. Requests that never went through the
// auth middleware are anonymous.
func Identity(ctx context.Context) model.Identity {
	id, ok := ctx.Value(IdentityKey).(model.Identity)
	if !ok {
		return model.Anonymous()
	}
	return id
}

func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// UserID is shorthand for Identity(ctx).UserID().
func UserID(ctx context.Context) (string, bool) {
	return Identity(ctx).UserID()
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
