package common

import "context"

// ContextKey represents a context key type
type ContextKey string

// ContextKeyUserID carries the authenticated user id. Request ids and
// timings live in chi's middleware context, not here.
const ContextKeyUserID ContextKey = "user_id"

// WithUserID adds the authenticated user id to the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// GetUserID extracts the authenticated user id from the context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	return userID, ok
}
