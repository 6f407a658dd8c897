package usecase

import "context"

type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID attaches the acting back-office user to the context; the auth
// middleware sets it and audit logging reads it.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func userIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok && id != "" {
		return id
	}

	return "system"
}
