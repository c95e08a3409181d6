package interceptors

import "context"

type contextKey struct{ name string }

var (
	userIDKey = contextKey{"user_id"}
	orgIDKey  = contextKey{"org_id"}
)

// WithIdentity returns a context carrying the authenticated user and the organization the call
// is scoped to. orgID may be empty for calls that are not organization scoped.
func WithIdentity(ctx context.Context, userID, orgID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, orgIDKey, orgID)
	return ctx
}

// GetUserID returns the user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// GetOrgID returns the org_id from context and true if set; otherwise "", false.
func GetOrgID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(orgIDKey).(string)
	return v, ok
}
