package middleware

import "context"

const (
	userIDKey = contextKey("userID")
	orgIDKey  = contextKey("organizationID")
)

// GetUserIDFromCtx retrieves the authenticated user id from the context.
func GetUserIDFromCtx(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// GetOrgIDFromCtx retrieves the tenant binding from the context. Every
// repository call downstream is scoped to this organization.
func GetOrgIDFromCtx(ctx context.Context) (string, bool) {
	orgID, ok := ctx.Value(orgIDKey).(string)
	return orgID, ok && orgID != ""
}

// WithUserID stores the authenticated user id in the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WithOrgID stores the tenant binding in the context.
func WithOrgID(ctx context.Context, organizationID string) context.Context {
	return context.WithValue(ctx, orgIDKey, organizationID)
}
