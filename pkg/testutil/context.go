package testutil

import (
	"context"
	"net/http"

	"letterc/internal/platform/middleware"
)

// WithUserID adds an authenticated user ID to the request context, simulating
// what the auth middleware does for a valid token.
func WithUserID(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyUserID, userID)
	return req.WithContext(ctx)
}

// WithClerk adds both the user and acting clerk IDs to the request context.
// This is the typical state for an authenticated registry request.
func WithClerk(req *http.Request, userID, clerkID string) *http.Request {
	ctx := req.Context()
	if userID != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	}
	if clerkID != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyClerkID, clerkID)
	}
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
