package internal

import (
	"context"
)

type ctxKey string

const (
	ContextUserKey   ctxKey = "uid"
	ContextScopesKey ctxKey = "scopes"
)

// UserIDFromContext returns the authenticated user id, 0 when unauthenticated.
func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if uid, ok := ctx.Value(ContextUserKey).(int64); ok {
		return uid
	}
	return 0
}

func ContextWithUserID(ctx context.Context, uid int64) context.Context {
	return context.WithValue(ctx, ContextUserKey, uid)
}

// ContextWithScopes stores the scopes granted by a validated bearer token.
func ContextWithScopes(ctx context.Context, scopes []string) context.Context {
	return context.WithValue(ctx, ContextScopesKey, scopes)
}

// ScopesFromContext returns the granted scopes, nil when unauthenticated.
func ScopesFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if scopes, ok := ctx.Value(ContextScopesKey).([]string); ok {
		return scopes
	}
	return nil
}

// HasScope reports whether the request's token was granted a scope.
func HasScope(ctx context.Context, scope string) bool {
	for _, s := range ScopesFromContext(ctx) {
		if s == scope {
			return true
		}
	}
	return false
}
