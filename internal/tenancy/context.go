// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenancy

import "context"

// Define a private custom type to avoid collisions
type contextKey struct{}

var requestContextKey = contextKey{}

// RequestContext identifies the tenant, and once authenticated the user,
// a single request is acting for.
type RequestContext struct {
	TenantID string
	UserID   string
	Username string
	Roles    []string
}

// Authenticated reports whether a user has been bound to the request.
func (r RequestContext) Authenticated() bool {
	return r.UserID != ""
}

// WithContext returns a copy of ctx carrying rc, replacing any value set upstream.
func WithContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey, rc)
}

// FromContext retrieves the RequestContext from ctx.
// Returns false when absent or when no tenant was resolved.
func FromContext(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey).(RequestContext)
	if !ok || rc.TenantID == "" {
		return RequestContext{}, false
	}
	return rc, true
}

// TenantID returns the tenant bound to ctx or ErrTenantMissing.
func TenantID(ctx context.Context) (string, error) {
	rc, ok := FromContext(ctx)
	if !ok {
		return "", ErrTenantMissing
	}
	return rc.TenantID, nil
}
