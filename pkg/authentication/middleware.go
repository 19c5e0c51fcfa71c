// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/canonical/tenant-crm/internal/http/types"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/tenancy"
	"github.com/canonical/tenant-crm/internal/tracing"
)

type Middleware struct {
	verifier TokenVerifierInterface
	resolver tenancy.ResolverInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Authenticate binds the tenant and user carried by a valid bearer token to the request.
// A tenant header naming another tenant than the token is rejected.
func (m *Middleware) Authenticate() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "authentication.Middleware.Authenticate")
			defer span.End()

			token, found := m.getBearerToken(r.Header)
			if !found {
				m.logger.Security().AuthnTokenInvalid("missing bearer token")
				m.unauthorizedResponse(w)
				return
			}

			claims, err := m.verifier.VerifyToken(ctx, token)
			if err != nil {
				m.logger.Debugf("JWT verification failed: %v", err)
				m.logger.Security().AuthnTokenInvalid(err.Error())
				m.unauthorizedResponse(w)
				return
			}

			if r.Header.Get(m.resolver.Header()) != "" {
				tenantID, err := m.resolver.Resolve(r.Header)
				if err != nil || tenantID != claims.TenantID {
					m.logger.Security().AuthzFailure(claims.Subject, "tenant:"+r.Header.Get(m.resolver.Header()))
					m.unauthorizedResponse(w)
					return
				}
			}

			span.SetAttributes(
				attribute.String("tenant.id", claims.TenantID),
				attribute.String("user.id", claims.Subject),
			)

			ctx = tenancy.WithContext(ctx, tenancy.RequestContext{
				TenantID: claims.TenantID,
				UserID:   claims.Subject,
				Username: claims.Username,
				Roles:    claims.Roles,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m *Middleware) getBearerToken(headers http.Header) (string, bool) {
	bearer := headers.Get("Authorization")
	if bearer == "" {
		return "", false
	}

	// Only support "Bearer <token>" format (RFC 6750)
	if !strings.HasPrefix(bearer, "Bearer ") {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(bearer, "Bearer "))

	return token, token != ""
}

func (m *Middleware) unauthorizedResponse(w http.ResponseWriter) {
	if err := types.WriteUnauthorized(w); err != nil {
		m.logger.Errorf("failed to encode unauthorized response: %v", err)
	}
}

func NewMiddleware(verifier TokenVerifierInterface, resolver tenancy.ResolverInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		verifier: verifier,
		resolver: resolver,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
