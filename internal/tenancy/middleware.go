// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenancy

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/canonical/tenant-crm/internal/http/types"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/tracing"
)

type Middleware struct {
	resolver ResolverInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// RequireTenant binds the resolved tenant to the request context.
// Unresolvable requests never reach next.
func (m *Middleware) RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "tenancy.Middleware.RequireTenant")
		defer span.End()

		tenantID, err := m.resolver.Resolve(r.Header)
		if err != nil {
			m.logger.Debugf("tenant resolution failed: %v", err)
			m.logger.Security().AuthnFailure("anonymous", "", err.Error())

			if err := types.WriteUnauthorized(w); err != nil {
				m.logger.Errorf("failed to encode unauthorized response: %v", err)
			}
			return
		}

		span.SetAttributes(attribute.String("tenant.id", tenantID))

		// a fresh value, never merged with whatever the caller put in the context
		ctx = WithContext(ctx, RequestContext{TenantID: tenantID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func NewMiddleware(resolver ResolverInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		resolver: resolver,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
