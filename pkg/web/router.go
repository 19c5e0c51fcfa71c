// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/tenant-crm/internal/db"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/storage"
	"github.com/canonical/tenant-crm/internal/tenancy"
	"github.com/canonical/tenant-crm/internal/tracing"
	"github.com/canonical/tenant-crm/internal/types"
	"github.com/canonical/tenant-crm/pkg/authentication"
	"github.com/canonical/tenant-crm/pkg/contacts"
	"github.com/canonical/tenant-crm/pkg/metrics"
	"github.com/canonical/tenant-crm/pkg/status"
)

// NewRouter wires the public API. Login is scoped by the tenant header,
// every contacts route by the tenant carried in the bearer token.
func NewRouter(
	dbClient db.DBClientInterface,
	resolver tenancy.ResolverInterface,
	hasher authentication.PasswordHasherInterface,
	tokens *authentication.Tokens,
	corsOrigins []string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		middleware.Recoverer,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS(corsOrigins, resolver.Header()),
	)

	router.Use(middlewares...)

	users := storage.NewTenantStore[types.User](dbClient, tracer, monitor, logger)
	contactStore := storage.NewTenantStore[types.Contact](dbClient, tracer, monitor, logger)

	roles := authentication.NewRoles(
		storage.NewTenantStore[types.UserRole](dbClient, tracer, monitor, logger),
		storage.NewTenantStore[types.Role](dbClient, tracer, monitor, logger),
		tracer, monitor, logger,
	)

	authService := authentication.NewService(users, roles, hasher, tokens, tracer, monitor, logger)
	contactService := contacts.NewService(contactStore, tracer, monitor, logger)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(dbClient, tracer, monitor, logger).RegisterEndpoints(router)

	router.Group(func(r chi.Router) {
		r.Use(tenancy.NewMiddleware(resolver, tracer, monitor, logger).RequireTenant)

		authentication.NewAPI(authService, tracer, monitor, logger).RegisterEndpoints(r)
	})

	router.Group(func(r chi.Router) {
		r.Use(
			authentication.NewMiddleware(tokens, resolver, tracer, monitor, logger).Authenticate(),
			db.TransactionMiddleware(dbClient, logger),
		)

		contacts.NewAPI(contactService, tracer, monitor, logger).RegisterEndpoints(r)
	})

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
