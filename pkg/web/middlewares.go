// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/canonical/tenant-crm/internal/tenancy"
)

func middlewareCORS(origins []string, tenantHeader string) func(http.Handler) http.Handler {
	if tenantHeader == "" {
		tenantHeader = tenancy.DefaultHeaderName
	}

	return cors.Handler(
		cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{
				http.MethodHead,
				http.MethodGet,
				http.MethodPost,
				http.MethodPut,
				http.MethodDelete,
			},
			AllowedHeaders:   []string{"Authorization", "Content-Type", tenantHeader},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		},
	)
}
