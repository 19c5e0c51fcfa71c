// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenancy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/tracing"
)

func newTestMiddleware(t *testing.T, development bool) *Middleware {
	t.Helper()

	r, err := NewResolver("", defaultTenant, development)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger := logging.NewNoopLogger()
	return NewMiddleware(r, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
}

func TestMiddleware_RequireTenant(t *testing.T) {
	tests := []struct {
		name               string
		development        bool
		header             string
		expectedStatusCode int
		expectedTenant     string
	}{
		{
			name:               "Valid tenant header",
			header:             tenantA,
			expectedStatusCode: http.StatusOK,
			expectedTenant:     tenantA,
		},
		{
			name:               "Missing tenant header - rejects request",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "Malformed tenant header - rejects request",
			header:             "tenant-a",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "Development fallback",
			development:        true,
			expectedStatusCode: http.StatusOK,
			expectedTenant:     defaultTenant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				rc, ok := FromContext(r.Context())
				if !ok {
					t.Errorf("expected request context in handler")
				}
				seen = rc.TenantID
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/login", nil)
			if tt.header != "" {
				req.Header.Set(DefaultHeaderName, tt.header)
			}
			rr := httptest.NewRecorder()

			newTestMiddleware(t, tt.development).RequireTenant(handler).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatusCode {
				t.Errorf("expected status %d, got %d", tt.expectedStatusCode, rr.Code)
			}

			if seen != tt.expectedTenant {
				t.Errorf("expected tenant %q, got %q", tt.expectedTenant, seen)
			}

			if rr.Code == http.StatusUnauthorized {
				var body map[string]interface{}
				if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if body["message"] != "unauthorized" {
					t.Errorf("expected generic message, got %v", body["message"])
				}
			}
		})
	}
}

func TestMiddleware_RequireTenantOverridesInboundContext(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc, _ := FromContext(r.Context())
		if rc.TenantID != tenantA || rc.UserID != "" {
			t.Errorf("expected fresh request context, got %+v", rc)
		}
	})

	ctx := WithContext(context.Background(), RequestContext{TenantID: defaultTenant, UserID: "stale"})
	req := httptest.NewRequest(http.MethodPost, "/", nil).WithContext(ctx)
	req.Header.Set(DefaultHeaderName, tenantA)

	newTestMiddleware(t, false).RequireTenant(handler).ServeHTTP(httptest.NewRecorder(), req)
}

func TestMiddleware_ConcurrentRequestsDoNotShareTenant(t *testing.T) {
	mw := newTestMiddleware(t, false)

	handler := mw.RequireTenant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc, _ := FromContext(r.Context())
		if rc.TenantID != r.Header.Get(DefaultHeaderName) {
			t.Errorf("tenant bled across requests: header %s, context %s", r.Header.Get(DefaultHeaderName), rc.TenantID)
		}
	}))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(DefaultHeaderName, fmt.Sprintf("00000000-0000-4000-8000-%012d", i))
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}(i)
	}
	wg.Wait()
}
