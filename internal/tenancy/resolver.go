// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenancy

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultHeaderName carries the tenant identifier on unauthenticated requests
	DefaultHeaderName = "X-Tenant-Id"
)

var (
	ErrTenantMissing = errors.New("tenant identifier missing")
	ErrTenantInvalid = errors.New("tenant identifier invalid")
)

var _ ResolverInterface = (*Resolver)(nil)

// Resolver extracts and validates the tenant identifier of a request.
type Resolver struct {
	header          string
	defaultTenantID string
	development     bool
}

// Header returns the header name the resolver reads from.
func (r *Resolver) Header() string {
	return r.header
}

// Resolve returns the canonical tenant identifier carried by headers.
// A missing header falls back to the default tenant only in development mode,
// a malformed one is rejected in every mode.
func (r *Resolver) Resolve(headers http.Header) (string, error) {
	raw := strings.TrimSpace(headers.Get(r.header))

	if raw == "" {
		if r.development && r.defaultTenantID != "" {
			return r.defaultTenantID, nil
		}
		return "", ErrTenantMissing
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return "", ErrTenantInvalid
	}

	return id.String(), nil
}

// NewResolver builds a Resolver, an empty header selects DefaultHeaderName.
// defaultTenantID is only honoured when development is true.
func NewResolver(header, defaultTenantID string, development bool) (*Resolver, error) {
	r := new(Resolver)

	r.header = header
	if r.header == "" {
		r.header = DefaultHeaderName
	}

	r.development = development

	if defaultTenantID != "" {
		id, err := uuid.Parse(defaultTenantID)
		if err != nil {
			return nil, ErrTenantInvalid
		}
		r.defaultTenantID = id.String()
	}

	return r, nil
}
