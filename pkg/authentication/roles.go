// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/storage"
	"github.com/canonical/tenant-crm/internal/tracing"
)

var _ RoleResolverInterface = (*Roles)(nil)

// Roles reads role grants, both lookups go through the tenant filter of ctx.
type Roles struct {
	grants UserRoleStoreInterface
	roles  RoleStoreInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// RoleNames returns the sorted role names granted to userID, never nil.
func (r *Roles) RoleNames(ctx context.Context, userID string) ([]string, error) {
	ctx, span := r.tracer.Start(ctx, "authentication.Roles.RoleNames")
	defer span.End()

	grants, err := r.grants.FindMany(ctx, sq.Eq{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list role grants: %w", err)
	}

	names := make([]string, 0, len(grants))
	if len(grants) == 0 {
		return names, nil
	}

	ids := make([]string, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.RoleID)
	}

	roles, err := r.roles.FindMany(ctx, sq.Eq{"id": ids}, storage.WithOrderBy("name", false))
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	for _, role := range roles {
		names = append(names, role.Name)
	}

	return names, nil
}

func NewRoles(grants UserRoleStoreInterface, roles RoleStoreInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Roles {
	r := new(Roles)

	r.grants = grants
	r.roles = roles

	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
