// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/tenant-crm/internal/db"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/storage"
	"github.com/canonical/tenant-crm/internal/tracing"
	"github.com/canonical/tenant-crm/internal/types"
)

// assignRoles grants the named roles to userID in the tenant of ctx, creating
// missing role definitions. Existing grants are left untouched.
func assignRoles(ctx context.Context, client db.DBClientInterface, logger logging.LoggerInterface, userID string, names []string) error {
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("tenant-crm-cli", logger)

	roles := storage.NewTenantStore[types.Role](client, tracer, monitor, logger)
	grants := storage.NewTenantStore[types.UserRole](client, tracer, monitor, logger)

	for _, name := range names {
		role, err := roles.FindOne(ctx, sq.Eq{"name": name})

		switch {
		case errors.Is(err, storage.ErrNotFound):
			role = &types.Role{Name: name}
			if err := roles.Create(ctx, role); err != nil {
				return fmt.Errorf("failed to create role %s: %w", name, err)
			}
			logger.Infof("created role %s (%s)", role.Name, role.ID)
		case err != nil:
			return fmt.Errorf("failed to look up role %s: %w", name, err)
		}

		_, err = grants.FindOne(ctx, sq.Eq{"user_id": userID, "role_id": role.ID})

		switch {
		case err == nil:
			continue
		case !errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("failed to look up grant of %s: %w", name, err)
		}

		if err := grants.Create(ctx, &types.UserRole{UserID: userID, RoleID: role.ID}); err != nil {
			return fmt.Errorf("failed to grant role %s: %w", name, err)
		}
	}

	return nil
}
