// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/canonical/tenant-crm/internal/db"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/storage"
	"github.com/canonical/tenant-crm/internal/tenancy"
	"github.com/canonical/tenant-crm/internal/tracing"
	"github.com/canonical/tenant-crm/internal/types"
)

const (
	adminRoleID = "01956f3c-0000-7000-8000-00000000a001"
	salesRoleID = "01956f3c-0000-7000-8000-00000000a002"

	grantsQuery = `^SELECT id, tenant_id, created_at, user_id, role_id FROM user_roles WHERE \(\(user_id = \$1\) AND tenant_id = \$2\) ORDER BY created_at ASC$`
)

var grantColumns = []string{"id", "tenant_id", "created_at", "user_id", "role_id"}

func newRolesWithMock(t *testing.T) (*Roles, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	client := db.NewDBClientFromDB(conn, tracer, monitor, logger)

	roles := NewRoles(
		storage.NewTenantStore[types.UserRole](client, tracer, monitor, logger),
		storage.NewTenantStore[types.Role](client, tracer, monitor, logger),
		tracer, monitor, logger,
	)

	return roles, mock
}

func TestRoles_RoleNames(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		setup    func(sqlmock.Sqlmock)
		expected []string
		wantErr  bool
	}{
		{
			name: "Granted roles sorted by name",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(grantsQuery).
					WithArgs(userID, tenantA).
					WillReturnRows(sqlmock.NewRows(grantColumns).
						AddRow("g-1", tenantA, now, userID, salesRoleID).
						AddRow("g-2", tenantA, now, userID, adminRoleID))
				m.ExpectQuery(`^SELECT id, tenant_id, created_at, name FROM roles WHERE \(\(id IN \(\$1,\$2\)\) AND tenant_id = \$3\) ORDER BY name ASC$`).
					WithArgs(salesRoleID, adminRoleID, tenantA).
					WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "created_at", "name"}).
						AddRow(adminRoleID, tenantA, now, types.AdminRole).
						AddRow(salesRoleID, tenantA, now, "Sales"))
			},
			expected: []string{types.AdminRole, "Sales"},
		},
		{
			name: "No grants skips the role lookup",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(grantsQuery).
					WithArgs(userID, tenantA).
					WillReturnRows(sqlmock.NewRows(grantColumns))
			},
			expected: []string{},
		},
		{
			name: "Grants owned by another tenant are dropped",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(grantsQuery).
					WithArgs(userID, tenantA).
					WillReturnRows(sqlmock.NewRows(grantColumns).
						AddRow("g-1", tenantB, now, userID, adminRoleID))
			},
			expected: []string{},
		},
		{
			name: "Grant lookup failure",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(grantsQuery).WillReturnError(context.DeadlineExceeded)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roles, mock := newRolesWithMock(t)
			tt.setup(mock)

			ctx := tenancy.WithContext(context.Background(), tenancy.RequestContext{TenantID: tenantA})

			names, err := roles.RoleNames(ctx, userID)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				if !reflect.DeepEqual(names, tt.expected) {
					t.Errorf("expected %v, got %v", tt.expected, names)
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestRoles_RoleNamesRequiresTenant(t *testing.T) {
	roles, mock := newRolesWithMock(t)

	if _, err := roles.RoleNames(context.Background(), userID); err == nil {
		t.Fatal("expected an error without a tenant")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
