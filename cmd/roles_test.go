// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/canonical/tenant-crm/internal/db"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/tracing"
	"github.com/canonical/tenant-crm/internal/types"
)

const (
	testTenant = "0b9f2a4e-6c1d-4f7e-9a3b-5d8c2e1f4a6b"
	testUserID = "01956f3c-8d2a-7b4e-9c1f-3a5d7e9b1c2d"
	testRoleID = "01956f3c-0000-7000-8000-00000000a001"

	roleLookup  = `^SELECT id, tenant_id, created_at, name FROM roles WHERE \(\(name = \$1\) AND tenant_id = \$2\) LIMIT 1$`
	grantLookup = `^SELECT id, tenant_id, created_at, user_id, role_id FROM user_roles WHERE \(\(role_id = \$1 AND user_id = \$2\) AND tenant_id = \$3\) LIMIT 1$`
)

func newCLIClientWithMock(t *testing.T) (*db.DBClient, sqlmock.Sqlmock, logging.LoggerInterface) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	logger := logging.NewNoopLogger()

	return db.NewDBClientFromDB(conn, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger), mock, logger
}

func TestAssignRolesCreatesRoleAndGrant(t *testing.T) {
	client, mock, logger := newCLIClientWithMock(t)

	ctx, err := tenantContext(context.Background(), testTenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery(roleLookup).
		WithArgs(types.AdminRole, testTenant).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "created_at", "name"}))
	mock.ExpectQuery(`^INSERT INTO roles \(id,tenant_id,name\) VALUES \(\$1,\$2,\$3\) RETURNING created_at$`).
		WithArgs(sqlmock.AnyArg(), testTenant, types.AdminRole).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectQuery(grantLookup).
		WithArgs(sqlmock.AnyArg(), testUserID, testTenant).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "created_at", "user_id", "role_id"}))
	mock.ExpectQuery(`^INSERT INTO user_roles \(id,tenant_id,user_id,role_id\) VALUES \(\$1,\$2,\$3,\$4\) RETURNING created_at$`).
		WithArgs(sqlmock.AnyArg(), testTenant, testUserID, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	if err := assignRoles(ctx, client, logger, testUserID, []string{types.AdminRole}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAssignRolesKeepsExistingGrant(t *testing.T) {
	client, mock, logger := newCLIClientWithMock(t)

	ctx, err := tenantContext(context.Background(), testTenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery(roleLookup).
		WithArgs(types.AdminRole, testTenant).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "created_at", "name"}).
			AddRow(testRoleID, testTenant, time.Now(), types.AdminRole))
	mock.ExpectQuery(grantLookup).
		WithArgs(testRoleID, testUserID, testTenant).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "created_at", "user_id", "role_id"}).
			AddRow("01956f3c-0000-7000-8000-00000000b001", testTenant, time.Now(), testUserID, testRoleID))

	if err := assignRoles(ctx, client, logger, testUserID, []string{types.AdminRole}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no insert should run for an existing grant: %v", err)
	}
}
