// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/canonical/tenant-crm/internal/db"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/tracing"
	"github.com/canonical/tenant-crm/internal/types"
	"github.com/canonical/tenant-crm/migrations"
)

// setupPostgres starts a PostgreSQL container with migrations applied.
// Tests are skipped if no container runtime is available.
func setupPostgres(t *testing.T) *db.DBClient {
	t.Helper()

	if testing.Short() || os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("skipping PostgreSQL integration tests")
	}

	// pgmodule.Run panics rather than failing when no docker host can be found
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("crm_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container: %v", err)
	}

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parsing dsn: %v", err)
	}

	conn := stdlib.OpenDB(*config)

	provider, err := goose.NewProvider(goose.DialectPostgres, conn, migrations.EmbedMigrations)
	if err != nil {
		t.Fatalf("creating goose provider: %v", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}

	logger := logging.NewNoopLogger()
	client := db.NewDBClientFromDB(conn, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
	t.Cleanup(client.Close)

	return client
}

func TestIntegration_TenantIsolation(t *testing.T) {
	client := setupPostgres(t)

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	users := NewTenantStore[types.User](client, tracer, monitor, logger)
	contacts := NewTenantStore[types.Contact](client, tracer, monitor, logger)

	ctxA := tenantCtx(tenantA)
	ctxB := tenantCtx(tenantB)

	// same username in both tenants is allowed
	for _, ctx := range []context.Context{ctxA, ctxB} {
		u := &types.User{Username: "dev", Email: "dev@example.com", PasswordHash: []byte("h"), PasswordSalt: []byte("s")}
		if err := users.Create(ctx, u); err != nil {
			t.Fatalf("creating user: %v", err)
		}
	}

	dup := &types.User{Username: "dev", Email: "other@example.com", PasswordHash: []byte("h"), PasswordSalt: []byte("s")}
	if err := users.Create(ctxA, dup); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	for i := 0; i < 3; i++ {
		c := &types.Contact{FirstName: "Ada", LastName: "Lovelace", ContactType: types.ContactTypeMentor, Tags: types.Tags{"math"}}
		if err := contacts.Create(ctxA, c); err != nil {
			t.Fatalf("creating contact: %v", err)
		}
	}

	foreign := &types.Contact{FirstName: "Grace", LastName: "Hopper", ContactType: types.ContactTypeColleague}
	if err := contacts.Create(ctxB, foreign); err != nil {
		t.Fatalf("creating contact: %v", err)
	}

	listA, err := contacts.FindMany(ctxA, nil)
	if err != nil {
		t.Fatalf("listing contacts: %v", err)
	}

	if len(listA) != 3 {
		t.Errorf("expected 3 contacts for tenant A, got %d", len(listA))
	}

	for _, c := range listA {
		if c.TenantID != tenantA {
			t.Errorf("contact %s leaked from tenant %s", c.ID, c.TenantID)
		}
		if len(c.Tags) != 1 || c.Tags[0] != "math" {
			t.Errorf("unexpected tags %v", c.Tags)
		}
	}

	if n, err := contacts.Count(ctxB, nil); err != nil || n != 1 {
		t.Errorf("expected 1 contact for tenant B, got %d (%v)", n, err)
	}

	if _, err := contacts.FindByID(ctxA, foreign.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected foreign read to be ErrNotFound, got %v", err)
	}

	foreign.FirstName = "Mallory"
	if err := contacts.Update(ctxA, foreign); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected foreign update to be ErrNotFound, got %v", err)
	}

	if err := contacts.Delete(ctxA, foreign.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected foreign delete to be ErrNotFound, got %v", err)
	}

	stored, err := contacts.FindByID(ctxB, foreign.ID)
	if err != nil {
		t.Fatalf("reading own contact: %v", err)
	}

	if stored.FirstName != "Grace" {
		t.Errorf("foreign write went through, first name is %q", stored.FirstName)
	}

	injected, err := contacts.FindMany(ctxA, sq.Expr("first_name = ? OR 1=1", "nobody"))
	if err != nil {
		t.Fatalf("listing contacts: %v", err)
	}

	if len(injected) != 3 {
		t.Errorf("expected OR predicate to stay inside tenant A, got %d rows", len(injected))
	}
}

func TestIntegration_RoleIsolation(t *testing.T) {
	client := setupPostgres(t)

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	users := NewTenantStore[types.User](client, tracer, monitor, logger)
	roles := NewTenantStore[types.Role](client, tracer, monitor, logger)
	grants := NewTenantStore[types.UserRole](client, tracer, monitor, logger)

	ctxA := tenantCtx(tenantA)
	ctxB := tenantCtx(tenantB)

	ids := make(map[string][2]string)

	// role names are unique per tenant only
	for tenantID, ctx := range map[string]context.Context{tenantA: ctxA, tenantB: ctxB} {
		u := &types.User{Username: "dev", Email: "dev@example.com", PasswordHash: []byte("h"), PasswordSalt: []byte("s")}
		if err := users.Create(ctx, u); err != nil {
			t.Fatalf("creating user: %v", err)
		}

		r := &types.Role{Name: types.AdminRole}
		if err := roles.Create(ctx, r); err != nil {
			t.Fatalf("creating role: %v", err)
		}

		if err := grants.Create(ctx, &types.UserRole{UserID: u.ID, RoleID: r.ID}); err != nil {
			t.Fatalf("granting role: %v", err)
		}

		ids[tenantID] = [2]string{u.ID, r.ID}
	}

	if err := roles.Create(ctxA, &types.Role{Name: types.AdminRole}); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey for a second Admin role, got %v", err)
	}

	// the composite foreign key keeps grants inside one tenant
	if err := grants.Create(ctxA, &types.UserRole{UserID: ids[tenantA][0], RoleID: ids[tenantB][1]}); err == nil {
		t.Error("expected a grant of tenant B's role in tenant A to be rejected")
	}

	granted, err := grants.FindMany(ctxA, nil)
	if err != nil {
		t.Fatalf("listing grants: %v", err)
	}

	if len(granted) != 1 || granted[0].TenantID != tenantA || granted[0].RoleID != ids[tenantA][1] {
		t.Errorf("expected only tenant A's grant, got %+v", granted)
	}

	visible, err := roles.FindMany(ctxA, sq.Eq{"id": []string{ids[tenantA][1], ids[tenantB][1]}})
	if err != nil {
		t.Fatalf("listing roles: %v", err)
	}

	if len(visible) != 1 || visible[0].ID != ids[tenantA][1] {
		t.Errorf("expected tenant B's role to stay hidden, got %+v", visible)
	}

	if n, err := grants.Count(ctxB, sq.Eq{"user_id": ids[tenantA][0]}); err != nil || n != 0 {
		t.Errorf("expected no grants of tenant A's user in tenant B, got %d (%v)", n, err)
	}
}
