// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/tenant-crm/internal/storage"
	"github.com/canonical/tenant-crm/internal/types"
)

type ServiceInterface interface {
	// Login checks the credentials against the users of the tenant bound to ctx
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

type PasswordHasherInterface interface {
	Hash(ctx context.Context, password string) ([]byte, []byte, error)
	Verify(ctx context.Context, password string, hash, salt []byte) (bool, error)
}

type TokenIssuerInterface interface {
	// IssueToken returns a signed token and its expiry
	IssueToken(ctx context.Context, userID, tenantID, username string, roles []string) (string, time.Time, error)
}

type TokenVerifierInterface interface {
	// VerifyToken verifies a raw JWT string and returns its claims
	VerifyToken(ctx context.Context, rawToken string) (*Claims, error)
}

// UserStoreInterface is the tenant scoped view over users.
type UserStoreInterface interface {
	FindOne(ctx context.Context, pred sq.Sqlizer) (*types.User, error)
}

// RoleResolverInterface returns the names of the roles granted to a user.
type RoleResolverInterface interface {
	RoleNames(ctx context.Context, userID string) ([]string, error)
}

// UserRoleStoreInterface is the tenant scoped view over role grants.
type UserRoleStoreInterface interface {
	FindMany(ctx context.Context, pred sq.Sqlizer, opts ...storage.QueryOption) ([]*types.UserRole, error)
}

// RoleStoreInterface is the tenant scoped view over role definitions.
type RoleStoreInterface interface {
	FindMany(ctx context.Context, pred sq.Sqlizer, opts ...storage.QueryOption) ([]*types.Role, error)
}
